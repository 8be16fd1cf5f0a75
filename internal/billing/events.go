package billing

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// EventStore records processed webhook event ids for dedupe.
type EventStore interface {
	Claim(ctx context.Context, id, eventType string) (bool, error)
	Release(ctx context.Context, id string) error
}

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Claim returns false when the event id was already recorded. The row
// is inserted before dispatch and released on dispatch failure, so a
// redelivery after a crash mid-dispatch is still possible — each
// transition is idempotent on its own to cover that window.
func (r *EventRepository) Claim(ctx context.Context, id, eventType string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO webhook_events (id, type) VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, id, eventType)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *EventRepository) Release(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM webhook_events WHERE id = $1`, id)
	return err
}
