package member

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrMemberNotFound = errors.New("member not found")

type Store interface {
	Join(ctx context.Context, gymID, userID int) (*Member, error)
	GetByID(ctx context.Context, id int) (*Member, error)
	GetByGymAndUser(ctx context.Context, gymID, userID int) (*Member, error)
	ListByGym(ctx context.Context, gymID int) ([]Member, error)
	UpdateStatus(ctx context.Context, id int, status Status) error
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Join is an upsert: re-joining a gym reactivates the existing member row
// instead of creating a second one.
func (r *Repository) Join(ctx context.Context, gymID, userID int) (*Member, error) {
	m := &Member{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO members (gym_id, user_id, status)
		VALUES ($1, $2, 'active')
		ON CONFLICT (gym_id, user_id)
		DO UPDATE SET status = 'active', updated_at = NOW()
		RETURNING id, gym_id, user_id, status, credits_remaining, unlimited_classes, created_at, updated_at
	`, gymID, userID).StructScan(m)
	return m, err
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Member, error) {
	m := &Member{}
	err := r.db.GetContext(ctx, m, `SELECT * FROM members WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	return m, err
}

func (r *Repository) GetByGymAndUser(ctx context.Context, gymID, userID int) (*Member, error) {
	m := &Member{}
	err := r.db.GetContext(ctx, m, `SELECT * FROM members WHERE gym_id = $1 AND user_id = $2`, gymID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	return m, err
}

func (r *Repository) ListByGym(ctx context.Context, gymID int) ([]Member, error) {
	members := []Member{}
	err := r.db.SelectContext(ctx, &members, `
		SELECT * FROM members
		WHERE gym_id = $1
		ORDER BY created_at
	`, gymID)
	return members, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id int, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE members
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}
