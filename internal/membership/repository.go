package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrMembershipNotFound = errors.New("membership not found")

type Store interface {
	UpsertActive(ctx context.Context, gymID, memberID, planID int, subRef, custRef string, endDate *time.Time, credits *int64) (*Membership, error)
	GetBySubscriptionRef(ctx context.Context, subRef string) (*Membership, error)
	ListByMember(ctx context.Context, memberID int) ([]Membership, error)
	HasBookingEligible(ctx context.Context, memberID int) (bool, error)
	Renew(ctx context.Context, id int, endDate *time.Time, credits *int64) error
	SetStatus(ctx context.Context, id int, status Status) error
	Cancel(ctx context.Context, id int, at time.Time) error
	SetMemberEntitlement(ctx context.Context, memberID int, credits *int64, unlimited bool) error
	GetContact(ctx context.Context, membershipID int) (*Contact, error)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const membershipColumns = `id, gym_id, member_id, plan_id, status, start_date, end_date, credits_remaining,
	external_subscription_ref, external_customer_ref, cancelled_at, created_at, updated_at`

// UpsertActive keys on the partial unique index over (member_id, plan_id)
// for non-cancelled rows. Replaying the same checkout lands on the same
// row and resets it to the same state, which is what makes the webhook
// handler idempotent here.
func (r *Repository) UpsertActive(ctx context.Context, gymID, memberID, planID int, subRef, custRef string, endDate *time.Time, credits *int64) (*Membership, error) {
	m := &Membership{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO memberships (gym_id, member_id, plan_id, status, start_date, end_date, credits_remaining, external_subscription_ref, external_customer_ref)
		VALUES ($1, $2, $3, 'active', NOW(), $4, $5, $6, $7)
		ON CONFLICT (member_id, plan_id) WHERE status <> 'cancelled'
		DO UPDATE SET status = 'active',
		              end_date = EXCLUDED.end_date,
		              credits_remaining = EXCLUDED.credits_remaining,
		              external_subscription_ref = EXCLUDED.external_subscription_ref,
		              external_customer_ref = EXCLUDED.external_customer_ref,
		              updated_at = NOW()
		RETURNING `+membershipColumns+`
	`, gymID, memberID, planID, endDate, credits, subRef, custRef).StructScan(m)
	return m, err
}

func (r *Repository) GetBySubscriptionRef(ctx context.Context, subRef string) (*Membership, error) {
	m := &Membership{}
	err := r.db.GetContext(ctx, m, `
		SELECT * FROM memberships
		WHERE external_subscription_ref = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, subRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembershipNotFound
	}
	return m, err
}

func (r *Repository) ListByMember(ctx context.Context, memberID int) ([]Membership, error) {
	ms := []Membership{}
	err := r.db.SelectContext(ctx, &ms, `
		SELECT * FROM memberships
		WHERE member_id = $1
		ORDER BY created_at DESC
	`, memberID)
	return ms, err
}

// HasBookingEligible reports whether the member holds any membership
// that still grants access. payment_failed counts: access degrades only
// when credits run out, never retroactively.
func (r *Repository) HasBookingEligible(ctx context.Context, memberID int) (bool, error) {
	var eligible bool
	err := r.db.GetContext(ctx, &eligible, `
		SELECT EXISTS (
			SELECT 1 FROM memberships
			WHERE member_id = $1 AND status IN ('active', 'payment_failed')
		)
	`, memberID)
	return eligible, err
}

func (r *Repository) Renew(ctx context.Context, id int, endDate *time.Time, credits *int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE memberships
		SET status = 'active', end_date = $1, credits_remaining = $2, updated_at = NOW()
		WHERE id = $3
	`, endDate, credits, id)
	return err
}

func (r *Repository) SetStatus(ctx context.Context, id int, status Status) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE memberships
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	return err
}

func (r *Repository) Cancel(ctx context.Context, id int, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE memberships
		SET status = 'cancelled', cancelled_at = $1, updated_at = NOW()
		WHERE id = $2
	`, at, id)
	return err
}

// SetMemberEntitlement resets the member-level balance as part of a
// lifecycle transition. This is the only writer of these fields besides
// the ledger.
func (r *Repository) SetMemberEntitlement(ctx context.Context, memberID int, credits *int64, unlimited bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE members
		SET credits_remaining = $1, unlimited_classes = $2, updated_at = NOW()
		WHERE id = $3
	`, credits, unlimited, memberID)
	return err
}

func (r *Repository) GetContact(ctx context.Context, membershipID int) (*Contact, error) {
	contact := &Contact{}
	err := r.db.GetContext(ctx, contact, `
		SELECT u.email, u.name, p.name AS plan_name
		FROM memberships ms
		JOIN members m ON m.id = ms.member_id
		JOIN users u ON u.id = m.user_id
		JOIN plans p ON p.id = ms.plan_id
		WHERE ms.id = $1
	`, membershipID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembershipNotFound
	}
	return contact, err
}
