package plan

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrPlanNotFound = errors.New("plan not found")

type Store interface {
	Create(ctx context.Context, gymID int, req CreatePlanRequest) (*Plan, error)
	GetByID(ctx context.Context, id int) (*Plan, error)
	ListByGym(ctx context.Context, gymID int, activeOnly bool) ([]Plan, error)
	Update(ctx context.Context, id int, req UpdatePlanRequest) (*Plan, error)
	SetExternalRefs(ctx context.Context, id int, productRef, priceRef string) error
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, gymID int, req CreatePlanRequest) (*Plan, error) {
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}
	interval := req.BillingInterval
	if interval == "" {
		interval = string(IntervalMonthly)
	}

	p := &Plan{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO plans (gym_id, name, description, price_cents, currency, plan_type, billing_interval, included_classes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, gym_id, name, description, price_cents, currency, plan_type, billing_interval,
		          included_classes, external_product_ref, external_price_ref, active, created_at, updated_at
	`, gymID, req.Name, req.Description, req.PriceCents, currency, req.PlanType, interval, req.IncludedClasses).StructScan(p)
	return p, err
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Plan, error) {
	p := &Plan{}
	err := r.db.GetContext(ctx, p, `SELECT * FROM plans WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	return p, err
}

func (r *Repository) ListByGym(ctx context.Context, gymID int, activeOnly bool) ([]Plan, error) {
	plans := []Plan{}
	query := `SELECT * FROM plans WHERE gym_id = $1 ORDER BY price_cents`
	if activeOnly {
		query = `SELECT * FROM plans WHERE gym_id = $1 AND active ORDER BY price_cents`
	}
	err := r.db.SelectContext(ctx, &plans, query, gymID)
	return plans, err
}

// Update clears external_price_ref when the amount changes so the next
// sync mints a fresh price at the processor.
func (r *Repository) Update(ctx context.Context, id int, req UpdatePlanRequest) (*Plan, error) {
	p := &Plan{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE plans
		SET name = $1,
		    description = $2,
		    included_classes = $3,
		    active = COALESCE($4, active),
		    external_price_ref = CASE WHEN price_cents <> $5 THEN '' ELSE external_price_ref END,
		    price_cents = $5,
		    updated_at = NOW()
		WHERE id = $6
		RETURNING id, gym_id, name, description, price_cents, currency, plan_type, billing_interval,
		          included_classes, external_product_ref, external_price_ref, active, created_at, updated_at
	`, req.Name, req.Description, req.IncludedClasses, req.Active, req.PriceCents, id).StructScan(p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	return p, err
}

func (r *Repository) SetExternalRefs(ctx context.Context, id int, productRef, priceRef string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE plans
		SET external_product_ref = $1, external_price_ref = $2, updated_at = NOW()
		WHERE id = $3
	`, productRef, priceRef, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlanNotFound
	}
	return nil
}
