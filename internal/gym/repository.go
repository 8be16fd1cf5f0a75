package gym

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Store interface {
	CreateGym(ctx context.Context, name, city, currency string) (*Gym, error)
	GetGymByID(ctx context.Context, id int) (*Gym, error)
	GetAllGyms(ctx context.Context) ([]Gym, error)
	ConnectGymAccount(ctx context.Context, gymID int, accountRef string, onboarded bool) error

	CreateLocation(ctx context.Context, gymID int, name, address, currency string, isPrimary bool) (*Location, error)
	GetLocationByID(ctx context.Context, id int) (*Location, error)
	ListLocations(ctx context.Context, gymID int) ([]Location, error)
	ConnectLocationAccount(ctx context.Context, locationID int, accountRef string, onboarded bool) error

	CreateClassSlot(ctx context.Context, gymID int, req CreateClassSlotRequest) (*ClassSlot, error)
	GetClassSlotByID(ctx context.Context, id int) (*ClassSlot, error)
	ListClassSlots(ctx context.Context, gymID int) ([]ClassSlotWithAvailability, error)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateGym(ctx context.Context, name, city, currency string) (*Gym, error) {
	if currency == "" {
		currency = "usd"
	}
	g := &Gym{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO gyms (name, city, currency)
		VALUES ($1, $2, $3)
		RETURNING id, name, city, stripe_account_ref, onboarding_complete, currency, created_at
	`, name, city, currency).StructScan(g)
	return g, err
}

func (r *Repository) GetGymByID(ctx context.Context, id int) (*Gym, error) {
	g := &Gym{}
	err := r.db.GetContext(ctx, g, `SELECT * FROM gyms WHERE id = $1`, id)
	return g, err
}

func (r *Repository) GetAllGyms(ctx context.Context) ([]Gym, error) {
	gyms := []Gym{}
	err := r.db.SelectContext(ctx, &gyms, `SELECT * FROM gyms ORDER BY name`)
	return gyms, err
}

func (r *Repository) ConnectGymAccount(ctx context.Context, gymID int, accountRef string, onboarded bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE gyms
		SET stripe_account_ref = $1, onboarding_complete = $2
		WHERE id = $3
	`, accountRef, onboarded, gymID)
	return err
}

func (r *Repository) CreateLocation(ctx context.Context, gymID int, name, address, currency string, isPrimary bool) (*Location, error) {
	if currency == "" {
		currency = "usd"
	}
	loc := &Location{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO gym_locations (gym_id, name, address, is_primary, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, gym_id, name, address, is_primary, active, stripe_account_ref, onboarding_complete, currency, created_at
	`, gymID, name, address, isPrimary, currency).StructScan(loc)
	return loc, err
}

func (r *Repository) GetLocationByID(ctx context.Context, id int) (*Location, error) {
	loc := &Location{}
	err := r.db.GetContext(ctx, loc, `SELECT * FROM gym_locations WHERE id = $1`, id)
	return loc, err
}

func (r *Repository) ListLocations(ctx context.Context, gymID int) ([]Location, error) {
	locs := []Location{}
	err := r.db.SelectContext(ctx, &locs, `
		SELECT * FROM gym_locations
		WHERE gym_id = $1
		ORDER BY is_primary DESC, id
	`, gymID)
	return locs, err
}

func (r *Repository) ConnectLocationAccount(ctx context.Context, locationID int, accountRef string, onboarded bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE gym_locations
		SET stripe_account_ref = $1, onboarding_complete = $2
		WHERE id = $3
	`, accountRef, onboarded, locationID)
	return err
}

func (r *Repository) CreateClassSlot(ctx context.Context, gymID int, req CreateClassSlotRequest) (*ClassSlot, error) {
	cost := req.CreditCost
	if cost <= 0 {
		cost = 1
	}
	slot := &ClassSlot{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO class_slots (gym_id, location_id, title, start_time, end_time, capacity, credit_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, gym_id, location_id, title, start_time, end_time, capacity, credit_cost, created_at
	`, gymID, req.LocationID, req.Title, req.StartTime, req.EndTime, req.Capacity, cost).StructScan(slot)
	return slot, err
}

func (r *Repository) GetClassSlotByID(ctx context.Context, id int) (*ClassSlot, error) {
	slot := &ClassSlot{}
	err := r.db.GetContext(ctx, slot, `SELECT * FROM class_slots WHERE id = $1`, id)
	return slot, err
}

func (r *Repository) ListClassSlots(ctx context.Context, gymID int) ([]ClassSlotWithAvailability, error) {
	slots := []ClassSlotWithAvailability{}
	err := r.db.SelectContext(ctx, &slots, `
		SELECT s.*,
		       COUNT(b.id) FILTER (WHERE b.status = 'booked') AS booked_count
		FROM class_slots s
		LEFT JOIN bookings b ON b.class_slot_id = s.id
		WHERE s.gym_id = $1 AND s.start_time > NOW()
		GROUP BY s.id
		ORDER BY s.start_time
	`, gymID)
	if err != nil {
		return nil, err
	}

	for i := range slots {
		slots[i].Available = slots[i].Capacity - slots[i].BookedCount
		slots[i].IsFull = slots[i].Available <= 0
	}

	return slots, nil
}
