package booking

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrBookingNotFoundOrCancelled = errors.New("booking not found or already cancelled")

type Store interface {
	CreateBooking(ctx context.Context, gymID, memberID, slotID, creditCost int, reference string) (*Booking, error)
	GetBookingByID(ctx context.Context, id int) (*Booking, error)
	CancelBooking(ctx context.Context, id int) error
	CountActiveBookingsForSlot(ctx context.Context, slotID int) (int, error)
	MemberHasBookingForSlot(ctx context.Context, memberID, slotID int) (bool, error)
	GetMemberBookings(ctx context.Context, memberID int) ([]Booking, error)
	GetBookingsByGym(ctx context.Context, gymID int) ([]BookingWithDetails, error)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateBooking(ctx context.Context, gymID, memberID, slotID, creditCost int, reference string) (*Booking, error) {
	b := &Booking{}
	err := r.db.GetContext(ctx, b, `
		INSERT INTO bookings (gym_id, member_id, class_slot_id, status, credit_cost, reference)
		VALUES ($1, $2, $3, 'booked', $4, $5)
		RETURNING *
	`, gymID, memberID, slotID, creditCost, reference)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Repository) GetBookingByID(ctx context.Context, id int) (*Booking, error) {
	b := &Booking{}
	err := r.db.GetContext(ctx, b, `SELECT * FROM bookings WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Repository) CancelBooking(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'booked'
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBookingNotFoundOrCancelled
	}
	return nil
}

func (r *Repository) CountActiveBookingsForSlot(ctx context.Context, slotID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM bookings
		WHERE class_slot_id = $1 AND status = 'booked'
	`, slotID)
	return count, err
}

func (r *Repository) MemberHasBookingForSlot(ctx context.Context, memberID, slotID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE member_id = $1 AND class_slot_id = $2 AND status = 'booked'
		)
	`, memberID, slotID)
	return exists, err
}

func (r *Repository) GetMemberBookings(ctx context.Context, memberID int) ([]Booking, error) {
	bookings := []Booking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT * FROM bookings
		WHERE member_id = $1
		ORDER BY created_at DESC
	`, memberID)
	return bookings, err
}

func (r *Repository) GetBookingsByGym(ctx context.Context, gymID int) ([]BookingWithDetails, error) {
	bookings := []BookingWithDetails{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT
			b.id,
			b.gym_id,
			b.member_id,
			b.class_slot_id,
			b.status,
			b.credit_cost,
			b.reference,
			b.created_at,
			s.title AS slot_title,
			s.start_time AS slot_start,
			s.end_time AS slot_end,
			g.name AS gym_name,
			u.name AS user_name,
			u.email AS user_email
		FROM bookings b
		JOIN class_slots s ON b.class_slot_id = s.id
		JOIN gyms g ON b.gym_id = g.id
		JOIN members m ON b.member_id = m.id
		JOIN users u ON m.user_id = u.id
		WHERE b.gym_id = $1
		ORDER BY s.start_time DESC, b.created_at DESC
	`, gymID)
	return bookings, err
}
