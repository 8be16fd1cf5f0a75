package booking

import "time"

type Booking struct {
	ID          int       `db:"id" json:"id"`
	GymID       int       `db:"gym_id" json:"gym_id"`
	MemberID    int       `db:"member_id" json:"member_id"`
	ClassSlotID int       `db:"class_slot_id" json:"class_slot_id"`
	Status      string    `db:"status" json:"status"`
	CreditCost  int       `db:"credit_cost" json:"credit_cost"`
	Reference   string    `db:"reference" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type BookingWithDetails struct {
	Booking
	SlotTitle string    `db:"slot_title" json:"slot_title"`
	SlotStart time.Time `db:"slot_start" json:"slot_start"`
	SlotEnd   time.Time `db:"slot_end" json:"slot_end"`
	GymName   string    `db:"gym_name" json:"gym_name"`
	UserName  string    `db:"user_name" json:"user_name"`
	UserEmail string    `db:"user_email" json:"user_email"`
}

type BookSlotResponse struct {
	Booking          *Booking `json:"booking"`
	CreditsSpent     int      `json:"credits_spent"`
	CreditsRemaining *int64   `json:"credits_remaining,omitempty"`
}
