package gym

import "time"

type Gym struct {
	ID                 int       `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	City               string    `db:"city" json:"city"`
	StripeAccountRef   string    `db:"stripe_account_ref" json:"-"`
	OnboardingComplete bool      `db:"onboarding_complete" json:"onboarding_complete"`
	Currency           string    `db:"currency" json:"currency"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// Location — площадка зала со своим мерчант-аккаунтом.
type Location struct {
	ID                 int       `db:"id" json:"id"`
	GymID              int       `db:"gym_id" json:"gym_id"`
	Name               string    `db:"name" json:"name"`
	Address            string    `db:"address" json:"address"`
	IsPrimary          bool      `db:"is_primary" json:"is_primary"`
	Active             bool      `db:"active" json:"active"`
	StripeAccountRef   string    `db:"stripe_account_ref" json:"-"`
	OnboardingComplete bool      `db:"onboarding_complete" json:"onboarding_complete"`
	Currency           string    `db:"currency" json:"currency"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

type ClassSlot struct {
	ID         int       `db:"id" json:"id"`
	GymID      int       `db:"gym_id" json:"gym_id"`
	LocationID *int      `db:"location_id" json:"location_id,omitempty"`
	Title      string    `db:"title" json:"title"`
	StartTime  time.Time `db:"start_time" json:"start_time"`
	EndTime    time.Time `db:"end_time" json:"end_time"`
	Capacity   int       `db:"capacity" json:"capacity"`
	CreditCost int       `db:"credit_cost" json:"credit_cost"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type ClassSlotWithAvailability struct {
	ClassSlot
	BookedCount int  `db:"booked_count" json:"booked_count"`
	Available   int  `json:"available"`
	IsFull      bool `json:"is_full"`
}

type CreateGymRequest struct {
	Name     string `json:"name" binding:"required"`
	City     string `json:"city" binding:"required"`
	Currency string `json:"currency"`
}

type CreateLocationRequest struct {
	Name      string `json:"name" binding:"required"`
	Address   string `json:"address"`
	IsPrimary bool   `json:"is_primary"`
	Currency  string `json:"currency"`
}

type ConnectAccountRequest struct {
	StripeAccountRef   string `json:"stripe_account_ref" binding:"required"`
	OnboardingComplete bool   `json:"onboarding_complete"`
}

type CreateClassSlotRequest struct {
	LocationID *int   `json:"location_id,omitempty"`
	Title      string `json:"title"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	Capacity   int    `json:"capacity" binding:"required,min=1"`
	CreditCost int    `json:"credit_cost"`
}
