package member

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// Member — принадлежность пользователя к конкретному залу.
// Никогда не удаляется физически, только смена статуса,
// иначе ломается история транзакций.
type Member struct {
	ID               int       `db:"id" json:"id"`
	GymID            int       `db:"gym_id" json:"gym_id"`
	UserID           int       `db:"user_id" json:"user_id"`
	Status           Status    `db:"status" json:"status"`
	CreditsRemaining *int64    `db:"credits_remaining" json:"credits_remaining"`
	UnlimitedClasses bool      `db:"unlimited_classes" json:"unlimited_classes"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// CreditLimited reports whether bookings must be paid with credits.
// A NULL credits balance means the member is not credit-limited at all.
func (m *Member) CreditLimited() bool {
	return !m.UnlimitedClasses && m.CreditsRemaining != nil
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=active inactive suspended"`
}
