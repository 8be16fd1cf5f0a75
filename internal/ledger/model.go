package ledger

import "time"

type TransactionType string

const (
	TypeBooking            TransactionType = "booking"
	TypeCancellationRefund TransactionType = "cancellation_refund"
	TypePurchase           TransactionType = "purchase"
	TypeManualAdjustment   TransactionType = "manual_adjustment"
)

// CreditTransaction — строка append-only журнала кредитов.
// balance_after обязан равняться balance_after предыдущей строки
// плюс amount; расхождение означает гонку записи.
type CreditTransaction struct {
	ID            int             `db:"id" json:"id"`
	GymID         int             `db:"gym_id" json:"gym_id"`
	MemberID      int             `db:"member_id" json:"member_id"`
	Amount        int64           `db:"amount" json:"amount"`
	BalanceAfter  int64           `db:"balance_after" json:"balance_after"`
	Type          TransactionType `db:"type" json:"type"`
	ReferenceType string          `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID   string          `db:"reference_id" json:"reference_id,omitempty"`
	Notes         string          `db:"notes" json:"notes,omitempty"`
	CreatedBy     *int            `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

type AdjustCreditsRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Notes  string `json:"notes" binding:"required"`
}
