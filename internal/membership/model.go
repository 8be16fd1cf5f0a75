package membership

import "time"

type Status string

const (
	StatusActive        Status = "active"
	StatusPaymentFailed Status = "payment_failed"
	StatusCancelled     Status = "cancelled"
)

// Membership — связь участника с тарифом, зеркало внешней подписки.
// На пару (member, plan) может быть только одна не-отменённая запись.
type Membership struct {
	ID                      int        `db:"id" json:"id"`
	GymID                   int        `db:"gym_id" json:"gym_id"`
	MemberID                int        `db:"member_id" json:"member_id"`
	PlanID                  int        `db:"plan_id" json:"plan_id"`
	Status                  Status     `db:"status" json:"status"`
	StartDate               time.Time  `db:"start_date" json:"start_date"`
	EndDate                 *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreditsRemaining        *int64     `db:"credits_remaining" json:"credits_remaining,omitempty"`
	ExternalSubscriptionRef string     `db:"external_subscription_ref" json:"-"`
	ExternalCustomerRef     string     `db:"external_customer_ref" json:"-"`
	CancelledAt             *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt               time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at" json:"updated_at"`
}

// Contact carries what the lifecycle needs to notify a member.
type Contact struct {
	Email    string `db:"email"`
	Name     string `db:"name"`
	PlanName string `db:"plan_name"`
}
