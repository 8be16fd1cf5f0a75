package plan

import "time"

type PlanType string

const (
	TypeOneTime   PlanType = "one_time"
	TypeRecurring PlanType = "recurring"
)

type BillingInterval string

const (
	IntervalWeekly  BillingInterval = "weekly"
	IntervalMonthly BillingInterval = "monthly"
	IntervalYearly  BillingInterval = "yearly"
)

// Plan — тариф абонемента зала.
// external_price_ref никогда не меняется на месте: смена цены очищает
// ссылку, и синхронизатор создаёт новую цену у процессора. Старая цена
// остаётся — её могут использовать существующие подписки.
type Plan struct {
	ID                 int             `db:"id" json:"id"`
	GymID              int             `db:"gym_id" json:"gym_id"`
	Name               string          `db:"name" json:"name"`
	Description        string          `db:"description" json:"description"`
	PriceCents         int64           `db:"price_cents" json:"price_cents"`
	Currency           string          `db:"currency" json:"currency"`
	PlanType           PlanType        `db:"plan_type" json:"plan_type"`
	BillingInterval    BillingInterval `db:"billing_interval" json:"billing_interval"`
	IncludedClasses    *int64          `db:"included_classes" json:"included_classes,omitempty"`
	ExternalProductRef string          `db:"external_product_ref" json:"external_product_ref,omitempty"`
	ExternalPriceRef   string          `db:"external_price_ref" json:"external_price_ref,omitempty"`
	Active             bool            `db:"active" json:"active"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

type CreatePlanRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents" binding:"required,gt=0"`
	Currency        string `json:"currency"`
	PlanType        string `json:"plan_type" binding:"required,oneof=one_time recurring"`
	BillingInterval string `json:"billing_interval"`
	IncludedClasses *int64 `json:"included_classes,omitempty"`
}

type UpdatePlanRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents" binding:"required,gt=0"`
	IncludedClasses *int64 `json:"included_classes,omitempty"`
	Active          *bool  `json:"active,omitempty"`
}
