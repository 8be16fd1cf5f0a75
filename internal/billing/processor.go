package billing

import "context"

// Processor abstracts the payment processor. All calls are issued on
// behalf of a connected merchant account; stripe types stay inside the
// implementation.
type Processor interface {
	CreateProduct(ctx context.Context, accountRef string, in ProductInput) (string, error)
	UpdateProduct(ctx context.Context, accountRef, productRef string, in ProductInput) error
	CreatePrice(ctx context.Context, accountRef string, in PriceInput) (string, error)
	CreateCheckoutSession(ctx context.Context, accountRef string, in CheckoutInput) (*CheckoutSession, error)
}

type ProductInput struct {
	Name        string
	Description string
	Metadata    map[string]string
}

type PriceInput struct {
	ProductRef  string
	AmountCents int64
	Currency    string
	Recurring   bool
	// Interval uses the processor vocabulary: week, month, year.
	Interval string
}

type CheckoutInput struct {
	PriceRef       string
	Subscription   bool
	SuccessURL     string
	CancelURL      string
	IdempotencyKey string
	// Metadata is attached to both the session and the subscription it
	// creates so webhooks can resolve the membership either way.
	Metadata map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}
