package billing

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/price"
	"github.com/stripe/stripe-go/v82/product"
)

// StripeProcessor implements Processor on the Stripe API. Every call is
// issued against the resolved connected account, never the platform
// account.
type StripeProcessor struct{}

func NewStripeProcessor(apiKey string) *StripeProcessor {
	stripe.Key = apiKey
	return &StripeProcessor{}
}

func (p *StripeProcessor) CreateProduct(_ context.Context, accountRef string, in ProductInput) (string, error) {
	params := &stripe.ProductParams{
		Name:        stripe.String(in.Name),
		Description: stripe.String(in.Description),
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.SetStripeAccount(accountRef)

	prod, err := product.New(params)
	if err != nil {
		return "", fmt.Errorf("billing: create stripe product: %w", err)
	}
	return prod.ID, nil
}

func (p *StripeProcessor) UpdateProduct(_ context.Context, accountRef, productRef string, in ProductInput) error {
	params := &stripe.ProductParams{
		Name:        stripe.String(in.Name),
		Description: stripe.String(in.Description),
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.SetStripeAccount(accountRef)

	if _, err := product.Update(productRef, params); err != nil {
		return fmt.Errorf("billing: update stripe product: %w", err)
	}
	return nil
}

func (p *StripeProcessor) CreatePrice(_ context.Context, accountRef string, in PriceInput) (string, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(in.ProductRef),
		UnitAmount: stripe.Int64(in.AmountCents),
		Currency:   stripe.String(in.Currency),
	}
	if in.Recurring {
		params.Recurring = &stripe.PriceRecurringParams{
			Interval: stripe.String(in.Interval),
		}
	}
	params.SetStripeAccount(accountRef)

	pr, err := price.New(params)
	if err != nil {
		return "", fmt.Errorf("billing: create stripe price: %w", err)
	}
	return pr.ID, nil
}

func (p *StripeProcessor) CreateCheckoutSession(_ context.Context, accountRef string, in CheckoutInput) (*CheckoutSession, error) {
	mode := stripe.CheckoutSessionModePayment
	if in.Subscription {
		mode = stripe.CheckoutSessionModeSubscription
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(mode)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(in.PriceRef),
				Quantity: stripe.Int64(1),
			},
		},
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	if in.Subscription {
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: in.Metadata,
		}
	}
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}
	params.SetStripeAccount(accountRef)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("billing: create checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}
