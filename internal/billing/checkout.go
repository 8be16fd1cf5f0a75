package billing

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"fitpass/internal/logger"
	"fitpass/internal/metrics"
	"fitpass/internal/plan"
)

// Checkout builds processor checkout sessions for plan purchases.
type Checkout struct {
	syncer     *Syncer
	resolver   *Resolver
	processor  Processor
	successURL string
	cancelURL  string
}

func NewCheckout(syncer *Syncer, resolver *Resolver, processor Processor, successURL, cancelURL string) *Checkout {
	return &Checkout{
		syncer:     syncer,
		resolver:   resolver,
		processor:  processor,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateCheckout syncs the plan if needed and opens a session on the
// gym's connected account. The same metadata goes on the session and on
// the subscription it creates, so both checkout.session.completed and
// the later subscription events can find their way back.
func (c *Checkout) CreateCheckout(ctx context.Context, gymID, memberID, planID int, locationID *int) (*CheckoutSession, error) {
	acct, err := c.resolver.Resolve(ctx, gymID, locationID)
	if err != nil {
		return nil, err
	}

	p, err := c.syncer.SyncPlan(ctx, planID, locationID)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"gym_id":    strconv.Itoa(gymID),
		"member_id": strconv.Itoa(memberID),
		"plan_id":   strconv.Itoa(planID),
	}
	if locationID != nil {
		metadata["location_id"] = strconv.Itoa(*locationID)
	}

	sess, err := c.processor.CreateCheckoutSession(ctx, acct.AccountRef, CheckoutInput{
		PriceRef:       p.ExternalPriceRef,
		Subscription:   p.PlanType == plan.TypeRecurring,
		SuccessURL:     c.successURL,
		CancelURL:      c.cancelURL,
		IdempotencyKey: uuid.NewString(),
		Metadata:       metadata,
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCheckoutSession()
	logger.Info("Checkout session created",
		"session_id", sess.ID,
		"gym_id", gymID,
		"member_id", memberID,
		"plan_id", planID,
	)
	return sess, nil
}
