package billing

import (
	"context"
	"fmt"
	"strconv"

	"fitpass/internal/logger"
	"fitpass/internal/plan"
)

// Syncer mirrors plans into the processor catalog of the gym's
// connected account.
type Syncer struct {
	plans     plan.Store
	resolver  *Resolver
	processor Processor
}

func NewSyncer(plans plan.Store, resolver *Resolver, processor Processor) *Syncer {
	return &Syncer{plans: plans, resolver: resolver, processor: processor}
}

func planMetadata(p *plan.Plan, locationID *int) map[string]string {
	locVal := "all"
	if locationID != nil {
		locVal = strconv.Itoa(*locationID)
	}
	return map[string]string{
		"gym_id":      strconv.Itoa(p.GymID),
		"plan_id":     strconv.Itoa(p.ID),
		"location_id": locVal,
	}
}

func processorInterval(i plan.BillingInterval) string {
	switch i {
	case plan.IntervalWeekly:
		return "week"
	case plan.IntervalYearly:
		return "year"
	default:
		return "month"
	}
}

// SyncPlan creates or updates the processor product for the plan and
// mints a price when none is bound. A bound price is reused as-is:
// prices never change in place, a price change clears the ref first
// (см. plan.Update) и здесь чеканится новая.
func (s *Syncer) SyncPlan(ctx context.Context, planID int, locationID *int) (*plan.Plan, error) {
	p, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	acct, err := s.resolver.Resolve(ctx, p.GymID, locationID)
	if err != nil {
		return nil, err
	}

	in := ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Metadata:    planMetadata(p, locationID),
	}

	productRef := p.ExternalProductRef
	if productRef == "" {
		productRef, err = s.processor.CreateProduct(ctx, acct.AccountRef, in)
		if err != nil {
			return nil, err
		}
	} else {
		if err := s.processor.UpdateProduct(ctx, acct.AccountRef, productRef, in); err != nil {
			return nil, err
		}
	}

	priceRef := p.ExternalPriceRef
	if priceRef == "" {
		currency := p.Currency
		if currency == "" {
			currency = acct.Currency
		}
		priceRef, err = s.processor.CreatePrice(ctx, acct.AccountRef, PriceInput{
			ProductRef:  productRef,
			AmountCents: p.PriceCents,
			Currency:    currency,
			Recurring:   p.PlanType == plan.TypeRecurring,
			Interval:    processorInterval(p.BillingInterval),
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.plans.SetExternalRefs(ctx, p.ID, productRef, priceRef); err != nil {
		return nil, fmt.Errorf("billing: persist external refs for plan %d: %w", p.ID, err)
	}

	p.ExternalProductRef = productRef
	p.ExternalPriceRef = priceRef

	logger.Info("Plan synced to processor",
		"plan_id", p.ID,
		"product_ref", productRef,
		"price_ref", priceRef,
		"account_ref", acct.AccountRef,
	)
	return p, nil
}
