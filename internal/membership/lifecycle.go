package membership

import (
	"context"
	"errors"
	"time"

	"fitpass/internal/logger"
	"fitpass/internal/metrics"
	"fitpass/internal/plan"
)

// Notifier is the outbound notification channel (email in production).
type Notifier interface {
	SendPaymentFailed(ctx context.Context, email, name, planName string) error
}

// Lifecycle is the membership state machine. Every transition is driven
// by processor webhooks; the browser client never moves a membership to
// active itself.
type Lifecycle struct {
	repo     Store
	plans    plan.Store
	notifier Notifier
}

func NewLifecycle(repo Store, plans plan.Store, notifier Notifier) *Lifecycle {
	return &Lifecycle{repo: repo, plans: plans, notifier: notifier}
}

// periodEnd returns the end of one billing period starting at from.
// One-time plans and unrecognized intervals produce a non-expiring
// membership.
func periodEnd(p *plan.Plan, from time.Time) *time.Time {
	if p.PlanType != plan.TypeRecurring {
		return nil
	}

	var end time.Time
	switch p.BillingInterval {
	case plan.IntervalWeekly:
		end = from.AddDate(0, 0, 7)
	case plan.IntervalMonthly:
		end = from.AddDate(0, 1, 0)
	case plan.IntervalYearly:
		end = from.AddDate(1, 0, 0)
	default:
		return nil
	}
	return &end
}

// CheckoutCompleted activates (or reactivates) the membership for the
// (member, plan) pair and sets the first period's entitlement. The
// credits are an allocation, not a ledger movement, so no credit
// transaction is written here.
func (l *Lifecycle) CheckoutCompleted(ctx context.Context, gymID, memberID, planID int, subRef, custRef string) error {
	p, err := l.plans.GetByID(ctx, planID)
	if err != nil {
		return err
	}

	end := periodEnd(p, time.Now())

	ms, err := l.repo.UpsertActive(ctx, gymID, memberID, planID, subRef, custRef, end, p.IncludedClasses)
	if err != nil {
		return err
	}

	if err := l.repo.SetMemberEntitlement(ctx, memberID, p.IncludedClasses, p.IncludedClasses == nil); err != nil {
		return err
	}

	logger.Info("Membership activated",
		"membership_id", ms.ID,
		"member_id", memberID,
		"plan_id", planID,
		"subscription_ref", subRef,
	)
	return nil
}

// InvoicePaid renews the period. The end date extends from now, not
// from the previous end date; the source system behaves this way and a
// late invoice therefore shifts rather than compounds the period.
// Кредиты сбрасываются к норме тарифа, а не добавляются сверху.
func (l *Lifecycle) InvoicePaid(ctx context.Context, subRef string) error {
	ms, err := l.repo.GetBySubscriptionRef(ctx, subRef)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			// Benign race with checkout.session.completed.
			logger.Info("invoice.paid for unknown subscription", "subscription_ref", subRef)
			metrics.RecordWebhookLookupMiss("invoice.paid")
			return nil
		}
		return err
	}

	if ms.Status == StatusCancelled {
		logger.Info("invoice.paid ignored for cancelled membership", "membership_id", ms.ID)
		return nil
	}

	p, err := l.plans.GetByID(ctx, ms.PlanID)
	if err != nil {
		return err
	}

	end := periodEnd(p, time.Now())
	if err := l.repo.Renew(ctx, ms.ID, end, p.IncludedClasses); err != nil {
		return err
	}

	if err := l.repo.SetMemberEntitlement(ctx, ms.MemberID, p.IncludedClasses, p.IncludedClasses == nil); err != nil {
		return err
	}

	logger.Info("Membership renewed", "membership_id", ms.ID, "subscription_ref", subRef)
	return nil
}

// PaymentFailed degrades the status but keeps already-granted credits:
// access runs out with the credits, never retroactively.
func (l *Lifecycle) PaymentFailed(ctx context.Context, subRef string) error {
	ms, err := l.repo.GetBySubscriptionRef(ctx, subRef)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			logger.Info("invoice.payment_failed for unknown subscription", "subscription_ref", subRef)
			metrics.RecordWebhookLookupMiss("invoice.payment_failed")
			return nil
		}
		return err
	}

	if ms.Status == StatusCancelled {
		return nil
	}

	if err := l.repo.SetStatus(ctx, ms.ID, StatusPaymentFailed); err != nil {
		return err
	}

	if l.notifier != nil {
		if contact, err := l.repo.GetContact(ctx, ms.ID); err == nil {
			if err := l.notifier.SendPaymentFailed(ctx, contact.Email, contact.Name, contact.PlanName); err != nil {
				logger.Errorf("Failed to queue payment-failed notice for membership %d: %v", ms.ID, err)
			}
		}
	}

	logger.Info("Membership payment failed", "membership_id", ms.ID, "subscription_ref", subRef)
	return nil
}

// SubscriptionUpdated maps the processor status vocabulary onto ours.
// Unknown values are stored verbatim so a new processor status does not
// break the pipeline.
func (l *Lifecycle) SubscriptionUpdated(ctx context.Context, subRef, processorStatus string) error {
	ms, err := l.repo.GetBySubscriptionRef(ctx, subRef)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			logger.Info("subscription.updated for unknown subscription", "subscription_ref", subRef)
			metrics.RecordWebhookLookupMiss("customer.subscription.updated")
			return nil
		}
		return err
	}

	if ms.Status == StatusCancelled {
		// Terminal: a returning member needs a new checkout.
		return nil
	}

	switch processorStatus {
	case "active":
		return l.repo.SetStatus(ctx, ms.ID, StatusActive)
	case "past_due", "unpaid":
		return l.repo.SetStatus(ctx, ms.ID, StatusPaymentFailed)
	case "canceled":
		return l.repo.Cancel(ctx, ms.ID, time.Now())
	default:
		return l.repo.SetStatus(ctx, ms.ID, Status(processorStatus))
	}
}

// SubscriptionDeleted is terminal.
func (l *Lifecycle) SubscriptionDeleted(ctx context.Context, subRef string) error {
	ms, err := l.repo.GetBySubscriptionRef(ctx, subRef)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			logger.Info("subscription.deleted for unknown subscription", "subscription_ref", subRef)
			metrics.RecordWebhookLookupMiss("customer.subscription.deleted")
			return nil
		}
		return err
	}

	if ms.Status == StatusCancelled {
		return nil
	}

	if err := l.repo.Cancel(ctx, ms.ID, time.Now()); err != nil {
		return err
	}

	logger.Info("Membership cancelled", "membership_id", ms.ID, "subscription_ref", subRef)
	return nil
}
