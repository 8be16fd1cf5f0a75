package billing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"fitpass/internal/api"
	"fitpass/internal/logger"
	"fitpass/internal/metrics"
)

// Invoice payloads with many line items run well past 64KiB; a truncated
// body fails signature verification and Stripe retries the event forever.
const maxWebhookBody = 1 << 20

// LifecycleService is the membership state machine driven by webhooks.
type LifecycleService interface {
	CheckoutCompleted(ctx context.Context, gymID, memberID, planID int, subRef, custRef string) error
	InvoicePaid(ctx context.Context, subRef string) error
	PaymentFailed(ctx context.Context, subRef string) error
	SubscriptionUpdated(ctx context.Context, subRef, processorStatus string) error
	SubscriptionDeleted(ctx context.Context, subRef string) error
}

type WebhookHandler struct {
	secret    string
	events    EventStore
	lifecycle LifecycleService
}

func NewWebhookHandler(secret string, events EventStore, lifecycle LifecycleService) *WebhookHandler {
	return &WebhookHandler{secret: secret, events: events, lifecycle: lifecycle}
}

// Handle is the single processor-facing endpoint. The signature check
// runs on the raw body before any JSON parsing. Ошибка диспатча
// отпускает claim и возвращает 500 — процессор доставит событие ещё раз.
func (h *WebhookHandler) Handle(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "failed to read body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, c.GetHeader("Stripe-Signature"), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		logger.Errorf("Webhook signature verification failed: %v", err)
		metrics.RecordWebhookEvent("unknown", "bad_signature")
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid signature"})
		return
	}

	eventType := string(event.Type)
	ctx := c.Request.Context()

	claimed, err := h.events.Claim(ctx, event.ID, eventType)
	if err != nil {
		logger.Errorf("Failed to claim webhook event %s: %v", event.ID, err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to record event"})
		return
	}
	if !claimed {
		metrics.RecordWebhookEvent(eventType, "duplicate")
		c.JSON(http.StatusOK, api.MessageResponse{Message: "already processed"})
		return
	}

	if err := h.dispatch(ctx, &event); err != nil {
		logger.Errorf("Webhook %s (%s) dispatch failed: %v", event.ID, eventType, err)
		if relErr := h.events.Release(ctx, event.ID); relErr != nil {
			logger.Errorf("Failed to release webhook claim %s: %v", event.ID, relErr)
		}
		metrics.RecordWebhookEvent(eventType, "error")
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "event processing failed"})
		return
	}

	metrics.RecordWebhookEvent(eventType, "ok")
	c.JSON(http.StatusOK, api.MessageResponse{Message: "processed"})
}

// checkoutSessionEnvelope pulls only what the lifecycle needs out of
// the session object.
type checkoutSessionEnvelope struct {
	Metadata     map[string]string `json:"metadata"`
	Subscription json.RawMessage   `json:"subscription"`
	Customer     json.RawMessage   `json:"customer"`
}

type subscriptionEnvelope struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// invoiceEnvelope covers both invoice shapes: the legacy top-level
// subscription field and the newer parent.subscription_details path.
type invoiceEnvelope struct {
	Subscription json.RawMessage `json:"subscription"`
	Parent       struct {
		SubscriptionDetails struct {
			Subscription json.RawMessage `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

// refFromRaw accepts either an expandable id string or an expanded
// object with an id.
func refFromRaw(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ID
	}
	return ""
}

func (e *invoiceEnvelope) subscriptionRef() string {
	if ref := refFromRaw(e.Subscription); ref != "" {
		return ref
	}
	return refFromRaw(e.Parent.SubscriptionDetails.Subscription)
}

func (h *WebhookHandler) dispatch(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		return h.checkoutCompleted(ctx, event)

	case "invoice.paid":
		env := &invoiceEnvelope{}
		if err := json.Unmarshal(event.Data.Raw, env); err != nil {
			return err
		}
		ref := env.subscriptionRef()
		if ref == "" {
			// One-time payment invoices carry no subscription.
			logger.Info("invoice.paid without subscription ref", "event_id", event.ID)
			return nil
		}
		return h.lifecycle.InvoicePaid(ctx, ref)

	case "invoice.payment_failed":
		env := &invoiceEnvelope{}
		if err := json.Unmarshal(event.Data.Raw, env); err != nil {
			return err
		}
		ref := env.subscriptionRef()
		if ref == "" {
			logger.Info("invoice.payment_failed without subscription ref", "event_id", event.ID)
			return nil
		}
		return h.lifecycle.PaymentFailed(ctx, ref)

	case "customer.subscription.updated":
		env := &subscriptionEnvelope{}
		if err := json.Unmarshal(event.Data.Raw, env); err != nil {
			return err
		}
		return h.lifecycle.SubscriptionUpdated(ctx, env.ID, env.Status)

	case "customer.subscription.deleted":
		env := &subscriptionEnvelope{}
		if err := json.Unmarshal(event.Data.Raw, env); err != nil {
			return err
		}
		return h.lifecycle.SubscriptionDeleted(ctx, env.ID)

	default:
		metrics.RecordWebhookEvent(string(event.Type), "ignored")
		return nil
	}
}

func (h *WebhookHandler) checkoutCompleted(ctx context.Context, event *stripe.Event) error {
	env := &checkoutSessionEnvelope{}
	if err := json.Unmarshal(event.Data.Raw, env); err != nil {
		return err
	}

	gymID, err1 := strconv.Atoi(env.Metadata["gym_id"])
	memberID, err2 := strconv.Atoi(env.Metadata["member_id"])
	planID, err3 := strconv.Atoi(env.Metadata["plan_id"])
	if err1 != nil || err2 != nil || err3 != nil {
		// Session created outside this system; nothing to reconcile.
		logger.Info("checkout.session.completed without fitpass metadata", "event_id", event.ID)
		metrics.RecordWebhookLookupMiss("checkout.session.completed")
		return nil
	}

	subRef := refFromRaw(env.Subscription)
	custRef := refFromRaw(env.Customer)

	return h.lifecycle.CheckoutCompleted(ctx, gymID, memberID, planID, subRef, custRef)
}
