// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/stripe/stripe-go/v76"
)

var (
	ErrNotConfigured    = errors.New("billing is not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Event types the service acts on
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

type Provider interface {
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (SubscriptionState, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (SubscriptionState, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	ParseWebhook(payload []byte, signature string) (Event, error)
}

type CheckoutParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type SubscriptionState struct {
	ID               string
	CustomerID       string
	Status           string
	CurrentPeriodEnd time.Time
	Metadata         map[string]string
}

// Active reports whether the subscription grants paid access.
func (s SubscriptionState) Active() bool {
	return slices.Contains(activeStatuses, s.Status)
}

// activeStatuses are the subscription statuses that grant paid access.
var activeStatuses = []string{
	string(stripe.SubscriptionStatusActive),
	string(stripe.SubscriptionStatusTrialing),
}

// CheckoutCompleted is the part of a completed checkout session we use.
type CheckoutCompleted struct {
	SessionID      string
	Subscription   bool
	SubscriptionID string
	CustomerID     string
	Metadata       map[string]string
}

// Event is a verified webhook event.
type Event struct {
	ID           string
	Type         string
	Raw          json.RawMessage
	Checkout     *CheckoutCompleted
	Subscription *SubscriptionState
}

// decodeEvent extracts the typed object for the event types we handle.
func decodeEvent(ev stripe.Event) (Event, error) {
	out := Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}
	out.Raw = ev.Data.Raw

	switch out.Type {
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return Event{}, fmt.Errorf("failed to decode checkout session: %w", err)
		}
		c := &CheckoutCompleted{
			SessionID:    cs.ID,
			Subscription: cs.Mode == stripe.CheckoutSessionModeSubscription,
			Metadata:     cs.Metadata,
		}
		if cs.Subscription != nil {
			c.SubscriptionID = cs.Subscription.ID
		}
		if cs.Customer != nil {
			c.CustomerID = cs.Customer.ID
		}
		out.Checkout = c

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return Event{}, fmt.Errorf("failed to decode subscription: %w", err)
		}
		s := subscriptionState(&sub)
		out.Subscription = &s
	}
	return out, nil
}

func subscriptionState(sub *stripe.Subscription) SubscriptionState {
	s := SubscriptionState{
		ID:       sub.ID,
		Status:   string(sub.Status),
		Metadata: sub.Metadata,
	}
	if sub.CurrentPeriodEnd > 0 {
		s.CurrentPeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	if sub.Customer != nil {
		s.CustomerID = sub.Customer.ID
	}
	return s
}
