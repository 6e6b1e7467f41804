// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v76"
)

// Fake is an in-memory Provider. Webhook payloads are Stripe event JSON and
// the signature must equal Signature.
type Fake struct {
	mu sync.Mutex

	Signature     string
	Subscriptions map[string]SubscriptionState
	Err           error

	Customers []string
	Checkouts []CheckoutParams
	Canceled  []string
}

func NewFake() *Fake {
	return &Fake{
		Signature:     "valid-signature",
		Subscriptions: make(map[string]SubscriptionState),
	}
}

func (f *Fake) CreateCustomer(_ context.Context, email, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	id := fmt.Sprintf("cus_%d", len(f.Customers)+1)
	f.Customers = append(f.Customers, email)
	return id, nil
}

func (f *Fake) CreateCheckoutSession(_ context.Context, p CheckoutParams) (CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return CheckoutSession{}, f.Err
	}
	f.Checkouts = append(f.Checkouts, p)
	id := fmt.Sprintf("cs_test_%d", len(f.Checkouts))
	return CheckoutSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

func (f *Fake) GetSubscription(_ context.Context, subscriptionID string) (SubscriptionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return SubscriptionState{}, f.Err
	}
	s, ok := f.Subscriptions[subscriptionID]
	if !ok {
		return SubscriptionState{}, fmt.Errorf("no such subscription: %s", subscriptionID)
	}
	return s, nil
}

func (f *Fake) CancelSubscription(_ context.Context, subscriptionID string) (SubscriptionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return SubscriptionState{}, f.Err
	}
	s, ok := f.Subscriptions[subscriptionID]
	if !ok {
		s = SubscriptionState{ID: subscriptionID, CurrentPeriodEnd: time.Now().UTC()}
	}
	s.Status = string(stripe.SubscriptionStatusCanceled)
	f.Subscriptions[subscriptionID] = s
	f.Canceled = append(f.Canceled, subscriptionID)
	return s, nil
}

func (f *Fake) CreatePortalSession(_ context.Context, customerID, _ string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	return "https://billing.stripe.test/session/" + customerID, nil
}

func (f *Fake) ParseWebhook(payload []byte, signature string) (Event, error) {
	if signature != f.Signature {
		return Event{}, ErrInvalidSignature
	}
	var ev stripe.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return decodeEvent(ev)
}
