// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/billing"
	"github.com/danielhkuo/scan-for-a-prize/models"
	"github.com/danielhkuo/scan-for-a-prize/testutil"
)

func newBillingHandler(t *testing.T, provider billing.Provider) (*BillingHandler, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	svc := billing.NewService(db, provider, billing.Plans{
		billing.PlanSingle: cfg.StripePriceSingle,
		billing.PlanMulti:  cfg.StripePriceMulti,
	}, cfg.BaseURL)
	return NewBillingHandler(db, cfg, svc), db
}

func TestSubscriptionAction(t *testing.T) {
	fake := billing.NewFake()
	handler, db := newBillingHandler(t, fake)
	user := testutil.CreateTestUser(t, db, "agent@x.com", models.RoleRealtor, false)

	tests := []struct {
		name         string
		action       string
		wantStatus   int
		wantRedirect string
	}{
		{"upgrade", "upgrade", http.StatusOK, "https://checkout.stripe.test/"},
		{"manage", "manage", http.StatusOK, "https://billing.stripe.test/session/"},
		{"cancel", "cancel", http.StatusOK, ""},
		{"unknown", "refund", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := reloadUser(t, db, user.ID)
			req := testutil.MakeRequest("POST", "/admin/subscription", map[string]string{"action": tt.action}, nil)
			w := call(handler.SubscriptionAction, req, &current, nil)
			testutil.AssertStatus(t, w, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp models.RedirectResponse
			testutil.AssertJSON(t, w, &resp)
			if !strings.HasPrefix(resp.RedirectURL, tt.wantRedirect) {
				t.Errorf("Expected redirect %s..., got %s", tt.wantRedirect, resp.RedirectURL)
			}
		})
	}

	if len(fake.Checkouts) != 1 || fake.Checkouts[0].PriceID != "price_multi" {
		t.Errorf("Expected one multi-plan checkout, got %+v", fake.Checkouts)
	}
	if len(fake.Customers) != 1 {
		t.Errorf("Expected customer created once, got %d", len(fake.Customers))
	}
}

func TestSubscriptionActionBillingDisabled(t *testing.T) {
	handler, db := newBillingHandler(t, nil)
	user := testutil.CreateTestUser(t, db, "agent@x.com", models.RoleRealtor, false)

	req := testutil.MakeRequest("POST", "/admin/subscription", map[string]string{"action": "upgrade"}, nil)
	w := call(handler.SubscriptionAction, req, &user, nil)
	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
}

func TestCreateCheckoutSession(t *testing.T) {
	fake := billing.NewFake()
	handler, db := newBillingHandler(t, fake)
	owner := testutil.CreateTestUser(t, db, "agent@x.com", models.RoleRealtor, false)
	other := testutil.CreateTestUser(t, db, "other@x.com", models.RoleRealtor, false)
	p := testutil.CreateTestProperty(t, db, testutil.WithOwner(owner.ID))

	tests := []struct {
		name       string
		user       models.User
		body       map[string]string
		wantStatus int
	}{
		{"single plan", owner, map[string]string{"propertyId": p.ID, "planType": "single"}, http.StatusOK},
		{"invalid plan", owner, map[string]string{"propertyId": p.ID, "planType": "gold"}, http.StatusBadRequest},
		{"not owner", other, map[string]string{"propertyId": p.ID, "planType": "single"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/create-checkout-session", tt.body, nil)
			w := call(handler.CreateCheckoutSession, req, &tt.user, nil)
			testutil.AssertStatus(t, w, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp models.CheckoutSessionResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.SessionID == "" || resp.URL == "" {
				t.Errorf("Expected session, got %+v", resp)
			}
		})
	}

	if len(fake.Checkouts) != 1 {
		t.Fatalf("Expected 1 checkout, got %d", len(fake.Checkouts))
	}
	if got := fake.Checkouts[0].Metadata["propertyId"]; got != p.ID {
		t.Errorf("Expected property metadata %s, got %s", p.ID, got)
	}
}

func checkoutCompleted(eventID, userID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"mode": "subscription",
			"customer": "cus_42",
			"subscription": "sub_1",
			"metadata": {"userId": %q, "planType": "multi"}
		}}
	}`, eventID, userID))
}

func webhookRequest(payload []byte, signature string) *http.Request {
	req := httptest.NewRequest("POST", "/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	return req
}

func TestStripeWebhook(t *testing.T) {
	fake := billing.NewFake()
	fake.Subscriptions["sub_1"] = billing.SubscriptionState{
		ID:               "sub_1",
		Status:           "active",
		CurrentPeriodEnd: time.Now().UTC().Add(30 * 24 * time.Hour),
	}
	handler, db := newBillingHandler(t, fake)
	user := testutil.CreateTestUser(t, db, "agent@x.com", models.RoleRealtor, false)
	payload := checkoutCompleted("evt_1", user.ID)

	tests := []struct {
		name          string
		signature     string
		wantStatus    int
		wantDuplicate bool
	}{
		{"missing signature", "", http.StatusBadRequest, false},
		{"forged signature", "forged", http.StatusBadRequest, false},
		{"first delivery", fake.Signature, http.StatusOK, false},
		{"redelivery", fake.Signature, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(handler.StripeWebhook, webhookRequest(payload, tt.signature), nil, nil)
			testutil.AssertStatus(t, w, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp models.WebhookResponse
			testutil.AssertJSON(t, w, &resp)
			if !resp.Received || resp.Duplicate != tt.wantDuplicate {
				t.Errorf("Unexpected webhook response %+v", resp)
			}
		})
	}

	if u := reloadUser(t, db, user.ID); !u.IsSubscribed {
		t.Error("Expected user subscribed after checkout")
	}
	var subs int64
	db.Model(&models.Subscription{}).Count(&subs)
	if subs != 1 {
		t.Errorf("Expected 1 subscription, got %d", subs)
	}
}
