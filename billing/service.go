// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danielhkuo/scan-for-a-prize/apperr"
	"github.com/danielhkuo/scan-for-a-prize/auth"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

// Plans maps a plan name to a provider price id.
type Plans map[string]string

const (
	PlanSingle = "single"
	PlanMulti  = "multi"
)

// Service applies subscription actions and webhook events to local state.
type Service struct {
	db       *gorm.DB
	provider Provider
	plans    Plans
	baseURL  string
}

// NewService returns a Service. A nil provider disables billing: every call
// fails with ErrNotConfigured.
func NewService(db *gorm.DB, provider Provider, plans Plans, baseURL string) *Service {
	return &Service{db: db, provider: provider, plans: plans, baseURL: baseURL}
}

func (s *Service) available() error {
	if s.provider == nil {
		return apperr.Wrap(apperr.KindUnavailable, "Billing is not configured", ErrNotConfigured)
	}
	return nil
}

// EnsureCustomer returns the user's provider customer id, creating it once.
func (s *Service) EnsureCustomer(ctx context.Context, user *models.User) (string, error) {
	if err := s.available(); err != nil {
		return "", err
	}
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	customerID, err := s.provider.CreateCustomer(ctx, user.Email, user.ID)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).
		Update("stripe_customer_id", customerID).Error; err != nil {
		return "", fmt.Errorf("failed to store customer id: %w", err)
	}
	user.StripeCustomerID = &customerID
	return customerID, nil
}

// Checkout starts a subscription checkout for user. propertyID may be empty
// for an account-wide upgrade.
func (s *Service) Checkout(ctx context.Context, user *models.User, propertyID, plan string) (CheckoutSession, error) {
	if err := s.available(); err != nil {
		return CheckoutSession{}, err
	}
	price, ok := s.plans[plan]
	if !ok || price == "" {
		return CheckoutSession{}, apperr.Validation("Invalid plan type")
	}

	customerID, err := s.EnsureCustomer(ctx, user)
	if err != nil {
		return CheckoutSession{}, err
	}

	q := url.Values{}
	if propertyID != "" {
		q.Set("propertyId", propertyID)
	}
	success := url.Values{"success": {"true"}}
	canceled := url.Values{"canceled": {"true"}}
	for k, v := range q {
		success[k] = v
		canceled[k] = v
	}

	metadata := map[string]string{"userId": user.ID, "planType": plan}
	if propertyID != "" {
		metadata["propertyId"] = propertyID
	}

	session, err := s.provider.CreateCheckoutSession(ctx, CheckoutParams{
		CustomerID: customerID,
		PriceID:    price,
		SuccessURL: s.baseURL + "/dashboard?" + success.Encode(),
		CancelURL:  s.baseURL + "/dashboard?" + canceled.Encode(),
		Metadata:   metadata,
	})
	if err != nil {
		return CheckoutSession{}, err
	}
	slog.Info("checkout session created", "user_id", user.ID, "plan", plan, "session_id", session.ID)
	return session, nil
}

// Cancel cancels the user's active subscriptions and clears paid access.
func (s *Service) Cancel(ctx context.Context, user *models.User) error {
	if err := s.available(); err != nil {
		return err
	}

	var subs []models.Subscription
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", user.ID, []string{"active", "trialing", "past_due"}).
		Find(&subs).Error; err != nil {
		return fmt.Errorf("failed to load subscriptions: %w", err)
	}

	states := make([]SubscriptionState, 0, len(subs))
	for _, sub := range subs {
		state, err := s.provider.CancelSubscription(ctx, sub.StripeSubscriptionID)
		if err != nil {
			return err
		}
		states = append(states, state)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, state := range states {
			if err := updateSubscription(tx, state); err != nil {
				return err
			}
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).Update("is_subscribed", false).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record cancellation: %w", err)
	}
	user.IsSubscribed = false
	slog.Info("subscription canceled", "user_id", user.ID, "subscriptions", len(states))
	return nil
}

// PortalURL opens a billing portal session for the user.
func (s *Service) PortalURL(ctx context.Context, user *models.User) (string, error) {
	customerID, err := s.EnsureCustomer(ctx, user)
	if err != nil {
		return "", err
	}
	return s.provider.CreatePortalSession(ctx, customerID, s.baseURL+"/admin")
}

// HandleWebhook verifies and applies a webhook. It reports false when the
// event was already processed.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (bool, error) {
	if err := s.available(); err != nil {
		return false, err
	}
	ev, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return false, apperr.Wrap(apperr.KindValidation, "Invalid signature", err)
	}

	// Fetch outside the transaction so no provider call holds a connection.
	if ev.Checkout != nil && ev.Checkout.Subscription && ev.Checkout.SubscriptionID != "" {
		state, err := s.provider.GetSubscription(ctx, ev.Checkout.SubscriptionID)
		if err != nil {
			return false, err
		}
		ev.Subscription = &state
	}

	return Apply(ctx, s.db, ev)
}

// Apply records ev and updates users and subscriptions. Replayed event ids
// are acknowledged without changes.
func Apply(ctx context.Context, db *gorm.DB, ev Event) (bool, error) {
	applied := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payload := ev.Raw
		if len(payload) == 0 {
			payload = []byte("{}")
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.BillingEvent{
			ID:      ev.ID,
			Type:    ev.Type,
			Payload: datatypes.JSON(payload),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		switch ev.Type {
		case EventCheckoutCompleted:
			return applyCheckout(tx, ev)
		case EventSubscriptionUpdated, EventSubscriptionDeleted:
			if ev.Subscription == nil {
				return nil
			}
			return applySubscriptionChange(tx, *ev.Subscription)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to apply billing event %s: %w", ev.ID, err)
	}
	if applied {
		slog.Info("billing event applied", "event_id", ev.ID, "type", ev.Type)
	} else {
		slog.Info("billing event already processed", "event_id", ev.ID)
	}
	return applied, nil
}

func applyCheckout(tx *gorm.DB, ev Event) error {
	c := ev.Checkout
	if c == nil || !c.Subscription {
		return nil
	}
	userID := c.Metadata["userId"]
	if userID == "" || ev.Subscription == nil {
		slog.Warn("checkout completed without user or subscription", "session_id", c.SessionID)
		return nil
	}

	if c.CustomerID != "" {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("stripe_customer_id", c.CustomerID).Error; err != nil {
			return err
		}
	}

	sub := models.Subscription{
		ID:                   auth.NewID(),
		UserID:               userID,
		StripeSubscriptionID: ev.Subscription.ID,
		Status:               ev.Subscription.Status,
	}
	if pid := c.Metadata["propertyId"]; pid != "" {
		sub.PropertyID = &pid
	}
	if !ev.Subscription.CurrentPeriodEnd.IsZero() {
		end := ev.Subscription.CurrentPeriodEnd
		sub.CurrentPeriodEnd = &end
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "current_period_end", "updated_at"}),
	}).Create(&sub).Error
	if err != nil {
		return err
	}
	return syncSubscribed(tx, userID)
}

func applySubscriptionChange(tx *gorm.DB, state SubscriptionState) error {
	if err := updateSubscription(tx, state); err != nil {
		return err
	}

	var sub models.Subscription
	err := tx.Where("stripe_subscription_id = ?", state.ID).Take(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Warn("subscription change for unknown subscription", "subscription_id", state.ID)
		return nil
	}
	if err != nil {
		return err
	}
	return syncSubscribed(tx, sub.UserID)
}

// syncSubscribed sets is_subscribed from all of the user's subscriptions, so
// one ending does not revoke access another still pays for.
func syncSubscribed(tx *gorm.DB, userID string) error {
	var active int64
	err := tx.Model(&models.Subscription{}).
		Where("user_id = ? AND status IN ?", userID, activeStatuses).
		Count(&active).Error
	if err != nil {
		return fmt.Errorf("failed to count active subscriptions: %w", err)
	}
	return tx.Model(&models.User{}).Where("id = ?", userID).Update("is_subscribed", active > 0).Error
}

func updateSubscription(tx *gorm.DB, state SubscriptionState) error {
	updates := map[string]any{"status": state.Status, "updated_at": time.Now().UTC()}
	if !state.CurrentPeriodEnd.IsZero() {
		updates["current_period_end"] = state.CurrentPeriodEnd
	}
	return tx.Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", state.ID).
		Updates(updates).Error
}
