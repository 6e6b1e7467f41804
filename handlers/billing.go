// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/apperr"
	"github.com/danielhkuo/scan-for-a-prize/billing"
	"github.com/danielhkuo/scan-for-a-prize/cliparse"
	"github.com/danielhkuo/scan-for-a-prize/middleware"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

// maxWebhookBytes caps the webhook body read.
const maxWebhookBytes = 64 << 10

type BillingHandler struct {
	db      *gorm.DB
	cfg     cliparse.Config
	billing *billing.Service
}

func NewBillingHandler(db *gorm.DB, cfg cliparse.Config, svc *billing.Service) *BillingHandler {
	return &BillingHandler{db: db, cfg: cfg, billing: svc}
}

// SubscriptionAction handles POST /admin/subscription with
// {action: upgrade|cancel|manage}
func (h *BillingHandler) SubscriptionAction(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	var req models.SubscriptionActionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	switch req.Action {
	case "upgrade":
		session, err := h.billing.Checkout(ctx, &user, "", billing.PlanMulti)
		if err != nil {
			writeError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.RedirectResponse{Success: true, RedirectURL: session.URL})

	case "cancel":
		if err := h.billing.Cancel(ctx, &user); err != nil {
			writeError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.RedirectResponse{Success: true, Message: "Subscription canceled"})

	case "manage":
		portal, err := h.billing.PortalURL(ctx, &user)
		if err != nil {
			writeError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.RedirectResponse{Success: true, RedirectURL: portal})
	}
}

// CreateCheckoutSession handles POST /create-checkout-session
func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	var req models.CheckoutSessionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	if _, err := ownedProperty(ctx, h.db, user, req.PropertyID); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.billing.Checkout(ctx, &user, req.PropertyID, req.PlanType)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CheckoutSessionResponse{SessionID: session.ID, URL: session.URL})
}

// StripeWebhook handles POST /webhooks/stripe
func (h *BillingHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		writeError(w, apperr.Validation("Missing Stripe-Signature header"))
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindValidation, "Unreadable webhook payload", err))
		return
	}

	applied, err := h.billing.HandleWebhook(r.Context(), payload, signature)
	if err != nil {
		writeError(w, err)
		return
	}
	if !applied {
		slog.Info("duplicate webhook acknowledged")
	}

	middleware.JSONResponse(w, http.StatusOK, models.WebhookResponse{Received: true, Duplicate: !applied})
}
