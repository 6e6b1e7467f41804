// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/billing"
	"github.com/danielhkuo/scan-for-a-prize/claims"
	"github.com/danielhkuo/scan-for-a-prize/cliparse"
	"github.com/danielhkuo/scan-for-a-prize/handlers"
	"github.com/danielhkuo/scan-for-a-prize/mailer"
	"github.com/danielhkuo/scan-for-a-prize/media"
	"github.com/danielhkuo/scan-for-a-prize/middleware"
)

// Deps are the outbound integrations. Nil fields fall back to a logging
// mailer, disabled uploads and disabled billing.
type Deps struct {
	Mail    mailer.Sender
	Media   media.Uploader
	Billing billing.Provider
}

func NewRouter(db *gorm.DB, cfg cliparse.Config, deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	if deps.Mail == nil {
		deps.Mail = mailer.Log{}
	}
	if deps.Media == nil {
		deps.Media = media.Disabled{}
	}

	claimsSvc := claims.NewService(db, deps.Mail, cfg.BaseURL)
	billingSvc := billing.NewService(db, deps.Billing, billing.Plans{
		billing.PlanSingle: cfg.StripePriceSingle,
		billing.PlanMulti:  cfg.StripePriceMulti,
	}, cfg.BaseURL)

	// Initialize handlers
	publicHandler := handlers.NewPublicHandler(db, cfg, deps.Mail)
	claimHandler := handlers.NewClaimHandler(db, cfg, claimsSvc)
	dashboardHandler := handlers.NewDashboardHandler(db, cfg)
	propertyHandler := handlers.NewPropertyHandler(db, cfg, deps.Media)
	leadHandler := handlers.NewLeadHandler(db, cfg)
	qrHandler := handlers.NewQRCodeHandler(db, cfg)
	profileHandler := handlers.NewProfileHandler(db, cfg)
	billingHandler := handlers.NewBillingHandler(db, cfg, billingSvc)

	session := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireSession(cfg.SessionSecret, db, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Landing page and lead intake (public)
	mux.HandleFunc("GET /properties/{slug}", middleware.WithLogging(publicHandler.GetProperty))
	mux.HandleFunc("POST /leads", middleware.WithLogging(publicHandler.CreateLead))

	// Claiming and accounts (public)
	mux.HandleFunc("POST /verify-property", middleware.WithLogging(claimHandler.VerifyProperty))
	mux.HandleFunc("POST /claim", middleware.WithLogging(claimHandler.Claim))
	mux.HandleFunc("POST /signup", middleware.WithLogging(claimHandler.Signup))
	mux.HandleFunc("POST /login", middleware.WithLogging(claimHandler.Login))
	mux.HandleFunc("POST /claim-property", middleware.WithLogging(claimHandler.ClaimProperty))
	mux.HandleFunc("GET /verify", middleware.WithLogging(claimHandler.Verify))

	// Realtor dashboard and admin console (session)
	mux.HandleFunc("GET /dashboard", session(dashboardHandler.GetDashboard))
	mux.HandleFunc("GET /admin/properties", session(propertyHandler.ListProperties))
	mux.HandleFunc("POST /admin/properties", session(propertyHandler.CreateProperty))
	mux.HandleFunc("PATCH /admin/properties/{id}", session(propertyHandler.UpdateProperty))
	mux.HandleFunc("DELETE /admin/properties/{id}", session(propertyHandler.DeleteProperty))
	mux.HandleFunc("GET /admin/leads", session(leadHandler.ListLeads))
	mux.HandleFunc("POST /admin/leads", session(leadHandler.ExportLeads))
	mux.HandleFunc("GET /admin/leads/export", session(leadHandler.DownloadLeads))
	mux.HandleFunc("GET /admin/qrcode/{slug}", session(qrHandler.DownloadQRCode))
	mux.HandleFunc("POST /admin/qrcode/{slug}", session(qrHandler.CreateQRCode))
	mux.HandleFunc("GET /admin/profile", session(profileHandler.GetProfile))
	mux.HandleFunc("PATCH /admin/profile", session(profileHandler.UpdateProfile))
	mux.HandleFunc("POST /admin/subscription", session(billingHandler.SubscriptionAction))

	// Billing
	mux.HandleFunc("POST /create-checkout-session", session(billingHandler.CreateCheckoutSession))
	mux.HandleFunc("POST /webhooks/stripe", middleware.WithLogging(billingHandler.StripeWebhook))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("scan-for-a-prize API v1"))
	})

	return mux
}
