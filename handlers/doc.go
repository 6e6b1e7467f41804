// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Scan for a Prize API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - PublicHandler: Landing page data and lead intake
  - ClaimHandler: Code claims, signup, login and email verification
  - DashboardHandler: The gated per-property lead view
  - PropertyHandler: Admin property CRUD and prize image upload
  - LeadHandler: Admin lead list and CSV/JSON export
  - QRCodeHandler: QR code rendering for a property's landing URL
  - ProfileHandler: Account details
  - BillingHandler: Subscription actions, checkout and the Stripe webhook

Handlers are created via constructor functions that accept *gorm.DB and Config:

	leadHandler := handlers.NewLeadHandler(db, cfg)

# Claim Lifecycle

Properties move unclaimed → claimed → active:

	POST /verify-property → VerifyProperty (slug lookup only)
	POST /claim           → Claim (code check, reserves the property)
	POST /signup          → Signup (creates the account, links the property)

The email path skips the reservation:

	POST /claim-property → ClaimProperty (mails a one-time link)
	GET /verify?token=   → Verify (links the property, 303 to the dashboard)

# Sessions

Dashboard and /admin routes run behind middleware.RequireSession, which puts
the user on the request context. Handlers read it with sessionUser.

# Lead Access

Every lead read goes through access.Resolve. Free accounts see the newest
10 leads in scope; export requires a subscription:

	GET /admin/leads         → ListLeads
	POST /admin/leads        → ExportLeads ({format: csv|json})
	GET /admin/leads/export  → DownloadLeads (CSV)

# Errors

Failures are apperr values mapped to status codes by writeError. Anything
unclassified is logged and reported as a generic 500.
*/
package handlers
