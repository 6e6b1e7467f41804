// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Scan for a Prize API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, router.Deps{
		Mail:    mailer.NewMailjet(key, secret, from),
		Media:   uploader,
		Billing: billing.NewStripe(secretKey, webhookSecret),
	})

Zero-valued Deps log emails instead of sending them, reject image uploads,
and answer billing calls with 503.

# Endpoints

Health:

	GET /health

Landing page (public):

	GET  /properties/{slug} - Address and prize
	POST /leads             - Capture a lead, mail the prize

Claiming (public):

	POST /verify-property - Check a property code
	POST /claim           - Reserve with the verification code
	POST /signup          - Create the account, link the reservation
	POST /login           - Exchange a password for a session
	POST /claim-property  - Mail a one-time claim link
	GET  /verify          - Redeem the link, redirect to the dashboard

Dashboard and admin console (session token required):

	GET          /dashboard
	GET, POST    /admin/properties
	PATCH,DELETE /admin/properties/{id}
	GET, POST    /admin/leads
	GET          /admin/leads/export
	GET, POST    /admin/qrcode/{slug}
	GET, PATCH   /admin/profile
	POST         /admin/subscription

Billing:

	POST /create-checkout-session - Session required
	POST /webhooks/stripe         - Stripe-Signature required
*/
package router
