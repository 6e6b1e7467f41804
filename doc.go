// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Scan for a Prize server and
its maintenance commands.

Scan for a Prize puts a QR code on a property sign. Visitors scan it, land
on the property page and enter a prize drawing, which records them as a
lead. Realtors claim properties with the printed verification code (or an
emailed link) and work their leads from the admin console. Free accounts
see the newest 10 leads per property; a subscription unlocks the rest
along with CSV export.

# Starting the Server

	SESSION_SECRET=... go run . serve

Or with Postgres and flags:

	go run . serve -t postgres -d "postgres://..." --base-url https://scanforaprize.com

A .env file in the working directory is loaded first when present.

# Commands

  - serve: run the HTTP API
  - migrate: create or update the schema
  - reconcile: release stale claim reservations, purge expired tokens
  - create-admin: create or promote the master admin
  - import-properties: bulk create unclaimed properties from YAML

# Configuration

Required for serve:

  - SESSION_SECRET (--session-secret): at least 16 characters

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t), DATABASE_URL (-d): sqlite (default) or postgres
  - BASE_URL: public origin used in links and QR codes
  - STRIPE_SECRET_KEY, STRIPE_WEBHOOK_SECRET, STRIPE_PRICE_SINGLE, STRIPE_PRICE_MULTI
  - MAILJET_API_KEY, MAILJET_SECRET_KEY, MAIL_FROM
  - CLOUDINARY_URL: prize image uploads
  - CLAIM_RESERVATION_TTL, RECONCILE_INTERVAL

# Architecture

  - cli: cobra commands
  - router, handlers, middleware: HTTP surface
  - claims: claim workflow, email verification, reconciliation
  - access: free tier and subscription gating
  - billing: Stripe checkout, portal and webhooks
  - mailer, media, qr, export: outbound integrations and renderers
  - models, db, auth, apperr, cliparse, logging: shared foundations

See package documentation for each component.
*/
package main
