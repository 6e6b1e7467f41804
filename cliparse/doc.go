// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line flags and configuration.

# Configuration

Commands bind flags onto a Config and resolve it:

	var cfg cliparse.Config
	cliparse.AddFlags(cmd.Flags(), &cfg)
	// after parsing
	if err := cfg.Resolve(); err != nil { ... }

ParseFlags does both on a standalone flag set:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Precedence

Each value comes from the first source that sets it:

 1. CLI flag
 2. Environment variable (a .env file is loaded into the environment first)
 3. Built-in default

# Environment Variables

	PORT                   → -p, --port (default 3318)
	DATABASE_URL           → -d, --database-url (default file:scanforaprize.db for sqlite)
	DATABASE_TYPE          → -t, --database-type (sqlite or postgres)
	BASE_URL               → --base-url
	SESSION_SECRET         → --session-secret
	SESSION_TTL            → --session-ttl (default 168h)
	STRIPE_SECRET_KEY      → --stripe-secret-key
	STRIPE_WEBHOOK_SECRET  → --stripe-webhook-secret
	STRIPE_PRICE_SINGLE    → --stripe-price-single
	STRIPE_PRICE_MULTI     → --stripe-price-multi
	MAILJET_API_KEY        → --mailjet-api-key
	MAILJET_SECRET_KEY     → --mailjet-secret-key
	MAIL_FROM              → --mail-from
	CLOUDINARY_URL         → --cloudinary-url
	CLAIM_RESERVATION_TTL  → --claim-reservation-ttl (default 72h)
	RECONCILE_INTERVAL     → --reconcile-interval (default off)
	LOG_LEVEL, LOG_FORMAT  → --log-level, --log-format

# Validation

Resolve fails on a malformed PORT or duration, an unknown database type, or
postgres without a URL. ValidateServe additionally requires SESSION_SECRET
(at least 16 characters) before the HTTP server starts.

Stripe, Mailjet, and Cloudinary settings are optional. When they are unset
the server runs with billing disabled (503), mail logged instead of sent, and
prize images skipped.
*/
package cliparse
