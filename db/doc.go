// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and migrates the schema.

# Connections

Open returns a *gorm.DB for either backend:

	conn, err := db.Open("postgres", "postgres://...") // lib/pq under GORM
	conn, err := db.Open("sqlite", "file:scanforaprize.db") // modernc, pure Go

SQLite connections are capped at one open connection. Code that runs inside
a transaction callback must use the callback's tx, never the outer handle.

# Schema

Migrate runs GORM AutoMigrate over models.AllRecords:

	if err := db.Migrate(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times.

# Tables

  - properties: address, slug (unique), verification_code, status, prize
  - leads: one row per landing page submission
  - users: realtor and master admin accounts (email unique)
  - property_claims: workflow record between claim and signup
  - verification_tokens: one-time email links (token unique)
  - subscriptions: billing state per user
  - billing_events: processed webhook ids

# Relationships

	users 1──* properties (claimed_by_user_id)
	properties 1──* leads
	properties 1──* property_claims
	users 1──* verification_tokens
	users 1──* subscriptions

Deleting a property removes its leads, claims, and tokens in the same
transaction (see handlers.PropertyHandler.Delete).
*/
package db
