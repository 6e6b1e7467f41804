// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package claims implements how a realtor takes ownership of a property.

# Code Claim

The primary flow has three steps:

	svc.VerifyProperty(ctx, slug)     // property exists, no side effects
	svc.Claim(ctx, ClaimInput{...})   // unclaimed → claimed, PropertyClaim approved
	svc.CompleteSignup(ctx, in)       // user created, claimed → active, claim completed

Claim checks, in order: the property exists, it is unclaimed, the code
matches exactly, and the email has no account yet. The status flip is a
conditional update on status = 'unclaimed', so of two concurrent claims only
one can win. The other gets ErrAlreadyClaimed.

Between Claim and CompleteSignup the property is reserved: status claimed,
claimed_by_user_id NULL. Each step commits in a single transaction.

# Email Link

The alternate flow mails a one-time token:

	svc.RequestVerification(ctx, slug, email, code) // 24h token, mailed
	svc.ConsumeVerification(ctx, token)             // verify, link, delete token

ConsumeVerification returns ErrTokenExpired for unknown or expired tokens.

# Reconciliation

Reservations that never reach signup are released:

	res, err := svc.Reconcile(ctx, 72*time.Hour)

Approved claims older than the TTL become expired and their still-unlinked
properties return to unclaimed. Expired verification tokens are purged.
RunReconciler repeats this on an interval for long-running servers.
*/
package claims
