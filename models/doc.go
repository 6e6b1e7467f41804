// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines persisted records and the request and response types
for the API.

# Records

GORM models, migrated by db.Migrate:

  - Property: address, slug, verification code, prize, claim status
  - Lead: visitor contact details tied to one property
  - User: realtor or master admin account
  - PropertyClaim: realtor identity captured between code check and signup
  - VerificationToken: one-time 24h email link
  - Subscription: billing provider subscription state
  - BillingEvent: processed webhook events, for idempotency

Property.VerificationCode is create-only. GORM never writes it on update.

# Request Types

Request structs carry validate tags checked by middleware.DecodeAndValidate.

  - ClaimRequest: slug, verificationCode, realtorEmail, realtorName
  - SignupRequest: email, name, password, confirmPassword, claimId, propertyId
  - CreateLeadRequest: name, email, phone, propertyId

# Constants

Property status:

	StatusUnclaimed = "unclaimed"
	StatusClaimed   = "claimed"
	StatusActive    = "active"

Claim status:

	ClaimApproved  = "approved"
	ClaimCompleted = "completed"
	ClaimExpired   = "expired"

Roles:

	RoleRealtor     = "realtor"
	RoleMasterAdmin = "master_admin"
*/
package models
