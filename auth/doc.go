// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifiers, secrets, password hashing, and session
tokens.

# Property Secrets

Each property gets a public slug and a private verification code:

	slug, err := auth.GenerateSlug()             // 60 chars of [0-9A-Za-z-_]
	code, err := auth.GenerateVerificationCode() // "XT7-82C4Q"

Codes are compared exactly and in constant time:

	if !auth.CodesMatch(entered, property.VerificationCode) { ... }

# Verification Tokens

One-time email tokens are 32 alphanumeric characters:

	token, err := auth.GenerateToken()

# Passwords

bcrypt with the default cost:

	hash, err := auth.HashPassword(password)
	err := auth.CheckPassword(hash, password) // ErrInvalidPassword on mismatch

# Sessions

Session tokens are HS256 JWTs whose subject is the user ID:

	token, err := auth.IssueSession(secret, userID, role, ttl, time.Now())
	claims, err := auth.ParseSession(secret, token)

ParseSession rejects expired tokens, other algorithms, and foreign issuers
with ErrInvalidToken.
*/
package auth
