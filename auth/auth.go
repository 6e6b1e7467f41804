// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
	ErrPasswordTooLong = errors.New("password is longer than 72 bytes")
)

// Password bounds in bytes. bcrypt rejects anything past 72.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

const (
	slugAlphabet  = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-_"
	codeAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	SlugLength  = 60
	TokenLength = 32
	codeLength  = 8
)

// NewID returns a random UUIDv4 string for record primary keys
func NewID() string {
	return uuid.NewString()
}

// randomString draws n characters uniformly from alphabet
func randomString(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random string: %w", err)
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}

// GenerateSlug creates the public URL slug for a property
func GenerateSlug() (string, error) {
	return randomString(slugAlphabet, SlugLength)
}

// GenerateVerificationCode creates an owner code formatted XXX-XXXXX
func GenerateVerificationCode() (string, error) {
	raw, err := randomString(codeAlphabet, codeLength)
	if err != nil {
		return "", err
	}
	return raw[:3] + "-" + raw[3:], nil
}

// GenerateToken creates a one-time email verification token
func GenerateToken() (string, error) {
	return randomString(tokenAlphabet, TokenLength)
}

// CodesMatch compares verification codes in constant time. Codes must match
// exactly, including case and the separator.
func CodesMatch(entered, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(entered), []byte(stored)) == 1
}

// NormalizeEmail lower-cases and trims an address before storage or lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}
