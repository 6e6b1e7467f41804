// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/auth"
	"github.com/danielhkuo/scan-for-a-prize/cliparse"
	"github.com/danielhkuo/scan-for-a-prize/db"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

// TestSessionSecret signs session tokens in tests
const TestSessionSecret = "test-session-secret-0123456789"

// SetupTestDB creates a private in-memory database with the full schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := db.OpenSQLite("file::memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	conn, err := gorm.Open(&sqlite.Dialector{Conn: sqlDB}, db.Config())
	if err != nil {
		t.Fatalf("Failed to wrap test database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                3318,
		DatabaseType:        "sqlite",
		DatabaseURL:         "file::memory:",
		BaseURL:             "https://scanforaprize.test",
		SessionSecret:       TestSessionSecret,
		SessionTTL:          time.Hour,
		StripePriceSingle:   "price_single",
		StripePriceMulti:    "price_multi",
		MailFrom:            "noreply@scanforaprize.test",
		ClaimReservationTTL: 72 * time.Hour,
	}
}

// PropertyOption customises a fixture property
type PropertyOption func(*models.Property)

func WithSlug(slug string) PropertyOption {
	return func(p *models.Property) { p.Slug = slug }
}

func WithCode(code string) PropertyOption {
	return func(p *models.Property) { p.VerificationCode = code }
}

func WithStatus(status string) PropertyOption {
	return func(p *models.Property) { p.Status = status }
}

func WithOwner(userID string) PropertyOption {
	return func(p *models.Property) {
		p.ClaimedByUserID = &userID
		p.Status = models.StatusActive
	}
}

func WithPrize(title string) PropertyOption {
	return func(p *models.Property) { p.PrizeTitle = &title }
}

// CreateTestProperty inserts an unclaimed property with code XT7-82C4 unless
// overridden
func CreateTestProperty(t *testing.T, conn *gorm.DB, opts ...PropertyOption) models.Property {
	t.Helper()

	p := models.Property{
		ID:               auth.NewID(),
		Slug:             "slug-" + auth.NewID(),
		Address:          "123 Main St",
		VerificationCode: "XT7-82C4",
		Status:           models.StatusUnclaimed,
	}
	for _, opt := range opts {
		opt(&p)
	}
	if err := conn.Create(&p).Error; err != nil {
		t.Fatalf("Failed to create test property: %v", err)
	}
	return p
}

// CreateTestUser inserts a verified user with password "password123"
func CreateTestUser(t *testing.T, conn *gorm.DB, email, role string, subscribed bool) models.User {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           auth.NewID(),
		Email:        email,
		PasswordHash: &hash,
		Name:         "Test User",
		Role:         role,
		VerifiedAt:   &now,
		IsSubscribed: subscribed,
	}
	if err := conn.Create(&u).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// CreateTestLeads inserts n leads for a property, one second apart, oldest
// first. Every third lead has no phone.
func CreateTestLeads(t *testing.T, conn *gorm.DB, propertyID string, n int) []models.Lead {
	t.Helper()

	base := time.Now().UTC().Add(-time.Duration(n) * time.Second)
	leads := make([]models.Lead, 0, n)
	for i := 0; i < n; i++ {
		l := models.Lead{
			ID:         auth.NewID(),
			PropertyID: propertyID,
			Name:       fmt.Sprintf("Visitor %02d", i),
			Email:      fmt.Sprintf("visitor%02d@example.com", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}
		if i%3 != 0 {
			phone := fmt.Sprintf("555-01%02d", i)
			l.Phone = &phone
		}
		if err := conn.Create(&l).Error; err != nil {
			t.Fatalf("Failed to create test lead: %v", err)
		}
		leads = append(leads, l)
	}
	return leads
}

// SessionHeader returns an Authorization header for user
func SessionHeader(t *testing.T, user models.User) map[string]string {
	t.Helper()

	token, err := auth.IssueSession(TestSessionSecret, user.ID, user.Role, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
