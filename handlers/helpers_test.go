// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/middleware"
	"github.com/danielhkuo/scan-for-a-prize/models"
	"github.com/danielhkuo/scan-for-a-prize/testutil"
)

// call runs handler with an optional session user and path values.
func call(handler http.HandlerFunc, req *http.Request, user *models.User, pathValues map[string]string) *httptest.ResponseRecorder {
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if user != nil {
		req = middleware.WithUser(req, *user)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return resp
}

func reloadUser(t *testing.T, conn *gorm.DB, id string) models.User {
	t.Helper()
	var u models.User
	if err := conn.Where("id = ?", id).Take(&u).Error; err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	return u
}

func reloadProperty(t *testing.T, conn *gorm.DB, id string) models.Property {
	t.Helper()
	var p models.Property
	if err := conn.Where("id = ?", id).Take(&p).Error; err != nil {
		t.Fatalf("Failed to reload property: %v", err)
	}
	return p
}

func newMasterAdmin(t *testing.T, conn *gorm.DB) models.User {
	return testutil.CreateTestUser(t, conn, "admin@scanforaprize.test", models.RoleMasterAdmin, false)
}

// tokenFrom extracts the verification token from a mailed link.
func tokenFrom(t *testing.T, text string) string {
	t.Helper()
	_, after, ok := strings.Cut(text, "token=")
	if !ok {
		t.Fatalf("No token in message: %s", text)
	}
	if i := strings.IndexAny(after, " \n\r\"<"); i >= 0 {
		after = after[:i]
	}
	return after
}

// stubUploader records uploads and returns a fixed URL.
type stubUploader struct {
	keys []string
	body []byte
}

func (s *stubUploader) UploadPrizeImage(_ context.Context, key string, r io.Reader) (string, error) {
	s.keys = append(s.keys, key)
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.body = b
	return "https://res.cloudinary.test/prizes/" + key + ".png", nil
}
