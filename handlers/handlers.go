// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/access"
	"github.com/danielhkuo/scan-for-a-prize/apperr"
	"github.com/danielhkuo/scan-for-a-prize/middleware"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

var errPropertyNotFound = apperr.NotFound("Property not found")

// writeError maps err to a status code and a caller-safe message.
// Unclassified errors are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := middleware.StatusFor(kind)

	switch kind {
	case apperr.KindUnexpected:
		slog.Error("request failed", "error", err)
		middleware.ErrorResponse(w, status, kind, "Internal server error")
		return
	case apperr.KindUnavailable:
		slog.Warn("backend unavailable", "error", err)
	}
	middleware.ErrorResponse(w, status, kind, apperr.MessageOf(err, http.StatusText(status)))
}

// sessionUser returns the user attached by middleware.RequireSession.
func sessionUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := middleware.CurrentUser(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, apperr.KindUnauthorized, "Authentication required")
	}
	return user, ok
}

// ownedProperty loads a property the user may manage. Properties outside
// the user's scope are reported as not found.
func ownedProperty(ctx context.Context, db *gorm.DB, user models.User, propertyID string) (models.Property, error) {
	var p models.Property
	err := access.PropertyScope(db.WithContext(ctx), user).Where("id = ?", propertyID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Property{}, errPropertyNotFound
	}
	if err != nil {
		return models.Property{}, fmt.Errorf("failed to load property: %w", err)
	}
	return p, nil
}

// loadLeads returns the leads ent lets the user see, newest first, with
// property address and prize attached. A zero limit returns no rows.
func loadLeads(ctx context.Context, db *gorm.DB, user models.User, ent access.Entitlement, propertyID string, offset, limit int) ([]models.LeadView, error) {
	leads := []models.LeadView{}
	if limit == 0 {
		return leads, nil
	}

	q := ent.Leads(db.WithContext(ctx), user, propertyID).
		Select("leads.*, properties.address AS property_address, properties.prize_title AS prize_title").
		Joins("JOIN properties ON properties.id = leads.property_id").
		Order("leads.created_at DESC, leads.id DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	return leads, nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation(name + " must be a non-negative integer")
	}
	return n, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func isSecure(baseURL string) bool {
	return strings.HasPrefix(baseURL, "https://")
}
