// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/access"
	"github.com/danielhkuo/scan-for-a-prize/apperr"
	"github.com/danielhkuo/scan-for-a-prize/cliparse"
	"github.com/danielhkuo/scan-for-a-prize/middleware"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

var errNotVerified = apperr.Forbidden("Please verify your email before viewing the dashboard")

type DashboardHandler struct {
	db  *gorm.DB
	cfg cliparse.Config
}

func NewDashboardHandler(db *gorm.DB, cfg cliparse.Config) *DashboardHandler {
	return &DashboardHandler{db: db, cfg: cfg}
}

// GetDashboard handles GET /dashboard?propertyId=
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	if user.VerifiedAt == nil {
		writeError(w, errNotVerified)
		return
	}

	propertyID := r.URL.Query().Get("propertyId")
	if propertyID == "" {
		writeError(w, apperr.Validation("propertyId is required"))
		return
	}

	ctx := r.Context()
	property, err := ownedProperty(ctx, h.db, user, propertyID)
	if err != nil {
		writeError(w, err)
		return
	}

	ent, err := access.Resolve(ctx, h.db, user, property.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	offset, limit := ent.Window(0, int(ent.VisibleLeads))
	leads, err := loadLeads(ctx, h.db, user, ent, property.ID, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DashboardResponse{
		Property:     property,
		User:         user.View(),
		TotalLeads:   ent.TotalLeads,
		Leads:        leads,
		Plan:         ent.Plan,
		HasMoreLeads: ent.HasMoreLeads,
		UpgradeMsg:   ent.UpgradeMessage(),
	})
}
