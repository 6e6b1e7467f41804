// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/access"
	"github.com/danielhkuo/scan-for-a-prize/apperr"
	"github.com/danielhkuo/scan-for-a-prize/cliparse"
	"github.com/danielhkuo/scan-for-a-prize/export"
	"github.com/danielhkuo/scan-for-a-prize/middleware"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

var errExportLocked = apperr.Forbidden("Exporting leads requires a subscription. Upgrade to export your leads.")

// LeadHandler serves the admin lead list and exports.
type LeadHandler struct {
	db  *gorm.DB
	cfg cliparse.Config
	now func() time.Time
}

func NewLeadHandler(db *gorm.DB, cfg cliparse.Config) *LeadHandler {
	return &LeadHandler{db: db, cfg: cfg, now: time.Now}
}

// ListLeads handles GET /admin/leads?propertyId&limit&offset
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	propertyID := r.URL.Query().Get("propertyId")
	if propertyID != "" {
		if _, err := ownedProperty(ctx, h.db, user, propertyID); err != nil {
			writeError(w, err)
			return
		}
	}

	ent, err := access.Resolve(ctx, h.db, user, propertyID)
	if err != nil {
		writeError(w, err)
		return
	}

	offset, limit = ent.Window(offset, limit)
	leads, err := loadLeads(ctx, h.db, user, ent, propertyID, offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LeadListResponse{
		Leads:        leads,
		TotalCount:   ent.TotalLeads,
		VisibleCount: ent.VisibleLeads,
		HasMore:      ent.HasMoreLeads,
		UpgradeMsg:   ent.UpgradeMessage(),
	})
}

// ExportLeads handles POST /admin/leads with {propertyId?, format}
func (h *LeadHandler) ExportLeads(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	var req models.ExportLeadsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	leads, ent, err := h.exportable(r, user, req.PropertyID)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Format == "json" {
		middleware.JSONResponse(w, http.StatusOK, models.LeadListResponse{
			Leads:        leads,
			TotalCount:   ent.TotalLeads,
			VisibleCount: ent.VisibleLeads,
		})
		return
	}
	h.writeCSV(w, user, leads)
}

// DownloadLeads handles GET /admin/leads/export?propertyId=
func (h *LeadHandler) DownloadLeads(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	leads, _, err := h.exportable(r, user, r.URL.Query().Get("propertyId"))
	if err != nil {
		writeError(w, err)
		return
	}
	h.writeCSV(w, user, leads)
}

// exportable checks the export entitlement and loads every lead in scope.
func (h *LeadHandler) exportable(r *http.Request, user models.User, propertyID string) ([]models.LeadView, access.Entitlement, error) {
	ctx := r.Context()
	if propertyID != "" {
		if _, err := ownedProperty(ctx, h.db, user, propertyID); err != nil {
			return nil, access.Entitlement{}, err
		}
	}

	ent, err := access.Resolve(ctx, h.db, user, propertyID)
	if err != nil {
		return nil, access.Entitlement{}, err
	}
	if !ent.CanExport {
		return nil, ent, errExportLocked
	}

	leads, err := loadLeads(ctx, h.db, user, ent, propertyID, 0, -1)
	if err != nil {
		return nil, ent, err
	}
	return leads, ent, nil
}

func (h *LeadHandler) writeCSV(w http.ResponseWriter, user models.User, leads []models.LeadView) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, leads); err != nil {
		slog.Error("failed to write CSV export", "error", err, "user_id", user.ID)
		return
	}
	slog.Info("leads exported", "user_id", user.ID, "rows", len(leads))
}
