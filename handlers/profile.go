// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/access"
	"github.com/danielhkuo/scan-for-a-prize/apperr"
	"github.com/danielhkuo/scan-for-a-prize/auth"
	"github.com/danielhkuo/scan-for-a-prize/cliparse"
	"github.com/danielhkuo/scan-for-a-prize/middleware"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

var errEmailInUse = apperr.Conflict("Email is already in use")

type ProfileHandler struct {
	db  *gorm.DB
	cfg cliparse.Config
}

func NewProfileHandler(db *gorm.DB, cfg cliparse.Config) *ProfileHandler {
	return &ProfileHandler{db: db, cfg: cfg}
}

// GetProfile handles GET /admin/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	h.respond(w, r, user)
}

// UpdateProfile handles PATCH /admin/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	updates := map[string]any{}
	if req.Email != nil {
		email := auth.NormalizeEmail(*req.Email)
		if email != user.Email {
			var n int64
			if err := h.db.WithContext(ctx).Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&n).Error; err != nil {
				writeError(w, err)
				return
			}
			if n > 0 {
				writeError(w, errEmailInUse)
				return
			}
			updates["email"] = email
		}
	}
	if req.CompanyName != nil {
		updates["company_name"] = strings.TrimSpace(*req.CompanyName)
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			slog.Error("failed to update profile", "error", err)
			writeError(w, err)
			return
		}
		if err := h.db.WithContext(ctx).Where("id = ?", user.ID).Take(&user).Error; err != nil {
			writeError(w, err)
			return
		}
		slog.Info("profile updated", "user_id", user.ID, "fields", len(updates))
	}

	h.respond(w, r, user)
}

func (h *ProfileHandler) respond(w http.ResponseWriter, r *http.Request, user models.User) {
	ent, err := access.Resolve(r.Context(), h.db, user, "")
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ProfileResponse{
		User:       user.View(),
		TotalLeads: ent.TotalLeads,
		CanExport:  ent.CanExport,
	})
}
