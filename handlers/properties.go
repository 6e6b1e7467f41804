// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/access"
	"github.com/danielhkuo/scan-for-a-prize/apperr"
	"github.com/danielhkuo/scan-for-a-prize/auth"
	"github.com/danielhkuo/scan-for-a-prize/cliparse"
	"github.com/danielhkuo/scan-for-a-prize/media"
	"github.com/danielhkuo/scan-for-a-prize/middleware"
	"github.com/danielhkuo/scan-for-a-prize/models"
	"github.com/danielhkuo/scan-for-a-prize/qr"
)

// maxUploadBytes bounds multipart property forms, image included.
const maxUploadBytes = 10 << 20

// PropertyHandler serves the admin property endpoints.
type PropertyHandler struct {
	db    *gorm.DB
	cfg   cliparse.Config
	media media.Uploader
}

func NewPropertyHandler(db *gorm.DB, cfg cliparse.Config, uploader media.Uploader) *PropertyHandler {
	return &PropertyHandler{db: db, cfg: cfg, media: uploader}
}

// ListProperties handles GET /admin/properties
func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var props []models.Property
	if err := access.PropertyScope(h.db.WithContext(ctx), user).Order("created_at DESC").Find(&props).Error; err != nil {
		slog.Error("failed to list properties", "error", err)
		writeError(w, err)
		return
	}

	counts := make(map[string]int64, len(props))
	if len(props) > 0 {
		ids := make([]string, len(props))
		for i, p := range props {
			ids[i] = p.ID
		}
		var rows []struct {
			PropertyID string
			Leads      int64
		}
		if err := h.db.WithContext(ctx).Model(&models.Lead{}).
			Select("property_id, COUNT(*) AS leads").
			Where("property_id IN ?", ids).
			Group("property_id").
			Scan(&rows).Error; err != nil {
			writeError(w, fmt.Errorf("failed to count leads: %w", err))
			return
		}
		for _, row := range rows {
			counts[row.PropertyID] = row.Leads
		}
	}

	resp := models.PropertyListResponse{Properties: make([]models.PropertyWithCount, 0, len(props))}
	for _, p := range props {
		resp.Properties = append(resp.Properties, models.PropertyWithCount{
			Property: p,
			Count:    models.LeadCount{Leads: counts[p.ID]},
		})
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// CreateProperty handles POST /admin/properties, as JSON or as a multipart
// form with an optional prizeImage file.
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	req, image, err := h.parseCreate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if image != nil {
		defer image.Close()
	}

	slug, err := auth.GenerateSlug()
	if err != nil {
		writeError(w, err)
		return
	}
	code, err := auth.GenerateVerificationCode()
	if err != nil {
		writeError(w, err)
		return
	}

	p := models.Property{
		ID:               auth.NewID(),
		Slug:             slug,
		Address:          strings.TrimSpace(req.Address),
		VerificationCode: code,
		Status:           models.StatusUnclaimed,
		PrizeTitle:       optional(req.PrizeTitle),
		PrizeDescription: optional(req.PrizeDescription),
	}
	if user.Role == models.RoleMasterAdmin && req.IsMasterAdmin {
		// Prospecting: left unclaimed for a realtor to claim with the code.
		p.CreatedByMaster = true
	} else {
		now := time.Now().UTC()
		p.Status = models.StatusActive
		p.ClaimedByUserID = &user.ID
		p.ClaimedAt = &now
	}

	if image != nil {
		imageURL, err := h.media.UploadPrizeImage(r.Context(), slug, image)
		if err != nil {
			slog.Error("failed to upload prize image", "error", err, "slug", slug)
		} else {
			p.PrizeImageURL = &imageURL
		}
	}

	if err := h.db.WithContext(r.Context()).Create(&p).Error; err != nil {
		slog.Error("failed to insert property", "error", err)
		writeError(w, err)
		return
	}

	slog.Info("property created", "property_id", p.ID, "status", p.Status, "user_id", user.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePropertyResponse{
		Property:         p,
		VerificationCode: code,
		LandingURL:       qr.LandingURL(h.cfg.BaseURL, slug),
	})
}

func (h *PropertyHandler) parseCreate(r *http.Request) (models.CreatePropertyRequest, multipart.File, error) {
	var req models.CreatePropertyRequest

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err := middleware.DecodeAndValidate(r, &req)
		return req, nil, err
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return req, nil, apperr.Wrap(apperr.KindValidation, "Invalid form data", err)
	}
	req.Address = r.FormValue("address")
	req.PrizeTitle = r.FormValue("prizeTitle")
	req.PrizeDescription = r.FormValue("prizeDescription")
	req.IsMasterAdmin, _ = strconv.ParseBool(r.FormValue("isMasterAdmin"))
	if err := middleware.Validate(&req); err != nil {
		return req, nil, err
	}

	file, _, err := r.FormFile("prizeImage")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, nil
	}
	if err != nil {
		return req, nil, apperr.Wrap(apperr.KindValidation, "Invalid prize image", err)
	}
	return req, file, nil
}

// UpdateProperty handles PATCH /admin/properties/{id}. Only the address and
// prize fields can change.
func (h *PropertyHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	var req models.UpdatePropertyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	p, err := ownedProperty(ctx, h.db, user, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	updates := map[string]any{}
	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		if address == "" {
			writeError(w, apperr.Validation("address cannot be empty"))
			return
		}
		updates["address"] = address
	}
	if req.PrizeTitle != nil {
		updates["prize_title"] = optional(*req.PrizeTitle)
	}
	if req.PrizeDescription != nil {
		updates["prize_description"] = optional(*req.PrizeDescription)
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(&models.Property{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			slog.Error("failed to update property", "error", err)
			writeError(w, err)
			return
		}
	}

	if err := h.db.WithContext(ctx).Where("id = ?", p.ID).Take(&p).Error; err != nil {
		writeError(w, err)
		return
	}

	slog.Info("property updated", "property_id", p.ID, "fields", len(updates))
	middleware.JSONResponse(w, http.StatusOK, p)
}

// DeleteProperty handles DELETE /admin/properties/{id}
func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	p, err := ownedProperty(ctx, h.db, user, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Lead{}, &models.PropertyClaim{}, &models.VerificationToken{}} {
			if err := tx.Where("property_id = ?", p.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Property{}, "id = ?", p.ID).Error
	})
	if err != nil {
		slog.Error("failed to delete property", "error", err)
		writeError(w, err)
		return
	}

	slog.Info("property deleted", "property_id", p.ID, "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Success: true, Message: "Property deleted"})
}
