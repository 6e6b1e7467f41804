// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/access"
	"github.com/danielhkuo/scan-for-a-prize/apperr"
	"github.com/danielhkuo/scan-for-a-prize/cliparse"
	"github.com/danielhkuo/scan-for-a-prize/middleware"
	"github.com/danielhkuo/scan-for-a-prize/models"
	"github.com/danielhkuo/scan-for-a-prize/qr"
)

type QRCodeHandler struct {
	db  *gorm.DB
	cfg cliparse.Config
}

func NewQRCodeHandler(db *gorm.DB, cfg cliparse.Config) *QRCodeHandler {
	return &QRCodeHandler{db: db, cfg: cfg}
}

// CreateQRCode handles POST /admin/qrcode/{slug} and returns an inline PNG
func (h *QRCodeHandler) CreateQRCode(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	var req models.QRCodeRequest
	if r.ContentLength != 0 {
		if err := middleware.DecodeAndValidate(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	p, err := h.property(r, user)
	if err != nil {
		writeError(w, err)
		return
	}

	landing := qr.LandingURL(h.cfg.BaseURL, p.Slug)
	dataURL, err := qr.DataURL(landing, req.Size)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.QRCodeResponse{
		DataURL: dataURL,
		URL:     landing,
		Slug:    p.Slug,
	})
}

// DownloadQRCode handles GET /admin/qrcode/{slug}?format=png|svg&size=
func (h *QRCodeHandler) DownloadQRCode(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	size, err := queryInt(r, "size")
	if err != nil {
		writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "png"
	}
	if format != "png" && format != "svg" {
		writeError(w, apperr.Validation("format must be one of: png svg"))
		return
	}

	p, err := h.property(r, user)
	if err != nil {
		writeError(w, err)
		return
	}

	landing := qr.LandingURL(h.cfg.BaseURL, p.Slug)
	var (
		body        []byte
		contentType string
	)
	if format == "svg" {
		body, err = qr.SVG(landing, size)
		contentType = "image/svg+xml"
	} else {
		body, err = qr.PNG(landing, size)
		contentType = "image/png"
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="qr-%s.%s"`, p.Slug, format))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *QRCodeHandler) property(r *http.Request, user models.User) (models.Property, error) {
	var p models.Property
	err := access.PropertyScope(h.db.WithContext(r.Context()), user).Where("slug = ?", r.PathValue("slug")).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Property{}, errPropertyNotFound
	}
	if err != nil {
		return models.Property{}, fmt.Errorf("failed to load property: %w", err)
	}
	return p, nil
}
