// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/auth"
	"github.com/danielhkuo/scan-for-a-prize/cliparse"
	"github.com/danielhkuo/scan-for-a-prize/mailer"
	"github.com/danielhkuo/scan-for-a-prize/middleware"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

// PublicHandler serves the landing page data and lead intake.
type PublicHandler struct {
	db   *gorm.DB
	cfg  cliparse.Config
	mail mailer.Sender
}

func NewPublicHandler(db *gorm.DB, cfg cliparse.Config, mail mailer.Sender) *PublicHandler {
	return &PublicHandler{db: db, cfg: cfg, mail: mail}
}

// GetProperty handles GET /properties/{slug}
func (h *PublicHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	var p models.Property
	err := h.db.WithContext(r.Context()).Where("slug = ?", slug).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, errPropertyNotFound)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PublicProperty{
		ID:               p.ID,
		Address:          p.Address,
		Slug:             p.Slug,
		PrizeTitle:       p.PrizeTitle,
		PrizeDescription: p.PrizeDescription,
		PrizeImageURL:    p.PrizeImageURL,
	})
}

// CreateLead handles POST /leads
func (h *PublicHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLeadRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var p models.Property
	err := h.db.WithContext(r.Context()).Where("id = ?", req.PropertyID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, errPropertyNotFound)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	lead := models.Lead{
		ID:         auth.NewID(),
		PropertyID: p.ID,
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      optional(req.Phone),
	}
	if err := h.db.WithContext(r.Context()).Create(&lead).Error; err != nil {
		slog.Error("failed to insert lead", "error", err)
		writeError(w, err)
		return
	}

	slog.Info("lead created", "lead_id", lead.ID, "property_id", p.ID)

	if p.PrizeTitle != nil && *p.PrizeTitle != "" {
		h.sendPrizeEmail(r, lead, p)
	}

	middleware.JSONResponse(w, http.StatusCreated, models.LeadResponse{Success: true, Lead: lead})
}

// sendPrizeEmail notifies the visitor. Failures never fail the lead.
func (h *PublicHandler) sendPrizeEmail(r *http.Request, lead models.Lead, p models.Property) {
	n := mailer.PrizeNotification{
		Name:            lead.Name,
		Email:           lead.Email,
		PropertyAddress: p.Address,
		PrizeTitle:      *p.PrizeTitle,
	}
	if p.PrizeDescription != nil {
		n.PrizeDescription = *p.PrizeDescription
	}
	if p.PrizeImageURL != nil {
		n.PrizeImageURL = *p.PrizeImageURL
	}

	msg, err := mailer.PrizeMessage(n)
	if err == nil {
		err = h.mail.Send(r.Context(), msg)
	}
	if err != nil {
		slog.Error("failed to send prize email", "error", err, "lead_id", lead.ID)
	}
}
