// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/apperr"
	"github.com/danielhkuo/scan-for-a-prize/auth"
	"github.com/danielhkuo/scan-for-a-prize/claims"
	"github.com/danielhkuo/scan-for-a-prize/cliparse"
	"github.com/danielhkuo/scan-for-a-prize/middleware"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

var errBadCredentials = apperr.New(apperr.KindUnauthorized, "Invalid email or password")

// ClaimHandler serves property claiming, signup and login.
type ClaimHandler struct {
	db     *gorm.DB
	cfg    cliparse.Config
	claims *claims.Service
}

func NewClaimHandler(db *gorm.DB, cfg cliparse.Config, svc *claims.Service) *ClaimHandler {
	return &ClaimHandler{db: db, cfg: cfg, claims: svc}
}

// VerifyProperty handles POST /verify-property
func (h *ClaimHandler) VerifyProperty(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyPropertyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.claims.VerifyProperty(r.Context(), req.Slug)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VerifyPropertyResponse{Success: true, Address: p.Address})
}

// Claim handles POST /claim
func (h *ClaimHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req models.ClaimRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.claims.Claim(r.Context(), claims.ClaimInput{
		Slug:             req.Slug,
		VerificationCode: req.VerificationCode,
		Email:            req.RealtorEmail,
		Name:             req.RealtorName,
		Phone:            req.RealtorPhone,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ClaimResponse{
		Success: true,
		ClaimID: res.Claim.ID,
		Property: models.PropertySummary{
			ID:        res.Property.ID,
			Address:   res.Property.Address,
			Slug:      res.Property.Slug,
			LeadCount: res.LeadCount,
		},
		Realtor: models.RealtorInfo{
			Email: res.Claim.RealtorEmail,
			Name:  res.Claim.RealtorName,
			Phone: res.Claim.RealtorPhone,
		},
	})
}

// Signup handles POST /signup
func (h *ClaimHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.claims.CompleteSignup(r.Context(), claims.SignupInput{
		Email:           req.Email,
		Name:            req.Name,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		CompanyName:     req.CompanyName,
		ClaimID:         req.ClaimID,
		PropertyID:      req.PropertyID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.startSession(w, res.User)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := models.SignupResponse{Success: true, User: res.User.View(), Token: token}
	if res.Property != nil {
		resp.Property = &models.PropertySummary{
			ID:        res.Property.ID,
			Address:   res.Property.Address,
			Slug:      res.Property.Slug,
			LeadCount: res.LeadCount,
		}
	}
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// Login handles POST /login
func (h *ClaimHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var user models.User
	err := h.db.WithContext(r.Context()).Where("email = ?", auth.NormalizeEmail(req.Email)).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, errBadCredentials)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if user.PasswordHash == nil || auth.CheckPassword(*user.PasswordHash, req.Password) != nil {
		writeError(w, errBadCredentials)
		return
	}

	token, err := h.startSession(w, user)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{Token: token, User: user.View()})
}

// ClaimProperty handles POST /claim-property
func (h *ClaimHandler) ClaimProperty(w http.ResponseWriter, r *http.Request) {
	var req models.ClaimPropertyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.claims.RequestVerification(r.Context(), req.Slug, req.Email, req.VerificationCode); err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Verification email sent. Check your inbox to finish claiming this property.",
	})
}

// Verify handles GET /verify?token=
func (h *ClaimHandler) Verify(w http.ResponseWriter, r *http.Request) {
	verified, err := h.claims.ConsumeVerification(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.startSession(w, verified.User); err != nil {
		writeError(w, err)
		return
	}

	target := h.cfg.BaseURL + "/dashboard?" + url.Values{"propertyId": {verified.Property.ID}}.Encode()
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// startSession issues a session token and sets it as a cookie.
func (h *ClaimHandler) startSession(w http.ResponseWriter, user models.User) (string, error) {
	token, err := auth.IssueSession(h.cfg.SessionSecret, user.ID, user.Role, h.cfg.SessionTTL, time.Now())
	if err != nil {
		return "", err
	}
	middleware.SetSessionCookie(w, token, h.cfg.SessionTTL, isSecure(h.cfg.BaseURL))
	return token, nil
}
