// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/danielhkuo/scan-for-a-prize/apperr"
	"github.com/danielhkuo/scan-for-a-prize/auth"
	"github.com/danielhkuo/scan-for-a-prize/models"
)

// SessionCookie is the cookie that carries the session token
const SessionCookie = "session"

type userKey struct{}

// SessionToken returns the bearer token or session cookie value, if any
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// SetSessionCookie stores token in an HTTP-only cookie
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireSession rejects requests without a valid session and loads the
// session user into the request context
func RequireSession(secret string, db *gorm.DB, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := SessionToken(r)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, apperr.KindUnauthorized, "Authentication required")
			return
		}

		claims, err := auth.ParseSession(secret, token)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, apperr.KindUnauthorized, "Invalid or expired session")
			return
		}

		var user models.User
		err = db.WithContext(r.Context()).Where("id = ?", claims.Subject).Take(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ErrorResponse(w, http.StatusUnauthorized, apperr.KindUnauthorized, "Invalid or expired session")
			return
		}
		if err != nil {
			slog.Error("failed to load session user", "error", err)
			ErrorResponse(w, http.StatusInternalServerError, apperr.KindUnexpected, "Failed to load session")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	}
}

// CurrentUser returns the user loaded by RequireSession
func CurrentUser(r *http.Request) (models.User, bool) {
	user, ok := r.Context().Value(userKey{}).(models.User)
	return user, ok
}

// WithUser returns a copy of r carrying user, as RequireSession would
func WithUser(r *http.Request, user models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey{}, user))
}
