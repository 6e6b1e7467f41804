// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Sessions

Protect a route with a session token:

	mux.HandleFunc("GET /admin/profile",
		middleware.WithLogging(middleware.RequireSession(secret, db, h.GetProfile)))

The token is read from "Authorization: Bearer <token>" or the "session"
cookie. The user is loaded from the database and available through
CurrentUser(r). Missing or invalid sessions get 401.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, apperr.KindValidation, "message")

DecodeAndValidate parses a body and runs its validate tags, returning an
apperr validation error with a readable message:

	var req models.CreateLeadRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

StatusFor maps an apperr.Kind to its HTTP status.
*/
package middleware
