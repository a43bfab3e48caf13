package handler

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/service"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"
)

// ============================================================
// Store authentication
// ============================================================

// requestSession returns the handle and workspace SessionMiddleware attached.
func requestSession(w http.ResponseWriter, r *http.Request) (*session.Handle, *service.Workspace, bool) {
	h, ok := session.FromContext(r.Context())
	ws := WorkspaceFromContext(r.Context())
	if !ok || ws == nil {
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return nil, nil, false
	}
	return h, ws, true
}

// POST /api/auth/login
func authLoginHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/auth/login")
		defer span.End()

		h, ws, ok := requestSession(w, r)
		if !ok {
			return
		}

		var req domain.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(attribute.String("store.id", req.StoreID))

		resp, err := authSvc.Login(ctx, h, ws, w, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// POST /api/auth/logout
func authLogoutHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/auth/logout")
		defer span.End()

		h, ws, ok := requestSession(w, r)
		if !ok {
			return
		}

		resp, err := authSvc.Logout(ctx, h, ws, w)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// GET /api/auth/session
func authSessionHandler(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, _, ok := requestSession(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, authSvc.Session(h))
	}
}
