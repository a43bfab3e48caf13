package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/service"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"
)

type contextKey string

const workspaceKey contextKey = "workspace"

// flashCookie carries notifications across a redirect to the next page.
const flashCookie = "portal_flash"

// deviceCookieMaxAge keeps the device id for a year.
const deviceCookieMaxAge = 365 * 24 * 60 * 60

const msgLoginRequired = "Please login to access the admin panel"

// SessionMiddleware identifies the browser device, resolves its session and
// attaches the session handle and the device workspace to the request context.
// Resolution completes before any handler runs.
func SessionMiddleware(manager *session.Manager, workspaces *service.Workspaces, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := ""
			if c, err := r.Cookie(session.DeviceCookie); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					deviceID = c.Value
				}
			}
			if deviceID == "" {
				deviceID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     session.DeviceCookie,
					Value:    deviceID,
					Path:     "/",
					MaxAge:   deviceCookieMaxAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug("session: new device", zap.String("device_id", deviceID))
			}

			h := manager.NewHandle(deviceID)
			manager.Resolve(r.Context(), h, w, r)

			ctx := session.WithHandle(r.Context(), h)
			ctx = context.WithValue(ctx, workspaceKey, workspaces.For(deviceID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WorkspaceFromContext returns the device workspace attached by SessionMiddleware.
func WorkspaceFromContext(ctx context.Context) *service.Workspace {
	ws, _ := ctx.Value(workspaceKey).(*service.Workspace)
	return ws
}

// RouteGuard wraps protected routes. While the session is unresolved it
// renders a loading placeholder; anonymous requests get a notification and
// are sent to the public landing path (pages) or refused (API).
func RouteGuard(landingPath string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h, ok := session.FromContext(r.Context())
			if !ok || h.State() == session.Unresolved {
				renderLoading(w)
				return
			}

			if h.State() != session.Authenticated {
				logger.Debug("route guard: anonymous request",
					zap.String("path", r.URL.Path),
					zap.String("device_id", h.DeviceID()),
				)
				if isAPI(r) {
					writeNotifiedError(w, http.StatusUnauthorized, msgLoginRequired, nil)
					return
				}
				setFlash(w, domain.Failure(msgLoginRequired))
				http.Redirect(w, r, landingPath, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// ============================================================
// Flash notifications
// ============================================================

func setFlash(w http.ResponseWriter, notes ...domain.Notification) {
	raw, err := json.Marshal(notes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the flash cookie.
func popFlash(w http.ResponseWriter, r *http.Request) []domain.Notification {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var notes []domain.Notification
	if json.Unmarshal(raw, &notes) != nil {
		return nil
	}
	return notes
}
