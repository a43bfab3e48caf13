package handler

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"
)

// EdgeConfig holds the paths the edge redirector routes between.
type EdgeConfig struct {
	ProtectedPrefix string // e.g. /store
	LoginPath       string // e.g. /storeLogin
	LandingPath     string // protected landing, e.g. /store
}

// EdgeDecide applies the edge rule table to a request path. It only looks at
// whether the token cookie is present, never at its validity. The returned
// target is empty when the request should be served normally.
func EdgeDecide(cfg EdgeConfig, path string, hasCookie bool) string {
	switch {
	case path == cfg.LoginPath:
		if hasCookie {
			return cfg.LandingPath
		}
	case strings.HasPrefix(path, cfg.ProtectedPrefix):
		if !hasCookie {
			return cfg.LoginPath
		}
	}
	return ""
}

// EdgeRedirector runs before session resolution and before any page is
// generated. API routes are left to the route guard.
//
// The durable half of the session is not consulted here, so a request that
// still carries the cookie of a session logged out elsewhere passes this
// layer and is caught by the route guard instead.
func EdgeRedirector(cfg EdgeConfig, metrics *observability.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isAPI(r) {
				next.ServeHTTP(w, r)
				return
			}

			c, err := r.Cookie(session.TokenCookie)
			hasCookie := err == nil && c.Value != ""

			if target := EdgeDecide(cfg, r.URL.Path, hasCookie); target != "" {
				if metrics != nil {
					metrics.IncrEdgeRedirect(target)
				}
				logger.Debug("edge redirect",
					zap.String("path", r.URL.Path),
					zap.String("target", target),
					zap.Bool("cookie", hasCookie),
				)
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
