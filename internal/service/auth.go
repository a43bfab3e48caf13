// Package service holds the portal's use cases: login, customer intake, the
// customer directory, customer editing and the dashboard. Services are shared;
// per-device working state lives in a Workspace.
package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/port"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"
)

var authTracer = otel.Tracer("service/auth")

// User-facing login messages.
const (
	msgLoginSuccess = "Login successful! Redirecting..."
	msgServerError  = "Server error. Please try again later."
	msgLoginFailed  = "Something went wrong! Please try again."
	msgNetworkError = "Network error. Please try again later."
	msgLoggedOut    = "Logged out successfully"
)

// AuthService orchestrates login and logout against the credential gateway
// and the session store.
type AuthService struct {
	gateway     port.CredentialGateway
	landingPath string
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService creates a new auth service. landingPath is where a successful
// login sends the operator.
func NewAuthService(gateway port.CredentialGateway, landingPath string, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		gateway:     gateway,
		landingPath: landingPath,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// ============================================================
// Login (POST /api/auth/login)
// ============================================================

func (s *AuthService) Login(ctx context.Context, h *session.Handle, ws *Workspace, w http.ResponseWriter, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("store.id", req.StoreID))

	if errs := ValidateLogin(req); len(errs) > 0 {
		return nil, &domain.ErrFieldErrors{Fields: errs}
	}

	if !ws.BeginLogin() {
		return nil, &domain.ErrConflict{Message: "A login is already in progress"}
	}
	defer ws.EndLogin()

	start := s.now()
	outcome := s.gateway.Login(ctx, req.StoreID, req.Password)
	s.metrics.RecordRequestDuration("login", s.now().Sub(start))

	switch o := outcome.(type) {
	case domain.LoginSuccess:
		storeID := o.StoreID
		if storeID == "" {
			storeID = req.StoreID
		}
		login := domain.CurrentLogin{EmployeeID: o.EmployeeID, StoreID: storeID}
		identity := domain.Identity{Username: storeID, LoginTime: s.now().UTC()}

		if err := h.Login(ctx, w, login, identity); err != nil {
			s.metrics.IncrLogin("persist_error")
			return nil, fmt.Errorf("persist session: %w", err)
		}
		s.metrics.IncrLogin("success")
		s.logger.Info("store login succeeded",
			zap.String("store_id", storeID),
			zap.String("employee_id", o.EmployeeID),
		)
		return &domain.LoginResponse{
			EmployeeID:    o.EmployeeID,
			StoreID:       storeID,
			Redirect:      s.landingPath,
			Notifications: []domain.Notification{domain.Success(msgLoginSuccess)},
		}, nil

	case domain.InvalidCredentials:
		s.metrics.IncrLogin("invalid_credentials")
		s.logger.Warn("store login rejected",
			zap.String("store_id", req.StoreID),
			zap.String("field", o.Field),
		)
		return nil, &domain.ErrAuth{Fields: o.Fields(), Message: o.Message}

	case domain.LoginServerError:
		s.metrics.IncrLogin("server_error")
		return nil, &domain.ErrOperationFailed{
			Message: msgServerError,
			Err:     &domain.ErrServer{Service: "CustomerLogin", Status: o.Status},
		}

	case domain.LoginNetworkError:
		s.metrics.IncrLogin("network_error")
		s.logger.Error("store login unreachable", zap.Error(o.Err))
		return nil, &domain.ErrOperationFailed{Message: msgNetworkError, Err: o.Err}

	case domain.LoginFailed:
		s.metrics.IncrLogin("failed")
		return nil, &domain.ErrOperationFailed{
			Message: msgLoginFailed,
			Err:     fmt.Errorf("login returned status %d: %s", o.Status, o.Message),
		}
	}

	s.metrics.IncrLogin("failed")
	return nil, &domain.ErrOperationFailed{Message: msgLoginFailed}
}

// ============================================================
// Logout (POST /api/auth/logout)
// ============================================================

func (s *AuthService) Logout(ctx context.Context, h *session.Handle, ws *Workspace, w http.ResponseWriter) (*domain.SuccessResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if err := h.Logout(ctx, w); err != nil {
		return nil, err
	}
	ws.Reset()

	return &domain.SuccessResponse{
		Message:       msgLoggedOut,
		Redirect:      "/",
		Notifications: []domain.Notification{domain.Success(msgLoggedOut)},
	}, nil
}

// ============================================================
// Session (GET /api/auth/session)
// ============================================================

func (s *AuthService) Session(h *session.Handle) *domain.SessionResponse {
	resp := &domain.SessionResponse{
		State:         h.State().String(),
		Authenticated: h.State() == session.Authenticated,
	}
	if resp.Authenticated {
		resp.Identity = h.Identity()
		resp.CurrentLogin = h.CurrentLogin()
	}
	return resp
}
