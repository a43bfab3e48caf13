// Package session owns the operator's authentication state for one browser
// device. The durable half lives in a KVStore namespaced per device; the
// cookie half travels with every request. Both are written together on login
// and cleared together on logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/port"
)

var tracer = otel.Tracer("session")

// State is where a Handle is in its lifecycle.
type State int

const (
	Unresolved State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unresolved"
	}
}

// Options configures a Manager.
type Options struct {
	Secret        []byte
	TTL           time.Duration
	SecureCookies bool
	Now           func() time.Time
}

// Manager is constructed once and shared by every request.
type Manager struct {
	kv      port.KVStore
	signer  *TokenSigner
	ttl     time.Duration
	secure  bool
	now     func() time.Time
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewManager creates a Manager. metrics may be nil.
func NewManager(kv port.KVStore, opts Options, metrics *observability.Metrics, logger *zap.Logger) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		kv:      kv,
		signer:  NewTokenSigner(opts.Secret, opts.TTL, opts.Now),
		ttl:     opts.TTL,
		secure:  opts.SecureCookies,
		now:     opts.Now,
		metrics: metrics,
		logger:  logger,
	}
}

// KV exposes the shared store, e.g. for readiness checks.
func (m *Manager) KV() port.KVStore { return m.kv }

// NewHandle creates an Unresolved handle for a device.
func (m *Manager) NewHandle(deviceID string) *Handle {
	return &Handle{
		manager:  m,
		deviceID: deviceID,
		store:    ForDevice(m.kv, deviceID),
		state:    Unresolved,
	}
}

// Resolve settles h from the device's durable token and the request cookie.
// A valid token in either place authenticates. KV read failures degrade to
// the cookie alone. When the durable token authenticates and the request does
// not carry it as a cookie, the cookie is written again so the edge sees the
// same session the durable store holds.
func (m *Manager) Resolve(ctx context.Context, h *Handle, w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(ctx, "Manager.Resolve")
	defer span.End()

	durable, err := h.loadDurable(ctx)
	if err != nil {
		m.logger.Warn("session: durable read failed",
			zap.String("device_id", h.deviceID),
			zap.Error(err),
		)
	}

	cookieValue := ""
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		cookieValue = cookie.Value
	}

	var claims *TokenClaims
	var token string
	if durable.token != "" {
		if c, err := m.signer.Parse(durable.token); err == nil {
			claims, token = c, durable.token
		}
	}
	if claims == nil && cookieValue != "" {
		if c, err := m.signer.Parse(cookieValue); err == nil {
			claims, token = c, cookieValue
		}
	}

	if claims != nil && cookieValue != token && w != nil {
		if maxAge := m.remainingSeconds(claims); maxAge > 0 {
			http.SetCookie(w, m.tokenCookie(token, maxAge))
			m.logger.Debug("session: token cookie restored", zap.String("device_id", h.deviceID))
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if claims == nil {
		h.state = Anonymous
		h.session = nil
		h.currentLogin = nil
		h.storeID = ""
	} else {
		identity := claims.identity()
		if durable.identity != nil {
			identity = *durable.identity
		}
		h.state = Authenticated
		h.session = &domain.Session{
			Identity: identity,
			Token:    token,
			IssuedAt: claims.IssuedAt.Time,
		}
		h.currentLogin = durable.currentLogin
		h.storeID = durable.storeID
		if h.storeID == "" {
			h.storeID = claims.Store
		}
	}

	span.SetAttributes(attribute.String("session.state", h.state.String()))
	if m.metrics != nil {
		m.metrics.IncrSessionResolved(h.state.String())
	}
}

// remainingSeconds is the token's remaining lifetime, for a restored cookie.
func (m *Manager) remainingSeconds(claims *TokenClaims) int {
	if claims.ExpiresAt == nil {
		return int(m.ttl.Seconds())
	}
	return int(claims.ExpiresAt.Time.Sub(m.now()).Seconds())
}

func (m *Manager) tokenCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     TokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ============================================================
// Handle
// ============================================================

// Handle is one request's view of the device session.
type Handle struct {
	manager  *Manager
	deviceID string
	store    port.KVStore

	mu           sync.RWMutex
	state        State
	session      *domain.Session
	currentLogin *domain.CurrentLogin
	storeID      string
}

// DeviceID identifies the browser device the handle belongs to.
func (h *Handle) DeviceID() string { return h.deviceID }

// Storage is the device-scoped durable store.
func (h *Handle) Storage() port.KVStore { return h.store }

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Session returns a copy of the active session, or nil.
func (h *Handle) Session() *domain.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session == nil {
		return nil
	}
	s := *h.session
	return &s
}

// Identity returns the displayed identity, or nil when not authenticated.
func (h *Handle) Identity() *domain.Identity {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session == nil {
		return nil
	}
	id := h.session.Identity
	return &id
}

// CurrentLogin returns the durable current-login entry, or nil when absent.
func (h *Handle) CurrentLogin() *domain.CurrentLogin {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.currentLogin == nil {
		return nil
	}
	cl := *h.currentLogin
	return &cl
}

// StoreID returns the store the operator is logged into, or "".
func (h *Handle) StoreID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.storeID
}

// Login persists a new session in both locations and authenticates the handle.
func (h *Handle) Login(ctx context.Context, w http.ResponseWriter, login domain.CurrentLogin, identity domain.Identity) error {
	ctx, span := tracer.Start(ctx, "Handle.Login")
	defer span.End()

	m := h.manager
	token, err := m.signer.Issue(login, identity)
	if err != nil {
		return err
	}

	infoJSON, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	loginJSON, err := json.Marshal(login)
	if err != nil {
		return fmt.Errorf("encode current login: %w", err)
	}
	historyJSON, err := json.Marshal(domain.LoginHistoryEntry{
		EmployeeID: login.EmployeeID,
		StoreID:    login.StoreID,
		Time:       m.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode login history: %w", err)
	}

	writes := []struct{ key, value string }{
		{KeyToken, token},
		{KeyInfo, string(infoJSON)},
		{KeyCurrentLogin, string(loginJSON)},
		{KeyEmployeeID, login.EmployeeID},
		{KeyStoreID, login.StoreID},
	}
	for _, kv := range writes {
		if err := h.store.Set(ctx, kv.key, kv.value); err != nil {
			m.logger.Error("session: durable write failed",
				zap.String("device_id", h.deviceID),
				zap.String("key", kv.key),
				zap.Error(err),
			)
			return fmt.Errorf("persist %s: %w", kv.key, err)
		}
	}
	if err := h.store.Append(ctx, KeyAllLogins, string(historyJSON)); err != nil {
		m.logger.Error("session: login history append failed", zap.Error(err))
		return fmt.Errorf("persist %s: %w", KeyAllLogins, err)
	}

	http.SetCookie(w, m.tokenCookie(token, int(m.ttl.Seconds())))

	h.mu.Lock()
	h.state = Authenticated
	h.session = &domain.Session{Identity: identity, Token: token, IssuedAt: m.now()}
	cl := login
	h.currentLogin = &cl
	h.storeID = login.StoreID
	h.mu.Unlock()

	m.logger.Info("session: logged in",
		zap.String("device_id", h.deviceID),
		zap.String("employee_id", login.EmployeeID),
		zap.String("store_id", login.StoreID),
	)
	return nil
}

// Logout clears the token, identity and current login from both locations.
// The login history and EmployeeID/StoreID entries are kept. Idempotent.
func (h *Handle) Logout(ctx context.Context, w http.ResponseWriter) error {
	ctx, span := tracer.Start(ctx, "Handle.Logout")
	defer span.End()

	m := h.manager
	err := h.store.Delete(ctx, KeyToken, KeyInfo, KeyCurrentLogin)
	if err != nil {
		m.logger.Error("session: durable delete failed",
			zap.String("device_id", h.deviceID),
			zap.Error(err),
		)
	}

	http.SetCookie(w, m.tokenCookie("", -1))

	h.mu.Lock()
	h.state = Anonymous
	h.session = nil
	h.currentLogin = nil
	h.storeID = ""
	h.mu.Unlock()

	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// ============================================================
// Durable reads
// ============================================================

type durableState struct {
	token        string
	identity     *domain.Identity
	currentLogin *domain.CurrentLogin
	storeID      string
}

func (h *Handle) loadDurable(ctx context.Context) (durableState, error) {
	var st durableState
	var errs []error

	if v, ok, err := h.store.Get(ctx, KeyToken); err != nil {
		errs = append(errs, err)
	} else if ok {
		st.token = v
	}

	if v, ok, err := h.store.Get(ctx, KeyInfo); err != nil {
		errs = append(errs, err)
	} else if ok {
		var id domain.Identity
		if json.Unmarshal([]byte(v), &id) == nil {
			st.identity = &id
		}
	}

	if v, ok, err := h.store.Get(ctx, KeyCurrentLogin); err != nil {
		errs = append(errs, err)
	} else if ok {
		var cl domain.CurrentLogin
		if json.Unmarshal([]byte(v), &cl) == nil {
			st.currentLogin = &cl
		}
	}

	if v, ok, err := h.store.Get(ctx, KeyStoreID); err != nil {
		errs = append(errs, err)
	} else if ok {
		st.storeID = v
	}

	return st, errors.Join(errs...)
}

// ============================================================
// Context plumbing
// ============================================================

type ctxKey struct{}

// WithHandle stores h in ctx.
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

// FromContext returns the request's handle, if any.
func FromContext(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(ctxKey{}).(*Handle)
	return h, ok && h != nil
}
