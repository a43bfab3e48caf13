package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/kv"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"
)

var fixedNow = time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)

func newManager(store *kv.Memory, now func() time.Time) *session.Manager {
	if now == nil {
		now = func() time.Time { return fixedNow }
	}
	return session.NewManager(store, session.Options{
		Secret: []byte("test-secret"),
		TTL:    7 * 24 * time.Hour,
		Now:    now,
	}, nil, zap.NewNop())
}

func login(t *testing.T, m *session.Manager, deviceID string) (*session.Handle, *http.Cookie) {
	t.Helper()
	h := m.NewHandle(deviceID)
	rec := httptest.NewRecorder()
	err := h.Login(context.Background(), rec,
		domain.CurrentLogin{EmployeeID: "E1", StoreID: "S1"},
		domain.Identity{Username: "S1", LoginTime: fixedNow},
	)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.TokenCookie {
			return h, c
		}
	}
	t.Fatal("expected token cookie to be set")
	return nil, nil
}

func TestNewHandle_IsUnresolved(t *testing.T) {
	m := newManager(kv.NewMemory(), nil)
	h := m.NewHandle("dev-1")
	if h.State() != session.Unresolved {
		t.Errorf("expected unresolved, got %s", h.State())
	}
	if h.Session() != nil || h.Identity() != nil || h.CurrentLogin() != nil {
		t.Error("expected no session data before resolution")
	}
}

func TestLogin_WritesBothLocations(t *testing.T) {
	store := kv.NewMemory()
	m := newManager(store, nil)
	h, cookie := login(t, m, "dev-1")

	if h.State() != session.Authenticated {
		t.Fatalf("expected authenticated, got %s", h.State())
	}
	if cookie.MaxAge != 7*24*60*60 || cookie.Path != "/" || !cookie.HttpOnly {
		t.Errorf("unexpected cookie attributes %+v", cookie)
	}

	ctx := context.Background()
	device := session.ForDevice(store, "dev-1")
	token, ok, _ := device.Get(ctx, session.KeyToken)
	if !ok || token != cookie.Value {
		t.Errorf("expected durable token to match cookie, got %q", token)
	}
	for _, key := range []string{session.KeyInfo, session.KeyCurrentLogin, session.KeyEmployeeID, session.KeyStoreID} {
		if _, ok, _ := device.Get(ctx, key); !ok {
			t.Errorf("expected durable key %s to be written", key)
		}
	}
	history, _ := device.List(ctx, session.KeyAllLogins)
	if len(history) != 1 {
		t.Errorf("expected 1 login history entry, got %d", len(history))
	}

	cl := h.CurrentLogin()
	if cl == nil || cl.EmployeeID != "E1" || cl.StoreID != "S1" {
		t.Errorf("unexpected current login %+v", cl)
	}
}

func TestLogin_AppendsHistoryAcrossLogins(t *testing.T) {
	store := kv.NewMemory()
	m := newManager(store, nil)
	login(t, m, "dev-1")
	login(t, m, "dev-1")

	history, _ := session.ForDevice(store, "dev-1").List(context.Background(), session.KeyAllLogins)
	if len(history) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(history))
	}
}

func TestResolve_ByDurableTokenOnly(t *testing.T) {
	store := kv.NewMemory()
	m := newManager(store, nil)
	login(t, m, "dev-1")

	h := m.NewHandle("dev-1")
	rec := httptest.NewRecorder()
	m.Resolve(context.Background(), h, rec, httptest.NewRequest(http.MethodGet, "/store", nil))

	if h.State() != session.Authenticated {
		t.Fatalf("expected authenticated, got %s", h.State())
	}
	if id := h.Identity(); id == nil || id.Username != "S1" {
		t.Errorf("unexpected identity %+v", id)
	}
	if h.StoreID() != "S1" {
		t.Errorf("expected store S1, got %q", h.StoreID())
	}

	// The missing cookie is written back with the durable token.
	var restored *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.TokenCookie {
			restored = c
		}
	}
	if restored == nil || restored.Value != h.Session().Token {
		t.Fatalf("expected the token cookie to be restored, got %+v", restored)
	}
	if restored.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Errorf("expected the remaining token lifetime as max-age, got %d", restored.MaxAge)
	}
}

func TestResolve_MatchingCookieIsNotRewritten(t *testing.T) {
	m := newManager(kv.NewMemory(), nil)
	_, cookie := login(t, m, "dev-1")

	h := m.NewHandle("dev-1")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/store", nil)
	req.AddCookie(cookie)
	m.Resolve(context.Background(), h, rec, req)

	if h.State() != session.Authenticated {
		t.Fatalf("expected authenticated, got %s", h.State())
	}
	if n := len(rec.Result().Cookies()); n != 0 {
		t.Errorf("expected no cookie to be written, got %d", n)
	}
}

func TestResolve_ByCookieOnly(t *testing.T) {
	m := newManager(kv.NewMemory(), nil)
	_, cookie := login(t, m, "dev-1")

	// A different device has no durable state; the cookie alone authenticates.
	h := m.NewHandle("dev-2")
	req := httptest.NewRequest(http.MethodGet, "/store", nil)
	req.AddCookie(cookie)
	m.Resolve(context.Background(), h, httptest.NewRecorder(), req)

	if h.State() != session.Authenticated {
		t.Fatalf("expected authenticated, got %s", h.State())
	}
	if id := h.Identity(); id == nil || id.Username != "S1" {
		t.Errorf("expected identity from token claims, got %+v", id)
	}
	if h.CurrentLogin() != nil {
		t.Error("expected no current login without the durable entry")
	}
	if h.StoreID() != "S1" {
		t.Errorf("expected store from claims, got %q", h.StoreID())
	}
}

func TestResolve_NothingIsAnonymous(t *testing.T) {
	m := newManager(kv.NewMemory(), nil)
	h := m.NewHandle("dev-1")
	m.Resolve(context.Background(), h, httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if h.State() != session.Anonymous {
		t.Errorf("expected anonymous, got %s", h.State())
	}
}

func TestResolve_ExpiredTokenIsAnonymous(t *testing.T) {
	store := kv.NewMemory()
	now := fixedNow
	m := newManager(store, func() time.Time { return now })
	_, cookie := login(t, m, "dev-1")

	now = fixedNow.Add(8 * 24 * time.Hour)
	h := m.NewHandle("dev-1")
	req := httptest.NewRequest(http.MethodGet, "/store", nil)
	req.AddCookie(cookie)
	m.Resolve(context.Background(), h, httptest.NewRecorder(), req)

	if h.State() != session.Anonymous {
		t.Errorf("expected anonymous after expiry, got %s", h.State())
	}
}

func TestResolve_ForgedTokenIsAnonymous(t *testing.T) {
	m := newManager(kv.NewMemory(), nil)
	h := m.NewHandle("dev-1")
	req := httptest.NewRequest(http.MethodGet, "/store", nil)
	req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: "not-a-token"})
	m.Resolve(context.Background(), h, httptest.NewRecorder(), req)

	if h.State() != session.Anonymous {
		t.Errorf("expected anonymous, got %s", h.State())
	}
}

func TestLogout_ClearsBothLocationsAndIsIdempotent(t *testing.T) {
	store := kv.NewMemory()
	m := newManager(store, nil)
	h, _ := login(t, m, "dev-1")

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		if err := h.Logout(context.Background(), rec); err != nil {
			t.Fatalf("logout %d: %v", i, err)
		}
		if h.State() != session.Anonymous {
			t.Errorf("expected anonymous after logout, got %s", h.State())
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
			t.Errorf("expected the token cookie to be expired, got %+v", cookies)
		}
	}

	ctx := context.Background()
	device := session.ForDevice(store, "dev-1")
	for _, key := range []string{session.KeyToken, session.KeyInfo, session.KeyCurrentLogin} {
		if _, ok, _ := device.Get(ctx, key); ok {
			t.Errorf("expected %s to be removed", key)
		}
	}
	if _, ok, _ := device.Get(ctx, session.KeyStoreID); !ok {
		t.Error("expected StoreID to survive logout")
	}

	// A fresh resolution without the cookie is anonymous.
	fresh := m.NewHandle("dev-1")
	m.Resolve(ctx, fresh, httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/store", nil))
	if fresh.State() != session.Anonymous {
		t.Errorf("expected anonymous, got %s", fresh.State())
	}
}

type failingKV struct{ *kv.Memory }

func (f *failingKV) Set(context.Context, string, string) error { return errors.New("kv down") }

func TestLogin_DurableWriteFailureIsReturned(t *testing.T) {
	m := session.NewManager(&failingKV{Memory: kv.NewMemory()}, session.Options{
		Secret: []byte("s"), TTL: time.Hour,
	}, nil, zap.NewNop())
	h := m.NewHandle("dev-1")

	rec := httptest.NewRecorder()
	err := h.Login(context.Background(), rec, domain.CurrentLogin{EmployeeID: "E1", StoreID: "S1"}, domain.Identity{Username: "S1"})
	if err == nil {
		t.Fatal("expected error when the durable store rejects writes")
	}
	if h.State() == session.Authenticated {
		t.Error("expected the handle to stay unauthenticated")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("expected no cookie after a failed durable write")
	}
}

func TestContextRoundTrip(t *testing.T) {
	m := newManager(kv.NewMemory(), nil)
	h := m.NewHandle("dev-1")
	ctx := session.WithHandle(context.Background(), h)

	got, ok := session.FromContext(ctx)
	if !ok || got != h {
		t.Error("expected the same handle back from context")
	}
	if _, ok := session.FromContext(context.Background()); ok {
		t.Error("expected no handle in a bare context")
	}
}

func TestSubmissionLogKey(t *testing.T) {
	if got := session.SubmissionLogKey("E1", "S1"); got != "customerData_E1_S1" {
		t.Errorf("unexpected key %q", got)
	}
}
