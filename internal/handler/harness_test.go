package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/handler"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/cache"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/client"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/kv"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/store-portal-bfa-go/internal/service"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"
)

const testPassword = "secret1"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// ============================================================
// Fake store backend
// ============================================================

// fakeBackend is an in-memory stand-in for the store backend's HTTP API.
type fakeBackend struct {
	mu          sync.Mutex
	loginStatus int // non-zero forces the login endpoint to answer with this status
	customers   []domain.CustomerRecord
	logins      int
	creates     int
	deletes     int
	uploads     int
	srv         *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /CustomerLogin", b.login)
	mux.HandleFunc("GET /GetProductService", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, []map[string]any{
			{"Productservices_Id": 1, "service_name": "Gold Loan"},
			{"Productservices_Id": 2, "service_name": "Insurance"},
		})
	})
	mux.HandleFunc("POST /CreateCustomer", b.create)
	mux.HandleFunc("GET /GetCustomersByStoreId", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeBody(w, http.StatusOK, b.customers)
	})
	mux.HandleFunc("GET /GetById/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, c := range b.customers {
			if c.CustomerID.String() == r.PathValue("id") {
				writeBody(w, http.StatusOK, []domain.CustomerRecord{c})
				return
			}
		}
		writeBody(w, http.StatusOK, []domain.CustomerRecord{})
	})
	mux.HandleFunc("PUT /CustumerUpdate", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, map[string]string{"message": "updated"})
	})
	mux.HandleFunc("DELETE /DeleteCustomer", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.deletes++
		id := r.URL.Query().Get("id")
		kept := b.customers[:0]
		for _, c := range b.customers {
			if c.CustomerID.String() != id {
				kept = append(kept, c)
			}
		}
		b.customers = kept
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /BalancebyStoreid", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, []map[string]any{{"TotalBalance": 5000.75}})
	})
	mux.HandleFunc("POST /PostUserImage", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.uploads++
		b.mu.Unlock()
		_, header, err := r.FormFile("file")
		if err != nil {
			writeBody(w, http.StatusBadRequest, map[string]any{"success": false, "error": "no file"})
			return
		}
		writeBody(w, http.StatusOK, map[string]any{"success": true, "fileName": "srv-" + header.Filename})
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.logins++
	forced := b.loginStatus
	b.mu.Unlock()

	if forced != 0 {
		writeBody(w, forced, map[string]string{"message": "forced"})
		return
	}

	var req struct {
		GeneratedStoreID string `json:"GeneratedStoreID"`
		StorePassword    string `json:"StorePassword"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.StorePassword != testPassword {
		writeBody(w, http.StatusUnauthorized, map[string]string{"message": "Invalid Password"})
		return
	}
	writeBody(w, http.StatusOK, map[string]any{"status": 1, "EmployeeID": 7, "StoreID": req.GeneratedStoreID})
}

func (b *fakeBackend) create(w http.ResponseWriter, r *http.Request) {
	var p domain.CreateCustomerPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeBody(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.creates++
	for _, c := range b.customers {
		if strings.EqualFold(c.Email, p.Email) {
			writeBody(w, http.StatusOK, domain.BackendResult{Status: "0", Message: "Email already exists"})
			return
		}
	}
	b.customers = append(b.customers, domain.CustomerRecord{
		CustomerID:  domain.FlexString(strconv.Itoa(100 + len(b.customers))),
		Name:        p.Name,
		Email:       p.Email,
		Phone:       p.Phone,
		ServiceName: "Gold Loan",
		StoreName:   "MG Road",
		CreatedAt:   domain.Timestamp{Time: time.Now().UTC()},
	})
	writeBody(w, http.StatusOK, domain.BackendResult{Status: "1", Message: "Customer created"})
}

func (b *fakeBackend) seed(records ...domain.CustomerRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.customers = append(b.customers, records...)
}

func (b *fakeBackend) counts() (logins, creates, deletes, uploads int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logins, b.creates, b.deletes, b.uploads
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ============================================================
// Portal under test
// ============================================================

type portal struct {
	t       *testing.T
	backend *fakeBackend
	metrics *observability.Metrics
	srv     *httptest.Server
	client  *http.Client
}

func newPortal(t *testing.T) *portal {
	t.Helper()
	backend := newFakeBackend(t)
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	cb := resilience.NewCircuitBreaker("test-backend", client.IsBreakerSuccess, logger)
	rcfg := resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxConcurrency: 4}
	bc := client.NewBackendClient(backend.srv.Client(), backend.srv.URL, cb, rcfg, metrics, logger)

	sessions := session.NewManager(kv.NewMemory(), session.Options{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
	}, metrics, logger)
	workspaces := service.NewWorkspaces(time.Minute)
	t.Cleanup(workspaces.Close)
	catalogCache := cache.New[[]domain.ProductService](time.Minute)
	t.Cleanup(catalogCache.Close)
	catalog := service.NewCatalogService(bc, catalogCache, metrics, logger)

	svcs := &handler.Services{
		Auth:      service.NewAuthService(bc, "/store", metrics, logger),
		Catalog:   catalog,
		Intake:    service.NewIntakeService(bc, bc, catalog, false, metrics, logger),
		Directory: service.NewDirectoryService(bc, metrics, logger),
		Customer:  service.NewCustomerService(bc, bc, catalog, metrics, logger),
		Dashboard: service.NewDashboardService(bc, metrics, logger),
	}
	router := handler.NewRouter(svcs, handler.RouterConfig{
		Sessions:   sessions,
		Workspaces: workspaces,
		Edge: handler.EdgeConfig{
			ProtectedPrefix: "/store",
			LoginPath:       "/storeLogin",
			LandingPath:     "/store",
		},
		PublicLandingPath: "/",
	}, metrics, logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &portal{
		t:       t,
		backend: backend,
		metrics: metrics,
		srv:     srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// do sends a request through the cookie jar. body is JSON-encoded when non-nil.
func (p *portal) do(method, path string, body any) *http.Response {
	p.t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			p.t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, p.srv.URL+path, reader)
	if err != nil {
		p.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.t.Fatalf("%s %s: %v", method, path, err)
	}
	p.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// upload posts one document as the "file" part of a multipart form.
func (p *portal) upload(path, fileName, contentType string, data []byte) *http.Response {
	p.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		p.t.Fatalf("create part: %v", err)
	}
	part.Write(data)
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, p.srv.URL+path, &body)
	if err != nil {
		p.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := p.client.Do(req)
	if err != nil {
		p.t.Fatalf("upload %s: %v", path, err)
	}
	p.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (p *portal) login() {
	p.t.Helper()
	resp := p.do(http.MethodPost, "/api/auth/login", domain.LoginRequest{StoreID: "STORE01", Password: testPassword})
	if resp.StatusCode != http.StatusOK {
		p.t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// apiError mirrors the portal's error body.
type apiError struct {
	Error         string                `json:"error"`
	Fields        map[string]string     `json:"fields"`
	Notifications []domain.Notification `json:"notifications"`
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d: %s", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode, raw)
	}
}

func expectRedirect(t *testing.T, resp *http.Response, target string) {
	t.Helper()
	expectStatus(t, resp, http.StatusFound)
	if got := resp.Header.Get("Location"); got != target {
		t.Fatalf("expected redirect to %s, got %s", target, got)
	}
}
