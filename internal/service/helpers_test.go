package service_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/cache"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/kv"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/port/mocks"
	"github.com/boddenberg/store-portal-bfa-go/internal/service"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"
)

// pngBytes carries the PNG signature, enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newSessions() *session.Manager {
	return session.NewManager(kv.NewMemory(), session.Options{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
	}, observability.NewMetrics(), zap.NewNop())
}

// loggedIn returns an authenticated handle for store S1, employee E1.
func loggedIn(t *testing.T, m *session.Manager) *session.Handle {
	t.Helper()
	h := m.NewHandle("dev-1")
	err := h.Login(context.Background(), httptest.NewRecorder(),
		domain.CurrentLogin{EmployeeID: "E1", StoreID: "S1"},
		domain.Identity{Username: "S1", LoginTime: time.Now()},
	)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return h
}

func newCatalog(t *testing.T, store *mocks.MockCustomerStore) *service.CatalogService {
	t.Helper()
	c := cache.New[[]domain.ProductService](time.Minute)
	t.Cleanup(c.Close)
	return service.NewCatalogService(store, c, observability.NewMetrics(), zap.NewNop())
}

// validDraft fills every typed field with a value that passes validation.
func validDraft() domain.FieldPatch {
	return domain.FieldPatch{
		domain.FieldName:    "Asha Rao",
		domain.FieldEmail:   "asha@example.in",
		domain.FieldPhone:   "9876543210",
		domain.FieldAadhar:  "123456789012",
		domain.FieldPan:     "abcde1234f",
		domain.FieldAmount:  "2500.50",
		domain.FieldService: "1",
	}
}

func expectCatalog(store *mocks.MockCustomerStore) {
	store.EXPECT().ListServices(gomock.Any()).Return(catalog, nil).AnyTimes()
}
