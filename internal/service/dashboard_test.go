package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/cache"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/port/mocks"
	"github.com/boddenberg/store-portal-bfa-go/internal/service"
)

func newDashboard(t *testing.T) (*service.DashboardService, *mocks.MockCustomerStore) {
	t.Helper()
	store := mocks.NewMockCustomerStore(gomock.NewController(t))
	return service.NewDashboardService(store, observability.NewMetrics(), zap.NewNop()), store
}

func TestDashboardSummary(t *testing.T) {
	svc, store := newDashboard(t)
	store.EXPECT().ListCustomers(gomock.Any(), "S1").Return(customerRecords(4), nil)
	store.EXPECT().GetStoreBalance(gomock.Any(), "S1").Return(125000.5, nil)

	summary, err := svc.Summary(context.Background(), loggedIn(t, newSessions()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.StoreName != "MG Road" || summary.TotalCustomers != 4 || summary.TotalSales != 125000.5 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.TotalCommission != "10%" {
		t.Errorf("expected fixed commission, got %q", summary.TotalCommission)
	}
	if len(summary.Notifications) != 0 {
		t.Errorf("expected no notifications, got %+v", summary.Notifications)
	}
}

func TestDashboardSummary_BalanceFailureIsNotFatal(t *testing.T) {
	svc, store := newDashboard(t)
	store.EXPECT().ListCustomers(gomock.Any(), "S1").Return(customerRecords(2), nil)
	store.EXPECT().GetStoreBalance(gomock.Any(), "S1").Return(0.0, errors.New("down"))

	summary, err := svc.Summary(context.Background(), loggedIn(t, newSessions()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalSales != 0 || summary.TotalCustomers != 2 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if len(summary.Notifications) != 1 || summary.Notifications[0].Level != domain.LevelError {
		t.Errorf("expected one error notification, got %+v", summary.Notifications)
	}
}

func TestDashboardSummary_EmptyStore(t *testing.T) {
	svc, store := newDashboard(t)
	store.EXPECT().ListCustomers(gomock.Any(), "S1").Return(nil, nil)
	store.EXPECT().GetStoreBalance(gomock.Any(), "S1").Return(0.0, nil)

	summary, err := svc.Summary(context.Background(), loggedIn(t, newSessions()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.StoreName != "Store" || summary.TotalCustomers != 0 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if len(summary.Notifications) != 1 || summary.Notifications[0].Level != domain.LevelInfo {
		t.Errorf("expected one info notification, got %+v", summary.Notifications)
	}
}

func TestDashboardSummary_ListFailureFails(t *testing.T) {
	svc, store := newDashboard(t)
	store.EXPECT().ListCustomers(gomock.Any(), "S1").Return(nil, errors.New("down"))
	store.EXPECT().GetStoreBalance(gomock.Any(), "S1").Return(10.0, nil).AnyTimes()

	_, err := svc.Summary(context.Background(), loggedIn(t, newSessions()))
	var opErr *domain.ErrOperationFailed
	if !errors.As(err, &opErr) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
}

func TestDashboardSummary_RequiresStore(t *testing.T) {
	svc, _ := newDashboard(t)

	_, err := svc.Summary(context.Background(), newSessions().NewHandle("dev-5"))
	var unauth *domain.ErrUnauthorized
	if !errors.As(err, &unauth) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

// ============================================================
// Catalog
// ============================================================

func TestCatalogList_IsCached(t *testing.T) {
	store := mocks.NewMockCustomerStore(gomock.NewController(t))
	store.EXPECT().ListServices(gomock.Any()).Return(catalog, nil).Times(1)

	c := cache.New[[]domain.ProductService](time.Minute)
	defer c.Close()
	svc := service.NewCatalogService(store, c, observability.NewMetrics(), zap.NewNop())

	for i := 0; i < 3; i++ {
		services, err := svc.List(context.Background())
		if err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
		if len(services) != 2 {
			t.Fatalf("expected 2 services, got %d", len(services))
		}
	}
}

func TestCatalogList_FailureIsNotCached(t *testing.T) {
	store := mocks.NewMockCustomerStore(gomock.NewController(t))
	gomock.InOrder(
		store.EXPECT().ListServices(gomock.Any()).Return(nil, errors.New("down")),
		store.EXPECT().ListServices(gomock.Any()).Return(catalog, nil),
	)

	c := cache.New[[]domain.ProductService](time.Minute)
	defer c.Close()
	svc := service.NewCatalogService(store, c, observability.NewMetrics(), zap.NewNop())

	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("expected the first load to fail")
	}
	if services, err := svc.List(context.Background()); err != nil || len(services) != 2 {
		t.Fatalf("expected the retry to load, got %v / %v", services, err)
	}
}
