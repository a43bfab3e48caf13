package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/port"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"
)

var dashboardTracer = otel.Tracer("service/dashboard")

// Commission is fixed per store.
const storeCommission = "10%"

const msgSalesFailed = "Failed to fetch total sales"

// DashboardService builds the store landing summary.
type DashboardService struct {
	store   port.CustomerStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store port.CustomerStore, metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{store: store, metrics: metrics, logger: logger}
}

// Summary fetches the customer list and the store balance concurrently.
// A failed balance leaves sales at zero with an error notification; a failed
// list fails the summary.
func (s *DashboardService) Summary(ctx context.Context, h *session.Handle) (*domain.DashboardSummary, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Summary")
	defer span.End()

	storeID := h.StoreID()
	if storeID == "" {
		return nil, &domain.ErrUnauthorized{Message: "Invalid Store ID. Please log in again."}
	}
	span.SetAttributes(attribute.String("store.id", storeID))

	var (
		records    []domain.CustomerRecord
		balance    float64
		balanceErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.ListCustomers(gctx, storeID)
		return err
	})
	g.Go(func() error {
		balance, balanceErr = s.store.GetStoreBalance(gctx, storeID)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard: failed to fetch customers", zap.String("store_id", storeID), zap.Error(err))
		return nil, &domain.ErrOperationFailed{Message: msgFetchFailed, Err: err}
	}

	summary := &domain.DashboardSummary{
		StoreName:       defaultStoreName,
		TotalCustomers:  len(records),
		TotalSales:      balance,
		TotalCommission: storeCommission,
	}
	if len(records) > 0 && records[0].StoreName != "" {
		summary.StoreName = records[0].StoreName
	}
	if len(records) == 0 {
		summary.Notifications = append(summary.Notifications, domain.Info(msgNoCustomers))
	}
	if balanceErr != nil {
		s.logger.Warn("dashboard: failed to fetch balance", zap.String("store_id", storeID), zap.Error(balanceErr))
		summary.TotalSales = 0
		summary.Notifications = append(summary.Notifications, domain.Failure(msgSalesFailed))
	}
	return summary, nil
}
