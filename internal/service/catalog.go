package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/port"
)

var catalogTracer = otel.Tracer("service/catalog")

const catalogCacheKey = "services"

// CatalogService serves the product-service catalog through a TTL cache.
type CatalogService struct {
	store   port.CustomerStore
	cache   port.Cache[[]domain.ProductService]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store port.CustomerStore, cache port.Cache[[]domain.ProductService], metrics *observability.Metrics, logger *zap.Logger) *CatalogService {
	return &CatalogService{store: store, cache: cache, metrics: metrics, logger: logger}
}

// List returns the catalog, from cache when fresh.
func (s *CatalogService) List(ctx context.Context) ([]domain.ProductService, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.List")
	defer span.End()

	if cached, ok := s.cache.Get(catalogCacheKey); ok {
		s.metrics.IncrCacheHit("catalog")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("catalog")

	services, err := s.store.ListServices(ctx)
	if err != nil {
		s.logger.Error("failed to load service catalog", zap.Error(err))
		return nil, &domain.ErrOperationFailed{Message: "Failed to load services", Err: err}
	}

	s.cache.Set(catalogCacheKey, services)
	return services, nil
}
