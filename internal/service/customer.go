package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/port"
)

var customerTracer = otel.Tracer("service/customer")

// User-facing edit messages.
const (
	msgCustomerLoadFailed = "Failed to fetch customer data."
	msgCustomerUpdated    = "Customer details updated successfully!"
	msgUpdateFailed       = "Update failed"
	msgEditRequired       = "Please fill in all required fields and upload both images."
)

// editRequired must be non-empty on update. The remaining fields are checked
// only when filled in.
var editRequired = []string{
	domain.FieldName,
	domain.FieldEmail,
	domain.FieldService,
	domain.FieldAadharImage,
	domain.FieldPanImage,
}

// CustomerService loads and updates one existing customer.
type CustomerService struct {
	store    port.CustomerStore
	uploader port.DocumentUploader
	catalog  *CatalogService
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(store port.CustomerStore, uploader port.DocumentUploader, catalog *CatalogService, metrics *observability.Metrics, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		store:    store,
		uploader: uploader,
		catalog:  catalog,
		metrics:  metrics,
		logger:   logger,
	}
}

// ============================================================
// Load (GET /api/customers/{id})
// ============================================================

func (s *CustomerService) Load(ctx context.Context, customerID string) (*domain.CustomerEditView, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.Load")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	record, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, err
		}
		s.logger.Error("failed to load customer", zap.String("customer_id", customerID), zap.Error(err))
		return nil, &domain.ErrOperationFailed{Message: msgCustomerLoadFailed, Err: err}
	}

	// The form still opens without a catalog; the service select is just empty.
	services, err := s.catalog.List(ctx)
	if err != nil {
		services = []domain.ProductService{}
	}

	return &domain.CustomerEditView{
		CustomerID: customerID,
		Draft:      domain.DraftFromRecord(record),
		Services:   services,
	}, nil
}

// ============================================================
// Upload (POST /api/customers/{id}/uploads/{kind})
// ============================================================

// Upload checks and sends a replacement document. The caller puts the
// returned file name into the draft it submits with Update.
func (s *CustomerService) Upload(ctx context.Context, kind domain.DocumentKind, fileName, contentType string, data []byte) (*domain.UploadResult, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.Upload")
	defer span.End()

	if err := CheckDocument(kind, contentType, data); err != nil {
		s.metrics.IncrUpload(string(kind), "rejected_locally")
		return nil, err
	}
	result, err := s.uploader.UploadDocument(ctx, kind, fileName, contentType, data)
	if err != nil {
		s.metrics.IncrUpload(string(kind), "failed")
		return nil, err
	}
	s.metrics.IncrUpload(string(kind), "uploaded")
	return result, nil
}

// ============================================================
// Update (PUT /api/customers/{id})
// ============================================================

// Update clamps and validates draft, then replaces the customer's details.
func (s *CustomerService) Update(ctx context.Context, customerID string, draft domain.CustomerDraft) (*domain.SuccessResponse, error) {
	ctx, span := customerTracer.Start(ctx, "CustomerService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	for _, field := range domain.DraftFields {
		draft.Set(field, ClampField(field, draft.Get(field)))
	}

	errs := make(map[string]string)
	for _, field := range editRequired {
		if strings.TrimSpace(draft.Get(field)) == "" {
			errs[field] = msgEditRequired
		}
	}
	if len(errs) > 0 {
		s.metrics.IncrSubmission("invalid")
		return nil, &domain.ErrFieldErrors{Fields: errs}
	}

	services, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, field := range domain.DraftFields {
		value := draft.Get(field)
		if value == "" {
			continue
		}
		if msg := ValidateField(field, value, services); msg != "" {
			errs[field] = msg
		}
	}
	if len(errs) > 0 {
		s.metrics.IncrSubmission("invalid")
		return nil, &domain.ErrFieldErrors{Fields: errs}
	}

	payload := &domain.UpdateCustomerPayload{
		CustomerID:    customerID,
		Name:          draft.Name,
		Email:         draft.Email,
		Phone:         draft.Phone,
		AadharNumber:  draft.AadharNumber,
		PanNumber:     strings.ToUpper(draft.PanNumber),
		ProductAmount: draft.ProductAmount,
		AadharImage:   draft.AadharImage,
		PanImage:      draft.PanImage,
		ServiceID:     draft.ServiceID,
	}

	if _, err := s.store.UpdateCustomer(ctx, payload); err != nil {
		s.metrics.IncrSubmission("error")
		s.logger.Error("update customer failed", zap.String("customer_id", customerID), zap.Error(err))

		msg := msgUpdateFailed
		var rejected *domain.ErrRejected
		if errors.As(err, &rejected) && rejected.Message != "" {
			msg = msgUpdateFailed + ": " + rejected.Message
		}
		return nil, &domain.ErrOperationFailed{Message: msg, Err: err}
	}

	s.metrics.IncrSubmission("updated")
	return &domain.SuccessResponse{
		Message:       msgCustomerUpdated,
		ID:            customerID,
		Redirect:      DirectoryPath,
		Notifications: []domain.Notification{domain.Success(msgCustomerUpdated)},
	}, nil
}
