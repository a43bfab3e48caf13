package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/export"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/port"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"
)

var directoryTracer = otel.Tracer("service/directory")

// PageSize is the number of customers per directory page.
const PageSize = 5

// Fallback store name when the list is empty.
const defaultStoreName = "Store"

// User-facing directory messages.
const (
	msgNoCustomers       = "No customers found for this store"
	msgFetchFailed       = "Failed to fetch customers"
	msgNoStoreID         = "Store ID not found. Please log in."
	msgCustomerDeleted   = "Customer deleted successfully"
	msgDeleteFailed      = "Failed to delete customer"
	msgDeleteNeedsReason = "delete customer"
)

// Export formats.
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ============================================================
// Per-device state
// ============================================================

// DirectoryState is one device's customer list with its filter and page.
type DirectoryState struct {
	mu        sync.RWMutex
	records   []domain.CustomerRecord
	storeName string
	info      string
	filter    domain.DirectoryFilter
	page      int
}

// NewDirectoryState creates an empty, unloaded directory.
func NewDirectoryState() *DirectoryState {
	return &DirectoryState{storeName: defaultStoreName, page: 1}
}

// Reset discards the loaded list, filter and page.
func (d *DirectoryState) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records = nil
	d.storeName = defaultStoreName
	d.info = ""
	d.filter = domain.DirectoryFilter{}
	d.page = 1
}

// filteredLocked applies the search and date range. Caller holds mu.
func (d *DirectoryState) filteredLocked() []domain.CustomerRecord {
	out := make([]domain.CustomerRecord, 0, len(d.records))
	for _, r := range d.records {
		if MatchesFilter(r, d.filter) {
			out = append(out, r)
		}
	}
	return out
}

func totalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

func (d *DirectoryState) viewLocked() *domain.DirectoryView {
	filtered := d.filteredLocked()
	pages := totalPages(len(filtered))

	start := (d.page - 1) * PageSize
	end := start + PageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return &domain.DirectoryView{
		StoreName:     d.storeName,
		Info:          d.info,
		Filter:        d.filter,
		Page:          d.page,
		PageSize:      PageSize,
		TotalPages:    pages,
		TotalFiltered: len(filtered),
		Customers:     append([]domain.CustomerRecord{}, filtered[start:end]...),
	}
}

// View returns a snapshot of the current page.
func (d *DirectoryState) View() *domain.DirectoryView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.viewLocked()
}

// MatchesFilter reports whether r passes the case-insensitive search across
// name, email, phone and service, and the inclusive day range on its creation
// date. Either range bound may be absent; a record without a date fails any
// range that has a bound.
func MatchesFilter(r domain.CustomerRecord, f domain.DirectoryFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hit := false
		for _, s := range []string{r.Name, r.Email, r.Phone, r.ServiceName} {
			if strings.Contains(strings.ToLower(s), q) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	if f.From == nil && f.To == nil {
		return true
	}
	if r.CreatedAt.IsZero() {
		return false
	}
	day := dayOf(r.CreatedAt.Time)
	if f.From != nil && day.Before(dayOf(*f.From)) {
		return false
	}
	if f.To != nil && day.After(dayOf(*f.To)) {
		return false
	}
	return true
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ============================================================
// DirectoryService
// ============================================================

// DirectoryService loads and manipulates a device's DirectoryState.
type DirectoryService struct {
	store   port.CustomerStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(store port.CustomerStore, metrics *observability.Metrics, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{store: store, metrics: metrics, logger: logger}
}

// Refresh reloads the store's customers. An empty list is an informational
// state, not an error. On failure the previous list is kept.
func (s *DirectoryService) Refresh(ctx context.Context, h *session.Handle, d *DirectoryState) (*domain.DirectoryView, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.Refresh")
	defer span.End()

	storeID := h.StoreID()
	if storeID == "" {
		return nil, &domain.ErrUnauthorized{Message: msgNoStoreID}
	}
	span.SetAttributes(attribute.String("store.id", storeID))

	records, err := s.store.ListCustomers(ctx, storeID)
	if err != nil {
		s.logger.Error("failed to fetch customers", zap.String("store_id", storeID), zap.Error(err))
		return nil, &domain.ErrOperationFailed{Message: msgFetchFailed, Err: err}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var notes []domain.Notification
	d.records = records
	if len(records) == 0 {
		d.storeName = defaultStoreName
		d.info = msgNoCustomers
		notes = append(notes, domain.Info(msgNoCustomers))
	} else {
		d.storeName = records[0].StoreName
		if d.storeName == "" {
			d.storeName = defaultStoreName
		}
		d.info = ""
	}
	if pages := totalPages(len(d.filteredLocked())); d.page > pages {
		d.page = 1
	}

	v := d.viewLocked()
	v.Notifications = notes
	return v, nil
}

// SetFilter replaces the filter and returns to page 1.
func (s *DirectoryService) SetFilter(d *DirectoryState, f domain.DirectoryFilter) *domain.DirectoryView {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = f
	d.page = 1
	return d.viewLocked()
}

// SetPage moves to page n. Out-of-range pages are ignored.
func (s *DirectoryService) SetPage(d *DirectoryState, n int) *domain.DirectoryView {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n >= 1 && n <= totalPages(len(d.filteredLocked())) {
		d.page = n
	}
	return d.viewLocked()
}

// Delete removes a customer after explicit confirmation. Success drops the
// record from the local list without re-fetching; failure changes nothing.
func (s *DirectoryService) Delete(ctx context.Context, d *DirectoryState, customerID string, confirmed bool) (*domain.DirectoryView, error) {
	ctx, span := directoryTracer.Start(ctx, "DirectoryService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	if !confirmed {
		return nil, &domain.ErrConfirmationRequired{Action: msgDeleteNeedsReason}
	}

	if err := s.store.DeleteCustomer(ctx, customerID); err != nil {
		s.logger.Error("failed to delete customer", zap.String("customer_id", customerID), zap.Error(err))
		return nil, &domain.ErrOperationFailed{Message: msgDeleteFailed, Err: err}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.records[:0:0]
	for _, r := range d.records {
		if r.CustomerID.String() != customerID {
			kept = append(kept, r)
		}
	}
	d.records = kept
	if pages := totalPages(len(d.filteredLocked())); d.page > pages && pages > 0 {
		d.page = pages
	}

	v := d.viewLocked()
	v.Notifications = []domain.Notification{domain.Success(msgCustomerDeleted)}
	return v, nil
}

// Export renders the whole filtered set (every page) in the given format and
// returns the document with its download name. It reads state only.
func (s *DirectoryService) Export(ctx context.Context, d *DirectoryState, format string) ([]byte, string, error) {
	_, span := directoryTracer.Start(ctx, "DirectoryService.Export")
	defer span.End()
	span.SetAttributes(attribute.String("export.format", format))

	d.mu.RLock()
	filtered := d.filteredLocked()
	storeName := d.storeName
	d.mu.RUnlock()

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatXLSX:
		data, err = export.XLSX(filtered)
	case FormatPDF:
		data, err = export.PDF(storeName, filtered)
	default:
		return nil, "", &domain.ErrValidation{Field: "format", Message: "unsupported export format"}
	}
	if err != nil {
		return nil, "", err
	}
	return data, export.FileName(storeName, format), nil
}
