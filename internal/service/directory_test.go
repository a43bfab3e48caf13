package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/port/mocks"
	"github.com/boddenberg/store-portal-bfa-go/internal/service"
)

func customerRecords(n int) []domain.CustomerRecord {
	out := make([]domain.CustomerRecord, n)
	for i := range out {
		out[i] = domain.CustomerRecord{
			CustomerID:  domain.FlexString(fmt.Sprint(i + 1)),
			Name:        fmt.Sprintf("Customer %02d", i+1),
			Email:       fmt.Sprintf("c%02d@example.in", i+1),
			Phone:       fmt.Sprintf("98765432%02d", i+1),
			ServiceName: "Gold Loan",
			StoreName:   "MG Road",
			CreatedAt:   domain.Timestamp{Time: time.Date(2024, time.March, i+1, 10, 0, 0, 0, time.UTC)},
		}
	}
	return out
}

type directoryFixture struct {
	store *mocks.MockCustomerStore
	svc   *service.DirectoryService
	d     *service.DirectoryState
}

// newDirectory returns a directory already loaded with n records.
func newDirectory(t *testing.T, n int) *directoryFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCustomerStore(ctrl)
	f := &directoryFixture{
		store: store,
		svc:   service.NewDirectoryService(store, observability.NewMetrics(), zap.NewNop()),
		d:     service.NewDirectoryState(),
	}

	store.EXPECT().ListCustomers(gomock.Any(), "S1").Return(customerRecords(n), nil)
	if _, err := f.svc.Refresh(context.Background(), loggedIn(t, newSessions()), f.d); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return f
}

func TestRefresh_PaginatesByFive(t *testing.T) {
	f := newDirectory(t, 12)

	view := f.d.View()
	if view.StoreName != "MG Road" {
		t.Errorf("expected store name from first record, got %q", view.StoreName)
	}
	if view.TotalPages != 3 || view.Page != 1 || len(view.Customers) != 5 {
		t.Errorf("unexpected pagination page=%d pages=%d rows=%d", view.Page, view.TotalPages, len(view.Customers))
	}
}

func TestRefresh_EmptyListIsInformational(t *testing.T) {
	f := newDirectory(t, 0)

	view := f.d.View()
	if view.Info != "No customers found for this store" {
		t.Errorf("expected info message, got %q", view.Info)
	}
	if view.StoreName != "Store" || view.TotalPages != 0 || len(view.Customers) != 0 {
		t.Errorf("unexpected empty view %+v", view)
	}
}

func TestRefresh_RequiresStoreID(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockCustomerStore(ctrl)
	svc := service.NewDirectoryService(store, observability.NewMetrics(), zap.NewNop())

	_, err := svc.Refresh(context.Background(), newSessions().NewHandle("dev-9"), service.NewDirectoryState())
	var unauth *domain.ErrUnauthorized
	if !errors.As(err, &unauth) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRefresh_FailureKeepsPreviousList(t *testing.T) {
	f := newDirectory(t, 7)
	f.store.EXPECT().ListCustomers(gomock.Any(), "S1").Return(nil, errors.New("boom"))

	_, err := f.svc.Refresh(context.Background(), loggedIn(t, newSessions()), f.d)
	var opErr *domain.ErrOperationFailed
	if !errors.As(err, &opErr) || opErr.Message != "Failed to fetch customers" {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
	if got := f.d.View().TotalFiltered; got != 7 {
		t.Errorf("expected previous 7 records to remain, got %d", got)
	}
}

func TestSetPage_OutOfRangeIsNoOp(t *testing.T) {
	f := newDirectory(t, 12)

	f.svc.SetPage(f.d, 2)
	for _, n := range []int{0, -1, 4} {
		if got := f.svc.SetPage(f.d, n).Page; got != 2 {
			t.Errorf("SetPage(%d): expected to stay on page 2, got %d", n, got)
		}
	}
	if view := f.svc.SetPage(f.d, 3); view.Page != 3 || len(view.Customers) != 2 {
		t.Errorf("expected last page with 2 rows, got page=%d rows=%d", view.Page, len(view.Customers))
	}
}

func TestSetFilter_ResetsPage(t *testing.T) {
	f := newDirectory(t, 12)
	f.svc.SetPage(f.d, 3)

	view := f.svc.SetFilter(f.d, domain.DirectoryFilter{Query: "customer 1"})
	if view.Page != 1 {
		t.Errorf("expected page 1 after filter change, got %d", view.Page)
	}
	// Customer 10 to 12.
	if view.TotalFiltered != 3 {
		t.Errorf("expected 3 matches, got %d", view.TotalFiltered)
	}
}

func TestMatchesFilter(t *testing.T) {
	rec := domain.CustomerRecord{
		Name:        "Asha Rao",
		Email:       "asha@example.in",
		Phone:       "9876543210",
		ServiceName: "Gold Loan",
		CreatedAt:   domain.Timestamp{Time: time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC)},
	}
	day := func(d int) *time.Time {
		t := time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	tests := []struct {
		name   string
		filter domain.DirectoryFilter
		want   bool
	}{
		{"empty filter", domain.DirectoryFilter{}, true},
		{"name case-insensitive", domain.DirectoryFilter{Query: "ASHA"}, true},
		{"phone", domain.DirectoryFilter{Query: "98765"}, true},
		{"service", domain.DirectoryFilter{Query: "gold"}, true},
		{"no match", domain.DirectoryFilter{Query: "zed"}, false},
		{"from same day", domain.DirectoryFilter{From: day(5)}, true},
		{"to same day", domain.DirectoryFilter{To: day(5)}, true},
		{"from after", domain.DirectoryFilter{From: day(6)}, false},
		{"to before", domain.DirectoryFilter{To: day(4)}, false},
		{"inside range", domain.DirectoryFilter{From: day(1), To: day(31)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.MatchesFilter(rec, tt.filter); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	undated := rec
	undated.CreatedAt = domain.Timestamp{}
	if service.MatchesFilter(undated, domain.DirectoryFilter{From: day(1)}) {
		t.Error("expected a record without a date to fail a bounded range")
	}
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	f := newDirectory(t, 3)
	f.store.EXPECT().DeleteCustomer(gomock.Any(), gomock.Any()).Times(0)

	_, err := f.svc.Delete(context.Background(), f.d, "2", false)
	var confirm *domain.ErrConfirmationRequired
	if !errors.As(err, &confirm) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
}

func TestDelete_SuccessDropsRecordLocally(t *testing.T) {
	f := newDirectory(t, 3)
	f.store.EXPECT().DeleteCustomer(gomock.Any(), "2").Return(nil)

	view, err := f.svc.Delete(context.Background(), f.d, "2", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.TotalFiltered != 2 {
		t.Errorf("expected 2 records left, got %d", view.TotalFiltered)
	}
	for _, c := range view.Customers {
		if c.CustomerID == "2" {
			t.Error("expected customer 2 to be gone")
		}
	}
	if len(view.Notifications) != 1 || view.Notifications[0].Message != "Customer deleted successfully" {
		t.Errorf("unexpected notifications %+v", view.Notifications)
	}
}

func TestDelete_LastRowOfLastPageStepsBack(t *testing.T) {
	f := newDirectory(t, 6)
	f.svc.SetPage(f.d, 2)
	f.store.EXPECT().DeleteCustomer(gomock.Any(), "6").Return(nil)

	view, err := f.svc.Delete(context.Background(), f.d, "6", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Page != 1 || view.TotalPages != 1 {
		t.Errorf("expected to land on page 1 of 1, got %d of %d", view.Page, view.TotalPages)
	}
}

func TestDelete_FailureChangesNothing(t *testing.T) {
	f := newDirectory(t, 3)
	f.store.EXPECT().DeleteCustomer(gomock.Any(), "2").Return(errors.New("backend down"))

	_, err := f.svc.Delete(context.Background(), f.d, "2", true)
	var opErr *domain.ErrOperationFailed
	if !errors.As(err, &opErr) || opErr.Message != "Failed to delete customer" {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
	if got := f.d.View().TotalFiltered; got != 3 {
		t.Errorf("expected 3 records to remain, got %d", got)
	}
}

func TestExport_DoesNotMutateState(t *testing.T) {
	f := newDirectory(t, 12)
	f.svc.SetFilter(f.d, domain.DirectoryFilter{Query: "Customer"})
	f.svc.SetPage(f.d, 2)
	before := f.d.View()

	for _, format := range []string{service.FormatXLSX, service.FormatPDF} {
		data, name, err := f.svc.Export(context.Background(), f.d, format)
		if err != nil {
			t.Fatalf("export %s: %v", format, err)
		}
		if len(data) == 0 {
			t.Errorf("export %s: expected a document", format)
		}
		if name != "customers_for_MG Road_store."+format {
			t.Errorf("export %s: unexpected file name %q", format, name)
		}
	}

	after := f.d.View()
	if after.Page != before.Page || after.TotalFiltered != before.TotalFiltered || after.Filter.Query != before.Filter.Query {
		t.Errorf("expected export to leave state alone, before=%+v after=%+v", before, after)
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	f := newDirectory(t, 1)

	_, _, err := f.svc.Export(context.Background(), f.d, "csv")
	var vErr *domain.ErrValidation
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
