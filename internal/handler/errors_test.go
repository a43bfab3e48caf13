package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		wantField string
	}{
		{"field errors", &domain.ErrFieldErrors{Fields: map[string]string{domain.FieldEmail: "Invalid email"}}, http.StatusBadRequest, domain.FieldEmail},
		{"validation", &domain.ErrValidation{Field: "from", Message: "bad date"}, http.StatusBadRequest, "from"},
		{"local upload", &domain.ErrUpload{Kind: domain.DocumentPan, Message: "too big", Local: true}, http.StatusBadRequest, domain.FieldPanImage},
		{"remote upload", &domain.ErrUpload{Kind: domain.DocumentAadhar, Message: "Upload failed"}, http.StatusBadGateway, domain.FieldAadharImage},
		{"credentials", &domain.ErrAuth{Fields: []string{domain.FieldStoreID}}, http.StatusUnauthorized, domain.FieldStoreID},
		{"duplicate field", &domain.ErrDuplicate{Field: domain.FieldPhone, Message: "Phone already exists"}, http.StatusConflict, domain.FieldPhone},
		{"duplicate unnamed", &domain.ErrDuplicate{Message: "Customer already exists"}, http.StatusConflict, ""},
		{"unauthorized", &domain.ErrUnauthorized{}, http.StatusUnauthorized, ""},
		{"conflict", &domain.ErrConflict{Message: "login in progress"}, http.StatusConflict, ""},
		{"confirmation", &domain.ErrConfirmationRequired{Action: "delete customer"}, http.StatusPreconditionRequired, ""},
		{"operation failed", &domain.ErrOperationFailed{Message: "Failed", Err: &domain.ErrServer{Status: 500}}, http.StatusBadGateway, ""},
		{"operation not found", &domain.ErrOperationFailed{Message: "Failed", Err: &domain.ErrNotFound{Resource: "customer", ID: "1"}}, http.StatusNotFound, ""},
		{"operation circuit open", &domain.ErrOperationFailed{Message: "Failed", Err: &domain.ErrCircuitOpen{Service: "x"}}, http.StatusServiceUnavailable, ""},
		{"not found", &domain.ErrNotFound{Resource: "customer", ID: "1"}, http.StatusNotFound, ""},
		{"circuit open", &domain.ErrCircuitOpen{Service: "x"}, http.StatusServiceUnavailable, ""},
		{"network", fmt.Errorf("wrapped: %w", &domain.ErrNetwork{Service: "x", Err: errors.New("refused")}), http.StatusBadGateway, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, tt.err, zap.NewNop())

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error == "" {
				t.Error("expected an error message")
			}
			if tt.wantField != "" {
				if body.Fields[tt.wantField] == "" {
					t.Errorf("expected inline message on %s, got %v", tt.wantField, body.Fields)
				}
				return
			}
			if len(body.Fields) != 0 {
				t.Errorf("expected no inline fields, got %v", body.Fields)
			}
			if len(body.Notifications) != 1 || body.Notifications[0].Level != domain.LevelError {
				t.Errorf("expected one error notification, got %+v", body.Notifications)
			}
		})
	}
}

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	setFlash(rec, domain.Success("Customer added successfully!"))

	req := httptest.NewRequest(http.MethodGet, "/store/manageCustomer", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	out := httptest.NewRecorder()
	notes := popFlash(out, req)
	if len(notes) != 1 || notes[0].Message != "Customer added successfully!" {
		t.Fatalf("unexpected notifications %+v", notes)
	}

	cleared := false
	for _, c := range out.Result().Cookies() {
		if c.Name == flashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the flash cookie to be cleared once read")
	}
}
