package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/service"
)

// ============================================================
// Edit customer (/api/customers/{id})
// ============================================================

// GET /api/customers/{id}
func getCustomerHandler(svc *service.CustomerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/customers/{id}")
		defer span.End()

		customerID := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("customer.id", customerID))

		view, err := svc.Load(ctx, customerID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// PUT /api/customers/{id}
func updateCustomerHandler(svc *service.CustomerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/customers/{id}")
		defer span.End()

		customerID := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("customer.id", customerID))

		var draft domain.CustomerDraft
		if err := decodeJSON(w, r, &draft); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := svc.Update(ctx, customerID, draft)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		setFlash(w, resp.Notifications...)
		writeJSON(w, http.StatusOK, resp)
	}
}

// POST /api/customers/{id}/uploads/{kind}
func customerUploadHandler(svc *service.CustomerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/customers/{id}/uploads/{kind}")
		defer span.End()

		kind, valid := domain.ParseDocumentKind(chi.URLParam(r, "kind"))
		if !valid {
			writeError(w, http.StatusBadRequest, "upload kind must be Aadhar or Pan")
			return
		}

		doc, err := readDocument(w, r, kind)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		result, err := svc.Upload(ctx, kind, doc.name, doc.contentType, doc.data)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ============================================================
// Dashboard (GET /api/dashboard)
// ============================================================

func dashboardHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/dashboard")
		defer span.End()

		h, _, ok := requestSession(w, r)
		if !ok {
			return
		}

		summary, err := svc.Summary(ctx, h)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
