package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/service"
)

// dateLayout is the layout of the directory's date-range inputs.
const dateLayout = "2006-01-02"

type filterRequest struct {
	Query string `json:"query"`
	From  string `json:"from"`
	To    string `json:"to"`
}

type pageRequest struct {
	Page int `json:"page"`
}

var exportContentTypes = map[string]string{
	service.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	service.FormatPDF:  "application/pdf",
}

// ============================================================
// Manage customers (/api/directory)
// ============================================================

// POST /api/directory/refresh
func directoryRefreshHandler(dir *service.DirectoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/directory/refresh")
		defer span.End()

		h, ws, ok := requestSession(w, r)
		if !ok {
			return
		}

		view, err := dir.Refresh(ctx, h, ws.Directory)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// GET /api/directory
func directoryViewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ws, ok := requestSession(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, ws.Directory.View())
	}
}

// PUT /api/directory/filter
func directoryFilterHandler(dir *service.DirectoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ws, ok := requestSession(w, r)
		if !ok {
			return
		}

		var req filterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		filter, err := parseFilter(req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, dir.SetFilter(ws.Directory, filter))
	}
}

// PUT /api/directory/page
func directoryPageHandler(dir *service.DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ws, ok := requestSession(w, r)
		if !ok {
			return
		}

		var req pageRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeJSON(w, http.StatusOK, dir.SetPage(ws.Directory, req.Page))
	}
}

// DELETE /api/directory/customers/{id}?confirm=true
func directoryDeleteHandler(dir *service.DirectoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/directory/customers/{id}")
		defer span.End()

		_, ws, ok := requestSession(w, r)
		if !ok {
			return
		}

		customerID := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("customer.id", customerID))
		confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

		view, err := dir.Delete(ctx, ws.Directory, customerID, confirmed)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// GET /api/directory/export.{format}
func directoryExportHandler(dir *service.DirectoryService, format string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/directory/export."+format)
		defer span.End()

		_, ws, ok := requestSession(w, r)
		if !ok {
			return
		}

		data, name, err := dir.Export(ctx, ws.Directory, format)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", exportContentTypes[format])
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func parseFilter(req filterRequest) (domain.DirectoryFilter, error) {
	f := domain.DirectoryFilter{Query: req.Query}
	if req.From != "" {
		t, err := time.Parse(dateLayout, req.From)
		if err != nil {
			return f, &domain.ErrValidation{Field: "from", Message: "start date must be YYYY-MM-DD"}
		}
		f.From = &t
	}
	if req.To != "" {
		t, err := time.Parse(dateLayout, req.To)
		if err != nil {
			return f, &domain.ErrValidation{Field: "to", Message: "end date must be YYYY-MM-DD"}
		}
		f.To = &t
	}
	return f, nil
}
