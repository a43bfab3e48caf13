package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/service"
)

// multipartSlack leaves room for the form envelope around a maximum-size file,
// so an oversized file is reported by the size rule rather than the reader.
const multipartSlack = 1 << 20

// ============================================================
// Service catalog (GET /api/services)
// ============================================================

func listServicesHandler(catalog *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/services")
		defer span.End()

		services, err := catalog.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, services)
	}
}

// ============================================================
// Add customer (/api/intake)
// ============================================================

// GET /api/intake
func intakeViewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ws, ok := requestSession(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, ws.Intake.View())
	}
}

// PATCH /api/intake
func intakeChangeHandler(intake *service.IntakeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/intake")
		defer span.End()

		_, ws, ok := requestSession(w, r)
		if !ok {
			return
		}

		var patch domain.FieldPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		view, err := intake.Change(ctx, ws.Intake, patch)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// DELETE /api/intake
func intakeResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ws, ok := requestSession(w, r)
		if !ok {
			return
		}
		ws.Intake.Reset()
		writeJSON(w, http.StatusOK, ws.Intake.View())
	}
}

// POST /api/intake/blur/{field}
func intakeBlurHandler(intake *service.IntakeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/intake/blur/{field}")
		defer span.End()

		_, ws, ok := requestSession(w, r)
		if !ok {
			return
		}

		view, err := intake.Blur(ctx, ws.Intake, chi.URLParam(r, "field"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// POST /api/intake/uploads/{kind}
func intakeUploadHandler(intake *service.IntakeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/intake/uploads/{kind}")
		defer span.End()

		_, ws, ok := requestSession(w, r)
		if !ok {
			return
		}

		kind, valid := domain.ParseDocumentKind(chi.URLParam(r, "kind"))
		if !valid {
			writeError(w, http.StatusBadRequest, "upload kind must be Aadhar or Pan")
			return
		}
		span.SetAttributes(attribute.String("document.kind", string(kind)))

		doc, err := readDocument(w, r, kind)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		view, err := intake.Upload(ctx, ws.Intake, kind, doc.name, doc.contentType, doc.data)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// POST /api/intake/submit
func intakeSubmitHandler(intake *service.IntakeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/intake/submit")
		defer span.End()

		h, ws, ok := requestSession(w, r)
		if !ok {
			return
		}

		result, err := intake.Submit(ctx, h, ws.Intake)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		setFlash(w, result.Notifications...)
		writeJSON(w, http.StatusCreated, result)
	}
}

// GET /api/intake/log
func intakeLogHandler(intake *service.IntakeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/intake/log")
		defer span.End()

		h, _, ok := requestSession(w, r)
		if !ok {
			return
		}

		entries, err := intake.SubmissionLog(ctx, h)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// ============================================================
// Multipart document reading
// ============================================================

type uploadedDocument struct {
	name        string
	contentType string
	data        []byte
}

// readDocument reads the "file" part. At most one byte past the size limit is
// kept, which is enough for the size rule to reject it.
func readDocument(w http.ResponseWriter, r *http.Request, kind domain.DocumentKind) (*uploadedDocument, error) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxDocumentBytes+multipartSlack)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &domain.ErrUpload{Kind: kind, Message: "File too large. Max size 1MB.", Local: true}
		}
		return nil, &domain.ErrUpload{Kind: kind, Message: "Please select a file.", Local: true}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxDocumentBytes+1))
	if err != nil {
		return nil, &domain.ErrUpload{Kind: kind, Message: "Please select a file.", Local: true}
	}
	return &uploadedDocument{
		name:        header.Filename,
		contentType: header.Header.Get("Content-Type"),
		data:        data,
	}, nil
}
