package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
)

// ============================================================
// Shared helper functions
// ============================================================

// errorResponse is the body of every failed API call. Fields carries inline,
// field-scoped messages; Notifications carries toasts.
type errorResponse struct {
	Error         string                `json:"error"`
	Fields        map[string]string     `json:"fields,omitempty"`
	Notifications []domain.Notification `json:"notifications,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeNotifiedError(w http.ResponseWriter, status int, msg string, fields map[string]string) {
	resp := errorResponse{Error: msg, Fields: fields}
	if len(fields) == 0 {
		resp.Notifications = []domain.Notification{domain.Failure(msg)}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(dst)
}

// handleServiceError maps domain errors to HTTP responses. Field-scoped
// errors come back inline; everything else as a notification.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var (
		fieldErrs    *domain.ErrFieldErrors
		validation   *domain.ErrValidation
		upload       *domain.ErrUpload
		auth         *domain.ErrAuth
		duplicate    *domain.ErrDuplicate
		unauthorized *domain.ErrUnauthorized
		conflict     *domain.ErrConflict
		confirm      *domain.ErrConfirmationRequired
		failed       *domain.ErrOperationFailed
		notFound     *domain.ErrNotFound
		circuitOpen  *domain.ErrCircuitOpen
		server       *domain.ErrServer
		network      *domain.ErrNetwork
	)

	switch {
	case errors.As(err, &fieldErrs):
		logger.Debug("validation failed", zap.String("error", err.Error()))
		writeNotifiedError(w, http.StatusBadRequest, "validation failed", fieldErrs.Fields)
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeNotifiedError(w, http.StatusBadRequest, validation.Message, map[string]string{validation.Field: validation.Message})
	case errors.As(err, &upload):
		status := http.StatusBadGateway
		if upload.Local {
			status = http.StatusBadRequest
		}
		logger.Debug("upload rejected", zap.String("kind", string(upload.Kind)), zap.Bool("local", upload.Local))
		writeJSON(w, status, errorResponse{
			Error:         upload.Message,
			Fields:        map[string]string{upload.Kind.DraftField(): upload.Message},
			Notifications: []domain.Notification{domain.Failure(upload.Message)},
		})
	case errors.As(err, &auth):
		logger.Warn("invalid credentials", zap.Strings("fields", auth.Fields))
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error:         auth.Error(),
			Fields:        auth.FieldMessages(),
			Notifications: []domain.Notification{domain.Failure(auth.Error())},
		})
	case errors.As(err, &duplicate):
		logger.Debug("duplicate customer", zap.String("field", duplicate.Field))
		if duplicate.Field == "" {
			writeNotifiedError(w, http.StatusConflict, duplicate.Message, nil)
			return
		}
		writeNotifiedError(w, http.StatusConflict, duplicate.Message, map[string]string{duplicate.Field: duplicate.Message})
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeNotifiedError(w, http.StatusUnauthorized, unauthorized.Error(), nil)
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeNotifiedError(w, http.StatusConflict, conflict.Message, nil)
	case errors.As(err, &confirm):
		writeNotifiedError(w, http.StatusPreconditionRequired, err.Error(), nil)
	case errors.As(err, &failed):
		status := http.StatusBadGateway
		switch {
		case errors.As(err, &circuitOpen):
			status = http.StatusServiceUnavailable
		case errors.As(err, &notFound):
			status = http.StatusNotFound
		}
		logger.Error("operation failed", zap.Error(err))
		writeNotifiedError(w, status, failed.Message, nil)
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeNotifiedError(w, http.StatusNotFound, err.Error(), nil)
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeNotifiedError(w, http.StatusServiceUnavailable, err.Error(), nil)
	case errors.As(err, &server), errors.As(err, &network):
		logger.Error("backend unavailable", zap.Error(err))
		writeNotifiedError(w, http.StatusBadGateway, "Server error. Please try again later.", nil)
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeNotifiedError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
