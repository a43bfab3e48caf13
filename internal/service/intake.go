package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/port"
	"github.com/boddenberg/store-portal-bfa-go/internal/session"
)

var intakeTracer = otel.Tracer("service/intake")

// MaxDocumentBytes is the largest document image accepted for upload.
const MaxDocumentBytes = 1 << 20

// DirectoryPath is where a successful creation sends the operator.
const DirectoryPath = "/store/manageCustomer"

// User-facing intake messages.
const (
	msgInvalidFileType = "Invalid file type. Only JPG, PNG, GIF allowed."
	msgFileTooLarge    = "File too large. Max size 1MB."
	msgAadharRequired  = "Aadhar image required"
	msgPanRequired     = "PAN image required"
	msgNoCurrentLogin  = "No current login found!"
	msgCustomerAdded   = "Customer added successfully!"
	msgCreateFailed    = "Failed to add customer. Try again."
	msgUploadsBusy     = "Please wait for the document uploads to finish"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// duplicateFields maps a pattern over the lower-cased backend message to the
// draft field it names. The first match wins. Patterns match whole words so
// "company" never names the PAN field.
var duplicateFields = []struct {
	pattern *regexp.Regexp
	field   string
}{
	{regexp.MustCompile(`\be-?mail\b`), domain.FieldEmail},
	{regexp.MustCompile(`\bphone\b`), domain.FieldPhone},
	{regexp.MustCompile(`\baadh?aa?r\b`), domain.FieldAadhar},
	{regexp.MustCompile(`\bpan(card| ?number| ?no)?\b`), domain.FieldPan},
}

// DuplicateField returns the draft field a creation failure message names, or "".
func DuplicateField(message string) string {
	lower := strings.ToLower(message)
	for _, entry := range duplicateFields {
		if entry.pattern.MatchString(lower) {
			return entry.field
		}
	}
	return ""
}

// ============================================================
// Per-device state
// ============================================================

type uploadSlot struct {
	state      domain.UploadState
	fileName   string
	err        string
	generation uint64
}

// IntakeState is one device's add-customer form. Both upload slots may be in
// flight at once; every read and write goes through mu.
type IntakeState struct {
	mu      sync.Mutex
	draft   domain.CustomerDraft
	errors  map[string]string
	uploads map[domain.DocumentKind]*uploadSlot
}

// NewIntakeState creates an empty form.
func NewIntakeState() *IntakeState {
	st := &IntakeState{}
	st.resetLocked()
	return st
}

// Reset empties the form and both upload slots.
func (st *IntakeState) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.resetLocked()
}

func (st *IntakeState) resetLocked() {
	st.draft = domain.CustomerDraft{}
	st.errors = make(map[string]string)
	st.uploads = map[domain.DocumentKind]*uploadSlot{
		domain.DocumentAadhar: {state: domain.UploadIdle, generation: nextGeneration(st.uploads, domain.DocumentAadhar)},
		domain.DocumentPan:    {state: domain.UploadIdle, generation: nextGeneration(st.uploads, domain.DocumentPan)},
	}
}

// nextGeneration keeps generations increasing across resets so an upload that
// started before a reset can never land afterwards.
func nextGeneration(prev map[domain.DocumentKind]*uploadSlot, kind domain.DocumentKind) uint64 {
	if slot, ok := prev[kind]; ok {
		return slot.generation + 1
	}
	return 0
}

func (st *IntakeState) viewLocked() *domain.IntakeView {
	v := &domain.IntakeView{
		Draft:     st.draft,
		Errors:    make(map[string]string, len(st.errors)),
		Uploads:   make(map[domain.DocumentKind]domain.UploadView, len(st.uploads)),
		CanSubmit: true,
	}
	for k, msg := range st.errors {
		if msg != "" {
			v.Errors[k] = msg
			v.CanSubmit = false
		}
	}
	for kind, slot := range st.uploads {
		v.Uploads[kind] = domain.UploadView{State: slot.state, FileName: slot.fileName, Error: slot.err}
		if slot.state == domain.UploadUploading {
			v.CanSubmit = false
		}
	}
	return v
}

// View returns a snapshot of the form.
func (st *IntakeState) View() *domain.IntakeView {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.viewLocked()
}

// ============================================================
// IntakeService
// ============================================================

// IntakeService runs the add-customer workflow over a device's IntakeState.
type IntakeService struct {
	store          port.CustomerStore
	uploader       port.DocumentUploader
	catalog        *CatalogService
	sendEmployeeID bool
	metrics        *observability.Metrics
	logger         *zap.Logger
	now            func() time.Time
}

// NewIntakeService creates a new intake service. sendEmployeeID controls
// whether the creation payload carries the operator's EmployeeID.
func NewIntakeService(
	store port.CustomerStore,
	uploader port.DocumentUploader,
	catalog *CatalogService,
	sendEmployeeID bool,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *IntakeService {
	return &IntakeService{
		store:          store,
		uploader:       uploader,
		catalog:        catalog,
		sendEmployeeID: sendEmployeeID,
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
	}
}

// Services returns the catalog the service choice is validated against.
func (s *IntakeService) Services(ctx context.Context) ([]domain.ProductService, error) {
	return s.catalog.List(ctx)
}

// Change applies typed values: each is clamped, stored, then validated.
// Unknown field names are rejected.
func (s *IntakeService) Change(ctx context.Context, st *IntakeState, patch domain.FieldPatch) (*domain.IntakeView, error) {
	ctx, span := intakeTracer.Start(ctx, "IntakeService.Change")
	defer span.End()

	for field := range patch {
		if !isEditableField(field) {
			return nil, &domain.ErrValidation{Field: field, Message: "unknown field"}
		}
	}

	services, err := s.servicesFor(ctx, patch)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	for field, value := range patch {
		clamped := ClampField(field, value)
		st.draft.Set(field, clamped)
		st.errors[field] = ValidateField(field, clamped, services)
	}
	return st.viewLocked(), nil
}

// Blur validates the field's current value, as when the input loses focus.
func (s *IntakeService) Blur(ctx context.Context, st *IntakeState, field string) (*domain.IntakeView, error) {
	ctx, span := intakeTracer.Start(ctx, "IntakeService.Blur")
	defer span.End()

	if !isEditableField(field) {
		return nil, &domain.ErrValidation{Field: field, Message: "unknown field"}
	}
	services, err := s.servicesFor(ctx, domain.FieldPatch{field: ""})
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.errors[field] = ValidateField(field, st.draft.Get(field), services)
	return st.viewLocked(), nil
}

// servicesFor loads the catalog only when the patch touches the service choice.
func (s *IntakeService) servicesFor(ctx context.Context, patch domain.FieldPatch) ([]domain.ProductService, error) {
	if _, ok := patch[domain.FieldService]; !ok {
		return nil, nil
	}
	return s.catalog.List(ctx)
}

func isEditableField(field string) bool {
	for _, f := range domain.DraftFields {
		if f == field {
			return true
		}
	}
	return false
}

// ============================================================
// Uploads
// ============================================================

// CheckDocument applies the local type and size rules. Both the declared
// content type and the sniffed one must be an allowed image type.
func CheckDocument(kind domain.DocumentKind, declaredType string, data []byte) error {
	if len(data) > MaxDocumentBytes {
		return &domain.ErrUpload{Kind: kind, Message: msgFileTooLarge, Local: true}
	}
	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(declaredType, ";", 2)[0]))
	if !allowedImageTypes[declared] {
		return &domain.ErrUpload{Kind: kind, Message: msgInvalidFileType, Local: true}
	}
	if !allowedImageTypes[mimetype.Detect(data).String()] {
		return &domain.ErrUpload{Kind: kind, Message: msgInvalidFileType, Local: true}
	}
	return nil
}

// Upload checks and immediately uploads one document. A local rejection
// leaves the slot untouched. If another upload of the same kind starts while
// this one is in flight, this one's result is discarded.
func (s *IntakeService) Upload(ctx context.Context, st *IntakeState, kind domain.DocumentKind, fileName, contentType string, data []byte) (*domain.IntakeView, error) {
	ctx, span := intakeTracer.Start(ctx, "IntakeService.Upload")
	defer span.End()
	span.SetAttributes(attribute.String("document.kind", string(kind)))

	if err := CheckDocument(kind, contentType, data); err != nil {
		s.metrics.IncrUpload(string(kind), "rejected_locally")
		return nil, err
	}

	st.mu.Lock()
	slot := st.uploads[kind]
	slot.generation++
	gen := slot.generation
	slot.state = domain.UploadUploading
	slot.err = ""
	st.mu.Unlock()

	start := s.now()
	result, err := s.uploader.UploadDocument(ctx, kind, fileName, contentType, data)
	s.metrics.RecordRequestDuration("upload_document", s.now().Sub(start))

	st.mu.Lock()
	defer st.mu.Unlock()

	slot = st.uploads[kind]
	if slot.generation != gen {
		s.metrics.IncrUpload(string(kind), "superseded")
		return st.viewLocked(), nil
	}

	field := kind.DraftField()
	if err != nil {
		msg := "Upload failed."
		var uploadErr *domain.ErrUpload
		if errors.As(err, &uploadErr) && uploadErr.Message != "" {
			msg = uploadErr.Message
		}
		slot.state = domain.UploadFailed
		slot.fileName = ""
		slot.err = msg
		st.draft.Set(field, "")
		st.errors[field] = msg
		s.metrics.IncrUpload(string(kind), "failed")
		s.logger.Warn("document upload failed", zap.String("kind", string(kind)), zap.Error(err))
		return st.viewLocked(), nil
	}

	slot.state = domain.UploadUploaded
	slot.fileName = result.RemoteFileName
	slot.err = ""
	st.draft.Set(field, result.RemoteFileName)
	delete(st.errors, field)
	s.metrics.IncrUpload(string(kind), "uploaded")

	v := st.viewLocked()
	v.Notifications = []domain.Notification{domain.Success(string(kind) + " uploaded successfully!")}
	return v, nil
}

// ============================================================
// Submit (POST /api/intake/submit)
// ============================================================

// Submit re-validates the whole form and creates the customer. It never calls
// the backend while a field is invalid, an upload is not complete, or the
// session has no current login.
func (s *IntakeService) Submit(ctx context.Context, h *session.Handle, st *IntakeState) (*domain.SubmitResult, error) {
	ctx, span := intakeTracer.Start(ctx, "IntakeService.Submit")
	defer span.End()

	services, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	for _, slot := range st.uploads {
		if slot.state == domain.UploadUploading {
			st.mu.Unlock()
			return nil, &domain.ErrConflict{Message: msgUploadsBusy}
		}
	}

	errs := ValidateDraft(&st.draft, services)
	if st.uploads[domain.DocumentAadhar].state != domain.UploadUploaded {
		errs[domain.FieldAadharImage] = msgAadharRequired
	}
	if st.uploads[domain.DocumentPan].state != domain.UploadUploaded {
		errs[domain.FieldPanImage] = msgPanRequired
	}
	if len(errs) > 0 {
		for field, msg := range errs {
			st.errors[field] = msg
		}
		st.mu.Unlock()
		s.metrics.IncrSubmission("invalid")
		return nil, &domain.ErrFieldErrors{Fields: errs}
	}
	draft := st.draft
	st.mu.Unlock()

	current := h.CurrentLogin()
	if current == nil {
		s.metrics.IncrSubmission("no_login")
		return nil, &domain.ErrUnauthorized{Message: msgNoCurrentLogin}
	}

	payload := &domain.CreateCustomerPayload{
		CustomerDraft: draft,
		StoreID:       current.StoreID,
	}
	payload.PanNumber = strings.ToUpper(payload.PanNumber)
	if s.sendEmployeeID {
		payload.EmployeeID = current.EmployeeID
	}

	start := s.now()
	result, err := s.store.CreateCustomer(ctx, payload)
	s.metrics.RecordRequestDuration("create_customer", s.now().Sub(start))
	if err != nil {
		s.metrics.IncrSubmission("error")
		s.logger.Error("create customer failed", zap.String("store_id", current.StoreID), zap.Error(err))
		return nil, &domain.ErrOperationFailed{Message: msgCreateFailed, Err: err}
	}

	if !result.OK() {
		if field := DuplicateField(result.Message); field != "" {
			st.mu.Lock()
			st.errors[field] = result.Message
			st.mu.Unlock()
			s.metrics.IncrSubmission("duplicate")
			return nil, &domain.ErrDuplicate{Field: field, Message: result.Message}
		}
		s.metrics.IncrSubmission("rejected")
		return nil, &domain.ErrOperationFailed{Message: msgCreateFailed, Err: errors.New(result.Message)}
	}

	s.metrics.IncrSubmission("created")
	s.appendSubmissionLog(ctx, h, current, payload)

	st.Reset()

	s.logger.Info("customer created",
		zap.String("store_id", current.StoreID),
		zap.String("employee_id", current.EmployeeID),
	)
	return &domain.SubmitResult{
		Redirect:      DirectoryPath,
		Notifications: []domain.Notification{domain.Success(msgCustomerAdded)},
	}, nil
}

// appendSubmissionLog records the created draft locally. The backend already
// holds the customer, so a failure here is logged and not reported.
func (s *IntakeService) appendSubmissionLog(ctx context.Context, h *session.Handle, current *domain.CurrentLogin, payload *domain.CreateCustomerPayload) {
	now := s.now().UTC()
	entry := domain.SubmissionLogEntry{
		ID:    ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Draft: *payload,
		Time:  now,
	}
	raw, err := json.Marshal(entry)
	if err == nil {
		err = h.Storage().Append(ctx, session.SubmissionLogKey(current.EmployeeID, current.StoreID), string(raw))
	}
	if err != nil {
		s.logger.Warn("failed to append submission log", zap.Error(err))
	}
}

// SubmissionLog returns the local log for the session's current login, oldest first.
func (s *IntakeService) SubmissionLog(ctx context.Context, h *session.Handle) ([]domain.SubmissionLogEntry, error) {
	current := h.CurrentLogin()
	if current == nil {
		return nil, &domain.ErrUnauthorized{Message: msgNoCurrentLogin}
	}
	raw, err := h.Storage().List(ctx, session.SubmissionLogKey(current.EmployeeID, current.StoreID))
	if err != nil {
		return nil, err
	}
	entries := make([]domain.SubmissionLogEntry, 0, len(raw))
	for _, item := range raw {
		var e domain.SubmissionLogEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			s.logger.Warn("skipping unreadable submission log entry", zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
