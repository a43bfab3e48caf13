package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Error types for consistent error handling across the portal.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in a backend call that is not
// otherwise classified (malformed body, unexpected status).
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a single local validation failure. It never reaches the network.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrFieldErrors carries every field-scoped message of a form at once.
type ErrFieldErrors struct {
	Fields map[string]string
}

func (e *ErrFieldErrors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return fmt.Sprintf("invalid fields: %s", strings.Join(keys, ", "))
}

// ErrUpload indicates a document was rejected locally (type/size) or by the backend.
type ErrUpload struct {
	Kind    DocumentKind
	Message string
	Local   bool
}

func (e *ErrUpload) Error() string {
	return fmt.Sprintf("%s upload failed: %s", e.Kind, e.Message)
}

// ErrAuth indicates invalid credentials. Fields lists the form fields to flag.
type ErrAuth struct {
	Fields  []string
	Message string
}

func (e *ErrAuth) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "invalid credentials"
}

// FieldMessages returns the inline message for each flagged login field.
func (e *ErrAuth) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	if len(e.Fields) != 1 {
		for _, f := range e.Fields {
			out[f] = "Invalid Store ID or Password"
		}
		return out
	}
	switch e.Fields[0] {
	case FieldStoreID:
		out[FieldStoreID] = "Invalid Store ID"
	case FieldPassword:
		out[FieldPassword] = "Invalid Password"
	}
	return out
}

// ErrDuplicate indicates a create was rejected because a unique field collides.
// Field is empty when the backend message does not name one.
type ErrDuplicate struct {
	Field   string
	Message string
}

func (e *ErrDuplicate) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("duplicate customer: %s", e.Message)
	}
	return fmt.Sprintf("duplicate %s: %s", e.Field, e.Message)
}

// ErrServer indicates the backend answered with a 5xx.
type ErrServer struct {
	Service string
	Status  int
}

func (e *ErrServer) Error() string {
	return fmt.Sprintf("%s returned server error %d", e.Service, e.Status)
}

// ErrNetwork indicates a transport failure (DNS, refused connection, reset).
type ErrNetwork struct {
	Service string
	Err     error
}

func (e *ErrNetwork) Error() string {
	return fmt.Sprintf("network error [%s]: %v", e.Service, e.Err)
}

func (e *ErrNetwork) Unwrap() error {
	return e.Err
}

// ErrUnauthorized indicates a missing or invalid session.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict indicates the operation cannot run in the current state
// (e.g. a login already in flight for this device).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrConfirmationRequired indicates a destructive action was issued without confirmation.
type ErrConfirmationRequired struct {
	Action string
}

func (e *ErrConfirmationRequired) Error() string {
	return fmt.Sprintf("confirmation required: %s", e.Action)
}

// ErrRejected indicates the backend answered a request with a 4xx other than 404.
// Message is the backend's own explanation, when it sent one.
type ErrRejected struct {
	Service string
	Status  int
	Message string
}

func (e *ErrRejected) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s rejected request (%d): %s", e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("%s rejected request (%d)", e.Service, e.Status)
}

// ErrOperationFailed carries the user-facing message for a backend-dependent
// operation that failed for a reason the user cannot fix in the form.
type ErrOperationFailed struct {
	Message string
	Err     error
}

func (e *ErrOperationFailed) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ErrOperationFailed) Unwrap() error {
	return e.Err
}
