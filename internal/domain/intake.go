package domain

import "time"

// ============================================================
// Intake workflow views
// ============================================================

// UploadState is the lifecycle of one document slot.
type UploadState string

const (
	UploadIdle      UploadState = "idle"
	UploadUploading UploadState = "uploading"
	UploadUploaded  UploadState = "uploaded"
	UploadFailed    UploadState = "failed"
)

// UploadView is the externally visible state of a document slot.
type UploadView struct {
	State    UploadState `json:"state"`
	FileName string      `json:"fileName,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// IntakeView is the body of every /api/intake response.
type IntakeView struct {
	Draft         CustomerDraft               `json:"draft"`
	Errors        map[string]string           `json:"errors"`
	Uploads       map[DocumentKind]UploadView `json:"uploads"`
	CanSubmit     bool                        `json:"canSubmit"`
	Notifications []Notification              `json:"notifications,omitempty"`
}

// FieldPatch sets one or more draft fields, as typed by the user.
type FieldPatch map[string]string

// SubmitResult is returned after a successful creation.
type SubmitResult struct {
	Redirect      string         `json:"redirect"`
	Notifications []Notification `json:"notifications"`
}

// ============================================================
// Directory views
// ============================================================

// DirectoryFilter is the search box plus the optional day range.
type DirectoryFilter struct {
	Query string     `json:"query"`
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
}

// DirectoryView is the body of every /api/directory response.
type DirectoryView struct {
	StoreName     string           `json:"storeName"`
	Info          string           `json:"info,omitempty"`
	Filter        DirectoryFilter  `json:"filter"`
	Page          int              `json:"page"`
	PageSize      int              `json:"pageSize"`
	TotalPages    int              `json:"totalPages"`
	TotalFiltered int              `json:"totalFiltered"`
	Customers     []CustomerRecord `json:"customers"`
	Notifications []Notification   `json:"notifications,omitempty"`
}

// ============================================================
// Edit customer
// ============================================================

// CustomerEditView is the body of GET /api/customers/{id}.
type CustomerEditView struct {
	CustomerID string           `json:"customerId"`
	Draft      CustomerDraft    `json:"draft"`
	Services   []ProductService `json:"services"`
}
