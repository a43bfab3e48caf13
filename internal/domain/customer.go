package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ============================================================
// Customer intake
// ============================================================

// Draft field names. They double as keys of the validation error map and
// as the JSON keys of the creation payload.
const (
	FieldName        = "customer_name"
	FieldEmail       = "customer_email"
	FieldPhone       = "customer_phone"
	FieldAadhar      = "Customer_AadharNumber"
	FieldPan         = "Customer_PanNumber"
	FieldAmount      = "Customer_ProductAmount"
	FieldService     = "Productservices_Id"
	FieldAadharImage = "customer_aadhar"
	FieldPanImage    = "customer_pancard"
)

// DraftFields lists the user-editable fields in form order.
var DraftFields = []string{FieldService, FieldName, FieldEmail, FieldPhone, FieldAadhar, FieldPan, FieldAmount}

// DocumentKind discriminates the two identity-document uploads.
type DocumentKind string

const (
	DocumentAadhar DocumentKind = "Aadhar"
	DocumentPan    DocumentKind = "Pan"
)

// ParseDocumentKind accepts "aadhar"/"pan" in any case.
func ParseDocumentKind(s string) (DocumentKind, bool) {
	switch strings.ToLower(s) {
	case "aadhar":
		return DocumentAadhar, true
	case "pan":
		return DocumentPan, true
	}
	return "", false
}

// DraftField is the draft field an upload of this kind populates.
func (k DocumentKind) DraftField() string {
	if k == DocumentPan {
		return FieldPanImage
	}
	return FieldAadharImage
}

// CustomerDraft mirrors the backend customer schema. Owned by one intake workflow.
type CustomerDraft struct {
	Name          string `json:"customer_name"`
	Email         string `json:"customer_email"`
	Phone         string `json:"customer_phone"`
	AadharNumber  string `json:"Customer_AadharNumber"`
	PanNumber     string `json:"Customer_PanNumber"`
	ProductAmount string `json:"Customer_ProductAmount"`
	ServiceID     string `json:"Productservices_Id"`
	AadharImage   string `json:"customer_aadhar"`
	PanImage      string `json:"customer_pancard"`
}

// Get returns the value of a draft field by name.
func (d *CustomerDraft) Get(field string) string {
	switch field {
	case FieldName:
		return d.Name
	case FieldEmail:
		return d.Email
	case FieldPhone:
		return d.Phone
	case FieldAadhar:
		return d.AadharNumber
	case FieldPan:
		return d.PanNumber
	case FieldAmount:
		return d.ProductAmount
	case FieldService:
		return d.ServiceID
	case FieldAadharImage:
		return d.AadharImage
	case FieldPanImage:
		return d.PanImage
	}
	return ""
}

// Set assigns a draft field by name. Unknown names report false.
func (d *CustomerDraft) Set(field, value string) bool {
	switch field {
	case FieldName:
		d.Name = value
	case FieldEmail:
		d.Email = value
	case FieldPhone:
		d.Phone = value
	case FieldAadhar:
		d.AadharNumber = value
	case FieldPan:
		d.PanNumber = value
	case FieldAmount:
		d.ProductAmount = value
	case FieldService:
		d.ServiceID = value
	case FieldAadharImage:
		d.AadharImage = value
	case FieldPanImage:
		d.PanImage = value
	default:
		return false
	}
	return true
}

// CreateCustomerPayload is the body of POST /CreateCustomer: the draft merged
// with the identifiers of the resolved session.
type CreateCustomerPayload struct {
	CustomerDraft
	StoreID    string `json:"StoreID"`
	EmployeeID string `json:"EmployeeID,omitempty"`
}

// BackendResult is the {status, message} shape returned by create/update.
// The backend sends status as a number or a string.
type BackendResult struct {
	Status  FlexString `json:"status"`
	Message string     `json:"message"`
}

// OK reports the structured success indicator.
func (r *BackendResult) OK() bool { return r.Status.String() == "1" }

// UploadResult is produced by one document upload.
type UploadResult struct {
	Kind           DocumentKind `json:"kind"`
	RemoteFileName string       `json:"fileName"`
}

// ProductService is one entry of the service catalog.
type ProductService struct {
	ID   FlexString `json:"Productservices_Id"`
	Name string     `json:"service_name"`
}

// SubmissionLogEntry is one element of the per-(employee, store) submission log.
// It is a local audit convenience, not the source of truth.
type SubmissionLogEntry struct {
	ID    string                `json:"id"`
	Draft CreateCustomerPayload `json:"draft"`
	Time  time.Time             `json:"time"`
}

// ============================================================
// Customer directory
// ============================================================

// CustomerRecord is server-owned. The list and get-by-id endpoints spell the
// phone key differently; encoding/json matches keys case-insensitively.
type CustomerRecord struct {
	CustomerID    FlexString `json:"CustomerID"`
	Name          string     `json:"Customer_Name"`
	Email         string     `json:"Customer_Email"`
	Phone         string     `json:"Customer_phone"`
	ServiceName   string     `json:"service_name"`
	ServiceID     FlexString `json:"Productservices_Id,omitempty"`
	AadharNumber  string     `json:"Customer_AadharNumber,omitempty"`
	PanNumber     string     `json:"Customer_PanNumber,omitempty"`
	ProductAmount FlexString `json:"Customer_ProductAmount,omitempty"`
	AadharImage   string     `json:"Customer_Aadhar,omitempty"`
	PanImage      string     `json:"Customer_PanCard,omitempty"`
	StoreName     string     `json:"StoreName,omitempty"`
	CreatedAt     Timestamp  `json:"Created_At"`
}

// UpdateCustomerPayload is the body of PUT /CustumerUpdate.
type UpdateCustomerPayload struct {
	CustomerID    string `json:"CustomerID"`
	Name          string `json:"Customer_Name"`
	Email         string `json:"Customer_Email"`
	Phone         string `json:"Customer_phone"`
	AadharNumber  string `json:"Customer_AadharNumber"`
	PanNumber     string `json:"Customer_PanNumber"`
	ProductAmount string `json:"Customer_ProductAmount"`
	AadharImage   string `json:"Customer_Aadhar"`
	PanImage      string `json:"Customer_PanCard"`
	ServiceID     string `json:"Productservices_Id"`
}

// DraftFromRecord maps a loaded record back into the editable draft shape.
func DraftFromRecord(r *CustomerRecord) CustomerDraft {
	return CustomerDraft{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		AadharNumber:  r.AadharNumber,
		PanNumber:     r.PanNumber,
		ProductAmount: string(r.ProductAmount),
		ServiceID:     string(r.ServiceID),
		AadharImage:   r.AadharImage,
		PanImage:      r.PanImage,
	}
}

// StoreBalance is one row of GET /BalancebyStoreid.
type StoreBalance struct {
	TotalBalance float64 `json:"TotalBalance"`
}

// DashboardSummary is the body for GET /api/dashboard.
type DashboardSummary struct {
	StoreName       string  `json:"storeName"`
	TotalCustomers  int     `json:"totalCustomers"`
	TotalSales      float64 `json:"totalSales"`
	TotalCommission string  `json:"totalCommission"`

	Notifications []Notification `json:"notifications,omitempty"`
}

// ============================================================
// Wire helpers
// ============================================================

// FlexString decodes a JSON string or number into a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// Timestamp accepts the date layouts the backend emits.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}
