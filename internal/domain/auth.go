package domain

import "time"

// ============================================================
// Auth request and response types
// ============================================================

// Login form fields, as flagged by credential errors.
const (
	FieldStoreID  = "storeId"
	FieldPassword = "password"
)

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	StoreID  string `json:"storeId"`
	Password string `json:"password"`
}

// LoginResponse is the body for 200 from POST /api/auth/login.
type LoginResponse struct {
	EmployeeID    string         `json:"employeeId"`
	StoreID       string         `json:"storeId"`
	Redirect      string         `json:"redirect"`
	Notifications []Notification `json:"notifications"`
}

// SessionResponse is the body for GET /api/auth/session.
type SessionResponse struct {
	State         string        `json:"state"`
	Authenticated bool          `json:"authenticated"`
	Identity      *Identity     `json:"identity,omitempty"`
	CurrentLogin  *CurrentLogin `json:"currentLogin,omitempty"`
}

// ============================================================
// Credential outcomes (tagged union decoded at the API boundary)
// ============================================================

// LoginOutcome is the result of one credential check against the backend.
// Exactly one of the concrete types below is returned.
type LoginOutcome interface {
	loginOutcome()
}

// LoginSuccess means the backend accepted the credentials.
type LoginSuccess struct {
	EmployeeID string
	StoreID    string
}

// InvalidCredentials means the backend rejected the credentials.
// Field is FieldStoreID, FieldPassword or CredentialBoth.
type InvalidCredentials struct {
	Field   string
	Message string
}

// CredentialBoth flags both login fields.
const CredentialBoth = "both"

// LoginFailed is any other non-2xx answer.
type LoginFailed struct {
	Status  int
	Message string
}

// LoginServerError is a 500 from the authentication endpoint.
type LoginServerError struct {
	Status int
}

// LoginNetworkError is a transport failure; the request may never have reached the backend.
type LoginNetworkError struct {
	Err error
}

func (LoginSuccess) loginOutcome()       {}
func (InvalidCredentials) loginOutcome() {}
func (LoginFailed) loginOutcome()        {}
func (LoginServerError) loginOutcome()   {}
func (LoginNetworkError) loginOutcome()  {}

// Fields returns the form fields an InvalidCredentials outcome flags.
func (o InvalidCredentials) Fields() []string {
	switch o.Field {
	case FieldStoreID:
		return []string{FieldStoreID}
	case FieldPassword:
		return []string{FieldPassword}
	default:
		return []string{FieldStoreID, FieldPassword}
	}
}

// ============================================================
// Session
// ============================================================

// Identity is the displayed operator identity. One entry is appended to the
// login history per successful login; only one is current.
type Identity struct {
	Username  string    `json:"username"`
	LoginTime time.Time `json:"loginTime"`
}

// CurrentLogin is the durable "current login" object.
type CurrentLogin struct {
	EmployeeID string `json:"EmployeeID"`
	StoreID    string `json:"StoreID"`
}

// LoginHistoryEntry is one element of the append-only AllLogins list.
type LoginHistoryEntry struct {
	EmployeeID string    `json:"EmployeeID"`
	StoreID    string    `json:"StoreID"`
	Time       time.Time `json:"time"`
}

// Session is owned by the session store; created on login, destroyed on logout.
type Session struct {
	Identity Identity  `json:"identity"`
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issuedAt"`
}
