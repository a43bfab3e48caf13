package domain

// Notification levels, matching the toast kinds of the portal UI.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelError   = "error"
)

// Notification is a user-visible message attached to a response or carried
// across a redirect in the flash cookie.
type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Success builds a success notification.
func Success(msg string) Notification { return Notification{Level: LevelSuccess, Message: msg} }

// Info builds an informational notification.
func Info(msg string) Notification { return Notification{Level: LevelInfo, Message: msg} }

// Failure builds an error notification.
func Failure(msg string) Notification { return Notification{Level: LevelError, Message: msg} }
