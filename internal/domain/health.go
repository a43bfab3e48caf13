package domain

// ============================================================
// Health API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message       string         `json:"message"`
	ID            string         `json:"id,omitempty"`
	Redirect      string         `json:"redirect,omitempty"`
	Notifications []Notification `json:"notifications,omitempty"`
}
