package domain

import "time"

// Status is the status field of a solve response
type Status string

const (
	StatusSuccess  Status = "success"
	StatusMarginal Status = "marginal" // not converged, results still returned
	StatusError    Status = "error"
)

// SolveResponse is the envelope returned by the solver
type SolveResponse struct {
	Status  Status            `json:"status"`
	Message string            `json:"message,omitempty"`
	Result  map[string]string `json:"result,omitempty"`
}

// Severity classifies a user-facing notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Overlay is a solver-reported value attached to a port
type Overlay struct {
	ID     string `json:"id"`
	PortID string `json:"port_id"`
	Value  string `json:"value"`
}

// Notification is a transient status message
type Notification struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// SolveRecord is the journal entry for one solve attempt. It records the
// outcome and a digest of the request, never the diagram itself.
type SolveRecord struct {
	ID            string            `json:"id"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
	Status        Status            `json:"status"`
	Severity      Severity          `json:"severity"`
	Message       string            `json:"message"`
	Unreachable   bool              `json:"unreachable"`
	Components    int               `json:"components"`
	Connections   int               `json:"connections"`
	Overlays      int               `json:"overlays"`
	RequestDigest string            `json:"request_digest"`
	Result        map[string]string `json:"result,omitempty"`
}

// Duration returns how long the attempt took
func (r SolveRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
