package model

import "time"

// Execution outcomes stored in the audit log.
const (
	OutcomeSuccess     = "success"
	OutcomeScriptError = "script_error"
	OutcomeTimeout     = "timeout"
)

// ExecutionRecord is one completed script run. Runs that never started
// (spawn failures, executor unavailable) are not recorded.
type ExecutionRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"` // empty when auth is disabled
	Code       string    `json:"code"`
	Outcome    string    `json:"outcome"`
	ExitCode   int       `json:"exitCode"`
	DurationMS int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}
