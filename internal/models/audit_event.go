package models

import "time"

// Audit event types.
const (
	EventThresholdSet      = "THRESHOLD_SET"
	EventThresholdRemoved  = "THRESHOLD_REMOVED"
	EventThresholdsCleared = "THRESHOLDS_CLEARED"
	EventReadingRemoved    = "READING_REMOVED"
	EventReadingsCleared   = "READINGS_CLEARED"
	EventAcceptFailed      = "ACCEPT_FAILED"
	EventConnection        = "CONNECTION"
)

// AuditEvent is a single entry of the activity log.
type AuditEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`            // see Event* constants
	Actor       string    `json:"actor,omitempty"` // username, empty for system events
	Description string    `json:"description"`     // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
