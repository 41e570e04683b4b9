package models

import "time"

// ConnectionStateKind is the lifecycle phase of the broker session.
type ConnectionStateKind string

const (
	StateConnecting   ConnectionStateKind = "connecting"
	StateConnected    ConnectionStateKind = "connected"
	StateDisconnected ConnectionStateKind = "disconnected"
	StateError        ConnectionStateKind = "error"
)

// ConnectionState is transient and never persisted.
type ConnectionState struct {
	Kind   ConnectionStateKind `json:"state"`
	Reason string              `json:"reason,omitempty"` // set only for StateError
	Since  time.Time           `json:"since"`
}

// LiveStatus is what the live endpoints expose: session state and the last raw value.
type LiveStatus struct {
	Connection ConnectionState `json:"connection"`
	Latest     *RawReading     `json:"latest,omitempty"`
}
