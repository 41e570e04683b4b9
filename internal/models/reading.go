package models

import "time"

// DefaultPageSize is used when a list request does not specify a limit.
const DefaultPageSize = 10

// SensorReading is a temperature sample accepted for durable storage.
type SensorReading struct {
	ID                 string    `json:"id"`
	Value              float64   `json:"value"`                // °C
	ObservedAt         time.Time `json:"observed_at"`          // when the sensor took the sample
	ThresholdAtCapture float64   `json:"threshold_at_capture"` // threshold active at acceptance, never recomputed
	RecordedAt         time.Time `json:"recorded_at"`          // when the row was persisted
}

// ReadingPage is one page of readings plus the total count for pagination math.
type ReadingPage struct {
	Data  []SensorReading `json:"data"`
	Total int             `json:"total"`
}

// RawReading is a value as delivered by the broker link, before evaluation.
type RawReading struct {
	Value      float64   `json:"value"`
	ObservedAt time.Time `json:"observed_at"`
	ReceivedAt time.Time `json:"received_at"`
}

// Evaluation reasons.
const (
	ReasonAccepted       = "accepted"
	ReasonBelowThreshold = "below_threshold"
	ReasonNoThreshold    = "no_threshold"
)

// Evaluation is the outcome of checking one raw reading against the threshold.
type Evaluation struct {
	Accepted  bool              `json:"accepted"`
	Reason    string            `json:"reason"`
	Threshold *ThresholdSetting `json:"threshold,omitempty"`
	Reading   *SensorReading    `json:"reading,omitempty"`
}
