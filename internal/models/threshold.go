package models

import "time"

// ThresholdSetting is one configured limit. The newest entry is the current one.
type ThresholdSetting struct {
	ID        string    `json:"id"`
	Value     float64   `json:"value"`          // °C
	Note      string    `json:"note,omitempty"` // rationale for the change
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
