package broker

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"thermowatch/internal/apperr"
	"thermowatch/internal/models"
)

// jsonPayload is the structured message form. Either value or temperature
// carries the sample; observed_at and timestamp are aliases.
type jsonPayload struct {
	Value       *float64        `json:"value"`
	Temperature *float64        `json:"temperature"`
	ObservedAt  json.RawMessage `json:"observed_at"`
	Timestamp   json.RawMessage `json:"timestamp"`
}

// ParsePayload decodes one broker message. Accepted forms are a bare number
// ("24.5") or a JSON object. A missing observation time becomes receivedAt.
func ParsePayload(payload []byte, receivedAt time.Time) (models.RawReading, error) {
	receivedAt = receivedAt.UTC()
	raw := models.RawReading{ObservedAt: receivedAt, ReceivedAt: receivedAt}

	body := bytes.TrimSpace(payload)
	if len(body) == 0 {
		return models.RawReading{}, apperr.Validation("empty payload")
	}

	if body[0] != '{' {
		v, err := strconv.ParseFloat(string(body), 64)
		if err != nil {
			return models.RawReading{}, apperr.Validation("payload %q is not a number", truncate(string(body), 32))
		}
		raw.Value = v
		return raw, checkFinite(raw)
	}

	var p jsonPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return models.RawReading{}, apperr.Validation("malformed json payload: %v", err)
	}
	switch {
	case p.Value != nil:
		raw.Value = *p.Value
	case p.Temperature != nil:
		raw.Value = *p.Temperature
	default:
		return models.RawReading{}, apperr.Validation("payload has neither value nor temperature")
	}

	ts := p.ObservedAt
	if len(ts) == 0 || string(ts) == "null" {
		ts = p.Timestamp
	}
	if len(ts) > 0 && string(ts) != "null" {
		at, err := parseTimestamp(ts)
		if err != nil {
			return models.RawReading{}, err
		}
		raw.ObservedAt = at
	}
	return raw, checkFinite(raw)
}

// parseTimestamp accepts an RFC 3339 string or unix seconds (fractional allowed).
func parseTimestamp(ts json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(ts, &s); err == nil {
		at, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
		if err != nil {
			return time.Time{}, apperr.Validation("observed_at %q is not RFC 3339", s)
		}
		return at.UTC(), nil
	}

	var secs float64
	if err := json.Unmarshal(ts, &secs); err != nil {
		return time.Time{}, apperr.Validation("observed_at must be RFC 3339 or unix seconds")
	}
	if secs < minUnixSeconds || secs > maxUnixSeconds {
		return time.Time{}, apperr.Validation("observed_at %g is outside years 0001-9999", secs)
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC(), nil
}

// Unix-seconds bounds of the years RFC 3339 can express.
const (
	minUnixSeconds = -62135596800 // 0001-01-01T00:00:00Z
	maxUnixSeconds = 253402300799 // 9999-12-31T23:59:59Z
)

func checkFinite(r models.RawReading) error {
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return apperr.Validation("value must be finite")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
