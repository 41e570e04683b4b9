package service

import (
	"context"
	"math"

	"thermowatch/internal/apperr"
	"thermowatch/internal/logger"
	"thermowatch/internal/models"
	"thermowatch/internal/repository"
)

// ThresholdSource yields the threshold in force right now.
type ThresholdSource interface {
	Current(ctx context.Context) (models.ThresholdSetting, bool, error)
}

// EvaluatorService decides which raw readings are significant and persists
// them together with the threshold they were judged against.
type EvaluatorService struct {
	thresholds ThresholdSource
	readings   repository.ReadingRepo
	audit      auditor
	log        *logger.Logger
}

func NewEvaluatorService(thresholds ThresholdSource, readings repository.ReadingRepo, audit auditor, log *logger.Logger) *EvaluatorService {
	if log == nil {
		log = logger.Nop()
	}
	return &EvaluatorService{thresholds: thresholds, readings: readings, audit: audit, log: log}
}

// Evaluate accepts raw iff its value is at or above the current threshold.
// An accepted reading is persisted before Evaluate returns.
func (s *EvaluatorService) Evaluate(ctx context.Context, raw models.RawReading) (models.Evaluation, error) {
	if math.IsNaN(raw.Value) || math.IsInf(raw.Value, 0) {
		return models.Evaluation{}, apperr.Validation("reading value must be finite")
	}

	th, ok, err := s.thresholds.Current(ctx)
	if err != nil {
		s.log.Errorw("reading_threshold_lookup_failed", "value", raw.Value, "err", err)
		s.audit.record(ctx, models.EventAcceptFailed, "", "threshold lookup failed; reading dropped", map[string]any{
			"value":       raw.Value,
			"observed_at": raw.ObservedAt,
			"error":       err.Error(),
		})
		return models.Evaluation{}, err
	}
	if !ok {
		s.log.Debugw("reading_suppressed", "value", raw.Value, "reason", models.ReasonNoThreshold)
		return models.Evaluation{Accepted: false, Reason: models.ReasonNoThreshold}, nil
	}
	if raw.Value < th.Value {
		s.log.Debugw("reading_below_threshold", "value", raw.Value, "threshold", th.Value)
		return models.Evaluation{Accepted: false, Reason: models.ReasonBelowThreshold, Threshold: &th}, nil
	}

	observed := raw.ObservedAt
	if observed.IsZero() {
		observed = raw.ReceivedAt
	}
	rd, err := s.readings.Append(ctx, models.SensorReading{
		Value:              raw.Value,
		ObservedAt:         observed,
		ThresholdAtCapture: th.Value,
	})
	if err != nil {
		s.log.Errorw("reading_accept_failed", "value", raw.Value, "threshold", th.Value, "err", err)
		s.audit.record(ctx, models.EventAcceptFailed, "", "accepted reading could not be stored", map[string]any{
			"value":       raw.Value,
			"threshold":   th.Value,
			"observed_at": observed,
			"error":       err.Error(),
		})
		return models.Evaluation{}, err
	}

	s.log.Infow("reading_accepted", "id", rd.ID, "value", rd.Value, "threshold", th.Value)
	return models.Evaluation{
		Accepted:  true,
		Reason:    models.ReasonAccepted,
		Threshold: &th,
		Reading:   &rd,
	}, nil
}

// Run evaluates readings from in one at a time until in is closed or ctx is
// cancelled. A failed reading is logged and the loop moves on.
func (s *EvaluatorService) Run(ctx context.Context, in <-chan models.RawReading) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-in:
			if !ok {
				return
			}
			if _, err := s.Evaluate(ctx, raw); err != nil {
				s.log.Warnw("reading_dropped", "value", raw.Value, "err", err)
			}
		}
	}
}
