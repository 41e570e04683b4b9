package service

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"thermowatch/internal/apperr"
	"thermowatch/internal/models"
	"thermowatch/internal/repository"
)

// MaxNoteLength is the longest note, in characters, a threshold may carry.
const MaxNoteLength = 500

// DefaultThresholdID identifies the synthetic setting returned on cold start.
const DefaultThresholdID = "default"

type ThresholdService struct {
	repo  repository.ThresholdRepo
	audit auditor
	def   *float64
}

func NewThresholdService(repo repository.ThresholdRepo, audit auditor, def *float64) *ThresholdService {
	return &ThresholdService{repo: repo, audit: audit, def: def}
}

// Current returns the newest setting. With an empty history it falls back to
// the configured default, or reports ok=false when there is none.
func (s *ThresholdService) Current(ctx context.Context) (models.ThresholdSetting, bool, error) {
	t, ok, err := s.repo.Latest(ctx)
	if err != nil || ok {
		return t, ok, err
	}
	if s.def == nil {
		return models.ThresholdSetting{}, false, nil
	}
	return models.ThresholdSetting{
		ID:    DefaultThresholdID,
		Value: *s.def,
		Note:  "configured default",
	}, true, nil
}

// Record appends a new setting which becomes the current threshold.
func (s *ThresholdService) Record(ctx context.Context, p models.Principal, value float64, note string) (models.ThresholdSetting, error) {
	if err := requireWrite(p, "set thresholds"); err != nil {
		return models.ThresholdSetting{}, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return models.ThresholdSetting{}, apperr.Validation("threshold value must be finite")
	}
	note = strings.TrimSpace(note)
	if n := utf8.RuneCountInString(note); n > MaxNoteLength {
		return models.ThresholdSetting{}, apperr.Validation("note is %d characters, at most %d allowed", n, MaxNoteLength)
	}

	t, err := s.repo.Create(ctx, models.ThresholdSetting{
		Value:     value,
		Note:      note,
		CreatedBy: p.Username,
	})
	if err != nil {
		return models.ThresholdSetting{}, err
	}

	s.audit.record(ctx, models.EventThresholdSet, p.Username, "threshold set", map[string]any{
		"id":    t.ID,
		"value": t.Value,
	})
	return t, nil
}

func (s *ThresholdService) List(ctx context.Context) ([]models.ThresholdSetting, error) {
	return s.repo.List(ctx)
}

// Remove deletes one setting. Unknown ids succeed without effect.
func (s *ThresholdService) Remove(ctx context.Context, p models.Principal, id string) error {
	if err := requireWrite(p, "remove thresholds"); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.Validation("threshold id is empty")
	}

	removed, err := s.repo.Remove(ctx, id)
	if err != nil {
		return err
	}
	if removed {
		s.audit.record(ctx, models.EventThresholdRemoved, p.Username, "threshold removed", map[string]any{"id": id})
	}
	return nil
}

func (s *ThresholdService) Clear(ctx context.Context, p models.Principal) error {
	if err := requireWrite(p, "clear thresholds"); err != nil {
		return err
	}
	n, err := s.repo.Clear(ctx)
	if err != nil {
		return err
	}
	s.audit.record(ctx, models.EventThresholdsCleared, p.Username, "threshold history cleared", map[string]any{"removed": n})
	return nil
}
