package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"thermowatch/internal/apperr"
	"thermowatch/internal/models"
)

func newThresholdSvc(def *float64) (*ThresholdService, *memThresholdRepo, *recordingEventRepo) {
	repo := &memThresholdRepo{}
	events := &recordingEventRepo{}
	return NewThresholdService(repo, newAuditor(events, nil), def), repo, events
}

func TestThresholdService_Current_ColdStart(t *testing.T) {
	t.Parallel()

	svc, _, _ := newThresholdSvc(nil)
	if _, ok, err := svc.Current(context.Background()); err != nil || ok {
		t.Fatalf("expected no threshold, ok=%v err=%v", ok, err)
	}

	svc, _, _ = newThresholdSvc(floatPtr(27.5))
	cur, ok, err := svc.Current(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected configured default, ok=%v err=%v", ok, err)
	}
	if cur.ID != DefaultThresholdID || cur.Value != 27.5 {
		t.Fatalf("unexpected default setting: %+v", cur)
	}
}

func TestThresholdService_Record(t *testing.T) {
	t.Parallel()

	svc, repo, events := newThresholdSvc(nil)
	ctx := context.Background()

	got, err := svc.Record(ctx, operator, 30, "  raise for summer ")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got.Value != 30 || got.Note != "raise for summer" || got.CreatedBy != operator.Username {
		t.Fatalf("unexpected setting: %+v", got)
	}

	cur, ok, err := svc.Current(ctx)
	if err != nil || !ok || cur.ID != got.ID {
		t.Fatalf("Current after Record: %+v ok=%v err=%v", cur, ok, err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected 1 create, got %d", repo.creates)
	}
	if types := events.types(); len(types) != 1 || types[0] != models.EventThresholdSet {
		t.Fatalf("unexpected audit events: %v", types)
	}
}

func TestThresholdService_Record_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		who     models.Principal
		value   float64
		note    string
		wantErr error
	}{
		{name: "anonymous", who: nobody, value: 30, wantErr: apperr.ErrUnauthorized},
		{name: "viewer", who: viewer, value: 30, wantErr: apperr.ErrForbidden},
		{name: "viewer with invalid value still forbidden", who: viewer, value: math.NaN(), wantErr: apperr.ErrForbidden},
		{name: "nan", who: operator, value: math.NaN(), wantErr: apperr.ErrValidation},
		{name: "inf", who: operator, value: math.Inf(-1), wantErr: apperr.ErrValidation},
		{name: "note too long", who: operator, value: 30, note: strings.Repeat("é", MaxNoteLength+1), wantErr: apperr.ErrValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, repo, events := newThresholdSvc(nil)
			_, err := svc.Record(context.Background(), tt.who, tt.value, tt.note)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if repo.creates != 0 || len(events.types()) != 0 {
				t.Fatalf("rejected Record must not touch storage: creates=%d events=%v", repo.creates, events.types())
			}
		})
	}
}

func TestThresholdService_Record_NoteAtLimitAccepted(t *testing.T) {
	t.Parallel()

	svc, _, _ := newThresholdSvc(nil)
	if _, err := svc.Record(context.Background(), operator, 1, strings.Repeat("é", MaxNoteLength)); err != nil {
		t.Fatalf("note of exactly %d characters should be accepted: %v", MaxNoteLength, err)
	}
}

func TestThresholdService_RemoveLatestFallsBack(t *testing.T) {
	t.Parallel()

	svc, _, events := newThresholdSvc(floatPtr(20))
	ctx := context.Background()

	first, _ := svc.Record(ctx, operator, 25, "")
	second, _ := svc.Record(ctx, operator, 30, "")

	if err := svc.Remove(ctx, operator, second.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	cur, ok, err := svc.Current(ctx)
	if err != nil || !ok || cur.ID != first.ID {
		t.Fatalf("expected fallback to %s, got %+v ok=%v err=%v", first.ID, cur, ok, err)
	}

	if err := svc.Remove(ctx, operator, first.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	cur, ok, err = svc.Current(ctx)
	if err != nil || !ok || cur.ID != DefaultThresholdID {
		t.Fatalf("expected configured default, got %+v ok=%v err=%v", cur, ok, err)
	}

	// absent id
	if err := svc.Remove(ctx, operator, "missing"); err != nil {
		t.Fatalf("Remove of absent id should succeed, got %v", err)
	}

	want := []string{models.EventThresholdSet, models.EventThresholdSet, models.EventThresholdRemoved, models.EventThresholdRemoved}
	if got := events.types(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("audit events: got %v, want %v", got, want)
	}
}

func TestThresholdService_RemoveAndClear_RequireWrite(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newThresholdSvc(nil)
	ctx := context.Background()

	if err := svc.Remove(ctx, viewer, "t1"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.Clear(ctx, nobody); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := svc.Remove(ctx, operator, "  "); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for empty id, got %v", err)
	}
	if repo.removes != 0 || repo.clears != 0 {
		t.Fatalf("repository must not be called: removes=%d clears=%d", repo.removes, repo.clears)
	}

	_, _ = svc.Record(ctx, operator, 1, "")
	if err := svc.Clear(ctx, operator); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := svc.Current(ctx); ok {
		t.Fatalf("expected no current threshold after clear")
	}
}

func TestThresholdService_AuditFailureDoesNotFailRecord(t *testing.T) {
	t.Parallel()

	repo := &memThresholdRepo{}
	svc := NewThresholdService(repo, newAuditor(&recordingEventRepo{err: errors.New("audit down")}, nil), nil)

	if _, err := svc.Record(context.Background(), operator, 30, ""); err != nil {
		t.Fatalf("Record should succeed when audit append fails, got %v", err)
	}
}

func TestThresholdService_StorageErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := apperr.Storage("select latest threshold", errors.New("disk"))
	svc := NewThresholdService(&memThresholdRepo{failErr: boom}, newAuditor(nil, nil), floatPtr(10))

	if _, _, err := svc.Current(context.Background()); !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
