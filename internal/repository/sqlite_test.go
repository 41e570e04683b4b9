package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"thermowatch/internal/models"
	"thermowatch/internal/repository"
	"thermowatch/internal/repository/db"
)

func openRepo(t *testing.T) *repository.Repository {
	t.Helper()
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "thermowatch.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return repository.NewRepository(conn)
}

func TestSQLite_PagesConcatenateToFullHistory(t *testing.T) {
	repo := openRepo(t)
	c := context.Background()

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	const n = 23
	for i := 0; i < n; i++ {
		if _, err := repo.Readings.Append(c, models.SensorReading{
			Value:              30 + float64(i),
			ThresholdAtCapture: 30,
			ObservedAt:         base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	var all []models.SensorReading
	for offset := 0; ; offset += models.DefaultPageSize {
		page, err := repo.Readings.List(c, offset, models.DefaultPageSize)
		if err != nil {
			t.Fatalf("List offset=%d: %v", offset, err)
		}
		if page.Total != n {
			t.Fatalf("total: got %d, want %d", page.Total, n)
		}
		if len(page.Data) == 0 {
			break
		}
		all = append(all, page.Data...)
	}

	if len(all) != n {
		t.Fatalf("concatenated pages: got %d rows, want %d", len(all), n)
	}
	seen := make(map[string]bool, n)
	for i, rd := range all {
		if seen[rd.ID] {
			t.Fatalf("duplicate id %s", rd.ID)
		}
		seen[rd.ID] = true
		if i > 0 && rd.ObservedAt.After(all[i-1].ObservedAt) {
			t.Fatalf("not ordered newest first at %d", i)
		}
	}

	latest, ok, err := repo.Readings.Latest(c)
	if err != nil || !ok || latest.ID != all[0].ID {
		t.Fatalf("Latest: %+v ok=%v err=%v", latest, ok, err)
	}
}

func TestSQLite_ClearThenListIsEmpty(t *testing.T) {
	repo := openRepo(t)
	c := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Readings.Append(c, models.SensorReading{Value: 40, ThresholdAtCapture: 30}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	n, err := repo.Readings.Clear(c)
	if err != nil || n != 3 {
		t.Fatalf("Clear: n=%d err=%v", n, err)
	}

	page, err := repo.Readings.List(c, 0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 0 || len(page.Data) != 0 || page.Data == nil {
		t.Fatalf("expected {[],0}, got %+v", page)
	}
}

func TestSQLite_ThresholdFallsBackAfterRemovingLatest(t *testing.T) {
	repo := openRepo(t)
	c := context.Background()

	first, err := repo.Thresholds.Create(c, models.ThresholdSetting{Value: 25})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := repo.Thresholds.Create(c, models.ThresholdSetting{Value: 30, Note: "raise"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cur, ok, err := repo.Thresholds.Latest(c)
	if err != nil || !ok || cur.ID != second.ID {
		t.Fatalf("Latest before remove: %+v ok=%v err=%v", cur, ok, err)
	}

	removed, err := repo.Thresholds.Remove(c, second.ID)
	if err != nil || !removed {
		t.Fatalf("Remove: removed=%v err=%v", removed, err)
	}
	removed, err = repo.Thresholds.Remove(c, second.ID)
	if err != nil || removed {
		t.Fatalf("second Remove: removed=%v err=%v", removed, err)
	}

	cur, ok, err = repo.Thresholds.Latest(c)
	if err != nil || !ok || cur.ID != first.ID || cur.Value != 25 {
		t.Fatalf("Latest after remove: %+v ok=%v err=%v", cur, ok, err)
	}

	if _, err := repo.Thresholds.Clear(c); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, err := repo.Thresholds.Latest(c); err != nil || ok {
		t.Fatalf("expected no threshold after clear, ok=%v err=%v", ok, err)
	}
}

func TestSQLite_AuditEventsRoundTrip(t *testing.T) {
	repo := openRepo(t)
	c := context.Background()

	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.EventRepo.Append(c, models.AuditEvent{
		OccurredAt:  at,
		Type:        models.EventThresholdSet,
		Actor:       "alice",
		Description: "threshold set to 30",
		Metadata:    map[string]any{"value": 30.0},
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := repo.EventRepo.List(c, at, at, models.EventThresholdSet)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Actor != "alice" || !got[0].OccurredAt.Equal(at) {
		t.Fatalf("unexpected events: %+v", got)
	}
}
