package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"thermowatch/internal/models"
)

// memThresholdRepo is an in-memory repository.ThresholdRepo.
type memThresholdRepo struct {
	mu      sync.Mutex
	rows    []models.ThresholdSetting // oldest first
	seq     int
	failErr error

	creates, removes, clears int
}

func (m *memThresholdRepo) Create(_ context.Context, t models.ThresholdSetting) (models.ThresholdSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.failErr != nil {
		return models.ThresholdSetting{}, m.failErr
	}
	m.seq++
	t.ID = "t" + strconv.Itoa(m.seq)
	t.CreatedAt = time.Now().UTC()
	m.rows = append(m.rows, t)
	return t, nil
}

func (m *memThresholdRepo) Latest(context.Context) (models.ThresholdSetting, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return models.ThresholdSetting{}, false, m.failErr
	}
	if len(m.rows) == 0 {
		return models.ThresholdSetting{}, false, nil
	}
	return m.rows[len(m.rows)-1], true, nil
}

func (m *memThresholdRepo) List(context.Context) ([]models.ThresholdSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ThresholdSetting, 0, len(m.rows))
	for i := len(m.rows) - 1; i >= 0; i-- {
		out = append(out, m.rows[i])
	}
	return out, m.failErr
}

func (m *memThresholdRepo) Remove(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes++
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, m.failErr
}

func (m *memThresholdRepo) Clear(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	n := int64(len(m.rows))
	m.rows = nil
	return n, m.failErr
}

// memReadingRepo is an in-memory repository.ReadingRepo.
type memReadingRepo struct {
	mu        sync.Mutex
	rows      []models.SensorReading
	seq       int
	appendErr error

	removes, clears int
	lastOffset      int
	lastLimit       int
}

func (m *memReadingRepo) Append(_ context.Context, r models.SensorReading) (models.SensorReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return models.SensorReading{}, m.appendErr
	}
	m.seq++
	r.ID = "r" + strconv.Itoa(m.seq)
	r.RecordedAt = time.Now().UTC()
	if r.ObservedAt.IsZero() {
		r.ObservedAt = r.RecordedAt
	}
	m.rows = append(m.rows, r)
	return r, nil
}

func (m *memReadingRepo) sorted() []models.SensorReading {
	out := append([]models.SensorReading(nil), m.rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ObservedAt.After(out[j].ObservedAt) })
	return out
}

func (m *memReadingRepo) List(_ context.Context, offset, limit int) (models.ReadingPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOffset, m.lastLimit = offset, limit
	all := m.sorted()
	page := models.ReadingPage{Data: []models.SensorReading{}, Total: len(all)}
	if offset < len(all) {
		end := min(offset+limit, len(all))
		page.Data = append(page.Data, all[offset:end]...)
	}
	return page, nil
}

func (m *memReadingRepo) Latest(context.Context) (models.SensorReading, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted()
	if len(all) == 0 {
		return models.SensorReading{}, false, nil
	}
	return all[0], true, nil
}

func (m *memReadingRepo) Remove(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes++
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memReadingRepo) Clear(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	n := int64(len(m.rows))
	m.rows = nil
	return n, nil
}

func (m *memReadingRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// recordingEventRepo captures appended audit events.
type recordingEventRepo struct {
	mu     sync.Mutex
	events []models.AuditEvent
	err    error
}

func (r *recordingEventRepo) Append(_ context.Context, e models.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingEventRepo) List(context.Context, time.Time, time.Time, string) ([]models.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuditEvent(nil), r.events...), nil
}

func (r *recordingEventRepo) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

var (
	operator = models.Principal{UserID: 1, Username: "olga", Role: models.RoleOperator}
	viewer   = models.Principal{UserID: 2, Username: "victor", Role: models.RoleViewer}
	nobody   = models.Principal{}
)

func floatPtr(v float64) *float64 { return &v }
