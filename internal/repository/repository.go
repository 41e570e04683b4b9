package repository

import (
	"context"
	"database/sql"
	"time"

	"thermowatch/internal/models"
)

type Authorization interface {
	Create(username, hash, role string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// ReadingRepo stores accepted readings. Rows are never updated.
type ReadingRepo interface {
	Append(ctx context.Context, r models.SensorReading) (models.SensorReading, error)
	List(ctx context.Context, offset, limit int) (models.ReadingPage, error)
	Latest(ctx context.Context) (models.SensorReading, bool, error)
	Remove(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) (int64, error)
}

// ThresholdRepo is the append-only threshold log; the newest row is the current threshold.
type ThresholdRepo interface {
	Create(ctx context.Context, t models.ThresholdSetting) (models.ThresholdSetting, error)
	Latest(ctx context.Context) (models.ThresholdSetting, bool, error)
	List(ctx context.Context) ([]models.ThresholdSetting, error)
	Remove(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) (int64, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.AuditEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.AuditEvent, error)
}

type Repository struct {
	Readings   ReadingRepo
	Thresholds ThresholdRepo
	EventRepo  EventRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Readings:   NewReadingSQLite(db),
		Thresholds: NewThresholdSQLite(db),
		EventRepo:  NewEventSQLite(db),
		Auth:       NewUserRepository(db),
	}
}

// toNanos and fromNanos convert between time.Time and the INTEGER columns.
func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(ns int64) time.Time { return time.Unix(0, ns).UTC() }
