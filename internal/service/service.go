package service

import (
	"context"
	"time"

	"thermowatch/internal/logger"
	"thermowatch/internal/models"
	"thermowatch/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (models.Principal, error)
}

// Thresholds is the threshold store: an append-only history whose newest
// entry is the current threshold.
type Thresholds interface {
	Current(ctx context.Context) (models.ThresholdSetting, bool, error)
	Record(ctx context.Context, p models.Principal, value float64, note string) (models.ThresholdSetting, error)
	List(ctx context.Context) ([]models.ThresholdSetting, error)
	Remove(ctx context.Context, p models.Principal, id string) error
	Clear(ctx context.Context, p models.Principal) error
}

// Readings is the read and delete side of the accepted-reading history.
type Readings interface {
	List(ctx context.Context, q PageQuery) (models.ReadingPage, error)
	Latest(ctx context.Context) (models.SensorReading, bool, error)
	Remove(ctx context.Context, p models.Principal, id string) error
	Clear(ctx context.Context, p models.Principal) error
}

// Ingestion evaluates raw readings against the current threshold.
// Run consumes a stream until it closes or ctx is cancelled.
type Ingestion interface {
	Evaluate(ctx context.Context, raw models.RawReading) (models.Evaluation, error)
	Run(ctx context.Context, in <-chan models.RawReading)
}

// Live exposes the broker session state and the last raw value.
type Live interface {
	Status(ctx context.Context) (models.LiveStatus, error)
}

// EventLog exposes the audit log with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.AuditEvent, error)
}

// Service aggregates all sub-services handed to the HTTP layer.
type Service struct {
	Authorization
	Thresholds
	Readings
	Ingestion
	Live
	EventLog
}

// Options carries the settings the services take from configuration.
type Options struct {
	SigningKey  string
	TokenTTL    time.Duration
	DefaultRole string
	Operators   []string // usernames that sign up as operators

	// DefaultThreshold is the cold-start threshold; nil suppresses readings
	// until one is recorded.
	DefaultThreshold *float64

	PageSize    int
	MaxPageSize int

	Status StatusSource // nil when this process runs no broker session
	Cache  LatestLoader // nil when no cache is configured

	Log *logger.Logger
}

// NewService wires the repository layer into the concrete services.
func NewService(repos *repository.Repository, opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	audit := newAuditor(repos.EventRepo, log)
	thresholds := NewThresholdService(repos.Thresholds, audit, opts.DefaultThreshold)

	return &Service{
		Authorization: NewAuthService(repos.Auth, opts.SigningKey, opts.TokenTTL, opts.DefaultRole, opts.Operators),
		Thresholds:    thresholds,
		Readings:      NewReadingService(repos.Readings, audit, opts.PageSize, opts.MaxPageSize),
		Ingestion:     NewEvaluatorService(thresholds, repos.Readings, audit, log),
		Live:          NewLiveService(opts.Status, opts.Cache, log),
		EventLog:      NewEventLogService(repos.EventRepo),
	}
}
