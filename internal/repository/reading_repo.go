package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"thermowatch/internal/apperr"
	"thermowatch/internal/models"

	"github.com/google/uuid"
)

type ReadingSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite {
	return &ReadingSQLite{db: db, now: time.Now}
}

var _ ReadingRepo = (*ReadingSQLite)(nil)

const (
	insertReadingSQL = `INSERT INTO readings (id, value, threshold_at_capture, observed_at, recorded_at) VALUES (?, ?, ?, ?, ?)`

	countReadingsSQL = `SELECT COUNT(*) FROM readings`

	selectReadingsPageSQL = `SELECT id, value, threshold_at_capture, observed_at, recorded_at FROM readings ORDER BY observed_at DESC, seq DESC LIMIT ? OFFSET ?`

	selectLatestReadingSQL = `SELECT id, value, threshold_at_capture, observed_at, recorded_at FROM readings ORDER BY observed_at DESC, seq DESC LIMIT 1`

	deleteReadingSQL     = `DELETE FROM readings WHERE id = ?`
	deleteAllReadingsSQL = `DELETE FROM readings`
)

// Append persists the reading in a single INSERT and returns it with its
// assigned ID and RecordedAt. A zero ObservedAt is set to the record time.
func (r *ReadingSQLite) Append(ctx context.Context, rd models.SensorReading) (models.SensorReading, error) {
	rd.ID = uuid.NewString()
	rd.RecordedAt = r.now().UTC()
	if rd.ObservedAt.IsZero() {
		rd.ObservedAt = rd.RecordedAt
	} else {
		rd.ObservedAt = rd.ObservedAt.UTC()
	}

	if _, err := r.db.ExecContext(ctx, insertReadingSQL,
		rd.ID,
		rd.Value,
		rd.ThresholdAtCapture,
		toNanos(rd.ObservedAt),
		toNanos(rd.RecordedAt),
	); err != nil {
		return models.SensorReading{}, apperr.Storage("insert reading", err)
	}
	return rd, nil
}

// List returns one page, most recent observation first. The count and the page
// are read inside one transaction so total and data agree.
func (r *ReadingSQLite) List(ctx context.Context, offset, limit int) (models.ReadingPage, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.ReadingPage{}, apperr.Storage("begin list readings", err)
	}
	defer func() { _ = tx.Rollback() }()

	page := models.ReadingPage{Data: make([]models.SensorReading, 0, limit)}
	if err := tx.QueryRowContext(ctx, countReadingsSQL).Scan(&page.Total); err != nil {
		return models.ReadingPage{}, apperr.Storage("count readings", err)
	}

	rows, err := tx.QueryContext(ctx, selectReadingsPageSQL, limit, offset)
	if err != nil {
		return models.ReadingPage{}, apperr.Storage("select readings", err)
	}
	defer rows.Close()

	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return models.ReadingPage{}, apperr.Storage("scan reading", err)
		}
		page.Data = append(page.Data, rd)
	}
	if err := rows.Err(); err != nil {
		return models.ReadingPage{}, apperr.Storage("iterate readings", err)
	}
	if err := tx.Commit(); err != nil {
		return models.ReadingPage{}, apperr.Storage("commit list readings", err)
	}
	return page, nil
}

// Latest returns the most recently observed reading; ok is false when the table is empty.
func (r *ReadingSQLite) Latest(ctx context.Context) (models.SensorReading, bool, error) {
	rd, err := scanReading(r.db.QueryRowContext(ctx, selectLatestReadingSQL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SensorReading{}, false, nil
		}
		return models.SensorReading{}, false, apperr.Storage("select latest reading", err)
	}
	return rd, true, nil
}

// Remove deletes one reading. Removing an unknown id is not an error.
func (r *ReadingSQLite) Remove(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteReadingSQL, id)
	if err != nil {
		return false, apperr.Storage("delete reading", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Storage("delete reading rows affected", err)
	}
	return n > 0, nil
}

// Clear deletes every reading and reports how many were removed.
func (r *ReadingSQLite) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteAllReadingsSQL)
	if err != nil {
		return 0, apperr.Storage("clear readings", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Storage("clear readings rows affected", err)
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(s rowScanner) (models.SensorReading, error) {
	var (
		rd                   models.SensorReading
		observedNs, recordNs int64
	)
	if err := s.Scan(&rd.ID, &rd.Value, &rd.ThresholdAtCapture, &observedNs, &recordNs); err != nil {
		return models.SensorReading{}, err
	}
	rd.ObservedAt = fromNanos(observedNs)
	rd.RecordedAt = fromNanos(recordNs)
	return rd, nil
}
