package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"thermowatch/internal/apperr"
	"thermowatch/internal/models"

	"github.com/google/uuid"
)

type ThresholdSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewThresholdSQLite(db *sql.DB) *ThresholdSQLite {
	return &ThresholdSQLite{db: db, now: time.Now}
}

var _ ThresholdRepo = (*ThresholdSQLite)(nil)

const (
	insertThresholdSQL = `INSERT INTO thresholds (id, value, note, created_by, created_at) VALUES (?, ?, ?, ?, ?)`

	// seq breaks ties between rows created within the same nanosecond.
	selectLatestThresholdSQL = `SELECT id, value, note, created_by, created_at FROM thresholds ORDER BY created_at DESC, seq DESC LIMIT 1`

	selectThresholdsSQL = `SELECT id, value, note, created_by, created_at FROM thresholds ORDER BY created_at DESC, seq DESC`

	deleteThresholdSQL     = `DELETE FROM thresholds WHERE id = ?`
	deleteAllThresholdsSQL = `DELETE FROM thresholds`
)

// Create appends a new setting. ID and CreatedAt are always assigned here.
func (r *ThresholdSQLite) Create(ctx context.Context, t models.ThresholdSetting) (models.ThresholdSetting, error) {
	t.ID = uuid.NewString()
	t.CreatedAt = r.now().UTC()
	t.Note = strings.TrimSpace(t.Note)

	if _, err := r.db.ExecContext(ctx, insertThresholdSQL,
		t.ID,
		t.Value,
		t.Note,
		t.CreatedBy,
		toNanos(t.CreatedAt),
	); err != nil {
		return models.ThresholdSetting{}, apperr.Storage("insert threshold", err)
	}
	return t, nil
}

// Latest returns the most recently created setting; ok is false when none exist.
func (r *ThresholdSQLite) Latest(ctx context.Context) (models.ThresholdSetting, bool, error) {
	t, err := scanThreshold(r.db.QueryRowContext(ctx, selectLatestThresholdSQL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ThresholdSetting{}, false, nil
		}
		return models.ThresholdSetting{}, false, apperr.Storage("select latest threshold", err)
	}
	return t, true, nil
}

// List returns the whole history, newest first.
func (r *ThresholdSQLite) List(ctx context.Context) ([]models.ThresholdSetting, error) {
	rows, err := r.db.QueryContext(ctx, selectThresholdsSQL)
	if err != nil {
		return nil, apperr.Storage("select thresholds", err)
	}
	defer rows.Close()

	out := make([]models.ThresholdSetting, 0, 16)
	for rows.Next() {
		t, err := scanThreshold(rows)
		if err != nil {
			return nil, apperr.Storage("scan threshold", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate thresholds", err)
	}
	return out, nil
}

// Remove deletes one setting. Removing an unknown id is not an error.
func (r *ThresholdSQLite) Remove(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteThresholdSQL, id)
	if err != nil {
		return false, apperr.Storage("delete threshold", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Storage("delete threshold rows affected", err)
	}
	return n > 0, nil
}

func (r *ThresholdSQLite) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteAllThresholdsSQL)
	if err != nil {
		return 0, apperr.Storage("clear thresholds", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Storage("clear thresholds rows affected", err)
	}
	return n, nil
}

func scanThreshold(s rowScanner) (models.ThresholdSetting, error) {
	var (
		t         models.ThresholdSetting
		createdNs int64
	)
	if err := s.Scan(&t.ID, &t.Value, &t.Note, &t.CreatedBy, &createdNs); err != nil {
		return models.ThresholdSetting{}, err
	}
	t.CreatedAt = fromNanos(createdNs)
	return t, nil
}
