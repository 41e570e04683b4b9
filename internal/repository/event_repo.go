package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"thermowatch/internal/apperr"
	"thermowatch/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const (
	insertEventSQL  = `INSERT INTO audit_events (id, occurred_at, type, actor, message, meta) VALUES (?, ?, ?, ?, ?, ?)`
	selectEventsSQL = `SELECT id, occurred_at, type, actor, message, meta FROM audit_events`
)

// Append inserts a new event. If EventID or OccurredAt are empty, they’re set.
func (r *EventSQLite) Append(ctx context.Context, e models.AuditEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	// marshal metadata if present
	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		toNanos(e.OccurredAt),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Actor,
		e.Description,
		metaPtr,
	)
	return apperr.Storage("insert audit event", err)
}

// List returns events filtered by [from, to] (inclusive) and/or type, ordered ASC.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.AuditEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, toNanos(from))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, toNanos(to))
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := selectEventsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Storage("select audit events", err)
	}
	defer rows.Close()

	out := make([]models.AuditEvent, 0, 64)
	for rows.Next() {
		var (
			ev         models.AuditEvent
			occurredNs int64
			metaStr    sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &occurredNs, &ev.Type, &ev.Actor, &ev.Description, &metaStr); err != nil {
			return nil, apperr.Storage("scan audit event", err)
		}
		ev.OccurredAt = fromNanos(occurredNs)

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate audit events", err)
	}
	return out, nil
}
