package service

import (
	"context"
	"time"

	"thermowatch/internal/logger"
	"thermowatch/internal/models"
	"thermowatch/internal/repository"
)

// auditor appends audit events on a best-effort basis: a failed append is
// logged and never fails the operation being audited.
type auditor struct {
	repo repository.EventRepo
	log  *logger.Logger
}

func newAuditor(repo repository.EventRepo, log *logger.Logger) auditor {
	if log == nil {
		log = logger.Nop()
	}
	return auditor{repo: repo, log: log}
}

func (a auditor) record(ctx context.Context, typ, actor, description string, meta map[string]any) {
	if a.repo == nil {
		return
	}
	err := a.repo.Append(context.WithoutCancel(ctx), models.AuditEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Actor:       actor,
		Description: description,
		Metadata:    meta,
	})
	if err != nil {
		a.log.Warnw("audit_append_failed", "type", typ, "err", err)
	}
}
