package service

import (
	"context"
	"strings"

	"thermowatch/internal/apperr"
	"thermowatch/internal/models"
	"thermowatch/internal/repository"
)

// PageQuery selects one page of readings. Limit 0 means the default size.
// Page is 1-based and, when set, takes precedence over Offset.
type PageQuery struct {
	Limit  int
	Offset int
	Page   int
}

type ReadingService struct {
	repo        repository.ReadingRepo
	audit       auditor
	pageSize    int
	maxPageSize int
}

func NewReadingService(repo repository.ReadingRepo, audit auditor, pageSize, maxPageSize int) *ReadingService {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	if maxPageSize < pageSize {
		maxPageSize = pageSize
	}
	return &ReadingService{repo: repo, audit: audit, pageSize: pageSize, maxPageSize: maxPageSize}
}

// normalize returns the offset and limit to query. Negative values and limits
// above the maximum page size are rejected.
func (s *ReadingService) normalize(q PageQuery) (offset, limit int, err error) {
	switch {
	case q.Limit < 0:
		return 0, 0, apperr.Validation("limit must not be negative")
	case q.Offset < 0:
		return 0, 0, apperr.Validation("offset must not be negative")
	case q.Page < 0:
		return 0, 0, apperr.Validation("page must not be negative")
	case q.Limit > s.maxPageSize:
		return 0, 0, apperr.Validation("limit %d exceeds the maximum page size %d", q.Limit, s.maxPageSize)
	}

	limit = q.Limit
	if limit == 0 {
		limit = s.pageSize
	}

	offset = q.Offset
	if q.Page > 0 {
		offset = (q.Page - 1) * limit
	}
	return offset, limit, nil
}

// List returns one page, newest observation first, with the total count.
func (s *ReadingService) List(ctx context.Context, q PageQuery) (models.ReadingPage, error) {
	offset, limit, err := s.normalize(q)
	if err != nil {
		return models.ReadingPage{}, err
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *ReadingService) Latest(ctx context.Context) (models.SensorReading, bool, error) {
	return s.repo.Latest(ctx)
}

// Remove deletes one reading. Unknown ids succeed without effect.
func (s *ReadingService) Remove(ctx context.Context, p models.Principal, id string) error {
	if err := requireWrite(p, "remove readings"); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.Validation("reading id is empty")
	}

	removed, err := s.repo.Remove(ctx, id)
	if err != nil {
		return err
	}
	if removed {
		s.audit.record(ctx, models.EventReadingRemoved, p.Username, "reading removed", map[string]any{"id": id})
	}
	return nil
}

func (s *ReadingService) Clear(ctx context.Context, p models.Principal) error {
	if err := requireWrite(p, "clear readings"); err != nil {
		return err
	}
	n, err := s.repo.Clear(ctx)
	if err != nil {
		return err
	}
	s.audit.record(ctx, models.EventReadingsCleared, p.Username, "reading history cleared", map[string]any{"removed": n})
	return nil
}
