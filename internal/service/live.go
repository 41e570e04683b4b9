package service

import (
	"context"

	"thermowatch/internal/logger"
	"thermowatch/internal/models"
)

// StatusSource reports the broker session of this process.
type StatusSource interface {
	Status() models.LiveStatus
}

// LatestLoader reads a latest raw reading mirrored by another process.
type LatestLoader interface {
	Load(ctx context.Context) (models.RawReading, bool, error)
}

type LiveService struct {
	source StatusSource
	cache  LatestLoader
	log    *logger.Logger
}

func NewLiveService(source StatusSource, cache LatestLoader, log *logger.Logger) *LiveService {
	if log == nil {
		log = logger.Nop()
	}
	return &LiveService{source: source, cache: cache, log: log}
}

// Status returns the local session state. When no raw reading has been seen
// locally the mirrored one is used, if any.
func (s *LiveService) Status(ctx context.Context) (models.LiveStatus, error) {
	st := models.LiveStatus{Connection: models.ConnectionState{Kind: models.StateDisconnected}}
	if s.source != nil {
		st = s.source.Status()
	}
	if st.Latest != nil || s.cache == nil {
		return st, nil
	}

	r, ok, err := s.cache.Load(ctx)
	if err != nil {
		s.log.Warnw("latest_cache_unavailable", "err", err)
		return st, nil
	}
	if ok {
		st.Latest = &r
	}
	return st, nil
}
