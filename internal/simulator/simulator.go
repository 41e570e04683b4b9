package simulator

import (
	"context"
	"time"

	"thermowatch/internal/logger"
	"thermowatch/internal/models"
)

// Publisher delivers a synthetic reading to the broker.
type Publisher interface {
	Publish(ctx context.Context, r models.RawReading) error
}

// Simulator publishes one sample from its model per tick.
type Simulator struct {
	model *Model
	pub   Publisher
	log   *logger.Logger
}

func New(model *Model, pub Publisher, log *logger.Logger) *Simulator {
	if log == nil {
		log = logger.Nop()
	}
	return &Simulator{model: model, pub: pub, log: log.With("component", "simulator")}
}

// Run ticks at the given interval until ctx is canceled. Publish failures
// are logged and the next tick goes ahead.
func (s *Simulator) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.step(ctx, now)
		}
	}
}

func (s *Simulator) step(ctx context.Context, now time.Time) {
	r := models.RawReading{Value: s.model.Next(), ObservedAt: now.UTC()}
	if err := s.pub.Publish(ctx, r); err != nil {
		if ctx.Err() == nil {
			s.log.Warnw("simulated_publish_failed", "value", r.Value, "err", err)
		}
		return
	}
	s.log.Debugw("simulated_reading", "value", r.Value)
}
