// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
//
// Adapted from github.com/Azure/iot-operations-sdks/go/mqtt/retry
// (exponential_backoff.go).

package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"thermowatch/internal/logger"
)

// Task is one attempt of a retried operation. Returning retry=false stops the
// loop even when err is non-nil.
type Task = func(ctx context.Context) (retry bool, err error)

// Policy runs a task until it succeeds or the policy gives up.
type Policy interface {
	Start(ctx context.Context, name string, task Task) error
}

const (
	defaultMinInterval = time.Second / 8
	defaultMaxInterval = 30 * time.Second
)

// ExponentialBackoff retries with an interval that doubles per attempt,
// starting at MinInterval and capped at MaxInterval, with ±5% jitter.
type ExponentialBackoff struct {
	// MaxAttempts of 0 means unlimited; 1 disables retries.
	MaxAttempts uint64

	MinInterval time.Duration // default 1/8s
	MaxInterval time.Duration // default 30s

	// Timeout bounds all attempts together. Zero means no bound.
	Timeout time.Duration

	NoJitter bool

	Logger *logger.Logger
}

var _ Policy = (*ExponentialBackoff)(nil)

// Start runs task until it succeeds, asks not to be retried, runs out of
// attempts or ctx ends. The last task error (or ctx error) is returned.
func (e *ExponentialBackoff) Start(ctx context.Context, name string, task Task) error {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	log := e.Logger
	if log == nil {
		log = logger.Nop()
	}

	for attempt := uint64(1); ; attempt++ {
		log.Debugw("retry", "task", name, "attempt", attempt)
		retry, err := task(ctx)
		if err == nil {
			if attempt > 1 {
				log.Infow("retry succeeded", "task", name, "attempt", attempt)
			}
			return nil
		}

		interval := e.Interval(ctx, attempt, retry)
		if interval == 0 {
			log.Warnw("retry_failed", "task", name, "attempt", attempt, "err", err)
			return err
		}
		log.Debugw("retry_scheduled", "task", name, "attempt", attempt, "in", interval, "err", err)

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			log.Infow("retry cancelled", "task", name, "attempt", attempt)
			return ctx.Err()
		}
	}
}

// Interval returns the wait before the next attempt, or 0 when no further
// attempt should be made.
func (e *ExponentialBackoff) Interval(ctx context.Context, attempt uint64, retry bool) time.Duration {
	switch {
	case !retry,
		attempt == e.MaxAttempts,
		ctx.Err() != nil:
		return 0
	}

	minInterval := e.MinInterval
	if minInterval <= 0 {
		minInterval = defaultMinInterval
	}
	maxInterval := e.MaxInterval
	if maxInterval <= 0 {
		maxInterval = defaultMaxInterval
	}
	if maxInterval < minInterval {
		maxInterval = minInterval
	}

	factor := math.Pow(2, min(
		float64(attempt-1),
		math.Log2(float64(maxInterval)/float64(minInterval)),
	))
	if !e.NoJitter {
		// #nosec G404 -- jitter only
		factor *= .95 + .1*rand.Float64()
	}
	return time.Duration(factor * float64(minInterval))
}
