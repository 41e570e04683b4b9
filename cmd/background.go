package main

import (
	"sync"
	"time"
)

// background tracks the goroutines that use the database and the broker, so
// main can wait for them before closing either.
type background struct {
	wg sync.WaitGroup
}

func (b *background) Go(fn func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn()
	}()
}

// Wait blocks until every tracked goroutine has returned or timeout elapses.
// It reports whether all of them finished.
func (b *background) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}
