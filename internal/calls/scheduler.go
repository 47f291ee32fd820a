package calls

import (
	"sync"
	"time"
)

// Scheduler runs fn every d until the returned stop func is called.
// stop must be idempotent.
type Scheduler interface {
	Every(d time.Duration, fn func()) (stop func())
}

// TickerScheduler drives fn from a time.Ticker on its own goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(d time.Duration, fn func()) func() {
	t := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}
