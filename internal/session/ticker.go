package session

import (
	"sync"
	"time"
)

// Ticker runs fn every interval until the returned stop function is called.
// Stop is idempotent. fn runs on a goroutine owned by the Ticker.
type Ticker interface {
	Start(interval time.Duration, fn func()) (stop func())
}

// RealTicker is a Ticker on the wall clock.
type RealTicker struct{}

// Start implements Ticker.
func (RealTicker) Start(interval time.Duration, fn func()) func() {
	t := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
