package session

import (
	"sync"
	"time"
)

// Ticker is a running periodic timer.
type Ticker interface {
	// Stop cancels the timer. Calling it more than once is allowed.
	Stop()
}

// TickerFunc starts a Ticker that calls tick every interval until stopped.
type TickerFunc func(interval time.Duration, tick func()) Ticker

type timeTicker struct {
	t    *time.Ticker
	done chan struct{}
	once sync.Once
}

// NewTicker is the default TickerFunc. tick runs on a dedicated goroutine.
func NewTicker(interval time.Duration, tick func()) Ticker {
	tt := &timeTicker{
		t:    time.NewTicker(interval),
		done: make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-tt.done:
				return
			case <-tt.t.C:
				tick()
			}
		}
	}()
	return tt
}

func (tt *timeTicker) Stop() {
	tt.once.Do(func() {
		tt.t.Stop()
		close(tt.done)
	})
}
