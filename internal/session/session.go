// Package session implements the scored typing-test lifecycle.
//
// A Controller moves Idle -> Running on the first typed character and
// Running -> Finished once the typed text reaches the reference length.
// While Running a one-second ticker advances the elapsed tick counter.
// Reset starts over with a fresh session and is the only way back to Idle.
package session

import (
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/verte-zerg/typemaster/internal/diff"
	"github.com/verte-zerg/typemaster/internal/stats"
)

// DefaultTickInterval is the period of the elapsed-time ticker.
const DefaultTickInterval = time.Second

var (
	// ErrFinished is returned by Input once the session has finished.
	ErrFinished = errors.New("session finished")
	// ErrClosed is returned by Input after Close.
	ErrClosed = errors.New("session closed")
)

// Status is the lifecycle state of a session.
type Status int

const (
	// Idle means nothing has been typed yet.
	Idle Status = iota
	// Running means typing started and the ticker is active.
	Running
	// Finished means the reference length was reached and metrics are final.
	Finished
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTicker replaces NewTicker.
func WithTicker(f TickerFunc) Option {
	return func(c *Controller) {
		if f != nil {
			c.newTicker = f
		}
	}
}

// WithTickInterval overrides DefaultTickInterval.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// Controller owns one typing session at a time. All methods are safe for
// concurrent use; ticks from the timer goroutine are serialized with input.
type Controller struct {
	mu sync.Mutex

	now       func() time.Time
	newTicker TickerFunc
	interval  time.Duration

	id         string
	reference  []rune
	typed      []rune
	status     Status
	startedAt  time.Time
	finishedAt time.Time
	ticks      int
	result     stats.Result

	ticker Ticker
	closed bool
	// gen identifies the live ticker; ticks carrying an older value are dropped.
	gen uint64
}

// New returns an Idle controller for reference.
func New(reference string, opts ...Option) *Controller {
	c := &Controller{
		now:       time.Now,
		newTicker: NewTicker,
		interval:  DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset(reference)
	return c
}

// Reset discards the current session, stopping its ticker, and starts an
// Idle session for reference. Reset does not reopen a closed Controller.
func (c *Controller) Reset(reference string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTickerLocked()
	c.id = uuid.NewString()
	c.reference = []rune(reference)
	c.typed = nil
	c.status = Idle
	c.startedAt = time.Time{}
	c.finishedAt = time.Time{}
	c.ticks = 0
	c.result = stats.Result{}
}

// Input replaces the typed text with the full current buffer. The first
// non-empty input starts the session; reaching the reference length
// finishes it. Input after finishing returns ErrFinished and input after
// Close returns ErrClosed.
func (c *Controller) Input(typed string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.status == Finished {
		return ErrFinished
	}
	runes := []rune(typed)
	if c.status == Idle && len(runes) > 0 {
		c.status = Running
		c.startedAt = c.now()
		c.startTickerLocked()
	}
	c.typed = runes
	if c.status == Running && len(c.typed) >= len(c.reference) {
		c.finishLocked()
	}
	return nil
}

// Close stops the ticker and disposes of the Controller. The state stays
// readable but no further input is accepted and no ticker is started again.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTickerLocked()
}

func (c *Controller) finishLocked() {
	c.finishedAt = c.now()
	c.status = Finished
	c.stopTickerLocked()
	c.result = stats.ComputeRunes(c.reference, c.typed, c.finishedAt.Sub(c.startedAt))
}

func (c *Controller) startTickerLocked() {
	c.stopTickerLocked()
	c.gen++
	gen := c.gen
	c.ticker = c.newTicker(c.interval, func() { c.tick(gen) })
}

func (c *Controller) stopTickerLocked() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	c.ticker = nil
	c.gen++
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.status != Running {
		return
	}
	c.ticks++
}

// ID returns an identifier unique to the current session; Reset changes it.
func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Status returns the lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ElapsedTicks returns the number of ticks observed while Running.
func (c *Controller) ElapsedTicks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Classes classifies the typed text against the reference.
func (c *Controller) Classes() []diff.Class {
	c.mu.Lock()
	defer c.mu.Unlock()
	return diff.ClassifyRunes(c.reference, c.typed)
}

// Result returns the metrics; ok is false until the session finishes.
func (c *Controller) Result() (stats.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != Finished {
		return stats.Result{}, false
	}
	return c.result, true
}

// Snapshot is a consistent copy of a Controller's state.
type Snapshot struct {
	ID           string
	Reference    string
	Typed        string
	Status       Status
	StartedAt    time.Time
	FinishedAt   time.Time
	ElapsedTicks int
	Classes      []diff.Class
	Result       stats.Result
	HasResult    bool
}

// Snapshot returns the current state. StartedAt and FinishedAt are zero
// when absent.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		ID:           c.id,
		Reference:    string(c.reference),
		Typed:        string(c.typed),
		Status:       c.status,
		StartedAt:    c.startedAt,
		FinishedAt:   c.finishedAt,
		ElapsedTicks: c.ticks,
		Classes:      diff.ClassifyRunes(c.reference, c.typed),
	}
	if c.status == Finished {
		snap.Result = c.result
		snap.HasResult = true
	}
	return snap
}

// Progress returns the typed share of the reference in percent, capped at 100.
func (s Snapshot) Progress() int {
	total := utf8.RuneCountInString(s.Reference)
	if total == 0 {
		return 0
	}
	typed := utf8.RuneCountInString(s.Typed)
	if typed > total {
		typed = total
	}
	return typed * 100 / total
}
