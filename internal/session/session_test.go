package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typemaster/internal/diff"
	"github.com/verte-zerg/typemaster/internal/stats"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

type fakeTicker struct {
	interval time.Duration
	tick     func()
	stops    int
}

func (f *fakeTicker) Stop() { f.stops++ }

type fakeTickers struct {
	started []*fakeTicker
}

func (f *fakeTickers) start(interval time.Duration, tick func()) Ticker {
	ft := &fakeTicker{interval: interval, tick: tick}
	f.started = append(f.started, ft)
	return ft
}

func (f *fakeTickers) last() *fakeTicker {
	if len(f.started) == 0 {
		return nil
	}
	return f.started[len(f.started)-1]
}

// advance moves the clock by n seconds and fires the given ticker n times.
func advance(clock *fakeClock, ft *fakeTicker, n int) {
	for i := 0; i < n; i++ {
		clock.Advance(time.Second)
		ft.tick()
	}
}

func newTestController(t *testing.T, reference string) (*Controller, *fakeClock, *fakeTickers) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	tickers := &fakeTickers{}
	c := New(reference, WithClock(clock.Now), WithTicker(tickers.start))
	t.Cleanup(c.Close)
	return c, clock, tickers
}

func TestNewIsIdle(t *testing.T) {
	c, _, tickers := newTestController(t, "abc")
	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.Status)
	assert.True(t, snap.StartedAt.IsZero())
	assert.True(t, snap.FinishedAt.IsZero())
	assert.Zero(t, snap.ElapsedTicks)
	assert.False(t, snap.HasResult)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, []diff.Class{diff.Untyped, diff.Untyped, diff.Untyped}, snap.Classes)
	assert.Empty(t, tickers.started)
}

func TestEmptyInputDoesNotStart(t *testing.T) {
	c, _, tickers := newTestController(t, "abc")
	require.NoError(t, c.Input(""))
	assert.Equal(t, Idle, c.Status())
	assert.Empty(t, tickers.started)
}

func TestFirstCharacterStartsSession(t *testing.T) {
	c, clock, tickers := newTestController(t, "abc")
	start := clock.Now()
	require.NoError(t, c.Input("a"))

	snap := c.Snapshot()
	assert.Equal(t, Running, snap.Status)
	assert.Equal(t, start, snap.StartedAt)
	assert.True(t, snap.FinishedAt.IsZero())
	require.Len(t, tickers.started, 1)
	assert.Equal(t, DefaultTickInterval, tickers.last().interval)

	// Further input does not start a second ticker.
	require.NoError(t, c.Input("ab"))
	require.NoError(t, c.Input("a"))
	assert.Len(t, tickers.started, 1)
}

func TestTicksOnlyWhileRunning(t *testing.T) {
	c, clock, tickers := newTestController(t, "abcde")
	require.NoError(t, c.Input("a"))
	ft := tickers.last()

	advance(clock, ft, 3)
	assert.Equal(t, 3, c.ElapsedTicks())

	require.NoError(t, c.Input("abcde"))
	assert.Equal(t, Finished, c.Status())
	assert.Equal(t, 1, ft.stops)

	// A tick that races with completion must not count.
	advance(clock, ft, 5)
	assert.Equal(t, 3, c.ElapsedTicks())
}

func TestCompletionIsLengthBased(t *testing.T) {
	c, clock, _ := newTestController(t, "abcde")
	require.NoError(t, c.Input("a"))
	clock.Advance(time.Minute)

	require.NoError(t, c.Input("abXd"))
	assert.Equal(t, Running, c.Status())
	_, ok := c.Result()
	assert.False(t, ok)

	require.NoError(t, c.Input("abXdX"))
	assert.Equal(t, Finished, c.Status())
}

func TestFinishComputesMetrics(t *testing.T) {
	c, clock, _ := newTestController(t, "abcde")
	require.NoError(t, c.Input("a"))
	clock.Advance(time.Minute)
	require.NoError(t, c.Input("abXde"))

	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, stats.Result{WPM: 1, Accuracy: 80, Errors: 1, Correct: 4}, res)

	snap := c.Snapshot()
	assert.True(t, snap.HasResult)
	assert.Equal(t, res, snap.Result)
	assert.Equal(t, snap.StartedAt.Add(time.Minute), snap.FinishedAt)
	assert.Equal(t, 100, snap.Progress())
}

func TestBackspaceEditsAreOverwrites(t *testing.T) {
	c, _, _ := newTestController(t, "abc")
	require.NoError(t, c.Input("ax"))
	assert.Equal(t, []diff.Class{diff.Correct, diff.Incorrect, diff.Untyped}, c.Classes())
	require.NoError(t, c.Input("a"))
	assert.Equal(t, []diff.Class{diff.Correct, diff.Untyped, diff.Untyped}, c.Classes())
	require.NoError(t, c.Input(""))
	assert.Equal(t, Running, c.Status())
	assert.Equal(t, "", c.Snapshot().Typed)
}

func TestInputAfterFinishIsRejected(t *testing.T) {
	c, _, _ := newTestController(t, "ab")
	require.NoError(t, c.Input("ab"))
	assert.ErrorIs(t, c.Input("a"), ErrFinished)
	assert.Equal(t, "ab", c.Snapshot().Typed)
	assert.Equal(t, Finished, c.Status())
}

func TestInstantFinishYieldsZeroMetrics(t *testing.T) {
	c, _, tickers := newTestController(t, "ab")
	require.NoError(t, c.Input("ab"))
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, stats.Result{}, res)
	require.Len(t, tickers.started, 1)
	assert.Equal(t, 1, tickers.last().stops)
}

func TestOverflowInputFinishes(t *testing.T) {
	c, clock, _ := newTestController(t, "abc")
	require.NoError(t, c.Input("a"))
	clock.Advance(time.Minute)
	require.NoError(t, c.Input("abcdef"))

	assert.Equal(t, Finished, c.Status())
	assert.Len(t, c.Classes(), 3)
	res, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, 3, res.Correct)
	assert.Equal(t, 0, res.Errors)
	assert.Equal(t, 100, res.Accuracy)
}

func TestResetClearsEverything(t *testing.T) {
	c, clock, tickers := newTestController(t, "abc")
	firstID := c.ID()
	require.NoError(t, c.Input("a"))
	ft := tickers.last()
	advance(clock, ft, 2)
	require.NoError(t, c.Input("abc"))
	require.Equal(t, Finished, c.Status())

	c.Reset("xyz")
	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.Status)
	assert.Equal(t, "xyz", snap.Reference)
	assert.Empty(t, snap.Typed)
	assert.True(t, snap.StartedAt.IsZero())
	assert.True(t, snap.FinishedAt.IsZero())
	assert.Zero(t, snap.ElapsedTicks)
	assert.False(t, snap.HasResult)
	assert.Equal(t, stats.Result{}, snap.Result)
	assert.NotEqual(t, firstID, snap.ID)
	_, ok := c.Result()
	assert.False(t, ok)
}

func TestResetWhileRunningStopsTicker(t *testing.T) {
	c, clock, tickers := newTestController(t, "abcdef")
	require.NoError(t, c.Input("ab"))
	ft := tickers.last()
	advance(clock, ft, 2)

	c.Reset("abcdef")
	assert.Equal(t, 1, ft.stops)
	advance(clock, ft, 4)
	assert.Zero(t, c.ElapsedTicks())

	// The next session gets its own ticker; the old one stays dead.
	require.NoError(t, c.Input("a"))
	require.Len(t, tickers.started, 2)
	advance(clock, ft, 3)
	assert.Zero(t, c.ElapsedTicks())
	advance(clock, tickers.last(), 1)
	assert.Equal(t, 1, c.ElapsedTicks())
}

func TestCloseStopsTicker(t *testing.T) {
	c, clock, tickers := newTestController(t, "abcdef")
	require.NoError(t, c.Input("a"))
	ft := tickers.last()
	advance(clock, ft, 1)

	c.Close()
	assert.Equal(t, 1, ft.stops)
	advance(clock, ft, 3)
	assert.Equal(t, 1, c.ElapsedTicks())

	c.Close()
	assert.Equal(t, 1, ft.stops)
}

func TestInputAfterCloseStartsNoTicker(t *testing.T) {
	c, _, tickers := newTestController(t, "abc")
	c.Close()

	assert.ErrorIs(t, c.Input("a"), ErrClosed)
	assert.Empty(t, tickers.started)
	assert.Equal(t, Idle, c.Status())
	assert.Empty(t, c.Snapshot().Typed)

	// Reset clears state but the controller stays closed.
	c.Reset("xyz")
	assert.ErrorIs(t, c.Input("x"), ErrClosed)
	assert.Empty(t, tickers.started)
}

func TestCompletionBoundaryProperty(t *testing.T) {
	ref := "the lazy dog"
	c, _, _ := newTestController(t, ref)
	runes := []rune(ref)
	for i := 1; i <= len(runes); i++ {
		typed := make([]rune, i)
		for j := range typed {
			typed[j] = 'x'
		}
		require.NoError(t, c.Input(string(typed)))
		if i < len(runes) {
			require.NotEqual(t, Finished, c.Status(), "finished early at %d", i)
		} else {
			require.Equal(t, Finished, c.Status())
		}
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "finished", Finished.String())
	assert.Equal(t, "unknown", Status(7).String())
}

func TestSnapshotProgress(t *testing.T) {
	assert.Equal(t, 0, Snapshot{}.Progress())
	assert.Equal(t, 50, Snapshot{Reference: "abcd", Typed: "ab"}.Progress())
	assert.Equal(t, 100, Snapshot{Reference: "ab", Typed: "abcd"}.Progress())
}

func TestDefaultTickerAdvancesAndStops(t *testing.T) {
	c := New("abcdef", WithTickInterval(5*time.Millisecond))
	t.Cleanup(c.Close)
	require.NoError(t, c.Input("a"))
	require.Eventually(t, func() bool { return c.ElapsedTicks() >= 2 }, 2*time.Second, time.Millisecond)

	c.Reset("abcdef")
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, c.ElapsedTicks())
}

func TestNewTickerStopIsIdempotent(t *testing.T) {
	var mu sync.Mutex
	count := 0
	tk := NewTicker(time.Millisecond, func() {
		mu.Lock()
		count++
		mu.Unlock()
	})
	tk.Stop()
	tk.Stop()
	time.Sleep(5 * time.Millisecond)
	mu.Lock()
	seen := count
	mu.Unlock()
	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, seen, count)
}
