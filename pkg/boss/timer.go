package boss

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/gitquest/internal/logging"
)

// DefaultTickInterval is the period of the countdown.
const DefaultTickInterval = time.Second

// Timer is a countdown in whole seconds. Safe for concurrent use.
type Timer struct {
	mu        sync.Mutex
	remaining int
	running   bool
	paused    bool
	expired   bool
	stop      chan struct{}

	interval time.Duration
	onTick   []func(remaining int)
	onExpire []func()
	logger   *slog.Logger
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithInterval sets the tick period. A non-positive interval disables the internal
// ticker; the host then drives the countdown by calling Tick.
func WithInterval(d time.Duration) TimerOption {
	return func(t *Timer) {
		t.interval = d
	}
}

// WithTimerLogger configures the logger.
func WithTimerLogger(logger *slog.Logger) TimerOption {
	return func(t *Timer) {
		t.logger = logger
	}
}

// NewTimer creates a stopped timer with the given number of seconds.
func NewTimer(seconds int, opts ...TimerOption) *Timer {
	if seconds < 0 {
		seconds = 0
	}
	t := &Timer{
		remaining: seconds,
		interval:  DefaultTickInterval,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnTick registers a callback invoked after every tick with the remaining seconds.
func (t *Timer) OnTick(fn func(remaining int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTick = append(t.onTick, fn)
}

// OnExpire registers a callback invoked once when the countdown reaches zero.
func (t *Timer) OnExpire(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExpire = append(t.onExpire, fn)
}

// Start begins the countdown. It is a no-op if the timer is running or expired.
// The internal ticker stops when ctx is cancelled or Stop is called.
func (t *Timer) Start(ctx context.Context) {
	t.mu.Lock()
	if t.running || t.expired {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.paused = false
	t.stop = make(chan struct{})
	stop := t.stop
	interval := t.interval
	t.mu.Unlock()

	t.logger.Debug("timer started", "remaining", t.Remaining(), "interval", interval)

	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-stop:
				return
			case <-ticker.C:
				t.Tick()
			}
		}
	}()
}

// Stop halts the countdown and clears the periodic source. Safe to call multiple times.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.haltLocked()
}

// Pause suspends ticking without clearing the periodic source.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
}

// Resume continues a paused countdown.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
}

// Tick advances the countdown by one second. It does nothing unless the timer is
// running and not paused. Callbacks run on the caller's goroutine after the state update.
func (t *Timer) Tick() {
	t.mu.Lock()
	if !t.running || t.paused || t.expired {
		t.mu.Unlock()
		return
	}
	t.remaining--
	t.dispatchLocked(true)
}

// Penalty subtracts seconds, clamping at zero. Reaching zero expires the timer.
// The timer keeps running otherwise.
func (t *Timer) Penalty(seconds int) {
	if seconds <= 0 {
		return
	}
	t.mu.Lock()
	if t.expired {
		t.mu.Unlock()
		return
	}
	t.remaining -= seconds
	t.dispatchLocked(false)
}

// Bonus adds seconds to a timer that has not expired.
func (t *Timer) Bonus(seconds int) {
	if seconds <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.expired {
		t.remaining += seconds
	}
}

// Remaining returns the seconds left.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Running reports whether the countdown is active (it may be paused).
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Expired reports whether the countdown reached zero.
func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

// dispatchLocked clamps the countdown, detects expiration, and runs callbacks
// after releasing the lock. It must be called with t.mu held.
func (t *Timer) dispatchLocked(tick bool) {
	if t.remaining < 0 {
		t.remaining = 0
	}
	remaining := t.remaining

	expiredNow := remaining == 0 && !t.expired
	if expiredNow {
		t.expired = true
		t.haltLocked()
	}

	var ticks []func(int)
	if tick {
		ticks = slices.Clone(t.onTick)
	}
	var expires []func()
	if expiredNow {
		expires = slices.Clone(t.onExpire)
	}
	t.mu.Unlock()

	for _, fn := range ticks {
		fn(remaining)
	}
	if expiredNow {
		t.logger.Debug("timer expired")
		for _, fn := range expires {
			fn()
		}
	}
}

func (t *Timer) haltLocked() {
	if !t.running {
		return
	}
	t.running = false
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}
