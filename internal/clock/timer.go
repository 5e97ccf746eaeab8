package clock

import "time"

// TickResult tells the owner what a delivered tick meant.
type TickResult int

const (
	// TickStale means the tick belonged to a cancelled arm and was ignored.
	TickStale TickResult = iota
	// TickRunning means time remains and the next tick is scheduled.
	TickRunning
	// TickExpired is returned exactly once per arm when the countdown reaches zero.
	TickExpired
)

type timerState int

const (
	timerIdle timerState = iota
	timerRunning
	timerPaused
	timerExpired
)

// Timer is a cooperative countdown. It is not goroutine safe: the owner
// serialises every call, including Tick, which the owner invokes from the
// deliver callback under its own lock.
//
// Remaining time is derived from a wall-clock deadline on every tick, so late
// or missed ticks (for example after the process was suspended) do not
// stretch the countdown.
type Timer struct {
	clock      Clock
	resolution time.Duration
	deliver    func(gen uint64)

	state     timerState
	gen       uint64
	deadline  time.Time
	remaining time.Duration
	pending   Stopper
}

// NewTimer builds a timer that schedules ticks every resolution and hands each
// one to deliver along with the arm generation it belongs to.
func NewTimer(c Clock, resolution time.Duration, deliver func(gen uint64)) *Timer {
	if resolution <= 0 {
		resolution = time.Second
	}
	return &Timer{clock: c, resolution: resolution, deliver: deliver}
}

// Arm starts a new countdown of d, invalidating any previous one.
func (t *Timer) Arm(d time.Duration) {
	t.cancelPending()
	t.gen++
	t.remaining = d
	t.deadline = t.clock.Now().Add(d)
	t.state = timerRunning
	t.schedule()
}

// Pause freezes the countdown, keeping the time still left.
func (t *Timer) Pause() {
	if t.state != timerRunning {
		return
	}
	t.cancelPending()
	t.gen++
	t.remaining = t.untilDeadline()
	t.state = timerPaused
}

// Resume continues from the remaining time rather than the original duration.
func (t *Timer) Resume() {
	if t.state != timerPaused {
		return
	}
	t.gen++
	t.deadline = t.clock.Now().Add(t.remaining)
	t.state = timerRunning
	t.schedule()
}

// Stop cancels the countdown; ticks already in flight become stale.
func (t *Timer) Stop() {
	t.cancelPending()
	t.gen++
	if t.state == timerRunning {
		t.remaining = t.untilDeadline()
	}
	t.state = timerIdle
}

// Remaining reports the time left on the current arm.
func (t *Timer) Remaining() time.Duration {
	if t.state == timerRunning {
		return t.untilDeadline()
	}
	if t.state == timerExpired {
		return 0
	}
	return t.remaining
}

// Running reports whether a countdown is in progress.
func (t *Timer) Running() bool { return t.state == timerRunning }

// Tick processes a delivered tick for generation gen.
func (t *Timer) Tick(gen uint64) (TickResult, time.Duration) {
	if gen != t.gen || t.state != timerRunning {
		return TickStale, t.Remaining()
	}
	t.pending = nil
	left := t.untilDeadline()
	if left <= 0 {
		t.state = timerExpired
		t.remaining = 0
		t.gen++
		return TickExpired, 0
	}
	t.remaining = left
	t.schedule()
	return TickRunning, left
}

func (t *Timer) schedule() {
	wait := t.resolution
	if left := t.untilDeadline(); left < wait {
		wait = left
	}
	if wait < 0 {
		wait = 0
	}
	gen := t.gen
	t.pending = t.clock.AfterFunc(wait, func() { t.deliver(gen) })
}

func (t *Timer) cancelPending() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

func (t *Timer) untilDeadline() time.Duration {
	left := t.deadline.Sub(t.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}
