// Package clock provides the time source and countdown timer used by game sessions.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

// Clock abstracts wall-clock reads and delayed callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// Real is the process clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }

// Manual is a deterministic clock for tests. Callbacks run synchronously from
// Advance in deadline order, on the caller's goroutine.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*manualTimer
}

type manualTimer struct {
	c       *Manual
	at      time.Time
	seq     int
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// NewManual starts a manual clock at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Manual) AfterFunc(d time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{c: c, at: c.now.Add(d), seq: c.seq, f: f}
	c.pending = append(c.pending, t)
	return t
}

// Advance moves time forward by d, firing every callback that falls due,
// including ones scheduled by callbacks fired along the way.
func (c *Manual) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.popDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.mu.Unlock()
		next.f()
	}
}

// Jump moves time forward without firing anything, as if the process had been
// suspended. Overdue callbacks fire on the next Advance.
func (c *Manual) Jump(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Pending reports how many live callbacks are scheduled.
func (c *Manual) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (c *Manual) popDueLocked(target time.Time) *manualTimer {
	live := c.pending[:0]
	for _, t := range c.pending {
		if !t.stopped {
			live = append(live, t)
		}
	}
	c.pending = live
	sort.SliceStable(c.pending, func(i, j int) bool {
		if !c.pending[i].at.Equal(c.pending[j].at) {
			return c.pending[i].at.Before(c.pending[j].at)
		}
		return c.pending[i].seq < c.pending[j].seq
	})
	if len(c.pending) == 0 || c.pending[0].at.After(target) {
		return nil
	}
	next := c.pending[0]
	next.stopped = true
	c.pending = c.pending[1:]
	return next
}
