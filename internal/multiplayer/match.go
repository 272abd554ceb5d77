package multiplayer

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vovakirdan/tui-connect4/internal/game"
)

// turnTimer is the local turn clock. Every arm or clear bumps gen, so an
// expiry posted by a stale timer is recognised and ignored.
type turnTimer struct {
	clock    clock.Clock
	timer    *clock.Timer
	gen      uint64
	deadline time.Time

	// remaining is the time left when the timer was paused. It may be
	// zero when the pause raced an expiry.
	remaining time.Duration
	stopped   bool
	// extra is the time each player saved on their last turn.
	extra [2]time.Duration
}

func (t *turnTimer) running() bool {
	return t.timer != nil
}

func (t *turnTimer) paused() bool {
	return t.stopped
}

// arm starts a timer of d and calls fire with its generation on expiry.
func (t *turnTimer) arm(d time.Duration, fire func(gen uint64)) {
	t.clear()
	t.remaining = 0
	t.stopped = false
	gen := t.gen
	t.deadline = t.clock.Now().Add(d)
	t.timer = t.clock.AfterFunc(d, func() { fire(gen) })
}

// clear stops the timer and returns how much of the turn was left.
func (t *turnTimer) clear() time.Duration {
	t.gen++
	if t.timer == nil {
		return 0
	}
	t.timer.Stop()
	t.timer = nil
	left := max(t.deadline.Sub(t.clock.Now()), 0)
	t.deadline = time.Time{}
	return left
}

// expired marks the timer of gen as fired. It reports false for stale timers.
func (t *turnTimer) expired(gen uint64) bool {
	if t.timer == nil || gen != t.gen {
		return false
	}
	t.timer = nil
	t.deadline = time.Time{}
	return true
}

// pause stops a running timer and keeps the time left for resume.
func (t *turnTimer) pause() {
	if !t.running() {
		return
	}
	t.remaining = t.clear()
	t.stopped = true
}

// resume re-arms a paused timer with the time it had left.
func (t *turnTimer) resume(fire func(gen uint64)) {
	if t.running() || !t.paused() {
		return
	}
	t.arm(t.remaining, fire)
}

// reset drops the timer, any paused time and the banked extra time.
func (t *turnTimer) reset() {
	t.clear()
	t.remaining = 0
	t.stopped = false
	t.extra = [2]time.Duration{}
}

// bank records the time p had left on the turn just ended.
func (t *turnTimer) bank(p game.Player, left time.Duration) {
	t.extra[p] = left
}
