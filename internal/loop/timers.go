package loop

import (
	"math/rand/v2"
	"time"
)

// QuirkyPolicy selects how the quirky-message interval changes after each
// message.
type QuirkyPolicy string

const (
	// PolicyHalve halves the interval after every message, down to a floor.
	PolicyHalve QuirkyPolicy = "halve"
	// PolicyRandom draws a fresh interval uniformly from a range.
	PolicyRandom QuirkyPolicy = "random"
)

// QuietSource selects which input counts as "not quiet" for quirky messages.
type QuietSource string

const (
	// QuietActivity measures quiet time from the last keyword event.
	QuietActivity QuietSource = "activity"
	// QuietSubtitle measures quiet time from the last subtitle change.
	QuietSubtitle QuietSource = "subtitle"
)

// DefaultGlitchIntervals is the escalating glitch cadence, one entry per
// stage.
var DefaultGlitchIntervals = []time.Duration{
	10 * time.Second,
	5 * time.Second,
	2500 * time.Millisecond,
	1250 * time.Millisecond,
	750 * time.Millisecond,
}

// quirkyTimer tracks the quirky-message cadence and the rotating message
// index.
type quirkyTimer struct {
	policy   QuirkyPolicy
	base     time.Duration
	floor    time.Duration
	randMin  time.Duration
	randMax  time.Duration
	interval time.Duration
	last     time.Time
	next     int
}

// reset returns the interval to its starting value. Under PolicyRandom the
// starting value is a fresh draw.
func (q *quirkyTimer) reset(rng *rand.Rand) {
	if q.policy == PolicyRandom {
		q.interval = q.draw(rng)
		return
	}
	q.interval = q.base
}

// due reports whether the current interval has elapsed since the later of
// quiet and the last message.
func (q *quirkyTimer) due(now, quiet time.Time) bool {
	ref := quiet
	if q.last.After(ref) {
		ref = q.last
	}
	return now.Sub(ref) >= q.interval
}

// fire records a message at now, advances the rotation over n messages and
// applies the policy. It returns the message index and the interval that
// just elapsed.
func (q *quirkyTimer) fire(now time.Time, n int, rng *rand.Rand) (int, time.Duration) {
	idx := q.next
	if n > 0 {
		q.next = (q.next + 1) % n
	}
	elapsed := q.interval
	q.last = now

	switch q.policy {
	case PolicyRandom:
		q.interval = q.draw(rng)
	default:
		q.interval = max(q.floor, q.interval/2)
	}
	return idx, elapsed
}

func (q *quirkyTimer) draw(rng *rand.Rand) time.Duration {
	span := q.randMax - q.randMin
	if span <= 0 {
		return q.randMin
	}
	return q.randMin + time.Duration(rng.Int64N(int64(span)+1))
}

// glitchTimer walks an escalating interval table. The stage only moves
// forward between resets.
type glitchTimer struct {
	intervals []time.Duration
	stage     int
	last      time.Time
}

// reset returns to the first stage and restarts the clock at now.
func (g *glitchTimer) reset(now time.Time) {
	g.stage = 0
	g.last = now
}

// hold keeps the clock from accumulating while glitches are suppressed.
func (g *glitchTimer) hold(now time.Time) {
	g.last = now
}

func (g *glitchTimer) current() time.Duration {
	return g.intervals[g.stage]
}

func (g *glitchTimer) due(now time.Time) bool {
	return now.Sub(g.last) >= g.current()
}

// advance records a spawn at now and moves to the next stage, capped at the
// last table entry. It returns the stage and interval that fired.
func (g *glitchTimer) advance(now time.Time) (int, time.Duration) {
	stage, interval := g.stage, g.current()
	g.last = now
	if g.stage < len(g.intervals)-1 {
		g.stage++
	}
	return stage, interval
}
