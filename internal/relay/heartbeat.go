package relay

import (
	"sync"
	"time"
)

// Average keeps the mean of the most recent values.
type Average struct {
	values []float64
	sum    float64
	amount int
	cursor int
}

// NewAverage creates an average over the last n values.
func NewAverage(n int) *Average {
	if n < 1 {
		n = 1
	}
	return &Average{values: make([]float64, n)}
}

// Add records v, evicting the oldest value once the window is full.
func (a *Average) Add(v float64) {
	a.sum -= a.values[a.cursor]
	a.values[a.cursor] = v
	a.sum += v

	if a.amount <= a.cursor {
		a.amount = a.cursor + 1
	}
	a.cursor = (a.cursor + 1) % len(a.values)
}

// Value returns the mean, or 0 when nothing was recorded.
func (a *Average) Value() float64 {
	if a.amount == 0 {
		return 0
	}
	return a.sum / float64(a.amount)
}

// Len returns the number of values in the window.
func (a *Average) Len() int {
	return a.amount
}

// Reset forgets all values.
func (a *Average) Reset() {
	clear(a.values)
	a.sum, a.amount, a.cursor = 0, 0, 0
}

const (
	delaySamples  = 10
	offsetSamples = 3
)

// Estimator derives the one-way network delay and the offset between the
// local and the relay clock from ping round trips.
type Estimator struct {
	mu     sync.Mutex
	delay  *Average
	offset *Average
}

// NewEstimator creates an estimator with empty windows.
func NewEstimator() *Estimator {
	return &Estimator{
		delay:  NewAverage(delaySamples),
		offset: NewAverage(offsetSamples),
	}
}

// Observe feeds one round trip: the local send time, the relay's receive
// time and the local time the answer arrived.
//
// A relay timestamp inside [sent, now] is explained by latency alone and
// counts as no offset.
func (e *Estimator) Observe(sent, received, now time.Time) {
	rtt := max(now.Sub(sent), 0)
	half := rtt / 2

	var offset time.Duration
	if received.Before(sent) || received.After(now) {
		offset = received.Sub(sent.Add(half))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay.Add(float64(half))
	e.offset.Add(float64(offset))
}

// Delay is the estimated one-way delay.
func (e *Estimator) Delay() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(e.delay.Value())
}

// Offset is the estimated amount the relay clock runs ahead of ours.
func (e *Estimator) Offset() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Duration(e.offset.Value())
}

// Reset forgets all samples.
func (e *Estimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay.Reset()
	e.offset.Reset()
}
