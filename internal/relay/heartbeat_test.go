package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAverage(t *testing.T) {
	a := NewAverage(2)
	assert.Zero(t, a.Value())

	a.Add(1)
	assert.InDelta(t, 1.0, a.Value(), 1e-9)
	a.Add(2)
	assert.InDelta(t, 1.5, a.Value(), 1e-9)
	a.Add(3)
	assert.InDelta(t, 2.5, a.Value(), 1e-9, "oldest value should be evicted")
	assert.Equal(t, 2, a.Len())

	a.Reset()
	assert.Zero(t, a.Value())
	assert.Zero(t, a.Len())
}

func TestEstimatorOffsetWithinLatency(t *testing.T) {
	e := NewEstimator()
	t0 := time.UnixMilli(1_000_000)

	e.Observe(t0, t0.Add(30*time.Millisecond), t0.Add(100*time.Millisecond))

	assert.Equal(t, 50*time.Millisecond, e.Delay())
	assert.Zero(t, e.Offset(), "a relay time inside the round trip is no offset")
}

func TestEstimatorOffsetOutsideLatency(t *testing.T) {
	e := NewEstimator()
	t0 := time.UnixMilli(1_000_000)
	now := t0.Add(100 * time.Millisecond)

	e.Observe(t0, t0.Add(50*time.Millisecond), now)
	e.Observe(t0, t0.Add(time.Second), now)

	// samples: 0 and 1s - 50ms
	assert.Equal(t, 475*time.Millisecond, e.Offset())

	e.Observe(t0, t0.Add(-time.Second), now)
	e.Observe(t0, t0.Add(-time.Second), now)
	e.Observe(t0, t0.Add(-time.Second), now)
	assert.Equal(t, -1050*time.Millisecond, e.Offset(), "offset keeps only the last three samples")
	assert.Equal(t, 50*time.Millisecond, e.Delay())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		info closeInfo
		want DisconnectReason
	}{
		{"server reason wins", closeInfo{serverReason: "lobbyFull", clean: true, timedOut: true}, ReasonLobbyFull},
		{"clean close", closeInfo{clean: true, timedOut: true, online: true}, ReasonConnectionClosed},
		{"no response", closeInfo{timedOut: true, online: true}, ReasonNoResponse},
		{"error after open", closeInfo{established: true, online: true}, ReasonConnectionError},
		{"error before open", closeInfo{online: true}, ReasonCouldNotConnect},
		{"offline", closeInfo{established: true}, ReasonOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.info))
		})
	}
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "The lobby is full", ReasonLobbyFull.String())
	assert.Equal(t, "mystery", DisconnectReason("mystery").String())
}
