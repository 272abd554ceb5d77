package game

import (
	"encoding/json"
	"time"
)

// MinTimePerTurn is the shortest turn budget that enables the turn timer.
const MinTimePerTurn = 3 * time.Second

// OptionalDuration is a duration that may be unset. On the wire it is a
// number of milliseconds; a missing value, null or anything below
// MinTimePerTurn decodes as unset.
type OptionalDuration struct {
	Duration time.Duration
	Valid    bool
}

// TimerDuration returns d as a set duration when it is long enough to
// drive a turn timer.
func TimerDuration(d time.Duration) OptionalDuration {
	if d < MinTimePerTurn {
		return OptionalDuration{}
	}
	return OptionalDuration{Duration: d, Valid: true}
}

// Millis returns the duration in milliseconds, or 0 when unset.
func (d OptionalDuration) Millis() int64 {
	if !d.Valid {
		return 0
	}
	return d.Duration.Milliseconds()
}

func (d OptionalDuration) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Millis())
}

func (d *OptionalDuration) UnmarshalJSON(data []byte) error {
	var ms *float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return err
	}
	if ms == nil {
		*d = OptionalDuration{}
		return nil
	}
	*d = TimerDuration(time.Duration(*ms * float64(time.Millisecond)))
	return nil
}

// Config is the user-facing game configuration, persisted between runs and
// exchanged with the relay when a game starts or restarts.
type Config struct {
	TimePerTurn OptionalDuration `json:"timePerTurn,omitzero"`
	TimeCap     OptionalDuration `json:"timeCap,omitzero"`
	AllowDraws  bool             `json:"allowDraws"`
}

// Timed reports whether turns are limited in time.
func (c Config) Timed() bool {
	return c.TimePerTurn.Valid && c.TimePerTurn.Duration >= MinTimePerTurn
}

// Cap is the upper bound of a single turn including banked time.
func (c Config) Cap() time.Duration {
	if !c.Timed() {
		return 0
	}
	if c.TimeCap.Valid {
		return max(c.TimePerTurn.Duration, c.TimeCap.Duration)
	}
	return c.TimePerTurn.Duration
}

// TurnDuration returns how long a turn may take when the player has extra
// time banked from earlier turns. The second result is false when turns
// are untimed.
func (c Config) TurnDuration(extra time.Duration) (time.Duration, bool) {
	if !c.Timed() {
		return 0, false
	}
	return min(extra+c.TimePerTurn.Duration, c.Cap()), true
}

// Rules builds the rules of a new game started by startingPlayer.
func (c Config) Rules(startingPlayer Player) Rules {
	return Rules{StartingPlayer: startingPlayer, AllowDraws: c.AllowDraws}
}
