package calendar

import (
	"math"

	apperrors "github.com/louisbranch/almanac/internal/errors"
)

// ErrNegativeAdvance indicates an attempt to rewind the clock, which is a
// caller bug rather than recoverable input.
var ErrNegativeAdvance = apperrors.New(apperrors.CodeClockNegativeAdvance, "time can only be advanced forward")

// Clock is the caller-owned "now": CurrentDay anchors the macro position
// and TimeOfDay (minutes, 0-1439) the micro offset. It must be treated as
// a single-writer resource; concurrent advancement desyncs persisted
// chain state from what the seed would replay.
type Clock struct {
	CurrentDay int
	TimeOfDay  int
}

// SetTimeOfDay sets the minute of day, flooring fractional input and
// clamping to [0, 1439].
func (c *Clock) SetTimeOfDay(minutes float64) {
	floored := int(math.Floor(minutes))
	if floored < 0 {
		floored = 0
	}
	if floored > minutesPerDay-1 {
		floored = minutesPerDay - 1
	}
	c.TimeOfDay = floored
}

// AdvanceTime moves the clock forward by the given minutes and returns
// how many day boundaries were crossed. Negative input fails fast.
func (c *Clock) AdvanceTime(minutes int) (int, error) {
	if minutes < 0 {
		return 0, ErrNegativeAdvance
	}
	total := c.TimeOfDay + minutes
	daysRolled := total / minutesPerDay
	c.CurrentDay += daysRolled
	c.TimeOfDay = total % minutesPerDay
	return daysRolled, nil
}
