// Package duration resolves dice/unit duration expressions such as
// "2d6 days + 1 week" into concrete minute counts, given a seeded
// generator and calendar-derived unit sizes.
package duration

import (
	"strings"

	"github.com/louisbranch/almanac/internal/calendar"
	"github.com/louisbranch/almanac/internal/dice"
	apperrors "github.com/louisbranch/almanac/internal/errors"
)

// Sentinel parse errors.
var (
	ErrEmpty       = apperrors.New(apperrors.CodeDurationEmpty, "duration expression cannot be empty")
	ErrInvalidExpr = apperrors.New(apperrors.CodeDurationInvalidExpr, "duration expression is not valid")
	ErrUnknownUnit = apperrors.New(apperrors.CodeDurationUnknownUnit, "unknown duration unit")
)

// Units holds the calendar-derived sizes of duration units in minutes.
type Units struct {
	Minute int
	Hour   int
	Day    int
	Week   int
	Month  int
	Year   int
}

// UnitsFromCalendar derives unit sizes from a calendar driver for a given
// year: a week is one full weekday cycle, a month the average month
// length, a year the year's total day count.
func UnitsFromCalendar(driver *calendar.Driver, year int) Units {
	def := driver.Definition()
	daysInYear := driver.TotalDaysInYear(year)
	avgMonth := daysInYear / len(def.Months)
	if avgMonth < 1 {
		avgMonth = 1
	}
	const day = 24 * 60
	return Units{
		Minute: 1,
		Hour:   60,
		Day:    day,
		Week:   len(def.Weekdays) * day,
		Month:  avgMonth * day,
		Year:   daysInYear * day,
	}
}

// DefaultUnits are the sizes for a 7-day-week, 30-day-month calendar,
// used when no driver is in scope (tests, standalone parsing).
func DefaultUnits() Units {
	const day = 24 * 60
	return Units{Minute: 1, Hour: 60, Day: day, Week: 7 * day, Month: 30 * day, Year: 365 * day}
}

// minutesFor maps a unit word to its minute size.
func (u Units) minutesFor(unit string) (int, bool) {
	switch strings.TrimSuffix(unit, "s") {
	case "minute", "min":
		return u.Minute, true
	case "hour", "hr":
		return u.Hour, true
	case "day":
		return u.Day, true
	case "week":
		return u.Week, true
	case "month":
		return u.Month, true
	case "year":
		return u.Year, true
	default:
		return 0, false
	}
}

// Parse resolves an expression into minutes. Terms are summed across
// standalone "+" tokens; each term is a dice expression or integer with
// an optional unit word, defaulting to days. A "+" inside dice notation
// ("1d4+2 hours") is the roll modifier, not a term separator. Results
// floor at one minute so durations never collapse to zero.
func Parse(expr string, units Units, rng *dice.RNG) (int, error) {
	fields := strings.Fields(expr)
	if len(fields) == 0 {
		return 0, ErrEmpty
	}

	total := 0
	var term []string
	flush := func() error {
		minutes, err := termMinutes(expr, term, units, rng)
		if err != nil {
			return err
		}
		total += minutes
		term = term[:0]
		return nil
	}
	for _, field := range fields {
		if field == "+" {
			if err := flush(); err != nil {
				return 0, err
			}
			continue
		}
		term = append(term, field)
	}
	if err := flush(); err != nil {
		return 0, err
	}

	if total < 1 {
		total = 1
	}
	return total, nil
}

// termMinutes resolves one "<dice-or-int> [unit]" term.
func termMinutes(expr string, fields []string, units Units, rng *dice.RNG) (int, error) {
	switch len(fields) {
	case 1, 2:
	default:
		return 0, invalidExpr(expr)
	}

	spec, err := dice.ParseNotation(fields[0])
	if err != nil {
		return 0, invalidExpr(expr)
	}

	size := units.Day
	if len(fields) == 2 {
		unitSize, ok := units.minutesFor(strings.ToLower(fields[1]))
		if !ok {
			return 0, ErrUnknownUnit.WithMetadata(map[string]string{"Unit": fields[1]})
		}
		size = unitSize
	}
	return spec.Roll(rng) * size, nil
}

// ParseDays resolves an expression into whole days, flooring at one day.
// Chain-event state durations are day-granularity and use this form.
func ParseDays(expr string, units Units, rng *dice.RNG) (int, error) {
	minutes, err := Parse(expr, units, rng)
	if err != nil {
		return 0, err
	}
	days := minutes / units.Day
	if days < 1 {
		days = 1
	}
	return days, nil
}

func invalidExpr(expr string) error {
	return ErrInvalidExpr.WithMetadata(map[string]string{"Expression": expr})
}
