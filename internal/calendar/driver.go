package calendar

import (
	apperrors "github.com/louisbranch/almanac/internal/errors"
)

// Date is a pure computed projection of an absolute day. It is never
// persisted; callers recompute it on demand.
type Date struct {
	AbsoluteDay int
	Year        int
	// MonthIndex is the zero-based index into the month table.
	MonthIndex int
	Month      string
	// Day is the one-based day of month.
	Day int
	// DayOfYear is one-based.
	DayOfYear int
	// WeekdayIndex is -1 for intercalary days, which sit outside the
	// weekday cycle.
	WeekdayIndex int
	Weekday      string
	Intercalary  bool
}

// Driver performs pure date arithmetic over one calendar definition.
// It holds no mutable state; the caller owns the Clock.
type Driver struct {
	def       *Definition
	baseYear  int
	baseTotal int
}

// NewDriver validates the definition and builds a driver for it.
func NewDriver(def *Definition) (*Driver, error) {
	if err := ValidateDefinition(def); err != nil {
		return nil, err
	}
	total := 0
	for _, m := range def.Months {
		total += m.Days
	}
	return &Driver{def: def, baseYear: def.StartingYear, baseTotal: total}, nil
}

// Definition returns the calendar definition backing the driver.
func (d *Driver) Definition() *Definition {
	return d.def
}

// monthLength returns the length of a month in a specific year, including
// leap days targeted at it. A matching rule with no target month appends
// its leap day to the final month of the year.
func (d *Driver) monthLength(year, monthIndex int) int {
	length := d.def.Months[monthIndex].Days
	for _, rule := range d.def.Leap {
		if !ruleMatches(year, rule) {
			continue
		}
		target := len(d.def.Months) - 1
		if rule.TargetMonth != nil {
			target = *rule.TargetMonth
		}
		if target == monthIndex {
			length++
		}
	}
	return length
}

// TotalDaysInYear returns the year length including leap days.
func (d *Driver) TotalDaysInYear(year int) int {
	return d.baseTotal + LeapDaysInYear(year, d.def.Leap)
}

// WeekCountingDaysInYear returns the number of days in the year that
// participate in the weekday cycle, excluding all intercalary days.
func (d *Driver) WeekCountingDaysInYear(year int) int {
	total := 0
	for i, m := range d.def.Months {
		if m.Intercalary {
			continue
		}
		total += d.monthLength(year, i)
	}
	return total
}

// IsLeapYear reports whether the year matches any of the calendar's
// leap rules.
func (d *Driver) IsLeapYear(year int) bool {
	return IsLeapYear(year, d.def.Leap)
}

// decompose splits an absolute day into year, month index and one-based
// day of month by walking year lengths from the starting year.
func (d *Driver) decompose(absoluteDay int) (year, monthIndex, dayOfMonth, dayOfYear int) {
	year = d.baseYear
	rem := absoluteDay
	for rem < 0 {
		year--
		rem += d.TotalDaysInYear(year)
	}
	for rem >= d.TotalDaysInYear(year) {
		rem -= d.TotalDaysInYear(year)
		year++
	}
	dayOfYear = rem + 1
	for i := range d.def.Months {
		length := d.monthLength(year, i)
		if rem < length {
			return year, i, rem + 1, dayOfYear
		}
		rem -= length
	}
	// Unreachable: rem < TotalDaysInYear(year) by construction.
	last := len(d.def.Months) - 1
	return year, last, d.monthLength(year, last), dayOfYear
}

// Date converts an absolute day into its calendar projection.
func (d *Driver) Date(absoluteDay int) Date {
	year, monthIndex, dayOfMonth, dayOfYear := d.decompose(absoluteDay)
	month := d.def.Months[monthIndex]

	date := Date{
		AbsoluteDay:  absoluteDay,
		Year:         year,
		MonthIndex:   monthIndex,
		Month:        month.Name,
		Day:          dayOfMonth,
		DayOfYear:    dayOfYear,
		WeekdayIndex: -1,
		Intercalary:  month.Intercalary,
	}
	if !month.Intercalary {
		index := mod(d.weekCountingDaysBefore(absoluteDay), len(d.def.Weekdays))
		date.WeekdayIndex = index
		date.Weekday = d.def.Weekdays[index]
	}
	return date
}

// AbsoluteDay is the exact inverse of Date for valid dates.
// It returns an error when the month index or day of month falls outside
// the definition for that year.
func (d *Driver) AbsoluteDay(year, monthIndex, dayOfMonth int) (int, error) {
	if monthIndex < 0 || monthIndex >= len(d.def.Months) {
		return 0, apperrors.New(apperrors.CodeCalendarInvalidDate, "month index out of range")
	}
	if dayOfMonth < 1 || dayOfMonth > d.monthLength(year, monthIndex) {
		return 0, apperrors.New(apperrors.CodeCalendarInvalidDate, "day of month out of range")
	}

	abs := 0
	if year >= d.baseYear {
		for y := d.baseYear; y < year; y++ {
			abs += d.TotalDaysInYear(y)
		}
	} else {
		for y := year; y < d.baseYear; y++ {
			abs -= d.TotalDaysInYear(y)
		}
	}
	for m := 0; m < monthIndex; m++ {
		abs += d.monthLength(year, m)
	}
	return abs + dayOfMonth - 1, nil
}

// weekCountingDaysBefore counts non-intercalary days in [0, absoluteDay),
// signed, so weekday indices stay continuous across year boundaries and
// skip nothing over intercalary stretches.
func (d *Driver) weekCountingDaysBefore(absoluteDay int) int {
	year, monthIndex, dayOfMonth, _ := d.decompose(absoluteDay)

	count := 0
	if year >= d.baseYear {
		for y := d.baseYear; y < year; y++ {
			count += d.WeekCountingDaysInYear(y)
		}
	} else {
		for y := year; y < d.baseYear; y++ {
			count -= d.WeekCountingDaysInYear(y)
		}
	}
	for m := 0; m < monthIndex; m++ {
		if !d.def.Months[m].Intercalary {
			count += d.monthLength(year, m)
		}
	}
	if !d.def.Months[monthIndex].Intercalary {
		count += dayOfMonth - 1
	}
	return count
}

// IsIntercalaryDay reports whether the absolute day falls inside an
// intercalary month.
func (d *Driver) IsIntercalaryDay(absoluteDay int) bool {
	_, monthIndex, _, _ := d.decompose(absoluteDay)
	return d.def.Months[monthIndex].Intercalary
}

// HasIntercalaryMonths reports whether the calendar has festival months.
func (d *Driver) HasIntercalaryMonths() bool {
	return d.def.HasIntercalaryMonths()
}

// Era returns the first era covering the year, in declaration order.
// The second result is false when the calendar defines no eras; callers
// fall back to the legacy YearSuffix.
func (d *Driver) Era(year int) (Era, bool) {
	for _, era := range d.def.Eras {
		if era.Contains(year) {
			return era, true
		}
	}
	return Era{}, false
}

// EraYear returns the display year number within an era: forward eras
// count up from their start year, backward eras count down toward their
// end year.
func EraYear(year int, era Era) int {
	if era.Direction < 0 {
		end := year + 1
		if era.EndYear != nil {
			end = *era.EndYear
		}
		return end - year
	}
	start := year
	if era.StartYear != nil {
		start = *era.StartYear
	}
	return year - start + 1
}

// DaysBetween returns the signed day count from one absolute day to
// another.
func DaysBetween(from, to int) int {
	return to - from
}
