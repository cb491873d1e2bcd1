package calendar

import (
	"fmt"
	"strings"
)

// FormatDate renders a date for display: "Sunday, 12 Flamerule 1492 DR".
// Intercalary days omit the weekday. Years outside any era fall back to
// the calendar's legacy YearSuffix.
func (d *Driver) FormatDate(date Date) string {
	var b strings.Builder
	if !date.Intercalary && date.Weekday != "" {
		b.WriteString(date.Weekday)
		b.WriteString(", ")
	}
	fmt.Fprintf(&b, "%d %s %s", date.Day, date.Month, d.FormatYear(date.Year))
	return b.String()
}

// FormatYear renders a year with its era abbreviation, or the legacy
// suffix when the calendar defines no eras.
func (d *Driver) FormatYear(year int) string {
	if era, ok := d.Era(year); ok {
		return fmt.Sprintf("%d %s", EraYear(year, era), era.Abbrev)
	}
	if d.def.YearSuffix != "" {
		return fmt.Sprintf("%d %s", year, d.def.YearSuffix)
	}
	return fmt.Sprintf("%d", year)
}
