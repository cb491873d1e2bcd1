// Package calendar implements date arithmetic over custom tabletop calendars:
// arbitrary month layouts, recursive leap-year rules, intercalary festival
// days that suspend the weekday cycle, multi-era year numbering and
// season-driven solar times.
package calendar

// Month is one entry in a calendar's ordered month table.
type Month struct {
	// Name is the display name of the month.
	Name string `yaml:"name"`
	// Days is the base number of days, before leap adjustments.
	Days int `yaml:"days"`
	// Intercalary marks festival months whose days sit outside the
	// weekday cycle.
	Intercalary bool `yaml:"intercalary,omitempty"`
}

// LeapRule describes one leap-year condition. A year matches when
// (year - Offset) % Interval == 0 and none of the Exclude rules match.
// Exclude rules nest recursively, which is how Gregorian-style
// "every 4, except every 100, except every 400" tables are expressed.
type LeapRule struct {
	Interval int `yaml:"interval"`
	Offset   int `yaml:"offset,omitempty"`
	// TargetMonth is the month index receiving the leap day. When nil the
	// leap day is appended at the end of the year.
	TargetMonth *int       `yaml:"targetMonth,omitempty"`
	Exclude     []LeapRule `yaml:"exclude,omitempty"`
}

// Era is a half-open year range [StartYear, EndYear) with its own
// abbreviation and counting direction.
type Era struct {
	Name   string `yaml:"name"`
	Abbrev string `yaml:"abbrev"`
	// StartYear is the first year of the era. Nil means unbounded below.
	StartYear *int `yaml:"startYear,omitempty"`
	// EndYear is the first year after the era. Nil means current, unbounded.
	EndYear *int `yaml:"endYear,omitempty"`
	// Direction is 1 for forward-counting eras and -1 for backward ones.
	Direction int `yaml:"direction"`
}

// Contains reports whether the era covers the given year.
func (e Era) Contains(year int) bool {
	if e.StartYear != nil && year < *e.StartYear {
		return false
	}
	if e.EndYear != nil && year >= *e.EndYear {
		return false
	}
	return true
}

// Season marks a period of the year with its solar times.
// Sunrise and Sunset are minutes from midnight (0-1439).
type Season struct {
	Name       string `yaml:"name"`
	StartMonth int    `yaml:"startMonth"`
	StartDay   int    `yaml:"startDay"`
	Sunrise    int    `yaml:"sunrise"`
	Sunset     int    `yaml:"sunset"`
	// Region tags latitude-specific variants. Empty means the
	// default/temperate fallback.
	Region string `yaml:"region,omitempty"`
}

// Definition is an immutable calendar description. It is loaded once,
// validated once, and shared by reference.
type Definition struct {
	ID       string     `yaml:"id"`
	Name     string     `yaml:"name"`
	Months   []Month    `yaml:"months"`
	Weekdays []string   `yaml:"weekdays"`
	Leap     []LeapRule `yaml:"leapRules,omitempty"`
	Eras     []Era      `yaml:"eras,omitempty"`
	Seasons  []Season   `yaml:"seasons,omitempty"`
	// StartingYear is the year containing absolute day zero.
	StartingYear int `yaml:"startingYear,omitempty"`
	// YearSuffix is the legacy display suffix used when no eras are defined.
	YearSuffix string `yaml:"yearSuffix,omitempty"`
}

// HasIntercalaryMonths reports whether any month is intercalary.
func (d *Definition) HasIntercalaryMonths() bool {
	for _, m := range d.Months {
		if m.Intercalary {
			return true
		}
	}
	return false
}
