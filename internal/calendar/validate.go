package calendar

import (
	"strconv"

	apperrors "github.com/louisbranch/almanac/internal/errors"
)

// ValidateDefinition checks a calendar definition once at load time.
// The driver itself never re-validates per call; it assumes these
// invariants hold.
func ValidateDefinition(def *Definition) error {
	if def == nil || len(def.Months) == 0 {
		return apperrors.New(apperrors.CodeCalendarNoMonths, "calendar must define at least one month")
	}
	for _, m := range def.Months {
		if m.Days < 1 {
			return apperrors.Newf(apperrors.CodeCalendarZeroLengthMonth, "month %q must have at least one day", m.Name).
				WithMetadata(map[string]string{"Month": m.Name})
		}
	}
	if len(def.Weekdays) == 0 {
		return apperrors.New(apperrors.CodeCalendarNoWeekdays, "calendar must define at least one weekday")
	}

	for _, rule := range def.Leap {
		if err := validateLeapRule(rule, len(def.Months)); err != nil {
			return err
		}
	}
	if err := validateEras(def.Eras); err != nil {
		return err
	}
	for _, season := range def.Seasons {
		if err := validateSeason(season, def.Months); err != nil {
			return err
		}
	}
	return nil
}

func validateLeapRule(rule LeapRule, monthCount int) error {
	if rule.Interval <= 0 {
		return apperrors.New(apperrors.CodeCalendarInvalidLeapRule, "leap rule interval must be positive")
	}
	if rule.TargetMonth != nil && (*rule.TargetMonth < 0 || *rule.TargetMonth >= monthCount) {
		return apperrors.Newf(apperrors.CodeCalendarInvalidLeapRule, "leap rule target month %d out of range", *rule.TargetMonth)
	}
	for _, ex := range rule.Exclude {
		if err := validateLeapRule(ex, monthCount); err != nil {
			return err
		}
	}
	return nil
}

// validateEras rejects empty ranges and pairwise overlaps. Correct era
// lookup requires non-overlapping, exhaustive eras; overlap is the half
// the engine can verify cheaply.
func validateEras(eras []Era) error {
	for _, era := range eras {
		if era.StartYear != nil && era.EndYear != nil && *era.EndYear <= *era.StartYear {
			return apperrors.Newf(apperrors.CodeCalendarInvalidEraRange, "era %q has an empty year range", era.Name).
				WithMetadata(map[string]string{"Era": era.Name})
		}
	}
	for i := 0; i < len(eras); i++ {
		for j := i + 1; j < len(eras); j++ {
			if year, overlap := erasOverlap(eras[i], eras[j]); overlap {
				return apperrors.Newf(apperrors.CodeCalendarEraOverlap, "eras %q and %q overlap at year %d", eras[i].Name, eras[j].Name, year).
					WithMetadata(map[string]string{
						"First":  eras[i].Name,
						"Second": eras[j].Name,
						"Year":   strconv.Itoa(year),
					})
			}
		}
	}
	return nil
}

// erasOverlap reports whether two half-open era ranges intersect and, if
// so, one year inside the intersection.
func erasOverlap(a, b Era) (int, bool) {
	// Unbounded sides intersect unless the other era ends first.
	aStartsBeforeBEnds := b.EndYear == nil || a.StartYear == nil || *a.StartYear < *b.EndYear
	bStartsBeforeAEnds := a.EndYear == nil || b.StartYear == nil || *b.StartYear < *a.EndYear
	if !aStartsBeforeBEnds || !bStartsBeforeAEnds {
		return 0, false
	}
	switch {
	case a.StartYear != nil && b.StartYear != nil:
		if *a.StartYear > *b.StartYear {
			return *a.StartYear, true
		}
		return *b.StartYear, true
	case a.StartYear != nil:
		return *a.StartYear, true
	case b.StartYear != nil:
		return *b.StartYear, true
	default:
		// Both unbounded below; any year in the earlier end works.
		if a.EndYear != nil {
			return *a.EndYear - 1, true
		}
		if b.EndYear != nil {
			return *b.EndYear - 1, true
		}
		return 0, true
	}
}

func validateSeason(season Season, months []Month) error {
	invalid := season.StartMonth < 0 || season.StartMonth >= len(months) ||
		season.StartDay < 1 ||
		season.Sunrise < 0 || season.Sunrise > minutesPerDay-1 ||
		season.Sunset < 0 || season.Sunset > minutesPerDay-1
	if !invalid && season.StartDay > months[season.StartMonth].Days {
		invalid = true
	}
	if invalid {
		return apperrors.Newf(apperrors.CodeCalendarInvalidSeason, "season %q has an invalid start date or solar times", season.Name).
			WithMetadata(map[string]string{"Season": season.Name})
	}
	return nil
}
