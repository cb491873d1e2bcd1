package calendar

// ruleMatches reports whether a single rule matches the year: the
// interval/offset condition holds and no exclude rule also matches.
func ruleMatches(year int, rule LeapRule) bool {
	if rule.Interval <= 0 {
		return false
	}
	if mod(year-rule.Offset, rule.Interval) != 0 {
		return false
	}
	for _, ex := range rule.Exclude {
		if ruleMatches(year, ex) {
			return false
		}
	}
	return true
}

// IsLeapYear reports whether any top-level rule matches the year.
func IsLeapYear(year int, rules []LeapRule) bool {
	for _, rule := range rules {
		if ruleMatches(year, rule) {
			return true
		}
	}
	return false
}

// LeapDayTargetMonth returns the target month of the first matching
// top-level rule. The second result is false when no rule matches or the
// matching rule has no target, in which case the leap day is appended at
// the end of the year.
func LeapDayTargetMonth(year int, rules []LeapRule) (int, bool) {
	for _, rule := range rules {
		if ruleMatches(year, rule) {
			if rule.TargetMonth != nil {
				return *rule.TargetMonth, true
			}
			return 0, false
		}
	}
	return 0, false
}

// LeapDaysInYear counts leap days for the year, one per matching
// top-level rule.
func LeapDaysInYear(year int, rules []LeapRule) int {
	count := 0
	for _, rule := range rules {
		if ruleMatches(year, rule) {
			count++
		}
	}
	return count
}

// LeapYearsInRange counts leap years in [from, to] inclusive.
// Intentionally linear: rule trees compose in ways that make a closed
// form fragile, and ranges are small in practice.
func LeapYearsInRange(from, to int, rules []LeapRule) int {
	if to < from {
		from, to = to, from
	}
	count := 0
	for year := from; year <= to; year++ {
		if IsLeapYear(year, rules) {
			count++
		}
	}
	return count
}

// mod is the mathematical modulo, non-negative for any sign of a.
func mod(a, n int) int {
	return ((a % n) + n) % n
}
