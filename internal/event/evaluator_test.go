package event

import (
	"errors"
	"testing"

	"github.com/louisbranch/almanac/internal/calendar"
)

// plainCalendar is a 12x30-day calendar with a 7-day week, enough for
// schedule math without leap or intercalary complications.
func plainCalendar(t *testing.T) *calendar.Driver {
	t.Helper()
	months := make([]calendar.Month, 12)
	names := []string{"Hammer", "Alturiak", "Ches", "Tarsakh", "Mirtul", "Kythorn", "Flamerule", "Eleasis", "Eleint", "Marpenoth", "Uktar", "Nightal"}
	for i := range months {
		months[i] = calendar.Month{Name: names[i], Days: 30}
	}
	driver, err := calendar.NewDriver(&calendar.Definition{
		ID:       "plain",
		Months:   months,
		Weekdays: []string{"Sun", "Moon", "Tyr", "Wode", "Thor", "Frey", "Satur"},
	})
	if err != nil {
		t.Fatalf("new driver: %v", err)
	}
	return driver
}

func mustEvaluator(t *testing.T, driver *calendar.Driver, defs []Definition) *Evaluator {
	t.Helper()
	ev, err := NewEvaluator(driver, defs)
	if err != nil {
		t.Fatalf("new evaluator: %v", err)
	}
	return ev
}

func evaluate(t *testing.T, ev *Evaluator, q Query, chains map[string]ChainVector, overrides []Override) Result {
	t.Helper()
	result, err := ev.Evaluate(q, chains, overrides)
	if err != nil {
		t.Fatalf("evaluate day %d: %v", q.Day, err)
	}
	return result
}

func activeIDs(result Result) []string {
	ids := make([]string, 0, len(result.Active))
	for _, ev := range result.Active {
		ids = append(ids, ev.EventID)
	}
	return ids
}

func hasActive(result Result, id string) bool {
	for _, ev := range result.Active {
		if ev.EventID == id {
			return true
		}
	}
	return false
}

func TestIntervalSchedule(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:       "market",
		Kind:     KindInterval,
		Interval: &IntervalSpec{Interval: 7},
	}})

	for _, day := range []int{0, 7, 14, 700} {
		result := evaluate(t, ev, Query{Day: day}, nil, nil)
		if !hasActive(result, "market") {
			t.Fatalf("day %d: market should be active", day)
		}
	}
	for _, day := range []int{3, 6, 8} {
		result := evaluate(t, ev, Query{Day: day}, nil, nil)
		if hasActive(result, "market") {
			t.Fatalf("day %d: market should be inactive", day)
		}
	}
}

func TestIntervalDurationWindow(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:       "fair",
		Kind:     KindInterval,
		Interval: &IntervalSpec{Interval: 10, Duration: 3},
	}})

	result := evaluate(t, ev, Query{Day: 12}, nil, nil)
	if !hasActive(result, "fair") {
		t.Fatalf("day 12 falls inside the 10..12 window")
	}
	active := result.Active[0]
	if active.StartDay != 10 || active.EndDay != 12 || active.RemainingDays != 0 {
		t.Fatalf("got window %d..%d remaining %d", active.StartDay, active.EndDay, active.RemainingDays)
	}

	if result := evaluate(t, ev, Query{Day: 13}, nil, nil); hasActive(result, "fair") {
		t.Fatalf("day 13 falls outside the window")
	}
}

func TestIntervalMinuteGranularity(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:       "bell",
		Kind:     KindInterval,
		Interval: &IntervalSpec{Interval: 60, UseMinutes: true, Duration: 5},
	}})

	if result := evaluate(t, ev, Query{Day: 4, MinuteOfDay: 120}, nil, nil); !hasActive(result, "bell") {
		t.Fatalf("minute 120 starts a cycle")
	}
	if result := evaluate(t, ev, Query{Day: 4, MinuteOfDay: 124}, nil, nil); !hasActive(result, "bell") {
		t.Fatalf("minute 124 is inside the 5-minute window")
	}
	if result := evaluate(t, ev, Query{Day: 4, MinuteOfDay: 130}, nil, nil); hasActive(result, "bell") {
		t.Fatalf("minute 130 is outside the window")
	}
}

func TestFixedAnnualRecurrence(t *testing.T) {
	driver := plainCalendar(t)
	ev := mustEvaluator(t, driver, []Definition{{
		ID:    "midsummer-feast",
		Kind:  KindFixed,
		Fixed: &FixedSpec{MonthIndex: 6, Day: 1, DurationDays: 3},
	}})

	start, err := driver.AbsoluteDay(2, 6, 1)
	if err != nil {
		t.Fatalf("absolute day: %v", err)
	}
	for offset := 0; offset < 3; offset++ {
		if result := evaluate(t, ev, Query{Day: start + offset}, nil, nil); !hasActive(result, "midsummer-feast") {
			t.Fatalf("offset %d: feast should be active", offset)
		}
	}
	if result := evaluate(t, ev, Query{Day: start + 3}, nil, nil); hasActive(result, "midsummer-feast") {
		t.Fatalf("feast should end after 3 days")
	}
	// Recurs the following year.
	nextYear, err := driver.AbsoluteDay(3, 6, 1)
	if err != nil {
		t.Fatalf("absolute day: %v", err)
	}
	if result := evaluate(t, ev, Query{Day: nextYear}, nil, nil); !hasActive(result, "midsummer-feast") {
		t.Fatalf("annual event should recur next year")
	}
}

func TestFixedYearPinned(t *testing.T) {
	driver := plainCalendar(t)
	year := 5
	ev := mustEvaluator(t, driver, []Definition{{
		ID:    "coronation",
		Kind:  KindFixed,
		Fixed: &FixedSpec{MonthIndex: 0, Day: 10, Year: &year},
	}})

	pinned, err := driver.AbsoluteDay(5, 0, 10)
	if err != nil {
		t.Fatalf("absolute day: %v", err)
	}
	if result := evaluate(t, ev, Query{Day: pinned}, nil, nil); !hasActive(result, "coronation") {
		t.Fatalf("pinned year should activate")
	}
	otherYear, err := driver.AbsoluteDay(6, 0, 10)
	if err != nil {
		t.Fatalf("absolute day: %v", err)
	}
	if result := evaluate(t, ev, Query{Day: otherYear}, nil, nil); hasActive(result, "coronation") {
		t.Fatalf("pinned event must not recur")
	}
}

func TestContextFilters(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:       "harbor-market",
		Kind:     KindInterval,
		Interval: &IntervalSpec{Interval: 1},
		Filters:  Filters{Locations: []string{"waterdeep"}, Tags: []string{"trade"}},
	}})

	match := Context{Location: "waterdeep", Tags: []string{"trade", "coastal"}}
	if result := evaluate(t, ev, Query{Day: 0, Context: match}, nil, nil); !hasActive(result, "harbor-market") {
		t.Fatalf("matching context should activate")
	}

	for name, ctx := range map[string]Context{
		"wrong location": {Location: "neverwinter", Tags: []string{"trade"}},
		"missing tag":    {Location: "waterdeep"},
		"empty context":  {},
	} {
		if result := evaluate(t, ev, Query{Day: 0, Context: ctx}, nil, nil); hasActive(result, "harbor-market") {
			t.Fatalf("%s should not activate", name)
		}
	}
}

func TestChainEvaluationPersistsVectors(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:    "weather",
		Kind:  KindChain,
		Chain: weatherChain(42),
	}})

	first := evaluate(t, ev, Query{Day: 50}, nil, nil)
	vec, ok := first.ChainVectors["weather"]
	if !ok {
		t.Fatalf("chain vector missing from result")
	}
	if 50 < vec.EnteredDay || 50 > vec.EndDay {
		t.Fatalf("vector %+v does not cover day 50", vec)
	}

	// Re-querying from the persisted checkpoint matches seed replay.
	second := evaluate(t, ev, Query{Day: 200}, first.ChainVectors, nil)
	replayed := evaluate(t, ev, Query{Day: 200}, nil, nil)
	if second.ChainVectors["weather"] != replayed.ChainVectors["weather"] {
		t.Fatalf("checkpoint path diverged from replay: %+v vs %+v",
			second.ChainVectors["weather"], replayed.ChainVectors["weather"])
	}
}

func TestChainBeforeCheckpointSurfaces(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:    "weather",
		Kind:  KindChain,
		Chain: weatherChain(42),
	}})

	result := evaluate(t, ev, Query{Day: 300}, nil, nil)
	vec := result.ChainVectors["weather"]

	_, err := ev.Evaluate(Query{Day: vec.EnteredDay - 1}, result.ChainVectors, nil)
	if !errors.Is(err, ErrBeforeCheckpoint) {
		t.Fatalf("expected ErrBeforeCheckpoint, got %v", err)
	}
}

func TestConditionalTiers(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{
		{
			ID:       "storm-season",
			Kind:     KindInterval,
			Interval: &IntervalSpec{Interval: 2},
		},
		{
			ID:          "flooded-roads",
			Kind:        KindConditional,
			Conditional: &ConditionalSpec{Condition: "event(storm-season) active", Tier: 1},
		},
		{
			ID:          "caravan-delays",
			Kind:        KindConditional,
			Conditional: &ConditionalSpec{Condition: "event(flooded-roads) active", Tier: 2},
		},
	})

	// Day 0: storm-season active -> tier 1 fires -> tier 2 sees it.
	result := evaluate(t, ev, Query{Day: 0}, nil, nil)
	for _, id := range []string{"storm-season", "flooded-roads", "caravan-delays"} {
		if !hasActive(result, id) {
			t.Fatalf("day 0: %s should be active, got %v", id, activeIDs(result))
		}
	}

	// Day 1: no storm, nothing cascades.
	result = evaluate(t, ev, Query{Day: 1}, nil, nil)
	if hasActive(result, "flooded-roads") || hasActive(result, "caravan-delays") {
		t.Fatalf("day 1: conditionals should be inactive, got %v", activeIDs(result))
	}
}

func TestConditionalUnknownEventIsFalse(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:          "haunting",
		Kind:        KindConditional,
		Conditional: &ConditionalSpec{Condition: "event(no-such-event) is angry"},
	}})

	result := evaluate(t, ev, Query{Day: 0}, nil, nil)
	if len(result.Active) != 0 {
		t.Fatalf("unknown reference must evaluate false, got %v", activeIDs(result))
	}
}

func TestConditionalBackscanAnchorsWindow(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{
		{
			ID:       "festival",
			Kind:     KindInterval,
			Interval: &IntervalSpec{Interval: 100, Duration: 10},
		},
		{
			ID:          "crowded-inns",
			Kind:        KindConditional,
			Conditional: &ConditionalSpec{Condition: "event(festival) active", DurationDays: 5},
		},
	})

	// The festival runs days 0..9. On day 3 the condition has held since
	// day 0, so the 5-day window anchors there: 0..4.
	result := evaluate(t, ev, Query{Day: 3}, nil, nil)
	if !hasActive(result, "crowded-inns") {
		t.Fatalf("conditional should be active on day 3")
	}
	for _, active := range result.Active {
		if active.EventID != "crowded-inns" {
			continue
		}
		if active.StartDay != 0 || active.EndDay != 4 {
			t.Fatalf("got window %d..%d, want 0..4", active.StartDay, active.EndDay)
		}
	}
}

func TestConditionalDurationOutlivesCondition(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{
		{
			ID:       "flash-flood",
			Kind:     KindInterval,
			Interval: &IntervalSpec{Interval: 100},
		},
		{
			ID:          "washed-out-bridge",
			Kind:        KindConditional,
			Conditional: &ConditionalSpec{Condition: "event(flash-flood) active", DurationDays: 3},
		},
	})

	// The flood hits on day 0 only; the bridge stays out for the full
	// 3-day window even though the condition is false on days 1 and 2.
	for day := 0; day < 3; day++ {
		result := evaluate(t, ev, Query{Day: day}, nil, nil)
		if !hasActive(result, "washed-out-bridge") {
			t.Fatalf("day %d: window 0..2 should still be active", day)
		}
		for _, active := range result.Active {
			if active.EventID != "washed-out-bridge" {
				continue
			}
			if active.StartDay != 0 || active.EndDay != 2 {
				t.Fatalf("day %d: got window %d..%d, want 0..2", day, active.StartDay, active.EndDay)
			}
		}
	}
	if result := evaluate(t, ev, Query{Day: 3}, nil, nil); hasActive(result, "washed-out-bridge") {
		t.Fatalf("window ends after 3 days")
	}
}

func TestConditionalWindowDoesNotSlide(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{
		{
			ID:       "long-rain",
			Kind:     KindInterval,
			Interval: &IntervalSpec{Interval: 100, Duration: 10},
		},
		{
			ID:          "muddy-roads",
			Kind:        KindConditional,
			Conditional: &ConditionalSpec{Condition: "event(long-rain) active", DurationDays: 4},
		},
	})

	// Continuous truth from day 0 anchors a single window, 0..3. Days
	// 4..9 sit inside the rain but past the window.
	if result := evaluate(t, ev, Query{Day: 3}, nil, nil); !hasActive(result, "muddy-roads") {
		t.Fatalf("day 3 closes the anchored window")
	}
	for _, day := range []int{4, 6, 9} {
		if result := evaluate(t, ev, Query{Day: day}, nil, nil); hasActive(result, "muddy-roads") {
			t.Fatalf("day %d: window must not re-anchor under continuous truth", day)
		}
	}
}

func TestConditionalSeesMixedCaseIDs(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{
		{
			ID:       "StormSeason",
			Kind:     KindInterval,
			Interval: &IntervalSpec{Interval: 1},
		},
		{
			ID:          "harbor-closed",
			Kind:        KindConditional,
			Conditional: &ConditionalSpec{Condition: "event(StormSeason) active"},
		},
	})

	result := evaluate(t, ev, Query{Day: 0}, nil, nil)
	if !hasActive(result, "harbor-closed") {
		t.Fatalf("condition should see the active StormSeason event, got %v", activeIDs(result))
	}
}

func TestConditionalBackscanUsesQueryMinute(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{
		{
			ID:       "bell",
			Kind:     KindInterval,
			Interval: &IntervalSpec{Interval: 60, UseMinutes: true, Duration: 5, Offset: -30},
		},
		{
			ID:          "vigil",
			Kind:        KindConditional,
			Conditional: &ConditionalSpec{Condition: "event(bell) active", DurationDays: 2},
		},
	})

	// The bell rings minutes 30..34 of every hour, every day. At minute
	// 30 on day 1 the condition has held since day 0 at that minute, so
	// the window anchors on day 0.
	result := evaluate(t, ev, Query{Day: 1, MinuteOfDay: 30}, nil, nil)
	if !hasActive(result, "vigil") {
		t.Fatalf("vigil should be active at minute 30")
	}
	for _, active := range result.Active {
		if active.EventID == "vigil" && active.StartDay != 0 {
			t.Fatalf("backscan anchored on day %d, want 0", active.StartDay)
		}
	}
}

func TestOverrideDisable(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:       "market",
		Kind:     KindInterval,
		Interval: &IntervalSpec{Interval: 1},
	}})

	overrides := []Override{{EventID: "market", Type: OverrideDisable, AppliedDay: 5}}

	if result := evaluate(t, ev, Query{Day: 4}, nil, overrides); !hasActive(result, "market") {
		t.Fatalf("override not yet applied on day 4")
	}
	if result := evaluate(t, ev, Query{Day: 5}, nil, overrides); hasActive(result, "market") {
		t.Fatalf("disabled event must not activate")
	}
}

func TestOverrideExpiry(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:       "market",
		Kind:     KindInterval,
		Interval: &IntervalSpec{Interval: 1},
	}})

	expires := 8
	overrides := []Override{{EventID: "market", Type: OverrideDisable, AppliedDay: 5, ExpiresDay: &expires}}

	if result := evaluate(t, ev, Query{Day: 7}, nil, overrides); hasActive(result, "market") {
		t.Fatalf("override in force on day 7")
	}
	if result := evaluate(t, ev, Query{Day: 8}, nil, overrides); !hasActive(result, "market") {
		t.Fatalf("override expired on day 8, natural evaluation resumes")
	}
}

func TestOverrideForceStateLeavesVectorUntouched(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:    "weather",
		Kind:  KindChain,
		Chain: weatherChain(42),
	}})

	natural := evaluate(t, ev, Query{Day: 50}, nil, nil)

	overrides := []Override{{
		EventID:            "weather",
		Type:               OverrideForceState,
		ForcedState:        "storm",
		ForcedDurationDays: 10,
		AppliedDay:         45,
	}}
	forced := evaluate(t, ev, Query{Day: 50}, nil, overrides)

	if !hasActive(forced, "weather") {
		t.Fatalf("forced event should be active")
	}
	active := forced.Active[0]
	if active.State != "storm" || active.Source != SourceOverride {
		t.Fatalf("got state %q source %q, want forced storm/override", active.State, active.Source)
	}
	if active.StartDay != 45 || active.EndDay != 54 {
		t.Fatalf("got forced window %d..%d, want 45..54", active.StartDay, active.EndDay)
	}
	if got, ok := active.Effects["shop_closed"]; !ok || got != true {
		t.Fatalf("forced state effects missing: %v", active.Effects)
	}

	// The persisted vector reflects natural progression, not the override.
	if forced.ChainVectors["weather"] != natural.ChainVectors["weather"] {
		t.Fatalf("override mutated the chain vector: %+v vs %+v",
			forced.ChainVectors["weather"], natural.ChainVectors["weather"])
	}
}

func TestOverrideTriggerNow(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:    "eclipse",
		Kind:  KindFixed,
		Fixed: &FixedSpec{MonthIndex: 11, Day: 30},
	}})

	overrides := []Override{{
		EventID:            "eclipse",
		Type:               OverrideTriggerNow,
		ForcedDurationDays: 2,
		AppliedDay:         100,
	}}

	result := evaluate(t, ev, Query{Day: 101}, nil, overrides)
	if !hasActive(result, "eclipse") {
		t.Fatalf("trigger_now should activate regardless of schedule")
	}
	active := result.Active[0]
	if active.Source != SourceOverride || active.StartDay != 100 || active.EndDay != 101 {
		t.Fatalf("got %+v, want override window 100..101", active)
	}

	if result := evaluate(t, ev, Query{Day: 102}, nil, overrides); hasActive(result, "eclipse") {
		t.Fatalf("trigger window ends after forced duration")
	}
}

func TestOverrideTriggerNowOnConditional(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:          "eclipse-panic",
		Kind:        KindConditional,
		Conditional: &ConditionalSpec{Condition: "event(eclipse) active", DurationDays: 2},
	}})

	overrides := []Override{{
		EventID:            "eclipse-panic",
		Type:               OverrideTriggerNow,
		ForcedDurationDays: 2,
		AppliedDay:         10,
	}}

	// The condition never fires; the override alone activates the event.
	result := evaluate(t, ev, Query{Day: 10}, nil, overrides)
	if !hasActive(result, "eclipse-panic") {
		t.Fatalf("trigger_now should activate a conditional regardless of its condition")
	}
	active := result.Active[0]
	if active.Source != SourceOverride || active.StartDay != 10 || active.EndDay != 11 {
		t.Fatalf("got %+v, want override window 10..11", active)
	}

	if result := evaluate(t, ev, Query{Day: 12}, nil, overrides); hasActive(result, "eclipse-panic") {
		t.Fatalf("trigger window ends after forced duration")
	}
}

func TestOverrideExtendDuration(t *testing.T) {
	ev := mustEvaluator(t, plainCalendar(t), []Definition{{
		ID:       "fair",
		Kind:     KindInterval,
		Interval: &IntervalSpec{Interval: 100, Duration: 3},
	}})

	overrides := []Override{{
		EventID:       "fair",
		Type:          OverrideExtendDuration,
		ExtensionDays: 4,
		AppliedDay:    0,
	}}

	result := evaluate(t, ev, Query{Day: 2}, nil, overrides)
	if !hasActive(result, "fair") {
		t.Fatalf("fair should be active")
	}
	active := result.Active[0]
	if active.EndDay != 6 || active.RemainingDays != 4 {
		t.Fatalf("got end %d remaining %d, want end 6 remaining 4", active.EndDay, active.RemainingDays)
	}
}

func TestEvaluatorRejectsBadDefinitions(t *testing.T) {
	driver := plainCalendar(t)
	tests := []struct {
		name string
		defs []Definition
	}{
		{"empty id", []Definition{{Kind: KindInterval, Interval: &IntervalSpec{Interval: 1}}}},
		{"duplicate id", []Definition{
			{ID: "a", Kind: KindInterval, Interval: &IntervalSpec{Interval: 1}},
			{ID: "a", Kind: KindInterval, Interval: &IntervalSpec{Interval: 2}},
		}},
		{"zero interval", []Definition{{ID: "a", Kind: KindInterval, Interval: &IntervalSpec{}}}},
		{"unknown kind", []Definition{{ID: "a", Kind: "weekly"}}},
		{"chain without states", []Definition{{ID: "a", Kind: KindChain, Chain: &ChainSpec{}}}},
		{"chain unknown initial state", []Definition{{ID: "a", Kind: KindChain, Chain: &ChainSpec{
			InitialState: "missing",
			States:       []ChainState{{Name: "x", Weight: 1, Duration: "1 day"}},
		}}}},
		{"bad condition", []Definition{{ID: "a", Kind: KindConditional, Conditional: &ConditionalSpec{Condition: "bogus"}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewEvaluator(driver, tc.defs); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
