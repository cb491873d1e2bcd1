package event

import (
	"github.com/louisbranch/almanac/internal/calendar"
	"github.com/louisbranch/almanac/internal/duration"
)

// Query asks which events are active on an absolute day, at a minute of
// day, for a filter context.
type Query struct {
	Day         int
	MinuteOfDay int
	Context     Context
}

// Result is one evaluation's output: the active events in evaluation
// order and the advanced chain checkpoints the caller should persist.
type Result struct {
	Active       []ActiveEvent
	ChainVectors map[string]ChainVector
}

// Evaluator determines event activation for queries against one calendar
// and one definition set. It holds no mutable state; chain checkpoints
// are passed in and handed back advanced.
type Evaluator struct {
	driver     *calendar.Driver
	units      duration.Units
	defs       []Definition
	conditions map[string]Condition
}

// NewEvaluator validates the definitions and compiles their conditions.
func NewEvaluator(driver *calendar.Driver, defs []Definition) (*Evaluator, error) {
	if err := ValidateAll(defs); err != nil {
		return nil, err
	}
	conditions := make(map[string]Condition)
	for i := range defs {
		if defs[i].Kind == KindConditional {
			cond, err := ParseCondition(defs[i].Conditional.Condition)
			if err != nil {
				return nil, err
			}
			conditions[defs[i].ID] = cond
		}
	}
	units := duration.UnitsFromCalendar(driver, driver.Definition().StartingYear)
	return &Evaluator{driver: driver, units: units, defs: defs, conditions: conditions}, nil
}

// Units exposes the calendar-derived duration units.
func (e *Evaluator) Units() duration.Units {
	return e.units
}

// Evaluate runs one query. Each definition is evaluated independently,
// filtered by context, reshaped by any overrides in force, and finally
// conditional events run in two ordered tiers so tier-2 conditions can
// reference tier-1 results.
//
// The chains map holds persisted checkpoints by event id; missing entries
// are re-derived from each chain's seed. The map is not mutated.
func (e *Evaluator) Evaluate(q Query, chains map[string]ChainVector, overrides []Override) (Result, error) {
	inForce := make(map[string][]Override)
	for _, o := range overrides {
		if o.AppliesOn(q.Day) {
			inForce[o.EventID] = append(inForce[o.EventID], o)
		}
	}

	result := Result{ChainVectors: make(map[string]ChainVector)}

	// Pass 1: fixed, interval and chain events in definition order.
	for i := range e.defs {
		def := &e.defs[i]
		if def.Kind == KindConditional {
			continue
		}

		var vec ChainVector
		var active ActiveEvent
		natural := false

		switch def.Kind {
		case KindChain:
			// Chain checkpoints advance regardless of context filters:
			// progression is a property of the world, not of who asks.
			var err error
			vec, err = e.chainVector(def, q.Day, chains)
			if err != nil {
				return Result{}, err
			}
			result.ChainVectors[def.ID] = vec
			active = e.chainActive(def, vec, q.Day)
			natural = true
		case KindFixed:
			active, natural = e.fixedActive(def, q.Day)
		case KindInterval:
			active, natural = e.intervalActive(def, q.Day, q.MinuteOfDay)
		}

		if !def.Filters.Matches(q.Context) {
			continue
		}
		if emitted, ok := applyOverrides(def, active, natural, inForce[def.ID], q.Day); ok {
			result.Active = append(result.Active, emitted)
		}
	}

	// Pass 2: conditional tiers. Tier-1 results join the registry before
	// tier 2 runs; the reverse direction is unsupported.
	registry := registryOf(result.Active)
	for _, tier := range []int{1, 2} {
		var emitted []ActiveEvent
		for i := range e.defs {
			def := &e.defs[i]
			if def.Kind != KindConditional || conditionalTier(def) != tier {
				continue
			}
			if !def.Filters.Matches(q.Context) {
				continue
			}
			// Overrides run even when the condition never fired, so
			// trigger_now and force_state can conjure the event.
			active, natural := e.conditionalActive(def, q, registry)
			if reshaped, keep := applyOverrides(def, active, natural, inForce[def.ID], q.Day); keep {
				emitted = append(emitted, reshaped)
			}
		}
		for _, ev := range emitted {
			registry[ev.EventID] = ev.State
			result.Active = append(result.Active, ev)
		}
	}

	return result, nil
}

// chainVector advances the persisted checkpoint to cover the day, or
// replays from the seed when no checkpoint exists.
func (e *Evaluator) chainVector(def *Definition, day int, chains map[string]ChainVector) (ChainVector, error) {
	if vec, ok := chains[def.ID]; ok {
		return AdvanceChain(def.Chain, vec, day, e.units)
	}
	return ChainVectorAt(def.Chain, day, e.units)
}

func (e *Evaluator) chainActive(def *Definition, vec ChainVector, day int) ActiveEvent {
	effects := def.Effects
	if state, ok := def.Chain.State(vec.StateName); ok && len(state.Effects) > 0 {
		effects = mergeEffects(def.Effects, state.Effects)
	}
	return ActiveEvent{
		EventID:       def.ID,
		State:         vec.StateName,
		Effects:       effects,
		Priority:      def.Priority,
		StartDay:      vec.EnteredDay,
		EndDay:        vec.EndDay,
		RemainingDays: remaining(vec.EndDay, day),
		Source:        SourceNatural,
	}
}

// fixedActive checks annual (or year-pinned) calendar-date recurrence.
func (e *Evaluator) fixedActive(def *Definition, day int) (ActiveEvent, bool) {
	spec := def.Fixed
	dur := spec.DurationDays
	if dur < 1 {
		dur = 1
	}
	date := e.driver.Date(day)

	years := []int{date.Year, date.Year - 1}
	if spec.Year != nil {
		years = []int{*spec.Year}
	}
	for _, year := range years {
		start, err := e.driver.AbsoluteDay(year, spec.MonthIndex, spec.Day)
		if err != nil {
			// The date does not exist this year (leap-day schedules).
			continue
		}
		if day < start || day > start+dur-1 {
			continue
		}
		return ActiveEvent{
			EventID:       def.ID,
			State:         DefaultState,
			Effects:       def.Effects,
			Priority:      def.Priority,
			StartDay:      start,
			EndDay:        start + dur - 1,
			RemainingDays: remaining(start+dur-1, day),
			Source:        SourceNatural,
		}, true
	}
	return ActiveEvent{}, false
}

// intervalActive checks modulo recurrence at day or minute granularity.
func (e *Evaluator) intervalActive(def *Definition, day, minuteOfDay int) (ActiveEvent, bool) {
	spec := def.Interval
	dur := spec.Duration
	if dur < 1 {
		dur = 1
	}

	if spec.UseMinutes {
		phase := floorMod(minuteOfDay+spec.Offset, spec.Interval)
		if phase >= dur {
			return ActiveEvent{}, false
		}
		return ActiveEvent{
			EventID:  def.ID,
			State:    DefaultState,
			Effects:  def.Effects,
			Priority: def.Priority,
			StartDay: day,
			EndDay:   day,
			Source:   SourceNatural,
		}, true
	}

	phase := floorMod(day+spec.Offset, spec.Interval)
	if phase >= dur {
		return ActiveEvent{}, false
	}
	start := day - phase
	return ActiveEvent{
		EventID:       def.ID,
		State:         DefaultState,
		Effects:       def.Effects,
		Priority:      def.Priority,
		StartDay:      start,
		EndDay:        start + dur - 1,
		RemainingDays: remaining(start+dur-1, day),
		Source:        SourceNatural,
	}, true
}

// conditionalActive resolves a conditional event's activation window.
// The window anchors on the first day of the condition's current or most
// recent contiguous true run and spans DurationDays from there: the
// event stays active through the window after the condition turns false,
// and a run older than its own window never re-anchors a fresh one.
func (e *Evaluator) conditionalActive(def *Definition, q Query, registry map[string]string) (ActiveEvent, bool) {
	cond := e.conditions[def.ID]
	dur := def.Conditional.DurationDays
	if dur < 1 {
		dur = 1
	}

	holds := func(offset int) bool {
		if offset == 0 {
			return cond.Eval(registry)
		}
		day := q.Day - offset
		if day < 0 {
			return false
		}
		past, err := e.registryAt(day, q.MinuteOfDay, q.Context)
		return err == nil && cond.Eval(past)
	}

	// Most recent true day within window reach.
	recent := -1
	for offset := 0; offset < dur; offset++ {
		if holds(offset) {
			recent = offset
			break
		}
	}
	if recent < 0 {
		return ActiveEvent{}, false
	}

	// Walk to the start of that run. Reaching dur means the run began
	// before any window that could still cover the query day.
	first := recent
	for first < dur && holds(first+1) {
		first++
	}
	if first >= dur {
		return ActiveEvent{}, false
	}

	start := q.Day - first
	return ActiveEvent{
		EventID:       def.ID,
		State:         DefaultState,
		Effects:       def.Effects,
		Priority:      def.Priority,
		StartDay:      start,
		EndDay:        start + dur - 1,
		RemainingDays: remaining(start+dur-1, q.Day),
		Source:        SourceNatural,
	}, true
}

// registryAt rebuilds the non-conditional state registry for a past day
// at the query's minute, replaying chains from their seeds. Used only
// for condition backscans.
func (e *Evaluator) registryAt(day, minuteOfDay int, ctx Context) (map[string]string, error) {
	registry := make(map[string]string)
	for i := range e.defs {
		def := &e.defs[i]
		if !def.Filters.Matches(ctx) {
			continue
		}
		switch def.Kind {
		case KindChain:
			vec, err := ChainVectorAt(def.Chain, day, e.units)
			if err != nil {
				return nil, err
			}
			registry[def.ID] = vec.StateName
		case KindFixed:
			if _, ok := e.fixedActive(def, day); ok {
				registry[def.ID] = DefaultState
			}
		case KindInterval:
			if _, ok := e.intervalActive(def, day, minuteOfDay); ok {
				registry[def.ID] = DefaultState
			}
		}
	}
	return registry, nil
}

// applyOverrides reshapes a natural evaluation under the overrides in
// force. The natural chain vector is never touched: overrides are a view
// on top of it.
func applyOverrides(def *Definition, natural ActiveEvent, naturallyActive bool, overrides []Override, day int) (ActiveEvent, bool) {
	active := natural
	isActive := naturallyActive

	for _, o := range overrides {
		switch o.Type {
		case OverrideDisable:
			return ActiveEvent{}, false
		case OverrideForceState:
			end := o.AppliedDay + o.ForcedDurationDays - 1
			if day > end {
				continue
			}
			effects := def.Effects
			if def.Chain != nil {
				if state, ok := def.Chain.State(o.ForcedState); ok && len(state.Effects) > 0 {
					effects = mergeEffects(def.Effects, state.Effects)
				}
			}
			active = ActiveEvent{
				EventID:       def.ID,
				State:         o.ForcedState,
				Effects:       effects,
				Priority:      def.Priority,
				StartDay:      o.AppliedDay,
				EndDay:        end,
				RemainingDays: remaining(end, day),
				Source:        SourceOverride,
			}
			isActive = true
		case OverrideTriggerNow:
			if isActive {
				continue
			}
			dur := o.ForcedDurationDays
			if dur < 1 {
				dur = 1
			}
			end := o.AppliedDay + dur - 1
			if day > end {
				continue
			}
			state := DefaultState
			if natural.State != "" {
				state = natural.State
			}
			active = ActiveEvent{
				EventID:       def.ID,
				State:         state,
				Effects:       def.Effects,
				Priority:      def.Priority,
				StartDay:      o.AppliedDay,
				EndDay:        end,
				RemainingDays: remaining(end, day),
				Source:        SourceOverride,
			}
			isActive = true
		case OverrideExtendDuration:
			if !isActive {
				continue
			}
			active.EndDay += o.ExtensionDays
			active.RemainingDays = remaining(active.EndDay, day)
			active.Source = SourceOverride
		}
	}

	if !isActive {
		return ActiveEvent{}, false
	}
	return active, true
}

// conditionalTier normalizes the tier field: anything but 2 is tier 1.
func conditionalTier(def *Definition) int {
	if def.Conditional != nil && def.Conditional.Tier == 2 {
		return 2
	}
	return 1
}

func registryOf(active []ActiveEvent) map[string]string {
	registry := make(map[string]string, len(active))
	for _, ev := range active {
		registry[ev.EventID] = ev.State
	}
	return registry
}

func mergeEffects(base, overlay map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

func remaining(endDay, day int) int {
	if endDay < day {
		return 0
	}
	return endDay - day
}

func floorMod(a, n int) int {
	return ((a % n) + n) % n
}
