// Package event implements the world-event evaluation engine: four kinds
// of recurring event definitions, the chain-event state machine with
// deterministic replay, GM overrides and the per-day activation logic.
package event

import (
	apperrors "github.com/louisbranch/almanac/internal/errors"
)

// Kind discriminates the event definition union.
type Kind string

const (
	KindFixed       Kind = "fixed"
	KindInterval    Kind = "interval"
	KindChain       Kind = "chain"
	KindConditional Kind = "conditional"
)

// IsValid reports whether the kind is one of the four variants.
func (k Kind) IsValid() bool {
	switch k {
	case KindFixed, KindInterval, KindChain, KindConditional:
		return true
	}
	return false
}

// FixedSpec schedules an event on a calendar date, annually unless Year
// pins a specific year.
type FixedSpec struct {
	// MonthIndex is the zero-based month in the calendar definition.
	MonthIndex int `yaml:"month"`
	// Day is the one-based day of month.
	Day int `yaml:"day"`
	// Year pins a one-time occurrence. Nil means annual recurrence.
	Year *int `yaml:"year,omitempty"`
	// DurationDays defaults to 1.
	DurationDays int `yaml:"duration,omitempty"`
}

// IntervalSpec schedules an event on a fixed cycle of days, or of minutes
// within a day when UseMinutes is set.
type IntervalSpec struct {
	Interval int `yaml:"interval"`
	Offset   int `yaml:"offset,omitempty"`
	// Duration is days (or minutes when UseMinutes), defaulting to 1.
	Duration   int  `yaml:"duration,omitempty"`
	UseMinutes bool `yaml:"useMinutes,omitempty"`
}

// ChainState is one state of a chain event's weighted machine.
type ChainState struct {
	Name string `yaml:"name"`
	// Weight drives cumulative-weight selection; zero excludes the state.
	Weight int `yaml:"weight"`
	// Duration is a dice/unit expression resolved at day granularity.
	Duration string `yaml:"duration"`
	// Effects override the definition-level effects while this state holds.
	Effects map[string]any `yaml:"effects,omitempty"`
}

// ChainSpec is the perpetual weighted state machine behind a chain event.
type ChainSpec struct {
	Seed int64 `yaml:"seed"`
	// InitialState names the starting state; empty means one weighted draw.
	InitialState string       `yaml:"initialState,omitempty"`
	States       []ChainState `yaml:"states"`
}

// State looks up a chain state by name.
func (s *ChainSpec) State(name string) (ChainState, bool) {
	for _, state := range s.States {
		if state.Name == name {
			return state, true
		}
	}
	return ChainState{}, false
}

// ConditionalSpec activates an event while a condition over other events'
// resolved states holds.
type ConditionalSpec struct {
	// Condition is a small equality/membership expression, not a script.
	Condition string `yaml:"condition"`
	// Tier is 1 or 2; tier-2 conditions may reference tier-1 results.
	Tier int `yaml:"tier,omitempty"`
	// DurationDays the event stays active from the day the condition
	// first became true. Defaults to 1.
	DurationDays int `yaml:"duration,omitempty"`
}

// Filters restrict an event to matching query contexts. Empty dimensions
// always match; declared dimensions are ANDed.
type Filters struct {
	Locations []string `yaml:"locations,omitempty"`
	Factions  []string `yaml:"factions,omitempty"`
	Seasons   []string `yaml:"seasons,omitempty"`
	Regions   []string `yaml:"regions,omitempty"`
	Tags      []string `yaml:"tags,omitempty"`
}

// Definition is one world-event definition, discriminated by Kind.
// Exactly one of the per-kind payloads is set.
type Definition struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	Kind     Kind   `yaml:"type"`
	Priority int    `yaml:"priority,omitempty"`
	// Effects contribute to effect resolution while the event is active.
	Effects map[string]any `yaml:"effects,omitempty"`
	Filters Filters        `yaml:"filters,omitempty"`

	Fixed       *FixedSpec       `yaml:"fixed,omitempty"`
	Interval    *IntervalSpec    `yaml:"interval,omitempty"`
	Chain       *ChainSpec       `yaml:"chain,omitempty"`
	Conditional *ConditionalSpec `yaml:"conditional,omitempty"`
}

// Validate checks a definition at load time.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return apperrors.New(apperrors.CodeEventEmptyID, "event id cannot be empty")
	}
	switch d.Kind {
	case KindFixed:
		if d.Fixed == nil || d.Fixed.Day < 1 {
			return apperrors.Newf(apperrors.CodeEventInvalidDate, "fixed event %q needs a month and day", d.ID)
		}
	case KindInterval:
		if d.Interval == nil || d.Interval.Interval <= 0 {
			return apperrors.Newf(apperrors.CodeEventInvalidInterval, "interval event %q must have a positive interval", d.ID)
		}
	case KindChain:
		if d.Chain == nil || !hasSelectableState(d.Chain) {
			return apperrors.Newf(apperrors.CodeEventNoChainStates, "chain event %q must define at least one state with positive weight", d.ID)
		}
		if d.Chain.InitialState != "" {
			if _, ok := d.Chain.State(d.Chain.InitialState); !ok {
				return apperrors.Newf(apperrors.CodeEventUnknownState, "chain event %q has no state named %q", d.ID, d.Chain.InitialState).
					WithMetadata(map[string]string{"State": d.Chain.InitialState})
			}
		}
	case KindConditional:
		if d.Conditional == nil || d.Conditional.Condition == "" {
			return apperrors.Newf(apperrors.CodeConditionSyntax, "conditional event %q needs a condition", d.ID)
		}
		if _, err := ParseCondition(d.Conditional.Condition); err != nil {
			return err
		}
	default:
		return apperrors.Newf(apperrors.CodeEventInvalidKind, "event %q has unknown kind %q", d.ID, d.Kind)
	}
	return nil
}

func hasSelectableState(spec *ChainSpec) bool {
	for _, state := range spec.States {
		if state.Weight > 0 {
			return true
		}
	}
	return false
}

// ValidateAll validates a definition set, including id uniqueness.
func ValidateAll(defs []Definition) error {
	seen := make(map[string]struct{}, len(defs))
	for i := range defs {
		if err := defs[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[defs[i].ID]; dup {
			return apperrors.Newf(apperrors.CodeEventDuplicateID, "event id %q is already defined", defs[i].ID).
				WithMetadata(map[string]string{"ID": defs[i].ID})
		}
		seen[defs[i].ID] = struct{}{}
	}
	return nil
}
