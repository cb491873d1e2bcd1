// Package worldstate defines the durable campaign state: the world
// clock, chain checkpoints, overrides and module toggles. This is the
// persisted contract; schema changes must bump CurrentVersion and add a
// migration step.
package worldstate

import (
	"strconv"

	"github.com/louisbranch/almanac/internal/calendar"
	apperrors "github.com/louisbranch/almanac/internal/errors"
	"github.com/louisbranch/almanac/internal/event"
)

// CurrentVersion is the schema version this build reads and writes.
const CurrentVersion = 1

// WorldState is everything a campaign persists between sessions. Chain
// checkpoints are keyed by event id; event definitions themselves live
// in content packs and are not part of the state.
type WorldState struct {
	Clock            calendar.Clock               `yaml:"clock"`
	ChainStates      map[string]event.ChainVector `yaml:"chain_states"`
	Overrides        []event.Override             `yaml:"overrides"`
	ModuleToggles    map[string]bool              `yaml:"module_toggles"`
	Version          int                          `yaml:"version"`
	ActiveCalendarID string                       `yaml:"active_calendar_id"`
}

// New returns an empty state at day 0 on the given calendar.
func New(calendarID string) *WorldState {
	return &WorldState{
		ChainStates:      make(map[string]event.ChainVector),
		ModuleToggles:    make(map[string]bool),
		Version:          CurrentVersion,
		ActiveCalendarID: calendarID,
	}
}

// Migrate brings a loaded state up to CurrentVersion. Unknown versions
// are rejected rather than guessed at.
func Migrate(ws *WorldState) error {
	switch ws.Version {
	case CurrentVersion:
	case 0:
		// Version 0 predates explicit versioning; the shape is otherwise
		// identical.
		ws.Version = CurrentVersion
	default:
		return apperrors.Newf(apperrors.CodeWorldStateVersion,
			"unsupported world state version %d", ws.Version).
			WithMetadata(map[string]string{"Version": strconv.Itoa(ws.Version)})
	}
	if ws.ChainStates == nil {
		ws.ChainStates = make(map[string]event.ChainVector)
	}
	if ws.ModuleToggles == nil {
		ws.ModuleToggles = make(map[string]bool)
	}
	return nil
}

// ModuleEnabled reports a toggle, defaulting to enabled when unset.
func (ws *WorldState) ModuleEnabled(name string) bool {
	enabled, ok := ws.ModuleToggles[name]
	if !ok {
		return true
	}
	return enabled
}

// PruneOverrides drops overrides that can never apply again on or after
// the given day.
func (ws *WorldState) PruneOverrides(day int) {
	kept := ws.Overrides[:0]
	for _, o := range ws.Overrides {
		if o.ExpiresDay != nil && *o.ExpiresDay <= day {
			continue
		}
		kept = append(kept, o)
	}
	ws.Overrides = kept
}
