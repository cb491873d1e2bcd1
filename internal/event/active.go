package event

// Source records how an event became active.
type Source string

const (
	// SourceNatural marks activation from the event's own schedule.
	SourceNatural Source = "natural"
	// SourceOverride marks activation forced or reshaped by a GM override.
	SourceOverride Source = "override"
)

// ActiveEvent is the runtime projection of an event active on a query
// day. It is recomputed per query and never persisted.
type ActiveEvent struct {
	EventID string
	// State is the chain state name, or "active" for other kinds.
	State   string
	Effects map[string]any
	// Priority is carried from the definition for last-wins resolution.
	Priority int
	StartDay int
	EndDay   int
	// RemainingDays counts whole days after the query day, always >= 0.
	RemainingDays int
	Source        Source
}

// DefaultState is the state reported by non-chain active events.
const DefaultState = "active"
