package event

import (
	apperrors "github.com/louisbranch/almanac/internal/errors"
)

// OverrideType discriminates GM override behavior.
type OverrideType string

const (
	// OverrideForceState substitutes a chain event's natural state.
	OverrideForceState OverrideType = "force_state"
	// OverrideDisable removes the event from consideration entirely.
	OverrideDisable OverrideType = "disable_event"
	// OverrideExtendDuration adds days to the current computed end day.
	OverrideExtendDuration OverrideType = "extend_duration"
	// OverrideTriggerNow forces immediate activation regardless of the
	// event's own schedule.
	OverrideTriggerNow OverrideType = "trigger_now"
)

// Override is a manual GM intervention scoped to [AppliedDay, ExpiresDay).
// Overrides are a view-layer concern: they reshape evaluation results but
// never mutate the underlying chain vectors, so natural progression
// resumes untouched once they expire.
type Override struct {
	EventID string       `yaml:"eventId"`
	Type    OverrideType `yaml:"type"`
	// ForcedState names the substitute state for force_state.
	ForcedState string `yaml:"forcedState,omitempty"`
	// ForcedDurationDays bounds force_state and trigger_now activations.
	ForcedDurationDays int `yaml:"forcedDuration,omitempty"`
	// ExtensionDays is added to the natural end day for extend_duration.
	ExtensionDays int  `yaml:"durationExtension,omitempty"`
	AppliedDay    int  `yaml:"appliedDay"`
	ExpiresDay    *int `yaml:"expiresDay,omitempty"`
}

// AppliesOn reports whether the override is in force on the day.
func (o Override) AppliesOn(day int) bool {
	if day < o.AppliedDay {
		return false
	}
	return o.ExpiresDay == nil || day < *o.ExpiresDay
}

// Validate checks the override carries the fields its type requires.
func (o Override) Validate() error {
	if o.EventID == "" {
		return apperrors.New(apperrors.CodeOverrideInvalid, "override needs an event id")
	}
	switch o.Type {
	case OverrideForceState:
		if o.ForcedState == "" || o.ForcedDurationDays < 1 {
			return apperrors.New(apperrors.CodeOverrideInvalid, "force_state override needs a state and positive duration")
		}
	case OverrideDisable, OverrideTriggerNow:
	case OverrideExtendDuration:
		if o.ExtensionDays < 1 {
			return apperrors.New(apperrors.CodeOverrideInvalid, "extend_duration override needs a positive extension")
		}
	default:
		return apperrors.Newf(apperrors.CodeOverrideInvalid, "unknown override type %q", o.Type)
	}
	if o.ExpiresDay != nil && *o.ExpiresDay <= o.AppliedDay {
		return apperrors.New(apperrors.CodeOverrideInvalid, "override expiry must fall after its applied day")
	}
	return nil
}
