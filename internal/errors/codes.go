// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Calendar definition errors
	CodeCalendarNoMonths        Code = "CALENDAR_NO_MONTHS"
	CodeCalendarZeroLengthMonth Code = "CALENDAR_ZERO_LENGTH_MONTH"
	CodeCalendarNoWeekdays      Code = "CALENDAR_NO_WEEKDAYS"
	CodeCalendarEraOverlap      Code = "CALENDAR_ERA_OVERLAP"
	CodeCalendarInvalidEraRange Code = "CALENDAR_INVALID_ERA_RANGE"
	CodeCalendarInvalidSeason   Code = "CALENDAR_INVALID_SEASON"
	CodeCalendarInvalidLeapRule Code = "CALENDAR_INVALID_LEAP_RULE"
	CodeCalendarInvalidDate     Code = "CALENDAR_INVALID_DATE"

	// Clock errors
	CodeClockNegativeAdvance Code = "CLOCK_NEGATIVE_ADVANCE"

	// Dice/duration errors
	CodeDiceInvalidNotation Code = "DICE_INVALID_NOTATION"
	CodeDurationEmpty       Code = "DURATION_EMPTY"
	CodeDurationInvalidExpr Code = "DURATION_INVALID_EXPRESSION"
	CodeDurationUnknownUnit Code = "DURATION_UNKNOWN_UNIT"
	CodeSeedOutOfRange      Code = "SEED_OUT_OF_RANGE"

	// Event definition errors
	CodeEventEmptyID         Code = "EVENT_EMPTY_ID"
	CodeEventDuplicateID     Code = "EVENT_DUPLICATE_ID"
	CodeEventInvalidKind     Code = "EVENT_INVALID_KIND"
	CodeEventInvalidInterval Code = "EVENT_INVALID_INTERVAL"
	CodeEventInvalidDate     Code = "EVENT_INVALID_DATE"
	CodeEventNoChainStates   Code = "EVENT_NO_CHAIN_STATES"
	CodeEventUnknownState    Code = "EVENT_UNKNOWN_STATE"
	CodeConditionSyntax      Code = "CONDITION_SYNTAX"

	// Chain progression errors
	CodeChainBeforeCheckpoint Code = "CHAIN_BEFORE_CHECKPOINT"

	// Override errors
	CodeOverrideInvalid Code = "OVERRIDE_INVALID"

	// World state errors
	CodeWorldStateVersion Code = "WORLD_STATE_UNSUPPORTED_VERSION"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeCalendarNoMonths,
		CodeCalendarZeroLengthMonth,
		CodeCalendarNoWeekdays,
		CodeCalendarEraOverlap,
		CodeCalendarInvalidEraRange,
		CodeCalendarInvalidSeason,
		CodeCalendarInvalidLeapRule,
		CodeCalendarInvalidDate,
		CodeClockNegativeAdvance,
		CodeDiceInvalidNotation,
		CodeDurationEmpty,
		CodeDurationInvalidExpr,
		CodeDurationUnknownUnit,
		CodeSeedOutOfRange,
		CodeEventEmptyID,
		CodeEventDuplicateID,
		CodeEventInvalidKind,
		CodeEventInvalidInterval,
		CodeEventInvalidDate,
		CodeEventNoChainStates,
		CodeEventUnknownState,
		CodeConditionSyntax,
		CodeOverrideInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - valid request, wrong engine state
	case CodeChainBeforeCheckpoint,
		CodeWorldStateVersion:
		return codes.FailedPrecondition

	// NotFound
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
