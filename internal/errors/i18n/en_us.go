package i18n

// Error codes must match the codes defined in internal/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeCalendarNoMonths        = "CALENDAR_NO_MONTHS"
	CodeCalendarZeroLengthMonth = "CALENDAR_ZERO_LENGTH_MONTH"
	CodeCalendarNoWeekdays      = "CALENDAR_NO_WEEKDAYS"
	CodeCalendarEraOverlap      = "CALENDAR_ERA_OVERLAP"
	CodeCalendarInvalidEraRange = "CALENDAR_INVALID_ERA_RANGE"
	CodeCalendarInvalidSeason   = "CALENDAR_INVALID_SEASON"
	CodeCalendarInvalidLeapRule = "CALENDAR_INVALID_LEAP_RULE"
	CodeCalendarInvalidDate     = "CALENDAR_INVALID_DATE"
	CodeClockNegativeAdvance    = "CLOCK_NEGATIVE_ADVANCE"
	CodeDiceInvalidNotation     = "DICE_INVALID_NOTATION"
	CodeDurationEmpty           = "DURATION_EMPTY"
	CodeDurationInvalidExpr     = "DURATION_INVALID_EXPRESSION"
	CodeDurationUnknownUnit     = "DURATION_UNKNOWN_UNIT"
	CodeSeedOutOfRange          = "SEED_OUT_OF_RANGE"
	CodeEventEmptyID            = "EVENT_EMPTY_ID"
	CodeEventDuplicateID        = "EVENT_DUPLICATE_ID"
	CodeEventInvalidKind        = "EVENT_INVALID_KIND"
	CodeEventInvalidInterval    = "EVENT_INVALID_INTERVAL"
	CodeEventInvalidDate        = "EVENT_INVALID_DATE"
	CodeEventNoChainStates      = "EVENT_NO_CHAIN_STATES"
	CodeEventUnknownState       = "EVENT_UNKNOWN_STATE"
	CodeConditionSyntax         = "CONDITION_SYNTAX"
	CodeChainBeforeCheckpoint   = "CHAIN_BEFORE_CHECKPOINT"
	CodeOverrideInvalid         = "OVERRIDE_INVALID"
	CodeWorldStateVersion       = "WORLD_STATE_UNSUPPORTED_VERSION"
	CodeNotFound                = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Calendar definition errors
		CodeCalendarNoMonths:        "Calendar must define at least one month",
		CodeCalendarZeroLengthMonth: "Month {{.Month}} must have at least one day",
		CodeCalendarNoWeekdays:      "Calendar must define at least one weekday",
		CodeCalendarEraOverlap:      "Eras {{.First}} and {{.Second}} overlap at year {{.Year}}",
		CodeCalendarInvalidEraRange: "Era {{.Era}} has an empty year range",
		CodeCalendarInvalidSeason:   "Season {{.Season}} has an invalid start date or solar times",
		CodeCalendarInvalidLeapRule: "Leap rule has a non-positive interval",
		CodeCalendarInvalidDate:     "Date is outside the calendar definition",

		// Clock errors
		CodeClockNegativeAdvance: "Time can only be advanced forward",

		// Dice/duration errors
		CodeDiceInvalidNotation: "Dice notation {{.Notation}} is not valid",
		CodeDurationEmpty:       "Duration expression cannot be empty",
		CodeDurationInvalidExpr: "Duration expression {{.Expression}} is not valid",
		CodeDurationUnknownUnit: "Unknown duration unit: {{.Unit}}",
		CodeSeedOutOfRange:      "Random seed is out of valid range",

		// Event definition errors
		CodeEventEmptyID:         "Event ID cannot be empty",
		CodeEventDuplicateID:     "Event ID {{.ID}} is already defined",
		CodeEventInvalidKind:     "Invalid event kind specified",
		CodeEventInvalidInterval: "Interval event must have a positive interval",
		CodeEventInvalidDate:     "Fixed event date is outside the calendar",
		CodeEventNoChainStates:   "Chain event must define at least one state with positive weight",
		CodeEventUnknownState:    "Chain event has no state named {{.State}}",
		CodeConditionSyntax:      "Condition expression {{.Expression}} is not valid",

		// Chain progression errors
		CodeChainBeforeCheckpoint: "Chain events cannot be evaluated before their persisted checkpoint",

		// Override errors
		CodeOverrideInvalid: "Override is missing required fields for its type",

		// World state errors
		CodeWorldStateVersion: "World state version {{.Version}} is not supported",

		// Storage errors
		CodeNotFound: "The requested resource was not found",
	},
}
