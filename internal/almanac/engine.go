// Package almanac orchestrates the calendar driver, event evaluator,
// effect resolver and storage into one campaign-facing engine.
package almanac

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/almanac/internal/calendar"
	"github.com/louisbranch/almanac/internal/dice"
	"github.com/louisbranch/almanac/internal/duration"
	"github.com/louisbranch/almanac/internal/effects"
	apperrors "github.com/louisbranch/almanac/internal/errors"
	"github.com/louisbranch/almanac/internal/event"
	"github.com/louisbranch/almanac/internal/random"
	"github.com/louisbranch/almanac/internal/storage"
	"github.com/louisbranch/almanac/internal/worldstate"
)

const tracerName = "github.com/louisbranch/almanac/internal/almanac"

// Snapshot is the full answer to one day/context query: the calendar
// view of the day, the active events and their resolved effects.
type Snapshot struct {
	Date        calendar.Date
	Formatted   string
	Season      calendar.Season
	HasSeason   bool
	Solar       calendar.SolarTimes
	Sun         calendar.SunState
	Light       calendar.LightLevel
	Active      []event.ActiveEvent
	Effects     effects.Resolved
	ClockDay    int
	ClockMinute int
}

// Engine binds one campaign's world state to a calendar and an event
// set. It is not safe for concurrent use; callers serialize access.
type Engine struct {
	driver    *calendar.Driver
	evaluator *event.Evaluator
	store     storage.Store
	campaign  string
	state     *worldstate.WorldState
	tracer    trace.Tracer
}

// Open loads (or initializes) the campaign's world state and builds the
// engine on top of it.
func Open(ctx context.Context, store storage.Store, campaignID string, calDef *calendar.Definition, eventDefs []event.Definition) (*Engine, error) {
	driver, err := calendar.NewDriver(calDef)
	if err != nil {
		return nil, err
	}
	evaluator, err := event.NewEvaluator(driver, eventDefs)
	if err != nil {
		return nil, err
	}

	state, err := store.LoadWorldState(ctx, campaignID)
	if err != nil {
		if !apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, err
		}
		state = worldstate.New(calDef.ID)
	}
	if err := worldstate.Migrate(state); err != nil {
		return nil, err
	}
	if state.ActiveCalendarID != calDef.ID {
		return nil, fmt.Errorf("campaign %s was saved against calendar %q, not %q",
			campaignID, state.ActiveCalendarID, calDef.ID)
	}

	return &Engine{
		driver:    driver,
		evaluator: evaluator,
		store:     store,
		campaign:  campaignID,
		state:     state,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// Clock returns the campaign clock.
func (e *Engine) Clock() calendar.Clock {
	return e.state.Clock
}

// Calendar returns the calendar driver for direct date math.
func (e *Engine) Calendar() *calendar.Driver {
	return e.driver
}

// Today evaluates the current clock day with the given context.
func (e *Engine) Today(ctx context.Context, evalCtx event.Context) (Snapshot, error) {
	return e.Query(ctx, e.state.Clock.CurrentDay, e.state.Clock.TimeOfDay, evalCtx)
}

// Query evaluates an arbitrary day without moving the clock or writing
// state. Chain checkpoints ahead of the queried day are bypassed in
// favor of seed replay, so past days stay answerable.
func (e *Engine) Query(ctx context.Context, day, minuteOfDay int, evalCtx event.Context) (Snapshot, error) {
	_, span := e.tracer.Start(ctx, "almanac.query", trace.WithAttributes(
		attribute.String("campaign.id", e.campaign),
		attribute.Int("almanac.day", day),
	))
	defer span.End()

	result, err := e.evaluator.Evaluate(event.Query{
		Day:         day,
		MinuteOfDay: minuteOfDay,
		Context:     evalCtx,
	}, e.chainsCovering(day), e.state.Overrides)
	if err != nil {
		return Snapshot{}, err
	}

	if day == e.state.Clock.CurrentDay {
		e.mergeChainVectors(result.ChainVectors)
	}
	return e.snapshot(day, minuteOfDay, evalCtx, result), nil
}

// Advance moves the clock forward by minutes, evaluates the new moment
// and persists the updated state.
func (e *Engine) Advance(ctx context.Context, minutes int, evalCtx event.Context) (Snapshot, error) {
	ctx, span := e.tracer.Start(ctx, "almanac.advance", trace.WithAttributes(
		attribute.String("campaign.id", e.campaign),
		attribute.Int("almanac.minutes", minutes),
	))
	defer span.End()

	if _, err := e.state.Clock.AdvanceTime(minutes); err != nil {
		return Snapshot{}, err
	}

	result, err := e.evaluator.Evaluate(event.Query{
		Day:         e.state.Clock.CurrentDay,
		MinuteOfDay: e.state.Clock.TimeOfDay,
		Context:     evalCtx,
	}, e.chainsCovering(e.state.Clock.CurrentDay), e.state.Overrides)
	if err != nil {
		return Snapshot{}, err
	}
	e.mergeChainVectors(result.ChainVectors)
	e.state.PruneOverrides(e.state.Clock.CurrentDay)

	if err := e.store.SaveWorldState(ctx, e.campaign, e.state); err != nil {
		return Snapshot{}, err
	}
	return e.snapshot(e.state.Clock.CurrentDay, e.state.Clock.TimeOfDay, evalCtx, result), nil
}

// AdvanceDays moves the clock forward by whole days.
func (e *Engine) AdvanceDays(ctx context.Context, days int, evalCtx event.Context) (Snapshot, error) {
	if days < 0 {
		return Snapshot{}, calendar.ErrNegativeAdvance
	}
	return e.Advance(ctx, days*1440, evalCtx)
}

// AdvanceExpr moves the clock forward by a duration expression such as
// "3 days" or "2d6 hours". Dice terms roll against a fresh random seed.
func (e *Engine) AdvanceExpr(ctx context.Context, expr string, evalCtx event.Context) (Snapshot, error) {
	seed, err := random.NewSeed()
	if err != nil {
		return Snapshot{}, err
	}
	minutes, err := duration.Parse(expr, e.evaluator.Units(), dice.NewRNG(seed))
	if err != nil {
		return Snapshot{}, err
	}
	return e.Advance(ctx, minutes, evalCtx)
}

// SetTime sets the clock's minute of day without changing the day.
func (e *Engine) SetTime(ctx context.Context, minutes float64) error {
	e.state.Clock.SetTimeOfDay(minutes)
	return e.store.SaveWorldState(ctx, e.campaign, e.state)
}

// ApplyOverride validates, records and persists a GM override. The
// override's AppliedDay is taken as given; callers wanting "from now"
// set it from Clock().CurrentDay.
func (e *Engine) ApplyOverride(ctx context.Context, o event.Override) error {
	if err := o.Validate(); err != nil {
		return err
	}
	e.state.Overrides = append(e.state.Overrides, o)
	return e.store.SaveWorldState(ctx, e.campaign, e.state)
}

// ClearOverrides drops every recorded override for an event id, or all
// overrides when id is empty.
func (e *Engine) ClearOverrides(ctx context.Context, eventID string) error {
	if eventID == "" {
		e.state.Overrides = nil
	} else {
		kept := e.state.Overrides[:0]
		for _, o := range e.state.Overrides {
			if o.EventID != eventID {
				kept = append(kept, o)
			}
		}
		e.state.Overrides = kept
	}
	return e.store.SaveWorldState(ctx, e.campaign, e.state)
}

// SetModule toggles a content module and persists the change.
func (e *Engine) SetModule(ctx context.Context, name string, enabled bool) error {
	e.state.ModuleToggles[name] = enabled
	return e.store.SaveWorldState(ctx, e.campaign, e.state)
}

// chainsCovering filters persisted checkpoints down to those usable for
// the day: a vector entered after the day would trip the forward-only
// guard, so those chains re-derive from their seeds instead.
func (e *Engine) chainsCovering(day int) map[string]event.ChainVector {
	usable := make(map[string]event.ChainVector, len(e.state.ChainStates))
	for id, vec := range e.state.ChainStates {
		if vec.EnteredDay <= day {
			usable[id] = vec
		}
	}
	return usable
}

// mergeChainVectors folds evaluation results into the persisted
// checkpoints, never moving a checkpoint backwards.
func (e *Engine) mergeChainVectors(vectors map[string]event.ChainVector) {
	for id, vec := range vectors {
		if prev, ok := e.state.ChainStates[id]; ok && prev.EnteredDay > vec.EnteredDay {
			continue
		}
		e.state.ChainStates[id] = vec
	}
}

func (e *Engine) snapshot(day, minuteOfDay int, evalCtx event.Context, result event.Result) Snapshot {
	date := e.driver.Date(day)
	season, hasSeason := e.driver.SeasonOn(day, evalCtx.Region)
	return Snapshot{
		Date:        date,
		Formatted:   e.driver.FormatDate(date),
		Season:      season,
		HasSeason:   hasSeason,
		Solar:       e.driver.SolarTimes(day, evalCtx.Region),
		Sun:         e.driver.SunState(day, minuteOfDay, evalCtx.Region),
		Light:       e.driver.LightLevel(day, minuteOfDay, evalCtx.Region),
		Active:      result.Active,
		Effects:     effects.Resolve(day, result.Active, evalCtx),
		ClockDay:    e.state.Clock.CurrentDay,
		ClockMinute: e.state.Clock.TimeOfDay,
	}
}
