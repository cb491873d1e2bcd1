// Package almanac parses CLI flags and runs the campaign engine
// commands.
package almanac

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	engine "github.com/louisbranch/almanac/internal/almanac"
	"github.com/louisbranch/almanac/internal/calendar"
	"github.com/louisbranch/almanac/internal/config"
	"github.com/louisbranch/almanac/internal/event"
	entrypoint "github.com/louisbranch/almanac/internal/platform/cmd"
	"github.com/louisbranch/almanac/internal/storage/sqlite"
)

// Config holds almanac command configuration.
type Config struct {
	config.Config
	// Campaign selects the persisted world state to operate on.
	Campaign string `env:"ALMANAC_CAMPAIGN" envDefault:"default"`
	// Calendar picks a calendar id when the pack holds more than one.
	Calendar string `env:"ALMANAC_CALENDAR"`

	// Query context.
	Location string
	Faction  string
	Region   string
	Tags     string

	// Args are the positional subcommand arguments.
	Args []string
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite file holding world state")
	fs.StringVar(&cfg.CalendarDir, "calendars", cfg.CalendarDir, "Directory of calendar YAML files")
	fs.StringVar(&cfg.EventDir, "events", cfg.EventDir, "Directory of event pack YAML files")
	fs.StringVar(&cfg.Campaign, "campaign", cfg.Campaign, "Campaign id")
	fs.StringVar(&cfg.Calendar, "calendar", cfg.Calendar, "Calendar id (required with multiple calendars)")
	fs.StringVar(&cfg.Location, "location", "", "Query context location")
	fs.StringVar(&cfg.Faction, "faction", "", "Query context faction")
	fs.StringVar(&cfg.Region, "region", "", "Query context region")
	fs.StringVar(&cfg.Tags, "tags", "", "Query context tags, comma separated")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	return cfg, nil
}

// Run dispatches the requested subcommand.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAlmanac, func(ctx context.Context) error {
		if len(cfg.Args) == 0 {
			return usageError()
		}
		switch cfg.Args[0] {
		case "validate":
			return runValidate(cfg, out)
		case "campaigns":
			return runCampaigns(ctx, cfg, out)
		case "today":
			return withEngine(ctx, cfg, func(eng *engine.Engine) error {
				snap, err := eng.Today(ctx, evalContext(cfg))
				if err != nil {
					return err
				}
				printSnapshot(out, snap)
				return nil
			})
		case "query":
			return runQuery(ctx, cfg, out)
		case "advance":
			return runAdvance(ctx, cfg, out)
		case "set-time":
			return runSetTime(ctx, cfg, out)
		case "override":
			return runOverride(ctx, cfg, out)
		default:
			return usageError()
		}
	})
}

func usageError() error {
	return fmt.Errorf("usage: almanac <validate|campaigns|today|query|advance|set-time|override> [args]")
}

func runValidate(cfg Config, out io.Writer) error {
	calendars, err := config.LoadCalendars(cfg.CalendarDir)
	if err != nil {
		return err
	}
	for _, def := range calendars {
		if _, err := calendar.NewDriver(def); err != nil {
			return err
		}
	}
	events, err := config.LoadEvents(cfg.EventDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "ok: %d calendars, %d events\n", len(calendars), len(events))
	return nil
}

func runCampaigns(ctx context.Context, cfg Config, out io.Writer) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ids, err := store.ListCampaigns(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

func runQuery(ctx context.Context, cfg Config, out io.Writer) error {
	if len(cfg.Args) < 2 {
		return fmt.Errorf("usage: almanac query <day> [minute]")
	}
	day, err := strconv.Atoi(cfg.Args[1])
	if err != nil {
		return fmt.Errorf("invalid day %q: %w", cfg.Args[1], err)
	}
	minute := 0
	if len(cfg.Args) > 2 {
		if minute, err = strconv.Atoi(cfg.Args[2]); err != nil {
			return fmt.Errorf("invalid minute %q: %w", cfg.Args[2], err)
		}
	}
	return withEngine(ctx, cfg, func(eng *engine.Engine) error {
		snap, err := eng.Query(ctx, day, minute, evalContext(cfg))
		if err != nil {
			return err
		}
		printSnapshot(out, snap)
		return nil
	})
}

func runAdvance(ctx context.Context, cfg Config, out io.Writer) error {
	if len(cfg.Args) < 2 {
		return fmt.Errorf("usage: almanac advance <duration expression>")
	}
	expr := strings.Join(cfg.Args[1:], " ")
	return withEngine(ctx, cfg, func(eng *engine.Engine) error {
		snap, err := eng.AdvanceExpr(ctx, expr, evalContext(cfg))
		if err != nil {
			return err
		}
		printSnapshot(out, snap)
		return nil
	})
}

func runSetTime(ctx context.Context, cfg Config, out io.Writer) error {
	if len(cfg.Args) < 2 {
		return fmt.Errorf("usage: almanac set-time <minute of day>")
	}
	minutes, err := strconv.ParseFloat(cfg.Args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid minute %q: %w", cfg.Args[1], err)
	}
	return withEngine(ctx, cfg, func(eng *engine.Engine) error {
		if err := eng.SetTime(ctx, minutes); err != nil {
			return err
		}
		clock := eng.Clock()
		fmt.Fprintf(out, "day %d, minute %d\n", clock.CurrentDay, clock.TimeOfDay)
		return nil
	})
}

func runOverride(ctx context.Context, cfg Config, out io.Writer) error {
	if len(cfg.Args) < 2 {
		return overrideUsage()
	}
	return withEngine(ctx, cfg, func(eng *engine.Engine) error {
		o, clear, err := parseOverride(cfg.Args[1:])
		if err != nil {
			return err
		}
		if clear != nil {
			if err := eng.ClearOverrides(ctx, *clear); err != nil {
				return err
			}
			fmt.Fprintln(out, "overrides cleared")
			return nil
		}
		o.AppliedDay = eng.Clock().CurrentDay
		if err := eng.ApplyOverride(ctx, o); err != nil {
			return err
		}
		fmt.Fprintf(out, "override %s applied to %s\n", o.Type, o.EventID)
		return nil
	})
}

func overrideUsage() error {
	return fmt.Errorf("usage: almanac override <disable <id> | force <id> <state> <days> | trigger <id> <days> | extend <id> <days> | clear [id]>")
}

// parseOverride turns positional override arguments into an Override,
// or a clear request when the subcommand is "clear".
func parseOverride(args []string) (event.Override, *string, error) {
	atoi := func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q: %w", s, err)
		}
		return n, nil
	}
	switch args[0] {
	case "clear":
		id := ""
		if len(args) > 1 {
			id = args[1]
		}
		return event.Override{}, &id, nil
	case "disable":
		if len(args) < 2 {
			return event.Override{}, nil, overrideUsage()
		}
		return event.Override{EventID: args[1], Type: event.OverrideDisable}, nil, nil
	case "force":
		if len(args) < 4 {
			return event.Override{}, nil, overrideUsage()
		}
		days, err := atoi(args[3])
		if err != nil {
			return event.Override{}, nil, err
		}
		return event.Override{
			EventID:            args[1],
			Type:               event.OverrideForceState,
			ForcedState:        args[2],
			ForcedDurationDays: days,
		}, nil, nil
	case "trigger":
		if len(args) < 3 {
			return event.Override{}, nil, overrideUsage()
		}
		days, err := atoi(args[2])
		if err != nil {
			return event.Override{}, nil, err
		}
		return event.Override{
			EventID:            args[1],
			Type:               event.OverrideTriggerNow,
			ForcedDurationDays: days,
		}, nil, nil
	case "extend":
		if len(args) < 3 {
			return event.Override{}, nil, overrideUsage()
		}
		days, err := atoi(args[2])
		if err != nil {
			return event.Override{}, nil, err
		}
		return event.Override{
			EventID:       args[1],
			Type:          event.OverrideExtendDuration,
			ExtensionDays: days,
		}, nil, nil
	default:
		return event.Override{}, nil, overrideUsage()
	}
}

// withEngine opens storage and the engine, runs fn and closes cleanly.
func withEngine(ctx context.Context, cfg Config, fn func(*engine.Engine) error) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	calDef, err := pickCalendar(cfg)
	if err != nil {
		return err
	}
	events, err := config.LoadEvents(cfg.EventDir)
	if err != nil {
		return err
	}
	eng, err := engine.Open(ctx, store, cfg.Campaign, calDef, events)
	if err != nil {
		return err
	}
	return fn(eng)
}

func pickCalendar(cfg Config) (*calendar.Definition, error) {
	calendars, err := config.LoadCalendars(cfg.CalendarDir)
	if err != nil {
		return nil, err
	}
	if cfg.Calendar != "" {
		def, ok := calendars[cfg.Calendar]
		if !ok {
			return nil, fmt.Errorf("calendar %q not found in %s", cfg.Calendar, cfg.CalendarDir)
		}
		return def, nil
	}
	if len(calendars) == 1 {
		for _, def := range calendars {
			return def, nil
		}
	}
	ids := make([]string, 0, len(calendars))
	for id := range calendars {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return nil, fmt.Errorf("pick a calendar with -calendar; available: %s", strings.Join(ids, ", "))
}

func evalContext(cfg Config) event.Context {
	var tags []string
	for _, tag := range strings.Split(cfg.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return event.Context{
		Location: cfg.Location,
		Faction:  cfg.Faction,
		Region:   cfg.Region,
		Tags:     tags,
	}
}

func printSnapshot(out io.Writer, snap engine.Snapshot) {
	fmt.Fprintf(out, "%s (day %d, minute %d)\n", snap.Formatted, snap.Date.AbsoluteDay, snap.ClockMinute)
	if snap.HasSeason {
		fmt.Fprintf(out, "season: %s\n", snap.Season.Name)
	}
	fmt.Fprintf(out, "sun: %s, light: %s\n", snap.Sun, snap.Light)
	if len(snap.Active) == 0 {
		fmt.Fprintln(out, "no active events")
		return
	}
	for _, active := range snap.Active {
		line := active.EventID
		if active.State != event.DefaultState {
			line += " [" + active.State + "]"
		}
		if active.Source == event.SourceOverride {
			line += " (override)"
		}
		fmt.Fprintf(out, "- %s, %d days remaining\n", line, active.RemainingDays)
	}
	keys := make([]string, 0, len(snap.Effects.Values))
	for key := range snap.Effects.Values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		ids := strings.Join(snap.Effects.CompetingEffects[key], ", ")
		fmt.Fprintf(out, "  %s = %v (%s via %s)\n",
			key, snap.Effects.Values[key], snap.Effects.ResolutionStrategies[key], ids)
	}
}
