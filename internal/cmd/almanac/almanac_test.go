package almanac

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/louisbranch/almanac/internal/event"
)

const testCalendarYAML = `
id: plain
months:
  - {name: Hammer, days: 30}
  - {name: Alturiak, days: 30}
  - {name: Ches, days: 30}
  - {name: Tarsakh, days: 30}
weekdays: [Sun, Moon, Tyr, Wode, Thor, Frey, Satur]
`

const testEventsYAML = `
events:
  - id: market-day
    type: interval
    interval:
      interval: 7
    effects:
      price_mult_global: 0.9
`

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	calDir := filepath.Join(dir, "calendars")
	eventDir := filepath.Join(dir, "events")
	for _, sub := range []string{calDir, eventDir} {
		if err := os.Mkdir(sub, 0o700); err != nil {
			t.Fatalf("mkdir %s: %v", sub, err)
		}
	}
	if err := os.WriteFile(filepath.Join(calDir, "plain.yaml"), []byte(testCalendarYAML), 0o600); err != nil {
		t.Fatalf("write calendar: %v", err)
	}
	if err := os.WriteFile(filepath.Join(eventDir, "base.yaml"), []byte(testEventsYAML), 0o600); err != nil {
		t.Fatalf("write events: %v", err)
	}

	var cfg Config
	cfg.DBPath = filepath.Join(dir, "almanac.db")
	cfg.CalendarDir = calDir
	cfg.EventDir = eventDir
	cfg.Campaign = "camp-1"
	return cfg
}

func TestParseConfigFlags(t *testing.T) {
	fs := flag.NewFlagSet("almanac", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-db", "world.db",
		"-campaign", "icewind",
		"-tags", "trade, coastal",
		"query", "12",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "world.db" || cfg.Campaign != "icewind" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Args, []string{"query", "12"}) {
		t.Fatalf("args = %v", cfg.Args)
	}
	ctx := evalContext(cfg)
	if !reflect.DeepEqual(ctx.Tags, []string{"trade", "coastal"}) {
		t.Fatalf("tags = %v", ctx.Tags)
	}
}

func TestRunValidate(t *testing.T) {
	cfg := testConfig(t)
	cfg.Args = []string{"validate"}

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out.String(), "ok: 1 calendars, 1 events") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunTodayAndAdvance(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	var out bytes.Buffer
	cfg.Args = []string{"today"}
	if err := Run(ctx, cfg, &out); err != nil {
		t.Fatalf("today: %v", err)
	}
	if !strings.Contains(out.String(), "market-day") {
		t.Fatalf("day 0 should list market-day: %q", out.String())
	}

	out.Reset()
	cfg.Args = []string{"advance", "3", "days"}
	if err := Run(ctx, cfg, &out); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !strings.Contains(out.String(), "no active events") {
		t.Fatalf("day 3 should have no events: %q", out.String())
	}

	out.Reset()
	cfg.Args = []string{"campaigns"}
	if err := Run(ctx, cfg, &out); err != nil {
		t.Fatalf("campaigns: %v", err)
	}
	if !strings.Contains(out.String(), "camp-1") {
		t.Fatalf("campaign not listed: %q", out.String())
	}
}

func TestRunOverrideDisable(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	var out bytes.Buffer
	cfg.Args = []string{"override", "disable", "market-day"}
	if err := Run(ctx, cfg, &out); err != nil {
		t.Fatalf("override: %v", err)
	}

	out.Reset()
	cfg.Args = []string{"query", "7"}
	if err := Run(ctx, cfg, &out); err != nil {
		t.Fatalf("query: %v", err)
	}
	if strings.Contains(out.String(), "market-day") {
		t.Fatalf("disabled event still listed: %q", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	cfg := testConfig(t)
	cfg.Args = []string{"bogus"}
	if err := Run(context.Background(), cfg, new(bytes.Buffer)); err == nil {
		t.Fatalf("expected usage error")
	}
}

func TestParseOverride(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want event.Override
	}{
		{"disable", []string{"disable", "weather"},
			event.Override{EventID: "weather", Type: event.OverrideDisable}},
		{"force", []string{"force", "weather", "storm", "3"},
			event.Override{EventID: "weather", Type: event.OverrideForceState, ForcedState: "storm", ForcedDurationDays: 3}},
		{"trigger", []string{"trigger", "eclipse", "2"},
			event.Override{EventID: "eclipse", Type: event.OverrideTriggerNow, ForcedDurationDays: 2}},
		{"extend", []string{"extend", "fair", "4"},
			event.Override{EventID: "fair", Type: event.OverrideExtendDuration, ExtensionDays: 4}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, clear, err := parseOverride(tc.args)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if clear != nil {
				t.Fatalf("unexpected clear request")
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}

	if _, clear, err := parseOverride([]string{"clear", "weather"}); err != nil || clear == nil || *clear != "weather" {
		t.Fatalf("clear parse: %v %v", clear, err)
	}
	if _, _, err := parseOverride([]string{"force", "weather"}); err == nil {
		t.Fatalf("expected usage error for short force")
	}
}
