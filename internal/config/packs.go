package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/almanac/internal/calendar"
	"github.com/louisbranch/almanac/internal/event"
)

// eventPack is the on-disk shape of an event pack file.
type eventPack struct {
	Events []event.Definition `yaml:"events"`
}

// LoadCalendar reads and validates one calendar definition file.
func LoadCalendar(path string) (*calendar.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar %s: %w", path, err)
	}
	var def calendar.Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse calendar %s: %w", path, err)
	}
	if def.ID == "" {
		def.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := calendar.ValidateDefinition(&def); err != nil {
		return nil, fmt.Errorf("calendar %s: %w", path, err)
	}
	return &def, nil
}

// LoadCalendars reads every calendar file in a directory, keyed by id.
func LoadCalendars(dir string) (map[string]*calendar.Definition, error) {
	paths, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	calendars := make(map[string]*calendar.Definition, len(paths))
	for _, path := range paths {
		def, err := LoadCalendar(path)
		if err != nil {
			return nil, err
		}
		if _, dup := calendars[def.ID]; dup {
			return nil, fmt.Errorf("duplicate calendar id %q in %s", def.ID, path)
		}
		calendars[def.ID] = def
	}
	return calendars, nil
}

// LoadEventPack reads and validates one event pack file.
func LoadEventPack(path string) ([]event.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event pack %s: %w", path, err)
	}
	var pack eventPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse event pack %s: %w", path, err)
	}
	if err := event.ValidateAll(pack.Events); err != nil {
		return nil, fmt.Errorf("event pack %s: %w", path, err)
	}
	return pack.Events, nil
}

// LoadEvents reads every event pack in a directory and validates the
// combined set, so duplicate ids across packs are rejected too.
func LoadEvents(dir string) ([]event.Definition, error) {
	paths, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	var defs []event.Definition
	for _, path := range paths {
		pack, err := LoadEventPack(path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, pack...)
	}
	if err := event.ValidateAll(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
