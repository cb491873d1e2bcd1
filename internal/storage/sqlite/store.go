// Package sqlite provides a SQLite-backed world state store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/almanac/internal/errors"
	"github.com/louisbranch/almanac/internal/event"
	"github.com/louisbranch/almanac/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/almanac/internal/storage"
	"github.com/louisbranch/almanac/internal/storage/sqlite/migrations"
	"github.com/louisbranch/almanac/internal/worldstate"
	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339Nano

// Store is a SQLite-backed implementation of the storage interfaces.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store at the provided path and applies embedded
// migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveWorldState replaces the saved state for a campaign. The state row
// and its chain and override rows are written in one transaction.
func (s *Store) SaveWorldState(ctx context.Context, campaignID string, ws *worldstate.WorldState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(campaignID) == "" {
		return fmt.Errorf("campaign id is required")
	}
	if ws == nil {
		return fmt.Errorf("world state is required")
	}

	toggles, err := json.Marshal(ws.ModuleToggles)
	if err != nil {
		return fmt.Errorf("encode module toggles: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO world_states (campaign_id, current_day, time_of_day, version, active_calendar_id, module_toggles, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (campaign_id) DO UPDATE SET
    current_day = excluded.current_day,
    time_of_day = excluded.time_of_day,
    version = excluded.version,
    active_calendar_id = excluded.active_calendar_id,
    module_toggles = excluded.module_toggles,
    updated_at = excluded.updated_at
`, campaignID, ws.Clock.CurrentDay, ws.Clock.TimeOfDay, ws.Version,
		ws.ActiveCalendarID, string(toggles), time.Now().UTC().Format(timeFormat)); err != nil {
		return fmt.Errorf("save world state: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chain_states WHERE campaign_id = ?", campaignID); err != nil {
		return fmt.Errorf("clear chain states: %w", err)
	}
	for eventID, vec := range ws.ChainStates {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO chain_states (campaign_id, event_id, state_name, entered_day, duration_days, end_day, rng_state)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, campaignID, eventID, vec.StateName, vec.EnteredDay, vec.DurationDays, vec.EndDay,
			strconv.FormatUint(vec.RNGState, 10)); err != nil {
			return fmt.Errorf("save chain state %s: %w", eventID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM overrides WHERE campaign_id = ?", campaignID); err != nil {
		return fmt.Errorf("clear overrides: %w", err)
	}
	for i, o := range ws.Overrides {
		var expires any
		if o.ExpiresDay != nil {
			expires = *o.ExpiresDay
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO overrides (campaign_id, position, event_id, type, forced_state, forced_duration, extension_days, applied_day, expires_day)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, campaignID, i, o.EventID, string(o.Type), o.ForcedState, o.ForcedDurationDays,
			o.ExtensionDays, o.AppliedDay, expires); err != nil {
			return fmt.Errorf("save override %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// LoadWorldState reads the saved state for a campaign.
func (s *Store) LoadWorldState(ctx context.Context, campaignID string) (*worldstate.WorldState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ws := &worldstate.WorldState{
		ChainStates: make(map[string]event.ChainVector),
	}
	var toggles string
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT current_day, time_of_day, version, active_calendar_id, module_toggles
FROM world_states WHERE campaign_id = ?
`, campaignID).Scan(&ws.Clock.CurrentDay, &ws.Clock.TimeOfDay, &ws.Version,
		&ws.ActiveCalendarID, &toggles)
	if err == sql.ErrNoRows {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "no world state for campaign %s", campaignID)
	}
	if err != nil {
		return nil, fmt.Errorf("load world state: %w", err)
	}
	if err := json.Unmarshal([]byte(toggles), &ws.ModuleToggles); err != nil {
		return nil, fmt.Errorf("decode module toggles: %w", err)
	}

	if err := s.loadChainStates(ctx, campaignID, ws); err != nil {
		return nil, err
	}
	if err := s.loadOverrides(ctx, campaignID, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *Store) loadChainStates(ctx context.Context, campaignID string, ws *worldstate.WorldState) error {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT event_id, state_name, entered_day, duration_days, end_day, rng_state
FROM chain_states WHERE campaign_id = ?
`, campaignID)
	if err != nil {
		return fmt.Errorf("load chain states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, rngState string
		var vec event.ChainVector
		if err := rows.Scan(&eventID, &vec.StateName, &vec.EnteredDay,
			&vec.DurationDays, &vec.EndDay, &rngState); err != nil {
			return fmt.Errorf("scan chain state: %w", err)
		}
		state, err := strconv.ParseUint(rngState, 10, 64)
		if err != nil {
			return fmt.Errorf("parse rng state for %s: %w", eventID, err)
		}
		vec.RNGState = state
		ws.ChainStates[eventID] = vec
	}
	return rows.Err()
}

func (s *Store) loadOverrides(ctx context.Context, campaignID string, ws *worldstate.WorldState) error {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT event_id, type, forced_state, forced_duration, extension_days, applied_day, expires_day
FROM overrides WHERE campaign_id = ? ORDER BY position
`, campaignID)
	if err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o event.Override
		var typ string
		var expires sql.NullInt64
		if err := rows.Scan(&o.EventID, &typ, &o.ForcedState, &o.ForcedDurationDays,
			&o.ExtensionDays, &o.AppliedDay, &expires); err != nil {
			return fmt.Errorf("scan override: %w", err)
		}
		o.Type = event.OverrideType(typ)
		if expires.Valid {
			day := int(expires.Int64)
			o.ExpiresDay = &day
		}
		ws.Overrides = append(ws.Overrides, o)
	}
	return rows.Err()
}

// ListCampaigns returns every campaign id with saved state.
func (s *Store) ListCampaigns(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT campaign_id FROM world_states ORDER BY campaign_id")
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan campaign id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteWorldState removes a campaign's saved state. Chain and override
// rows cascade.
func (s *Store) DeleteWorldState(ctx context.Context, campaignID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM world_states WHERE campaign_id = ?", campaignID); err != nil {
		return fmt.Errorf("delete world state: %w", err)
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
