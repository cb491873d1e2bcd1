// Package storage defines the persistence interfaces for campaign world
// state. Implementations live in subpackages.
package storage

import (
	"context"

	"github.com/louisbranch/almanac/internal/worldstate"
)

// WorldStateStore persists one world state per campaign.
type WorldStateStore interface {
	// LoadWorldState returns the persisted state for a campaign, or an
	// error with code not_found when the campaign has no saved state.
	LoadWorldState(ctx context.Context, campaignID string) (*worldstate.WorldState, error)
	// SaveWorldState writes the full state for a campaign, replacing any
	// previous save.
	SaveWorldState(ctx context.Context, campaignID string, ws *worldstate.WorldState) error
	// ListCampaigns returns the ids of all campaigns with saved state.
	ListCampaigns(ctx context.Context) ([]string, error)
	// DeleteWorldState removes a campaign's saved state.
	DeleteWorldState(ctx context.Context, campaignID string) error
}

// Store is a composite interface for almanac storage concerns.
type Store interface {
	WorldStateStore
	Close() error
}
