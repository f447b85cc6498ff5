// Package storage defines the persistence contract for player saves.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNoSave is returned by Load when no save exists for the player.
var ErrNoSave = errors.New("no save data found")

// ErrCorruptSave is returned by Load when a save exists but cannot be decoded.
var ErrCorruptSave = errors.New("save data is corrupt")

// SkillRecord is the persisted progress of one skill.
type SkillRecord struct {
	Level int     `json:"level"`
	XP    float64 `json:"xp"`
}

// Snapshot is the persisted shape of a player: skills keyed by skill name and
// inventory keyed by item ID.
type Snapshot struct {
	PlayerID  uuid.UUID              `json:"player_id"`
	Skills    map[string]SkillRecord `json:"skills"`
	Inventory map[string]int         `json:"inventory"`
}

// Store loads and saves player snapshots.
type Store interface {
	// Load returns the snapshot for playerID, ErrNoSave, or ErrCorruptSave.
	Load(ctx context.Context, playerID uuid.UUID) (Snapshot, error)
	// Save replaces the stored snapshot for snap.PlayerID.
	Save(ctx context.Context, snap Snapshot) error
}
