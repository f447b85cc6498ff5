// Package savefile persists player snapshots as JSON files, one per player.
package savefile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/idlegather/internal/storage"
)

// Store is a storage.Store backed by a directory of JSON files.
type Store struct {
	mu      sync.Mutex
	dataDir string
}

// New creates a Store rooted at dataDir, creating the directory if needed.
//
// Precondition: dataDir must be non-empty.
// Postcondition: Returns a usable Store or a non-nil error.
func New(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, errors.New("savefile: data directory must not be empty")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating save directory: %w", err)
	}
	return &Store{dataDir: dataDir}, nil
}

// Path returns the file a player's save is written to.
func (s *Store) Path(playerID uuid.UUID) string {
	return filepath.Join(s.dataDir, playerID.String()+".json")
}

// Load reads the save for playerID.
//
// Postcondition: Returns the snapshot, storage.ErrNoSave when the file is
// absent, or storage.ErrCorruptSave when it cannot be decoded.
func (s *Store) Load(ctx context.Context, playerID uuid.UUID) (storage.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path(playerID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.Snapshot{}, storage.ErrNoSave
		}
		return storage.Snapshot{}, fmt.Errorf("reading save: %w", err)
	}

	var snap storage.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return storage.Snapshot{}, fmt.Errorf("decoding %s: %w: %v", s.Path(playerID), storage.ErrCorruptSave, err)
	}
	if snap.Skills == nil {
		snap.Skills = make(map[string]storage.SkillRecord)
	}
	if snap.Inventory == nil {
		snap.Inventory = make(map[string]int)
	}
	snap.PlayerID = playerID
	return snap, nil
}

// Save writes snap to disk. The file is replaced atomically through a
// temporary file in the same directory.
//
// Precondition: snap.PlayerID must not be uuid.Nil.
func (s *Store) Save(ctx context.Context, snap storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.PlayerID == uuid.Nil {
		return errors.New("savefile: snapshot player ID must be set")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding save: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, ".save-*.json")
	if err != nil {
		return fmt.Errorf("creating temp save: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp save: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(snap.PlayerID)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing save: %w", err)
	}
	return nil
}
