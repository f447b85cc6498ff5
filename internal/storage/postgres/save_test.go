package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/idlegather/internal/storage"
	"github.com/cory-johannsen/idlegather/internal/storage/postgres"
	"github.com/cory-johannsen/idlegather/internal/testutil"
)

func TestSaveRepository(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewSaveRepository(pool)
	ctx := context.Background()

	t.Run("load missing player", func(t *testing.T) {
		_, err := repo.Load(ctx, uuid.New())
		assert.True(t, errors.Is(err, storage.ErrNoSave))
	})

	t.Run("round trip", func(t *testing.T) {
		id := uuid.New()
		snap := storage.Snapshot{
			PlayerID: id,
			Skills: map[string]storage.SkillRecord{
				"Mining":  {Level: 1, XP: 35},
				"Fishing": {Level: 4, XP: 312.5},
			},
			Inventory: map[string]int{"copper_ore": 2, "raw_shrimps": 7},
		}
		require.NoError(t, repo.Save(ctx, snap))

		got, err := repo.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, snap, got)
	})

	t.Run("save replaces inventory", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, repo.Save(ctx, storage.Snapshot{
			PlayerID:  id,
			Skills:    map[string]storage.SkillRecord{"Firemaking": {Level: 1, XP: 40}},
			Inventory: map[string]int{"normal_log": 3},
		}))
		require.NoError(t, repo.Save(ctx, storage.Snapshot{
			PlayerID:  id,
			Skills:    map[string]storage.SkillRecord{"Firemaking": {Level: 2, XP: 120}},
			Inventory: map[string]int{"oak_log": 1},
		}))

		got, err := repo.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"oak_log": 1}, got.Inventory)
		assert.Equal(t, storage.SkillRecord{Level: 2, XP: 120}, got.Skills["Firemaking"])
	})

	t.Run("nil player id rejected", func(t *testing.T) {
		assert.Error(t, repo.Save(ctx, storage.Snapshot{}))
	})
}
