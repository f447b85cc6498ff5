package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/idlegather/internal/storage"
)

// SaveRepository persists player snapshots across the players,
// player_skills, and player_inventory tables. It implements storage.Store.
type SaveRepository struct {
	db *pgxpool.Pool
}

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

// Load reads the snapshot for playerID.
//
// Postcondition: Returns the snapshot or storage.ErrNoSave when the player row is absent.
func (r *SaveRepository) Load(ctx context.Context, playerID uuid.UUID) (storage.Snapshot, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT id FROM players WHERE id = $1`, playerID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Snapshot{}, storage.ErrNoSave
		}
		return storage.Snapshot{}, fmt.Errorf("querying player: %w", err)
	}

	snap := storage.Snapshot{
		PlayerID:  id,
		Skills:    make(map[string]storage.SkillRecord),
		Inventory: make(map[string]int),
	}

	rows, err := r.db.Query(ctx, `SELECT skill, level, xp FROM player_skills WHERE player_id = $1`, playerID)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("listing skills: %w", err)
	}
	for rows.Next() {
		var name string
		var rec storage.SkillRecord
		if err := rows.Scan(&name, &rec.Level, &rec.XP); err != nil {
			rows.Close()
			return storage.Snapshot{}, fmt.Errorf("scanning skill row: %w", err)
		}
		snap.Skills[name] = rec
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return storage.Snapshot{}, fmt.Errorf("listing skills: %w", err)
	}

	rows, err = r.db.Query(ctx, `SELECT item_id, quantity FROM player_inventory WHERE player_id = $1`, playerID)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item string
		var qty int
		if err := rows.Scan(&item, &qty); err != nil {
			return storage.Snapshot{}, fmt.Errorf("scanning inventory row: %w", err)
		}
		snap.Inventory[item] = qty
	}
	return snap, rows.Err()
}

// Save writes snap in a single transaction: the player row is upserted,
// skills are upserted, and the inventory is replaced.
//
// Precondition: snap.PlayerID must not be uuid.Nil.
// Postcondition: On error nothing is committed.
func (r *SaveRepository) Save(ctx context.Context, snap storage.Snapshot) error {
	if snap.PlayerID == uuid.Nil {
		return errors.New("postgres: snapshot player ID must be set")
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO players (id) VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET updated_at = NOW()`,
		snap.PlayerID,
	); err != nil {
		return fmt.Errorf("upserting player: %w", err)
	}

	batch := &pgx.Batch{}
	for name, rec := range snap.Skills {
		batch.Queue(`
			INSERT INTO player_skills (player_id, skill, level, xp)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (player_id, skill) DO UPDATE SET level = EXCLUDED.level, xp = EXCLUDED.xp`,
			snap.PlayerID, name, rec.Level, rec.XP,
		)
	}
	batch.Queue(`DELETE FROM player_inventory WHERE player_id = $1`, snap.PlayerID)
	for item, qty := range snap.Inventory {
		if qty <= 0 {
			continue
		}
		batch.Queue(`INSERT INTO player_inventory (player_id, item_id, quantity) VALUES ($1, $2, $3)`,
			snap.PlayerID, item, qty)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("writing save rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}
