// Package app assembles a playable game from configuration. Both the console
// and Telnet binaries build their engine here.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/idlegather/internal/config"
	"github.com/cory-johannsen/idlegather/internal/game/dice"
	"github.com/cory-johannsen/idlegather/internal/game/player"
	"github.com/cory-johannsen/idlegather/internal/game/resource"
	"github.com/cory-johannsen/idlegather/internal/game/session"
	"github.com/cory-johannsen/idlegather/internal/gameserver"
	"github.com/cory-johannsen/idlegather/internal/scripting"
	"github.com/cory-johannsen/idlegather/internal/storage"
	"github.com/cory-johannsen/idlegather/internal/storage/postgres"
	"github.com/cory-johannsen/idlegather/internal/storage/savefile"
)

// DotEnvFiles are read, when present, before configuration is loaded.
var DotEnvFiles = []string{".env.local", ".env"}

// LoadConfig loads dotenv files and then the YAML file at path. An empty
// path runs on defaults plus IDLE_* environment overrides.
//
// Postcondition: Returns a validated Config or a non-nil error.
func LoadConfig(path string) (config.Config, error) {
	if err := config.LoadDotEnv(DotEnvFiles...); err != nil {
		return config.Config{}, err
	}
	if path == "" {
		return config.LoadFromViper(config.Defaults())
	}
	return config.Load(path)
}

// Game is an assembled, booted engine plus the resources it holds open.
type Game struct {
	Engine  *gameserver.Engine
	pool    *postgres.Pool
	closers []func()
}

// Pool returns the database pool, or nil when saves go to files.
func (g *Game) Pool() *postgres.Pool {
	return g.pool
}

// Close releases the store and the Lua VM.
func (g *Game) Close() {
	for i := len(g.closers) - 1; i >= 0; i-- {
		g.closers[i]()
	}
	g.closers = nil
}

// Build wires the catalog, random source, store, and scripts into an engine
// and boots the player's save.
//
// Precondition: cfg must be validated; logger must be non-nil.
// Postcondition: Returns a booted Game the caller must Close, or a non-nil error.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Game, error) {
	start := time.Now()
	g := &Game{}

	playerID, err := uuid.Parse(cfg.Game.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("parsing game.player_id: %w", err)
	}

	catalog, err := loadCatalog(cfg.Game.ContentDir)
	if err != nil {
		return nil, err
	}

	var src dice.Source
	if cfg.Game.RandomSeed != 0 {
		src = dice.NewSeededSource(cfg.Game.RandomSeed)
	} else {
		src = dice.NewCryptoSource()
	}
	picker := dice.NewPicker(src, logger)

	store, err := g.openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var scripts *scripting.Manager
	if cfg.Game.ScriptDir != "" {
		scripts = scripting.NewManager(logger)
		if err := scripts.LoadDir(cfg.Game.ScriptDir, scripting.DefaultInstructionLimit); err != nil {
			g.Close()
			return nil, fmt.Errorf("loading scripts: %w", err)
		}
		g.closers = append(g.closers, scripts.Close)
	}

	sess := session.New(player.New(playerID), catalog, picker, logger)
	engine := gameserver.NewEngine(cfg.Game, playerID, sess, store, scripts, logger)
	if err := engine.Boot(ctx); err != nil {
		g.Close()
		return nil, err
	}
	g.Engine = engine

	logger.Info("game assembled",
		zap.String("player_id", playerID.String()),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("scripting", scripts != nil),
		zap.Duration("elapsed", time.Since(start)),
	)
	return g, nil
}

func loadCatalog(dir string) (*resource.Catalog, error) {
	if dir == "" {
		return resource.DefaultCatalog(), nil
	}
	catalog, err := resource.LoadCatalog(dir)
	if err != nil {
		return nil, fmt.Errorf("loading resource tables: %w", err)
	}
	return catalog, nil
}

func (g *Game) openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "file":
		store, err := savefile.New(cfg.Storage.SavePath)
		if err != nil {
			return nil, fmt.Errorf("opening save directory: %w", err)
		}
		return store, nil
	case "postgres":
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		g.pool = pool
		g.closers = append(g.closers, pool.Close)
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		return postgres.NewSaveRepository(pool.DB()), nil
	default:
		return nil, errors.New("unknown storage backend " + cfg.Storage.Backend)
	}
}
