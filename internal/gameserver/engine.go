// Package gameserver drives a game session: it owns the tick loop, executes
// player commands between ticks, and persists progress.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/idlegather/internal/config"
	"github.com/cory-johannsen/idlegather/internal/game/command"
	"github.com/cory-johannsen/idlegather/internal/game/session"
	"github.com/cory-johannsen/idlegather/internal/scripting"
	"github.com/cory-johannsen/idlegather/internal/storage"
)

// ErrStopped is returned by Submit once the engine loop has exited.
var ErrStopped = errors.New("engine stopped")

// saveTimeout bounds saves made outside a caller's context.
const saveTimeout = 5 * time.Second

// Response is the rendered reply to one command line.
type Response struct {
	Lines []string
	// Quit asks the connection to close.
	Quit bool
}

type request struct {
	line  string
	reply chan Response
}

// Engine serializes ticks, autosaves, and commands on a single goroutine so
// the session is never touched concurrently.
type Engine struct {
	cfg      config.GameConfig
	sess     *session.Session
	store    storage.Store
	playerID uuid.UUID
	registry *command.Registry
	scripts  *scripting.Manager
	hub      *Hub
	logger   *zap.Logger

	now      func() time.Time
	requests chan request
	done     chan struct{}
}

// NewEngine creates an Engine around sess.
//
// Precondition: sess, store, and logger must be non-nil; scripts may be nil.
// Postcondition: Returns an Engine ready for Boot and Run.
func NewEngine(cfg config.GameConfig, playerID uuid.UUID, sess *session.Session, store storage.Store, scripts *scripting.Manager, logger *zap.Logger) *Engine {
	if sess == nil || store == nil || logger == nil {
		panic("gameserver.NewEngine: sess, store, and logger must be non-nil")
	}
	return &Engine{
		cfg:      cfg,
		sess:     sess,
		store:    store,
		playerID: playerID,
		registry: command.DefaultRegistry(),
		scripts:  scripts,
		hub:      NewHub(),
		logger:   logger,
		now:      time.Now,
		requests: make(chan request),
		done:     make(chan struct{}),
	}
}

// SetClock replaces the wall clock. Tests use it to drive time explicitly.
//
// Precondition: must be called before Run.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Session returns the engine's session. Only safe to use while Run is not executing.
func (e *Engine) Session() *session.Session {
	return e.sess
}

// Boot loads the player's save into the session. A missing or unreadable
// save leaves the fresh player in place.
//
// Postcondition: Returns an error only when the store itself fails.
func (e *Engine) Boot(ctx context.Context) error {
	snap, err := e.store.Load(ctx, e.playerID)
	switch {
	case err == nil:
		e.sess.Restore(snap)
		e.logger.Info("save loaded", zap.String("player", e.playerID.String()))
		return nil
	case errors.Is(err, storage.ErrNoSave):
		e.logger.Info("no save found; starting a new game", zap.String("player", e.playerID.String()))
		return nil
	case errors.Is(err, storage.ErrCorruptSave):
		e.logger.Warn("save unreadable; starting a new game",
			zap.String("player", e.playerID.String()),
			zap.Error(err),
		)
		return nil
	default:
		return fmt.Errorf("loading save for %s: %w", e.playerID, err)
	}
}

// Run owns the session until ctx is cancelled: it ticks every manager on
// game.tick_interval, autosaves on game.autosave_interval, and executes
// submitted commands in between.
//
// Postcondition: the session is saved on exit when game.save_on_quit is set.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)

	if minInterval := e.sess.Catalog().MinInterval(); minInterval > 0 && e.cfg.TickInterval > minInterval {
		e.logger.Warn("tick interval exceeds the shortest node interval; yields will be delayed",
			zap.Duration("tick_interval", e.cfg.TickInterval),
			zap.Duration("min_interval", minInterval),
		)
	}

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	var autosave <-chan time.Time
	if e.cfg.AutosaveInterval > 0 {
		t := time.NewTicker(e.cfg.AutosaveInterval)
		defer t.Stop()
		autosave = t.C
	}

	e.logger.Info("engine running",
		zap.Duration("tick_interval", e.cfg.TickInterval),
		zap.Duration("autosave_interval", e.cfg.AutosaveInterval),
	)

	for {
		select {
		case <-ctx.Done():
			if e.cfg.SaveOnQuit {
				if err := e.save(); err != nil {
					e.logger.Error("saving on shutdown", zap.Error(err))
				}
			}
			e.logger.Info("engine stopped")
			return nil
		case <-ticker.C:
			if lines := e.Tick(e.now()); len(lines) > 0 {
				e.hub.Publish(lines)
			}
		case <-autosave:
			if err := e.save(); err != nil {
				e.logger.Error("autosave failed", zap.Error(err))
			}
		case req := <-e.requests:
			req.reply <- e.Execute(e.now(), req.line)
		}
	}
}

// Submit hands line to the Run loop and waits for its response.
//
// Postcondition: Returns ErrStopped if Run has exited, or ctx.Err().
func (e *Engine) Submit(ctx context.Context, line string) (Response, error) {
	req := request{line: line, reply: make(chan Response, 1)}
	select {
	case e.requests <- req:
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-e.done:
		return Response{}, ErrStopped
	}
	select {
	case resp := <-req.reply:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Handle adapts Submit to the line-session contract.
func (e *Engine) Handle(ctx context.Context, line string) ([]string, bool, error) {
	resp, err := e.Submit(ctx, line)
	return resp.Lines, resp.Quit, err
}

// Subscribe registers for rendered tick notices.
func (e *Engine) Subscribe(buffer int) (<-chan []string, func()) {
	return e.hub.Subscribe(buffer)
}

// Tick updates every manager and renders the resulting events.
//
// Precondition: must not run concurrently with Execute.
func (e *Engine) Tick(now time.Time) []string {
	return e.render(e.sess.Tick(now))
}

func (e *Engine) save() error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	snap := e.sess.Snapshot()
	snap.PlayerID = e.playerID
	if err := e.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("saving %s: %w", e.playerID, err)
	}
	e.logger.Info("game saved",
		zap.String("player", e.playerID.String()),
		zap.Int("items", len(snap.Inventory)),
	)
	return nil
}

func (e *Engine) load() error {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	snap, err := e.store.Load(ctx, e.playerID)
	if err != nil {
		return err
	}
	e.sess.Restore(snap)
	return nil
}
