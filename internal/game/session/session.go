// Package session owns one player's game state: the player aggregate, the
// resource catalog, and one activity manager per skill. A Session is created
// once and handed to the tick driver and the command interpreter.
package session

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/idlegather/internal/game/activity"
	"github.com/cory-johannsen/idlegather/internal/game/dice"
	"github.com/cory-johannsen/idlegather/internal/game/player"
	"github.com/cory-johannsen/idlegather/internal/game/resource"
	"github.com/cory-johannsen/idlegather/internal/game/skill"
	"github.com/cory-johannsen/idlegather/internal/storage"
)

// Session is the explicit game state aggregate.
//
// Concurrency: a Session is not safe for concurrent use; the tick driver
// serializes every call.
type Session struct {
	player   *player.Player
	catalog  *resource.Catalog
	picker   *dice.Picker
	logger   *zap.Logger
	managers []activity.Manager
	bySkill  map[skill.Skill]activity.Manager
}

// New builds a session around p with one manager per skill.
//
// Precondition: p and catalog must be non-nil.
func New(p *player.Player, catalog *resource.Catalog, picker *dice.Picker, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{catalog: catalog, picker: picker, logger: logger}
	s.attach(p)
	return s
}

func (s *Session) attach(p *player.Player) {
	s.player = p
	s.managers = make([]activity.Manager, 0, len(skill.All()))
	s.bySkill = make(map[skill.Skill]activity.Manager, len(skill.All()))
	for _, sk := range skill.All() {
		var m activity.Manager
		if sk == skill.Firemaking {
			m = activity.NewFiremakingManager(p, s.catalog.Table(sk), s.logger)
		} else {
			m = activity.NewGatherManager(p, s.catalog.Table(sk), s.picker, s.logger)
		}
		s.managers = append(s.managers, m)
		s.bySkill[sk] = m
	}
}

// Player returns the current player.
func (s *Session) Player() *player.Player {
	return s.player
}

// Catalog returns the resource catalog.
func (s *Session) Catalog() *resource.Catalog {
	return s.catalog
}

// Manager returns the manager for sk.
func (s *Session) Manager(sk skill.Skill) (activity.Manager, bool) {
	m, ok := s.bySkill[sk]
	return m, ok
}

// Managers returns every manager in skill display order.
func (s *Session) Managers() []activity.Manager {
	out := make([]activity.Manager, len(s.managers))
	copy(out, s.managers)
	return out
}

// Focused returns the manager of the player's focused skill.
func (s *Session) Focused() (activity.Manager, bool) {
	sk, ok := s.player.ActiveSkill()
	if !ok {
		return nil, false
	}
	return s.Manager(sk)
}

// Start validates the request on sk's manager, stops the previously focused
// manager when it belongs to another skill, and starts sk on target.
//
// Postcondition: on error nothing has changed. Stopping the previous manager
// releases its focus only; a burning fire keeps burning.
func (s *Session) Start(now time.Time, sk skill.Skill, target string) ([]activity.Event, error) {
	m, ok := s.bySkill[sk]
	if !ok {
		return nil, fmt.Errorf("no manager for skill %q", sk)
	}
	if _, err := m.Check(target); err != nil {
		return nil, err
	}

	var events []activity.Event
	if prev, ok := s.Focused(); ok && prev.Skill() != sk {
		events = append(events, prev.Stop(now)...)
	}
	started, err := m.Start(now, target)
	if err != nil {
		return events, err
	}
	return append(events, started...), nil
}

// Stop stops the focused manager.
//
// Postcondition: no-op when nothing is focused; idempotent.
func (s *Session) Stop(now time.Time) []activity.Event {
	m, ok := s.Focused()
	if !ok {
		return nil
	}
	return m.Stop(now)
}

// Tick updates every manager, focused or not, and returns their events in
// skill display order.
func (s *Session) Tick(now time.Time) []activity.Event {
	var events []activity.Event
	for _, m := range s.managers {
		events = append(events, m.Update(now)...)
	}
	return events
}

// Statuses returns every manager's status at now.
func (s *Session) Statuses(now time.Time) []activity.Status {
	out := make([]activity.Status, len(s.managers))
	for i, m := range s.managers {
		out[i] = m.Status(now)
	}
	return out
}

// Snapshot returns the persisted shape of the player.
func (s *Session) Snapshot() storage.Snapshot {
	return s.player.Snapshot()
}

// Restore replaces the player with one rebuilt from snap and resets every
// manager to idle.
//
// Postcondition: no skill is focused and no activity or fire is running.
func (s *Session) Restore(snap storage.Snapshot) {
	s.attach(player.FromSnapshot(snap))
	s.logger.Info("session restored",
		zap.String("player", snap.PlayerID.String()),
		zap.Int("skills", len(snap.Skills)),
		zap.Int("items", len(snap.Inventory)),
	)
}
