package activity

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/idlegather/internal/game/player"
	"github.com/cory-johannsen/idlegather/internal/game/resource"
	"github.com/cory-johannsen/idlegather/internal/game/skill"
)

// FiremakingManager burns one log at a time. Experience and the log are
// taken upfront at Start; the burn timer then runs independently of focus.
type FiremakingManager struct {
	player *player.Player
	table  *resource.Table
	logger *zap.Logger

	burning    bool
	log        *resource.Node
	burnEndsAt time.Time
}

// NewFiremakingManager creates an idle firemaking manager.
//
// Precondition: p must be non-nil; table must be the firemaking table.
func NewFiremakingManager(p *player.Player, table *resource.Table, logger *zap.Logger) *FiremakingManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FiremakingManager{player: p, table: table, logger: logger}
}

// Skill returns skill.Firemaking.
func (m *FiremakingManager) Skill() skill.Skill {
	return skill.Firemaking
}

// Check validates lighting target without consuming anything.
//
// Postcondition: returns the log node, or ErrUnknownTarget,
// ErrInsufficientLevel, ErrInsufficientInventory, or ErrAlreadyActive while a
// fire is still burning.
func (m *FiremakingManager) Check(target string) (*resource.Node, error) {
	n, ok := m.table.Lookup(target)
	if !ok {
		return nil, fmt.Errorf("%q is not a burnable log: %w", target, ErrUnknownTarget)
	}
	if lvl := m.player.Level(skill.Firemaking); lvl < n.LevelReq {
		return nil, fmt.Errorf("you need level %d Firemaking to burn %s (you have %d): %w", n.LevelReq, n.Name, lvl, ErrInsufficientLevel)
	}
	if !m.player.Inventory().Has(n.ItemID, 1) {
		return nil, fmt.Errorf("you don't have any %s: %w", n.Name, ErrInsufficientInventory)
	}
	if m.burning {
		return nil, fmt.Errorf("a %s fire is still burning: %w", m.log.Name, ErrAlreadyActive)
	}
	return n, nil
}

// Start consumes one log, grants its experience immediately, lights the fire,
// and focuses Firemaking.
//
// Postcondition: on success inventory holds one fewer log and XP has grown by
// the node's XP before any Update. On error nothing changes.
func (m *FiremakingManager) Start(now time.Time, target string) ([]Event, error) {
	n, err := m.Check(target)
	if err != nil {
		return nil, err
	}
	if err := m.player.Inventory().Remove(n.ItemID, 1); err != nil {
		return nil, fmt.Errorf("burning %s: %v: %w", n.Name, err, ErrInsufficientInventory)
	}
	ups := m.player.AddExperience(skill.Firemaking, n.XP)
	m.burning = true
	m.log = n
	m.burnEndsAt = now.Add(n.Interval)
	m.player.SetActiveSkill(skill.Firemaking)

	m.logger.Info("fire lit",
		zap.String("skill", skill.Firemaking.String()),
		zap.String("item", n.ItemID),
		zap.Float64("xp", n.XP),
		zap.Duration("burn", n.Interval),
	)
	for _, u := range ups {
		m.logger.Info("level up", zap.String("skill", u.Skill.String()), zap.Int("level", u.Level))
	}

	events := []Event{{
		Kind:     EventFireLit,
		Skill:    skill.Firemaking,
		Target:   n.Name,
		ItemID:   n.ItemID,
		Quantity: 1,
		XP:       n.XP,
		Wait:     n.Interval,
	}}
	return append(events, levelUpEvents(ups)...), nil
}

// Stop releases focus if Firemaking holds it. The fire keeps burning.
//
// Postcondition: idempotent; the burn timer is unaffected.
func (m *FiremakingManager) Stop(now time.Time) []Event {
	if !m.player.ClearActiveSkillIf(skill.Firemaking) {
		return nil
	}
	ev := Event{Kind: EventStopped, Skill: skill.Firemaking}
	if m.burning {
		ev.Target = m.log.Name
		ev.Wait = remaining(now, m.burnEndsAt)
	}
	return []Event{ev}
}

// Update puts the fire out once its burn time has elapsed.
//
// Postcondition: no XP or items are granted at expiry. Focus is cleared only
// if Firemaking still holds it.
func (m *FiremakingManager) Update(now time.Time) []Event {
	if !m.burning || now.Before(m.burnEndsAt) {
		return nil
	}
	m.burning = false
	m.player.ClearActiveSkillIf(skill.Firemaking)
	m.logger.Info("fire out", zap.String("item", m.log.ItemID))
	return []Event{{Kind: EventFireOut, Skill: skill.Firemaking, Target: m.log.Name, ItemID: m.log.ItemID}}
}

// Status reports the fire state at now.
func (m *FiremakingManager) Status(now time.Time) Status {
	focused, _ := m.player.ActiveSkill()
	st := Status{
		Skill:   skill.Firemaking,
		Active:  m.burning,
		Focused: focused == skill.Firemaking,
		ReadyAt: m.burnEndsAt,
		Phase:   PhaseIdle,
	}
	if m.log != nil {
		st.Target = m.log.Name
	}
	if m.burning {
		st.Remaining = remaining(now, m.burnEndsAt)
		st.Phase = PhaseBurning
	}
	return st
}
