package activity

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/idlegather/internal/game/dice"
	"github.com/cory-johannsen/idlegather/internal/game/player"
	"github.com/cory-johannsen/idlegather/internal/game/resource"
	"github.com/cory-johannsen/idlegather/internal/game/skill"
)

// GatherManager is the gather-and-respawn state machine shared by
// woodcutting, mining, and fishing. Nodes with weighted outcomes draw one
// outcome per yield through the injected Picker.
//
// Invariant: when active, target is non-nil.
type GatherManager struct {
	player *player.Player
	table  *resource.Table
	picker *dice.Picker
	logger *zap.Logger

	active  bool
	target  *resource.Node
	readyAt time.Time
}

// NewGatherManager creates an idle manager for table's skill.
//
// Precondition: p and table must be non-nil; table must not be the firemaking
// table. A nil picker falls back to a crypto-backed source.
func NewGatherManager(p *player.Player, table *resource.Table, picker *dice.Picker, logger *zap.Logger) *GatherManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if picker == nil {
		picker = dice.NewPicker(dice.NewCryptoSource(), logger)
	}
	return &GatherManager{player: p, table: table, picker: picker, logger: logger}
}

// Skill returns the skill this manager trains.
func (m *GatherManager) Skill() skill.Skill {
	return m.table.Skill()
}

// Check validates a start request on target.
//
// Postcondition: returns the node, or ErrUnknownTarget, ErrInsufficientLevel,
// ErrNothingCatchable (weighted nodes whose outcomes are all above the current
// level), or ErrAlreadyActive (only when already running on the same node).
func (m *GatherManager) Check(target string) (*resource.Node, error) {
	n, ok := m.table.Lookup(target)
	if !ok {
		return nil, fmt.Errorf("no %s target named %q: %w", m.Skill(), target, ErrUnknownTarget)
	}
	lvl := m.player.Level(m.Skill())
	if lvl < n.LevelReq {
		return nil, fmt.Errorf("you need level %d %s for %s (you have %d): %w", n.LevelReq, m.Skill(), n.Name, lvl, ErrInsufficientLevel)
	}
	if n.Weighted() && len(n.Catchable(lvl)) == 0 {
		return nil, fmt.Errorf("you need a higher %s level for anything at %s: %w", m.Skill(), n.Name, ErrNothingCatchable)
	}
	if m.active && m.target == n {
		return nil, fmt.Errorf("already working %s: %w", n.Name, ErrAlreadyActive)
	}
	return n, nil
}

// Start begins gathering target and focuses this skill.
//
// Postcondition: on success the manager is active on target and the deadline
// is zeroed, so the first yield is due on the next Update. On error nothing
// changes.
func (m *GatherManager) Start(now time.Time, target string) ([]Event, error) {
	n, err := m.Check(target)
	if err != nil {
		return nil, err
	}
	m.readyAt = time.Time{}
	m.active = true
	m.target = n
	m.player.SetActiveSkill(m.Skill())

	m.logger.Info("activity started",
		zap.String("skill", m.Skill().String()),
		zap.String("target", n.Name),
	)
	return []Event{{Kind: EventStarted, Skill: m.Skill(), Target: n.Name, Wait: remaining(now, m.readyAt)}}, nil
}

// Stop deactivates the manager and releases focus if this skill holds it.
// Target and deadline are retained for Status until the next Start.
//
// Postcondition: idempotent; a second call returns no events.
func (m *GatherManager) Stop(now time.Time) []Event {
	if !m.active {
		return nil
	}
	m.active = false
	m.player.ClearActiveSkillIf(m.Skill())
	m.logger.Info("activity stopped",
		zap.String("skill", m.Skill().String()),
		zap.String("target", m.target.Name),
	)
	return []Event{{Kind: EventStopped, Skill: m.Skill(), Target: m.target.Name}}
}

// Update grants one yield when the deadline has passed and reschedules.
//
// Postcondition: no-op while inactive or while now is before the deadline.
// Otherwise exactly one XP grant and one item unit are applied and the
// deadline becomes now + node interval. A weighted node with no outcome at
// the current level stops the manager and reports EventNothingCatchable.
// Check already refuses such nodes; the guard keeps Pick off an empty list.
func (m *GatherManager) Update(now time.Time) []Event {
	if !m.active || now.Before(m.readyAt) {
		return nil
	}
	n := m.target

	itemID, xp := n.ItemID, n.XP
	if n.Weighted() {
		catchable := n.Catchable(m.player.Level(m.Skill()))
		if len(catchable) == 0 {
			m.active = false
			m.player.ClearActiveSkillIf(m.Skill())
			m.logger.Info("nothing catchable",
				zap.String("skill", m.Skill().String()),
				zap.String("target", n.Name),
			)
			return []Event{{Kind: EventNothingCatchable, Skill: m.Skill(), Target: n.Name}}
		}
		weights := make([]float64, len(catchable))
		for i, o := range catchable {
			weights[i] = o.Weight
		}
		idx, err := m.picker.Pick(n.Name, weights)
		if err != nil {
			m.logger.Error("selecting outcome", zap.String("target", n.Name), zap.Error(err))
			return nil
		}
		itemID, xp = catchable[idx].ItemID, catchable[idx].XP
	}

	ups := m.player.AddExperience(m.Skill(), xp)
	m.player.Inventory().Add(itemID, 1)
	m.readyAt = now.Add(n.Interval)

	m.logger.Debug("yield",
		zap.String("skill", m.Skill().String()),
		zap.String("target", n.Name),
		zap.String("item", itemID),
		zap.Float64("xp", xp),
	)
	for _, u := range ups {
		m.logger.Info("level up", zap.String("skill", u.Skill.String()), zap.Int("level", u.Level))
	}

	events := []Event{{
		Kind:     EventYield,
		Skill:    m.Skill(),
		Target:   n.Name,
		ItemID:   itemID,
		Quantity: 1,
		XP:       xp,
		Wait:     n.Interval,
	}}
	return append(events, levelUpEvents(ups)...)
}

// Status reports the manager state at now.
func (m *GatherManager) Status(now time.Time) Status {
	focused, _ := m.player.ActiveSkill()
	st := Status{
		Skill:   m.Skill(),
		Active:  m.active,
		Focused: focused == m.Skill(),
		ReadyAt: m.readyAt,
		Phase:   PhaseIdle,
	}
	if m.target != nil {
		st.Target = m.target.Name
	}
	if m.active {
		st.Remaining = remaining(now, m.readyAt)
		st.Phase = PhaseReady
		if st.Remaining > 0 {
			st.Phase = PhaseWaiting
		}
	}
	return st
}
