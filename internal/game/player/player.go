// Package player holds the player aggregate: per-skill progress, the item
// ledger, and the single focused skill.
package player

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/idlegather/internal/game/inventory"
	"github.com/cory-johannsen/idlegather/internal/game/skill"
	"github.com/cory-johannsen/idlegather/internal/storage"
)

// Player is the single mutable aggregate root of a session.
//
// Invariant: at most one skill is focused at any time.
type Player struct {
	ID        uuid.UUID
	skills    map[skill.Skill]*Progress
	inventory *inventory.Ledger
	active    skill.Skill
}

// New creates a player with every skill at level 1 and an empty inventory.
//
// Postcondition: Level(s) == 1 and XP(s) == 0 for every s in skill.All().
func New(id uuid.UUID) *Player {
	p := &Player{
		ID:        id,
		skills:    make(map[skill.Skill]*Progress),
		inventory: inventory.NewLedger(),
	}
	for _, s := range skill.All() {
		p.skills[s] = &Progress{Level: 1}
	}
	return p
}

// Inventory returns the player's item ledger.
func (p *Player) Inventory() *inventory.Ledger {
	return p.inventory
}

// AddExperience adds amount to s and applies level-ups.
//
// Precondition: amount >= 0; negative amounts are ignored so xp never decreases.
// Postcondition: returns one LevelUp per level gained, in order.
func (p *Player) AddExperience(s skill.Skill, amount float64) []LevelUp {
	if amount < 0 {
		return nil
	}
	prog, ok := p.skills[s]
	if !ok {
		prog = &Progress{Level: 1}
		p.skills[s] = prog
	}
	prog.XP += amount
	return advance(s, prog)
}

// Level returns the level of s, defaulting to 1.
func (p *Player) Level(s skill.Skill) int {
	if prog, ok := p.skills[s]; ok {
		return prog.Level
	}
	return 1
}

// XP returns the accumulated experience of s, defaulting to 0.
func (p *Player) XP(s skill.Skill) float64 {
	if prog, ok := p.skills[s]; ok {
		return prog.XP
	}
	return 0
}

// Progress returns a copy of the progress for s.
func (p *Player) Progress(s skill.Skill) Progress {
	return Progress{Level: p.Level(s), XP: p.XP(s)}
}

// ActiveSkill returns the focused skill, if any.
func (p *Player) ActiveSkill() (skill.Skill, bool) {
	return p.active, p.active != ""
}

// SetActiveSkill focuses s, replacing any previous focus.
func (p *Player) SetActiveSkill(s skill.Skill) {
	p.active = s
}

// ClearActiveSkill removes focus.
func (p *Player) ClearActiveSkill() {
	p.active = ""
}

// ClearActiveSkillIf removes focus only when s is focused and reports whether it did.
func (p *Player) ClearActiveSkillIf(s skill.Skill) bool {
	if p.active != s {
		return false
	}
	p.active = ""
	return true
}

// Snapshot returns the persisted shape of the player.
func (p *Player) Snapshot() storage.Snapshot {
	skills := make(map[string]storage.SkillRecord, len(p.skills))
	for s, prog := range p.skills {
		skills[string(s)] = storage.SkillRecord{Level: prog.Level, XP: prog.XP}
	}
	return storage.Snapshot{
		PlayerID:  p.ID,
		Skills:    skills,
		Inventory: p.inventory.Snapshot(),
	}
}

// FromSnapshot rebuilds a player from persisted data. Missing skills default
// to level 1 with no experience and unknown skill names are ignored. A stored
// level is raised to at least the level its experience has reached, and
// non-positive quantities are dropped.
//
// Postcondition: the returned player has no focused skill.
func FromSnapshot(snap storage.Snapshot) *Player {
	p := New(snap.PlayerID)
	for name, rec := range snap.Skills {
		s, err := skill.Parse(name)
		if err != nil {
			continue
		}
		xp := rec.XP
		if xp < 0 {
			xp = 0
		}
		p.skills[s] = &Progress{Level: max(rec.Level, LevelForXP(xp)), XP: xp}
	}
	for item, qty := range snap.Inventory {
		p.inventory.Add(item, qty)
	}
	return p
}
