package player

import (
	"math"

	"github.com/cory-johannsen/idlegather/internal/game/skill"
)

// XPPerLevel scales the linear level threshold.
const XPPerLevel = 100

// Progress is the level and accumulated experience of one skill.
type Progress struct {
	Level int
	XP    float64
}

// LevelUp records one level gained by a skill.
type LevelUp struct {
	Skill skill.Skill
	Level int
}

// Threshold returns the experience needed to advance past level.
//
// Postcondition: Threshold(level) == level * XPPerLevel.
func Threshold(level int) float64 {
	return float64(level * XPPerLevel)
}

// LevelForXP returns the level the incremental rule settles on when starting
// from level 1 with xp experience.
//
// Precondition: xp >= 0.
// Postcondition: result >= 1.
func LevelForXP(xp float64) int {
	if xp <= 0 {
		return 1
	}
	level := int(math.Floor(xp/XPPerLevel)) + 1
	// Correct for division rounding at exact boundaries.
	for xp >= Threshold(level) {
		level++
	}
	for level > 1 && xp < Threshold(level-1) {
		level--
	}
	return level
}

// advance applies the threshold loop to p and returns the levels gained.
func advance(s skill.Skill, p *Progress) []LevelUp {
	var ups []LevelUp
	for p.XP >= Threshold(p.Level) {
		p.Level++
		ups = append(ups, LevelUp{Skill: s, Level: p.Level})
	}
	return ups
}
