// Package resource holds the immutable tables of harvestable nodes: trees,
// rocks, fishing spots, and burnable logs.
package resource

import (
	"fmt"
	"strings"
	"time"

	"github.com/cory-johannsen/idlegather/internal/game/skill"
)

// Outcome is one weighted result of a multi-outcome node.
type Outcome struct {
	ItemID   string
	LevelReq int
	XP       float64
	Weight   float64
}

// Node describes one harvestable target.
//
// For gathering nodes Interval is the respawn time between yields; for
// firemaking nodes it is the burn duration and ItemID is the consumed log.
type Node struct {
	ID       string
	Name     string
	Skill    skill.Skill
	LevelReq int
	XP       float64
	ItemID   string
	Interval time.Duration
	// Outcomes, when non-empty, replaces ItemID/XP with a weighted draw.
	Outcomes []Outcome
}

// Weighted reports whether the node resolves yields through Outcomes.
func (n *Node) Weighted() bool {
	return len(n.Outcomes) > 0
}

// Catchable returns the outcomes available at level, preserving order.
//
// Postcondition: every returned outcome has LevelReq <= level.
func (n *Node) Catchable(level int) []Outcome {
	out := make([]Outcome, 0, len(n.Outcomes))
	for _, o := range n.Outcomes {
		if o.LevelReq <= level {
			out = append(out, o)
		}
	}
	return out
}

// Validate checks that the node satisfies the table invariants.
//
// Precondition: n must not be nil.
// Postcondition: Returns nil iff the node is usable by an activity manager.
func (n *Node) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("resource node: id must not be empty")
	}
	if n.Name == "" {
		return fmt.Errorf("resource node %q: name must not be empty", n.ID)
	}
	if !n.Skill.Valid() {
		return fmt.Errorf("resource node %q: unknown skill %q", n.ID, n.Skill)
	}
	if n.LevelReq < 1 {
		return fmt.Errorf("resource node %q: level must be >= 1", n.ID)
	}
	if n.Interval <= 0 {
		return fmt.Errorf("resource node %q: interval must be > 0", n.ID)
	}
	if n.XP < 0 {
		return fmt.Errorf("resource node %q: xp must be >= 0", n.ID)
	}
	if !n.Weighted() && n.ItemID == "" {
		return fmt.Errorf("resource node %q: item must not be empty", n.ID)
	}
	if n.Skill == skill.Firemaking {
		if n.Weighted() {
			return fmt.Errorf("resource node %q: firemaking nodes cannot have outcomes", n.ID)
		}
		if n.ID != n.ItemID {
			return fmt.Errorf("resource node %q: firemaking node id must equal the consumed item %q", n.ID, n.ItemID)
		}
	}
	for i, o := range n.Outcomes {
		if o.ItemID == "" {
			return fmt.Errorf("resource node %q: outcome %d item must not be empty", n.ID, i)
		}
		if o.LevelReq < 1 {
			return fmt.Errorf("resource node %q: outcome %q level must be >= 1", n.ID, o.ItemID)
		}
		if o.XP < 0 {
			return fmt.Errorf("resource node %q: outcome %q xp must be >= 0", n.ID, o.ItemID)
		}
		if o.Weight <= 0 {
			return fmt.Errorf("resource node %q: outcome %q weight must be > 0", n.ID, o.ItemID)
		}
	}
	return nil
}

// Slug converts a display name into an identifier: "Oak Tree" becomes "oak_tree".
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}
