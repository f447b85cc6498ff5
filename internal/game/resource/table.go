package resource

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/idlegather/internal/game/skill"
)

// Table is the ordered set of nodes for one skill. It is immutable after construction.
type Table struct {
	skill skill.Skill
	nodes []*Node
	index map[string]*Node
}

// NewTable builds a table for s from nodes, validating each.
//
// Precondition: every node's Skill must equal s.
// Postcondition: Returns a table or an error naming the first invalid or duplicate node.
func NewTable(s skill.Skill, nodes []*Node) (*Table, error) {
	t := &Table{skill: s, index: make(map[string]*Node, len(nodes)*2)}
	for _, n := range nodes {
		if err := n.Validate(); err != nil {
			return nil, err
		}
		if n.Skill != s {
			return nil, fmt.Errorf("resource node %q belongs to %s, not %s", n.ID, n.Skill, s)
		}
		for _, key := range []string{normalize(n.ID), normalize(n.Name)} {
			if prev, ok := t.index[key]; ok && prev != n {
				return nil, fmt.Errorf("%s table: duplicate node key %q", s, key)
			}
			t.index[key] = n
		}
		t.nodes = append(t.nodes, n)
	}
	return t, nil
}

// Skill returns the skill the table serves.
func (t *Table) Skill() skill.Skill {
	return t.skill
}

// Nodes returns the nodes in table order.
func (t *Table) Nodes() []*Node {
	out := make([]*Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Lookup resolves name against node names and IDs. Matching ignores case and
// treats spaces and underscores alike.
func (t *Table) Lookup(name string) (*Node, bool) {
	n, ok := t.index[normalize(name)]
	return n, ok
}

// Names returns node display names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.Name
	}
	return out
}

// Available returns the nodes whose level requirement is met at level.
func (t *Table) Available(level int) []*Node {
	var out []*Node
	for _, n := range t.nodes {
		if n.LevelReq <= level {
			out = append(out, n)
		}
	}
	return out
}

// MinInterval returns the shortest node interval, or 0 for an empty table.
func (t *Table) MinInterval() time.Duration {
	var min time.Duration
	for _, n := range t.nodes {
		if min == 0 || n.Interval < min {
			min = n.Interval
		}
	}
	return min
}

func normalize(s string) string {
	return Slug(s)
}
