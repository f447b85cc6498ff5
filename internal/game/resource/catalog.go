package resource

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/idlegather/internal/game/inventory"
	"github.com/cory-johannsen/idlegather/internal/game/skill"
)

// Catalog holds one Table per skill.
type Catalog struct {
	tables map[skill.Skill]*Table
}

// NewCatalog assembles a catalog from tables.
//
// Postcondition: Returns an error if any skill in skill.All() has no table or
// an empty one.
func NewCatalog(tables ...*Table) (*Catalog, error) {
	c := &Catalog{tables: make(map[skill.Skill]*Table, len(tables))}
	for _, t := range tables {
		if _, dup := c.tables[t.Skill()]; dup {
			return nil, fmt.Errorf("catalog: duplicate %s table", t.Skill())
		}
		c.tables[t.Skill()] = t
	}
	for _, s := range skill.All() {
		if t, ok := c.tables[s]; !ok || len(t.nodes) == 0 {
			return nil, fmt.Errorf("catalog: no %s nodes", s)
		}
	}
	return c, nil
}

// Table returns the table for s.
func (c *Catalog) Table(s skill.Skill) *Table {
	return c.tables[s]
}

// MinInterval returns the shortest interval across every table.
func (c *Catalog) MinInterval() time.Duration {
	var min time.Duration
	for _, t := range c.tables {
		if m := t.MinInterval(); m > 0 && (min == 0 || m < min) {
			min = m
		}
	}
	return min
}

func sec(n float64) time.Duration {
	return time.Duration(n * float64(time.Second))
}

func gather(s skill.Skill, name string, level int, xp float64, item string, respawn float64) *Node {
	return &Node{ID: Slug(name), Name: name, Skill: s, LevelReq: level, XP: xp, ItemID: item, Interval: sec(respawn)}
}

func spot(name string, level int, respawn float64, outcomes ...Outcome) *Node {
	return &Node{ID: Slug(name), Name: name, Skill: skill.Fishing, LevelReq: level, Interval: sec(respawn), Outcomes: outcomes}
}

func burnable(item string, level int, xp float64, burn float64) *Node {
	return &Node{ID: item, Name: inventory.DisplayName(item), Skill: skill.Firemaking, LevelReq: level, XP: xp, ItemID: item, Interval: sec(burn)}
}

// DefaultCatalog returns the built-in tables.
func DefaultCatalog() *Catalog {
	wc := skill.Woodcutting
	trees := []*Node{
		gather(wc, "Normal Tree", 1, 25, "normal_log", 5),
		gather(wc, "Oak Tree", 15, 37.5, "oak_log", 8),
		gather(wc, "Willow Tree", 30, 67.5, "willow_log", 12),
		gather(wc, "Teak Tree", 35, 85, "teak_log", 15),
		gather(wc, "Maple Tree", 45, 100, "maple_log", 20),
		gather(wc, "Mahogany Tree", 50, 125, "mahogany_log", 25),
		gather(wc, "Yew Tree", 60, 175, "yew_log", 30),
	}
	mn := skill.Mining
	rocks := []*Node{
		gather(mn, "Copper Ore", 1, 17.5, "copper_ore", 3),
		gather(mn, "Tin Ore", 1, 17.5, "tin_ore", 3),
		gather(mn, "Iron Ore", 15, 35, "iron_ore", 6),
		gather(mn, "Coal Ore", 30, 50, "coal_ore", 10),
		gather(mn, "Gold Ore", 40, 65, "gold_ore", 15),
		gather(mn, "Mithril Ore", 55, 80, "mithril_ore", 25),
	}
	spots := []*Node{
		spot("Netting Spot", 1, 2,
			Outcome{ItemID: "raw_shrimps", LevelReq: 1, XP: 10, Weight: 0.8},
			Outcome{ItemID: "raw_anchovies", LevelReq: 1, XP: 15, Weight: 0.2}),
		spot("Baiting Spot", 5, 3,
			Outcome{ItemID: "raw_sardine", LevelReq: 5, XP: 20, Weight: 0.7},
			Outcome{ItemID: "raw_herring", LevelReq: 10, XP: 30, Weight: 0.3}),
		spot("Fly Fishing River", 20, 4,
			Outcome{ItemID: "raw_trout", LevelReq: 20, XP: 50, Weight: 0.6},
			Outcome{ItemID: "raw_salmon", LevelReq: 30, XP: 70, Weight: 0.4}),
		spot("Lobster Pot Spot", 40, 7,
			Outcome{ItemID: "raw_lobster", LevelReq: 40, XP: 90, Weight: 1.0}),
		spot("Harpoon Spot", 35, 8,
			Outcome{ItemID: "raw_tuna", LevelReq: 35, XP: 80, Weight: 0.7},
			Outcome{ItemID: "raw_swordfish", LevelReq: 50, XP: 100, Weight: 0.3}),
	}
	logs := []*Node{
		burnable("normal_log", 1, 40, 10),
		burnable("oak_log", 15, 60, 12),
		burnable("willow_log", 30, 90, 15),
		burnable("teak_log", 35, 105, 18),
		burnable("maple_log", 45, 135, 20),
		burnable("mahogany_log", 50, 157.5, 25),
		burnable("yew_log", 60, 202.5, 30),
	}

	c, err := NewCatalog(
		mustTable(wc, trees),
		mustTable(mn, rocks),
		mustTable(skill.Fishing, spots),
		mustTable(skill.Firemaking, logs),
	)
	if err != nil {
		panic("resource: built-in catalog invalid: " + err.Error())
	}
	return c
}

func mustTable(s skill.Skill, nodes []*Node) *Table {
	t, err := NewTable(s, nodes)
	if err != nil {
		panic("resource: built-in table invalid: " + err.Error())
	}
	return t
}
