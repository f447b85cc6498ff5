package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/idlegather/internal/game/skill"
)

// yamlNodeFile is the top-level YAML structure for a node table file.
type yamlNodeFile struct {
	Skill string     `yaml:"skill"`
	Nodes []yamlNode `yaml:"nodes"`
}

// yamlNode is the YAML representation of a node.
type yamlNode struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Level    int           `yaml:"level"`
	XP       float64       `yaml:"xp"`
	Item     string        `yaml:"item"`
	Interval string        `yaml:"interval"`
	Outcomes []yamlOutcome `yaml:"outcomes"`
}

// yamlOutcome is the YAML representation of a weighted outcome.
type yamlOutcome struct {
	Item   string  `yaml:"item"`
	Level  int     `yaml:"level"`
	XP     float64 `yaml:"xp"`
	Weight float64 `yaml:"weight"`
}

// LoadTableFromBytes parses and validates one node table from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the node table schema.
// Postcondition: Returns a validated Table or a non-nil error.
func LoadTableFromBytes(data []byte) (*Table, error) {
	var file yamlNodeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing node table YAML: %w", err)
	}
	s, err := skill.Parse(file.Skill)
	if err != nil {
		return nil, fmt.Errorf("node table: %w", err)
	}

	nodes := make([]*Node, 0, len(file.Nodes))
	for _, yn := range file.Nodes {
		n, err := convertYAMLNode(s, yn)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return NewTable(s, nodes)
}

// LoadCatalog loads every YAML file in dir. Each file declares one skill;
// several files for the same skill are merged in file-name order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a catalog covering every skill or the first error encountered.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading node directory %s: %w", dir, err)
	}

	merged := make(map[skill.Skill][]*Node)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading node file %s: %w", name, err)
		}
		t, err := LoadTableFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading nodes from %s: %w", name, err)
		}
		merged[t.Skill()] = append(merged[t.Skill()], t.nodes...)
	}

	tables := make([]*Table, 0, len(merged))
	for _, s := range skill.All() {
		nodes, ok := merged[s]
		if !ok {
			continue
		}
		t, err := NewTable(s, nodes)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return NewCatalog(tables...)
}

func convertYAMLNode(s skill.Skill, yn yamlNode) (*Node, error) {
	interval, err := time.ParseDuration(yn.Interval)
	if err != nil {
		return nil, fmt.Errorf("resource node %q: interval %q is not a valid duration: %w", yn.Name, yn.Interval, err)
	}
	n := &Node{
		ID:       yn.ID,
		Name:     yn.Name,
		Skill:    s,
		LevelReq: yn.Level,
		XP:       yn.XP,
		ItemID:   yn.Item,
		Interval: interval,
	}
	if n.ID == "" {
		n.ID = Slug(n.Name)
	}
	for _, yo := range yn.Outcomes {
		n.Outcomes = append(n.Outcomes, Outcome{
			ItemID:   yo.Item,
			LevelReq: yo.Level,
			XP:       yo.XP,
			Weight:   yo.Weight,
		})
	}
	return n, nil
}
