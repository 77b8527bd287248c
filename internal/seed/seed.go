// Package seed loads starting board contents from YAML fixtures.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"taskboard/internal/board"
	"taskboard/internal/model"
)

//go:embed demo.yaml
var demoFixture []byte

// Fixture is the on-disk shape of a board seed.
type Fixture struct {
	Columns []model.Column `yaml:"columns"`
	Tasks   []model.Task   `yaml:"tasks"`
}

// Parse decodes a fixture and rejects documents that are structurally
// unusable: a column without id or a column id used twice.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed fixture: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Columns))
	for i, c := range f.Columns {
		if c.ID == "" {
			return nil, fmt.Errorf("seed column #%d has no id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("seed column id %q is duplicated", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	for i := range f.Tasks {
		if f.Tasks[i].Tags == nil {
			f.Tasks[i].Tags = []string{}
		}
	}
	return &f, nil
}

// LoadFile reads a fixture from path.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Demo returns the built-in sample board.
func Demo() *Fixture {
	f, err := Parse(demoFixture)
	if err != nil {
		panic(fmt.Sprintf("embedded demo fixture is invalid: %v", err))
	}
	return f
}

// Apply loads the fixture into a store, replacing its contents.
func (f *Fixture) Apply(s *board.Store) {
	s.Load(f.Columns, f.Tasks)
}
