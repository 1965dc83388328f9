// Package scenario loads tables of Hangman game states and evaluates them
// against a word list.
package scenario

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/japaniel/hangman/pkg/guesser"
)

//go:embed default.yaml
var defaultTable []byte

// ErrNoScenarios is returned for a table without any scenario.
var ErrNoScenarios = errors.New("scenario table is empty")

// Scenario is one game state: the confirmed letters and the letters known
// to be absent.
type Scenario struct {
	Pattern  guesser.Pattern
	Excluded guesser.LetterSet
}

func (s Scenario) String() string {
	return s.Pattern.String() + " " + s.Excluded.String()
}

// letters accepts either a string ("AEMNT") or a list (["A", "E"]).
type letters string

func (l *letters) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = letters(node.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		var buf bytes.Buffer
		for _, it := range items {
			buf.WriteString(it)
		}
		*l = letters(buf.String())
		return nil
	}
	return fmt.Errorf("line %d: excluded must be a string or a list of letters", node.Line)
}

type rawScenario struct {
	Pattern  string  `yaml:"pattern"`
	Excluded letters `yaml:"excluded"`
}

type rawTable struct {
	Scenarios []rawScenario `yaml:"scenarios"`
}

// Load reads a scenario table from a YAML file.
func Load(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenarios: %w", err)
	}
	defer f.Close()

	scenarios, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("scenarios %s: %w", path, err)
	}
	return scenarios, nil
}

// Default returns the built-in scenario table.
func Default() []Scenario {
	scenarios, err := Decode(bytes.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("scenario: embedded table: %v", err))
	}
	return scenarios
}

// Decode parses a YAML scenario table.
func Decode(r io.Reader) ([]Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw rawTable
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoScenarios
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(raw.Scenarios) == 0 {
		return nil, ErrNoScenarios
	}

	scenarios := make([]Scenario, 0, len(raw.Scenarios))
	for i, rs := range raw.Scenarios {
		p, err := guesser.ParsePattern(rs.Pattern)
		if err != nil {
			return nil, fmt.Errorf("scenario %d: %w", i+1, err)
		}
		ex, err := guesser.ParseLetterSet(string(rs.Excluded))
		if err != nil {
			return nil, fmt.Errorf("scenario %d: excluded: %w", i+1, err)
		}
		scenarios = append(scenarios, Scenario{Pattern: p, Excluded: ex})
	}
	return scenarios, nil
}
