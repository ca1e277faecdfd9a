package label

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed corrections.yaml
var defaultCorrectionsYAML []byte

// Correction maps one known misreading to its corrected spelling.
type Correction struct {
	Wrong   string `yaml:"wrong" json:"wrong"`
	Correct string `yaml:"correct" json:"correct"`
}

// Corrections is an ordered correction table.
type Corrections []Correction

var defaultCorrections = mustParseCorrections(defaultCorrectionsYAML)

func mustParseCorrections(data []byte) Corrections {
	c, err := ParseCorrections(data)
	if err != nil {
		panic(fmt.Sprintf("label: embedded correction table: %v", err))
	}
	return c
}

// DefaultCorrections returns a copy of the built-in correction table.
func DefaultCorrections() Corrections {
	out := make(Corrections, len(defaultCorrections))
	copy(out, defaultCorrections)
	return out
}

// ParseCorrections decodes a YAML correction table. Entries with an empty
// "wrong" key are rejected since they would match everywhere.
func ParseCorrections(data []byte) (Corrections, error) {
	var c Corrections
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse correction table: %w", err)
	}
	for i, e := range c {
		if e.Wrong == "" {
			return nil, fmt.Errorf("correction %d: empty wrong value", i+1)
		}
	}
	return c, nil
}

// LoadCorrections reads a YAML correction table from disk.
func LoadCorrections(path string) (Corrections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read correction table: %w", err)
	}
	return ParseCorrections(data)
}

// Apply runs every entry once, in table order. An entry replaces all
// occurrences of its key present at the moment it is consulted; later entries
// see the output of earlier ones, and nothing is re-run to a fixpoint.
func (c Corrections) Apply(s string) string {
	for _, e := range c {
		if strings.Contains(s, e.Wrong) {
			s = strings.ReplaceAll(s, e.Wrong, e.Correct)
		}
	}
	return s
}
