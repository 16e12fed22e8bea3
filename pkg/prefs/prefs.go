/*
Package prefs persists default SourcePreferences (bleeding_edge, nur)
across invocations, the way the teacher's pkg/config.Manager round-trips
a YAML config through a known path.
*/
package prefs

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults is the small on-disk preferences document at
// ~/.config/nx/prefs.yaml.
type Defaults struct {
	BleedingEdge bool `yaml:"bleeding_edge"`
	Nur          bool `yaml:"nur"`
}

// Load reads the preferences file at path, returning zero-value Defaults
// (both false) if it does not exist.
func Load(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Defaults{}, nil
	}
	if err != nil {
		return Defaults{}, fmt.Errorf("read prefs: %w", err)
	}

	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, fmt.Errorf("parse prefs: %w", err)
	}
	return d, nil
}

// Save writes the preferences file at path, creating parent directories
// as needed.
func Save(path string, d Defaults) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
