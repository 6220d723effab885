package training

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/baldhumanity/pendulum-neat/neat"
)

// Manifest records how a run was started.
type Manifest struct {
	RunID     string       `yaml:"run_id"`
	StartedAt time.Time    `yaml:"started_at"`
	Workers   int          `yaml:"workers"`
	Resumed   string       `yaml:"resumed_from,omitempty"`
	Config    *neat.Config `yaml:"config"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// WriteManifest writes m as YAML to path.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest '%s': %w", path, err)
	}
	return nil
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("failed to read manifest '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse manifest '%s': %w", path, err)
	}
	return m, nil
}
