package neat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigINI(t *testing.T) {
	path := writeFile(t, "pendulum.ini", `
[Mutation]
new_node_proba = 0.1
mut_count      = 6

[Selection]
population_size = 200
elite_ratio     = 0.25

[Simulation]
control_type = Acceleration ; mixed case is accepted

[Training]
gravity = 2.5
workers = 4

[Experiment]
seed_offset = 7
output_dir  = runs/a
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.1, cfg.Mutation.NewNodeProba)
	assert.Equal(t, 6, cfg.Mutation.MutCount)
	// untouched keys keep their defaults
	assert.Equal(t, 0.8, cfg.Mutation.NewConnProba)
	assert.Equal(t, 200, cfg.Selection.PopulationSize)
	assert.Equal(t, 0.25, cfg.Selection.EliteRatio)
	assert.Equal(t, 60.0, cfg.Selection.MaxIterationTime)
	assert.Equal(t, ControlAcceleration, cfg.Simulation.ControlType)
	assert.EqualValues(t, 9, cfg.Simulation.InputCount())
	assert.Equal(t, 2.5, cfg.Training.Gravity)
	assert.Equal(t, 4, cfg.Training.Workers)
	assert.EqualValues(t, 8, cfg.Training.SolverSubSteps)
	assert.EqualValues(t, 7, cfg.Experiment.SeedOffset)
	assert.Equal(t, "runs/a", cfg.Experiment.OutputDir)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "pendulum.yaml", `
selection:
  population_size: 50
training:
  max_speed: 400
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Selection.PopulationSize)
	assert.Equal(t, 400.0, cfg.Training.MaxSpeed)
	assert.Equal(t, 0.35, cfg.Selection.EliteRatio)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"probability", "[Mutation]\nnew_conn_proba = 1.5\n"},
		{"population", "[Selection]\npopulation_size = 0\n"},
		{"control", "[Simulation]\ncontrol_type = torque\n"},
		{"sub steps", "[Training]\nsolver_sub_steps = 0\n"},
		{"friction", "[Training]\nfriction = 1\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "bad.ini", tc.content))
			assert.ErrorContains(t, err, "config error")
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.ini"))
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	w, h := cfg.Simulation.WorldSize()
	assert.InDelta(t, 940, w, 1e-9)
	assert.InDelta(t, 450, h, 1e-9)
	assert.EqualValues(t, 8, cfg.Simulation.InputCount())
	assert.EqualValues(t, 1, cfg.Simulation.OutputCount())
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Selection.PopulationSize = 123
	cfg.Training.Gravity = 3

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
