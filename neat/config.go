package neat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Cart control modes.
const (
	ControlVelocity     = "velocity"
	ControlAcceleration = "acceleration"
)

// Config stores every parameter of a training run.
type Config struct {
	Mutation   MutationConfig   `yaml:"mutation"`
	Selection  SelectionConfig  `yaml:"selection"`
	Simulation SimulationConfig `yaml:"simulation"`
	Training   TrainingConfig   `yaml:"training"`
	Experiment ExperimentConfig `yaml:"experiment"`
}

// SimulationConfig describes the pendulum scene.
type SimulationConfig struct {
	SegmentSize   float64 `ini:"segment_size" yaml:"segment_size"`
	SegmentsCount int     `ini:"segments_count" yaml:"segments_count"`
	SliderLength  float64 `ini:"slider_length" yaml:"slider_length"`
	MaxGravity    float64 `ini:"max_gravity" yaml:"max_gravity"`
	ControlType   string  `ini:"control_type" yaml:"control_type"` // "velocity" or "acceleration"
	TimeStep      float64 `ini:"time_step" yaml:"time_step"`
	ScoreMargin   float64 `ini:"score_margin" yaml:"score_margin"` // in segments, below full height
}

// TrainingConfig holds the initial solver settings and the difficulty curriculum.
type TrainingConfig struct {
	Friction       float64 `ini:"friction" yaml:"friction"`
	Gravity        float64 `ini:"gravity" yaml:"gravity"`
	Compliance     float64 `ini:"compliance" yaml:"compliance"`
	MaxSpeed       float64 `ini:"max_speed" yaml:"max_speed"`
	MaxAccel       float64 `ini:"max_accel" yaml:"max_accel"`
	TaskSubSteps   uint32  `ini:"task_sub_steps" yaml:"task_sub_steps"`
	SolverSubSteps uint32  `ini:"solver_sub_steps" yaml:"solver_sub_steps"`
	TargetScore    float64 `ini:"target_score" yaml:"target_score"`
	GravityFactor  float64 `ini:"gravity_factor" yaml:"gravity_factor"`
	FrictionStep   float64 `ini:"friction_step" yaml:"friction_step"`
	Workers        int     `ini:"workers" yaml:"workers"` // 0 uses GOMAXPROCS
}

// ExperimentConfig controls seeding and where results go.
type ExperimentConfig struct {
	SeedOffset       int64  `ini:"seed_offset" yaml:"seed_offset"`
	BestSavePeriod   uint32 `ini:"best_save_period" yaml:"best_save_period"`
	CheckpointPeriod uint32 `ini:"checkpoint_period" yaml:"checkpoint_period"` // 0 disables checkpoints
	MaxIterations    uint32 `ini:"max_iterations" yaml:"max_iterations"`       // 0 runs until interrupted
	OutputDir        string `ini:"output_dir" yaml:"output_dir"`
	ArchivePath      string `ini:"archive_path" yaml:"archive_path"`
	MetricsAddr      string `ini:"metrics_addr" yaml:"metrics_addr"`
}

// InputCount returns the number of network inputs required by the control mode.
func (s SimulationConfig) InputCount() uint32 {
	if s.ControlType == ControlAcceleration {
		return 9
	}
	return 8
}

// OutputCount returns the number of network outputs.
func (s SimulationConfig) OutputCount() uint32 {
	return 1
}

// WorldSize returns the extent of the scene. The cart rail is centered horizontally.
func (s SimulationConfig) WorldSize() (width, height float64) {
	n := float64(s.SegmentsCount)
	return s.SliderLength + 2.2*n*s.SegmentSize, n * s.SegmentSize * 2.25
}

// DefaultConfig returns the settings the pendulum trainer was tuned with.
func DefaultConfig() *Config {
	return &Config{
		Mutation:  DefaultMutationConfig(),
		Selection: DefaultSelectionConfig(),
		Simulation: SimulationConfig{
			SegmentSize:   100,
			SegmentsCount: 2,
			SliderLength:  500,
			MaxGravity:    1000,
			ControlType:   ControlVelocity,
			TimeStep:      1.0 / 60.0,
			ScoreMargin:   0.1,
		},
		Training: TrainingConfig{
			Friction:       0.003,
			Gravity:        1.0,
			Compliance:     0.0,
			MaxSpeed:       800,
			MaxAccel:       10000,
			TaskSubSteps:   1,
			SolverSubSteps: 8,
			TargetScore:    8,
			GravityFactor:  1.01,
			FrictionStep:   0.000001,
		},
		Experiment: ExperimentConfig{
			SeedOffset:     101,
			BestSavePeriod: 10,
			OutputDir:      ".",
		},
	}
}

// LoadConfig reads the configuration at filePath on top of DefaultConfig. Files ending
// in .yaml or .yml are decoded as YAML, anything else as INI with one section per
// config block: [Mutation], [Selection], [Simulation], [Training], [Experiment].
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
		}
	default:
		cfg, err := ini.LoadSources(ini.LoadOptions{
			IgnoreInlineComment:         true,
			UnescapeValueCommentSymbols: true,
		}, filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
		}
		sections := []struct {
			name string
			dst  any
		}{
			{"Mutation", &config.Mutation},
			{"Selection", &config.Selection},
			{"Simulation", &config.Simulation},
			{"Training", &config.Training},
			{"Experiment", &config.Experiment},
		}
		for _, s := range sections {
			if !cfg.HasSection(s.name) {
				continue
			}
			if err := cfg.Section(s.name).MapTo(s.dst); err != nil {
				return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
			}
		}
		config.Simulation.ControlType = cleanIniString(config.Simulation.ControlType)
		config.Experiment.OutputDir = cleanIniString(config.Experiment.OutputDir)
		config.Experiment.ArchivePath = cleanIniString(config.Experiment.ArchivePath)
		config.Experiment.MetricsAddr = cleanIniString(config.Experiment.MetricsAddr)
	}

	config.Simulation.ControlType = strings.ToLower(config.Simulation.ControlType)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	m := c.Mutation
	for name, p := range map[string]float64{
		"new_node_proba":  m.NewNodeProba,
		"new_conn_proba":  m.NewConnProba,
		"new_value_proba": m.NewValueProba,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", name)
		}
	}
	if m.WeightRange <= 0 {
		return fmt.Errorf("config error: weight_range must be positive")
	}
	if m.WeightSmallRange < 0 {
		return fmt.Errorf("config error: weight_small_range cannot be negative")
	}
	if m.MutCount < 0 || m.MaxHiddenNodes < 0 {
		return fmt.Errorf("config error: mut_count and max_hidden_nodes cannot be negative")
	}

	s := c.Selection
	if s.PopulationSize <= 0 {
		return fmt.Errorf("config error: population_size must be positive")
	}
	if s.EliteRatio < 0 || s.EliteRatio > 1 {
		return fmt.Errorf("config error: elite_ratio must be between 0 and 1")
	}
	if s.MaxIterationTime <= 0 {
		return fmt.Errorf("config error: max_iteration_time must be positive")
	}

	sim := c.Simulation
	if sim.ControlType != ControlVelocity && sim.ControlType != ControlAcceleration {
		return fmt.Errorf("config error: invalid control_type '%s', must be '%s' or '%s'", sim.ControlType, ControlVelocity, ControlAcceleration)
	}
	if sim.SegmentsCount < 2 {
		return fmt.Errorf("config error: segments_count must be at least 2")
	}
	if sim.SegmentSize <= 0 || sim.SliderLength <= 0 || sim.TimeStep <= 0 {
		return fmt.Errorf("config error: segment_size, slider_length and time_step must be positive")
	}

	tr := c.Training
	if tr.TaskSubSteps == 0 || tr.SolverSubSteps == 0 {
		return fmt.Errorf("config error: task_sub_steps and solver_sub_steps must be positive")
	}
	if tr.MaxSpeed <= 0 {
		return fmt.Errorf("config error: max_speed must be positive")
	}
	if tr.Friction < 0 || tr.Friction >= 1 {
		return fmt.Errorf("config error: friction must be in [0, 1)")
	}
	if tr.Compliance < 0 {
		return fmt.Errorf("config error: compliance cannot be negative")
	}
	return nil
}

// WriteYAML saves the configuration as YAML.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
