// Package training evaluates populations of pendulum controllers and evolves them
// under an increasing difficulty curriculum.
package training

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/baldhumanity/pendulum-neat/neat"
)

var logger = slog.Default()

// SetLogger replaces the logger used by this package.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// IterationConfiguration is the part of the environment that the curriculum adjusts.
type IterationConfiguration struct {
	Friction       float64
	Gravity        float64
	Compliance     float64
	MaxSpeed       float64
	MaxAccel       float64
	TaskSubSteps   uint32
	SolverSubSteps uint32
}

// NewIterationConfiguration returns the starting configuration described by cfg.
func NewIterationConfiguration(cfg neat.TrainingConfig) IterationConfiguration {
	return IterationConfiguration{
		Friction:       cfg.Friction,
		Gravity:        cfg.Gravity,
		Compliance:     cfg.Compliance,
		MaxSpeed:       cfg.MaxSpeed,
		MaxAccel:       cfg.MaxAccel,
		TaskSubSteps:   cfg.TaskSubSteps,
		SolverSubSteps: cfg.SolverSubSteps,
	}
}

// configurationRecord is the on-disk layout of a configuration file.
type configurationRecord struct {
	MaxSpeed       float32
	MaxAccel       float32
	Friction       float32
	Gravity        float32
	SolverSubSteps uint32
	Compliance     float32
	TaskSubSteps   uint32
}

// WriteTo encodes c in the little endian configuration format.
func (c IterationConfiguration) WriteTo(w io.Writer) (int64, error) {
	rec := configurationRecord{
		MaxSpeed:       float32(c.MaxSpeed),
		MaxAccel:       float32(c.MaxAccel),
		Friction:       float32(c.Friction),
		Gravity:        float32(c.Gravity),
		SolverSubSteps: c.SolverSubSteps,
		Compliance:     float32(c.Compliance),
		TaskSubSteps:   c.TaskSubSteps,
	}
	if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
		return 0, fmt.Errorf("failed to write configuration: %w", err)
	}
	return int64(binary.Size(rec)), nil
}

// ReadFrom decodes a configuration. c is unchanged on error.
func (c *IterationConfiguration) ReadFrom(r io.Reader) (int64, error) {
	var rec configurationRecord
	if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
		return 0, fmt.Errorf("failed to read configuration: %w", err)
	}
	*c = IterationConfiguration{
		Friction:       float64(rec.Friction),
		Gravity:        float64(rec.Gravity),
		Compliance:     float64(rec.Compliance),
		MaxSpeed:       float64(rec.MaxSpeed),
		MaxAccel:       float64(rec.MaxAccel),
		TaskSubSteps:   rec.TaskSubSteps,
		SolverSubSteps: rec.SolverSubSteps,
	}
	return int64(binary.Size(rec)), nil
}

// SaveConfiguration writes c to path.
func SaveConfiguration(path string, c IterationConfiguration) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create configuration file '%s': %w", path, err)
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	if _, err := c.WriteTo(w); err != nil {
		return err
	}
	return w.Flush()
}

// LoadConfiguration reads a configuration file.
func LoadConfiguration(path string) (IterationConfiguration, error) {
	var c IterationConfiguration
	file, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("failed to open configuration file '%s': %w", path, err)
	}
	defer file.Close()
	if _, err := c.ReadFrom(bufio.NewReader(file)); err != nil {
		return c, fmt.Errorf("failed to load configuration file '%s': %w", path, err)
	}
	return c, nil
}

// TrainingState tracks progress through explorations and iterations.
type TrainingState struct {
	Iteration          uint32
	Exploration        uint32
	IterationBestScore float64
	Configuration      IterationConfiguration
}

// AddIteration starts a new iteration.
func (s *TrainingState) AddIteration() {
	s.Iteration++
}

// NewExploration resets the iteration counter and moves to the next exploration.
func (s *TrainingState) NewExploration() {
	s.Iteration = 0
	s.IterationBestScore = 0
	s.Exploration++
}
