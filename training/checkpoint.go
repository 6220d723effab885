package training

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/baldhumanity/pendulum-neat/neat"
)

// checkpointData holds the parts of a Stadium needed to resume training.
// The configuration is not saved, it is reloaded from the config file.
type checkpointData struct {
	RunID      string
	State      TrainingState
	Population []neat.Entry
	Generation int
	BestScore  float64
}

// SaveCheckpoint saves the population and training state to a gzip compressed file.
func (s *Stadium) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	data := checkpointData{
		RunID:      s.RunID,
		State:      s.State,
		Population: s.Population,
		Generation: s.Evolver.Generation,
		BestScore:  s.Evolver.BestScore,
	}
	if err := gob.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint '%s': %w", filePath, err)
	}

	logger.Info("checkpoint saved", "path", filePath, "iteration", s.State.Iteration)
	return nil
}

// LoadCheckpoint restores a checkpoint written by SaveCheckpoint. The population
// size must match the stadium's. The RNG is reseeded from the restored position
// since its state is not saved.
func (s *Stadium) LoadCheckpoint(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	var data checkpointData
	if err := gob.NewDecoder(gzReader).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}
	if len(data.Population) != len(s.scenes) {
		return fmt.Errorf("checkpoint holds %d genomes, expected %d", len(data.Population), len(s.scenes))
	}

	s.State = data.State
	s.Population = data.Population
	s.Evolver.Generation = data.Generation
	s.Evolver.BestScore = data.BestScore
	if data.RunID != "" {
		s.RunID = data.RunID
	}
	s.RNG.SetSeed(s.Config.Experiment.SeedOffset + int64(s.State.Exploration)*1_000_003 + int64(s.State.Iteration))

	logger.Info("checkpoint loaded",
		"path", filePath,
		"exploration", s.State.Exploration,
		"iteration", s.State.Iteration)
	return nil
}
