package training

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/pendulum-neat/neat"
	"github.com/baldhumanity/pendulum-neat/telemetry"
)

func smallConfig(t *testing.T) *neat.Config {
	t.Helper()
	cfg := neat.DefaultConfig()
	cfg.Selection.PopulationSize = 6
	cfg.Selection.MaxIterationTime = 0.5
	cfg.Training.Workers = 2
	cfg.Experiment.BestSavePeriod = 1
	cfg.Experiment.OutputDir = t.TempDir()
	return cfg
}

type generationLog struct{ rows []telemetry.Generation }

func (l *generationLog) Record(g telemetry.Generation) error {
	l.rows = append(l.rows, g)
	return nil
}

type memoryArchive struct{ records []BestRecord }

func (a *memoryArchive) ArchiveBest(_ context.Context, rec BestRecord) error {
	a.records = append(a.records, rec)
	return nil
}

func TestNewStadium(t *testing.T) {
	cfg := smallConfig(t)
	s := NewStadium(cfg)

	assert.Len(t, s.Population, 6)
	assert.Equal(t, uint32(1), s.State.Exploration)
	assert.Equal(t, uint32(0), s.State.Iteration)
	assert.Equal(t, filepath.Join(cfg.Experiment.OutputDir, "genomes_1"), s.CurrentFolder())
	assert.DirExists(t, s.CurrentFolder())
	assert.Len(t, s.Disturbances[ReferenceSequence].Pushes, pushCount)
	assert.Equal(t, 0.0, s.Scene(0).FreezeTime)
	assert.False(t, s.Scene(0).EnableDisturbance)
}

func TestRunIteration(t *testing.T) {
	cfg := smallConfig(t)
	s := NewStadium(cfg)
	log := &generationLog{}
	archive := &memoryArchive{}
	s.Recorder = log
	s.Archive = archive
	s.RunID = "run"

	gen, err := s.RunIteration(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint32(1), gen.Iteration)
	assert.Equal(t, "run", gen.RunID)
	assert.False(t, gen.DifficultyIncreased)
	assert.Equal(t, 0.0, gen.Best)
	assert.Equal(t, 1.0, gen.Gravity)
	assert.Len(t, s.Population, 6)
	require.Len(t, log.rows, 1)
	assert.Equal(t, gen, log.rows[0])

	assert.FileExists(t, filepath.Join(s.CurrentFolder(), "best_1.bin"))
	assert.FileExists(t, filepath.Join(s.CurrentFolder(), "best_conf_1.bin"))
	require.Len(t, archive.records, 1)
	assert.Equal(t, uint32(1), archive.records[0].Iteration)
	assert.Equal(t, "run", archive.records[0].RunID)
}

func TestRunIterationIncreasesDifficulty(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Experiment.BestSavePeriod = 0
	s := NewStadium(cfg)
	s.BypassScoreThreshold = true

	gen, err := s.RunIteration(context.Background())
	require.NoError(t, err)
	assert.True(t, gen.DifficultyIncreased)
	assert.InDelta(t, 1.01, s.State.Configuration.Gravity, 1e-12)
	assert.InDelta(t, 0.003-1e-6, s.State.Configuration.Friction, 1e-12)
	// Forced save regardless of the period.
	assert.FileExists(t, filepath.Join(s.CurrentFolder(), "best_1.bin"))
}

func TestIncreaseDifficultyLimits(t *testing.T) {
	cfg := smallConfig(t)
	s := NewStadium(cfg)
	s.State.Configuration.Gravity = 999
	s.State.Configuration.Friction = 5e-7

	s.increaseDifficulty()
	assert.Equal(t, cfg.Simulation.MaxGravity, s.State.Configuration.Gravity)
	assert.Equal(t, 0.0, s.State.Configuration.Friction)
}

func TestRunIterationCanceled(t *testing.T) {
	s := NewStadium(smallConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.RunIteration(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint32(0), s.State.Iteration)
}

func TestRestartExploration(t *testing.T) {
	s := NewStadium(smallConfig(t))
	s.Evolver.Mutator.NewNode(&s.Population[0].Genome)
	s.Evolver.Mutator.NewConnection(&s.Population[0].Genome)
	s.State.Iteration = 12

	require.NoError(t, s.RestartExploration())
	assert.Equal(t, uint32(2), s.State.Exploration)
	assert.Equal(t, uint32(0), s.State.Iteration)
	assert.DirExists(t, s.CurrentFolder())

	want, err := s.Population[0].Genome.MarshalBinary()
	require.NoError(t, err)
	for i := range s.Population {
		got, err := s.Population[i].Genome.MarshalBinary()
		require.NoError(t, err)
		assert.True(t, bytes.Equal(want, got), "genome %d", i)
	}
}

func TestLoadContext(t *testing.T) {
	s := NewStadium(smallConfig(t))
	_, err := s.RunIteration(context.Background())
	require.NoError(t, err)
	saved := s.State.Configuration

	s.State.Configuration.Gravity = 500
	require.NoError(t, s.LoadContext(s.CurrentFolder(), 1))
	assert.InDelta(t, saved.Gravity, s.State.Configuration.Gravity, 1e-6)

	assert.Error(t, s.LoadContext(s.CurrentFolder(), 99))
}

func TestLoadGenomeRejectsWrongShape(t *testing.T) {
	s := NewStadium(smallConfig(t))
	path := filepath.Join(t.TempDir(), "g.bin")
	require.NoError(t, neat.NewGenome(3, 1).WriteToFile(path))

	assert.Error(t, s.LoadGenome(path))
	assert.Equal(t, uint32(8), s.Population[0].Genome.Info.Inputs)
}

func TestLoadGenomeRejectsEdgeFromOutput(t *testing.T) {
	s := NewStadium(smallConfig(t))
	g := neat.NewGenome(8, 1)
	h := g.CreateNode(neat.ActivationReLU, true)
	require.True(t, g.TryCreateConnection(8, h, 1))
	path := filepath.Join(t.TempDir(), "g.bin")
	require.NoError(t, g.WriteToFile(path))

	assert.Error(t, s.LoadGenome(path))
	assert.Zero(t, s.Population[0].Genome.Info.Hidden)
	_, err := s.RunIteration(context.Background())
	assert.NoError(t, err)
}

func TestWriteAllGenomes(t *testing.T) {
	s := NewStadium(smallConfig(t))
	s.State.Iteration = 3
	require.NoError(t, s.WriteAllGenomes())

	dir := filepath.Join(s.CurrentFolder(), "dump_3")
	for i := range s.Population {
		assert.FileExists(t, filepath.Join(dir, fmt.Sprintf("genome_%d.bin", i)))
	}
	assert.FileExists(t, filepath.Join(dir, "configuration.bin"))
}

func TestDemo(t *testing.T) {
	s := NewStadium(smallConfig(t))
	frames := 0
	score, err := s.Demo(context.Background(), 0.5, func(_ float64, scene *Scene) {
		frames++
		assert.True(t, scene.EnableDisturbance)
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.InDelta(t, 30, frames, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Demo(ctx, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckpointRoundTrip(t *testing.T) {
	cfg := smallConfig(t)
	s := NewStadium(cfg)
	s.RunID = "abc"
	_, err := s.RunIteration(context.Background())
	require.NoError(t, err)
	s.Evolver.Mutator.NewNode(&s.Population[2].Genome)

	path := filepath.Join(t.TempDir(), "checkpoint.gob.gz")
	require.NoError(t, s.SaveCheckpoint(path))

	restored := NewStadium(cfg)
	require.NoError(t, restored.LoadCheckpoint(path))
	assert.Equal(t, s.State, restored.State)
	assert.Equal(t, "abc", restored.RunID)
	assert.Equal(t, s.Evolver.Generation, restored.Evolver.Generation)
	require.Len(t, restored.Population, len(s.Population))
	for i := range s.Population {
		want, _ := s.Population[i].Genome.MarshalBinary()
		got, _ := restored.Population[i].Genome.MarshalBinary()
		assert.True(t, bytes.Equal(want, got), "genome %d", i)
		assert.Equal(t, s.Population[i].Score, restored.Population[i].Score)
	}

	other := smallConfig(t)
	other.Selection.PopulationSize = 3
	assert.Error(t, NewStadium(other).LoadCheckpoint(path))
}

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	m := Manifest{
		RunID:     NewRunID(),
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Workers:   4,
		Config:    neat.DefaultConfig(),
	}
	require.NoError(t, WriteManifest(path, m))

	got, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, got.RunID)
	assert.Len(t, got.RunID, 36)
	assert.True(t, m.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, m.Config, got.Config)
}
