package training

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/baldhumanity/pendulum-neat/neat"
	"github.com/baldhumanity/pendulum-neat/telemetry"
)

// Indices of the two push sequences owned by a stadium.
const (
	ReferenceSequence = 0
	TrainingSequence  = 1
)

// BestRecord describes a saved best genome.
type BestRecord struct {
	RunID         string
	Exploration   uint32
	Iteration     uint32
	Score         float64
	Configuration IterationConfiguration
	Genome        *neat.Genome
}

// Archive stores best genomes alongside the files written by SaveBest.
type Archive interface {
	ArchiveBest(ctx context.Context, rec BestRecord) error
}

// Stadium evaluates a whole population each iteration and evolves it.
type Stadium struct {
	Config     *neat.Config
	State      TrainingState
	Population []neat.Entry
	RNG        *neat.RNG
	Evolver    *neat.Evolver
	Pool       *ThreadPool

	Disturbances [2]Disturbances

	// Optional sinks.
	Recorder telemetry.Recorder
	Archive  Archive
	RunID    string

	// BypassScoreThreshold increases the difficulty every iteration.
	BypassScoreThreshold bool

	scenes  []*Scene
	started time.Time
}

// NewStadium creates the population and its scenes and starts the first exploration.
func NewStadium(cfg *neat.Config) *Stadium {
	sim := cfg.Simulation
	rng := neat.NewRNG(cfg.Experiment.SeedOffset)
	s := &Stadium{
		Config:     cfg,
		State:      TrainingState{Configuration: NewIterationConfiguration(cfg.Training)},
		Population: neat.NewPopulation(cfg.Selection.PopulationSize, sim.InputCount(), sim.OutputCount()),
		RNG:        rng,
		Evolver:    neat.NewEvolver(cfg.Selection, neat.NewMutator(cfg.Mutation, rng), rng),
		Pool:       NewThreadPool(cfg.Training.Workers),
		started:    time.Now(),
	}
	for i := range s.Disturbances {
		s.Disturbances[i].Generate(rng)
	}

	s.scenes = make([]*Scene, len(s.Population))
	for i := range s.scenes {
		scene := NewScene(sim)
		scene.FreezeTime = 0
		scene.EnableDisturbance = false
		scene.Disturbances = &s.Disturbances[TrainingSequence]
		s.scenes[i] = scene
	}

	if err := s.RestartExploration(); err != nil {
		logger.Warn("failed to start exploration", "error", err)
	}
	return s
}

// Scene returns the scene evaluating population entry i.
func (s *Stadium) Scene(i int) *Scene {
	return s.scenes[i]
}

// CurrentFolder returns the directory holding the files of the current exploration.
func (s *Stadium) CurrentFolder() string {
	return filepath.Join(s.Config.Experiment.OutputDir, fmt.Sprintf("genomes_%d", s.State.Exploration))
}

// RunIteration evaluates the population, evolves it and adjusts the difficulty.
// ctx is only checked before the evaluation starts.
func (s *Stadium) RunIteration(ctx context.Context) (telemetry.Generation, error) {
	if err := ctx.Err(); err != nil {
		return telemetry.Generation{}, err
	}
	s.State.AddIteration()
	s.evaluate()

	scores := make([]float64, len(s.Population))
	for i := range s.Population {
		s.Population[i].Score = s.scenes[i].Score
		scores[i] = s.scenes[i].Score
	}

	s.Population = s.Evolver.CreateNewGeneration(s.Population)
	best := &s.Population[0]
	s.State.IterationBestScore = best.Score

	increased := s.needIncreaseDifficulty()
	if increased {
		if err := s.SaveBest(ctx, true); err != nil {
			logger.Warn("failed to save best genome", "error", err)
		}
		s.increaseDifficulty()
	} else if err := s.SaveBest(ctx, false); err != nil {
		logger.Warn("failed to save best genome", "error", err)
	}

	if period := s.Config.Experiment.CheckpointPeriod; period > 0 && s.State.Iteration%period == 0 {
		path := filepath.Join(s.CurrentFolder(), "checkpoint.gob.gz")
		if err := s.SaveCheckpoint(path); err != nil {
			logger.Warn("failed to save checkpoint", "error", err)
		}
	}

	gen := telemetry.Generation{
		RunID:               s.RunID,
		Exploration:         s.State.Exploration,
		Iteration:           s.State.Iteration,
		Gravity:             s.State.Configuration.Gravity,
		Friction:            s.State.Configuration.Friction,
		BestHidden:          best.Genome.Info.Hidden,
		BestConnections:     len(best.Genome.Connections),
		DifficultyIncreased: increased,
		ElapsedSec:          time.Since(s.started).Seconds(),
	}
	telemetry.Summarize(scores).Apply(&gen)

	logger.Info("iteration done",
		"exploration", gen.Exploration,
		"iteration", gen.Iteration,
		"best", gen.Best,
		"mean", gen.Mean,
		"gravity", gen.Gravity,
		"friction", gen.Friction,
		"hidden", gen.BestHidden)

	if s.Recorder != nil {
		if err := s.Recorder.Record(gen); err != nil {
			logger.Warn("failed to record generation", "error", err)
		}
	}
	return gen, nil
}

// evaluate runs one episode per population entry. The training sequence is
// regenerated first so every entry faces the same pushes.
func (s *Stadium) evaluate() {
	s.Disturbances[TrainingSequence].Generate(s.RNG)
	cfg := s.State.Configuration
	s.Pool.Dispatch(len(s.scenes), func(start, end int) {
		for i := start; i < end; i++ {
			s.scenes[i].Initialize(cfg, &s.Population[i].Genome)
		}
	})

	dt := s.Config.Simulation.TimeStep
	maxTime := s.Config.Selection.MaxIterationTime
	s.Pool.Dispatch(len(s.scenes), func(start, end int) {
		for i := start; i < end; i++ {
			scene := s.scenes[i]
			for t := 0.0; t < maxTime; t += dt {
				scene.Update(dt)
			}
		}
	})
}

func (s *Stadium) needIncreaseDifficulty() bool {
	return s.BypassScoreThreshold || s.State.IterationBestScore > s.Config.Training.TargetScore
}

func (s *Stadium) increaseDifficulty() {
	t := s.Config.Training
	c := &s.State.Configuration
	c.Friction = math.Max(0, c.Friction-t.FrictionStep)
	c.Gravity = math.Min(s.Config.Simulation.MaxGravity, c.Gravity*t.GravityFactor)
	logger.Info("difficulty increased", "gravity", c.Gravity, "friction", c.Friction)
}

// RestartExploration reseeds the RNG from the exploration index and replaces the
// whole population with copies of the current best genome.
func (s *Stadium) RestartExploration() error {
	s.State.NewExploration()
	s.RNG.SetSeed(int64(s.State.Exploration) + s.Config.Experiment.SeedOffset)
	if len(s.Population) > 0 {
		best := s.Population[0].Genome.Clone()
		for i := range s.Population {
			s.Population[i].Genome = best.Clone()
		}
	}
	logger.Info("new exploration", "exploration", s.State.Exploration)
	if err := os.MkdirAll(s.CurrentFolder(), 0o755); err != nil {
		return fmt.Errorf("failed to create exploration folder: %w", err)
	}
	return nil
}

// LoadGenome replaces every genome of the population with the one stored at path.
// The population is unchanged if the file cannot be loaded.
func (s *Stadium) LoadGenome(path string) error {
	var g neat.Genome
	if err := g.LoadFromFile(path); err != nil {
		return err
	}
	sim := s.Config.Simulation
	if g.Info.Inputs != sim.InputCount() || g.Info.Outputs != sim.OutputCount() {
		return fmt.Errorf("genome '%s' has %d inputs and %d outputs, expected %d and %d",
			path, g.Info.Inputs, g.Info.Outputs, sim.InputCount(), sim.OutputCount())
	}
	for i := range s.Population {
		s.Population[i].Genome = g.Clone()
	}
	logger.Info("genome loaded",
		"path", path,
		"hidden", g.Info.Hidden,
		"connections", len(g.Connections))
	return nil
}

// LoadConfiguration replaces the current iteration configuration with the file at path.
func (s *Stadium) LoadConfiguration(path string) error {
	c, err := LoadConfiguration(path)
	if err != nil {
		return err
	}
	s.State.Configuration = c
	logger.Info("configuration loaded",
		"path", path,
		"gravity", c.Gravity,
		"friction", c.Friction,
		"max_speed", c.MaxSpeed,
		"solver_sub_steps", c.SolverSubSteps)
	return nil
}

// SaveConfiguration writes the current iteration configuration to path.
func (s *Stadium) SaveConfiguration(path string) error {
	return SaveConfiguration(path, s.State.Configuration)
}

// LoadContext restores the best genome and configuration saved at iteration gen in dir.
func (s *Stadium) LoadContext(dir string, gen uint32) error {
	if err := s.LoadGenome(filepath.Join(dir, fmt.Sprintf("best_%d.bin", gen))); err != nil {
		return err
	}
	return s.LoadConfiguration(filepath.Join(dir, fmt.Sprintf("best_conf_%d.bin", gen)))
}

// SaveBest writes the best genome and the configuration it was scored with. Unless
// force is set it only does so every BestSavePeriod iterations.
func (s *Stadium) SaveBest(ctx context.Context, force bool) error {
	period := s.Config.Experiment.BestSavePeriod
	if !force && (period == 0 || s.State.Iteration%period != 0) {
		return nil
	}
	if len(s.Population) == 0 {
		return nil
	}
	folder := s.CurrentFolder()
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create exploration folder: %w", err)
	}

	best := &s.Population[0]
	iter := s.State.Iteration
	if err := best.Genome.WriteToFile(filepath.Join(folder, fmt.Sprintf("best_%d.bin", iter))); err != nil {
		return err
	}
	if err := s.SaveConfiguration(filepath.Join(folder, fmt.Sprintf("best_conf_%d.bin", iter))); err != nil {
		return err
	}
	logger.Debug("best saved", "iteration", iter, "score", best.Score)

	if s.Archive != nil {
		rec := BestRecord{
			RunID:         s.RunID,
			Exploration:   s.State.Exploration,
			Iteration:     iter,
			Score:         best.Score,
			Configuration: s.State.Configuration,
			Genome:        &best.Genome,
		}
		if err := s.Archive.ArchiveBest(ctx, rec); err != nil {
			return fmt.Errorf("failed to archive best genome: %w", err)
		}
	}
	return nil
}

// WriteAllGenomes dumps every genome of the population with the current configuration.
func (s *Stadium) WriteAllGenomes() error {
	dir := filepath.Join(s.CurrentFolder(), fmt.Sprintf("dump_%d", s.State.Iteration))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create dump folder: %w", err)
	}
	for i := range s.Population {
		if err := s.Population[i].Genome.WriteToFile(filepath.Join(dir, fmt.Sprintf("genome_%d.bin", i))); err != nil {
			return err
		}
	}
	return s.SaveConfiguration(filepath.Join(dir, "configuration.bin"))
}

// Demo replays the best genome on the reference push sequence for duration seconds
// of simulated time and returns its score. observe, if not nil, is called after
// every frame.
func (s *Stadium) Demo(ctx context.Context, duration float64, observe func(t float64, scene *Scene)) (float64, error) {
	if len(s.Population) == 0 {
		return 0, fmt.Errorf("empty population")
	}
	scene := NewScene(s.Config.Simulation)
	scene.FreezeTime = 1.0
	scene.EnableDisturbance = true
	scene.Disturbances = &s.Disturbances[ReferenceSequence]
	scene.Initialize(s.State.Configuration, &s.Population[0].Genome)

	dt := s.Config.Simulation.TimeStep
	for t := 0.0; t < duration; t += dt {
		if err := ctx.Err(); err != nil {
			return scene.Score, err
		}
		scene.Update(dt)
		if observe != nil {
			observe(t, scene)
		}
	}
	return scene.Score, nil
}
