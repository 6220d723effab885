package neat

import (
	"math"
	"sort"
)

// SelectionConfig holds the population parameters.
type SelectionConfig struct {
	PopulationSize   int     `ini:"population_size" yaml:"population_size"`
	EliteRatio       float64 `ini:"elite_ratio" yaml:"elite_ratio"`
	MaxIterationTime float64 `ini:"max_iteration_time" yaml:"max_iteration_time"` // seconds of simulated time per episode
}

// DefaultSelectionConfig returns the selection settings used by the pendulum trainer.
func DefaultSelectionConfig() SelectionConfig {
	return SelectionConfig{
		PopulationSize:   1000,
		EliteRatio:       0.35,
		MaxIterationTime: 60.0,
	}
}

// Entry is one member of the population.
type Entry struct {
	Score  float64
	Genome Genome
}

// NewPopulation creates size entries holding fresh genomes.
func NewPopulation(size int, inputs, outputs uint32) []Entry {
	population := make([]Entry, size)
	for i := range population {
		population[i].Genome = *NewGenome(inputs, outputs)
	}
	return population
}

// Evolver produces successive generations by elitism plus roulette selection and mutation.
type Evolver struct {
	Config   SelectionConfig
	Mutator  *Mutator
	RNG      *RNG
	selector *Selector

	Generation         int
	IterationBestScore float64 // best score of the last evaluated generation
	BestScore          float64 // best score ever seen
}

// NewEvolver creates an evolver. The mutator and the selector share rng.
func NewEvolver(cfg SelectionConfig, mutator *Mutator, rng *RNG) *Evolver {
	return &Evolver{
		Config:    cfg,
		Mutator:   mutator,
		RNG:       rng,
		selector:  NewSelector(rng),
		BestScore: math.Inf(-1),
	}
}

// EliteCount returns the number of entries copied unchanged into each generation.
func (e *Evolver) EliteCount(size int) int {
	n := int(e.Config.EliteRatio * float64(size))
	return max(0, min(n, size))
}

// CreateNewGeneration ranks the scored population and returns its replacement.
// Elites are copied as-is; the remaining slots are filled with mutated clones of
// roulette-picked parents. Returned entries carry the parent score; the caller
// overwrites it after evaluation.
func (e *Evolver) CreateNewGeneration(old []Entry) []Entry {
	if len(old) == 0 {
		logger.Warn("cannot evolve an empty population")
		return nil
	}
	size := e.Config.PopulationSize
	if size <= 0 {
		size = len(old)
	}

	ranked := make([]*Entry, len(old))
	for i := range old {
		ranked[i] = &old[i]
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})

	e.Generation++
	e.IterationBestScore = ranked[0].Score
	if e.IterationBestScore > e.BestScore {
		e.BestScore = e.IterationBestScore
	}

	e.selector.Clear()
	for i, entry := range ranked {
		e.selector.AddEntry(i, math.Max(0, entry.Score))
	}
	e.selector.NormalizeEntries()

	next := make([]Entry, 0, size)
	elites := min(e.EliteCount(size), len(ranked))
	for i := 0; i < elites; i++ {
		next = append(next, Entry{Score: ranked[i].Score, Genome: ranked[i].Genome.Clone()})
	}
	for len(next) < size {
		parent := ranked[e.selector.Pick()]
		child := Entry{Score: parent.Score, Genome: parent.Genome.Clone()}
		e.Mutator.MutateGenome(&child.Genome)
		next = append(next, child)
	}

	logger.Debug("generation created",
		"generation", e.Generation,
		"best", e.IterationBestScore,
		"elites", elites,
		"size", size)
	return next
}
