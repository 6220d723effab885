// Package telemetry records per-generation training statistics.
package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Generation summarizes one evaluated generation.
type Generation struct {
	RunID       string  `csv:"run_id"`
	Exploration uint32  `csv:"exploration"`
	Iteration   uint32  `csv:"iteration"`
	Best        float64 `csv:"best"`
	Mean        float64 `csv:"mean"`
	StdDev      float64 `csv:"std"`
	Min         float64 `csv:"min"`
	P50         float64 `csv:"p50"`
	P90         float64 `csv:"p90"`

	Gravity  float64 `csv:"gravity"`
	Friction float64 `csv:"friction"`

	// Structure of the best genome.
	BestHidden      uint32 `csv:"best_hidden"`
	BestConnections int    `csv:"best_connections"`

	DifficultyIncreased bool    `csv:"difficulty_increased"`
	ElapsedSec          float64 `csv:"elapsed_sec"`
}

// ScoreStats holds the distribution of a generation's scores.
type ScoreStats struct {
	Best   float64
	Mean   float64
	StdDev float64
	Min    float64
	P50    float64
	P90    float64
}

// Summarize computes score statistics. It returns zero stats for an empty slice.
func Summarize(scores []float64) ScoreStats {
	if len(scores) == 0 {
		return ScoreStats{}
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)

	var s ScoreStats
	s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		s.StdDev = 0
	}
	s.Best = floats.Max(sorted)
	s.Min = floats.Min(sorted)
	s.P50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return s
}

// Apply copies the statistics into g.
func (s ScoreStats) Apply(g *Generation) {
	g.Best = s.Best
	g.Mean = s.Mean
	g.StdDev = s.StdDev
	g.Min = s.Min
	g.P50 = s.P50
	g.P90 = s.P90
}
