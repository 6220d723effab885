package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationsKeepGenomeAcyclic(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := NewRNG(seed)
		cfg := DefaultMutationConfig()
		cfg.NewNodeProba = 0.2
		m := NewMutator(cfg, rng)

		g := NewGenome(8, 1)
		for i := 0; i < 300; i++ {
			m.MutateGenome(g)
		}

		require.NoError(t, g.Validate(), "seed %d", seed)
		assert.True(t, g.ComputeDepth())
		assert.LessOrEqual(t, int(g.Info.Hidden), cfg.MaxHiddenNodes)
		for _, c := range g.Connections {
			assert.False(t, g.IsOutput(c.From), "seed %d: edge from output %d", seed, c.From)
			assert.False(t, g.IsInput(c.To), "seed %d: edge into input %d", seed, c.To)
			assert.Greater(t, g.Nodes[c.To].Depth, g.Nodes[c.From].Depth)
		}
	}
}

func TestMutationIsDeterministic(t *testing.T) {
	run := func() *Genome {
		m := NewMutator(DefaultMutationConfig(), NewRNG(42))
		g := NewGenome(4, 2)
		for i := 0; i < 50; i++ {
			m.MutateGenome(g)
		}
		return g
	}
	a, b := run(), run()
	assert.Equal(t, a.Nodes, b.Nodes)
	assert.Equal(t, a.Connections, b.Connections)
}

func TestMutateWeightsWithoutConnectionsDrawsNothing(t *testing.T) {
	rng := NewRNG(9)
	m := NewMutator(DefaultMutationConfig(), rng)
	g := NewGenome(2, 1)

	m.MutateWeights(g)
	m.NewNode(g)

	assert.Equal(t, NewRNG(9).GetUnder(1), rng.GetUnder(1))
	assert.Len(t, g.Nodes, 3)
}

func TestNewNodeRespectsHiddenBudget(t *testing.T) {
	cfg := DefaultMutationConfig()
	cfg.NewNodeProba = 1
	cfg.NewConnProba = 1
	cfg.MaxHiddenNodes = 3
	m := NewMutator(cfg, NewRNG(5))

	g := NewGenome(2, 1)
	for i := 0; i < 200; i++ {
		m.MutateGenome(g)
	}
	assert.EqualValues(t, 3, g.Info.Hidden)
	require.NoError(t, g.Validate())
}

func TestNewConnectionEndpoints(t *testing.T) {
	m := NewMutator(DefaultMutationConfig(), NewRNG(3))
	g := NewGenome(3, 2)
	require.True(t, g.TryCreateConnection(0, 3, 1))
	g.SplitConnection(0)
	g.SplitConnection(0)

	for i := 0; i < 500; i++ {
		m.NewConnection(g)
	}
	require.NoError(t, g.Validate())
	for _, c := range g.Connections {
		assert.False(t, g.IsOutput(c.From))
		assert.False(t, g.IsInput(c.To))
		assert.Less(t, int(c.To), len(g.Nodes))
	}
}

func TestMutateBiasesStaysInReach(t *testing.T) {
	cfg := DefaultMutationConfig()
	cfg.NewValueProba = 1
	m := NewMutator(cfg, NewRNG(1))
	g := NewGenome(2, 1)
	for i := 0; i < 100; i++ {
		m.MutateBiases(g)
	}
	for _, n := range g.Nodes {
		assert.GreaterOrEqual(t, n.Bias, -cfg.WeightRange)
		assert.Less(t, n.Bias, cfg.WeightRange)
	}
}
