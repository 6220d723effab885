package neat

// MutationConfig holds the probabilities and ranges used when mutating genomes.
type MutationConfig struct {
	NewNodeProba     float64 `ini:"new_node_proba" yaml:"new_node_proba"`
	NewConnProba     float64 `ini:"new_conn_proba" yaml:"new_conn_proba"`
	NewValueProba    float64 `ini:"new_value_proba" yaml:"new_value_proba"`
	WeightRange      float64 `ini:"weight_range" yaml:"weight_range"`
	WeightSmallRange float64 `ini:"weight_small_range" yaml:"weight_small_range"`
	MutCount         int     `ini:"mut_count" yaml:"mut_count"`
	MaxHiddenNodes   int     `ini:"max_hidden_nodes" yaml:"max_hidden_nodes"`
}

// DefaultMutationConfig returns the mutation settings the pendulum trainer was tuned with.
func DefaultMutationConfig() MutationConfig {
	return MutationConfig{
		NewNodeProba:     0.05,
		NewConnProba:     0.8,
		NewValueProba:    0.2,
		WeightRange:      1.0,
		WeightSmallRange: 0.01,
		MutCount:         4,
		MaxHiddenNodes:   30,
	}
}

// Mutator applies random parametric and structural changes to genomes.
type Mutator struct {
	Config MutationConfig
	RNG    *RNG
}

// NewMutator creates a mutator drawing from rng.
func NewMutator(cfg MutationConfig, rng *RNG) *Mutator {
	return &Mutator{Config: cfg, RNG: rng}
}

// MutateGenome runs MutCount parametric rounds, then possibly adds a node and a connection.
func (m *Mutator) MutateGenome(g *Genome) {
	for i := 0; i < m.Config.MutCount; i++ {
		if m.RNG.Proba(0.25) {
			if m.RNG.Proba(0.5) {
				m.MutateBiases(g)
			} else {
				m.MutateWeights(g)
			}
		}
	}

	// The draw happens even when the hidden budget is exhausted so sequences stay aligned.
	if m.RNG.Proba(m.Config.NewNodeProba) && m.Config.MaxHiddenNodes > int(g.Info.Hidden) {
		m.NewNode(g)
	}
	if m.RNG.Proba(m.Config.NewConnProba) {
		m.NewConnection(g)
	}
}

// MutateBiases perturbs or resamples the bias of one random node.
func (m *Mutator) MutateBiases(g *Genome) {
	if len(g.Nodes) == 0 {
		return
	}
	n := &g.Nodes[m.RNG.Index(len(g.Nodes))]
	switch {
	case m.RNG.Proba(m.Config.NewValueProba):
		n.Bias = m.RNG.GetFullRange(m.Config.WeightRange)
	case m.RNG.Proba(0.25):
		n.Bias += m.RNG.GetFullRange(m.Config.WeightRange)
	default:
		n.Bias += m.Config.WeightSmallRange * m.RNG.GetFullRange(m.Config.WeightRange)
	}
}

// MutateWeights perturbs or resamples the weight of one random connection.
func (m *Mutator) MutateWeights(g *Genome) {
	if len(g.Connections) == 0 {
		return
	}
	c := &g.Connections[m.RNG.Index(len(g.Connections))]
	switch {
	case m.RNG.Proba(m.Config.NewValueProba):
		c.Weight = m.RNG.GetFullRange(m.Config.WeightRange)
	case m.RNG.Proba(0.75):
		c.Weight += m.Config.WeightSmallRange * m.RNG.GetFullRange(m.Config.WeightRange)
	default:
		c.Weight += m.RNG.GetFullRange(m.Config.WeightRange)
	}
}

// NewNode splits a random connection.
func (m *Mutator) NewNode(g *Genome) {
	if len(g.Connections) == 0 {
		return
	}
	g.SplitConnection(m.RNG.Index(len(g.Connections)))
}

// NewConnection attempts to add one random edge. The source is drawn among inputs and
// hidden nodes, the target among outputs and hidden nodes. Rejected edges are dropped.
func (m *Mutator) NewConnection(g *Genome) {
	info := g.Info
	sources := int(info.Inputs + info.Hidden)
	targets := int(info.Hidden + info.Outputs)
	if sources == 0 || targets == 0 {
		return
	}

	from := uint32(m.RNG.Index(sources))
	// Skip over the output block: indices past the inputs map onto hidden nodes.
	if g.IsOutput(from) {
		from += info.Outputs
	}
	to := uint32(m.RNG.Index(targets)) + info.Inputs

	weight := m.RNG.GetFullRange(m.Config.WeightRange)
	g.TryCreateConnection(from, to, weight)
}
