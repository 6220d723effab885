package neat

import "sort"

// Info holds the node counts of a genome. Nodes are laid out inputs first, then
// outputs, then hidden nodes in creation order.
type Info struct {
	Inputs  uint32
	Outputs uint32
	Hidden  uint32
}

// NodeCount returns the total number of nodes.
func (i Info) NodeCount() uint32 {
	return i.Inputs + i.Outputs + i.Hidden
}

// Node is a node gene.
type Node struct {
	Bias       float64
	Activation Activation
	Depth      uint32
}

// Connection is a weighted edge gene between two node indices.
type Connection struct {
	From   uint32
	To     uint32
	Weight float64
}

// Genome is the evolvable encoding of a feed-forward network.
// Connections and Graph always describe the same edge set.
type Genome struct {
	Info        Info
	Nodes       []Node
	Connections []Connection
	Graph       DAG
}

// NewGenome creates a genome with identity inputs and tanh outputs, and no connections.
func NewGenome(inputs, outputs uint32) *Genome {
	g := &Genome{}
	g.Info.Inputs = inputs
	g.Info.Outputs = outputs
	for i := uint32(0); i < inputs; i++ {
		g.CreateNode(ActivationNone, false)
	}
	for i := uint32(0); i < outputs; i++ {
		g.CreateNode(ActivationTanh, false)
	}
	return g
}

// CreateNode appends a node and returns its index. Hidden nodes bump Info.Hidden;
// the caller is responsible for the input/output counts otherwise.
func (g *Genome) CreateNode(activation Activation, hidden bool) uint32 {
	g.Nodes = append(g.Nodes, Node{Activation: activation})
	g.Graph.CreateNode()
	if hidden {
		g.Info.Hidden++
	}
	return uint32(len(g.Nodes) - 1)
}

// TryCreateConnection adds from -> to if the graph accepts it.
func (g *Genome) TryCreateConnection(from, to uint32, weight float64) bool {
	if !g.Graph.CreateConnection(from, to) {
		return false
	}
	g.Connections = append(g.Connections, Connection{From: from, To: to, Weight: weight})
	return true
}

// CreateConnection adds from -> to. The edge is expected to be valid; if the graph
// refuses it nothing is recorded and false is returned.
func (g *Genome) CreateConnection(from, to uint32, weight float64) bool {
	return g.TryCreateConnection(from, to, weight)
}

// SplitConnection replaces connection i (from -> to, weight w) with a new ReLU hidden
// node n and the connections from -> n (w) and n -> to (1.0).
func (g *Genome) SplitConnection(i int) bool {
	if i < 0 || i >= len(g.Connections) {
		logger.Warn("cannot split connection, invalid index", "index", i, "connections", len(g.Connections))
		return false
	}
	c := g.Connections[i]
	g.RemoveConnection(i)

	n := g.CreateNode(ActivationReLU, true)
	g.CreateConnection(c.From, n, c.Weight)
	g.CreateConnection(n, c.To, 1.0)
	return true
}

// RemoveConnection deletes connection i. The last connection takes its slot.
func (g *Genome) RemoveConnection(i int) {
	if i < 0 || i >= len(g.Connections) {
		logger.Warn("cannot remove connection, invalid index", "index", i)
		return
	}
	c := g.Connections[i]
	g.Graph.RemoveConnection(c.From, c.To)
	last := len(g.Connections) - 1
	g.Connections[i] = g.Connections[last]
	g.Connections = g.Connections[:last]
}

// ComputeDepth copies the graph layering into the nodes and moves every output to the
// last layer (at least 1).
func (g *Genome) ComputeDepth() bool {
	ok := g.Graph.ComputeDepth()
	var maxDepth uint32
	for i := range g.Nodes {
		g.Nodes[i].Depth = g.Graph.Nodes[i].Depth
		maxDepth = max(maxDepth, g.Nodes[i].Depth)
	}
	outputDepth := max(maxDepth, 1)
	for i := uint32(0); i < g.Info.Outputs; i++ {
		g.Nodes[g.Info.Inputs+i].Depth = outputDepth
	}
	return ok
}

// Order returns node indices sorted by depth. Inputs keep their positions at the front.
func (g *Genome) Order() []uint32 {
	order := make([]uint32, len(g.Nodes))
	for i := range order {
		order[i] = uint32(i)
	}
	tail := order[min(int(g.Info.Inputs), len(order)):]
	sort.SliceStable(tail, func(a, b int) bool {
		return g.Nodes[tail[a]].Depth < g.Nodes[tail[b]].Depth
	})
	return order
}

// IsInput reports whether node i is an input.
func (g *Genome) IsInput(i uint32) bool {
	return i < g.Info.Inputs
}

// IsOutput reports whether node i is an output.
func (g *Genome) IsOutput(i uint32) bool {
	return i >= g.Info.Inputs && i < g.Info.Inputs+g.Info.Outputs
}

// CreateFullConnections links every input to every output with a random weight in
// [-weightRange, weightRange).
func (g *Genome) CreateFullConnections(rng *RNG, weightRange float64) {
	for i := uint32(0); i < g.Info.Inputs; i++ {
		for o := uint32(0); o < g.Info.Outputs; o++ {
			g.TryCreateConnection(i, g.Info.Inputs+o, rng.GetFullRange(weightRange))
		}
	}
}

// Clone returns a deep copy of g.
func (g *Genome) Clone() Genome {
	return Genome{
		Info:        g.Info,
		Nodes:       append([]Node(nil), g.Nodes...),
		Connections: append([]Connection(nil), g.Connections...),
		Graph:       g.Graph.Clone(),
	}
}
