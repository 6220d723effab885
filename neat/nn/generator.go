package nn

import (
	"fmt"
	"sort"

	"github.com/baldhumanity/pendulum-neat/neat"
)

// Generator compiles genomes into networks. Its scratch buffers are reused between
// calls, so a Generator must not be shared across goroutines.
type Generator struct {
	idxToOrder []uint32
	outgoing   [][]int
}

// Generate computes the genome layering and lays the nodes out so that every
// connection points forward. Inputs keep the first slots and outputs the last ones.
func (gen *Generator) Generate(g *neat.Genome) *Network {
	order := gen.order(g)
	nodeCount := len(order)

	if cap(gen.idxToOrder) < nodeCount {
		gen.idxToOrder = make([]uint32, nodeCount)
	}
	gen.idxToOrder = gen.idxToOrder[:nodeCount]
	for i, o := range order {
		gen.idxToOrder[o] = uint32(i)
	}

	// Group connection indices by source, keeping genome order.
	if cap(gen.outgoing) < nodeCount {
		gen.outgoing = make([][]int, nodeCount)
	}
	gen.outgoing = gen.outgoing[:nodeCount]
	for i := range gen.outgoing {
		gen.outgoing[i] = gen.outgoing[i][:0]
	}
	for i, c := range g.Connections {
		gen.outgoing[c.From] = append(gen.outgoing[c.From], i)
	}

	network := New(g.Info, len(g.Connections))
	connIdx := 0
	for nodeIdx, o := range order {
		gn := g.Nodes[o]
		node := &network.Nodes[nodeIdx]
		node.Activation = gn.Activation
		node.Bias = gn.Bias
		node.Depth = gn.Depth
		node.ConnectionCount = uint32(len(gen.outgoing[o]))
		for _, ci := range gen.outgoing[o] {
			c := g.Connections[ci]
			target := gen.idxToOrder[c.To]
			if int(target) <= nodeIdx {
				panic(fmt.Sprintf("nn: connection %d -> %d points backwards in evaluation order", c.From, c.To))
			}
			network.Connections[connIdx] = Connection{To: target, Weight: c.Weight}
			connIdx++
		}
	}

	if nodeCount > 0 {
		network.MaxDepth = network.Nodes[nodeCount-1].Depth
	}
	return network
}

// Generate compiles g with a throwaway generator.
func Generate(g *neat.Genome) *Network {
	var gen Generator
	return gen.Generate(g)
}

// order returns the evaluation order: inputs, then hidden nodes by depth, then outputs.
func (gen *Generator) order(g *neat.Genome) []uint32 {
	g.ComputeDepth()
	inputs := int(g.Info.Inputs)

	order := make([]uint32, 0, len(g.Nodes))
	for i := 0; i < inputs && i < len(g.Nodes); i++ {
		order = append(order, uint32(i))
	}
	hidden := make([]uint32, 0, g.Info.Hidden)
	for i := range g.Nodes {
		idx := uint32(i)
		if !g.IsInput(idx) && !g.IsOutput(idx) {
			hidden = append(hidden, idx)
		}
	}
	sort.SliceStable(hidden, func(a, b int) bool {
		return g.Nodes[hidden[a]].Depth < g.Nodes[hidden[b]].Depth
	})
	order = append(order, hidden...)
	for i := uint32(0); i < g.Info.Outputs; i++ {
		order = append(order, g.Info.Inputs+i)
	}
	return order
}
