// Package nn compiles genomes into flat networks that evaluate in a single pass.
package nn

import (
	"errors"

	"github.com/baldhumanity/pendulum-neat/neat"
)

// ErrInputSize is returned by Run when the input length differs from the input count.
var ErrInputSize = errors.New("nn: input size mismatch")

// Node is one compiled node. Its outgoing connections are the next ConnectionCount
// entries of the connection array.
type Node struct {
	Activation      neat.Activation
	Bias            float64
	Sum             float64
	ConnectionCount uint32
	Depth           uint32
}

// Value returns the activated output of the node.
func (n *Node) Value() float64 {
	return n.Activation.Apply(n.Sum + n.Bias)
}

// Connection is one compiled edge. Value holds the last transmitted signal.
type Connection struct {
	To     uint32
	Weight float64
	Value  float64
}

// Network is a topologically ordered feed-forward network. The first Info.Inputs nodes
// are the inputs and the last Info.Outputs nodes the outputs. Every connection targets
// a node placed after its source.
type Network struct {
	Info        neat.Info
	Nodes       []Node
	Connections []Connection
	Output      []float64
	MaxDepth    uint32
}

// New allocates a network for info with room for connectionCount connections.
func New(info neat.Info, connectionCount int) *Network {
	return &Network{
		Info:        info,
		Nodes:       make([]Node, info.NodeCount()),
		Connections: make([]Connection, connectionCount),
		Output:      make([]float64, info.Outputs),
	}
}

// Execute propagates input through the network. It returns false, leaving the
// output untouched, when the input length is wrong.
func (n *Network) Execute(input []float64) bool {
	if len(input) != int(n.Info.Inputs) {
		neat.Logger().Warn("network input size mismatch", "got", len(input), "want", n.Info.Inputs)
		return false
	}
	for i := range n.Nodes {
		n.Nodes[i].Sum = 0
	}
	for i, v := range input {
		n.Nodes[i].Sum = v
	}

	connIdx := 0
	for i := range n.Nodes {
		node := &n.Nodes[i]
		value := node.Value()
		for k := uint32(0); k < node.ConnectionCount; k++ {
			c := &n.Connections[connIdx]
			c.Value = value * c.Weight
			n.Nodes[c.To].Sum += c.Value
			connIdx++
		}
	}

	first := len(n.Nodes) - len(n.Output)
	for i := range n.Output {
		n.Output[i] = n.Nodes[first+i].Value()
	}
	return true
}

// Run is Execute with an error result.
func (n *Network) Run(input []float64) ([]float64, error) {
	if !n.Execute(input) {
		return nil, ErrInputSize
	}
	return n.Output, nil
}

// Result returns the output of the last execution.
func (n *Network) Result() []float64 {
	return n.Output
}

// Depth returns the depth of the deepest node.
func (n *Network) Depth() uint32 {
	return n.MaxDepth
}

// NodeValue returns the activated value of node i from the last execution.
func (n *Network) NodeValue(i int) float64 {
	return n.Nodes[i].Value()
}

// ForEachNode calls fn with every node in evaluation order.
func (n *Network) ForEachNode(fn func(i int, node *Node)) {
	for i := range n.Nodes {
		fn(i, &n.Nodes[i])
	}
}

// ForEachConnection calls fn with every connection and the index of its source node.
func (n *Network) ForEachConnection(fn func(from int, c *Connection)) {
	connIdx := 0
	for i := range n.Nodes {
		for k := uint32(0); k < n.Nodes[i].ConnectionCount; k++ {
			fn(i, &n.Connections[connIdx])
			connIdx++
		}
	}
}
