package neat

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// DAGNode is the structural view of one genome node.
type DAGNode struct {
	Incoming uint32   // number of incoming edges
	Depth    uint32   // longest path from a source, valid after ComputeDepth
	Out      []uint32 // targets of outgoing edges
}

// DAG tracks the connectivity of a genome and refuses edges that would close a cycle.
type DAG struct {
	Nodes []DAGNode
}

// CreateNode appends an isolated node.
func (d *DAG) CreateNode() {
	d.Nodes = append(d.Nodes, DAGNode{})
}

// IsValid reports whether i indexes an existing node.
func (d *DAG) IsValid(i uint32) bool {
	return int(i) < len(d.Nodes)
}

// IsParent reports whether the edge a -> b exists.
func (d *DAG) IsParent(a, b uint32) bool {
	if !d.IsValid(a) {
		return false
	}
	for _, o := range d.Nodes[a].Out {
		if o == b {
			return true
		}
	}
	return false
}

// IsAncestor reports whether b is reachable from a.
func (d *DAG) IsAncestor(a, b uint32) bool {
	if !d.IsValid(a) || !d.IsValid(b) {
		return false
	}
	visited := make([]bool, len(d.Nodes))
	stack := []uint32{a}
	visited[a] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, o := range d.Nodes[n].Out {
			if o == b {
				return true
			}
			if !visited[o] {
				visited[o] = true
				stack = append(stack, o)
			}
		}
	}
	return false
}

// CreateConnection adds from -> to unless one of the endpoints is invalid, the edge is a
// self-loop, already exists or would create a cycle.
func (d *DAG) CreateConnection(from, to uint32) bool {
	if !d.IsValid(from) || !d.IsValid(to) || from == to {
		return false
	}
	// A path to -> from would be closed into a cycle by the new edge.
	if d.IsAncestor(to, from) {
		return false
	}
	if d.IsParent(from, to) {
		return false
	}
	d.Nodes[from].Out = append(d.Nodes[from].Out, to)
	d.Nodes[to].Incoming++
	return true
}

// RemoveConnection deletes the edge from -> to.
func (d *DAG) RemoveConnection(from, to uint32) {
	if !d.IsValid(from) || !d.IsValid(to) {
		logger.Warn("cannot remove connection, invalid node", "from", from, "to", to)
		return
	}
	out := d.Nodes[from].Out
	for i, o := range out {
		if o == to {
			last := len(out) - 1
			out[i] = out[last]
			d.Nodes[from].Out = out[:last]
			d.Nodes[to].Incoming--
			return
		}
	}
	logger.Warn("connection not found", "from", from, "to", to)
}

// ComputeDepth assigns every node the length of the longest path reaching it from a
// node without incoming edges. It returns false if some nodes could not be reached,
// which only happens when the graph is cyclic.
func (d *DAG) ComputeDepth() bool {
	incoming := make([]uint32, len(d.Nodes))
	stack := make([]uint32, 0, len(d.Nodes))
	for i := range d.Nodes {
		d.Nodes[i].Depth = 0
		incoming[i] = d.Nodes[i].Incoming
		if incoming[i] == 0 {
			stack = append(stack, uint32(i))
		}
	}

	visited := 0
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited++
		depth := d.Nodes[idx].Depth + 1
		for _, o := range d.Nodes[idx].Out {
			if d.Nodes[o].Depth < depth {
				d.Nodes[o].Depth = depth
			}
			incoming[o]--
			if incoming[o] == 0 {
				stack = append(stack, o)
			}
		}
	}

	if visited != len(d.Nodes) {
		logger.Warn("depth computation did not reach every node", "visited", visited, "nodes", len(d.Nodes))
		return false
	}
	return true
}

// Order returns node indices sorted by depth, ties broken by index.
func (d *DAG) Order() []uint32 {
	order := make([]uint32, len(d.Nodes))
	for i := range order {
		order[i] = uint32(i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return d.Nodes[order[a]].Depth < d.Nodes[order[b]].Depth
	})
	return order
}

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int {
	n := 0
	for i := range d.Nodes {
		n += len(d.Nodes[i].Out)
	}
	return n
}

// Clone returns a deep copy.
func (d *DAG) Clone() DAG {
	nodes := make([]DAGNode, len(d.Nodes))
	for i, n := range d.Nodes {
		nodes[i] = DAGNode{
			Incoming: n.Incoming,
			Depth:    n.Depth,
			Out:      append([]uint32(nil), n.Out...),
		}
	}
	return DAG{Nodes: nodes}
}

// Validate checks the bookkeeping (incoming counts, edge targets) and verifies
// acyclicity independently with a topological sort.
func (d *DAG) Validate() error {
	incoming := make([]uint32, len(d.Nodes))
	g := simple.NewDirectedGraph()
	for i := range d.Nodes {
		g.AddNode(simple.Node(int64(i)))
	}
	for i, n := range d.Nodes {
		for _, o := range n.Out {
			if !d.IsValid(o) {
				return fmt.Errorf("dag: edge %d -> %d targets a missing node", i, o)
			}
			if int(o) == i {
				return fmt.Errorf("dag: self loop on node %d", i)
			}
			if g.HasEdgeFromTo(int64(i), int64(o)) {
				return fmt.Errorf("dag: duplicate edge %d -> %d", i, o)
			}
			g.SetEdge(g.NewEdge(simple.Node(int64(i)), simple.Node(int64(o))))
			incoming[o]++
		}
	}
	for i, n := range d.Nodes {
		if n.Incoming != incoming[i] {
			return fmt.Errorf("dag: node %d records %d incoming edges, found %d", i, n.Incoming, incoming[i])
		}
	}
	if _, err := topo.Sort(g); err != nil {
		return fmt.Errorf("dag: %w", err)
	}
	return nil
}
