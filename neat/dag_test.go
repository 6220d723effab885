package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDAG(n int) *DAG {
	d := &DAG{}
	for i := 0; i < n; i++ {
		d.CreateNode()
	}
	return d
}

func TestDAGCreateConnectionGuards(t *testing.T) {
	d := newDAG(3)

	tests := []struct {
		name     string
		from, to uint32
		want     bool
	}{
		{"valid", 0, 1, true},
		{"duplicate", 0, 1, false},
		{"self loop", 1, 1, false},
		{"out of range source", 5, 1, false},
		{"out of range target", 0, 3, false},
		{"chain", 1, 2, true},
		{"closes cycle", 2, 0, false},
		{"back edge", 1, 0, false},
		{"shortcut", 0, 2, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, d.CreateConnection(tc.from, tc.to))
		})
	}

	assert.EqualValues(t, 0, d.Nodes[0].Incoming)
	assert.EqualValues(t, 1, d.Nodes[1].Incoming)
	assert.EqualValues(t, 2, d.Nodes[2].Incoming)
	require.NoError(t, d.Validate())
}

func TestDAGAncestry(t *testing.T) {
	d := newDAG(4)
	require.True(t, d.CreateConnection(0, 1))
	require.True(t, d.CreateConnection(1, 2))

	assert.True(t, d.IsParent(0, 1))
	assert.False(t, d.IsParent(0, 2))
	assert.True(t, d.IsAncestor(0, 2))
	assert.False(t, d.IsAncestor(2, 0))
	assert.False(t, d.IsAncestor(0, 3))
}

func TestDAGComputeDepth(t *testing.T) {
	d := newDAG(5)
	// 0 -> 1 -> 2 -> 3, 0 -> 3, 4 isolated
	require.True(t, d.CreateConnection(0, 1))
	require.True(t, d.CreateConnection(1, 2))
	require.True(t, d.CreateConnection(2, 3))
	require.True(t, d.CreateConnection(0, 3))

	require.True(t, d.ComputeDepth())
	depths := make([]uint32, len(d.Nodes))
	for i, n := range d.Nodes {
		depths[i] = n.Depth
	}
	assert.Equal(t, []uint32{0, 1, 2, 3, 0}, depths)
	assert.Equal(t, []uint32{0, 4, 1, 2, 3}, d.Order())
}

func TestDAGDepthAfterRemoval(t *testing.T) {
	d := newDAG(3)
	require.True(t, d.CreateConnection(0, 1))
	require.True(t, d.CreateConnection(1, 2))
	require.True(t, d.ComputeDepth())
	assert.EqualValues(t, 2, d.Nodes[2].Depth)

	d.RemoveConnection(1, 2)
	require.True(t, d.ComputeDepth())
	assert.EqualValues(t, 0, d.Nodes[2].Depth)
	assert.EqualValues(t, 0, d.Nodes[2].Incoming)
	require.NoError(t, d.Validate())
}

func TestDAGRemoveMissingConnection(t *testing.T) {
	d := newDAG(2)
	d.RemoveConnection(0, 1)
	d.RemoveConnection(4, 1)
	assert.Empty(t, d.Nodes[0].Out)
	assert.EqualValues(t, 0, d.Nodes[1].Incoming)
}

func TestDAGValidateDetectsCorruption(t *testing.T) {
	d := newDAG(2)
	require.True(t, d.CreateConnection(0, 1))

	// Force a cycle behind the guard's back.
	bad := d.Clone()
	bad.Nodes[1].Out = append(bad.Nodes[1].Out, 0)
	bad.Nodes[0].Incoming++
	assert.Error(t, bad.Validate())
	assert.False(t, bad.ComputeDepth())

	// Inconsistent incoming count.
	bad = d.Clone()
	bad.Nodes[1].Incoming = 3
	assert.Error(t, bad.Validate())

	// The clone does not share edge storage.
	assert.Len(t, d.Nodes[1].Out, 0)
	assert.NoError(t, d.Validate())
}
