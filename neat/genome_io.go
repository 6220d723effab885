package neat

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Limits applied when reading genomes from untrusted files.
const (
	maxFileNodes       = 1 << 20
	maxFileConnections = 1 << 24
)

// nodeRecord is the on-disk node layout: f64 bias, u8 activation, 3 padding bytes, u32 depth.
type nodeRecord struct {
	Bias       float64
	Activation uint8
	_          [3]byte
	Depth      uint32
}

// connectionRecord is the on-disk connection layout: u32 from, u32 to, f64 weight.
type connectionRecord struct {
	From   uint32
	To     uint32
	Weight float64
}

// WriteTo encodes g in the little endian genome format.
func (g *Genome) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := binary.Write(cw, binary.LittleEndian, g.Info); err != nil {
		return cw.n, fmt.Errorf("failed to write genome header: %w", err)
	}
	for _, n := range g.Nodes {
		rec := nodeRecord{Bias: n.Bias, Activation: uint8(n.Activation), Depth: n.Depth}
		if err := binary.Write(cw, binary.LittleEndian, rec); err != nil {
			return cw.n, fmt.Errorf("failed to write node: %w", err)
		}
	}
	if err := binary.Write(cw, binary.LittleEndian, uint64(len(g.Connections))); err != nil {
		return cw.n, fmt.Errorf("failed to write connection count: %w", err)
	}
	for _, c := range g.Connections {
		rec := connectionRecord(c)
		if err := binary.Write(cw, binary.LittleEndian, rec); err != nil {
			return cw.n, fmt.Errorf("failed to write connection: %w", err)
		}
	}
	return cw.n, nil
}

// ReadFrom decodes a genome. g is only replaced when the whole stream decodes into a
// consistent acyclic genome.
func (g *Genome) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	var loaded Genome
	if err := binary.Read(cr, binary.LittleEndian, &loaded.Info); err != nil {
		return cr.n, fmt.Errorf("failed to read genome header: %w", err)
	}
	info := loaded.Info
	total := uint64(info.Inputs) + uint64(info.Outputs) + uint64(info.Hidden)
	if total > maxFileNodes {
		return cr.n, fmt.Errorf("genome header declares too many nodes (%d)", total)
	}
	nodeCount := uint32(total)

	loaded.Nodes = make([]Node, 0, nodeCount)
	for i := uint32(0); i < nodeCount; i++ {
		var rec nodeRecord
		if err := binary.Read(cr, binary.LittleEndian, &rec); err != nil {
			return cr.n, fmt.Errorf("failed to read node %d: %w", i, err)
		}
		loaded.Nodes = append(loaded.Nodes, Node{
			Bias:       rec.Bias,
			Activation: Activation(rec.Activation),
			Depth:      rec.Depth,
		})
		loaded.Graph.CreateNode()
	}

	var connectionCount uint64
	if err := binary.Read(cr, binary.LittleEndian, &connectionCount); err != nil {
		return cr.n, fmt.Errorf("failed to read connection count: %w", err)
	}
	if connectionCount > maxFileConnections {
		return cr.n, fmt.Errorf("genome declares too many connections (%d)", connectionCount)
	}
	for i := uint64(0); i < connectionCount; i++ {
		var rec connectionRecord
		if err := binary.Read(cr, binary.LittleEndian, &rec); err != nil {
			return cr.n, fmt.Errorf("failed to read connection %d: %w", i, err)
		}
		if !loaded.CreateConnection(rec.From, rec.To, rec.Weight) {
			return cr.n, fmt.Errorf("connection %d (%d -> %d) rejected by the graph", i, rec.From, rec.To)
		}
	}

	if err := loaded.Validate(); err != nil {
		return cr.n, err
	}
	*g = loaded
	return cr.n, nil
}

// Validate checks that nodes, connections and graph agree, that the graph is acyclic
// and that connections only run from inputs or hidden nodes to hidden nodes or outputs.
func (g *Genome) Validate() error {
	declared := uint64(g.Info.Inputs) + uint64(g.Info.Outputs) + uint64(g.Info.Hidden)
	if uint64(len(g.Nodes)) != declared {
		return fmt.Errorf("genome has %d nodes, header declares %d", len(g.Nodes), declared)
	}
	if len(g.Graph.Nodes) != len(g.Nodes) {
		return fmt.Errorf("genome graph has %d nodes, genome has %d", len(g.Graph.Nodes), len(g.Nodes))
	}
	for i, n := range g.Nodes {
		if !n.Activation.Valid() {
			return fmt.Errorf("node %d has unknown activation %d", i, n.Activation)
		}
	}
	if g.Graph.EdgeCount() != len(g.Connections) {
		return fmt.Errorf("genome graph has %d edges for %d connections", g.Graph.EdgeCount(), len(g.Connections))
	}
	for i, c := range g.Connections {
		if !g.Graph.IsParent(c.From, c.To) {
			return fmt.Errorf("connection %d (%d -> %d) missing from graph", i, c.From, c.To)
		}
		if g.IsInput(c.To) {
			return fmt.Errorf("connection %d (%d -> %d) targets an input", i, c.From, c.To)
		}
		if g.IsOutput(c.From) {
			return fmt.Errorf("connection %d (%d -> %d) leaves an output", i, c.From, c.To)
		}
	}
	return g.Graph.Validate()
}

// MarshalBinary encodes the genome in the file format.
func (g Genome) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := g.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a genome produced by MarshalBinary.
func (g *Genome) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if _, err := g.ReadFrom(r); err != nil {
		return err
	}
	if r.Len() != 0 {
		return errors.New("trailing data after genome")
	}
	return nil
}

// WriteToFile saves the genome to path.
func (g *Genome) WriteToFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create genome file '%s': %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := g.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write genome file '%s': %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write genome file '%s': %w", path, err)
	}
	return nil
}

// LoadFromFile replaces g with the genome stored at path. On failure g is left
// unchanged and a warning is logged.
func (g *Genome) LoadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		logger.Warn("cannot open genome file", "path", path, "error", err)
		return fmt.Errorf("failed to open genome file '%s': %w", path, err)
	}
	defer file.Close()

	if _, err := g.ReadFrom(bufio.NewReader(file)); err != nil {
		logger.Warn("cannot load genome file", "path", path, "error", err)
		return fmt.Errorf("failed to load genome file '%s': %w", path, err)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
