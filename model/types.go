// Package model holds the authoritative in-memory graph: nodes, edges,
// manual corners, and group definitions, mutated only through batched,
// transactional ops, with indices kept always-current inside the same
// transaction that changes the records they index.
package model

import "github.com/patchbay/enginecore/internal/geom"

// NodeRecord is one node in the graph.
type NodeRecord struct {
	ID       string
	Type     string
	Position geom.Point
	Rotation int // one of 0, 90, 180, 270
	Params   map[string]int
	Name     string
	GroupRef string // "" unless this node instantiates a group
}

// Direction distinguishes a port's role as an edge endpoint.
type Direction int

const (
	Output Direction = iota
	Input
)

// EndPoint identifies one side of an edge.
type EndPoint struct {
	NodeID string
	Slot   int
}

// EdgeRecord is one edge in the graph: output port to input port, plus any
// manually placed corners the router must treat as hard constraints.
type EdgeRecord struct {
	ID      string
	From    EndPoint // output
	To      EndPoint // input
	Corners []geom.Point
}

// GroupDefinition describes a user-defined subgraph exposed through mapped
// ports. The internal snapshot never contains nested groups.
type GroupDefinition struct {
	ID      string
	Inputs  []GroupPortMapping
	Outputs []GroupPortMapping
	Controls []GroupPortMapping
	Internal Snapshot
}

// GroupPortMapping projects one internal signal/control port to an external
// group-node slot, in declaration order.
type GroupPortMapping struct {
	InternalNodeID string
	InternalSlot   int
}

// Snapshot is a cheap, insertion-ordered clone of the graph's records.
type Snapshot struct {
	Nodes  []NodeRecord
	Edges  []EdgeRecord
	Groups map[string]GroupDefinition
}

// PortKey identifies a derived port for indexing: (nodeId, direction, slot).
type PortKey struct {
	NodeID    string
	Direction Direction
	Slot      int
}
