// Package build fuses a graph snapshot, the node-type registry, and routed
// edge delays into an immutable CompiledGraph the runtime can execute
// without touching the model, registry, or router again mid-run.
package build

import (
	"github.com/patchbay/enginecore/internal/geom"
	"github.com/patchbay/enginecore/model"
	"github.com/patchbay/enginecore/registry"
)

// CompiledNode is one flattened node ready for execution: its registered
// behavior, its resolved param, and the state its initState produced.
type CompiledNode struct {
	ID           string
	Type         string
	Def          registry.NodeTypeDef
	Param        int
	InitialState any
	Position     geom.Point
}

// CompiledEdge is one flattened edge with its derived role and base delay.
// Delay is in ticks and may be zero; the runtime applies the positive
// floor, not the builder.
type CompiledEdge struct {
	ID    string
	From  model.EndPoint
	To    model.EndPoint
	Role  registry.PortRole
	Delay float64
}

// GroupMeta records, per group-instance node id, what the flattener did
// with it. The runtime never reads this; it exists for diagnostics and the
// editor's group UI.
type GroupMeta struct {
	GroupID         string
	NodeIDs         []string // flattened internal node ids, insertion order
	ExternalInputs  []model.EndPoint
	ExternalOutputs []model.EndPoint
	Controls        []model.EndPoint
}

// CompiledGraph is the immutable result of a successful Compile. Nothing
// in it is ever mutated after construction; live patching either
// recompiles a fresh CompiledGraph or goes through the runtime's own
// patch splicing, never through this one.
type CompiledGraph struct {
	Nodes     map[string]CompiledNode
	NodeOrder []string // insertion order, for deterministic iteration

	Edges []CompiledEdge // insertion order == scheduling tie-break order

	// Outgoing indexes Edges by source node id, preserving Edges order, so
	// the runtime can fan pulses out from a node without a linear scan.
	Outgoing map[string][]CompiledEdge

	// EdgeByDirectedPort maps a (node, direction, slot) port to the single
	// edge connected there.
	EdgeByDirectedPort map[model.PortKey]string

	// NodeAt maps a grid position to the node occupying it.
	NodeAt map[geom.Point]string

	// Groups holds flattening metadata, keyed by group-instance node id.
	Groups map[string]GroupMeta
}
