package build

import (
	"fmt"

	"github.com/patchbay/enginecore/diag"
	"github.com/patchbay/enginecore/internal/geom"
	"github.com/patchbay/enginecore/model"
	"github.com/patchbay/enginecore/registry"
)

// Compile cross-validates a snapshot against the registry and the routed
// per-edge delay table, flattens groups, and on success returns an
// immutable CompiledGraph. It is pure: it never mutates the snapshot or
// touches the model, and every BUILD_* issue found is collected before
// returning — a caller sees everything wrong with a graph in one pass, not
// one error at a time. On any error no graph is produced; callers keep
// their last valid one.
//
// delays is keyed by edge id for top-level edges and by
// routing.GroupEdgeKey for group-internal ones — routing.Delays over a
// RouteAll result produces exactly this shape.
func Compile(snap model.Snapshot, reg *registry.Registry, delays map[string]float64) diag.Result[*CompiledGraph] {
	flat, groupMeta, delayKeys, errs := flatten(snap)

	var warnings []diag.Issue

	nodes := make(map[string]CompiledNode, len(flat.Nodes))
	order := make([]string, 0, len(flat.Nodes))
	nodeAt := make(map[geom.Point]string, len(flat.Nodes))
	for _, n := range flat.Nodes {
		def, ok := reg.Lookup(n.Type)
		if !ok {
			errs = append(errs, diag.Issue{Code: CodeUnknownNodeType, EntityID: n.ID, OpIndex: -1,
				Message: "node references unknown type " + n.Type})
			continue
		}
		param := n.Params["param"]
		if param == 0 {
			param = def.DefaultParam
		}
		var state any
		if def.InitState != nil {
			state = def.InitState()
		}
		nodes[n.ID] = CompiledNode{
			ID: n.ID, Type: n.Type, Def: def,
			Param: registry.Clamp1to8(param), InitialState: state,
			Position: n.Position,
		}
		order = append(order, n.ID)
		nodeAt[n.Position] = n.ID
	}

	edges := make([]CompiledEdge, 0, len(flat.Edges))
	outgoing := make(map[string][]CompiledEdge, len(nodes))
	byPort := make(map[model.PortKey]string, len(flat.Edges)*2)
	for _, e := range flat.Edges {
		ce, edgeErrs := compileEdge(e, nodes, byPort, delays, delayKeys)
		if len(edgeErrs) > 0 {
			errs = append(errs, edgeErrs...)
			continue
		}
		edges = append(edges, ce)
		outgoing[ce.From.NodeID] = append(outgoing[ce.From.NodeID], ce)
		byPort[model.PortKey{NodeID: ce.From.NodeID, Direction: model.Output, Slot: ce.From.Slot}] = ce.ID
		byPort[model.PortKey{NodeID: ce.To.NodeID, Direction: model.Input, Slot: ce.To.Slot}] = ce.ID
	}

	warnings = append(warnings, validateDanglingInputs(flat, nodes)...)
	warnings = append(warnings, validateUnreachableOutputs(flat, nodes)...)

	if len(errs) > 0 {
		return diag.Result[*CompiledGraph]{OK: false, Errors: errs, Warnings: warnings}
	}

	return diag.Ok(&CompiledGraph{
		Nodes:              nodes,
		NodeOrder:          order,
		Edges:              edges,
		Outgoing:           outgoing,
		EdgeByDirectedPort: byPort,
		NodeAt:             nodeAt,
		Groups:             groupMeta,
	}).WithWarnings(warnings...)
}

func compileEdge(e model.EdgeRecord, nodes map[string]CompiledNode, byPort map[model.PortKey]string, delays map[string]float64, delayKeys map[string]string) (CompiledEdge, []diag.Issue) {
	var errs []diag.Issue
	add := func(code diag.Code, msg string) {
		errs = append(errs, diag.Issue{Code: code, EntityID: e.ID, OpIndex: -1, Message: msg})
	}

	fromNode, fromOK := nodes[e.From.NodeID]
	if !fromOK {
		add(CodePortSlotInvalid, "edge source node "+e.From.NodeID+" does not exist")
	}
	toNode, toOK := nodes[e.To.NodeID]
	if !toOK {
		add(CodePortSlotInvalid, "edge destination node "+e.To.NodeID+" does not exist")
	}
	if !fromOK || !toOK {
		return CompiledEdge{}, errs
	}

	// Group instances were inlined by flatten, so no Custom-archetype node
	// survives to this point; layouts derive without group context.
	fromLayout, err := registry.DeriveLayout(fromNode.Def, nil)
	if err != nil {
		add(CodePortSlotInvalid, err.Error())
		return CompiledEdge{}, errs
	}
	toLayout, err := registry.DeriveLayout(toNode.Def, nil)
	if err != nil {
		add(CodePortSlotInvalid, err.Error())
		return CompiledEdge{}, errs
	}

	if len(fromLayout.Outputs) == 0 {
		add(CodeSameDirection, "edge source end is not an output port")
	}
	if len(toLayout.Inputs) == 0 {
		add(CodeSameDirection, "edge destination end is not an input port")
	}
	if len(errs) > 0 {
		return CompiledEdge{}, errs
	}

	if e.From.Slot < 0 || e.From.Slot >= len(fromLayout.Outputs) {
		add(CodePortSlotInvalid, fmt.Sprintf("source slot %d out of range", e.From.Slot))
	}
	if e.To.Slot < 0 || e.To.Slot >= len(toLayout.Inputs) {
		add(CodePortSlotInvalid, fmt.Sprintf("destination slot %d out of range", e.To.Slot))
	}
	if len(errs) > 0 {
		return CompiledEdge{}, errs
	}

	fromRole := fromLayout.Outputs[e.From.Slot].Role
	toRole := toLayout.Inputs[e.To.Slot].Role
	// A signal output may legitimately drive a control input (that is what
	// makes it a control edge); only a control-typed output wired into a
	// signal input has no meaning.
	if fromRole == registry.Control && toRole == registry.Signal {
		add(CodeRoleMismatch, "control output wired into a signal input")
	}

	if _, taken := byPort[model.PortKey{NodeID: e.From.NodeID, Direction: model.Output, Slot: e.From.Slot}]; taken {
		add(CodePortAlreadyConnected, "output port already connected")
	}
	if _, taken := byPort[model.PortKey{NodeID: e.To.NodeID, Direction: model.Input, Slot: e.To.Slot}]; taken {
		add(CodePortAlreadyConnected, "input port already connected")
	}

	key := e.ID
	if mapped, ok := delayKeys[e.ID]; ok {
		key = mapped
	}
	delay, ok := delays[key]
	if !ok {
		add(CodeMissingDelay, "no routed delay for edge")
	}

	if len(errs) > 0 {
		return CompiledEdge{}, errs
	}
	return CompiledEdge{ID: e.ID, From: e.From, To: e.To, Role: toRole, Delay: delay}, nil
}
