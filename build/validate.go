package build

import (
	"github.com/patchbay/enginecore/diag"
	"github.com/patchbay/enginecore/model"
)

// validateDanglingInputs warns about a non-source node whose primary signal
// input (slot 0) has no incoming edge: it can never fire, since every
// behavior besides a source's is driven by an incoming pulse. This is a
// warning, not an error — a patch mid-edit has unconnected nodes
// constantly, and the graph still compiles and runs around them.
func validateDanglingInputs(snap model.Snapshot, nodes map[string]CompiledNode) []diag.Issue {
	fed := make(map[model.PortKey]bool, len(snap.Edges))
	for _, e := range snap.Edges {
		fed[model.PortKey{NodeID: e.To.NodeID, Direction: model.Input, Slot: e.To.Slot}] = true
	}

	var issues []diag.Issue
	for _, n := range snap.Nodes {
		cn, ok := nodes[n.ID]
		if !ok || cn.Def.Category == "source" {
			continue
		}
		if cn.Def.Inputs == 0 {
			continue
		}
		if !fed[model.PortKey{NodeID: n.ID, Direction: model.Input, Slot: 0}] {
			issues = append(issues, diag.Issue{
				Code: CodeDanglingInput, EntityID: n.ID, OpIndex: -1,
				Message: "node has no incoming edge on its primary input and will never fire",
			})
		}
	}
	return issues
}

// validateUnreachableOutputs warns about an output-category node that no
// source node can ever reach by following edges forward.
func validateUnreachableOutputs(snap model.Snapshot, nodes map[string]CompiledNode) []diag.Issue {
	adj := make(map[string][]string, len(snap.Nodes))
	for _, e := range snap.Edges {
		adj[e.From.NodeID] = append(adj[e.From.NodeID], e.To.NodeID)
	}

	reachable := make(map[string]bool, len(snap.Nodes))
	var stack []string
	for _, n := range snap.Nodes {
		if cn, ok := nodes[n.ID]; ok && cn.Def.Category == "source" {
			stack = append(stack, n.ID)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[id] {
			continue
		}
		reachable[id] = true
		for _, next := range adj[id] {
			if !reachable[next] {
				stack = append(stack, next)
			}
		}
	}

	var issues []diag.Issue
	for _, n := range snap.Nodes {
		cn, ok := nodes[n.ID]
		if !ok || !cn.Def.IsOutput() {
			continue
		}
		if !reachable[n.ID] {
			issues = append(issues, diag.Issue{
				Code: CodeUnreachableOutput, EntityID: n.ID, OpIndex: -1,
				Message: "output node is not reachable from any source node",
			})
		}
	}
	return issues
}
