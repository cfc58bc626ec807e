package build

import (
	"github.com/patchbay/enginecore/diag"
	"github.com/patchbay/enginecore/model"
	"github.com/patchbay/enginecore/routing"
)

// flatten expands every group-instance node into its internal snapshot,
// namespacing internal ids by the instance id so two instances of the same
// group never collide, and rewires edges that terminated on a group
// instance's external ports to the internal node/slot the group maps them
// to. Groups never nest, so one pass is enough.
// delayKeys maps each group-internal flattened edge id to the
// routing.GroupEdgeKey its delay was routed under; top-level edges are
// keyed by their own id and don't appear in the map.
func flatten(snap model.Snapshot) (model.Snapshot, map[string]GroupMeta, map[string]string, []diag.Issue) {
	flatNodes := make([]model.NodeRecord, 0, len(snap.Nodes))
	flatEdges := make([]model.EdgeRecord, 0, len(snap.Edges))
	redirect := make(map[model.PortKey]model.EndPoint)
	meta := make(map[string]GroupMeta)
	delayKeys := make(map[string]string)
	var issues []diag.Issue

	mappingIssue := func(instanceID, msg string) {
		issues = append(issues, diag.Issue{
			Code: CodeGroupMappingInvalid, EntityID: instanceID, OpIndex: -1, Message: msg,
		})
	}

	for _, n := range snap.Nodes {
		if n.GroupRef == "" {
			flatNodes = append(flatNodes, n)
			continue
		}
		g, ok := snap.Groups[n.GroupRef]
		if !ok {
			mappingIssue(n.ID, "group instance references unknown group "+n.GroupRef)
			continue
		}
		for _, in := range g.Internal.Nodes {
			if in.GroupRef != "" {
				mappingIssue(n.ID, "group "+n.GroupRef+" nests another group instance")
			}
		}

		prefix := n.ID + "::"
		internal := make(map[string]bool, len(g.Internal.Nodes))
		gm := GroupMeta{GroupID: n.GroupRef}

		for _, in := range g.Internal.Nodes {
			clone := in
			clone.ID = prefix + in.ID
			clone.GroupRef = ""
			flatNodes = append(flatNodes, clone)
			internal[in.ID] = true
			gm.NodeIDs = append(gm.NodeIDs, clone.ID)
		}
		for _, e := range g.Internal.Edges {
			clone := e
			clone.ID = prefix + e.ID
			clone.From.NodeID = prefix + e.From.NodeID
			clone.To.NodeID = prefix + e.To.NodeID
			flatEdges = append(flatEdges, clone)
			delayKeys[clone.ID] = routing.GroupEdgeKey(n.GroupRef, e.ID)
		}

		mapPorts := func(mappings []model.GroupPortMapping, dir model.Direction, slotBase int, kind string) []model.EndPoint {
			out := make([]model.EndPoint, 0, len(mappings))
			for slot, m := range mappings {
				if !internal[m.InternalNodeID] {
					mappingIssue(n.ID, "group "+kind+" mapping targets unknown internal node "+m.InternalNodeID)
					continue
				}
				target := model.EndPoint{NodeID: prefix + m.InternalNodeID, Slot: m.InternalSlot}
				redirect[model.PortKey{NodeID: n.ID, Direction: dir, Slot: slotBase + slot}] = target
				out = append(out, target)
			}
			return out
		}

		gm.ExternalInputs = mapPorts(g.Inputs, model.Input, 0, "input")
		gm.ExternalOutputs = mapPorts(g.Outputs, model.Output, 0, "output")
		gm.Controls = mapPorts(g.Controls, model.Input, len(g.Inputs), "control")

		meta[n.ID] = gm
	}

	for _, e := range snap.Edges {
		clone := e
		if target, ok := redirect[model.PortKey{NodeID: e.From.NodeID, Direction: model.Output, Slot: e.From.Slot}]; ok {
			clone.From = target
		}
		if target, ok := redirect[model.PortKey{NodeID: e.To.NodeID, Direction: model.Input, Slot: e.To.Slot}]; ok {
			clone.To = target
		}
		flatEdges = append(flatEdges, clone)
	}

	return model.Snapshot{Nodes: flatNodes, Edges: flatEdges, Groups: map[string]model.GroupDefinition{}}, meta, delayKeys, issues
}
