package model

import (
	"github.com/patchbay/enginecore/diag"
	"github.com/patchbay/enginecore/internal/geom"
	"github.com/patchbay/enginecore/registry"
)

func (m *Model) applyAddNode(op Op) *diag.Issue {
	if op.NodeID == "" {
		return issue(CodeDuplicateID, op.NodeID, "addNode requires a node id")
	}
	if _, exists := m.idx.NodeByID[op.NodeID]; exists {
		return issue(CodeDuplicateID, op.NodeID, "duplicate node id")
	}
	if _, ok := m.reg.Lookup(op.Type); !ok {
		return issue(CodeUnknownNodeType, op.NodeID, "unknown node type "+op.Type)
	}
	if !isIntegerPoint(op.Position) {
		return issue(CodeInvalidPosition, op.NodeID, "node position must be integer grid coordinates")
	}
	if !isValidRotation(op.Rotation) {
		return issue(CodeInvalidRotation, op.NodeID, "rotation must be one of 0, 90, 180, 270")
	}

	rec := NodeRecord{
		ID:       op.NodeID,
		Type:     op.Type,
		Position: op.Position,
		Rotation: op.Rotation,
		Params:   map[string]int{},
		Name:     op.Name,
		GroupRef: op.GroupRef,
	}
	m.nodes = append(m.nodes, rec)
	m.rebuildIndexes()
	return nil
}

func (m *Model) applyRemoveNode(op Op) *diag.Issue {
	if _, ok := m.idx.NodeByID[op.NodeID]; !ok {
		return issue(CodeUnknownEntity, op.NodeID, "removeNode: unknown node")
	}

	// Cascade: remove incident edges first, then the node, updating indices
	// after each step.
	for _, edgeID := range append([]string(nil), m.idx.EdgesByNode[op.NodeID]...) {
		m.removeEdgeByID(edgeID)
	}

	filtered := m.nodes[:0:0]
	for _, n := range m.nodes {
		if n.ID != op.NodeID {
			filtered = append(filtered, n)
		}
	}
	m.nodes = filtered
	m.rebuildIndexes()
	return nil
}

func (m *Model) removeEdgeByID(edgeID string) {
	filtered := m.edges[:0:0]
	for _, e := range m.edges {
		if e.ID != edgeID {
			filtered = append(filtered, e)
		}
	}
	m.edges = filtered
	m.rebuildIndexes()
}

func (m *Model) applyMoveNode(op Op) *diag.Issue {
	n, ok := m.idx.NodeByID[op.NodeID]
	if !ok {
		return issue(CodeUnknownEntity, op.NodeID, "moveNode: unknown node")
	}
	if !isIntegerPoint(op.Position) {
		return issue(CodeInvalidPosition, op.NodeID, "node position must be integer grid coordinates")
	}
	m.setNodeField(n.ID, func(r *NodeRecord) { r.Position = op.Position })
	return nil
}

func (m *Model) applyRotateNode(op Op) *diag.Issue {
	n, ok := m.idx.NodeByID[op.NodeID]
	if !ok {
		return issue(CodeUnknownEntity, op.NodeID, "rotateNode: unknown node")
	}
	if !isValidRotation(op.Rotation) {
		return issue(CodeInvalidRotation, op.NodeID, "rotation must be one of 0, 90, 180, 270")
	}
	m.setNodeField(n.ID, func(r *NodeRecord) { r.Rotation = op.Rotation })
	return nil
}

func (m *Model) applySetParam(op Op) *diag.Issue {
	if _, ok := m.idx.NodeByID[op.NodeID]; !ok {
		return issue(CodeUnknownEntity, op.NodeID, "setParam: unknown node")
	}
	m.setNodeField(op.NodeID, func(r *NodeRecord) {
		if r.Params == nil {
			r.Params = map[string]int{}
		}
		r.Params[op.ParamKey] = op.ParamVal
	})
	return nil
}

func (m *Model) applyRenameNode(op Op) *diag.Issue {
	if _, ok := m.idx.NodeByID[op.NodeID]; !ok {
		return issue(CodeUnknownEntity, op.NodeID, "renameNode: unknown node")
	}
	m.setNodeField(op.NodeID, func(r *NodeRecord) { r.Name = op.Name })
	return nil
}

// setNodeField mutates one node in place in m.nodes (a slice, not a map, so
// we look it up by id), then rebuilds the indices so NodeByID points at the
// updated record; none of these fields affect PortToEdge/EdgesByNode.
func (m *Model) setNodeField(id string, mutate func(*NodeRecord)) {
	for i := range m.nodes {
		if m.nodes[i].ID == id {
			mutate(&m.nodes[i])
			break
		}
	}
	m.rebuildIndexes()
}

func (m *Model) applyAddEdge(op Op) *diag.Issue {
	if op.EdgeID == "" || op.From.NodeID == "" || op.To.NodeID == "" {
		return issue(CodeEdgeDanglingEndpoint, op.EdgeID, "addEdge requires id, from, and to")
	}
	if _, exists := m.idx.EdgeByID[op.EdgeID]; exists {
		return issue(CodeDuplicateID, op.EdgeID, "duplicate edge id")
	}

	fromNode, ok := m.idx.NodeByID[op.From.NodeID]
	if !ok {
		return issue(CodeEdgeDanglingEndpoint, op.EdgeID, "addEdge: missing source node "+op.From.NodeID)
	}
	toNode, ok := m.idx.NodeByID[op.To.NodeID]
	if !ok {
		return issue(CodeEdgeDanglingEndpoint, op.EdgeID, "addEdge: missing destination node "+op.To.NodeID)
	}

	if err := m.validatePortSlot(*fromNode, Output, op.From.Slot); err != nil {
		err.EntityID = op.EdgeID
		return err
	}
	if err := m.validatePortSlot(*toNode, Input, op.To.Slot); err != nil {
		err.EntityID = op.EdgeID
		return err
	}

	if _, taken := m.idx.PortToEdge[PortKey{op.From.NodeID, Output, op.From.Slot}]; taken {
		return issue(CodePortAlreadyConnected, op.EdgeID, "output port already connected")
	}
	if _, taken := m.idx.PortToEdge[PortKey{op.To.NodeID, Input, op.To.Slot}]; taken {
		return issue(CodePortAlreadyConnected, op.EdgeID, "input port already connected")
	}

	m.edges = append(m.edges, EdgeRecord{
		ID:   op.EdgeID,
		From: op.From,
		To:   op.To,
	})
	m.rebuildIndexes()
	return nil
}

func (m *Model) applyRemoveEdge(op Op) *diag.Issue {
	if _, ok := m.idx.EdgeByID[op.EdgeID]; !ok {
		return issue(CodeUnknownEntity, op.EdgeID, "removeEdge: unknown edge")
	}
	m.removeEdgeByID(op.EdgeID)
	return nil
}

func (m *Model) applyAddCorner(op Op) *diag.Issue {
	e, ok := m.idx.EdgeByID[op.EdgeID]
	if !ok {
		return issue(CodeUnknownEntity, op.EdgeID, "addCorner: unknown edge")
	}
	if !isIntegerPoint(op.Corner) {
		return issue(CodeInvalidPosition, op.EdgeID, "corner must be integer grid coordinates")
	}
	if op.CornerIndex < 0 || op.CornerIndex > len(e.Corners) {
		return issue(CodePortInvalid, op.EdgeID, "addCorner: index out of range")
	}
	for i := range m.edges {
		if m.edges[i].ID == op.EdgeID {
			corners := m.edges[i].Corners
			grown := make([]geom.Point, 0, len(corners)+1)
			grown = append(grown, corners[:op.CornerIndex]...)
			grown = append(grown, op.Corner)
			grown = append(grown, corners[op.CornerIndex:]...)
			m.edges[i].Corners = grown
		}
	}
	m.rebuildIndexes()
	return nil
}

func (m *Model) applyMoveCorner(op Op) *diag.Issue {
	e, ok := m.idx.EdgeByID[op.EdgeID]
	if !ok {
		return issue(CodeUnknownEntity, op.EdgeID, "moveCorner: unknown edge")
	}
	if op.CornerIndex < 0 || op.CornerIndex >= len(e.Corners) {
		return issue(CodePortInvalid, op.EdgeID, "moveCorner: index out of range")
	}
	if !isIntegerPoint(op.Corner) {
		return issue(CodeInvalidPosition, op.EdgeID, "corner must be integer grid coordinates")
	}
	for i := range m.edges {
		if m.edges[i].ID == op.EdgeID {
			m.edges[i].Corners[op.CornerIndex] = op.Corner
		}
	}
	m.rebuildIndexes()
	return nil
}

func (m *Model) applyRemoveCorner(op Op) *diag.Issue {
	e, ok := m.idx.EdgeByID[op.EdgeID]
	if !ok {
		return issue(CodeUnknownEntity, op.EdgeID, "removeCorner: unknown edge")
	}
	if op.CornerIndex < 0 || op.CornerIndex >= len(e.Corners) {
		return issue(CodePortInvalid, op.EdgeID, "removeCorner: index out of range")
	}
	for i := range m.edges {
		if m.edges[i].ID == op.EdgeID {
			m.edges[i].Corners = append(m.edges[i].Corners[:op.CornerIndex], m.edges[i].Corners[op.CornerIndex+1:]...)
		}
	}
	m.rebuildIndexes()
	return nil
}

func (m *Model) applyAddGroup(op Op) *diag.Issue {
	if _, exists := m.groups[op.GroupID]; exists {
		return issue(CodeDuplicateID, op.GroupID, "duplicate group id")
	}
	m.groups[op.GroupID] = op.GroupDef
	m.groupOrder = append(m.groupOrder, op.GroupID)
	return nil
}

func (m *Model) applyRemoveGroup(op Op) *diag.Issue {
	if _, ok := m.groups[op.GroupID]; !ok {
		return issue(CodeUnknownEntity, op.GroupID, "removeGroup: unknown group")
	}
	for _, n := range m.nodes {
		if n.GroupRef == op.GroupID {
			return issue(CodeGroupRefInvalid, op.GroupID, "group is still referenced by node "+n.ID)
		}
	}
	delete(m.groups, op.GroupID)
	filtered := m.groupOrder[:0:0]
	for _, id := range m.groupOrder {
		if id != op.GroupID {
			filtered = append(filtered, id)
		}
	}
	m.groupOrder = filtered
	return nil
}

// isIntegerPoint exists as the validation seam for this layer. geom.Point is
// already backed by native int fields, so any value reaching here is integral
// by construction; fractional coordinates are rejected earlier, at the JSON
// decode boundary in the serial package.
func isIntegerPoint(p geom.Point) bool { return true }

func isValidRotation(r int) bool {
	return r == 0 || r == 90 || r == 180 || r == 270
}

// validatePortSlot checks a slot index against the node type's derived
// layout port count for the given direction. An Op's From is always read
// as the output end and To as the input end, so a reversed wire shows up
// here as an endpoint on a node with zero ports in that direction — e.g.
// an edge leaving a terminal output node, or entering a node with no
// inputs. That is a direction violation, not a slot-range one.
func (m *Model) validatePortSlot(n NodeRecord, dir Direction, slot int) *diag.Issue {
	def, ok := m.reg.Lookup(n.Type)
	if !ok {
		return issue(CodeUnknownNodeType, n.ID, "unknown node type "+n.Type)
	}

	var groupInput *registry.GroupLayoutInput
	if def.Archetype == registry.Custom {
		if g, ok := m.groups[n.GroupRef]; ok {
			groupInput = &registry.GroupLayoutInput{
				ExternalInputsCount:  len(g.Inputs),
				ExternalControlCount: len(g.Controls),
				ExternalOutputsCount: len(g.Outputs),
			}
		}
	}

	layout, err := registry.DeriveLayout(def, groupInput)
	if err != nil {
		return issue(CodePortInvalid, n.ID, err.Error())
	}

	var count int
	if dir == Output {
		count = len(layout.Outputs)
	} else {
		count = len(layout.Inputs)
	}
	if count == 0 {
		if dir == Output {
			return issue(CodeEdgeDirectionInvalid, n.ID, "edge source must be an output port; node "+n.ID+" has no outputs")
		}
		return issue(CodeEdgeDirectionInvalid, n.ID, "edge destination must be an input port; node "+n.ID+" has no inputs")
	}
	if slot < 0 || slot >= count {
		return issue(CodePortInvalid, n.ID, "port slot out of range for node layout")
	}
	return nil
}
