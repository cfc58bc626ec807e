package model

import "github.com/patchbay/enginecore/internal/geom"

// OpKind names one of the supported mutating operations. Grouping is
// composed externally from these primitives (addGroup + addNode(groupRef) +
// removeNode/removeEdge + addEdge rewiring) — there is no single op that
// creates a group instance in one step.
type OpKind string

const (
	OpAddNode     OpKind = "addNode"
	OpRemoveNode  OpKind = "removeNode"
	OpMoveNode    OpKind = "moveNode"
	OpRotateNode  OpKind = "rotateNode"
	OpSetParam    OpKind = "setParam"
	OpRenameNode  OpKind = "renameNode"
	OpAddEdge     OpKind = "addEdge"
	OpRemoveEdge  OpKind = "removeEdge"
	OpAddCorner   OpKind = "addCorner"
	OpMoveCorner  OpKind = "moveCorner"
	OpRemoveCorner OpKind = "removeCorner"
	OpAddGroup    OpKind = "addGroup"
	OpRemoveGroup OpKind = "removeGroup"
)

// Op is one entry in a batch passed to Model.Apply. Only the fields
// relevant to Kind are read; the zero value of the others is ignored.
type Op struct {
	Kind OpKind

	NodeID string
	Type   string
	Position geom.Point
	Rotation int
	ParamKey string
	ParamVal int
	Name     string
	GroupRef string

	EdgeID string
	From   EndPoint
	To     EndPoint

	CornerIndex int
	Corner      geom.Point

	GroupID  string
	GroupDef GroupDefinition
}
