package model

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/patchbay/enginecore/diag"
	"github.com/patchbay/enginecore/registry"
)

// Indexes are the always-current derived lookup tables the model keeps in
// lockstep with its records. They are rebuilt from the records inside the
// same transaction that mutates them — never lazily.
type Indexes struct {
	NodeByID        map[string]*NodeRecord
	EdgeByID        map[string]*EdgeRecord
	PortToEdge      map[PortKey]string   // port -> edge id
	EdgesByNode     map[string][]string  // node id -> edge ids, insertion order
}

func newIndexes() Indexes {
	return Indexes{
		NodeByID:    make(map[string]*NodeRecord),
		EdgeByID:    make(map[string]*EdgeRecord),
		PortToEdge:  make(map[PortKey]string),
		EdgesByNode: make(map[string][]string),
	}
}

// ChangeSet is delivered to subscribers after a committed transaction.
type ChangeSet struct {
	Ops []Op
}

// Subscriber receives a ChangeSet per committed transaction.
type Subscriber func(ChangeSet)

// ApplyResult reports the outcome of Model.Apply.
type ApplyResult struct {
	OK      bool
	Changed bool
	Errors  []diag.Issue
}

// Model is the authoritative in-memory graph store.
type Model struct {
	mu   sync.Mutex
	reg  *registry.Registry
	ids  IDGenerator
	nodes []NodeRecord
	edges []EdgeRecord
	groups map[string]GroupDefinition
	groupOrder []string
	idx  Indexes
	subs []Subscriber
}

// New creates an empty model bound to a registry. The registry is read-only
// and shared by every downstream layer; the model never mutates it.
func New(reg *registry.Registry) *Model {
	return &Model{
		reg:    reg,
		ids:    &counterIDs{},
		groups: make(map[string]GroupDefinition),
		idx:    newIndexes(),
	}
}

// Subscribe registers a callback invoked once per committed transaction.
func (m *Model) Subscribe(sub Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, sub)
}

// Snapshot returns an insertion-ordered copy of the current graph.
func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	nodes := make([]NodeRecord, len(m.nodes))
	copy(nodes, m.nodes)
	edges := make([]EdgeRecord, len(m.edges))
	copy(edges, m.edges)
	groups := make(map[string]GroupDefinition, len(m.groups))
	for k, v := range m.groups {
		groups[k] = v
	}

	return Snapshot{Nodes: nodes, Edges: edges, Groups: groups}
}

// Indices returns the current index tables. Callers must not mutate the
// returned maps/slices.
func (m *Model) Indices() Indexes {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idx
}

// Apply validates and commits a batch of ops, all-or-nothing. Add-ops with
// an empty id get one from the model's IDGenerator before validation, so
// subscribers (and the caller, via the returned errors' op indices) see
// the resolved ids. A rejected batch may consume generator ids; they are
// opaque, so a gap is harmless.
func (m *Model) Apply(ops []Op) ApplyResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	ops = append([]Op(nil), ops...)
	for i := range ops {
		switch ops[i].Kind {
		case OpAddNode:
			if ops[i].NodeID == "" {
				ops[i].NodeID = m.ids.NextNodeID()
			}
		case OpAddEdge:
			if ops[i].EdgeID == "" {
				ops[i].EdgeID = m.ids.NextEdgeID()
			}
		}
	}

	// Work on scratch copies so a validation failure never touches live
	// state — the "all or none" guarantee.
	scratch := m.clone()

	var errs []diag.Issue
	for i, op := range ops {
		if err := scratch.validateAndApply(op); err != nil {
			err.OpIndex = i
			errs = append(errs, *err)
		}
	}

	if len(errs) > 0 {
		slog.Warn("model.reject", "ops", len(ops), "errors", len(errs), "first", string(errs[0].Code))
		return ApplyResult{OK: false, Errors: errs}
	}

	m.adopt(scratch)
	m.notify(ops)
	slog.Debug("model.apply", "ops", len(ops), "nodes", len(m.nodes), "edges", len(m.edges))

	return ApplyResult{OK: true, Changed: len(ops) > 0}
}

// adopt copies scratch's data fields into m, leaving m's own mutex and
// subscriber list untouched. m.mu must already be held by the caller.
func (m *Model) adopt(scratch *Model) {
	m.nodes = scratch.nodes
	m.edges = scratch.edges
	m.groups = scratch.groups
	m.groupOrder = scratch.groupOrder
	m.idx = scratch.idx
}

func (m *Model) notify(ops []Op) {
	for _, sub := range m.subs {
		sub(ChangeSet{Ops: ops})
	}
}

// clone makes a deep-enough working copy for speculative op application.
func (m *Model) clone() *Model {
	c := &Model{reg: m.reg, groups: make(map[string]GroupDefinition, len(m.groups))}
	c.nodes = append([]NodeRecord(nil), m.nodes...)
	c.edges = append([]EdgeRecord(nil), m.edges...)
	for k, v := range m.groups {
		c.groups[k] = v
	}
	c.groupOrder = append([]string(nil), m.groupOrder...)
	c.rebuildIndexes()
	return c
}

func (m *Model) rebuildIndexes() {
	m.idx = newIndexes()
	for i := range m.nodes {
		m.idx.NodeByID[m.nodes[i].ID] = &m.nodes[i]
	}
	for i := range m.edges {
		e := &m.edges[i]
		m.idx.EdgeByID[e.ID] = e
		m.idx.PortToEdge[PortKey{e.From.NodeID, Output, e.From.Slot}] = e.ID
		m.idx.PortToEdge[PortKey{e.To.NodeID, Input, e.To.Slot}] = e.ID
		m.idx.EdgesByNode[e.From.NodeID] = append(m.idx.EdgesByNode[e.From.NodeID], e.ID)
		m.idx.EdgesByNode[e.To.NodeID] = append(m.idx.EdgesByNode[e.To.NodeID], e.ID)
	}
}

func issue(code diag.Code, entityID, msg string) *diag.Issue {
	return &diag.Issue{Code: code, Message: msg, EntityID: entityID, OpIndex: -1}
}

func (m *Model) validateAndApply(op Op) *diag.Issue {
	switch op.Kind {
	case OpAddNode:
		return m.applyAddNode(op)
	case OpRemoveNode:
		return m.applyRemoveNode(op)
	case OpMoveNode:
		return m.applyMoveNode(op)
	case OpRotateNode:
		return m.applyRotateNode(op)
	case OpSetParam:
		return m.applySetParam(op)
	case OpRenameNode:
		return m.applyRenameNode(op)
	case OpAddEdge:
		return m.applyAddEdge(op)
	case OpRemoveEdge:
		return m.applyRemoveEdge(op)
	case OpAddCorner:
		return m.applyAddCorner(op)
	case OpMoveCorner:
		return m.applyMoveCorner(op)
	case OpRemoveCorner:
		return m.applyRemoveCorner(op)
	case OpAddGroup:
		return m.applyAddGroup(op)
	case OpRemoveGroup:
		return m.applyRemoveGroup(op)
	default:
		return issue(CodeUnknownEntity, "", fmt.Sprintf("unknown op kind %q", op.Kind))
	}
}
