package runtime

import (
	"github.com/patchbay/enginecore/build"
	"github.com/patchbay/enginecore/internal/geom"
	"github.com/patchbay/enginecore/model"
	"github.com/patchbay/enginecore/registry"
)

// Patch is a delta between two compiled graphs, spliced into a running
// Runtime without recompiling or clearing the event queue. The builder
// emits full graphs only; computing the delta is the caller's job.
type Patch struct {
	RemovedNodes []string
	RemovedEdges []string
	AddedNodes   []build.CompiledNode
	AddedEdges   []build.CompiledEdge

	// UpdatedParams overwrites live params; in-flight events read the new
	// value when they process at their target node.
	UpdatedParams map[string]int

	// UpdatedEdges carries new base delays for edges whose routed length
	// changed.
	UpdatedEdges map[string]float64
}

// SetGraph replaces the graph wholesale and clears the scheduler. It does
// not re-seed pulse sources — callers that want the patch to start making
// sound again follow up with ResetPulses. Node state for ids the new graph
// still has is carried over; new ids get their registry-declared initial
// state, and removed ids are dropped.
func (rt *Runtime) SetGraph(graph *build.CompiledGraph) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	next := make(map[string]*runtimeNode, len(graph.Nodes))
	for _, id := range graph.NodeOrder {
		cn := graph.Nodes[id]
		if prior, ok := rt.nodes[id]; ok {
			next[id] = prior
			continue
		}
		next[id] = &runtimeNode{param: cn.Param, state: cn.InitialState, rng: newNodeRNG(rt.seed, id)}
	}

	rt.graph = graph
	rt.nodes = next
	rt.sched.Clear()
}

// ResetPulses clears every queued event and reinitializes every node's
// param and state from the current compiled graph's params and initial
// states, then
// re-seeds each source node's recurring self-pulse one period past the
// runtime's current cursor. The loaded graph is unchanged.
func (rt *Runtime) ResetPulses() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.sched.Clear()
	rt.initNodes()
	rt.seedSourcePulses(rt.cursor + registry.PulsePeriodTicks)
}

// ApplyPatch splices p into the live graph. windowEnd is the upper bound
// of the audio lookahead window currently held by the bridge: an in-flight
// event on a delay-updated edge is retimed to emitTime + newDelay/speed
// (floored at MinDelayTicks) only when its current tick lies at or past
// windowEnd — events the bridge may already have scheduled are preserved
// as-is, accepting minor drift over retraction.
func (rt *Runtime) ApplyPatch(p Patch, windowEnd float64) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	g := cloneGraph(rt.graph)

	for _, id := range p.RemovedNodes {
		rt.sched.RemoveByNode(id)
		delete(rt.nodes, id)
		if cn, ok := g.Nodes[id]; ok {
			delete(g.NodeAt, cn.Position)
		}
		delete(g.Nodes, id)
		g.NodeOrder = removeString(g.NodeOrder, id)
		delete(g.Outgoing, id)
	}
	for _, id := range p.RemovedEdges {
		rt.sched.RemoveByEdge(id)
		dropEdge(g, id)
	}

	for _, cn := range p.AddedNodes {
		g.Nodes[cn.ID] = cn
		g.NodeOrder = append(g.NodeOrder, cn.ID)
		g.NodeAt[cn.Position] = cn.ID
		rt.nodes[cn.ID] = &runtimeNode{param: cn.Param, state: cn.InitialState, rng: newNodeRNG(rt.seed, cn.ID)}
		if cn.Def.Category == "source" {
			rt.enqueue(Event{
				Tick: rt.cursor + registry.PulsePeriodTicks, NodeID: cn.ID, Slot: 0,
				Pulse:    registry.Pulse{Value: cn.Param, Speed: 1},
				EmitTime: rt.cursor,
			})
		}
	}
	for _, ce := range p.AddedEdges {
		g.Edges = append(g.Edges, ce)
		g.Outgoing[ce.From.NodeID] = append(g.Outgoing[ce.From.NodeID], ce)
		g.EdgeByDirectedPort[model.PortKey{NodeID: ce.From.NodeID, Direction: model.Output, Slot: ce.From.Slot}] = ce.ID
		g.EdgeByDirectedPort[model.PortKey{NodeID: ce.To.NodeID, Direction: model.Input, Slot: ce.To.Slot}] = ce.ID
	}

	for id, param := range p.UpdatedParams {
		n, ok := rt.nodes[id]
		if !ok {
			rt.warn(CodeMissingNode, id, "param update targets an unknown node")
			continue
		}
		n.param = registry.Clamp1to8(param)
		if cn, ok := g.Nodes[id]; ok {
			cn.Param = n.param
			g.Nodes[id] = cn
		}
	}

	if len(p.UpdatedEdges) > 0 {
		rt.retimeEdges(g, p.UpdatedEdges, windowEnd)
	}

	rt.graph = g
}

// retimeEdges rewrites delays on g's edges and reschedules in-flight
// events on those edges whose current tick lies at or past windowEnd.
func (rt *Runtime) retimeEdges(g *build.CompiledGraph, updated map[string]float64, windowEnd float64) {
	matched := make(map[string]bool, len(updated))
	for i := range g.Edges {
		if d, ok := updated[g.Edges[i].ID]; ok {
			g.Edges[i].Delay = d
			matched[g.Edges[i].ID] = true
		}
	}
	for id := range updated {
		if !matched[id] {
			rt.warn(CodeMissingEdge, id, "delay update targets an unknown edge")
		}
	}
	for node, edges := range g.Outgoing {
		for i := range edges {
			if d, ok := updated[edges[i].ID]; ok {
				edges[i].Delay = d
			}
		}
		g.Outgoing[node] = edges
	}

	inflight := rt.sched.Events()
	rt.sched.Clear()
	for _, ev := range inflight {
		if d, ok := updated[ev.EdgeID]; ok && ev.Tick >= windowEnd {
			ev.Tick = ev.EmitTime + rt.effectiveDelay(d, ev.Pulse.Speed)
		}
		rt.sched.Enqueue(ev)
	}
}

// GetThumbState projects every in-flight pulse to its cable position at
// nowTick, one ThumbState per event. Self-pulses (no edge) are skipped;
// they have no cable to travel.
func (rt *Runtime) GetThumbState(nowTick float64) []ThumbState {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	events := rt.sched.Events()
	out := make([]ThumbState, 0, len(events))
	for _, ev := range events {
		if ev.EdgeID == "" {
			continue
		}
		span := ev.Tick - ev.EmitTime
		if span <= 0 {
			span = rt.cfg.MinDelayTicks
		}
		progress := (nowTick - ev.EmitTime) / span
		if progress < 0 {
			progress = 0
		}
		if progress > 1 {
			progress = 1
		}
		out = append(out, ThumbState{
			EdgeID:   ev.EdgeID,
			Progress: progress,
			Speed:    ev.Pulse.Speed,
			EmitTick: ev.EmitTime,
		})
	}
	return out
}

// Schedule injects one external pulse directly, e.g. a performer tapping a
// pad that feeds a node with no upstream edge, or an external clock
// driving the graph's root inputs. Ticks before the cursor are delivered
// on the next window with a late-event warning.
func (rt *Runtime) Schedule(tick float64, nodeID string, slot int, value, speed int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if tick < rt.cursor {
		rt.warn(CodeLateEvent, nodeID, "externally injected pulse targets an elapsed tick")
		tick = rt.cursor
	}
	rt.enqueue(Event{
		Tick: tick, NodeID: nodeID, Slot: slot,
		Pulse:    registry.Pulse{Value: registry.Clamp1to8(value), Speed: registry.Clamp1to8(speed)},
		EmitTime: tick,
	})
}

// cloneGraph copies g's containers so a patch never mutates a graph a
// caller may still hold. Node/edge values are copied by value; behavior
// functions and state pointers are shared, which is fine — the runtime is
// their only mutator.
func cloneGraph(g *build.CompiledGraph) *build.CompiledGraph {
	out := &build.CompiledGraph{
		Nodes:              make(map[string]build.CompiledNode, len(g.Nodes)),
		NodeOrder:          append([]string(nil), g.NodeOrder...),
		Edges:              append([]build.CompiledEdge(nil), g.Edges...),
		Outgoing:           make(map[string][]build.CompiledEdge, len(g.Outgoing)),
		EdgeByDirectedPort: make(map[model.PortKey]string, len(g.EdgeByDirectedPort)),
		NodeAt:             make(map[geom.Point]string, len(g.NodeAt)),
		Groups:             g.Groups,
	}
	for k, v := range g.Nodes {
		out.Nodes[k] = v
	}
	for k, v := range g.Outgoing {
		out.Outgoing[k] = append([]build.CompiledEdge(nil), v...)
	}
	for k, v := range g.EdgeByDirectedPort {
		out.EdgeByDirectedPort[k] = v
	}
	for k, v := range g.NodeAt {
		out.NodeAt[k] = v
	}
	return out
}

// dropEdge removes one edge from every container of the (already cloned)
// graph.
func dropEdge(g *build.CompiledGraph, id string) {
	kept := g.Edges[:0:0]
	var removed *build.CompiledEdge
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			removed = &g.Edges[i]
			continue
		}
		kept = append(kept, g.Edges[i])
	}
	g.Edges = kept
	if removed == nil {
		return
	}

	out := g.Outgoing[removed.From.NodeID][:0:0]
	for _, e := range g.Outgoing[removed.From.NodeID] {
		if e.ID != id {
			out = append(out, e)
		}
	}
	g.Outgoing[removed.From.NodeID] = out

	delete(g.EdgeByDirectedPort, model.PortKey{NodeID: removed.From.NodeID, Direction: model.Output, Slot: removed.From.Slot})
	delete(g.EdgeByDirectedPort, model.PortKey{NodeID: removed.To.NodeID, Direction: model.Input, Slot: removed.To.Slot})
}

func removeString(list []string, s string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
