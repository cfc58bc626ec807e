package runtime

import (
	"math"

	"github.com/patchbay/enginecore/registry"
)

// QueryWindow advances the runtime through the half-open tick window
// [t0, t1), delivering every control pulse scheduled for a tick before any
// signal pulse at that same tick, and returns every pulse that reached a
// terminal output node, sorted by tick with enqueue order preserved within
// a tick. The cursor advances to t1; re-querying an already-consumed
// window returns nothing, since the scheduler has moved on.
func (rt *Runtime) QueryWindow(t0, t1 float64) []OutputEvent {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	var out []OutputEvent
	for {
		t, ok := rt.sched.PeekMinTick()
		if !ok || t >= t1 {
			break
		}
		// One exact-tick cluster at a time: emissions land at least
		// MinDelayTicks later, so they can never re-enter this cluster.
		batch := rt.sched.PopUntil(math.Nextafter(t, math.Inf(1)))

		for _, ev := range batch {
			if ev.Role == registry.Control {
				rt.deliverControl(ev)
			}
		}
		for _, ev := range batch {
			if ev.Role != registry.Control {
				out = append(out, rt.deliverSignal(ev)...)
			}
		}
	}

	if t1 > rt.cursor {
		rt.cursor = t1
	}
	return out
}

// effectiveDelay is the scheduling delay of one pulse over one edge: the
// base routed delay divided by the pulse's speed, floored at the config's
// minimum so cycles and zero-length cables stay well-defined.
func (rt *Runtime) effectiveDelay(base float64, speed int) float64 {
	d := base / float64(registry.Clamp1to8(speed))
	if d < rt.cfg.MinDelayTicks {
		d = rt.cfg.MinDelayTicks
	}
	return d
}

func (rt *Runtime) deliverControl(ev Event) {
	n, def, ok := rt.lookup(ev.NodeID)
	if !ok {
		rt.warn(CodeMissingNode, ev.NodeID, "control pulse targets an unknown node")
		return
	}
	if def.OnControl == nil {
		return
	}
	ctx := registry.BehaviorCtx{
		Tick: ev.Tick, Slot: ev.Slot, Param: n.param, State: n.state, RNG: n.rng, Pulse: ev.Pulse,
	}
	res := def.OnControl(ctx)
	if res.HasParam {
		n.param = registry.Clamp1to8(*res.Param)
	}
	if res.HasState {
		n.state = res.State
	}
}

func (rt *Runtime) deliverSignal(ev Event) []OutputEvent {
	n, def, ok := rt.lookup(ev.NodeID)
	if !ok {
		rt.warn(CodeMissingNode, ev.NodeID, "signal pulse targets an unknown node")
		return nil
	}

	// A terminal output node ends the pulse's journey: it becomes an
	// OutputEvent and nothing fans out from it.
	if def.IsOutput() {
		return []OutputEvent{{
			Tick:   ev.Tick,
			NodeID: ev.NodeID,
			EdgeID: ev.EdgeID,
			Value:  registry.Clamp1to8(ev.Pulse.Value),
			Speed:  registry.Clamp1to8(ev.Pulse.Speed),
			Params: clampParams(ev.Pulse.Params),
		}}
	}

	if def.OnSignal != nil {
		ctx := registry.BehaviorCtx{
			Tick: ev.Tick, Slot: ev.Slot, Param: n.param, State: n.state, RNG: n.rng, Pulse: ev.Pulse,
		}
		res := def.OnSignal(ctx)
		if res.HasState {
			n.state = res.State
		}
		for _, out := range res.Outputs {
			rt.fanOut(ev, out)
		}
	}

	if def.Category == "source" {
		rt.enqueue(Event{
			Tick: ev.Tick + registry.PulsePeriodTicks, NodeID: ev.NodeID, Slot: 0,
			Pulse:    registry.Pulse{Value: n.param, Speed: 1},
			EmitTime: ev.Tick,
		})
	}

	return nil
}

// fanOut resolves one behavior output's inherited fields and schedules a
// pulse on every edge connected from that (node, outputSlot).
func (rt *Runtime) fanOut(ev Event, out registry.OutputEvent) {
	value := out.Value
	if value == 0 {
		value = ev.Pulse.Value
	}
	speed := out.Speed
	if speed == 0 {
		speed = ev.Pulse.Speed
	}
	params := out.Params
	if params == nil {
		params = ev.Pulse.Params
	}

	if value < 1 || value > 8 || speed < 1 || speed > 8 {
		rt.warn(CodeInvalidValue, ev.NodeID, "emitted value/speed outside 1..8 was clamped")
	}
	pulse := registry.Pulse{
		Value:  registry.Clamp1to8(value),
		Speed:  registry.Clamp1to8(speed),
		Params: clampParams(params),
	}

	for _, edge := range rt.graph.Outgoing[ev.NodeID] {
		if edge.From.Slot != out.Slot {
			continue
		}
		rt.enqueue(Event{
			Tick:     ev.Tick + rt.effectiveDelay(edge.Delay, pulse.Speed),
			NodeID:   edge.To.NodeID,
			EdgeID:   edge.ID,
			Role:     edge.Role,
			Slot:     edge.To.Slot,
			Pulse:    pulse,
			EmitTime: ev.Tick,
		})
	}
}

func clampParams(params map[string]float64) map[string]float64 {
	if params == nil {
		return nil
	}
	out := make(map[string]float64, len(params))
	for k, v := range params {
		if v < 1 {
			v = 1
		}
		if v > 8 {
			v = 8
		}
		out[k] = v
	}
	return out
}

// lookup returns a node's mutable runtime state and its compiled
// definition together, since every caller needs both.
func (rt *Runtime) lookup(id string) (*runtimeNode, registry.NodeTypeDef, bool) {
	n, ok := rt.nodes[id]
	if !ok {
		return nil, registry.NodeTypeDef{}, false
	}
	cn, ok := rt.graph.Nodes[id]
	if !ok {
		return nil, registry.NodeTypeDef{}, false
	}
	return n, cn.Def, true
}
