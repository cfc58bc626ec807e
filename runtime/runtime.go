// Package runtime executes a CompiledGraph tick by tick: control pulses
// before signal pulses on every tick, deterministic per-node randomness,
// windowed lookahead queries, and live patching that splices graph changes
// in without stopping the run.
package runtime

import (
	"math/rand/v2"
	"sync"

	"github.com/patchbay/enginecore/build"
	"github.com/patchbay/enginecore/diag"
	"github.com/patchbay/enginecore/registry"
)

// OutputEvent is one emission reaching a terminal output-category node,
// returned from QueryWindow for the audio bridge (or any other consumer)
// to turn into sound. Value and Speed are clamped to 1..8; Params values
// are likewise clamped at the runtime boundary.
type OutputEvent struct {
	Tick   float64
	NodeID string
	EdgeID string
	Value  int
	Speed  int
	Params map[string]float64
}

// ThumbState is the UI projection of one in-flight pulse: how far along
// its cable it has travelled at a given tick.
type ThumbState struct {
	EdgeID   string
	Progress float64 // 0 at the source anchor, 1 at the destination
	Speed    int
	EmitTick float64
}

// Config bounds the runtime's scheduler and delay floor.
type Config struct {
	// MinDelayTicks is the positive floor applied to every effective
	// delay; it is what makes zero-length cables and feedback cycles
	// well-defined.
	MinDelayTicks float64

	// SoftCap emits a RUNTIME_QUEUE_OVERFLOW warning when the queue
	// reaches it. Zero disables the check.
	SoftCap int

	// HardCap drops new events (with a warning) once the queue holds this
	// many; existing event times never shift. Zero disables the cap.
	HardCap int
}

// DefaultConfig returns the runtime defaults: a 1e-3 tick delay floor and
// a soft warning threshold with no hard drop cap.
func DefaultConfig() Config {
	return Config{MinDelayTicks: 1e-3, SoftCap: 100000}
}

// runtimeNode is the runtime's mutable per-node bookkeeping: its current
// param, its private behavior state, and its dedicated RNG.
type runtimeNode struct {
	param int
	state any
	rng   *rand.Rand
}

// Runtime executes one CompiledGraph. It owns the only mutable execution
// state (the scheduler queue and per-node param/state); the graph it holds
// is never shared back to callers and is replaced wholesale by SetGraph or
// spliced by ApplyPatch between windows.
type Runtime struct {
	mu sync.Mutex

	graph *build.CompiledGraph
	sched Scheduler
	cfg   Config

	seed   uint64
	nodes  map[string]*runtimeNode
	cursor float64

	warnings []diag.Issue
}

// New builds a Runtime bound to graph with the default config, seeded for
// deterministic per-node randomness, with every source node's recurring
// self-pulse queued starting at tick 0.
func New(graph *build.CompiledGraph, seed uint64) *Runtime {
	return NewWithConfig(graph, seed, DefaultConfig(), NewRingScheduler())
}

// NewWithConfig is New with an explicit config and scheduler, for tests
// and embedders that need a different delay floor or queue bound.
func NewWithConfig(graph *build.CompiledGraph, seed uint64, cfg Config, sched Scheduler) *Runtime {
	if cfg.MinDelayTicks <= 0 {
		cfg.MinDelayTicks = DefaultConfig().MinDelayTicks
	}
	rt := &Runtime{
		graph: graph,
		sched: sched,
		cfg:   cfg,
		seed:  seed,
	}
	rt.initNodes()
	rt.seedSourcePulses(0)
	return rt
}

func (rt *Runtime) initNodes() {
	rt.nodes = make(map[string]*runtimeNode, len(rt.graph.Nodes))
	for _, id := range rt.graph.NodeOrder {
		cn := rt.graph.Nodes[id]
		rt.nodes[id] = &runtimeNode{
			param: cn.Param,
			state: cn.InitialState,
			rng:   newNodeRNG(rt.seed, id),
		}
	}
}

// seedSourcePulses schedules every source-category node's first recurring
// self-signal at the given tick. A source node never needs a wired input
// edge; the runtime is its trigger.
func (rt *Runtime) seedSourcePulses(at float64) {
	for _, id := range rt.graph.NodeOrder {
		cn := rt.graph.Nodes[id]
		if cn.Def.Category != "source" {
			continue
		}
		rt.enqueue(Event{
			Tick: at, NodeID: id, Slot: 0,
			Pulse:    registry.Pulse{Value: rt.nodes[id].param, Speed: 1},
			EmitTime: at,
		})
	}
}

// enqueue applies the queue caps before handing the event to the
// scheduler.
func (rt *Runtime) enqueue(ev Event) {
	depth := rt.sched.Len()
	if rt.cfg.HardCap > 0 && depth >= rt.cfg.HardCap {
		rt.warn(CodeQueueOverflow, ev.NodeID, "event dropped: scheduler at hard capacity")
		return
	}
	if rt.cfg.SoftCap > 0 && depth == rt.cfg.SoftCap {
		rt.warn(CodeQueueOverflow, "", "scheduler queue reached the soft capacity threshold")
	}
	rt.sched.Enqueue(ev)
}

// Warnings returns and clears the runtime's accumulated RUNTIME_* warnings
// since the last call.
func (rt *Runtime) Warnings() []diag.Issue {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	w := rt.warnings
	rt.warnings = nil
	return w
}

func (rt *Runtime) warn(code diag.Code, entityID, msg string) {
	rt.warnings = append(rt.warnings, diag.Issue{Code: code, EntityID: entityID, Message: msg, OpIndex: -1})
}
