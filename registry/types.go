// Package registry holds the static, validated catalog of node types: their
// port archetypes, default params, and behavior functions. It is built once
// at startup and passed by reference to every downstream layer — there is
// no ambient global registry singleton.
package registry

import (
	"math/rand/v2"

	"github.com/patchbay/enginecore/internal/geom"
)

// Archetype names a port-placement template shared by many node types.
type Archetype string

const (
	SingleIO        Archetype = "single-io"
	SingleIOControl Archetype = "single-io-control"
	SingleIn        Archetype = "single-in"
	MultiOut6       Archetype = "multi-out-6"
	MultiOut6Ctrl   Archetype = "multi-out-6-control"
	MultiIn6        Archetype = "multi-in-6"
	Custom          Archetype = "custom"
)

// PortRole distinguishes a signal-carrying port from a control port.
type PortRole int

const (
	Signal PortRole = iota
	Control
)

// Anchor is a node-local (unrotated) grid point plus which side it sits on,
// used by the routing package to derive stub directions.
type Anchor struct {
	Point geom.Point
	Side  geom.Side
}

// Pulse is an in-flight value carried by a runtime event into a behavior
// function.
type Pulse struct {
	Value  int
	Speed  int
	Params map[string]float64
}

// BehaviorCtx is passed to a node's behavior functions by the runtime. It
// exposes only synchronous, pure inputs: the incoming pulse, the node's
// current param and private state, and a per-node deterministic RNG.
type BehaviorCtx struct {
	Tick    float64
	Slot    int
	Param   int
	State   any
	RNG     *rand.Rand
	Pulse   Pulse
}

// OutputEvent is one emission from onSignal: a slot to fan out from plus the
// pulse to forward. Value/Speed/Params default to the incoming pulse's when
// left zero/nil — the runtime's fan-out resolves those defaults before
// scheduling.
type OutputEvent struct {
	Slot   int
	Value  int
	Speed  int
	Params map[string]float64
}

// ControlResult is returned by onControl: it may update param and/or state,
// but never emits outputs.
type ControlResult struct {
	Param     *int
	State     any
	HasParam  bool
	HasState  bool
}

// SignalResult is returned by onSignal: zero or more outputs plus an
// optional state update.
type SignalResult struct {
	Outputs  []OutputEvent
	State    any
	HasState bool
}

// OnControl consumes a control pulse; it must be synchronous and must not
// perform I/O or mutate anything outside its return value.
type OnControl func(ctx BehaviorCtx) ControlResult

// OnSignal consumes a signal pulse and may emit outputs.
type OnSignal func(ctx BehaviorCtx) SignalResult

// InitState builds a node's initial private state.
type InitState func() any

// NodeTypeDef is one catalog entry.
type NodeTypeDef struct {
	Type        string // kebab-case, unique
	DisplayName string
	Category    string

	Archetype Archetype

	Inputs       int
	Outputs      int
	ControlPorts int

	// ControlOutput marks every output port of this type as control-role:
	// its pulses set params downstream rather than trigger sound, and the
	// build layer rejects wiring one into a signal input.
	ControlOutput bool

	DefaultParam int
	ParamMap     *ParamMap

	InitState InitState
	OnControl OnControl
	OnSignal  OnSignal // required
}

// ParamMap names the output-table mapping a node's param drives on the
// audio bridge side (e.g. "decayTable" -> end). The registry only carries
// the name; audiobridge owns the concrete tables.
type ParamMap struct {
	TargetKey string
	Mapping   string
}

// IsOutput reports whether this node type is the terminal "output" sink
// that the runtime appends to a query_window's OutputEvent list instead of
// forwarding further.
func (d NodeTypeDef) IsOutput() bool {
	return d.Category == "output"
}
