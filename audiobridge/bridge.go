// Package audiobridge turns tick-indexed runtime output events into
// absolute-seconds trigger records for an external sample engine. It is
// driven by the host audio clock's window callbacks: each OnTick pulls the
// matching tick window from the runtime, maps params through the node
// type's declared tables, dedups against a tick watermark so overlapping
// windows never double-fire a trigger, and drops late or oversize events
// with a warning instead of stalling.
package audiobridge

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/patchbay/enginecore/build"
	"github.com/patchbay/enginecore/diag"
	"github.com/patchbay/enginecore/registry"
	"github.com/patchbay/enginecore/runtime"
)

// Transport converts between engine ticks and host seconds.
// secondsPerTick = 60 / (bpm * ticksPerBeat); only BPM is persisted,
// TicksPerBeat is a global constant of the deployment.
type Transport struct {
	BPM          float64
	TicksPerBeat int
	OriginSec    float64
}

// SecondsPerTick is the duration of one tick at this transport's tempo.
func (t Transport) SecondsPerTick() float64 {
	if t.BPM <= 0 || t.TicksPerBeat <= 0 {
		return 0
	}
	return 60.0 / (t.BPM * float64(t.TicksPerBeat))
}

// SecondsAt converts an absolute tick to host seconds.
func (t Transport) SecondsAt(tick float64) float64 {
	return t.OriginSec + tick*t.SecondsPerTick()
}

// TickAt converts a host timestamp to an absolute tick.
func (t Transport) TickAt(sec float64) float64 {
	spt := t.SecondsPerTick()
	if spt == 0 {
		return 0
	}
	return (sec - t.OriginSec) / spt
}

// Config bounds the bridge's window and payload handling.
type Config struct {
	// LookaheadSec is how far past the host clock's window end the bridge
	// schedules. It must stay at least 10ms above the host callback
	// latency or triggers land late.
	LookaheadSec float64

	// HorizonSec is the width of each pulled tick window.
	HorizonSec float64

	// MaxEvents caps one window's emission, matching the host's event
	// buffer. Excess events drop with a warning.
	MaxEvents int

	// MaxPayloadBytes bounds one encoded trigger record. The host buffer
	// is fixed-size; an oversize record drops whole rather than
	// truncating.
	MaxPayloadBytes int
}

// DefaultConfig returns the deployment defaults: 60ms lookahead, 100ms
// horizon, a 128-event window cap, and the host's 1024-byte record limit.
func DefaultConfig() Config {
	return Config{LookaheadSec: 0.060, HorizonSec: 0.100, MaxEvents: 128, MaxPayloadBytes: 1024}
}

// WireEvent is one trigger record in the host wire format. The bridge is
// the sole owner of this schema; no aliases are ever emitted.
type WireEvent struct {
	Time  float64 `json:"time"`
	S     string  `json:"s"`
	N     int     `json:"n"`
	End   float64 `json:"end,omitempty"`
	Crush float64 `json:"crush,omitempty"`
	Lpf   float64 `json:"lpf,omitempty"`
	Hpf   float64 `json:"hpf,omitempty"`
}

// SampleSlot names one entry of the 8-slot sample table an output value
// selects from.
type SampleSlot struct {
	Name string
	N    int
}

// DefaultKit is the sample table used until a project supplies its own.
func DefaultKit() [8]*SampleSlot {
	return [8]*SampleSlot{
		{Name: "kick"}, {Name: "snare"}, {Name: "hat"}, {Name: "clap"},
		{Name: "tom"}, {Name: "perc"}, {Name: "fx"}, {Name: "tone"},
	}
}

// EventSource is the slice of the runtime the bridge pulls from.
type EventSource interface {
	QueryWindow(t0, t1 float64) []runtime.OutputEvent
}

// Evaluator receives each window's trigger records, in non-decreasing
// time order. It is the external sample engine's entrypoint.
type Evaluator func(events []WireEvent)

// Bridge is the windowed tick-to-seconds scheduler. It owns the watermark
// and its warning buffer; everything else it touches is read-only.
type Bridge struct {
	transport Transport
	cfg       Config
	src       EventSource
	graph     *build.CompiledGraph
	samples   [8]*SampleSlot
	evaluate  Evaluator

	lastScheduledTick float64
	hasWatermark      bool
	pendingTransport  *Transport

	warnings []diag.Issue
}

// New returns a Bridge pulling from src, resolving param maps against
// graph, and emitting to evaluate.
func New(transport Transport, cfg Config, src EventSource, graph *build.CompiledGraph, evaluate Evaluator) *Bridge {
	return &Bridge{
		transport: transport,
		cfg:       cfg,
		src:       src,
		graph:     graph,
		samples:   DefaultKit(),
		evaluate:  evaluate,
	}
}

// SetGraph rebinds the bridge to a freshly compiled graph, for live
// patching. The watermark is left untouched, matching the runtime's own
// drift-tolerant patch semantics.
func (b *Bridge) SetGraph(graph *build.CompiledGraph) {
	b.graph = graph
}

// SetSamples replaces the 8-slot sample table, typically from a loaded
// project.
func (b *Bridge) SetSamples(samples [8]*SampleSlot) {
	b.samples = samples
}

// SetTransport stages a tempo or origin change. It takes effect at the
// next window boundary and resets the watermark there; events already in
// the host's lookahead window are not retimed.
func (b *Bridge) SetTransport(t Transport) {
	b.pendingTransport = &t
}

// ResetWatermark clears the dedup watermark. Call it on clock resync
// (suspend/resume) and alongside the runtime's ResetPulses, both of which
// restart tick numbering from the bridge's point of view.
func (b *Bridge) ResetWatermark() {
	b.hasWatermark = false
	b.lastScheduledTick = 0
}

// OnTick is the host audio clock callback: the host has just rendered
// through t1 (seconds) and wants everything landing in the next lookahead
// stretch. The bridge pulls the matching tick window from the runtime,
// maps it to wire records, and hands them to the evaluator in
// non-decreasing time order.
func (b *Bridge) OnTick(t0, t1 float64) {
	if b.pendingTransport != nil {
		b.transport = *b.pendingTransport
		b.pendingTransport = nil
		b.ResetWatermark()
	}

	spt := b.transport.SecondsPerTick()
	if spt == 0 {
		return
	}

	tStart := b.transport.TickAt(t1 + b.cfg.LookaheadSec)
	tEnd := tStart + b.cfg.HorizonSec/spt

	events := b.src.QueryWindow(tStart, tEnd)

	batch := make([]WireEvent, 0, len(events))
	for _, ev := range events {
		if b.hasWatermark && ev.Tick <= b.lastScheduledTick {
			continue
		}

		record, ok := b.resolve(ev)
		if !ok {
			continue
		}
		if record.Time < t1 {
			b.warn(CodeLateEvent, ev.NodeID,
				fmt.Sprintf("trigger at %.4fs is behind the host clock (%.4fs)", record.Time, t1))
			continue
		}
		if b.cfg.MaxEvents > 0 && len(batch) >= b.cfg.MaxEvents {
			b.warn(CodeOverflow, ev.NodeID, "window exceeds the host event budget; trigger dropped")
			continue
		}

		batch = append(batch, record)
		b.lastScheduledTick = ev.Tick
		b.hasWatermark = true
	}

	if len(batch) > 0 && b.evaluate != nil {
		b.evaluate(batch)
	}
}

// Warnings returns and clears the bridge's accumulated AUDIO_* warnings.
func (b *Bridge) Warnings() []diag.Issue {
	w := b.warnings
	b.warnings = nil
	return w
}

func (b *Bridge) warn(code diag.Code, entityID, msg string) {
	b.warnings = append(b.warnings, diag.Issue{Code: code, EntityID: entityID, Message: msg, OpIndex: -1})
}

// resolve maps one runtime output event to a wire record: sample slot from
// the value, effect keys from the event's params overlay plus the node's
// own param map default.
func (b *Bridge) resolve(ev runtime.OutputEvent) (WireEvent, bool) {
	slot := b.samples[registry.Clamp1to8(ev.Value)-1]
	if slot == nil {
		b.warn(CodeMissingSample, ev.NodeID,
			fmt.Sprintf("no sample loaded in slot %d; trigger dropped", ev.Value))
		return WireEvent{}, false
	}

	record := WireEvent{
		Time: b.transport.SecondsAt(ev.Tick),
		S:    slot.Name,
		N:    slot.N,
	}

	params := ev.Params
	if cn, ok := b.graph.Nodes[ev.NodeID]; ok && cn.Def.ParamMap != nil {
		if _, present := params[cn.Def.ParamMap.Mapping]; !present {
			// Fill the node's own mapping from its merged param default.
			filled := make(map[string]float64, len(params)+1)
			for k, v := range params {
				filled[k] = v
			}
			filled[cn.Def.ParamMap.Mapping] = float64(cn.Param)
			params = filled
		}
	}

	for _, mapping := range sortedKeys(params) {
		raw := params[mapping]
		table := tableFor(mapping)
		target, known := mappingTargets[mapping]
		if table == nil || !known {
			b.warn(CodeUnknownMapping, ev.NodeID, "unknown param mapping "+mapping)
			continue
		}
		idx := registry.Clamp1to8(int(raw)) - 1
		switch target {
		case "end":
			record.End = table[idx]
		case "crush":
			record.Crush = table[idx]
		case "hpf":
			record.Hpf = table[idx]
		case "lpf":
			record.Lpf = table[idx]
		}
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		b.warn(CodeOversizeEvent, ev.NodeID, "trigger failed to encode: "+err.Error())
		return WireEvent{}, false
	}
	if b.cfg.MaxPayloadBytes > 0 && len(encoded) > b.cfg.MaxPayloadBytes {
		b.warn(CodeOversizeEvent, ev.NodeID,
			fmt.Sprintf("encoded trigger is %d bytes, over the %d-byte host buffer", len(encoded), b.cfg.MaxPayloadBytes))
		return WireEvent{}, false
	}
	return record, true
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
