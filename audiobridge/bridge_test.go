package audiobridge_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/patchbay/enginecore/audiobridge"
	"github.com/patchbay/enginecore/build"
	"github.com/patchbay/enginecore/registry"
	"github.com/patchbay/enginecore/runtime"
)

// fakeSource stands in for the runtime: it serves a fixed event list,
// filtered to the requested half-open tick window, and records each pull.
type fakeSource struct {
	events []runtime.OutputEvent
	calls  [][2]float64
}

func (f *fakeSource) QueryWindow(t0, t1 float64) []runtime.OutputEvent {
	f.calls = append(f.calls, [2]float64{t0, t1})
	var out []runtime.OutputEvent
	for _, ev := range f.events {
		if ev.Tick >= t0 && ev.Tick < t1 {
			out = append(out, ev)
		}
	}
	return out
}

func outputGraph(param int, paramMap *registry.ParamMap) *build.CompiledGraph {
	def := registry.NodeTypeDef{
		Type: "hit", Category: "output", Archetype: registry.SingleIn,
		Inputs: 1, DefaultParam: 1, ParamMap: paramMap,
		OnSignal: func(registry.BehaviorCtx) registry.SignalResult { return registry.SignalResult{} },
	}
	return &build.CompiledGraph{
		Nodes:     map[string]build.CompiledNode{"hit": {ID: "hit", Type: "hit", Def: def, Param: param}},
		NodeOrder: []string{"hit"},
	}
}

var _ = Describe("Bridge", func() {
	var (
		transport audiobridge.Transport
		cfg       audiobridge.Config
		src       *fakeSource
		emitted   []audiobridge.WireEvent
		calls     int
	)

	collect := func(events []audiobridge.WireEvent) {
		emitted = append(emitted, events...)
		calls++
	}

	newBridge := func(graph *build.CompiledGraph) *audiobridge.Bridge {
		return audiobridge.New(transport, cfg, src, graph, collect)
	}

	BeforeEach(func() {
		// 120 BPM at 4 ticks per beat: one tick every 125ms.
		transport = audiobridge.Transport{BPM: 120, TicksPerBeat: 4}
		cfg = audiobridge.DefaultConfig()
		src = &fakeSource{}
		emitted = nil
		calls = 0
	})

	Describe("window discipline", func() {
		It("pulls the lookahead-shifted tick window for each host callback", func() {
			b := newBridge(outputGraph(1, nil))
			b.OnTick(0, 0.05)

			Expect(src.calls).To(HaveLen(1))
			// tStart = (0.05 + 0.060) / 0.125, tEnd = tStart + 0.100 / 0.125.
			Expect(src.calls[0][0]).To(BeNumerically("~", 0.88, 1e-9))
			Expect(src.calls[0][1]).To(BeNumerically("~", 1.68, 1e-9))
		})
	})

	Describe("watermark dedup", func() {
		It("emits every event exactly once across overlapping windows, in ascending time", func() {
			src.events = []runtime.OutputEvent{
				{Tick: 0.9, NodeID: "hit", Value: 1, Speed: 1},
				{Tick: 1.3, NodeID: "hit", Value: 1, Speed: 1},
				{Tick: 1.5, NodeID: "hit", Value: 1, Speed: 1},
				{Tick: 1.9, NodeID: "hit", Value: 1, Speed: 1},
			}
			b := newBridge(outputGraph(1, nil))

			b.OnTick(0, 0.05)
			b.OnTick(0.05, 0.1)

			Expect(emitted).To(HaveLen(4))
			for i := 1; i < len(emitted); i++ {
				Expect(emitted[i].Time).To(BeNumerically(">", emitted[i-1].Time))
			}
		})

		It("resets the watermark when a staged transport change lands", func() {
			src.events = []runtime.OutputEvent{{Tick: 1.0, NodeID: "hit", Value: 1, Speed: 1}}
			b := newBridge(outputGraph(1, nil))

			b.OnTick(0, 0.05)
			Expect(emitted).To(HaveLen(1))

			b.SetTransport(audiobridge.Transport{BPM: 120, TicksPerBeat: 4})
			b.OnTick(0, 0.05)
			Expect(emitted).To(HaveLen(2), "the same tick may re-emit after a transport reset")
		})
	})

	Describe("param mapping", func() {
		It("maps a params-overlay entry through its table", func() {
			src.events = []runtime.OutputEvent{{
				Tick: 1.0, NodeID: "hit", Value: 1, Speed: 1,
				Params: map[string]float64{"decayTable": 3, "lpfTable": 2},
			}}
			b := newBridge(outputGraph(1, nil))
			b.OnTick(0, 0.05)

			Expect(emitted).To(HaveLen(1))
			Expect(emitted[0].End).To(Equal(0.75))
			Expect(emitted[0].Lpf).To(Equal(6400.0))
		})

		It("fills the node's own mapping from its param default when absent", func() {
			src.events = []runtime.OutputEvent{{Tick: 1.0, NodeID: "hit", Value: 1, Speed: 1}}
			b := newBridge(outputGraph(2, &registry.ParamMap{TargetKey: "end", Mapping: "decayTable"}))
			b.OnTick(0, 0.05)

			Expect(emitted).To(HaveLen(1))
			Expect(emitted[0].End).To(Equal(0.875))
		})

		It("warns and skips an unknown mapping key", func() {
			src.events = []runtime.OutputEvent{{
				Tick: 1.0, NodeID: "hit", Value: 1, Speed: 1,
				Params: map[string]float64{"wobbleTable": 4},
			}}
			b := newBridge(outputGraph(1, nil))
			b.OnTick(0, 0.05)

			Expect(emitted).To(HaveLen(1), "the event itself still fires")
			warnings := b.Warnings()
			Expect(warnings).To(HaveLen(1))
			Expect(warnings[0].Code).To(Equal(audiobridge.CodeUnknownMapping))
		})
	})

	Describe("sample selection", func() {
		It("indexes the 8-slot table by value", func() {
			src.events = []runtime.OutputEvent{{Tick: 1.0, NodeID: "hit", Value: 3, Speed: 1}}
			b := newBridge(outputGraph(1, nil))
			b.OnTick(0, 0.05)

			Expect(emitted).To(HaveLen(1))
			Expect(emitted[0].S).To(Equal("hat"))
		})

		It("drops the event and warns when the slot is empty", func() {
			src.events = []runtime.OutputEvent{{Tick: 1.0, NodeID: "hit", Value: 3, Speed: 1}}
			b := newBridge(outputGraph(1, nil))
			samples := audiobridge.DefaultKit()
			samples[2] = nil
			b.SetSamples(samples)

			b.OnTick(0, 0.05)
			Expect(emitted).To(BeEmpty())
			warnings := b.Warnings()
			Expect(warnings).To(HaveLen(1))
			Expect(warnings[0].Code).To(Equal(audiobridge.CodeMissingSample))
		})
	})

	Describe("drop policies", func() {
		It("drops an event already behind the host clock", func() {
			// Tick 1.0 lands at 0.125s, behind a host clock at 1s. The
			// negative lookahead forces the pull window back over the
			// stale tick.
			src.events = []runtime.OutputEvent{{Tick: 1.0, NodeID: "hit", Value: 1, Speed: 1}}
			cfg.LookaheadSec = -1.0
			cfg.HorizonSec = 0.5
			b := newBridge(outputGraph(1, nil))
			b.OnTick(0.9, 1.0)

			Expect(emitted).To(BeEmpty())
			warnings := b.Warnings()
			Expect(warnings).To(HaveLen(1))
			Expect(warnings[0].Code).To(Equal(audiobridge.CodeLateEvent))
		})

		It("caps a window at the host event budget", func() {
			src.events = []runtime.OutputEvent{
				{Tick: 1.0, NodeID: "hit", Value: 1, Speed: 1},
				{Tick: 1.1, NodeID: "hit", Value: 1, Speed: 1},
			}
			cfg.MaxEvents = 1
			b := newBridge(outputGraph(1, nil))
			b.OnTick(0, 0.05)

			Expect(emitted).To(HaveLen(1))
			warnings := b.Warnings()
			Expect(warnings).To(HaveLen(1))
			Expect(warnings[0].Code).To(Equal(audiobridge.CodeOverflow))
		})

		It("drops a record that encodes over the host buffer size", func() {
			src.events = []runtime.OutputEvent{{Tick: 1.0, NodeID: "hit", Value: 1, Speed: 1}}
			cfg.MaxPayloadBytes = 10
			b := newBridge(outputGraph(1, nil))
			b.OnTick(0, 0.05)

			Expect(emitted).To(BeEmpty())
			warnings := b.Warnings()
			Expect(warnings).To(HaveLen(1))
			Expect(warnings[0].Code).To(Equal(audiobridge.CodeOversizeEvent))
		})
	})
})
