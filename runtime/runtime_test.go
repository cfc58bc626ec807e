package runtime_test

import (
	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/patchbay/enginecore/build"
	"github.com/patchbay/enginecore/internal/geom"
	"github.com/patchbay/enginecore/model"
	"github.com/patchbay/enginecore/registry"
	"github.com/patchbay/enginecore/runtime"
)

func stdRegistry() *registry.Registry {
	result := registry.New(registry.StdCatalog())
	Expect(result.OK).To(BeTrue(), "std catalog must validate: %v", result.Errors)
	return result.Value
}

type nodeSpec struct {
	id    string
	typ   string
	param int
}

type edgeSpec struct {
	id       string
	from     string
	fromSlot int
	to       string
	toSlot   int
	role     registry.PortRole
	delay    float64
}

// graphOf hand-assembles a CompiledGraph so each spec controls delays
// exactly, without routing geometry in the way.
func graphOf(reg *registry.Registry, nodes []nodeSpec, edges []edgeSpec) *build.CompiledGraph {
	g := &build.CompiledGraph{
		Nodes:              make(map[string]build.CompiledNode, len(nodes)),
		Outgoing:           make(map[string][]build.CompiledEdge),
		EdgeByDirectedPort: make(map[model.PortKey]string),
		NodeAt:             make(map[geom.Point]string),
		Groups:             map[string]build.GroupMeta{},
	}
	for i, n := range nodes {
		def, ok := reg.Lookup(n.typ)
		Expect(ok).To(BeTrue(), "unknown type %s", n.typ)
		param := n.param
		if param == 0 {
			param = def.DefaultParam
		}
		var state any
		if def.InitState != nil {
			state = def.InitState()
		}
		pos := geom.Point{X: i * 4}
		g.Nodes[n.id] = build.CompiledNode{ID: n.id, Type: n.typ, Def: def, Param: param, InitialState: state, Position: pos}
		g.NodeOrder = append(g.NodeOrder, n.id)
		g.NodeAt[pos] = n.id
	}
	for _, e := range edges {
		ce := build.CompiledEdge{
			ID:    e.id,
			From:  model.EndPoint{NodeID: e.from, Slot: e.fromSlot},
			To:    model.EndPoint{NodeID: e.to, Slot: e.toSlot},
			Role:  e.role,
			Delay: e.delay,
		}
		g.Edges = append(g.Edges, ce)
		g.Outgoing[e.from] = append(g.Outgoing[e.from], ce)
		g.EdgeByDirectedPort[model.PortKey{NodeID: e.from, Direction: model.Output, Slot: e.fromSlot}] = e.id
		g.EdgeByDirectedPort[model.PortKey{NodeID: e.to, Direction: model.Input, Slot: e.toSlot}] = e.id
	}
	return g
}

func ticksOf(events []runtime.OutputEvent) []float64 {
	out := make([]float64, len(events))
	for i, ev := range events {
		out[i] = ev.Tick
	}
	return out
}

var _ = Describe("Runtime", func() {
	var reg *registry.Registry

	BeforeEach(func() {
		reg = stdRegistry()
	})

	Context("with a single pulse wired to an output over a length-2 cable", func() {
		var rt *runtime.Runtime

		BeforeEach(func() {
			g := graphOf(reg,
				[]nodeSpec{{id: "src", typ: "pulse"}, {id: "sink", typ: "output"}},
				[]edgeSpec{{id: "e1", from: "src", to: "sink", role: registry.Signal, delay: 2}},
			)
			rt = runtime.New(g, 1)
		})

		It("fires the output at ticks 2 and 6 in the window [0,10)", func() {
			events := rt.QueryWindow(0, 10)
			Expect(ticksOf(events)).To(Equal([]float64{2, 6}))
			for _, ev := range events {
				Expect(ev.NodeID).To(Equal("sink"))
				Expect(ev.Value).To(Equal(1))
				Expect(ev.EdgeID).To(Equal("e1"))
			}
		})

		It("keeps every returned tick inside the half-open window", func() {
			events := rt.QueryWindow(0, 6)
			Expect(ticksOf(events)).To(Equal([]float64{2}))

			events = rt.QueryWindow(6, 10)
			Expect(ticksOf(events)).To(Equal([]float64{6}))
		})

		It("resumes pulsing after ResetPulses without touching the graph", func() {
			rt.QueryWindow(0, 10)
			rt.ResetPulses()

			events := rt.QueryWindow(10, 30)
			Expect(events).NotTo(BeEmpty())
			for i := 1; i < len(events); i++ {
				Expect(events[i].Tick).To(BeNumerically(">=", events[i-1].Tick))
			}
		})
	})

	Context("with a speed node scaling delay by 4", func() {
		It("compresses the final cable to half a tick", func() {
			g := graphOf(reg,
				[]nodeSpec{{id: "src", typ: "pulse"}, {id: "fast", typ: "speed", param: 4}, {id: "sink", typ: "output"}},
				[]edgeSpec{
					{id: "e1", from: "src", to: "fast", role: registry.Signal, delay: 0},
					{id: "e2", from: "fast", to: "sink", role: registry.Signal, delay: 2},
				},
			)
			rt := runtime.New(g, 1)

			events := rt.QueryWindow(0, 10)
			Expect(len(events)).To(Equal(3))
			Expect(events[0].Tick).To(BeNumerically("~", 0.5, 0.01))
			Expect(events[1].Tick).To(BeNumerically("~", 4.5, 0.01))
			Expect(events[2].Tick).To(BeNumerically("~", 8.5, 0.01))
			for _, ev := range events {
				Expect(ev.Speed).To(Equal(4))
			}
		})
	})

	Context("when a control and a signal pulse land on the same node tick", func() {
		It("runs onControl first so the signal sees the updated param", func() {
			// Both pulses fire at tick 0; both cables are 2 ticks long, so
			// the set node receives the param-5 control pulse and the
			// signal pulse at tick 2 together.
			g := graphOf(reg,
				[]nodeSpec{
					{id: "beat", typ: "pulse"},
					{id: "level", typ: "pulse", param: 5},
					{id: "hold", typ: "set"},
					{id: "sink", typ: "output"},
				},
				[]edgeSpec{
					{id: "sig", from: "beat", to: "hold", toSlot: 0, role: registry.Signal, delay: 2},
					{id: "ctl", from: "level", to: "hold", toSlot: 1, role: registry.Control, delay: 2},
					{id: "out", from: "hold", to: "sink", role: registry.Signal, delay: 1},
				},
			)
			rt := runtime.New(g, 1)

			events := rt.QueryWindow(0, 4)
			Expect(ticksOf(events)).To(Equal([]float64{3}))
			Expect(events[0].Value).To(Equal(5))
		})
	})

	Context("live patching an edge delay", func() {
		newChain := func() *runtime.Runtime {
			g := graphOf(reg,
				[]nodeSpec{{id: "src", typ: "pulse"}, {id: "sink", typ: "output"}},
				[]edgeSpec{{id: "e1", from: "src", to: "sink", role: registry.Signal, delay: 10}},
			)
			rt := runtime.New(g, 1)
			// Fire the pulse so an in-flight event targets tick 10 with
			// emit time 0.
			Expect(rt.QueryWindow(0, 1)).To(BeEmpty())
			return rt
		}

		It("preserves an event inside the lookahead window", func() {
			rt := newChain()
			rt.ApplyPatch(runtime.Patch{UpdatedEdges: map[string]float64{"e1": 15}}, 12)

			events := rt.QueryWindow(1, 12)
			Expect(ticksOf(events)).To(Equal([]float64{10}))
		})

		It("reschedules an event outside the lookahead window", func() {
			rt := newChain()
			rt.ApplyPatch(runtime.Patch{UpdatedEdges: map[string]float64{"e1": 15}}, 8)

			events := rt.QueryWindow(1, 16)
			Expect(ticksOf(events)).To(Equal([]float64{15}))
		})
	})

	Context("live patching params", func() {
		It("lets in-flight pulses read the updated param at their target", func() {
			g := graphOf(reg,
				[]nodeSpec{{id: "src", typ: "pulse"}, {id: "hold", typ: "set", param: 2}, {id: "sink", typ: "output"}},
				[]edgeSpec{
					{id: "e1", from: "src", to: "hold", role: registry.Signal, delay: 2},
					{id: "e2", from: "hold", to: "sink", role: registry.Signal, delay: 1},
				},
			)
			rt := runtime.New(g, 1)

			// The pulse fires at 0; its signal is mid-cable when the param
			// changes underneath it.
			Expect(rt.QueryWindow(0, 1)).To(BeEmpty())
			rt.ApplyPatch(runtime.Patch{UpdatedParams: map[string]int{"hold": 7}}, 0)

			events := rt.QueryWindow(1, 4)
			Expect(ticksOf(events)).To(Equal([]float64{3}))
			Expect(events[0].Value).To(Equal(7))
		})
	})

	Context("thumb projection", func() {
		It("reports per-event progress along the cable", func() {
			g := graphOf(reg,
				[]nodeSpec{{id: "src", typ: "pulse"}, {id: "sink", typ: "output"}},
				[]edgeSpec{{id: "e1", from: "src", to: "sink", role: registry.Signal, delay: 10}},
			)
			rt := runtime.New(g, 1)
			rt.QueryWindow(0, 1)

			thumbs := rt.GetThumbState(5)
			Expect(thumbs).To(HaveLen(1))
			Expect(thumbs[0].EdgeID).To(Equal("e1"))
			Expect(thumbs[0].Progress).To(BeNumerically("~", 0.5, 1e-9))
			Expect(thumbs[0].EmitTick).To(Equal(0.0))

			Expect(rt.GetThumbState(20)[0].Progress).To(Equal(1.0))
		})
	})

	Context("determinism", func() {
		It("replays identically for the same seed and graph", func() {
			mkRT := func() *runtime.Runtime {
				g := graphOf(reg,
					[]nodeSpec{{id: "src", typ: "pulse"}, {id: "dice", typ: "random", param: 8}, {id: "sink", typ: "output"}},
					[]edgeSpec{
						{id: "e1", from: "src", to: "dice", role: registry.Signal, delay: 1},
						{id: "e2", from: "dice", to: "sink", role: registry.Signal, delay: 1},
					},
				)
				return runtime.New(g, 42)
			}

			first := mkRT().QueryWindow(0, 40)
			second := mkRT().QueryWindow(0, 40)
			Expect(second).To(Equal(first))
		})
	})

	Context("warnings", func() {
		warningCodes := func(rt *runtime.Runtime) map[string]bool {
			codes := map[string]bool{}
			for _, w := range rt.Warnings() {
				codes[string(w.Code)] = true
			}
			return codes
		}

		simpleChain := func() *build.CompiledGraph {
			return graphOf(reg,
				[]nodeSpec{{id: "src", typ: "pulse"}, {id: "sink", typ: "output"}},
				[]edgeSpec{{id: "e1", from: "src", to: "sink", role: registry.Signal, delay: 2}},
			)
		}

		It("warns and drops once the hard queue cap is hit", func() {
			cfg := runtime.DefaultConfig()
			cfg.HardCap = 1
			rt := runtime.NewWithConfig(simpleChain(), 1, cfg, runtime.NewRingScheduler())

			rt.QueryWindow(0, 1)
			Expect(warningCodes(rt)).To(HaveKey(string(runtime.CodeQueueOverflow)))
		})

		It("clamps an out-of-range emission and warns", func() {
			loud := registry.NodeTypeDef{
				Type: "loud", DisplayName: "Loud", Category: "modifier",
				Archetype: registry.SingleIO, Inputs: 1, Outputs: 1, DefaultParam: 1,
				OnSignal: func(registry.BehaviorCtx) registry.SignalResult {
					return registry.SignalResult{Outputs: []registry.OutputEvent{{Slot: 0, Value: 99}}}
				},
			}
			regResult := registry.New(append(registry.StdCatalog(), loud))
			Expect(regResult.OK).To(BeTrue())

			g := graphOf(regResult.Value,
				[]nodeSpec{{id: "src", typ: "pulse"}, {id: "amp", typ: "loud"}, {id: "sink", typ: "output"}},
				[]edgeSpec{
					{id: "e1", from: "src", to: "amp", role: registry.Signal, delay: 1},
					{id: "e2", from: "amp", to: "sink", role: registry.Signal, delay: 1},
				},
			)
			rt := runtime.New(g, 1)

			events := rt.QueryWindow(0, 3)
			Expect(events).To(HaveLen(1))
			Expect(events[0].Value).To(Equal(8))
			Expect(warningCodes(rt)).To(HaveKey(string(runtime.CodeInvalidValue)))
		})

		It("warns on an externally injected pulse behind the cursor", func() {
			rt := runtime.New(simpleChain(), 1)
			rt.QueryWindow(0, 5)

			rt.Schedule(1, "sink", 0, 1, 1)
			Expect(warningCodes(rt)).To(HaveKey(string(runtime.CodeLateEvent)))
		})

		It("warns when a patch targets unknown nodes or edges", func() {
			rt := runtime.New(simpleChain(), 1)

			rt.ApplyPatch(runtime.Patch{
				UpdatedParams: map[string]int{"ghost": 3},
				UpdatedEdges:  map[string]float64{"phantom": 5},
			}, 0)

			codes := warningCodes(rt)
			Expect(codes).To(HaveKey(string(runtime.CodeMissingNode)))
			Expect(codes).To(HaveKey(string(runtime.CodeMissingEdge)))
		})
	})

	Context("delay floor", func() {
		It("never schedules below MinDelayTicks", func() {
			g := graphOf(reg,
				[]nodeSpec{{id: "src", typ: "pulse"}, {id: "sink", typ: "output"}},
				[]edgeSpec{{id: "e1", from: "src", to: "sink", role: registry.Signal, delay: 0}},
			)
			rt := runtime.New(g, 1)

			events := rt.QueryWindow(0, 1)
			Expect(events).To(HaveLen(1))
			Expect(events[0].Tick).To(BeNumerically(">", 0))
			Expect(events[0].Tick).To(BeNumerically("~", 1e-3, 1e-9))
		})
	})
})

var _ = Describe("Runtime with a mock scheduler", func() {
	var (
		mockCtrl *gomock.Controller
		sched    *MockScheduler
		reg      *registry.Registry
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sched = NewMockScheduler(mockCtrl)
		reg = stdRegistry()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	sinkOnly := func() *build.CompiledGraph {
		return graphOf(reg, []nodeSpec{{id: "sink", typ: "output"}}, nil)
	}

	It("clears the queue on SetGraph", func() {
		rt := runtime.NewWithConfig(sinkOnly(), 1, runtime.DefaultConfig(), sched)

		sched.EXPECT().Clear()
		rt.SetGraph(sinkOnly())
	})

	It("evicts scheduled events for removed nodes and edges", func() {
		rt := runtime.NewWithConfig(sinkOnly(), 1, runtime.DefaultConfig(), sched)

		sched.EXPECT().RemoveByNode("gone")
		sched.EXPECT().RemoveByEdge("cable")
		rt.ApplyPatch(runtime.Patch{RemovedNodes: []string{"gone"}, RemovedEdges: []string{"cable"}}, 0)
	})

	It("returns an empty window when nothing is queued", func() {
		rt := runtime.NewWithConfig(sinkOnly(), 1, runtime.DefaultConfig(), sched)

		sched.EXPECT().PeekMinTick().Return(0.0, false)
		Expect(rt.QueryWindow(0, 10)).To(BeEmpty())
	})
})
