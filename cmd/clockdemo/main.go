// Command clockdemo drives a compiled patch from an akita discrete-event
// simulation clock instead of a real audio callback: each simulated cycle
// plays the role of one host onTick window, and the bridge pulls whatever
// trigger records fall in that window's lookahead stretch. It exists to
// exercise the engine against a real external clock source, the way a
// hardware-synced deployment would.
package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/patchbay/enginecore/audiobridge"
	"github.com/patchbay/enginecore/build"
	"github.com/patchbay/enginecore/internal/geom"
	"github.com/patchbay/enginecore/model"
	"github.com/patchbay/enginecore/registry"
	"github.com/patchbay/enginecore/routing"
	patchruntime "github.com/patchbay/enginecore/runtime"
)

// hostClock is a TickingComponent standing in for the audio thread: every
// simulated cycle is one host callback window handed to the bridge. Host
// seconds advance by a fixed callback period per cycle, independent of the
// engine's own virtual-time scale.
type hostClock struct {
	*sim.TickingComponent

	bridge  *audiobridge.Bridge
	period  float64
	lastSec float64
	maxSec  float64
}

// Tick runs one host callback window through the bridge.
func (c *hostClock) Tick() (madeProgress bool) {
	if c.lastSec >= c.maxSec {
		return false
	}
	t1 := c.lastSec + c.period
	c.bridge.OnTick(c.lastSec, t1)
	c.lastSec = t1
	return true
}

func demoGraph() *build.CompiledGraph {
	regResult := registry.New(registry.StdCatalog())
	if !regResult.OK {
		fmt.Fprintln(os.Stderr, "demo catalog failed validation:", regResult.Errors)
		os.Exit(1)
	}
	reg := regResult.Value

	snap := model.Snapshot{
		Nodes: []model.NodeRecord{
			{ID: "clock", Type: "pulse", Position: geom.Point{X: 0, Y: 0}, Params: map[string]int{"param": 2}},
			{ID: "fast", Type: "speed", Position: geom.Point{X: 4, Y: 0}, Params: map[string]int{"param": 4}},
			{ID: "tail", Type: "decay", Position: geom.Point{X: 8, Y: 0}, Params: map[string]int{"param": 3}},
			{ID: "hit", Type: "output", Position: geom.Point{X: 12, Y: 0}},
		},
		Edges: []model.EdgeRecord{
			{ID: "e1", From: model.EndPoint{NodeID: "clock", Slot: 0}, To: model.EndPoint{NodeID: "fast", Slot: 0}},
			{ID: "e2", From: model.EndPoint{NodeID: "fast", Slot: 0}, To: model.EndPoint{NodeID: "tail", Slot: 0}},
			{ID: "e3", From: model.EndPoint{NodeID: "tail", Slot: 0}, To: model.EndPoint{NodeID: "hit", Slot: 0}},
		},
		Groups: map[string]model.GroupDefinition{},
	}

	router := routing.NewRouter()
	routes := router.RouteAll(snap, reg)
	if !routes.OK {
		fmt.Fprintln(os.Stderr, "demo graph failed to route:", routes.Errors)
		os.Exit(1)
	}
	result := build.Compile(snap, reg, routing.Delays(routes.Value))
	if !result.OK {
		fmt.Fprintln(os.Stderr, "demo graph failed to compile:", result.Errors)
		os.Exit(1)
	}
	return result.Value
}

func main() {
	graph := demoGraph()
	rt := patchruntime.New(graph, 1)

	var triggers []audiobridge.WireEvent
	bridge := audiobridge.New(
		audiobridge.Transport{BPM: 120, TicksPerBeat: 4},
		audiobridge.DefaultConfig(),
		rt,
		graph,
		func(events []audiobridge.WireEvent) { triggers = append(triggers, events...) },
	)

	engine := sim.NewSerialEngine()
	// A 50ms host callback is coarse next to a real audio thread, but the
	// window math is identical and the table stays readable.
	clk := &hostClock{bridge: bridge, period: 0.05, maxSec: 8}
	clk.TickingComponent = sim.NewTickingComponent("HostClock", engine, 1*sim.GHz, clk)
	clk.TickNow()

	atexit.Register(func() { printSummary(triggers) })

	if err := engine.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "engine run:", err)
		os.Exit(1)
	}
	atexit.Exit(0)
}

func printSummary(triggers []audiobridge.WireEvent) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("clockdemo triggers")
	t.AppendHeader(table.Row{"time", "s", "n", "end", "crush", "lpf", "hpf"})
	for _, ev := range triggers {
		t.AppendRow(table.Row{fmt.Sprintf("%.3f", ev.Time), ev.S, ev.N, ev.End, ev.Crush, ev.Lpf, ev.Hpf})
	}
	if len(triggers) == 0 {
		t.AppendRow(table.Row{"-", "-", "-", "-", "-", "-", "-"})
	}
	t.Render()
}
