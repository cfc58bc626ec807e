package registry

import "github.com/patchbay/enginecore/internal/geom"

// PortSpec is one derived port: its slot index (0-based within its
// direction's list), role, and unrotated node-local anchor.
type PortSpec struct {
	Slot   int
	Role   PortRole
	Anchor Anchor
}

// Layout is the full derived port set for a node type: ordered inputs
// (signal ports before control ports, per the universal invariant) and
// ordered outputs. Rotation never permutes slot indices — only the anchors
// rotate.
type Layout struct {
	Inputs  []PortSpec
	Outputs []PortSpec
}

// sixWayOffsets returns, in the globally fixed 6-way order (top-left,
// top-right, right-top, right-bottom, bottom-right, bottom-left), the side
// and in-side index (0 or 1) for each of the 6 ports. The ordering traces a
// clockwise sweep of top/right/bottom, leaving the left side free for
// control inputs on *-control archetypes.
func sixWayOffsets() [6]struct {
	Side    geom.Side
	InSide  int // 0 = nearer the top/left corner of that side, 1 = farther
} {
	return [6]struct {
		Side   geom.Side
		InSide int
	}{
		{geom.Top, 0},    // top-left
		{geom.Top, 1},    // top-right
		{geom.Right, 0},  // right-top
		{geom.Right, 1},  // right-bottom
		{geom.Bottom, 1}, // bottom-right
		{geom.Bottom, 0}, // bottom-left
	}
}

// DeriveLayout computes the port layout for a node type definition. Rotation
// is applied separately by the routing package via Anchor rotation helpers;
// DeriveLayout always returns the unrotated (rotation-0) layout, since slot
// identity must stay stable across rotation per the universal invariant.
func DeriveLayout(def NodeTypeDef, groupDef *GroupLayoutInput) (Layout, error) {
	outRole := Signal
	if def.ControlOutput {
		outRole = Control
	}

	switch def.Archetype {
	case SingleIO:
		return singleSidedLayout(1, 1, 0, outRole), nil
	case SingleIOControl:
		return singleSidedLayout(1, 1, 1, outRole), nil
	case SingleIn:
		return singleSidedLayout(1, 0, 0, outRole), nil
	case MultiOut6:
		return sixWayLayout(true, 0, outRole), nil
	case MultiOut6Ctrl:
		return sixWayLayout(true, def.ControlPorts, outRole), nil
	case MultiIn6:
		return sixWayLayout(false, 0, outRole), nil
	case Custom:
		if groupDef == nil {
			return Layout{}, errPortInvalid("custom archetype requires a group layout input")
		}
		return customLayout(*groupDef), nil
	default:
		return Layout{}, errPortInvalid("unknown archetype " + string(def.Archetype))
	}
}

// singleSidedLayout builds the single-io family: up to one signal input and
// one control input on the left, and `outputs` outputs on the right (0 or
// 1, since every current single-* archetype has at most one output),
// carrying the type's output role.
func singleSidedLayout(signalInputs, outputs, controlInputs int, outRole PortRole) Layout {
	var l Layout

	slot := 0
	for i := 0; i < signalInputs; i++ {
		l.Inputs = append(l.Inputs, PortSpec{
			Slot: slot, Role: Signal,
			Anchor: Anchor{Point: geom.Point{X: 0, Y: i + 1}, Side: geom.Left},
		})
		slot++
	}
	for i := 0; i < controlInputs; i++ {
		l.Inputs = append(l.Inputs, PortSpec{
			Slot: slot, Role: Control,
			Anchor: Anchor{Point: geom.Point{X: 0, Y: signalInputs + i + 1}, Side: geom.Left},
		})
		slot++
	}

	rightN := outputs
	for i := 0; i < rightN; i++ {
		l.Outputs = append(l.Outputs, PortSpec{
			Slot: i, Role: outRole,
			Anchor: Anchor{Point: geom.Point{X: rightN + 1, Y: i + 1}, Side: geom.Right},
		})
	}

	return l
}

// sixWayLayout places 6 ports at the fixed hexagonal anchors, as either all
// outputs (multiOut) or all inputs, and appends `controlInputs` control
// ports on the left side after any signal inputs.
func sixWayLayout(multiOut bool, controlInputs int, outRole PortRole) Layout {
	var l Layout

	offsets := sixWayOffsets()
	sideCounts := map[geom.Side]int{geom.Top: 2, geom.Right: 2, geom.Bottom: 2}

	for slot, off := range offsets {
		n := sideCounts[off.Side]
		L := n + 1
		var x, y int
		switch off.Side {
		case geom.Top:
			x, y = off.InSide+1, 0
		case geom.Bottom:
			x, y = off.InSide+1, L
		case geom.Right:
			x, y = L, off.InSide+1
		}
		spec := PortSpec{Slot: slot, Role: Signal, Anchor: Anchor{Point: geom.Point{X: x, Y: y}, Side: off.Side}}
		if multiOut {
			spec.Role = outRole
			l.Outputs = append(l.Outputs, spec)
		} else {
			l.Inputs = append(l.Inputs, spec)
		}
	}

	for i := 0; i < controlInputs; i++ {
		l.Inputs = append(l.Inputs, PortSpec{
			Slot: len(l.Inputs), Role: Control,
			Anchor: Anchor{Point: geom.Point{X: 0, Y: i + 1}, Side: geom.Left},
		})
	}

	return l
}

// GroupLayoutInput supplies a group definition's external port ordering to
// DeriveLayout for the Custom archetype.
type GroupLayoutInput struct {
	ExternalInputsCount  int // groupDef.inputs[]
	ExternalControlCount int // groupDef.controls[]
	ExternalOutputsCount int // groupDef.outputs[]
}

func customLayout(g GroupLayoutInput) Layout {
	var l Layout

	for i := 0; i < g.ExternalInputsCount; i++ {
		l.Inputs = append(l.Inputs, PortSpec{
			Slot: i, Role: Signal,
			Anchor: Anchor{Point: geom.Point{X: 0, Y: i + 1}, Side: geom.Left},
		})
	}
	for i := 0; i < g.ExternalControlCount; i++ {
		l.Inputs = append(l.Inputs, PortSpec{
			Slot: g.ExternalInputsCount + i, Role: Control,
			Anchor: Anchor{Point: geom.Point{X: 0, Y: g.ExternalInputsCount + i + 1}, Side: geom.Left},
		})
	}

	for i := 0; i < g.ExternalOutputsCount; i++ {
		l.Outputs = append(l.Outputs, PortSpec{
			Slot: i, Role: Signal,
			Anchor: Anchor{Point: geom.Point{X: g.ExternalOutputsCount + 1, Y: i + 1}, Side: geom.Right},
		})
	}

	return l
}

func errPortInvalid(msg string) error {
	return &layoutError{msg: msg}
}

type layoutError struct{ msg string }

func (e *layoutError) Error() string { return e.msg }
