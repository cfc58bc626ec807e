package routing

import (
	"github.com/patchbay/enginecore/internal/geom"
	"github.com/patchbay/enginecore/registry"
)

// boundingBox returns the smallest box, in node-local unrotated
// coordinates, that contains every anchor in a layout. It is the rotation
// pivot: RotateAnchor rotates a point through this box's dimensions, not
// around an assumed-square node.
func boundingBox(l registry.Layout) (w, h int) {
	consider := func(p geom.Point) {
		if p.X+1 > w {
			w = p.X + 1
		}
		if p.Y+1 > h {
			h = p.Y + 1
		}
	}
	for _, p := range l.Inputs {
		consider(p.Anchor.Point)
	}
	for _, p := range l.Outputs {
		consider(p.Anchor.Point)
	}
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return w, h
}

// RotateAnchor maps a node-local anchor through a clockwise rotation of the
// node's bounding box, given in degrees (only multiples of 90 are valid,
// matching the node rotation invariant). Slot identity never changes under
// rotation — only the anchor's point and side do.
func RotateAnchor(p geom.Point, side geom.Side, boxW, boxH, degrees int) (geom.Point, geom.Side) {
	steps := ((degrees / 90) % 4) + 4
	steps %= 4

	w, h := boxW, boxH
	for i := 0; i < steps; i++ {
		p = geom.Point{X: h - p.Y, Y: p.X}
		w, h = h, w
	}
	return p, side.Rotate(degrees)
}

// WorldAnchor resolves one port's anchor to world coordinates for a node
// placed at origin with the given rotation, from the type's unrotated
// layout.
func WorldAnchor(origin geom.Point, rotation int, layout registry.Layout, spec registry.PortSpec) geom.Point {
	w, h := boundingBox(layout)
	p, _ := RotateAnchor(spec.Anchor.Point, spec.Anchor.Side, w, h, rotation)
	return origin.Add(p)
}
