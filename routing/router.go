// Package routing derives orthogonal polyline paths and tick delays for
// edges, from node placements and the registry's unrotated port layouts. It
// never mutates the graph model; it only reads a snapshot.
package routing

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/patchbay/enginecore/diag"
	"github.com/patchbay/enginecore/internal/geom"
	"github.com/patchbay/enginecore/model"
	"github.com/patchbay/enginecore/registry"
)

// BendPreference breaks the tie between the two possible L-shaped paths
// when an elbow could bend either way.
type BendPreference int

const (
	HorizontalFirst BendPreference = iota
	VerticalFirst
)

// Config is the router's tuning surface. The same config must be passed on
// every call for the cache to be coherent; it participates in each edge's
// cache key.
type Config struct {
	// TicksPerGrid converts a routed polyline's Manhattan length into a
	// propagation delay. One tick per grid unit keeps delay legible on the
	// canvas: a cable twice as long takes twice as long to carry its pulse.
	TicksPerGrid float64

	// Preference applies only when an elbow's horizontal and vertical
	// spans are equal; unequal spans always bend along the longer axis
	// first.
	Preference BendPreference
}

// DefaultConfig matches the editor's defaults: one tick per grid unit,
// horizontal-first elbows.
func DefaultConfig() Config {
	return Config{TicksPerGrid: 1, Preference: HorizontalFirst}
}

// RouteResult is one edge's derived geometry and delay.
type RouteResult struct {
	// Points is the grid-integer polyline from the source anchor to the
	// destination anchor, every segment axis-aligned.
	Points []geom.Point

	// SVGPathD is the pure-geometry path string for Points. Rounded joins
	// and styling are a rendering concern, not data.
	SVGPathD string

	// TotalLength is the Manhattan length of Points in grid units.
	TotalLength int

	// Delay is TotalLength * TicksPerGrid. It may be zero; the runtime
	// enforces a positive floor, not the router.
	Delay float64
}

// Router incrementally recomputes routes, keyed by a hash of the inputs
// that can change a route: endpoint anchors (node position, rotation, and
// layout folded in), the edge's manual corners, and the routing config. An
// edge whose inputs haven't changed reuses its cached result instead of
// re-routing.
type Router struct {
	mu    sync.Mutex
	cfg   Config
	cache map[string]cachedRoute
}

type cachedRoute struct {
	hash   [32]byte
	result RouteResult
}

// NewRouter returns an empty Router with the default config.
func NewRouter() *Router {
	return NewRouterWithConfig(DefaultConfig())
}

// NewRouterWithConfig returns an empty Router with cfg.
func NewRouterWithConfig(cfg Config) *Router {
	return &Router{cfg: cfg, cache: make(map[string]cachedRoute)}
}

// RouteAll computes (or reuses cached) routes for every edge in snap,
// keyed by edge id. A dangling endpoint or invalid slot is reported as a
// ROUTE_* issue and that edge is omitted from the result map; routing
// never fails the whole batch for one bad edge, and never falls back to a
// silent default route.
func (rt *Router) RouteAll(snap model.Snapshot, reg *registry.Registry) diag.Result[map[string]RouteResult] {
	return rt.Route(snap, reg, nil)
}

// Route is the batch entry point. When changed is non-nil, only edges in
// the set are re-hashed and re-routed; every other edge is served straight
// from the cache. Callers derive the changed set from the model's
// EdgesByNode index when a node moves or rotates. An id in changed that
// names no edge in snap is reported as ROUTE_MISSING_EDGE.
func (rt *Router) Route(snap model.Snapshot, reg *registry.Registry, changed map[string]bool) diag.Result[map[string]RouteResult] {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	nodes := make(map[string]model.NodeRecord, len(snap.Nodes))
	for _, n := range snap.Nodes {
		nodes[n.ID] = n
	}

	out := make(map[string]RouteResult, len(snap.Edges))
	var errs []diag.Issue
	seen := make(map[string]bool, len(snap.Edges))

	route := func(key string, e model.EdgeRecord, nodeSet map[string]model.NodeRecord, groups map[string]model.GroupDefinition) {
		seen[key] = true
		if changed != nil && !changed[key] {
			if cached, ok := rt.cache[key]; ok {
				out[key] = cached.result
				return
			}
		}
		result, issue := rt.routeOne(key, e, nodeSet, groups, reg)
		if issue != nil {
			errs = append(errs, *issue)
			return
		}
		out[key] = result
	}

	for _, e := range snap.Edges {
		route(e.ID, e, nodes, snap.Groups)
	}

	// Group-internal edges route against the group's own sub-snapshot,
	// keyed "groupID/edgeID" so the build layer can find their delays
	// after flattening. Group ids iterate sorted for determinism.
	for _, gid := range sortedGroupIDs(snap.Groups) {
		g := snap.Groups[gid]
		gnodes := make(map[string]model.NodeRecord, len(g.Internal.Nodes))
		for _, n := range g.Internal.Nodes {
			gnodes[n.ID] = n
		}
		for _, e := range g.Internal.Edges {
			route(GroupEdgeKey(gid, e.ID), e, gnodes, nil)
		}
	}

	for id := range changed {
		if !seen[id] {
			errs = append(errs, diag.Issue{Code: CodeMissingEdge, EntityID: id, OpIndex: -1,
				Message: "route: changed set names an edge not in the snapshot"})
		}
	}

	// Drop stale cache entries for edges that no longer exist.
	for id := range rt.cache {
		if !seen[id] {
			delete(rt.cache, id)
		}
	}

	if len(errs) > 0 {
		return diag.Result[map[string]RouteResult]{OK: false, Value: out, Errors: errs}
	}
	return diag.Ok(out)
}

// Delays projects a route map down to the per-edge delay table the build
// layer consumes.
func Delays(routes map[string]RouteResult) map[string]float64 {
	out := make(map[string]float64, len(routes))
	for id, r := range routes {
		out[id] = r.Delay
	}
	return out
}

func (rt *Router) routeOne(key string, e model.EdgeRecord, nodes map[string]model.NodeRecord, groups map[string]model.GroupDefinition, reg *registry.Registry) (RouteResult, *diag.Issue) {
	from, ok := nodes[e.From.NodeID]
	if !ok {
		return RouteResult{}, issue(CodeMissingNode, key, "route: missing source node "+e.From.NodeID)
	}
	to, ok := nodes[e.To.NodeID]
	if !ok {
		return RouteResult{}, issue(CodeMissingNode, key, "route: missing destination node "+e.To.NodeID)
	}

	fromDef, ok := reg.Lookup(from.Type)
	if !ok {
		return RouteResult{}, issue(CodeMissingNode, key, "route: unknown node type "+from.Type)
	}
	toDef, ok := reg.Lookup(to.Type)
	if !ok {
		return RouteResult{}, issue(CodeMissingNode, key, "route: unknown node type "+to.Type)
	}

	fromLayout, err := registry.DeriveLayout(fromDef, groupInputFor(from, groups))
	if err != nil {
		return RouteResult{}, issue(CodeAnchorFail, key, err.Error())
	}
	toLayout, err := registry.DeriveLayout(toDef, groupInputFor(to, groups))
	if err != nil {
		return RouteResult{}, issue(CodeAnchorFail, key, err.Error())
	}

	if e.From.Slot < 0 || e.From.Slot >= len(fromLayout.Outputs) {
		return RouteResult{}, issue(CodeInvalidPort, key, "route: source slot out of range")
	}
	if e.To.Slot < 0 || e.To.Slot >= len(toLayout.Inputs) {
		return RouteResult{}, issue(CodeInvalidPort, key, "route: destination slot out of range")
	}

	fromSpec := fromLayout.Outputs[e.From.Slot]
	toSpec := toLayout.Inputs[e.To.Slot]

	fw, fh := boundingBox(fromLayout)
	tw, th := boundingBox(toLayout)

	fromPoint, fromSide := RotateAnchor(fromSpec.Anchor.Point, fromSpec.Anchor.Side, fw, fh, from.Rotation)
	toPoint, toSide := RotateAnchor(toSpec.Anchor.Point, toSpec.Anchor.Side, tw, th, to.Rotation)

	fromAnchor := from.Position.Add(fromPoint)
	toAnchor := to.Position.Add(toPoint)

	hash := rt.routeHash(fromAnchor, fromSide, toAnchor, toSide, e.Corners)
	if cached, ok := rt.cache[key]; ok && cached.hash == hash {
		return cached.result, nil
	}

	points := buildPath(fromAnchor, fromSide, toAnchor, toSide, e.Corners, rt.cfg.Preference)
	if len(points) < 2 {
		return RouteResult{}, issue(CodeInternalError, key, "route: produced a degenerate polyline")
	}
	length := pathLength(points)
	result := RouteResult{
		Points:      points,
		SVGPathD:    svgPath(points),
		TotalLength: length,
		Delay:       float64(length) * rt.cfg.TicksPerGrid,
	}

	rt.cache[key] = cachedRoute{hash: hash, result: result}
	return result, nil
}

// GroupEdgeKey is the delay-map key for a group-internal edge: the group
// definition id joined to the internal edge id. Every instance of a group
// shares the same internal geometry, so they share one routed result.
func GroupEdgeKey(groupID, edgeID string) string {
	return groupID + "/" + edgeID
}

func sortedGroupIDs(groups map[string]model.GroupDefinition) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func groupInputFor(n model.NodeRecord, groups map[string]model.GroupDefinition) *registry.GroupLayoutInput {
	g, ok := groups[n.GroupRef]
	if !ok {
		return nil
	}
	return &registry.GroupLayoutInput{
		ExternalInputsCount:  len(g.Inputs),
		ExternalControlCount: len(g.Controls),
		ExternalOutputsCount: len(g.Outputs),
	}
}

// buildPath assembles the full constraint chain — source stub, manual
// corners in order, destination stub — and routes each consecutive pair
// with at most one elbow, then collapses zero-length and collinear runs.
// Manual corners are hard constraints; the router never moves one.
func buildPath(from geom.Point, fromSide geom.Side, to geom.Point, toSide geom.Side, corners []geom.Point, pref BendPreference) []geom.Point {
	firstNext := to
	if len(corners) > 0 {
		firstNext = corners[0]
	}
	lastPrev := from
	if len(corners) > 0 {
		lastPrev = corners[len(corners)-1]
	}

	fromStub := stubEnd(from, fromSide, firstNext)
	toStub := stubEnd(to, toSide, lastPrev)

	constraints := make([]geom.Point, 0, len(corners)+2)
	constraints = append(constraints, fromStub)
	constraints = append(constraints, corners...)
	constraints = append(constraints, toStub)

	path := []geom.Point{from}
	for _, next := range constraints {
		prev := path[len(path)-1]
		path = append(path, elbow(prev, next, pref)...)
		path = append(path, next)
	}
	path = append(path, to)

	return collapse(path)
}

// stubEnd emits the endpoint of a unit-length stub along the port normal,
// clamped to the available distance toward the next constraint when that
// distance is shorter. A zero-length stub is valid.
func stubEnd(anchor geom.Point, side geom.Side, next geom.Point) geom.Point {
	n := side.Normal()
	avail := (next.X-anchor.X)*n.X + (next.Y-anchor.Y)*n.Y
	length := 1
	if avail < 1 {
		length = avail
		if length < 0 {
			length = 0
		}
	}
	return geom.Point{X: anchor.X + n.X*length, Y: anchor.Y + n.Y*length}
}

// elbow returns the single intermediate corner between a and b, or nothing
// when they already share an axis. Where both L-paths exist, the bend
// follows the longer axis first; equal spans fall back to pref.
func elbow(a, b geom.Point, pref BendPreference) []geom.Point {
	if a.X == b.X || a.Y == b.Y {
		return nil
	}
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)

	horizontal := dx > dy || (dx == dy && pref == HorizontalFirst)
	if horizontal {
		return []geom.Point{{X: b.X, Y: a.Y}}
	}
	return []geom.Point{{X: a.X, Y: b.Y}}
}

// collapse removes zero-length segments and merges collinear runs, so the
// returned polyline has the minimum point count for its shape. A manual
// corner that forces a reversal survives because the reversal's endpoints
// are distinct points on the same axis, which is a collinear run only when
// the middle point lies between them.
func collapse(path []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(path))
	for _, p := range path {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		for len(out) >= 2 {
			a, b := out[len(out)-2], out[len(out)-1]
			if between(a, b, p) {
				out = out[:len(out)-1]
				continue
			}
			break
		}
		out = append(out, p)
	}
	return out
}

// between reports whether b lies on the axis-aligned segment a->p.
func between(a, b, p geom.Point) bool {
	if a.X == b.X && b.X == p.X {
		return (a.Y <= b.Y && b.Y <= p.Y) || (p.Y <= b.Y && b.Y <= a.Y)
	}
	if a.Y == b.Y && b.Y == p.Y {
		return (a.X <= b.X && b.X <= p.X) || (p.X <= b.X && b.X <= a.X)
	}
	return false
}

func pathLength(path []geom.Point) int {
	total := 0
	for i := 1; i < len(path); i++ {
		total += path[i-1].ManhattanTo(path[i])
	}
	return total
}

// svgPath renders points as a plain M/L path string. Identical inputs
// yield a byte-identical string; the renderer owns joins and styling.
func svgPath(points []geom.Point) string {
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			fmt.Fprintf(&b, "M %d %d", p.X, p.Y)
			continue
		}
		fmt.Fprintf(&b, " L %d %d", p.X, p.Y)
	}
	return b.String()
}

func (rt *Router) routeHash(from geom.Point, fromSide geom.Side, to geom.Point, toSide geom.Side, corners []geom.Point) [32]byte {
	h := sha256.New()
	writePoint := func(p geom.Point) {
		var buf [8]byte
		binary.LittleEndian.PutUint32(buf[0:4], uint32(p.X))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(p.Y))
		h.Write(buf[:])
	}
	writePoint(from)
	fmt.Fprint(h, fromSide.Name())
	writePoint(to)
	fmt.Fprint(h, toSide.Name())
	for _, c := range corners {
		writePoint(c)
	}

	var cfg [9]byte
	binary.LittleEndian.PutUint64(cfg[0:8], math.Float64bits(rt.cfg.TicksPerGrid))
	cfg[8] = byte(rt.cfg.Preference)
	h.Write(cfg[:])

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func issue(code diag.Code, entityID, msg string) *diag.Issue {
	return &diag.Issue{Code: code, Message: msg, EntityID: entityID, OpIndex: -1}
}
