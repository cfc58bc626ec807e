// Package geom provides the integer-grid primitives shared by the routing
// and registry packages: points, sides, and the small amount of vector math
// an orthogonal router needs.
package geom

import (
	"fmt"
	"sync"
)

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// ManhattanTo returns the Manhattan distance between p and q.
func (p Point) ManhattanTo(q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Side identifies a placement edge of a node's bounding box. The built-in
// four sides cover every archetype in the registry; AddSide lets a custom
// archetype register more without recompiling.
type Side int

const (
	Left Side = iota
	Right
	Top
	Bottom
)

var (
	sideNames   = []string{"left", "right", "top", "bottom"}
	sideNamesMu sync.RWMutex
)

// Name returns the side's registered name, or a placeholder for an unknown
// index.
func (s Side) Name() string {
	sideNamesMu.RLock()
	defer sideNamesMu.RUnlock()
	if int(s) >= 0 && int(s) < len(sideNames) {
		return sideNames[s]
	}
	return fmt.Sprintf("side-%d", int(s))
}

// AddSide registers a new named side and returns its identifier.
func AddSide(name string) Side {
	sideNamesMu.Lock()
	defer sideNamesMu.Unlock()
	sideNames = append(sideNames, name)
	return Side(len(sideNames) - 1)
}

// Normal returns the outward unit vector for a side at rotation 0.
func (s Side) Normal() Point {
	switch s {
	case Left:
		return Point{-1, 0}
	case Right:
		return Point{1, 0}
	case Top:
		return Point{0, -1}
	case Bottom:
		return Point{0, 1}
	default:
		return Point{0, 0}
	}
}

// Rotate maps a side through a clockwise rotation given in degrees; only
// multiples of 90 are valid inputs, matching the node rotation invariant.
func (s Side) Rotate(degrees int) Side {
	steps := (degrees / 90) % 4
	if steps < 0 {
		steps += 4
	}
	order := [4]Side{Top, Right, Bottom, Left}
	idx := 0
	for i, side := range order {
		if side == s {
			idx = i
			break
		}
	}
	return order[(idx+steps)%4]
}
