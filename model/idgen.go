package model

import "fmt"

// IDGenerator hands out ids for ops that leave theirs empty. The default
// is a per-kind monotonic counter owned by the model; tests swap in a
// fixed-sequence generator to pin ids.
type IDGenerator interface {
	NextNodeID() string
	NextEdgeID() string
}

type counterIDs struct {
	node int
	edge int
}

func (c *counterIDs) NextNodeID() string {
	c.node++
	return fmt.Sprintf("n%d", c.node)
}

func (c *counterIDs) NextEdgeID() string {
	c.edge++
	return fmt.Sprintf("e%d", c.edge)
}

// SetIDGenerator replaces the model's id source. Call it before the first
// Apply; swapping generators mid-life risks colliding with ids already
// handed out.
func (m *Model) SetIDGenerator(gen IDGenerator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = gen
}
