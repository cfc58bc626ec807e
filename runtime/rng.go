package runtime

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
)

// nodeSeed derives a deterministic per-node seed from a global run seed and
// the node's id, so two runs with the same seed and the same graph always
// produce the same "random" node's sequence regardless of which nodes the
// scheduler happens to visit first. fnv is content-addressed and carries no
// process-local randomness, unlike hash/maphash, so the same (seed, id)
// pair always hashes to the same bits across runs and machines.
func nodeSeed(globalSeed uint64, nodeID string) (uint64, uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], globalSeed)

	h1 := fnv.New64a()
	h1.Write(buf[:])
	h1.Write([]byte(nodeID))
	s1 := h1.Sum64()

	h2 := fnv.New64a()
	h2.Write(buf[:])
	h2.Write([]byte(nodeID))
	h2.Write([]byte{'#', '2'})
	s2 := h2.Sum64()

	return s1, s2
}

// newNodeRNG builds the *rand.Rand passed into a node's BehaviorCtx.
func newNodeRNG(globalSeed uint64, nodeID string) *rand.Rand {
	s1, s2 := nodeSeed(globalSeed, nodeID)
	return rand.New(rand.NewPCG(s1, s2))
}
