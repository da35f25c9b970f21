package combo

import "combo/internal/ir"

// wrapper is the pass-owned scratch record spec.md §3 calls "Node wrapper
// (per IR node, owned by the pass)": the lattice type computed so far, which
// partition the node currently belongs to, and whether it sits on that
// partition's leader or follower list. None of this belongs on ir.Node
// itself — it is valid for exactly one Context.Run.
type wrapper struct {
	node      *ir.Node
	typ       Type
	partition *partition

	// isFollower marks this node as a follower of its partition rather than
	// a leader: its split_by_what key has not yet been checked against the
	// rest of the class. splitOne's fast split only re-keys leaders;
	// raceSplitFollowers is what eventually checks a follower, promoting it
	// to leader status one way or another (spec.md §3/§4.2 leader/follower
	// split, follower promotion).
	isFollower bool

	// onWorklistC dedupes C-queue membership so the C queues never hold the
	// same node twice (spec.md §4.3). W holds partitions, not nodes, and is
	// deduped by partition.onW; onWorklistW is never set or read.
	onWorklistC bool
	onWorklistW bool

	// visited is never set or read by the pass.
	visited bool
}
