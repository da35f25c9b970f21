package combo

import "combo/internal/ir"

// verifyMonotone panics with an InvariantError if next is not ≤ prev in the
// lattice order — the single debug hook spec.md §7/§8 requires every retype
// pass through (Config.VerifyMonotone gates the call site in solver.go).
func verifyMonotone(n *ir.Node, prev, next Type) {
	if !next.LessEq(prev) {
		panic(InvariantError{
			Kind: "VERIFY_MONOTONE",
			Node: n,
			Msg:  prev.String() + " -> " + next.String() + " is not a descent",
		})
	}
}

// verifyPartitions panics with an InvariantError if a partition's leaders no
// longer share a split_by_what key — i.e. a split that should have fired
// was missed (spec.md §7/§8 CHECK_PARTITIONS). Followers are deliberately
// excluded: by definition their key has not been checked yet, so disagreeing
// with the leader key is not itself a missed split (see raceSplitFollowers).
func verifyPartitions(ctx *Context, p *partition) {
	if len(p.leaders) <= 1 {
		return
	}
	want := splitKey(ctx, p.leaders[0].node)
	for _, w := range p.leaders[1:] {
		if splitKey(ctx, w.node) != want {
			panic(InvariantError{
				Kind: "CHECK_PARTITIONS",
				Node: w.node,
				Msg:  "partition member disagrees with split_by_what key of its class",
			})
		}
	}
}
