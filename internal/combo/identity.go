package combo

import (
	"combo/internal/ir"
	"combo/internal/opcodes"
)

// followConfirm walks past a chain of Confirm nodes to the value they
// ultimately constrain, matching libFirm's get_confirm helper (spec.md §9
// SUPPLEMENTED FEATURES: opt_confirm-style Confirm chains). Confirm carries
// no computation of its own — it only narrows the lattice type of its first
// input for nodes downstream — so algebraic-identity matching sees through
// it; split_by_what does not, and keys a Confirm by its own operands.
func followConfirm(n *ir.Node) *ir.Node {
	for n.Op == ir.OpConfirm {
		n = n.In[0]
	}
	return n
}

// congruent reports whether a and b — after following any Confirm chain on
// each — are known to compute the same value: either they are literally the
// same node, or partition refinement has found no reason to tell them apart
// yet. Used by the Mux-equal-branches and Phi-merge identities below, which
// must hold for any shared partition, not only a constant one (spec.md §9).
func congruent(ctx *Context, a, b *ir.Node) bool {
	a, b = followConfirm(a), followConfirm(b)
	if a == b {
		return true
	}
	pa, pb := ctx.store.of(a), ctx.store.of(b)
	return pa != nil && pa == pb
}

// algebraicIdentity implements the equivalent_node collaborator of spec.md
// §6/§9: when one operand of a binary op is a known identity constant (0 for
// Add/Eor/Or, 1 for Mul, all-ones for And, 0 for Shl/Shr/Shrs/Rotl's shift
// amount), the node's value equals its other operand, which the rewriter can
// substitute directly (spec.md §9 "preserve the exact algebraic-identity
// list").
func algebraicIdentity(ctx *Context, n *ir.Node) (*ir.Node, bool) {
	entry, ok := opcodes.Lookup(n.Op)
	if !ok || len(entry.Identities) == 0 {
		return nil, false
	}
	for _, id := range entry.Identities {
		if id.Operand >= len(n.In) {
			continue
		}
		operand := followConfirm(n.In[id.Operand])
		t := ctx.wrapperOf(operand).typ
		if !t.IsConstant() || !t.Const.Equal(id.Value(n.Mode.Bits)) {
			continue
		}
		other := id.OtherOperand()
		if other >= len(n.In) {
			continue
		}
		return followConfirm(n.In[other]), true
	}
	return nil, false
}

// muxIdentity implements Mux's equal-branches identity (spec.md §9): when
// both data operands are congruent, Mux computes that value no matter what
// the selector is, even while the selector itself is still Top/Bottom —
// strictly more than muxType's own constant-selector fold in transfer.go.
func muxIdentity(ctx *Context, n *ir.Node) (*ir.Node, bool) {
	if len(n.In) != 3 {
		return nil, false
	}
	if !congruent(ctx, n.In[1], n.In[2]) {
		return nil, false
	}
	return followConfirm(n.In[1]), true
}

// phiIdentity implements the Phi merge-of-identical-partitions identity
// (spec.md §9): a Phi every one of whose live (reachable-predecessor)
// operands is congruent to one common value computes that value regardless
// of which edge is taken, even when the shared partition is not a lattice
// constant — phiType's own Meet already folds the all-constant case, this
// covers the rest. A back-edge feeding the Phi its own value contributes
// nothing and is skipped.
func phiIdentity(ctx *Context, phi *ir.Node) (*ir.Node, bool) {
	block := phi.Block
	var common *ir.Node
	for i, v := range phi.In {
		if i >= len(block.In) {
			break
		}
		pred := block.In[i]
		if !ctx.wrapperOf(pred).typ.IsReachable() {
			continue
		}
		resolved := followConfirm(v)
		if resolved == phi {
			continue
		}
		switch {
		case common == nil:
			common = resolved
		case !congruent(ctx, common, resolved):
			return nil, false
		}
	}
	if common == nil {
		return nil, false
	}
	return common, true
}
