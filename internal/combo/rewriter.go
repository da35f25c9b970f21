package combo

import "combo/internal/ir"

// rewrite is the three(-plus-one)-walk graph-edit phase of spec.md §4.4:
// control-flow pruning, node substitution (constant materialization,
// algebraic identity, congruence), and End keepalive cleanup. It never
// deletes a node's own In/Uses directly — every edit goes through
// ir.Graph.Exchange/SetBlockPreds/SetPhiPreds so def-use bookkeeping stays
// consistent.
func (ctx *Context) rewrite() bool {
	changed := false
	if ctx.applyControlFlow() {
		changed = true
	}
	if ctx.applyBlockFusion() {
		changed = true
	}
	if ctx.applyNodes() {
		changed = true
	}
	if ctx.applyKeepalives() {
		changed = true
	}
	return changed
}

// applyControlFlow drops unreachable predecessor edges from every block's
// (and its Phis') input list, and drops blocks that end up with zero live
// predecessors (and are not the start block) from the graph entirely
// (spec.md §4.4 step 2).
func (ctx *Context) applyControlFlow() bool {
	changed := false
	kept := ctx.Graph.Blocks[:0:0]
	for _, b := range ctx.Graph.Blocks {
		attr := b.Attr.(*ir.BlockAttr)
		if !attr.IsStart && !ctx.wrapperOf(b).typ.IsReachable() {
			changed = true
			continue
		}

		var liveIdx []int
		for i, pred := range b.In {
			if ctx.wrapperOf(pred).typ.IsReachable() {
				liveIdx = append(liveIdx, i)
			}
		}
		if len(liveIdx) != len(b.In) {
			changed = true
			newPreds := make([]*ir.Node, len(liveIdx))
			for j, i := range liveIdx {
				newPreds[j] = b.In[i]
			}
			ctx.Graph.SetBlockPreds(b, newPreds)
			for _, phi := range attr.Phis {
				newIns := make([]*ir.Node, len(liveIdx))
				for j, i := range liveIdx {
					if i < len(phi.In) {
						newIns[j] = phi.In[i]
					}
				}
				ctx.Graph.SetPhiPreds(phi, newIns)
			}
		}
		kept = append(kept, b)
	}
	ctx.Graph.Blocks = kept
	return changed
}

// applyBlockFusion folds a block with exactly one live predecessor whose
// terminator is a plain Jmp into that predecessor's block (spec.md §4.4 step
// 2, "fold blocks with a single live predecessor"): the fused block's own
// members, including its own terminator, become members of the predecessor
// block in place of the now-dead Jmp, and any of the fused block's Phis —
// necessarily single-operand once there is only one predecessor left — fold
// to their sole operand. Runs to a local fixed point so a chain of
// single-predecessor Jmp blocks collapses in one rewrite() call.
func (ctx *Context) applyBlockFusion() bool {
	changed := false
	for {
		fusedAny := false
		kept := ctx.Graph.Blocks[:0:0]
		for _, b := range ctx.Graph.Blocks {
			attr := b.Attr.(*ir.BlockAttr)
			if attr.IsStart || len(b.In) != 1 || b.In[0].Op != ir.OpJmp {
				kept = append(kept, b)
				continue
			}
			jmp := b.In[0]
			pred := jmp.Block
			if pred == nil || pred == b {
				kept = append(kept, b)
				continue
			}
			predAttr := pred.Attr.(*ir.BlockAttr)

			for _, phi := range attr.Phis {
				if len(phi.In) > 0 {
					ctx.Graph.Exchange(phi, phi.In[0])
				}
			}

			merged := make([]*ir.Node, 0, len(predAttr.Members)+len(attr.Members))
			for _, m := range predAttr.Members {
				if m == jmp {
					continue
				}
				merged = append(merged, m)
			}
			for _, m := range attr.Members {
				m.Block = pred
				merged = append(merged, m)
			}
			predAttr.Members = merged

			fusedAny = true
			changed = true
		}
		ctx.Graph.Blocks = kept
		if !fusedAny {
			break
		}
	}
	return changed
}

// applyNodes substitutes every node for its simplest equivalent, in three
// passes over a frozen snapshot of the graph's nodes (spec.md §4.4 step 3):
// materialize concrete constants, fold algebraic identities — binary-arith
// identity constants, Confirm copy elimination, Mux equal-branches, Phi
// merge-of-identical-partitions, all through Confirm chains — then collapse
// remaining congruence-class members onto their partition's lowest-ID
// member.
func (ctx *Context) applyNodes() bool {
	var nodes []*ir.Node
	ctx.forEachNode(func(n *ir.Node) { nodes = append(nodes, n) })

	changed := false
	dead := map[*ir.Node]bool{}

	for _, n := range nodes {
		if n.Op == ir.OpConst || n.Op == ir.OpBlock || n.Op == ir.OpEnd || !n.Mode.IsData() {
			continue
		}
		t := ctx.wrapperOf(n).typ
		if !t.IsConstant() {
			continue
		}
		fresh := ctx.Graph.NewConst(n.Block, ir.ConstAttr{Value: t.Const}, n.Mode)
		ctx.Graph.Exchange(n, fresh)
		dead[n] = true
		changed = true
	}

	for _, n := range nodes {
		var other *ir.Node
		var ok bool
		switch {
		case dead[n]:
		case n.Op == ir.OpConfirm:
			other, ok = followConfirm(n), true
		case n.Op == ir.OpMux:
			other, ok = muxIdentity(ctx, n)
		case n.Op == ir.OpPhi:
			other, ok = phiIdentity(ctx, n)
		case ir.IsBinaryArith(n.Op) && len(n.In) > 0:
			other, ok = algebraicIdentity(ctx, n)
		}
		if ok && other != n {
			ctx.Graph.Exchange(n, other)
			dead[n] = true
			changed = true
		}
	}

	leaders := map[*partition]*ir.Node{}
	for _, n := range nodes {
		p := ctx.store.of(n)
		if p == nil || dead[n] {
			continue
		}
		cur, ok := leaders[p]
		if !ok || n.ID < cur.ID {
			leaders[p] = n
		}
	}
	for _, n := range nodes {
		if !congruenceExchangeable(n) {
			continue
		}
		p := ctx.store.of(n)
		if p == nil || dead[n] {
			continue
		}
		leader := leaders[p]
		if leader == n {
			continue
		}
		ctx.Graph.Exchange(n, leader)
		dead[n] = true
		changed = true
	}

	for _, blk := range ctx.Graph.Blocks {
		attr := blk.Attr.(*ir.BlockAttr)
		live := attr.Members[:0]
		for _, m := range attr.Members {
			if !dead[m] {
				live = append(live, m)
			}
		}
		attr.Members = live
	}

	return changed
}

// congruenceExchangeable excludes nodes whose identity a shared opcode/mode
// key must never paper over: control-flow structure (Block/terminators) and
// side-effecting ops, where two calls to the same entity with the same
// arguments are not interchangeable just because their lattice type (always
// Bottom) and operand partitions happen to agree.
func congruenceExchangeable(n *ir.Node) bool {
	switch n.Op {
	case ir.OpBlock, ir.OpStart, ir.OpEnd, ir.OpJmp, ir.OpCond, ir.OpSwitch, ir.OpReturn,
		ir.OpCall, ir.OpLoad, ir.OpStore, ir.OpSync:
		return false
	}
	if n.Mode.Kind == ir.ModeKindMemory || n.Mode.Kind == ir.ModeKindTuple {
		return false
	}
	return true
}

// applyKeepalives drops any End keepalive whose node lived in a block the
// control-flow walk just pruned (spec.md §4.4 step 4).
func (ctx *Context) applyKeepalives() bool {
	changed := false
	live := map[*ir.Node]bool{}
	for _, b := range ctx.Graph.Blocks {
		live[b] = true
	}
	var kept []*ir.Node
	for _, k := range ctx.Graph.Keepalives {
		if k.Block == nil || live[k.Block] {
			kept = append(kept, k)
		} else {
			changed = true
		}
	}
	ctx.Graph.SetEndKeepalives(kept)
	return changed
}
