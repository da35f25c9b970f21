package combo

import "combo/internal/ir"

// seed seeds both worklists: C gets every node (so every transfer function
// runs at least once from its optimistic starting type), W gets every
// initial partition (spec.md §4.3).
func (ctx *Context) seed() {
	ctx.buildInitialPartitions()
	ctx.forEachNode(func(n *ir.Node) { ctx.pushC(n) })
}

// solve drains the data queue, the control queue, and W to a joint fixed
// point. The data queue (cprop) is always fully drained first; only once it
// is empty does a single control-queue (cprop_X) item get popped, and only
// once both C queues are empty does a single W item get popped — matching
// spec.md §4.3's named ordering: Cond/Switch propagation is queued
// separately from data-node propagation and drained only after the data
// queue is empty. Popping one control item can re-populate the data queue
// (a reachability change propagates to data users), so the loop re-checks
// the data queue before ever returning to control or W.
func (ctx *Context) solve() {
	for len(ctx.worklistData) > 0 || len(ctx.worklistControl) > 0 || len(ctx.worklistW) > 0 {
		for len(ctx.worklistData) > 0 {
			ctx.stepData()
		}
		if len(ctx.worklistControl) > 0 {
			ctx.stepControl()
			continue
		}
		if len(ctx.worklistW) > 0 {
			ctx.stepW()
		}
	}
}

func (ctx *Context) stepData() { ctx.stepNode(ctx.popData()) }

func (ctx *Context) stepControl() { ctx.stepNode(ctx.popControl()) }

func (ctx *Context) stepNode(n *ir.Node) {
	w := ctx.wrapperOf(n)
	next := computeType(ctx, n)
	if next.Equal(w.typ) {
		return
	}
	if ctx.Config.VerifyMonotone {
		verifyMonotone(n, w.typ, next)
	}
	w.typ = next
	ctx.propagateUsers(n)
	if p := ctx.store.of(n); p != nil {
		ctx.pushW(p)
	}
}

func (ctx *Context) stepW() {
	p := ctx.popW()
	ctx.splitOne(p)
	ctx.splits++
	if ctx.Config.CheckPartitions {
		verifyPartitions(ctx, p)
	}
}

// propagateUsers pushes every direct user of n onto C. A control edge
// feeding a Block additionally forces re-evaluation of that block's Phis
// and body, since their transfer functions read the block's predecessor
// reachability rather than following a direct def-use edge to it.
func (ctx *Context) propagateUsers(n *ir.Node) {
	for _, e := range n.Uses {
		ctx.pushC(e.User)
		if e.User.Op != ir.OpBlock {
			continue
		}
		attr := e.User.Attr.(*ir.BlockAttr)
		for _, phi := range attr.Phis {
			ctx.pushC(phi)
		}
		for _, m := range attr.Members {
			ctx.pushC(m)
		}
	}
}
