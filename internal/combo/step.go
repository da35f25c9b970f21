package combo

import "combo/internal/ir"

// StepResult summarizes one call to Context.Step, for the REPL's
// interleaved-worklist teaching mode (spec.md §4.3's two-worklist
// interleaving, one item at a time instead of drained to completion).
type StepResult struct {
	Done bool   // both worklists were empty; nothing was stepped
	Queue string // "C" or "W", whichever queue this step drained

	// Queue == "C"
	Node       *ir.Node
	TypeBefore Type
	TypeAfter  Type

	// Queue == "W"
	PartitionID   int
	MembersBefore int
	MembersAfter  int
	SplitInto     int // number of new partitions carved off, 0 if none
}

// Seed fills both worklists the way Run does, before the first Step call.
func (ctx *Context) Seed() { ctx.seed() }

// Rewrite performs the three-walk graph-edit phase once Step has drained
// both worklists (StepResult.Done == true), the same edit Run performs
// internally after solve().
func (ctx *Context) Rewrite() bool { return ctx.rewrite() }

// Step executes exactly one worklist item — matching solve()'s own
// schedule, the data queue drained before a single control-queue item is
// popped, and both drained before a single W item is popped — and reports
// what changed. It never rewrites the graph; call Rewrite once stepping
// reaches Done to apply the fixed point, then Close.
func (ctx *Context) Step() StepResult {
	if len(ctx.worklistData) > 0 {
		n := ctx.worklistData[0]
		w := ctx.wrapperOf(n)
		before := w.typ
		ctx.stepData()
		return StepResult{Queue: "C", Node: n, TypeBefore: before, TypeAfter: w.typ}
	}
	if len(ctx.worklistControl) > 0 {
		n := ctx.worklistControl[0]
		w := ctx.wrapperOf(n)
		before := w.typ
		ctx.stepControl()
		return StepResult{Queue: "C", Node: n, TypeBefore: before, TypeAfter: w.typ}
	}
	if len(ctx.worklistW) > 0 {
		p := ctx.worklistW[0]
		before := len(p.members())
		nBefore := len(ctx.store.partitions)
		ctx.stepW()
		return StepResult{
			Queue:         "W",
			PartitionID:   p.id,
			MembersBefore: before,
			MembersAfter:  len(p.members()),
			SplitInto:     len(ctx.store.partitions) - nBefore,
		}
	}
	return StepResult{Done: true}
}
