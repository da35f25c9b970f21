// Package combo implements the combined sparse conditional constant
// propagation / global value numbering / unreachable-code elimination pass:
// a single monotone fixed point over a lattice-type worklist and a
// partition-refinement worklist (spec.md §2–§4).
package combo

import (
	"log"

	"combo/internal/ir"
)

// Context is the pass's arena: every node wrapper and partition created
// during one Run, released together when the run completes (spec.md §5 —
// arena-scoped, non-suspending, single-threaded; not safe for concurrent
// use, which is a documented invariant rather than an oversight).
type Context struct {
	Graph  *ir.Graph
	Config Config
	Logger *log.Logger

	store    *store
	wrappers map[*ir.Node]*wrapper
	arena    *wrapperArena

	// worklistData and worklistControl are the two halves of spec.md §4.3's
	// queue C: data-node transfer-function recomputes and Cond/Switch/Block
	// reachability recomputes respectively. They are genuinely separate
	// queues, not one FIFO filtered by a predicate: solve() drains
	// worklistData to empty before ever popping worklistControl, matching
	// spec.md §4.3's "Cond/Switch propagation is queued separately from
	// data-node propagation and drained only after the data queue is empty."
	worklistData    []*ir.Node
	worklistControl []*ir.Node
	worklistW       []*partition // spec.md §4.3 queue W: partitions needing a split check

	splits int // diagnostic counter of W steps; not exported or printed
}

// NewContext allocates a fresh arena over g. Close drops the wrapper and
// partition slabs (see arena.go) and the per-run maps in one step, leaving
// the memory to the garbage collector (spec.md §5).
func NewContext(g *ir.Graph, cfg Config, logger *log.Logger) *Context {
	if logger == nil {
		logger = log.Default()
	}
	return &Context{
		Graph:    g,
		Config:   cfg,
		Logger:   logger,
		store:    newStore(),
		wrappers: map[*ir.Node]*wrapper{},
		arena:    newWrapperArena(),
	}
}

// Close releases the arena. Calling any other method after Close is undefined.
func (ctx *Context) Close() {
	ctx.store = nil
	ctx.wrappers = nil
	ctx.worklistData = nil
	ctx.worklistControl = nil
	ctx.worklistW = nil
	ctx.arena = nil
}

func (ctx *Context) wrapperOf(n *ir.Node) *wrapper {
	w, ok := ctx.wrappers[n]
	if !ok {
		w = ctx.arena.alloc()
		w.node = n
		w.typ = initialType(n)
		ctx.wrappers[n] = w
	}
	return w
}

// initialType seeds a node's optimistic starting point (spec.md §4.1). Data
// nodes start at Top except the ones with no useful transfer function
// (Call/Load/Store/Sync/Bad), which start directly at Bottom since nothing
// will ever make them more specific. Control-mode and Block nodes start at
// Unreachable — the one exception is the graph's unique start block, which
// is definitionally Reachable from the first step.
func initialType(n *ir.Node) Type {
	if n.Op == ir.OpBlock && n.Attr.(*ir.BlockAttr).IsStart {
		return Reachable()
	}
	switch n.Mode.Kind {
	case ir.ModeKindControl, ir.ModeKindBlock:
		return Unreachable()
	}
	switch n.Op {
	case ir.OpCall, ir.OpLoad, ir.OpStore, ir.OpSync, ir.OpBad:
		return Bottom()
	default:
		return Top()
	}
}

// forEachNode visits every node in the graph reachable through Blocks
// (Phis, body members, terminators) plus Start/End/Block nodes themselves.
func (ctx *Context) forEachNode(f func(n *ir.Node)) {
	for _, b := range ctx.Graph.Blocks {
		f(b)
		attr := b.Attr.(*ir.BlockAttr)
		for _, phi := range attr.Phis {
			f(phi)
		}
		for _, m := range attr.Members {
			f(m)
		}
	}
	f(ctx.Graph.End)
}

// isControlQueueNode reports whether n belongs to the cprop_X (control)
// queue rather than the cprop (data) queue: exactly the nodes computeType
// dispatches to controlType — Block/End/Jmp/Return/Cond-Proj/Switch-Proj —
// since those are the reachability recomputes spec.md §4.3 says must drain
// strictly after the data queue.
func isControlQueueNode(n *ir.Node) bool {
	return n.Mode.Kind == ir.ModeKindControl || n.Mode.Kind == ir.ModeKindBlock
}

func (ctx *Context) pushC(n *ir.Node) {
	w := ctx.wrapperOf(n)
	if w.onWorklistC {
		return
	}
	w.onWorklistC = true
	if isControlQueueNode(n) {
		ctx.worklistControl = append(ctx.worklistControl, n)
	} else {
		ctx.worklistData = append(ctx.worklistData, n)
	}
}

func (ctx *Context) popData() *ir.Node {
	n := ctx.worklistData[0]
	ctx.worklistData = ctx.worklistData[1:]
	ctx.wrapperOf(n).onWorklistC = false
	return n
}

func (ctx *Context) popControl() *ir.Node {
	n := ctx.worklistControl[0]
	ctx.worklistControl = ctx.worklistControl[1:]
	ctx.wrapperOf(n).onWorklistC = false
	return n
}

func (ctx *Context) pushW(p *partition) {
	if p.onW {
		return
	}
	p.onW = true
	ctx.worklistW = append(ctx.worklistW, p)
}

func (ctx *Context) popW() *partition {
	p := ctx.worklistW[0]
	ctx.worklistW = ctx.worklistW[1:]
	p.onW = false
	return p
}

// Run executes the pass to completion and then rewrites the graph in place,
// returning whether any rewrite actually changed the graph (spec.md §4.3,
// §4.4). Run never panics on ordinary input; InvariantError is returned for
// debug-verified contract violations when Config.VerifyMonotone or
// Config.CheckPartitions catches one.
func (ctx *Context) Run() (changed bool, err error) {
	if ctx.Config.VerifyMonotone || ctx.Config.CheckPartitions {
		defer func() {
			if r := recover(); r != nil {
				if ie, ok := r.(InvariantError); ok {
					err = ie
					return
				}
				panic(r)
			}
		}()
	}

	ctx.seed()
	ctx.solve()
	changed = ctx.rewrite()
	return changed, err
}

// Run is the package-level convenience entrypoint spec.md §6 describes:
// construct a Context, execute it, release it.
func Run(g *ir.Graph, cfg Config, logger *log.Logger) (changed bool, err error) {
	ctx := NewContext(g, cfg, logger)
	defer ctx.Close()
	return ctx.Run()
}

// PartitionInfo is one node's final lattice type and congruence-class id,
// the "debug hooks expose partition IDs and types" formatting sink spec.md
// §6 calls for. It never feeds back into the pass.
type PartitionInfo struct {
	PartitionID int
	Type        Type
}

// Inspect runs the pass exactly like Run, then reports the final
// PartitionInfo of every node the pass wrapped before releasing the arena —
// the data cmd/combo-cli's -dump flag and internal/lsp's hover handler both
// read. Nodes the rewrite replaced keep their entry; nodes the rewrite
// created (folded constants) have none.
func Inspect(g *ir.Graph, cfg Config, logger *log.Logger) (info map[*ir.Node]PartitionInfo, changed bool, err error) {
	ctx := NewContext(g, cfg, logger)
	defer ctx.Close()

	changed, err = ctx.Run()
	if err != nil {
		return nil, changed, err
	}

	info = make(map[*ir.Node]PartitionInfo, len(ctx.wrappers))
	for n, w := range ctx.wrappers {
		id := -1
		if w.partition != nil {
			id = w.partition.id
		}
		info[n] = PartitionInfo{PartitionID: id, Type: w.typ}
	}
	return info, changed, nil
}
