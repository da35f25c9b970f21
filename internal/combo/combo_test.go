package combo

import (
	"testing"

	"combo/internal/ir"
	"combo/internal/tarval"
)

// opaqueInt stands in for "some value nothing is known about at compile
// time" without pulling in a Call/Load (which would carry memory-ordering
// baggage irrelevant to these fixtures): a Proj of a fixed index off Start,
// which always computes Bottom (spec.md §4.1's Non-goal on parameter
// analysis) but is otherwise an ordinary data-mode value node.
func opaqueInt(g *ir.Graph, idx int) *ir.Node {
	n := g.NewNode(ir.OpProj, ir.ModeInt(32), g.Start, g.Start)
	n.Attr = &ir.ProjAttr{Index: idx}
	return n
}

// E1: constant folding through the data lattice.
func TestConstantFold(t *testing.T) {
	g := ir.NewGraph("e1")
	c1 := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.FromInt64(32, 2)}, ir.ModeInt(32))
	c2 := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.FromInt64(32, 3)}, ir.ModeInt(32))
	add := g.NewNode(ir.OpAdd, ir.ModeInt(32), g.Start, c1, c2)
	ret := g.NewNode(ir.OpReturn, ir.ModeX, g.Start, add)

	changed, err := Run(g, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatalf("expected a rewrite")
	}
	got := ret.In[0]
	if got.Op != ir.OpConst {
		t.Fatalf("expected Return to point at a folded constant, got %s", got.Op)
	}
	if !got.Attr.(*ir.ConstAttr).Value.Equal(tarval.FromInt64(32, 5)) {
		t.Fatalf("wrong folded value: %s", got.Attr.(*ir.ConstAttr).Value)
	}
}

// E2: a Cond with a known-constant selector prunes the untaken successor
// block entirely and keeps the taken one.
func TestDeadBranchElimination(t *testing.T) {
	g := ir.NewGraph("e2")
	sel := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.One(1)}, ir.ModeB)
	cond := g.NewNode(ir.OpCond, ir.ModeT, g.Start, sel)
	projF := g.NewNode(ir.OpProj, ir.ModeX, g.Start, cond)
	projF.Attr = &ir.ProjAttr{Index: 0}
	projT := g.NewNode(ir.OpProj, ir.ModeX, g.Start, cond)
	projT.Attr = &ir.ProjAttr{Index: 1}

	trueBlk := g.AddBlock(projT)
	falseBlk := g.AddBlock(projF)
	jmpTrue := g.NewJmp(trueBlk)
	jmpFalse := g.NewJmp(falseBlk)
	merge := g.AddBlock(jmpTrue, jmpFalse)
	g.NewNode(ir.OpReturn, ir.ModeX, merge)

	changed, err := Run(g, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatalf("expected a rewrite")
	}

	for _, b := range g.Blocks {
		if b == falseBlk {
			t.Fatalf("false block should have been pruned")
		}
	}
	found := false
	for _, b := range g.Blocks {
		if b == trueBlk {
			found = true
		}
	}
	if !found {
		t.Fatalf("true block should survive")
	}
	if len(merge.In) != 1 || merge.In[0] != jmpTrue {
		t.Fatalf("expected merge to keep only the true-branch predecessor, got %v", merge.In)
	}
}

// E3: two structurally identical Adds over the same opaque operands collapse
// onto one node via congruence, even though neither operand is a constant.
func TestCSECongruence(t *testing.T) {
	g := ir.NewGraph("e3")
	x := opaqueInt(g, 0)
	y := opaqueInt(g, 1)
	add1 := g.NewNode(ir.OpAdd, ir.ModeInt(32), g.Start, x, y)
	add2 := g.NewNode(ir.OpAdd, ir.ModeInt(32), g.Start, x, y)
	ret := g.NewNode(ir.OpReturn, ir.ModeX, g.Start, add1, add2)

	changed, err := Run(g, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatalf("expected a rewrite")
	}
	if ret.In[0] != ret.In[1] {
		t.Fatalf("expected both Adds to collapse onto one node, got %v and %v", ret.In[0], ret.In[1])
	}
}

// E4: commutative operand order must not defeat congruence.
func TestCommutativeCongruence(t *testing.T) {
	g := ir.NewGraph("e4")
	x := opaqueInt(g, 0)
	y := opaqueInt(g, 1)
	add1 := g.NewNode(ir.OpAdd, ir.ModeInt(32), g.Start, x, y)
	add2 := g.NewNode(ir.OpAdd, ir.ModeInt(32), g.Start, y, x)
	ret := g.NewNode(ir.OpReturn, ir.ModeX, g.Start, add1, add2)

	changed, err := Run(g, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatalf("expected a rewrite")
	}
	if ret.In[0] != ret.In[1] {
		t.Fatalf("expected Add(x,y) and Add(y,x) to collapse onto one node")
	}
}

// E5: x + 0 is not a constant, but it is an algebraic identity — the
// rewriter should substitute x directly rather than leave the Add in place.
func TestAlgebraicIdentity(t *testing.T) {
	g := ir.NewGraph("e5")
	x := opaqueInt(g, 0)
	zero := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.Null(32)}, ir.ModeInt(32))
	add := g.NewNode(ir.OpAdd, ir.ModeInt(32), g.Start, x, zero)
	ret := g.NewNode(ir.OpReturn, ir.ModeX, g.Start, add)

	changed, err := Run(g, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatalf("expected a rewrite")
	}
	if ret.In[0] != x {
		t.Fatalf("expected Return to point directly at x, got %v", ret.In[0])
	}
}

// E6: once a Cond's selector is unresolved Bottom, both Proj successors
// latch Reachable and running the pass again must not un-latch either one
// (idempotence of the control lattice specifically).
func TestProjCondLatchIsStable(t *testing.T) {
	g := ir.NewGraph("e6")
	sel := opaqueInt(g, 0) // mode mismatch is fine: dataType never inspects it for Cond
	sel.Attr = &ir.ProjAttr{Index: 0}
	cond := g.NewNode(ir.OpCond, ir.ModeT, g.Start, sel)
	projF := g.NewNode(ir.OpProj, ir.ModeX, g.Start, cond)
	projF.Attr = &ir.ProjAttr{Index: 0}
	projT := g.NewNode(ir.OpProj, ir.ModeX, g.Start, cond)
	projT.Attr = &ir.ProjAttr{Index: 1}
	trueBlk := g.AddBlock(projT)
	falseBlk := g.AddBlock(projF)
	merge := g.AddBlock(g.NewJmp(trueBlk), g.NewJmp(falseBlk))
	g.NewNode(ir.OpReturn, ir.ModeX, merge)

	if _, err := Run(g, DefaultConfig(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	survivorCount := 0
	for _, b := range g.Blocks {
		if b == trueBlk || b == falseBlk {
			survivorCount++
		}
	}
	if survivorCount != 2 {
		t.Fatalf("expected both branches reachable under an unresolved selector, got %d survivors", survivorCount)
	}

	changed, err := Run(g, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error on second run: %v", err)
	}
	if changed {
		t.Fatalf("expected the second run to be a no-op (idempotence)")
	}
}

// Idempotence as a general property: running Run twice in a row never
// produces a second round of changes.
func TestIdempotent(t *testing.T) {
	g := ir.NewGraph("idem")
	c1 := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.FromInt64(32, 7)}, ir.ModeInt(32))
	c2 := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.FromInt64(32, 8)}, ir.ModeInt(32))
	mul := g.NewNode(ir.OpMul, ir.ModeInt(32), g.Start, c1, c2)
	g.NewNode(ir.OpReturn, ir.ModeX, g.Start, mul)

	if _, err := Run(g, DefaultConfig(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	changed, err := Run(g, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error on second run: %v", err)
	}
	if changed {
		t.Fatalf("expected no further rewrite on an already-optimized graph")
	}
}

// Keepalive preservation: a keepalive in a block that survives stays; one in
// a block pruned as unreachable is dropped.
func TestKeepaliveDropsWithDeadBlock(t *testing.T) {
	g := ir.NewGraph("keepalive")
	sel := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.Null(1)}, ir.ModeB)
	cond := g.NewNode(ir.OpCond, ir.ModeT, g.Start, sel)
	projF := g.NewNode(ir.OpProj, ir.ModeX, g.Start, cond)
	projF.Attr = &ir.ProjAttr{Index: 0}
	projT := g.NewNode(ir.OpProj, ir.ModeX, g.Start, cond)
	projT.Attr = &ir.ProjAttr{Index: 1}
	trueBlk := g.AddBlock(projT)
	falseBlk := g.AddBlock(projF)
	// sel is the constant 0, so projF (index 0) is taken and trueBlk (fed by
	// projT, index 1) is the one that ends up unreachable and pruned.
	deadVal := g.NewConst(trueBlk, ir.ConstAttr{Value: tarval.One(32)}, ir.ModeInt(32))
	g.AddEndKeepalive(deadVal)
	g.NewJmp(trueBlk)
	g.NewJmp(falseBlk)

	if _, err := Run(g, DefaultConfig(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, k := range g.Keepalives {
		if k == deadVal {
			t.Fatalf("expected keepalive in a pruned block to be dropped")
		}
	}
}

// Inspect reports a partition id and a concrete lattice type for every node
// the pass wrapped, matching what cmd/combo-cli -dump and internal/lsp hover
// both need.
func TestInspectReportsPartitionInfo(t *testing.T) {
	g := ir.NewGraph("inspect")
	c1 := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.FromInt64(32, 2)}, ir.ModeInt(32))
	c2 := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.FromInt64(32, 2)}, ir.ModeInt(32))
	add := g.NewNode(ir.OpAdd, ir.ModeInt(32), g.Start, c1, c2)
	g.NewNode(ir.OpReturn, ir.ModeX, g.Start, add)

	info, _, err := Inspect(g, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	addInfo, ok := info[add]
	if !ok {
		t.Fatalf("expected Inspect to report info for the surviving add/fold result")
	}
	if !addInfo.Type.IsConstant() || addInfo.Type.Const.String() != "4" {
		t.Fatalf("expected add's final type to fold to constant 4, got %v", addInfo.Type)
	}
	if addInfo.PartitionID < 0 {
		t.Fatalf("expected a valid partition id, got %d", addInfo.PartitionID)
	}
}
