package combo

import (
	"testing"

	"combo/internal/ir"
	"combo/internal/tarval"
)

// Stepping one item at a time must reach the same fixed point Run reaches
// in one call, and Done must only ever be reported once both worklists are
// truly empty.
func TestStepReachesSameFixedPointAsRun(t *testing.T) {
	g := ir.NewGraph("step")
	c1 := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.FromInt64(32, 2)}, ir.ModeInt(32))
	c2 := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.FromInt64(32, 3)}, ir.ModeInt(32))
	add := g.NewNode(ir.OpAdd, ir.ModeInt(32), g.Start, c1, c2)
	g.NewNode(ir.OpReturn, ir.ModeX, g.Start, add)

	ctx := NewContext(g, DefaultConfig(), nil)
	defer ctx.Close()

	ctx.Seed()
	steps := 0
	for {
		r := ctx.Step()
		if r.Done {
			break
		}
		steps++
		if steps > 10000 {
			t.Fatalf("Step never reached Done")
		}
	}

	addType := ctx.wrapperOf(add).typ
	if !addType.IsConstant() || addType.Const.String() != "5" {
		t.Fatalf("expected add to fold to constant 5 after stepping, got %v", addType)
	}

	changed := ctx.Rewrite()
	if !changed {
		t.Fatalf("expected the rewrite to materialize the folded constant")
	}
}
