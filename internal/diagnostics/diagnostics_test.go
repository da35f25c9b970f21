package diagnostics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"combo/internal/diagnostics"
	"combo/internal/ir"
	"combo/internal/tarval"
)

func TestScanUnoptCFFindsDuplicateReachableSuccessor(t *testing.T) {
	g := ir.NewGraph("u1")
	sel := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.FromInt64(32, 1)}, ir.ModeInt(32))
	cond := g.NewNode(ir.OpCond, ir.ModeT, g.Start, sel)
	// Two Proj children sharing index 1: an unopt_cf case where the source
	// program's switch/cond left more than one successor live off the same
	// output edge.
	p1 := g.NewNode(ir.OpProj, ir.ModeX, g.Start, cond)
	p1.Attr = &ir.ProjAttr{Index: 1}
	p2 := g.NewNode(ir.OpProj, ir.ModeX, g.Start, cond)
	p2.Attr = &ir.ProjAttr{Index: 1}

	diags := diagnostics.ScanUnoptCF(g)
	assert.Len(t, diags, 1)
	assert.Equal(t, "unopt_cf", diags[0].Source)
	assert.Equal(t, cond, diags[0].Node)
}

func TestScanUnoptCFSilentOnOrdinaryCond(t *testing.T) {
	g := ir.NewGraph("u2")
	sel := g.NewConst(g.Start, ir.ConstAttr{Value: tarval.FromInt64(32, 0)}, ir.ModeInt(32))
	cond := g.NewNode(ir.OpCond, ir.ModeT, g.Start, sel)
	p := g.NewNode(ir.OpProj, ir.ModeX, g.Start, cond)
	p.Attr = &ir.ProjAttr{Index: 0}

	assert.Empty(t, diagnostics.ScanUnoptCF(g))
}

func TestFormatParseErrorPointsAtColumn(t *testing.T) {
	src := "graph e1 {\n  block bb0 entry() {\n    %1 = ???\n  }\n}\n"
	d := diagnostics.Diagnostic{
		Severity: diagnostics.SeverityError,
		Source:   "parser",
		Message:  "unexpected token",
		Line:     3,
		Column:   10,
	}
	out := diagnostics.Format(src, d)
	assert.Contains(t, out, "%1 = ???")
	assert.Contains(t, out, "unexpected token")
}
