package irtext_test

import (
	"testing"

	"combo/internal/combo"
	"combo/internal/ir"
	"combo/internal/irtext"
)

func TestBuildFirstExposesRefs(t *testing.T) {
	r, err := irtext.BuildFirst("f1", straightLine)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for _, ref := range []string{"%1", "%2", "%3", "bb0"} {
		if _, ok := r.Refs[ref]; !ok {
			t.Fatalf("expected ref %s to be resolvable", ref)
		}
	}
	if r.Refs["%3"].Op != ir.OpAdd {
		t.Fatalf("expected %%3 to resolve to the Add node, got %v", r.Refs["%3"].Op)
	}
}

const straightLine = `
graph f1 {
  block bb0 entry() {
    %1 = Const.i32 2
    %2 = Const.i32 3
    %3 = Add.i32 %1, %2
    Return %3
  }
}
`

func TestBuildStraightLine(t *testing.T) {
	g, err := irtext.Build("f1", straightLine)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(g.Blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(g.Blocks))
	}
	changed, err := combo.Run(g, combo.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("combo run failed: %v", err)
	}
	if !changed {
		t.Fatalf("expected a constant-fold rewrite")
	}
	if len(g.End.In) == 0 {
		t.Fatalf("expected End to retain a control edge")
	}
}

const branching = `
graph f2 {
  block bb0 entry() {
    %1 = Const.b 1
    %2 = Cond.T %1
    %3 = Proj.X %2 #0
    %4 = Proj.X %2 #1
  }
  block bb1(bb0) {
    Jmp
  }
  block bb2(bb0) {
    Jmp
  }
  block bb3(bb1, bb2) {
    Return
  }
}
`

func TestBuildBranchingPrunesDeadSide(t *testing.T) {
	g, err := irtext.Build("f2", branching)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(g.Blocks) != 4 {
		t.Fatalf("expected 4 blocks before optimization, got %d", len(g.Blocks))
	}
	if _, err := combo.Run(g, combo.DefaultConfig(), nil); err != nil {
		t.Fatalf("combo run failed: %v", err)
	}
	for _, b := range g.Blocks {
		if b.Op != ir.OpBlock {
			t.Fatalf("unexpected non-block in Blocks: %v", b)
		}
	}
	if len(g.Blocks) != 2 {
		t.Fatalf("expected the untaken branch's block to be pruned and the join fused into the taken one, got %d surviving blocks", len(g.Blocks))
	}
}
