package ir

import (
	"strings"
	"testing"

	"combo/internal/tarval"
)

func TestNewGraphHasStartAndEnd(t *testing.T) {
	g := NewGraph("t")
	if g.Start == nil || g.Start.Op != OpBlock {
		t.Fatalf("expected start block, got %v", g.Start)
	}
	if !g.Start.Attr.(*BlockAttr).IsStart {
		t.Fatalf("start block not marked IsStart")
	}
	if g.End == nil || g.End.Op != OpEnd {
		t.Fatalf("expected End node, got %v", g.End)
	}
}

func TestAddUseKeepsSortedOrder(t *testing.T) {
	g := NewGraph("t")
	c1 := g.NewConst(g.Start, ConstAttr{Value: tarval.FromInt64(32, 1)}, ModeInt(32))
	user := g.newNode(OpAdd, ModeInt(32), g.Start)
	c1.AddUse(user, 2)
	c1.AddUse(user, 0)
	c1.AddUse(user, 1)

	for i := 1; i < len(c1.Uses); i++ {
		if c1.Uses[i-1].Pos > c1.Uses[i].Pos {
			t.Fatalf("Uses not sorted: %v", c1.Uses)
		}
	}
}

func TestExchangeRedirectsUsers(t *testing.T) {
	g := NewGraph("t")
	c1 := g.NewConst(g.Start, ConstAttr{Value: tarval.FromInt64(32, 2)}, ModeInt(32))
	c2 := g.NewConst(g.Start, ConstAttr{Value: tarval.FromInt64(32, 3)}, ModeInt(32))
	add := g.NewNode(OpAdd, ModeInt(32), g.Start, c1, c2)
	ret := g.NewNode(OpReturn, ModeX, g.Start, add)

	five := g.NewConst(g.Start, ConstAttr{Value: tarval.FromInt64(32, 5)}, ModeInt(32))
	g.Exchange(add, five)

	if ret.In[0] != five {
		t.Fatalf("expected Return to point at folded constant, got %v", ret.In[0])
	}
	if len(add.Uses) != 0 {
		t.Fatalf("expected exchanged node to have no remaining uses")
	}
}

func TestPrintRoundTripsBasicShape(t *testing.T) {
	g := NewGraph("main")
	c1 := g.NewConst(g.Start, ConstAttr{Value: tarval.FromInt64(32, 2)}, ModeInt(32))
	c2 := g.NewConst(g.Start, ConstAttr{Value: tarval.FromInt64(32, 3)}, ModeInt(32))
	add := g.NewNode(OpAdd, ModeInt(32), g.Start, c1, c2)
	g.NewNode(OpReturn, ModeX, g.Start, add)

	out := Print(g)
	if !strings.Contains(out, "graph main {") {
		t.Fatalf("missing graph header: %s", out)
	}
	if !strings.Contains(out, "Add.i32") {
		t.Fatalf("missing Add node: %s", out)
	}
}
