package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"combo/grammar"
)

const sample = `
graph e1 {
  block bb0 entry() {
    %1 = Const.i32 2
    %2 = Const.i32 3
    %3 = Add.i32 %1, %2
    %4 = Cmp.i32 %3, %1 >
    %5 = Cond.b %4
    %6 = Proj.X %5 #0
    Jmp
  }
  block bb1(bb0) {
    %7 = Phi.i32 [%1, %2]
    %8 = SymConst.i64 "entity::table"
    %9 = Call.T @entity.load(%7, %8)
    Return %9
  }
}
`

func TestParseSample(t *testing.T) {
	f, err := grammar.ParseString("sample", sample)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	assert.NotNil(t, f)
	assert.Equal(t, 1, len(f.Graphs))

	g := f.Graphs[0]
	assert.Equal(t, "e1", g.Name)
	assert.Equal(t, 2, len(g.Blocks))

	bb0 := g.Blocks[0]
	assert.Equal(t, "bb0", bb0.Ref)
	assert.Equal(t, "entry", bb0.Tag)
	assert.Empty(t, bb0.Preds)
	assert.Equal(t, 7, len(bb0.Instrs))

	assert.NotNil(t, bb0.Instrs[0].Const)
	assert.Equal(t, "%1", bb0.Instrs[0].Const.Result)
	assert.Equal(t, "i32", bb0.Instrs[0].Const.Mode)
	assert.Equal(t, "2", bb0.Instrs[0].Const.Value)

	add := bb0.Instrs[2].Generic
	assert.NotNil(t, add)
	assert.Equal(t, "Add", add.Op)
	assert.Equal(t, []string{"%1", "%2"}, operandRefs(add.Args))

	cmp := bb0.Instrs[3].Cmp
	assert.NotNil(t, cmp)
	assert.Equal(t, "%3", cmp.Left.Ref)
	assert.Equal(t, "%1", cmp.Right.Ref)
	assert.Equal(t, ">", cmp.Rel)

	proj := bb0.Instrs[5].Proj
	assert.NotNil(t, proj)
	assert.Equal(t, "%5", proj.Arg.Ref)
	assert.Equal(t, "0", proj.Index)

	assert.NotNil(t, bb0.Instrs[6].Jmp)

	bb1 := g.Blocks[1]
	assert.Equal(t, []string{"bb0"}, bb1.Preds)
	assert.Equal(t, 4, len(bb1.Instrs))

	phi := bb1.Instrs[0].Phi
	assert.NotNil(t, phi)
	assert.Equal(t, []string{"%1", "%2"}, operandRefs(phi.Args))

	sym := bb1.Instrs[1].SymConst
	assert.NotNil(t, sym)
	assert.Equal(t, `"entity::table"`, sym.Entity)

	call := bb1.Instrs[2].Call
	assert.NotNil(t, call)
	assert.Equal(t, "entity.load", call.Entity)
	assert.Equal(t, []string{"%7", "%8"}, operandRefs(call.Args))

	ret := bb1.Instrs[3].Return
	assert.NotNil(t, ret)
	assert.Equal(t, []string{"%9"}, operandRefs(ret.Args))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := grammar.ParseString("bad", "graph e1 { block bb0 entry() { %1 = ??? } }")
	assert.Error(t, err)
}

func operandRefs(ops []*grammar.Operand) []string {
	refs := make([]string, len(ops))
	for i, o := range ops {
		refs[i] = o.Ref
	}
	return refs
}
