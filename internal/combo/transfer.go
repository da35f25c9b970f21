package combo

import (
	"combo/internal/ir"
	"combo/internal/opcodes"
	"combo/internal/tarval"
)

// computeType is the per-opcode transfer function table spec.md §4.1
// describes, dispatched by node mode first (control vs. data) and then by
// opcode (spec.md §9 "table, not a type-switch tower per concern" — the
// outer mode dispatch is the table, opcode-specific logic below it is the
// unavoidable per-opcode computation every such table eventually bottoms
// out in).
func computeType(ctx *Context, n *ir.Node) Type {
	switch n.Mode.Kind {
	case ir.ModeKindControl, ir.ModeKindBlock:
		return controlType(ctx, n)
	case ir.ModeKindMemory, ir.ModeKindTuple:
		return Bottom()
	default:
		return dataType(ctx, n)
	}
}

func controlType(ctx *Context, n *ir.Node) Type {
	switch n.Op {
	case ir.OpBlock:
		return blockType(ctx, n)
	case ir.OpJmp, ir.OpReturn:
		return ctx.wrapperOf(n.Block).typ
	case ir.OpProj:
		pred := n.In[0]
		switch pred.Op {
		case ir.OpCond:
			return condProjType(ctx, pred, n.Attr.(*ir.ProjAttr).Index)
		case ir.OpSwitch:
			return switchProjType(ctx, pred, n.Attr.(*ir.ProjAttr).Index)
		default:
			return ctx.wrapperOf(n.Block).typ
		}
	case ir.OpEnd:
		return Reachable()
	default:
		return ctx.wrapperOf(n.Block).typ
	}
}

func blockType(ctx *Context, b *ir.Node) Type {
	attr := b.Attr.(*ir.BlockAttr)
	if attr.IsStart || b.Label {
		return Reachable()
	}
	for _, pred := range b.In {
		if ctx.wrapperOf(pred).typ.IsReachable() {
			return Reachable()
		}
	}
	return Unreachable()
}

// condProjType implements spec.md §4.1's Cond/Proj folding: once the
// selector is a known boolean constant and the Cond's own block is
// reachable, exactly one successor is Reachable and the other stays
// Unreachable permanently. While the selector is still unresolved (Top),
// Config.UnknownAsTop decides whether both successors wait (Unreachable) or
// both are conservatively marked Reachable.
func condProjType(ctx *Context, cond *ir.Node, idx int) Type {
	if !ctx.wrapperOf(cond.Block).typ.IsReachable() {
		return Unreachable()
	}
	sel := ctx.wrapperOf(cond.In[0]).typ
	switch {
	case sel.IsBottom():
		return Reachable()
	case sel.IsTop():
		if ctx.Config.UnknownAsTop {
			return Unreachable()
		}
		return Reachable()
	case sel.IsConstant():
		taken := 1
		if sel.Const.IsZero() {
			taken = 0
		}
		if idx == taken {
			return Reachable()
		}
		return Unreachable()
	default:
		return Reachable()
	}
}

func switchProjType(ctx *Context, sw *ir.Node, idx int) Type {
	if !ctx.wrapperOf(sw.Block).typ.IsReachable() {
		return Unreachable()
	}
	attr := sw.Attr.(*ir.SwitchAttr)
	sel := ctx.wrapperOf(sw.In[0]).typ
	switch {
	case sel.IsBottom():
		return Reachable()
	case sel.IsTop():
		if ctx.Config.UnknownAsTop {
			return Unreachable()
		}
		return Reachable()
	case sel.IsConstant():
		out := attr.DefaultOut
		for _, c := range attr.Cases {
			if c.Value.Equal(sel.Const) {
				out = c.Out
				break
			}
		}
		if idx == out {
			return Reachable()
		}
		return Unreachable()
	default:
		return Reachable()
	}
}

func dataType(ctx *Context, n *ir.Node) Type {
	switch n.Op {
	case ir.OpConst:
		return Constant(n.Attr.(*ir.ConstAttr).Value)
	case ir.OpSymConst:
		attr := n.Attr.(*ir.SymConstAttr)
		if attr.Kind != ir.SymConstAddress {
			return Constant(attr.Folded)
		}
		return Symbolic(attr.Entity)
	case ir.OpUnknown:
		if ctx.Config.UnknownAsTop {
			return Top()
		}
		return Bottom()
	case ir.OpBad:
		return Bottom()
	case ir.OpPhi:
		return phiType(ctx, n)
	case ir.OpMux:
		return muxType(ctx, n)
	case ir.OpConfirm:
		return ctx.wrapperOf(n.In[0]).typ
	case ir.OpCmp:
		return cmpType(ctx, n)
	case ir.OpCall, ir.OpLoad, ir.OpStore, ir.OpSync:
		return Bottom()
	case ir.OpProj:
		return Bottom() // Proj of Call/Load result tuples: never folded
	default:
		if ir.IsBinaryArith(n.Op) {
			return arithType(ctx, n)
		}
		return Bottom()
	}
}

// phiType only contributes operands whose incoming control edge is
// Reachable — an unreachable predecessor's value must not pull the meet down
// to Bottom (spec.md §4.1, the "SCCP high-road": dead code is not seen by
// constant propagation at all).
func phiType(ctx *Context, phi *ir.Node) Type {
	block := phi.Block
	var live []Type
	for i, v := range phi.In {
		if i >= len(block.In) {
			break
		}
		pred := block.In[i]
		if !ctx.wrapperOf(pred).typ.IsReachable() {
			continue
		}
		live = append(live, ctx.wrapperOf(v).typ)
	}
	if len(live) == 0 {
		return Top()
	}
	return Meet(live)
}

func muxType(ctx *Context, n *ir.Node) Type {
	sel := ctx.wrapperOf(n.In[0]).typ
	a := ctx.wrapperOf(n.In[1]).typ
	b := ctx.wrapperOf(n.In[2]).typ
	switch {
	case sel.IsTop():
		return Top()
	case sel.IsBottom():
		return Meet([]Type{a, b})
	case sel.IsConstant():
		if sel.Const.IsZero() {
			return b
		}
		return a
	default:
		return Bottom()
	}
}

func cmpType(ctx *Context, n *ir.Node) Type {
	a := ctx.wrapperOf(n.In[0]).typ
	b := ctx.wrapperOf(n.In[1]).typ
	if a.IsTop() || b.IsTop() {
		return Top()
	}
	if !a.IsConstant() || !b.IsConstant() {
		return Bottom()
	}
	rel := n.Attr.(*ir.CmpAttr).Relation
	lt, eq, err := tarval.Compare(a.Const, b.Const, false)
	if err != nil {
		return Bottom()
	}
	var result bool
	switch rel {
	case ir.RelEq:
		result = eq
	case ir.RelNe:
		result = !eq
	case ir.RelLt:
		result = lt
	case ir.RelLe:
		result = lt || eq
	case ir.RelGt:
		result = !lt && !eq
	case ir.RelGe:
		result = !lt
	}
	bits := 1
	if result {
		return Constant(tarval.One(bits))
	}
	return Constant(tarval.Null(bits))
}

func arithType(ctx *Context, n *ir.Node) Type {
	a := ctx.wrapperOf(n.In[0]).typ
	b := ctx.wrapperOf(n.In[1]).typ

	// An annihilator (Mul/And by 0, Or by all-ones, …) folds the result
	// even when the other operand is only Bottom, not a constant — this is
	// strictly stronger than plain both-sides-constant folding.
	if entry, ok := opcodes.Lookup(n.Op); ok {
		operands := [2]Type{a, b}
		for _, an := range entry.Annihilators {
			if operands[an.Operand].IsConstant() && operands[an.Operand].Const.Equal(an.Value(n.Mode.Bits)) {
				return Constant(an.Value(n.Mode.Bits))
			}
		}
	}

	if a.IsTop() || b.IsTop() {
		return Top()
	}
	if !a.IsConstant() || !b.IsConstant() {
		return Bottom()
	}
	v, err := evalArith(n.Op, a.Const, b.Const)
	if err != nil {
		return Bottom()
	}
	return Constant(v)
}

func evalArith(op ir.Opcode, a, b tarval.Value) (tarval.Value, error) {
	switch op {
	case ir.OpAdd:
		return tarval.Add(a, b)
	case ir.OpSub:
		return tarval.Sub(a, b)
	case ir.OpMul:
		return tarval.Mul(a, b)
	case ir.OpAnd:
		return tarval.And(a, b)
	case ir.OpOr:
		return tarval.Or(a, b)
	case ir.OpEor:
		return tarval.Eor(a, b)
	case ir.OpShl:
		return tarval.Shl(a, b)
	case ir.OpShr:
		return tarval.Shr(a, b)
	case ir.OpShrs:
		return tarval.Shrs(a, b)
	case ir.OpRotl:
		return tarval.Rotl(a, b)
	default:
		return tarval.Value{}, errUnhandledOp
	}
}
