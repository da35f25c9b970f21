package grammar

import (
	"fmt"
	"strings"
)

func indent(level int) string {
	return strings.Repeat("  ", level)
}

func (f *File) String() string {
	var b strings.Builder
	for _, g := range f.Graphs {
		b.WriteString(g.String())
	}
	return b.String()
}

func (g *Graph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "graph %s {\n", g.Name)
	for _, blk := range g.Blocks {
		b.WriteString(blk.String())
	}
	b.WriteString("}\n")
	return b.String()
}

func (blk *Block) String() string {
	var b strings.Builder
	tag := ""
	if blk.Tag != "" {
		tag = " " + blk.Tag
	}
	fmt.Fprintf(&b, "%sblock %s%s(%s) {\n", indent(1), blk.Ref, tag, strings.Join(blk.Preds, ", "))
	for _, instr := range blk.Instrs {
		b.WriteString(indent(2) + instr.String() + "\n")
	}
	b.WriteString(indent(1) + "}\n")
	return b.String()
}

func (o *Operand) String() string { return o.Ref }

func operandList(ops []*Operand) string {
	parts := make([]string, len(ops))
	for i, o := range ops {
		parts[i] = o.String()
	}
	return strings.Join(parts, ", ")
}

func (i *Instr) String() string {
	switch {
	case i.Jmp != nil:
		return i.Jmp.String()
	case i.Return != nil:
		return i.Return.String()
	case i.Const != nil:
		return i.Const.String()
	case i.SymConst != nil:
		return i.SymConst.String()
	case i.Proj != nil:
		return i.Proj.String()
	case i.Cmp != nil:
		return i.Cmp.String()
	case i.Confirm != nil:
		return i.Confirm.String()
	case i.Call != nil:
		return i.Call.String()
	case i.Phi != nil:
		return i.Phi.String()
	case i.Generic != nil:
		return i.Generic.String()
	}
	return ""
}

func (j *JmpInstr) String() string { return "Jmp" }

func (r *ReturnInstr) String() string {
	return fmt.Sprintf("Return %s", operandList(r.Args))
}

func (c *ConstInstr) String() string {
	return fmt.Sprintf("%s = Const.%s %s", c.Result, c.Mode, c.Value)
}

func (s *SymConstInstr) String() string {
	return fmt.Sprintf("%s = SymConst.%s %s", s.Result, s.Mode, s.Entity)
}

func (p *ProjInstr) String() string {
	return fmt.Sprintf("%s = Proj.%s %s #%s", p.Result, p.Mode, p.Arg.String(), p.Index)
}

func (c *CmpInstr) String() string {
	return fmt.Sprintf("%s = Cmp.%s %s, %s %s", c.Result, c.Mode, c.Left.String(), c.Right.String(), c.Rel)
}

func (c *ConfirmInstr) String() string {
	return fmt.Sprintf("%s = Confirm.%s %s, %s %s", c.Result, c.Mode, c.Left.String(), c.Right.String(), c.Rel)
}

func (c *CallInstr) String() string {
	return fmt.Sprintf("%s = Call.%s @%s(%s)", c.Result, c.Mode, c.Entity, operandList(c.Args))
}

func (p *PhiInstr) String() string {
	return fmt.Sprintf("%s = Phi.%s [%s]", p.Result, p.Mode, operandList(p.Args))
}

func (g *GenericInstr) String() string {
	return fmt.Sprintf("%s = %s.%s %s", g.Result, g.Op, g.Mode, operandList(g.Args))
}
