// Package irtext builds an internal/ir.Graph from the flat textual IR
// notation grammar parses (spec.md §1's "construction is an external
// collaborator's job" — this is that collaborator, the textual-input
// analogue of the deleted Kanso source-to-SSA builder this package used to
// host). internal/combo consumes the Graph this produces unchanged.
package irtext

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"combo/grammar"
	"combo/internal/ir"
	"combo/internal/tarval"
)

// Build parses source and constructs the ir.Graph for its first graph.
func Build(name, source string) (*ir.Graph, error) {
	r, err := BuildFirst(name, source)
	if err != nil {
		return nil, err
	}
	return r.Graph, nil
}

// BuildAll builds every graph named in source, in file order.
func BuildAll(name, source string) ([]*ir.Graph, error) {
	f, err := grammar.ParseString(name, source)
	if err != nil {
		return nil, err
	}
	graphs := make([]*ir.Graph, 0, len(f.Graphs))
	for _, gr := range f.Graphs {
		g, err := BuildGraph(gr)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// Result pairs a built graph with the textual labels ("%7", "bb2") that
// named each of its nodes, so a caller that still has the source text (the
// LSP hover handler, the REPL) can resolve a label back to a node without
// guessing whether the graph's own sequential node IDs happen to match the
// text.
type Result struct {
	Graph *ir.Graph
	Refs  map[string]*ir.Node
}

// BuildFirst parses source and builds its first graph, keeping the label
// map.
func BuildFirst(name, source string) (*Result, error) {
	f, err := grammar.ParseString(name, source)
	if err != nil {
		return nil, err
	}
	if len(f.Graphs) == 0 {
		return nil, fmt.Errorf("irtext: %s contains no graph", name)
	}
	return buildWithRefs(f.Graphs[0])
}

func buildWithRefs(gr *grammar.Graph) (*Result, error) {
	b := &builder{
		graph:  ir.NewGraph(gr.Name),
		blocks: map[string]*ir.Node{},
		values: map[string]*ir.Node{},
	}
	if err := b.build(gr); err != nil {
		return nil, err
	}
	refs := make(map[string]*ir.Node, len(b.blocks)+len(b.values))
	for k, v := range b.blocks {
		refs[k] = v
	}
	for k, v := range b.values {
		refs[k] = v
	}
	return &Result{Graph: b.graph, Refs: refs}, nil
}

// builder holds the scratch state for constructing one graph: the parser's
// %N and bbN names are source-text labels only, not retained as node IDs —
// every node gets the graph's normal sequential ID, same as a fixture built
// directly against the Go API.
type builder struct {
	graph  *ir.Graph
	blocks map[string]*ir.Node
	values map[string]*ir.Node
}

// BuildGraph constructs one ir.Graph from a parsed grammar.Graph.
func BuildGraph(gr *grammar.Graph) (*ir.Graph, error) {
	b := &builder{
		graph:  ir.NewGraph(gr.Name),
		blocks: map[string]*ir.Node{},
		values: map[string]*ir.Node{},
	}
	if err := b.build(gr); err != nil {
		return nil, err
	}
	return b.graph, nil
}

func (b *builder) build(gr *grammar.Graph) error {
	if err := b.declareBlocks(gr); err != nil {
		return err
	}
	if err := b.declareInstrs(gr); err != nil {
		return err
	}
	if err := b.wireBlockPreds(gr); err != nil {
		return err
	}
	return b.wireInstrs(gr)
}

// declareBlocks creates every Block node up front (predecessor-free; wired
// later in wireBlockPreds) so forward references — a loop header listing a
// back-edge block that appears later in the text — resolve.
func (b *builder) declareBlocks(gr *grammar.Graph) error {
	for _, blk := range gr.Blocks {
		if blk.Tag == "entry" {
			b.blocks[blk.Ref] = b.graph.Start
			continue
		}
		n := b.graph.AddBlock()
		n.Label = blk.Tag == "labelled"
		b.blocks[blk.Ref] = n
	}
	return nil
}

// declareInstrs creates every instruction node with its static Attr set but
// no operands wired yet, for the same forward-reference reason: a Phi at a
// loop header names values the loop body computes later in the text.
func (b *builder) declareInstrs(gr *grammar.Graph) error {
	for _, blk := range gr.Blocks {
		block := b.blocks[blk.Ref]
		for _, instr := range blk.Instrs {
			if err := b.declareInstr(block, instr); err != nil {
				return fmt.Errorf("%s: %w", blk.Ref, err)
			}
		}
	}
	return nil
}

func (b *builder) declareInstr(block *ir.Node, instr *grammar.Instr) error {
	switch {
	case instr.Jmp != nil:
		// target resolved in wireBlockPreds via the successor's pred list
		b.graph.NewJmp(block)
	case instr.Return != nil:
		b.graph.NewNode(ir.OpReturn, ir.ModeX, block)
	case instr.Const != nil:
		c := instr.Const
		mode, err := parseMode(c.Mode)
		if err != nil {
			return err
		}
		v, err := parseConstValue(mode, c.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Result, err)
		}
		n := b.graph.NewConst(block, ir.ConstAttr{Value: v}, mode)
		b.values[c.Result] = n
	case instr.SymConst != nil:
		s := instr.SymConst
		mode, err := parseMode(s.Mode)
		if err != nil {
			return err
		}
		n := b.graph.NewSymConst(block, ir.SymConstAttr{
			Kind:   ir.SymConstAddress,
			Entity: unquote(s.Entity),
		}, mode)
		b.values[s.Result] = n
	case instr.Proj != nil:
		p := instr.Proj
		mode, err := parseMode(p.Mode)
		if err != nil {
			return err
		}
		idx, err := strconv.Atoi(p.Index)
		if err != nil {
			return fmt.Errorf("%s: bad Proj index %q: %w", p.Result, p.Index, err)
		}
		n := b.graph.NewNode(ir.OpProj, mode, block)
		n.Attr = &ir.ProjAttr{Index: idx}
		b.values[p.Result] = n
	case instr.Cmp != nil:
		c := instr.Cmp
		mode, err := parseMode(c.Mode)
		if err != nil {
			return err
		}
		rel, err := parseRelation(c.Rel)
		if err != nil {
			return err
		}
		n := b.graph.NewNode(ir.OpCmp, mode, block)
		n.Attr = &ir.CmpAttr{Relation: rel}
		b.values[c.Result] = n
	case instr.Confirm != nil:
		c := instr.Confirm
		mode, err := parseMode(c.Mode)
		if err != nil {
			return err
		}
		rel, err := parseRelation(c.Rel)
		if err != nil {
			return err
		}
		n := b.graph.NewNode(ir.OpConfirm, mode, block)
		n.Attr = &ir.ConfirmAttr{Relation: rel}
		b.values[c.Result] = n
	case instr.Call != nil:
		c := instr.Call
		mode, err := parseMode(c.Mode)
		if err != nil {
			return err
		}
		n := b.graph.NewNode(ir.OpCall, mode, block)
		n.Attr = &ir.CallAttr{Entity: c.Entity}
		b.values[c.Result] = n
	case instr.Phi != nil:
		p := instr.Phi
		mode, err := parseMode(p.Mode)
		if err != nil {
			return err
		}
		n := b.graph.NewNode(ir.OpPhi, mode, block)
		attr := block.Attr.(*ir.BlockAttr)
		attr.Phis = append(attr.Phis, n)
		b.values[p.Result] = n
	case instr.Generic != nil:
		g := instr.Generic
		mode, err := parseMode(g.Mode)
		if err != nil {
			return err
		}
		op, err := parseGenericOpcode(g.Op)
		if err != nil {
			return err
		}
		n := b.graph.NewNode(op, mode, block)
		if op == ir.OpSwitch {
			// The text format carries only the selector operand, not
			// Switch's value->successor case table (spec.md §4.1's Switch
			// semantics need it); hand-written/round-tripped Switch graphs
			// built through text get a minimal two-way default-only attr.
			// Graphs needing real case tables are built via the Go API.
			n.Attr = &ir.SwitchAttr{NumOuts: 2, DefaultOut: 0}
		}
		b.values[g.Result] = n
	default:
		return fmt.Errorf("empty instruction")
	}
	return nil
}

// wireBlockPreds resolves each block's textual predecessor list ("bb3") to
// the actual control-edge node (the predecessor's Jmp, or one of its Proj
// children for a Cond/Switch terminator) spec.md §4.4's SetBlockPreds
// expects. A predecessor block has exactly one terminator; if it's a Jmp
// there is no ambiguity. If it's a Cond/Switch with several Proj children,
// the text doesn't name which Proj feeds which successor, so they are
// paired positionally: Proj children sorted by index, successor blocks that
// list this predecessor sorted by their order of appearance in the file, so
// the first such successor receives Proj #0 (a Cond's false edge) and the
// next receives Proj #1 (its true edge).
func (b *builder) wireBlockPreds(gr *grammar.Graph) error {
	projCursor := map[*ir.Node]int{} // predecessor block -> next Proj to hand out
	for _, blk := range gr.Blocks {
		block := b.blocks[blk.Ref]
		if blk.Tag == "entry" {
			continue
		}
		preds := make([]*ir.Node, 0, len(blk.Preds))
		for _, predRef := range blk.Preds {
			predBlock, ok := b.blocks[predRef]
			if !ok {
				return fmt.Errorf("%s: unknown predecessor %s", blk.Ref, predRef)
			}
			edge, err := b.nextControlEdge(predBlock, projCursor)
			if err != nil {
				return fmt.Errorf("%s: %w", blk.Ref, err)
			}
			preds = append(preds, edge)
		}
		b.graph.SetBlockPreds(block, preds)
	}
	return nil
}

// nextControlEdge returns the next unclaimed control-producing node out of
// block: its Jmp if it has one, otherwise the next Proj in index order.
func (b *builder) nextControlEdge(block *ir.Node, cursor map[*ir.Node]int) (*ir.Node, error) {
	attr := block.Attr.(*ir.BlockAttr)
	var proj []*ir.Node
	for _, m := range attr.Members {
		switch m.Op {
		case ir.OpJmp:
			return m, nil
		case ir.OpProj:
			proj = append(proj, m)
		}
	}
	if len(proj) == 0 {
		return nil, fmt.Errorf("predecessor has no terminator producing a control edge")
	}
	sortProjByIndex(proj)
	i := cursor[block]
	if i >= len(proj) {
		return nil, fmt.Errorf("predecessor has no unclaimed successor edge left")
	}
	cursor[block] = i + 1
	return proj[i], nil
}

func sortProjByIndex(proj []*ir.Node) {
	for i := 1; i < len(proj); i++ {
		for j := i; j > 0; j-- {
			if proj[j].Attr.(*ir.ProjAttr).Index < proj[j-1].Attr.(*ir.ProjAttr).Index {
				proj[j], proj[j-1] = proj[j-1], proj[j]
			} else {
				break
			}
		}
	}
}

// wireInstrs resolves every instruction's %N operands now that every value
// and block exists.
func (b *builder) wireInstrs(gr *grammar.Graph) error {
	for _, blk := range gr.Blocks {
		block := b.blocks[blk.Ref]
		attr := block.Attr.(*ir.BlockAttr)
		phiIdx := 0
		for _, instr := range blk.Instrs {
			switch {
			case instr.Jmp != nil:
				// no operands
			case instr.Return != nil:
				n := nextTerminator(attr)
				ins, err := b.resolveOperands(instr.Return.Args)
				if err != nil {
					return err
				}
				b.graph.SetIrnIn(n, ins)
			case instr.Const != nil, instr.SymConst != nil:
				// no operands
			case instr.Proj != nil:
				n := b.values[instr.Proj.Result]
				in, err := b.resolveOperand(instr.Proj.Arg)
				if err != nil {
					return err
				}
				b.graph.SetIrnIn(n, []*ir.Node{in})
			case instr.Cmp != nil:
				n := b.values[instr.Cmp.Result]
				ins, err := b.resolveOperands([]*grammar.Operand{instr.Cmp.Left, instr.Cmp.Right})
				if err != nil {
					return err
				}
				b.graph.SetIrnIn(n, ins)
			case instr.Confirm != nil:
				n := b.values[instr.Confirm.Result]
				ins, err := b.resolveOperands([]*grammar.Operand{instr.Confirm.Left, instr.Confirm.Right})
				if err != nil {
					return err
				}
				b.graph.SetIrnIn(n, ins)
			case instr.Call != nil:
				n := b.values[instr.Call.Result]
				ins, err := b.resolveOperands(instr.Call.Args)
				if err != nil {
					return err
				}
				b.graph.SetIrnIn(n, ins)
			case instr.Phi != nil:
				n := attr.Phis[phiIdx]
				phiIdx++
				ins, err := b.resolveOperands(instr.Phi.Args)
				if err != nil {
					return err
				}
				b.graph.SetIrnIn(n, ins)
			case instr.Generic != nil:
				n := b.values[instr.Generic.Result]
				ins, err := b.resolveOperands(instr.Generic.Args)
				if err != nil {
					return err
				}
				b.graph.SetIrnIn(n, ins)
			}
		}
	}
	return nil
}

// nextTerminator returns blk's terminator member (Return in practice, since
// Jmp/Cond/Switch carry no operand-resolution work of their own here).
func nextTerminator(attr *ir.BlockAttr) *ir.Node {
	for _, m := range attr.Members {
		if ir.IsTerminator(m.Op) && m.Op != ir.OpJmp {
			return m
		}
	}
	return nil
}

func (b *builder) resolveOperand(op *grammar.Operand) (*ir.Node, error) {
	n, ok := b.values[op.Ref]
	if !ok {
		return nil, fmt.Errorf("undefined value %s", op.Ref)
	}
	return n, nil
}

func (b *builder) resolveOperands(ops []*grammar.Operand) ([]*ir.Node, error) {
	ins := make([]*ir.Node, len(ops))
	for i, op := range ops {
		n, err := b.resolveOperand(op)
		if err != nil {
			return nil, err
		}
		ins[i] = n
	}
	return ins, nil
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}

func parseMode(s string) (ir.Mode, error) {
	switch s {
	case "X":
		return ir.ModeX, nil
	case "M":
		return ir.ModeM, nil
	case "T":
		return ir.ModeT, nil
	case "BB":
		return ir.ModeBB, nil
	case "b":
		return ir.ModeB, nil
	}
	if len(s) > 1 && s[0] == 'i' {
		bits, err := strconv.Atoi(s[1:])
		if err == nil {
			return ir.ModeInt(bits), nil
		}
	}
	if len(s) > 1 && s[0] == 'f' {
		bits, err := strconv.Atoi(s[1:])
		if err == nil {
			return ir.ModeFloat(bits), nil
		}
	}
	return ir.Mode{}, fmt.Errorf("irtext: unknown mode %q", s)
}

func parseConstValue(mode ir.Mode, text string) (tarval.Value, error) {
	if mode.IsFloat() {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return tarval.Value{}, fmt.Errorf("bad float constant %q: %w", text, err)
		}
		return tarval.FromFloat(mode.Bits, f), nil
	}
	i, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return tarval.Value{}, fmt.Errorf("bad integer constant %q", text)
	}
	bits := mode.Bits
	if mode.Kind == ir.ModeKindBool {
		bits = 1
	}
	return tarval.FromBigInt(bits, i), nil
}

func parseRelation(s string) (ir.Relation, error) {
	switch s {
	case "==":
		return ir.RelEq, nil
	case "!=":
		return ir.RelNe, nil
	case "<":
		return ir.RelLt, nil
	case "<=":
		return ir.RelLe, nil
	case ">":
		return ir.RelGt, nil
	case ">=":
		return ir.RelGe, nil
	}
	return 0, fmt.Errorf("irtext: unknown relation %q", s)
}

func parseGenericOpcode(s string) (ir.Opcode, error) {
	switch ir.Opcode(s) {
	case ir.OpCond, ir.OpSwitch,
		ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpAnd, ir.OpOr, ir.OpEor,
		ir.OpShl, ir.OpShr, ir.OpShrs, ir.OpRotl, ir.OpMux:
		return ir.Opcode(s), nil
	}
	return "", fmt.Errorf("irtext: unknown opcode %q", s)
}
