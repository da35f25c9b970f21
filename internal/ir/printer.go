package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Print renders a graph in the flat textual notation internal/irtext parses,
// annotated with node IDs so round-tripping through a parser/printer pair is
// stable for tests and CLI -dump output.
func Print(g *Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "graph %s {\n", g.Name)

	for _, blk := range g.Blocks {
		printBlock(&b, blk)
	}
	b.WriteString("}\n")
	return b.String()
}

func printBlock(b *strings.Builder, blk *Node) {
	attr := blk.Attr.(*BlockAttr)
	var tag string
	if attr.IsStart {
		tag = " entry"
	} else if blk.Label {
		tag = " labelled"
	}
	preds := make([]string, len(blk.In))
	for i, p := range blk.In {
		preds[i] = fmt.Sprintf("bb%d", p.Block.ID)
	}
	fmt.Fprintf(b, "  block bb%d%s(%s) {\n", blk.ID, tag, strings.Join(preds, ", "))

	for _, phi := range attr.Phis {
		printNode(b, phi)
	}

	// order non-terminator members deterministically by ID for stable output.
	var body []*Node
	var term *Node
	for _, n := range attr.Members {
		if IsTerminator(n.Op) {
			term = n
			continue
		}
		body = append(body, n)
	}
	sort.Slice(body, func(i, j int) bool { return body[i].ID < body[j].ID })
	for _, n := range body {
		printNode(b, n)
	}
	if term != nil {
		printNode(b, term)
	}
	b.WriteString("  }\n")
}

func ref(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.Op == OpBlock {
		return fmt.Sprintf("bb%d", n.ID)
	}
	return fmt.Sprintf("%%%d", n.ID)
}

func printNode(b *strings.Builder, n *Node) {
	args := make([]string, len(n.In))
	for i, in := range n.In {
		args[i] = ref(in)
	}
	joined := strings.Join(args, ", ")

	switch n.Op {
	case OpJmp:
		fmt.Fprintf(b, "    Jmp\n")
	case OpReturn:
		fmt.Fprintf(b, "    Return %s\n", joined)
	case OpCond:
		fmt.Fprintf(b, "    %%%d = Cond.%s %s\n", n.ID, n.Mode, joined)
	case OpSwitch:
		fmt.Fprintf(b, "    %%%d = Switch.%s %s\n", n.ID, n.Mode, joined)
	case OpConst:
		attr := n.Attr.(*ConstAttr)
		fmt.Fprintf(b, "    %%%d = Const.%s %s\n", n.ID, n.Mode, attr.Value.String())
	case OpSymConst:
		attr := n.Attr.(*SymConstAttr)
		fmt.Fprintf(b, "    %%%d = SymConst.%s %q\n", n.ID, n.Mode, attr.Entity)
	case OpProj:
		attr := n.Attr.(*ProjAttr)
		fmt.Fprintf(b, "    %%%d = Proj.%s %s #%d\n", n.ID, n.Mode, joined, attr.Index)
	case OpCmp:
		attr := n.Attr.(*CmpAttr)
		fmt.Fprintf(b, "    %%%d = Cmp.%s %s %v\n", n.ID, n.Mode, joined, attr.Relation)
	case OpConfirm:
		attr := n.Attr.(*ConfirmAttr)
		fmt.Fprintf(b, "    %%%d = Confirm.%s %s %v\n", n.ID, n.Mode, joined, attr.Relation)
	case OpCall:
		attr := n.Attr.(*CallAttr)
		fmt.Fprintf(b, "    %%%d = Call.%s @%s(%s)\n", n.ID, n.Mode, attr.Entity, joined)
	case OpPhi:
		fmt.Fprintf(b, "    %%%d = Phi.%s [%s]\n", n.ID, n.Mode, joined)
	default:
		fmt.Fprintf(b, "    %%%d = %s.%s %s\n", n.ID, n.Op, n.Mode, joined)
	}
}
