package ir

// Graph is one procedure's SSA graph: the minimal IR surface COMBO consumes
// and mutates (spec.md §3). Construction (Phi insertion, block maturation)
// is an external collaborator's job per spec.md §1 — Graph is built already
// complete, by internal/irtext or directly by callers assembling fixtures.
type Graph struct {
	Name  string
	Start *Node // opcode Block, Attr.(*BlockAttr).IsStart == true
	End   *Node // opcode End

	Blocks []*Node // every Block node, in the order they were created

	// Keepalives are the End node's keepalive set (spec.md §4.4 step 4):
	// memory (and other) nodes that must survive even with no data user.
	Keepalives []*Node

	nextID int
}

func NewGraph(name string) *Graph {
	g := &Graph{Name: name}
	start := g.newNode(OpBlock, ModeBB, nil)
	start.Attr = &BlockAttr{IsStart: true}
	g.Start = start
	g.Blocks = append(g.Blocks, start)

	end := g.newNode(OpEnd, ModeX, nil)
	end.In = []*Node{start}
	g.End = end
	return g
}

func (g *Graph) newNode(op Opcode, mode Mode, block *Node) *Node {
	g.nextID++
	return &Node{ID: g.nextID, Op: op, Mode: mode, Block: block}
}

// AddBlock creates a new Block in the graph with the given control
// predecessors (the Jmp/Cond/Switch Proj nodes feeding it).
func (g *Graph) AddBlock(preds ...*Node) *Node {
	b := g.newNode(OpBlock, ModeBB, nil)
	b.In = append(b.In, preds...)
	b.Attr = &BlockAttr{}
	for i, p := range preds {
		p.AddUse(b, i)
	}
	g.Blocks = append(g.Blocks, b)
	return b
}

// NewNode creates and wires a new value- or control-producing node in block,
// with the given inputs. Callers are responsible for setting Attr when the
// opcode requires one (Const, SymConst, Cmp, Confirm, Proj, Switch, Call).
func (g *Graph) NewNode(op Opcode, mode Mode, block *Node, ins ...*Node) *Node {
	n := g.newNode(op, mode, block)
	n.In = append(n.In, ins...)
	for i, in := range ins {
		if in != nil {
			in.AddUse(n, i)
		}
	}
	g.attach(n, block)
	return n
}

// attach records n as a member of block's instruction list, unless n is a
// Phi (tracked separately on BlockAttr.Phis) or block is nil (Bad/Unknown,
// which are not block-scoped). Every constructor that creates a block-scoped
// node — NewNode and the spec.md §6 fresh-node helpers below — routes
// through this so Print and the rewriter see the whole instruction list.
func (g *Graph) attach(n *Node, block *Node) {
	if block != nil && n.Op != OpPhi {
		attr := block.Attr.(*BlockAttr)
		attr.Members = append(attr.Members, n)
	}
}

// AddPhi creates a Phi in block with one input per block predecessor (ins
// must be given in the same order as block.In).
func (g *Graph) AddPhi(block *Node, mode Mode, ins ...*Node) *Node {
	phi := g.NewNode(OpPhi, mode, block, ins...)
	attr := block.Attr.(*BlockAttr)
	attr.Phis = append(attr.Phis, phi)
	return phi
}

// AddEndKeepalive registers node as a required keepalive on End.
func (g *Graph) AddEndKeepalive(node *Node) {
	for _, k := range g.Keepalives {
		if k == node {
			return
		}
	}
	g.Keepalives = append(g.Keepalives, node)
}

// SetEndKeepalives replaces the whole keepalive list.
func (g *Graph) SetEndKeepalives(nodes []*Node) {
	g.Keepalives = append([]*Node(nil), nodes...)
}

// Exchange atomically redirects every user of old to new and marks old dead
// by clearing its inputs and uses (spec.md §6 exchange()).
func (g *Graph) Exchange(old, new *Node) {
	if old == new {
		return
	}
	uses := old.Uses
	old.Uses = nil
	for _, e := range uses {
		if e.Pos >= 0 && e.Pos < len(e.User.In) && e.User.In[e.Pos] == old {
			e.User.In[e.Pos] = new
			new.AddUse(e.User, e.Pos)
		}
	}
	for i, in := range old.In {
		if in != nil {
			in.RemoveUse(old, i)
		}
	}
	old.In = nil
}

// NewConst creates a fresh Const node (spec.md §6 new_r_Const).
func (g *Graph) NewConst(block *Node, v ConstAttr, mode Mode) *Node {
	n := g.newNode(OpConst, mode, block)
	n.Attr = &v
	g.attach(n, block)
	return n
}

// NewSymConst creates a fresh SymConst node (spec.md §6 new_r_SymConst).
func (g *Graph) NewSymConst(block *Node, attr SymConstAttr, mode Mode) *Node {
	n := g.newNode(OpSymConst, mode, block)
	n.Attr = &attr
	g.attach(n, block)
	return n
}

// NewJmp creates a fresh unconditional jump out of block (new_r_Jmp).
func (g *Graph) NewJmp(block *Node) *Node {
	n := g.newNode(OpJmp, ModeX, block)
	g.attach(n, block)
	return n
}

// NewBad creates a fresh Bad node of the given mode (new_r_Bad).
func (g *Graph) NewBad(mode Mode) *Node {
	return g.newNode(OpBad, mode, nil)
}

// NewUnknown creates a fresh Unknown node of the given mode (new_r_Unknown).
func (g *Graph) NewUnknown(mode Mode) *Node {
	return g.newNode(OpUnknown, mode, nil)
}

// NewConv creates a mode-converting copy of v (new_rd_Conv), used by the
// rewriter when exchanging a follower for a leader of a different mode.
func (g *Graph) NewConv(block *Node, v *Node, mode Mode) *Node {
	n := g.NewNode(OpConv, mode, block, v)
	return n
}

// SetIrnIn replaces a node's whole input list (set_irn_in), fixing up
// def-use edges on both the old and new inputs.
func (g *Graph) SetIrnIn(n *Node, ins []*Node) {
	for i, old := range n.In {
		if old != nil {
			old.RemoveUse(n, i)
		}
	}
	n.In = append([]*Node(nil), ins...)
	for i, in := range n.In {
		if in != nil {
			in.AddUse(n, i)
		}
	}
}

// SetBlockPreds replaces a block's control predecessor list, used by the
// rewriter when pruning Unreachable edges.
func (g *Graph) SetBlockPreds(block *Node, preds []*Node) {
	g.SetIrnIn(block, preds)
}

// SetPhiPreds replaces a Phi's predecessor list in lock-step with its
// block's predecessor list (spec.md §4.4).
func (g *Graph) SetPhiPreds(phi *Node, ins []*Node) {
	g.SetIrnIn(phi, ins)
}
