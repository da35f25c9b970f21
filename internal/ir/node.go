package ir

import "combo/internal/tarval"

// Edge is a def-use edge: it names a user of some producer node and the
// input position at which the producer is used. User may itself be a Block
// (for the control input, Pos == -1 style edges aren't modeled here — control
// successors are tracked on Block separately; Edge is for data/memory uses).
type Edge struct {
	User *Node
	Pos  int
}

// Node is a single IR value- or control-producing operation. Node mutation
// outside of the rewriter (internal/combo/rewriter.go) should not happen once
// a graph has been handed to a pass; construction lives in internal/ir and
// internal/irtext.
type Node struct {
	ID    int
	Op    Opcode
	Mode  Mode
	Block *Node // containing Block; nil for Start/Block/End nodes themselves
	In    []*Node

	// Uses holds this node's def-use edges, sorted by Pos ascending. The
	// COMBO pass keeps its leader/follower state per node in its own wrapper
	// (an isFollower flag), not here, since it is scratch bookkeeping for
	// exactly one run of the pass; the edge list carries no split index.
	Uses []Edge

	Attr any // opcode-specific data, see the *Attr types below

	// Label marks a Block as an explicit jump target unconditionally treated
	// as reachable regardless of predecessor reachability (spec.md §4.1).
	Label bool
}

func (n *Node) String() string { return n.Op.String() }

func (o Opcode) String() string { return string(o) }

// AddUse records that user reads n at input position pos, keeping Uses
// sorted by Pos ascending (spec.md §3 invariant).
func (n *Node) AddUse(user *Node, pos int) {
	e := Edge{User: user, Pos: pos}
	i := 0
	for i < len(n.Uses) && n.Uses[i].Pos <= pos {
		i++
	}
	n.Uses = append(n.Uses, Edge{})
	copy(n.Uses[i+1:], n.Uses[i:])
	n.Uses[i] = e
}

// RemoveUse deletes the first edge pointing at (user, pos), if present.
func (n *Node) RemoveUse(user *Node, pos int) {
	for i, e := range n.Uses {
		if e.User == user && e.Pos == pos {
			n.Uses = append(n.Uses[:i], n.Uses[i+1:]...)
			return
		}
	}
}

// ConstAttr holds the constant value carried by a Const node.
type ConstAttr struct {
	Value tarval.Value
}

// SymConstKind distinguishes the flavors of SymConst (spec.md §4.1).
type SymConstKind uint8

const (
	SymConstAddress SymConstKind = iota // names an entity address
	SymConstSize
	SymConstAlign
)

type SymConstAttr struct {
	Kind   SymConstKind
	Entity string
	Folded tarval.Value // valid when Kind != SymConstAddress
}

// Relation is a comparison predicate, shared by Cmp and Confirm.
type Relation uint8

const (
	RelEq Relation = iota
	RelNe
	RelLt
	RelLe
	RelGt
	RelGe
)

func (r Relation) String() string {
	switch r {
	case RelEq:
		return "=="
	case RelNe:
		return "!="
	case RelLt:
		return "<"
	case RelLe:
		return "<="
	case RelGt:
		return ">"
	case RelGe:
		return ">="
	default:
		return "?"
	}
}

func (r Relation) Negated() Relation {
	switch r {
	case RelEq:
		return RelNe
	case RelNe:
		return RelEq
	case RelLt:
		return RelGe
	case RelLe:
		return RelGt
	case RelGt:
		return RelLe
	case RelGe:
		return RelLt
	}
	return r
}

type CmpAttr struct {
	Relation Relation
}

type ConfirmAttr struct {
	Relation Relation // relation of In[0] to the bound In[1]
}

// ProjAttr names which output of a tuple-producing predecessor this Proj
// reads. For Proj(Cond) the convention is 0 == false-successor, 1 ==
// true-successor (spec.md §4.1 "implementation picks a canonical side").
type ProjAttr struct {
	Index int
}

// SwitchCase maps one concrete selector value to an output index.
type SwitchCase struct {
	Value tarval.Value
	Out   int
}

type SwitchAttr struct {
	Cases      []SwitchCase
	NumOuts    int
	DefaultOut int
}

// CallAttr names the called entity; Call always folds to Bottom (spec.md
// §4.1) since side effects preclude constant-folding its result tuple.
type CallAttr struct {
	Entity string
}

// BlockAttr carries per-block bookkeeping: its attached Phi list and whether
// it is the graph's unique start block.
type BlockAttr struct {
	IsStart bool
	Phis    []*Node
	Members []*Node // every non-Phi node whose Block is this block, creation order
}
