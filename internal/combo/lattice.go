package combo

import (
	"fmt"

	"combo/internal/tarval"
)

// Tag names which region of the lattice an element occupies (spec.md §4.1).
type Tag uint8

const (
	TagTop Tag = iota
	TagBottom
	TagConstant
	TagSymbolic
	TagReachable
	TagUnreachable
)

// Type is one lattice element. Top/Bottom carry no payload; Constant carries
// a tarval.Value; Symbolic carries an unresolved entity reference (an
// un-folded SymConst); Reachable/Unreachable are the control-mode / Block
// domain's two terminal facts.
type Type struct {
	Tag     Tag
	Const   tarval.Value
	Symbol  string
}

func Top() Type               { return Type{Tag: TagTop} }
func Bottom() Type            { return Type{Tag: TagBottom} }
func Constant(v tarval.Value) Type     { return Type{Tag: TagConstant, Const: v} }
func Symbolic(entity string) Type      { return Type{Tag: TagSymbolic, Symbol: entity} }
func Reachable() Type                  { return Type{Tag: TagReachable} }
func Unreachable() Type                { return Type{Tag: TagUnreachable} }

func (t Type) IsTop() bool         { return t.Tag == TagTop }
func (t Type) IsBottom() bool      { return t.Tag == TagBottom }
func (t Type) IsConstant() bool    { return t.Tag == TagConstant }
func (t Type) IsSymbolic() bool    { return t.Tag == TagSymbolic }
func (t Type) IsReachable() bool   { return t.Tag == TagReachable }
func (t Type) IsUnreachable() bool { return t.Tag == TagUnreachable }

// Height orders the lattice for the monotonicity verifier: a retype is legal
// only if it strictly lowers height (or keeps the identical fact). Data and
// control occupy disjoint sub-orders that are never compared against each
// other (a node's mode never changes mid-pass): data descends
// Top(2) > Constant/Symbolic(1) > Bottom(0); control descends
// Unreachable(2) > Reachable(0) — Unreachable is the optimistic starting
// value for every non-start block/edge, Reachable is the one-way final fact
// (spec.md §4.1).
func (t Type) Height() int {
	switch t.Tag {
	case TagTop, TagUnreachable:
		return 2
	case TagConstant, TagSymbolic:
		return 1
	case TagBottom, TagReachable:
		return 0
	default:
		return 1
	}
}

// Equal reports whether two lattice elements are the identical fact (not
// just the same height — two different constants are both height 1 but not
// Equal).
func (t Type) Equal(o Type) bool {
	if t.Tag != o.Tag {
		return false
	}
	switch t.Tag {
	case TagConstant:
		return t.Const.Equal(o.Const)
	case TagSymbolic:
		return t.Symbol == o.Symbol
	default:
		return true
	}
}

func (t Type) String() string {
	switch t.Tag {
	case TagTop:
		return "⊤"
	case TagBottom:
		return "⊥"
	case TagConstant:
		return t.Const.String()
	case TagSymbolic:
		return "&" + t.Symbol
	case TagReachable:
		return "reachable"
	case TagUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("Type(%d)", t.Tag)
	}
}

// LessEq reports whether t is at or below o in the lattice order (t is at
// least as specific/descended as o). Used by the monotonicity verifier: a
// retype from o to t is legal iff t.LessEq(o).
func (t Type) LessEq(o Type) bool {
	if t.Equal(o) {
		return true
	}
	return t.Height() < o.Height()
}

// Meet computes the join-in-the-descending-order ("meet" in the dataflow
// sense) of a Phi's operand types: Top absorbs into whatever else is present,
// differing settled facts collapse to Bottom, identical settled facts persist,
// and all-Top stays Top (spec.md §4.1 Phi transfer function).
func Meet(elems []Type) Type {
	result := Top()
	first := true
	for _, e := range elems {
		if e.IsTop() {
			continue
		}
		if e.IsBottom() {
			return Bottom()
		}
		if first || result.IsTop() {
			result = e
			first = false
			continue
		}
		if !result.Equal(e) {
			return Bottom()
		}
	}
	return result
}
