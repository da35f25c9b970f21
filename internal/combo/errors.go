package combo

import (
	"errors"
	"fmt"

	"combo/internal/ir"
)

// errUnhandledOp marks an opcode evalArith was asked to fold but has no
// arithmetic defined for — should be unreachable given ir.IsBinaryArith
// gates every caller, but arithType treats it as "give up, return Bottom"
// rather than trusting that gate blindly.
var errUnhandledOp = errors.New("combo: no arithmetic defined for opcode")

// InvariantError is the typed carrier for a fatal pass-internal contract
// violation: a non-monotone retype, a partition invariant breach, or an
// arity mismatch the rewriter cannot proceed past (spec.md §7). It is never
// raised for ordinary malformed input — that goes through
// internal/diagnostics instead.
type InvariantError struct {
	Kind string
	Node *ir.Node
	Msg  string
}

func (e InvariantError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("combo: %s invariant violated at node %s (id %d): %s", e.Kind, e.Node.Op, e.Node.ID, e.Msg)
	}
	return fmt.Sprintf("combo: %s invariant violated: %s", e.Kind, e.Msg)
}
