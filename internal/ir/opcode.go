package ir

// Opcode names every node kind COMBO understands. The IR surface is
// deliberately narrow: only what the pass in internal/combo consumes and
// mutates is represented here (spec.md §3 / §6 — everything else is treated
// as an external collaborator's concern).
type Opcode string

const (
	OpBlock Opcode = "Block"
	OpStart Opcode = "Start"
	OpEnd   Opcode = "End"

	OpBad     Opcode = "Bad"
	OpUnknown Opcode = "Unknown"

	OpJmp    Opcode = "Jmp"
	OpCond   Opcode = "Cond"
	OpSwitch Opcode = "Switch"
	OpProj   Opcode = "Proj"
	OpPhi    Opcode = "Phi"

	OpConst    Opcode = "Const"
	OpSymConst Opcode = "SymConst"

	OpAdd  Opcode = "Add"
	OpSub  Opcode = "Sub"
	OpMul  Opcode = "Mul"
	OpAnd  Opcode = "And"
	OpOr   Opcode = "Or"
	OpEor  Opcode = "Eor"
	OpShl  Opcode = "Shl"
	OpShr  Opcode = "Shr"
	OpShrs Opcode = "Shrs"
	OpRotl Opcode = "Rotl"

	OpCmp     Opcode = "Cmp"
	OpConfirm Opcode = "Confirm"
	OpMux     Opcode = "Mux"

	OpCall   Opcode = "Call"
	OpReturn Opcode = "Return"
	OpSync   Opcode = "Sync"
	OpLoad   Opcode = "Load"
	OpStore  Opcode = "Store"

	// OpConv is a mode-converting copy inserted by the rewriter when a
	// follower is exchanged for a leader of a different mode (spec.md §4.4,
	// new_rd_Conv). It is not part of the opcode set the solver computes
	// lattice values for.
	OpConv Opcode = "Conv"
)

// commutativeOps lists the opcodes for which op(a,b) and op(b,a) must land in
// the same congruence class (spec.md §4.2, normalized per-input split key).
var commutativeOps = map[Opcode]bool{
	OpAdd: true,
	OpMul: true,
	OpAnd: true,
	OpOr:  true,
	OpEor: true,
}

func IsCommutative(op Opcode) bool { return commutativeOps[op] }

// binaryArithOps are the opcodes with exactly two data inputs evaluated by
// target-value arithmetic (spec.md §4.1).
var binaryArithOps = map[Opcode]bool{
	OpAdd: true, OpSub: true, OpMul: true,
	OpAnd: true, OpOr: true, OpEor: true,
	OpShl: true, OpShr: true, OpShrs: true, OpRotl: true,
}

func IsBinaryArith(op Opcode) bool { return binaryArithOps[op] }

// IsTerminator reports whether a node ends a block's instruction stream and
// carries the block's control successors.
func IsTerminator(op Opcode) bool {
	switch op {
	case OpJmp, OpCond, OpSwitch, OpReturn:
		return true
	default:
		return false
	}
}

// IsTupleProducer reports whether a node's result must be unpacked via Proj.
func IsTupleProducer(op Opcode) bool {
	switch op {
	case OpCond, OpSwitch, OpCall, OpLoad, OpStart:
		return true
	default:
		return false
	}
}
