package opcodes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"combo/internal/ir"
	"combo/internal/opcodes"
	"combo/internal/tarval"
)

func TestLookupReportsArityAndCommutativity(t *testing.T) {
	entry, ok := opcodes.Lookup(ir.OpAdd)
	assert.True(t, ok)
	assert.Equal(t, 2, entry.Arity)
	assert.True(t, entry.Commutative)

	entry, ok = opcodes.Lookup(ir.OpSub)
	assert.True(t, ok)
	assert.False(t, entry.Commutative)

	_, ok = opcodes.Lookup(ir.OpCall)
	assert.False(t, ok, "Call carries no algebraic metadata")
}

func TestIsCommutative(t *testing.T) {
	assert.True(t, opcodes.IsCommutative(ir.OpMul))
	assert.False(t, opcodes.IsCommutative(ir.OpSub))
	assert.False(t, opcodes.IsCommutative(ir.OpReturn))
}

func TestSubIdentityOnlyFiresOnRightOperand(t *testing.T) {
	entry, ok := opcodes.Lookup(ir.OpSub)
	assert.True(t, ok)
	assert.Len(t, entry.Identities, 1)
	assert.Equal(t, 1, entry.Identities[0].Operand)
	assert.Equal(t, 0, entry.Identities[0].OtherOperand())
	assert.True(t, entry.Identities[0].Value(32).Equal(tarval.Null(32)))
}

func TestMulAnnihilatorIsZeroOnEitherOperand(t *testing.T) {
	entry, ok := opcodes.Lookup(ir.OpMul)
	assert.True(t, ok)
	assert.Len(t, entry.Annihilators, 2)
	for _, a := range entry.Annihilators {
		assert.True(t, a.Value(32).Equal(tarval.Null(32)))
	}
}
