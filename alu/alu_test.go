package alu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasicOps(t *testing.T) {
	r, z := Compute(Add, 2, 3)
	assert.Equal(t, uint32(5), r)
	assert.False(t, z)

	r, z = Compute(Sub, 5, 5)
	assert.Equal(t, uint32(0), r)
	assert.True(t, z)

	r, _ = Compute(And, 0xff, 0x0f)
	assert.Equal(t, uint32(0x0f), r)

	r, _ = Compute(Or, 0xf0, 0x0f)
	assert.Equal(t, uint32(0xff), r)
}

func TestSlt(t *testing.T) {
	r, _ := Compute(Slt, uint32(int32(-1)), 1)
	assert.Equal(t, uint32(1), r)

	r, _ = Compute(Slt, 1, uint32(int32(-1)))
	assert.Equal(t, uint32(0), r)
}

func TestShiftsUseOnlyLow5Bits(t *testing.T) {
	// shift amount 33 behaves like 1 (33 & 31 == 1)
	r, _ := Compute(Sll, 1, 33)
	assert.Equal(t, uint32(2), r)

	r, _ = Compute(Srl, 0x80000000, 33)
	assert.Equal(t, uint32(0x40000000), r)

	r, _ = Compute(Sra, 0x80000000, 33)
	assert.Equal(t, uint32(0xc0000000), r)
}

func TestSraPreservesSign(t *testing.T) {
	r, _ := Compute(Sra, 0x80000000, 4)
	assert.Equal(t, uint32(0xf8000000), r)
}
