package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func words(t *testing.T, src string) []uint32 {
	t.Helper()
	a := New()
	b, err := a.Assemble(src)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(b)%4)
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = uint32(b[4*i]) | uint32(b[4*i+1])<<8 | uint32(b[4*i+2])<<16 | uint32(b[4*i+3])<<24
	}
	return out
}

func TestAssembleAddRType(t *testing.T) {
	w := words(t, "add x1, x2, x3")
	assert.Equal(t, uint32(0b0000000_00011_00010_000_00001_0110011), w[0])
}

func TestAssembleAddiImmediate(t *testing.T) {
	w := words(t, "addi a0, zero, 5")
	assert.Equal(t, uint32(5)<<20|uint32(0)<<15|uint32(10)<<7|0b0010011, w[0])
}

func TestAssembleNopPseudo(t *testing.T) {
	w := words(t, "nop")
	assert.Equal(t, uint32(0x00000013), w[0])
}

func TestAssembleLoadOffsetSyntax(t *testing.T) {
	// "lw rd, offset(rs1)" becomes "lw rd offset rs1" after preprocess,
	// which the offset-syntax branch of encodeI reads as offset, then rs1.
	w := words(t, "lw a0, 4(sp)")
	assert.Equal(t, uint32(4)<<20|uint32(2)<<15|uint32(2)<<12|uint32(10)<<7|0b0000011, w[0])
}

func TestAssembleLabelForwardBranch(t *testing.T) {
	src := `
start:
    beq x0, x0, skip
    addi x1, x0, 1
skip:
    addi x2, x0, 2
`
	w := words(t, src)
	assert.Equal(t, 3, len(w))
	// beq at pc=0 targets skip at pc=8: offset = 8.
	offsetField := (w[0]>>31)&1<<12 | (w[0]>>25)&0x3f<<5 | (w[0]>>8)&0xf<<1 | (w[0]>>7)&1<<11
	assert.Equal(t, uint32(8), offsetField)
}

func TestAssembleLabelBackwardJal(t *testing.T) {
	src := `
loop:
    addi x1, x1, -1
    jal x0, loop
`
	w := words(t, src)
	assert.Equal(t, 2, len(w))
	// jal at pc=4 targets loop at pc=0: offset = -4.
	u := w[1]
	imm20 := (u >> 31) & 1
	imm19_12 := (u >> 12) & 0xff
	imm11 := (u >> 20) & 1
	imm10_1 := (u >> 21) & 0x3ff
	raw := imm20<<20 | imm19_12<<12 | imm11<<11 | imm10_1<<1
	var signed int32
	if imm20 == 1 {
		signed = int32(raw) - (1 << 21)
	} else {
		signed = int32(raw)
	}
	assert.Equal(t, int32(-4), signed)
}

func TestDuplicateLabelError(t *testing.T) {
	src := `
foo:
    nop
foo:
    nop
`
	a := New()
	_, err := a.Assemble(src)
	assert.Error(t, err)
	var asmErr *Error
	assert.ErrorAs(t, err, &asmErr)
	assert.Equal(t, DuplicateLabel, asmErr.Kind)
}

func TestUnknownMnemonicError(t *testing.T) {
	a := New()
	_, err := a.Assemble("frobnicate x1, x2, x3")
	assert.Error(t, err)
	var asmErr *Error
	assert.ErrorAs(t, err, &asmErr)
	assert.Equal(t, UnknownMnemonic, asmErr.Kind)
}

func TestBadRegisterError(t *testing.T) {
	a := New()
	_, err := a.Assemble("add x1, x2, bogus")
	assert.Error(t, err)
	var asmErr *Error
	assert.ErrorAs(t, err, &asmErr)
	assert.Equal(t, BadRegister, asmErr.Kind)
}

func TestCommentsAndBlankLinesIgnored(t *testing.T) {
	src := `
# a full-line comment
add x1, x2, x3   # trailing comment

nop
`
	w := words(t, src)
	assert.Equal(t, 2, len(w))
}

func TestSymbolTableExposed(t *testing.T) {
	a := New()
	_, err := a.Assemble("start:\n  nop\nend:\n  nop\n")
	assert.NoError(t, err)
	syms := a.SymbolTable()
	assert.Equal(t, uint32(0), syms["start"])
	assert.Equal(t, uint32(4), syms["end"])
}

func TestShiftImmediateEncoding(t *testing.T) {
	w := words(t, "slli x1, x2, 3")
	assert.Equal(t, uint32(3)<<20|uint32(2)<<15|uint32(1)<<12|uint32(1)<<7|0b0010011, w[0])
}

func TestStoreEncoding(t *testing.T) {
	w := words(t, "sw x5, 8(x6)")
	rs2 := uint32(5)
	rs1 := uint32(6)
	immVal := uint32(8)
	expected := (immVal>>5)&0x7f<<25 | rs2<<20 | rs1<<15 | uint32(2)<<12 | (immVal&0x1f)<<7 | 0b0100011
	assert.Equal(t, expected, w[0])
}
