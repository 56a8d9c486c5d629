package isa

import (
	"errors"
	"fmt"

	"riscvsim/bits"
)

// ErrInvalidImmSrc is returned by ExtendImmediate when immSrc falls outside
// {ImmI, ImmS, ImmB, ImmJ, ImmU}.
var ErrInvalidImmSrc = errors.New("isa: invalid ImmSrc selector")

// ExtendImmediate extracts the format-specific immediate bit fields from
// instr exactly as the RISC-V manual prescribes, and sign-extends from the
// MSB of the immediate (U-type leaves the lower 12 bits zero and is not
// sign-extended, per spec.md §4.5).
//
// An out-of-range immSrc returns the Indeterminate sentinel and a non-nil
// error; callers recover per spec.md §7 rather than propagating a panic.
func ExtendImmediate(instr uint32, immSrc uint8) (uint32, error) {
	switch immSrc {
	case ImmI:
		imm := bits.Range(instr, 20, 31)
		return uint32(bits.SignExtend(imm, 12)), nil

	case ImmS:
		imm := (bits.Range(instr, 25, 31) << 5) | bits.Range(instr, 7, 11)
		return uint32(bits.SignExtend(imm, 12)), nil

	case ImmB:
		imm := (bits.Range(instr, 31, 31) << 12) |
			(bits.Range(instr, 7, 7) << 11) |
			(bits.Range(instr, 25, 30) << 5) |
			(bits.Range(instr, 8, 11) << 1)
		return uint32(bits.SignExtend(imm, 13)), nil

	case ImmJ:
		imm := (bits.Range(instr, 31, 31) << 20) |
			(bits.Range(instr, 12, 19) << 12) |
			(bits.Range(instr, 20, 20) << 11) |
			(bits.Range(instr, 21, 30) << 1)
		return uint32(bits.SignExtend(imm, 21)), nil

	case ImmU:
		return bits.Range(instr, 12, 31) << 12, nil

	default:
		return Indeterminate, fmt.Errorf("%w: %d", ErrInvalidImmSrc, immSrc)
	}
}
