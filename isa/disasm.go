package isa

import "fmt"

// Disassemble is a pure function of a raw instruction word, rendering the
// NOP sentinel as "nop" and any unmatched word as raw hex (spec.md §9
// Design Notes).
func Disassemble(word uint32) string {
	if word == NopWord {
		return "nop"
	}
	info := Decode(word)
	if info == nil {
		return fmt.Sprintf("0x%08x", word)
	}

	rd := uint8((word >> 7) & 0x1f)
	rs1 := uint8((word >> 15) & 0x1f)
	rs2 := uint8((word >> 20) & 0x1f)

	switch info.Format {
	case FormatR:
		return fmt.Sprintf("%s x%d, x%d, x%d", info.Mnemonic, rd, rs1, rs2)
	case FormatI:
		imm, _ := ExtendImmediate(word, ImmI)
		if info.Mnemonic == "lb" || info.Mnemonic == "lh" || info.Mnemonic == "lw" ||
			info.Mnemonic == "lbu" || info.Mnemonic == "lhu" {
			return fmt.Sprintf("%s x%d, %d(x%d)", info.Mnemonic, rd, int32(imm), rs1)
		}
		return fmt.Sprintf("%s x%d, x%d, %d", info.Mnemonic, rd, rs1, int32(imm))
	case FormatS:
		imm, _ := ExtendImmediate(word, ImmS)
		return fmt.Sprintf("%s x%d, %d(x%d)", info.Mnemonic, rs2, int32(imm), rs1)
	case FormatB:
		imm, _ := ExtendImmediate(word, ImmB)
		return fmt.Sprintf("%s x%d, x%d, %d", info.Mnemonic, rs1, rs2, int32(imm))
	case FormatU:
		imm, _ := ExtendImmediate(word, ImmU)
		return fmt.Sprintf("%s x%d, 0x%x", info.Mnemonic, rd, imm>>12)
	case FormatJ:
		imm, _ := ExtendImmediate(word, ImmJ)
		return fmt.Sprintf("%s x%d, %d", info.Mnemonic, rd, int32(imm))
	default:
		return fmt.Sprintf("0x%08x", word)
	}
}
