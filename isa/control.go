package isa

// ControlWord is the 16-bit packed encoding of the seven control signals
// carried through the pipeline registers, so ID/EX can latch a single
// opaque value that EX/MEM/WB re-unpack (spec.md §3, §9 Design Notes).
//
// Bit layout (LSB first):
//
//	[0:1]   PCsrc   (2 bits, 0-2)
//	[2]     BRwr    (1 bit)
//	[3]     ALUsrc  (1 bit)
//	[4:6]   ALUctr  (3 bits, meaningless when bit 7 is set)
//	[7]     ALUctr don't-care flag
//	[8]     MemWr   (1 bit)
//	[9:10]  ResSrc  (2 bits, 0-3)
//	[11:13] ImmSrc  (3 bits, 0-4)
type ControlWord uint16

// Pack encodes an InstructionInfo's control signals into a ControlWord.
func Pack(info InstructionInfo) ControlWord {
	var w uint16
	w |= uint16(info.PCsrc) & 0x3
	w |= uint16(info.BRwr&1) << 2
	w |= uint16(info.ALUsrc&1) << 3
	if info.ALUctr == DontCare {
		w |= 1 << 7
	} else {
		w |= uint16(info.ALUctr&0x7) << 4
	}
	w |= uint16(info.MemWr&1) << 8
	w |= uint16(info.ResSrc&0x3) << 9
	w |= uint16(info.ImmSrc&0x7) << 11
	return ControlWord(w)
}

// Unpack recovers the individual control signals from a ControlWord.
func (c ControlWord) Unpack() (pcsrc, brwr, alusrc uint8, aluctr int8, memwr, ressrc, immsrc uint8) {
	w := uint16(c)
	pcsrc = uint8(w & 0x3)
	brwr = uint8((w >> 2) & 1)
	alusrc = uint8((w >> 3) & 1)
	if (w>>7)&1 == 1 {
		aluctr = DontCare
	} else {
		aluctr = int8((w >> 4) & 0x7)
	}
	memwr = uint8((w >> 8) & 1)
	ressrc = uint8((w >> 9) & 0x3)
	immsrc = uint8((w >> 11) & 0x7)
	return
}
