package isa

// Fields extracts the fixed-position bit fields common to every RV32I
// encoding. rs2 is meaningless for I/U/J-type words but cheap to compute
// unconditionally, matching the combinational datapath's own parallel
// field extraction (spec.md §4.7 step 2).
func Fields(word uint32) (opcode, funct3, funct7, rs1, rs2, rd uint8) {
	opcode = uint8(word & 0x7f)
	funct3 = uint8((word >> 12) & 0x7)
	funct7 = uint8((word >> 25) & 0x7f)
	rs1 = uint8((word >> 15) & 0x1f)
	rs2 = uint8((word >> 20) & 0x1f)
	rd = uint8((word >> 7) & 0x1f)
	return
}
