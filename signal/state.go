package signal

// DatapathState (aka SignalRecord) is the tagged snapshot of every bus in
// the datapath. All three backends (single-cycle, multi-cycle, pipelined)
// write into the same shape so a front-end can render any of them with one
// schematic. Field names mirror spec.md §3 exactly.
type DatapathState struct {
	PC    Signal[uint32]
	Instr Signal[uint32]

	Opcode Signal[uint8]
	Funct3 Signal[uint8]
	Funct7 Signal[uint8]
	DA     Signal[uint8] // rs1 field
	DB     Signal[uint8] // rs2 field
	DC     Signal[uint8] // rd field

	A      Signal[uint32] // register rs1 value
	B      Signal[uint32] // register rs2 value
	Imm    Signal[uint32] // raw immediate bits
	ImmExt Signal[uint32] // sign-extended immediate

	ALU_A      Signal[uint32]
	ALU_B      Signal[uint32]
	ALUResult  Signal[uint32]
	ALUZero    Signal[bool]

	Control Signal[uint16] // packed ControlWord
	PCsrc   Signal[uint8]

	MemAddress   Signal[uint32]
	MemWriteData Signal[uint32]
	MemReadData  Signal[uint32]

	C Signal[uint32] // final write-back value

	PCPlus4 Signal[uint32]
	PCDest  Signal[uint32]
	PCNext  Signal[uint32]

	BranchTaken Signal[bool]
	Stall       Signal[bool]
	Flush       Signal[bool]

	ForwardASel Signal[uint8]
	ForwardBSel Signal[uint8]
	ForwardAOut Signal[uint32]
	ForwardBOut Signal[uint32]

	Pipe Registers

	StageMnemonic   [5]string // IF, ID, EX, MEM, WB
	CurrentMnemonic string

	CriticalTime       uint32
	TotalMicroCycles   uint32
}

// Reset clears every field to its zero value except the PC and PC+4 buses,
// which remain live so the renderer always has something to show
// immediately after a reset (spec.md §4.10).
func (s *DatapathState) Reset(initialPC uint32) {
	*s = DatapathState{}
	s.PC = Active(initialPC, 0)
	s.PCPlus4 = Active(initialPC+4, 1)
}
