package signal

import "riscvsim/isa"

// IFID is the pipeline register between fetch and decode.
type IFID struct {
	Instr Pair[uint32]
	NPC   Pair[uint32] // PC+4
	PC    Pair[uint32]
}

// IDEX is the pipeline register between decode and execute. RD doubles as
// the carrier for funct3 on B-type instructions (spec.md §4.8 "RD/funct3
// reuse"), avoiding a dedicated field for a control signal only branches
// need.
type IDEX struct {
	Control Pair[isa.ControlWord]
	NPC     Pair[uint32]
	PC      Pair[uint32]
	A       Pair[uint32] // rs1 value
	B       Pair[uint32] // rs2 value
	RD      Pair[uint8]  // destination register, or funct3 for B-type
	RS1     Pair[uint8]
	RS2     Pair[uint8]
	Imm     Pair[uint32]
	Word    Pair[uint32] // raw instruction word, carried for mnemonic display only
	Valid   Pair[bool]   // false on a bubble (stall/flush)
}

// EXMEM is the pipeline register between execute and memory.
type EXMEM struct {
	Control   Pair[isa.ControlWord]
	NPC       Pair[uint32]
	ALUResult Pair[uint32]
	B         Pair[uint32]
	RD        Pair[uint8]
	Word      Pair[uint32] // carried for mnemonic display only
	Valid     Pair[bool]
}

// MEMWB is the pipeline register between memory and write-back.
type MEMWB struct {
	Control   Pair[isa.ControlWord]
	NPC       Pair[uint32]
	ALUResult Pair[uint32]
	RM        Pair[uint32] // memory read data
	RD        Pair[uint8]
	Word      Pair[uint32] // carried for mnemonic display only
	Valid     Pair[bool]
}

// LatchAll copies every field's In shadow into Out, modeling one rising
// clock edge across all four pipeline registers at once. The pipelined
// backend calls this exactly once at the end of Step.
func (r *Registers) LatchAll() {
	r.IFID.Instr.Latch()
	r.IFID.NPC.Latch()
	r.IFID.PC.Latch()

	r.IDEX.Control.Latch()
	r.IDEX.NPC.Latch()
	r.IDEX.PC.Latch()
	r.IDEX.A.Latch()
	r.IDEX.B.Latch()
	r.IDEX.RD.Latch()
	r.IDEX.RS1.Latch()
	r.IDEX.RS2.Latch()
	r.IDEX.Imm.Latch()
	r.IDEX.Word.Latch()
	r.IDEX.Valid.Latch()

	r.EXMEM.Control.Latch()
	r.EXMEM.NPC.Latch()
	r.EXMEM.ALUResult.Latch()
	r.EXMEM.B.Latch()
	r.EXMEM.RD.Latch()
	r.EXMEM.Word.Latch()
	r.EXMEM.Valid.Latch()

	r.MEMWB.Control.Latch()
	r.MEMWB.NPC.Latch()
	r.MEMWB.ALUResult.Latch()
	r.MEMWB.RM.Latch()
	r.MEMWB.RD.Latch()
	r.MEMWB.Word.Latch()
	r.MEMWB.Valid.Latch()
}

// Registers bundles the four pipeline registers together so the pipelined
// backend and DatapathState can pass them around as one value.
type Registers struct {
	IFID  IFID
	IDEX  IDEX
	EXMEM EXMEM
	MEMWB MEMWB
}
