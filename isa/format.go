// Package isa implements the RV32I control decoder: the InstructionInfo
// mask/match table, control-word packing, sign extension of instruction
// immediates, and disassembly. It is the Go analogue of the original
// simulator's ControlUnit plus SignExtender components.
package isa

// Format names one of the six RISC-V instruction encodings.
type Format byte

const (
	FormatR Format = 'R'
	FormatI Format = 'I'
	FormatS Format = 'S'
	FormatB Format = 'B'
	FormatU Format = 'U'
	FormatJ Format = 'J'
)

// ImmSrc selects which instruction format's immediate-field layout to
// extract and sign-extend.
const (
	ImmI uint8 = iota
	ImmS
	ImmB
	ImmJ
	ImmU
)

// ResSrc selects the write-back mux input, in the order spec.md §4.7 step 7
// lists them: memory read data, ALU result, PC+4, indeterminate.
const (
	ResMem uint8 = iota
	ResALU
	ResPC4
	ResDontCare
)

// PCsrc selects how the next PC is computed.
const (
	PCNext4  uint8 = iota // PC + 4
	PCBranch               // conditional branch or JAL: PC + imm, taken per BRwr/funct3
	PCJalr                 // JALR: use the ALU result
)

// DontCare marks an ALUctr value that the datapath must not read into the
// write-back result (spec.md §9 Open Questions).
const DontCare int8 = -1

// Indeterminate is the sentinel value written to a bus when a per-step
// error (OOB memory access, unrecognized instruction, bad immediate
// selector) is recovered locally, per spec.md §7.
const Indeterminate uint32 = 0x00FABADA

// NopWord is the bit pattern for `addi x0, x0, 0`, used both as the
// assembler's `nop` pseudo-instruction and as the bubble injected into a
// flushed or stalled pipeline stage.
const NopWord uint32 = 0x00000013
