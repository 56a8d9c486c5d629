package datapath

import (
	"log"

	"riscvsim/alu"
	"riscvsim/isa"
	"riscvsim/mem"
	"riscvsim/regfile"
	"riscvsim/signal"
)

// Abstract propagation delays, in the same arbitrary time units as
// spec.md §3's ready_at, used only so the renderer can draw a critical
// path through the single-cycle datapath.
const (
	delayPC      = 1
	delayAdder   = 2
	delayIMem    = 4
	delayDecode  = 5
	delayRegRead = 6
	delaySignExt = 6
	delayALU     = 9
	delayDMem    = 13
	delayWB      = 14
	delayPCNext  = 10
)

// SingleCycle executes one full instruction per Step call, timing every
// bus with a cumulative propagation delay (spec.md §4.7).
type SingleCycle struct{}

// Step fetches, decodes, and fully executes the instruction at pc,
// recording every bus into st, and returns the PC for the next Step call.
func (SingleCycle) Step(pc uint32, regs *regfile.RegisterFile, imem, dmem *mem.Memory, st *signal.DatapathState, logger *log.Logger) (nextPC uint32, err error) {
	st.PC = signal.Active(pc, delayPC)
	pcPlus4 := pc + 4
	st.PCPlus4 = signal.Active(pcPlus4, delayAdder)

	word, ferr := imem.ReadWord(pc, false)
	if ferr != nil {
		logger.Printf("single-cycle: instruction fetch out of bounds at pc=0x%08x: %v", pc, ferr)
		word = isa.NopWord
	}
	st.Instr = signal.Active(word, delayIMem)

	opcode, funct3, funct7, rs1, rs2, rd := isa.Fields(word)
	st.Opcode = signal.Active(opcode, delayIMem)
	st.Funct3 = signal.Active(funct3, delayIMem)
	st.Funct7 = signal.Active(funct7, delayIMem)
	st.DA = signal.Active(rs1, delayIMem)
	st.DB = signal.Active(rs2, delayIMem)
	st.DC = signal.Active(rd, delayIMem)

	info := isa.Decode(word)
	recognized := info != nil
	if !recognized {
		logger.Printf("single-cycle: unrecognized instruction 0x%08x at pc=0x%08x, treated as NOP", word, pc)
		nop := isa.Decode(isa.NopWord)
		info = nop
		st.CurrentMnemonic = "unrecognized"
	} else {
		st.CurrentMnemonic = isa.Disassemble(word)
	}

	control := isa.Pack(*info)
	st.Control = signal.Active(uint16(control), delayDecode)
	pcsrc, brwr, alusrc, aluctr, memwr, ressrc, immsrc := control.Unpack()
	st.PCsrc = signal.Active(pcsrc, delayDecode)

	a := regs.ReadA(rs1)
	b := regs.ReadB(rs2)
	st.A = signal.Active(a, delayRegRead)
	st.B = signal.Active(b, delayRegRead)

	imm, extErr := isa.ExtendImmediate(word, immsrc)
	if extErr != nil {
		logger.Printf("single-cycle: %v at pc=0x%08x", extErr, pc)
	}
	st.Imm = signal.Active(bits20(word), delaySignExt)
	st.ImmExt = signal.Active(imm, delaySignExt)

	aluA := a
	if info.Format == isa.FormatU {
		aluA = 0
		if info.Mnemonic == "auipc" {
			aluA = pc
		}
	}
	aluB := b
	if alusrc == 1 {
		aluB = imm
	}
	st.ALU_A = signal.Active(aluA, delayRegRead)
	st.ALU_B = signal.Active(aluB, delaySignExt)

	var aluResult uint32
	var aluZero bool
	if aluctr != isa.DontCare {
		aluResult, aluZero = alu.Compute(alu.Func(aluctr), aluA, aluB)
	}
	st.ALUResult = signal.Active(aluResult, delayALU)
	st.ALUZero = signal.Active(aluZero, delayALU)

	var memReadData uint32
	memAddr := aluResult
	st.MemAddress = signal.Active(memAddr, delayALU)
	if memwr == 1 {
		st.MemWriteData = signal.Active(b, delayALU)
		if werr := dmem.WriteWord(memAddr, b, false); werr != nil {
			logger.Printf("single-cycle: data write out of bounds at addr=0x%08x: %v", memAddr, werr)
		}
	}
	if ressrc == isa.ResMem {
		w, rerr := dmem.ReadWord(memAddr, false)
		if rerr != nil {
			logger.Printf("single-cycle: data read out of bounds at addr=0x%08x: %v", memAddr, rerr)
			w = isa.Indeterminate
		}
		memReadData = w
		st.MemReadData = signal.Active(w, delayDMem)
	}

	var writeBack uint32
	switch ressrc {
	case isa.ResMem:
		writeBack = memReadData
	case isa.ResALU:
		writeBack = aluResult
	case isa.ResPC4:
		writeBack = pcPlus4
	default:
		writeBack = isa.Indeterminate
	}
	if brwr == 1 {
		st.C = signal.Active(writeBack, delayWB)
		regs.Write(rd, writeBack)
	} else {
		st.C = signal.Inactive(writeBack)
	}

	isBranchOrJump := info.Format == isa.FormatB || info.Mnemonic == "jal" || info.Mnemonic == "jalr"
	takeBranch := false
	if info.Format == isa.FormatB {
		takeBranch = branchCondition(funct3, aluZero)
	} else if isBranchOrJump {
		takeBranch = true
	}
	st.BranchTaken = signal.Active(takeBranch, delayALU)

	pcDest := pc + imm
	if isBranchOrJump {
		st.PCDest = signal.Active(pcDest, delayAdder)
	} else {
		st.PCDest = signal.Inactive(pcDest)
	}

	var next uint32
	switch {
	case pcsrc == isa.PCJalr:
		next = aluResult
	case takeBranch:
		next = pcDest
	default:
		next = pcPlus4
	}
	st.PCNext = signal.Active(next, delayPCNext)

	st.CriticalTime = delayPCNext
	st.StageMnemonic = [5]string{st.CurrentMnemonic, "", "", "", ""}
	return next, nil
}

// bits20 extracts the raw (non-sign-extended) immediate bit positions
// shared by most formats, used only for the display bus `Imm`.
func bits20(word uint32) uint32 {
	return (word >> 20) & 0xfff
}

// branchCondition decodes the conditional-branch predicate from funct3
// and the ALU's zero-flag outcome (spec.md §4.7 step 8, "conditional
// branches decode funct3 to distinguish beq, bne, ..."). beq/bne drive
// the ALU with a subtract (zero means equal); blt/bge drive it with slt
// (a nonzero result means rs1<rs2, so the two predicates invert the same
// flag).
func branchCondition(funct3 uint8, aluZero bool) bool {
	switch funct3 {
	case 0b000: // beq
		return aluZero
	case 0b001: // bne
		return !aluZero
	case 0b100: // blt
		return !aluZero
	case 0b101: // bge
		return aluZero
	default:
		return false
	}
}
