package datapath

import (
	"log"

	"riscvsim/alu"
	"riscvsim/isa"
	"riscvsim/mem"
	"riscvsim/regfile"
	"riscvsim/signal"
)

// MultiCycle executes one full instruction per Step call exactly like
// SingleCycle, but timestamps every bus with the micro-cycle index 0..4
// it becomes valid in (spec.md §4.9) instead of a propagation delay, and
// mirrors the result into the pipeline-register shadows so a renderer can
// animate it moving stage by stage even though only one instruction is
// ever in flight.
type MultiCycle struct{}

const (
	mcIF  = 0
	mcID  = 1
	mcEX  = 2
	mcMEM = 3
	mcWB  = 4
)

func (MultiCycle) Step(pc uint32, regs *regfile.RegisterFile, imem, dmem *mem.Memory, st *signal.DatapathState, logger *log.Logger) (nextPC uint32, err error) {
	st.PC = signal.Active(pc, mcIF)
	pcPlus4 := pc + 4
	st.PCPlus4 = signal.Active(pcPlus4, mcIF)

	word, ferr := imem.ReadWord(pc, false)
	if ferr != nil {
		logger.Printf("multi-cycle: instruction fetch out of bounds at pc=0x%08x: %v", pc, ferr)
		word = isa.NopWord
	}
	st.Instr = signal.Active(word, mcIF)

	opcode, funct3, funct7, rs1, rs2, rd := isa.Fields(word)
	st.Opcode = signal.Active(opcode, mcID)
	st.Funct3 = signal.Active(funct3, mcID)
	st.Funct7 = signal.Active(funct7, mcID)
	st.DA = signal.Active(rs1, mcID)
	st.DB = signal.Active(rs2, mcID)
	st.DC = signal.Active(rd, mcID)

	info := isa.Decode(word)
	recognized := info != nil
	if !recognized {
		logger.Printf("multi-cycle: unrecognized instruction 0x%08x at pc=0x%08x, treated as NOP", word, pc)
		info = isa.Decode(isa.NopWord)
		st.CurrentMnemonic = "unrecognized"
	} else {
		st.CurrentMnemonic = isa.Disassemble(word)
	}

	control := isa.Pack(*info)
	st.Control = signal.Active(uint16(control), mcID)
	pcsrc, brwr, alusrc, aluctr, memwr, ressrc, immsrc := control.Unpack()
	st.PCsrc = signal.Active(pcsrc, mcID)

	a := regs.ReadA(rs1)
	b := regs.ReadB(rs2)
	st.A = signal.Active(a, mcID)
	st.B = signal.Active(b, mcID)

	imm, extErr := isa.ExtendImmediate(word, immsrc)
	if extErr != nil {
		logger.Printf("multi-cycle: %v at pc=0x%08x", extErr, pc)
	}
	st.Imm = signal.Active(bits20(word), mcID)
	st.ImmExt = signal.Active(imm, mcID)

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
	st.ALU_A = signal.Active(aluA, mcEX)
	st.ALU_B = signal.Active(aluB, mcEX)

	var aluResult uint32
	var aluZero bool
	if aluctr != isa.DontCare {
		aluResult, aluZero = alu.Compute(alu.Func(aluctr), aluA, aluB)
	}
	st.ALUResult = signal.Active(aluResult, mcEX)
	st.ALUZero = signal.Active(aluZero, mcEX)

	isBranchOrJump := info.Format == isa.FormatB || info.Mnemonic == "jal" || info.Mnemonic == "jalr"
	takeBranch := false
	if info.Format == isa.FormatB {
		takeBranch = branchCondition(funct3, aluZero)
	} else if isBranchOrJump {
		takeBranch = true
	}
	st.BranchTaken = signal.Active(takeBranch, mcEX)
	pcDest := pc + imm
	if isBranchOrJump {
		st.PCDest = signal.Active(pcDest, mcEX)
	} else {
		st.PCDest = signal.Inactive(pcDest)
	}

	var memReadData uint32
	memAddr := aluResult
	st.MemAddress = signal.Active(memAddr, mcMEM)
	if memwr == 1 {
		st.MemWriteData = signal.Active(b, mcMEM)
		if werr := dmem.WriteWord(memAddr, b, false); werr != nil {
			logger.Printf("multi-cycle: data write out of bounds at addr=0x%08x: %v", memAddr, werr)
		}
	}
	writeBackCycle := mcMEM
	if ressrc == isa.ResMem {
		w, rerr := dmem.ReadWord(memAddr, false)
		if rerr != nil {
			logger.Printf("multi-cycle: data read out of bounds at addr=0x%08x: %v", memAddr, rerr)
			w = isa.Indeterminate
		}
		memReadData = w
		st.MemReadData = signal.Active(w, mcMEM)
		writeBackCycle = mcWB // loads alone reach the WB micro-cycle
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
		st.C = signal.Active(writeBack, writeBackCycle)
		regs.Write(rd, writeBack)
	} else {
		st.C = signal.Inactive(writeBack)
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
	st.PCNext = signal.Active(next, mcIF)

	st.TotalMicroCycles = uint32(info.Cycles)
	if st.TotalMicroCycles == 0 {
		st.TotalMicroCycles = uint32(writeBackCycle) + 1
	}
	st.CriticalTime = st.TotalMicroCycles - 1

	mnemonic := st.CurrentMnemonic
	st.StageMnemonic = [5]string{mnemonic, mnemonic, mnemonic, mnemonic, mnemonic}

	st.Pipe.IFID.Instr = signal.Pair[uint32]{In: signal.Active(word, mcIF), Out: signal.Active(word, mcIF)}
	st.Pipe.IDEX.Control = signal.Pair[isa.ControlWord]{In: signal.Active(control, mcID), Out: signal.Active(control, mcID)}
	st.Pipe.EXMEM.ALUResult = signal.Pair[uint32]{In: signal.Active(aluResult, mcEX), Out: signal.Active(aluResult, mcEX)}
	st.Pipe.MEMWB.RM = signal.Pair[uint32]{In: signal.Active(memReadData, mcMEM), Out: signal.Active(memReadData, mcMEM)}

	return next, nil
}
