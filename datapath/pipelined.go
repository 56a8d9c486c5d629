package datapath

import (
	"log"

	"riscvsim/alu"
	"riscvsim/isa"
	"riscvsim/mem"
	"riscvsim/regfile"
	"riscvsim/signal"
)

// Pipelined is the five-stage IF/ID/EX/MEM/WB backend with forwarding,
// load-use stalling, and branch flush (spec.md §4.8). Step recomputes
// every stage in the reverse order WB, MEM, EX, ID, IF: each stage reads
// only the `_out` shadow of the pipeline registers (the value latched on
// the previous clock edge) and writes only the `In` side; LatchAll at the
// end of Step performs the one rising-edge copy for all four registers
// at once (spec.md §5's ordering guarantee).
type Pipelined struct{}

func (Pipelined) Step(pc uint32, regs *regfile.RegisterFile, imem, dmem *mem.Memory, st *signal.DatapathState, cfg Config, logger *log.Logger) (nextPC uint32, err error) {
	mwb := st.Pipe.MEMWB
	emem := st.Pipe.EXMEM
	idex := st.Pipe.IDEX
	ifid := st.Pipe.IFID

	// ---- WB (reads MEMWB.Out only) ----
	var wbValid bool
	var wbBrwr uint8
	var wbRD uint8
	var wbValue uint32
	if mwb.Valid.Out.Value {
		wbValid = true
		control := mwb.Control.Out.Value
		_, brwr, _, _, _, ressrc, _ := control.Unpack()
		wbBrwr = brwr
		wbRD = mwb.RD.Out.Value
		switch ressrc {
		case isa.ResMem:
			wbValue = mwb.RM.Out.Value
		case isa.ResALU:
			wbValue = mwb.ALUResult.Out.Value
		case isa.ResPC4:
			wbValue = mwb.NPC.Out.Value
		default:
			wbValue = isa.Indeterminate
		}
		if wbBrwr == 1 {
			st.C = signal.Active(wbValue, 1)
		} else {
			st.C = signal.Inactive(wbValue)
		}
		st.StageMnemonic[4] = mnemonicFor(mwb.Word.Out.Value)
	} else {
		st.C = signal.Inactive[uint32](0)
		st.StageMnemonic[4] = ""
	}

	doWrite := func() {
		if wbValid && wbBrwr == 1 && wbRD != 0 {
			regs.Write(wbRD, wbValue)
		}
	}
	if cfg.WriteFirst {
		doWrite()
	} else {
		defer doWrite()
	}

	// ---- MEM (reads EXMEM.Out only) ----
	var memValid bool
	var memBrwr uint8
	var memALURes uint32
	var memRD uint8
	var memWord uint32
	var memControl isa.ControlWord
	var memNPC uint32
	var memReadWord uint32
	if emem.Valid.Out.Value {
		memValid = true
		memControl = emem.Control.Out.Value
		_, brwr, _, _, memwr, ressrc, _ := memControl.Unpack()
		memBrwr = brwr
		memALURes = emem.ALUResult.Out.Value
		memRD = emem.RD.Out.Value
		memWord = emem.Word.Out.Value
		memNPC = emem.NPC.Out.Value

		st.MemAddress = signal.Active(memALURes, 1)
		if memwr == 1 {
			st.MemWriteData = signal.Active(emem.B.Out.Value, 1)
			if werr := dmem.WriteWord(memALURes, emem.B.Out.Value, false); werr != nil {
				logger.Printf("pipelined: data write out of bounds at addr=0x%08x: %v", memALURes, werr)
			}
		}
		if ressrc == isa.ResMem && brwr == 1 {
			w, rerr := dmem.ReadWord(memALURes, false)
			if rerr != nil {
				logger.Printf("pipelined: data read out of bounds at addr=0x%08x: %v", memALURes, rerr)
				w = isa.Indeterminate
			}
			memReadWord = w
			st.MemReadData = signal.Active(w, 1)
		}
		st.StageMnemonic[3] = mnemonicFor(memWord)
	} else {
		st.StageMnemonic[3] = ""
	}

	st.Pipe.MEMWB.Valid.In = signal.Active(memValid, 1)
	st.Pipe.MEMWB.Control.In = signal.Active(memControl, 1)
	st.Pipe.MEMWB.NPC.In = signal.Active(memNPC, 1)
	st.Pipe.MEMWB.ALUResult.In = signal.Active(memALURes, 1)
	st.Pipe.MEMWB.RM.In = signal.Active(memReadWord, 1)
	st.Pipe.MEMWB.RD.In = signal.Active(memRD, 1)
	st.Pipe.MEMWB.Word.In = signal.Active(memWord, 1)

	// ---- EX (reads IDEX.Out, EXMEM.Out and the WB mux computed above) ----
	var exValid bool
	var exPCsrc uint8 = isa.PCNext4
	var exControl isa.ControlWord
	var exNPC, exPC uint32
	var exALURes uint32
	var exB uint32
	var exRD uint8
	var exWord uint32
	var takeBranch bool
	var pcPlusImm uint32
	var forwardASel, forwardBSel uint8
	if idex.Valid.Out.Value {
		exValid = true
		exControl = idex.Control.Out.Value
		pcsrc, brwr, alusrc, aluctr, _, _, _ := exControl.Unpack()
		exPCsrc = pcsrc
		exNPC = idex.NPC.Out.Value
		exPC = idex.PC.Out.Value
		exWord = idex.Word.Out.Value
		rdSlot := idex.RD.Out.Value
		rs1 := idex.RS1.Out.Value
		rs2 := idex.RS2.Out.Value
		rawA := idex.A.Out.Value
		rawB := idex.B.Out.Value
		imm := idex.Imm.Out.Value

		exmemCand := forwardCandidate{valid: emem.Valid.Out.Value, brwr: memBrwr, rd: memRD, value: memALURes}
		memwbCand := forwardCandidate{valid: wbValid, brwr: wbBrwr, rd: wbRD, value: wbValue}

		var forwardedA, forwardedB uint32
		if cfg.Forwarding {
			forwardedA, forwardASel = selectForward(rs1, rawA, exmemCand, memwbCand)
			forwardedB, forwardBSel = selectForward(rs2, rawB, exmemCand, memwbCand)
		} else {
			forwardedA, forwardASel = rawA, ForwardNone
			forwardedB, forwardBSel = rawB, ForwardNone
		}

		info := isa.Decode(exWord)
		aluA := forwardedA
		if info != nil && info.Format == isa.FormatU {
			aluA = 0
			if info.Mnemonic == "auipc" {
				aluA = exPC
			}
		}
		aluB := forwardedB
		if alusrc == 1 {
			aluB = imm
		}

		var aluResult uint32
		var aluZero bool
		if aluctr != isa.DontCare {
			aluResult, aluZero = alu.Compute(alu.Func(aluctr), aluA, aluB)
		}
		exALURes = aluResult
		exB = forwardedB // store-to-load forwarding: the stored value is taken here, not in MEM
		exRD = rdSlot
		pcPlusImm = exPC + imm

		switch {
		case pcsrc == isa.PCBranch && brwr == 1: // jal: always taken
			takeBranch = true
		case pcsrc == isa.PCBranch: // conditional branch: funct3 carried in the RD slot
			takeBranch = branchCondition(rdSlot, aluZero)
		case pcsrc == isa.PCJalr:
			takeBranch = true
		}

		st.ALU_A = signal.Active(aluA, 1)
		st.ALU_B = signal.Active(aluB, 1)
		st.ALUResult = signal.Active(aluResult, 1)
		st.ALUZero = signal.Active(aluZero, 1)
		st.ForwardASel = signal.Active(forwardASel, 1)
		st.ForwardBSel = signal.Active(forwardBSel, 1)
		st.ForwardAOut = signal.Active(forwardedA, 1)
		st.ForwardBOut = signal.Active(forwardedB, 1)
		st.BranchTaken = signal.Active(takeBranch, 1)
		if pcsrc == isa.PCBranch || pcsrc == isa.PCJalr {
			st.PCDest = signal.Active(pcPlusImm, 1)
		} else {
			st.PCDest = signal.Inactive(pcPlusImm)
		}
		st.StageMnemonic[2] = mnemonicFor(exWord)
	} else {
		st.StageMnemonic[2] = ""
	}

	flush := takeBranch && cfg.BranchFlush
	st.Flush = signal.Active(flush, 1)

	st.Pipe.EXMEM.Valid.In = signal.Active(exValid, 1)
	st.Pipe.EXMEM.Control.In = signal.Active(exControl, 1)
	st.Pipe.EXMEM.NPC.In = signal.Active(exNPC, 1)
	st.Pipe.EXMEM.ALUResult.In = signal.Active(exALURes, 1)
	st.Pipe.EXMEM.B.In = signal.Active(exB, 1)
	st.Pipe.EXMEM.RD.In = signal.Active(exRD, 1)
	st.Pipe.EXMEM.Word.In = signal.Active(exWord, 1)

	// ---- ID (reads IFID.Out and IDEX.Out for the hazard check) ----
	wordInIFID := ifid.Instr.Out.Value
	pcInIFID := ifid.PC.Out.Value
	npcInIFID := ifid.NPC.Out.Value

	info := isa.Decode(wordInIFID)
	if info == nil {
		logger.Printf("pipelined: unrecognized instruction 0x%08x in ID, treated as NOP", wordInIFID)
		info = isa.Decode(isa.NopWord)
	}
	idControl := isa.Pack(*info)
	_, _, _, _, _, _, immsrc := idControl.Unpack()
	_, funct3, _, rs1Field, rs2Field, rdField := isa.Fields(wordInIFID)

	aValue := regs.ReadA(rs1Field)
	bValue := regs.ReadB(rs2Field)
	immExt, extErr := isa.ExtendImmediate(wordInIFID, immsrc)
	if extErr != nil {
		logger.Printf("pipelined: %v in ID for word 0x%08x", extErr, wordInIFID)
	}

	rdOrFunct3 := rdField
	if info.Format == isa.FormatB {
		rdOrFunct3 = funct3
	}

	_, idexBrwrOut, _, _, _, idexRessrcOut, _ := idex.Control.Out.Value.Unpack()
	stall := cfg.LoadUseHazard && idex.Valid.Out.Value &&
		loadUseHazard(idexRessrcOut, idexBrwrOut, idex.RD.Out.Value, rs1Field, rs2Field)

	st.Stall = signal.Active(stall, 1)
	st.A = signal.Active(aValue, 1)
	st.B = signal.Active(bValue, 1)
	st.ImmExt = signal.Active(immExt, 1)
	st.Control = signal.Active(uint16(idControl), 1)
	st.StageMnemonic[1] = mnemonicFor(wordInIFID)

	switch {
	case stall || flush:
		// bubble into ID/EX: nothing from this instruction is let through.
		st.Pipe.IDEX.Valid.In = signal.Active(false, 1)
		st.Pipe.IDEX.Control.In = signal.Active(isa.ControlWord(0), 1)
		st.Pipe.IDEX.NPC.In = signal.Active(uint32(0), 1)
		st.Pipe.IDEX.PC.In = signal.Active(uint32(0), 1)
		st.Pipe.IDEX.A.In = signal.Active(uint32(0), 1)
		st.Pipe.IDEX.B.In = signal.Active(uint32(0), 1)
		st.Pipe.IDEX.RD.In = signal.Active(uint8(0), 1)
		st.Pipe.IDEX.RS1.In = signal.Active(uint8(0), 1)
		st.Pipe.IDEX.RS2.In = signal.Active(uint8(0), 1)
		st.Pipe.IDEX.Imm.In = signal.Active(uint32(0), 1)
		st.Pipe.IDEX.Word.In = signal.Active(isa.NopWord, 1)
	default:
		st.Pipe.IDEX.Valid.In = signal.Active(true, 1)
		st.Pipe.IDEX.Control.In = signal.Active(idControl, 1)
		st.Pipe.IDEX.NPC.In = signal.Active(npcInIFID, 1)
		st.Pipe.IDEX.PC.In = signal.Active(pcInIFID, 1)
		st.Pipe.IDEX.A.In = signal.Active(aValue, 1)
		st.Pipe.IDEX.B.In = signal.Active(bValue, 1)
		st.Pipe.IDEX.RD.In = signal.Active(rdOrFunct3, 1)
		st.Pipe.IDEX.RS1.In = signal.Active(rs1Field, 1)
		st.Pipe.IDEX.RS2.In = signal.Active(rs2Field, 1)
		st.Pipe.IDEX.Imm.In = signal.Active(immExt, 1)
		st.Pipe.IDEX.Word.In = signal.Active(wordInIFID, 1)
	}

	// ---- IF ----
	var next uint32
	switch {
	case stall:
		next = pc
	case flush && exPCsrc == isa.PCJalr:
		next = exALURes
	case flush:
		next = pcPlusImm
	default:
		next = pc + 4
	}

	if stall {
		// hold IF/ID inputs unchanged: re-latch what is already there.
		st.Pipe.IFID.Instr.In = ifid.Instr.Out
		st.Pipe.IFID.NPC.In = ifid.NPC.Out
		st.Pipe.IFID.PC.In = ifid.PC.Out
	} else if flush {
		st.Instr = signal.Inactive(isa.NopWord)
		st.Pipe.IFID.Instr.In = signal.Inactive(isa.NopWord)
		st.Pipe.IFID.NPC.In = signal.Active(pc+4, 1)
		st.Pipe.IFID.PC.In = signal.Active(pc, 1)
	} else {
		word, ferr := imem.ReadWord(pc, false)
		if ferr != nil {
			logger.Printf("pipelined: instruction fetch out of bounds at pc=0x%08x: %v", pc, ferr)
			word = isa.NopWord
		}
		st.Instr = signal.Active(word, 1)
		st.PC = signal.Active(pc, 1)
		st.PCPlus4 = signal.Active(pc+4, 1)
		st.Pipe.IFID.Instr.In = signal.Active(word, 1)
		st.Pipe.IFID.NPC.In = signal.Active(pc+4, 1)
		st.Pipe.IFID.PC.In = signal.Active(pc, 1)
	}

	st.StageMnemonic[0] = mnemonicFor(st.Instr.Value)
	st.CurrentMnemonic = st.StageMnemonic[0]
	st.PCNext = signal.Active(next, 1)

	if cfg.DebugInfo {
		logger.Printf("pipelined: IF=%q ID=%q EX=%q MEM=%q WB=%q stall=%v flush=%v forwardA=%d forwardB=%d",
			st.StageMnemonic[0], st.StageMnemonic[1], st.StageMnemonic[2], st.StageMnemonic[3], st.StageMnemonic[4],
			stall, flush, forwardASel, forwardBSel)
	}

	st.Pipe.LatchAll()
	return next, nil
}

// mnemonicFor disassembles a raw word for display, used to fill
// StageMnemonic from whatever word a pipeline register is carrying.
func mnemonicFor(word uint32) string {
	if word == 0 {
		return ""
	}
	return isa.Disassemble(word)
}
