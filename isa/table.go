package isa

// InstructionInfo is the static per-opcode descriptor consulted by every
// datapath backend: mnemonic, format, mask/match for decode, and the seven
// control signals (spec.md §3).
type InstructionInfo struct {
	Mnemonic string
	Format   Format

	Mask  uint32
	Match uint32

	PCsrc  uint8
	BRwr   uint8
	ALUsrc uint8
	ALUctr int8 // DontCare (-1) when ResSrc gates the ALU result out
	MemWr  uint8
	ResSrc uint8
	ImmSrc uint8

	// Cycles is consulted only by the multi-cycle backend. Every row of
	// Table leaves it 0, so MultiCycle derives the count instead: 5 for
	// loads, 4 for every other instruction.
	Cycles uint8
}

// row is the source literal this package's control table is generated from;
// Mask/Match are derived once at init time the way ControlUnit's C++
// original assembles a mask/match pair per table row, rather than being
// hand-computed and hardcoded per entry.
type row struct {
	mnemonic string
	format   Format
	opcode   uint32
	funct3   int32 // -1 = not part of the match
	funct7   int32 // -1 = not part of the match

	pcsrc  uint8
	brwr   uint8
	alusrc uint8
	aluctr int8
	memwr  uint8
	ressrc uint8
	immsrc uint8
	cycles uint8
}

func buildMaskMatch(r row) (mask, match uint32) {
	mask = 0x7f
	match = r.opcode & 0x7f
	if r.funct3 >= 0 {
		mask |= 0x7000
		match |= uint32(r.funct3) << 12
	}
	if r.funct7 >= 0 {
		mask |= 0xfe000000
		match |= uint32(r.funct7) << 25
	}
	return mask, match
}

// ALU selector constants, matching package alu's Func constants by value so
// InstructionInfo.ALUctr can be fed straight into alu.Compute without a
// translation step.
const (
	aluAdd = 0
	aluSub = 1
	aluAnd = 2
	aluOr  = 3
	aluSlt = 4
	aluSrl = 5
	aluSll = 6
	aluSra = 7
)

// controlRows is the RV32I-base control table: every instruction the three
// datapath backends actually execute. spec.md §4.4 fixes the ALU at exactly
// eight selector codes (add, sub, and, or, slt, srl, sll, sra) with no slot
// for xor or an unsigned comparison; RISC-V's xor/sltu/bltu/bgeu therefore
// have no faithful single-cycle ALU encoding under this design and are
// intentionally left out of this table (same treatment as RV32M: package
// asm still accepts and encodes their mnemonics, but no control row drives
// them, so isa.Decode reports them unrecognized and the simulator's
// per-step recovery turns them into a logged NOP — see DESIGN.md Open
// Question decisions).
var controlRows = []row{
	// R-type
	{"add", FormatR, 0b0110011, 0b000, 0b0000000, PCNext4, 1, 0, aluAdd, 0, ResALU, 0, 0},
	{"sub", FormatR, 0b0110011, 0b000, 0b0100000, PCNext4, 1, 0, aluSub, 0, ResALU, 0, 0},
	{"sll", FormatR, 0b0110011, 0b001, 0b0000000, PCNext4, 1, 0, aluSll, 0, ResALU, 0, 0},
	{"slt", FormatR, 0b0110011, 0b010, 0b0000000, PCNext4, 1, 0, aluSlt, 0, ResALU, 0, 0},
	{"srl", FormatR, 0b0110011, 0b101, 0b0000000, PCNext4, 1, 0, aluSrl, 0, ResALU, 0, 0},
	{"sra", FormatR, 0b0110011, 0b101, 0b0100000, PCNext4, 1, 0, aluSra, 0, ResALU, 0, 0},
	{"or", FormatR, 0b0110011, 0b110, 0b0000000, PCNext4, 1, 0, aluOr, 0, ResALU, 0, 0},
	{"and", FormatR, 0b0110011, 0b111, 0b0000000, PCNext4, 1, 0, aluAnd, 0, ResALU, 0, 0},

	// I-type ALU
	{"addi", FormatI, 0b0010011, 0b000, -1, PCNext4, 1, 1, aluAdd, 0, ResALU, ImmI, 0},
	{"slti", FormatI, 0b0010011, 0b010, -1, PCNext4, 1, 1, aluSlt, 0, ResALU, ImmI, 0},
	{"ori", FormatI, 0b0010011, 0b110, -1, PCNext4, 1, 1, aluOr, 0, ResALU, ImmI, 0},
	{"andi", FormatI, 0b0010011, 0b111, -1, PCNext4, 1, 1, aluAnd, 0, ResALU, ImmI, 0},
	{"slli", FormatI, 0b0010011, 0b001, 0b0000000, PCNext4, 1, 1, aluSll, 0, ResALU, ImmI, 0},
	{"srli", FormatI, 0b0010011, 0b101, 0b0000000, PCNext4, 1, 1, aluSrl, 0, ResALU, ImmI, 0},
	{"srai", FormatI, 0b0010011, 0b101, 0b0100000, PCNext4, 1, 1, aluSra, 0, ResALU, ImmI, 0},

	// I-type loads
	{"lb", FormatI, 0b0000011, 0b000, -1, PCNext4, 1, 1, aluAdd, 0, ResMem, ImmI, 0},
	{"lh", FormatI, 0b0000011, 0b001, -1, PCNext4, 1, 1, aluAdd, 0, ResMem, ImmI, 0},
	{"lw", FormatI, 0b0000011, 0b010, -1, PCNext4, 1, 1, aluAdd, 0, ResMem, ImmI, 0},
	{"lbu", FormatI, 0b0000011, 0b100, -1, PCNext4, 1, 1, aluAdd, 0, ResMem, ImmI, 0},
	{"lhu", FormatI, 0b0000011, 0b101, -1, PCNext4, 1, 1, aluAdd, 0, ResMem, ImmI, 0},

	// jalr
	{"jalr", FormatI, 0b1100111, 0b000, -1, PCJalr, 1, 1, aluAdd, 0, ResPC4, ImmI, 0},

	// S-type
	{"sb", FormatS, 0b0100011, 0b000, -1, PCNext4, 0, 1, aluAdd, 1, ResDontCare, ImmS, 0},
	{"sh", FormatS, 0b0100011, 0b001, -1, PCNext4, 0, 1, aluAdd, 1, ResDontCare, ImmS, 0},
	{"sw", FormatS, 0b0100011, 0b010, -1, PCNext4, 0, 1, aluAdd, 1, ResDontCare, ImmS, 0},

	// B-type: condition(funct3, alu_zero) is evaluated by the datapath
	// from an ALU subtract (spec.md §4.7 step 8); bge reuses slt and
	// inverts the zero-equivalent condition in the datapath branch logic.
	{"beq", FormatB, 0b1100011, 0b000, -1, PCBranch, 0, 0, aluSub, 0, ResDontCare, ImmB, 0},
	{"bne", FormatB, 0b1100011, 0b001, -1, PCBranch, 0, 0, aluSub, 0, ResDontCare, ImmB, 0},
	{"blt", FormatB, 0b1100011, 0b100, -1, PCBranch, 0, 0, aluSlt, 0, ResDontCare, ImmB, 0},
	{"bge", FormatB, 0b1100011, 0b101, -1, PCBranch, 0, 0, aluSlt, 0, ResDontCare, ImmB, 0},

	// U-type. Both pass the 20-bit upper immediate straight through the ALU
	// as an add: lui adds it to a zero A-operand, auipc adds it to PC. The
	// datapath special-cases the A-operand source for these two mnemonics
	// (ALUctr must be a real opcode, not DontCare, since ResSrc reads the
	// ALU result for both).
	{"lui", FormatU, 0b0110111, -1, -1, PCNext4, 1, 1, aluAdd, 0, ResALU, ImmU, 0},
	{"auipc", FormatU, 0b0010111, -1, -1, PCNext4, 1, 1, aluAdd, 0, ResALU, ImmU, 0},

	// J-type
	{"jal", FormatJ, 0b1101111, -1, -1, PCBranch, 1, 0, DontCare, 0, ResPC4, ImmJ, 0},
}

// Table is the fully built, immutable control table, one InstructionInfo
// per executable RV32I opcode.
var Table []InstructionInfo

func init() {
	Table = make([]InstructionInfo, len(controlRows))
	for i, r := range controlRows {
		mask, match := buildMaskMatch(r)
		Table[i] = InstructionInfo{
			Mnemonic: r.mnemonic,
			Format:   r.format,
			Mask:     mask,
			Match:    match,
			PCsrc:    r.pcsrc,
			BRwr:     r.brwr,
			ALUsrc:   r.alusrc,
			ALUctr:   r.aluctr,
			MemWr:    r.memwr,
			ResSrc:   r.ressrc,
			ImmSrc:   r.immsrc,
			Cycles:   r.cycles,
		}
	}
}

// Decode scans the control table for the first row whose mask/match matches
// instr. It returns nil when the instruction is not recognized.
func Decode(instr uint32) *InstructionInfo {
	for i := range Table {
		if instr&Table[i].Mask == Table[i].Match {
			return &Table[i]
		}
	}
	return nil
}

// Lookup returns the control-table row for mnemonic, used by tests and by
// callers that already know the mnemonic.
func Lookup(mnemonic string) (InstructionInfo, bool) {
	for _, info := range Table {
		if info.Mnemonic == mnemonic {
			return info, true
		}
	}
	return InstructionInfo{}, false
}
