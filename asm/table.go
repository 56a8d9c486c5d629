package asm

// instrEntry is one row of the assembler's mnemonic database: everything
// needed to encode an operand list into a 32-bit word. Separate from
// package isa's control table, mirroring the original C++ simulator's
// design (RISCVAssembler keeps its own instruction_db rather than sharing
// ControlUnit's control_table) — see DESIGN.md.
type instrEntry struct {
	mnemonic string
	format   byte // 'R','I','S','B','U','J'

	opcode uint32

	hasFunct3 bool
	funct3    uint32

	hasFunct7 bool
	funct7    uint32
}

// instrDB is the full RV32I + RV32M + Zicsr/fence mnemonic table the
// assembler accepts. RV32M and the CSR/fence rows assemble but are never
// executed by any datapath backend (spec.md's Non-goals scope out
// CSR/privilege machinery, and the ALU's fixed eight-op table has no path
// to RV32M's multiply/divide); carrying them here keeps the assembler
// faithful to `original_source/core/src/Assembler.cpp`'s instruction_db,
// which assembles a strictly larger set than ControlUnit executes. The
// fence/ecall/ebreak/csr rows use the generic I-type encoder, so they
// assemble only when written as "rd, rs1, imm"; operand-less forms fail.
var instrDB = []instrEntry{
	{"add", 'R', 0b0110011, true, 0b000, true, 0b0000000},
	{"sub", 'R', 0b0110011, true, 0b000, true, 0b0100000},
	{"sll", 'R', 0b0110011, true, 0b001, true, 0b0000000},
	{"slt", 'R', 0b0110011, true, 0b010, true, 0b0000000},
	{"sltu", 'R', 0b0110011, true, 0b011, true, 0b0000000},
	{"xor", 'R', 0b0110011, true, 0b100, true, 0b0000000},
	{"srl", 'R', 0b0110011, true, 0b101, true, 0b0000000},
	{"sra", 'R', 0b0110011, true, 0b101, true, 0b0100000},
	{"or", 'R', 0b0110011, true, 0b110, true, 0b0000000},
	{"and", 'R', 0b0110011, true, 0b111, true, 0b0000000},

	{"mul", 'R', 0b0110011, true, 0b000, true, 0b0000001},
	{"mulh", 'R', 0b0110011, true, 0b001, true, 0b0000001},
	{"mulhsu", 'R', 0b0110011, true, 0b010, true, 0b0000001},
	{"mulhu", 'R', 0b0110011, true, 0b011, true, 0b0000001},
	{"div", 'R', 0b0110011, true, 0b100, true, 0b0000001},
	{"divu", 'R', 0b0110011, true, 0b101, true, 0b0000001},
	{"rem", 'R', 0b0110011, true, 0b110, true, 0b0000001},
	{"remu", 'R', 0b0110011, true, 0b111, true, 0b0000001},

	{"addi", 'I', 0b0010011, true, 0b000, false, 0},
	{"lb", 'I', 0b0000011, true, 0b000, false, 0},
	{"lh", 'I', 0b0000011, true, 0b001, false, 0},
	{"lw", 'I', 0b0000011, true, 0b010, false, 0},
	{"lbu", 'I', 0b0000011, true, 0b100, false, 0},
	{"lhu", 'I', 0b0000011, true, 0b101, false, 0},
	{"fence", 'I', 0b0001111, true, 0b000, false, 0},
	{"fence.i", 'I', 0b0001111, true, 0b001, false, 0},
	{"slli", 'I', 0b0010011, true, 0b001, true, 0b0000000},
	{"slti", 'I', 0b0010011, true, 0b010, false, 0},
	{"sltiu", 'I', 0b0010011, true, 0b011, false, 0},
	{"xori", 'I', 0b0010011, true, 0b100, false, 0},
	{"srli", 'I', 0b0010011, true, 0b101, true, 0b0000000},
	{"srai", 'I', 0b0010011, true, 0b101, true, 0b0100000},
	{"ori", 'I', 0b0010011, true, 0b110, false, 0},
	{"andi", 'I', 0b0010011, true, 0b111, false, 0},
	{"jalr", 'I', 0b1100111, true, 0b000, false, 0},
	{"ecall", 'I', 0b1110011, true, 0b000, false, 0},
	{"ebreak", 'I', 0b1110011, true, 0b000, false, 0},
	{"csrrw", 'I', 0b1110011, true, 0b001, false, 0},
	{"csrrs", 'I', 0b1110011, true, 0b010, false, 0},
	{"csrrc", 'I', 0b1110011, true, 0b011, false, 0},
	{"csrrwi", 'I', 0b1110011, true, 0b101, false, 0},
	{"csrrsi", 'I', 0b1110011, true, 0b110, false, 0},
	{"csrrci", 'I', 0b1110011, true, 0b111, false, 0},

	{"sb", 'S', 0b0100011, true, 0b000, false, 0},
	{"sh", 'S', 0b0100011, true, 0b001, false, 0},
	{"sw", 'S', 0b0100011, true, 0b010, false, 0},

	{"beq", 'B', 0b1100011, true, 0b000, false, 0},
	{"bne", 'B', 0b1100011, true, 0b001, false, 0},
	{"blt", 'B', 0b1100011, true, 0b100, false, 0},
	{"bge", 'B', 0b1100011, true, 0b101, false, 0},
	{"bltu", 'B', 0b1100011, true, 0b110, false, 0},
	{"bgeu", 'B', 0b1100011, true, 0b111, false, 0},

	{"auipc", 'U', 0b0010111, false, 0, false, 0},
	{"lui", 'U', 0b0110111, false, 0, false, 0},

	{"jal", 'J', 0b1101111, false, 0, false, 0},
}

func lookupEntry(mnemonic string) (instrEntry, bool) {
	for _, e := range instrDB {
		if e.mnemonic == mnemonic {
			return e, true
		}
	}
	return instrEntry{}, false
}

// regMap maps every architectural name (x0..x31) and ABI alias to a
// register number, following the C++ original's reg_map table.
var regMap = map[string]uint8{
	"zero": 0, "x0": 0,
	"ra": 1, "x1": 1,
	"sp": 2, "x2": 2,
	"gp": 3, "x3": 3,
	"tp": 4, "x4": 4,
	"t0": 5, "x5": 5,
	"t1": 6, "x6": 6,
	"t2": 7, "x7": 7,
	"s0": 8, "fp": 8, "x8": 8,
	"s1": 9, "x9": 9,
	"a0": 10, "x10": 10,
	"a1": 11, "x11": 11,
	"a2": 12, "x12": 12,
	"a3": 13, "x13": 13,
	"a4": 14, "x14": 14,
	"a5": 15, "x15": 15,
	"a6": 16, "x16": 16,
	"a7": 17, "x17": 17,
	"s2": 18, "x18": 18,
	"s3": 19, "x19": 19,
	"s4": 20, "x20": 20,
	"s5": 21, "x21": 21,
	"s6": 22, "x22": 22,
	"s7": 23, "x23": 23,
	"s8": 24, "x24": 24,
	"s9": 25, "x25": 25,
	"s10": 26, "x26": 26,
	"s11": 27, "x27": 27,
	"t3": 28, "x28": 28,
	"t4": 29, "x29": 29,
	"t5": 30, "x30": 30,
	"t6": 31, "x31": 31,
}
