// Package asm implements the two-pass (in practice four-phase) RISC-V
// assembler: preprocess, first pass (symbol table), second pass
// (label-to-offset rewrite), third pass (machine-word encode), then
// little-endian byte packing. Structure follows
// original_source/core/src/Assembler.cpp; see DESIGN.md.
package asm

import (
	"strconv"
	"strings"
)

// stmt is one logical assembly line, tagged with its original source line
// number for error reporting.
type stmt struct {
	text string
	line int
}

// Assembler turns RISC-V assembly text into a little-endian byte stream
// and exposes the symbol table built along the way.
type Assembler struct {
	symbols map[string]uint32
}

// New returns a ready-to-use Assembler.
func New() *Assembler { return &Assembler{symbols: map[string]uint32{}} }

// SymbolTable returns the label->address map built by the most recent
// successful Assemble call.
func (a *Assembler) SymbolTable() map[string]uint32 { return a.symbols }

// Assemble runs all four phases over source and returns the little-endian
// machine code bytes. On error, nothing is returned and the caller's
// program is not loaded (spec.md §7 propagation policy).
func (a *Assembler) Assemble(source string) ([]byte, error) {
	clean := preprocess(source)

	instrs, symbols, err := firstPass(clean)
	if err != nil {
		return nil, err
	}

	resolved, err := secondPass(instrs, symbols)
	if err != nil {
		return nil, err
	}

	words, err := thirdPass(resolved)
	if err != nil {
		return nil, err
	}
	a.symbols = symbols

	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return out, nil
}

// preprocess drops comments, lowercases, normalizes whitespace, replaces
// ,()  with spaces, and splits a label-bearing line into its own logical
// line, while preserving each logical line's original source line number.
func preprocess(source string) []stmt {
	var out []stmt
	for lineNo, raw := range strings.Split(source, "\n") {
		lineNo++ // 1-indexed

		line := raw
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.ToLower(line)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.NewReplacer(",", " ", "(", " ", ")", " ").Replace(line)
		line = strings.Join(strings.Fields(line), " ")

		if i := strings.IndexByte(line, ':'); i >= 0 {
			label := strings.TrimSpace(line[:i]) + ":"
			rest := strings.TrimSpace(line[i+1:])
			out = append(out, stmt{text: label, line: lineNo})
			if rest != "" {
				out = append(out, stmt{text: rest, line: lineNo})
			}
			continue
		}
		out = append(out, stmt{text: line, line: lineNo})
	}
	return out
}

// firstPass assigns addresses 0,4,8,... to instruction lines and binds
// labels to the current address in a symbol table.
func firstPass(clean []stmt) ([]stmt, map[string]uint32, error) {
	symbols := map[string]uint32{}
	var instrs []stmt
	var addr uint32

	for _, s := range clean {
		if strings.HasSuffix(s.text, ":") {
			label := strings.TrimSuffix(s.text, ":")
			if _, dup := symbols[label]; dup {
				return nil, nil, newErr(s.line, DuplicateLabel, "label %q already defined", label)
			}
			symbols[label] = addr
			continue
		}
		instrs = append(instrs, s)
		addr += 4
	}
	return instrs, symbols, nil
}

// secondPass replaces the trailing label operand of a B-type instruction,
// or jal's single operand, with the signed byte offset target-PC.
func secondPass(instrs []stmt, symbols map[string]uint32) ([]stmt, error) {
	out := make([]stmt, len(instrs))
	var pc uint32

	for i, s := range instrs {
		fields := strings.Fields(s.text)
		if len(fields) == 0 {
			out[i] = s
			pc += 4
			continue
		}
		mnemonic := fields[0]
		entry, known := lookupEntry(mnemonic)
		if known && (entry.format == 'B' || (entry.format == 'J' && mnemonic == "jal")) {
			labelIdx := len(fields) - 1
			label := fields[labelIdx]
			if target, ok := symbols[label]; ok {
				offset := int32(target) - int32(pc)
				fields[labelIdx] = strconv.Itoa(int(offset))
			}
		}
		out[i] = stmt{text: strings.Join(fields, " "), line: s.line}
		pc += 4
	}
	return out, nil
}

// thirdPass assembles each resolved line into one 32-bit machine word.
func thirdPass(resolved []stmt) ([]uint32, error) {
	words := make([]uint32, 0, len(resolved))
	for _, s := range resolved {
		w, err := assembleLine(s)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, nil
}

func assembleLine(s stmt) (uint32, error) {
	fields := strings.Fields(s.text)
	if len(fields) == 0 {
		return 0, nil
	}
	mnemonic := fields[0]
	if mnemonic == "nop" {
		return 0x00000013, nil
	}

	entry, ok := lookupEntry(mnemonic)
	if !ok {
		return 0, newErr(s.line, UnknownMnemonic, "unknown mnemonic %q", mnemonic)
	}

	ops := fields[1:]
	switch entry.format {
	case 'R':
		return encodeR(s.line, entry, ops)
	case 'I':
		return encodeI(s.line, entry, ops)
	case 'S':
		return encodeS(s.line, entry, ops)
	case 'B':
		return encodeB(s.line, entry, ops)
	case 'U':
		return encodeU(s.line, entry, ops)
	case 'J':
		return encodeJ(s.line, entry, ops)
	default:
		return 0, newErr(s.line, SyntaxError, "unsupported format for %q", mnemonic)
	}
}

func reg(line int, tok string) (uint8, error) {
	if n, ok := regMap[tok]; ok {
		return n, nil
	}
	return 0, newErr(line, BadRegister, "invalid register %q", tok)
}

func imm(line int, tok string) (int32, error) {
	n, err := strconv.ParseInt(tok, 0, 32)
	if err != nil {
		return 0, newErr(line, BadImmediate, "invalid immediate %q", tok)
	}
	return int32(n), nil
}

func encodeR(line int, e instrEntry, ops []string) (uint32, error) {
	if len(ops) != 3 {
		return 0, newErr(line, BadOperandCount, "%s expects 3 operands, got %d", e.mnemonic, len(ops))
	}
	rd, err := reg(line, ops[0])
	if err != nil {
		return 0, err
	}
	rs1, err := reg(line, ops[1])
	if err != nil {
		return 0, err
	}
	rs2, err := reg(line, ops[2])
	if err != nil {
		return 0, err
	}
	return (e.funct7 << 25) | (uint32(rs2) << 20) | (uint32(rs1) << 15) | (e.funct3 << 12) | (uint32(rd) << 7) | e.opcode, nil
}

func isShift(mnemonic string) bool {
	return mnemonic == "slli" || mnemonic == "srli" || mnemonic == "srai"
}

// isOffsetSyntax reports whether a mnemonic is written as "rd, offset(rs1)"
// — loads and jalr — rather than "rd, rs1, imm" (addi-family). After
// preprocess folds the parens into whitespace, this determines whether
// ops[1] is the immediate or the base register.
func isOffsetSyntax(e instrEntry) bool {
	return e.opcode == 0b0000011 || e.mnemonic == "jalr"
}

func encodeI(line int, e instrEntry, ops []string) (uint32, error) {
	var rd, rs1 uint8
	var immVal int32
	var err error

	rd, err = reg(line, orFirst(ops, 0))
	if err != nil {
		return 0, err
	}

	switch {
	case isShift(e.mnemonic):
		if len(ops) != 3 {
			return 0, newErr(line, BadOperandCount, "%s expects 3 operands, got %d", e.mnemonic, len(ops))
		}
		rs1, err = reg(line, ops[1])
		if err != nil {
			return 0, err
		}
		shamt, err := imm(line, ops[2])
		if err != nil {
			return 0, err
		}
		return (e.funct7 << 25) | (uint32(shamt)&0x1f)<<20 | (uint32(rs1) << 15) | (e.funct3 << 12) | (uint32(rd) << 7) | e.opcode, nil

	case isOffsetSyntax(e) && len(ops) == 3:
		// lw/jalr rd, offset(rs1) -- preprocess turns "offset(rs1)" into
		// two separate tokens, offset before rs1.
		immVal, err = imm(line, ops[1])
		if err != nil {
			return 0, err
		}
		rs1, err = reg(line, ops[2])
		if err != nil {
			return 0, err
		}

	case len(ops) == 3:
		// addi rd, rs1, imm
		rs1, err = reg(line, ops[1])
		if err != nil {
			return 0, err
		}
		immVal, err = imm(line, ops[2])
		if err != nil {
			return 0, err
		}

	default:
		return 0, newErr(line, BadOperandCount, "%s expects 3 operands, got %d", e.mnemonic, len(ops))
	}

	if immVal < -2048 || immVal > 2047 {
		return 0, newErr(line, BadImmediate, "immediate %d out of I-type range", immVal)
	}
	return (uint32(immVal)&0xfff)<<20 | (uint32(rs1) << 15) | (e.funct3 << 12) | (uint32(rd) << 7) | e.opcode, nil
}

func orFirst(ops []string, i int) string {
	if i < len(ops) {
		return ops[i]
	}
	return ""
}

func encodeS(line int, e instrEntry, ops []string) (uint32, error) {
	if len(ops) != 3 {
		return 0, newErr(line, BadOperandCount, "%s expects rs2, offset, rs1, got %d operands", e.mnemonic, len(ops))
	}
	rs2, err := reg(line, ops[0])
	if err != nil {
		return 0, err
	}
	immVal, err := imm(line, ops[1])
	if err != nil {
		return 0, err
	}
	rs1, err := reg(line, ops[2])
	if err != nil {
		return 0, err
	}
	if immVal < -2048 || immVal > 2047 {
		return 0, newErr(line, BadImmediate, "immediate %d out of S-type range", immVal)
	}
	u := uint32(immVal)
	return ((u>>5)&0x7f)<<25 | (uint32(rs2) << 20) | (uint32(rs1) << 15) | (e.funct3 << 12) | (u&0x1f)<<7 | e.opcode, nil
}

func encodeB(line int, e instrEntry, ops []string) (uint32, error) {
	if len(ops) != 3 {
		return 0, newErr(line, BadOperandCount, "%s expects rs1, rs2, offset, got %d operands", e.mnemonic, len(ops))
	}
	rs1, err := reg(line, ops[0])
	if err != nil {
		return 0, err
	}
	rs2, err := reg(line, ops[1])
	if err != nil {
		return 0, err
	}
	immVal, err := imm(line, ops[2])
	if err != nil {
		return 0, err
	}
	if immVal < -4096 || immVal > 4095 {
		return 0, newErr(line, BadImmediate, "branch offset %d out of range", immVal)
	}
	u := uint32(immVal)
	imm12 := (u >> 12) & 1
	imm10_5 := (u >> 5) & 0x3f
	imm4_1 := (u >> 1) & 0xf
	imm11 := (u >> 11) & 1
	return imm12<<31 | imm10_5<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | e.funct3<<12 | imm4_1<<8 | imm11<<7 | e.opcode, nil
}

func encodeU(line int, e instrEntry, ops []string) (uint32, error) {
	if len(ops) != 2 {
		return 0, newErr(line, BadOperandCount, "%s expects rd, imm, got %d operands", e.mnemonic, len(ops))
	}
	rd, err := reg(line, ops[0])
	if err != nil {
		return 0, err
	}
	immVal, err := strconv.ParseUint(ops[1], 0, 32)
	if err != nil {
		return 0, newErr(line, BadImmediate, "invalid immediate %q", ops[1])
	}
	return (uint32(immVal)&0xfffff)<<12 | uint32(rd)<<7 | e.opcode, nil
}

func encodeJ(line int, e instrEntry, ops []string) (uint32, error) {
	if len(ops) != 2 {
		return 0, newErr(line, BadOperandCount, "%s expects rd, offset, got %d operands", e.mnemonic, len(ops))
	}
	rd, err := reg(line, ops[0])
	if err != nil {
		return 0, err
	}
	immVal, err := imm(line, ops[1])
	if err != nil {
		return 0, err
	}
	if immVal < -(1<<20) || immVal > (1<<20)-1 {
		return 0, newErr(line, BadImmediate, "jal offset %d out of range", immVal)
	}
	u := uint32(immVal)
	imm20 := (u >> 20) & 1
	imm10_1 := (u >> 1) & 0x3ff
	imm11 := (u >> 11) & 1
	imm19_12 := (u >> 12) & 0xff
	return imm20<<31 | imm10_1<<21 | imm11<<20 | imm19_12<<12 | uint32(rd)<<7 | e.opcode, nil
}
