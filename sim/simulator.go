// Package sim implements the Simulator shell: the single owning value that
// holds the assembler, the three datapath backends, instruction/data
// memory, the register file, the live SignalRecord, and the step/step-back
// history stack (spec.md §4.10). Structurally it follows the teacher's
// cpu.Cpu: one struct owning everything, mutated in place by tick-shaped
// methods rather than returning a new value each call.
package sim

import (
	"encoding/json"
	"io"
	"log"
	"os"

	"riscvsim/asm"
	"riscvsim/cache"
	"riscvsim/datapath"
	"riscvsim/isa"
	"riscvsim/mem"
	"riscvsim/regfile"
	"riscvsim/signal"
)

const (
	cacheSize  = 256
	cacheBlock = 16
)

// Simulator owns every component of the microarchitecture engine. No
// component is ever aliased across a Simulator's lifetime: a snapshot
// handed out via GetState or GetStateJSON is always an independent copy
// (spec.md §5 "Shared resources: none").
type Simulator struct {
	cfg   Config
	model Model

	imem   *mem.Memory
	dmem   *mem.Memory
	iCache *cache.Cache
	dCache *cache.Cache

	regs  regfile.RegisterFile
	st    signal.DatapathState
	pc    uint32
	cycle uint64

	programWords uint32

	asmr *asm.Assembler

	single    datapath.SingleCycle
	multi     datapath.MultiCycle
	pipelined datapath.Pipelined

	history        []Snapshot
	historyPointer int
	droppedHistory int

	logger  *log.Logger
	logFile *os.File
}

// New allocates a Simulator with memSize bytes each of instruction and data
// memory (memSize must be a power of two, per mem.New), starting in model
// with the given configuration, then primes it exactly as Reset does.
func New(memSize uint32, model Model, cfg Config) *Simulator {
	s := &Simulator{
		cfg:  cfg,
		imem: mem.New(memSize),
		dmem: mem.New(memSize),
		asmr: asm.New(),
	}
	s.logger, s.logFile = openLog()

	if ic, err := cache.New(cache.RoleInstruction, cacheSize, cacheBlock, s.imem); err != nil {
		s.logger.Printf("sim: instruction cache unavailable: %v", err)
	} else {
		s.iCache = ic
	}
	if dc, err := cache.New(cache.RoleData, cacheSize, cacheBlock, s.dmem); err != nil {
		s.logger.Printf("sim: data cache unavailable: %v", err)
	} else {
		s.dCache = dc
	}

	s.Reset(model, 0)
	return s
}

// openLog opens simulator.log for append, matching spec.md §6 "Files": a
// failure to open is non-fatal, falling back to a discarding logger.
func openLog() (*log.Logger, *os.File) {
	f, err := os.OpenFile("simulator.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return log.New(io.Discard, "", 0), nil
	}
	return log.New(f, "", log.LstdFlags), f
}

// Close releases the simulator's open log file. Safe to call on a
// Simulator whose log failed to open.
func (s *Simulator) Close() error {
	if s.logFile == nil {
		return nil
	}
	return s.logFile.Close()
}

// Model reports the active datapath backend.
func (s *Simulator) Model() Model { return s.model }

// LoadProgram clears instruction memory and loads program at address 0.
// An empty program just clears memory (spec.md §4.10).
func (s *Simulator) LoadProgram(program []byte) error {
	s.imem.Clear()
	s.programWords = 0
	if len(program) == 0 {
		return nil
	}
	if err := s.imem.LoadProgram(program, 0); err != nil {
		return err
	}
	s.programWords = uint32(len(program)) / 4
	return nil
}

// LoadProgramText assembles text and loads the resulting bytes (spec.md
// §4.10 "the assembly form runs the Assembler"). On an assemble error the
// program is not loaded, per spec.md §7 propagation policy.
func (s *Simulator) LoadProgramText(text string) error {
	program, err := s.asmr.Assemble(text)
	if err != nil {
		return err
	}
	return s.LoadProgram(program)
}

// Assemble delegates to the assembler without loading the result.
func (s *Simulator) Assemble(text string) ([]byte, error) {
	return s.asmr.Assemble(text)
}

// SymbolTable returns the label table built by the most recent successful
// Assemble or LoadProgramText call.
func (s *Simulator) SymbolTable() map[string]uint32 {
	return s.asmr.SymbolTable()
}

// Reset zeroes the register file, clears data memory (instruction memory
// is left alone: a loaded program survives a reset), clears history, sets
// PC to initialPC floored to word alignment, reinitializes the signal
// record with only the PC/PC+4 buses live, then runs one step so the
// caller sees the first instruction already in IF (spec.md §4.10,
// invariant 5).
func (s *Simulator) Reset(model Model, initialPC uint32) {
	s.model = model
	s.regs.Reset()
	s.dmem.Clear()
	s.history = s.history[:0]
	s.historyPointer = 0
	s.droppedHistory = 0
	s.cycle = 0
	s.pc = initialPC &^ 0x3
	s.st.Reset(s.pc)

	if err := s.Step(); err != nil {
		s.logger.Printf("sim: reset's priming step failed: %v", err)
	}
}

// Step snapshots the current state into history, truncating any future
// snapshots beyond the history pointer, then advances one cycle using the
// active model (spec.md §4.10).
func (s *Simulator) Step() error {
	s.pushHistory()
	err := s.advance()
	s.cycle++
	return err
}

func (s *Simulator) pushHistory() {
	s.history = append(s.history[:s.historyPointer], s.snapshot())
	s.historyPointer++
	if s.cfg.HistoryCap > 0 && len(s.history) > s.cfg.HistoryCap {
		s.history = s.history[1:]
		s.historyPointer--
		s.droppedHistory++
	}
}

func (s *Simulator) snapshot() Snapshot {
	return Snapshot{
		PC:       s.pc,
		Regs:     s.regs.Snapshot(),
		State:    s.st,
		Cycle:    s.cycle,
		Mnemonic: s.st.CurrentMnemonic,
		DMem:     append([]byte(nil), s.dmem.Bytes()...),
	}
}

func (s *Simulator) restore(snap Snapshot) {
	s.pc = snap.PC
	s.regs.Restore(snap.Regs)
	s.st = snap.State
	s.cycle = snap.Cycle
	copy(s.dmem.Bytes(), snap.DMem)
}

// StepBack decrements the history pointer and restores every field from
// that snapshot. It is a no-op, never an error, when no step has been
// taken yet. If the history stack is bounded and the requested rewind
// point has already been dropped, it reports ErrHistoryUnavailable rather
// than silently restoring the wrong state (spec.md §5 Budget).
func (s *Simulator) StepBack() error {
	if s.historyPointer == 0 {
		if s.droppedHistory > 0 {
			return ErrHistoryUnavailable
		}
		return nil
	}
	s.historyPointer--
	s.restore(s.history[s.historyPointer])
	return nil
}

func (s *Simulator) advance() error {
	var next uint32
	var err error
	switch s.model {
	case ModelPipelined:
		next, err = s.pipelined.Step(s.pc, &s.regs, s.imem, s.dmem, &s.st, s.cfg.Config, s.logger)
	case ModelMultiCycle:
		next, err = s.multi.Step(s.pc, &s.regs, s.imem, s.dmem, &s.st, s.logger)
	case ModelGeneral:
		next, err = s.stepGeneral()
	default:
		next, err = s.single.Step(s.pc, &s.regs, s.imem, s.dmem, &s.st, s.logger)
	}
	s.pc = next
	return err
}

// stepGeneral executes through the single-cycle engine (spec.md §9 Open
// Questions: the General model is "cache-backed, no microarchitecture")
// and mirrors every bus access it made into the instruction/data caches,
// so the cache lines track the program's accesses even though correctness
// is decided by the direct memory path. The caches keep no hit/miss
// counters.
func (s *Simulator) stepGeneral() (uint32, error) {
	next, err := s.single.Step(s.pc, &s.regs, s.imem, s.dmem, &s.st, s.logger)

	if s.iCache != nil && s.st.Instr.IsActive {
		if _, cerr := s.iCache.ReadWord(s.st.PC.Value); cerr != nil {
			s.logger.Printf("sim: general-model instruction cache fetch failed at pc=0x%08x: %v", s.st.PC.Value, cerr)
		}
	}
	if s.dCache != nil {
		switch {
		case s.st.MemWriteData.IsActive:
			if cerr := s.dCache.WriteWord(s.st.MemAddress.Value, s.st.MemWriteData.Value); cerr != nil {
				s.logger.Printf("sim: general-model data cache write failed at addr=0x%08x: %v", s.st.MemAddress.Value, cerr)
			}
		case s.st.MemReadData.IsActive:
			if _, cerr := s.dCache.ReadWord(s.st.MemAddress.Value); cerr != nil {
				s.logger.Printf("sim: general-model data cache read failed at addr=0x%08x: %v", s.st.MemAddress.Value, cerr)
			}
		}
	}
	return next, err
}

// GetPC returns the current program counter.
func (s *Simulator) GetPC() uint32 { return s.pc }

// GetState returns a copy of the live signal record, for renderers that
// want direct field access rather than the JSON form.
func (s *Simulator) GetState() signal.DatapathState { return s.st }

// GetCycle returns the number of Step calls executed since the last
// Reset.
func (s *Simulator) GetCycle() uint64 { return s.cycle }

// GetStatusRegister packs the current cycle's condition bits into one
// word for display; RV32I has no architectural flags register, so this
// exposes the datapath's own derived condition bits (branch-taken, ALU
// zero, stall, flush) instead, bit 0 upward in that order.
func (s *Simulator) GetStatusRegister() uint32 {
	var w uint32
	if s.st.BranchTaken.Value {
		w |= 1 << 0
	}
	if s.st.ALUZero.Value {
		w |= 1 << 1
	}
	if s.st.Stall.Value {
		w |= 1 << 2
	}
	if s.st.Flush.Value {
		w |= 1 << 3
	}
	return w
}

// GetAllRegisters returns a copy of the 32 architectural registers.
func (s *Simulator) GetAllRegisters() [32]uint32 { return s.regs.Snapshot() }

// GetDMem returns a copy of data memory.
func (s *Simulator) GetDMem() []byte { return append([]byte(nil), s.dmem.Bytes()...) }

// GetIMem disassembles every loaded instruction word for display.
func (s *Simulator) GetIMem() []IMemEntry {
	entries := make([]IMemEntry, 0, s.programWords)
	for i := uint32(0); i < s.programWords; i++ {
		w, err := s.imem.ReadWord(i*4, false)
		if err != nil {
			s.logger.Printf("sim: GetIMem read failed at 0x%08x: %v", i*4, err)
			break
		}
		entries = append(entries, IMemEntry{Word: w, Mnemonic: isa.Disassemble(w)})
	}
	return entries
}

// GetStateJSON marshals the current SignalRecord to JSON (spec.md §6;
// per SPEC_FULL.md §8 the actual FFI/C-ABI boundary is out of scope, so
// this returns a Go string rather than crossing into cgo).
func (s *Simulator) GetStateJSON() (string, error) {
	b, err := json.Marshal(s.st)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
