package sim

import "riscvsim/signal"

// Snapshot is the full simulator state captured before every step, so
// step_back can restore it verbatim (spec.md §4.10 "Snapshot").
type Snapshot struct {
	PC       uint32
	Regs     [32]uint32
	State    signal.DatapathState
	Cycle    uint64
	Mnemonic string
	DMem     []byte
}
