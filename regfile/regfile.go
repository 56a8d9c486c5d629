// Package regfile implements the RV32I integer register file: 32 words,
// x0 hardwired to zero, two read ports and one write port.
package regfile

// RegisterFile holds the 32 architectural integer registers.
type RegisterFile struct {
	regs [32]uint32
}

// ReadA and ReadB have identical semantics; the split name makes the two
// read ports explicit in traces and forwarding-mux selection.
func (r *RegisterFile) ReadA(idx uint8) uint32 { return r.read(idx) }
func (r *RegisterFile) ReadB(idx uint8) uint32 { return r.read(idx) }

func (r *RegisterFile) read(idx uint8) uint32 {
	if idx == 0 {
		return 0
	}
	return r.regs[idx]
}

// Write stores v at idx. A write to x0 is silently discarded.
func (r *RegisterFile) Write(idx uint8, v uint32) {
	if idx == 0 {
		return
	}
	r.regs[idx] = v
}

// Reset zeroes every register.
func (r *RegisterFile) Reset() {
	for i := range r.regs {
		r.regs[i] = 0
	}
}

// Snapshot returns a copy of all 32 registers, x0 included (always 0).
func (r *RegisterFile) Snapshot() [32]uint32 { return r.regs }

// Restore overwrites the register file from a prior Snapshot.
func (r *RegisterFile) Restore(s [32]uint32) { r.regs = s }
