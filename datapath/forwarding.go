package datapath

// Forwarding-mux select codes, matching spec.md §4.8's "Forwarding unit"
// encoding: 00 from EX/MEM, 01 no forward (the ID/EX-latched value), 10
// from MEM/WB.
const (
	ForwardEXMEM uint8 = 0
	ForwardNone  uint8 = 1
	ForwardMEMWB uint8 = 2
)

// forwardCandidate is the subset of a downstream pipeline register's
// fields the forwarding unit needs to decide whether it is the producer
// of a given source register.
type forwardCandidate struct {
	valid bool
	brwr  uint8
	rd    uint8
	value uint32
}

// selectForward implements spec.md §4.8's operand-A/B select policy: the
// nearer producer (EX/MEM) wins over the farther one (MEM/WB); x0 is
// never a forwarding target since writes to it are always discarded.
func selectForward(rs uint8, noForward uint32, exmem, memwb forwardCandidate) (value uint32, sel uint8) {
	if rs != 0 && exmem.valid && exmem.brwr == 1 && exmem.rd == rs {
		return exmem.value, ForwardEXMEM
	}
	if rs != 0 && memwb.valid && memwb.brwr == 1 && memwb.rd == rs {
		return memwb.value, ForwardMEMWB
	}
	return noForward, ForwardNone
}
