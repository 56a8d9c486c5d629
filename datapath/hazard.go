package datapath

import "riscvsim/isa"

// loadUseHazard reports whether the load currently in EX (described by
// ID/EX's Out control/RD, i.e. the instruction ID let into EX on the
// previous clock edge) will produce a value that the instruction now
// being decoded in ID needs one cycle too early (spec.md §4.8 "Load-use
// hazard detector").
func loadUseHazard(idexResSrc uint8, idexBrwr uint8, idexRD uint8, ifidRS1, ifidRS2 uint8) bool {
	isLoad := idexResSrc == isa.ResMem && idexBrwr == 1
	if !isLoad || idexRD == 0 {
		return false
	}
	return idexRD == ifidRS1 || idexRD == ifidRS2
}
