package sim

// IMemEntry pairs a raw instruction word with its disassembly, for
// display (spec.md §4.10 "get_i_mem").
type IMemEntry struct {
	Word     uint32
	Mnemonic string
}
