package sim

// Model selects which datapath backend executes a step (spec.md §6
// "Pipeline-model enumeration"). The numeric values match the order the
// original simulator exposed them in across its foreign-function boundary.
type Model int

const (
	ModelSingleCycle Model = iota
	ModelMultiCycle
	ModelPipelined
	// ModelGeneral selects cache-backed unified memory access but
	// executes through the single-cycle engine (spec.md §9 Open
	// Questions: "not fully in scope here").
	ModelGeneral
)

func (m Model) String() string {
	switch m {
	case ModelSingleCycle:
		return "single"
	case ModelMultiCycle:
		return "multi"
	case ModelPipelined:
		return "pipelined"
	case ModelGeneral:
		return "general"
	default:
		return "unknown"
	}
}
