// Package datapath implements the three interchangeable execution engines
// sharing one signal.DatapathState: single-cycle, multi-cycle, and the
// five-stage pipelined backend with forwarding, load-use stalls, and
// branch flush. None of the three backends hold private state between
// calls — every field that must survive a cycle boundary lives in the
// caller-owned signal.DatapathState, regfile.RegisterFile, and mem.Memory
// values passed into Step, which is what makes sim.Simulator's snapshot
// history a plain deep copy of those values (spec.md §4.10).
package datapath

// Config carries the runtime toggles the original simulator exposed as
// compile-time switches (spec.md §9 Design Notes: "Re-specify them as
// runtime configuration carried by the Simulator").
type Config struct {
	LoadUseHazard bool
	Forwarding    bool
	BranchFlush   bool
	WriteFirst    bool

	// DebugInfo enables verbose per-cycle logging of the pipelined
	// backend's internal decisions (stall/flush/forward), distinct from
	// the always-on error-path logging every backend does regardless of
	// this flag (spec.md §9 Design Notes).
	DebugInfo bool
}

// DefaultConfig enables every mitigation, matching the original's stated
// defaults (spec.md §9 Open Questions: WRITEFIRST defaults true because
// the forwarding unit assumes it).
func DefaultConfig() Config {
	return Config{
		LoadUseHazard: true,
		Forwarding:    true,
		BranchFlush:   true,
		WriteFirst:    true,
		DebugInfo:     false,
	}
}
