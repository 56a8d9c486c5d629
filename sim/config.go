package sim

import "riscvsim/datapath"

// Config is the simulator-wide configuration: the pipelined backend's
// hazard/forwarding/flush/debug-log toggles (embedded from
// datapath.Config) plus the history cap. spec.md §9 Design Notes
// re-specifies the original's compile-time `#define`s as runtime,
// constructor-time fields carried by the Simulator.
type Config struct {
	datapath.Config

	// HistoryCap bounds the step-back stack. 0 means unbounded (spec.md
	// §5 Budget: "An implementation may cap it ... but must then report
	// that a step-back past the cap is unavailable").
	HistoryCap int
}

// DefaultConfig enables every pipelined mitigation and write-first
// register semantics, leaves debug logging off, and sets an unbounded
// history stack.
func DefaultConfig() Config {
	return Config{
		Config:     datapath.DefaultConfig(),
		HistoryCap: 0,
	}
}
