package sim

import "errors"

// ErrHistoryUnavailable is returned by StepBack when the requested
// rewind point has already been dropped by a bounded history stack
// (spec.md §5 Budget).
var ErrHistoryUnavailable = errors.New("sim: step-back past the history cap is unavailable")
