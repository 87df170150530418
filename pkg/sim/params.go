package sim

import (
	"fmt"

	"github.com/switchsim/switchsim/internal/consts"
	"github.com/switchsim/switchsim/pkg/device"
	"github.com/switchsim/switchsim/pkg/lcp"
)

// Params carries every run-level tunable into Run/InitializeStepped, the
// same "threaded explicitly, never read off a global" discipline the
// teacher's CircuitStatus and BaseAnalysis.convergence follow (spec.md SS6).
type Params struct {
	StartTime, StopTime, TimeStep float64
	Method                        device.Method
	Gmin                          float64
	LCPMaxIters                   int
	LCPPivotTol                   float64
	LCPZeroTol                    float64
	QPTol                         float64
	// UseRobustSolver selects Solve (Lemke, then QP, then progressive
	// regularization) over plain Lemke. nil means "unset" and defaults to
	// true (spec.md SS6); a bare bool can't tell unset apart from explicit
	// false, so this is a pointer.
	UseRobustSolver *bool
	Debug           bool

	// Cancel, if non-nil, is polled once between accepted steps in Run's
	// batch loop (spec.md SS5 "cancellation... checked between steps only").
	Cancel <-chan struct{}
}

func boolPtr(b bool) *bool { return &b }

func (p Params) withDefaults() Params {
	if p.Gmin <= 0 {
		p.Gmin = consts.DefaultGmin
	}
	if p.LCPMaxIters <= 0 {
		p.LCPMaxIters = consts.DefaultLCPMaxIters
	}
	if p.LCPPivotTol <= 0 {
		p.LCPPivotTol = consts.DefaultLCPPivotTol
	}
	if p.LCPZeroTol <= 0 {
		p.LCPZeroTol = consts.DefaultLCPZeroTol
	}
	if p.QPTol <= 0 {
		p.QPTol = consts.DefaultQPTol
	}
	if p.UseRobustSolver == nil {
		p.UseRobustSolver = boolPtr(true)
	}
	return p
}

func (p Params) lcpOptions() lcp.Options {
	return lcp.Options{
		MaxIters: p.LCPMaxIters,
		PivotTol: p.LCPPivotTol,
		ZeroTol:  p.LCPZeroTol,
		QPTol:    p.QPTol,
	}
}

func (p Params) validate() error {
	if p.TimeStep <= 0 {
		return &SimError{Kind: InvalidInput, Err: fmt.Errorf("time_step must be positive, got %g", p.TimeStep)}
	}
	if p.StopTime <= p.StartTime {
		return &SimError{Kind: InvalidInput, Err: fmt.Errorf("stop_time (%g) must exceed start_time (%g)", p.StopTime, p.StartTime)}
	}
	return nil
}
