package lcp

import "github.com/switchsim/switchsim/internal/consts"

// Options carries every tunable the solver needs, threaded explicitly
// rather than read from package state (spec.md SS5 "no global mutable
// state").
type Options struct {
	MaxIters int
	PivotTol float64
	ZeroTol  float64
	QPTol    float64
}

func DefaultOptions() Options {
	return Options{
		MaxIters: consts.DefaultLCPMaxIters,
		PivotTol: consts.DefaultLCPPivotTol,
		ZeroTol:  consts.DefaultLCPZeroTol,
		QPTol:    consts.DefaultQPTol,
	}
}

// Result is what both Lemke and the QP fallback (and the robust outer loop)
// return. Converged=false always carries a non-nil Err (spec.md SS7 "the LCP
// solver never throws; it returns a converged: bool with an error-kind tag").
type Result struct {
	Z          []float64
	W          []float64
	Iterations int
	Converged  bool
	Method     string
	Err        *SolveError
}
