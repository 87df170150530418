package lcp

import "fmt"

// ErrorKind enumerates the LCP-solver-specific failure modes (spec.md SS7).
// The solver never panics or returns a bare error for these — Solve always
// returns a Result with Converged=false and one of these kinds attached.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	PivotDegenerate
	UnboundedRay
	IterationCap
	NonConvergent
)

func (k ErrorKind) String() string {
	switch k {
	case PivotDegenerate:
		return "PivotDegenerate"
	case UnboundedRay:
		return "UnboundedRay"
	case IterationCap:
		return "IterationCap"
	case NonConvergent:
		return "NonConvergent"
	default:
		return "None"
	}
}

// SolveError wraps an ErrorKind with diagnostic context.
type SolveError struct {
	Kind ErrorKind
	Msg  string
}

func (e *SolveError) Error() string { return fmt.Sprintf("lcp: %s: %s", e.Kind, e.Msg) }

func newError(kind ErrorKind, format string, args ...any) *SolveError {
	return &SolveError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
