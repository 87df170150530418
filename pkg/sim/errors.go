package sim

import (
	"errors"
	"fmt"

	"github.com/switchsim/switchsim/pkg/lcp"
	"github.com/switchsim/switchsim/pkg/reducer"
)

// ErrorKind enumerates every failure mode a Run/StepForward call can report
// (spec.md SS7).
type ErrorKind int

const (
	AssemblerSingular ErrorKind = iota
	PivotDegenerate
	UnboundedRay
	IterationCap
	NonConvergent
	DCInitFailure
	StepFailure
	InvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case AssemblerSingular:
		return "AssemblerSingular"
	case PivotDegenerate:
		return "PivotDegenerate"
	case UnboundedRay:
		return "UnboundedRay"
	case IterationCap:
		return "IterationCap"
	case NonConvergent:
		return "NonConvergent"
	case DCInitFailure:
		return "DCInitFailure"
	case StepFailure:
		return "StepFailure"
	case InvalidInput:
		return "InvalidInput"
	default:
		return "Unknown"
	}
}

// SimError is the one error type Run/StepForward ever return for a
// simulation failure; Time is only meaningful for Kind==StepFailure.
type SimError struct {
	Kind ErrorKind
	Time float64
	Err  error
}

func (e *SimError) Error() string {
	if e.Kind == StepFailure {
		return fmt.Sprintf("sim: step failure at t=%g: %v", e.Time, e.Err)
	}
	return fmt.Sprintf("sim: %s: %v", e.Kind, e.Err)
}

func (e *SimError) Unwrap() error { return e.Err }

// classifyStepError maps a lower-layer error (reducer's ErrAssemblerSingular,
// an *lcp.SolveError, or anything else) into the SimError kind taxonomy,
// tagging it with the step time it occurred at.
func classifyStepError(t float64, err error) *SimError {
	if errors.Is(err, reducer.ErrAssemblerSingular) {
		return &SimError{Kind: AssemblerSingular, Time: t, Err: err}
	}
	var solveErr *lcp.SolveError
	if errors.As(err, &solveErr) {
		return &SimError{Kind: kindFromLCP(solveErr.Kind), Time: t, Err: err}
	}
	return &SimError{Kind: StepFailure, Time: t, Err: err}
}

func kindFromLCP(k lcp.ErrorKind) ErrorKind {
	switch k {
	case lcp.PivotDegenerate:
		return PivotDegenerate
	case lcp.UnboundedRay:
		return UnboundedRay
	case lcp.IterationCap:
		return IterationCap
	default:
		return NonConvergent
	}
}
