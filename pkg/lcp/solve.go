package lcp

import (
	"math"

	"github.com/switchsim/switchsim/internal/consts"
	"github.com/switchsim/switchsim/pkg/linalg"
)

// Solve is the robust outer loop (spec.md SS4.5.3): try Lemke, then QP; on
// failure add progressive diagonal regularization r_k = 10^(k-9) for
// k in {1,2,3} and retry Lemke then QP at each level. M and q are cloned up
// front so the caller's matrices are never mutated. Only when every attempt
// fails does it return Converged=false with kind NonConvergent.
func Solve(m *linalg.Matrix, q linalg.Vector, opts Options) Result {
	baseM := m.Clone()
	baseQ := linalg.CloneVector(q)

	if res := Lemke(baseM, baseQ, opts); res.Converged {
		return res
	}
	if res := QP(baseM, baseQ, opts); res.Converged {
		return res
	}

	for k := 1; k <= 3; k++ {
		r := math.Pow(consts.RegularizationBase, float64(k)-consts.RegularizationExponentOffset)
		regM := baseM.Clone()
		for i := 0; i < regM.Rows; i++ {
			regM.Add(i, i, r)
		}

		if res := Lemke(regM, baseQ, opts); res.Converged {
			return res
		}
		if res := QP(regM, baseQ, opts); res.Converged {
			return res
		}
	}

	return Result{
		Converged: false,
		Method:    "robust",
		Err:       newError(NonConvergent, "Lemke and QP failed at all regularization levels"),
	}
}
