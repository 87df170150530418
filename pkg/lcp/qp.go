package lcp

import (
	"math"

	"github.com/switchsim/switchsim/internal/consts"
	"github.com/switchsim/switchsim/pkg/linalg"
)

// QP solves the same w = M z + q, w,z >= 0, w.z = 0 problem as Lemke via a
// primal-dual log-barrier interior-point method on the KKT system of
// min 1/2 z^T M z + q^T z s.t. M z + q >= 0, z >= 0 (spec.md SS4.5.2). The
// slack s is not tracked as an independent variable: it is always
// recomputed as s = M z + q, so the only residual is the barrier
// complementarity z_i s_i - mu, eliminating any separate feasibility
// residual by construction.
func QP(m *linalg.Matrix, q linalg.Vector, opts Options) Result {
	n := len(q)
	if n == 0 {
		return Result{Z: []float64{}, W: []float64{}, Converged: true, Method: "qp"}
	}

	z, s, ok := initStrictlyFeasible(m, q)
	if !ok {
		return Result{Converged: false, Method: "qp", Err: newError(NonConvergent, "could not find a strictly feasible starting point")}
	}

	mu := consts.QPBarrierInit
	for iter := 1; iter <= opts.MaxIters; iter++ {
		if hasNaN(z) || hasNaN(s) {
			return Result{Converged: false, Method: "qp", Err: newError(NonConvergent, "NaN detected at iteration %d", iter)}
		}

		gap := dot(z, s)
		residual := complementarityResidual(z, s, mu)
		feasViol := feasibilityViolation(z, s)
		if residual < opts.QPTol && gap < opts.QPTol && feasViol < opts.QPTol && mu <= consts.QPBarrierFloor {
			w := make(linalg.Vector, n)
			for i := range w {
				w[i] = s[i]
			}
			return Result{Z: z, W: w, Iterations: iter, Converged: true, Method: "qp"}
		}

		j := newtonJacobian(m, z, s)
		lu, condOK := factorWithRegularization(j)
		if !condOK {
			return Result{Converged: false, Method: "qp", Err: newError(NonConvergent, "Newton system singular even after regularization at iteration %d", iter)}
		}

		rhs := make(linalg.Vector, n)
		for i := 0; i < n; i++ {
			rhs[i] = -(z[i]*s[i] - mu)
		}
		dz, err := lu.Solve(rhs)
		if err != nil {
			return Result{Converged: false, Method: "qp", Err: newError(NonConvergent, "Newton solve failed: %v", err)}
		}

		alpha := backtrack(m, q, z, dz)
		if alpha <= 0 {
			return Result{Converged: false, Method: "qp", Err: newError(NonConvergent, "line search could not keep z,s positive at iteration %d", iter)}
		}
		for i := 0; i < n; i++ {
			z[i] += alpha * dz[i]
		}
		s = m.Gemv(z)
		for i := range s {
			s[i] += q[i]
		}

		if iter%consts.QPBarrierEveryIters == 0 {
			mu *= consts.QPBarrierShrink
			if mu < consts.QPBarrierFloor {
				mu = consts.QPBarrierFloor
			}
		}
	}

	return Result{Converged: false, Method: "qp", Err: newError(IterationCap, "exceeded max_iters without satisfying barrier convergence")}
}

func initStrictlyFeasible(m *linalg.Matrix, q linalg.Vector) (linalg.Vector, linalg.Vector, bool) {
	n := len(q)
	z := make(linalg.Vector, n)
	for i := range z {
		z[i] = 1
	}
	scale := 1.0
	for attempt := 0; attempt < 60; attempt++ {
		s := m.Gemv(z)
		for i := range s {
			s[i] += q[i]
		}
		if allPositive(z) && allPositive(s) {
			return z, s, true
		}
		scale *= 2
		for i := range z {
			z[i] = scale
		}
	}
	return nil, nil, false
}

func newtonJacobian(m *linalg.Matrix, z, s linalg.Vector) *linalg.Matrix {
	n := len(z)
	j := linalg.NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for col := 0; col < n; col++ {
			j.Set(i, col, z[i]*m.Get(i, col))
		}
		j.Add(i, i, s[i])
	}
	return j
}

func factorWithRegularization(j *linalg.Matrix) (*linalg.LU, bool) {
	lu, err := linalg.Factor(j, consts.DefaultPivotTol)
	if err == nil && lu.ConditionEstimate(j) <= consts.QPConditionCeiling {
		return lu, true
	}
	reg := j.Clone()
	for i := 0; i < reg.Rows; i++ {
		reg.Add(i, i, consts.QPDiagRegularizer)
	}
	lu, err = linalg.Factor(reg, consts.DefaultPivotTol)
	if err != nil {
		return nil, false
	}
	return lu, true
}

// backtrack finds the largest alpha in (0,1] (halving from 1) keeping
// z+alpha*dz and its implied slack strictly positive.
func backtrack(m *linalg.Matrix, q, z, dz linalg.Vector) float64 {
	alpha := 1.0
	for try := 0; try < 60; try++ {
		ok := true
		trial := make(linalg.Vector, len(z))
		for i := range z {
			trial[i] = z[i] + alpha*dz[i]
			if trial[i] <= 0 {
				ok = false
				break
			}
		}
		if ok {
			s := m.Gemv(trial)
			for i := range s {
				if s[i]+q[i] <= 0 {
					ok = false
					break
				}
			}
		}
		if ok {
			return alpha
		}
		alpha *= 0.5
	}
	return 0
}

func dot(a, b linalg.Vector) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func complementarityResidual(z, s linalg.Vector, mu float64) float64 {
	maxAbs := 0.0
	for i := range z {
		v := math.Abs(z[i]*s[i] - mu)
		if v > maxAbs {
			maxAbs = v
		}
	}
	return maxAbs
}

func feasibilityViolation(z, s linalg.Vector) float64 {
	v := 0.0
	for i := range z {
		if z[i] < 0 && -z[i] > v {
			v = -z[i]
		}
		if s[i] < 0 && -s[i] > v {
			v = -s[i]
		}
	}
	return v
}

func allPositive(v linalg.Vector) bool {
	for _, x := range v {
		if x <= 0 {
			return false
		}
	}
	return true
}

func hasNaN(v linalg.Vector) bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}
