package lcp

import (
	"math"

	"github.com/switchsim/switchsim/pkg/linalg"
)

// Lemke solves w - M z = q, w,z >= 0, w.z = 0 by complementary pivoting
// (spec.md SS4.5.1). The tableau tracks all 2n+1 non-artificial-rhs
// variables (w_0..w_{n-1}, z_0..z_{n-1}, the artificial z0) across n rows,
// Gauss-Jordan style, with the basic-variable index for each row kept in
// basis[].
//
// Per spec.md SS9's resolution of the "trivial solution" open question: the
// algorithm always attempts the non-trivial pivot path, even when q >= 0
// admits a trivial z=0 solution; that trivial solution is recorded up front
// and used only as the fallback if pivoting itself fails.
func Lemke(m *linalg.Matrix, q linalg.Vector, opts Options) Result {
	n := len(q)
	if n == 0 {
		return Result{Z: []float64{}, W: []float64{}, Converged: true, Method: "lemke"}
	}

	trivialOK := true
	for _, qi := range q {
		if qi < 0 {
			trivialOK = false
			break
		}
	}
	trivial := Result{
		Z:         make([]float64, n),
		W:         linalg.CloneVector(q),
		Converged: true,
		Method:    "lemke-trivial",
	}

	nCols := 2*n + 2
	z0Col := 2 * n
	rhs := 2*n + 1

	t := linalg.NewMatrix(n, nCols)
	for i := 0; i < n; i++ {
		t.Set(i, i, 1) // w_i identity block
		for j := 0; j < n; j++ {
			t.Set(i, n+j, -m.Get(i, j))
		}
		t.Set(i, z0Col, -1)
		t.Set(i, rhs, q[i])
	}

	basis := make([]int, n)
	for i := range basis {
		basis[i] = i // w_i basic in row i
	}

	complement := func(col int) int {
		switch {
		case col < n:
			return n + col
		case col < 2*n:
			return col - n
		default:
			return -1 // z0 has no complement
		}
	}

	pivot := func(row, col int) {
		pv := t.Get(row, col)
		for j := 0; j < nCols; j++ {
			t.Set(row, j, t.Get(row, j)/pv)
		}
		for i := 0; i < n; i++ {
			if i == row {
				continue
			}
			factor := t.Get(i, col)
			if factor == 0 {
				continue
			}
			for j := 0; j < nCols; j++ {
				t.Add(i, j, -factor*t.Get(row, j))
			}
		}
	}

	// Bootstrap: bring z0 in at the row of most-negative q (argmin, even
	// when none is negative — spec.md SS9).
	r := 0
	for i := 1; i < n; i++ {
		if t.Get(i, rhs) < t.Get(r, rhs) {
			r = i
		}
	}
	leaving := basis[r]
	pivot(r, z0Col)
	basis[r] = z0Col
	entering := complement(leaving)

	fail := func(kind ErrorKind, msg string) Result {
		if trivialOK {
			return trivial
		}
		return Result{Converged: false, Method: "lemke", Err: newError(kind, "%s", msg)}
	}

	for iter := 1; iter <= opts.MaxIters; iter++ {
		// Minimum-ratio test among rows with a positive entering-column entry.
		bestRow := -1
		bestRatio := math.Inf(1)
		for i := 0; i < n; i++ {
			coeff := t.Get(i, entering)
			if coeff <= opts.PivotTol {
				continue
			}
			ratio := t.Get(i, rhs) / coeff
			if ratio < bestRatio-1e-15 || (math.Abs(ratio-bestRatio) <= 1e-15 && (bestRow == -1 || basis[i] < basis[bestRow])) {
				bestRatio = ratio
				bestRow = i
			}
		}
		if bestRow == -1 {
			return fail(UnboundedRay, "minimum-ratio test found no positive entry")
		}
		pv := t.Get(bestRow, entering)
		if math.Abs(pv) < opts.PivotTol {
			return fail(PivotDegenerate, "pivot magnitude below tolerance")
		}

		leavingVar := basis[bestRow]
		pivot(bestRow, entering)
		basis[bestRow] = entering

		if leavingVar == z0Col {
			z := make(linalg.Vector, n)
			w := make(linalg.Vector, n)
			for i := 0; i < n; i++ {
				val := t.Get(i, rhs)
				if val < 0 {
					// A pivot path that ends on a clearly infeasible basis has
					// failed; when q >= 0 the trivial solution is returned.
					if trivialOK && val < -opts.PivotTol {
						return trivial
					}
					val = 0
				}
				switch {
				case basis[i] < n:
					w[basis[i]] = val
				case basis[i] < 2*n:
					z[basis[i]-n] = val
				}
			}
			return Result{Z: z, W: w, Iterations: iter, Converged: true, Method: "lemke"}
		}
		entering = complement(leavingVar)
	}

	return fail(IterationCap, "exceeded max_iters without z0 leaving the basis")
}
