package linalg

import (
	"errors"
	"fmt"
	"math"

	"github.com/switchsim/switchsim/internal/consts"
)

// ErrSingular is returned by Factor/Solve when a pivot magnitude drops below
// the configured pivot tolerance (spec.md SS4.1).
var ErrSingular = errors.New("linalg: matrix is singular")

// LU holds an in-place LU factorization of a cloned copy of the input matrix,
// along with the partial-pivoting permutation. The caller's matrix is never
// mutated — Factor clones it first, mirroring the teacher's
// "destructive on a cloned A" contract.
type LU struct {
	n      int
	a      *Matrix // factored in place: L (unit diag implied) below, U on/above
	perm   []int   // perm[i] = original row now at position i
	pivTol float64
}

// Factor performs LU decomposition with partial pivoting on a clone of a.
// pivotTol defaults to consts.DefaultPivotTol when <= 0.
func Factor(a *Matrix, pivotTol float64) (*LU, error) {
	if a.Rows != a.Cols {
		return nil, fmt.Errorf("linalg: Factor requires a square matrix, got %dx%d", a.Rows, a.Cols)
	}
	if pivotTol <= 0 {
		pivotTol = consts.DefaultPivotTol
	}
	n := a.Rows
	lu := &LU{n: n, a: a.Clone(), perm: make([]int, n), pivTol: pivotTol}
	for i := range lu.perm {
		lu.perm[i] = i
	}

	for k := 0; k < n; k++ {
		// Partial pivot: largest magnitude in column k at or below row k.
		maxRow, maxVal := k, math.Abs(lu.a.Get(k, k))
		for i := k + 1; i < n; i++ {
			if v := math.Abs(lu.a.Get(i, k)); v > maxVal {
				maxVal, maxRow = v, i
			}
		}
		if maxVal < pivotTol {
			return nil, fmt.Errorf("%w: pivot magnitude %.3e below tolerance %.3e at column %d", ErrSingular, maxVal, pivotTol, k)
		}
		if maxRow != k {
			lu.swapRows(k, maxRow)
		}

		pivot := lu.a.Get(k, k)
		for i := k + 1; i < n; i++ {
			factor := lu.a.Get(i, k) / pivot
			if factor == 0 {
				continue
			}
			lu.a.Set(i, k, factor)
			for j := k + 1; j < n; j++ {
				lu.a.Add(i, j, -factor*lu.a.Get(k, j))
			}
		}
	}

	return lu, nil
}

func (lu *LU) swapRows(i, j int) {
	if i == j {
		return
	}
	for c := 0; c < lu.n; c++ {
		vi, vj := lu.a.Get(i, c), lu.a.Get(j, c)
		lu.a.Set(i, c, vj)
		lu.a.Set(j, c, vi)
	}
	lu.perm[i], lu.perm[j] = lu.perm[j], lu.perm[i]
}

// Solve solves A x = b for x given the factorization of A.
func (lu *LU) Solve(b Vector) (Vector, error) {
	if len(b) != lu.n {
		return nil, fmt.Errorf("linalg: Solve expects rhs of length %d, got %d", lu.n, len(b))
	}
	n := lu.n
	// Apply permutation to rhs.
	pb := make(Vector, n)
	for i := 0; i < n; i++ {
		pb[i] = b[lu.perm[i]]
	}

	// Forward substitution L y = Pb (unit diagonal).
	y := make(Vector, n)
	for i := 0; i < n; i++ {
		sum := pb[i]
		for j := 0; j < i; j++ {
			sum -= lu.a.Get(i, j) * y[j]
		}
		y[i] = sum
	}

	// Back substitution U x = y.
	x := make(Vector, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for j := i + 1; j < n; j++ {
			sum -= lu.a.Get(i, j) * x[j]
		}
		diag := lu.a.Get(i, i)
		if math.Abs(diag) < lu.pivTol {
			return nil, fmt.Errorf("%w: back-substitution pivot %.3e below tolerance at row %d", ErrSingular, diag, i)
		}
		x[i] = sum / diag
	}

	return x, nil
}

// SolveMatrix solves A X = B column by column against the same factorization,
// used by the Schur reducer to compute X_B = A_xx^{-1} A_xz (spec.md SS4.4).
func (lu *LU) SolveMatrix(b *Matrix) (*Matrix, error) {
	if b.Rows != lu.n {
		return nil, fmt.Errorf("linalg: SolveMatrix expects %d rows, got %d", lu.n, b.Rows)
	}
	out := NewMatrix(lu.n, b.Cols)
	for col := 0; col < b.Cols; col++ {
		rhs := make(Vector, lu.n)
		for i := 0; i < lu.n; i++ {
			rhs[i] = b.Get(i, col)
		}
		x, err := lu.Solve(rhs)
		if err != nil {
			return nil, err
		}
		for i := 0; i < lu.n; i++ {
			out.Set(i, col, x[i])
		}
	}
	return out, nil
}

// Solve is a convenience one-shot factor+solve, matching the teacher's
// sparse.Matrix.Solve call shape.
func Solve(a *Matrix, b Vector) (Vector, error) {
	lu, err := Factor(a, consts.DefaultPivotTol)
	if err != nil {
		return nil, err
	}
	return lu.Solve(b)
}

// ConditionEstimate returns a cheap infinity-norm based condition number
// estimate: ||A||_inf * ||A^-1||_inf, computed by solving against the
// unit vectors (each solve yields one column of A^-1; the row sums of those
// columns give ||A^-1||_inf). Used for diagnostics and by the QP fallback's
// regularization check (spec.md SS4.1).
func (lu *LU) ConditionEstimate(original *Matrix) float64 {
	normA := infNorm(original)

	n := lu.n
	rowSums := make([]float64, n)
	for j := 0; j < n; j++ {
		e := make(Vector, n)
		e[j] = 1
		x, err := lu.Solve(e) // column j of A^-1
		if err != nil {
			return math.Inf(1)
		}
		for i, v := range x {
			rowSums[i] += math.Abs(v)
		}
	}
	maxRowSum := 0.0
	for _, s := range rowSums {
		if s > maxRowSum {
			maxRowSum = s
		}
	}
	return normA * maxRowSum
}

func infNorm(m *Matrix) float64 {
	maxRowSum := 0.0
	for i := 0; i < m.Rows; i++ {
		sum := 0.0
		for j := 0; j < m.Cols; j++ {
			sum += math.Abs(m.Get(i, j))
		}
		if sum > maxRowSum {
			maxRowSum = sum
		}
	}
	return maxRowSum
}
