// Package reducer implements the Schur-complement reduction (spec.md SS4.4):
// eliminating the non-complementary unknowns from the augmented system to
// produce a pure LCP (M, q), and reconstructing the full solution once the
// LCP solver returns z.
package reducer

import (
	"errors"
	"fmt"

	"github.com/switchsim/switchsim/pkg/assembler"
	"github.com/switchsim/switchsim/pkg/linalg"
)

// ErrAssemblerSingular signals that A_xx stayed singular even after gmin
// regularization (spec.md SS4.4, SS7 "AssemblerSingular").
var ErrAssemblerSingular = errors.New("reducer: A_xx is singular")

// Reduced holds everything needed to both hand (M, q) to the LCP solver and
// later reconstruct the full S-length solution from its z.
type Reduced struct {
	M      *linalg.Matrix // K x K
	Q      linalg.Vector  // K
	xB     *linalg.Matrix // |Jx| x K
	xb     linalg.Vector  // |Jx|
	jxCols []int          // global column index for each row of xB/xb
	jzCols []int          // global column index for each z ordinal
	s      int
}

// Reduce partitions sys's S unknowns into J_x (everything but the LCP
// z-variables) and J_z (sys.ZExtras), eliminates J_x via A_xx's LU
// factorization, and forms the reduced LCP M z + q = w (spec.md SS4.4). When
// K=0 it still produces a valid Reduced whose Reconstruct(nil) is the
// complete linear solution.
func Reduce(sys *assembler.System, pivotTol float64) (*Reduced, error) {
	isZ := make([]bool, sys.S)
	for _, col := range sys.ZExtras {
		isZ[col] = true
	}
	jxCols := make([]int, 0, sys.S-sys.K)
	for col := 0; col < sys.S; col++ {
		if !isZ[col] {
			jxCols = append(jxCols, col)
		}
	}
	jzCols := sys.ZExtras

	nx := len(jxCols)
	axx := linalg.NewMatrix(nx, nx)
	axz := linalg.NewMatrix(nx, sys.K)
	bx := linalg.NewVector(nx)
	for i, ci := range jxCols {
		bx[i] = sys.B[ci]
		for j, cj := range jxCols {
			axx.Set(i, j, sys.A.Get(ci, cj))
		}
		for k, ck := range jzCols {
			axz.Set(i, k, sys.A.Get(ci, ck))
		}
	}

	lu, err := linalg.Factor(axx, pivotTol)
	if err != nil {
		if errors.Is(err, linalg.ErrSingular) {
			return nil, fmt.Errorf("%w: %v", ErrAssemblerSingular, err)
		}
		return nil, err
	}

	xB, err := lu.SolveMatrix(axz)
	if err != nil {
		if errors.Is(err, linalg.ErrSingular) {
			return nil, fmt.Errorf("%w: %v", ErrAssemblerSingular, err)
		}
		return nil, err
	}
	xb, err := lu.Solve(bx)
	if err != nil {
		if errors.Is(err, linalg.ErrSingular) {
			return nil, fmt.Errorf("%w: %v", ErrAssemblerSingular, err)
		}
		return nil, err
	}

	red := &Reduced{xB: xB, xb: xb, jxCols: jxCols, jzCols: jzCols, s: sys.S}

	if sys.K == 0 {
		red.M = linalg.NewMatrix(0, 0)
		red.Q = linalg.NewVector(0)
		return red, nil
	}

	// C_x (K x |Jx|), restricted to this device convention's z-column
	// contribution living in D rather than C (spec.md SS4.3 "Sign discipline"
	// stamps D at the owning device's own z ordinal; C only ever carries Jx
	// columns in this implementation).
	cx := linalg.NewMatrix(sys.K, nx)
	for row := 0; row < sys.K; row++ {
		for i, ci := range jxCols {
			cx.Set(row, i, sys.C.Get(row, ci))
		}
	}

	cxXB, err := cx.Gemm(xB)
	if err != nil {
		return nil, err
	}
	m := cxXB.Sub(sys.D) // M = -D + Cx*XB  ==  Cx*XB - D

	// w = -(Cx*x + Dz + Q), the same negated-slack convention M adopts above,
	// so q = -Q - Cx*xb.
	cxXb := cx.Gemv(xb)
	q := make(linalg.Vector, sys.K)
	for i := range q {
		q[i] = -sys.Q[i] - cxXb[i]
	}

	red.M = m
	red.Q = q
	return red, nil
}

func (r *Reduced) NumZ() int { return len(r.jzCols) }

// Reconstruct splices z back into the full S-length solution:
// x_Jx = xb - xB*z.
func (r *Reduced) Reconstruct(z linalg.Vector) linalg.Vector {
	full := make(linalg.Vector, r.s)
	xJx := linalg.CloneVector(r.xb)
	if len(z) > 0 {
		xBz := r.xB.Gemv(z)
		for i := range xJx {
			xJx[i] -= xBz[i]
		}
	}
	for i, col := range r.jxCols {
		full[col] = xJx[i]
	}
	for k, col := range r.jzCols {
		full[col] = z[k]
	}
	return full
}
