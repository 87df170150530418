package linalg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSolveIdentity(t *testing.T) {
	require := require.New(t)

	a := NewMatrix(3, 3)
	for i := 0; i < 3; i++ {
		a.Set(i, i, 1)
	}
	b := Vector{1, 2, 3}

	x, err := Solve(a, b)
	require.NoError(err)
	require.InDeltaSlice(b, x, 1e-12)
}

func TestSolveVoltageDivider(t *testing.T) {
	require := require.New(t)

	// Two-node resistor divider stamped by hand: 1k/1k from a 10V node, which
	// draws 10V/2k = 5mA from the source into node 0.
	a := NewMatrix(2, 2)
	g := 1.0 / 1000.0
	a.Set(0, 0, g)
	a.Set(0, 1, -g)
	a.Set(1, 0, -g)
	a.Set(1, 1, 2*g)
	b := Vector{10.0 / 2000.0, 0}

	x, err := Solve(a, b)
	require.NoError(err)
	require.InDelta(10.0, x[0], 1e-9)
	require.InDelta(5.0, x[1], 1e-9)
}

func TestFactorSingularFails(t *testing.T) {
	require := require.New(t)

	a := NewMatrix(2, 2)
	a.Set(0, 0, 1)
	a.Set(0, 1, 2)
	a.Set(1, 0, 2)
	a.Set(1, 1, 4) // row2 = 2*row1, singular

	_, err := Factor(a, 1e-9)
	require.ErrorIs(err, ErrSingular)
}

func TestSolveMatrixMatchesColumnwiseSolve(t *testing.T) {
	require := require.New(t)

	a := NewMatrix(3, 3)
	a.Set(0, 0, 4)
	a.Set(0, 1, 1)
	a.Set(1, 0, 1)
	a.Set(1, 1, 3)
	a.Set(1, 2, 1)
	a.Set(2, 1, 1)
	a.Set(2, 2, 2)

	lu, err := Factor(a, 1e-9)
	require.NoError(err)

	b := NewMatrix(3, 2)
	b.Set(0, 0, 1)
	b.Set(1, 0, 0)
	b.Set(2, 0, 0)
	b.Set(0, 1, 0)
	b.Set(1, 1, 1)
	b.Set(2, 1, 0)

	x, err := lu.SolveMatrix(b)
	require.NoError(err)

	for col := 0; col < 2; col++ {
		rhs := Vector{b.Get(0, col), b.Get(1, col), b.Get(2, col)}
		expected, err := lu.Solve(rhs)
		require.NoError(err)
		for i := 0; i < 3; i++ {
			require.InDelta(expected[i], x.Get(i, col), 1e-9)
		}
	}
}

func TestConditionEstimateIdentityIsOne(t *testing.T) {
	require := require.New(t)

	a := NewMatrix(2, 2)
	a.Set(0, 0, 1)
	a.Set(1, 1, 1)
	lu, err := Factor(a, 1e-9)
	require.NoError(err)
	require.InDelta(1.0, lu.ConditionEstimate(a), 1e-9)
}
