package lcp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/switchsim/switchsim/pkg/linalg"
)

func TestLemkeTrivialSolution(t *testing.T) {
	require := require.New(t)

	m := linalg.NewMatrix(2, 2)
	m.Set(0, 0, 2)
	m.Set(1, 1, 2)
	q := linalg.Vector{1, 1}

	res := Lemke(m, q, DefaultOptions())
	require.True(res.Converged)
	require.InDeltaSlice([]float64{0, 0}, res.Z, 1e-9)
	require.InDeltaSlice([]float64{1, 1}, res.W, 1e-9)
}

func TestLemkeNonTrivialSolution(t *testing.T) {
	require := require.New(t)

	// q < 0 makes z = 0 infeasible (w = z + q = -1): forces a nontrivial pivot.
	m := linalg.NewMatrix(1, 1)
	m.Set(0, 0, 1)
	q := linalg.Vector{-1}

	res := Lemke(m, q, DefaultOptions())
	require.True(res.Converged)
	require.InDelta(1, res.Z[0], 1e-9)
	require.InDelta(0, res.W[0], 1e-9)
	require.InDelta(0, res.Z[0]*res.W[0], 1e-9)
}

func TestLemkeExtremeDynamicRange(t *testing.T) {
	require := require.New(t)

	// Ron/Roff-style ratio of 1e12, as in a MOSFET body-diode complementarity
	// check (spec.md SS8 "Ron/Roff ratio is 1e12").
	m := linalg.NewMatrix(2, 2)
	m.Set(0, 0, 1e12)
	m.Set(1, 1, 1)
	q := linalg.Vector{-5, -2}

	res := Solve(m, q, DefaultOptions())
	require.True(res.Converged)
	for i := range res.Z {
		require.GreaterOrEqual(res.Z[i], -1e-6)
		require.GreaterOrEqual(res.W[i], -1e-6)
		require.InDelta(0, res.Z[i]*res.W[i], 1e-6)
	}
}

func TestQPMatchesLemkeOnSimpleProblem(t *testing.T) {
	require := require.New(t)

	m := linalg.NewMatrix(1, 1)
	m.Set(0, 0, 1)
	q := linalg.Vector{-1}

	res := QP(m, q, DefaultOptions())
	require.True(res.Converged)
	require.InDelta(1, res.Z[0], 1e-4)
	require.InDelta(0, res.W[0], 1e-4)
}

func TestSolveRobustOuterLoopSolvesCoupledProblem(t *testing.T) {
	require := require.New(t)

	m := linalg.NewMatrix(2, 2)
	m.Set(0, 0, 3)
	m.Set(0, 1, 1)
	m.Set(1, 0, 1)
	m.Set(1, 1, 3)
	q := linalg.Vector{-2, -2}

	res := Solve(m, q, DefaultOptions())
	require.True(res.Converged)
	require.InDelta(0, res.Z[0]*res.W[0], 1e-6)
	require.InDelta(0, res.Z[1]*res.W[1], 1e-6)
}
