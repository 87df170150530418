package reducer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/switchsim/switchsim/pkg/assembler"
	"github.com/switchsim/switchsim/pkg/device"
	"github.com/switchsim/switchsim/pkg/lcp"
)

func TestReduceLinearOnlyMatchesDirectSolve(t *testing.T) {
	require := require.New(t)

	v1 := device.NewVoltageSource("V1", "1", "0", device.NewDCWaveform(10))
	r1 := device.NewResistor("R1", "1", "2", 1000)
	r2 := device.NewResistor("R2", "2", "0", 1000)
	v1.UpdateTimeVarying(0)

	sys, err := assembler.Build([]device.Device{v1, r1, r2}, device.Status{Gmin: 1e-9})
	require.NoError(err)
	require.Equal(0, sys.K)

	red, err := Reduce(sys, 1e-12)
	require.NoError(err)

	full := red.Reconstruct(nil)
	require.InDelta(10, full[0], 1e-6)
	require.InDelta(5, full[1], 1e-6)
}

func TestReduceDiodeProducesKByKSystem(t *testing.T) {
	require := require.New(t)

	v1 := device.NewVoltageSource("V1", "in", "0", device.NewDCWaveform(5))
	d1 := device.NewDiode("D1", "in", "out", 0.7, 1e-3)
	r1 := device.NewResistor("R1", "out", "0", 100)
	v1.UpdateTimeVarying(0)

	sys, err := assembler.Build([]device.Device{v1, d1, r1}, device.Status{Gmin: 1e-9})
	require.NoError(err)
	require.Equal(1, sys.K)

	red, err := Reduce(sys, 1e-12)
	require.NoError(err)
	require.Equal(1, red.M.Rows)
	require.Equal(1, red.M.Cols)
	require.Len(red.Q, 1)

	// z=0 (diode off): reconstruction should still satisfy V(in)=5 exactly.
	full := red.Reconstruct([]float64{0})
	inIdx, outIdx := 0, 0
	for i, name := range sys.NodeNames {
		switch name {
		case "in":
			inIdx = i
		case "out":
			outIdx = i
		}
	}
	require.InDelta(5, full[inIdx], 1e-9)

	// The reduced (M, q) must pin the diode-on operating point: M = R+Ron,
	// with R taken in parallel with the 1e-9 gmin on node "out",
	// q = -(V_s - Vf), so I_d = (V_s-Vf)/(R+Ron) and V(out) = I_d*R.
	require.InDelta(1/(1.0/100+1e-9)+1e-3, red.M.Get(0, 0), 1e-6)
	require.InDelta(-4.3, red.Q[0], 1e-6)

	lr := lcp.Solve(red.M, red.Q, lcp.Options{MaxIters: 1000, PivotTol: 1e-10, ZeroTol: 1e-12, QPTol: 1e-8})
	require.True(lr.Converged)
	wantID := (5 - 0.7) / 100.001
	require.InDelta(wantID, lr.Z[0], 1e-6)

	fullOn := red.Reconstruct(lr.Z)
	require.InDelta(wantID*100, fullOn[outIdx], 1e-4)
}
