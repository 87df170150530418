package assembler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/switchsim/switchsim/pkg/device"
)

func TestBuildVoltageDivider(t *testing.T) {
	require := require.New(t)

	v1 := device.NewVoltageSource("V1", "1", "0", device.NewDCWaveform(10))
	r1 := device.NewResistor("R1", "1", "2", 1000)
	r2 := device.NewResistor("R2", "2", "0", 1000)

	comps := []device.Device{v1, r1, r2}
	st := device.Status{Gmin: 1e-9}
	v1.UpdateTimeVarying(0)

	sys, err := Build(comps, st)
	require.NoError(err)
	require.Equal(2, sys.N) // nodes 1,2 (0 is ground)
	require.Equal(1, sys.E) // V1's branch current
	require.Equal(0, sys.K)
	require.Equal(3, sys.S)

	g := 1.0 / 1000.0
	require.InDelta(g+1e-9, sys.A.Get(0, 0), 1e-12) // node 1: only R1 + gmin
	require.InDelta(-g, sys.A.Get(0, 1), 1e-12)
	require.InDelta(2*g+1e-9, sys.A.Get(1, 1), 1e-12) // node 2: R1+R2 + gmin
	require.InDelta(10, sys.B[2], 1e-12)              // V1's own row RHS
}

func TestBuildDiodeRegistersOneLCPRow(t *testing.T) {
	require := require.New(t)

	v1 := device.NewVoltageSource("V1", "in", "0", device.NewDCWaveform(5))
	d1 := device.NewDiode("D1", "in", "out", 0.7, 1e-3)
	r1 := device.NewResistor("R1", "out", "0", 100)

	comps := []device.Device{v1, d1, r1}
	st := device.Status{Gmin: 1e-9}
	v1.UpdateTimeVarying(0)

	sys, err := Build(comps, st)
	require.NoError(err)
	require.Equal(2, sys.N) // in, out
	require.Equal(2, sys.E) // V1 branch + D1 current
	require.Equal(1, sys.K)
	require.Len(sys.ZExtras, 1)
}
