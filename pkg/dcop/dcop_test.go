package dcop

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/switchsim/switchsim/pkg/assembler"
	"github.com/switchsim/switchsim/pkg/device"
	"github.com/switchsim/switchsim/pkg/reducer"
)

func TestSeedInitialConditionsShortsInductorAndOpensCapacitor(t *testing.T) {
	require := require.New(t)

	v1 := device.NewVoltageSource("V1", "in", "0", device.NewDCWaveform(10))
	r1 := device.NewResistor("R1", "in", "n2", 5)
	l1 := device.NewInductor("L1", "n2", "0", 1e-3)
	c1 := device.NewCapacitor("C1", "in", "0", 1e-6)

	components := []device.Device{v1, r1, l1, c1}
	st := device.Status{Time: 0, TimeStep: 1e-6, Method: device.BE, StepCount: 0, Gmin: 1e-9}

	err := SeedInitialConditions(components, st)
	require.NoError(err)

	// Inductor shorts n2 to ground, so the full 10V appears across R1: the
	// seeded current must be 10/5 = 2A. Confirm by running a transient
	// companion-model build off the now-seeded history and reading L1's
	// branch column back out of a fresh solve.
	c1.UpdateCompanion(st.TimeStep, device.BE, 1)
	l1.UpdateCompanion(st.TimeStep, device.BE, 1)
	v1.UpdateTimeVarying(0)
	sys, err := assembler.Build(components, st)
	require.NoError(err)
	red, err := reducer.Reduce(sys, 1e-12)
	require.NoError(err)
	full := red.Reconstruct(nil)
	branchCol := sys.N + int(l1.BranchExtra())
	require.InDelta(2.0, full[branchCol], 1e-6)
}

func TestSeedInitialConditionsSolvesFloatingInductor(t *testing.T) {
	require := require.New(t)

	// Both terminals are otherwise unconnected nodes; gmin alone keeps A_xx
	// nonsingular, so this is the degenerate-but-solvable path, not failure.
	l1 := device.NewInductor("L1", "a", "b", 1e-3)
	components := []device.Device{l1}
	st := device.Status{Time: 0, TimeStep: 1e-6, Method: device.BE, StepCount: 0, Gmin: 1e-9}

	err := SeedInitialConditions(components, st)
	require.NoError(err)
}

func TestSeedInitialConditionsRejectsNonCloneableDevice(t *testing.T) {
	require := require.New(t)

	components := []device.Device{fakeNonCloneable{}}
	st := device.Status{Time: 0, TimeStep: 1e-6, Method: device.BE, Gmin: 1e-9}

	err := SeedInitialConditions(components, st)
	require.Error(err)
}

type fakeNonCloneable struct{}

func (fakeNonCloneable) Name() string                    { return "fake" }
func (fakeNonCloneable) Analyze(*device.Allocator) error { return nil }
