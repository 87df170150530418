package netlist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValueUnitSuffixes(t *testing.T) {
	require := require.New(t)

	cases := map[string]float64{
		"1k":    1000,
		"4.7u":  4.7e-6,
		"10meg": 10e6,
		"100n":  100e-9,
		"2.2p":  2.2e-12,
		"5":     5,
	}
	for in, want := range cases {
		got, err := ParseValue(in)
		require.NoError(err)
		require.InDelta(want, got, want*1e-12+1e-15)
	}
}

func TestParseValueRejectsGarbage(t *testing.T) {
	_, err := ParseValue("banana")
	require.Error(t, err)
}

func TestParseBuckConverterNetlist(t *testing.T) {
	require := require.New(t)

	src := `buck converter
V1 in 0 DC 12
S1 in sw SWMOD PWM 100k 0.4
.model SWMOD NMOS (RON=0.01 ROFF=1e6 VF=0.7)
L1 sw out 100u
C1 out 0 47u ic=0
R1 out 0 5
.tran 1u 2m
`
	ckt, err := Parse(src)
	require.NoError(err)
	require.Equal(AnalysisTRAN, ckt.Analysis)
	require.InDelta(1e-6, ckt.Tran.TStep, 1e-12)
	require.InDelta(2e-3, ckt.Tran.TStop, 1e-12)
	require.Len(ckt.Elements, 5)

	components, gates, err := Build(ckt)
	require.NoError(err)
	require.Len(components, 5)
	require.Len(gates, 1)
}

func TestBuildFoldsKCardIntoCoupledInductors(t *testing.T) {
	require := require.New(t)

	src := `flyback
V1 pri 0 DC 24
L1 pri 0 1m
L2 sec 0 4m
K1 L1 L2 0.98
R1 sec 0 10
.op
`
	ckt, err := Parse(src)
	require.NoError(err)

	components, _, err := Build(ckt)
	require.NoError(err)
	// L1 and L2 are consumed by K1; only V1, R1, and the coupled pair remain.
	require.Len(components, 3)
}

func TestBuildRejectsUnknownModel(t *testing.T) {
	require := require.New(t)

	src := `bad diode
V1 a 0 DC 5
D1 a 0 GHOST
.op
`
	ckt, err := Parse(src)
	require.NoError(err)
	_, _, err = Build(ckt)
	require.Error(err)
}

func TestDotACAndDotDCAreRejected(t *testing.T) {
	_, err := Parse("t\n.ac dec 10 1 1meg\n")
	require.Error(t, err)

	_, err = Parse("t\n.dc V1 0 10 1\n")
	require.Error(t, err)
}
