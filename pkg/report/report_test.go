package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/switchsim/switchsim/pkg/device"
	"github.com/switchsim/switchsim/pkg/result"
)

func sampleResult() *result.Result {
	res := result.New()
	res.AddTimePoint(1e-5, map[string]float64{"in": 10, "out": 5}, map[string]float64{"V1": 0.005})
	res.AddTimePoint(2e-5, map[string]float64{"in": 10, "out": 5.1}, map[string]float64{"V1": 0.0049})
	res.Info = result.Info{Method: device.BE, Stats: result.Stats{TotalSteps: 2, LCPSolveCount: 1}}
	return res
}

func TestWriteTableIncludesNodesAndBranches(t *testing.T) {
	require := require.New(t)
	var buf bytes.Buffer
	WriteTable(&buf, sampleResult())

	out := buf.String()
	require.True(strings.Contains(out, "V(in)"))
	require.True(strings.Contains(out, "V(out)"))
	require.True(strings.Contains(out, "I(V1)"))
	require.True(strings.Contains(out, "BE"))
}

func TestWriteCSVRoundTripsHeaderAndRows(t *testing.T) {
	require := require.New(t)
	var buf bytes.Buffer
	require.NoError(WriteCSV(&buf, sampleResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(lines, 3) // header + 2 samples
	require.True(strings.HasPrefix(lines[0], "time,"))
}

func TestFormatValueFactorPicksSIPrefix(t *testing.T) {
	require := require.New(t)
	require.Contains(FormatValueFactor(4.7e-6, "F"), "u")
	require.Contains(FormatValueFactor(100e-3, "A"), "m")
	require.Contains(FormatValueFactor(12, "V"), "V")
}
