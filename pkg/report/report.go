// Package report renders a result.Result the way the teacher's cmd/main.go
// prints analysis output: an aligned ASCII table to an io.Writer, plus a CSV
// form for downstream tooling (spec.md's supplemented "reporting" feature).
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/switchsim/switchsim/pkg/result"
)

// FormatValueFactor prints values of magnitude 1 and above with no prefix,
// scales smaller values into m/u/n/p so the mantissa lands in [1,1000), and
// falls back to exponent form below 1e-12, matching the teacher's
// pkg/util/formatter.go.
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1:
		return fmt.Sprintf("%.6f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.6f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.6f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.6f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.6f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.6e %s", value, unit)
	}
}

// WriteTable prints an aligned time/voltage/current table to w.
func WriteTable(w io.Writer, res *result.Result) {
	nodes := res.NodeNames()
	branches := res.BranchNames()
	times := res.Times()

	fmt.Fprintln(w, "\nTransient Analysis Results")
	fmt.Fprintln(w, "==========================")
	fmt.Fprintf(w, "Method=%s  Steps=%d  Failed=%d  LCP solves=%d  Avg LCP iters=%.2f\n",
		res.Info.Method, res.Info.Stats.TotalSteps, res.Info.Stats.FailedSteps,
		res.Info.Stats.LCPSolveCount, res.Info.Stats.AverageLCPIterations())

	fmt.Fprintf(w, "\n%-12s", "Time(s)")
	for _, n := range nodes {
		fmt.Fprintf(w, "%-16s", "V("+n+")")
	}
	for _, b := range branches {
		fmt.Fprintf(w, "%-16s", "I("+b+")")
	}
	fmt.Fprintln(w)

	voltages := make(map[string][]float64, len(nodes))
	for _, n := range nodes {
		v, _ := res.Voltage(n)
		voltages[n] = v
	}
	currents := make(map[string][]float64, len(branches))
	for _, b := range branches {
		i, _ := res.Current(b)
		currents[b] = i
	}

	for i, t := range times {
		fmt.Fprintf(w, "%-12.6e", t)
		for _, n := range nodes {
			fmt.Fprintf(w, "%-16.6e", voltages[n][i])
		}
		for _, b := range branches {
			fmt.Fprintf(w, "%-16.6e", currents[b][i])
		}
		fmt.Fprintln(w)
	}
}

// WriteCSV writes the same data as RFC 4180 CSV: one header row ("time",
// node voltages, branch currents) followed by one row per time point.
func WriteCSV(w io.Writer, res *result.Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	nodes := res.NodeNames()
	branches := res.BranchNames()
	header := make([]string, 0, 1+len(nodes)+len(branches))
	header = append(header, "time")
	for _, n := range nodes {
		header = append(header, "V("+n+")")
	}
	for _, b := range branches {
		header = append(header, "I("+b+")")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	voltages := make(map[string][]float64, len(nodes))
	for _, n := range nodes {
		v, err := res.Voltage(n)
		if err != nil {
			return err
		}
		voltages[n] = v
	}
	currents := make(map[string][]float64, len(branches))
	for _, b := range branches {
		i, err := res.Current(b)
		if err != nil {
			return err
		}
		currents[b] = i
	}

	times := res.Times()
	row := make([]string, 0, len(header))
	for i, t := range times {
		row = row[:0]
		row = append(row, strconv.FormatFloat(t, 'e', -1, 64))
		for _, n := range nodes {
			row = append(row, strconv.FormatFloat(voltages[n][i], 'e', -1, 64))
		}
		for _, b := range branches {
			row = append(row, strconv.FormatFloat(currents[b][i], 'e', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}
