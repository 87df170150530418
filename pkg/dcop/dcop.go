// Package dcop implements the DC operating-point solver (spec.md SS4.6):
// before the transient loop's first step, it builds a companion augmented
// system with every inductor (and transformer winding) shorted to 0V and
// every capacitor removed, solves it through the same assembler/reducer/LCP
// pipeline as a transient step, and seeds the live components' reactive
// history from the result. A failure here is non-fatal — the transient run
// falls back to zero initial conditions (spec.md SS7 "DCInitFailure").
package dcop

import (
	"fmt"

	"github.com/switchsim/switchsim/internal/consts"
	"github.com/switchsim/switchsim/pkg/assembler"
	"github.com/switchsim/switchsim/pkg/device"
	"github.com/switchsim/switchsim/pkg/lcp"
	"github.com/switchsim/switchsim/pkg/reducer"
)

// inductiveEntry remembers, for one shorted inductive device, which original
// live device to seed and the replacement 0V source its current is read off.
type inductiveEntry struct {
	original device.InductiveDC
	source   *device.VoltageSource
}

// capacitiveEntry remembers, for one removed capacitive device, which
// original live device to seed and the two node names spanning it.
type capacitiveEntry struct {
	original     device.CapacitiveDC
	node1, node2 string
}

// SeedInitialConditions runs the DC-MCP solve and, on success, calls
// SetInitialCurrent/SetInitialVoltage on the live (non-cloned) reactive
// components in originals. originals must already be the flattened,
// Non-Composite component list the transient loop itself will assemble
// (spec.md SS4.7 step 1); every entry must implement device.Cloner.
func SeedInitialConditions(originals []device.Device, st device.Status) error {
	clones := make([]device.Device, len(originals))
	for i, d := range originals {
		cl, ok := d.(device.Cloner)
		if !ok {
			return fmt.Errorf("dcop: %s does not implement Cloner", d.Name())
		}
		clones[i] = cl.Clone()
	}

	dcDevices := make([]device.Device, 0, len(clones))
	var inductive []inductiveEntry
	var capacitive []capacitiveEntry

	for i, d := range clones {
		switch v := d.(type) {
		case device.CapacitiveDC:
			n1, n2 := v.Terminals()
			capacitive = append(capacitive, capacitiveEntry{
				original: originals[i].(device.CapacitiveDC),
				node1:    n1, node2: n2,
			})
			// Dropped entirely: a removed capacitor contributes nothing to
			// the DC system (spec.md SS4.6).
		case device.InductiveDC:
			n1, n2 := v.Terminals()
			src := device.NewVoltageSource(fmt.Sprintf("%s.dc_short", d.Name()), n1, n2, device.NewDCWaveform(0))
			src.UpdateTimeVarying(0)
			inductive = append(inductive, inductiveEntry{
				original: originals[i].(device.InductiveDC),
				source:   src,
			})
			dcDevices = append(dcDevices, src)
		default:
			if tv, ok := d.(device.TimeVarying); ok {
				tv.UpdateTimeVarying(0)
			}
			dcDevices = append(dcDevices, d)
		}
	}

	sys, err := assembler.Build(dcDevices, st)
	if err != nil {
		return fmt.Errorf("dcop: %w", err)
	}
	red, err := reducer.Reduce(sys, consts.DefaultPivotTol)
	if err != nil {
		return fmt.Errorf("dcop: %w", err)
	}

	var z []float64
	if sys.K > 0 {
		res := lcp.Solve(red.M, red.Q, lcp.DefaultOptions())
		if !res.Converged {
			return fmt.Errorf("dcop: lcp did not converge: %v", res.Err)
		}
		z = res.Z
	}
	full := red.Reconstruct(z)

	nodeIdx := make(map[string]int, len(sys.NodeNames))
	for i, name := range sys.NodeNames {
		nodeIdx[name] = i
	}
	voltage := func(name string) float64 {
		if name == "" || name == "0" {
			return 0
		}
		if idx, ok := nodeIdx[name]; ok {
			return full[idx]
		}
		return 0
	}

	for _, e := range inductive {
		e.original.SetInitialCurrent(e.source.BranchCurrent(full))
	}
	for _, e := range capacitive {
		e.original.SetInitialVoltage(voltage(e.node1) - voltage(e.node2))
	}
	return nil
}
