// Package result holds the time-series output of a simulation run (spec.md
// SS4.8): per-node voltage traces, per-branch current traces, and the run's
// analysis metadata, built up one time point at a time as the driver in
// pkg/sim steps forward.
package result

import (
	"fmt"
	"time"

	"github.com/switchsim/switchsim/pkg/device"
)

// Stats accumulates LCP-solver statistics over an entire run (spec.md SS4.7
// "Statistics tracking").
type Stats struct {
	TotalSteps     int
	FailedSteps    int
	LCPSolveCount  int
	LCPIterSum     int
	LCPIterMax     int
}

// AverageLCPIterations returns 0 when no LCP solve has ever run.
func (s Stats) AverageLCPIterations() float64 {
	if s.LCPSolveCount == 0 {
		return 0
	}
	return float64(s.LCPIterSum) / float64(s.LCPSolveCount)
}

// Info is the analysis_info record attached to a finished Result (spec.md
// SS6).
type Info struct {
	Method        device.Method
	ExecutionTime time.Duration
	Stats         Stats
}

// Result is the accumulated time-domain output: one voltage trace per node
// name and one current trace per named branch, aligned against a shared
// time vector.
type Result struct {
	times     []float64
	nodeOrder []string
	voltages  map[string][]float64
	brOrder   []string
	currents  map[string][]float64
	Info      Info
}

func New() *Result {
	return &Result{
		voltages: make(map[string][]float64),
		currents: make(map[string][]float64),
	}
}

// AddTimePoint appends one accepted step's output. Every call after the
// first must carry the same set of node/branch names — a mismatch means the
// driver and the Result have drifted out of sync.
func (r *Result) AddTimePoint(t float64, nodeVoltages map[string]float64, branchCurrents map[string]float64) {
	r.times = append(r.times, t)

	for name, v := range nodeVoltages {
		if _, ok := r.voltages[name]; !ok {
			r.nodeOrder = append(r.nodeOrder, name)
		}
		r.voltages[name] = append(r.voltages[name], v)
	}
	for name, i := range branchCurrents {
		if _, ok := r.currents[name]; !ok {
			r.brOrder = append(r.brOrder, name)
		}
		r.currents[name] = append(r.currents[name], i)
	}
}

// Times returns the shared time vector, in the order points were added.
func (r *Result) Times() []float64 { return r.times }

// NodeNames returns node names in first-seen order.
func (r *Result) NodeNames() []string { return r.nodeOrder }

// BranchNames returns branch names in first-seen order.
func (r *Result) BranchNames() []string { return r.brOrder }

// Voltage returns a node's full trace.
func (r *Result) Voltage(node string) ([]float64, error) {
	v, ok := r.voltages[node]
	if !ok {
		return nil, fmt.Errorf("result: no node %q in this run", node)
	}
	return v, nil
}

// Current returns a branch's full trace.
func (r *Result) Current(branch string) ([]float64, error) {
	i, ok := r.currents[branch]
	if !ok {
		return nil, fmt.Errorf("result: no branch %q in this run", branch)
	}
	return i, nil
}

// VoltageAt and CurrentAt return a single sample, used by report rendering
// and by tests checking a scenario's final operating point.
func (r *Result) VoltageAt(node string, idx int) (float64, error) {
	v, err := r.Voltage(node)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(v) {
		return 0, fmt.Errorf("result: index %d out of range for node %q", idx, node)
	}
	return v[idx], nil
}

func (r *Result) CurrentAt(branch string, idx int) (float64, error) {
	i, err := r.Current(branch)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(i) {
		return 0, fmt.Errorf("result: index %d out of range for branch %q", idx, branch)
	}
	return i[idx], nil
}
