// Package sim implements the transient driver (spec.md SS4.7): the
// per-step update-sources -> update-companion -> assemble -> reduce ->
// solve -> reconstruct -> update-history pipeline, in both a batch form
// (Run) and a stepped form (InitializeStepped/StepForward/Finalize) that
// share one unexported stepOnce so the two modes can never drift apart.
package sim

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/switchsim/switchsim/pkg/assembler"
	"github.com/switchsim/switchsim/pkg/dcop"
	"github.com/switchsim/switchsim/pkg/device"
	"github.com/switchsim/switchsim/pkg/lcp"
	"github.com/switchsim/switchsim/pkg/reducer"
	"github.com/switchsim/switchsim/pkg/result"
)

// flatten replaces every Composite in components with its primitives,
// recursively, so the assembler only ever sees primitive devices (spec.md
// SS4.7 step 1).
func flatten(components []device.Device) []device.Device {
	out := make([]device.Device, 0, len(components))
	for _, d := range components {
		if comp, ok := d.(device.Composite); ok {
			out = append(out, flatten(comp.Components())...)
			continue
		}
		out = append(out, d)
	}
	return out
}

type stepOutcome struct {
	voltages      map[string]float64
	currents      map[string]float64
	lcpInvoked    bool
	lcpIterations int
}

// stepOnce runs exactly one accepted-step pipeline: update sources, update
// companion models, assemble, reduce, solve, reconstruct, update history.
// st is read, not modified: the caller sets Time/StepCount for this step
// before calling.
func stepOnce(flat []device.Device, gates []*device.GateSchedule, st *device.Status, params Params) (stepOutcome, error) {
	for _, d := range flat {
		if tv, ok := d.(device.TimeVarying); ok {
			tv.UpdateTimeVarying(st.Time)
		}
	}
	for _, g := range gates {
		g.UpdateTimeVarying(st.Time)
	}
	for _, d := range flat {
		if r, ok := d.(device.Reactive); ok {
			r.UpdateCompanion(st.TimeStep, st.Method, st.StepCount)
		}
	}

	sys, err := assembler.Build(flat, *st)
	if err != nil {
		return stepOutcome{}, err
	}
	red, err := reducer.Reduce(sys, params.LCPPivotTol)
	if err != nil {
		return stepOutcome{}, err
	}

	var out stepOutcome
	var z []float64
	if sys.K > 0 {
		opts := params.lcpOptions()
		var lr lcp.Result
		if *params.UseRobustSolver {
			lr = lcp.Solve(red.M, red.Q, opts)
		} else {
			lr = lcp.Lemke(red.M, red.Q, opts)
		}
		out.lcpInvoked = true
		out.lcpIterations = lr.Iterations
		if !lr.Converged {
			return stepOutcome{}, lr.Err
		}
		z = lr.Z
	}

	full := red.Reconstruct(z)
	for _, d := range flat {
		if r, ok := d.(device.Reactive); ok {
			r.UpdateHistory(full)
		}
	}

	voltages := make(map[string]float64, len(sys.NodeNames))
	for i, name := range sys.NodeNames {
		voltages[name] = full[i]
	}
	currents := make(map[string]float64)
	for _, d := range flat {
		if br, ok := d.(interface{ BranchExtra() device.ExtraRef }); ok {
			currents[d.Name()] = full[sys.N+int(br.BranchExtra())]
		}
	}
	out.voltages = voltages
	out.currents = currents
	return out, nil
}

func seedDC(flat []device.Device, st device.Status, debug bool) {
	if err := dcop.SeedInitialConditions(flat, st); err != nil && debug {
		log.Printf("sim: DC-MCP operating-point solve failed, falling back to zero initial conditions: %v", err)
	}
}

func numSteps(p Params) int {
	return int(math.Round((p.StopTime - p.StartTime) / p.TimeStep))
}

// Run executes the entire [StartTime, StopTime] transient in one call
// (spec.md SS4.7 "batch mode"). gates may be nil; it is the set of external
// PWM/gate drivers updated alongside every ordinary time-varying source.
func Run(components []device.Device, gates []*device.GateSchedule, params Params) (*result.Result, error) {
	params = params.withDefaults()
	if err := params.validate(); err != nil {
		return nil, err
	}

	flat := flatten(components)
	st := device.Status{Time: params.StartTime, TimeStep: params.TimeStep, Method: params.Method, Gmin: params.Gmin}
	seedDC(flat, st, params.Debug)

	res := result.New()
	stats := result.Stats{}
	start := time.Now()
	total := numSteps(params)
	t := params.StartTime

	for i := 0; i < total; i++ {
		if params.Cancel != nil {
			select {
			case <-params.Cancel:
				res.Info = result.Info{Method: params.Method, ExecutionTime: time.Since(start), Stats: stats}
				return res, nil
			default:
			}
		}

		st.StepCount++
		next := t + params.TimeStep
		if i == total-1 {
			next = params.StopTime
		}
		st.Time = next

		out, err := stepOnce(flat, gates, &st, params)
		if err != nil {
			stats.FailedSteps++
			return nil, classifyStepError(next, err)
		}
		if out.lcpInvoked {
			stats.LCPSolveCount++
			stats.LCPIterSum += out.lcpIterations
			if out.lcpIterations > stats.LCPIterMax {
				stats.LCPIterMax = out.lcpIterations
			}
		}
		stats.TotalSteps++
		res.AddTimePoint(next, out.voltages, out.currents)
		t = next
	}

	res.Info = result.Info{Method: params.Method, ExecutionTime: time.Since(start), Stats: stats}
	return res, nil
}

// Session is the stepped-mode handle (spec.md SS4.7 "stepped mode"): the
// caller drives time forward one StepForward call at a time, free to mutate
// a Gated device's state between calls (e.g. manual PWM toggling) in a way
// batch mode cannot support.
type Session struct {
	flat   []device.Device
	gates  []*device.GateSchedule
	params Params
	st     device.Status
	res    *result.Result
	stats  result.Stats
	start  time.Time
	total  int
	index  int
	t      float64
}

// InitializeStepped flattens components, runs the DC-MCP seed, and returns a
// Session ready for repeated StepForward calls.
func InitializeStepped(components []device.Device, gates []*device.GateSchedule, params Params) (*Session, error) {
	params = params.withDefaults()
	if err := params.validate(); err != nil {
		return nil, err
	}

	flat := flatten(components)
	st := device.Status{Time: params.StartTime, TimeStep: params.TimeStep, Method: params.Method, Gmin: params.Gmin}
	seedDC(flat, st, params.Debug)

	return &Session{
		flat: flat, gates: gates, params: params, st: st,
		res: result.New(), start: time.Now(), total: numSteps(params), t: params.StartTime,
	}, nil
}

// StepForward advances the session by exactly one time step.
func (s *Session) StepForward() error {
	if s.index >= s.total {
		return &SimError{Kind: InvalidInput, Err: fmt.Errorf("all %d steps already taken", s.total)}
	}

	s.st.StepCount++
	next := s.t + s.params.TimeStep
	if s.index == s.total-1 {
		next = s.params.StopTime
	}
	s.st.Time = next

	out, err := stepOnce(s.flat, s.gates, &s.st, s.params)
	if err != nil {
		s.stats.FailedSteps++
		return classifyStepError(next, err)
	}
	if out.lcpInvoked {
		s.stats.LCPSolveCount++
		s.stats.LCPIterSum += out.lcpIterations
		if out.lcpIterations > s.stats.LCPIterMax {
			s.stats.LCPIterMax = out.lcpIterations
		}
	}
	s.stats.TotalSteps++
	s.res.AddTimePoint(next, out.voltages, out.currents)
	s.t = next
	s.index++
	return nil
}

// Remaining reports how many StepForward calls are left before StopTime.
func (s *Session) Remaining() int { return s.total - s.index }

// Finalize stamps execution time and statistics and returns the accumulated
// Result. The Session may still be stepped further afterward; Finalize may
// be called again to get an updated snapshot.
func (s *Session) Finalize() *result.Result {
	s.res.Info = result.Info{Method: s.params.Method, ExecutionTime: time.Since(s.start), Stats: s.stats}
	return s.res
}
