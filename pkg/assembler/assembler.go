// Package assembler implements the MNA+LCP assembler (spec.md SS4.3): the
// five-pass procedure that turns a flattened component list plus the
// current step status into the augmented system (A, C, D, b, q) the Schur
// reducer consumes.
package assembler

import (
	"fmt"

	"github.com/switchsim/switchsim/internal/consts"
	"github.com/switchsim/switchsim/pkg/device"
	"github.com/switchsim/switchsim/pkg/linalg"
)

// System is the dense augmented system produced by one call to Build. B is
// not materialized separately from A: the z-variable columns a switch needs
// for its own incidence live inside A's column space directly (spec.md SS3's
// "[A B; C D]" block diagram is realized as one S-wide A plus a separate
// (C,D,q) complementarity definition).
type System struct {
	N, E, K, S int
	A          *linalg.Matrix
	C          *linalg.Matrix
	D          *linalg.Matrix
	B          linalg.Vector
	Q          linalg.Vector
	// ZExtras[k] is the global column (N + extra index) backing row/ordinal k.
	ZExtras []int
	// NodeNames is the pass-1 assigned node order, index i -> name.
	NodeNames []string
}

func (s *System) AddA(i, j int, v float64)     { s.A.Add(i, j, v) }
func (s *System) AddRHS(i int, v float64)      { s.B[i] += v }
func (s *System) AddC(row, col int, v float64) { s.C.Add(row, col, v) }
func (s *System) AddD(row, zcol int, v float64) { s.D.Add(row, zcol, v) }
func (s *System) AddQ(row int, v float64)       { s.Q[row] += v }

// Build runs passes 1-5 over components, which must already be flattened
// (no Composite left; spec.md SS4.7 step 1).
func Build(components []device.Device, st device.Status) (*System, error) {
	alloc := device.NewAllocator()

	// Pass 1 — analyze.
	for _, c := range components {
		if err := c.Analyze(alloc); err != nil {
			return nil, fmt.Errorf("assembler: analyze %s: %w", c.Name(), err)
		}
	}

	// Pass 2 — register LCP.
	var switches []device.Switch
	for _, c := range components {
		sw, ok := c.(device.Switch)
		if !ok {
			continue
		}
		if err := sw.RegisterLCP(alloc); err != nil {
			return nil, fmt.Errorf("assembler: register_lcp %s: %w", c.Name(), err)
		}
		switches = append(switches, sw)
	}

	n, e, k := alloc.NumNodes(), alloc.NumExtras(), alloc.NumRows()
	s := n + e

	// Pass 3 — allocate, zero-init, gmin regularization.
	sys := &System{
		N: n, E: e, K: k, S: s,
		A:         linalg.NewMatrix(s, s),
		C:         linalg.NewMatrix(k, s),
		D:         linalg.NewMatrix(k, k),
		B:         linalg.NewVector(s),
		Q:         linalg.NewVector(k),
		NodeNames: alloc.NodeNames(),
	}
	sys.ZExtras = make([]int, k)
	for i, er := range alloc.ZExtras() {
		sys.ZExtras[i] = n + int(er)
	}

	gmin := st.Gmin
	if gmin <= 0 {
		gmin = consts.DefaultGmin
	}
	for i := 0; i < n; i++ {
		sys.A.Add(i, i, gmin)
	}

	ctx := device.NewContext(sys, n)

	// Pass 4 — stamp linear (every non-switch component; spec.md SS4.3).
	for _, c := range components {
		lin, ok := c.(device.Linear)
		if !ok {
			continue
		}
		if err := lin.StampLinear(ctx, st); err != nil {
			return nil, fmt.Errorf("assembler: stamp_linear %s: %w", c.Name(), err)
		}
	}

	// Pass 5 — stamp LCP.
	for _, sw := range switches {
		if err := sw.StampLCP(ctx, st); err != nil {
			return nil, fmt.Errorf("assembler: stamp_lcp %s: %w", sw.Name(), err)
		}
	}

	return sys, nil
}
