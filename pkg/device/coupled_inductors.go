package device

import (
	"fmt"
	"math"
)

// CoupledInductors is the meta-component backing a transformer: two windings
// sharing a mutual inductance M = k*sqrt(L1*L2). It is never stamped
// directly — the driver flattens it via Components() before analysis so the
// assembler only ever sees the two winding primitives (spec.md SS9
// "Transformers and other meta-components").
type CoupledInductors struct {
	name string
	w1   *winding
	w2   *winding
}

// NewCoupledInductors builds a two-winding transformer with coupling
// coefficient k in [0,1].
func NewCoupledInductors(name string, node1a, node1b string, l1 float64, node2a, node2b string, l2 float64, k float64) (*CoupledInductors, error) {
	if l1 <= 0 || l2 <= 0 {
		return nil, fmt.Errorf("coupled inductors %s: non-positive inductance", name)
	}
	m := k * math.Sqrt(l1*l2)
	w1 := &winding{name: name + ".1", node1: node1a, node2: node1b, L: l1, M: m}
	w2 := &winding{name: name + ".2", node1: node2a, node2: node2b, L: l2, M: m}
	w1.partner = w2
	w2.partner = w1
	return &CoupledInductors{name: name, w1: w1, w2: w2}, nil
}

func (t *CoupledInductors) Name() string { return t.name }

func (t *CoupledInductors) Analyze(*Allocator) error {
	return fmt.Errorf("coupled inductors %s: must be flattened via Components() before analysis", t.name)
}

func (t *CoupledInductors) Components() []Device { return []Device{t.w1, t.w2} }

// SetInitialCurrents seeds both windings' histories (spec.md SS4.6).
func (t *CoupledInductors) SetInitialCurrents(i1, i2 float64) {
	t.w1.iPrev1, t.w1.iPrev2 = i1, i1
	t.w2.iPrev1, t.w2.iPrev2 = i2, i2
}

func (t *CoupledInductors) Clone() Device {
	w1 := *t.w1
	w2 := *t.w2
	w1.partner = &w2
	w2.partner = &w1
	return &CoupledInductors{name: t.name, w1: &w1, w2: &w2}
}

// winding is one coil of a CoupledInductors pair. Its companion model is the
// self Thevenin term of a plain Inductor plus a mutual cross-term that reads
// the partner's branch column and history each step.
type winding struct {
	name      string
	n1, n2    NodeRef
	node1     string
	node2     string
	branch    ExtraRef
	branchCol int
	L         float64
	M         float64
	iPrev1    float64
	iPrev2    float64
	rEq       float64
	vEqSelf   float64
	partner   *winding
}

func (w *winding) Name() string { return w.name }

// Terminals implements device.InductiveDC.
func (w *winding) Terminals() (string, string) { return w.node1, w.node2 }

// BranchExtra exposes the extra variable carrying this winding's current, so
// the result sink can report it without a Context (spec.md SS4.8).
func (w *winding) BranchExtra() ExtraRef { return w.branch }

// SetInitialCurrent implements device.InductiveDC. The DC-MCP solver treats
// each winding as an independent short, so mutual coupling plays no part in
// seeding its own history.
func (w *winding) SetInitialCurrent(i float64) {
	w.iPrev1, w.iPrev2 = i, i
}

func (w *winding) Analyze(a *Allocator) error {
	w.n1 = a.Node(w.node1)
	w.n2 = a.Node(w.node2)
	w.branch = a.Extra()
	return nil
}

// UpdateCompanion recomputes this winding's self (R_eq, V_eq); the mutual
// contribution is folded in during StampLinear once the partner's branch
// column is resolvable.
func (w *winding) UpdateCompanion(h float64, method Method, step int) {
	if method == BDF2 && step > 1 {
		w.rEq = 1.5 * w.L / h
		w.vEqSelf = -(w.L / h) * (2*w.iPrev1 - 0.5*w.iPrev2)
		return
	}
	w.rEq = w.L / h
	w.vEqSelf = -(w.L / h) * w.iPrev1
}

func (w *winding) StampLinear(ctx *Context, st Status) error {
	w.branchCol = ctx.ExtraCol(w.branch)
	partnerCol := ctx.ExtraCol(w.partner.branch)
	bIdx := w.branchCol
	n1, n2 := int(w.n1), int(w.n2)

	if n1 >= 0 {
		ctx.AddA(n1, bIdx, 1)
		ctx.AddA(bIdx, n1, 1)
	}
	if n2 >= 0 {
		ctx.AddA(n2, bIdx, -1)
		ctx.AddA(bIdx, n2, -1)
	}

	h := st.TimeStep
	mCoeff := w.M / h
	vEqMutual := -mCoeff * w.partner.iPrev1
	if st.Method == BDF2 && st.StepCount > 1 {
		mCoeff = 1.5 * w.M / h
		vEqMutual = -(w.M / h) * (2*w.partner.iPrev1 - 0.5*w.partner.iPrev2)
	}
	ctx.AddA(bIdx, bIdx, -w.rEq)
	ctx.AddA(bIdx, partnerCol, -mCoeff)
	ctx.AddRHS(bIdx, w.vEqSelf+vEqMutual)
	return nil
}

// Clone returns a shallow copy. The dcop DC-MCP seed only needs windings to
// satisfy Cloner so the generic clone-everything pass doesn't reject a
// transformer; the clone is type-switched into InductiveDC and immediately
// replaced by a 0V source, so its partner pointer is never dereferenced.
func (w *winding) Clone() Device {
	clone := *w
	return &clone
}

func (w *winding) UpdateHistory(solution []float64) {
	i := solution[w.branchCol]
	w.iPrev2 = w.iPrev1
	w.iPrev1 = i
}
