package device

import "fmt"

// Inductor is a Reactive device exposing a Thevenin companion model
// (R_eq, V_eq) stamped with the classical MNA voltage-source idiom: it owns
// a branch-current extra variable and its own defining row in A (spec.md
// SS3, SS4.3 pass 4).
type Inductor struct {
	name      string
	n1, n2    NodeRef
	node1     string
	node2     string
	branch    ExtraRef
	branchCol int
	L         float64
	iPrev1    float64 // i_{n-1}
	iPrev2    float64 // i_{n-2}
	rEq       float64
	vEq       float64
}

func NewInductor(name, node1, node2 string, l float64) *Inductor {
	return &Inductor{name: name, node1: node1, node2: node2, L: l}
}

// SetInitialCurrent seeds i_{n-1} (and i_{n-2}) from a netlist IC() or the
// DC-MCP operating point (spec.md SS4.6).
func (l *Inductor) SetInitialCurrent(i float64) {
	l.iPrev1, l.iPrev2 = i, i
}

func (l *Inductor) Name() string { return l.name }

// BranchExtra exposes the extra variable carrying I_L, so the result sink
// can report it without a Context (spec.md SS4.8).
func (l *Inductor) BranchExtra() ExtraRef { return l.branch }

// Terminals implements device.InductiveDC.
func (l *Inductor) Terminals() (string, string) { return l.node1, l.node2 }

func (l *Inductor) Analyze(a *Allocator) error {
	if l.L <= 0 {
		return fmt.Errorf("inductor %s: non-positive inductance %g", l.name, l.L)
	}
	l.n1 = a.Node(l.node1)
	l.n2 = a.Node(l.node2)
	l.branch = a.Extra()
	return nil
}

// UpdateCompanion recomputes (R_eq, V_eq) from the history samples (spec.md
// SS3: BE "R_eq=L/h, V_eq=-(L/h)i_{n-1}"; BDF2 "R_eq=(3/2)L/h,
// V_eq=-(L/h)(2 i_{n-1} - 1/2 i_{n-2})").
func (l *Inductor) UpdateCompanion(h float64, method Method, step int) {
	if method == BDF2 && step > 1 {
		l.rEq = 1.5 * l.L / h
		l.vEq = -(l.L / h) * (2*l.iPrev1 - 0.5*l.iPrev2)
		return
	}
	l.rEq = l.L / h
	l.vEq = -(l.L / h) * l.iPrev1
}

func (l *Inductor) StampLinear(ctx *Context, _ Status) error {
	l.branchCol = ctx.ExtraCol(l.branch)
	bIdx := l.branchCol
	n1, n2 := int(l.n1), int(l.n2)

	if n1 >= 0 {
		ctx.AddA(n1, bIdx, 1)
		ctx.AddA(bIdx, n1, 1)
	}
	if n2 >= 0 {
		ctx.AddA(n2, bIdx, -1)
		ctx.AddA(bIdx, n2, -1)
	}
	ctx.AddA(bIdx, bIdx, -l.rEq)
	ctx.AddRHS(bIdx, l.vEq)
	return nil
}

func (l *Inductor) UpdateHistory(solution []float64) {
	i := solution[l.branchCol]
	l.iPrev2 = l.iPrev1
	l.iPrev1 = i
}

func (l *Inductor) Clone() Device {
	clone := *l
	return &clone
}
