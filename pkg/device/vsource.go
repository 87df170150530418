package device

// VoltageSource stamps the classical MNA voltage-defining branch
// `V_+ - V_- = V(t)` via an owned current extra (spec.md SS4.3 pass 4).
type VoltageSource struct {
	name      string
	n1, n2    NodeRef
	node1     string
	node2     string
	branch    ExtraRef
	branchCol int
	wave      Waveform
	value     float64
}

func NewVoltageSource(name, node1, node2 string, wave Waveform) *VoltageSource {
	return &VoltageSource{name: name, node1: node1, node2: node2, wave: wave}
}

func (v *VoltageSource) Name() string { return v.name }

func (v *VoltageSource) Analyze(a *Allocator) error {
	v.n1 = a.Node(v.node1)
	v.n2 = a.Node(v.node2)
	v.branch = a.Extra()
	return nil
}

func (v *VoltageSource) UpdateTimeVarying(t float64) { v.value = v.wave.Value(t) }

func (v *VoltageSource) StampLinear(ctx *Context, _ Status) error {
	v.branchCol = ctx.ExtraCol(v.branch)
	bIdx := v.branchCol
	n1, n2 := int(v.n1), int(v.n2)

	if n1 >= 0 {
		ctx.AddA(bIdx, n1, 1)
		ctx.AddA(n1, bIdx, 1)
	}
	if n2 >= 0 {
		ctx.AddA(bIdx, n2, -1)
		ctx.AddA(n2, bIdx, -1)
	}
	ctx.AddRHS(bIdx, v.value)
	return nil
}

// BranchCurrent is the current flowing n1->n2 through the source, valid
// after the most recent StampLinear/solve cycle; used by the result sink
// and by the DC-MCP solver to seed inductor initial conditions.
func (v *VoltageSource) BranchCurrent(solution []float64) float64 { return solution[v.branchCol] }

func (v *VoltageSource) BranchExtra() ExtraRef { return v.branch }

// SetDC replaces the waveform with a constant value and applies it at once.
func (v *VoltageSource) SetDC(value float64) {
	v.wave = NewDCWaveform(value)
	v.value = value
}

func (v *VoltageSource) Clone() Device {
	clone := *v
	return &clone
}
