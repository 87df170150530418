package device

import "fmt"

// Diode is the canonical LCP-described device (spec.md SS4.3 "Sign
// discipline"). Current I_d flows anode->cathode and is the z-variable;
// w = V_anode - V_cathode - Ron*I_d - Vf.
type Diode struct {
	name           string
	anode, cathode NodeRef
	anodeName      string
	cathodeName    string
	Vf             float64
	Ron            float64

	id  ExtraRef
	row ZRef
}

func NewDiode(name, anodeName, cathodeName string, vf, ron float64) *Diode {
	return &Diode{name: name, anodeName: anodeName, cathodeName: cathodeName, Vf: vf, Ron: ron}
}

func (d *Diode) Name() string { return d.name }

func (d *Diode) Analyze(a *Allocator) error {
	if d.Ron <= 0 {
		return fmt.Errorf("diode %s: non-positive Ron %g", d.name, d.Ron)
	}
	d.anode = a.Node(d.anodeName)
	d.cathode = a.Node(d.cathodeName)
	return nil
}

func (d *Diode) RegisterLCP(a *Allocator) error {
	d.id, d.row = a.LCPPair()
	return nil
}

func (d *Diode) StampLCP(ctx *Context, _ Status) error {
	idCol := ctx.ExtraCol(d.id)
	row := int(d.row)

	// Incidence of I_d into the KCL rows at anode/cathode.
	ctx.AddA(int(d.anode), idCol, 1)
	ctx.AddA(int(d.cathode), idCol, -1)

	// w = V_anode - V_cathode - Ron*I_d - Vf  (C over x-columns, D over the
	// z-ordinal of this device's own extra).
	ctx.AddC(row, int(d.anode), 1)
	ctx.AddC(row, int(d.cathode), -1)
	ctx.AddD(row, row, -d.Ron)
	ctx.AddQ(row, -d.Vf)
	return nil
}

// Current reads I_d out of a reconstructed full solution vector.
func (d *Diode) Current(solution []float64, ctx *Context) float64 {
	return solution[ctx.ExtraCol(d.id)]
}

// BranchExtra exposes the extra variable carrying I_d, so the result sink
// can report it without holding a Context (spec.md SS4.8).
func (d *Diode) BranchExtra() ExtraRef { return d.id }

func (d *Diode) Clone() Device {
	clone := *d
	return &clone
}
