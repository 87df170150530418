package device

import "fmt"

// Capacitor is a Reactive device exposing a Norton companion model
// (G_eq, I_eq) under Backward Euler or BDF2 (spec.md SS3, SS4.3 pass 4).
type Capacitor struct {
	name        string
	n1, n2      NodeRef
	node1       string
	node2       string
	C           float64
	vPrev1      float64 // v_{n-1}
	vPrev2      float64 // v_{n-2}
	gEq         float64
	iEq         float64
}

func NewCapacitor(name, node1, node2 string, c float64) *Capacitor {
	return &Capacitor{name: name, node1: node1, node2: node2, C: c}
}

// SetInitialVoltage seeds v_{n-1} (and v_{n-2}) ahead of the first step,
// either from a netlist IC() or from the DC-MCP operating point (spec.md SS4.6).
func (c *Capacitor) SetInitialVoltage(v float64) {
	c.vPrev1, c.vPrev2 = v, v
}

func (c *Capacitor) Name() string { return c.name }

// Terminals implements device.CapacitiveDC.
func (c *Capacitor) Terminals() (string, string) { return c.node1, c.node2 }

func (c *Capacitor) Analyze(a *Allocator) error {
	if c.C <= 0 {
		return fmt.Errorf("capacitor %s: non-positive capacitance %g", c.name, c.C)
	}
	c.n1 = a.Node(c.node1)
	c.n2 = a.Node(c.node2)
	return nil
}

// UpdateCompanion recomputes (G_eq, I_eq) from the history samples (spec.md
// SS3 "Dual forms for capacitors").
func (c *Capacitor) UpdateCompanion(h float64, method Method, step int) {
	if method == BDF2 && step > 1 {
		c.gEq = 1.5 * c.C / h
		c.iEq = -(c.C / h) * (2*c.vPrev1 - 0.5*c.vPrev2)
		return
	}
	c.gEq = c.C / h
	c.iEq = -(c.C / h) * c.vPrev1
}

func (c *Capacitor) StampLinear(ctx *Context, _ Status) error {
	ctx.StampConductance(c.n1, c.n2, c.gEq)
	ctx.StampCurrentInto(c.n1, c.n2, c.iEq)
	return nil
}

func (c *Capacitor) UpdateHistory(solution []float64) {
	v := NodeVoltage(solution, c.n1) - NodeVoltage(solution, c.n2)
	c.vPrev2 = c.vPrev1
	c.vPrev1 = v
}

func (c *Capacitor) Clone() Device {
	clone := *c
	return &clone
}
