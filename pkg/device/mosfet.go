package device

import "fmt"

// MOSFET is an ideal switch: a gate-controlled channel conductance stamped
// directly into A (Ron when on, Roff when off — spec.md SS9 resolves the
// "two divergent drafts" open question by keeping the channel out of the
// complementarity system entirely) plus a body diode described by the same
// LCP sign discipline as a plain Diode (spec.md SS4.3, SS4.5, SS8 "Body-diode
// complementarity verified when Ron/Roff ratio is 1e12").
type MOSFET struct {
	name           string
	drain, source  NodeRef
	drainName      string
	sourceName     string
	Ron            float64
	Roff           float64
	gate           bool
	body           *Diode
}

// NewMOSFET wires an ideal channel between drainName/sourceName and a body
// diode between bodyAnodeName/bodyCathodeName (typically source->drain for
// an N-channel low-side switch).
func NewMOSFET(name, drainName, sourceName, bodyAnodeName, bodyCathodeName string, ron, roff, bodyVf, bodyRon float64) *MOSFET {
	return &MOSFET{
		name:       name,
		drainName:  drainName,
		sourceName: sourceName,
		Ron:        ron,
		Roff:       roff,
		body:       NewDiode(name+".body", bodyAnodeName, bodyCathodeName, bodyVf, bodyRon),
	}
}

func (m *MOSFET) Name() string { return m.name }

func (m *MOSFET) Analyze(a *Allocator) error {
	if m.Ron <= 0 || m.Roff <= 0 {
		return fmt.Errorf("mosfet %s: Ron/Roff must be positive, got %g/%g", m.name, m.Ron, m.Roff)
	}
	m.drain = a.Node(m.drainName)
	m.source = a.Node(m.sourceName)
	return m.body.Analyze(a)
}

func (m *MOSFET) RegisterLCP(a *Allocator) error { return m.body.RegisterLCP(a) }

// StampLCP stamps the channel conductance — chosen by the current gate
// state — alongside the body diode's complementarity row. The channel has
// no MNA extra of its own, so its "channel equation into A" (spec.md SS4.3
// pass 5 step ii) is just this conductance block; a MOSFET is categorically
// a switch, so both pieces are stamped in pass 5, never pass 4.
func (m *MOSFET) StampLCP(ctx *Context, st Status) error {
	g := 1.0 / m.Roff
	if m.gate {
		g = 1.0 / m.Ron
	}
	ctx.StampConductance(m.drain, m.source, g)
	return m.body.StampLCP(ctx, st)
}

func (m *MOSFET) SetGate(on bool) { m.gate = on }

func (m *MOSFET) Gate() bool { return m.gate }

// BodyDiodeCurrent reads the body diode's z-variable out of a reconstructed
// solution vector.
func (m *MOSFET) BodyDiodeCurrent(solution []float64, ctx *Context) float64 {
	return m.body.Current(solution, ctx)
}

// BranchExtra exposes the body diode's extra variable, so the result sink
// reports a MOSFET's conduction current the same uniform way as any other
// branch (spec.md SS4.8).
func (m *MOSFET) BranchExtra() ExtraRef { return m.body.BranchExtra() }

func (m *MOSFET) Clone() Device {
	clone := *m
	bodyClone := *m.body
	clone.body = &bodyClone
	return &clone
}
