// Package device defines the component capability set (spec.md SS4.2): the
// uniform contract the MNA+LCP assembler uses to stamp linear elements,
// companion-model reactive devices, time-varying sources, and
// complementarity-described switches, without either side holding a
// back-pointer into the other (spec.md SS9 "cyclic device <-> solver
// coupling"). Index handles (NodeRef/ExtraRef/ZRef) stand in for that
// missing back-pointer.
package device

import "strings"

// Method selects the implicit integration rule used to build a reactive
// device's companion model (spec.md SS3, SS4.7).
type Method int

const (
	BE Method = iota
	BDF2
)

func (m Method) String() string {
	switch m {
	case BE:
		return "BE"
	case BDF2:
		return "BDF2"
	default:
		return "Unknown"
	}
}

// NodeRef is a resolved node-voltage column, -1 for ground. It is final the
// moment Allocator.Node first sees a name.
type NodeRef int

const Ground NodeRef = -1

// ExtraRef is a 0-based index into the flat "extra variable" space (spec.md
// SS3: currents through voltage sources, inductors, switch channels, LCP
// diodes). Its real matrix column is NumNodes()+int(ExtraRef), resolved by a
// Context once N is final.
type ExtraRef int

// ZRef is the 0-based ordinal of an LCP pair among all K pairs registered
// this step; it indexes both C's row space and D's column space (spec.md
// SS4.3 "K_z = K one-to-one").
type ZRef int

// Status carries the per-step scalars every Stamp/UpdateCompanion call
// needs, threaded explicitly rather than read off a package global (spec.md
// SS5 "no global mutable state").
type Status struct {
	Time      float64
	TimeStep  float64
	Method    Method
	StepCount int
	Gmin      float64
}

// Device is the capability every circuit element implements. Analyze runs in
// the assembler's pass 1 (and, for switches, is followed by RegisterLCP in
// pass 2).
type Device interface {
	Name() string
	Analyze(a *Allocator) error
}

// Linear components (resistors, reactive companion models, sources) stamp
// directly into A/b during the assembler's pass 4.
type Linear interface {
	Device
	StampLinear(ctx *Context, st Status) error
}

// Switch is the general complementarity-described device — a plain diode or
// a MOSFET's body diode/channel — owning its own extra variables and
// complementarity rows, registered in pass 2 and stamped in pass 5 (spec.md
// SS4.3, SS4.5).
type Switch interface {
	Device
	RegisterLCP(a *Allocator) error
	StampLCP(ctx *Context, st Status) error
}

// Gated is the narrower capability of devices with an externally (or
// Vgs-vs-Vth) controlled gate, e.g. a MOSFET, as opposed to a plain diode
// which is always "on" in the complementarity sense (spec.md SS3 "Switch
// state").
type Gated interface {
	SetGate(on bool)
	Gate() bool
}

// Reactive devices own companion-model history, advanced exactly once per
// accepted step (spec.md SS3 invariant 5, SS4.2 update_history).
type Reactive interface {
	Device
	UpdateCompanion(h float64, method Method, step int)
	UpdateHistory(solution []float64)
}

// TimeVarying sources recompute their instantaneous value from the waveform
// spec (spec.md SS6: DC, SIN, PULSE).
type TimeVarying interface {
	Device
	UpdateTimeVarying(t float64)
}

// Cloner is required for DC-MCP preprocessing, which mutates a cloned
// component list into its operating-point equivalents without disturbing the
// transient instances (spec.md SS4.2, SS4.6).
type Cloner interface {
	Clone() Device
}

// InductiveDC is implemented by reactive devices the DC-MCP solver rewrites
// into a 0V short (spec.md SS4.6): inductors, and transformer windings.
type InductiveDC interface {
	Reactive
	Terminals() (string, string)
	SetInitialCurrent(i float64)
}

// CapacitiveDC is implemented by reactive devices the DC-MCP solver removes
// entirely (spec.md SS4.6): capacitors.
type CapacitiveDC interface {
	Reactive
	Terminals() (string, string)
	SetInitialVoltage(v float64)
}

// Composite exposes the primitive devices a meta-component (e.g. a
// transformer) decomposes into, so the assembler only ever sees primitives
// (spec.md SS4.7 step 1, SS9 "Transformers and other meta-components").
type Composite interface {
	Device
	Components() []Device
}

// Allocator assigns node and extra-variable indices across the assembler's
// analyze (pass 1) and register-lcp (pass 2) passes. It is never mutated
// again once pass 2 completes.
type Allocator struct {
	nodeIndex  map[string]int
	nodeOrder  []string
	extraCount int
	rowCount   int
	zExtras    []ExtraRef // zExtras[k] is the extra index backing row/ordinal k
}

func NewAllocator() *Allocator {
	return &Allocator{nodeIndex: make(map[string]int)}
}

// Node returns the stable column for a node name, assigning a fresh one on
// first sight. Ground ("0" or "gnd", case-insensitive) always resolves to
// Ground and is never counted among N.
func (a *Allocator) Node(name string) NodeRef {
	if name == "" || name == "0" || strings.EqualFold(name, "gnd") {
		return Ground
	}
	if idx, ok := a.nodeIndex[name]; ok {
		return NodeRef(idx)
	}
	idx := len(a.nodeIndex)
	a.nodeIndex[name] = idx
	a.nodeOrder = append(a.nodeOrder, name)
	return NodeRef(idx)
}

// Extra allocates one non-LCP extra variable (a voltage-source or inductor
// current, or an MNA-modeled switch channel current).
func (a *Allocator) Extra() ExtraRef {
	e := ExtraRef(a.extraCount)
	a.extraCount++
	return e
}

// LCPPair allocates one extra variable together with its complementarity
// row, keeping the pairing sequential so row k always pairs with the k-th
// LCP extra (spec.md SS4.3).
func (a *Allocator) LCPPair() (ExtraRef, ZRef) {
	e := a.Extra()
	z := ZRef(a.rowCount)
	a.rowCount++
	a.zExtras = append(a.zExtras, e)
	return e, z
}

func (a *Allocator) NumNodes() int      { return len(a.nodeIndex) }
func (a *Allocator) NumExtras() int     { return a.extraCount }
func (a *Allocator) NumRows() int       { return a.rowCount }
func (a *Allocator) NodeNames() []string { return a.nodeOrder }

// ZExtras returns, for each row/ordinal k in 0..NumRows()-1, the ExtraRef
// it pairs with — the reducer's map from J_z columns back to extra index.
func (a *Allocator) ZExtras() []ExtraRef { return a.zExtras }

// StampTarget is the narrow surface the assembler's System exposes to
// Context; it keeps device from importing the assembler package.
type StampTarget interface {
	AddA(i, j int, v float64)
	AddRHS(i int, v float64)
	AddC(row, col int, v float64)
	AddD(row, zcol int, v float64)
	AddQ(row int, v float64)
}

// Context is the per-step stamping handle passed to StampLinear/StampLCP. It
// resolves ExtraRef to a real column (once N is final) and offers the small
// stamping idioms every two-terminal linear device repeats.
type Context struct {
	target   StampTarget
	numNodes int
}

func NewContext(target StampTarget, numNodes int) *Context {
	return &Context{target: target, numNodes: numNodes}
}

func (c *Context) NumNodes() int { return c.numNodes }

func (c *Context) ExtraCol(e ExtraRef) int { return c.numNodes + int(e) }

func (c *Context) AddA(i, j int, v float64) {
	if i < 0 || j < 0 {
		return
	}
	c.target.AddA(i, j, v)
}

func (c *Context) AddRHS(i int, v float64) {
	if i < 0 {
		return
	}
	c.target.AddRHS(i, v)
}

func (c *Context) AddC(row int, col int, v float64) {
	if col < 0 {
		return
	}
	c.target.AddC(row, col, v)
}

func (c *Context) AddD(row, zcol int, v float64) { c.target.AddD(row, zcol, v) }

func (c *Context) AddQ(row int, v float64) { c.target.AddQ(row, v) }

// StampConductance stamps the familiar four-corner conductance block shared
// by resistors, capacitor/inductor companion models, and diode small-signal
// conductance (the teacher repeats this block in every two-terminal device;
// factoring it here removes that repetition).
func (c *Context) StampConductance(n1, n2 NodeRef, g float64) {
	i1, i2 := int(n1), int(n2)
	if i1 >= 0 {
		c.AddA(i1, i1, g)
		if i2 >= 0 {
			c.AddA(i1, i2, -g)
		}
	}
	if i2 >= 0 {
		c.AddA(i2, i2, g)
		if i1 >= 0 {
			c.AddA(i2, i1, -g)
		}
	}
}

// StampCurrentInto injects a current i flowing from n1 to n2 into the RHS,
// the shared idiom behind Norton companion models and current sources.
func (c *Context) StampCurrentInto(n1, n2 NodeRef, i float64) {
	if int(n1) >= 0 {
		c.AddRHS(int(n1), -i)
	}
	if int(n2) >= 0 {
		c.AddRHS(int(n2), i)
	}
}

// NodeVoltage reads a node's voltage out of a full solution vector, treating
// ground as 0 — the read-side counterpart of StampConductance/StampCurrentInto.
func NodeVoltage(solution []float64, n NodeRef) float64 {
	if n < 0 {
		return 0
	}
	return solution[int(n)]
}
