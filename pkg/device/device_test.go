package device

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeTarget is a minimal StampTarget recording every call, letting device
// tests assert stamping without pulling in the assembler package.
type fakeTarget struct {
	a map[[2]int]float64
	b map[int]float64
	c map[[2]int]float64
	d map[[2]int]float64
	q map[int]float64
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		a: map[[2]int]float64{}, b: map[int]float64{},
		c: map[[2]int]float64{}, d: map[[2]int]float64{}, q: map[int]float64{},
	}
}

func (f *fakeTarget) AddA(i, j int, v float64)    { f.a[[2]int{i, j}] += v }
func (f *fakeTarget) AddRHS(i int, v float64)     { f.b[i] += v }
func (f *fakeTarget) AddC(row, col int, v float64) { f.c[[2]int{row, col}] += v }
func (f *fakeTarget) AddD(row, z int, v float64)  { f.d[[2]int{row, z}] += v }
func (f *fakeTarget) AddQ(row int, v float64)     { f.q[row] += v }

func TestResistorStampsFourCorners(t *testing.T) {
	require := require.New(t)

	r := NewResistor("R1", "1", "2", 1000)
	alloc := NewAllocator()
	require.NoError(r.Analyze(alloc))
	require.Equal(2, alloc.NumNodes())

	ft := newFakeTarget()
	ctx := NewContext(ft, alloc.NumNodes())
	require.NoError(r.StampLinear(ctx, Status{}))

	g := 1.0 / 1000.0
	require.InDelta(g, ft.a[[2]int{0, 0}], 1e-15)
	require.InDelta(-g, ft.a[[2]int{0, 1}], 1e-15)
	require.InDelta(-g, ft.a[[2]int{1, 0}], 1e-15)
	require.InDelta(g, ft.a[[2]int{1, 1}], 1e-15)
}

func TestInductorCompanionBE(t *testing.T) {
	require := require.New(t)

	l := NewInductor("L1", "in", "out", 150e-6)
	l.SetInitialCurrent(0.1)
	alloc := NewAllocator()
	require.NoError(l.Analyze(alloc))

	h := 1e-6
	l.UpdateCompanion(h, BE, 1)
	require.InDelta(150e-6/h, l.rEq, 1e-9)
	require.InDelta(-(150e-6/h)*0.1, l.vEq, 1e-9)
}

func TestInductorCompanionBDF2ForcesBEOnStepOne(t *testing.T) {
	require := require.New(t)

	l := NewInductor("L1", "in", "out", 150e-6)
	l.SetInitialCurrent(0.1)
	alloc := NewAllocator()
	require.NoError(l.Analyze(alloc))

	h := 1e-6
	// step 1 with BDF2 requested must behave like BE (spec.md SS9).
	l.UpdateCompanion(h, BDF2, 1)
	require.InDelta(150e-6/h, l.rEq, 1e-9)

	l.iPrev2 = 0.1
	l.iPrev1 = 0.12
	l.UpdateCompanion(h, BDF2, 2)
	require.InDelta(1.5*150e-6/h, l.rEq, 1e-9)
	require.InDelta(-(150e-6/h)*(2*0.12-0.5*0.1), l.vEq, 1e-9)
}

func TestCapacitorCompanionBE(t *testing.T) {
	require := require.New(t)

	c := NewCapacitor("C1", "out", "0", 1e-6)
	c.SetInitialVoltage(0)
	h := 1e-7
	c.UpdateCompanion(h, BE, 1)
	require.InDelta(1e-6/h, c.gEq, 1e-12)
	require.InDelta(0, c.iEq, 1e-12)
}

func TestDiodeSignDiscipline(t *testing.T) {
	require := require.New(t)

	d := NewDiode("D1", "anode", "cathode", 0.7, 1e-3)
	alloc := NewAllocator()
	require.NoError(d.Analyze(alloc))
	require.NoError(d.RegisterLCP(alloc))
	require.Equal(1, alloc.NumRows())

	ft := newFakeTarget()
	ctx := NewContext(ft, alloc.NumNodes())
	require.NoError(d.StampLCP(ctx, Status{}))

	anode, cathode := 0, 1
	idCol := ctx.ExtraCol(d.id)
	require.InDelta(1, ft.a[[2]int{anode, idCol}], 1e-15)
	require.InDelta(-1, ft.a[[2]int{cathode, idCol}], 1e-15)
	require.InDelta(1, ft.c[[2]int{0, anode}], 1e-15)
	require.InDelta(-1, ft.c[[2]int{0, cathode}], 1e-15)
	require.InDelta(-1e-3, ft.d[[2]int{0, 0}], 1e-15)
	require.InDelta(-0.7, ft.q[0], 1e-15)
}

func TestMOSFETChannelGateSwitchesConductance(t *testing.T) {
	require := require.New(t)

	m := NewMOSFET("M1", "d", "s", "s", "d", 0.05, 1e6, 0.7, 1e-3)
	alloc := NewAllocator()
	require.NoError(m.Analyze(alloc))
	require.NoError(m.RegisterLCP(alloc))

	ft := newFakeTarget()
	ctx := NewContext(ft, alloc.NumNodes())

	m.SetGate(false)
	require.NoError(m.StampLCP(ctx, Status{}))
	require.InDelta(1.0/1e6, ft.a[[2]int{0, 0}], 1e-12)

	ft2 := newFakeTarget()
	ctx2 := NewContext(ft2, alloc.NumNodes())
	m.SetGate(true)
	require.NoError(m.StampLCP(ctx2, Status{}))
	require.InDelta(1.0/0.05, ft2.a[[2]int{0, 0}], 1e-9)
}

func TestWaveformPulse(t *testing.T) {
	require := require.New(t)

	w := NewPulseWaveform(0, 5, 1e-6, 1e-7, 1e-7, 4e-6, 1e-5)
	require.InDelta(0, w.Value(0), 1e-12)
	require.InDelta(0, w.Value(0.5e-6), 1e-12)
	require.InDelta(5, w.Value(1e-6+1e-7+2e-6), 1e-9)
}

func TestCoupledInductorsCloneRewiresPartners(t *testing.T) {
	require := require.New(t)

	tx, err := NewCoupledInductors("T1", "p1", "p2", 100e-6, "s1", "s2", 25e-6, 0.98)
	require.NoError(err)

	clone := tx.Clone().(*CoupledInductors)
	require.NotSame(tx.w1, clone.w1)
	require.Same(clone.w2, clone.w1.partner)
	require.Same(clone.w1, clone.w2.partner)
}
