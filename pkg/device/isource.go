package device

// CurrentSource injects its instantaneous value directly into the two
// incident KCL rows (spec.md SS4.3 pass 4 "Current source: contributes to b
// at the two nodes").
type CurrentSource struct {
	name   string
	n1, n2 NodeRef
	node1  string
	node2  string
	wave   Waveform
	value  float64
}

func NewCurrentSource(name, node1, node2 string, wave Waveform) *CurrentSource {
	return &CurrentSource{name: name, node1: node1, node2: node2, wave: wave}
}

func (i *CurrentSource) Name() string { return i.name }

func (i *CurrentSource) Analyze(a *Allocator) error {
	i.n1 = a.Node(i.node1)
	i.n2 = a.Node(i.node2)
	return nil
}

func (i *CurrentSource) UpdateTimeVarying(t float64) { i.value = i.wave.Value(t) }

// StampLinear injects i.value flowing n1->n2, mirroring the companion-model
// Norton idiom shared with the capacitor.
func (i *CurrentSource) StampLinear(ctx *Context, _ Status) error {
	ctx.StampCurrentInto(i.n1, i.n2, i.value)
	return nil
}

func (i *CurrentSource) Clone() Device {
	clone := *i
	return &clone
}
