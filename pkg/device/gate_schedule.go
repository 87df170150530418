package device

import "math"

// GateSchedule drives a Gated switch's on/off state from a fixed-frequency,
// fixed-duty PWM pattern. It implements Device+TimeVarying so the transient
// driver can update it in the same "update sources" pass as an ordinary
// waveform (spec.md SS8 scenario 4 "MOSFET PWM 100 kHz, D=0.5"; SS4.7 notes
// stepped mode lets external code toggle gates between steps, but a fixed
// duty cycle is common enough to ground as a reusable helper).
type GateSchedule struct {
	name   string
	target Gated
	freq   float64
	duty   float64
}

func NewGateSchedule(name string, target Gated, freqHz, duty float64) *GateSchedule {
	return &GateSchedule{name: name, target: target, freq: freqHz, duty: duty}
}

func (g *GateSchedule) Name() string { return g.name }

func (g *GateSchedule) Analyze(*Allocator) error { return nil }

func (g *GateSchedule) UpdateTimeVarying(t float64) {
	period := 1.0 / g.freq
	phase := math.Mod(t, period) / period
	g.target.SetGate(phase < g.duty)
}
