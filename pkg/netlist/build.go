package netlist

import (
	"fmt"
	"strings"

	"github.com/switchsim/switchsim/pkg/device"
)

// Build converts a parsed Circuit into the flattened-ready component list
// sim.Run/InitializeStepped expect, plus any gate schedules implied by
// inline "S ... PWM freq duty" cards (spec.md's supplemented netlist
// features: S/K cards, .model).
func Build(ckt *Circuit) ([]device.Device, []*device.GateSchedule, error) {
	lInductors := make(map[string]*Element)
	coupled := make(map[string]bool) // inductor names consumed by a K card

	for i := range ckt.Elements {
		e := &ckt.Elements[i]
		if e.Type == "L" {
			lInductors[e.Name] = e
		}
	}
	for _, e := range ckt.Elements {
		if e.Type != "K" {
			continue
		}
		coupled[e.Params["l1"]] = true
		coupled[e.Params["l2"]] = true
	}

	var components []device.Device
	var gates []*device.GateSchedule
	built := make(map[string]device.Device) // for S-card PWM target lookup

	for _, e := range ckt.Elements {
		switch e.Type {
		case "L":
			if coupled[e.Name] {
				continue // folded into a CoupledInductors below
			}
			l := device.NewInductor(e.Name, e.Nodes[0], e.Nodes[1], e.Value)
			if ic, ok := e.Params["ic"]; ok {
				v, err := ParseValue(ic)
				if err != nil {
					return nil, nil, fmt.Errorf("netlist: %s ic=: %w", e.Name, err)
				}
				l.SetInitialCurrent(v)
			}
			components = append(components, l)
			built[e.Name] = l

		case "C":
			c := device.NewCapacitor(e.Name, e.Nodes[0], e.Nodes[1], e.Value)
			if ic, ok := e.Params["ic"]; ok {
				v, err := ParseValue(ic)
				if err != nil {
					return nil, nil, fmt.Errorf("netlist: %s ic=: %w", e.Name, err)
				}
				c.SetInitialVoltage(v)
			}
			components = append(components, c)
			built[e.Name] = c

		case "R":
			r := device.NewResistor(e.Name, e.Nodes[0], e.Nodes[1], e.Value)
			components = append(components, r)
			built[e.Name] = r

		case "V", "I":
			wave, err := buildWaveform(e)
			if err != nil {
				return nil, nil, err
			}
			var d device.Device
			if e.Type == "V" {
				d = device.NewVoltageSource(e.Name, e.Nodes[0], e.Nodes[1], wave)
			} else {
				d = device.NewCurrentSource(e.Name, e.Nodes[0], e.Nodes[1], wave)
			}
			components = append(components, d)
			built[e.Name] = d

		case "D":
			m, ok := ckt.Models[e.Model]
			if !ok || m.Kind != "D" {
				return nil, nil, fmt.Errorf("netlist: diode %s references unknown model %q", e.Name, e.Model)
			}
			d := device.NewDiode(e.Name, e.Nodes[0], e.Nodes[1], m.Vf, m.Ron)
			components = append(components, d)
			built[e.Name] = d

		case "S":
			m, ok := ckt.Models[e.Model]
			if !ok || m.Kind != "NMOS" {
				return nil, nil, fmt.Errorf("netlist: switch %s references unknown model %q", e.Name, e.Model)
			}
			mos := device.NewMOSFET(e.Name, e.Nodes[0], e.Nodes[1], e.Nodes[1], e.Nodes[0], m.Ron, m.Roff, m.Vf, m.Ron)
			components = append(components, mos)
			built[e.Name] = mos

			if freqStr, ok := e.Params["pwm_freq"]; ok {
				freq, err := ParseValue(freqStr)
				if err != nil {
					return nil, nil, fmt.Errorf("netlist: %s PWM frequency: %w", e.Name, err)
				}
				duty, err := ParseValue(e.Params["pwm_duty"])
				if err != nil {
					return nil, nil, fmt.Errorf("netlist: %s PWM duty: %w", e.Name, err)
				}
				gates = append(gates, device.NewGateSchedule(e.Name+".pwm", mos, freq, duty))
			}

		case "K":
			l1e, ok1 := lInductors[e.Params["l1"]]
			l2e, ok2 := lInductors[e.Params["l2"]]
			if !ok1 || !ok2 {
				return nil, nil, fmt.Errorf("netlist: coupling %s references unknown inductor(s)", e.Name)
			}
			ci, err := device.NewCoupledInductors(e.Name,
				l1e.Nodes[0], l1e.Nodes[1], l1e.Value,
				l2e.Nodes[0], l2e.Nodes[1], l2e.Value,
				e.Value)
			if err != nil {
				return nil, nil, err
			}
			components = append(components, ci)

		default:
			return nil, nil, fmt.Errorf("netlist: unsupported element type %q", e.Type)
		}
	}

	return components, gates, nil
}

func buildWaveform(e Element) (device.Waveform, error) {
	switch e.Params["type"] {
	case "dc", "":
		return device.NewDCWaveform(e.Value), nil
	case "sin":
		fields := strings.Fields(e.Params["sin"])
		if len(fields) < 3 {
			return device.Waveform{}, fmt.Errorf("netlist: %s SIN needs offset, amplitude, freq", e.Name)
		}
		offset, err := ParseValue(fields[0])
		if err != nil {
			return device.Waveform{}, err
		}
		amp, err := ParseValue(fields[1])
		if err != nil {
			return device.Waveform{}, err
		}
		freq, err := ParseValue(fields[2])
		if err != nil {
			return device.Waveform{}, err
		}
		delay := 0.0
		if len(fields) > 3 {
			if delay, err = ParseValue(fields[3]); err != nil {
				return device.Waveform{}, err
			}
		}
		return device.NewSinWaveform(offset, amp, freq, delay), nil
	case "pulse":
		fields := strings.Fields(e.Params["pulse"])
		if len(fields) < 7 {
			return device.Waveform{}, fmt.Errorf("netlist: %s PULSE needs v1,v2,td,tr,tf,tw,tp", e.Name)
		}
		vals := make([]float64, 7)
		for i := range vals {
			v, err := ParseValue(fields[i])
			if err != nil {
				return device.Waveform{}, err
			}
			vals[i] = v
		}
		return device.NewPulseWaveform(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5], vals[6]), nil
	default:
		return device.Waveform{}, fmt.Errorf("netlist: %s has unsupported waveform type %q", e.Name, e.Params["type"])
	}
}
