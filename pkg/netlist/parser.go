// Package netlist is the SPICE-like front end (adapted from the teacher's
// pkg/netlist/parser.go): line-oriented circuit cards plus .model/.tran/.op
// directives, extended with an S card for gate-controlled switches and a K
// card for transformer coupling (spec.md's supplemented-features list).
package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AnalysisType selects the directive a netlist requested.
type AnalysisType int

const (
	AnalysisOP AnalysisType = iota
	AnalysisTRAN
)

// TranParams mirrors the .tran card's arguments.
type TranParams struct {
	TStep, TStop, TStart float64
}

// Model holds the parsed .model parameters for a diode or switch card.
type Model struct {
	Kind string // "D" or "NMOS"
	Vf   float64
	Ron  float64
	Roff float64
}

// Element is one parsed circuit card, before device construction.
type Element struct {
	Type   string // R, L, C, V, I, D, S, K
	Name   string
	Nodes  []string
	Value  float64
	Model  string
	Params map[string]string
}

// Circuit is the parsed netlist: every card plus the requested analysis.
type Circuit struct {
	Title     string
	Analysis  AnalysisType
	Tran      TranParams
	Elements  []Element
	Models    map[string]Model
}

var unitMap = map[string]float64{
	"T":   1e12,
	"G":   1e9,
	"meg": 1e6,
	"K":   1e3,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?s?$`)

// ParseValue interprets SPICE-style value suffixes ("1k" -> 1000, "4.7u" ->
// 4.7e-6), kept near-verbatim from the teacher since it is already a
// self-contained, idiomatic piece.
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}
	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}
	if matches[2] != "" {
		if mult, ok := unitMap[matches[2]]; ok {
			num *= mult
		}
	}
	return num, nil
}

// Parse reads an entire netlist. The first line is the title, even when it
// is blank.
func Parse(input string) (*Circuit, error) {
	ckt := &Circuit{Models: make(map[string]Model)}
	scanner := bufio.NewScanner(strings.NewReader(input))

	if scanner.Scan() {
		ckt.Title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		if strings.HasPrefix(line, ".") {
			if err := parseDirective(ckt, line); err != nil {
				return nil, err
			}
			continue
		}
		elem, err := parseElement(line)
		if err != nil {
			return nil, err
		}
		ckt.Elements = append(ckt.Elements, *elem)
	}
	return ckt, scanner.Err()
}

func parseDirective(ckt *Circuit, line string) error {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ".op":
		ckt.Analysis = AnalysisOP
	case ".tran":
		if len(fields) < 3 {
			return fmt.Errorf("netlist: .tran needs at least tstep and tstop")
		}
		ckt.Analysis = AnalysisTRAN
		var err error
		if ckt.Tran.TStep, err = ParseValue(fields[1]); err != nil {
			return fmt.Errorf("netlist: invalid tstep: %w", err)
		}
		if ckt.Tran.TStop, err = ParseValue(fields[2]); err != nil {
			return fmt.Errorf("netlist: invalid tstop: %w", err)
		}
		if len(fields) > 3 {
			if ckt.Tran.TStart, err = ParseValue(fields[3]); err != nil {
				return fmt.Errorf("netlist: invalid tstart: %w", err)
			}
		}
	case ".model":
		return parseModel(ckt, fields)
	case ".ac":
		return fmt.Errorf("netlist: .ac is not supported (AC/frequency-domain analysis is out of scope)")
	case ".dc":
		return fmt.Errorf("netlist: .dc sweep is not supported (use repeated .tran runs)")
	default:
		return fmt.Errorf("netlist: unsupported directive %q", fields[0])
	}
	return nil
}

// parseModel handles ".model NAME D (VF=0.7 RON=1e-3)" and
// ".model NAME NMOS (RON=0.1 ROFF=1e6 VF=0.7)".
func parseModel(ckt *Circuit, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("netlist: .model needs a name and kind")
	}
	name := fields[1]
	kind := strings.ToUpper(fields[2])
	if kind != "D" && kind != "NMOS" {
		return fmt.Errorf("netlist: unsupported model kind %q", kind)
	}

	m := Model{Kind: kind, Vf: 0.7, Ron: 1e-3, Roff: 1e6}
	rest := strings.Join(fields[3:], " ")
	rest = strings.Trim(rest, "() ")
	for _, kv := range strings.Fields(rest) {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		val, err := ParseValue(parts[1])
		if err != nil {
			return fmt.Errorf("netlist: invalid %s in model %s: %w", parts[0], name, err)
		}
		switch strings.ToUpper(parts[0]) {
		case "VF":
			m.Vf = val
		case "RON":
			m.Ron = val
		case "ROFF":
			m.Roff = val
		}
	}
	ckt.Models[name] = m
	return nil
}

func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, fmt.Errorf("netlist: invalid element card: %q", line)
	}
	typ := strings.ToUpper(string(fields[0][0]))
	elem := &Element{Name: fields[0], Type: typ, Params: make(map[string]string)}

	switch typ {
	case "V", "I":
		if len(fields) < 4 {
			return nil, fmt.Errorf("netlist: %s needs two nodes and a value/waveform", fields[0])
		}
		elem.Nodes = []string{fields[1], fields[2]}
		return parseSourceWaveform(elem, fields[3:])
	case "D":
		if len(fields) < 4 {
			return nil, fmt.Errorf("netlist: diode %s needs anode, cathode, model", fields[0])
		}
		elem.Nodes = []string{fields[1], fields[2]}
		elem.Model = fields[3]
		return elem, nil
	case "S":
		if len(fields) < 4 {
			return nil, fmt.Errorf("netlist: switch %s needs drain, source, model", fields[0])
		}
		elem.Nodes = []string{fields[1], fields[2]}
		elem.Model = fields[3]
		if len(fields) >= 7 && strings.EqualFold(fields[4], "PWM") {
			elem.Params["pwm_freq"] = fields[5]
			elem.Params["pwm_duty"] = fields[6]
		}
		return elem, nil
	case "K":
		if len(fields) < 4 {
			return nil, fmt.Errorf("netlist: coupling %s needs two inductor names and k", fields[0])
		}
		elem.Params["l1"] = fields[1]
		elem.Params["l2"] = fields[2]
		val, err := ParseValue(fields[3])
		if err != nil {
			return nil, fmt.Errorf("netlist: invalid coupling coefficient: %w", err)
		}
		elem.Value = val
		return elem, nil
	default:
		// R, L, C: n1 n2 value [ic=...]
		if len(fields) < 4 {
			return nil, fmt.Errorf("netlist: %s needs two nodes and a value", fields[0])
		}
		elem.Nodes = fields[1:3]
		val, err := ParseValue(fields[3])
		if err != nil {
			return nil, fmt.Errorf("netlist: invalid value for %s: %w", fields[0], err)
		}
		elem.Value = val
		for _, f := range fields[4:] {
			if strings.HasPrefix(strings.ToLower(f), "ic=") {
				elem.Params["ic"] = f[3:]
			}
		}
		return elem, nil
	}
}

func parseSourceWaveform(elem *Element, words []string) (*Element, error) {
	joined := strings.Join(words, " ")
	joined = strings.ReplaceAll(joined, "(", " ( ")
	joined = strings.ReplaceAll(joined, ")", " ) ")
	fields := strings.Fields(joined)
	if len(fields) == 0 {
		return nil, fmt.Errorf("netlist: %s missing waveform spec", elem.Name)
	}

	switch strings.ToUpper(fields[0]) {
	case "DC":
		if len(fields) < 2 {
			return nil, fmt.Errorf("netlist: %s missing DC value", elem.Name)
		}
		v, err := ParseValue(fields[1])
		if err != nil {
			return nil, err
		}
		elem.Params["type"] = "dc"
		elem.Value = v
	case "SIN":
		elem.Params["type"] = "sin"
		elem.Params["sin"] = strings.Trim(strings.Join(fields[1:], " "), "() ")
	case "PULSE":
		elem.Params["type"] = "pulse"
		elem.Params["pulse"] = strings.Trim(strings.Join(fields[1:], " "), "() ")
	default:
		// A bare number is shorthand for DC.
		v, err := ParseValue(fields[0])
		if err != nil {
			return nil, fmt.Errorf("netlist: unsupported waveform %q for %s", fields[0], elem.Name)
		}
		elem.Params["type"] = "dc"
		elem.Value = v
	}
	return elem, nil
}
