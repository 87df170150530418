// Command switchsim runs a time-domain MCP/LCP transient simulation of a
// switching power-electronic circuit described by a netlist file (spec.md
// SS1, SS4.7), adapted from the teacher's cmd/main.go flag/log driver.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/switchsim/switchsim/pkg/device"
	"github.com/switchsim/switchsim/pkg/netlist"
	"github.com/switchsim/switchsim/pkg/report"
	"github.com/switchsim/switchsim/pkg/sim"
)

func main() {
	method := flag.String("method", "be", "integration method: be or bdf2")
	gmin := flag.Float64("gmin", 0, "minimum conductance added to every node (0 = default)")
	robust := flag.Bool("robust", true, "retry a failed LCP pivot with the QP fallback and diagonal regularization")
	debug := flag.Bool("debug", false, "log DC operating-point failures to stderr")
	csvPath := flag.String("csv", "", "write results as CSV to this path instead of stdout")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: switchsim [flags] <netlist_file>")
	}

	content, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("switchsim: reading netlist: %v", err)
	}

	ckt, err := netlist.Parse(string(content))
	if err != nil {
		log.Fatalf("switchsim: parsing netlist: %v", err)
	}
	if ckt.Analysis != netlist.AnalysisTRAN {
		log.Fatal("switchsim: only .tran is supported; add a .tran line to the netlist")
	}

	components, gates, err := netlist.Build(ckt)
	if err != nil {
		log.Fatalf("switchsim: building components: %v", err)
	}

	var meth device.Method
	switch *method {
	case "be":
		meth = device.BE
	case "bdf2":
		meth = device.BDF2
	default:
		log.Fatalf("switchsim: unknown method %q (want be or bdf2)", *method)
	}

	params := sim.Params{
		StartTime:       ckt.Tran.TStart,
		StopTime:        ckt.Tran.TStop,
		TimeStep:        ckt.Tran.TStep,
		Method:          meth,
		Gmin:            *gmin,
		UseRobustSolver: robust,
		Debug:           *debug,
	}

	res, err := sim.Run(components, gates, params)
	if err != nil {
		log.Fatalf("switchsim: %v", err)
	}

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			log.Fatalf("switchsim: creating %s: %v", *csvPath, err)
		}
		defer f.Close()
		if err := report.WriteCSV(f, res); err != nil {
			log.Fatalf("switchsim: writing csv: %v", err)
		}
		fmt.Printf("wrote %d samples to %s\n", len(res.Times()), *csvPath)
		return
	}

	report.WriteTable(os.Stdout, res)
}
