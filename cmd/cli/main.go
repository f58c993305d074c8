// Command intersection-engine reads a SimulationInput JSON from a file
// argument (or stdin), runs the simulation, and writes the result to stdout:
// the full SimulationLog (-format json), a GeoJSON snapshot of the final tick
// (-format geojson) or the run summary (-format summary).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/cxd309/intersection-engine/internal/engine"
)

var runners = map[string]func(string) (string, error){
	"json":    engine.RunJSON,
	"geojson": engine.RunSnapshot,
	"summary": engine.RunSummary,
}

func main() {
	format := flag.String("format", "json", "output format: json, geojson or summary")
	verbose := flag.Bool("v", false, "log spawns, admissions and light changes to stderr")
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	run, ok := runners[*format]
	if !ok {
		log.Errorf("unknown format %q", *format)
		os.Exit(2)
	}

	var (
		data []byte
		err  error
	)
	if flag.NArg() > 0 {
		data, err = os.ReadFile(flag.Arg(0))
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.WithError(err).Error("reading input")
		os.Exit(1)
	}

	result, err := run(string(data))
	if err != nil {
		log.WithError(err).Error("simulation failed")
		os.Exit(1)
	}

	fmt.Println(result)
}
