//go:build js && wasm

// Command wasm exposes the intersection engine to the browser via WebAssembly.
// After loading, it registers global JavaScript functions:
//
//	runSimulation(jsonString) -> jsonString   // SimulationLog
//	runSnapshot(jsonString) -> jsonString     // GeoJSON of the final tick
//	runSummary(jsonString) -> jsonString      // Summary
//
// All take a JSON-encoded SimulationInput, matching the CLI formats. Errors
// come back as {error: message}.
package main

import (
	"syscall/js"

	"github.com/cxd309/intersection-engine/internal/engine"
)

func main() {
	js.Global().Set("runSimulation", js.FuncOf(wrap(engine.RunJSON)))
	js.Global().Set("runSnapshot", js.FuncOf(wrap(engine.RunSnapshot)))
	js.Global().Set("runSummary", js.FuncOf(wrap(engine.RunSummary)))
	select {} // keep the WASM module alive until the page is closed
}

func wrap(run func(string) (string, error)) func(js.Value, []js.Value) any {
	return func(_ js.Value, args []js.Value) any {
		if len(args) < 1 {
			return map[string]any{"error": "no input provided"}
		}

		result, err := run(args[0].String())
		if err != nil {
			return map[string]any{"error": err.Error()}
		}
		return result
	}
}
