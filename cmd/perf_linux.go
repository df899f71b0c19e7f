//go:build linux

package cmd

import (
	"fmt"
	"io"

	perf "github.com/hodgesds/perf-utils"
)

// runWithPerf wraps the solve in a hardware instruction counter so the
// grind figure can be read next to retired instructions.
func runWithPerf(run func() error, w io.Writer) {
	pv, err := perf.CPUInstructions(run)
	if err != nil {
		fmt.Fprintf(w, "perf counters unavailable: %v\n", err)
		return
	}
	fmt.Fprintf(w, "CPU instructions     = %d (enabled %dns, running %dns)\n",
		pv.Value, pv.TimeEnabled, pv.TimeRunning)
}
