//go:build !linux

package cmd

import (
	"fmt"
	"io"
)

func runWithPerf(run func() error, w io.Writer) {
	fmt.Fprintln(w, "perf counters are only available on Linux; running without them")
	run()
}
