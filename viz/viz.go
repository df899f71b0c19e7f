// Package viz writes plain-text field dumps of a Domain. It is a
// lightweight stand-in for a SILO/VisIt writer: one file per rank, grouped
// round-robin into numFiles output files the way a parallel dump batches
// its writers.
package viz

import (
	"bufio"
	"fmt"
	"os"

	"github.com/notargets/goshock/hydro"
)

// Dump writes the nodal coordinates and element fields of every domain.
// With numFiles <= 0 each rank writes its own file.
func Dump(domains []*hydro.Domain, numFiles int) error {
	if numFiles <= 0 || numFiles > len(domains) {
		numFiles = len(domains)
	}
	for group := 0; group < numFiles; group++ {
		name := fmt.Sprintf("goshock_plot_c%06d.g%03d.txt", domains[0].Cycle, group)
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("visualization dump: %w", err)
		}
		w := bufio.NewWriter(f)
		for rank := group; rank < len(domains); rank += numFiles {
			if err := writeDomain(w, domains[rank]); err != nil {
				f.Close()
				return err
			}
		}
		if err := w.Flush(); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func writeDomain(w *bufio.Writer, d *hydro.Domain) error {
	fmt.Fprintf(w, "# rank %d cycle %d time %e\n", d.Rank, d.Cycle, float64(d.Time))
	fmt.Fprintf(w, "# nodes %d: x y z xd yd zd\n", d.NumNode)
	for i := 0; i < d.NumNode; i++ {
		fmt.Fprintf(w, "%e %e %e %e %e %e\n",
			float64(d.X[i]), float64(d.Y[i]), float64(d.Z[i]),
			float64(d.Xd[i]), float64(d.Yd[i]), float64(d.Zd[i]))
	}
	fmt.Fprintf(w, "# elems %d: e p q v region\n", d.NumElem)
	for i := 0; i < d.NumElem; i++ {
		if _, err := fmt.Fprintf(w, "%e %e %e %e %d\n",
			float64(d.E[i]), float64(d.P[i]), float64(d.Q[i]),
			float64(d.V[i]), d.RegNumList[i]); err != nil {
			return err
		}
	}
	return nil
}
