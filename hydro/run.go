package hydro

import (
	"fmt"
	"math"
	"time"
)

// lagrangeLeapFrog advances the simulation one whole cycle: nodal motion,
// element update, then the constraint scan for the next timestep.
func (d *Domain) lagrangeLeapFrog() error {
	// calculate nodal forces, accelerations, velocities, positions, with
	// applied boundary conditions and slide surface considerations
	if err := d.lagrangeNodal(); err != nil {
		return err
	}

	// calculate element quantities (i.e. velocity gradient & q), and update
	// material states
	if err := d.lagrangeElements(); err != nil {
		return err
	}

	d.calcTimeConstraintsForElems()
	return nil
}

// RunOptions controls the cycle loop; zero Iterations means run until the
// stop time is reached.
type RunOptions struct {
	Iterations int
	ShowProg   bool
	Quiet      bool
}

// RunStats summarizes a completed run.
type RunStats struct {
	Cycles  int
	Elapsed time.Duration
}

// Run executes cycles until the stop time or the iteration bound is hit.
// On a fatal error the job-wide abort is triggered before returning.
func (d *Domain) Run(opts RunOptions) (stats RunStats, err error) {
	maxCycles := opts.Iterations
	if maxCycles <= 0 {
		maxCycles = math.MaxInt
	}

	start := time.Now()
	for d.Time < d.StopTime && d.Cycle < maxCycles {
		if aerr := d.Ex.Err(); aerr != nil {
			return RunStats{Cycles: d.Cycle, Elapsed: time.Since(start)}, aerr
		}
		d.timeIncrement()
		if err = d.lagrangeLeapFrog(); err != nil {
			d.Ex.Abort(err)
			return RunStats{Cycles: d.Cycle, Elapsed: time.Since(start)},
				fmt.Errorf("cycle %d: %w", d.Cycle, err)
		}
		if opts.ShowProg && !opts.Quiet && d.Rank == 0 {
			fmt.Printf("cycle = %d, time = %e, dt=%e\n",
				d.Cycle, float64(d.Time), float64(d.Deltatime))
		}
	}
	stats = RunStats{Cycles: d.Cycle, Elapsed: time.Since(start)}
	return stats, nil
}

// VerifyAndWriteFinalOutput prints the end-of-run summary: problem size,
// cycle count, final origin energy, the symmetry check over the origin
// plane of the energy array, and the grind figures of merit.
func (d *Domain) VerifyAndWriteFinalOutput(elapsed time.Duration, nx, numRanks int) {
	// GrindTime1 only takes a single domain into account, and is thus a
	// good way to measure processor speed independent of the number of
	// ranks. GrindTime2 takes into account speedups from rank parallelism.
	elapsedSec := elapsed.Seconds()
	grindTime1 := ((elapsedSec * 1e6) / float64(d.Cycle)) / float64(nx*nx*nx)
	grindTime2 := ((elapsedSec * 1e6) / float64(d.Cycle)) / float64(nx*nx*nx*numRanks)

	fmt.Printf("Run completed:\n")
	fmt.Printf("   Problem size        =  %d\n", nx)
	fmt.Printf("   Ranks               =  %d\n", numRanks)
	fmt.Printf("   Total number of elements = %d\n\n", numRanks*nx*nx*nx)
	fmt.Printf("   Iteration count     =  %d\n", d.Cycle)
	fmt.Printf("   Final Origin Energy =  %12.6e\n\n", float64(d.E[0]))

	var maxAbsDiff, totalAbsDiff, maxRelDiff Real
	for j := 0; j < nx; j++ {
		for k := j + 1; k < nx; k++ {
			absDiff := Abs(d.E[j*nx+k] - d.E[k*nx+j])
			totalAbsDiff += absDiff
			if maxAbsDiff < absDiff {
				maxAbsDiff = absDiff
			}
			if d.E[k*nx+j] != 0.0 {
				relDiff := absDiff / d.E[k*nx+j]
				if maxRelDiff < relDiff {
					maxRelDiff = relDiff
				}
			}
		}
	}

	// Quick symmetry check
	fmt.Printf("   Testing Plane 0 of Energy Array on rank 0:\n")
	fmt.Printf("        MaxAbsDiff   = %12.6e\n", float64(maxAbsDiff))
	fmt.Printf("        TotalAbsDiff = %12.6e\n", float64(totalAbsDiff))
	fmt.Printf("        MaxRelDiff   = %12.6e\n\n", float64(maxRelDiff))

	// Timing information
	fmt.Printf("\nElapsed time         = %10.2f (s)\n", elapsedSec)
	fmt.Printf("Grind time (us/z/c)  = %10.8g (per dom)  (%10.8g overall)\n",
		grindTime1, grindTime2)
	fmt.Printf("FOM                  = %10.8g (z/s)\n\n", 1.0e6/grindTime2)
}
