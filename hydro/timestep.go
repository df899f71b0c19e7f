package hydro

import "gonum.org/v1/gonum/floats"

// calcCourantConstraintForElems scans one region for the tightest Courant
// limit: characteristic length over the shock-augmented sound speed.
func (d *Domain) calcCourantConstraintForElems(regElemList []int) {
	var (
		qqc  = d.Params.QqcCourant
		qqc2 = 64.0 * qqc * qqc
	)
	if len(regElemList) == 0 {
		return
	}

	pm := NewPartitionMap(d.NumThreads, len(regElemList))
	mins := make([]Real, pm.ParallelDegree)
	pm.RunBuckets(func(np, iMin, iMax int) {
		dtcourantTmp := d.DtCourant
		for i := iMin; i < iMax; i++ {
			indx := regElemList[i]

			dtf := d.SS[indx] * d.SS[indx]
			if d.Vdov[indx] < 0.0 {
				dtf += qqc2 * d.Arealg[indx] * d.Arealg[indx] *
					d.Vdov[indx] * d.Vdov[indx]
			}
			dtf = Sqrt(dtf)
			dtf = d.Arealg[indx] / dtf

			// determine minimum timestep with its corresponding elem
			if d.Vdov[indx] != 0.0 && dtf < dtcourantTmp {
				dtcourantTmp = dtf
			}
		}
		mins[np] = dtcourantTmp
	})

	d.DtCourant = floats.Min(mins)
}

// calcHydroConstraintForElems limits the step so no element with a nonzero
// vdov (compressing or expanding) changes volume by more than DvovMax.
func (d *Domain) calcHydroConstraintForElems(regElemList []int) {
	dvovmax := d.Params.DvovMax
	if len(regElemList) == 0 {
		return
	}

	pm := NewPartitionMap(d.NumThreads, len(regElemList))
	mins := make([]Real, pm.ParallelDegree)
	pm.RunBuckets(func(np, iMin, iMax int) {
		dthydroTmp := d.DtHydro
		for i := iMin; i < iMax; i++ {
			indx := regElemList[i]
			if d.Vdov[indx] != 0.0 {
				dtdvov := dvovmax / (Abs(d.Vdov[indx]) + 1.0e-20)
				if dthydroTmp > dtdvov {
					dthydroTmp = dtdvov
				}
			}
		}
		mins[np] = dthydroTmp
	})

	d.DtHydro = floats.Min(mins)
}

// calcTimeConstraintsForElems resets and rescans the Courant and hydro
// constraints for the next cycle, region by region.
func (d *Domain) calcTimeConstraintsForElems() {
	// Initialize conditions to a very large value
	d.DtCourant = 1.0e+20
	d.DtHydro = 1.0e+20

	for r := 0; r < d.NumReg; r++ {
		// evaluate time constraint
		d.calcCourantConstraintForElems(d.RegElemList[r])
		// check hydro constraint
		d.calcHydroConstraintForElems(d.RegElemList[r])
	}
}

// timeIncrement picks the next timestep from the previous cycle's
// constraints, limits its growth to DtMultUB per cycle, and lands exactly
// on the stop time. With multiple ranks the candidate step is the
// collective minimum.
func (d *Domain) timeIncrement() {
	targetdt := d.StopTime - d.Time

	if d.DtFixed <= 0.0 && d.Cycle != 0 {
		olddt := d.Deltatime

		// This will require a reduce in parallel
		gnewdt := Real(1.0e+20)
		if d.DtCourant < gnewdt {
			gnewdt = d.DtCourant / 2.0
		}
		if d.DtHydro < gnewdt {
			gnewdt = d.DtHydro * 2.0 / 3.0
		}
		newdt := d.Ex.ReduceMinReal(gnewdt)

		ratio := newdt / olddt
		if ratio >= 1.0 {
			if ratio < d.DtMultLB {
				newdt = olddt
			} else if ratio > d.DtMultUB {
				newdt = olddt * d.DtMultUB
			}
		}
		if newdt > d.DtMax {
			newdt = d.DtMax
		}
		d.Deltatime = newdt
	}

	// try to prevent very small scaling on the next cycle
	if targetdt > d.Deltatime && targetdt < 4.0*d.Deltatime/3.0 {
		targetdt = 2.0 * d.Deltatime / 3.0
	}
	if targetdt < d.Deltatime {
		d.Deltatime = targetdt
	}

	d.Time += d.Deltatime
	d.Cycle++
}
