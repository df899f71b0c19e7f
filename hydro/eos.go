package hydro

// calcPressureForElems evaluates the gamma-law pressure p = (gamma-1) rho e
// in compression form, with the pressure floor and cutoff applied.
func calcPressureForElems(pNew, bvc, pbvc, eOld, compression, vnewc []Real,
	pmin, pCut, eosvmax Real, length int, pm *PartitionMap) {

	const c1s = Real(2.0) / Real(3.0)

	pm.Run(func(iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			bvc[i] = c1s * (compression[i] + 1.0)
			pbvc[i] = c1s
		}
	})

	pm.Run(func(iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			pNew[i] = bvc[i] * eOld[i]

			if Abs(pNew[i]) < pCut {
				pNew[i] = 0.0
			}
			if vnewc[i] >= eosvmax { // impossible condition here?
				pNew[i] = 0.0
			}
			if pNew[i] < pmin {
				pNew[i] = pmin
			}
		}
	})
}

// calcEnergyForElems advances internal energy through the half-step and
// full-step pressure evaluations, keeping p dV work compatible with the
// energy update.
func calcEnergyForElems(pNew, eNew, qNew, bvc, pbvc,
	pOld, eOld, qOld, compression, compHalfStep,
	vnewc, work, delvc, qqOld, qlOld []Real,
	pmin, pCut, eCut, qCut, emin, rho0, eosvmax Real,
	length int, pm *PartitionMap) {

	pHalfStep := make([]Real, length)

	pm.Run(func(iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			eNew[i] = eOld[i] - 0.5*delvc[i]*(pOld[i]+qOld[i]) + 0.5*work[i]
			if eNew[i] < emin {
				eNew[i] = emin
			}
		}
	})

	calcPressureForElems(pHalfStep, bvc, pbvc, eNew, compHalfStep, vnewc,
		pmin, pCut, eosvmax, length, pm)

	pm.Run(func(iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			vhalf := 1.0 / (1.0 + compHalfStep[i])

			if delvc[i] > 0.0 {
				qNew[i] = 0.0 // = qqOld = qlOld
			} else {
				ssc := (pbvc[i]*eNew[i] + vhalf*vhalf*bvc[i]*pHalfStep[i]) / rho0
				if ssc <= 0.1111111e-36 {
					ssc = 0.3333333e-18
				} else {
					ssc = Sqrt(ssc)
				}
				qNew[i] = ssc*qlOld[i] + qqOld[i]
			}

			eNew[i] = eNew[i] + 0.5*delvc[i]*(3.0*(pOld[i]+qOld[i])-
				4.0*(pHalfStep[i]+qNew[i]))
		}
	})

	pm.Run(func(iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			eNew[i] += 0.5 * work[i]

			if Abs(eNew[i]) < eCut {
				eNew[i] = 0.0
			}
			if eNew[i] < emin {
				eNew[i] = emin
			}
		}
	})

	calcPressureForElems(pNew, bvc, pbvc, eNew, compression, vnewc,
		pmin, pCut, eosvmax, length, pm)

	pm.Run(func(iMin, iMax int) {
		const sixth = Real(1.0) / Real(6.0)
		for i := iMin; i < iMax; i++ {
			var qTilde Real

			if delvc[i] > 0.0 {
				qTilde = 0.0
			} else {
				ssc := (pbvc[i]*eNew[i] + vnewc[i]*vnewc[i]*bvc[i]*pNew[i]) / rho0
				if ssc <= 0.1111111e-36 {
					ssc = 0.3333333e-18
				} else {
					ssc = Sqrt(ssc)
				}
				qTilde = ssc*qlOld[i] + qqOld[i]
			}

			eNew[i] = eNew[i] - (7.0*(pOld[i]+qOld[i])-
				8.0*(pHalfStep[i]+qNew[i])+
				(pNew[i]+qTilde))*delvc[i]*sixth

			if Abs(eNew[i]) < eCut {
				eNew[i] = 0.0
			}
			if eNew[i] < emin {
				eNew[i] = emin
			}
		}
	})

	calcPressureForElems(pNew, bvc, pbvc, eNew, compression, vnewc,
		pmin, pCut, eosvmax, length, pm)

	pm.Run(func(iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			if delvc[i] <= 0.0 {
				ssc := (pbvc[i]*eNew[i] + vnewc[i]*vnewc[i]*bvc[i]*pNew[i]) / rho0
				if ssc <= 0.1111111e-36 {
					ssc = 0.3333333e-18
				} else {
					ssc = Sqrt(ssc)
				}
				qNew[i] = ssc*qlOld[i] + qqOld[i]

				if Abs(qNew[i]) < qCut {
					qNew[i] = 0.0
				}
			}
		}
	})
}

func calcSoundSpeedForElems(d *Domain, regElemList []int, vnewc []Real, rho0 Real,
	enewc, pnewc, pbvc, bvc []Real, pm *PartitionMap) {
	pm.Run(func(iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			ielem := regElemList[i]
			ssTmp := (pbvc[i]*enewc[i] + vnewc[i]*vnewc[i]*bvc[i]*pnewc[i]) / rho0
			if ssTmp <= 0.1111111e-36 {
				ssTmp = 0.3333333e-18
			} else {
				ssTmp = Sqrt(ssTmp)
			}
			d.SS[ielem] = ssTmp
		}
	})
}

// evalEOSForElems runs the equation of state over one region's element
// list. The rep count replicates the full gather/update chain to model a
// more expensive material.
func (d *Domain) evalEOSForElems(vnewc []Real, regElemList []int, rep int) {
	var (
		p    = &d.Params
		emin = p.EMin
		rho0 = p.RefDens
	)
	length := len(regElemList)
	if length == 0 {
		return
	}

	// These temporaries will be of different size for each call (due to
	// different sized region element lists)
	eOld := make([]Real, length)
	delvc := make([]Real, length)
	pOld := make([]Real, length)
	qOld := make([]Real, length)
	compression := make([]Real, length)
	compHalfStep := make([]Real, length)
	qqOld := make([]Real, length)
	qlOld := make([]Real, length)
	work := make([]Real, length)
	pNew := make([]Real, length)
	eNew := make([]Real, length)
	qNew := make([]Real, length)
	bvc := make([]Real, length)
	pbvc := make([]Real, length)

	pm := NewPartitionMap(d.NumThreads, length)

	// loop to add load imbalance based on region number
	for j := 0; j < rep; j++ {
		// compress data, minimal set
		pm.Run(func(iMin, iMax int) {
			for i := iMin; i < iMax; i++ {
				ielem := regElemList[i]
				eOld[i] = d.E[ielem]
				delvc[i] = d.Delv[ielem]
				pOld[i] = d.P[ielem]
				qOld[i] = d.Q[ielem]
				qqOld[i] = d.Qq[ielem]
				qlOld[i] = d.Ql[ielem]

				vchalf := vnewc[i] - delvc[i]*0.5
				compression[i] = 1.0/vnewc[i] - 1.0
				compHalfStep[i] = 1.0/vchalf - 1.0

				// Check for v > eosvmax or v < eosvmin
				if p.EosVMin != 0.0 && vnewc[i] <= p.EosVMin { // impossible due to calling func?
					compHalfStep[i] = compression[i]
				}
				if p.EosVMax != 0.0 && vnewc[i] >= p.EosVMax { // impossible due to calling func?
					pOld[i] = 0.0
					compression[i] = 0.0
					compHalfStep[i] = 0.0
				}

				work[i] = 0.0
			}
		})

		calcEnergyForElems(pNew, eNew, qNew, bvc, pbvc,
			pOld, eOld, qOld, compression, compHalfStep,
			vnewc, work, delvc, qqOld, qlOld,
			p.PMin, p.PCut, p.ECut, p.QCut, emin, rho0, p.EosVMax,
			length, pm)
	}

	pm.Run(func(iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			ielem := regElemList[i]
			d.P[ielem] = pNew[i]
			d.E[ielem] = eNew[i]
			d.Q[ielem] = qNew[i]
		}
	})

	calcSoundSpeedForElems(d, regElemList, vnewc, rho0, eNew, pNew, pbvc, bvc, pm)
}

// applyMaterialPropertiesForElems clamps relative volumes into the EOS
// bounds and evaluates the EOS region by region. The region whose number
// is (rank mod NumReg)+1 has its work replicated Cost times, a synthetic
// stand-in for a more expensive material model.
func (d *Domain) applyMaterialPropertiesForElems() error {
	if d.NumElem == 0 {
		return nil
	}
	p := &d.Params

	// Expose all of the variables needed for material evaluation
	vnewc := make([]Real, d.NumElem)
	d.pmElem.Run(func(iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			vnewc[i] = d.Vnew[i]
			if p.EosVMin != 0.0 && vnewc[i] < p.EosVMin {
				vnewc[i] = p.EosVMin
			}
			if p.EosVMax != 0.0 && vnewc[i] > p.EosVMax {
				vnewc[i] = p.EosVMax
			}
		}
	})

	// check for negative element volume; the stored volume gets the same
	// clamps before the test so a clamped value cannot trip it
	err := d.pmElem.RunErr(func(iMin, iMax int) error {
		for i := iMin; i < iMax; i++ {
			vc := d.V[i]
			if p.EosVMin != 0.0 && vc < p.EosVMin {
				vc = p.EosVMin
			}
			if p.EosVMax != 0.0 && vc > p.EosVMax {
				vc = p.EosVMax
			}
			if vc <= 0.0 {
				return ErrVolume
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	expensiveReg := d.Rank%d.NumReg + 1
	for r := 0; r < d.NumReg; r++ {
		regElemList := d.RegElemList[r]

		// one region per rank carries the replicated load
		rep := 1
		if r+1 == expensiveReg {
			rep = d.Cost
			if rep < 1 {
				rep = 1
			}
		}

		vnewcRegion := make([]Real, len(regElemList))
		for i, ielem := range regElemList {
			vnewcRegion[i] = vnewc[ielem]
		}

		d.evalEOSForElems(vnewcRegion, regElemList, rep)
	}

	return nil
}

// updateVolumesForElems commits the new relative volumes, snapping values
// within the volume cutoff of one back to exactly one.
func (d *Domain) updateVolumesForElems() {
	vCut := d.Params.VCut
	d.pmElem.Run(func(iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			tmpV := d.Vnew[i]
			if Abs(tmpV-1.0) < vCut {
				tmpV = 1.0
			}
			d.V[i] = tmpV
		}
	})
}

// lagrangeElements advances element state from the new node positions:
// kinematics, artificial viscosity, equation of state, volume commit.
func (d *Domain) lagrangeElements() error {
	if err := d.calcLagrangeElements(); err != nil {
		return err
	}

	// Calculate Q. (Monotonic q option requires communication)
	if err := d.calcQForElems(); err != nil {
		return err
	}

	if err := d.applyMaterialPropertiesForElems(); err != nil {
		return err
	}

	d.updateVolumesForElems()
	return nil
}
