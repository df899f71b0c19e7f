package hydro

// calcKinematicsForElems computes, from the freshly advanced node
// positions, each element's new relative volume, characteristic length and
// principal strain rates. Strain rates are evaluated at the half-step
// positions so the kinematics stay time centered.
func (d *Domain) calcKinematicsForElems(dt Real) error {
	return d.pmElem.RunErr(func(iMin, iMax int) error {
		var (
			B             [3][8]Real
			D             [3]Real
			xl, yl, zl    [8]Real
			xdl, ydl, zdl [8]Real
		)
		for k := iMin; k < iMax; k++ {
			d.collectDomainNodesToElemNodes(k, &xl, &yl, &zl)

			// volume calculations
			volume := CalcElemVolume(&xl, &yl, &zl)
			relativeVolume := volume / d.Volo[k]
			d.Vnew[k] = relativeVolume
			d.Delv[k] = relativeVolume - d.V[k]

			// set characteristic length
			d.Arealg[k] = CalcElemCharacteristicLength(&xl, &yl, &zl, volume)

			// get nodal velocities from global array and copy into local arrays
			nl := d.Nodes(k)
			for ln := 0; ln < 8; ln++ {
				g := nl[ln]
				xdl[ln] = d.Xd[g]
				ydl[ln] = d.Yd[g]
				zdl[ln] = d.Zd[g]
			}

			dt2 := 0.5 * dt
			for j := 0; j < 8; j++ {
				xl[j] -= dt2 * xdl[j]
				yl[j] -= dt2 * ydl[j]
				zl[j] -= dt2 * zdl[j]
			}

			detJ := CalcElemShapeFunctionDerivatives(&xl, &yl, &zl, &B)
			CalcElemVelocityGradient(&xdl, &ydl, &zdl, &B, detJ, &D)

			d.Dxx[k] = D[0]
			d.Dyy[k] = D[1]
			d.Dzz[k] = D[2]
		}
		return nil
	})
}

// calcLagrangeElements updates element kinematics and forms vdov, the
// velocity divergence, leaving deviatoric strain components behind.
func (d *Domain) calcLagrangeElements() error {
	if d.NumElem == 0 {
		return nil
	}
	if err := d.calcKinematicsForElems(d.Deltatime); err != nil {
		return err
	}

	// element loop to do some stuff not included in the elemlib function
	return d.pmElem.RunErr(func(iMin, iMax int) error {
		for k := iMin; k < iMax; k++ {
			// calc strain rate and apply as constraint (only done in FB element)
			vdov := d.Dxx[k] + d.Dyy[k] + d.Dzz[k]
			vdovthird := vdov / 3.0

			// make the rate of deformation tensor deviatoric
			d.Vdov[k] = vdov
			d.Dxx[k] -= vdovthird
			d.Dyy[k] -= vdovthird
			d.Dzz[k] -= vdovthird

			// See if any volumes are negative, and take appropriate action.
			if d.Vnew[k] <= 0.0 {
				return ErrVolume
			}
		}
		return nil
	})
}
