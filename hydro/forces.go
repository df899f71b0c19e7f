package hydro

// The four hourglass base vectors of the single-point-quadrature hex, one
// row per hourglass mode.
var gammaHG = [4][8]Real{
	{1.0, 1.0, -1.0, -1.0, -1.0, -1.0, 1.0, 1.0},
	{1.0, -1.0, -1.0, 1.0, -1.0, 1.0, 1.0, -1.0},
	{1.0, -1.0, 1.0, -1.0, 1.0, -1.0, 1.0, -1.0},
	{-1.0, 1.0, -1.0, 1.0, 1.0, -1.0, 1.0, -1.0},
}

// initStressTermsForElems fills the isotropic stress -(p+q) for each
// element; the off-diagonal terms are zero for this material model.
func (d *Domain) initStressTermsForElems(sigxx, sigyy, sigzz []Real) {
	d.pmElem.Run(func(iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			sigxx[i] = -d.P[i] - d.Q[i]
			sigyy[i] = sigxx[i]
			sigzz[i] = sigxx[i]
		}
	})
}

func sumElemFaceNormal(normalX0, normalY0, normalZ0,
	normalX1, normalY1, normalZ1,
	normalX2, normalY2, normalZ2,
	normalX3, normalY3, normalZ3 *Real,
	x0, y0, z0, x1, y1, z1, x2, y2, z2, x3, y3, z3 Real) {

	bisectX0 := 0.5 * (x3 + x2 - x1 - x0)
	bisectY0 := 0.5 * (y3 + y2 - y1 - y0)
	bisectZ0 := 0.5 * (z3 + z2 - z1 - z0)
	bisectX1 := 0.5 * (x2 + x1 - x3 - x0)
	bisectY1 := 0.5 * (y2 + y1 - y3 - y0)
	bisectZ1 := 0.5 * (z2 + z1 - z3 - z0)
	areaX := 0.25 * (bisectY0*bisectZ1 - bisectZ0*bisectY1)
	areaY := 0.25 * (bisectZ0*bisectX1 - bisectX0*bisectZ1)
	areaZ := 0.25 * (bisectX0*bisectY1 - bisectY0*bisectX1)

	*normalX0 += areaX
	*normalX1 += areaX
	*normalX2 += areaX
	*normalX3 += areaX

	*normalY0 += areaY
	*normalY1 += areaY
	*normalY2 += areaY
	*normalY3 += areaY

	*normalZ0 += areaZ
	*normalZ1 += areaZ
	*normalZ2 += areaZ
	*normalZ3 += areaZ
}

// calcElemNodeNormals accumulates the area-weighted face normals onto the
// corner nodes of one element.
func calcElemNodeNormals(pfx, pfy, pfz *[8]Real, x, y, z *[8]Real) {
	for i := 0; i < 8; i++ {
		pfx[i] = 0.0
		pfy[i] = 0.0
		pfz[i] = 0.0
	}
	// evaluate face one: nodes 0, 1, 2, 3
	sumElemFaceNormal(&pfx[0], &pfy[0], &pfz[0],
		&pfx[1], &pfy[1], &pfz[1],
		&pfx[2], &pfy[2], &pfz[2],
		&pfx[3], &pfy[3], &pfz[3],
		x[0], y[0], z[0], x[1], y[1], z[1],
		x[2], y[2], z[2], x[3], y[3], z[3])
	// evaluate face two: nodes 0, 4, 5, 1
	sumElemFaceNormal(&pfx[0], &pfy[0], &pfz[0],
		&pfx[4], &pfy[4], &pfz[4],
		&pfx[5], &pfy[5], &pfz[5],
		&pfx[1], &pfy[1], &pfz[1],
		x[0], y[0], z[0], x[4], y[4], z[4],
		x[5], y[5], z[5], x[1], y[1], z[1])
	// evaluate face three: nodes 1, 5, 6, 2
	sumElemFaceNormal(&pfx[1], &pfy[1], &pfz[1],
		&pfx[5], &pfy[5], &pfz[5],
		&pfx[6], &pfy[6], &pfz[6],
		&pfx[2], &pfy[2], &pfz[2],
		x[1], y[1], z[1], x[5], y[5], z[5],
		x[6], y[6], z[6], x[2], y[2], z[2])
	// evaluate face four: nodes 2, 6, 7, 3
	sumElemFaceNormal(&pfx[2], &pfy[2], &pfz[2],
		&pfx[6], &pfy[6], &pfz[6],
		&pfx[7], &pfy[7], &pfz[7],
		&pfx[3], &pfy[3], &pfz[3],
		x[2], y[2], z[2], x[6], y[6], z[6],
		x[7], y[7], z[7], x[3], y[3], z[3])
	// evaluate face five: nodes 3, 7, 4, 0
	sumElemFaceNormal(&pfx[3], &pfy[3], &pfz[3],
		&pfx[7], &pfy[7], &pfz[7],
		&pfx[4], &pfy[4], &pfz[4],
		&pfx[0], &pfy[0], &pfz[0],
		x[3], y[3], z[3], x[7], y[7], z[7],
		x[4], y[4], z[4], x[0], y[0], z[0])
	// evaluate face six: nodes 4, 7, 6, 5
	sumElemFaceNormal(&pfx[4], &pfy[4], &pfz[4],
		&pfx[7], &pfy[7], &pfz[7],
		&pfx[6], &pfy[6], &pfz[6],
		&pfx[5], &pfy[5], &pfz[5],
		x[4], y[4], z[4], x[7], y[7], z[7],
		x[6], y[6], z[6], x[5], y[5], z[5])
}

func sumElemStressesToNodeForces(B *[3][8]Real, stressxx, stressyy, stresszz Real,
	fx, fy, fz *[8]Real) {
	for i := 0; i < 8; i++ {
		fx[i] = -stressxx * B[0][i]
		fy[i] = -stressyy * B[1][i]
		fz[i] = -stresszz * B[2][i]
	}
}

// integrateStressForElems integrates the stress over each element via the
// corner force vectors and scatters the result to the nodes. With more
// than one worker the per-corner forces are staged in element order and
// gathered through the node->corner CSR lists so node sums stay
// conflict-free; a single worker scatters directly.
func (d *Domain) integrateStressForElems(sigxx, sigyy, sigzz, determ []Real) {
	var fxElem, fyElem, fzElem []Real
	numElem8 := d.NumElem * 8
	if d.NumThreads > 1 {
		fxElem = make([]Real, numElem8)
		fyElem = make([]Real, numElem8)
		fzElem = make([]Real, numElem8)
	}

	d.pmElem.Run(func(iMin, iMax int) {
		var (
			B          [3][8]Real // shape function derivatives
			xl, yl, zl [8]Real
			fx, fy, fz [8]Real
		)
		for k := iMin; k < iMax; k++ {
			d.collectDomainNodesToElemNodes(k, &xl, &yl, &zl)

			determ[k] = CalcElemShapeFunctionDerivatives(&xl, &yl, &zl, &B)
			calcElemNodeNormals(&B[0], &B[1], &B[2], &xl, &yl, &zl)

			sumElemStressesToNodeForces(&B, sigxx[k], sigyy[k], sigzz[k], &fx, &fy, &fz)

			if d.NumThreads > 1 {
				copy(fxElem[k*8:k*8+8], fx[:])
				copy(fyElem[k*8:k*8+8], fy[:])
				copy(fzElem[k*8:k*8+8], fz[:])
			} else {
				nl := d.Nodes(k)
				for ln := 0; ln < 8; ln++ {
					g := nl[ln]
					d.FX[g] += fx[ln]
					d.FY[g] += fy[ln]
					d.FZ[g] += fz[ln]
				}
			}
		}
	})

	if d.NumThreads > 1 {
		d.pmNode.Run(func(nMin, nMax int) {
			for g := nMin; g < nMax; g++ {
				var fx, fy, fz Real
				start, end := d.NodeElemStart[g], d.NodeElemStart[g+1]
				for _, corner := range d.NodeElemCornerList[start:end] {
					fx += fxElem[corner]
					fy += fyElem[corner]
					fz += fzElem[corner]
				}
				d.FX[g] += fx
				d.FY[g] += fy
				d.FZ[g] += fz
			}
		})
	}
}

// voluDer is the partial derivative of the hex volume with respect to one
// corner position, given the six corners that share its faces.
func voluDer(x0, x1, x2, x3, x4, x5,
	y0, y1, y2, y3, y4, y5,
	z0, z1, z2, z3, z4, z5 Real) (dvdx, dvdy, dvdz Real) {
	const twelfth = Real(1.0) / Real(12.0)

	dvdx = (y1+y2)*(z0+z1) - (y0+y1)*(z1+z2) +
		(y0+y4)*(z3+z4) - (y3+y4)*(z0+z4) -
		(y2+y5)*(z3+z5) + (y3+y5)*(z2+z5)
	dvdy = -(x1+x2)*(z0+z1) + (x0+x1)*(z1+z2) -
		(x0+x4)*(z3+z4) + (x3+x4)*(z0+z4) +
		(x2+x5)*(z3+z5) - (x3+x5)*(z2+z5)
	dvdz = -(y1+y2)*(x0+x1) + (y0+y1)*(x1+x2) -
		(y0+y4)*(x3+x4) + (y3+y4)*(x0+x4) +
		(y2+y5)*(x3+x5) - (y3+y5)*(x2+x5)

	return dvdx * twelfth, dvdy * twelfth, dvdz * twelfth
}

// calcElemVolumeDerivative evaluates dV/dx at all eight corners.
func calcElemVolumeDerivative(dvdx, dvdy, dvdz *[8]Real, x, y, z *[8]Real) {
	dvdx[0], dvdy[0], dvdz[0] = voluDer(x[1], x[2], x[3], x[4], x[5], x[7],
		y[1], y[2], y[3], y[4], y[5], y[7],
		z[1], z[2], z[3], z[4], z[5], z[7])
	dvdx[3], dvdy[3], dvdz[3] = voluDer(x[0], x[1], x[2], x[7], x[4], x[6],
		y[0], y[1], y[2], y[7], y[4], y[6],
		z[0], z[1], z[2], z[7], z[4], z[6])
	dvdx[2], dvdy[2], dvdz[2] = voluDer(x[3], x[0], x[1], x[6], x[7], x[5],
		y[3], y[0], y[1], y[6], y[7], y[5],
		z[3], z[0], z[1], z[6], z[7], z[5])
	dvdx[1], dvdy[1], dvdz[1] = voluDer(x[2], x[3], x[0], x[5], x[6], x[4],
		y[2], y[3], y[0], y[5], y[6], y[4],
		z[2], z[3], z[0], z[5], z[6], z[4])
	dvdx[4], dvdy[4], dvdz[4] = voluDer(x[7], x[6], x[5], x[0], x[3], x[1],
		y[7], y[6], y[5], y[0], y[3], y[1],
		z[7], z[6], z[5], z[0], z[3], z[1])
	dvdx[7], dvdy[7], dvdz[7] = voluDer(x[6], x[5], x[4], x[3], x[2], x[0],
		y[6], y[5], y[4], y[3], y[2], y[0],
		z[6], z[5], z[4], z[3], z[2], z[0])
	dvdx[6], dvdy[6], dvdz[6] = voluDer(x[5], x[4], x[7], x[2], x[1], x[3],
		y[5], y[4], y[7], y[2], y[1], y[3],
		z[5], z[4], z[7], z[2], z[1], z[3])
	dvdx[5], dvdy[5], dvdz[5] = voluDer(x[4], x[7], x[6], x[1], x[0], x[2],
		y[4], y[7], y[6], y[1], y[0], y[2],
		z[4], z[7], z[6], z[1], z[0], z[2])
}

func calcElemFBHourglassForce(xd, yd, zd *[8]Real, hourgam *[8][4]Real,
	coefficient Real, hgfx, hgfy, hgfz *[8]Real) {
	var hxx [4]Real
	for i := 0; i < 4; i++ {
		hxx[i] = hourgam[0][i]*xd[0] + hourgam[1][i]*xd[1] +
			hourgam[2][i]*xd[2] + hourgam[3][i]*xd[3] +
			hourgam[4][i]*xd[4] + hourgam[5][i]*xd[5] +
			hourgam[6][i]*xd[6] + hourgam[7][i]*xd[7]
	}
	for i := 0; i < 8; i++ {
		hgfx[i] = coefficient * (hourgam[i][0]*hxx[0] + hourgam[i][1]*hxx[1] +
			hourgam[i][2]*hxx[2] + hourgam[i][3]*hxx[3])
	}
	for i := 0; i < 4; i++ {
		hxx[i] = hourgam[0][i]*yd[0] + hourgam[1][i]*yd[1] +
			hourgam[2][i]*yd[2] + hourgam[3][i]*yd[3] +
			hourgam[4][i]*yd[4] + hourgam[5][i]*yd[5] +
			hourgam[6][i]*yd[6] + hourgam[7][i]*yd[7]
	}
	for i := 0; i < 8; i++ {
		hgfy[i] = coefficient * (hourgam[i][0]*hxx[0] + hourgam[i][1]*hxx[1] +
			hourgam[i][2]*hxx[2] + hourgam[i][3]*hxx[3])
	}
	for i := 0; i < 4; i++ {
		hxx[i] = hourgam[0][i]*zd[0] + hourgam[1][i]*zd[1] +
			hourgam[2][i]*zd[2] + hourgam[3][i]*zd[3] +
			hourgam[4][i]*zd[4] + hourgam[5][i]*zd[5] +
			hourgam[6][i]*zd[6] + hourgam[7][i]*zd[7]
	}
	for i := 0; i < 8; i++ {
		hgfz[i] = coefficient * (hourgam[i][0]*hxx[0] + hourgam[i][1]*hxx[1] +
			hourgam[i][2]*hxx[2] + hourgam[i][3]*hxx[3])
	}
}

// calcFBHourglassForceForElems computes the Flanagan-Belytschko hourglass
// control force for each element and scatters it to the nodes. The
// stabilization pushes back on the four zero-energy modes with a stiffness
// of 0.01 * hourg * c * m / cbrt(V) (that is, 0.01 * hourg * rho * c * V^(2/3))
// per mode.
func (d *Domain) calcFBHourglassForceForElems(determ, x8n, y8n, z8n,
	dvdx, dvdy, dvdz []Real, hourg Real) {

	var fxElem, fyElem, fzElem []Real
	numElem8 := d.NumElem * 8
	if d.NumThreads > 1 {
		fxElem = make([]Real, numElem8)
		fyElem = make([]Real, numElem8)
		fzElem = make([]Real, numElem8)
	}

	d.pmElem.Run(func(iMin, iMax int) {
		var (
			hourgam          [8][4]Real
			xd1, yd1, zd1    [8]Real
			hgfx, hgfy, hgfz [8]Real
		)
		for i2 := iMin; i2 < iMax; i2++ {
			i3 := 8 * i2
			volinv := 1.0 / determ[i2]

			for i1 := 0; i1 < 4; i1++ {
				var hourmodx, hourmody, hourmodz Real
				for j := 0; j < 8; j++ {
					hourmodx += x8n[i3+j] * gammaHG[i1][j]
					hourmody += y8n[i3+j] * gammaHG[i1][j]
					hourmodz += z8n[i3+j] * gammaHG[i1][j]
				}
				for j := 0; j < 8; j++ {
					hourgam[j][i1] = gammaHG[i1][j] - volinv*(dvdx[i3+j]*hourmodx+
						dvdy[i3+j]*hourmody+
						dvdz[i3+j]*hourmodz)
				}
			}

			// compute forces: store forces into h arrays (force arrays)
			ss1 := d.SS[i2]
			mass1 := d.ElemMass[i2]
			volume13 := Cbrt(determ[i2])

			nl := d.Nodes(i2)
			for ln := 0; ln < 8; ln++ {
				g := nl[ln]
				xd1[ln] = d.Xd[g]
				yd1[ln] = d.Yd[g]
				zd1[ln] = d.Zd[g]
			}

			coefficient := -hourg * 0.01 * ss1 * mass1 / volume13

			calcElemFBHourglassForce(&xd1, &yd1, &zd1, &hourgam, coefficient,
				&hgfx, &hgfy, &hgfz)

			if d.NumThreads > 1 {
				copy(fxElem[i3:i3+8], hgfx[:])
				copy(fyElem[i3:i3+8], hgfy[:])
				copy(fzElem[i3:i3+8], hgfz[:])
			} else {
				for ln := 0; ln < 8; ln++ {
					g := nl[ln]
					d.FX[g] += hgfx[ln]
					d.FY[g] += hgfy[ln]
					d.FZ[g] += hgfz[ln]
				}
			}
		}
	})

	if d.NumThreads > 1 {
		d.pmNode.Run(func(nMin, nMax int) {
			for g := nMin; g < nMax; g++ {
				var fx, fy, fz Real
				start, end := d.NodeElemStart[g], d.NodeElemStart[g+1]
				for _, corner := range d.NodeElemCornerList[start:end] {
					fx += fxElem[corner]
					fy += fyElem[corner]
					fz += fzElem[corner]
				}
				d.FX[g] += fx
				d.FY[g] += fy
				d.FZ[g] += fz
			}
		})
	}
}

// calcHourglassControlForElems gathers the corner coordinates and volume
// derivatives that feed the hourglass force, and verifies element volumes
// stay positive.
func (d *Domain) calcHourglassControlForElems(determ []Real, hgcoef Real) error {
	numElem8 := d.NumElem * 8
	dvdx := make([]Real, numElem8)
	dvdy := make([]Real, numElem8)
	dvdz := make([]Real, numElem8)
	x8n := make([]Real, numElem8)
	y8n := make([]Real, numElem8)
	z8n := make([]Real, numElem8)

	err := d.pmElem.RunErr(func(iMin, iMax int) error {
		var (
			x1, y1, z1    [8]Real
			pfx, pfy, pfz [8]Real
		)
		for i := iMin; i < iMax; i++ {
			d.collectDomainNodesToElemNodes(i, &x1, &y1, &z1)
			calcElemVolumeDerivative(&pfx, &pfy, &pfz, &x1, &y1, &z1)

			// load into 1D arrays for the force computation
			for ii := 0; ii < 8; ii++ {
				jj := 8*i + ii
				dvdx[jj] = pfx[ii]
				dvdy[jj] = pfy[ii]
				dvdz[jj] = pfz[ii]
				x8n[jj] = x1[ii]
				y8n[jj] = y1[ii]
				z8n[jj] = z1[ii]
			}

			determ[i] = d.Volo[i] * d.V[i]
			if d.V[i] <= 0.0 {
				return ErrVolume
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if hgcoef > 0.0 {
		d.calcFBHourglassForceForElems(determ, x8n, y8n, z8n, dvdx, dvdy, dvdz, hgcoef)
	}
	return nil
}

// calcVolumeForceForElems assembles the pressure/viscosity and hourglass
// contributions to the nodal forces.
func (d *Domain) calcVolumeForceForElems() error {
	if d.NumElem == 0 {
		return nil
	}
	var (
		hgcoef = d.Params.HgCoef
		sigxx  = make([]Real, d.NumElem)
		sigyy  = make([]Real, d.NumElem)
		sigzz  = make([]Real, d.NumElem)
		determ = make([]Real, d.NumElem)
	)

	d.initStressTermsForElems(sigxx, sigyy, sigzz)

	// call elemlib stress integration loop to produce nodal forces from
	// material stresses
	d.integrateStressForElems(sigxx, sigyy, sigzz, determ)

	for k := 0; k < d.NumElem; k++ {
		if determ[k] <= 0.0 {
			return ErrVolume
		}
	}

	return d.calcHourglassControlForElems(determ, hgcoef)
}

// calcForceForNodes zeroes the force accumulators, assembles the volume
// forces, and completes the cross-rank force sums on boundary nodes.
func (d *Domain) calcForceForNodes() error {
	d.Ex.Recv(d, MsgSumNodal, 3, false)

	d.pmNode.Run(func(nMin, nMax int) {
		for g := nMin; g < nMax; g++ {
			d.FX[g] = 0.0
			d.FY[g] = 0.0
			d.FZ[g] = 0.0
		}
	})

	if err := d.calcVolumeForceForElems(); err != nil {
		return err
	}

	fields := [][]Real{d.FX, d.FY, d.FZ}
	d.Ex.Send(d, MsgSumNodal, fields, false)
	d.Ex.ApplySum(d, fields)
	return nil
}
