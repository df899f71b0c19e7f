package hydro

func tripleProduct(x1, y1, z1, x2, y2, z2, x3, y3, z3 Real) Real {
	return x1*(y2*z3-z2*y3) + x2*(z1*y3-y1*z3) + x3*(y1*z2-z1*y2)
}

// CalcElemVolume returns the signed volume of a distorted hexahedron from
// its eight corner coordinates in canonical order, using the twelve-term
// mixed determinant on edge differences. Positive for properly oriented
// elements.
func CalcElemVolume(x, y, z *[8]Real) Real {
	const twelfth = Real(1.0) / Real(12.0)

	dx61 := x[6] - x[1]
	dy61 := y[6] - y[1]
	dz61 := z[6] - z[1]

	dx70 := x[7] - x[0]
	dy70 := y[7] - y[0]
	dz70 := z[7] - z[0]

	dx63 := x[6] - x[3]
	dy63 := y[6] - y[3]
	dz63 := z[6] - z[3]

	dx20 := x[2] - x[0]
	dy20 := y[2] - y[0]
	dz20 := z[2] - z[0]

	dx50 := x[5] - x[0]
	dy50 := y[5] - y[0]
	dz50 := z[5] - z[0]

	dx64 := x[6] - x[4]
	dy64 := y[6] - y[4]
	dz64 := z[6] - z[4]

	dx31 := x[3] - x[1]
	dy31 := y[3] - y[1]
	dz31 := z[3] - z[1]

	dx72 := x[7] - x[2]
	dy72 := y[7] - y[2]
	dz72 := z[7] - z[2]

	dx43 := x[4] - x[3]
	dy43 := y[4] - y[3]
	dz43 := z[4] - z[3]

	dx57 := x[5] - x[7]
	dy57 := y[5] - y[7]
	dz57 := z[5] - z[7]

	dx14 := x[1] - x[4]
	dy14 := y[1] - y[4]
	dz14 := z[1] - z[4]

	dx25 := x[2] - x[5]
	dy25 := y[2] - y[5]
	dz25 := z[2] - z[5]

	volume := tripleProduct(dx31+dx72, dx63, dx20,
		dy31+dy72, dy63, dy20,
		dz31+dz72, dz63, dz20) +
		tripleProduct(dx43+dx57, dx64, dx70,
			dy43+dy57, dy64, dy70,
			dz43+dz57, dz64, dz70) +
		tripleProduct(dx14+dx25, dx61, dx50,
			dy14+dy25, dy61, dy50,
			dz14+dz25, dz61, dz50)

	return volume * twelfth
}

// areaFace returns the squared-area metric of one quadrilateral face.
func areaFace(x0, x1, x2, x3, y0, y1, y2, y3, z0, z1, z2, z3 Real) Real {
	fx := (x2 - x0) - (x3 - x1)
	fy := (y2 - y0) - (y3 - y1)
	fz := (z2 - z0) - (z3 - z1)
	gx := (x2 - x0) + (x3 - x1)
	gy := (y2 - y0) + (y3 - y1)
	gz := (z2 - z0) + (z3 - z1)
	return (fx*fx+fy*fy+fz*fz)*(gx*gx+gy*gy+gz*gz) -
		(fx*gx+fy*gy+fz*gz)*(fx*gx+fy*gy+fz*gz)
}

// CalcElemCharacteristicLength is volume over the largest face area,
// the length scale used by the Courant constraint.
func CalcElemCharacteristicLength(x, y, z *[8]Real, volume Real) Real {
	var charLength Real

	a := areaFace(x[0], x[1], x[2], x[3],
		y[0], y[1], y[2], y[3],
		z[0], z[1], z[2], z[3])
	if a > charLength {
		charLength = a
	}

	a = areaFace(x[4], x[5], x[6], x[7],
		y[4], y[5], y[6], y[7],
		z[4], z[5], z[6], z[7])
	if a > charLength {
		charLength = a
	}

	a = areaFace(x[0], x[1], x[5], x[4],
		y[0], y[1], y[5], y[4],
		z[0], z[1], z[5], z[4])
	if a > charLength {
		charLength = a
	}

	a = areaFace(x[1], x[2], x[6], x[5],
		y[1], y[2], y[6], y[5],
		z[1], z[2], z[6], z[5])
	if a > charLength {
		charLength = a
	}

	a = areaFace(x[2], x[3], x[7], x[6],
		y[2], y[3], y[7], y[6],
		z[2], z[3], z[7], z[6])
	if a > charLength {
		charLength = a
	}

	a = areaFace(x[3], x[0], x[4], x[7],
		y[3], y[0], y[4], y[7],
		z[3], z[0], z[4], z[7])
	if a > charLength {
		charLength = a
	}

	return 4.0 * volume / Sqrt(charLength)
}

// CalcElemShapeFunctionDerivatives computes the single-point-quadrature
// B matrix (gradient of the shape functions) and the Jacobian determinant
// for one element.
func CalcElemShapeFunctionDerivatives(x, y, z *[8]Real, b *[3][8]Real) (volume Real) {
	fjxxi := 0.125 * ((x[6] - x[0]) + (x[5] - x[3]) - (x[7] - x[1]) - (x[4] - x[2]))
	fjxet := 0.125 * ((x[6] - x[0]) - (x[5] - x[3]) + (x[7] - x[1]) - (x[4] - x[2]))
	fjxze := 0.125 * ((x[6] - x[0]) + (x[5] - x[3]) + (x[7] - x[1]) + (x[4] - x[2]))

	fjyxi := 0.125 * ((y[6] - y[0]) + (y[5] - y[3]) - (y[7] - y[1]) - (y[4] - y[2]))
	fjyet := 0.125 * ((y[6] - y[0]) - (y[5] - y[3]) + (y[7] - y[1]) - (y[4] - y[2]))
	fjyze := 0.125 * ((y[6] - y[0]) + (y[5] - y[3]) + (y[7] - y[1]) + (y[4] - y[2]))

	fjzxi := 0.125 * ((z[6] - z[0]) + (z[5] - z[3]) - (z[7] - z[1]) - (z[4] - z[2]))
	fjzet := 0.125 * ((z[6] - z[0]) - (z[5] - z[3]) + (z[7] - z[1]) - (z[4] - z[2]))
	fjzze := 0.125 * ((z[6] - z[0]) + (z[5] - z[3]) + (z[7] - z[1]) + (z[4] - z[2]))

	// compute cofactors
	cjxxi := fjyet*fjzze - fjzet*fjyze
	cjxet := -fjyxi*fjzze + fjzxi*fjyze
	cjxze := fjyxi*fjzet - fjzxi*fjyet

	cjyxi := -fjxet*fjzze + fjzet*fjxze
	cjyet := fjxxi*fjzze - fjzxi*fjxze
	cjyze := -fjxxi*fjzet + fjzxi*fjxet

	cjzxi := fjxet*fjyze - fjyet*fjxze
	cjzet := -fjxxi*fjyze + fjyxi*fjxze
	cjzze := fjxxi*fjyet - fjyxi*fjxet

	// calculate partials: this need only be done for l = 0,1,2,3 since,
	// by symmetry, (6,7,4,5) = - (0,1,2,3)
	b[0][0] = -cjxxi - cjxet - cjxze
	b[0][1] = cjxxi - cjxet - cjxze
	b[0][2] = cjxxi + cjxet - cjxze
	b[0][3] = -cjxxi + cjxet - cjxze
	b[0][4] = -b[0][2]
	b[0][5] = -b[0][3]
	b[0][6] = -b[0][0]
	b[0][7] = -b[0][1]

	b[1][0] = -cjyxi - cjyet - cjyze
	b[1][1] = cjyxi - cjyet - cjyze
	b[1][2] = cjyxi + cjyet - cjyze
	b[1][3] = -cjyxi + cjyet - cjyze
	b[1][4] = -b[1][2]
	b[1][5] = -b[1][3]
	b[1][6] = -b[1][0]
	b[1][7] = -b[1][1]

	b[2][0] = -cjzxi - cjzet - cjzze
	b[2][1] = cjzxi - cjzet - cjzze
	b[2][2] = cjzxi + cjzet - cjzze
	b[2][3] = -cjzxi + cjzet - cjzze
	b[2][4] = -b[2][2]
	b[2][5] = -b[2][3]
	b[2][6] = -b[2][0]
	b[2][7] = -b[2][1]

	// calculate jacobian determinant (volume)
	return 8.0 * (fjxet*cjxet + fjyet*cjyet + fjzet*cjzet)
}

// CalcElemVelocityGradient evaluates the diagonal of the velocity gradient
// tensor at the element center.
func CalcElemVelocityGradient(xvel, yvel, zvel *[8]Real, b *[3][8]Real, detJ Real, d *[3]Real) {
	invDetJ := 1.0 / detJ

	d[0] = invDetJ * (b[0][0]*(xvel[0]-xvel[6]) +
		b[0][1]*(xvel[1]-xvel[7]) +
		b[0][2]*(xvel[2]-xvel[4]) +
		b[0][3]*(xvel[3]-xvel[5]))

	d[1] = invDetJ * (b[1][0]*(yvel[0]-yvel[6]) +
		b[1][1]*(yvel[1]-yvel[7]) +
		b[1][2]*(yvel[2]-yvel[4]) +
		b[1][3]*(yvel[3]-yvel[5]))

	d[2] = invDetJ * (b[2][0]*(zvel[0]-zvel[6]) +
		b[2][1]*(zvel[1]-zvel[7]) +
		b[2][2]*(zvel[2]-zvel[4]) +
		b[2][3]*(zvel[3]-zvel[5]))
}

// collectDomainNodesToElemNodes gathers the corner coordinates of element
// i into local arrays.
func (d *Domain) collectDomainNodesToElemNodes(i int, x, y, z *[8]Real) {
	nl := d.Nodes(i)
	for ln := 0; ln < 8; ln++ {
		g := nl[ln]
		x[ln] = d.X[g]
		y[ln] = d.Y[g]
		z[ln] = d.Z[g]
	}
}
