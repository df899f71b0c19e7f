package hydro

// calcMonotonicQGradientsForElems forms, per element, the velocity and
// position difference terms across the three logical axes that feed the
// monotonic limiter. Velocity gradients land in the ghost-extended arrays
// so neighbor values can be overlaid by the exchange.
func (d *Domain) calcMonotonicQGradientsForElems() {
	const ptiny = Real(1.0e-36)

	d.pmElem.Run(func(iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			nl := d.Nodes(i)

			n0, n1, n2, n3 := nl[0], nl[1], nl[2], nl[3]
			n4, n5, n6, n7 := nl[4], nl[5], nl[6], nl[7]

			x0, x1, x2, x3 := d.X[n0], d.X[n1], d.X[n2], d.X[n3]
			x4, x5, x6, x7 := d.X[n4], d.X[n5], d.X[n6], d.X[n7]
			y0, y1, y2, y3 := d.Y[n0], d.Y[n1], d.Y[n2], d.Y[n3]
			y4, y5, y6, y7 := d.Y[n4], d.Y[n5], d.Y[n6], d.Y[n7]
			z0, z1, z2, z3 := d.Z[n0], d.Z[n1], d.Z[n2], d.Z[n3]
			z4, z5, z6, z7 := d.Z[n4], d.Z[n5], d.Z[n6], d.Z[n7]

			xv0, xv1, xv2, xv3 := d.Xd[n0], d.Xd[n1], d.Xd[n2], d.Xd[n3]
			xv4, xv5, xv6, xv7 := d.Xd[n4], d.Xd[n5], d.Xd[n6], d.Xd[n7]
			yv0, yv1, yv2, yv3 := d.Yd[n0], d.Yd[n1], d.Yd[n2], d.Yd[n3]
			yv4, yv5, yv6, yv7 := d.Yd[n4], d.Yd[n5], d.Yd[n6], d.Yd[n7]
			zv0, zv1, zv2, zv3 := d.Zd[n0], d.Zd[n1], d.Zd[n2], d.Zd[n3]
			zv4, zv5, zv6, zv7 := d.Zd[n4], d.Zd[n5], d.Zd[n6], d.Zd[n7]

			vol := d.Volo[i] * d.Vnew[i]
			norm := 1.0 / (vol + ptiny)

			dxj := -0.25 * ((x0 + x1 + x5 + x4) - (x3 + x2 + x6 + x7))
			dyj := -0.25 * ((y0 + y1 + y5 + y4) - (y3 + y2 + y6 + y7))
			dzj := -0.25 * ((z0 + z1 + z5 + z4) - (z3 + z2 + z6 + z7))

			dxi := 0.25 * ((x1 + x2 + x6 + x5) - (x0 + x3 + x7 + x4))
			dyi := 0.25 * ((y1 + y2 + y6 + y5) - (y0 + y3 + y7 + y4))
			dzi := 0.25 * ((z1 + z2 + z6 + z5) - (z0 + z3 + z7 + z4))

			dxk := 0.25 * ((x4 + x5 + x6 + x7) - (x0 + x1 + x2 + x3))
			dyk := 0.25 * ((y4 + y5 + y6 + y7) - (y0 + y1 + y2 + y3))
			dzk := 0.25 * ((z4 + z5 + z6 + z7) - (z0 + z1 + z2 + z3))

			// find delvk and delxk ( i cross j )
			ax := dyi*dzj - dzi*dyj
			ay := dzi*dxj - dxi*dzj
			az := dxi*dyj - dyi*dxj

			d.DelxZeta[i] = vol / Sqrt(ax*ax+ay*ay+az*az+ptiny)

			ax *= norm
			ay *= norm
			az *= norm

			dxv := 0.25 * ((xv4 + xv5 + xv6 + xv7) - (xv0 + xv1 + xv2 + xv3))
			dyv := 0.25 * ((yv4 + yv5 + yv6 + yv7) - (yv0 + yv1 + yv2 + yv3))
			dzv := 0.25 * ((zv4 + zv5 + zv6 + zv7) - (zv0 + zv1 + zv2 + zv3))

			d.DelvZeta[i] = ax*dxv + ay*dyv + az*dzv

			// find delxi and delvi ( j cross k )
			ax = dyj*dzk - dzj*dyk
			ay = dzj*dxk - dxj*dzk
			az = dxj*dyk - dyj*dxk

			d.DelxXi[i] = vol / Sqrt(ax*ax+ay*ay+az*az+ptiny)

			ax *= norm
			ay *= norm
			az *= norm

			dxv = 0.25 * ((xv1 + xv2 + xv6 + xv5) - (xv0 + xv3 + xv7 + xv4))
			dyv = 0.25 * ((yv1 + yv2 + yv6 + yv5) - (yv0 + yv3 + yv7 + yv4))
			dzv = 0.25 * ((zv1 + zv2 + zv6 + zv5) - (zv0 + zv3 + zv7 + zv4))

			d.DelvXi[i] = ax*dxv + ay*dyv + az*dzv

			// find delxj and delvj ( k cross i )
			ax = dyk*dzi - dzk*dyi
			ay = dzk*dxi - dxk*dzi
			az = dxk*dyi - dyk*dxi

			d.DelxEta[i] = vol / Sqrt(ax*ax+ay*ay+az*az+ptiny)

			ax *= norm
			ay *= norm
			az *= norm

			dxv = -0.25 * ((xv0 + xv1 + xv5 + xv4) - (xv3 + xv2 + xv6 + xv7))
			dyv = -0.25 * ((yv0 + yv1 + yv5 + yv4) - (yv3 + yv2 + yv6 + yv7))
			dzv = -0.25 * ((zv0 + zv1 + zv5 + zv4) - (zv3 + zv2 + zv6 + zv7))

			d.DelvEta[i] = ax*dxv + ay*dyv + az*dzv
		}
	})
}

// calcMonotonicQRegionForElems applies the monotonic slope limiter over
// one region's elements and forms the linear and quadratic q terms.
// Neighbor gradients arrive through the face connectivity: symmetry faces
// reflect the local value, free surfaces contribute zero, and communicated
// faces read ghost slots filled by the exchange.
func (d *Domain) calcMonotonicQRegionForElems(r int) {
	var (
		p                = &d.Params
		monoqLimiterMult = p.MonoqLimiterMult
		monoqMaxSlope    = p.MonoqMaxSlope
		qlcMonoq         = p.Qlc
		qqcMonoq         = p.Qqc
	)
	const ptiny = Real(1.0e-36)

	pm := NewPartitionMap(d.NumThreads, len(d.RegElemList[r]))
	pm.Run(func(iMin, iMax int) {
		for ielem := iMin; ielem < iMax; ielem++ {
			i := d.RegElemList[r][ielem]
			bcMask := d.ElemBC[i]
			var delvm, delvp Real

			// phixi
			norm := 1.0 / (d.DelvXi[i] + ptiny)

			switch bcMask & XiM {
			case XiMComm, 0: // needs comm data
				delvm = d.DelvXi[d.Lxim[i]]
			case XiMSymm:
				delvm = d.DelvXi[i]
			case XiMFree:
				delvm = 0.0
			}
			switch bcMask & XiP {
			case XiPComm, 0: // needs comm data
				delvp = d.DelvXi[d.Lxip[i]]
			case XiPSymm:
				delvp = d.DelvXi[i]
			case XiPFree:
				delvp = 0.0
			}

			delvm *= norm
			delvp *= norm

			phixi := 0.5 * (delvm + delvp)

			delvm *= monoqLimiterMult
			delvp *= monoqLimiterMult

			if delvm < phixi {
				phixi = delvm
			}
			if delvp < phixi {
				phixi = delvp
			}
			if phixi < 0.0 {
				phixi = 0.0
			}
			if phixi > monoqMaxSlope {
				phixi = monoqMaxSlope
			}

			// phieta
			norm = 1.0 / (d.DelvEta[i] + ptiny)

			switch bcMask & EtaM {
			case EtaMComm, 0:
				delvm = d.DelvEta[d.Letam[i]]
			case EtaMSymm:
				delvm = d.DelvEta[i]
			case EtaMFree:
				delvm = 0.0
			}
			switch bcMask & EtaP {
			case EtaPComm, 0:
				delvp = d.DelvEta[d.Letap[i]]
			case EtaPSymm:
				delvp = d.DelvEta[i]
			case EtaPFree:
				delvp = 0.0
			}

			delvm *= norm
			delvp *= norm

			phieta := 0.5 * (delvm + delvp)

			delvm *= monoqLimiterMult
			delvp *= monoqLimiterMult

			if delvm < phieta {
				phieta = delvm
			}
			if delvp < phieta {
				phieta = delvp
			}
			if phieta < 0.0 {
				phieta = 0.0
			}
			if phieta > monoqMaxSlope {
				phieta = monoqMaxSlope
			}

			// phizeta
			norm = 1.0 / (d.DelvZeta[i] + ptiny)

			switch bcMask & ZetaM {
			case ZetaMComm, 0:
				delvm = d.DelvZeta[d.Lzetam[i]]
			case ZetaMSymm:
				delvm = d.DelvZeta[i]
			case ZetaMFree:
				delvm = 0.0
			}
			switch bcMask & ZetaP {
			case ZetaPComm, 0:
				delvp = d.DelvZeta[d.Lzetap[i]]
			case ZetaPSymm:
				delvp = d.DelvZeta[i]
			case ZetaPFree:
				delvp = 0.0
			}

			delvm *= norm
			delvp *= norm

			phizeta := 0.5 * (delvm + delvp)

			delvm *= monoqLimiterMult
			delvp *= monoqLimiterMult

			if delvm < phizeta {
				phizeta = delvm
			}
			if delvp < phizeta {
				phizeta = delvp
			}
			if phizeta < 0.0 {
				phizeta = 0.0
			}
			if phizeta > monoqMaxSlope {
				phizeta = monoqMaxSlope
			}

			// remove length scale
			if d.Vdov[i] > 0.0 {
				// expanding elements carry no artificial viscosity
				d.Qq[i] = 0.0
				d.Ql[i] = 0.0
			} else {
				delvxxi := d.DelvXi[i] * d.DelxXi[i]
				delvxeta := d.DelvEta[i] * d.DelxEta[i]
				delvxzeta := d.DelvZeta[i] * d.DelxZeta[i]

				if delvxxi > 0.0 {
					delvxxi = 0.0
				}
				if delvxeta > 0.0 {
					delvxeta = 0.0
				}
				if delvxzeta > 0.0 {
					delvxzeta = 0.0
				}

				rho := d.ElemMass[i] / (d.Volo[i] * d.Vnew[i])

				qlin := -qlcMonoq * rho *
					(delvxxi*(1.0-phixi) +
						delvxeta*(1.0-phieta) +
						delvxzeta*(1.0-phizeta))

				qquad := qqcMonoq * rho *
					(delvxxi*delvxxi*(1.0-phixi*phixi) +
						delvxeta*delvxeta*(1.0-phieta*phieta) +
						delvxzeta*delvxzeta*(1.0-phizeta*phizeta))

				d.Qq[i] = qquad
				d.Ql[i] = qlin
			}
		}
	})
}

// calcQForElems drives the artificial viscosity computation: local
// gradients, ghost gradient exchange, then the region-wise monotonic
// limiter. A q beyond the qstop threshold is fatal.
func (d *Domain) calcQForElems() error {
	// MONOTONIC Q option
	if d.NumElem == 0 {
		return nil
	}

	d.Ex.Recv(d, MsgMonoQ, 3, true)

	// Calculate velocity gradients
	d.calcMonotonicQGradientsForElems()

	fields := [][]Real{d.DelvXi, d.DelvEta, d.DelvZeta}
	d.Ex.Send(d, MsgMonoQ, fields, true)
	d.Ex.ApplyCopy(d, fields)

	for r := 0; r < d.NumReg; r++ {
		d.calcMonotonicQRegionForElems(r)
	}

	// Don't allow excessive artificial viscosity
	for i := 0; i < d.NumElem; i++ {
		if d.Q[i] > d.Params.QStop {
			return ErrQStop
		}
	}
	return nil
}
