package hydro

func (d *Domain) calcAccelerationForNodes() {
	d.pmNode.Run(func(nMin, nMax int) {
		for g := nMin; g < nMax; g++ {
			d.Xdd[g] = d.FX[g] / d.NodalMass[g]
			d.Ydd[g] = d.FY[g] / d.NodalMass[g]
			d.Zdd[g] = d.FZ[g] / d.NodalMass[g]
		}
	})
}

// applyAccelerationBoundaryConditionsForNodes zeroes the normal
// acceleration component on every symmetry plane node.
func (d *Domain) applyAccelerationBoundaryConditionsForNodes() {
	for _, g := range d.SymmX {
		d.Xdd[g] = 0.0
	}
	for _, g := range d.SymmY {
		d.Ydd[g] = 0.0
	}
	for _, g := range d.SymmZ {
		d.Zdd[g] = 0.0
	}
}

// calcVelocityForNodes integrates acceleration into velocity and snaps
// components below the velocity cutoff to exactly zero to stop drift.
func (d *Domain) calcVelocityForNodes(dt, uCut Real) {
	d.pmNode.Run(func(nMin, nMax int) {
		for g := nMin; g < nMax; g++ {
			xdtmp := d.Xd[g] + d.Xdd[g]*dt
			if Abs(xdtmp) < uCut {
				xdtmp = 0.0
			}
			d.Xd[g] = xdtmp

			ydtmp := d.Yd[g] + d.Ydd[g]*dt
			if Abs(ydtmp) < uCut {
				ydtmp = 0.0
			}
			d.Yd[g] = ydtmp

			zdtmp := d.Zd[g] + d.Zdd[g]*dt
			if Abs(zdtmp) < uCut {
				zdtmp = 0.0
			}
			d.Zd[g] = zdtmp
		}
	})
}

func (d *Domain) calcPositionForNodes(dt Real) {
	d.pmNode.Run(func(nMin, nMax int) {
		for g := nMin; g < nMax; g++ {
			d.X[g] += d.Xd[g] * dt
			d.Y[g] += d.Yd[g] * dt
			d.Z[g] += d.Zd[g] * dt
		}
	})
}

// lagrangeNodal advances the nodal state one step: force assembly,
// acceleration, symmetry conditions, velocity and position integration,
// then the early position/velocity synchronization with neighbor ranks.
func (d *Domain) lagrangeNodal() error {
	delt := d.Deltatime

	if err := d.calcForceForNodes(); err != nil {
		return err
	}

	d.Ex.Recv(d, MsgSyncPosVel, 6, false)

	d.calcAccelerationForNodes()
	d.applyAccelerationBoundaryConditionsForNodes()
	d.calcVelocityForNodes(delt, d.Params.UCut)
	d.calcPositionForNodes(delt)

	fields := [][]Real{d.X, d.Y, d.Z, d.Xd, d.Yd, d.Zd}
	d.Ex.Send(d, MsgSyncPosVel, fields, false)
	d.Ex.ApplyCopy(d, fields)

	return nil
}
