// Package comm provides ghost exchange transports for the hydro solver.
// The solver core only sees the hydro.Exchanger interface; this package
// carries the in-process implementation where every rank is a goroutine
// and transfers travel over channels. An MPI transport would slot in
// behind the same interface.
package comm

import "github.com/notargets/goshock/hydro"

// direction is the offset of a neighbor subdomain in the rank cube. Faces
// have one nonzero component, edges two, corners three.
type direction struct {
	dc, dr, dp int
}

func (dir direction) isFace() bool {
	n := 0
	if dir.dc != 0 {
		n++
	}
	if dir.dr != 0 {
		n++
	}
	if dir.dp != 0 {
		n++
	}
	return n == 1
}

// allMinus reports whether every nonzero component points at a lower
// grid coordinate; the position/velocity sync flows only in that
// direction (the mirror set receives).
func (dir direction) allMinus() bool {
	if dir.dc > 0 || dir.dr > 0 || dir.dp > 0 {
		return false
	}
	return dir.dc < 0 || dir.dr < 0 || dir.dp < 0
}

func (dir direction) allPlus() bool {
	if dir.dc < 0 || dir.dr < 0 || dir.dp < 0 {
		return false
	}
	return dir.dc > 0 || dir.dr > 0 || dir.dp > 0
}

func (dir direction) opposite() direction {
	return direction{-dir.dc, -dir.dr, -dir.dp}
}

// neighbors enumerates the up to 26 neighbor directions that exist for a
// domain at (col,row,plane) in a side^3 rank cube.
func neighbors(d *hydro.Domain) (dirs []direction) {
	for dp := -1; dp <= 1; dp++ {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dc == 0 && dr == 0 && dp == 0 {
					continue
				}
				c, r, p := d.ColLoc+dc, d.RowLoc+dr, d.PlaneLoc+dp
				if c < 0 || c >= d.Tp || r < 0 || r >= d.Tp ||
					p < 0 || p >= d.Tp {
					continue
				}
				dirs = append(dirs, direction{dc, dr, dp})
			}
		}
	}
	return dirs
}

func rankOf(d *hydro.Domain, dir direction) int {
	c, r, p := d.ColLoc+dir.dc, d.RowLoc+dir.dr, d.PlaneLoc+dir.dp
	return p*d.Tp*d.Tp + r*d.Tp + c
}

// axisRange returns the boundary slab of lattice indices for one axis of
// a transfer: the single minimal or maximal index for a nonzero offset,
// the full range otherwise.
func axisRange(delta, max int) (lo, hi int) {
	switch {
	case delta < 0:
		return 0, 1
	case delta > 0:
		return max, max + 1
	default:
		return 0, max + 1
	}
}

// boundaryNodes lists, in deterministic plane/row/col order, the node
// indices this domain shares with the neighbor in dir. The mirrored
// enumeration on the other rank yields the matching nodes in the same
// order.
func boundaryNodes(d *hydro.Domain, dir direction) (nodes []int) {
	var (
		edgeNodes = d.SizeX + 1
		cLo, cHi  = axisRange(dir.dc, d.SizeX)
		rLo, rHi  = axisRange(dir.dr, d.SizeY)
		pLo, pHi  = axisRange(dir.dp, d.SizeZ)
	)
	for p := pLo; p < pHi; p++ {
		for r := rLo; r < rHi; r++ {
			for c := cLo; c < cHi; c++ {
				nodes = append(nodes, p*edgeNodes*edgeNodes+r*edgeNodes+c)
			}
		}
	}
	return nodes
}

// faceElems lists the local boundary element plane facing dir, in the
// order the receiving side lays out its ghost block.
func faceElems(d *hydro.Domain, dir direction) (elems []int) {
	var (
		nx       = d.SizeX
		cLo, cHi = axisRange(dir.dc, nx-1)
		rLo, rHi = axisRange(dir.dr, nx-1)
		pLo, pHi = axisRange(dir.dp, nx-1)
	)
	for p := pLo; p < pHi; p++ {
		for r := rLo; r < rHi; r++ {
			for c := cLo; c < cHi; c++ {
				elems = append(elems, p*nx*nx+r*nx+c)
			}
		}
	}
	return elems
}

// ghostBlockStart returns the first ghost slot index for the face pointing
// at dir, matching the block layout the Domain builds for communicated
// faces: plane-min, plane-max, row-min, row-max, col-min, col-max.
func ghostBlockStart(d *hydro.Domain, dir direction) int {
	pidx := d.NumElem
	if d.PlaneMin {
		if dir == (direction{0, 0, -1}) {
			return pidx
		}
		pidx += d.SizeX * d.SizeY
	}
	if d.PlaneMax {
		if dir == (direction{0, 0, 1}) {
			return pidx
		}
		pidx += d.SizeX * d.SizeY
	}
	if d.RowMin {
		if dir == (direction{0, -1, 0}) {
			return pidx
		}
		pidx += d.SizeX * d.SizeZ
	}
	if d.RowMax {
		if dir == (direction{0, 1, 0}) {
			return pidx
		}
		pidx += d.SizeX * d.SizeZ
	}
	if d.ColMin {
		if dir == (direction{-1, 0, 0}) {
			return pidx
		}
		pidx += d.SizeY * d.SizeZ
	}
	if d.ColMax {
		if dir == (direction{1, 0, 0}) {
			return pidx
		}
	}
	panic("ghost block requested for a non-communicated face")
}
