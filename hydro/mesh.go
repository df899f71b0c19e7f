package hydro

import (
	"fmt"
	"math"
	"unsafe"
)

const (
	// maxFieldsPerExchange bounds how many field arrays ride in one ghost
	// exchange message.
	maxFieldsPerExchange = 6

	cacheCoherenceBytes = 128
)

// cacheCoherencePadReal is the number of Reals per assumed coherence line.
func cacheCoherencePadReal() int {
	return cacheCoherenceBytes / int(unsafe.Sizeof(Real(0)))
}

func cacheAlignReal(n int) int {
	pad := cacheCoherencePadReal()
	return (n + pad - 1) &^ (pad - 1)
}

// buildMesh lays the node lattice and embeds the hexahedral elements.
// Spacing is 1.125/(tp*nx) by convention; each coordinate is recomputed
// from its integer lattice index rather than accumulated, which would
// collect roundoff.
func (d *Domain) buildMesh(nx, edgeNodes, edgeElems int) {
	meshEdgeElems := d.Tp * nx

	nidx := 0
	tz := 1.125 * Real(d.PlaneLoc*nx) / Real(meshEdgeElems)
	for plane := 0; plane < edgeNodes; plane++ {
		ty := 1.125 * Real(d.RowLoc*nx) / Real(meshEdgeElems)
		for row := 0; row < edgeNodes; row++ {
			tx := 1.125 * Real(d.ColLoc*nx) / Real(meshEdgeElems)
			for col := 0; col < edgeNodes; col++ {
				d.X[nidx] = tx
				d.Y[nidx] = ty
				d.Z[nidx] = tz
				nidx++
				tx = 1.125 * Real(d.ColLoc*nx+col+1) / Real(meshEdgeElems)
			}
			ty = 1.125 * Real(d.RowLoc*nx+row+1) / Real(meshEdgeElems)
		}
		tz = 1.125 * Real(d.PlaneLoc*nx+plane+1) / Real(meshEdgeElems)
	}

	// embed hexahedral elements in the nodal point lattice
	zidx := 0
	nidx = 0
	for plane := 0; plane < edgeElems; plane++ {
		for row := 0; row < edgeElems; row++ {
			for col := 0; col < edgeElems; col++ {
				localNode := d.Nodes(zidx)
				localNode[0] = nidx
				localNode[1] = nidx + 1
				localNode[2] = nidx + edgeNodes + 1
				localNode[3] = nidx + edgeNodes
				localNode[4] = nidx + edgeNodes*edgeNodes
				localNode[5] = nidx + edgeNodes*edgeNodes + 1
				localNode[6] = nidx + edgeNodes*edgeNodes + edgeNodes + 1
				localNode[7] = nidx + edgeNodes*edgeNodes + edgeNodes
				zidx++
				nidx++
			}
			nidx++
		}
		nidx += edgeNodes
	}
}

// setupThreadSupportStructures inverts the element->node connectivity into
// node->element-corner CSR lists so the parallel force scatter can sum each
// node's corner contributions without write conflicts.
func (d *Domain) setupThreadSupportStructures() {
	nodeElemCount := make([]int, d.NumNode)

	for i := 0; i < d.NumElem; i++ {
		for _, n := range d.Nodes(i) {
			nodeElemCount[n]++
		}
	}

	d.NodeElemStart = make([]int, d.NumNode+1)
	for i := 1; i <= d.NumNode; i++ {
		d.NodeElemStart[i] = d.NodeElemStart[i-1] + nodeElemCount[i-1]
	}

	d.NodeElemCornerList = make([]int, d.NodeElemStart[d.NumNode])
	for i := range nodeElemCount {
		nodeElemCount[i] = 0
	}
	for i := 0; i < d.NumElem; i++ {
		for j, m := range d.Nodes(i) {
			offset := d.NodeElemStart[m] + nodeElemCount[m]
			d.NodeElemCornerList[offset] = i*8 + j
			nodeElemCount[m]++
		}
	}
}

// setupCommBuffers sizes the ghost transfer planes and checks the exchange
// constants; it also sizes the symmetry nodesets for subdomain faces on a
// global minimum.
func (d *Domain) setupCommBuffers(edgeNodes int) error {
	switch unsafe.Sizeof(Real(0)) {
	case 4, 8:
	default:
		return fmt.Errorf("ghost exchange supports 32 and 64 bit reals, have %d bytes",
			unsafe.Sizeof(Real(0)))
	}
	if maxFieldsPerExchange > cacheCoherencePadReal() {
		return fmt.Errorf("corner exchange buffers too small: %d fields > %d pad reals",
			maxFieldsPerExchange, cacheCoherencePadReal())
	}

	maxEdgeSize := d.SizeX
	if d.SizeY > maxEdgeSize {
		maxEdgeSize = d.SizeY
	}
	if d.SizeZ > maxEdgeSize {
		maxEdgeSize = d.SizeZ
	}
	maxEdgeSize++
	d.MaxPlaneSize = cacheAlignReal(maxEdgeSize * maxEdgeSize)
	d.MaxEdgeSize = cacheAlignReal(maxEdgeSize)

	// communication to six face neighbors unless on the cube surface
	d.RowMin = d.RowLoc != 0
	d.RowMax = d.RowLoc != d.Tp-1
	d.ColMin = d.ColLoc != 0
	d.ColMax = d.ColLoc != d.Tp-1
	d.PlaneMin = d.PlaneLoc != 0
	d.PlaneMax = d.PlaneLoc != d.Tp-1

	// boundary nodesets
	if d.ColLoc == 0 {
		d.SymmX = make([]int, edgeNodes*edgeNodes)
	}
	if d.RowLoc == 0 {
		d.SymmY = make([]int, edgeNodes*edgeNodes)
	}
	if d.PlaneLoc == 0 {
		d.SymmZ = make([]int, edgeNodes*edgeNodes)
	}
	return nil
}

func (d *Domain) setupSymmetryPlanes(edgeNodes int) {
	nidx := 0
	for i := 0; i < edgeNodes; i++ {
		planeInc := i * edgeNodes * edgeNodes
		rowInc := i * edgeNodes
		for j := 0; j < edgeNodes; j++ {
			if d.PlaneLoc == 0 {
				d.SymmZ[nidx] = rowInc + j
			}
			if d.RowLoc == 0 {
				d.SymmY[nidx] = planeInc + j
			}
			if d.ColLoc == 0 {
				d.SymmX[nidx] = planeInc + j*edgeNodes
			}
			nidx++
		}
	}
}

// setupElementConnectivities wires the six axial face neighbors as
// contiguous strides: 1 in xi, nx in eta, nx*nx in zeta. Boundary faces
// self-reference until setupBoundaryConditions assigns ghost indices.
func (d *Domain) setupElementConnectivities(edgeElems int) {
	d.Lxim[0] = 0
	for i := 1; i < d.NumElem; i++ {
		d.Lxim[i] = i - 1
		d.Lxip[i-1] = i
	}
	d.Lxip[d.NumElem-1] = d.NumElem - 1

	for i := 0; i < edgeElems; i++ {
		d.Letam[i] = i
		d.Letap[d.NumElem-edgeElems+i] = d.NumElem - edgeElems + i
	}
	for i := edgeElems; i < d.NumElem; i++ {
		d.Letam[i] = i - edgeElems
		d.Letap[i-edgeElems] = i
	}

	for i := 0; i < edgeElems*edgeElems; i++ {
		d.Lzetam[i] = i
		d.Lzetap[d.NumElem-edgeElems*edgeElems+i] = d.NumElem - edgeElems*edgeElems + i
	}
	for i := edgeElems * edgeElems; i < d.NumElem; i++ {
		d.Lzetam[i] = i - edgeElems*edgeElems
		d.Lzetap[i-edgeElems*edgeElems] = i
	}
}

// setupBoundaryConditions tags every boundary face of the subdomain as
// symmetry (global minimum face), free surface (global maximum face) or
// communicated, and points communicated faces at their ghost slots. Ghost
// blocks are laid out beyond NumElem in plane-min, plane-max, row-min,
// row-max, col-min, col-max order, one block per communicated face.
func (d *Domain) setupBoundaryConditions(edgeElems int) {
	var ghostIdx [6]int
	for i := range ghostIdx {
		ghostIdx[i] = math.MinInt
	}

	pidx := d.NumElem
	if d.PlaneMin {
		ghostIdx[0] = pidx
		pidx += d.SizeX * d.SizeY
	}
	if d.PlaneMax {
		ghostIdx[1] = pidx
		pidx += d.SizeX * d.SizeY
	}
	if d.RowMin {
		ghostIdx[2] = pidx
		pidx += d.SizeX * d.SizeZ
	}
	if d.RowMax {
		ghostIdx[3] = pidx
		pidx += d.SizeX * d.SizeZ
	}
	if d.ColMin {
		ghostIdx[4] = pidx
		pidx += d.SizeY * d.SizeZ
	}
	if d.ColMax {
		ghostIdx[5] = pidx
	}

	for i := 0; i < edgeElems; i++ {
		planeInc := i * edgeElems * edgeElems
		rowInc := i * edgeElems
		for j := 0; j < edgeElems; j++ {
			if d.PlaneLoc == 0 {
				d.ElemBC[rowInc+j] |= ZetaMSymm
			} else {
				d.ElemBC[rowInc+j] |= ZetaMComm
				d.Lzetam[rowInc+j] = ghostIdx[0] + rowInc + j
			}

			if d.PlaneLoc == d.Tp-1 {
				d.ElemBC[rowInc+j+d.NumElem-edgeElems*edgeElems] |= ZetaPFree
			} else {
				d.ElemBC[rowInc+j+d.NumElem-edgeElems*edgeElems] |= ZetaPComm
				d.Lzetap[rowInc+j+d.NumElem-edgeElems*edgeElems] = ghostIdx[1] + rowInc + j
			}

			if d.RowLoc == 0 {
				d.ElemBC[planeInc+j] |= EtaMSymm
			} else {
				d.ElemBC[planeInc+j] |= EtaMComm
				d.Letam[planeInc+j] = ghostIdx[2] + rowInc + j
			}

			if d.RowLoc == d.Tp-1 {
				d.ElemBC[planeInc+j+edgeElems*edgeElems-edgeElems] |= EtaPFree
			} else {
				d.ElemBC[planeInc+j+edgeElems*edgeElems-edgeElems] |= EtaPComm
				d.Letap[planeInc+j+edgeElems*edgeElems-edgeElems] = ghostIdx[3] + rowInc + j
			}

			if d.ColLoc == 0 {
				d.ElemBC[planeInc+j*edgeElems] |= XiMSymm
			} else {
				d.ElemBC[planeInc+j*edgeElems] |= XiMComm
				d.Lxim[planeInc+j*edgeElems] = ghostIdx[4] + rowInc + j
			}

			if d.ColLoc == d.Tp-1 {
				d.ElemBC[planeInc+j*edgeElems+edgeElems-1] |= XiPFree
			} else {
				d.ElemBC[planeInc+j*edgeElems+edgeElems-1] |= XiPComm
				d.Lxip[planeInc+j*edgeElems+edgeElems-1] = ghostIdx[5] + rowInc + j
			}
		}
	}
}

// InitMeshDecomp places rank myRank in an r x r x r cube of subdomains.
// Rank counts that are not integer cubes are rejected.
func InitMeshDecomp(numRanks, myRank int) (col, row, plane, side int, err error) {
	testProcs := int(math.Cbrt(float64(numRanks)) + 0.5)
	if testProcs*testProcs*testProcs != numRanks {
		return 0, 0, 0, 0,
			fmt.Errorf("rank count must be a cube of an integer (1, 8, 27, ...), have %d", numRanks)
	}

	dx, dy := testProcs, testProcs
	myDom := myRank

	col = myDom % dx
	row = (myDom / dx) % dy
	plane = myDom / (dx * dy)
	side = testProcs
	return col, row, plane, side, nil
}
