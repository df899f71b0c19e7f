package hydro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func newTestDomain(t *testing.T, nx, numReg, balance, cost, threads int) *Domain {
	t.Helper()
	d, err := NewDomain(Opts{
		NumRanks: 1,
		Rank:     0,
		ColLoc:   0,
		RowLoc:   0,
		PlaneLoc: 0,
		Nx:       nx,
		Tp:       1,
		NumReg:   numReg,
		Balance:  balance,
		Cost:     cost,
		Threads:  threads,
	})
	require.NoError(t, err)
	return d
}

func TestDomainConstruction(t *testing.T) {
	nx := 5
	d := newTestDomain(t, nx, 11, 1, 1, 1)

	edgeNodes := nx + 1
	assert.Equal(t, nx*nx*nx, d.NumElem)
	assert.Equal(t, edgeNodes*edgeNodes*edgeNodes, d.NumNode)

	{ // lattice spacing is 1.125/edge elems, recomputed per index
		h := 1.125 / float64(nx)
		assert.True(t, near(h, float64(d.X[1])))
		assert.True(t, near(h, float64(d.Y[edgeNodes])))
		assert.True(t, near(h, float64(d.Z[edgeNodes*edgeNodes])))
		assert.True(t, near(1.125, float64(d.X[edgeNodes-1])))
	}

	{ // canonical corner ordering of element 0
		en2 := edgeNodes * edgeNodes
		assert.Equal(t, []int{0, 1, edgeNodes + 1, edgeNodes,
			en2, en2 + 1, en2 + edgeNodes + 1, en2 + edgeNodes}, d.Nodes(0))
	}

	{ // relative volume starts at one, energy only in the origin element
		for i := 0; i < d.NumElem; i++ {
			assert.Equal(t, 1.0, float64(d.V[i]))
		}
		assert.True(t, d.E[0] > 0)
		for i := 1; i < d.NumElem; i++ {
			assert.Equal(t, 0.0, float64(d.E[i]))
		}
	}

	{ // initial deltatime follows the analytic CFL of the deposit
		want := 0.5 * Cbrt(d.Volo[0]) / Sqrt(2.0*d.E[0])
		assert.Equal(t, float64(want), float64(d.Deltatime))
	}

	{ // mass is conserved by construction: corner lumping moves each
		// element's mass to its nodes in eighths
		assert.True(t, near(floats.Sum(d.ElemMass), floats.Sum(d.NodalMass), 1.e-12))
		assert.True(t, near(floats.Sum(d.Volo), floats.Sum(d.NodalMass), 1.e-12))
	}

	{ // single rank: minimal faces symmetric, maximal faces free
		assert.NotZero(t, d.ElemBC[0]&XiMSymm)
		assert.NotZero(t, d.ElemBC[0]&EtaMSymm)
		assert.NotZero(t, d.ElemBC[0]&ZetaMSymm)
		last := d.NumElem - 1
		assert.NotZero(t, d.ElemBC[last]&XiPFree)
		assert.NotZero(t, d.ElemBC[last]&EtaPFree)
		assert.NotZero(t, d.ElemBC[last]&ZetaPFree)
		// no communicated faces without neighbor ranks
		for i := 0; i < d.NumElem; i++ {
			assert.Zero(t, d.ElemBC[i]&(XiMComm|XiPComm|EtaMComm|EtaPComm|ZetaMComm|ZetaPComm))
		}
	}

	{ // symmetry nodesets span the minimal faces
		assert.Equal(t, edgeNodes*edgeNodes, len(d.SymmX))
		assert.Equal(t, edgeNodes*edgeNodes, len(d.SymmY))
		assert.Equal(t, edgeNodes*edgeNodes, len(d.SymmZ))
		for _, n := range d.SymmX {
			assert.Equal(t, 0.0, float64(d.X[n]))
		}
		for _, n := range d.SymmZ {
			assert.Equal(t, 0.0, float64(d.Z[n]))
		}
	}
}

func TestFaceConnectivityStrides(t *testing.T) {
	nx := 4
	d := newTestDomain(t, nx, 1, 1, 1, 1)

	// an interior element sees stride neighbors: 1 in xi, nx in eta,
	// nx*nx in zeta
	i := 1 + nx + nx*nx // (col,row,plane) = (1,1,1)
	assert.Equal(t, i-1, d.Lxim[i])
	assert.Equal(t, i+1, d.Lxip[i])
	assert.Equal(t, i-nx, d.Letam[i])
	assert.Equal(t, i+nx, d.Letap[i])
	assert.Equal(t, i-nx*nx, d.Lzetam[i])
	assert.Equal(t, i+nx*nx, d.Lzetap[i])
}

func TestRegionAssignment(t *testing.T) {
	{ // every element carries a region id in [1,R] and the index sets
		// partition the elements exactly
		d := newTestDomain(t, 8, 11, 1, 1, 1)
		total := 0
		for r := 0; r < d.NumReg; r++ {
			total += len(d.RegElemList[r])
			for _, i := range d.RegElemList[r] {
				assert.Equal(t, r+1, d.RegNumList[i])
			}
		}
		assert.Equal(t, d.NumElem, total)
		for i := 0; i < d.NumElem; i++ {
			assert.True(t, d.RegNumList[i] >= 1 && d.RegNumList[i] <= d.NumReg)
		}
	}

	{ // a single region owns everything
		d := newTestDomain(t, 4, 1, 1, 1, 1)
		assert.Equal(t, d.NumElem, len(d.RegElemList[0]))
	}

	{ // the rank-seeded assignment is reproducible
		d1 := newTestDomain(t, 6, 7, 1, 1, 1)
		d2 := newTestDomain(t, 6, 7, 1, 1, 1)
		assert.Equal(t, d1.RegNumList, d2.RegNumList)
	}
}

func TestNodeElemCornerListCSR(t *testing.T) {
	nx := 3
	d := newTestDomain(t, nx, 1, 1, 1, 4)

	require.NotNil(t, d.NodeElemStart)
	// total corner count is 8 per element
	assert.Equal(t, 8*d.NumElem, d.NodeElemStart[d.NumNode])

	// every corner entry points back at a nodelist slot naming this node
	for g := 0; g < d.NumNode; g++ {
		for _, corner := range d.NodeElemCornerList[d.NodeElemStart[g]:d.NodeElemStart[g+1]] {
			assert.Equal(t, g, d.Nodelist[corner])
		}
	}

	// a fully interior node touches eight elements
	en := nx + 1
	interior := 1 + en + en*en
	assert.Equal(t, 8, d.NodeElemStart[interior+1]-d.NodeElemStart[interior])
}

func TestInitMeshDecomp(t *testing.T) {
	{ // cubes pass
		for _, n := range []int{1, 8, 27, 64} {
			_, _, _, side, err := InitMeshDecomp(n, 0)
			assert.NoError(t, err)
			assert.Equal(t, n, side*side*side)
		}
	}
	{ // non-cubes are rejected at initialization
		for _, n := range []int{2, 3, 4, 9, 26} {
			_, _, _, _, err := InitMeshDecomp(n, 0)
			assert.Error(t, err)
		}
	}
	{ // rank placement walks col fastest, plane slowest
		col, row, plane, side, err := InitMeshDecomp(8, 3)
		assert.NoError(t, err)
		assert.Equal(t, 2, side)
		assert.Equal(t, 1, col)
		assert.Equal(t, 1, row)
		assert.Equal(t, 0, plane)
	}
}
