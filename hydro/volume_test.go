package hydro

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func near(a, b float64, tolI ...float64) (l bool) {
	var (
		tol float64
	)
	if len(tolI) == 0 {
		tol = 1.e-08
	} else {
		tol = tolI[0]
	}
	bound := math.Max(tol, tol*math.Abs(a))
	if math.Abs(a-b) <= bound {
		l = true
	}
	return
}

// unitCube fills the canonical corner ordering of the unit hex.
func unitCube() (x, y, z [8]Real) {
	corners := [8][3]Real{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	for i, c := range corners {
		x[i], y[i], z[i] = c[0], c[1], c[2]
	}
	return
}

func TestCalcElemVolume(t *testing.T) {
	{ // canonical unit cube has unit volume
		x, y, z := unitCube()
		assert.True(t, near(1.0, float64(CalcElemVolume(&x, &y, &z)), 1.e-14))
	}
	{ // all-coincident corners collapse to zero volume
		var x, y, z [8]Real
		for i := 0; i < 8; i++ {
			x[i], y[i], z[i] = 0.3, -1.2, 7.5
		}
		assert.Equal(t, 0.0, float64(CalcElemVolume(&x, &y, &z)))
	}
	{ // swapping the top and bottom faces inverts orientation and flips the sign
		x, y, z := unitCube()
		var xs, ys, zs [8]Real
		for i := 0; i < 4; i++ {
			xs[i], ys[i], zs[i] = x[i+4], y[i+4], z[i+4]
			xs[i+4], ys[i+4], zs[i+4] = x[i], y[i], z[i]
		}
		assert.True(t, near(-1.0, float64(CalcElemVolume(&xs, &ys, &zs)), 1.e-14))
	}
	{ // scaling all coordinates scales the volume by the cube
		x, y, z := unitCube()
		for i := 0; i < 8; i++ {
			x[i] *= 2
			y[i] *= 3
			z[i] *= 0.5
		}
		assert.True(t, near(3.0, float64(CalcElemVolume(&x, &y, &z)), 1.e-13))
	}
}

// gaussVolume integrates det(J) of the trilinear map over the reference
// cube with 2x2x2 Gauss points, which is exact for a trilinear hex.
func gaussVolume(x, y, z *[8]Real) float64 {
	// reference corner signs matching the canonical ordering
	xi := [8]float64{-1, 1, 1, -1, -1, 1, 1, -1}
	eta := [8]float64{-1, -1, 1, 1, -1, -1, 1, 1}
	zeta := [8]float64{-1, -1, -1, -1, 1, 1, 1, 1}
	g := 1.0 / math.Sqrt(3.0)
	var vol float64
	for _, gz := range []float64{-g, g} {
		for _, gy := range []float64{-g, g} {
			for _, gx := range []float64{-g, g} {
				var J [3][3]float64
				for i := 0; i < 8; i++ {
					dNdXi := 0.125 * xi[i] * (1 + eta[i]*gy) * (1 + zeta[i]*gz)
					dNdEta := 0.125 * (1 + xi[i]*gx) * eta[i] * (1 + zeta[i]*gz)
					dNdZeta := 0.125 * (1 + xi[i]*gx) * (1 + eta[i]*gy) * zeta[i]
					J[0][0] += dNdXi * float64(x[i])
					J[0][1] += dNdEta * float64(x[i])
					J[0][2] += dNdZeta * float64(x[i])
					J[1][0] += dNdXi * float64(y[i])
					J[1][1] += dNdEta * float64(y[i])
					J[1][2] += dNdZeta * float64(y[i])
					J[2][0] += dNdXi * float64(z[i])
					J[2][1] += dNdEta * float64(z[i])
					J[2][2] += dNdZeta * float64(z[i])
				}
				det := J[0][0]*(J[1][1]*J[2][2]-J[1][2]*J[2][1]) -
					J[0][1]*(J[1][0]*J[2][2]-J[1][2]*J[2][0]) +
					J[0][2]*(J[1][0]*J[2][1]-J[1][1]*J[2][0])
				vol += det
			}
		}
	}
	return vol
}

func TestCalcElemVolumeAgainstQuadrature(t *testing.T) {
	// the closed form must agree with Gauss quadrature for randomly
	// distorted, non-degenerate hexes
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		x, y, z := unitCube()
		for i := 0; i < 8; i++ {
			x[i] += Real(0.3 * (rng.Float64() - 0.5))
			y[i] += Real(0.3 * (rng.Float64() - 0.5))
			z[i] += Real(0.3 * (rng.Float64() - 0.5))
		}
		vClosed := float64(CalcElemVolume(&x, &y, &z))
		vGauss := gaussVolume(&x, &y, &z)
		assert.True(t, near(vGauss, vClosed, 1.e-12),
			"trial %d: closed form %v vs quadrature %v", trial, vClosed, vGauss)
	}
}

func TestCalcElemCharacteristicLength(t *testing.T) {
	{ // unit cube: every face has area one, so L = 4V/sqrt(areaMetric) = 1
		x, y, z := unitCube()
		v := CalcElemVolume(&x, &y, &z)
		assert.True(t, near(1.0, float64(CalcElemCharacteristicLength(&x, &y, &z, v)), 1.e-14))
	}
	{ // stretching one axis leaves the largest face in charge
		x, y, z := unitCube()
		for i := 0; i < 8; i++ {
			z[i] *= 2
		}
		v := CalcElemVolume(&x, &y, &z)
		// L = V/A_max: V = 2 and the stretched side faces have area 2
		assert.True(t, near(1.0, float64(CalcElemCharacteristicLength(&x, &y, &z, v)), 1.e-13))
	}
}

func TestShapeFunctionDerivativeVolume(t *testing.T) {
	// the Jacobian determinant from the shape function derivatives must
	// equal the closed form volume for the undistorted element
	x, y, z := unitCube()
	var b [3][8]Real
	detJ := CalcElemShapeFunctionDerivatives(&x, &y, &z, &b)
	assert.True(t, near(1.0, float64(detJ), 1.e-14))

	// B column sums vanish: a constant field has zero gradient
	for dim := 0; dim < 3; dim++ {
		var sum Real
		for i := 0; i < 8; i++ {
			sum += b[dim][i]
		}
		assert.True(t, near(0.0, float64(sum), 1.e-14))
	}
}

func TestVolumeDerivativeMatchesFiniteDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x, y, z := unitCube()
	for i := 0; i < 8; i++ {
		x[i] += Real(0.2 * (rng.Float64() - 0.5))
		y[i] += Real(0.2 * (rng.Float64() - 0.5))
		z[i] += Real(0.2 * (rng.Float64() - 0.5))
	}
	var dvdx, dvdy, dvdz [8]Real
	calcElemVolumeDerivative(&dvdx, &dvdy, &dvdz, &x, &y, &z)

	const h = 1.e-6
	for i := 0; i < 8; i++ {
		xp := x
		xp[i] += h
		xm := x
		xm[i] -= h
		fd := float64(CalcElemVolume(&xp, &y, &z)-CalcElemVolume(&xm, &y, &z)) / (2 * h)
		assert.True(t, near(fd, float64(dvdx[i]), 1.e-6), "dvdx[%d]", i)

		yp := y
		yp[i] += h
		ym := y
		ym[i] -= h
		fd = float64(CalcElemVolume(&x, &yp, &z)-CalcElemVolume(&x, &ym, &z)) / (2 * h)
		assert.True(t, near(fd, float64(dvdy[i]), 1.e-6), "dvdy[%d]", i)

		zp := z
		zp[i] += h
		zm := z
		zm[i] -= h
		fd = float64(CalcElemVolume(&x, &y, &zp)-CalcElemVolume(&x, &y, &zm)) / (2 * h)
		assert.True(t, near(fd, float64(dvdz[i]), 1.e-6), "dvdz[%d]", i)
	}
}
