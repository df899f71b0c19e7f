package hydro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeIncrementController(t *testing.T) {
	{ // a tight Courant constraint halves into the new step
		d := newTestDomain(t, 4, 1, 1, 1, 1)
		d.Cycle = 1
		d.Deltatime = 1.0e-4
		d.DtCourant = 1.0e-5
		d.DtHydro = 1.0e+20
		d.timeIncrement()
		assert.True(t, near(0.5e-5, float64(d.Deltatime), 1.e-14))
	}

	{ // a tight hydro constraint enters scaled by two thirds
		d := newTestDomain(t, 4, 1, 1, 1, 1)
		d.Cycle = 1
		d.Deltatime = 1.0e-4
		d.DtCourant = 1.0e+20
		d.DtHydro = 9.0e-5
		d.timeIncrement()
		assert.True(t, near(6.0e-5, float64(d.Deltatime), 1.e-14))
	}

	{ // without binding constraints growth is capped at DtMultUB
		d := newTestDomain(t, 4, 1, 1, 1, 1)
		d.Cycle = 1
		d.Deltatime = 1.0e-5
		d.DtCourant = 1.0e+20
		d.DtHydro = 1.0e+20
		d.timeIncrement()
		assert.True(t, near(1.2e-5, float64(d.Deltatime), 1.e-14))
	}

	{ // growth below the lower multiplier is suppressed entirely
		d := newTestDomain(t, 4, 1, 1, 1, 1)
		d.Cycle = 1
		d.Deltatime = 1.0e-5
		d.DtCourant = 2.1e-5 // gnewdt = 1.05e-5, ratio 1.05 < lb 1.1
		d.DtHydro = 1.0e+20
		d.timeIncrement()
		assert.True(t, near(1.0e-5, float64(d.Deltatime), 1.e-14))
	}

	{ // the step never overshoots the stop time
		d := newTestDomain(t, 4, 1, 1, 1, 1)
		d.Cycle = 1
		d.Time = d.StopTime - 1.0e-6
		d.Deltatime = 1.0e-5
		d.DtCourant = 1.0e+20
		d.DtHydro = 1.0e+20
		d.timeIncrement()
		assert.True(t, float64(d.Time) <= float64(d.StopTime)+1.e-18)
	}

	{ // landing just past one step splits the remainder to avoid a sliver
		d := newTestDomain(t, 4, 1, 1, 1, 1)
		d.DtFixed = 1.0 // disable the controller branch
		d.Cycle = 1
		d.Time = 0.0
		d.StopTime = 1.25e-5
		d.Deltatime = 1.0e-5
		d.timeIncrement()
		// remaining 1.25 dt is inside (dt, 4dt/3): take 2dt/3 now
		assert.True(t, near(2.0/3.0*1.0e-5, float64(d.Deltatime), 1.e-14))
	}

	{ // a positive fixed timestep bypasses the constraint controller
		d := newTestDomain(t, 4, 1, 1, 1, 1)
		d.DtFixed = 2.0e-6
		d.Deltatime = 2.0e-6
		d.Cycle = 1
		d.DtCourant = 1.0e-9
		d.timeIncrement()
		assert.True(t, near(2.0e-6, float64(d.Deltatime), 1.e-14))
	}
}

func TestCalcTimeConstraints(t *testing.T) {
	d := newTestDomain(t, 6, 3, 1, 1, 2)
	_, err := d.Run(RunOptions{Iterations: 2, Quiet: true})
	assert.NoError(t, err)

	// after cycles with a live shock both constraints are finite and the
	// Courant bound reflects L/c of the most strained element
	assert.True(t, d.DtCourant < 1.0e+20)
	assert.True(t, d.DtHydro < 1.0e+20)
	assert.True(t, d.DtCourant > 0)
	assert.True(t, d.DtHydro > 0)
}
