package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/goshock/InputParameters"
	"github.com/notargets/goshock/hydro"
)

func TestApplyParameters(t *testing.T) {
	d, err := hydro.NewDomain(hydro.Opts{
		NumRanks: 1, Tp: 1, Nx: 3, NumReg: 1, Balance: 1, Cost: 1, Threads: 1,
	})
	require.NoError(t, err)

	stop := 0.5
	ip := &InputParameters.SedovParameters{}
	require.NoError(t, ip.Parse([]byte(`
Title: override test
StopTime: 0.5
HourglassCoef: 4.0
TimeStepMultUB: 1.3
`)))
	assert.Equal(t, "override test", ip.Title)

	applyParameters(ip, d)
	assert.Equal(t, stop, float64(d.StopTime))
	assert.Equal(t, 4.0, float64(d.Params.HgCoef))
	assert.Equal(t, 1.3, float64(d.DtMultUB))
	// untouched knobs keep their defaults
	assert.Equal(t, 0.5, float64(d.Params.Qlc))
	assert.Equal(t, 1.0e-2, float64(d.DtMax))
}

func TestRunSedovSmoke(t *testing.T) {
	ms := &ModelSedov{
		Iterations: 2,
		Nx:         4,
		NumReg:     3,
		Balance:    1,
		Cost:       1,
		NumRanks:   1,
		NumThreads: 1,
		Quiet:      true,
	}
	assert.NoError(t, RunSedov(ms, nil))
}

func TestRunSedovRejectsNonCubeRanks(t *testing.T) {
	ms := &ModelSedov{
		Iterations: 1,
		Nx:         3,
		NumReg:     1,
		Balance:    1,
		Cost:       1,
		NumRanks:   5,
		NumThreads: 1,
		Quiet:      true,
	}
	assert.Error(t, RunSedov(ms, nil))
}
