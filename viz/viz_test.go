package viz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/goshock/hydro"
)

func TestDump(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	d, err := hydro.NewDomain(hydro.Opts{
		NumRanks: 1, Tp: 1, Nx: 2, NumReg: 1, Balance: 1, Cost: 1, Threads: 1,
	})
	require.NoError(t, err)

	require.NoError(t, Dump([]*hydro.Domain{d}, 0))

	matches, err := filepath.Glob(filepath.Join(dir, "goshock_plot_*"))
	require.NoError(t, err)
	require.Equal(t, 1, len(matches))

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, "# rank 0 cycle 0"))
	// three header lines plus one line per node and per element
	lines := strings.Count(text, "\n")
	assert.Equal(t, 3+d.NumNode+d.NumElem, lines)
}
