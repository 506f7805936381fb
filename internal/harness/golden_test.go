package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/tmadell/gdose/internal/scenario"
)

// TestExportedInputs_Golden pins the exact bytes of the XML input
// files the default scenario exports. Input export is deterministic,
// so any diff here means the transport model the engine sees has
// changed.
//
// To regenerate after an intentional change:
//
//	go test ./internal/harness -run TestExportedInputs_Golden -update
func TestExportedInputs_Golden(t *testing.T) {
	m, err := scenario.Default().BuildModel()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, m.WriteInputs(dir))

	g := goldie.New(t)
	for _, name := range []string{"materials.xml", "geometry.xml", "settings.xml", "tallies.xml"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, "reading exported %s", name)

		golden := "co60_" + name[:len(name)-len(filepath.Ext(name))]
		g.Assert(t, golden, data)
	}
}
