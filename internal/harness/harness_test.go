package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReductionCases(t *testing.T) {
	cases, err := LoadCases("testdata/reduction")
	require.NoError(t, err)
	require.NotEmpty(t, cases)

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			RunCase(t, c)
		})
	}
}

func TestLoadCases_MissingDir(t *testing.T) {
	_, err := LoadCases("testdata/no_such_dir")
	require.Error(t, err)
}

func TestLoadCases_EmptyDir(t *testing.T) {
	_, err := LoadCases(t.TempDir())
	require.Error(t, err)
}
