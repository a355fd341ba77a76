package fs

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextualFsResolvesRelativePaths(t *testing.T) {
	base := afero.NewMemMapFs()
	cfs := NewContextualFs(base, "/data")

	require.NoError(t, cfs.WriteJSON("results/run.json", map[string]int{"n": 1}))

	ok, err := afero.Exists(base, "/data/results/run.json")
	require.NoError(t, err)
	assert.True(t, ok)

	var got map[string]int
	require.NoError(t, cfs.ReadJSON("results/run.json", &got))
	assert.Equal(t, 1, got["n"])

	// absolute paths bypass the base directory
	require.NoError(t, afero.WriteFile(base, "/elsewhere.json", []byte(`{"n":2}`), 0644))
	require.NoError(t, cfs.ReadJSON("/elsewhere.json", &got))
	assert.Equal(t, 2, got["n"])
}

func TestContextualFsGlob(t *testing.T) {
	base := afero.NewMemMapFs()
	cfs := NewContextualFs(base, "/s")
	for _, name := range []string{"/s/conversations/b.json", "/s/conversations/a.json", "/s/eval/a_eval.json"} {
		require.NoError(t, afero.WriteFile(base, name, []byte(`{}`), 0644))
	}

	matches, err := cfs.Glob("conversations/*.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"conversations/a.json", "conversations/b.json"}, matches)
}

func TestContextualFsReadJSONReportsName(t *testing.T) {
	base := afero.NewMemMapFs()
	cfs := NewContextualFs(base, "/s")
	require.NoError(t, afero.WriteFile(base, "/s/bad.json", []byte(`{`), 0644))

	var v map[string]interface{}
	err := cfs.ReadJSON("bad.json", &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}
