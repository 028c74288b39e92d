package diff_test

import (
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/lrviz/lib/diff"
)

func TestTestdataRecordsMissingGolden(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "scene")

	err := diff.Testdata(path, ".svg", []byte("<svg/>\n"))
	require.NoError(t, err)

	b, err := ioutil.ReadFile(path + ".exp.svg")
	require.NoError(t, err)
	assert.Equal(t, "<svg/>\n", string(b))
	_, err = os.Stat(path + ".got.svg")
	assert.True(t, os.IsNotExist(err))
}

func TestTestdataJSON(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is required to diff goldens")
	}
	t.Setenv("TESTDATA_ACCEPT", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "scene")

	got := map[string]interface{}{"kind": "tree", "label": "<+>"}
	require.NoError(t, diff.TestdataJSON(path, got))

	b, err := ioutil.ReadFile(path + ".exp.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"kind\": \"tree\",\n  \"label\": \"<+>\"\n}\n", string(b))

	// Matching output leaves nothing behind.
	require.NoError(t, diff.TestdataJSON(path, got))
	_, err = os.Stat(path + ".got.json")
	assert.True(t, os.IsNotExist(err))

	// Differing output is kept for inspection.
	got["kind"] = "automaton"
	err = diff.TestdataJSON(path, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TESTDATA_ACCEPT")
	_, err = os.Stat(path + ".got.json")
	assert.NoError(t, err)
}
