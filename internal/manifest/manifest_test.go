package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/emit"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/incremental"
	"git.home.luguber.info/inful/apidocbuilder/internal/navindex"
)

func TestDocIndexRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "md", "index.json")
	idx := NewDocIndex([]emit.Document{
		{Product: definition.ProductHack, Path: "md/hack/class/HH.Vector.md", Fingerprint: "a"},
		{Product: definition.ProductHSL, Path: "md/hsl/function/HH.Lib.Vec.map.md", Fingerprint: "b"},
	})
	require.NoError(t, WriteDocIndex(path, idx))
	assert.NoFileExists(t, path+".tmp")

	got, err := ReadDocIndex(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"md/hack/class/HH.Vector.md", "md/hsl/function/HH.Lib.Vec.map.md"}, got.Files)
	assert.Equal(t, "b", got.Fingerprints["md/hsl/function/HH.Lib.Vec.map.md"])
}

func TestEmptyDocIndexSerializesFilesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, WriteDocIndex(path, NewDocIndex(nil)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"files": []`)
}

func TestNavIndexRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api-index.json")
	idx := navindex.NavigationIndex{
		definition.ProductHSL: {
			Class:     map[string]navindex.ClassEntry{},
			Interface: map[string]navindex.ClassEntry{},
			Trait:     map[string]navindex.ClassEntry{},
			Function:  map[string]navindex.FunctionEntry{"HH.Lib.Vec.map": {Name: `HH\Lib\Vec\map`, URLPath: "/hsl/reference/function/HH.Lib.Vec.map/"}},
		},
		definition.ProductHack: {},
	}
	require.NoError(t, WriteNavIndex(path, idx))
	got, err := ReadNavIndex(path)
	require.NoError(t, err)
	assert.Equal(t, `HH\Lib\Vec\map`, got[definition.ProductHSL].Function["HH.Lib.Vec.map"].Name)
	assert.Equal(t, []definition.Product{definition.ProductHack, definition.ProductHSL}, Products(got))
}

func TestWriteTagMatchesFingerprintText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api-docs.tag")
	fp := incremental.Fingerprint{
		PipelineHash:     "abc",
		UpstreamTags:     []incremental.UpstreamTag{{Product: definition.ProductHack, Tag: "t1"}},
		ExamplesMaxMTime: 42,
	}
	require.NoError(t, WriteTag(path, fp))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fp.String(), string(data))
}

func TestRemoveTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api-docs.tag")
	require.NoError(t, RemoveTag(path), "missing tag is fine")

	require.NoError(t, WriteTag(path, incremental.Fingerprint{PipelineHash: "abc"}))
	require.NoError(t, RemoveTag(path))
	assert.NoFileExists(t, path)
}

func TestReadErrors(t *testing.T) {
	_, err := ReadDocIndex(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = ReadNavIndex(bad)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}
