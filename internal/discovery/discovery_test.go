package discovery

import (
	stdErrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte("<?hh\n"), 0o600))
	}
}

func TestFindSourcesFiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"zeta/Z.php",
		"alpha/B.hhi",
		"alpha/A.hh",
		"alpha/readme.md",
		"alpha/UPPER.PHP",
		".git/objects/x.php",
		"top.php",
	)

	got, err := FindSources(root, []string{"php", ".hhi", "hh"}, nil)
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "alpha", "A.hh"),
		filepath.Join(root, "alpha", "B.hhi"),
		filepath.Join(root, "top.php"),
		filepath.Join(root, "zeta", "Z.php"),
	}
	assert.Equal(t, want, got)
}

func TestFindSourcesPrefixes(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Vec/map.php", "Dict/filter.php", "Str/format.php")

	got, err := FindSources(root, []string{"php"}, []string{"Vec/", "./Str"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "Str", "format.php"),
		filepath.Join(root, "Vec", "map.php"),
	}, got)
}

func TestFindSourcesIsDeterministic(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "b/2.php", "a/1.php", "c/3.php", "a/0.php")

	first, err := FindSources(root, []string{"php"}, nil)
	require.NoError(t, err)
	for range 5 {
		again, err := FindSources(root, []string{"php"}, nil)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFindSourcesMissingRoot(t *testing.T) {
	_, err := FindSources(filepath.Join(t.TempDir(), "missing"), []string{"php"}, nil)
	require.Error(t, err)
	assert.True(t, stdErrors.Is(err, ErrRootNotFound))
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestFindSourcesRootIsFile(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "file.php")
	_, err := FindSources(filepath.Join(root, "file.php"), []string{"php"}, nil)
	require.ErrorIs(t, err, ErrRootNotDir)
}

func TestForProductConcatenatesRootsInOrder(t *testing.T) {
	runtime := t.TempDir()
	hhi := t.TempDir()
	touch(t, runtime, "z.php")
	touch(t, hhi, "a.hhi")

	got, err := ForProduct(config.ProductConfig{
		Name:  definition.ProductHack,
		Roots: []config.SourceRoot{{Path: runtime}, {Path: hhi}},
	}, []string{"php", "hhi"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(runtime, "z.php"), filepath.Join(hhi, "a.hhi")}, got)
}
