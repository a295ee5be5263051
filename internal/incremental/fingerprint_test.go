package incremental

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	hsl := filepath.Join(base, "hsl")
	examples := filepath.Join(base, "examples")
	require.NoError(t, os.MkdirAll(filepath.Join(hsl, "Vec"), 0o750))
	require.NoError(t, os.MkdirAll(examples, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(hsl, "Vec", "map.php"), []byte("<?hh\nfunction map() {}\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(examples, "vec.php"), []byte("<?hh\n"), 0o600))

	out := filepath.Join(base, "out")
	return &config.Config{
		Extensions:  []string{"php"},
		ExamplesDir: examples,
		Products: []config.ProductConfig{
			{Name: definition.ProductHSL, Roots: []config.SourceRoot{{Path: hsl}}},
		},
		Output: config.OutputConfig{
			MarkdownDir:  filepath.Join(out, "md"),
			NavIndexFile: filepath.Join(out, "index.json"),
			TagFile:      filepath.Join(out, "api.tag"),
		},
	}
}

func fixedHash() (string, error) { return "deadbeef", nil }

func TestFingerprintString(t *testing.T) {
	fp := Fingerprint{
		PipelineHash:     "abc",
		UpstreamTags:     []UpstreamTag{{Product: definition.ProductHack, Tag: "t1"}, {Product: definition.ProductHSL, Tag: "t2"}},
		ExamplesMaxMTime: 1700000000,
	}
	want := "build step source hash: abc\n" +
		"tags from dependencies:\n" +
		"hack sources: t1\n" +
		"hsl sources: t2\n" +
		"highest api-examples mtime: 1700000000\n"
	assert.Equal(t, want, fp.String())
	assert.Len(t, fp.Digest(), 64)
}

func TestComputeIsStableWithoutChanges(t *testing.T) {
	cfg := testConfig(t)
	c := NewComputer(cfg)
	c.PipelineHash = fixedHash

	first, err := c.Compute()
	require.NoError(t, err)
	second, err := c.Compute()
	require.NoError(t, err)
	assert.Equal(t, first.String(), second.String())
	require.Len(t, first.UpstreamTags, 1)
	assert.Equal(t, definition.ProductHSL, first.UpstreamTags[0].Product)
}

func TestComputeChangesWithSourcesAndExamples(t *testing.T) {
	cfg := testConfig(t)
	c := NewComputer(cfg)
	c.PipelineHash = fixedHash

	before, err := c.Compute()
	require.NoError(t, err)

	src := filepath.Join(cfg.Products[0].Roots[0].Path, "Vec", "filter.php")
	require.NoError(t, os.WriteFile(src, []byte("<?hh\n"), 0o600))
	afterSource, err := c.Compute()
	require.NoError(t, err)
	assert.NotEqual(t, before.UpstreamTags[0].Tag, afterSource.UpstreamTags[0].Tag)

	future := time.Now().Add(time.Hour)
	example := filepath.Join(cfg.ExamplesDir, "vec.php")
	require.NoError(t, os.Chtimes(example, future, future))
	afterExample, err := c.Compute()
	require.NoError(t, err)
	assert.Equal(t, future.Unix(), afterExample.ExamplesMaxMTime)
	assert.NotEqual(t, afterSource.String(), afterExample.String())
}

func TestComputeUsesUpstreamTagFile(t *testing.T) {
	cfg := testConfig(t)
	tagFile := filepath.Join(t.TempDir(), "hsl.tag")
	require.NoError(t, os.WriteFile(tagFile, []byte("v4.2.0\n"), 0o600))
	cfg.Products[0].UpstreamTagFile = tagFile

	c := NewComputer(cfg)
	c.PipelineHash = fixedHash
	fp, err := c.Compute()
	require.NoError(t, err)
	assert.Equal(t, "v4.2.0", fp.UpstreamTags[0].Tag)
}

func TestComputeFailsWithoutExamplesDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.ExamplesDir = filepath.Join(t.TempDir(), "missing")
	c := NewComputer(cfg)
	c.PipelineHash = fixedHash

	_, err := c.Compute()
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestHashFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bin")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o600))
	h, err := HashFile(p)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", h)
}
