package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	assert.Equal(t, slog.LevelInfo, parseLogLevel(false))
	assert.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv(LogLevelEnv, "WARN")
	assert.Equal(t, slog.LevelWarn, parseLogLevel(true))

	t.Setenv(LogLevelEnv, "bogus")
	assert.Equal(t, slog.LevelDebug, parseLogLevel(true))
}

func TestCLIParsesCommands(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"-c", "x.yaml", "build", "--force", "--metrics-file", "m.prom"})
	require.NoError(t, err)
	assert.Equal(t, "build", ctx.Command())
	assert.Equal(t, "x.yaml", cli.Config)
	assert.True(t, cli.Build.Force)
	assert.Equal(t, "m.prom", cli.Build.MetricsFile)

	ctx, err = parser.Parse([]string{"search", `Vec\map`, "-n", "5"})
	require.NoError(t, err)
	assert.Equal(t, "search <query>", ctx.Command())
	assert.Equal(t, `Vec\map`, cli.Search.Query)
	assert.Equal(t, 5, cli.Search.Limit)
}

func TestRunInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apidocs.yaml")
	require.NoError(t, RunInit(path, false))
	require.Error(t, RunInit(path, false))
	require.NoError(t, RunInit(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "examples_dir")
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "hhi")
	examples := filepath.Join(dir, "examples")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.MkdirAll(examples, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "identity.hhi"), []byte(strings.Join([]string{
		"<?hh",
		"namespace HH;",
		"",
		"/** Returns its argument unchanged. */",
		"function identity<T>(T $value): T {}",
		"",
	}, "\n")), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(examples, "identity.php"), []byte("<?hh\n"), 0o644))

	out := filepath.Join(dir, "out")
	cfg := fmt.Sprintf(`version: "1.0"
examples_dir: %s
products:
  - name: hack
    roots:
      - path: %s
output:
  markdown_dir: %s
  html_dir: api-html
  nav_index_file: %s
  tag_file: %s
  search_db: %s
  report_dir: %s
build:
  concurrency: 2
`, examples, src, filepath.Join(out, "md"), filepath.Join(out, "api-index.json"),
		filepath.Join(out, "api-docs.tag"), filepath.Join(out, "api-search.sqlite"), out)
	path := filepath.Join(dir, "apidocs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func TestRunBuildEndToEnd(t *testing.T) {
	cfgPath := writeProject(t)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	metricsFile := filepath.Join(filepath.Dir(cfgPath), "out", "apidocs.prom")
	require.NoError(t, RunBuild(cfg, false, metricsFile))

	page, err := os.ReadFile(filepath.Join(cfg.Output.MarkdownDir, "hack", "function", "HH.identity.md"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Returns its argument unchanged.")
	assert.FileExists(t, cfg.Output.TagFile)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "apidocbuilder_emitted_documents_total")

	// Unchanged inputs: the second run is a skip and still succeeds.
	require.NoError(t, RunBuild(cfg, false, ""))
}
