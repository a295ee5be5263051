package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
)

// Example returns the configuration written by `apidocbuilder init`.
func Example() Config {
	return Config{
		Version:     SupportedVersion,
		Extensions:  DefaultExtensions(),
		ExamplesDir: "./api-examples",
		Products: []ProductConfig{
			{
				Name: definition.ProductHack,
				Roots: []SourceRoot{
					{Path: "${HHVM_TREE}/hphp/system/php"},
					{Path: "${HHVM_TREE}/hphp/runtime/ext"},
					{Path: "${HHVM_TREE}/hphp/hack/hhi"},
				},
				EcosystemFilter: true,
			},
			{
				Name:  definition.ProductHSL,
				Roots: []SourceRoot{{Path: "${HHVM_TREE}/hphp/hsl/src"}},
			},
			{
				Name:  definition.ProductHSLExperimental,
				Roots: []SourceRoot{{Path: "${HSL_EXPERIMENTAL_TREE}/src"}},
			},
		},
		Output: OutputConfig{
			MarkdownDir:  "./build/api-markdown",
			HTMLDir:      "./build/api-html",
			NavIndexFile: "./build/api-index.json",
			TagFile:      "./build/api-docs.tag",
			SearchDB:     "./build/api-search.sqlite",
			ReportDir:    "./build",
			URLPrefix:    "/",
		},
		Build:   BuildConfig{Concurrency: 8},
		Filters: DefaultFilters(),
		Daemon: DaemonConfig{
			Interval:    30 * time.Minute,
			Watch:       true,
			Debounce:    DefaultDebounce,
			MetricsAddr: ":9464",
		},
	}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	data, err := yaml.Marshal(Example())
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
