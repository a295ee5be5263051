// Package config loads the apidocbuilder YAML configuration.
package config

import (
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
)

// SupportedVersion is the only accepted value of the version field.
const SupportedVersion = "1.0"

// Config is the root configuration document.
type Config struct {
	Version string `yaml:"version"`
	// Extensions lists accepted source file extensions, without the leading dot.
	Extensions []string `yaml:"extensions"`
	// ExamplesDir holds the example inputs whose newest mtime feeds the build fingerprint.
	ExamplesDir string          `yaml:"examples_dir"`
	Products    []ProductConfig `yaml:"products"`
	Output      OutputConfig    `yaml:"output"`
	Build       BuildConfig     `yaml:"build"`
	Filters     FiltersConfig   `yaml:"filters"`
	Daemon      DaemonConfig    `yaml:"daemon"`
	Notify      NotifyConfig    `yaml:"notify"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}

// ProductConfig binds a product to its source roots.
type ProductConfig struct {
	Name  definition.Product `yaml:"name"`
	Roots []SourceRoot       `yaml:"roots"`
	// EcosystemFilter drops definitions that belong to the underlying general
	// purpose language rather than the documented ecosystem.
	EcosystemFilter bool `yaml:"ecosystem_filter"`
	// UpstreamTagFile overrides the derived upstream tag with the contents of a file
	// written by whatever step prepared the sources.
	UpstreamTagFile string `yaml:"upstream_tag_file,omitempty"`
}

// SourceRoot is a directory scanned for sources, optionally restricted to path prefixes.
type SourceRoot struct {
	Path     string   `yaml:"path"`
	Prefixes []string `yaml:"prefixes,omitempty"`
}

// OutputConfig locates every artifact the build writes.
type OutputConfig struct {
	MarkdownDir  string `yaml:"markdown_dir"`
	HTMLDir      string `yaml:"html_dir"`
	NavIndexFile string `yaml:"nav_index_file"`
	TagFile      string `yaml:"tag_file"`
	SearchDB     string `yaml:"search_db"`
	ReportDir    string `yaml:"report_dir"`
	// URLPrefix is prepended to serving-URL paths in the navigation index.
	URLPrefix string `yaml:"url_prefix"`
	// Clean removes each product's markdown directory before emitting.
	Clean bool `yaml:"clean"`
}

// BuildConfig tunes the parse fan-out.
type BuildConfig struct {
	Concurrency int `yaml:"concurrency"`
	// SkipParseErrors logs and skips unparseable files instead of failing the build.
	SkipParseErrors bool `yaml:"skip_parse_errors"`
}

// FiltersConfig drives the documentability and ecosystem filters.
type FiltersConfig struct {
	EcosystemNamespaces []string `yaml:"ecosystem_namespaces"`
	EcosystemAttributes []string `yaml:"ecosystem_attributes"`
	StdlibAttributes    []string `yaml:"stdlib_attributes"`
	InternalNamespaces  []string `yaml:"internal_namespaces"`
	NoDocAttributes     []string `yaml:"no_doc_attributes"`
}

// DaemonConfig configures `apidocbuilder daemon`.
type DaemonConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Watch       bool          `yaml:"watch"`
	Debounce    time.Duration `yaml:"debounce"`
	MetricsAddr string        `yaml:"metrics_addr"`
}

// NotifyConfig enables build notifications over NATS JetStream.
type NotifyConfig struct {
	NATSURL string      `yaml:"nats_url"`
	Subject string      `yaml:"subject"`
	Retry   RetryConfig `yaml:"retry"`
}

// RetryBackoffMode selects how the delay between publish attempts grows.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// RetryConfig bounds retries of transient notification failures.
// Zero values fall back to the retry package defaults.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff"`
	Initial    time.Duration    `yaml:"initial"`
	Max        time.Duration    `yaml:"max"`
	MaxRetries *int             `yaml:"max_retries"`
}

// MetricsConfig enables Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Textfile, when set, receives a Prometheus text exposition after each CLI build.
	Textfile string `yaml:"textfile"`
}

// Product returns the configuration of product p.
func (c *Config) Product(p definition.Product) (ProductConfig, bool) {
	for _, pc := range c.Products {
		if pc.Name == p {
			return pc, true
		}
	}
	return ProductConfig{}, false
}

// RootPaths lists the root directories of a product in configuration order.
func (p ProductConfig) RootPaths() []string {
	out := make([]string, 0, len(p.Roots))
	for _, r := range p.Roots {
		out = append(out, r.Path)
	}
	return out
}

// DocIndexFile is the document index written at the root of the markdown tree.
func (o OutputConfig) DocIndexFile() string {
	return filepath.Join(o.MarkdownDir, "index.json")
}
