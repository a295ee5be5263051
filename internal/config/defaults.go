package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Default values applied when a field is omitted.
const (
	DefaultOutputRoot     = "./build"
	DefaultNotifySubject  = "apidocs.build.completed"
	DefaultDaemonInterval = 15 * time.Minute
	DefaultDebounce       = 2 * time.Second
)

// DefaultExtensions are the source extensions scanned when none are configured.
func DefaultExtensions() []string { return []string{"php", "hhi", "hh"} }

// DefaultFilters returns the stock documentability and ecosystem rules.
func DefaultFilters() FiltersConfig {
	return FiltersConfig{
		EcosystemNamespaces: []string{`HH\`},
		EcosystemAttributes: []string{"__HipHopSpecific"},
		StdlibAttributes:    []string{"__PHPStdLib"},
		InternalNamespaces:  []string{`__Private`, `_Private`, `__SystemLib`},
		NoDocAttributes:     []string{"__NoDoc"},
	}
}

func applyDefaults(cfg *Config) {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions()
	}
	for i, ext := range cfg.Extensions {
		cfg.Extensions[i] = strings.TrimPrefix(ext, ".")
	}

	out := &cfg.Output
	if out.MarkdownDir == "" {
		out.MarkdownDir = filepath.Join(DefaultOutputRoot, "api-markdown")
	}
	if out.HTMLDir == "" {
		out.HTMLDir = filepath.Join(DefaultOutputRoot, "api-html")
	}
	if out.NavIndexFile == "" {
		out.NavIndexFile = filepath.Join(DefaultOutputRoot, "api-index.json")
	}
	if out.TagFile == "" {
		out.TagFile = filepath.Join(DefaultOutputRoot, "api-docs.tag")
	}
	if out.SearchDB == "" {
		out.SearchDB = filepath.Join(DefaultOutputRoot, "api-search.sqlite")
	}
	if out.ReportDir == "" {
		out.ReportDir = DefaultOutputRoot
	}
	if out.URLPrefix == "" {
		out.URLPrefix = "/"
	}

	if cfg.Build.Concurrency <= 0 {
		cfg.Build.Concurrency = runtime.NumCPU()
	}

	def := DefaultFilters()
	f := &cfg.Filters
	if f.EcosystemNamespaces == nil {
		f.EcosystemNamespaces = def.EcosystemNamespaces
	}
	if f.EcosystemAttributes == nil {
		f.EcosystemAttributes = def.EcosystemAttributes
	}
	if f.StdlibAttributes == nil {
		f.StdlibAttributes = def.StdlibAttributes
	}
	if f.InternalNamespaces == nil {
		f.InternalNamespaces = def.InternalNamespaces
	}
	if f.NoDocAttributes == nil {
		f.NoDocAttributes = def.NoDocAttributes
	}

	if cfg.Daemon.Interval <= 0 {
		cfg.Daemon.Interval = DefaultDaemonInterval
	}
	if cfg.Daemon.Debounce <= 0 {
		cfg.Daemon.Debounce = DefaultDebounce
	}
	if cfg.Notify.NATSURL != "" && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
}
