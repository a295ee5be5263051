package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/apidocbuilder/internal/build"
	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/metrics"
	"git.home.luguber.info/inful/apidocbuilder/internal/notify"
)

// LogLevelEnv overrides the log level chosen by --verbose.
const LogLevelEnv = "APIDOCS_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"apidocs.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build       BuildCmd       `cmd:"" help:"Build the API documentation, skipping when nothing changed"`
	Discover    DiscoverCmd    `cmd:"" help:"List the source files of each product without building"`
	Fingerprint FingerprintCmd `cmd:"" help:"Print the current build fingerprint and whether outputs are up to date"`
	Search      SearchCmd      `cmd:"" help:"Search the symbol index written by the last build"`
	Daemon      DaemonCmd      `cmd:"" help:"Rebuild continuously on a schedule and on source changes"`
	Init        InitCmd        `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel maps --verbose and APIDOCS_LOG_LEVEL onto a slog level. The
// environment variable wins when set to a known level.
func parseLogLevel(verbose bool) slog.Level {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return level
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// pipeline wires a Builder with metrics and notifications per cfg. The
// returned registry is nil when metrics are off; close releases the notifier.
func pipeline(cfg *config.Config, wantMetrics bool) (b *build.Builder, reg *prom.Registry, closeFn func(), err error) {
	opts := []build.Option{}
	if wantMetrics || cfg.Metrics.Enabled {
		reg = prom.NewRegistry()
		opts = append(opts, build.WithRecorder(metrics.NewPrometheusRecorder(reg)))
	}
	n, err := notify.New(cfg.Notify)
	if err != nil {
		return nil, nil, nil, err
	}
	opts = append(opts, build.WithNotifier(n))
	closeFn = func() {
		if cerr := n.Close(); cerr != nil {
			slog.Warn("Failed to close notifier", "error", cerr)
		}
	}
	return build.New(cfg, opts...), reg, closeFn, nil
}
