package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/apidocbuilder/internal/build"
	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Force       bool   `short:"f" help:"Rebuild even when the fingerprint is unchanged"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in text format to this file after the build"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	return RunBuild(cfg, b.Force, b.MetricsFile)
}

// RunBuild builds once and prints the report summary.
func RunBuild(cfg *config.Config, force bool, metricsFile string) error {
	if metricsFile == "" {
		metricsFile = cfg.Metrics.Textfile
	}
	builder, reg, closeNotifier, err := pipeline(cfg, metricsFile != "")
	if err != nil {
		return err
	}
	defer closeNotifier()

	ctx, cancel := signalContext()
	defer cancel()

	report, buildErr := builder.Build(ctx, build.Options{Force: force})
	if report != nil {
		fmt.Println(report.Summary())
	}

	if metricsFile != "" && reg != nil {
		if err := metrics.WriteTextfile(metricsFile, reg); err != nil {
			werr := errors.WrapError(err, errors.CategoryFileSystem, "write metrics textfile").
				WithContext("path", metricsFile).
				Build()
			if buildErr == nil {
				return werr
			}
			slog.Warn("Failed to write metrics textfile", "error", werr)
		}
	}
	return buildErr
}
