package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/daemon"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	MetricsAddr string `name:"metrics-addr" help:"Serve Prometheus metrics on this address (overrides daemon.metrics_addr)"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if d.MetricsAddr != "" {
		cfg.Daemon.MetricsAddr = d.MetricsAddr
	}
	return RunDaemon(cfg)
}

// RunDaemon runs until SIGINT or SIGTERM.
func RunDaemon(cfg *config.Config) error {
	builder, reg, closeNotifier, err := pipeline(cfg, cfg.Daemon.MetricsAddr != "")
	if err != nil {
		return err
	}
	defer closeNotifier()

	ctx, cancel := signalContext()
	defer cancel()

	slog.Info("Starting daemon mode", "interval", cfg.Daemon.Interval, "watch", cfg.Daemon.Watch)
	if err := daemon.New(cfg, builder, reg).Run(ctx); err != nil {
		return err
	}
	slog.Info("Daemon stopped successfully")
	return nil
}
