// Package daemon keeps the API documentation current: it rebuilds on an
// interval and when watched sources change, serving Prometheus metrics
// alongside. The staleness gate keeps idle rebuilds cheap.
package daemon

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/apidocbuilder/internal/build"
	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/logfields"
	"git.home.luguber.info/inful/apidocbuilder/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

// BuildRunner runs one pipeline build.
type BuildRunner interface {
	Build(ctx context.Context, opts build.Options) (*build.BuildReport, error)
}

// Daemon serializes scheduled and watcher-triggered builds.
type Daemon struct {
	cfg      *config.Config
	runner   BuildRunner
	registry *prom.Registry

	buildMu    sync.Mutex
	builds     atomic.Int64
	coalesced  atomic.Int64
	pending    atomic.Bool
	lastReport atomic.Pointer[build.BuildReport]
}

// New returns a daemon for cfg. registry may be nil when metrics are disabled.
func New(cfg *config.Config, runner BuildRunner, registry *prom.Registry) *Daemon {
	return &Daemon{cfg: cfg, runner: runner, registry: registry}
}

// Trigger runs a build unless one is already running. A trigger that finds a
// build running marks a rerun as pending; the running Trigger picks it up once
// its build finishes, so a change landing after the parse stage is not lost.
// Any number of pending triggers collapse into one rerun. It reports whether
// this call ran a build.
func (d *Daemon) Trigger(ctx context.Context, reason string) bool {
	// Mark before trying the lock so the holder sees it after unlocking.
	d.pending.Store(true)
	if !d.buildMu.TryLock() {
		d.coalesced.Add(1)
		slog.Info("Build already running; rerun queued", slog.String("reason", reason))
		return false
	}
	for {
		d.pending.Store(false)
		d.run(ctx, reason)
		d.buildMu.Unlock()
		if !d.pending.Load() || ctx.Err() != nil {
			return true
		}
		if !d.buildMu.TryLock() {
			// Another trigger took over and builds the pending change.
			return true
		}
		reason = "queued"
	}
}

// run performs one build. Callers hold buildMu.
func (d *Daemon) run(ctx context.Context, reason string) {
	d.builds.Add(1)
	slog.Info("Daemon build triggered", slog.String("reason", reason))
	report, err := d.runner.Build(ctx, build.Options{})
	if report != nil {
		d.lastReport.Store(report)
	}
	if err != nil {
		slog.Error("Daemon build failed", slog.String("reason", reason), logfields.Error(err))
	}
}

// LastReport returns the report of the most recent build, or nil.
func (d *Daemon) LastReport() *build.BuildReport { return d.lastReport.Load() }

// Builds is the number of builds started.
func (d *Daemon) Builds() int64 { return d.builds.Load() }

// Coalesced is the number of triggers that found a build running and were
// folded into a queued rerun.
func (d *Daemon) Coalesced() int64 { return d.coalesced.Load() }

// Run builds once, then keeps building on schedule and on source changes
// until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	var srv *http.Server
	if d.cfg.Daemon.MetricsAddr != "" && d.registry != nil {
		d.registerGauges()
		srv = d.serveMetrics(d.cfg.Daemon.MetricsAddr)
	}

	d.Trigger(ctx, "startup")

	sched, err := NewScheduler()
	if err != nil {
		return errors.WrapError(err, errors.CategoryDaemon, "create scheduler").Fatal().Build()
	}
	if _, err := sched.ScheduleEvery("apidocs-rebuild", d.cfg.Daemon.Interval, func() { d.Trigger(ctx, "schedule") }); err != nil {
		return err
	}
	sched.Start()

	var watcher *SourceWatcher
	if d.cfg.Daemon.Watch {
		watcher, err = NewSourceWatcher(d.watchRoots(), d.cfg.Daemon.Debounce, func() { d.Trigger(ctx, "source_change") })
		if err != nil {
			_ = sched.Stop(ctx)
			return errors.WrapError(err, errors.CategoryDaemon, "create source watcher").Fatal().Build()
		}
		if err := watcher.Start(ctx); err != nil {
			_ = sched.Stop(ctx)
			_ = watcher.Stop()
			return errors.WrapError(err, errors.CategoryDaemon, "start source watcher").Fatal().Build()
		}
	}

	slog.Info("Daemon running",
		slog.Duration("interval", d.cfg.Daemon.Interval),
		slog.Bool("watch", d.cfg.Daemon.Watch))
	<-ctx.Done()
	slog.Info("Daemon stopping")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			slog.Warn("Error closing source watcher", logfields.Error(err))
		}
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		slog.Warn("Error stopping scheduler", logfields.Error(err))
	}
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Error stopping metrics server", logfields.Error(err))
		}
	}
	// An in-flight build holds buildMu until it observes cancellation.
	d.buildMu.Lock()
	defer d.buildMu.Unlock()
	return nil
}

// watchRoots lists every source root plus the examples directory.
func (d *Daemon) watchRoots() []string {
	var roots []string
	for _, p := range d.cfg.Products {
		roots = append(roots, p.RootPaths()...)
	}
	if d.cfg.ExamplesDir != "" {
		roots = append(roots, d.cfg.ExamplesDir)
	}
	return roots
}

func (d *Daemon) registerGauges() {
	collectors := []prom.Collector{
		prom.NewCounterFunc(prom.CounterOpts{Namespace: "apidocbuilder", Name: "daemon_builds_total", Help: "Builds started by the daemon"},
			func() float64 { return float64(d.builds.Load()) }),
		prom.NewCounterFunc(prom.CounterOpts{Namespace: "apidocbuilder", Name: "daemon_triggers_coalesced_total", Help: "Triggers folded into a queued rerun because a build was running"},
			func() float64 { return float64(d.coalesced.Load()) }),
		prom.NewGaugeFunc(prom.GaugeOpts{Namespace: "apidocbuilder", Name: "daemon_last_build_documents", Help: "Documents emitted by the most recent build"},
			func() float64 {
				if r := d.lastReport.Load(); r != nil {
					return float64(r.Documents())
				}
				return 0
			}),
	}
	for _, c := range collectors {
		if err := d.registry.Register(c); err != nil {
			var are prom.AlreadyRegisteredError
			if !stdErrors.As(err, &are) {
				slog.Warn("Failed to register daemon metric", logfields.Error(err))
			}
		}
	}
}

func (d *Daemon) serveMetricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(d.registry))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func (d *Daemon) serveMetrics(addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: d.serveMetricsMux(), ReadHeaderTimeout: 10 * time.Second, IdleTimeout: 120 * time.Second}
	go func() {
		slog.Info("Serving metrics", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server error", logfields.Error(err))
		}
	}()
	return srv
}
