package build

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/filters"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/incremental"
	"git.home.luguber.info/inful/apidocbuilder/internal/logfields"
	"git.home.luguber.info/inful/apidocbuilder/internal/manifest"
	"git.home.luguber.info/inful/apidocbuilder/internal/metrics"
	"git.home.luguber.info/inful/apidocbuilder/internal/notify"
	"git.home.luguber.info/inful/apidocbuilder/internal/parser"
	"git.home.luguber.info/inful/apidocbuilder/internal/render"
)

// Builder runs the documentation pipeline for one configuration.
type Builder struct {
	cfg          *config.Config
	parser       parser.Parser
	renderer     render.Renderer
	recorder     metrics.Recorder
	notifier     notify.Notifier
	policy       *filters.Policy
	pipelineHash func() (string, error)
}

// Option configures a Builder.
type Option func(*Builder)

// WithParser replaces the default declaration scanner.
func WithParser(p parser.Parser) Option { return func(b *Builder) { b.parser = p } }

// WithRenderer replaces the default markdown renderer.
func WithRenderer(r render.Renderer) Option { return func(b *Builder) { b.renderer = r } }

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(b *Builder) {
		if rec != nil {
			b.recorder = rec
		}
	}
}

// WithNotifier sets the build event notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(b *Builder) {
		if n != nil {
			b.notifier = n
		}
	}
}

// WithPipelineHash overrides how the pipeline's own hash is computed.
func WithPipelineHash(fn func() (string, error)) Option {
	return func(b *Builder) { b.pipelineHash = fn }
}

// New returns a Builder for cfg.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		parser:   parser.NewScanner(),
		renderer: render.NewMarkdownRenderer(cfg.Output.URLPrefix),
		recorder: metrics.NoopRecorder{},
		notifier: notify.Noop{},
		policy:   filters.NewPolicy(cfg.Filters),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Options modify a single run.
type Options struct {
	// Force ignores the staleness gate.
	Force bool
}

// Fingerprint computes the current fingerprint without building.
func (b *Builder) Fingerprint() (incremental.Fingerprint, error) {
	return b.computer().Compute()
}

func (b *Builder) computer() *incremental.Computer {
	c := incremental.NewComputer(b.cfg)
	if b.pipelineHash != nil {
		c.PipelineHash = b.pipelineHash
	}
	return c
}

func (b *Builder) pipeline() []StageDef {
	return NewPipeline().
		Add(StageFingerprint, b.stageFingerprint).
		Add(StageGate, b.stageGate).
		Add(StageDiscoverSources, b.stageDiscoverSources).
		Add(StageParseSources, b.stageParseSources).
		Add(StageMergeFilter, b.stageMergeFilter).
		Add(StageBuildIndexes, b.stageBuildIndexes).
		Add(StageEmitDocuments, b.stageEmitDocuments).
		Add(StagePersist, b.stagePersist).
		Build()
}

// Build runs the pipeline. The report is returned even when the run fails.
// The fingerprint file is written only after every other output, and only
// when the run completed without a fatal error, was not skipped and did not
// skip unparseable files. Emitting removes any older fingerprint first.
func (b *Builder) Build(ctx context.Context, opts Options) (*BuildReport, error) {
	report := NewBuildReport()
	report.Forced = opts.Force
	st := newState(b.cfg, report, b.recorder, opts.Force)
	log := slog.With(logfields.BuildID(report.BuildID))
	log.Info("Build started", slog.Bool("force", opts.Force))

	err := RunStages(ctx, st, b.pipeline())
	b.finish(report)

	if perr := report.Persist(b.cfg.Output.ReportDir); perr != nil {
		perr = errors.WrapError(perr, errors.CategoryFileSystem, "persist build report").
			Fatal().
			WithContext("path", b.cfg.Output.ReportDir).
			Build()
		if err != nil {
			log.Warn("Failed to persist build report", logfields.Error(perr))
		} else {
			err = perr
			report.AddIssue(IssuePersistence, StagePersist, SeverityError, perr.Error(), perr)
			b.finish(report)
		}
	}

	switch {
	case err != nil || report.SkipReason != "":
	case report.HasIssue(IssueSkippedFiles):
		log.Warn("Fingerprint not written; skipped files will be retried next run")
	default:
		if terr := manifest.WriteTag(b.cfg.Output.TagFile, st.Fingerprint); terr != nil {
			err = terr
			report.AddIssue(IssuePersistence, StagePersist, SeverityError, terr.Error(), terr)
			b.finish(report)
			if perr := report.Persist(b.cfg.Output.ReportDir); perr != nil {
				log.Warn("Failed to persist build report", logfields.Error(perr))
			}
		}
	}

	b.recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	b.recorder.IncBuildOutcome(report.MetricsOutcome())

	if err != nil {
		log.Error("Build failed", logfields.Outcome(string(report.Outcome)), logfields.Error(err))
		return report, err
	}

	log.Info("Build complete",
		logfields.Outcome(string(report.Outcome)),
		logfields.Count(report.Documents()),
		logfields.DurationMS(float64(report.End.Sub(report.Start).Microseconds())/1000))
	b.publish(ctx, report)
	return report, nil
}

func (b *Builder) finish(report *BuildReport) {
	report.Finish()
	report.DeriveOutcome()
}

func (b *Builder) publish(ctx context.Context, report *BuildReport) {
	docs := make(map[string]int, len(report.Products))
	for p, pc := range report.Products {
		docs[p] = pc.Documents
	}
	event := notify.BuildCompleted{
		BuildID:     report.BuildID,
		Outcome:     string(report.Outcome),
		SkipReason:  report.SkipReason,
		Fingerprint: report.Fingerprint,
		Documents:   docs,
		DurationMS:  report.End.Sub(report.Start).Milliseconds(),
		Timestamp:   time.Now().UTC(),
	}
	if err := b.notifier.BuildCompleted(ctx, event); err != nil {
		slog.Warn("Failed to publish build event", logfields.BuildID(report.BuildID), logfields.Error(err))
	}
}
