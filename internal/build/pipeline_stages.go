package build

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/discovery"
	"git.home.luguber.info/inful/apidocbuilder/internal/emit"
	"git.home.luguber.info/inful/apidocbuilder/internal/filters"
	"git.home.luguber.info/inful/apidocbuilder/internal/incremental"
	"git.home.luguber.info/inful/apidocbuilder/internal/logfields"
	"git.home.luguber.info/inful/apidocbuilder/internal/manifest"
	"git.home.luguber.info/inful/apidocbuilder/internal/merge"
	"git.home.luguber.info/inful/apidocbuilder/internal/navindex"
	"git.home.luguber.info/inful/apidocbuilder/internal/parser"
	"git.home.luguber.info/inful/apidocbuilder/internal/search"
	"git.home.luguber.info/inful/apidocbuilder/internal/xref"
)

// interrupted maps a cancellation surfacing from inside a stage onto a
// canceled stage error.
func interrupted(ctx context.Context, stage StageName, err error) error {
	if ctx.Err() != nil && (stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded)) {
		return NewCanceledStageError(stage, err)
	}
	return err
}

func (b *Builder) stageFingerprint(_ context.Context, st *State) error {
	fp, err := b.computer().Compute()
	if err != nil {
		return err
	}
	st.Fingerprint = fp
	st.Report.Fingerprint = fp.Digest()
	return nil
}

func (b *Builder) stageGate(_ context.Context, st *State) error {
	if st.Force {
		slog.Info("Staleness gate bypassed", logfields.BuildID(st.Report.BuildID))
		return nil
	}
	skip, err := incremental.NewGate(st.Config).ShouldSkip(st.Fingerprint)
	if err != nil {
		return err
	}
	st.Skip = skip
	return nil
}

func (b *Builder) stageDiscoverSources(_ context.Context, st *State) error {
	for _, p := range st.Products {
		pc, _ := st.Config.Product(p)
		files, err := discovery.ForProduct(pc, st.Config.Extensions)
		if err != nil {
			return err
		}
		st.Sources[p] = files
		st.Report.UpdateProduct(string(p), func(c *ProductCounts) { c.Sources = len(files) })
	}
	return nil
}

func (b *Builder) stageParseSources(ctx context.Context, st *State) error {
	runner := parser.NewRunner(b.parser, b.policy,
		parser.WithConcurrency(st.Config.Build.Concurrency),
		parser.WithSkipErrors(st.Config.Build.SkipParseErrors),
		parser.WithRecorder(b.recorder))

	skipped := 0
	for _, p := range st.Products {
		res, err := runner.ParseAll(ctx, p, st.Sources[p])
		if err != nil {
			return interrupted(ctx, StageParseSources, err)
		}
		st.Parsed[p] = res.Documentables
		skipped += len(res.Failed)
		st.Report.UpdateProduct(string(p), func(c *ProductCounts) {
			c.Parsed = res.Files
			c.FailedFiles = len(res.Failed)
			c.Documentable = len(res.Documentables)
			c.Dropped += res.Dropped
		})
	}
	if skipped > 0 {
		return NewWarnStageError(StageParseSources, fmt.Errorf("%d unparseable files skipped", skipped))
	}
	return nil
}

// stageMergeFilter merges each product's documentables, then applies the
// ecosystem filter to the products configured for it. The documentability
// filter already ran during parsing.
func (b *Builder) stageMergeFilter(_ context.Context, st *State) error {
	for _, p := range st.Products {
		pc, _ := st.Config.Product(p)
		merged := merge.MergeAll(st.Parsed[p])
		dropped := 0
		if pc.EcosystemFilter {
			merged, dropped = b.policy.ApplyEcosystem(merged)
			b.recorder.AddDropped(string(p), filters.FilterEcosystem, dropped)
		}
		st.Merged[p] = merged
		st.Report.UpdateProduct(string(p), func(c *ProductCounts) {
			c.Merged = len(merged)
			c.Dropped += dropped
		})
		slog.Debug("Merged product definitions",
			logfields.Product(string(p)),
			logfields.Count(len(merged)),
			logfields.Filter(filters.FilterEcosystem),
			slog.Int("dropped", dropped))
	}
	return nil
}

func (b *Builder) stageBuildIndexes(_ context.Context, st *State) error {
	var all []definition.Documentable
	for _, p := range st.Products {
		all = append(all, st.Merged[p]...)
	}
	idx, err := xref.BuildGlobalIndex(all)
	if err != nil {
		return err
	}
	st.Index = idx

	nb := navindex.NewBuilder(st.Config.Output.HTMLDir, st.Config.Output.URLPrefix)
	for _, p := range st.Products {
		pi, err := nb.BuildProductIndex(p, st.Merged[p])
		if err != nil {
			return err
		}
		st.Nav[p] = pi
	}
	return nil
}

func (b *Builder) stageEmitDocuments(ctx context.Context, st *State) error {
	// The previous tag vouches for the output about to be replaced.
	if err := manifest.RemoveTag(st.Config.Output.TagFile); err != nil {
		return err
	}
	emitter := emit.New(st.Config.Output.MarkdownDir, b.renderer,
		emit.WithClean(st.Config.Output.Clean),
		emit.WithRecorder(b.recorder))
	for _, p := range st.Products {
		docs, err := emitter.Emit(ctx, p, st.Merged[p], st.Index)
		if err != nil {
			return interrupted(ctx, StageEmitDocuments, err)
		}
		st.Documents = append(st.Documents, docs...)
		st.Report.UpdateProduct(string(p), func(c *ProductCounts) { c.Documents = len(docs) })
	}
	return nil
}

// stagePersist writes the navigation index, the document index and the
// search database. The report and the fingerprint follow in Build.
func (b *Builder) stagePersist(ctx context.Context, st *State) error {
	out := st.Config.Output
	if err := manifest.WriteNavIndex(out.NavIndexFile, st.Nav); err != nil {
		return err
	}
	if err := manifest.WriteDocIndex(out.DocIndexFile(), manifest.NewDocIndex(st.Documents)); err != nil {
		return err
	}
	if out.SearchDB != "" {
		if err := search.WriteIndex(ctx, out.SearchDB, search.SymbolsFromIndex(st.Nav)); err != nil {
			return err
		}
	}
	return nil
}
