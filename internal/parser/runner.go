package parser

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/filters"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/logfields"
	"git.home.luguber.info/inful/apidocbuilder/internal/metrics"
)

// Runner parses a product's sources concurrently and applies the
// special-name rewrite and the documentability filter to the result.
type Runner struct {
	parser      Parser
	policy      *filters.Policy
	concurrency int
	skipErrors  bool
	recorder    metrics.Recorder
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConcurrency bounds the number of files parsed at once.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithSkipErrors makes unparseable files a warning instead of a build failure.
func WithSkipErrors(skip bool) RunnerOption {
	return func(r *Runner) { r.skipErrors = skip }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) RunnerOption {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// NewRunner returns a Runner using parser p and the given filter policy.
func NewRunner(p Parser, policy *filters.Policy, opts ...RunnerOption) *Runner {
	r := &Runner{parser: p, policy: policy, concurrency: 1, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FileError records a file skipped because it failed to parse.
type FileError struct {
	Path string
	Err  error
}

// Result is the outcome of parsing one product.
type Result struct {
	Documentables []definition.Documentable
	Files         int
	Failed        []FileError
	Dropped       int
}

// ParseAll parses every path and returns the documentable definitions in
// path order, then declaration order within a file. The concatenation order
// never depends on scheduling.
func (r *Runner) ParseAll(ctx context.Context, product definition.Product, paths []string) (Result, error) {
	r.recorder.SetParseConcurrency(r.concurrency)
	perFile := make([][]Entry, len(paths))
	failures := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries, err := r.parser.Parse(gctx, path)
			if err != nil {
				if r.skipErrors && gctx.Err() == nil {
					failures[i] = err
					return nil
				}
				return asParseError(err, path)
			}
			perFile[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, err
	}

	res := Result{Files: len(paths)}
	for i, entries := range perFile {
		if failures[i] != nil {
			res.Failed = append(res.Failed, FileError{Path: paths[i], Err: failures[i]})
			r.recorder.IncParseFailure(string(product))
			slog.Warn("Skipping unparseable source",
				logfields.Product(string(product)),
				logfields.File(paths[i]),
				logfields.Error(failures[i]))
			continue
		}
		for _, e := range entries {
			doc, keep, err := r.documentable(product, e)
			if err != nil {
				return Result{}, err
			}
			if !keep {
				res.Dropped++
				continue
			}
			res.Documentables = append(res.Documentables, doc)
		}
	}
	r.recorder.AddParsedFiles(string(product), len(paths)-len(res.Failed))
	r.recorder.AddDropped(string(product), filters.FilterDocumentability, res.Dropped)
	slog.Debug("Parsed product sources",
		logfields.Product(string(product)),
		slog.Int("files", len(paths)),
		logfields.Count(len(res.Documentables)),
		slog.Int("dropped", res.Dropped))
	return res, nil
}

// documentable rewrites special names, applies the documentability filter
// (parent first) and converts the entry.
func (r *Runner) documentable(product definition.Product, e Entry) (definition.Documentable, bool, error) {
	def := filters.CorrectSpecialName(e.Definition)
	if e.Parent != nil && r.policy.ShouldNotDocument(*e.Parent) {
		return definition.Documentable{}, false, nil
	}
	if r.policy.ShouldNotDocument(def) {
		return definition.Documentable{}, false, nil
	}
	doc := definition.Documentable{Definition: def, Product: product}
	if e.Parent != nil {
		doc.Parent = definition.RefTo(*e.Parent)
	}
	if err := doc.Validate(); err != nil {
		return definition.Documentable{}, false, errors.WrapError(err, errors.CategoryInternal, "parser produced an inconsistent definition").
			Fatal().
			WithContext("file", def.Location.File).
			Build()
	}
	return doc, true, nil
}

func asParseError(err error, path string) error {
	if errors.IsClassified(err) {
		return err
	}
	return errors.WrapError(err, errors.CategoryParse, "parse source file").
		Fatal().
		WithContext("file", path).
		Build()
}
