// Package emit renders documentables and writes their markdown pages.
package emit

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/apidocbuilder/internal/apipaths"
	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/logfields"
	"git.home.luguber.info/inful/apidocbuilder/internal/metrics"
	"git.home.luguber.info/inful/apidocbuilder/internal/render"
	"git.home.luguber.info/inful/apidocbuilder/internal/xref"
)

// Marker ends every generated page so tooling can recognise generated files.
const Marker = "\n<!-- HHAPIDOC -->\n"

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Document is one written page.
type Document struct {
	Product     definition.Product `json:"product"`
	Path        string             `json:"path"`
	Fingerprint string             `json:"fingerprint"`
}

// Emitter writes pages below a markdown root.
type Emitter struct {
	root     string
	renderer render.Renderer
	cfg      render.Config
	clean    bool
	recorder metrics.Recorder
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithRenderConfig overrides render.DefaultConfig.
func WithRenderConfig(cfg render.Config) Option { return func(e *Emitter) { e.cfg = cfg } }

// WithClean removes a product's directory before writing its pages.
func WithClean(clean bool) Option { return func(e *Emitter) { e.clean = clean } }

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(e *Emitter) {
		if rec != nil {
			e.recorder = rec
		}
	}
}

// New returns an Emitter writing below root.
func New(root string, r render.Renderer, opts ...Option) *Emitter {
	e := &Emitter{root: root, renderer: r, cfg: render.DefaultConfig(), recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit renders and writes every documentable of product, in input order,
// and returns the written documents. Writes are sequential; a path produced
// twice is a collision.
func (e *Emitter) Emit(ctx context.Context, product definition.Product, docs []definition.Documentable, index *xref.Index) ([]Document, error) {
	paths := apipaths.Markdown(e.root, product)
	if e.clean {
		if err := os.RemoveAll(paths.ProductDir()); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "clean product output").
				Fatal().
				WithContext("path", paths.ProductDir()).
				Build()
		}
	}

	written := make(map[string]string, len(docs))
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, err := paths.For(d)
		if err != nil {
			return nil, err
		}
		if prev, dup := written[path]; dup {
			return nil, errors.CollisionError("two definitions map to one output path").
				WithContext("path", path).
				WithContext("first", prev).
				WithContext("second", d.QualifiedKey()).
				Build()
		}
		body, err := e.renderer.Render(d, index, e.cfg)
		if err != nil {
			return nil, err
		}
		if err := write(path, body+Marker); err != nil {
			return nil, err
		}
		written[path] = d.QualifiedKey()
		out = append(out, Document{
			Product:     product,
			Path:        path,
			Fingerprint: mdfp.CalculateFingerprintFromParts("", body),
		})
	}
	e.recorder.AddEmittedDocuments(string(product), len(out))
	slog.Info("Emitted product documents",
		logfields.Product(string(product)),
		logfields.Count(len(out)),
		logfields.Path(paths.ProductDir()))
	return out, nil
}

func write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			Fatal().
			WithContext("path", filepath.Dir(path)).
			Build()
	}
	// #nosec G306 -- generated documentation is published and must be world-readable.
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write document").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return nil
}
