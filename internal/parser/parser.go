// Package parser turns source files into definitions and runs the parse
// fan-out for a product.
package parser

import (
	"context"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
)

// Entry is one parsed definition. Parent is set for methods and points at the
// owning classish as declared in the same file.
type Entry struct {
	Definition definition.Definition
	Parent     *definition.Definition
}

// Parser extracts the definitions declared in one source file.
type Parser interface {
	Parse(ctx context.Context, path string) ([]Entry, error)
}

// Func adapts a function to the Parser interface.
type Func func(ctx context.Context, path string) ([]Entry, error)

// Parse implements Parser.
func (f Func) Parse(ctx context.Context, path string) ([]Entry, error) { return f(ctx, path) }
