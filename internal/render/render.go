// Package render produces the markdown page of one documentable.
package render

import (
	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/xref"
)

// Format is the output dialect of a renderer.
type Format string

// FormatMarkdown is the only format the build emits.
const FormatMarkdown Format = "markdown"

// Config controls rendering.
type Config struct {
	Format               Format
	SyntaxHighlighting   bool
	HidePrivateMethods   bool
	HideInheritedMethods bool
}

// DefaultConfig is the configuration the build renders with.
func DefaultConfig() Config {
	return Config{
		Format:               FormatMarkdown,
		SyntaxHighlighting:   true,
		HidePrivateMethods:   true,
		HideInheritedMethods: false,
	}
}

// Renderer turns a documentable into page text. Implementations must be pure:
// the same inputs always produce the same text.
type Renderer interface {
	Render(doc definition.Documentable, index *xref.Index, cfg Config) (string, error)
}
