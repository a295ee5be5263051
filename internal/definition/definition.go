// Package definition holds the parsed program entities that flow through the
// API documentation pipeline.
package definition

import (
	"slices"
	"strings"
)

// NamespaceSeparator separates namespace segments in qualified names.
const NamespaceSeparator = `\`

// Visibility of a method.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// Parameter describes one function or method parameter.
type Parameter struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Default  string `json:"default,omitempty"`
	Variadic bool   `json:"variadic,omitempty"`
	Inout    bool   `json:"inout,omitempty"`
}

// Location is where a definition was found.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Less orders locations by file path, then line.
func (l Location) Less(o Location) bool {
	if l.File != o.File {
		return l.File < o.File
	}
	return l.Line < o.Line
}

// Definition is a single parsed program entity. Values are treated as
// immutable once the parser returns them.
type Definition struct {
	Name       string              `json:"name"`
	Kind       Kind                `json:"kind"`
	Generics   []string            `json:"generics,omitempty"`
	ReturnType string              `json:"returnType,omitempty"`
	Parameters []Parameter         `json:"parameters,omitempty"`
	Attributes map[string][]string `json:"attributes,omitempty"`
	DocComment string              `json:"docComment,omitempty"`
	Location   Location            `json:"location"`

	Visibility Visibility `json:"visibility,omitempty"`
	Static     bool       `json:"static,omitempty"`
	Abstract   bool       `json:"abstract,omitempty"`
	Final      bool       `json:"final,omitempty"`
	Async      bool       `json:"async,omitempty"`

	// Extends and Implements are set for classish definitions only.
	Extends    []string `json:"extends,omitempty"`
	Implements []string `json:"implements,omitempty"`
}

// Attribute returns the values of a declared attribute.
func (d Definition) Attribute(name string) ([]string, bool) {
	v, ok := d.Attributes[name]
	return v, ok
}

// HasAttribute reports whether the attribute is declared (with or without values).
func (d Definition) HasAttribute(name string) bool {
	_, ok := d.Attributes[name]
	return ok
}

// ShortName returns the last namespace segment of the qualified name.
func (d Definition) ShortName() string {
	if i := strings.LastIndex(d.Name, NamespaceSeparator); i >= 0 {
		return d.Name[i+1:]
	}
	return d.Name
}

// Namespace returns the namespace portion of the qualified name, or "".
func (d Definition) Namespace() string {
	if i := strings.LastIndex(d.Name, NamespaceSeparator); i >= 0 {
		return d.Name[:i]
	}
	return ""
}

// WithName returns a copy of d carrying a different qualified name. Slices
// and maps are cloned so the copy shares nothing with the receiver.
func (d Definition) WithName(name string) Definition {
	out := d.Clone()
	out.Name = name
	return out
}

// Clone returns a deep copy of d.
func (d Definition) Clone() Definition {
	out := d
	out.Generics = slices.Clone(d.Generics)
	out.Parameters = slices.Clone(d.Parameters)
	out.Extends = slices.Clone(d.Extends)
	out.Implements = slices.Clone(d.Implements)
	if d.Attributes != nil {
		out.Attributes = make(map[string][]string, len(d.Attributes))
		for k, v := range d.Attributes {
			out.Attributes[k] = slices.Clone(v)
		}
	}
	return out
}

// NormalizeName maps namespace separators to '.', the form used for index
// keys and URLs.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, NamespaceSeparator, ".")
}
