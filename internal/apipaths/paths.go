// Package apipaths derives on-disk and URL locations for documented symbols.
// Every function here is pure; distinct symbols map to distinct paths.
package apipaths

import (
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
)

// ReferenceSegment separates the product from the kind in URLs.
const ReferenceSegment = "reference"

// Paths derives file paths below Root for one product.
type Paths struct {
	Root    string
	Product definition.Product
	Ext     string
}

// Markdown returns the markdown path scheme rooted at root.
func Markdown(root string, product definition.Product) Paths {
	return Paths{Root: root, Product: product, Ext: ".md"}
}

// HTML returns the rendered-HTML path scheme rooted at root.
func HTML(root string, product definition.Product) Paths {
	return Paths{Root: root, Product: product, Ext: ".html"}
}

// ProductDir is the directory holding every file of the product.
func (p Paths) ProductDir() string {
	return filepath.Join(p.Root, string(p.Product))
}

// Function returns the path of a top-level function page.
func (p Paths) Function(name string) string {
	return filepath.Join(p.ProductDir(), string(definition.KindFunction), definition.NormalizeName(name)+p.Ext)
}

// Classish returns the path of a class, interface or trait page.
func (p Paths) Classish(kind definition.Kind, name string) string {
	return filepath.Join(p.ProductDir(), string(kind), definition.NormalizeName(name)+p.Ext)
}

// Method returns the path of a method page, nested below its classish.
func (p Paths) Method(kind definition.Kind, class, method string) string {
	return filepath.Join(p.ProductDir(), string(kind), definition.NormalizeName(class), method+p.Ext)
}

// For dispatches on the documentable's kind. Type aliases and unknown kinds
// have no documentation page.
func (p Paths) For(d definition.Documentable) (string, error) {
	switch k := d.Definition.Kind; {
	case k == definition.KindFunction:
		return p.Function(d.Definition.Name), nil
	case k.IsClassish():
		return p.Classish(k, d.Definition.Name), nil
	case k == definition.KindMethod:
		return p.Method(d.Parent.Kind, d.Parent.Name, d.Definition.Name), nil
	default:
		return "", unsupported(d)
	}
}

// URLSegments returns the serving-URL path segments of a symbol:
// product/reference/kind/Name for functions and classish definitions and
// product/reference/kind/Class/method for methods.
func URLSegments(d definition.Documentable) ([]string, error) {
	product := string(d.Product)
	switch k := d.Definition.Kind; {
	case k == definition.KindFunction || k.IsClassish():
		return []string{product, ReferenceSegment, string(k), definition.NormalizeName(d.Definition.Name)}, nil
	case k == definition.KindMethod:
		return []string{product, ReferenceSegment, string(d.Parent.Kind), definition.NormalizeName(d.Parent.Name), d.Definition.Name}, nil
	default:
		return nil, unsupported(d)
	}
}

// URLPath joins segments below prefix, with a trailing slash.
func URLPath(prefix string, segments []string) string {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return path.Join(append([]string{prefix}, segments...)...) + "/"
}

// URL is URLSegments followed by URLPath.
func URL(prefix string, d definition.Documentable) (string, error) {
	segs, err := URLSegments(d)
	if err != nil {
		return "", err
	}
	return URLPath(prefix, segs), nil
}

func unsupported(d definition.Documentable) error {
	return errors.UnsupportedError("no documentation page for definition kind").
		WithContext("kind", string(d.Definition.Kind)).
		WithContext("name", d.Definition.Name).
		Build()
}
