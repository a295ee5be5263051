// Package navindex builds the per-product navigation index consumed by the
// documentation site.
package navindex

import (
	"git.home.luguber.info/inful/apidocbuilder/internal/apipaths"
	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
)

// DeprecatedAttribute marks a deprecated function; its single value is the
// deprecation message.
const DeprecatedAttribute = "__Deprecated"

// MethodEntry describes one method of a classish.
type MethodEntry struct {
	Name      string          `json:"name"`
	ClassName string          `json:"className"`
	ClassType definition.Kind `json:"classType"`
	HTMLPath  string          `json:"htmlPath"`
	URLPath   string          `json:"urlPath"`
}

// ClassEntry describes a class, interface or trait.
type ClassEntry struct {
	Type     definition.Kind        `json:"type"`
	Name     string                 `json:"name"`
	HTMLPath string                 `json:"htmlPath"`
	URLPath  string                 `json:"urlPath"`
	Methods  map[string]MethodEntry `json:"methods"`
}

// FunctionEntry describes a top-level function.
type FunctionEntry struct {
	Name        string  `json:"name"`
	HTMLPath    string  `json:"htmlPath"`
	URLPath     string  `json:"urlPath"`
	Deprecation *string `json:"deprecation"`
}

// ProductIndex holds every entry of one product, keyed by normalized name.
type ProductIndex struct {
	Class     map[string]ClassEntry    `json:"class"`
	Interface map[string]ClassEntry    `json:"interface"`
	Trait     map[string]ClassEntry    `json:"trait"`
	Function  map[string]FunctionEntry `json:"function"`
}

// Len counts classish and function entries.
func (p ProductIndex) Len() int {
	return len(p.Class) + len(p.Interface) + len(p.Trait) + len(p.Function)
}

func (p ProductIndex) classTable(k definition.Kind) map[string]ClassEntry {
	switch k {
	case definition.KindClass:
		return p.Class
	case definition.KindInterface:
		return p.Interface
	case definition.KindTrait:
		return p.Trait
	default:
		panic("navindex: non-classish kind " + string(k))
	}
}

// NavigationIndex maps each product to its index.
type NavigationIndex map[definition.Product]ProductIndex

// Builder derives index entries using the HTML path scheme and URL prefix.
type Builder struct {
	HTMLRoot  string
	URLPrefix string
}

// NewBuilder returns a Builder.
func NewBuilder(htmlRoot, urlPrefix string) *Builder {
	return &Builder{HTMLRoot: htmlRoot, URLPrefix: urlPrefix}
}

// BuildProductIndex indexes the documentables of one product. Methods attach
// to the classish whose name their parent reference carries; methods without
// an indexed classish are left out.
func (b *Builder) BuildProductIndex(product definition.Product, docs []definition.Documentable) (ProductIndex, error) {
	idx := ProductIndex{
		Class:     map[string]ClassEntry{},
		Interface: map[string]ClassEntry{},
		Trait:     map[string]ClassEntry{},
		Function:  map[string]FunctionEntry{},
	}
	html := apipaths.HTML(b.HTMLRoot, product)
	classes := map[string]definition.Documentable{}

	for _, d := range docs {
		if d.Product != product {
			continue
		}
		key := definition.NormalizeName(d.Definition.Name)
		switch k := d.Definition.Kind; {
		case k == definition.KindFunction:
			entry, err := b.function(html, d)
			if err != nil {
				return ProductIndex{}, err
			}
			if _, dup := idx.Function[key]; dup {
				return ProductIndex{}, duplicate(product, d)
			}
			idx.Function[key] = entry
		case k.IsClassish():
			u, err := apipaths.URL(b.URLPrefix, d)
			if err != nil {
				return ProductIndex{}, err
			}
			table := idx.classTable(k)
			if _, dup := table[key]; dup {
				return ProductIndex{}, duplicate(product, d)
			}
			table[key] = ClassEntry{
				Type:     k,
				Name:     d.Definition.Name,
				HTMLPath: html.Classish(k, d.Definition.Name),
				URLPath:  u,
				Methods:  map[string]MethodEntry{},
			}
			classes[d.Definition.Name] = d
		}
	}

	for _, d := range docs {
		if d.Product != product || d.Definition.Kind != definition.KindMethod {
			continue
		}
		owner, ok := classes[d.Parent.Name]
		if !ok {
			continue
		}
		kind := owner.Definition.Kind
		// Link through the indexed classish so a method always lives under
		// its owner's entry.
		d.Parent = definition.RefTo(owner.Definition)
		u, err := apipaths.URL(b.URLPrefix, d)
		if err != nil {
			return ProductIndex{}, err
		}
		entry := idx.classTable(kind)[definition.NormalizeName(owner.Definition.Name)]
		methodKey := definition.NormalizeName(d.Definition.Name)
		if _, dup := entry.Methods[methodKey]; dup {
			return ProductIndex{}, duplicate(product, d)
		}
		entry.Methods[methodKey] = MethodEntry{
			Name:      d.Definition.Name,
			ClassName: owner.Definition.Name,
			ClassType: kind,
			HTMLPath:  html.Method(kind, owner.Definition.Name, d.Definition.Name),
			URLPath:   u,
		}
	}
	return idx, nil
}

func (b *Builder) function(html apipaths.Paths, d definition.Documentable) (FunctionEntry, error) {
	u, err := apipaths.URL(b.URLPrefix, d)
	if err != nil {
		return FunctionEntry{}, err
	}
	deprecation, err := Deprecation(d.Definition)
	if err != nil {
		return FunctionEntry{}, err
	}
	return FunctionEntry{
		Name:        d.Definition.Name,
		HTMLPath:    html.Function(d.Definition.Name),
		URLPath:     u,
		Deprecation: deprecation,
	}, nil
}

// Deprecation returns the deprecation message of def, or nil when it is not
// deprecated. The attribute must carry exactly one value.
func Deprecation(def definition.Definition) (*string, error) {
	values, ok := def.Attribute(DeprecatedAttribute)
	if !ok {
		return nil, nil
	}
	if len(values) != 1 {
		return nil, errors.ValidationError("deprecation attribute must carry exactly one value").
			WithContext("name", def.Name).
			WithContext("values", len(values)).
			WithContext("file", def.Location.File).
			Build()
	}
	msg := values[0]
	return &msg, nil
}

func duplicate(product definition.Product, d definition.Documentable) error {
	return errors.CollisionError("duplicate navigation index entry").
		WithContext("product", string(product)).
		WithContext("name", d.QualifiedKey()).
		WithContext("kind", string(d.Definition.Kind)).
		Build()
}
