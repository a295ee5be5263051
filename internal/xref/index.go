// Package xref builds the global cross-reference index used by renderers to
// resolve symbol names across products.
package xref

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
)

// Index maps qualified names to documentables, one table per kind. Methods
// are not top-level entries; they are reachable through their classish.
type Index struct {
	Functions  map[string]definition.Documentable
	Classes    map[string]definition.Documentable
	Interfaces map[string]definition.Documentable
	Traits     map[string]definition.Documentable

	methods map[string][]definition.Documentable
}

func (ix *Index) table(k definition.Kind) map[string]definition.Documentable {
	switch k {
	case definition.KindFunction:
		return ix.Functions
	case definition.KindClass:
		return ix.Classes
	case definition.KindInterface:
		return ix.Interfaces
	case definition.KindTrait:
		return ix.Traits
	default:
		return nil
	}
}

// BuildGlobalIndex indexes documentables from every product. A name seen
// twice within one kind, or a method declared twice on one classish, is a
// collision. Type aliases are not indexed.
func BuildGlobalIndex(docs []definition.Documentable) (*Index, error) {
	ix := &Index{
		Functions:  map[string]definition.Documentable{},
		Classes:    map[string]definition.Documentable{},
		Interfaces: map[string]definition.Documentable{},
		Traits:     map[string]definition.Documentable{},
		methods:    map[string][]definition.Documentable{},
	}
	seenMethods := map[string]definition.Documentable{}
	for _, d := range docs {
		if d.Definition.Kind == definition.KindMethod {
			key := d.QualifiedKey()
			if prev, ok := seenMethods[key]; ok {
				return nil, collision(key, prev, d)
			}
			seenMethods[key] = d
			ix.methods[d.Parent.Name] = append(ix.methods[d.Parent.Name], d)
			continue
		}
		table := ix.table(d.Definition.Kind)
		if table == nil {
			continue
		}
		if prev, ok := table[d.Definition.Name]; ok {
			return nil, collision(d.Definition.Name, prev, d)
		}
		table[d.Definition.Name] = d
	}
	for _, ms := range ix.methods {
		slices.SortFunc(ms, func(a, b definition.Documentable) int {
			return strings.Compare(a.Definition.Name, b.Definition.Name)
		})
	}
	return ix, nil
}

func collision(name string, prev, next definition.Documentable) error {
	return errors.CollisionError("duplicate definition in cross-reference index").
		WithContext("name", name).
		WithContext("kind", string(next.Definition.Kind)).
		WithContext("first_product", string(prev.Product)).
		WithContext("second_product", string(next.Product)).
		WithContext("first", prev.Definition.Location.File).
		WithContext("second", next.Definition.Location.File).
		Build()
}

// Len is the number of top-level entries.
func (ix *Index) Len() int {
	return len(ix.Functions) + len(ix.Classes) + len(ix.Interfaces) + len(ix.Traits)
}

// Classish finds a class, interface or trait by qualified name.
func (ix *Index) Classish(name string) (definition.Documentable, bool) {
	name = strings.TrimPrefix(name, definition.NamespaceSeparator)
	for _, k := range definition.ClassishKinds {
		if d, ok := ix.table(k)[name]; ok {
			return d, true
		}
	}
	return definition.Documentable{}, false
}

// Function finds a function by qualified name.
func (ix *Index) Function(name string) (definition.Documentable, bool) {
	d, ok := ix.Functions[strings.TrimPrefix(name, definition.NamespaceSeparator)]
	return d, ok
}

// Methods returns the methods declared on a classish, sorted by name.
func (ix *Index) Methods(classish string) []definition.Documentable {
	return ix.methods[classish]
}

// Method finds a method declared directly on a classish.
func (ix *Index) Method(classish, name string) (definition.Documentable, bool) {
	for _, m := range ix.methods[classish] {
		if m.Definition.Name == name {
			return m, true
		}
	}
	return definition.Documentable{}, false
}

// InheritedMethod is a method reachable from a classish through its parents.
type InheritedMethod struct {
	From   definition.Documentable
	Method definition.Documentable
}

// InheritedMethods walks extends and implements clauses breadth first and
// returns methods not overridden closer to the classish. Unknown ancestors
// are skipped.
func (ix *Index) InheritedMethods(classish string) []InheritedMethod {
	start, ok := ix.Classish(classish)
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	for _, m := range ix.methods[start.Definition.Name] {
		seen[m.Definition.Name] = true
	}
	visited := map[string]bool{start.Definition.Name: true}
	queue := ancestors(start.Definition)
	var out []InheritedMethod
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if visited[name] {
			continue
		}
		visited[name] = true
		parent, ok := ix.Classish(name)
		if !ok {
			continue
		}
		for _, m := range ix.methods[parent.Definition.Name] {
			if seen[m.Definition.Name] {
				continue
			}
			seen[m.Definition.Name] = true
			out = append(out, InheritedMethod{From: parent, Method: m})
		}
		queue = append(queue, ancestors(parent.Definition)...)
	}
	return out
}

// ancestors strips type arguments from extends and implements clauses.
func ancestors(def definition.Definition) []string {
	var out []string
	for _, n := range slices.Concat(def.Extends, def.Implements) {
		if i := strings.IndexByte(n, '<'); i >= 0 {
			n = n[:i]
		}
		out = append(out, strings.TrimPrefix(strings.TrimSpace(n), definition.NamespaceSeparator))
	}
	return out
}
