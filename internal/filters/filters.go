// Package filters decides which definitions are documented and under which
// names.
package filters

import (
	"strings"

	"git.home.luguber.info/inful/apidocbuilder/internal/config"
	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/util/sets"
)

// Filter names used in logs and metrics.
const (
	FilterDocumentability = "documentability"
	FilterEcosystem       = "ecosystem"
)

// specialNames are compiler-special functions that declaration files expose
// without their namespace.
var specialNames = sets.New("fun", "meth_caller", "class_meth", "inst_meth")

// CorrectSpecialName moves the compiler-special functions into the HH
// namespace. Every other definition is returned unchanged.
func CorrectSpecialName(def definition.Definition) definition.Definition {
	if def.Kind != definition.KindFunction || !specialNames.Has(def.Name) {
		return def
	}
	return def.WithName("HH" + definition.NamespaceSeparator + def.Name)
}

// Policy holds the configured filter rules.
type Policy struct {
	ecosystemNamespaces []string
	ecosystemAttributes sets.Set[string]
	stdlibAttributes    sets.Set[string]
	internalNamespaces  sets.Set[string]
	noDocAttributes     sets.Set[string]
}

// NewPolicy builds a Policy from configuration.
func NewPolicy(cfg config.FiltersConfig) *Policy {
	return &Policy{
		ecosystemNamespaces: append([]string(nil), cfg.EcosystemNamespaces...),
		ecosystemAttributes: sets.New(cfg.EcosystemAttributes...),
		stdlibAttributes:    sets.New(cfg.StdlibAttributes...),
		internalNamespaces:  sets.New(cfg.InternalNamespaces...),
		noDocAttributes:     sets.New(cfg.NoDocAttributes...),
	}
}

// ShouldNotDocument reports whether def is excluded from documentation:
// private members, anything inside an internal namespace, and anything
// carrying a no-doc attribute.
func (p *Policy) ShouldNotDocument(def definition.Definition) bool {
	if def.Visibility == definition.VisibilityPrivate {
		return true
	}
	for attr := range def.Attributes {
		if p.noDocAttributes.Has(attr) {
			return true
		}
	}
	if ns := def.Namespace(); ns != "" {
		for _, seg := range strings.Split(ns, definition.NamespaceSeparator) {
			if p.internalNamespaces.Has(seg) {
				return true
			}
		}
	}
	return false
}

// IsEcosystemSpecific reports whether def belongs to the documented
// ecosystem. A stdlib attribute always wins over namespace or attribute
// membership.
func (p *Policy) IsEcosystemSpecific(def definition.Definition) bool {
	for attr := range def.Attributes {
		if p.stdlibAttributes.Has(attr) {
			return false
		}
	}
	for attr := range def.Attributes {
		if p.ecosystemAttributes.Has(attr) {
			return true
		}
	}
	for _, prefix := range p.ecosystemNamespaces {
		if strings.HasPrefix(def.Name, prefix) {
			return true
		}
	}
	return false
}

// ApplyEcosystem keeps the documentables that belong to the ecosystem.
// Methods are judged by their parent classish, never by themselves; a method
// whose parent is not in docs is dropped. The returned count is the number of
// documentables removed.
func (p *Policy) ApplyEcosystem(docs []definition.Documentable) ([]definition.Documentable, int) {
	parents := make(map[string]definition.Definition)
	for _, d := range docs {
		if d.Definition.Kind.IsClassish() {
			parents[d.Definition.Name] = d.Definition
		}
	}
	kept := make([]definition.Documentable, 0, len(docs))
	for _, d := range docs {
		subject := d.Definition
		if d.HasParent() {
			parent, ok := parents[d.Parent.Name]
			if !ok {
				continue
			}
			subject = parent
		}
		if p.IsEcosystemSpecific(subject) {
			kept = append(kept, d)
		}
	}
	return kept, len(docs) - len(kept)
}
