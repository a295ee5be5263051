// Package merge collapses definitions that describe the same symbol, such as
// a runtime declaration and its declaration-file counterpart.
package merge

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
)

// family groups kinds that share a namespace: a class and an interface with
// the same name describe the same symbol.
func family(k definition.Kind) string {
	if k.IsClassish() {
		return "classish"
	}
	return string(k)
}

// Key is the merge identity of a documentable.
func Key(d definition.Documentable) string {
	return family(d.Definition.Kind) + "\x00" + definition.NormalizeName(d.QualifiedKey())
}

// preferred reports whether a should represent a group over b: a non-empty
// doc comment wins, then the earlier source location.
func preferred(a, b definition.Documentable) bool {
	aDoc := strings.TrimSpace(a.Definition.DocComment) != ""
	bDoc := strings.TrimSpace(b.Definition.DocComment) != ""
	if aDoc != bDoc {
		return aDoc
	}
	return a.Definition.Location.Less(b.Definition.Location)
}

// MergeAll returns one representative per merge key, sorted by key. The
// result does not depend on input order.
func MergeAll(docs []definition.Documentable) []definition.Documentable {
	best := make(map[string]definition.Documentable, len(docs))
	for _, d := range docs {
		k := Key(d)
		cur, ok := best[k]
		if !ok || preferred(d, cur) {
			best[k] = d
		}
	}
	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]definition.Documentable, 0, len(keys))
	for _, k := range keys {
		out = append(out, best[k])
	}
	return out
}
