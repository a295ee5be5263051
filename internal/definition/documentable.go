package definition

import "fmt"

// ParentRef names the classish that owns a method. It is a lookup key into
// the documentable set, not a pointer.
type ParentRef struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// IsZero reports whether the reference is unset.
func (p ParentRef) IsZero() bool { return p.Name == "" }

// RefTo builds a ParentRef for a classish definition.
func RefTo(d Definition) ParentRef { return ParentRef{Name: d.Name, Kind: d.Kind} }

// Documentable is the unit of pipeline processing: a definition, its owning
// classish (for methods) and the product it is documented under.
type Documentable struct {
	Definition Definition `json:"definition"`
	Parent     ParentRef  `json:"parent,omitzero"`
	Product    Product    `json:"product"`
}

// HasParent reports whether the documentable is a member of a classish.
func (d Documentable) HasParent() bool { return !d.Parent.IsZero() }

// QualifiedKey identifies the documented symbol: the qualified name, or
// Owner::method for methods.
func (d Documentable) QualifiedKey() string {
	if d.HasParent() {
		return d.Parent.Name + "::" + d.Definition.Name
	}
	return d.Definition.Name
}

// Validate checks the parent/kind invariant: a parent is present exactly when
// the definition is a method, and the parent is classish.
func (d Documentable) Validate() error {
	switch {
	case d.HasParent() && d.Definition.Kind != KindMethod:
		return fmt.Errorf("%s %q has parent %q but is not a method", d.Definition.Kind, d.Definition.Name, d.Parent.Name)
	case d.HasParent() && !d.Parent.Kind.IsClassish():
		return fmt.Errorf("method %q has non-classish parent %q (%s)", d.Definition.Name, d.Parent.Name, d.Parent.Kind)
	case !d.HasParent() && d.Definition.Kind == KindMethod:
		return fmt.Errorf("method %q has no parent", d.Definition.Name)
	}
	return nil
}
