package definition

import "fmt"

// Kind tags the variant of a parsed Definition.
type Kind string

const (
	KindFunction  Kind = "function"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindTrait     Kind = "trait"
	KindMethod    Kind = "method"
	// KindTypeAlias is recognized so that it can be rejected explicitly; type
	// aliases are never documented.
	KindTypeAlias Kind = "typealias"
)

// ClassishKinds lists the classish kinds in navigation index order.
var ClassishKinds = []Kind{KindClass, KindInterface, KindTrait}

// IsClassish reports whether k is a class, interface or trait.
func (k Kind) IsClassish() bool {
	switch k {
	case KindClass, KindInterface, KindTrait:
		return true
	case KindFunction, KindMethod, KindTypeAlias:
		return false
	}
	return false
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFunction, KindClass, KindInterface, KindTrait, KindMethod, KindTypeAlias:
		return true
	}
	return false
}

// ParseKind converts a declaration keyword into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown definition kind %q", s)
	}
	return k, nil
}
