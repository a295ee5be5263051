package render

import (
	"strings"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
)

func generics(def definition.Definition) string {
	if len(def.Generics) == 0 {
		return ""
	}
	return "<" + strings.Join(def.Generics, ", ") + ">"
}

func parameter(p definition.Parameter) string {
	var b strings.Builder
	if p.Inout {
		b.WriteString("inout ")
	}
	if p.Type != "" {
		b.WriteString(p.Type)
		b.WriteString(" ")
	}
	if p.Variadic {
		b.WriteString("...")
	}
	b.WriteString(p.Name)
	if p.Default != "" {
		b.WriteString(" = ")
		b.WriteString(p.Default)
	}
	return strings.TrimSpace(b.String())
}

// signature formats a declaration head: one line without parameters, one
// parameter per line otherwise.
func signature(head string, def definition.Definition) string {
	var b strings.Builder
	b.WriteString(head)
	b.WriteString(generics(def))
	if len(def.Parameters) == 0 {
		b.WriteString("()")
	} else {
		b.WriteString("(\n")
		for _, p := range def.Parameters {
			b.WriteString("  ")
			b.WriteString(parameter(p))
			b.WriteString(",\n")
		}
		b.WriteString(")")
	}
	if def.ReturnType != "" {
		b.WriteString(": ")
		b.WriteString(def.ReturnType)
	}
	return b.String()
}

// shortSignature is the one-line form used in method lists.
func shortSignature(def definition.Definition) string {
	params := make([]string, 0, len(def.Parameters))
	for _, p := range def.Parameters {
		params = append(params, parameter(p))
	}
	sep := "->"
	if def.Static {
		sep = "::"
	}
	s := sep + def.Name + generics(def) + "(" + strings.Join(params, ", ") + ")"
	if def.ReturnType != "" {
		s += ": " + def.ReturnType
	}
	return s
}

func modifiers(def definition.Definition) string {
	var parts []string
	if def.Abstract {
		parts = append(parts, "abstract")
	}
	if def.Final {
		parts = append(parts, "final")
	}
	if def.Visibility != "" {
		parts = append(parts, string(def.Visibility))
	}
	if def.Static {
		parts = append(parts, "static")
	}
	if def.Async {
		parts = append(parts, "async")
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + " "
}

func classHeader(def definition.Definition) string {
	var b strings.Builder
	if def.Abstract && def.Kind == definition.KindClass {
		b.WriteString("abstract ")
	}
	if def.Final {
		b.WriteString("final ")
	}
	b.WriteString(string(def.Kind))
	b.WriteString(" ")
	b.WriteString(def.ShortName())
	b.WriteString(generics(def))
	if len(def.Extends) > 0 {
		b.WriteString(" extends ")
		b.WriteString(strings.Join(def.Extends, ", "))
	}
	if len(def.Implements) > 0 {
		b.WriteString(" implements ")
		b.WriteString(strings.Join(def.Implements, ", "))
	}
	return b.String()
}
