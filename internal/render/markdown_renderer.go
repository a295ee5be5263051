package render

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/apidocbuilder/internal/apipaths"
	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/apidocbuilder/internal/markdown"
	"git.home.luguber.info/inful/apidocbuilder/internal/navindex"
	"git.home.luguber.info/inful/apidocbuilder/internal/xref"
)

// implicitNamespaces are tried, in order, when a code span names a symbol
// without its namespace.
var implicitNamespaces = []string{`HH\`, `HH\Lib\`}

// MarkdownRenderer renders pages for the documentation site.
type MarkdownRenderer struct {
	URLPrefix string
}

// NewMarkdownRenderer returns a renderer linking below urlPrefix.
func NewMarkdownRenderer(urlPrefix string) *MarkdownRenderer {
	return &MarkdownRenderer{URLPrefix: urlPrefix}
}

// Render implements Renderer.
func (r *MarkdownRenderer) Render(doc definition.Documentable, index *xref.Index, cfg Config) (string, error) {
	if cfg.Format != FormatMarkdown {
		return "", errors.UnsupportedError("unsupported render format").
			WithContext("format", string(cfg.Format)).
			Build()
	}
	p := &page{r: r, doc: doc, index: index, cfg: cfg}
	var err error
	switch k := doc.Definition.Kind; {
	case k == definition.KindFunction:
		err = p.function()
	case k.IsClassish():
		err = p.classish()
	case k == definition.KindMethod:
		err = p.method()
	default:
		return "", errors.UnsupportedError("no page renderer for definition kind").
			WithContext("kind", string(k)).
			WithContext("name", doc.Definition.Name).
			Build()
	}
	if err != nil {
		if errors.IsClassified(err) {
			return "", err
		}
		return "", errors.WrapError(err, errors.CategoryRender, "render page").
			Fatal().
			WithContext("name", doc.QualifiedKey()).
			Build()
	}
	return strings.TrimRight(p.b.String(), "\n") + "\n", nil
}

type page struct {
	r     *MarkdownRenderer
	doc   definition.Documentable
	index *xref.Index
	cfg   Config
	b     strings.Builder
}

func (p *page) printf(format string, args ...any) { fmt.Fprintf(&p.b, format, args...) }

func (p *page) fence() string {
	if p.cfg.SyntaxHighlighting {
		return "```Hack"
	}
	return "```"
}

func (p *page) function() error {
	def := p.doc.Definition
	block := parseDocBlock(def.DocComment)
	p.printf("# %s\n\n", def.Name)
	if err := p.deprecation(def); err != nil {
		return err
	}
	if err := p.prose(block.Description, def.Namespace()); err != nil {
		return err
	}
	p.printf("%s\n", p.fence())
	if ns := def.Namespace(); ns != "" {
		p.printf("namespace %s;\n\n", ns)
	}
	p.printf("%s;\n```\n\n", signature("function "+def.ShortName(), def))
	return p.tags(def, block, def.Namespace())
}

func (p *page) method() error {
	def := p.doc.Definition
	block := parseDocBlock(def.DocComment)
	owner := p.doc.Parent.Name
	ns := namespaceOf(owner)
	p.printf("# %s::%s\n\n", owner, def.Name)
	if err := p.deprecation(def); err != nil {
		return err
	}
	if err := p.prose(block.Description, ns); err != nil {
		return err
	}
	p.printf("%s\n%s;\n```\n\n", p.fence(), signature(modifiers(def)+"function "+def.Name, def))
	return p.tags(def, block, ns)
}

func (p *page) classish() error {
	def := p.doc.Definition
	block := parseDocBlock(def.DocComment)
	ns := def.Namespace()
	p.printf("# %s\n\n", def.Name)
	if err := p.deprecation(def); err != nil {
		return err
	}
	if err := p.prose(block.Description, ns); err != nil {
		return err
	}

	p.printf("## Interface Synopsis\n\n%s\n", p.fence())
	if ns != "" {
		p.printf("namespace %s;\n\n", ns)
	}
	p.printf("%s {...}\n```\n\n", classHeader(def))

	var public, protected, private []definition.Documentable
	for _, m := range p.index.Methods(def.Name) {
		switch m.Definition.Visibility {
		case definition.VisibilityPrivate:
			if !p.cfg.HidePrivateMethods {
				private = append(private, m)
			}
		case definition.VisibilityProtected:
			protected = append(protected, m)
		default:
			public = append(public, m)
		}
	}
	if err := p.methodList("Public Methods", public); err != nil {
		return err
	}
	if err := p.methodList("Protected Methods", protected); err != nil {
		return err
	}
	if err := p.methodList("Private Methods", private); err != nil {
		return err
	}
	if p.cfg.HideInheritedMethods {
		return nil
	}
	inherited := p.index.InheritedMethods(def.Name)
	if len(inherited) == 0 {
		return nil
	}
	p.printf("## Inherited Methods\n\n")
	for _, im := range inherited {
		if p.cfg.HidePrivateMethods && im.Method.Definition.Visibility == definition.VisibilityPrivate {
			continue
		}
		mu, err := apipaths.URL(p.r.URLPrefix, im.Method)
		if err != nil {
			return err
		}
		fu, err := apipaths.URL(p.r.URLPrefix, im.From)
		if err != nil {
			return err
		}
		p.printf("+ [`%s`](%s) from [`%s`](%s)\n", shortSignature(im.Method.Definition), mu, im.From.Definition.Name, fu)
	}
	p.printf("\n")
	return nil
}

func (p *page) methodList(title string, methods []definition.Documentable) error {
	if len(methods) == 0 {
		return nil
	}
	p.printf("## %s\n\n", title)
	for _, m := range methods {
		u, err := apipaths.URL(p.r.URLPrefix, m)
		if err != nil {
			return err
		}
		p.printf("+ [`%s`](%s)", shortSignature(m.Definition), u)
		if s := markdown.Summary(parseDocBlock(m.Definition.DocComment).Description); s != "" {
			p.printf("\\\n  %s", s)
		}
		p.printf("\n")
	}
	p.printf("\n")
	return nil
}

func (p *page) deprecation(def definition.Definition) error {
	msg, err := navindex.Deprecation(def)
	if err != nil || msg == nil {
		return err
	}
	p.printf("**Deprecated:** %s\n\n", *msg)
	return nil
}

// prose writes normalized doc text with cross-reference links.
func (p *page) prose(text, ns string) error {
	if text == "" {
		return nil
	}
	out, err := markdown.Rewrite(markdown.Normalize(text), p.resolver(ns))
	if err != nil {
		return err
	}
	p.printf("%s\n\n", strings.TrimSpace(out))
	return nil
}

func (p *page) tags(def definition.Definition, block docBlock, ns string) error {
	if len(def.Parameters) > 0 {
		p.printf("## Parameters\n\n")
		for _, param := range def.Parameters {
			p.printf("+ `%s`", parameter(param))
			if d := block.Params[param.Name]; d != "" {
				out, err := markdown.Rewrite(markdown.Normalize(d), p.resolver(ns))
				if err != nil {
					return err
				}
				p.printf(" - %s", strings.TrimSpace(out))
			}
			p.printf("\n")
		}
		p.printf("\n")
	}
	if def.ReturnType != "" || block.Return != "" {
		p.printf("## Returns\n\n+")
		if def.ReturnType != "" {
			p.printf(" `%s`", def.ReturnType)
		}
		if block.Return != "" {
			out, err := markdown.Rewrite(markdown.Normalize(block.Return), p.resolver(ns))
			if err != nil {
				return err
			}
			if def.ReturnType != "" {
				p.printf(" -")
			}
			p.printf(" %s", strings.TrimSpace(out))
		}
		p.printf("\n\n")
	}
	if len(block.Throws) > 0 {
		p.printf("## Throws\n\n")
		for _, t := range block.Throws {
			p.printf("+ %s\n", t)
		}
		p.printf("\n")
	}
	if len(block.See) > 0 {
		p.printf("## See Also\n\n")
		for _, s := range block.See {
			p.printf("+ %s\n", p.link(s, ns))
		}
		p.printf("\n")
	}
	return nil
}

// link renders a @see target as a link when it resolves.
func (p *page) link(target, ns string) string {
	if u, ok := p.resolver(ns)(target); ok {
		return fmt.Sprintf("[`%s`](%s)", target, u)
	}
	return target
}

// resolver resolves symbol references relative to namespace ns.
func (p *page) resolver(ns string) markdown.Resolver {
	return func(symbol string) (string, bool) {
		symbol = strings.TrimSuffix(strings.TrimSpace(symbol), "()")
		if symbol == "" || strings.ContainsAny(symbol, " \t\n") {
			return "", false
		}
		target, ok := p.lookup(symbol, ns)
		if !ok {
			return "", false
		}
		u, err := apipaths.URL(p.r.URLPrefix, target)
		if err != nil {
			return "", false
		}
		return u, true
	}
}

func (p *page) lookup(symbol, ns string) (definition.Documentable, bool) {
	class, method, isMethod := strings.Cut(symbol, "::")
	for _, name := range candidates(strings.TrimPrefix(class, definition.NamespaceSeparator), ns) {
		if isMethod {
			if _, ok := p.index.Classish(name); ok {
				if m, ok := p.index.Method(name, method); ok {
					return m, true
				}
			}
			continue
		}
		if d, ok := p.index.Function(name); ok {
			return d, true
		}
		if d, ok := p.index.Classish(name); ok {
			return d, true
		}
	}
	return definition.Documentable{}, false
}

func candidates(name, ns string) []string {
	out := []string{name}
	if ns != "" {
		out = append(out, ns+definition.NamespaceSeparator+name)
	}
	for _, prefix := range implicitNamespaces {
		out = append(out, prefix+name)
	}
	return out
}

func namespaceOf(name string) string {
	if i := strings.LastIndex(name, definition.NamespaceSeparator); i >= 0 {
		return name[:i]
	}
	return ""
}
