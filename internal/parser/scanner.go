package parser

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"git.home.luguber.info/inful/apidocbuilder/internal/definition"
	"git.home.luguber.info/inful/apidocbuilder/internal/foundation/errors"
)

// Scanner is the built-in Parser. It reads declarations (functions,
// classes, interfaces, traits and their methods) from Hack source and
// declaration files without evaluating anything. Bodies are skipped.
type Scanner struct{}

// NewScanner returns the declaration scanner.
func NewScanner() *Scanner { return &Scanner{} }

// Parse implements Parser.
func (s *Scanner) Parse(ctx context.Context, path string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "read source file").
			Fatal().
			WithContext("file", path).
			Build()
	}
	return ScanSource(path, src)
}

// ScanSource extracts declarations from src. path is recorded in each
// definition's location.
func ScanSource(path string, src []byte) ([]Entry, error) {
	toks, lx, err := lex(src)
	if err != nil {
		return nil, syntaxFailure(path, lx, err)
	}
	p := &declParser{file: path, src: src, toks: toks, lx: lx}
	if err := p.statements("", false); err != nil {
		return nil, syntaxFailure(path, lx, err)
	}
	return p.entries, nil
}

func syntaxFailure(path string, lx *lexer, err error) error {
	b := errors.ParseError(err.Error()).WithContext("file", path)
	var se *syntaxError
	if stderrors.As(err, &se) {
		b = b.WithContext("line", lx.lineAt(se.offset))
	}
	return b.Build()
}

type modifiers struct {
	visibility definition.Visibility
	static     bool
	abstract   bool
	final      bool
	async      bool
}

// pending carries the doc comment and attributes preceding a declaration.
type pending struct {
	doc   string
	attrs map[string][]string
	mods  modifiers
}

type declParser struct {
	file    string
	src     []byte
	toks    []token
	lx      *lexer
	i       int
	entries []Entry
}

func (p *declParser) peek() token { return p.toks[p.i] }

func (p *declParser) peekAt(n int) token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *declParser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *declParser) fail(t token, format string, args ...any) error {
	return p.lx.fail(t.start, format, args...)
}

func (p *declParser) keyword(t token, kw string) bool {
	return t.kind == tokName && strings.EqualFold(t.text, kw)
}

// attributeOpen reports whether the next tokens are an adjacent "<<".
func (p *declParser) attributeOpen() bool {
	a, b := p.peek(), p.peekAt(1)
	return a.isPunct("<") && b.isPunct("<") && b.start == a.end
}

// statements parses top-level or namespace-block declarations. When inBlock
// is set it stops at the closing brace.
func (p *declParser) statements(ns string, inBlock bool) error {
	var pend pending
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			if inBlock {
				return p.fail(t, "unterminated namespace block")
			}
			return nil
		case inBlock && t.isPunct("}"):
			p.next()
			return nil
		case t.kind == tokDoc:
			p.next()
			pend.doc = cleanDocComment(t.text)
			continue
		case p.attributeOpen():
			if err := p.attributes(&pend); err != nil {
				return err
			}
			continue
		case p.applyModifier(t, &pend.mods):
			p.next()
			continue
		case p.keyword(t, "namespace"):
			p.next()
			name := ""
			if p.peek().kind == tokName {
				name = strings.TrimPrefix(p.next().text, `\`)
			}
			if p.peek().isPunct("{") {
				p.next()
				if err := p.statements(name, true); err != nil {
					return err
				}
			} else {
				if err := p.skipStatement(); err != nil {
					return err
				}
				ns = name
			}
		case p.keyword(t, "function"):
			if err := p.function(ns, pend); err != nil {
				return err
			}
		case p.keyword(t, "class"):
			if err := p.classish(ns, pend, definition.KindClass); err != nil {
				return err
			}
		case p.keyword(t, "interface"):
			if err := p.classish(ns, pend, definition.KindInterface); err != nil {
				return err
			}
		case p.keyword(t, "trait"):
			if err := p.classish(ns, pend, definition.KindTrait); err != nil {
				return err
			}
		default:
			// use, const, type, newtype, enum and plain statements.
			if err := p.skipStatement(); err != nil {
				return err
			}
		}
		pend = pending{}
	}
}

func (p *declParser) applyModifier(t token, m *modifiers) bool {
	if t.kind != tokName {
		return false
	}
	switch strings.ToLower(t.text) {
	case "public":
		m.visibility = definition.VisibilityPublic
	case "protected":
		m.visibility = definition.VisibilityProtected
	case "private":
		m.visibility = definition.VisibilityPrivate
	case "static":
		m.static = true
	case "abstract":
		m.abstract = true
	case "final":
		m.final = true
	case "async":
		m.async = true
	case "readonly", "xhp":
	default:
		return false
	}
	return true
}

func qualify(ns, name string) string {
	name = strings.TrimPrefix(name, `\`)
	if ns == "" {
		return name
	}
	return ns + definition.NamespaceSeparator + name
}

func (p *declParser) function(ns string, pend pending) error {
	kw := p.next()
	if p.peek().isPunct("&") {
		p.next()
	}
	nameTok := p.peek()
	if nameTok.kind != tokName {
		// Anonymous function expression at statement level.
		return p.skipStatement()
	}
	p.next()
	def := definition.Definition{
		Name:       qualify(ns, nameTok.text),
		Kind:       definition.KindFunction,
		Attributes: pend.attrs,
		DocComment: pend.doc,
		Location:   definition.Location{File: p.file, Line: p.lx.lineAt(kw.start)},
		Async:      pend.mods.async,
	}
	if err := p.signature(&def); err != nil {
		return err
	}
	p.entries = append(p.entries, Entry{Definition: def})
	return nil
}

func (p *declParser) classish(ns string, pend pending, kind definition.Kind) error {
	kw := p.next()
	nameTok := p.peek()
	if nameTok.kind != tokName {
		return p.skipStatement()
	}
	p.next()
	def := definition.Definition{
		Name:       qualify(ns, nameTok.text),
		Kind:       kind,
		Attributes: pend.attrs,
		DocComment: pend.doc,
		Location:   definition.Location{File: p.file, Line: p.lx.lineAt(kw.start)},
		Abstract:   pend.mods.abstract,
		Final:      pend.mods.final,
	}
	generics, err := p.generics()
	if err != nil {
		return err
	}
	def.Generics = generics
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			return p.fail(t, "unterminated %s declaration %s", kind, def.Name)
		case t.isPunct("{"):
			p.next()
			p.entries = append(p.entries, Entry{Definition: def})
			return p.members(def)
		case p.keyword(t, "extends"):
			p.next()
			names, err := p.nameList()
			if err != nil {
				return err
			}
			def.Extends = append(def.Extends, names...)
		case p.keyword(t, "implements"):
			p.next()
			names, err := p.nameList()
			if err != nil {
				return err
			}
			def.Implements = append(def.Implements, names...)
		default:
			p.next()
		}
	}
}

// members parses a classish body after its opening brace.
func (p *declParser) members(owner definition.Definition) error {
	parent := owner.Clone()
	var pend pending
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			return p.fail(t, "unterminated body of %s", owner.Name)
		case t.isPunct("}"):
			p.next()
			return nil
		case t.kind == tokDoc:
			p.next()
			pend.doc = cleanDocComment(t.text)
			continue
		case p.attributeOpen():
			if err := p.attributes(&pend); err != nil {
				return err
			}
			continue
		case p.applyModifier(t, &pend.mods):
			p.next()
			continue
		case p.keyword(t, "function"):
			kw := p.next()
			if p.peek().isPunct("&") {
				p.next()
			}
			nameTok := p.next()
			if nameTok.kind != tokName {
				return p.fail(nameTok, "expected method name in %s", owner.Name)
			}
			vis := pend.mods.visibility
			if vis == "" {
				vis = definition.VisibilityPublic
			}
			def := definition.Definition{
				Name:       nameTok.text,
				Kind:       definition.KindMethod,
				Attributes: pend.attrs,
				DocComment: pend.doc,
				Location:   definition.Location{File: p.file, Line: p.lx.lineAt(kw.start)},
				Visibility: vis,
				Static:     pend.mods.static,
				Abstract:   pend.mods.abstract || owner.Kind == definition.KindInterface,
				Final:      pend.mods.final,
				Async:      pend.mods.async,
			}
			if err := p.signature(&def); err != nil {
				return err
			}
			p.entries = append(p.entries, Entry{Definition: def, Parent: &parent})
		default:
			// Properties, constants, trait uses and requirements.
			if err := p.skipStatement(); err != nil {
				return err
			}
		}
		pend = pending{}
	}
}

// signature parses generics, parameters, contexts, return type and body of a
// function or method whose name has been consumed.
func (p *declParser) signature(def *definition.Definition) error {
	generics, err := p.generics()
	if err != nil {
		return err
	}
	def.Generics = generics
	params, err := p.parameters()
	if err != nil {
		return err
	}
	def.Parameters = params
	if p.peek().isPunct("[") {
		if _, err := p.balanced("[", "]"); err != nil {
			return err
		}
	}
	if p.peek().isPunct(":") {
		p.next()
		def.ReturnType = p.returnType()
	}
	if p.keyword(p.peek(), "where") {
		for t := p.peek(); t.kind != tokEOF && !t.isPunct("{") && !t.isPunct(";"); t = p.peek() {
			p.next()
		}
	}
	switch t := p.peek(); {
	case t.isPunct(";"):
		p.next()
		return nil
	case t.isPunct("{"):
		_, err := p.balanced("{", "}")
		return err
	default:
		return p.fail(t, "expected body of %s", def.Name)
	}
}

// generics parses an optional <...> type parameter list.
func (p *declParser) generics() ([]string, error) {
	open := p.peek()
	if !open.isPunct("<") {
		return nil, nil
	}
	p.next()
	var out []string
	depth := 0
	segStart := p.peek().start
	var prev token
	for {
		t := p.next()
		switch {
		case t.kind == tokEOF:
			return nil, p.fail(open, "unterminated type parameter list")
		case t.isPunct("<"), t.isPunct("("), t.isPunct("["):
			depth++
		case t.isPunct(")"), t.isPunct("]"):
			depth--
		case t.isPunct(">") && isArrow(prev, t):
		case t.isPunct(">") && depth > 0:
			depth--
		case t.isPunct(">"):
			out = appendText(out, p.text(segStart, t.start))
			return out, nil
		case t.isPunct(",") && depth == 0:
			out = appendText(out, p.text(segStart, t.start))
			segStart = p.peek().start
		}
		prev = t
	}
}

func appendText(out []string, s string) []string {
	if s == "" {
		return out
	}
	return append(out, s)
}

// isArrow reports whether t is the '>' of an adjacent "=>" or "->".
func isArrow(prev, t token) bool {
	return (prev.isPunct("=") || prev.isPunct("-")) && prev.end == t.start
}

func (p *declParser) parameters() ([]definition.Parameter, error) {
	open := p.peek()
	if !open.isPunct("(") {
		return nil, p.fail(open, "expected parameter list")
	}
	p.next()
	var params []definition.Parameter
	for {
		if p.peek().isPunct(")") {
			p.next()
			return params, nil
		}
		if p.peek().kind == tokEOF {
			return nil, p.fail(open, "unterminated parameter list")
		}
		param, err := p.parameter()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.peek().isPunct(",") {
			p.next()
		}
	}
}

func (p *declParser) parameter() (definition.Parameter, error) {
	var param definition.Parameter
	for {
		t := p.peek()
		if p.attributeOpen() {
			if err := p.attributes(&pending{}); err != nil {
				return param, err
			}
			continue
		}
		if t.kind == tokName {
			switch strings.ToLower(t.text) {
			case "inout":
				param.Inout = true
				p.next()
				continue
			case "public", "protected", "private", "readonly":
				p.next()
				continue
			}
		}
		break
	}
	typeStart, typeEnd := -1, -1
	depth := 0
	var prev token
	for {
		t := p.peek()
		if t.kind == tokEOF {
			return param, p.fail(t, "unterminated parameter")
		}
		if depth == 0 && (t.kind == tokVar || t.isPunct("...") || t.isPunct(",") || t.isPunct(")") || t.isPunct("=")) {
			break
		}
		switch {
		case t.isPunct("<"), t.isPunct("("), t.isPunct("["):
			depth++
		case t.isPunct(">") && isArrow(prev, t):
		case t.isPunct(">"), t.isPunct(")"), t.isPunct("]"):
			depth--
		}
		if typeStart < 0 {
			typeStart = t.start
		}
		typeEnd = t.end
		prev = p.next()
	}
	if typeStart >= 0 {
		param.Type = p.text(typeStart, typeEnd)
	}
	if p.peek().isPunct("...") {
		p.next()
		param.Variadic = true
	}
	if p.peek().kind == tokVar {
		param.Name = p.next().text
	}
	if p.peek().isPunct("=") {
		p.next()
		start, end := p.skipExpression()
		param.Default = p.text(start, end)
	}
	return param, nil
}

// skipExpression advances to the next ',' or ')' at nesting depth zero and
// returns the byte range covered.
func (p *declParser) skipExpression() (int, int) {
	start, end := p.peek().start, p.peek().start
	depth := 0
	for {
		t := p.peek()
		if t.kind == tokEOF {
			return start, end
		}
		if depth == 0 && (t.isPunct(",") || t.isPunct(")")) {
			return start, end
		}
		switch {
		case t.isPunct("("), t.isPunct("["), t.isPunct("{"):
			depth++
		case t.isPunct(")"), t.isPunct("]"), t.isPunct("}"):
			depth--
		}
		end = t.end
		p.next()
	}
}

func (p *declParser) returnType() string {
	start, end := -1, -1
	depth := 0
	for {
		t := p.peek()
		if t.kind == tokEOF {
			break
		}
		if depth == 0 && (t.isPunct("{") || t.isPunct(";") || p.keyword(t, "where")) {
			break
		}
		switch {
		case t.isPunct("("), t.isPunct("["):
			depth++
		case t.isPunct(")"), t.isPunct("]"):
			depth--
		}
		if start < 0 {
			start = t.start
		}
		end = t.end
		p.next()
	}
	if start < 0 {
		return ""
	}
	return p.text(start, end)
}

// nameList parses a comma-separated list of type names, keeping any type
// arguments as written.
func (p *declParser) nameList() ([]string, error) {
	var names []string
	for {
		t := p.peek()
		if t.kind != tokName {
			return names, nil
		}
		p.next()
		end := t.end
		if p.peek().isPunct("<") {
			e, err := p.angleGroup()
			if err != nil {
				return nil, err
			}
			end = e
		}
		names = append(names, strings.TrimPrefix(p.text(t.start, end), `\`))
		if !p.peek().isPunct(",") {
			return names, nil
		}
		p.next()
	}
}

// angleGroup consumes a balanced <...> group and returns its end offset.
func (p *declParser) angleGroup() (int, error) {
	open := p.next()
	depth := 1
	var prev token
	for {
		t := p.next()
		switch {
		case t.kind == tokEOF:
			return 0, p.fail(open, "unterminated type argument list")
		case t.isPunct("<"):
			depth++
		case t.isPunct(">") && isArrow(prev, t):
		case t.isPunct(">"):
			depth--
			if depth == 0 {
				return t.end, nil
			}
		}
		prev = t
	}
}

// balanced consumes a group opened by the next token and returns its end.
func (p *declParser) balanced(open, closing string) (int, error) {
	first := p.next()
	depth := 1
	for {
		t := p.next()
		switch {
		case t.kind == tokEOF:
			return 0, p.fail(first, "unbalanced %q", open)
		case t.isPunct(open):
			depth++
		case t.isPunct(closing):
			depth--
			if depth == 0 {
				return t.end, nil
			}
		}
	}
}

// skipStatement skips to the end of the current statement: a ';' at depth
// zero, or the end of a braced block. A closing brace at depth zero belongs
// to the enclosing scope and is left in place.
func (p *declParser) skipStatement() error {
	first := p.peek()
	depth := 0
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			if depth > 0 {
				return p.fail(first, "unterminated block")
			}
			return nil
		case t.isPunct("}") && depth == 0:
			if t.start == first.start {
				// Stray closing brace; consume it so scanning makes progress.
				p.next()
			}
			return nil
		case t.isPunct(";") && depth == 0:
			p.next()
			return nil
		case t.isPunct("{"), t.isPunct("("), t.isPunct("["):
			depth++
		case t.isPunct("}"), t.isPunct(")"), t.isPunct("]"):
			depth--
			if depth == 0 && t.isPunct("}") {
				p.next()
				return nil
			}
		}
		p.next()
	}
}

// attributes parses <<Name, Other('value')>> into pend.attrs.
func (p *declParser) attributes(pend *pending) error {
	open := p.next()
	p.next()
	if pend.attrs == nil {
		pend.attrs = map[string][]string{}
	}
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			return p.fail(open, "unterminated attribute list")
		case t.isPunct(">") && p.peekAt(1).isPunct(">"):
			p.next()
			p.next()
			return nil
		case t.isPunct(","):
			p.next()
		case t.kind == tokName:
			p.next()
			name := strings.TrimPrefix(t.text, `\`)
			var values []string
			if p.peek().isPunct("(") {
				vals, err := p.attributeArgs()
				if err != nil {
					return err
				}
				values = vals
			}
			pend.attrs[name] = values
		default:
			return p.fail(t, "unexpected %q in attribute list", t.text)
		}
	}
}

func (p *declParser) attributeArgs() ([]string, error) {
	open := p.next()
	var values []string
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			return nil, p.fail(open, "unterminated attribute arguments")
		case t.isPunct(")"):
			p.next()
			return values, nil
		case t.isPunct(","):
			p.next()
		default:
			start, end := p.skipExpression()
			values = append(values, literalValue(p.text(start, end)))
		}
	}
}

// literalValue unquotes simple string literals and returns other expressions
// as written.
func literalValue(s string) string {
	if len(s) >= 2 {
		q := s[0]
		if (q == '\'' || q == '"') && s[len(s)-1] == q {
			inner := s[1 : len(s)-1]
			inner = strings.ReplaceAll(inner, `\`+string(q), string(q))
			return strings.ReplaceAll(inner, `\\`, `\`)
		}
	}
	return s
}

// text returns src[start:end] with whitespace runs collapsed.
func (p *declParser) text(start, end int) string {
	if start >= end {
		return ""
	}
	return strings.Join(strings.Fields(string(p.src[start:end])), " ")
}

// cleanDocComment strips the comment delimiters and leading asterisks.
func cleanDocComment(raw string) string {
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "/**"), "*/")
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "*") {
			trimmed = strings.TrimPrefix(trimmed, "*")
			trimmed = strings.TrimPrefix(trimmed, " ")
			line = trimmed
		} else if i == 0 {
			line = trimmed
		}
		lines[i] = line
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
