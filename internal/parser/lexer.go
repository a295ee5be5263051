package parser

import (
	"bytes"
	"fmt"
	"sort"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokVar
	tokString
	tokNumber
	tokDoc
	tokPunct
)

type token struct {
	kind  tokenKind
	text  string
	start int
	end   int
}

func (t token) is(kind tokenKind, text string) bool { return t.kind == kind && t.text == text }
func (t token) isPunct(text string) bool          { return t.is(tokPunct, text) }

// lexer splits Hack source into the tokens needed to find declarations.
// Comments are dropped except doc comments; strings and heredocs become single
// tokens so braces inside them never affect nesting.
type lexer struct {
	src      []byte
	pos      int
	newlines []int
}

type syntaxError struct {
	offset int
	msg    string
}

func (e *syntaxError) Error() string { return e.msg }

func lex(src []byte) ([]token, *lexer, error) {
	l := &lexer{src: src}
	for i, c := range src {
		if c == '\n' {
			l.newlines = append(l.newlines, i)
		}
	}
	toks, err := l.run()
	return toks, l, err
}

// lineAt returns the 1-based line of a byte offset.
func (l *lexer) lineAt(offset int) int {
	return sort.SearchInts(l.newlines, offset) + 1
}

func (l *lexer) hasPrefix(p string) bool {
	return bytes.HasPrefix(l.src[l.pos:], []byte(p))
}

func (l *lexer) fail(offset int, format string, args ...any) error {
	return &syntaxError{offset: offset, msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) run() ([]token, error) {
	var toks []token
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return append(toks, token{kind: tokEOF, start: l.pos, end: l.pos}), nil
		}
		start := l.pos
		c := l.src[l.pos]
		var kind tokenKind
		switch {
		case l.hasPrefix("<?"):
			l.pos += 2
			for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
				l.pos++
			}
			continue
		case l.hasPrefix("<<<"):
			if err := l.heredoc(); err != nil {
				return nil, err
			}
			kind = tokString
		case l.hasPrefix("//") || c == '#':
			l.skipLine()
			continue
		case l.hasPrefix("/*"):
			doc := l.hasPrefix("/**") && !l.hasPrefix("/**/")
			end := bytes.Index(l.src[l.pos+2:], []byte("*/"))
			if end < 0 {
				return nil, l.fail(start, "unterminated comment")
			}
			l.pos += 2 + end + 2
			if !doc {
				continue
			}
			kind = tokDoc
		case c == '\'' || c == '"' || c == '`':
			if err := l.quoted(c); err != nil {
				return nil, err
			}
			kind = tokString
		case c == '$' && l.pos+1 < len(l.src) && isIdentStart(l.src[l.pos+1]):
			l.pos++
			l.ident()
			kind = tokVar
		case isIdentStart(c) || (c == '\\' && l.pos+1 < len(l.src) && isIdentStart(l.src[l.pos+1])):
			l.qualifiedName()
			kind = tokName
		case c >= '0' && c <= '9':
			for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
				l.pos++
			}
			kind = tokNumber
		case l.hasPrefix("..."):
			l.pos += 3
			kind = tokPunct
		default:
			l.pos++
			kind = tokPunct
		}
		toks = append(toks, token{kind: kind, text: string(l.src[start:l.pos]), start: start, end: l.pos})
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			l.pos++
		default:
			return
		}
	}
}

func (l *lexer) skipLine() {
	if i := bytes.IndexByte(l.src[l.pos:], '\n'); i >= 0 {
		l.pos += i
		return
	}
	l.pos = len(l.src)
}

func (l *lexer) ident() {
	for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
		l.pos++
	}
}

func (l *lexer) qualifiedName() {
	for {
		if l.pos < len(l.src) && l.src[l.pos] == '\\' {
			l.pos++
		}
		l.ident()
		if l.pos+1 < len(l.src) && l.src[l.pos] == '\\' && isIdentStart(l.src[l.pos+1]) {
			continue
		}
		return
	}
}

func (l *lexer) quoted(q byte) error {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
		case q:
			l.pos++
			return nil
		default:
			l.pos++
		}
	}
	return l.fail(start, "unterminated string literal")
}

// heredoc consumes <<<ID ... ID and the nowdoc form <<<'ID'.
func (l *lexer) heredoc() error {
	start := l.pos
	l.pos += 3
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	if l.pos < len(l.src) && (l.src[l.pos] == '\'' || l.src[l.pos] == '"') {
		l.pos++
	}
	idStart := l.pos
	l.ident()
	id := l.src[idStart:l.pos]
	if len(id) == 0 {
		return l.fail(start, "malformed heredoc")
	}
	l.skipLine()
	for l.pos < len(l.src) {
		l.pos++ // newline
		lineStart := l.pos
		for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
			l.pos++
		}
		if bytes.HasPrefix(l.src[l.pos:], id) {
			after := l.pos + len(id)
			if after >= len(l.src) || !isIdentByte(l.src[after]) {
				l.pos = after
				return nil
			}
		}
		l.pos = lineStart
		l.skipLine()
	}
	return l.fail(start, "unterminated heredoc")
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
