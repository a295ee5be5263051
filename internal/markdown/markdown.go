// Package markdown rewrites doc comment markdown for publication: code spans
// naming known symbols become links and raw HTML is reduced to text.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Resolver maps a symbol name found in a code span to a URL.
type Resolver func(symbol string) (url string, ok bool)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse parses markdown with the GitHub dialect the documentation site renders.
func Parse(src []byte) gmast.Node {
	return md.Parser().Parse(text.NewReader(src))
}

// Normalize converts line endings to LF and text to Unicode NFC.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return norm.NFC.String(s)
}

// Rewrite links resolvable code spans and strips raw HTML. A nil resolver
// leaves code spans untouched.
func Rewrite(src string, resolve Resolver) (string, error) {
	b := []byte(src)
	root := Parse(b)
	var edits []Edit
	err := gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Link, *gmast.AutoLink:
			return gmast.WalkSkipChildren, nil
		case *gmast.CodeSpan:
			if e, ok := linkCodeSpan(node, b, resolve); ok {
				edits = append(edits, e)
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				edits = append(edits, Edit{Start: seg.Start, End: seg.Stop})
			}
		case *gmast.HTMLBlock:
			if e, ok := flattenHTMLBlock(node, b); ok {
				edits = append(edits, e)
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return ApplyEdits(src, edits)
}

func linkCodeSpan(node *gmast.CodeSpan, src []byte, resolve Resolver) (Edit, bool) {
	if resolve == nil || node.FirstChild() == nil {
		return Edit{}, false
	}
	var code strings.Builder
	start, stop := -1, -1
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*gmast.Text)
		if !ok {
			return Edit{}, false
		}
		if start < 0 {
			start = t.Segment.Start
		}
		stop = t.Segment.Stop
		code.Write(t.Segment.Value(src))
	}
	if start <= 0 || src[start-1] != '`' || stop >= len(src) || src[stop] != '`' {
		return Edit{}, false
	}
	fence := 0
	for start-fence-1 >= 0 && src[start-fence-1] == '`' {
		fence++
	}
	closing := 0
	for stop+closing < len(src) && src[stop+closing] == '`' {
		closing++
	}
	if fence != closing {
		return Edit{}, false
	}
	symbol := strings.TrimSpace(code.String())
	url, ok := resolve(symbol)
	if !ok {
		return Edit{}, false
	}
	literal := string(src[start-fence : stop+closing])
	return Edit{Start: start - fence, End: stop + closing, Replacement: "[" + literal + "](" + url + ")"}, true
}

func flattenHTMLBlock(node *gmast.HTMLBlock, src []byte) (Edit, bool) {
	lines := node.Lines()
	if lines.Len() == 0 {
		return Edit{}, false
	}
	start := lines.At(0).Start
	stop := lines.At(lines.Len() - 1).Stop
	if node.HasClosure() {
		stop = node.ClosureLine.Stop
	}
	return Edit{Start: start, End: stop, Replacement: htmlText(string(src[start:stop])) + "\n"}, true
}

// htmlText returns the text content of an HTML fragment.
func htmlText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// Summary returns the first paragraph of src as a single line.
func Summary(src string) string {
	b := []byte(src)
	root := Parse(b)
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		p, ok := n.(*gmast.Paragraph)
		if !ok {
			continue
		}
		lines := p.Lines()
		parts := make([]string, 0, lines.Len())
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			parts = append(parts, strings.TrimSpace(string(seg.Value(b))))
		}
		return strings.Join(parts, " ")
	}
	return ""
}
