package segment

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/docsweep/docsweep/internal/model"
)

// MarkdownSegmenter splits markdown documents on heading boundaries using a
// goldmark AST walk. Both ATX (`# Title`) and setext (underlined) headings
// delimit sections. Heading levels do not nest: every heading starts a new
// flat section, which matches how duplicated Q&A blocks repeat in practice.
type MarkdownSegmenter struct{}

// Segment implements Segmenter.
func (MarkdownSegmenter) Segment(path string, src []byte) ([]*model.Section, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(gmtext.NewReader(src))

	var boundaries []boundary
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}

		seg := h.Lines().At(0)
		start := lineStart(src, seg.Start)
		boundaries = append(boundaries, boundary{
			start:        start,
			heading:      headingText(h, src),
			headingLines: headingLineCount(src, start),
		})
	}

	return sectionsFromBoundaries(path, src, boundaries), nil
}

// headingText extracts the plain text of a heading node.
func headingText(h *ast.Heading, src []byte) string {
	var buf bytes.Buffer
	for c := h.FirstChild(); c != nil; c = c.NextSibling() {
		collectText(c, src, &buf)
	}
	return strings.TrimSpace(buf.String())
}

// collectText appends the text content of an inline node and its children.
func collectText(n ast.Node, src []byte, buf *bytes.Buffer) {
	if t, ok := n.(*ast.Text); ok {
		buf.Write(t.Value(src))
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		collectText(c, src, buf)
	}
}

// headingLineCount returns how many source lines the heading at the given
// line start occupies: one for ATX headings, two for setext headings (the
// text line plus its underline).
func headingLineCount(src []byte, start int) int {
	rest := src[start:]
	if nl := bytes.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	if strings.HasPrefix(strings.TrimLeft(string(rest), " "), "#") {
		return 1
	}
	return 2
}
