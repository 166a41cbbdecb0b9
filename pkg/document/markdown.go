package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings are given
// synthetic font sizes by level so the font-based header detector can run on
// them like on a PDF.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read markdown: %v", ErrUnreadable, err)
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	doc := New(titleFromFilename(filename), filename)
	page := Page{Number: 1}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			heading := string(node.Text(src))
			appendLine(&page, heading, headingFontSize(node.Level))
			if node.Level == 1 && doc.Title == titleFromFilename(filename) {
				doc.Title = heading
			}
		default:
			for _, line := range strings.Split(markdownBlockText(n, src), "\n") {
				appendLine(&page, line, bodyFontSize)
			}
		}
	}

	if len(page.Lines) > 0 {
		doc.Pages = append(doc.Pages, page)
	}
	if doc.Empty() {
		return nil, fmt.Errorf("%w: markdown contains no text", ErrUnreadable)
	}
	return doc, nil
}

// markdownBlockText gets the text content of a goldmark AST node.
func markdownBlockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	// Also handle inline children.
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(markdownBlockText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
