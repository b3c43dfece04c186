package storage

import (
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// previewMaxRunes caps the document preview returned with a record detail.
const previewMaxRunes = 200

var markdown = goldmark.New()

// TitleFromMarkdown derives a title for a document: the first level-1
// heading, else the first level-2 heading, else the file stem of rel with
// separators spaced out.
func TitleFromMarkdown(content, rel string) string {
	source := []byte(content)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var firstH1, firstH2 string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		switch {
		case heading.Level == 1 && firstH1 == "":
			firstH1 = nodeText(heading, source)
		case heading.Level == 2 && firstH2 == "":
			firstH2 = nodeText(heading, source)
		}
		return ast.WalkContinue, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	if firstH2 != "" {
		return firstH2
	}
	stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return strings.TrimSpace(stem)
}

// PreviewFromMarkdown returns the text of the document's first paragraph,
// truncated to previewMaxRunes.
func PreviewFromMarkdown(content string) string {
	source := []byte(content)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var preview string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || preview != "" {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.Paragraph); ok {
			preview = nodeText(n, source)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	runes := []rune(preview)
	if len(runes) > previewMaxRunes {
		preview = string(runes[:previewMaxRunes])
	}
	return preview
}

// nodeText collects the raw text under a node.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := child.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
