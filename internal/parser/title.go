package parser

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"
	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

type matter struct {
	Title string `yaml:"title"`
}

// Title returns the frontmatter "title" if present, otherwise the text of
// the first level-1 heading, otherwise "". Invalid frontmatter is treated
// as body text.
func Title(data []byte) string {
	var fm matter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		body = data
	}
	if t := strings.TrimSpace(fm.Title); t != "" && err == nil {
		return t
	}
	return firstHeading(body)
}

func firstHeading(body []byte) string {
	doc := gm.Parse(body, gmparser.NewWithExtensions(gmparser.CommonExtensions))
	var title string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		h, ok := node.(*ast.Heading)
		if !entering || !ok || h.Level != 1 {
			return ast.GoToNext
		}
		title = nodeText(h)
		return ast.Terminate
	})
	return title
}

func nodeText(node ast.Node) string {
	var b strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if leaf := n.AsLeaf(); leaf != nil && leaf.Literal != nil {
			b.Write(leaf.Literal)
		}
		return ast.GoToNext
	})
	return strings.TrimSpace(b.String())
}
