package parser

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("not valid utf-8 text")
	}
	return string(data), nil
}

// parseMarkdown renders markdown to plain text by walking the goldmark AST.
func parseMarkdown(data []byte) (string, error) {
	src, err := parseText(data)
	if err != nil {
		return "", err
	}
	source := []byte(src)

	mdParser := goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()
	root := mdParser.Parse(gmtext.NewReader(source))

	var b strings.Builder
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString("\n")
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return collapseWhitespace(b.String()), nil
}

func parseHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, template").Remove()
	doc.Find("p, div, br, li, h1, h2, h3, h4, h5, h6, tr, section, article").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return collapseWhitespace(doc.Text()), nil
	}
	return collapseWhitespace(body.Text()), nil
}

func parseHTMLAlternate(data []byte) (string, error) {
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(string(data))
	if err != nil {
		return "", err
	}
	return collapseWhitespace(markdown), nil
}
