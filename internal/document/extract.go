// Package document turns uploaded files into plain text ready for splitting.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

var (
	// ErrUnsupportedFormat is returned for file extensions that cannot be extracted.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrInvalidEncoding is returned when the content is not valid UTF-8.
	ErrInvalidEncoding = errors.New("document is not valid UTF-8")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is the text extracted from an uploaded file.
type Document struct {
	Title  string
	Text   string // Blocks separated by blank lines
	Format string
}

// Extractor extracts text from uploaded files.
type Extractor struct {
	parser goldmark.Markdown
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Extract returns the title and text of content, choosing the parser by the
// filename extension. Markdown blocks are emitted one per paragraph so that
// paragraph-aware splitting keeps working on the result.
func (e *Extractor) Extract(content []byte, filename string) (Document, error) {
	if !utf8.Valid(content) {
		return Document{}, ErrInvalidEncoding
	}
	content = bytes.TrimPrefix(content, utf8BOM)
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))

	format, err := FormatOf(filename)
	if err != nil {
		return Document{}, err
	}
	if format == FormatMarkdown {
		return e.extractMarkdown(content, filename), nil
	}
	return Document{
		Title:  TitleFromFilename(filename),
		Text:   string(content),
		Format: FormatText,
	}, nil
}

// FormatOf returns the document format for filename based on its extension.
func FormatOf(filename string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".txt", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func (e *Extractor) extractMarkdown(content []byte, filename string) Document {
	doc := e.parser.Parser().Parse(text.NewReader(content))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if b := strings.TrimSpace(blockText(n, content)); b != "" {
			blocks = append(blocks, b)
		}
	}

	return Document{
		Title:  extractTitle(doc, content, filename),
		Text:   strings.Join(blocks, "\n\n"),
		Format: FormatMarkdown,
	}
}

// blockText renders a single block node as plain text.
func blockText(n ast.Node, src []byte) string {
	switch node := n.(type) {
	case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
		return inlineText(n, src)

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var b strings.Builder
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			b.Write(line.Value(src))
		}
		return strings.TrimRight(b.String(), "\n")

	case *ast.List:
		var items []string
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			items = append(items, "- "+childBlocks(item, src, "\n"))
		}
		return strings.Join(items, "\n")

	case *ast.Blockquote:
		return childBlocks(node, src, "\n\n")

	case *east.Table:
		var rows []string
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			rows = append(rows, tableRowText(row, src))
		}
		return strings.Join(rows, "\n")

	case *ast.ThematicBreak, *ast.HTMLBlock:
		return ""

	default:
		return inlineText(n, src)
	}
}

func childBlocks(n ast.Node, src []byte, sep string) string {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := strings.TrimSpace(blockText(c, src)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, sep)
}

// inlineText collects the text of n, keeping soft and hard line breaks.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(src))
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return b.String()
}

// tableRowText formats a header or body row with pipe separators.
func tableRowText(row ast.Node, src []byte) string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*east.TableCell); ok {
			cells = append(cells, strings.TrimSpace(inlineText(cell, src)))
		}
	}
	return strings.Join(cells, " | ")
}

// extractTitle picks the first H1, then the first H2, then the filename.
func extractTitle(doc ast.Node, src []byte, filename string) string {
	var firstH1, firstH2 string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		headingText := strings.TrimSpace(inlineText(heading, src))
		if heading.Level == 1 && firstH1 == "" {
			firstH1 = headingText
			return ast.WalkStop, nil
		}
		if heading.Level == 2 && firstH2 == "" {
			firstH2 = headingText
		}
		return ast.WalkSkipChildren, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	if firstH2 != "" {
		return firstH2
	}
	return TitleFromFilename(filename)
}

// TitleFromFilename removes the extension and capitalizes each word.
func TitleFromFilename(filename string) string {
	name := filepath.Base(filename)
	if ext := filepath.Ext(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}

	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}
