// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	fontFamily = "Helvetica"
	bodySize   = 11.0
	lineHeight = 5.5
	margin     = 20.0
	indentStep = 6.0
)

var headingSizes = []float64{16, 14, 12.5}

// RenderPDF writes markdown as an A4 PDF at path with title on top.
// Model responses are Markdown, so headings, emphasis and lists are kept.
// Text is set in the core Helvetica font; characters outside cp1252 are
// replaced.
func RenderPDF(path, title, markdown string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("pdf-summarizer", true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	r := &pdfRenderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	if title != "" {
		pdf.SetFont(fontFamily, "B", 18)
		pdf.MultiCell(0, 9, r.tr(title), "", "L", false)
		pdf.Ln(4)
	}

	src := []byte(markdown)
	r.src = src
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	r.blocks(doc, 0)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing PDF %s: %w", path, err)
	}
	return nil
}

type pdfRenderer struct {
	pdf *fpdf.Fpdf
	src []byte
	tr  func(string) string

	// sameLine is set after a list marker so the item text follows it.
	sameLine bool
}

func (r *pdfRenderer) indent(depth int) {
	left := margin + indentStep*float64(depth)
	r.pdf.SetLeftMargin(left)
	if r.sameLine {
		r.sameLine = false
		return
	}
	r.pdf.SetX(left)
}

func (r *pdfRenderer) blocks(n ast.Node, depth int) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Heading:
			r.indent(depth)
			level := v.Level
			if level > len(headingSizes) {
				level = len(headingSizes)
			}
			size := headingSizes[level-1]
			r.pdf.Ln(2)
			r.pdf.SetFont(fontFamily, "B", size)
			r.pdf.MultiCell(0, size*0.5, r.tr(plainText(v, r.src)), "", "L", false)
			r.pdf.Ln(1)

		case *ast.Paragraph:
			r.indent(depth)
			r.inline(v, false, false)
			r.pdf.Ln(lineHeight)
			r.pdf.Ln(1.5)

		case *ast.TextBlock:
			r.indent(depth)
			r.inline(v, false, false)
			r.pdf.Ln(lineHeight)

		case *ast.List:
			r.list(v, depth)
			r.pdf.Ln(1)

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			r.indent(depth)
			r.pdf.SetFont("Courier", "", 9)
			lines := c.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				line := strings.TrimRight(string(seg.Value(r.src)), "\n")
				r.pdf.MultiCell(0, 4.5, r.tr(line), "", "L", false)
			}
			r.pdf.Ln(1.5)

		case *ast.ThematicBreak:
			w, _ := r.pdf.GetPageSize()
			y := r.pdf.GetY() + 2
			r.pdf.Line(margin, y, w-margin, y)
			r.pdf.Ln(4)

		case *ast.Blockquote:
			r.blocks(v, depth+1)

		default:
			r.blocks(c, depth)
		}
	}
	r.pdf.SetLeftMargin(margin + indentStep*float64(depth))
}

func (r *pdfRenderer) list(l *ast.List, depth int) {
	number := l.Start
	if number == 0 {
		number = 1
	}
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", number)
			number++
		}
		r.indent(depth + 1)
		r.pdf.SetFont(fontFamily, "", bodySize)
		r.pdf.Write(lineHeight, r.tr(marker))
		r.sameLine = true
		r.blocks(item, depth+1)
		r.sameLine = false
	}
	r.pdf.SetLeftMargin(margin + indentStep*float64(depth))
}

func (r *pdfRenderer) inline(n ast.Node, bold, italic bool) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			r.write(string(v.Segment.Value(r.src)), bold, italic)
			if v.HardLineBreak() {
				r.pdf.Ln(lineHeight)
			} else if v.SoftLineBreak() {
				r.write(" ", bold, italic)
			}
		case *ast.String:
			r.write(string(v.Value), bold, italic)
		case *ast.Emphasis:
			r.inline(v, bold || v.Level >= 2, italic || v.Level == 1)
		case *ast.AutoLink:
			r.write(string(v.URL(r.src)), bold, italic)
		default:
			r.inline(c, bold, italic)
		}
	}
}

func (r *pdfRenderer) write(s string, bold, italic bool) {
	style := ""
	if bold {
		style += "B"
	}
	if italic {
		style += "I"
	}
	r.pdf.SetFont(fontFamily, style, bodySize)
	r.pdf.Write(lineHeight, r.tr(s))
}

// plainText concatenates the text under n.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
