// Copyright 2026 VoidLight
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package markitdown

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/responses"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/ledongthuc/pdf"

	"github.com/VoidLight00/voidlight-markitdown-go/capability"
)

var (
	pdfiumPool     pdfium.Pool
	pdfiumPoolOnce sync.Once
	pdfiumPoolErr  error
)

func initPdfiumPool() {
	pdfiumPool, pdfiumPoolErr = webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
}

// PdfConverter handles PDF files. When the PDFium WebAssembly runtime is
// functional it extracts structured text with heading and emphasis
// reconstruction; otherwise it degrades to a pure-Go text extractor.
type PdfConverter struct {
	markitdown *MarkItDown
}

// NewPdfConverter creates a new PdfConverter.
func NewPdfConverter(m *MarkItDown) *PdfConverter {
	return &PdfConverter{markitdown: m}
}

func (c *PdfConverter) Accepts(_ io.ReadSeeker, info StreamInfo) bool {
	if info.Extension == ".pdf" {
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/pdf")
}

func (c *PdfConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read PDF: %w", err)
	}

	var md string
	if c.markitdown.capabilities().Functional(capability.BackendPDFium) {
		md, err = c.convertWithPdfium(data)
		if err != nil {
			// A broken wasm runtime should not make PDFs unconvertible.
			md, err = c.convertPureGo(data)
		}
	} else {
		md, err = c.convertPureGo(data)
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(md) == "" {
		return &DocumentConverterResult{
			Markdown: "[No readable text content found in PDF]",
		}, nil
	}

	return &DocumentConverterResult{
		Markdown: md,
	}, nil
}

func (c *PdfConverter) convertWithPdfium(data []byte) (string, error) {
	pdfiumPoolOnce.Do(initPdfiumPool)
	if pdfiumPoolErr != nil {
		return "", fmt.Errorf("init pdfium: %w", pdfiumPoolErr)
	}

	instance, err := pdfiumPool.GetInstance(30 * time.Second)
	if err != nil {
		return "", fmt.Errorf("get pdfium instance: %w", err)
	}
	defer instance.Close()

	doc, err := instance.OpenDocument(&requests.OpenDocument{
		File: &data,
	})
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	defer instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pageCountResp, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return "", fmt.Errorf("get page count: %w", err)
	}

	var md strings.Builder
	for i := 0; i < pageCountResp.PageCount; i++ {
		text := extractStructuredPage(instance, doc, i)
		if text == "" {
			continue
		}
		md.WriteString(text)
		md.WriteString("\n\n")
	}
	return md.String(), nil
}

// pdfRect is a positioned text rectangle with font metadata from PDFium.
type pdfRect struct {
	text     string
	left     float64
	top      float64
	bottom   float64
	fontSize float64
	fontName string
}

// pdfTextLine is a line of text built from rects grouped by Y position.
type pdfTextLine struct {
	rects    []pdfRect
	top      float64
	bottom   float64
	fontSize float64
	fontName string
}

func (l *pdfTextLine) text() string {
	var b strings.Builder
	for _, r := range l.rects {
		b.WriteString(r.text)
	}
	return b.String()
}

// extractStructuredPage extracts page text with markdown formatting.
func extractStructuredPage(instance pdfium.Pdfium, doc *responses.OpenDocument, pageIdx int) string {
	structured, err := instance.GetPageTextStructured(&requests.GetPageTextStructured{
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: doc.Document,
				Index:    pageIdx,
			},
		},
		Mode:                   requests.GetPageTextStructuredModeRects,
		CollectFontInformation: true,
	})
	if err != nil || len(structured.Rects) == 0 {
		return extractPlainPage(instance, doc, pageIdx)
	}

	var rects []pdfRect
	for _, r := range structured.Rects {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		pr := pdfRect{
			text:   r.Text,
			left:   r.PointPosition.Left,
			top:    r.PointPosition.Top,
			bottom: r.PointPosition.Bottom,
		}
		if r.FontInformation != nil {
			pr.fontSize = r.FontInformation.Size
			pr.fontName = r.FontInformation.Name
		}
		rects = append(rects, pr)
	}
	if len(rects) == 0 {
		return ""
	}

	lines := groupRectsIntoLines(rects)
	return renderMarkdownFromLines(lines, detectBodyFontSize(lines))
}

// extractPlainPage is the fallback plain text extractor.
func extractPlainPage(instance pdfium.Pdfium, doc *responses.OpenDocument, pageIdx int) string {
	textResp, err := instance.GetPageText(&requests.GetPageText{
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: doc.Document,
				Index:    pageIdx,
			},
		},
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(textResp.Text)
}

// groupRectsIntoLines groups rects into lines by vertical position, top of
// page first, left-to-right within a line.
func groupRectsIntoLines(rects []pdfRect) []pdfTextLine {
	sort.Slice(rects, func(i, j int) bool {
		if math.Abs(rects[i].top-rects[j].top) < 2 {
			return rects[i].left < rects[j].left
		}
		return rects[i].top > rects[j].top
	})

	var lines []pdfTextLine
	for _, r := range rects {
		merged := false
		for i := range lines {
			if math.Abs(lines[i].top-r.top) < 3 {
				lines[i].rects = append(lines[i].rects, r)
				merged = true
				break
			}
		}
		if !merged {
			lines = append(lines, pdfTextLine{
				rects:  []pdfRect{r},
				top:    r.top,
				bottom: r.bottom,
			})
		}
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].top > lines[j].top
	})

	for i := range lines {
		sort.Slice(lines[i].rects, func(a, b int) bool {
			return lines[i].rects[a].left < lines[i].rects[b].left
		})
		lines[i].fontSize, lines[i].fontName = dominantFont(lines[i].rects)
	}

	return lines
}

// dominantFont returns the font size and name covering the most text.
func dominantFont(rects []pdfRect) (float64, string) {
	type fontKey struct {
		size float64
		name string
	}
	counts := map[fontKey]int{}
	for _, r := range rects {
		k := fontKey{size: math.Round(r.fontSize*10) / 10, name: r.fontName}
		counts[k] += len(r.text)
	}
	var bestKey fontKey
	bestCount := 0
	for k, n := range counts {
		if n > bestCount {
			bestCount = n
			bestKey = k
		}
	}
	return bestKey.size, bestKey.name
}

// detectBodyFontSize finds the most common font size weighted by
// character count, which represents the body text.
func detectBodyFontSize(lines []pdfTextLine) float64 {
	sizeCounts := map[float64]int{}
	for _, l := range lines {
		for _, r := range l.rects {
			rounded := math.Round(r.fontSize*10) / 10
			sizeCounts[rounded] += len(strings.TrimSpace(r.text))
		}
	}

	var bodySize float64
	maxCount := 0
	for size, count := range sizeCounts {
		if count > maxCount {
			maxCount = count
			bodySize = size
		}
	}
	return bodySize
}

func fontIsBold(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "bold") ||
		strings.Contains(lower, "medi") ||
		strings.HasSuffix(lower, "bd")
}

func fontIsItalic(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "ital") ||
		strings.Contains(lower, "obli") ||
		strings.HasSuffix(lower, "-it")
}

func fontIsMono(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "mono") ||
		strings.Contains(lower, "courier") ||
		strings.Contains(lower, "typewriter")
}

// headingLevel maps a font size relative to the body size to a markdown
// heading level. Returns 0 for body text.
func headingLevel(fontSize, bodySize float64, isBold bool) int {
	if bodySize <= 0 {
		return 0
	}
	ratio := fontSize / bodySize
	switch {
	case ratio >= 2.0:
		return 1
	case ratio >= 1.5:
		return 2
	case ratio >= 1.1:
		if isBold {
			return 3
		}
		return 4
	default:
		return 0
	}
}

// renderMarkdownFromLines converts structured PDF lines into markdown.
func renderMarkdownFromLines(lines []pdfTextLine, bodySize float64) string {
	var md strings.Builder
	prevWasHeading := false

	for i, line := range lines {
		rawText := strings.TrimSpace(line.text())
		if rawText == "" {
			continue
		}

		// Drop tiny standalone annotations like footnote markers.
		if line.fontSize > 0 && bodySize > 0 &&
			line.fontSize < bodySize*0.6 && len(rawText) <= 3 {
			continue
		}

		isBold := fontIsBold(line.fontName)
		level := headingLevel(line.fontSize, bodySize, isBold)

		// Short standalone bold lines at body size read as subheadings
		// (e.g. "References").
		if level == 0 && isBold && line.fontSize >= bodySize && len(rawText) < 80 {
			level = 4
		}

		lineMarkdown := strings.TrimSpace(buildLineMarkdown(line.rects, bodySize))
		if lineMarkdown == "" {
			continue
		}

		if level > 0 {
			if md.Len() > 0 {
				md.WriteString("\n")
			}
			md.WriteString(strings.Repeat("#", level))
			md.WriteString(" ")
			md.WriteString(stripMarkdownFormatting(lineMarkdown))
			md.WriteString("\n\n")
			prevWasHeading = true
			continue
		}

		// A vertical gap well above the line height is a paragraph break.
		if i > 0 && !prevWasHeading {
			prevLine := lines[i-1]
			gap := prevLine.bottom - line.top
			lineHeight := line.top - line.bottom
			if lineHeight <= 0 {
				lineHeight = bodySize
			}
			if gap > lineHeight*1.5 {
				md.WriteString("\n")
			}
		}

		md.WriteString(lineMarkdown)
		md.WriteString("\n")
		prevWasHeading = false
	}

	return md.String()
}

// buildLineMarkdown renders a line's rects with inline bold/italic/code
// markers, merging adjacent rects that share formatting.
func buildLineMarkdown(rects []pdfRect, bodySize float64) string {
	type fmtRun struct {
		text   string
		bold   bool
		italic bool
		mono   bool
	}

	var runs []fmtRun
	for _, r := range rects {
		text := r.text
		if strings.TrimSpace(text) == "" {
			continue
		}
		if r.fontSize > 0 && bodySize > 0 &&
			r.fontSize < bodySize*0.6 && len(strings.TrimSpace(text)) <= 3 {
			continue
		}

		run := fmtRun{
			text:   text,
			bold:   fontIsBold(r.fontName),
			italic: fontIsItalic(r.fontName),
			mono:   fontIsMono(r.fontName),
		}
		if len(runs) > 0 {
			prev := &runs[len(runs)-1]
			if prev.bold == run.bold && prev.italic == run.italic && prev.mono == run.mono {
				prev.text += text
				continue
			}
		}
		runs = append(runs, run)
	}

	var b strings.Builder
	for _, run := range runs {
		marker := ""
		switch {
		case run.mono:
			b.WriteString("`")
			b.WriteString(strings.TrimSpace(run.text))
			b.WriteString("`")
			if strings.HasSuffix(run.text, " ") {
				b.WriteString(" ")
			}
			continue
		case run.bold && run.italic:
			marker = "***"
		case run.bold:
			marker = "**"
		case run.italic:
			marker = "*"
		}
		if marker == "" {
			b.WriteString(run.text)
			continue
		}
		trimmed := strings.TrimRight(run.text, " ")
		b.WriteString(marker)
		b.WriteString(trimmed)
		b.WriteString(marker)
		if len(run.text) > len(trimmed) {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// stripMarkdownFormatting removes inline markers for use in headings.
func stripMarkdownFormatting(s string) string {
	s = strings.ReplaceAll(s, "***", "")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}

// convertPureGo extracts text without PDFium, losing font structure but
// keeping line order.
func (c *PdfConverter) convertPureGo(data []byte) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	var md strings.Builder
	numPages := pdfReader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text := strings.TrimSpace(extractPageTextPureGo(page))
		if text == "" {
			continue
		}

		md.WriteString(text)
		md.WriteString("\n\n")
	}

	return md.String(), nil
}

// extractPageTextPureGo extracts text from a page via GetTextByRow, with
// a positional fallback over Content().Text.
func extractPageTextPureGo(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var result strings.Builder
		for _, row := range rows {
			var lineText strings.Builder
			prevWasEmpty := false
			for _, word := range row.Content {
				s := word.S
				if s == "" {
					prevWasEmpty = true
					continue
				}
				// An empty string between non-empty strings marks a
				// word boundary.
				if lineText.Len() > 0 && prevWasEmpty {
					last := lineText.String()
					if len(last) > 0 && last[len(last)-1] != ' ' {
						lineText.WriteString(" ")
					}
				}
				lineText.WriteString(s)
				prevWasEmpty = false
			}
			text := strings.TrimSpace(lineText.String())
			if text != "" {
				result.WriteString(text)
				result.WriteString("\n")
			}
		}
		if strings.TrimSpace(result.String()) != "" {
			return result.String()
		}
	}

	content := page.Content()
	if len(content.Text) == 0 {
		return ""
	}

	type textElem struct {
		x, y, size float64
		text       string
	}
	var elements []textElem
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		elements = append(elements, textElem{x: t.X, y: t.Y, size: t.FontSize, text: t.S})
	}
	if len(elements) == 0 {
		return ""
	}

	yTolerance := 3.0
	if elements[0].size > 0 {
		yTolerance = elements[0].size * 0.3
	}

	type textLine struct {
		y     float64
		elems []textElem
	}
	var lines []textLine
	for _, elem := range elements {
		found := false
		for i := range lines {
			if math.Abs(lines[i].y-elem.y) < yTolerance {
				lines[i].elems = append(lines[i].elems, elem)
				found = true
				break
			}
		}
		if !found {
			lines = append(lines, textLine{y: elem.y, elems: []textElem{elem}})
		}
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].y > lines[j].y
	})

	var result strings.Builder
	for _, ln := range lines {
		sort.Slice(ln.elems, func(i, j int) bool {
			return ln.elems[i].x < ln.elems[j].x
		})

		var lineText strings.Builder
		var lastX, lastWidth float64
		first := true
		for _, elem := range ln.elems {
			if !first {
				gap := elem.x - (lastX + lastWidth)
				threshold := elem.size * 0.2
				if threshold < 1.0 {
					threshold = 1.0
				}
				if gap > threshold {
					lineText.WriteString(" ")
				}
			}
			lineText.WriteString(elem.text)
			lastX = elem.x
			lastWidth = float64(len([]rune(elem.text))) * elem.size * 0.55
			first = false
		}

		if text := lineText.String(); strings.TrimSpace(text) != "" {
			result.WriteString(text)
			result.WriteString("\n")
		}
	}

	return result.String()
}
