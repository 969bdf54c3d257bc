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
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/VoidLight00/voidlight-markitdown-go/internal/ooxml"
)

// PptxConverter handles PPTX files.
type PptxConverter struct {
	markitdown *MarkItDown
}

// NewPptxConverter creates a new PptxConverter.
func NewPptxConverter(m *MarkItDown) *PptxConverter {
	return &PptxConverter{markitdown: m}
}

func (c *PptxConverter) Accepts(_ io.ReadSeeker, info StreamInfo) bool {
	if info.Extension == ".pptx" {
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument.presentationml")
}

func (c *PptxConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read PPTX: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PPTX ZIP: %w", err)
	}

	slideOrder, err := c.slideOrder(zr)
	if err != nil {
		return nil, fmt.Errorf("get slide order: %w", err)
	}

	var md strings.Builder

	for slideNum, slidePath := range slideOrder {
		md.WriteString(fmt.Sprintf("\n\n<!-- Slide number: %d -->\n", slideNum+1))

		slideData, err := ooxml.ReadFileFromZip(zr, slidePath)
		if err != nil {
			continue
		}

		md.WriteString(c.renderSlide(slideData))

		if notesPath := c.notesPath(slidePath, zr); notesPath != "" {
			notesData, err := ooxml.ReadFileFromZip(zr, notesPath)
			if err == nil {
				notes := extractNotesText(notesData)
				if strings.TrimSpace(notes) != "" {
					md.WriteString("\n\n### Notes:\n")
					md.WriteString(notes)
				}
			}
		}
	}

	return &DocumentConverterResult{
		Markdown: strings.TrimSpace(md.String()),
	}, nil
}

// slideOrder returns slide file paths in presentation order, falling
// back to lexical slideN.xml order when the rels are unreadable.
func (c *PptxConverter) slideOrder(zr *zip.Reader) ([]string, error) {
	presData, err := ooxml.ReadFileFromZip(zr, "ppt/presentation.xml")
	if err != nil {
		return nil, err
	}

	rels, _ := ooxml.ParseRelationships(zr, "ppt/_rels/presentation.xml.rels")

	decoder := xml.NewDecoder(bytes.NewReader(presData))
	var slideRIDs []string

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local == "sldId" {
				for _, attr := range se.Attr {
					if attr.Name.Local == "id" && strings.Contains(attr.Name.Space, "relationships") {
						slideRIDs = append(slideRIDs, attr.Value)
					}
				}
			}
		}
	}

	var slidePaths []string
	for _, rid := range slideRIDs {
		if rel, ok := rels[rid]; ok {
			slidePaths = append(slidePaths, ooxml.ResolveTarget("ppt/presentation.xml", rel.Target))
		}
	}

	if len(slidePaths) == 0 {
		for _, f := range zr.File {
			if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
				slidePaths = append(slidePaths, f.Name)
			}
		}
		sort.Strings(slidePaths)
	}

	return slidePaths, nil
}

type pptxShape struct {
	top     int64
	left    int64
	text    string
	isTitle bool
	table   [][]string
	altText string
}

// renderSlide extracts the slide's shapes and formats them as markdown
// in top-to-bottom, left-to-right order.
func (c *PptxConverter) renderSlide(slideData []byte) string {
	var root xmlNode
	if err := xml.Unmarshal(slideData, &root); err != nil {
		return ""
	}

	var shapes []pptxShape
	collectShapes(&root, &shapes)

	sort.SliceStable(shapes, func(i, j int) bool {
		if shapes[i].top != shapes[j].top {
			return shapes[i].top < shapes[j].top
		}
		return shapes[i].left < shapes[j].left
	})

	var md strings.Builder
	for _, shape := range shapes {
		switch {
		case shape.altText != "":
			md.WriteString(fmt.Sprintf("\n![%s](image)\n", sanitizeAltText(shape.altText)))
		case len(shape.table) > 0:
			md.WriteString(c.tableToMarkdown(shape.table))
		case shape.isTitle:
			if text := strings.TrimSpace(shape.text); text != "" {
				md.WriteString("# " + text + "\n")
			}
		case shape.text != "":
			md.WriteString(shape.text + "\n")
		}
	}

	return md.String()
}

// sanitizeAltText cleans alt text for markdown image syntax.
func sanitizeAltText(s string) string {
	s = strings.NewReplacer("\n", " ", "\r", " ", "[", " ", "]", " ").Replace(s)
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// xmlNode is a generic XML tree node.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
	Content  string     `xml:",chardata"`
}

func (n *xmlNode) getAttr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n *xmlNode) findChild(local string) *xmlNode {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
	}
	return nil
}

func (n *xmlNode) findAll(local string) []*xmlNode {
	var result []*xmlNode
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			result = append(result, &n.Children[i])
		}
	}
	return result
}

// findDeep finds the first descendant with the given local name.
func (n *xmlNode) findDeep(local string) *xmlNode {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
		if found := n.Children[i].findDeep(local); found != nil {
			return found
		}
	}
	return nil
}

// findAllDeep finds all descendants with the given local name.
func (n *xmlNode) findAllDeep(local string) []*xmlNode {
	var result []*xmlNode
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			result = append(result, &n.Children[i])
		}
		result = append(result, n.Children[i].findAllDeep(local)...)
	}
	return result
}

// allText extracts all text content recursively.
func (n *xmlNode) allText() string {
	if n.Content != "" {
		return n.Content
	}
	var parts []string
	for i := range n.Children {
		if t := n.Children[i].allText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "")
}

// collectShapes walks the XML tree and extracts renderable shapes.
func collectShapes(node *xmlNode, shapes *[]pptxShape) {
	switch node.XMLName.Local {
	case "sp":
		if shape := extractTextShape(node); shape != nil {
			*shapes = append(*shapes, *shape)
		}
		return
	case "pic":
		if shape := extractPicture(node); shape != nil {
			*shapes = append(*shapes, *shape)
		}
		return
	case "graphicFrame":
		if shape := extractGraphicFrame(node); shape != nil {
			*shapes = append(*shapes, *shape)
		}
		return
	}
	for i := range node.Children {
		collectShapes(&node.Children[i], shapes)
	}
}

func extractTextShape(node *xmlNode) *pptxShape {
	shape := &pptxShape{
		top:  math.MaxInt64,
		left: math.MaxInt64,
	}

	// Title placeholders become the slide heading.
	if nvSpPr := node.findChild("nvSpPr"); nvSpPr != nil {
		if nvPr := nvSpPr.findChild("nvPr"); nvPr != nil {
			if ph := nvPr.findChild("ph"); ph != nil {
				phType := ph.getAttr("type")
				shape.isTitle = phType == "title" || phType == "ctrTitle"
			}
		}
	}

	extractShapePosition(node, shape)

	if txBody := node.findChild("txBody"); txBody != nil {
		shape.text = textFromTxBody(txBody)
	}

	if strings.TrimSpace(shape.text) == "" {
		return nil
	}
	return shape
}

func extractPicture(node *xmlNode) *pptxShape {
	shape := &pptxShape{
		top:  math.MaxInt64,
		left: math.MaxInt64,
	}

	if nvPicPr := node.findChild("nvPicPr"); nvPicPr != nil {
		if cNvPr := nvPicPr.findChild("cNvPr"); cNvPr != nil {
			shape.altText = cNvPr.getAttr("descr")
		}
	}

	extractShapePosition(node, shape)

	if shape.altText == "" {
		return nil
	}
	return shape
}

func extractGraphicFrame(node *xmlNode) *pptxShape {
	shape := &pptxShape{
		top:  math.MaxInt64,
		left: math.MaxInt64,
	}

	extractShapePosition(node, shape)

	if tbl := node.findDeep("tbl"); tbl != nil {
		shape.table = extractSlideTable(tbl)
		if len(shape.table) > 0 {
			return shape
		}
	}
	return nil
}

// extractShapePosition reads position from spPr/xfrm/off.
func extractShapePosition(node *xmlNode, shape *pptxShape) {
	spPr := node.findChild("spPr")
	if spPr == nil {
		return
	}
	xfrm := spPr.findChild("xfrm")
	if xfrm == nil {
		return
	}
	off := xfrm.findChild("off")
	if off == nil {
		return
	}
	if v, err := strconv.ParseInt(off.getAttr("x"), 10, 64); err == nil {
		shape.left = v
	}
	if v, err := strconv.ParseInt(off.getAttr("y"), 10, 64); err == nil {
		shape.top = v
	}
}

// textFromTxBody extracts paragraph text from a txBody element.
func textFromTxBody(txBody *xmlNode) string {
	var parts []string
	for _, p := range txBody.findAll("p") {
		var lineText []string
		for _, r := range p.findAllDeep("t") {
			if t := r.allText(); t != "" {
				lineText = append(lineText, t)
			}
		}
		if len(lineText) > 0 {
			parts = append(parts, strings.Join(lineText, ""))
		}
	}
	return strings.Join(parts, "\n")
}

// extractSlideTable extracts a table from a tbl element.
func extractSlideTable(tbl *xmlNode) [][]string {
	var rows [][]string
	for _, tr := range tbl.findAll("tr") {
		var row []string
		for _, tc := range tr.findAll("tc") {
			if txBody := tc.findChild("txBody"); txBody != nil {
				row = append(row, strings.TrimSpace(textFromTxBody(txBody)))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// tableToMarkdown converts a 2D table to markdown, escaping pipes.
func (c *PptxConverter) tableToMarkdown(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	escaped := make([][]string, len(rows))
	for i, row := range rows {
		escaped[i] = make([]string, len(row))
		for j, cell := range row {
			cell = strings.ReplaceAll(cell, "\n", " ")
			escaped[i][j] = strings.ReplaceAll(cell, "|", `\|`)
		}
	}
	return renderMarkdownTable(escaped)
}

// notesPath returns the notes slide path for a given slide, or "".
func (c *PptxConverter) notesPath(slidePath string, zr *zip.Reader) string {
	rels, err := ooxml.ParseRelationships(zr, ooxml.RelsPathFor(slidePath))
	if err != nil {
		return ""
	}

	for _, rel := range rels {
		if strings.Contains(rel.Type, "notesSlide") {
			return ooxml.ResolveTarget(slidePath, rel.Target)
		}
	}
	return ""
}

// extractNotesText extracts text content from a notes slide.
func extractNotesText(data []byte) string {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return ""
	}

	var parts []string
	for _, txBody := range root.findAllDeep("txBody") {
		if text := strings.TrimSpace(textFromTxBody(txBody)); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n")
}
