package markitdown

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/VoidLight00/voidlight-markitdown-go/internal/omml"
	"github.com/VoidLight00/voidlight-markitdown-go/internal/ooxml"
)

// DocxConverter handles DOCX files.
type DocxConverter struct {
	markitdown *MarkItDown
}

// NewDocxConverter creates a new DocxConverter.
func NewDocxConverter(m *MarkItDown) *DocxConverter {
	return &DocxConverter{markitdown: m}
}

func (c *DocxConverter) Accepts(_ io.ReadSeeker, info StreamInfo) bool {
	if info.Extension == ".docx" {
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
}

func (c *DocxConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read DOCX: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open DOCX ZIP: %w", err)
	}

	rels, _ := ooxml.ParseRelationships(zr, "word/_rels/document.xml.rels")
	comments := parseDocxComments(zr)
	styles := parseDocxStyles(zr)
	styleMap := parseStyleMap(opts.StyleMap)

	docData, err := ooxml.ReadFileFromZip(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("read document.xml: %w", err)
	}

	// Equations are rewritten as $-delimited LaTeX before the HTML pass.
	docData = replaceMathBlocks(docData)

	htmlStr := c.documentToHTML(docData, rels, comments, styles, styleMap, zr)

	htmlConv := NewHTMLConverter(c.markitdown)
	result, err := htmlConv.ConvertString(htmlStr, opts)
	if err != nil {
		return nil, fmt.Errorf("convert DOCX HTML to markdown: %w", err)
	}

	return result, nil
}

// docxStyle holds style information for a document style.
type docxStyle struct {
	name    string
	styleID string
}

// parseDocxStyles reads word/styles.xml so heading detection can match
// on the human-readable style name, not just the style ID.
func parseDocxStyles(zr *zip.Reader) map[string]docxStyle {
	styles := make(map[string]docxStyle)
	data, err := ooxml.ReadFileFromZip(zr, "word/styles.xml")
	if err != nil {
		return styles
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	var currentStyleID string
	var inStyle bool

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "style":
				inStyle = true
				for _, attr := range t.Attr {
					if attr.Name.Local == "styleId" {
						currentStyleID = attr.Value
					}
				}
			case "name":
				if inStyle {
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" {
							styles[currentStyleID] = docxStyle{
								name:    attr.Value,
								styleID: currentStyleID,
							}
						}
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "style" {
				inStyle = false
				currentStyleID = ""
			}
		}
	}
	return styles
}

type docxComment struct {
	id     string
	author string
	text   string
}

func parseDocxComments(zr *zip.Reader) map[string]docxComment {
	comments := make(map[string]docxComment)
	data, err := ooxml.ReadFileFromZip(zr, "word/comments.xml")
	if err != nil {
		return comments
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	var current docxComment
	var inComment bool
	var textBuf strings.Builder

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "comment" {
				inComment = true
				textBuf.Reset()
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "id":
						current.id = attr.Value
					case "author":
						current.author = attr.Value
					}
				}
			}
		case xml.CharData:
			if inComment {
				textBuf.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "comment" && inComment {
				current.text = strings.TrimSpace(textBuf.String())
				comments[current.id] = current
				inComment = false
				current = docxComment{}
			}
		}
	}
	return comments
}

// parseStyleMap parses a custom style mapping of the form
// "StyleID => h2" with one entry per line (or comma-separated).
func parseStyleMap(styleMap string) map[string]int {
	out := make(map[string]int)
	if styleMap == "" {
		return out
	}
	for _, entry := range strings.FieldsFunc(styleMap, func(r rune) bool {
		return r == '\n' || r == ','
	}) {
		parts := strings.SplitN(entry, "=>", 2)
		if len(parts) != 2 {
			continue
		}
		styleID := strings.TrimSpace(parts[0])
		target := strings.ToLower(strings.TrimSpace(parts[1]))
		if styleID == "" || !strings.HasPrefix(target, "h") {
			continue
		}
		level, err := strconv.Atoi(target[1:])
		if err != nil || level < 1 || level > 6 {
			continue
		}
		out[strings.ToLower(styleID)] = level
	}
	return out
}

// replaceMathBlocks swaps OMML math elements for text runs carrying the
// rendered LaTeX, so equations survive the HTML pass as $...$ spans.
// Block equations become their own paragraph.
func replaceMathBlocks(docData []byte) []byte {
	content := string(docData)
	content = replaceXMLBlocks(content, "m:oMathPara", func(block string) string {
		return "<w:p><w:r><w:t>" + mathRunText(block) + "</w:t></w:r></w:p>"
	})
	content = replaceXMLBlocks(content, "m:oMath", func(block string) string {
		return "<w:r><w:t>" + mathRunText(block) + "</w:t></w:r>"
	})
	return []byte(content)
}

// mathRunText converts an OMML block to a $-delimited LaTeX span. A
// block that does not parse, or renders empty, degrades to a
// placeholder rather than dropping silently.
func mathRunText(block string) string {
	fragments, err := omml.Fragments(block)
	if err != nil {
		return "[formula]"
	}
	latex := strings.TrimSpace(strings.Join(fragments, " "))
	if latex == "" {
		return "[formula]"
	}
	return escapeHTMLText("$" + latex + "$")
}

func replaceXMLBlocks(content, tagName string, replace func(block string) string) string {
	openTag := "<" + tagName
	closeTag := "</" + tagName + ">"

	var out strings.Builder
	for {
		start := strings.Index(content, openTag)
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], closeTag)
		if end == -1 {
			break
		}
		end = start + end + len(closeTag)
		out.WriteString(content[:start])
		out.WriteString(replace(content[start:end]))
		content = content[end:]
	}
	out.WriteString(content)
	return out.String()
}

// documentToHTML converts document.xml to HTML for the markdown pass.
func (c *DocxConverter) documentToHTML(docData []byte, rels map[string]ooxml.Relationship, comments map[string]docxComment, styles map[string]docxStyle, styleMap map[string]int, zr *zip.Reader) string {
	var html strings.Builder
	html.WriteString("<html><body>")

	decoder := xml.NewDecoder(bytes.NewReader(docData))

	type state struct {
		inRun       bool
		inText      bool
		inTableCell bool
		bold        bool
		italic      bool
		strike      bool
		styleID     string
		hyperRef    string
		inHyper     bool
		listNumID   string
		inList      bool
	}

	var s state
	var textBuf strings.Builder
	var paragraphs []string
	var currentPara strings.Builder
	var tableRows [][]string
	var currentRow []string
	var cellContent strings.Builder
	var commentRefs []string

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				currentPara.Reset()
				s.bold = false
				s.italic = false
				s.strike = false
				s.styleID = ""
				s.listNumID = ""
				s.inList = false
				commentRefs = nil

			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						s.styleID = attr.Value
					}
				}

			case "numPr":
				s.inList = true

			case "numId":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						s.listNumID = attr.Value
					}
				}

			case "r":
				s.inRun = true
				s.bold = false
				s.italic = false
				s.strike = false

			case "b":
				if s.inRun {
					s.bold = true
					// val="0" explicitly turns the property off.
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" && attr.Value == "0" {
							s.bold = false
						}
					}
				}

			case "i":
				if s.inRun {
					s.italic = true
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" && attr.Value == "0" {
							s.italic = false
						}
					}
				}

			case "strike":
				if s.inRun {
					s.strike = true
				}

			case "t":
				s.inText = true
				textBuf.Reset()

			case "tab":
				if s.inRun {
					currentPara.WriteString("\t")
				}

			case "br":
				if s.inRun {
					currentPara.WriteString("<br/>")
				}

			case "hyperlink":
				s.inHyper = true
				for _, attr := range t.Attr {
					if attr.Name.Space == ooxml.NSRelDoc && attr.Name.Local == "id" {
						if rel, ok := rels[attr.Value]; ok {
							s.hyperRef = rel.Target
						}
					}
				}

			case "tbl":
				tableRows = nil

			case "tr":
				currentRow = nil

			case "tc":
				s.inTableCell = true
				cellContent.Reset()

			case "commentReference":
				for _, attr := range t.Attr {
					if attr.Name.Local == "id" {
						commentRefs = append(commentRefs, attr.Value)
					}
				}

			case "drawing", "pict":
				imgData := c.extractImage(decoder, rels, zr)
				if imgData != "" {
					if s.inTableCell {
						cellContent.WriteString(imgData)
					} else {
						currentPara.WriteString(imgData)
					}
				}
			}

		case xml.CharData:
			if s.inText {
				textBuf.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if s.inText {
					text := escapeHTMLText(textBuf.String())

					if s.bold {
						text = "<b>" + text + "</b>"
					}
					if s.italic {
						text = "<i>" + text + "</i>"
					}
					if s.strike {
						text = "<s>" + text + "</s>"
					}

					if s.inHyper && s.hyperRef != "" {
						text = `<a href="` + escapeHTMLAttr(s.hyperRef) + `">` + text + "</a>"
					}

					if s.inTableCell {
						cellContent.WriteString(text)
					} else {
						currentPara.WriteString(text)
					}
					s.inText = false
				}

			case "r":
				s.inRun = false
				s.bold = false
				s.italic = false

			case "hyperlink":
				s.inHyper = false
				s.hyperRef = ""

			case "p":
				paraText := currentPara.String()

				for _, commentID := range commentRefs {
					if comment, ok := comments[commentID]; ok {
						paraText += fmt.Sprintf(" [comment by %s: %s]", comment.author, comment.text)
					}
				}

				if s.inTableCell {
					cellContent.WriteString(paraText)
					break
				}

				level := docxHeadingLevel(s.styleID, styles, styleMap)
				switch {
				case level > 0:
					tag := fmt.Sprintf("h%d", level)
					paraText = "<" + tag + ">" + paraText + "</" + tag + ">"
				case s.inList && s.listNumID != "0":
					paraText = "<li>" + paraText + "</li>"
				case paraText != "":
					paraText = "<p>" + paraText + "</p>"
				}

				if paraText != "" {
					paragraphs = append(paragraphs, paraText)
				}
				s.styleID = ""

			case "tc":
				currentRow = append(currentRow, cellContent.String())
				s.inTableCell = false

			case "tr":
				tableRows = append(tableRows, currentRow)

			case "tbl":
				if len(tableRows) > 0 {
					var tableBuf strings.Builder
					tableBuf.WriteString("<table>")
					for i, row := range tableRows {
						tableBuf.WriteString("<tr>")
						tag := "td"
						if i == 0 {
							tag = "th"
						}
						for _, cell := range row {
							tableBuf.WriteString("<" + tag + ">" + cell + "</" + tag + ">")
						}
						tableBuf.WriteString("</tr>")
					}
					tableBuf.WriteString("</table>")
					paragraphs = append(paragraphs, tableBuf.String())
				}
			}
		}
	}

	for _, p := range paragraphs {
		html.WriteString(p)
		html.WriteString("\n")
	}

	html.WriteString("</body></html>")
	return html.String()
}

// docxHeadingLevel returns the heading level (1-6) for a style, or 0.
// A custom style map wins over the built-in "Heading N" detection.
func docxHeadingLevel(styleID string, styles map[string]docxStyle, styleMap map[string]int) int {
	if styleID == "" {
		return 0
	}
	lower := strings.ToLower(styleID)

	if level, ok := styleMap[lower]; ok {
		return level
	}

	for i := 1; i <= 6; i++ {
		if lower == fmt.Sprintf("heading%d", i) || lower == fmt.Sprintf("heading %d", i) {
			return i
		}
	}

	if si, ok := styles[styleID]; ok {
		nameLower := strings.ToLower(si.name)
		for i := 1; i <= 6; i++ {
			if nameLower == fmt.Sprintf("heading %d", i) {
				return i
			}
		}
	}

	return 0
}

// extractImage consumes a drawing/pict element and returns an <img> tag
// with the embedded image as a data URI, or "" if none was found.
func (c *DocxConverter) extractImage(decoder *xml.Decoder, rels map[string]ooxml.Relationship, zr *zip.Reader) string {
	depth := 1
	var embedID string
	var altText string

	for depth > 0 {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "blip" {
				for _, attr := range t.Attr {
					if attr.Name.Local == "embed" {
						embedID = attr.Value
					}
				}
			}
			if t.Name.Local == "docPr" {
				for _, attr := range t.Attr {
					if attr.Name.Local == "descr" {
						altText = attr.Value
					}
				}
			}
		case xml.EndElement:
			depth--
		}
	}

	if embedID == "" {
		return ""
	}

	rel, ok := rels[embedID]
	if !ok {
		return ""
	}

	imgData, err := ooxml.ReadFileFromZip(zr, "word/"+rel.Target)
	if err != nil {
		imgData, err = ooxml.ReadFileFromZip(zr, rel.Target)
		if err != nil {
			return ""
		}
	}

	contentType := "image/png"
	switch strings.ToLower(path.Ext(rel.Target)) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".gif":
		contentType = "image/gif"
	case ".bmp":
		contentType = "image/bmp"
	case ".svg":
		contentType = "image/svg+xml"
	}

	b64 := base64.StdEncoding.EncodeToString(imgData)
	src := fmt.Sprintf("data:%s;base64,%s", contentType, b64)

	if altText == "" {
		altText = path.Base(rel.Target)
	}

	return fmt.Sprintf(`<img src="%s" alt="%s"/>`, src, escapeHTMLAttr(altText))
}

func escapeHTMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeHTMLAttr(s string) string {
	s = escapeHTMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
