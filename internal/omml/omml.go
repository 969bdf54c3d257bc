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

// Package omml renders Office Math Markup Language (OMML), the equation
// format embedded in DOCX documents, as LaTeX.
package omml

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Namespace is the OMML XML namespace.
const Namespace = "http://schemas.openxmlformats.org/officeDocument/2006/math"

// element is a generic view of a parsed OMML node.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
	Content  string     `xml:",chardata"`
}

func (e *element) child(name string) *element {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == name {
			return &e.Children[i]
		}
	}
	return nil
}

func (e *element) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Fragments parses a chunk of document XML and returns the LaTeX for
// each m:oMath element found, in document order. The chunk may be a
// bare oMath element, an oMathPara wrapper, or any mix of both.
func Fragments(xmlStr string) ([]string, error) {
	wrapped := `<root xmlns:m="` + Namespace + `">` + xmlStr + `</root>`
	var root element
	if err := xml.Unmarshal([]byte(wrapped), &root); err != nil {
		return nil, fmt.Errorf("parse OMML: %w", err)
	}

	var out []string
	collectMath(&root, &out)
	return out, nil
}

func collectMath(e *element, out *[]string) {
	for i := range e.Children {
		child := &e.Children[i]
		if child.XMLName.Local == "oMath" {
			*out = append(*out, renderChildren(child))
			continue
		}
		collectMath(child, out)
	}
}

// escapeText backslash-escapes LaTeX special characters, leaving
// already-escaped ones alone.
func escapeText(s string) string {
	var b strings.Builder
	var prev rune
	for _, r := range s {
		if latexSpecial[r] && prev != '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// applyFormat fills a single-argument format, or concatenates when the
// looked-up value turned out to be a literal character rather than a
// format.
func applyFormat(format, arg string) string {
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, arg)
	}
	return format + arg
}

// props holds the fields rendering cares about from a *Pr properties
// element.
type props struct {
	text   string
	chr    string
	pos    string
	begChr string
	endChr string
	kind   string
}

func parseProps(e *element) *props {
	p := &props{}
	if e == nil {
		return p
	}
	for i := range e.Children {
		child := &e.Children[i]
		switch child.XMLName.Local {
		case "brk":
			p.text += rowBreak
		case "chr":
			p.chr = child.attr("val")
		case "pos":
			p.pos = child.attr("val")
		case "begChr":
			p.begChr = child.attr("val")
		case "endChr":
			p.endChr = child.attr("val")
		case "type":
			p.kind = child.attr("val")
		}
	}
	return p
}

// containerTags are structural elements whose children render in place.
var containerTags = map[string]bool{
	"box": true, "sSub": true, "sSup": true, "sSubSup": true,
	"num": true, "den": true, "deg": true, "e": true,
}

// render dispatches on the element tag and returns its LaTeX.
func render(e *element) string {
	tag := e.XMLName.Local
	switch tag {
	case "r":
		return renderRun(e)
	case "acc":
		return renderAccent(e)
	case "bar":
		return renderBar(e)
	case "sub":
		return applyFormat(subscriptFormat, renderChildren(e))
	case "sup":
		return applyFormat(superscriptFormat, renderChildren(e))
	case "f":
		return renderFraction(e)
	case "func":
		return renderFunc(e)
	case "fName":
		return renderFuncName(e)
	case "groupChr":
		return renderGroupChar(e)
	case "d":
		return renderDelimiter(e)
	case "rad":
		return renderRadical(e)
	case "eqArr":
		return renderEqArray(e)
	case "limLow":
		return renderLimLower(e)
	case "limUpp":
		return renderLimUpper(e)
	case "lim":
		return renderLim(e)
	case "m":
		return renderMatrix(e)
	case "mr":
		return renderMatrixRow(e)
	case "nary":
		return renderNary(e)
	}
	if containerTags[tag] {
		return renderChildren(e)
	}
	if strings.HasSuffix(tag, "Pr") {
		return parseProps(e).text
	}
	return ""
}

func renderChildren(e *element) string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	for i := range e.Children {
		b.WriteString(render(&e.Children[i]))
	}
	return b.String()
}

// childText renders each child and returns the results keyed by tag.
// When a tag repeats, the last rendering wins; OMML containers the
// renderers consult this way carry each relevant tag at most once.
func childText(e *element) map[string]string {
	out := make(map[string]string)
	for i := range e.Children {
		child := &e.Children[i]
		if text := render(child); text != "" {
			out[child.XMLName.Local] = text
		}
	}
	return out
}

func renderRun(e *element) string {
	t := e.child("t")
	if t == nil {
		return ""
	}
	var b strings.Builder
	for _, r := range t.Content {
		if sub, ok := runeSubstitutions[r]; ok {
			b.WriteString(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return escapeText(b.String())
}

func renderAccent(e *element) string {
	pr := parseProps(e.child("accPr"))
	format := defaultAccent
	if pr.chr != "" {
		if f, ok := accentFormats[pr.chr]; ok {
			format = f
		} else {
			format = pr.chr
		}
	}
	return applyFormat(format, renderChildren(e.child("e")))
}

func renderBar(e *element) string {
	pr := parseProps(e.child("barPr"))
	format := defaultBar
	if f, ok := barFormats[pr.pos]; ok {
		format = f
	}
	return pr.text + applyFormat(format, renderChildren(e.child("e")))
}

func renderFraction(e *element) string {
	pr := parseProps(e.child("fPr"))
	format := defaultFraction
	if f, ok := fractionFormats[pr.kind]; ok {
		format = f
	}
	c := childText(e)
	return pr.text + fmt.Sprintf(format, c["num"], c["den"])
}

func renderFunc(e *element) string {
	c := childText(e)
	return strings.ReplaceAll(c["fName"], argSlot, c["e"])
}

func renderFuncName(e *element) string {
	var b strings.Builder
	for i := range e.Children {
		child := &e.Children[i]
		text := render(child)
		if child.XMLName.Local == "r" {
			if f, ok := functionNames[text]; ok {
				text = f
			}
		}
		b.WriteString(text)
	}
	name := b.String()
	if !strings.Contains(name, argSlot) {
		name += argSlot
	}
	return name
}

func renderGroupChar(e *element) string {
	pr := parseProps(e.child("groupChrPr"))
	body := renderChildren(e.child("e"))
	if pr.chr == "" {
		return pr.text + body
	}
	format, ok := accentFormats[pr.chr]
	if !ok {
		format = escapeText(pr.chr)
	}
	return pr.text + applyFormat(format, body)
}

// renderDelimiter renders bracketing. An explicitly empty side becomes
// the LaTeX null delimiter so \left/\right stay balanced.
func renderDelimiter(e *element) string {
	prEl := e.child("dPr")
	pr := parseProps(prEl)

	begin, end := defaultOpen, defaultClose
	if prEl != nil && prEl.child("begChr") != nil {
		begin = pr.begChr
	}
	if prEl != nil && prEl.child("endChr") != nil {
		end = pr.endChr
	}
	left, right := nullDelimiter, nullDelimiter
	if begin != "" {
		left = escapeText(substituteRunes(begin))
	}
	if end != "" {
		right = escapeText(substituteRunes(end))
	}

	return pr.text + fmt.Sprintf(delimiterFormat, left, renderChildren(e.child("e")), right)
}

func substituteRunes(s string) string {
	var b strings.Builder
	for _, r := range s {
		if sub, ok := runeSubstitutions[r]; ok {
			b.WriteString(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func renderRadical(e *element) string {
	c := childText(e)
	if deg := c["deg"]; deg != "" {
		return fmt.Sprintf(radicalFormat, deg, c["e"])
	}
	return fmt.Sprintf(radicalSquareFormat, c["e"])
}

func renderEqArray(e *element) string {
	var rows []string
	for i := range e.Children {
		child := &e.Children[i]
		if child.XMLName.Local == "e" {
			rows = append(rows, render(child))
		}
	}
	return fmt.Sprintf(eqArrayFormat, strings.Join(rows, rowBreak))
}

func renderLimLower(e *element) string {
	c := childText(e)
	body, lim := c["e"], c["lim"]
	if format, ok := limitFunctions[body]; ok {
		return fmt.Sprintf(format, lim)
	}
	return body + fmt.Sprintf(subscriptFormat, lim)
}

func renderLimUpper(e *element) string {
	c := childText(e)
	return fmt.Sprintf(oversetFormat, c["lim"], c["e"])
}

func renderLim(e *element) string {
	return strings.ReplaceAll(renderChildren(e), "\\rightarrow", "\\to")
}

func renderMatrix(e *element) string {
	var rows []string
	for i := range e.Children {
		child := &e.Children[i]
		if child.XMLName.Local == "mr" {
			rows = append(rows, render(child))
		}
	}
	return fmt.Sprintf(matrixFormat, strings.Join(rows, rowBreak))
}

func renderMatrixRow(e *element) string {
	var cells []string
	for i := range e.Children {
		child := &e.Children[i]
		if child.XMLName.Local == "e" {
			cells = append(cells, render(child))
		}
	}
	return strings.Join(cells, alignSep)
}

func renderNary(e *element) string {
	pr := parseProps(e.child("naryPr"))
	op := ""
	if pr.chr != "" {
		if o, ok := bigOperators[pr.chr]; ok {
			op = o
		} else {
			op = pr.chr
		}
	}
	var b strings.Builder
	b.WriteString(op)
	for i := range e.Children {
		child := &e.Children[i]
		if child.XMLName.Local == "naryPr" {
			continue
		}
		b.WriteString(render(child))
	}
	return b.String()
}
