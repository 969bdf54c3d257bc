package markitdown

import (
	"strings"
	"testing"
)

func TestCsvConvert(t *testing.T) {
	input := "name,age\nAlice,30\nBob,25\n"

	result, err := NewCsvConverter().Convert(strings.NewReader(input), StreamInfo{Extension: ".csv"}, ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}

	for _, want := range []string{
		"| name | age |",
		"| --- | --- |",
		"| Alice | 30 |",
		"| Bob | 25 |",
	} {
		if !strings.Contains(result.Markdown, want) {
			t.Errorf("output missing %q:\n%s", want, result.Markdown)
		}
	}
}

func TestCsvConvertRaggedRows(t *testing.T) {
	// Short rows pad out to the header width instead of failing.
	input := "a,b,c\n1,2\n"

	result, err := NewCsvConverter().Convert(strings.NewReader(input), StreamInfo{Extension: ".csv"}, ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if !strings.Contains(result.Markdown, "| 1 | 2 |  |") {
		t.Errorf("ragged row not padded:\n%s", result.Markdown)
	}
}

func TestCsvConvertEmpty(t *testing.T) {
	result, err := NewCsvConverter().Convert(strings.NewReader(""), StreamInfo{Extension: ".csv"}, ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if result.Markdown != "" {
		t.Errorf("Markdown = %q, want empty for empty input", result.Markdown)
	}
}

func TestIpynbConvert(t *testing.T) {
	input := `{
  "metadata": {"kernelspec": {"language": "julia"}},
  "cells": [
    {"cell_type": "markdown", "source": ["# Analysis\n", "Intro text."]},
    {"cell_type": "code", "source": "println(1+1)", "outputs": [
      {"output_type": "stream", "text": ["2\n"]}
    ]},
    {"cell_type": "raw", "source": "raw block"}
  ]
}`

	result, err := NewIpynbConverter().Convert(strings.NewReader(input), StreamInfo{Extension: ".ipynb"}, ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}

	if result.Title != "Analysis" {
		t.Errorf("Title = %q, want %q", result.Title, "Analysis")
	}
	for _, want := range []string{
		"# Analysis",
		"```julia\nprintln(1+1)\n```",
		"```\n2\n```",
		"```\nraw block\n```",
	} {
		if !strings.Contains(result.Markdown, want) {
			t.Errorf("output missing %q:\n%s", want, result.Markdown)
		}
	}
}

func TestIpynbConvertInvalidJSON(t *testing.T) {
	_, err := NewIpynbConverter().Convert(strings.NewReader("not json"), StreamInfo{Extension: ".ipynb"}, ConvertOptions{})
	if err == nil {
		t.Fatal("expected an error for malformed notebook JSON")
	}
}

func TestHTMLConvertString(t *testing.T) {
	html := `<html><head><title>My Page</title><script>alert(1)</script></head>
<body><h1>Heading</h1><p>Some <strong>bold</strong> text.</p></body></html>`

	result, err := NewHTMLConverter(nil).ConvertString(html, ConvertOptions{})
	if err != nil {
		t.Fatalf("ConvertString error: %v", err)
	}

	if result.Title != "My Page" {
		t.Errorf("Title = %q, want %q", result.Title, "My Page")
	}
	if !strings.Contains(result.Markdown, "# Heading") {
		t.Errorf("output missing heading:\n%s", result.Markdown)
	}
	if !strings.Contains(result.Markdown, "**bold**") {
		t.Errorf("output missing bold run:\n%s", result.Markdown)
	}
	if strings.Contains(result.Markdown, "alert(1)") {
		t.Errorf("script content leaked into output:\n%s", result.Markdown)
	}
}

func TestHTMLDataURITruncation(t *testing.T) {
	payload := strings.Repeat("A", 200)
	html := `<p><img src="data:image/png;base64,` + payload + `" alt="pic"></p>`

	result, err := NewHTMLConverter(nil).ConvertString(html, ConvertOptions{})
	if err != nil {
		t.Fatalf("ConvertString error: %v", err)
	}
	if strings.Contains(result.Markdown, payload) {
		t.Error("long data URI payload should be truncated by default")
	}
	if !strings.Contains(result.Markdown, "data:image/png;base64,...") {
		t.Errorf("truncation marker missing:\n%s", result.Markdown)
	}

	kept, err := NewHTMLConverter(nil).ConvertString(html, ConvertOptions{KeepDataURIs: true})
	if err != nil {
		t.Fatalf("ConvertString error: %v", err)
	}
	if !strings.Contains(kept.Markdown, payload) {
		t.Error("KeepDataURIs must preserve the full payload")
	}
}

func TestDocxMathBlocksRenderLaTeX(t *testing.T) {
	doc := `<w:document><w:body><w:p><m:oMathPara><m:oMath><m:f><m:num><m:r><m:t>a</m:t></m:r></m:num><m:den><m:r><m:t>b</m:t></m:r></m:den></m:f></m:oMath></m:oMathPara></w:p></w:body></w:document>`

	got := string(replaceMathBlocks([]byte(doc)))
	if !strings.Contains(got, `<w:t>$\frac{a}{b}$</w:t>`) {
		t.Errorf("math block not rendered as LaTeX:\n%s", got)
	}
	if strings.Contains(got, "oMath") {
		t.Error("OMML elements must not survive the rewrite")
	}
}

func TestDocxMathInlineRendersLaTeX(t *testing.T) {
	doc := `<w:p><w:r><w:t>where </w:t></w:r><m:oMath><m:sSup><m:e><m:r><m:t>x</m:t></m:r></m:e><m:sup><m:r><m:t>2</m:t></m:r></m:sup></m:sSup></m:oMath></w:p>`

	got := string(replaceMathBlocks([]byte(doc)))
	if !strings.Contains(got, `<w:r><w:t>$x^{2}$</w:t></w:r>`) {
		t.Errorf("inline math not rendered as LaTeX:\n%s", got)
	}
}

func TestDocxMathMalformedFallsBackToPlaceholder(t *testing.T) {
	doc := `<w:p><m:oMath><m:f></m:oMath></w:p>`

	got := string(replaceMathBlocks([]byte(doc)))
	if !strings.Contains(got, "[formula]") {
		t.Errorf("want placeholder for unparseable math:\n%s", got)
	}
}
