package markitdown

import (
	"os"
	"strings"
	"testing"
)

// testVector defines an end-to-end conversion expectation.
type testVector struct {
	filename       string
	mustInclude    []string
	mustNotInclude []string
}

var generalTestVectors = []testVector{
	{
		filename: "test.docx",
		mustInclude: []string{
			"# Abstract",
			"# Introduction",
		},
	},
	{
		filename: "test.xlsx",
		mustInclude: []string{
			"## Sheet1",
		},
	},
	{
		filename: "test_blog.html",
		mustInclude: []string{
			"Large language models (LLMs) are powerful tools",
		},
	},
	{
		filename: "test_notebook.ipynb",
		mustInclude: []string{
			"# Test Notebook",
			"```python",
		},
		mustNotInclude: []string{
			"nbformat",
			"nbformat_minor",
		},
	},
	{
		filename: "test_rss.xml",
		mustInclude: []string{
			"Ignite 2024",
		},
		mustNotInclude: []string{
			"<rss",
			"<feed",
		},
	},
}

func TestConvertFile(t *testing.T) {
	m := New()

	for _, tv := range generalTestVectors {
		t.Run(tv.filename, func(t *testing.T) {
			path := "testdata/" + tv.filename
			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Skipf("test fixture %s not found", path)
			}

			result, err := m.ConvertFile(path)
			if err != nil {
				t.Fatalf("ConvertFile(%s) error: %v", tv.filename, err)
			}
			if result == nil {
				t.Fatalf("ConvertFile(%s) returned nil result", tv.filename)
			}

			md := result.Markdown

			for _, s := range tv.mustInclude {
				if !strings.Contains(md, s) {
					t.Errorf("ConvertFile(%s): expected output to contain %q\nGot (first 2000 chars):\n%s", tv.filename, s, truncate(md, 2000))
				}
			}
			for _, s := range tv.mustNotInclude {
				if strings.Contains(md, s) {
					t.Errorf("ConvertFile(%s): expected output NOT to contain %q", tv.filename, s)
				}
			}
		})
	}
}

func TestNormalizeOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trailing whitespace",
			input: "hello   \nworld   \n",
			want:  "hello\nworld\n",
		},
		{
			name:  "multiple newlines",
			input: "hello\n\n\n\n\nworld",
			want:  "hello\n\nworld\n",
		},
		{
			name:  "crlf",
			input: "hello\r\nworld\r\n",
			want:  "hello\nworld\n",
		},
		{
			name:  "control characters",
			input: "hello\x00world\x01test",
			want:  "helloworldtest\n",
		},
		{
			name:  "single trailing newline",
			input: "# Hi\n\n\n",
			want:  "# Hi\n",
		},
		{
			name:  "empty stays empty",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only becomes empty",
			input: "  \n\t \n",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeOutput(tt.input)
			if got != tt.want {
				t.Errorf("normalizeOutput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConverterAccepts(t *testing.T) {
	tests := []struct {
		name      string
		converter DocumentConverter
		info      StreamInfo
		want      bool
	}{
		{"pdf by ext", NewPdfConverter(nil), StreamInfo{Extension: ".pdf"}, true},
		{"pdf by mime", NewPdfConverter(nil), StreamInfo{MIMEType: "application/pdf"}, true},
		{"pdf wrong ext", NewPdfConverter(nil), StreamInfo{Extension: ".txt"}, false},
		{"csv by ext", NewCsvConverter(), StreamInfo{Extension: ".csv"}, true},
		{"csv by mime", NewCsvConverter(), StreamInfo{MIMEType: "text/csv"}, true},
		{"html by ext", NewHTMLConverter(nil), StreamInfo{Extension: ".html"}, true},
		{"html by mime", NewHTMLConverter(nil), StreamInfo{MIMEType: "text/html"}, true},
		{"plaintext txt", NewPlainTextConverter(), StreamInfo{Extension: ".txt"}, true},
		{"plaintext json", NewPlainTextConverter(), StreamInfo{Extension: ".json"}, true},
		{"plaintext md", NewPlainTextConverter(), StreamInfo{Extension: ".md"}, true},
		{"plaintext octet fallback", NewPlainTextConverter(), StreamInfo{MIMEType: "application/octet-stream"}, true},
		{"rss by ext", NewRSSConverter(), StreamInfo{Extension: ".rss"}, true},
		{"ipynb by ext", NewIpynbConverter(), StreamInfo{Extension: ".ipynb"}, true},
		{"docx by ext", NewDocxConverter(nil), StreamInfo{Extension: ".docx"}, true},
		{"pptx by ext", NewPptxConverter(nil), StreamInfo{Extension: ".pptx"}, true},
		{"xlsx by ext", NewXlsxConverter(), StreamInfo{Extension: ".xlsx"}, true},
		{"xls by ext", NewXlsConverter(), StreamInfo{Extension: ".xls"}, true},
		{"epub by ext", NewEpubConverter(nil), StreamInfo{Extension: ".epub"}, true},
		{"zip by ext", NewZipConverter(nil), StreamInfo{Extension: ".zip"}, true},
		{"hwp by ext", NewHwpConverter(), StreamInfo{Extension: ".hwp"}, true},
		{"hwpx by ext", NewHwpConverter(), StreamInfo{Extension: ".hwpx"}, true},
		{"image by ext", NewImageConverter(nil), StreamInfo{Extension: ".png"}, true},
		{"image by mime", NewImageConverter(nil), StreamInfo{MIMEType: "image/jpeg"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.converter.Accepts(strings.NewReader(""), tt.info)
			if got != tt.want {
				t.Errorf("Accepts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRSSAcceptsGenericXML(t *testing.T) {
	c := NewRSSConverter()

	feed := strings.NewReader(`<?xml version="1.0"?><rss version="2.0"><channel></channel></rss>`)
	if !c.Accepts(feed, StreamInfo{Extension: ".xml"}) {
		t.Error("expected RSS converter to accept XML with an <rss> root")
	}
	// The sniff must leave the stream at the start for the next probe.
	if pos, _ := feed.Seek(0, 1); pos != 0 {
		t.Errorf("stream position after Accepts = %d, want 0", pos)
	}

	plain := strings.NewReader(`<?xml version="1.0"?><config><key>v</key></config>`)
	if c.Accepts(plain, StreamInfo{Extension: ".xml"}) {
		t.Error("expected RSS converter to reject non-feed XML")
	}
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
