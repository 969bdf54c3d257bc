package markitdown

import (
	"fmt"
	"io"
	"strings"
)

// PlainTextConverter handles plain text, markdown, JSON, and JSONL files.
// It is the last generic fallback, so it also absorbs best-effort textual
// conversions of sources nothing else accepted.
type PlainTextConverter struct{}

// NewPlainTextConverter creates a new PlainTextConverter.
func NewPlainTextConverter() *PlainTextConverter {
	return &PlainTextConverter{}
}

func (c *PlainTextConverter) Accepts(_ io.ReadSeeker, info StreamInfo) bool {
	switch info.Extension {
	case ".txt", ".text", ".md", ".markdown", ".json", ".jsonl":
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	if strings.HasPrefix(mime, "text/") {
		return true
	}
	if strings.HasPrefix(mime, "application/json") || strings.HasPrefix(mime, "application/markdown") {
		return true
	}
	// The guesser's terminal fallback for opaque bytes. Sitting at the
	// tail of the generic tier, this only triggers once every format
	// converter has declined or failed, so a corrupted file still yields
	// a best-effort textual result instead of total failure.
	return mimeEqual(mime, "application/octet-stream")
}

func (c *PlainTextConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	return &DocumentConverterResult{
		Markdown: decodeText(data, info, opts),
	}, nil
}
