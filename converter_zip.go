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
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ZipConverter handles ZIP files by recursively converting their contents.
type ZipConverter struct {
	markitdown *MarkItDown
}

// NewZipConverter creates a new ZipConverter.
func NewZipConverter(m *MarkItDown) *ZipConverter {
	return &ZipConverter{markitdown: m}
}

func (c *ZipConverter) Accepts(_ io.ReadSeeker, info StreamInfo) bool {
	if info.Extension == ".zip" {
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/zip")
}

func (c *ZipConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read ZIP: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open ZIP: %w", err)
	}

	var md strings.Builder
	filename := info.Filename
	if filename == "" {
		filename = "archive"
	}
	md.WriteString(fmt.Sprintf("Content from the zip file `%s`:\n\n", filename))

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			continue
		}

		fileData, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}

		hints := StreamInfo{
			Extension: strings.ToLower(filepath.Ext(f.Name)),
			Filename:  filepath.Base(f.Name),
		}

		// Entries that cannot be converted are skipped rather than
		// failing the whole archive.
		result, err := c.markitdown.ConvertReader(bytes.NewReader(fileData), hints, convertOptionsFrom(opts)...)
		if err != nil {
			continue
		}

		if strings.TrimSpace(result.Markdown) != "" {
			md.WriteString(fmt.Sprintf("## File: %s\n", f.Name))
			md.WriteString(result.Markdown)
			md.WriteString("\n\n")
		}
	}

	return &DocumentConverterResult{
		Markdown: md.String(),
	}, nil
}

// convertOptionsFrom rebuilds per-call options so nested conversions
// inherit the caller's settings.
func convertOptionsFrom(opts ConvertOptions) []ConvertOption {
	out := []ConvertOption{
		WithOCRLanguages(opts.OCRLanguages...),
		WithMaxInputSize(opts.MaxInputSize),
	}
	if opts.KoreanMode {
		out = append(out, KoreanMode())
	}
	for k, v := range opts.Extra {
		out = append(out, WithExtra(k, v))
	}
	return out
}
