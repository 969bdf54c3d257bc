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
	"os"
	"os/exec"
	"strings"

	"github.com/VoidLight00/voidlight-markitdown-go/capability"
)

// ImageConverter extracts text from images by running tesseract OCR.
type ImageConverter struct {
	markitdown *MarkItDown
}

// NewImageConverter creates a new ImageConverter.
func NewImageConverter(m *MarkItDown) *ImageConverter {
	return &ImageConverter{markitdown: m}
}

func (c *ImageConverter) Accepts(_ io.ReadSeeker, info StreamInfo) bool {
	switch info.Extension {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return strings.HasPrefix(strings.ToLower(info.MIMEType), "image/")
}

func (c *ImageConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	report := c.markitdown.capabilities()
	if !report.Functional(capability.BackendTesseract) {
		return nil, &MissingDependencyError{
			Backend: capability.BackendTesseract,
			Hint:    report.Hint(capability.BackendTesseract),
		}
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	ext := info.Extension
	if ext == "" {
		ext = ".png"
	}
	tmpFile, err := os.CreateTemp("", "voidlight-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmpFile.Close()

	args := []string{tmpPath, "stdout"}
	if langs := opts.OCRLanguages; len(langs) > 0 {
		args = append(args, "-l", strings.Join(langs, "+"))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command("tesseract", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return &DocumentConverterResult{
			Markdown: "[No text detected in image]",
		}, nil
	}

	var md strings.Builder
	if info.Filename != "" {
		fmt.Fprintf(&md, "## %s\n\n", info.Filename)
	}
	md.WriteString(text)

	return &DocumentConverterResult{
		Markdown: md.String(),
	}, nil
}
