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
	"strings"

	hwp "github.com/hanpama/hwp"
)

// HwpConverter handles Hangul Word Processor files, both the binary v5
// format (.hwp) and the XML-based HWPX format (.hwpx).
type HwpConverter struct{}

// NewHwpConverter creates a new HwpConverter.
func NewHwpConverter() *HwpConverter {
	return &HwpConverter{}
}

func (c *HwpConverter) Accepts(_ io.ReadSeeker, info StreamInfo) bool {
	switch info.Extension {
	case ".hwp", ".hwpx":
		return true
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/x-hwp") ||
		strings.HasPrefix(mime, "application/hwp+zip") ||
		strings.HasPrefix(mime, "application/vnd.hancom")
}

func (c *HwpConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read HWP: %w", err)
	}

	var out bytes.Buffer

	// HWPX is a ZIP container; binary HWP v5 starts with an OLE
	// compound file signature.
	if info.Extension == ".hwpx" || bytes.HasPrefix(data, []byte("PK")) {
		if err := hwp.ReadHWPX(bytes.NewReader(data), int64(len(data)), &out); err != nil {
			return nil, fmt.Errorf("parse HWPX: %w", err)
		}
	} else {
		if err := hwp.ReadHWP(bytes.NewReader(data), &out); err != nil {
			return nil, fmt.Errorf("parse HWP: %w", err)
		}
	}

	return &DocumentConverterResult{
		Markdown: out.String(),
	}, nil
}
