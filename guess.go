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
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"

	"github.com/VoidLight00/voidlight-markitdown-go/korean"
)

// maxSniffBytes bounds how much of the input the guesser inspects.
const maxSniffBytes = 8192

// guessStreamInfo builds the ordered candidate list for the dispatch
// loop, highest confidence first. Stages run in strict precedence:
// caller hints, extension table, magic-byte sniffing, charset sniffing,
// and a guaranteed generic fallback. A stage only fills fields the
// previous stage left unset and only appends a new candidate when it
// disagrees with the previous one, so the list stays small and is never
// empty, even for zero-length input.
func guessStreamInfo(peek []byte, hints StreamInfo, koreanMode bool) []StreamInfo {
	var candidates []StreamInfo

	// Explicit hints rank first; the extension table fills in a mimetype
	// the caller did not supply.
	first := hints
	if first.Extension == "" && first.Filename != "" {
		first = first.Refine(StreamInfo{Extension: strings.ToLower(filepath.Ext(first.Filename))})
	}
	if first.MIMEType == "" && first.Extension != "" {
		first = first.Refine(StreamInfo{MIMEType: mimeFromExtension(first.Extension)})
	}
	if !first.isZero() {
		candidates = append(candidates, first)
	}

	// Magic-byte sniffing confirms or contradicts the hint-based guess
	// and is the only signal for extensionless sources.
	if len(peek) > 0 {
		mtype := mimetype.Detect(peek)
		sniffed := baseMIME(mtype.String())
		switch {
		case len(candidates) == 0:
			candidates = append(candidates, hints.Refine(StreamInfo{
				MIMEType:  sniffed,
				Extension: mtype.Extension(),
			}))
		case candidates[0].MIMEType == "":
			candidates[0] = candidates[0].Refine(StreamInfo{
				MIMEType:  sniffed,
				Extension: mtype.Extension(),
			})
		case !mimeEqual(candidates[0].MIMEType, sniffed) && sniffed != "application/octet-stream":
			candidates = append(candidates, candidates[0].Refine(StreamInfo{
				MIMEType:  sniffed,
				Extension: mtype.Extension(),
			}))
		}
	}

	// Charset sniffing for textual candidates.
	for i, c := range candidates {
		if c.Charset == "" && isTextualMIME(c.MIMEType) {
			if cs := sniffCharset(peek, koreanMode); cs != "" {
				candidates[i] = c.Refine(StreamInfo{Charset: cs})
			}
		}
	}

	// Generic fallback last, so the dispatch loop always has a candidate.
	fallback := StreamInfo{MIMEType: "application/octet-stream"}
	if looksTextual(peek) {
		fallback = StreamInfo{MIMEType: "text/plain", Extension: ".txt"}
		if cs := sniffCharset(peek, koreanMode); cs != "" {
			fallback.Charset = cs
		}
	}
	if n := len(candidates); n == 0 || !mimeEqual(candidates[n-1].MIMEType, fallback.MIMEType) {
		fb := hints
		fb.MIMEType = fallback.MIMEType
		fb.Extension = fallback.Extension
		fb.Charset = fallback.Charset
		candidates = append(candidates, fb)
	}

	return candidates
}

// sniffCharset statistically detects the charset of a textual prefix.
// In Korean mode the UTF-8 / CP949 / EUC-KR cascade runs before the
// generic detector: Korean-authored legacy files are disproportionately
// CP949, which generic detectors misclassify.
func sniffCharset(peek []byte, koreanMode bool) string {
	if len(peek) == 0 {
		return ""
	}

	if koreanMode {
		name, low := koreanDetect(peek)
		if !low {
			return name
		}
		return ""
	}

	peek = trimPartialRune(peek)

	if utf8.Valid(peek) {
		return "utf-8"
	}
	if result, err := chardet.NewTextDetector().DetectBest(peek); err == nil {
		return strings.ToLower(result.Charset)
	}
	return ""
}

// koreanDetect runs the Korean encoding cascade on the bounded peek. A
// truncation-repaired UTF-8 reading gets first shot: the peek boundary can
// split a multi-byte rune, and trimming blindly would instead corrupt a
// legacy double-byte tail, pushing CP949 input past the strict decode into
// the statistical detector.
func koreanDetect(peek []byte) (string, bool) {
	if trimmed := trimPartialRune(peek); len(trimmed) > 0 && utf8.Valid(trimmed) {
		peek = trimmed
	}
	name, _, low := korean.DetectEncoding(peek)
	return name, low
}

// trimPartialRune drops up to three trailing bytes of a UTF-8 sequence
// the bounded peek may have cut in half.
func trimPartialRune(peek []byte) []byte {
	for i := 0; i < 3 && len(peek) > 0; i++ {
		if utf8.Valid(peek) {
			return peek
		}
		peek = peek[:len(peek)-1]
	}
	return peek
}

// looksTextual decides whether the generic fallback should be plain text
// or an opaque octet stream. High bytes are fine (legacy encodings);
// control characters other than whitespace are not.
func looksTextual(peek []byte) bool {
	if len(peek) == 0 {
		return true
	}
	if bytes.IndexByte(peek, 0) >= 0 {
		return false
	}
	for _, b := range peek {
		if b < 0x09 || (b > 0x0D && b < 0x20) {
			return false
		}
	}
	return true
}

// baseMIME strips parameters like "; charset=utf-8".
func baseMIME(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(strings.ToLower(mime))
}

func mimeEqual(a, b string) bool {
	return baseMIME(a) == baseMIME(b)
}

// isTextualMIME reports whether candidates with this mimetype should get
// a charset guess.
func isTextualMIME(mime string) bool {
	mime = baseMIME(mime)
	switch {
	case strings.HasPrefix(mime, "text/"):
		return true
	case strings.HasPrefix(mime, "application/json"),
		strings.HasPrefix(mime, "application/csv"),
		strings.HasPrefix(mime, "application/xml"),
		strings.HasPrefix(mime, "application/javascript"):
		return true
	case strings.HasSuffix(mime, "+xml"), strings.HasSuffix(mime, "+json"):
		return true
	}
	return false
}

// mimeFromExtension returns a MIME type for common extensions, or "".
func mimeFromExtension(ext string) string {
	extMap := map[string]string{
		".pdf":      "application/pdf",
		".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".pptx":     "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		".xlsx":     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		".xls":      "application/vnd.ms-excel",
		".hwp":      "application/x-hwp",
		".hwpx":     "application/hwp+zip",
		".html":     "text/html",
		".htm":      "text/html",
		".csv":      "text/csv",
		".txt":      "text/plain",
		".text":     "text/plain",
		".md":       "text/markdown",
		".markdown": "text/markdown",
		".json":     "application/json",
		".jsonl":    "application/jsonl",
		".xml":      "text/xml",
		".rss":      "application/rss+xml",
		".atom":     "application/atom+xml",
		".epub":     "application/epub+zip",
		".zip":      "application/zip",
		".ipynb":    "application/x-ipynb+json",
		".png":      "image/png",
		".jpg":      "image/jpeg",
		".jpeg":     "image/jpeg",
		".gif":      "image/gif",
		".tiff":     "image/tiff",
		".bmp":      "image/bmp",
		".webp":     "image/webp",
	}
	return extMap[ext]
}
