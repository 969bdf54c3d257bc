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

package korean

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xkorean "golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/ianaindex"
)

// printableThreshold is the minimum ratio of printable runes a strict
// decode must produce to be accepted by the cascade.
const printableThreshold = 0.95

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectEncoding runs the Korean encoding cascade: strict UTF-8 (BOM
// aware), then CP949 (a superset of EUC-KR, so legacy EUC-KR files also
// land here), then the generic statistical detector. When nothing
// qualifies it falls back to lossy UTF-8 and reports low confidence.
// It never fails.
func DetectEncoding(raw []byte) (encoding string, text string, lowConfidence bool) {
	if len(raw) == 0 {
		return "utf-8", "", false
	}

	if bytes.HasPrefix(raw, utf8BOM) {
		body := raw[len(utf8BOM):]
		if utf8.Valid(body) {
			return "utf-8", string(body), false
		}
	}

	if utf8.Valid(raw) {
		s := string(raw)
		if printableRatio(s) >= printableThreshold {
			return "utf-8", s, false
		}
	}

	// Go's EUC-KR tables are the WHATWG index, which is windows-949, so
	// this step covers both CP949 and pure EUC-KR input.
	if s, ok := strictDecodeEUCKR(raw); ok && printableRatio(s) >= printableThreshold {
		return "cp949", s, false
	}

	if name, s, ok := statisticalDetect(raw); ok {
		return name, s, false
	}

	return "utf-8", strings.ToValidUTF8(string(raw), string(utf8.RuneError)), true
}

// strictDecodeEUCKR decodes raw as CP949/EUC-KR and rejects any output
// containing replacement runes.
func strictDecodeEUCKR(raw []byte) (string, bool) {
	decoded, err := xkorean.EUCKR.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	s := string(decoded)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", false
	}
	return s, true
}

// statisticalDetect delegates to the generic chardet detector and accepts
// its best candidate that decodes to mostly printable text.
func statisticalDetect(raw []byte) (string, string, bool) {
	results, err := chardet.NewTextDetector().DetectAll(raw)
	if err != nil {
		return "", "", false
	}
	for _, r := range results {
		enc, err := ianaindex.IANA.Encoding(r.Charset)
		if err != nil || enc == nil {
			continue
		}
		decoded, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		s := string(decoded)
		if strings.ContainsRune(s, utf8.RuneError) {
			continue
		}
		if printableRatio(s) >= printableThreshold {
			return strings.ToLower(r.Charset), s, true
		}
	}
	return "", "", false
}

// printableRatio returns the share of printable runes (counting the
// usual whitespace as printable). Empty text counts as fully printable.
func printableRatio(s string) float64 {
	var printable, total int
	for _, r := range s {
		total++
		switch {
		case r == '\n' || r == '\r' || r == '\t' || r == ' ':
			printable++
		case unicode.IsPrint(r):
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

// IsKoreanCharset reports whether a charset name denotes a Korean legacy
// encoding (used by the dispatcher to trigger Korean post-processing).
func IsKoreanCharset(name string) bool {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(name, "-", ""), "_", "")) {
	case "cp949", "euckr", "uhc", "windows949", "xwindows949", "ksc56011987", "ksc5601":
		return true
	}
	return false
}
