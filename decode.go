package markitdown

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	xkorean "golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"

	"github.com/VoidLight00/voidlight-markitdown-go/korean"
)

// decodeText converts raw document bytes to UTF-8. Korean mode routes
// through the Korean encoding cascade; otherwise the charset hint is
// honored first and statistical detection is the fallback.
func decodeText(data []byte, info StreamInfo, opts ConvertOptions) string {
	if opts.KoreanMode || korean.IsKoreanCharset(info.Charset) {
		_, text, _ := korean.DetectEncoding(data)
		return text
	}

	if info.Charset != "" {
		if enc := lookupEncoding(info.Charset); enc != nil {
			if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
				return string(decoded)
			}
		}
	}

	return decodeWithDetection(data)
}

// decodeWithDetection detects the encoding of data and decodes it to
// UTF-8, scoring candidate decodings because chardet often misidentifies
// CJK legacy encodings as Latin ones.
func decodeWithDetection(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil || len(results) == 0 {
		return strings.ToValidUTF8(string(data), "")
	}

	bestScore := -1 << 31
	bestText := ""
	for _, r := range results {
		enc := lookupEncoding(r.Charset)
		if enc == nil {
			continue
		}
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		text := string(decoded)
		if score := scoreDecodedText(text, r.Confidence); score > bestScore {
			bestScore = score
			bestText = text
		}
	}
	if bestText != "" {
		return bestText
	}
	return strings.ToValidUTF8(string(data), "")
}

// scoreDecodedText rates how coherent a candidate decoding looks. Hangul
// syllables are a strong signal of a correct Korean decoding; replacement
// and control characters signal the opposite.
func scoreDecodedText(text string, confidence int) int {
	score := confidence
	for _, r := range text {
		switch {
		case r == utf8.RuneError:
			score -= 10
		case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
			score -= 5
		case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
			score += 5
		case r >= 0x3040 && r <= 0x30FF: // Hiragana + Katakana
			score += 3
		case r >= 0x4E00 && r <= 0x9FFF: // CJK ideographs
			score += 1
		case r >= 'A' && r <= 'z':
			score++
		}
	}
	return score
}

// lookupEncoding maps charset names to Go encodings, resolving a few
// common non-IANA aliases before delegating to the IANA index.
func lookupEncoding(charset string) encoding.Encoding {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(charset, "-", ""), "_", "")) {
	case "utf8", "utf8bom", "ascii", "usascii":
		return unicode.UTF8
	case "cp949", "uhc", "windows949", "xwindows949", "euckr", "ksc56011987", "ksc5601":
		return xkorean.EUCKR
	case "cp932", "windows31j", "sjis", "shiftjis", "ms932":
		return japanese.ShiftJIS
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil
	}
	return enc
}
