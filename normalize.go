package markitdown

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reTrailingWhitespace = regexp.MustCompile(`[ \t]+\n`)
	reMultipleNewlines   = regexp.MustCompile(`\n{3,}`)
	reCRLF               = regexp.MustCompile(`\r\n?`)
)

// normalizeOutput post-processes converter output:
// - normalize line endings (CRLF -> LF)
// - strip non-printable/control characters (keep \n, \t)
// - strip trailing whitespace from each line
// - collapse 3+ consecutive newlines to 2
// - end non-empty output with exactly one newline
// An empty document stays the empty string.
func normalizeOutput(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	s = reCRLF.ReplaceAllString(s, "\n")

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	// A trailing newline makes the last line visible to the regexp.
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	s = reTrailingWhitespace.ReplaceAllString(s, "\n")
	s = reMultipleNewlines.ReplaceAllString(s, "\n\n")

	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return s + "\n"
}
