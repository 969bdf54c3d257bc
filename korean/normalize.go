package korean

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes Korean text for downstream consumers: full-width
// ASCII and digits folded to half-width, the zero-width and non-breaking
// space variants collapsed to a regular space, curly quotes unified, and
// Unicode NFC applied last so folds that expose combining marks still
// compose. Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 0xFF01 && r <= 0xFF5E:
			// The fullwidth ASCII block maps onto ASCII at a fixed offset.
			b.WriteRune(r - 0xFEE0)
		case r == '\u3000' || r == '\u00A0' || r == '\u202F' || r == '\u2007':
			// Ideographic and non-breaking space variants.
			b.WriteRune(' ')
		case r == '\u200B' || r == '\u200C' || r == '\u200D' || r == '\uFEFF':
			// Zero-width characters carry no content.
		case r == '“' || r == '”' || r == '〝' || r == '〞':
			b.WriteRune('"')
		case r == '‘' || r == '’':
			b.WriteRune('\'')
		default:
			b.WriteRune(r)
		}
	}
	return norm.NFC.String(b.String())
}
