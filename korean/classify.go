package korean

import "unicode"

// presenceThreshold is the minimum share a script needs before it counts
// toward the mixed-script decision.
const presenceThreshold = 0.05

// isHangul reports whether r is a precomposed Hangul syllable block.
func isHangul(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}

// isHanja reports whether r is a CJK ideograph (unified, extension A, or
// compatibility).
func isHanja(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF:
		return true
	case r >= 0x3400 && r <= 0x4DBF:
		return true
	case r >= 0xF900 && r <= 0xFAFF:
		return true
	}
	return false
}

// Classify derives script statistics for text. Whitespace is excluded
// from the character total.
func Classify(text string) Stats {
	var hangul, hanja, latin, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		switch {
		case isHangul(r):
			hangul++
		case isHanja(r):
			hanja++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}

	var stats Stats
	if total == 0 {
		return stats
	}

	stats.HangulRatio = float64(hangul) / float64(total)
	stats.HanjaPresent = hanja > 0

	present := 0
	for _, n := range []int{hangul, hanja, latin} {
		if float64(n)/float64(total) >= presenceThreshold {
			present++
		}
	}
	stats.MixedScript = present >= 2

	return stats
}
