package korean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fullwidth ascii folds to halfwidth",
			input: "ＡＢＣ１２３！",
			want:  "ABC123!",
		},
		{
			name:  "ideographic space becomes regular space",
			input: "안녕\u3000하세요",
			want:  "안녕 하세요",
		},
		{
			name:  "non-breaking space becomes regular space",
			input: "안녕\u00A0하세요",
			want:  "안녕 하세요",
		},
		{
			name:  "zero-width characters removed",
			input: "안\u200B녕\u200C하\u200D세요\uFEFF",
			want:  "안녕하세요",
		},
		{
			name:  "fold result composes with trailing combining mark",
			input: "ｅ\u0301",
			want:  "é",
		},
		{
			name:  "curly quotes unified",
			input: "“인용” ‘강조’",
			want:  `"인용" '강조'`,
		},
		{
			name:  "decomposed jamo composes to syllables",
			input: "한국", // 한국 in conjoining jamo
			want:  "한국",
		},
		{
			name:  "plain text unchanged",
			input: "Hello 안녕 123",
			want:  "Hello 안녕 123",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"ＡＢＣ１２３",
		"안녕\u3000하세요\u200B!",
		"“혼합” ｔｅｘｔ 123",
		"ｅ\u0301",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize must be idempotent for %q", in)
	}
}
