package korean

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xkorean "golang.org/x/text/encoding/korean"
)

func encodeEUCKR(t *testing.T, s string) []byte {
	t.Helper()
	out, err := xkorean.EUCKR.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

func TestDetectEncodingUTF8(t *testing.T) {
	enc, text, low := DetectEncoding([]byte("안녕하세요, world"))
	assert.Equal(t, "utf-8", enc)
	assert.Equal(t, "안녕하세요, world", text)
	assert.False(t, low)
}

func TestDetectEncodingUTF8BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("안녕하세요")...)

	enc, text, low := DetectEncoding(raw)
	assert.Equal(t, "utf-8", enc)
	assert.Equal(t, "안녕하세요", text, "BOM must be stripped from the decoded text")
	assert.False(t, low)
}

func TestDetectEncodingCP949(t *testing.T) {
	raw := encodeEUCKR(t, "안녕하세요, 반갑습니다.")

	enc, text, low := DetectEncoding(raw)
	assert.Equal(t, "cp949", enc)
	assert.Equal(t, "안녕하세요, 반갑습니다.", text)
	assert.False(t, low)
}

func TestDetectEncodingEmpty(t *testing.T) {
	enc, text, low := DetectEncoding(nil)
	assert.Equal(t, "utf-8", enc)
	assert.Empty(t, text)
	assert.False(t, low)
}

func TestDetectEncodingGarbageIsLowConfidence(t *testing.T) {
	// Bytes that are not valid UTF-8, CP949, or anything printable.
	raw := []byte{0xFF, 0x00, 0xFE, 0x01, 0xFF, 0x02, 0x00, 0xFF}

	enc, text, low := DetectEncoding(raw)
	assert.True(t, low, "undetectable input must be flagged low confidence")
	assert.Equal(t, "utf-8", enc, "the lossy fallback reports utf-8")
	assert.NotEmpty(t, text)
}

func TestDetectEncodingNeverReturnsInvalidUTF8(t *testing.T) {
	inputs := [][]byte{
		[]byte("plain ascii"),
		encodeEUCKR(t, "한국어 텍스트"),
		{0xFF, 0xFE, 0x00, 0x01},
		{0xBE},
	}
	for _, raw := range inputs {
		_, text, _ := DetectEncoding(raw)
		assert.True(t, utf8.ValidString(text), "DetectEncoding(%v) produced invalid UTF-8", raw)
	}
}

func TestIsKoreanCharset(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"cp949", true},
		{"CP949", true},
		{"euc-kr", true},
		{"EUC-KR", true},
		{"euc_kr", true},
		{"uhc", true},
		{"windows-949", true},
		{"x-windows-949", true},
		{"ks_c_5601-1987", true},
		{"utf-8", false},
		{"iso-8859-1", false},
		{"shift_jis", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsKoreanCharset(tt.name), "IsKoreanCharset(%q)", tt.name)
	}
}

func TestPrintableRatio(t *testing.T) {
	assert.Equal(t, 1.0, printableRatio(""))
	assert.Equal(t, 1.0, printableRatio("hello\nworld\t안녕 "))
	assert.Less(t, printableRatio("\x00\x01\x02\x03"), 0.5)
}
