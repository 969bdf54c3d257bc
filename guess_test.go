package markitdown

import (
	"testing"
)

func TestGuessStreamInfoAlwaysYieldsCandidate(t *testing.T) {
	guesses := guessStreamInfo(nil, StreamInfo{}, false)
	if len(guesses) == 0 {
		t.Fatal("expected at least one candidate for empty input with no hints")
	}
	last := guesses[len(guesses)-1]
	if last.MIMEType != "text/plain" {
		t.Errorf("fallback MIMEType = %q, want text/plain for empty input", last.MIMEType)
	}
}

func TestGuessStreamInfoExtensionHint(t *testing.T) {
	guesses := guessStreamInfo([]byte("a,b,c\n1,2,3\n"), StreamInfo{Extension: ".csv"}, false)
	if len(guesses) == 0 {
		t.Fatal("no candidates")
	}
	first := guesses[0]
	if first.Extension != ".csv" {
		t.Errorf("first candidate extension = %q, want .csv", first.Extension)
	}
	if first.MIMEType != "text/csv" {
		t.Errorf("first candidate MIMEType = %q, want text/csv", first.MIMEType)
	}
	if first.Charset != "utf-8" {
		t.Errorf("first candidate Charset = %q, want utf-8", first.Charset)
	}
}

func TestGuessStreamInfoFilenameFillsExtension(t *testing.T) {
	guesses := guessStreamInfo([]byte("hello"), StreamInfo{Filename: "Report.TXT"}, false)
	if len(guesses) == 0 {
		t.Fatal("no candidates")
	}
	if guesses[0].Extension != ".txt" {
		t.Errorf("extension = %q, want .txt (lowered from filename)", guesses[0].Extension)
	}
}

func TestGuessStreamInfoMagicBytes(t *testing.T) {
	pngMagic := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

	guesses := guessStreamInfo(pngMagic, StreamInfo{}, false)
	if len(guesses) == 0 {
		t.Fatal("no candidates")
	}
	if guesses[0].MIMEType != "image/png" {
		t.Errorf("first candidate MIMEType = %q, want image/png", guesses[0].MIMEType)
	}
}

func TestGuessStreamInfoSniffContradictsHint(t *testing.T) {
	// Extension claims text, bytes say PNG: both candidates must be offered,
	// hint first.
	pngMagic := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

	guesses := guessStreamInfo(pngMagic, StreamInfo{Extension: ".txt"}, false)
	if len(guesses) < 2 {
		t.Fatalf("len(guesses) = %d, want >= 2 when sniff contradicts hint", len(guesses))
	}
	if guesses[0].MIMEType != "text/plain" {
		t.Errorf("first candidate MIMEType = %q, want text/plain (hints rank first)", guesses[0].MIMEType)
	}
	found := false
	for _, g := range guesses[1:] {
		if g.MIMEType == "image/png" {
			found = true
		}
	}
	if !found {
		t.Error("sniffed image/png candidate missing")
	}
}

func TestGuessStreamInfoKoreanCharset(t *testing.T) {
	raw := encodeEUCKR(t, "안녕하세요, 반갑습니다. 오늘 날씨가 좋네요.")

	guesses := guessStreamInfo(raw, StreamInfo{Extension: ".txt"}, true)
	if len(guesses) == 0 {
		t.Fatal("no candidates")
	}
	if guesses[0].Charset != "cp949" {
		t.Errorf("first candidate Charset = %q, want cp949 in Korean mode", guesses[0].Charset)
	}
}

func TestSniffCharsetKoreanLegacyPeekIntact(t *testing.T) {
	// The whole peek is valid CP949; nothing may trim its tail before the
	// strict decode, or the cascade degrades to the statistical detector
	// and misreports the encoding.
	raw := encodeEUCKR(t, "안녕하세요")

	if got := sniffCharset(raw, true); got != "cp949" {
		t.Errorf("sniffCharset = %q, want cp949", got)
	}
}

func TestKoreanDetectTruncatedUTF8(t *testing.T) {
	full := []byte("안녕하세요")
	cut := full[:len(full)-1] // last rune split by the peek boundary

	name, low := koreanDetect(cut)
	if name != "utf-8" {
		t.Errorf("koreanDetect = %q, want utf-8", name)
	}
	if low {
		t.Error("truncation-repaired UTF-8 must not be low confidence")
	}
}

func TestGuessStreamInfoBinaryFallback(t *testing.T) {
	raw := []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0x00}

	guesses := guessStreamInfo(raw, StreamInfo{}, false)
	if len(guesses) == 0 {
		t.Fatal("no candidates")
	}
	last := guesses[len(guesses)-1]
	if last.MIMEType != "application/octet-stream" {
		t.Errorf("fallback MIMEType = %q, want application/octet-stream for binary input", last.MIMEType)
	}
}

func TestTrimPartialRune(t *testing.T) {
	full := []byte("가나다") // 9 bytes of UTF-8
	cut := full[:8]       // last rune truncated

	got := trimPartialRune(cut)
	if string(got) != "가나" {
		t.Errorf("trimPartialRune = %q, want %q", got, "가나")
	}

	if got := trimPartialRune(full); string(got) != "가나다" {
		t.Errorf("trimPartialRune on valid input = %q, want unchanged", got)
	}
}

func TestLooksTextual(t *testing.T) {
	tests := []struct {
		name string
		peek []byte
		want bool
	}{
		{"empty", nil, true},
		{"ascii", []byte("hello world\n"), true},
		{"high bytes", []byte{0xBE, 0xC8, 0xB3, 0xE7}, true}, // legacy encodings are textual
		{"nul byte", []byte{'a', 0x00, 'b'}, false},
		{"control chars", []byte{'a', 0x07, 'b'}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksTextual(tt.peek); got != tt.want {
				t.Errorf("looksTextual(%v) = %v, want %v", tt.peek, got, tt.want)
			}
		})
	}
}
