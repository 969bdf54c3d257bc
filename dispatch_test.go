package markitdown

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	xkorean "golang.org/x/text/encoding/korean"

	"github.com/VoidLight00/voidlight-markitdown-go/capability"
	"github.com/VoidLight00/voidlight-markitdown-go/korean"
)

// fakeConverter is a scriptable DocumentConverter for dispatch tests.
type fakeConverter struct {
	acceptAll bool
	ext       string
	result    *DocumentConverterResult
	err       error
	calls     int
}

func (f *fakeConverter) Accepts(_ io.ReadSeeker, info StreamInfo) bool {
	return f.acceptAll || (f.ext != "" && info.Extension == f.ext)
}

func (f *fakeConverter) Convert(_ io.ReadSeeker, _ StreamInfo, _ ConvertOptions) (*DocumentConverterResult, error) {
	f.calls++
	return f.result, f.err
}

// noDepsReport is a capability report with every backend absent.
func noDepsReport() *capability.Report {
	return capability.New(nil)
}

// bareEngine builds an engine with an empty registry so tests control
// exactly which converters participate.
func bareEngine() *MarkItDown {
	caps := noDepsReport()
	return &MarkItDown{
		caps:   caps,
		korean: korean.NewProcessor(korean.WithCapabilities(caps)),
	}
}

func TestDispatchFirstSuccessWins(t *testing.T) {
	m := bareEngine()
	winner := &fakeConverter{acceptAll: true, result: &DocumentConverterResult{Markdown: "won"}}
	loser := &fakeConverter{acceptAll: true, result: &DocumentConverterResult{Markdown: "lost"}}
	m.RegisterConverter("winner", winner, TierSpecific, false)
	m.RegisterConverter("loser", loser, TierGeneric, false)

	result, err := m.ConvertBytes([]byte("hello"), StreamInfo{Extension: ".txt"})
	if err != nil {
		t.Fatalf("ConvertBytes error: %v", err)
	}
	if result.Markdown != "won\n" {
		t.Errorf("Markdown = %q, want %q", result.Markdown, "won\n")
	}
	if winner.calls != 1 {
		t.Errorf("winner.calls = %d, want 1", winner.calls)
	}
	if loser.calls != 0 {
		t.Errorf("loser.calls = %d, want 0 (must not run after a success)", loser.calls)
	}
}

func TestDispatchTierOrdering(t *testing.T) {
	m := bareEngine()
	generic := &fakeConverter{acceptAll: true, result: &DocumentConverterResult{Markdown: "generic"}}
	specific := &fakeConverter{acceptAll: true, result: &DocumentConverterResult{Markdown: "specific"}}

	// Specific tier wins even when the generic converter registered first.
	m.RegisterConverter("generic", generic, TierGeneric, false)
	m.RegisterConverter("specific", specific, TierSpecific, false)

	result, err := m.ConvertBytes([]byte("hello"), StreamInfo{Extension: ".txt"})
	if err != nil {
		t.Fatalf("ConvertBytes error: %v", err)
	}
	if result.Markdown != "specific\n" {
		t.Errorf("Markdown = %q, want %q", result.Markdown, "specific\n")
	}
}

func TestDispatchOverrideInsertsAtTierHead(t *testing.T) {
	m := bareEngine()
	builtin := &fakeConverter{acceptAll: true, result: &DocumentConverterResult{Markdown: "builtin"}}
	custom := &fakeConverter{acceptAll: true, result: &DocumentConverterResult{Markdown: "custom"}}

	m.RegisterConverter("builtin", builtin, TierSpecific, false)
	m.RegisterConverter("custom", custom, TierSpecific, true)

	result, err := m.ConvertBytes([]byte("hello"), StreamInfo{Extension: ".txt"})
	if err != nil {
		t.Fatalf("ConvertBytes error: %v", err)
	}
	if result.Markdown != "custom\n" {
		t.Errorf("Markdown = %q, want %q (override must pre-empt earlier registration)", result.Markdown, "custom\n")
	}
	if builtin.calls != 0 {
		t.Errorf("builtin.calls = %d, want 0", builtin.calls)
	}
}

func TestDispatchRegistrationOrderWithinTier(t *testing.T) {
	m := bareEngine()
	first := &fakeConverter{acceptAll: true, result: &DocumentConverterResult{Markdown: "first"}}
	second := &fakeConverter{acceptAll: true, result: &DocumentConverterResult{Markdown: "second"}}

	m.RegisterConverter("first", first, TierSpecific, false)
	m.RegisterConverter("second", second, TierSpecific, false)

	// Same input, several runs: the outcome must be deterministic.
	for i := 0; i < 3; i++ {
		result, err := m.ConvertBytes([]byte("hello"), StreamInfo{Extension: ".txt"})
		if err != nil {
			t.Fatalf("ConvertBytes error: %v", err)
		}
		if result.Markdown != "first\n" {
			t.Errorf("run %d: Markdown = %q, want %q", i, result.Markdown, "first\n")
		}
	}
	if second.calls != 0 {
		t.Errorf("second.calls = %d, want 0", second.calls)
	}
}

func TestDispatchExhaustionAggregatesAttempts(t *testing.T) {
	m := bareEngine()
	m.RegisterConverter("alpha", &fakeConverter{}, TierSpecific, false)
	m.RegisterConverter("beta", &fakeConverter{}, TierGeneric, false)

	_, err := m.ConvertBytes([]byte("hello world"), StreamInfo{Extension: ".txt"})
	if err == nil {
		t.Fatal("expected an error when no converter accepts")
	}

	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("error type = %T, want *ConversionError", err)
	}
	if len(convErr.Attempts) != 2 {
		t.Fatalf("len(Attempts) = %d, want 2 (one per converter per guess)", len(convErr.Attempts))
	}
	for _, a := range convErr.Attempts {
		if a.Outcome != OutcomeNotAccepted {
			t.Errorf("attempt %s outcome = %q, want %q", a.Converter, a.Outcome, OutcomeNotAccepted)
		}
	}
	msg := err.Error()
	for _, name := range []string{"alpha", "beta"} {
		if !strings.Contains(msg, name) {
			t.Errorf("error message should name converter %q:\n%s", name, msg)
		}
	}
}

func TestDispatchRecordsFailuresAndMissingDeps(t *testing.T) {
	m := bareEngine()
	m.RegisterConverter("broken", &fakeConverter{
		acceptAll: true,
		err:       errors.New("parse exploded"),
	}, TierSpecific, false)
	m.RegisterConverter("needy", &fakeConverter{
		acceptAll: true,
		err:       &MissingDependencyError{Backend: capability.BackendTesseract, Hint: "install tesseract-ocr"},
	}, TierSpecific, false)

	_, err := m.ConvertBytes([]byte("hello"), StreamInfo{Extension: ".txt"})
	if err == nil {
		t.Fatal("expected an error")
	}

	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("error type = %T, want *ConversionError", err)
	}

	outcomes := map[string]AttemptOutcome{}
	for _, a := range convErr.Attempts {
		if _, seen := outcomes[a.Converter]; !seen {
			outcomes[a.Converter] = a.Outcome
		}
	}
	if outcomes["broken"] != OutcomeConversionFailed {
		t.Errorf("broken outcome = %q, want %q", outcomes["broken"], OutcomeConversionFailed)
	}
	if outcomes["needy"] != OutcomeMissingDependency {
		t.Errorf("needy outcome = %q, want %q", outcomes["needy"], OutcomeMissingDependency)
	}
	if msg := err.Error(); !strings.Contains(msg, "install tesseract-ocr") {
		t.Errorf("remediation hint missing from aggregated error:\n%s", msg)
	}
}

func TestDispatchFallsBackAcrossFailure(t *testing.T) {
	m := bareEngine()
	m.RegisterConverter("flaky", &fakeConverter{
		acceptAll: true,
		err:       errors.New("corrupt input"),
	}, TierSpecific, false)
	m.RegisterConverter("steady", &fakeConverter{
		acceptAll: true,
		result:    &DocumentConverterResult{Markdown: "recovered"},
	}, TierGeneric, false)

	result, err := m.ConvertBytes([]byte("hello"), StreamInfo{Extension: ".txt"})
	if err != nil {
		t.Fatalf("ConvertBytes error: %v", err)
	}
	if result.Markdown != "recovered\n" {
		t.Errorf("Markdown = %q, want %q", result.Markdown, "recovered\n")
	}
}

func TestDispatchAttemptMatrixComplete(t *testing.T) {
	m := bareEngine()
	m.RegisterConverter("alpha", &fakeConverter{}, TierSpecific, false)
	m.RegisterConverter("beta", &fakeConverter{}, TierGeneric, false)

	// Extension hint says text, magic bytes say PNG: three candidates
	// (hint, sniffed contradiction, generic fallback), each tried against
	// both converters.
	pngMagic := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

	_, err := m.ConvertBytes(pngMagic, StreamInfo{Extension: ".txt"})
	if err == nil {
		t.Fatal("expected an error when no converter accepts")
	}

	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("error type = %T, want *ConversionError", err)
	}
	if len(convErr.Attempts) != 6 {
		t.Fatalf("len(Attempts) = %d, want 6 (3 guesses x 2 converters)", len(convErr.Attempts))
	}
	for _, a := range convErr.Attempts {
		if a.Outcome != OutcomeNotAccepted {
			t.Errorf("attempt %s outcome = %q, want %q", a.Converter, a.Outcome, OutcomeNotAccepted)
		}
	}
	if !IsUnsupportedFormat(err) {
		t.Error("full rejection should unwrap to UnsupportedFormatError")
	}
}

func TestConvertCorruptedArchiveFallsBackToText(t *testing.T) {
	m := New(WithCapabilities(noDepsReport()))

	// A ZIP signature on bytes that are not a ZIP archive: the zip
	// converter accepts and fails, and the terminal octet-stream fallback
	// must still yield a best-effort textual result.
	data := append([]byte("PK\x03\x04"), []byte(" this is not really an archive")...)

	result, err := m.ConvertBytes(data, StreamInfo{})
	if err != nil {
		t.Fatalf("ConvertBytes error: %v", err)
	}
	if !strings.Contains(result.Markdown, "not really an archive") {
		t.Errorf("best-effort text missing from output: %q", result.Markdown)
	}
}

func TestConvertPlainMarkdownPassthrough(t *testing.T) {
	m := New(WithCapabilities(noDepsReport()))

	result, err := m.ConvertBytes([]byte("# Hi\n"), StreamInfo{Extension: ".txt"})
	if err != nil {
		t.Fatalf("ConvertBytes error: %v", err)
	}
	if result.Markdown != "# Hi\n" {
		t.Errorf("Markdown = %q, want %q", result.Markdown, "# Hi\n")
	}
	if n := result.Metadata.Len(); n != 0 {
		t.Errorf("Metadata.Len() = %d, want 0 for non-Korean conversion", n)
	}
}

func TestConvertKoreanModeAttachesMetadata(t *testing.T) {
	m := New(WithCapabilities(noDepsReport()))

	raw := encodeEUCKR(t, "안녕하세요 세계")
	result, err := m.ConvertBytes(raw, StreamInfo{Extension: ".txt"}, KoreanMode())
	if err != nil {
		t.Fatalf("ConvertBytes error: %v", err)
	}
	if !strings.Contains(result.Markdown, "안녕하세요") {
		t.Errorf("Markdown should contain decoded Hangul, got %q", result.Markdown)
	}

	enc, ok := result.Metadata.Get("detected_encoding")
	if !ok {
		t.Fatal("detected_encoding metadata missing")
	}
	if enc != "cp949" {
		t.Errorf("detected_encoding = %v, want cp949", enc)
	}

	backend, ok := result.Metadata.Get("tokenizer_backend")
	if !ok || backend != korean.BackendRule {
		t.Errorf("tokenizer_backend = %v (ok=%v), want %q when no backend is installed", backend, ok, korean.BackendRule)
	}

	ratio, ok := result.Metadata.Get("hangul_ratio")
	if !ok {
		t.Fatal("hangul_ratio metadata missing")
	}
	if r, isFloat := ratio.(float64); !isFloat || r <= 0.5 {
		t.Errorf("hangul_ratio = %v, want > 0.5", ratio)
	}
}

func TestConvertStreamBuffersAndLimits(t *testing.T) {
	m := New(WithCapabilities(noDepsReport()))

	// A bare io.Reader (not a ReadSeeker) must be buffered transparently.
	result, err := m.ConvertStream(onlyReader{bytes.NewReader([]byte("plain text"))}, StreamInfo{Extension: ".txt"})
	if err != nil {
		t.Fatalf("ConvertStream error: %v", err)
	}
	if result.Markdown != "plain text\n" {
		t.Errorf("Markdown = %q, want %q", result.Markdown, "plain text\n")
	}

	_, err = m.ConvertStream(onlyReader{bytes.NewReader([]byte("0123456789"))}, StreamInfo{Extension: ".txt"}, WithMaxInputSize(4))
	if err == nil {
		t.Fatal("expected an error when input exceeds max size")
	}
}

func TestConvertLeavesStreamAtStart(t *testing.T) {
	m := New(WithCapabilities(noDepsReport()))

	r := bytes.NewReader([]byte("hello"))
	if _, err := m.ConvertReader(r, StreamInfo{Extension: ".txt"}); err != nil {
		t.Fatalf("ConvertReader error: %v", err)
	}
	if pos, _ := r.Seek(0, io.SeekCurrent); pos != 0 {
		t.Errorf("stream position after conversion = %d, want 0", pos)
	}
}

// onlyReader hides any Seek method from the wrapped reader.
type onlyReader struct {
	r io.Reader
}

func (o onlyReader) Read(p []byte) (int, error) { return o.r.Read(p) }

func encodeEUCKR(t *testing.T, s string) []byte {
	t.Helper()
	out, err := xkorean.EUCKR.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encode EUC-KR: %v", err)
	}
	return out
}
