package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCapturesProbeResults(t *testing.T) {
	r := New(map[string]ProbeFunc{
		BackendMecab: func() (Status, string) {
			return StatusFunctional, "/usr/bin/mecab"
		},
		BackendTesseract: func() (Status, string) {
			return StatusNonfunctional, "exit status 127"
		},
	})

	assert.Equal(t, StatusFunctional, r.StatusOf(BackendMecab))
	assert.True(t, r.Functional(BackendMecab))
	assert.Equal(t, "/usr/bin/mecab", r.Detail(BackendMecab))

	assert.Equal(t, StatusNonfunctional, r.StatusOf(BackendTesseract))
	assert.False(t, r.Functional(BackendTesseract))
	assert.Equal(t, "exit status 127", r.Detail(BackendTesseract))
}

func TestUnknownBackendIsAbsent(t *testing.T) {
	r := New(nil)

	assert.Equal(t, StatusAbsent, r.StatusOf("nonexistent"))
	assert.False(t, r.Functional("nonexistent"))
	assert.Empty(t, r.Detail("nonexistent"))
}

func TestHint(t *testing.T) {
	r := New(map[string]ProbeFunc{
		BackendMecab: func() (Status, string) { return StatusFunctional, "" },
	})

	assert.Empty(t, r.Hint(BackendMecab), "functional backends need no remediation")
	assert.NotEmpty(t, r.Hint(BackendTesseract))
	assert.NotEmpty(t, r.Hint(BackendKomoran))
	assert.Empty(t, r.Hint("nonexistent"), "unknown backends have no canned hint")
}

func TestPanickingProbeIsNonfunctional(t *testing.T) {
	r := New(map[string]ProbeFunc{
		BackendPDFium: func() (Status, string) { panic("wasm init exploded") },
	})

	assert.Equal(t, StatusNonfunctional, r.StatusOf(BackendPDFium))
	assert.Contains(t, r.Detail(BackendPDFium), "probe panicked")
	assert.Contains(t, r.Detail(BackendPDFium), "wasm init exploded")
}

func TestBackendsSorted(t *testing.T) {
	r := New(map[string]ProbeFunc{
		BackendTesseract: func() (Status, string) { return StatusAbsent, "" },
		BackendKomoran:   func() (Status, string) { return StatusAbsent, "" },
		BackendMecab:     func() (Status, string) { return StatusAbsent, "" },
		BackendPDFium:    func() (Status, string) { return StatusAbsent, "" },
	})

	assert.Equal(t, []string{"komoran", "mecab", "pdfium", "tesseract"}, r.Backends())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "absent", StatusAbsent.String())
	assert.Equal(t, "nonfunctional", StatusNonfunctional.String())
	assert.Equal(t, "functional", StatusFunctional.String())
}
