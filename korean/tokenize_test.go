package korean

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidLight00/voidlight-markitdown-go/capability"
)

// absentCaps reports every backend as absent, forcing the rule fallback.
func absentCaps() *capability.Report {
	return capability.New(nil)
}

func TestTokenizeFallsBackToRule(t *testing.T) {
	p := NewProcessor(WithCapabilities(absentCaps()))

	tokens, backend := p.Tokenize("안녕하세요")
	assert.Equal(t, BackendRule, backend)
	assert.NotEmpty(t, tokens)
}

func TestRuleTokenizeClassBoundaries(t *testing.T) {
	tokens := ruleTokenize("안녕하세요 Go 123.")

	require.Len(t, tokens, 4)
	assert.Equal(t, Token{Surface: "안녕하세요", Tag: "NNG"}, tokens[0])
	assert.Equal(t, Token{Surface: "Go", Tag: "SL"}, tokens[1])
	assert.Equal(t, Token{Surface: "123", Tag: "SN"}, tokens[2])
	assert.Equal(t, Token{Surface: ".", Tag: "SP"}, tokens[3])
}

func TestRuleTokenizeSplitsAdjacentScripts(t *testing.T) {
	// No whitespace between the scripts; the class change is the boundary.
	tokens := ruleTokenize("한글abc123")

	require.Len(t, tokens, 3)
	assert.Equal(t, "한글", tokens[0].Surface)
	assert.Equal(t, "abc", tokens[1].Surface)
	assert.Equal(t, "123", tokens[2].Surface)
}

func TestRuleTokenizeHanja(t *testing.T) {
	tokens := ruleTokenize("韓國 여행")

	require.Len(t, tokens, 2)
	assert.Equal(t, Token{Surface: "韓國", Tag: "SH"}, tokens[0])
	assert.Equal(t, Token{Surface: "여행", Tag: "NNG"}, tokens[1])
}

func TestRuleTokenizeEmpty(t *testing.T) {
	assert.Empty(t, ruleTokenize(""))
	assert.Empty(t, ruleTokenize("   \n\t"))
}

func TestParseMecabOutput(t *testing.T) {
	out := "안녕\tIC,*,*,*,*,*,*,*\r\n하세요\tXSV+EF,*,*,*,*,*,*,*\nEOS\n\n"

	tokens := parseMecabOutput(out)
	require.Len(t, tokens, 2)
	assert.Equal(t, Token{Surface: "안녕", Tag: "IC"}, tokens[0])
	assert.Equal(t, Token{Surface: "하세요", Tag: "XSV+EF"}, tokens[1])
}

func TestTokenizeSkipsBrokenBackend(t *testing.T) {
	// mecab reports functional but its binary is missing at runtime: the
	// first call must mark it broken and settle on the rule fallback, and
	// later calls must not retry it.
	caps := capability.New(map[string]capability.ProbeFunc{
		capability.BackendMecab: func() (capability.Status, string) {
			return capability.StatusFunctional, "fake"
		},
	})
	p := NewProcessor(WithCapabilities(caps))

	if _, err := exec.LookPath("mecab"); err == nil {
		t.Skip("mecab is installed; cannot simulate a broken backend")
	}

	_, backend := p.Tokenize("안녕")
	assert.Equal(t, BackendRule, backend)
	assert.True(t, p.isBroken(capability.BackendMecab))

	_, backend = p.Tokenize("안녕")
	assert.Equal(t, BackendRule, backend)
}

func TestProcessText(t *testing.T) {
	p := NewProcessor(WithCapabilities(absentCaps()))

	text, stats := p.ProcessText("ＡＢＣ 안녕하세요")
	assert.Equal(t, "ABC 안녕하세요", text)
	assert.Equal(t, BackendRule, stats.TokenizerBackend)
	assert.True(t, stats.MixedScript)
	assert.Greater(t, stats.HangulRatio, 0.5)
}

func TestProcessBytes(t *testing.T) {
	p := NewProcessor(WithCapabilities(absentCaps()))

	raw := encodeEUCKR(t, "안녕하세요 세계")
	text, stats := p.ProcessBytes(raw)
	assert.Equal(t, "안녕하세요 세계", text)
	assert.Equal(t, "cp949", stats.DetectedEncoding)
	assert.Equal(t, BackendRule, stats.TokenizerBackend)
	assert.False(t, stats.LowConfidence)
}
