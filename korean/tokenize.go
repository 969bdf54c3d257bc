// Copyright 2026 VoidLight
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package korean

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"unicode"

	"github.com/VoidLight00/voidlight-markitdown-go/capability"
)

// Token is one morpheme with its part-of-speech tag (Sejong tagset for
// the external backends, coarse guesses for the rule fallback).
type Token struct {
	Surface string
	Tag     string
}

// BackendRule names the built-in rule-based tokenizer, the guaranteed
// last resort of the chain.
const BackendRule = "rule"

// tokenizerBackend is one strategy in the fallback chain.
type tokenizerBackend interface {
	name() string
	tokenize(text string) ([]Token, error)
}

// tokenizerChain lists the external backends in preference order. The
// rule tokenizer is not part of the chain; it always runs when the chain
// is exhausted.
var tokenizerChain = []tokenizerBackend{
	mecabBackend{},
	komoranBackend{},
}

// Tokenize splits text into morphemes, preferring mecab, then the JVM
// KOMORAN backend, then the rule-based fallback. Backend availability
// comes from the cached capability report; a backend that fails at
// runtime is remembered as broken and never retried. The chosen backend
// name is always returned.
func (p *Processor) Tokenize(text string) ([]Token, string) {
	report := p.report()
	for _, backend := range tokenizerChain {
		name := backend.name()
		if p.isBroken(name) || !report.Functional(name) {
			continue
		}
		tokens, err := backend.tokenize(text)
		if err != nil {
			p.markBroken(name)
			continue
		}
		return tokens, name
	}
	return ruleTokenize(text), BackendRule
}

// mecabBackend shells out to the mecab-ko binary.
type mecabBackend struct{}

func (mecabBackend) name() string { return capability.BackendMecab }

func (mecabBackend) tokenize(text string) ([]Token, error) {
	cmd := exec.Command("mecab")
	cmd.Stdin = strings.NewReader(text)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run mecab: %w", err)
	}
	return parseMecabOutput(out.String()), nil
}

// parseMecabOutput reads mecab's default lattice format:
// surface<TAB>POS,feature,feature,... with EOS terminating a sentence.
func parseMecabOutput(out string) []Token {
	var tokens []Token
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || line == "EOS" {
			continue
		}
		surface, features, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		tag := features
		if i := strings.IndexByte(features, ','); i >= 0 {
			tag = features[:i]
		}
		tokens = append(tokens, Token{Surface: surface, Tag: tag})
	}
	return tokens
}

// komoranBackend drives the KOMORAN jar through a JVM. The wrapper jar
// reads plain text on stdin and writes surface<TAB>tag lines.
type komoranBackend struct{}

func (komoranBackend) name() string { return capability.BackendKomoran }

func (komoranBackend) tokenize(text string) ([]Token, error) {
	jar := os.Getenv("KOMORAN_JAR")
	if jar == "" {
		return nil, fmt.Errorf("KOMORAN_JAR is not set")
	}
	cmd := exec.Command("java", "-jar", jar)
	cmd.Stdin = strings.NewReader(text)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run komoran: %w", err)
	}

	var tokens []Token
	for _, line := range strings.Split(out.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		surface, tag, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		tokens = append(tokens, Token{Surface: surface, Tag: tag})
	}
	return tokens, nil
}

// runeClass buckets characters for the rule tokenizer.
type runeClass int

const (
	classSpace runeClass = iota
	classHangul
	classHanja
	classLatin
	classDigit
	classPunct
	classOther
)

func classOf(r rune) runeClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case isHangul(r) || (r >= 0x1100 && r <= 0x11FF) || (r >= 0x3130 && r <= 0x318F):
		return classHangul
	case isHanja(r):
		return classHanja
	case unicode.Is(unicode.Latin, r):
		return classLatin
	case unicode.IsDigit(r):
		return classDigit
	case unicode.IsPunct(r) || unicode.IsSymbol(r):
		return classPunct
	}
	return classOther
}

// coarse part-of-speech guesses per character class, borrowing the
// Sejong tag names the real backends emit.
var classTags = map[runeClass]string{
	classHangul: "NNG", // noun-like
	classHanja:  "SH",
	classLatin:  "SL",
	classDigit:  "SN",
	classPunct:  "SP",
	classOther:  "SY",
}

// ruleTokenize splits on whitespace and character-class boundaries and
// assigns coarse tags. It cannot fail and needs no external backend.
func ruleTokenize(text string) []Token {
	var tokens []Token
	var run strings.Builder
	current := classSpace

	flush := func() {
		if run.Len() == 0 {
			return
		}
		tokens = append(tokens, Token{Surface: run.String(), Tag: classTags[current]})
		run.Reset()
	}

	for _, r := range text {
		c := classOf(r)
		if c != current {
			flush()
			current = c
		}
		if c != classSpace {
			run.WriteRune(r)
		}
	}
	flush()
	return tokens
}
