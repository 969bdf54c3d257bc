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

// Package korean implements the Korean text pipeline: encoding-cascade
// detection, normalization, script classification, and tokenization with
// backend fallback. No stage fails; each degrades to a documented
// fallback and records which path was used, so callers only ever see a
// lowered-confidence flag, never an error.
package korean

import (
	"sync"

	"github.com/VoidLight00/voidlight-markitdown-go/capability"
)

// Stats describes the Korean-text characteristics of one document.
type Stats struct {
	HangulRatio      float64
	HanjaPresent     bool
	MixedScript      bool
	DetectedEncoding string
	TokenizerBackend string
	LowConfidence    bool
}

// Processor runs the pipeline. The zero-argument constructor uses the
// process-wide capability report; tests inject a fake one.
type Processor struct {
	caps *capability.Report

	mu     sync.Mutex
	broken map[string]bool
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithCapabilities injects a capability report instead of the
// process-wide default.
func WithCapabilities(report *capability.Report) ProcessorOption {
	return func(p *Processor) {
		p.caps = report
	}
}

// NewProcessor creates a Processor. Backend availability is not probed
// here; the first Tokenize call resolves the capability report.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{broken: make(map[string]bool)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) report() *capability.Report {
	if p.caps != nil {
		return p.caps
	}
	return capability.Default()
}

// markBroken records a runtime failure so a known-broken backend is never
// re-attempted on later calls.
func (p *Processor) markBroken(name string) {
	p.mu.Lock()
	p.broken[name] = true
	p.mu.Unlock()
}

func (p *Processor) isBroken(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.broken[name]
}

// ProcessBytes runs the full pipeline on raw bytes: decode, normalize,
// classify, and tokenize (to record the backend).
func (p *Processor) ProcessBytes(raw []byte) (string, Stats) {
	encoding, text, low := DetectEncoding(raw)
	text, stats := p.ProcessText(text)
	stats.DetectedEncoding = encoding
	stats.LowConfidence = stats.LowConfidence || low
	return text, stats
}

// ProcessText normalizes already-decoded text and derives its stats.
func (p *Processor) ProcessText(text string) (string, Stats) {
	text = Normalize(text)
	stats := Classify(text)
	_, backend := p.Tokenize(text)
	stats.TokenizerBackend = backend
	return text, stats
}
