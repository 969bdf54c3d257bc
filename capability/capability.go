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

// Package capability probes which optional backends are actually usable
// in this process. A backend can be absent (not installed at all),
// present but non-functional (installed yet failing its smoke test), or
// functional. The report is computed once and then read lock-free;
// consumers never re-probe a known-broken backend per call.
package capability

import (
	"fmt"
	"sort"
	"sync"
)

// Status is the three-tier availability state of one backend.
type Status int

const (
	// StatusAbsent means the backend is not installed.
	StatusAbsent Status = iota
	// StatusNonfunctional means the backend is installed but failed its
	// smoke test.
	StatusNonfunctional
	// StatusFunctional means the backend passed its smoke test.
	StatusFunctional
)

func (s Status) String() string {
	switch s {
	case StatusAbsent:
		return "absent"
	case StatusNonfunctional:
		return "nonfunctional"
	case StatusFunctional:
		return "functional"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Well-known backend names.
const (
	// BackendPDFium is the PDFium WebAssembly runtime used for PDF text
	// extraction.
	BackendPDFium = "pdfium"
	// BackendTesseract is the tesseract OCR binary used for images.
	BackendTesseract = "tesseract"
	// BackendMecab is the mecab morphological analyzer binary (mecab-ko)
	// used as the fast Korean tokenizer.
	BackendMecab = "mecab"
	// BackendKomoran is the JVM-backed Korean tokenizer (java plus the
	// KOMORAN jar named by $KOMORAN_JAR).
	BackendKomoran = "komoran"
)

// remediationHints tells a user how to make an unavailable backend work.
var remediationHints = map[string]string{
	BackendPDFium:    "the bundled PDFium WebAssembly module failed to initialize; PDF conversion falls back to the pure-Go extractor",
	BackendTesseract: "install tesseract-ocr (with the kor language data for Korean documents) to enable the [image] extra",
	BackendMecab:     "install mecab-ko and the mecab-ko-dic dictionary to enable fast Korean tokenization",
	BackendKomoran:   "install a Java runtime and set KOMORAN_JAR to the KOMORAN jar path to enable the JVM tokenizer",
}

// ProbeFunc determines the status of one backend. The detail string is a
// human-readable note (resolved path, failure output).
type ProbeFunc func() (Status, string)

type backendState struct {
	status Status
	detail string
}

// Report is a read-only snapshot of backend availability. Construct one
// with New (tests) or share the process-wide Default.
type Report struct {
	backends map[string]backendState
}

// New runs every probe once and captures the results. A panicking probe
// is recorded as nonfunctional rather than crashing the caller.
func New(probes map[string]ProbeFunc) *Report {
	r := &Report{backends: make(map[string]backendState, len(probes))}
	for name, probe := range probes {
		r.backends[name] = runProbe(probe)
	}
	return r
}

func runProbe(probe ProbeFunc) (state backendState) {
	defer func() {
		if v := recover(); v != nil {
			state = backendState{
				status: StatusNonfunctional,
				detail: fmt.Sprintf("probe panicked: %v", v),
			}
		}
	}()
	status, detail := probe()
	return backendState{status: status, detail: detail}
}

// StatusOf returns the probed status; unknown backends report absent.
func (r *Report) StatusOf(name string) Status {
	return r.backends[name].status
}

// Functional reports whether the backend passed its smoke test.
func (r *Report) Functional(name string) bool {
	return r.StatusOf(name) == StatusFunctional
}

// Hint returns the remediation hint for an absent or non-functional
// backend, or "" when the backend is functional.
func (r *Report) Hint(name string) string {
	if r.Functional(name) {
		return ""
	}
	return remediationHints[name]
}

// Detail returns the probe's human-readable note for a backend.
func (r *Report) Detail(name string) string {
	return r.backends[name].detail
}

// Backends returns the probed backend names, sorted.
func (r *Report) Backends() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	defaultOnce   sync.Once
	defaultReport *Report
)

// Default returns the process-wide report, probing on first access.
// Concurrent first accesses converge on a single probe execution; after
// that, reads are lock-free.
func Default() *Report {
	defaultOnce.Do(func() {
		defaultReport = New(defaultProbes())
	})
	return defaultReport
}
