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

// Package markitdown converts heterogeneous document sources (files,
// byte streams, URLs) into normalized Markdown, with specialized handling
// for Korean-language content.
package markitdown

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/VoidLight00/voidlight-markitdown-go/capability"
	"github.com/VoidLight00/voidlight-markitdown-go/korean"
)

// MarkItDown is the conversion dispatch engine. Construct it and register
// any custom converters during initialization; once conversion traffic
// begins, the instance is safe for concurrent Convert calls because the
// registry is then read-only and every call allocates its own state.
type MarkItDown struct {
	registry   converterRegistry
	caps       *capability.Report
	korean     *korean.Processor
	httpClient *http.Client
	defaults   ConvertOptions
}

// New creates a MarkItDown instance with the built-in converters.
func New(opts ...Option) *MarkItDown {
	m := &MarkItDown{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(m)
	}
	var kopts []korean.ProcessorOption
	if m.caps != nil {
		kopts = append(kopts, korean.WithCapabilities(m.caps))
	}
	m.korean = korean.NewProcessor(kopts...)
	m.enableBuiltins()
	return m
}

// capabilities resolves the injected report, or the process-wide default
// on first use.
func (m *MarkItDown) capabilities() *capability.Report {
	if m.caps != nil {
		return m.caps
	}
	return capability.Default()
}

// RegisterConverter adds a converter binding. This is an
// initialization-phase operation: it must complete before any Convert
// traffic begins, since no lock protects the registry against concurrent
// registration and dispatch. With override set the binding is inserted at
// the head of its tier, pre-empting earlier registrations (including
// built-ins) for the same formats.
func (m *MarkItDown) RegisterConverter(name string, c DocumentConverter, tier PriorityTier, override bool) {
	m.registry.register(name, c, tier, override)
}

// Convert auto-detects the source type (file path or URL) and converts it.
func (m *MarkItDown) Convert(source string, opts ...ConvertOption) (*DocumentConverterResult, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return m.ConvertURL(source, opts...)
	}
	return m.ConvertFile(source, opts...)
}

// ConvertFile converts a local file to markdown.
func (m *MarkItDown) ConvertFile(path string, opts ...ConvertOption) (*DocumentConverterResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	hints := StreamInfo{
		Extension: strings.ToLower(filepath.Ext(path)),
		Filename:  filepath.Base(path),
		LocalPath: path,
	}
	return m.ConvertReader(f, hints, opts...)
}

// ConvertURL fetches a URL and converts the response to markdown.
func (m *MarkItDown) ConvertURL(url string, opts ...ConvertOption) (*DocumentConverterResult, error) {
	resp, err := m.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	hints := StreamInfo{URL: url}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		parts := strings.Split(ct, ";")
		hints.MIMEType = strings.TrimSpace(parts[0])
		for _, p := range parts[1:] {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "charset=") {
				hints.Charset = strings.Trim(strings.TrimPrefix(p, "charset="), `"'`)
			}
		}
	}

	urlPath := strings.Split(url, "?")[0]
	hints.Extension = strings.ToLower(filepath.Ext(urlPath))
	if hints.Extension != "" {
		hints.Filename = filepath.Base(urlPath)
	}

	return m.ConvertStream(resp.Body, hints, opts...)
}

// ConvertBytes converts an in-memory document.
func (m *MarkItDown) ConvertBytes(data []byte, hints StreamInfo, opts ...ConvertOption) (*DocumentConverterResult, error) {
	return m.ConvertReader(bytes.NewReader(data), hints, opts...)
}

// ConvertStream converts from an arbitrary reader. Non-seekable sources
// are buffered into a seekable form first, because several converters may
// need to read from the start.
func (m *MarkItDown) ConvertStream(r io.Reader, hints StreamInfo, opts ...ConvertOption) (*DocumentConverterResult, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return m.ConvertReader(rs, hints, opts...)
	}

	co := m.buildOptions(opts)
	var src io.Reader = r
	if co.MaxInputSize > 0 {
		src = io.LimitReader(r, co.MaxInputSize+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("buffer input: %w", err)
	}
	if co.MaxInputSize > 0 && int64(len(data)) > co.MaxInputSize {
		return nil, fmt.Errorf("input exceeds maximum size of %d bytes", co.MaxInputSize)
	}
	return m.convert(bytes.NewReader(data), hints, co)
}

// ConvertReader converts a seekable stream using the provided hints.
func (m *MarkItDown) ConvertReader(r io.ReadSeeker, hints StreamInfo, opts ...ConvertOption) (*DocumentConverterResult, error) {
	return m.convert(r, hints, m.buildOptions(opts))
}

func (m *MarkItDown) buildOptions(opts []ConvertOption) ConvertOptions {
	co := m.defaults
	for _, opt := range opts {
		opt(&co)
	}
	return co
}

// convert is the dispatch loop: for each StreamInfo guess in guesser
// order, for each binding in tier-then-registration order, probe
// acceptance and attempt conversion. The first success wins; every other
// trial is recorded as a tagged attempt, and only total exhaustion
// surfaces as an error. The stream is borrowed from the caller and left
// at the start position on every path.
func (m *MarkItDown) convert(r io.ReadSeeker, hints StreamInfo, co ConvertOptions) (result *DocumentConverterResult, err error) {
	defer func() {
		if _, serr := r.Seek(0, io.SeekStart); serr != nil && err == nil {
			err = fmt.Errorf("rewind input: %w", serr)
		}
	}()

	peek, err := readPeek(r)
	if err != nil {
		return nil, fmt.Errorf("peek input: %w", err)
	}

	guesses := guessStreamInfo(peek, hints, co.KoreanMode)
	bindings := m.registry.ordered()
	attempts := make([]ConversionAttempt, 0, len(guesses)*len(bindings))

	for _, guess := range guesses {
		for _, b := range bindings {
			if _, err := r.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("seek: %w", err)
			}
			if !b.converter.Accepts(r, guess) {
				attempts = append(attempts, ConversionAttempt{
					Converter: b.name,
					Info:      guess,
					Outcome:   OutcomeNotAccepted,
				})
				continue
			}

			if _, err := r.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("seek: %w", err)
			}
			res, convErr := b.converter.Convert(r, guess, co)
			if convErr != nil {
				outcome := OutcomeConversionFailed
				if IsMissingDependency(convErr) {
					outcome = OutcomeMissingDependency
				}
				attempts = append(attempts, ConversionAttempt{
					Converter: b.name,
					Info:      guess,
					Outcome:   outcome,
					Err:       convErr,
				})
				continue
			}
			if res == nil {
				res = &DocumentConverterResult{}
			}

			res.Markdown = normalizeOutput(res.Markdown)

			if co.KoreanMode || korean.IsKoreanCharset(guess.Charset) {
				text, stats := m.korean.ProcessText(res.Markdown)
				res.Markdown = text
				stats.DetectedEncoding = "utf-8"
				if guess.Charset != "" {
					// A charset candidate marks a textual source; report
					// the cascade's own verdict on the input bytes, not
					// the guesser's candidate label.
					enc, low := koreanDetect(peek)
					stats.DetectedEncoding = enc
					stats.LowConfidence = stats.LowConfidence || low
				}
				attachKoreanStats(&res.Metadata, stats)
			}
			return res, nil
		}
	}

	return nil, &ConversionError{Attempts: attempts}
}

func attachKoreanStats(md *Metadata, stats korean.Stats) {
	md.Set("detected_encoding", stats.DetectedEncoding)
	md.Set("hangul_ratio", stats.HangulRatio)
	md.Set("hanja_present", stats.HanjaPresent)
	md.Set("mixed_script", stats.MixedScript)
	md.Set("tokenizer_backend", stats.TokenizerBackend)
	if stats.LowConfidence {
		md.Set("low_confidence", true)
	}
}

// readPeek reads the bounded sniffing prefix and rewinds.
func readPeek(r io.ReadSeeker) ([]byte, error) {
	buf := make([]byte, maxSniffBytes)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// enableBuiltins registers all built-in converters. Specific-format
// converters occupy tier 0, generic fallbacks tier 1; within a tier the
// registration order below is the trial order.
func (m *MarkItDown) enableBuiltins() {
	m.RegisterConverter("csv", NewCsvConverter(), TierSpecific, false)
	m.RegisterConverter("rss", NewRSSConverter(), TierSpecific, false)
	m.RegisterConverter("ipynb", NewIpynbConverter(), TierSpecific, false)
	m.RegisterConverter("docx", NewDocxConverter(m), TierSpecific, false)
	m.RegisterConverter("xlsx", NewXlsxConverter(), TierSpecific, false)
	m.RegisterConverter("xls", NewXlsConverter(), TierSpecific, false)
	m.RegisterConverter("pptx", NewPptxConverter(m), TierSpecific, false)
	m.RegisterConverter("hwp", NewHwpConverter(), TierSpecific, false)
	m.RegisterConverter("pdf", NewPdfConverter(m), TierSpecific, false)
	m.RegisterConverter("epub", NewEpubConverter(m), TierSpecific, false)
	m.RegisterConverter("image", NewImageConverter(m), TierSpecific, false)

	m.RegisterConverter("html", NewHTMLConverter(m), TierGeneric, false)
	m.RegisterConverter("zip", NewZipConverter(m), TierGeneric, false)
	m.RegisterConverter("plaintext", NewPlainTextConverter(), TierGeneric, false)
}
