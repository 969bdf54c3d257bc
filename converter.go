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

package markitdown

import "io"

// StreamInfo holds format hints about the input being converted.
// It is treated as immutable: refining a guess means constructing a new
// value via Refine, never mutating one that is already in flight.
type StreamInfo struct {
	MIMEType  string
	Extension string
	Charset   string
	Filename  string
	LocalPath string
	URL       string
}

// Refine returns a copy of s with every non-empty field of override
// replacing the corresponding field. Fields override leaves empty keep
// the value from s.
func (s StreamInfo) Refine(override StreamInfo) StreamInfo {
	out := s
	if override.MIMEType != "" {
		out.MIMEType = override.MIMEType
	}
	if override.Extension != "" {
		out.Extension = override.Extension
	}
	if override.Charset != "" {
		out.Charset = override.Charset
	}
	if override.Filename != "" {
		out.Filename = override.Filename
	}
	if override.LocalPath != "" {
		out.LocalPath = override.LocalPath
	}
	if override.URL != "" {
		out.URL = override.URL
	}
	return out
}

// isZero reports whether no hint field is set.
func (s StreamInfo) isZero() bool {
	return s == StreamInfo{}
}

// Metadata is an insertion-ordered string-to-value map attached to
// conversion results.
type Metadata struct {
	keys   []string
	values map[string]any
}

// Set stores a value, appending the key on first insertion.
func (m *Metadata) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored for key.
func (m *Metadata) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of stored entries.
func (m *Metadata) Len() int {
	return len(m.keys)
}

// DocumentConverterResult holds the output of a conversion. Markdown is
// never absent: an empty document converts to the empty string.
type DocumentConverterResult struct {
	Markdown string
	Title    string
	Metadata Metadata
}

// DocumentConverter is the interface all format converters implement.
type DocumentConverter interface {
	// Accepts reports whether this converter can handle the given input.
	// It may peek at the stream but MUST restore the read position to the
	// start before returning, and must have no other side effects.
	Accepts(reader io.ReadSeeker, info StreamInfo) bool

	// Convert performs the actual document-to-markdown conversion. It
	// returns a typed error on failure and never a partial result.
	Convert(reader io.ReadSeeker, info StreamInfo, opts ConvertOptions) (*DocumentConverterResult, error)
}
