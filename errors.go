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

import (
	"errors"
	"fmt"
	"strings"
)

// AttemptOutcome tags the result of one (guess, converter) trial.
type AttemptOutcome string

const (
	// OutcomeNotAccepted means the converter declined the candidate.
	// Not an error, just a dispatch-loop signal.
	OutcomeNotAccepted AttemptOutcome = "not_accepted"
	// OutcomeMissingDependency means the converter recognized the format
	// but an optional backend is absent or non-functional.
	OutcomeMissingDependency AttemptOutcome = "missing_dependency"
	// OutcomeConversionFailed means the converter accepted the input and
	// the underlying parse failed.
	OutcomeConversionFailed AttemptOutcome = "conversion_failed"
)

// ConversionAttempt records one (guess, converter) trial made by the
// dispatch loop, in order.
type ConversionAttempt struct {
	Converter string
	Info      StreamInfo
	Outcome   AttemptOutcome
	Err       error
}

func (a ConversionAttempt) String() string {
	var b strings.Builder
	b.WriteString(a.Converter)
	b.WriteString(" (")
	if a.Info.MIMEType != "" {
		fmt.Fprintf(&b, "mime=%q", a.Info.MIMEType)
	}
	if a.Info.Extension != "" {
		if a.Info.MIMEType != "" {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "ext=%q", a.Info.Extension)
	}
	b.WriteString("): ")
	b.WriteString(string(a.Outcome))
	if a.Err != nil {
		fmt.Fprintf(&b, ": %v", a.Err)
	}
	return b.String()
}

// MissingDependencyError is returned by a converter that recognized the
// format but cannot run because an optional backend is unavailable. Hint
// carries the remediation text from the capability report.
type MissingDependencyError struct {
	Backend string
	Hint    string
}

func (e *MissingDependencyError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("missing dependency %q: %s", e.Backend, e.Hint)
	}
	return fmt.Sprintf("missing dependency %q", e.Backend)
}

// IsMissingDependency reports whether err is a MissingDependencyError.
func IsMissingDependency(err error) bool {
	var target *MissingDependencyError
	return errors.As(err, &target)
}

// UnsupportedFormatError means no converter accepted any candidate at
// all: the format itself is unrecognized, as opposed to recognized but
// failing to convert.
type UnsupportedFormatError struct {
	Extension string
	MIMEType  string
}

func (e *UnsupportedFormatError) Error() string {
	parts := []string{"unsupported format"}
	if e.Extension != "" {
		parts = append(parts, fmt.Sprintf("extension=%q", e.Extension))
	}
	if e.MIMEType != "" {
		parts = append(parts, fmt.Sprintf("mime=%q", e.MIMEType))
	}
	return strings.Join(parts, " ")
}

// IsUnsupportedFormat reports whether the error is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}

// ConversionError is raised when the dispatch loop exhausts every
// (guess, converter) pair. It wraps the full ordered attempt list so
// every rejection reason stays visible, not just the last one.
type ConversionError struct {
	Attempts []ConversionAttempt
}

func (e *ConversionError) Error() string {
	if len(e.Attempts) == 0 {
		return "conversion failed"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "conversion failed after %d attempt(s):", len(e.Attempts))
	for _, a := range e.Attempts {
		b.WriteString("\n  ")
		b.WriteString(a.String())
	}
	return b.String()
}

// Unwrap returns the last real failure, or an UnsupportedFormatError when
// no converter accepted anything.
func (e *ConversionError) Unwrap() error {
	for i := len(e.Attempts) - 1; i >= 0; i-- {
		if e.Attempts[i].Err != nil {
			return e.Attempts[i].Err
		}
	}
	if len(e.Attempts) > 0 {
		first := e.Attempts[0].Info
		return &UnsupportedFormatError{Extension: first.Extension, MIMEType: first.MIMEType}
	}
	return nil
}
