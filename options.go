package markitdown

import "github.com/VoidLight00/voidlight-markitdown-go/capability"

// Option configures a MarkItDown instance at construction time.
type Option func(*MarkItDown)

// WithKoreanMode enables Korean-mode conversion by default for every call
// on this instance (individual calls can still override it).
func WithKoreanMode(enabled bool) Option {
	return func(m *MarkItDown) {
		m.defaults.KoreanMode = enabled
	}
}

// WithKeepDataURIs configures whether to keep full data URIs in output
// (default: false, which truncates them to data:mime/type;base64...).
func WithKeepDataURIs(keep bool) Option {
	return func(m *MarkItDown) {
		m.defaults.KeepDataURIs = keep
	}
}

// WithStyleMap sets custom style mapping for DOCX conversion.
func WithStyleMap(styleMap string) Option {
	return func(m *MarkItDown) {
		m.defaults.StyleMap = styleMap
	}
}

// WithCapabilities injects a capability report instead of the process-wide
// default probe. Intended for tests and embedders that probe up front.
func WithCapabilities(report *capability.Report) Option {
	return func(m *MarkItDown) {
		m.caps = report
	}
}

// ConvertOptions carries per-call settings. The engine interprets
// KoreanMode and MaxInputSize itself; everything else is forwarded to
// converters opaquely.
type ConvertOptions struct {
	// KoreanMode activates the encoding cascade and the Korean text
	// post-processing pipeline.
	KoreanMode bool
	// OCRLanguages is forwarded to OCR-backed converters (tesseract
	// language codes, e.g. "kor", "eng").
	OCRLanguages []string
	// MaxInputSize bounds how many bytes are buffered from a
	// non-seekable source. Zero means no limit.
	MaxInputSize int64
	// KeepDataURIs keeps full base64 data URIs in HTML-derived output.
	KeepDataURIs bool
	// StyleMap customizes DOCX style-to-heading mapping.
	StyleMap string
	// Extra holds converter-specific options the engine does not
	// interpret.
	Extra map[string]any
}

// ConvertOption adjusts the options for a single conversion call.
type ConvertOption func(*ConvertOptions)

// KoreanMode enables the Korean pipeline for this call.
func KoreanMode() ConvertOption {
	return func(o *ConvertOptions) {
		o.KoreanMode = true
	}
}

// WithOCRLanguages sets the OCR language list for this call.
func WithOCRLanguages(langs ...string) ConvertOption {
	return func(o *ConvertOptions) {
		o.OCRLanguages = langs
	}
}

// WithMaxInputSize bounds buffering of non-seekable sources.
func WithMaxInputSize(n int64) ConvertOption {
	return func(o *ConvertOptions) {
		o.MaxInputSize = n
	}
}

// WithExtra forwards an opaque option to converters.
func WithExtra(key string, value any) ConvertOption {
	return func(o *ConvertOptions) {
		if o.Extra == nil {
			o.Extra = make(map[string]any)
		}
		o.Extra[key] = value
	}
}
