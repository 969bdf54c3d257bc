package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	markitdown "github.com/VoidLight00/voidlight-markitdown-go"
)

var (
	flagOutput       string
	flagExtension    string
	flagMIMEType     string
	flagCharset      string
	flagKorean       bool
	flagKeepDataURIs bool
	flagOCRLangs     []string
	flagMaxInput     int64
)

var convertCmd = &cobra.Command{
	Use:   "convert [source]",
	Short: "Convert a file, URL, or stdin to Markdown",
	Long: `Convert reads a document from a file path, a URL, or stdin (when no
source is given) and writes Markdown to stdout or --output.

Examples:
  voidlight-markitdown convert report.docx
  voidlight-markitdown convert https://example.com/page.html -o page.md
  cat data.csv | voidlight-markitdown convert -x csv
  voidlight-markitdown convert --korean 한글문서.hwp`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file (default: stdout)")
	convertCmd.Flags().StringVarP(&flagExtension, "extension", "x", "", "File extension hint (for stdin input)")
	convertCmd.Flags().StringVarP(&flagMIMEType, "mime-type", "m", "", "MIME type hint")
	convertCmd.Flags().StringVarP(&flagCharset, "charset", "c", "", "Charset hint")
	convertCmd.Flags().BoolVar(&flagKorean, "korean", false, "Enable Korean mode (encoding cascade + text pipeline)")
	convertCmd.Flags().BoolVar(&flagKeepDataURIs, "keep-data-uris", false, "Keep full base64-encoded data URIs")
	convertCmd.Flags().StringSliceVar(&flagOCRLangs, "ocr-languages", nil, "Tesseract language codes for image OCR")
	convertCmd.Flags().Int64Var(&flagMaxInput, "max-input-size", 0, "Maximum input size in bytes for piped input (0 = unlimited)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	m := markitdown.New(markitdown.WithKeepDataURIs(keepDataURIs(cmd)))

	var opts []markitdown.ConvertOption
	if koreanMode(cmd) {
		opts = append(opts, markitdown.KoreanMode())
	}
	opts = append(opts, markitdown.WithOCRLanguages(ocrLanguages(cmd)...))
	if n := maxInputSize(cmd); n > 0 {
		opts = append(opts, markitdown.WithMaxInputSize(n))
	}

	var result *markitdown.DocumentConverterResult
	var err error

	if len(args) == 0 {
		result, err = convertStdin(m, opts)
	} else {
		slog.Debug("converting source", "source", args[0])
		result, err = m.Convert(args[0], opts...)
	}
	if err != nil {
		return err
	}

	for _, key := range result.Metadata.Keys() {
		v, _ := result.Metadata.Get(key)
		slog.Debug("conversion metadata", "key", key, "value", v)
	}

	return writeOutput(result.Markdown)
}

func convertStdin(m *markitdown.MarkItDown, opts []markitdown.ConvertOption) (*markitdown.DocumentConverterResult, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}

	hints := markitdown.StreamInfo{
		Extension: normalizeExtension(flagExtension),
		MIMEType:  flagMIMEType,
		Charset:   flagCharset,
	}
	return m.ConvertBytes(data, hints, opts...)
}

func writeOutput(md string) error {
	if flagOutput == "" {
		_, err := io.Copy(os.Stdout, bytes.NewReader([]byte(md)))
		return err
	}

	if dir := filepath.Dir(flagOutput); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(flagOutput, []byte(md), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func normalizeExtension(ext string) string {
	if ext == "" {
		return ""
	}
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Flags win over config file and environment values.

func koreanMode(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("korean") {
		return flagKorean
	}
	return viper.GetBool("korean-mode")
}

func keepDataURIs(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("keep-data-uris") {
		return flagKeepDataURIs
	}
	return viper.GetBool("keep-data-uris")
}

func ocrLanguages(cmd *cobra.Command) []string {
	if cmd.Flags().Changed("ocr-languages") {
		return flagOCRLangs
	}
	return viper.GetStringSlice("ocr-languages")
}

func maxInputSize(cmd *cobra.Command) int64 {
	if cmd.Flags().Changed("max-input-size") {
		return flagMaxInput
	}
	return viper.GetInt64("max-input-size")
}
