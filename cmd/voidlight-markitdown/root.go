package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "voidlight-markitdown",
	Short: "Convert documents to Markdown with Korean-aware text handling",
	Long: `voidlight-markitdown converts documents (PDF, DOCX, PPTX, XLSX, HWP,
EPUB, HTML, images, and more) into normalized Markdown. Korean mode adds
encoding detection for legacy CP949/EUC-KR sources, text normalization,
and morphological tokenization.`,
	Version:           version,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: $HOME/.voidlight-markitdown.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

// setup loads configuration and wires logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	viper.SetEnvPrefix("VOIDLIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("korean-mode", false)
	viper.SetDefault("keep-data-uris", false)
	viper.SetDefault("ocr-languages", []string{"kor", "eng"})
	viper.SetDefault("max-input-size", 0)

	if flagConfig != "" {
		viper.SetConfigFile(flagConfig)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".voidlight-markitdown")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Missing config in the default search paths is fine; anything
		// else (explicit --config, malformed file) is an error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	} else {
		slog.Debug("loaded config file", "path", viper.ConfigFileUsed())
	}

	return nil
}
