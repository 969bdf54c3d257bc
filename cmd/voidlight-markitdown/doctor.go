package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/VoidLight00/voidlight-markitdown-go/capability"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Probe optional backends and report their status",
	Long: `Doctor probes the optional conversion backends (PDFium, tesseract,
mecab, KOMORAN) and reports for each one whether it is absent,
installed but non-functional, or functional, with a remediation hint
where applicable. Conversion still works without these backends; the
affected converters degrade or step aside for fallbacks.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	report := capability.Default()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tSTATUS\tDETAIL")

	degraded := false
	for _, name := range report.Backends() {
		status := report.StatusOf(name)
		detail := report.Detail(name)
		if status != capability.StatusFunctional {
			degraded = true
			if hint := report.Hint(name); hint != "" {
				if detail != "" {
					detail += "; "
				}
				detail += hint
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, status, detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if degraded {
		fmt.Println("\nSome backends are unavailable; the affected formats use fallbacks.")
	} else {
		fmt.Println("\nAll optional backends are functional.")
	}
	return nil
}
