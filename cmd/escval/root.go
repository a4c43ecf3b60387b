package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "escval",
	Short: "Validate erosion and sediment control plan sheets",
	Long: `escval checks civil plan sets for erosion and sediment control (ESC)
compliance before they reach a human reviewer.

Given a PDF plan set or a rendered sheet image, it:
  - Locates the ESC sheet by keyword scoring over extracted page text
  - OCRs the sheet and checks the required-element checklist
  - Detects contour lines and verifies the existing/proposed drafting convention
  - Flags overlapping and misplaced labels`,
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./escval.yaml or ~/.escval/escval.yaml)",
	)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "errors only")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging()
	}

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging configures the process-wide logger. Logs go to stderr so
// report output on stdout stays clean for piping.
func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
