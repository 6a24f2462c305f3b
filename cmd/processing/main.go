// Package main provides the processing CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fabiobatalha/processing/internal/report"
)

// Version is set at build time via ldflags
var Version = "dev"

// Flags shared by every report.
var (
	collection   string
	outputFile   string
	outputFormat string
	loggingFile  string
	loggingLevel string
	configPath   string
	metricsFile  string
	skipFailed   bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "processing",
	Short: "Bibliographic report scripts for a journal collection",
	Long: `processing dumps reports about the documents of a journal collection.

Documents are read from the article metadata catalog. The accesses report
joins every document with its access history and writes one row per
document and period; the other reports classify documents by affiliation
country or language, or summarize journal access lifetimes and impact
factors.

Reports go to stdout, or to --output_file with CRLF line endings. Pass
ISSNs to restrict a report to those journals.

Environment Variables:
  ARTICLEMETA_URL        Catalog base URL
  RATCHET_URL            Access lookup base URL
  ANALYTICS_URL          Bibliometric analytics base URL
  ACCESSSTATS_ADDRESSES  Comma separated access index addresses
  ACCESSSTATS_INDEX      Access index name
  REQUESTS_PER_SECOND    Request rate limit for every service`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&collection, "collection", "c", "", "Collection acronym")
	flags.StringVarP(&outputFile, "output_file", "r", "", "File to receive the dumped data")
	flags.StringVarP(&outputFormat, "output_format", "f", report.FormatCSV, "Output format (csv, json, sqlite)")
	flags.StringVarP(&loggingFile, "logging_file", "o", "", "Full path to the log file")
	flags.StringVarP(&loggingLevel, "logging_level", "l", "DEBUG", "Logging level (DEBUG, INFO, WARNING, ERROR, CRITICAL)")
	flags.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/processing/config.yml)")
	flags.StringVar(&metricsFile, "metrics_file", "", "Write run counters to this file in Prometheus text format")
	flags.BoolVar(&skipFailed, "skip_failed", false, "Log and skip documents whose upstream lookups fail")

	rootCmd.Version = Version
}
