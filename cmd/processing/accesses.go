package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fabiobatalha/processing/internal/access"
	"github.com/fabiobatalha/processing/internal/dump"
	"github.com/fabiobatalha/processing/internal/ratchet"
	"github.com/fabiobatalha/processing/internal/validate"
)

var (
	fromDate         string
	untilDate        string
	dailyGranularity bool
)

var accessesCmd = &cobra.Command{
	Use:   "accesses [issn...]",
	Short: "Dump document accesses per month or day",
	Long: `Dump the accesses of every document of the collection.

Each document's accesses are gathered under all the keys they may have been
recorded with (PID, legacy PID, DOI and PDF paths), summed and written as one
row per period with accesses between --from_date and --until_date.

Rows carry the document metadata and the abstract, html, pdf and epdf
counts. CSV output has no header.`,
	RunE: runAccesses,
}

func init() {
	accessesCmd.Flags().StringVarP(&fromDate, "from_date", "b", validate.DefaultFromDate, "First day of the accesses period (YYYY-MM-DD)")
	accessesCmd.Flags().StringVarP(&untilDate, "until_date", "u", "", "Last day of the accesses period (YYYY-MM-DD, default today)")
	accessesCmd.Flags().BoolVarP(&dailyGranularity, "dayly_granularity", "d", false, "Daily periods instead of monthly")
	rootCmd.AddCommand(accessesCmd)
}

func runAccesses(cmd *cobra.Command, args []string) error {
	s, err := newSession("accesses", args)
	if err != nil {
		return err
	}

	window, err := accessWindow()
	if err != nil {
		s.logger.Error("Invalid accesses period", zap.Error(err))
		s.closeLog()
		cmd.Usage()
		return withCode(ExitConfigError, err)
	}

	lookup := ratchet.NewClient(
		ratchet.WithBaseURL(s.cfg.Ratchet.URL),
		ratchet.WithHTTPClient(&http.Client{Timeout: seconds(s.cfg.Ratchet.TimeoutSeconds)}),
		ratchet.WithRateLimit(s.cfg.RequestsPerSecond),
		ratchet.WithLogger(s.logger.Named("ratchet")),
	)

	return s.run("accesses", false, s.catalog(), func(r *dump.Runner) error {
		return r.Accesses(cmd.Context(), lookup, window)
	})
}

// accessWindow validates the period flags.
func accessWindow() (access.Window, error) {
	until := untilDate
	if until == "" {
		until = validate.Today()
	}
	if err := validate.Date(fromDate); err != nil {
		return access.Window{}, err
	}
	if err := validate.Date(until); err != nil {
		return access.Window{}, err
	}

	w := access.Window{From: fromDate, Until: until, Granularity: access.Monthly}
	if dailyGranularity {
		w.Granularity = access.Daily
	}
	return w, nil
}
