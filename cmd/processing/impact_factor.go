package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/fabiobatalha/processing/internal/analytics"
	"github.com/fabiobatalha/processing/internal/dump"
)

var impactFactorCmd = &cobra.Command{
	Use:   "impact_factor [issn...]",
	Short: "Dump the impact factors of each journal",
	Long: `Dump, for every journal of the collection, one row per base year with
its immediacy index and its 1 to 5 year impact factors, as computed by the
analytics service.`,
	RunE: runImpactFactor,
}

func init() {
	rootCmd.AddCommand(impactFactorCmd)
}

func runImpactFactor(cmd *cobra.Command, args []string) error {
	s, err := newSession("impact_factor", args)
	if err != nil {
		return err
	}

	indicators := analytics.NewClient(
		analytics.WithBaseURL(s.cfg.Analytics.URL),
		analytics.WithHTTPClient(&http.Client{Timeout: seconds(s.cfg.Analytics.TimeoutSeconds)}),
		analytics.WithRateLimit(s.cfg.RequestsPerSecond),
		analytics.WithLogger(s.logger.Named("analytics")),
	)

	return s.run("impact_factor", true, s.catalog(), func(r *dump.Runner) error {
		return r.ImpactFactor(cmd.Context(), indicators)
	})
}
