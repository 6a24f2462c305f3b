package main

import (
	"github.com/spf13/cobra"

	"github.com/fabiobatalha/processing/internal/accessstats"
	"github.com/fabiobatalha/processing/internal/dump"
)

var lifetimeCmd = &cobra.Command{
	Use:   "lifetime [issn...]",
	Short: "Dump journal accesses per publication year and access year",
	Long: `Dump, for every journal of the collection, the accesses of its
documents grouped by publication year and access year, as computed by the
access index.`,
	RunE: runLifetime,
}

func init() {
	rootCmd.AddCommand(lifetimeCmd)
}

func runLifetime(cmd *cobra.Command, args []string) error {
	if err := requireCollection(cmd); err != nil {
		return err
	}

	s, err := newSession("lifetime", args)
	if err != nil {
		return err
	}

	index, err := accessstats.NewClient(s.cfg.AccessStats.Addresses,
		accessstats.WithIndex(s.cfg.AccessStats.Index),
		accessstats.WithLogger(s.logger.Named("accessstats")),
	)
	if err != nil {
		s.closeLog()
		return withCode(ExitConfigError, err)
	}

	return s.run("lifetime", true, s.catalog(), func(r *dump.Runner) error {
		return r.Lifetime(cmd.Context(), index)
	})
}
