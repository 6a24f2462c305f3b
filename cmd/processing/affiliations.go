package main

import (
	"github.com/spf13/cobra"

	"github.com/fabiobatalha/processing/internal/dump"
)

var homeCountry string

var affiliationsCmd = &cobra.Command{
	Use:   "affiliations [issn...]",
	Short: "Dump the affiliation countries of each document",
	Long: `Dump one row per document with the countries of its authors'
affiliations and whether they are national only, foreign only or both,
relative to --home_country.`,
	RunE: runAffiliations,
}

func init() {
	affiliationsCmd.Flags().StringVar(&homeCountry, "home_country", "", "Country treated as national (default from config, brazil)")
	rootCmd.AddCommand(affiliationsCmd)
}

func runAffiliations(cmd *cobra.Command, args []string) error {
	s, err := newSession("affiliations", args)
	if err != nil {
		return err
	}

	home := homeCountry
	if home == "" {
		home = s.cfg.HomeCountry
	}

	return s.run("affiliations", true, s.catalog(), func(r *dump.Runner) error {
		return r.Affiliations(cmd.Context(), home)
	})
}
