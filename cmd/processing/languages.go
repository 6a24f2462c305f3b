package main

import (
	"github.com/spf13/cobra"

	"github.com/fabiobatalha/processing/internal/dump"
)

var languagesCmd = &cobra.Command{
	Use:   "languages [issn...]",
	Short: "Dump the publication languages of each document",
	RunE:  runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func runLanguages(cmd *cobra.Command, args []string) error {
	s, err := newSession("languages", args)
	if err != nil {
		return err
	}
	return s.run("languages", true, s.catalog(), func(r *dump.Runner) error {
		return r.Languages(cmd.Context())
	})
}
