package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/sitecheck/sitecheck"
)

func newHistoryCmd(f *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs from the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			if cfg.History.Path == "" {
				return errors.New("history: no database configured (use --history or SITECHECK_HISTORY)")
			}

			store, err := sitecheck.OpenHistory(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, r := range runs {
				status := "PASS"
				if !r.OK() {
					status = "FAIL"
				}
				started := time.UnixMilli(r.StartedAt).UTC().Format(time.RFC3339)
				fmt.Fprintf(out, "%s  %s  %d/%d  errors=%d warnings=%d  %s\n",
					started, status, r.Passed, r.Passed+r.Failed, r.Errors, r.Warnings, r.Target)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")
	return cmd
}
