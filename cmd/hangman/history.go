package main

import (
	"bufio"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaniel/hangman/pkg/db"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past runs recorded in the sqlite run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cfg.DB.Path == "" {
				return fmt.Errorf("history: no run log configured (use --db)")
			}

			conn, err := db.Open(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer conn.Close()

			runs, err := db.ListRuns(conn, limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			for _, run := range runs {
				fmt.Fprintf(w, "%s %s %s words=%d total=%d\n",
					run.ID, run.StartedAt.Local().Format(time.RFC3339), run.WordsPath, run.WordCount, run.TotalCount)
				recs, err := db.GetRecommendations(conn, run.ID)
				if err != nil {
					return fmt.Errorf("run %s: %w", run.ID, err)
				}
				for _, r := range recs {
					fmt.Fprintf(w, "  %s\n", formatRecommendation(r))
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&opts.db, "db", "", "sqlite run log")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of most recent runs to show (0 = all)")
	return cmd
}

// formatRecommendation renders a stored result the way the analysis prints it.
func formatRecommendation(r db.Recommendation) string {
	prefix := r.Pattern + " " + r.Excluded
	switch {
	case !r.Probability.Valid:
		return prefix + " - n/a"
	case r.Letter == "":
		return fmt.Sprintf("%s - %.4f", prefix, 0.0)
	}
	return fmt.Sprintf("%s %s %.4f", prefix, r.Letter, r.Probability.Float64)
}
