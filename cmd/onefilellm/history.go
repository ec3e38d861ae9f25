package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jimmc414/onefilellm/internal/config"
	"github.com/jimmc414/onefilellm/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent aggregation runs",
		Long: `History lists recent runs from the local history database, newest
first, with their timing, source counts, and token totals.

Examples:
  # The last ten runs
  onefilellm history

  # The last three runs
  onefilellm history -n 3`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 10,
		"Number of runs to list")
	cmd.Flags().String("dir", "",
		"History database directory (default: user data dir)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = 10
	}

	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}

	out := cmd.OutOrStdout()
	if _, err := os.Stat(filepath.Join(dir, database.FileName)); os.IsNotExist(err) {
		fmt.Fprintln(out, "No run history yet.")
		fmt.Fprintln(out, "\nRuns are recorded automatically unless --no-store is given.")
		return nil
	}

	db, err := database.Open(dir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.RecentRuns(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "Recent runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-19s  %-9s  %7s  %6s  %8s  %s\n",
		"Started", "Duration", "Sources", "Failed", "Tokens", "ID")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 88))

	for _, r := range runs {
		fmt.Fprintf(out, "  %-19s  %-9s  %7d  %6d  %8d  %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
			r.SourceCount,
			r.FailedCount,
			r.TokenCount,
			r.ID,
		)
	}
	return nil
}
