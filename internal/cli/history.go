package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/arcvalue/internal/runlog"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// HistoryResult holds the listed runs, newest first.
type HistoryResult struct {
	Runs []runlog.Run `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded dedup runs",
		Long: `List the dedup runs recorded with "arcvalue dedup --db", newest first.

Examples:
  arcvalue history --db ./runs.db
  arcvalue history --db ./runs.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Opening would create an empty database, which hides a mistyped path.
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	st, err := runlog.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return formatter.Success(HistoryResult{Runs: runs}, func(w io.Writer) error {
		return writeHistoryText(w, runs, opts.Verbose)
	})
}

func writeHistoryText(w io.Writer, runs []runlog.Run, verbose bool) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %s  %s, %d distinct, %d hits, %d bytes\n",
			r.ID,
			r.StartedAt.UTC().Format(time.RFC3339),
			r.Duration,
			plural(r.Stats.Documents, "document"),
			r.Stats.Distinct(),
			r.Hits(),
			r.EstimatedBytes,
		)
		if verbose {
			fmt.Fprintf(w, "    sources: %s\n", strings.Join(r.Sources, ", "))
			fmt.Fprintf(w, "    format: %s, shards: %d, digest: %s\n", r.Format, r.Shards, r.Digest)
		}
	}
	return nil
}
