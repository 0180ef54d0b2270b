package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/arcvalue/internal/dedup"
	"github.com/roach88/arcvalue/internal/ingest"
	"github.com/roach88/arcvalue/internal/metrics"
	"github.com/roach88/arcvalue/internal/runlog"
	"github.com/roach88/arcvalue/internal/value"
)

// DedupOptions holds flags for the dedup command.
type DedupOptions struct {
	*RootOptions
	InputOptions
	Threshold   int
	Shards      int
	Database    string
	MetricsFile string

	// IDGenerator overrides run IDs (for testing). Defaults to UUIDv7.
	IDGenerator runlog.IDGenerator

	// Now overrides the clock (for testing). Defaults to time.Now.
	Now func() time.Time
}

func (o *DedupOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// SourceSummary describes one input of a dedup run.
type SourceSummary struct {
	Name      string `json:"name"`
	Format    string `json:"format"`
	Documents int    `json:"documents"`
	Digest    string `json:"digest"`
}

// DuplicateEntry is a canonical content referenced more than the threshold.
type DuplicateEntry struct {
	Shape string `json:"shape"`
	Refs  int    `json:"refs"`
	Value string `json:"value"`
}

// DedupResult holds the outcome of a dedup run.
type DedupResult struct {
	RunID          string           `json:"run_id,omitempty"`
	Sources        []SourceSummary  `json:"sources"`
	Shards         int              `json:"shards"`
	Stats          dedup.Stats      `json:"stats"`
	EstimatedBytes int              `json:"estimated_bytes"`
	Duplicates     []DuplicateEntry `json:"duplicates"`
}

// NewDedupCommand creates the dedup command.
func NewDedupCommand(rootOpts *RootOptions) *cobra.Command {
	return newDedupCommand(&DedupOptions{RootOptions: rootOpts})
}

func newDedupCommand(opts *DedupOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedup <file>...",
		Short: "Canonicalize documents and report shared content",
		Long: `Canonicalize every document of every input through one session, so that
equal strings, byte strings, sequences and maps share a single canonical
copy, then report how often each content was referenced.

Format and compression (.gz, .zst, .lz4) are detected from file names.
Use "-" to read standard input, which requires --input-format.

With --shards N the documents are split into N shards that are
canonicalized concurrently and then merged, giving the same sharing as a
single session.

Examples:
  arcvalue dedup events.jsonl
  arcvalue dedup --threshold 10 --db ./runs.db logs/*.json.zst
  cat data.yaml | arcvalue dedup --input-format yaml -`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedup(opts, args, cmd)
		},
	}

	opts.InputOptions.addFlags(cmd)
	cmd.Flags().IntVar(&opts.Threshold, "threshold", 1, "report contents referenced more than this many times")
	cmd.Flags().IntVar(&opts.Shards, "shards", 1, "number of shards canonicalized concurrently")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	return cmd
}

func runDedup(opts *DedupOptions, paths []string, cmd *cobra.Command) error {
	if opts.Threshold < 0 {
		return NewExitError(ExitCommandError, "--threshold must not be negative")
	}
	if opts.Shards < 1 {
		return NewExitError(ExitCommandError, "--shards must be at least 1")
	}
	srcOpts, err := opts.sourceOptions()
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionOpts := []dedup.Option{dedup.WithLogger(slog.Default())}
	var (
		registry *prometheus.Registry
		observer *metrics.Observer
	)
	if opts.MetricsFile != "" {
		registry = prometheus.NewRegistry()
		observer, err = metrics.NewObserver(registry)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to register metrics", err)
		}
		sessionOpts = append(sessionOpts, dedup.WithObserver(observer))
	}

	started := opts.now()
	session, sources, err := canonicalizeInputs(ctx, opts, paths, cmd.InOrStdin(), srcOpts, sessionOpts)
	if err != nil {
		return err
	}
	elapsed := opts.now().Sub(started)

	result := DedupResult{
		Sources:        sources,
		Shards:         opts.Shards,
		Stats:          session.Stats(),
		EstimatedBytes: session.EstimateSize(),
		Duplicates:     duplicates(session, opts.Threshold),
	}

	if opts.Database != "" {
		id, err := recordRun(parent, opts, result, started, elapsed)
		if err != nil {
			return err
		}
		result.RunID = id
	}

	if observer != nil {
		observer.Snapshot(session)
		observer.ObserveRun(elapsed)
		if err := metrics.WriteTextfile(opts.MetricsFile, registry); err != nil {
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
	}

	slog.Info("dedup complete",
		"sources", len(sources),
		"documents", result.Stats.Documents,
		"distinct", result.Stats.Distinct(),
		"elapsed", elapsed,
	)

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return formatter.Success(result, func(w io.Writer) error {
		return writeDedupText(w, result, session, opts)
	})
}

// canonicalizeInputs streams every document through one session, or
// collects them and canonicalizes them in shards.
func canonicalizeInputs(
	ctx context.Context,
	opts *DedupOptions,
	paths []string,
	stdin io.Reader,
	srcOpts ingest.Options,
	sessionOpts []dedup.Option,
) (*dedup.Session, []SourceSummary, error) {
	if opts.Shards == 1 {
		session := dedup.NewSession(sessionOpts...)
		sources, err := readSources(paths, stdin, srcOpts, func(v value.Value) error {
			if err := ctx.Err(); err != nil {
				return WrapExitError(ExitFailure, "dedup interrupted", err)
			}
			session.Canonicalize(v)
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
		return session, sources, nil
	}

	var docs []value.Value
	sources, err := readSources(paths, stdin, srcOpts, func(v value.Value) error {
		docs = append(docs, v)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	session, _, err := dedup.CanonicalizeShards(ctx, splitShards(docs, opts.Shards), sessionOpts...)
	if err != nil {
		return nil, nil, WrapExitError(ExitFailure, "dedup interrupted", err)
	}
	return session, sources, nil
}

// readSources feeds every document of every path to fn, in order.
func readSources(paths []string, stdin io.Reader, srcOpts ingest.Options, fn func(value.Value) error) ([]SourceSummary, error) {
	sources := make([]SourceSummary, 0, len(paths))
	for _, path := range paths {
		src, err := openInput(path, stdin, srcOpts)
		if err != nil {
			return nil, err
		}
		err = eachDocument(src, fn)
		closeErr := src.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, WrapExitError(ExitCommandError, "failed to close input", closeErr)
		}
		sources = append(sources, SourceSummary{
			Name:      src.Name(),
			Format:    string(src.Format()),
			Documents: src.Documents(),
			Digest:    src.Digest(),
		})
	}
	return sources, nil
}

// splitShards cuts docs into at most n contiguous shards of near-equal size.
func splitShards(docs []value.Value, n int) [][]value.Value {
	if len(docs) == 0 {
		return nil
	}
	size := (len(docs) + n - 1) / n
	shards := make([][]value.Value, 0, n)
	for start := 0; start < len(docs); start += size {
		shards = append(shards, docs[start:min(start+size, len(docs))])
	}
	return shards
}

// duplicates lists, per shape, the entries referenced more than threshold times.
func duplicates(session *dedup.Session, threshold int) []DuplicateEntry {
	out := []DuplicateEntry{}
	for _, shape := range dedup.Shapes {
		for _, e := range session.Entries(shape) {
			if e.Refs <= threshold {
				break
			}
			out = append(out, DuplicateEntry{Shape: shape.String(), Refs: e.Refs, Value: e.Value.String()})
		}
	}
	return out
}

func recordRun(ctx context.Context, opts *DedupOptions, result DedupResult, started time.Time, elapsed time.Duration) (string, error) {
	var storeOpts []runlog.StoreOption
	if opts.IDGenerator != nil {
		storeOpts = append(storeOpts, runlog.WithIDGenerator(opts.IDGenerator))
	}
	st, err := runlog.Open(opts.Database, storeOpts...)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	names := make([]string, len(result.Sources))
	digests := make([]string, len(result.Sources))
	for i, src := range result.Sources {
		names[i] = src.Name
		digests[i] = src.Digest
	}

	id, err := st.WriteRun(ctx, runlog.Run{
		StartedAt:      started,
		Duration:       elapsed,
		Sources:        names,
		Format:         runFormat(result.Sources),
		Digest:         runlog.CombineDigests(digests...),
		Shards:         result.Shards,
		Stats:          result.Stats,
		EstimatedBytes: result.EstimatedBytes,
	})
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to record run", err)
	}
	slog.Debug("run recorded", "id", id, "db", opts.Database)
	return id, nil
}

// runFormat is the common format of all sources, or "mixed".
func runFormat(sources []SourceSummary) string {
	if len(sources) == 0 {
		return ""
	}
	format := sources[0].Format
	for _, src := range sources[1:] {
		if src.Format != format {
			return "mixed"
		}
	}
	return format
}

func writeDedupText(w io.Writer, result DedupResult, session *dedup.Session, opts *DedupOptions) error {
	fmt.Fprintf(w, "%d documents from %s\n", result.Stats.Documents, plural(len(result.Sources), "source"))
	for _, src := range result.Sources {
		fmt.Fprintf(w, "  %s (%s): %s", src.Name, src.Format, plural(src.Documents, "document"))
		if opts.Verbose {
			fmt.Fprintf(w, ", blake3 %s", src.Digest)
		}
		fmt.Fprintln(w)
	}
	if result.Shards > 1 {
		fmt.Fprintf(w, "shards: %d\n", result.Shards)
	}
	fmt.Fprintf(w, "estimated size: %d bytes\n", result.EstimatedBytes)
	if result.RunID != "" {
		fmt.Fprintf(w, "recorded run %s\n", result.RunID)
	}
	fmt.Fprintln(w)
	return session.WriteReport(w, opts.Threshold)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
