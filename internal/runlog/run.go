package runlog

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/roach88/arcvalue/internal/dedup"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// Run is the recorded summary of one dedup run.
type Run struct {
	ID             string        `json:"id"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	Sources        []string      `json:"sources"`
	Format         string        `json:"format"`
	Digest         string        `json:"digest"`
	Shards         int           `json:"shards"`
	Stats          dedup.Stats   `json:"stats"`
	EstimatedBytes int           `json:"estimated_bytes"`
}

// Hits returns the total number of content-set hits across shapes.
func (r Run) Hits() int {
	return r.Stats.Blobs.Hits + r.Stats.Strings.Hits + r.Stats.Sequences.Hits + r.Stats.Maps.Hits
}

// CombineDigests folds per-input digests into one run digest. The order
// of the inputs matters.
func CombineDigests(digests ...string) string {
	h := blake3.New()
	for _, d := range digests {
		h.WriteString(d)
		h.WriteString("\n")
	}
	return hex.EncodeToString(h.Sum(nil))
}

// WriteRun inserts r, assigning an ID if it has none, and returns the ID.
func (s *Store) WriteRun(ctx context.Context, r Run) (string, error) {
	if r.ID == "" {
		r.ID = s.ids.Generate()
	}
	sources, err := json.Marshal(r.Sources)
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, duration_ms, sources, format, digest, shards, documents,
		 blobs, strings, sequences, maps,
		 blob_hits, string_hits, sequence_hits, map_hits, estimated_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.StartedAt.UnixMilli(),
		r.Duration.Milliseconds(),
		string(sources),
		r.Format,
		r.Digest,
		r.Shards,
		r.Stats.Documents,
		r.Stats.Blobs.Distinct,
		r.Stats.Strings.Distinct,
		r.Stats.Sequences.Distinct,
		r.Stats.Maps.Distinct,
		r.Stats.Blobs.Hits,
		r.Stats.Strings.Hits,
		r.Stats.Sequences.Hits,
		r.Stats.Maps.Hits,
		r.EstimatedBytes,
	)
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}
	return r.ID, nil
}

const selectRuns = `
	SELECT id, started_at, duration_ms, sources, format, digest, shards, documents,
	       blobs, strings, sequences, maps,
	       blob_hits, string_hits, sequence_hits, map_hits, estimated_bytes
	FROM runs`

// GetRun returns the run with the given ID, or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or
// less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		selectRuns+` ORDER BY started_at DESC, id COLLATE BINARY DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r          Run
		startedAt  int64
		durationMS int64
		sources    string
	)
	err := sc.Scan(
		&r.ID, &startedAt, &durationMS, &sources, &r.Format, &r.Digest, &r.Shards,
		&r.Stats.Documents,
		&r.Stats.Blobs.Distinct, &r.Stats.Strings.Distinct,
		&r.Stats.Sequences.Distinct, &r.Stats.Maps.Distinct,
		&r.Stats.Blobs.Hits, &r.Stats.Strings.Hits,
		&r.Stats.Sequences.Hits, &r.Stats.Maps.Hits,
		&r.EstimatedBytes,
	)
	if err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(sources), &r.Sources); err != nil {
		return Run{}, fmt.Errorf("decode sources of run %s: %w", r.ID, err)
	}
	r.StartedAt = time.UnixMilli(startedAt).UTC()
	r.Duration = time.Duration(durationMS) * time.Millisecond
	return r, nil
}
