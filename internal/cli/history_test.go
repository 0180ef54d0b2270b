package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcvalue/internal/dedup"
	"github.com/roach88/arcvalue/internal/runlog"
)

// seedRuns creates a run log holding one run per started time.
func seedRuns(t *testing.T, ids []string, started ...time.Time) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	st, err := runlog.Open(dbPath, runlog.WithIDGenerator(runlog.NewFixedGenerator(ids...)))
	require.NoError(t, err)
	defer st.Close()

	for _, at := range started {
		_, err := st.WriteRun(context.Background(), runlog.Run{
			StartedAt: at,
			Duration:  250 * time.Millisecond,
			Sources:   []string{"a.json", "b.json"},
			Format:    "json",
			Digest:    runlog.CombineDigests("aa", "bb"),
			Shards:    1,
			Stats: dedup.Stats{
				Documents: 4,
				Strings:   dedup.ShapeStats{Distinct: 2, Hits: 6},
				Maps:      dedup.ShapeStats{Distinct: 3, Hits: 1},
			},
			EstimatedBytes: 512,
		})
		require.NoError(t, err)
	}
	return dbPath
}

func executeHistory(t *testing.T, rootOpts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistoryMissingDatabaseFlag(t *testing.T) {
	_, err := executeHistory(t, &RootOptions{Format: "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestHistoryNonExistentDatabase(t *testing.T) {
	_, err := executeHistory(t, &RootOptions{Format: "text"}, "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistoryEmpty(t *testing.T) {
	dbPath := seedRuns(t, nil)

	out, err := executeHistory(t, &RootOptions{Format: "text"}, "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestHistoryText(t *testing.T) {
	dbPath := seedRuns(t, []string{"run-a", "run-b"},
		time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		time.Date(2026, 1, 3, 3, 4, 5, 0, time.UTC),
	)

	out, err := executeHistory(t, &RootOptions{Format: "text"}, "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t,
		"run-b  2026-01-03T03:04:05Z  250ms  4 documents, 5 distinct, 7 hits, 512 bytes\n"+
			"run-a  2026-01-02T03:04:05Z  250ms  4 documents, 5 distinct, 7 hits, 512 bytes\n",
		out)
}

func TestHistoryVerbose(t *testing.T) {
	dbPath := seedRuns(t, []string{"run-a"}, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	out, err := executeHistory(t, &RootOptions{Format: "text", Verbose: true}, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "    sources: a.json, b.json\n")
	assert.Contains(t, out, "    format: json, shards: 1, digest: "+runlog.CombineDigests("aa", "bb")+"\n")
}

func TestHistoryLimitJSON(t *testing.T) {
	dbPath := seedRuns(t, []string{"r1", "r2", "r3"},
		time.UnixMilli(1000), time.UnixMilli(3000), time.UnixMilli(2000))

	out, err := executeHistory(t, &RootOptions{Format: "json"}, "--db", dbPath, "--limit", "2")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Runs, 2)
	assert.Equal(t, "r2", resp.Data.Runs[0].ID)
	assert.Equal(t, "r3", resp.Data.Runs[1].ID)
	assert.Equal(t, 4, resp.Data.Runs[0].Stats.Documents)
}

func TestHistoryAfterDedup(t *testing.T) {
	path := writeInput(t, "records.json", recordsJSON)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	for range 2 {
		cmd := NewDedupCommand(&RootOptions{Format: "text"})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--db", dbPath, path})
		require.NoError(t, cmd.Execute())
	}

	out, err := executeHistory(t, &RootOptions{Format: "json"}, "--db", dbPath, "--limit", "0")
	require.NoError(t, err)

	var resp struct {
		Data HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Runs, 2)
	assert.Equal(t, resp.Data.Runs[0].Digest, resp.Data.Runs[1].Digest)
}
