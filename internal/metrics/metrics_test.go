package metrics

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcvalue/internal/dedup"
	"github.com/roach88/arcvalue/internal/value"
)

func newSession(t *testing.T, obs dedup.Observer) *dedup.Session {
	t.Helper()
	return dedup.NewSession(
		dedup.WithObserver(obs),
		dedup.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestObserverCountsLookups(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg)
	require.NoError(t, err)

	s := newSession(t, obs)
	s.Canonicalize(value.NewSeq(value.NewStr("a"), value.NewStr("a"), value.NewStr("b")))

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.lookups.WithLabelValues("strings", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(obs.lookups.WithLabelValues("strings", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.lookups.WithLabelValues("sequences", "miss")))
}

func TestSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg)
	require.NoError(t, err)

	s := newSession(t, obs)
	s.Canonicalize(value.NewSeq(value.NewStr("ab"), value.NewBytes([]byte{1, 2, 3})))
	obs.Snapshot(s)

	assert.Equal(t, 1.0, testutil.ToFloat64(obs.distinct.WithLabelValues("strings")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.distinct.WithLabelValues("blobs")))
	assert.Equal(t, 0.0, testutil.ToFloat64(obs.distinct.WithLabelValues("maps")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.documents))
	assert.Equal(t, float64(s.EstimateSize()), testutil.ToFloat64(obs.estimated))
	assert.Equal(t, 4, testutil.CollectAndCount(obs.distinct))
}

func TestNewObserverDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewObserver(reg)
	require.NoError(t, err)

	_, err = NewObserver(reg)
	assert.Error(t, err)
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg)
	require.NoError(t, err)

	s := newSession(t, obs)
	s.Canonicalize(value.NewStr("x"))
	obs.Snapshot(s)
	obs.ObserveRun(20 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "arcvalue.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.Contains(text, `arcvalue_dedup_lookups_total{result="miss",shape="strings"} 1`), text)
	assert.Contains(t, text, "arcvalue_dedup_documents 1")
	assert.Contains(t, text, "arcvalue_dedup_run_duration_seconds_count 1")
}
