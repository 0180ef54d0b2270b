package dedup

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcvalue/internal/value"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(opts ...Option) *Session {
	return NewSession(append([]Option{WithLogger(testLogger())}, opts...)...)
}

// record builds {x: i, y: 10*i} from freshly allocated handles.
func record(i int64) *value.Map {
	return value.MapFromEntries(
		value.Entry{Key: value.NewStr("x"), Value: value.I64(i)},
		value.Entry{Key: value.NewStr("y"), Value: value.I64(10 * i)},
	)
}

func recordBatch() *value.Seq {
	return value.NewSeq(record(1), record(2), record(3), record(4))
}

type countingObserver struct {
	hits   map[Shape]int
	misses map[Shape]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{hits: map[Shape]int{}, misses: map[Shape]int{}}
}

func (o *countingObserver) Hit(s Shape)  { o.hits[s]++ }
func (o *countingObserver) Miss(s Shape) { o.misses[s]++ }

func TestCanonicalizeSharesEqualStrings(t *testing.T) {
	s := newTestSession()

	out := s.Canonicalize(value.NewSeq(value.NewStr("a"), value.NewStr("a")))

	seq, ok := out.(*value.Seq)
	require.True(t, ok)
	require.Equal(t, 2, seq.Len())
	assert.Same(t, seq.At(0), seq.At(1))
	assert.Equal(t, 1, s.Stats().Strings.Distinct)

	refs, ok := s.Refs(value.NewStr("a"))
	require.True(t, ok)
	assert.Equal(t, 2, refs)
}

func TestCanonicalizeIdempotent(t *testing.T) {
	s := newTestSession()

	first := s.Canonicalize(recordBatch())
	before := s.Stats()

	second := s.Canonicalize(first)
	after := s.Stats()

	assert.True(t, value.Equal(first, second))
	assert.Same(t, first, second)
	assert.Equal(t, before.Distinct(), after.Distinct(), "no new content registered")
	assert.Greater(t, after.Strings.Hits, before.Strings.Hits, "refs still grow")
}

func TestCanonicalizeKeepsAlreadyCanonicalInput(t *testing.T) {
	s := newTestSession()
	in := value.NewSeq(value.NewStr("a"), value.NewStr("b"), value.I32(1))

	out := s.Canonicalize(in)

	assert.Same(t, in, out, "nothing to share, nothing rebuilt")
}

func TestCanonicalizeRecordBatch(t *testing.T) {
	s := newTestSession()

	out := s.Canonicalize(recordBatch()).(*value.Seq)

	first := out.At(0).(*value.Map)
	for i := 1; i < out.Len(); i++ {
		m := out.At(i).(*value.Map)
		assert.Same(t, first.Keys(), m.Keys(), "key sequence %d", i)
		assert.Same(t, first.Key(0), m.Key(0))
		assert.Same(t, first.Key(1), m.Key(1))
	}

	var strs []string
	for _, e := range s.Entries(ShapeString) {
		strs = append(strs, e.Value.String())
		assert.Equal(t, 4, e.Refs)
	}
	assert.Equal(t, []string{"x", "y"}, strs)

	st := s.Stats()
	assert.Equal(t, 1, st.Documents)
	assert.Equal(t, 0, st.Blobs.Distinct)
	assert.Equal(t, 2, st.Strings.Distinct)
	assert.Equal(t, 2, st.Sequences.Distinct)
	assert.Equal(t, 4, st.Maps.Distinct)
	assert.Equal(t, 6, st.Strings.Hits)
	assert.Equal(t, 3, st.Sequences.Hits)
	assert.Equal(t, 0, st.Maps.Hits)
}

func TestCanonicalizeScalarPassthrough(t *testing.T) {
	s := newTestSession()

	for _, v := range []value.Value{value.I64(42), value.Bool(true), value.Unit{}, value.Char('c'), value.F64(1.5)} {
		out := s.Canonicalize(v)
		assert.Equal(t, v, out)
		_, registered := s.Refs(v)
		assert.False(t, registered)
	}
	assert.Equal(t, 0, s.Stats().Distinct())
	assert.Equal(t, 5, s.Stats().Documents)
}

func TestCanonicalizeMapsAreOrderSensitive(t *testing.T) {
	s := newTestSession()
	a, b := value.NewStr("a"), value.NewStr("b")

	ab := value.NewMap(value.NewSeq(a, b), []value.Value{value.I32(1), value.I32(2)})
	ba := value.NewMap(value.NewSeq(b, a), []value.Value{value.I32(2), value.I32(1)})

	out := s.Canonicalize(value.NewSeq(ab, ba)).(*value.Seq)

	assert.False(t, value.Equal(out.At(0), out.At(1)))
	assert.NotSame(t, out.At(0), out.At(1))
	assert.Equal(t, 2, s.Stats().Maps.Distinct)
	assert.Equal(t, 2, s.Stats().Strings.Distinct)
}

func TestCanonicalizeWrappersNotShared(t *testing.T) {
	s := newTestSession()

	in := value.NewSeq(
		value.Some(value.NewStr("p")),
		value.Wrap(value.NewStr("p")),
		value.Some(value.NewStr("p")),
		value.None(),
	)
	out := s.Canonicalize(in).(*value.Seq)

	some, ok := out.At(0).(value.Option).Get()
	require.True(t, ok)
	nt := out.At(1).(value.Newtype).Inner()
	assert.Same(t, some, nt, "payloads are shared")

	_, registered := s.Refs(out.At(0))
	assert.False(t, registered, "wrappers are not")
	assert.True(t, value.Equal(in, out))
	assert.Equal(t, 1, s.Stats().Strings.Distinct)
}

func TestCanonicalizeBlobs(t *testing.T) {
	s := newTestSession()

	out := s.Canonicalize(value.NewSeq(
		value.NewBytes([]byte{1, 2}),
		value.NewBytes([]byte{1, 2}),
		value.NewStr("\x01\x02"),
	)).(*value.Seq)

	assert.Same(t, out.At(0), out.At(1))
	assert.Equal(t, 1, s.Stats().Blobs.Distinct)
	assert.Equal(t, 1, s.Stats().Strings.Distinct, "a string is never a blob")
}

func TestCanonicalizeNestedSequences(t *testing.T) {
	s := newTestSession()

	inner := func() value.Value { return value.NewSeq(value.NewStr("z"), value.I8(1)) }
	out := s.Canonicalize(value.NewSeq(
		value.NewSeq(inner(), inner()),
		value.NewSeq(inner(), inner()),
	)).(*value.Seq)

	assert.Same(t, out.At(0), out.At(1))
	assert.Equal(t, 3, s.Stats().Sequences.Distinct)
}

func TestCanonicalizeAcrossDocuments(t *testing.T) {
	s := newTestSession()

	a := s.Canonicalize(record(1))
	b := s.Canonicalize(record(2))

	assert.Same(t, a.(*value.Map).Keys(), b.(*value.Map).Keys())
	assert.Equal(t, 2, s.Stats().Documents)
}

func TestObserverNotified(t *testing.T) {
	obs := newCountingObserver()
	s := newTestSession(WithObserver(obs))

	s.Canonicalize(value.NewSeq(value.NewStr("a"), value.NewStr("a")))

	assert.Equal(t, 1, obs.misses[ShapeString])
	assert.Equal(t, 1, obs.hits[ShapeString])
	assert.Equal(t, 1, obs.misses[ShapeSeq])
	assert.Equal(t, 0, obs.hits[ShapeSeq])
}

func TestShapeString(t *testing.T) {
	var names []string
	for _, shape := range Shapes {
		names = append(names, shape.String())
	}
	assert.Equal(t, []string{"blobs", "strings", "sequences", "maps"}, names)
	assert.Equal(t, "unknown", Shape(9).String())
}
