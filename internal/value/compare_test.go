package value

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample returns at least one value of every kind, plus neighbors that
// stress the within-kind orderings.
func sample() []Value {
	return []Value{
		Bool(false), Bool(true),
		U8(0), U8(255), U16(7), U32(7), U64(math.MaxUint64),
		I8(-1), I16(-300), I32(0), I64(math.MinInt64),
		F32(1.5), F32(float32(math.NaN())),
		F64(math.Inf(-1)), F64(math.Copysign(0, -1)), F64(0), F64(math.NaN()),
		Char('a'), Char('b'),
		NewStr(""), NewStr("a"), NewStr("ab"),
		Unit{},
		None(), Some(Bool(false)), Some(NewStr("a")),
		Wrap(I32(1)), Wrap(NewStr("a")),
		NewSeq(), NewSeq(I32(1)), NewSeq(I32(1), I32(2)), NewSeq(NewStr("a")),
		MapFromEntries(),
		MapFromEntries(Entry{Key: NewStr("a"), Value: I32(1)}),
		MapFromEntries(Entry{Key: NewStr("a"), Value: I32(2)}),
		MapFromEntries(Entry{Key: NewStr("b"), Value: I32(0)}),
		NewBytes(nil), NewBytes([]byte{0}), NewBytes([]byte{1}),
	}
}

func TestCompareReflexiveAndAntisymmetric(t *testing.T) {
	vals := sample()
	for _, a := range vals {
		assert.Equal(t, 0, Compare(a, a), "%s", a)
		for _, b := range vals {
			assert.Equal(t, Compare(a, b), -Compare(b, a), "%s vs %s", a, b)
		}
	}
}

func TestCompareTransitive(t *testing.T) {
	vals := sample()
	for _, a := range vals {
		for _, b := range vals {
			for _, c := range vals {
				if Compare(a, b) <= 0 && Compare(b, c) <= 0 {
					assert.LessOrEqual(t, Compare(a, c), 0, "%s <= %s <= %s", a, b, c)
				}
			}
		}
	}
}

func TestEqualAgreesWithCompare(t *testing.T) {
	vals := sample()
	for _, a := range vals {
		for _, b := range vals {
			assert.Equal(t, Compare(a, b) == 0, Equal(a, b), "%s vs %s", a, b)
		}
	}
}

func TestCompareKindRankDominates(t *testing.T) {
	// The largest unsigned value still sorts before the smallest signed.
	assert.Equal(t, -1, Compare(U64(math.MaxUint64), I8(math.MinInt8)))
	// Same numeric value, different width: never equal.
	assert.False(t, Equal(I32(1), I64(1)))
	assert.Equal(t, -1, Compare(I32(1), I64(0)))
	// Bool sorts first, Bytes last.
	assert.Equal(t, -1, Compare(Bool(true), U8(0)))
	assert.Equal(t, 1, Compare(NewBytes(nil), MapFromEntries()))
	// A one-char string is not a char.
	assert.False(t, Equal(Char('a'), NewStr("a")))
	// Newtype is distinct from its payload.
	assert.False(t, Equal(Wrap(I32(1)), I32(1)))
}

func TestCompareSortsSample(t *testing.T) {
	vals := sample()
	slices.Reverse(vals)
	slices.SortFunc(vals, Compare)
	require.True(t, slices.IsSortedFunc(vals, Compare))

	assert.Equal(t, KindBool, vals[0].Kind())
	assert.Equal(t, KindBytes, vals[len(vals)-1].Kind())
}

func TestFloatTotalOrder(t *testing.T) {
	nan := F64(math.NaN())

	assert.True(t, Equal(nan, F64(math.NaN())))
	assert.Equal(t, 1, Compare(nan, F64(math.Inf(1))))
	assert.Equal(t, -1, Compare(F64(math.Inf(1)), nan))
	assert.True(t, Equal(F64(math.Copysign(0, -1)), F64(0)))
	assert.True(t, Equal(F32(float32(math.NaN())), F32(float32(math.NaN()))))
	assert.Equal(t, -1, Compare(F64(-1), F64(0)))
}

func TestCompareStringsBytewise(t *testing.T) {
	assert.Equal(t, -1, Compare(NewStr("B"), NewStr("a")))
	assert.Equal(t, -1, Compare(NewStr("a"), NewStr("ab")))
	assert.Equal(t, -1, Compare(NewStr(""), NewStr("a")))
	assert.True(t, Equal(NewStr("é"), NewStr("é")))
}

func TestCompareSeqLexicographic(t *testing.T) {
	assert.Equal(t, -1, Compare(NewSeq(I32(1)), NewSeq(I32(1), I32(0))))
	assert.Equal(t, 1, Compare(NewSeq(I32(2)), NewSeq(I32(1), I32(9))))
	assert.True(t, Equal(NewSeq(NewStr("a")), NewSeq(NewStr("a"))))
}

func TestCompareMapKeysThenValues(t *testing.T) {
	a := MapFromEntries(Entry{Key: NewStr("a"), Value: I32(9)})
	b := MapFromEntries(Entry{Key: NewStr("b"), Value: I32(0)})
	c := MapFromEntries(Entry{Key: NewStr("a"), Value: I32(10)})

	assert.Equal(t, -1, Compare(a, b), "keys decide first")
	assert.Equal(t, -1, Compare(a, c), "then values")
}

func TestMapEqualityIsPositional(t *testing.T) {
	k1, k2 := NewStr("a"), NewStr("b")
	ab := NewMap(NewSeq(k1, k2), []Value{I32(1), I32(2)})
	ba := NewMap(NewSeq(k2, k1), []Value{I32(2), I32(1)})

	assert.False(t, Equal(ab, ba))
	assert.NotEqual(t, 0, Compare(ab, ba))
}

func TestCompareOption(t *testing.T) {
	assert.Equal(t, -1, Compare(None(), Some(Bool(false))))
	assert.Equal(t, -1, Compare(Some(I32(1)), Some(I32(2))))
	assert.False(t, Equal(None(), Some(Unit{})))
}
