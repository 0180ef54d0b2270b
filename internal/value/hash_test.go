package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashConsistentWithEqual(t *testing.T) {
	vals := sample()
	for _, a := range vals {
		for _, b := range vals {
			if Equal(a, b) {
				assert.Equal(t, Hash(a), Hash(b), "%s vs %s", a, b)
			}
		}
	}
}

func TestHashIndependentOfIdentity(t *testing.T) {
	a := NewSeq(NewStr("x"), MapFromEntries(Entry{Key: NewStr("k"), Value: F64(1)}))
	b := NewSeq(NewStr("x"), MapFromEntries(Entry{Key: NewStr("k"), Value: F64(1)}))

	assert.Equal(t, Hash(a), Hash(b))
	assert.Equal(t, Hash(Some(a)), Hash(Some(b)))
}

func TestHashCanonicalFloats(t *testing.T) {
	assert.Equal(t, Hash(F64(0)), Hash(F64(math.Copysign(0, -1))))
	assert.Equal(t, Hash(F64(math.NaN())), Hash(F64(-math.NaN())))
	assert.Equal(t, Hash(F32(0)), Hash(F32(float32(math.Copysign(0, -1)))))
	assert.Equal(t, Hash(F32(float32(math.NaN()))), Hash(F32(float32(-math.NaN()))))
}

func TestHashSeparatesKinds(t *testing.T) {
	// Not guaranteed in general, but these must not collide in practice.
	assert.NotEqual(t, Hash(I32(1)), Hash(I64(1)))
	assert.NotEqual(t, Hash(NewStr("a")), Hash(NewBytes([]byte("a"))))
	assert.NotEqual(t, Hash(Wrap(I32(1))), Hash(I32(1)))
	assert.NotEqual(t, Hash(None()), Hash(Unit{}))
	assert.NotEqual(t, Hash(NewSeq()), Hash(MapFromEntries()))
}

func TestHashOrderSensitive(t *testing.T) {
	assert.NotEqual(t,
		Hash(NewSeq(I32(1), I32(2))),
		Hash(NewSeq(I32(2), I32(1))),
	)
}
