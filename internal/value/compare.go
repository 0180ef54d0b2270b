package value

import (
	"bytes"
	"cmp"
	"math"
	"slices"
	"strings"
)

// Compare returns -1, 0 or +1 ordering a before, equal to, or after b.
//
// Values of different kinds order by Kind. Within a kind the natural
// order applies: bytewise for strings and blobs, lexicographic for
// sequences, key sequence then value sequence for maps, None before
// Some for options. Floats use the total order of compareFloat.
//
// The order is total, so Compare can drive slices.SortFunc directly:
//
//	slices.SortFunc(vals, value.Compare)
//
// Shared handles that are the same instance compare equal without their
// content being read. Compare only reads its arguments and is safe for
// concurrent use. It panics if either argument is nil, since nil is not a
// Value of any kind.
func Compare(a, b Value) int {
	ka, kb := a.Kind(), b.Kind()
	if ka != kb {
		return cmp.Compare(ka, kb)
	}

	switch x := a.(type) {
	case Bool:
		return compareBool(bool(x), bool(b.(Bool)))
	case U8:
		return cmp.Compare(x, b.(U8))
	case U16:
		return cmp.Compare(x, b.(U16))
	case U32:
		return cmp.Compare(x, b.(U32))
	case U64:
		return cmp.Compare(x, b.(U64))
	case I8:
		return cmp.Compare(x, b.(I8))
	case I16:
		return cmp.Compare(x, b.(I16))
	case I32:
		return cmp.Compare(x, b.(I32))
	case I64:
		return cmp.Compare(x, b.(I64))
	case F32:
		return compareFloat(float64(x), float64(b.(F32)))
	case F64:
		return compareFloat(float64(x), float64(b.(F64)))
	case Char:
		return cmp.Compare(x, b.(Char))
	case *Str:
		y := b.(*Str)
		if x == y {
			return 0
		}
		return strings.Compare(x.s, y.s)
	case Unit:
		return 0
	case Option:
		return compareOption(x, b.(Option))
	case Newtype:
		return Compare(x.inner(), b.(Newtype).inner())
	case *Seq:
		return compareSeq(x, b.(*Seq))
	case *Map:
		y := b.(*Map)
		if x == y {
			return 0
		}
		if c := compareSeq(x.keys, y.keys); c != 0 {
			return c
		}
		return slices.CompareFunc(x.values, y.values, Compare)
	case *Bytes:
		y := b.(*Bytes)
		if x == y {
			return 0
		}
		return bytes.Compare(x.b, y.b)
	default:
		panic("value: Compare: unknown value type")
	}
}

// Equal reports whether a and b are structurally equal.
// Equal(a, b) == (Compare(a, b) == 0) for all values.
//
// Equal is cheaper than Compare on shared handles: it rejects content with
// a different cached hash before reading it. Identity is not required;
// two distinct handles with the same content are Equal. Use Same to test
// for the canonical instance.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case F32:
		return compareFloat(float64(x), float64(b.(F32))) == 0
	case F64:
		return compareFloat(float64(x), float64(b.(F64))) == 0
	case *Str:
		y := b.(*Str)
		return x == y || (x.hash == y.hash && x.s == y.s)
	case *Bytes:
		y := b.(*Bytes)
		return x == y || (x.hash == y.hash && bytes.Equal(x.b, y.b))
	case *Seq:
		return equalSeq(x, b.(*Seq))
	case *Map:
		y := b.(*Map)
		if x == y {
			return true
		}
		return x.hash == y.hash &&
			equalSeq(x.keys, y.keys) &&
			slices.EqualFunc(x.values, y.values, Equal)
	case Option:
		y := b.(Option)
		if x.IsNone() || y.IsNone() {
			return x.IsNone() == y.IsNone()
		}
		return Equal(x.v, y.v)
	case Newtype:
		return Equal(x.inner(), b.(Newtype).inner())
	default:
		// Remaining kinds are comparable scalars.
		return a == b
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// compareFloat is a total order over floats: every NaN equals every
// other NaN and sorts above all numbers, and -0 equals +0.
func compareFloat(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	return cmp.Compare(a, b)
}

func compareOption(a, b Option) int {
	switch {
	case a.IsNone() && b.IsNone():
		return 0
	case a.IsNone():
		return -1
	case b.IsNone():
		return 1
	}
	return Compare(a.v, b.v)
}

func compareSeq(a, b *Seq) int {
	if a == b {
		return 0
	}
	return slices.CompareFunc(a.elems, b.elems, Compare)
}

func equalSeq(a, b *Seq) bool {
	if a == b {
		return true
	}
	return a.hash == b.hash && slices.EqualFunc(a.elems, b.elems, Equal)
}
