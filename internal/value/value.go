package value

import (
	"iter"
	"slices"
)

// Value is a sealed interface over the 19 value kinds.
// Only the types declared in this package implement it.
//
// Values are immutable once constructed. Any Value, including the shared
// handles *Str, *Bytes, *Seq and *Map, may be read from many goroutines
// at once without synchronization.
type Value interface {
	// Kind returns the discriminant, which is also the rank Compare uses
	// between kinds.
	Kind() Kind

	// String renders the compact display form used in reports.
	String() string

	value() // Sealed
}

// Unit is the empty value.
type Unit struct{}

// Bool is a boolean value.
type Bool bool

// Unsigned integers.
type (
	U8  uint8
	U16 uint16
	U32 uint32
	U64 uint64
)

// Signed integers.
type (
	I8  int8
	I16 int16
	I32 int32
	I64 int64
)

// Floating point values. See Compare for their total order.
type (
	F32 float32
	F64 float64
)

// Char is a single Unicode scalar value.
type Char rune

// Kind returns KindUnit.
func (Unit) Kind() Kind { return KindUnit }

// Kind returns KindBool.
func (Bool) Kind() Kind { return KindBool }

// Kind returns KindU8.
func (U8) Kind() Kind { return KindU8 }

// Kind returns KindU16.
func (U16) Kind() Kind { return KindU16 }

// Kind returns KindU32.
func (U32) Kind() Kind { return KindU32 }

// Kind returns KindU64.
func (U64) Kind() Kind { return KindU64 }

// Kind returns KindI8.
func (I8) Kind() Kind { return KindI8 }

// Kind returns KindI16.
func (I16) Kind() Kind { return KindI16 }

// Kind returns KindI32.
func (I32) Kind() Kind { return KindI32 }

// Kind returns KindI64.
func (I64) Kind() Kind { return KindI64 }

// Kind returns KindF32.
func (F32) Kind() Kind { return KindF32 }

// Kind returns KindF64.
func (F64) Kind() Kind { return KindF64 }

// Kind returns KindChar.
func (Char) Kind() Kind { return KindChar }

func (Unit) value() {}
func (Bool) value() {}
func (U8) value()   {}
func (U16) value()  {}
func (U32) value()  {}
func (U64) value()  {}
func (I8) value()   {}
func (I16) value()  {}
func (I32) value()  {}
func (I64) value()  {}
func (F32) value()  {}
func (F64) value()  {}
func (Char) value() {}

// Str is a shared, immutable string handle.
type Str struct {
	s    string
	hash uint64
}

// NewStr creates a string handle.
func NewStr(s string) *Str {
	return &Str{s: s, hash: hashString(s)}
}

// Get returns the string content.
func (x *Str) Get() string { return x.s }

// Len returns the length in bytes.
func (x *Str) Len() int { return len(x.s) }

// Kind returns KindString.
func (*Str) Kind() Kind { return KindString }

func (*Str) value() {}

// Bytes is a shared, immutable byte blob handle.
type Bytes struct {
	b    []byte
	hash uint64
}

// NewBytes creates a blob handle. The slice is owned by the handle
// afterwards and must not be modified by the caller.
func NewBytes(b []byte) *Bytes {
	return &Bytes{b: b, hash: hashBytes(b)}
}

// Get returns a copy of the blob content.
func (x *Bytes) Get() []byte { return slices.Clone(x.b) }

// Len returns the blob length.
func (x *Bytes) Len() int { return len(x.b) }

// Kind returns KindBytes.
func (*Bytes) Kind() Kind { return KindBytes }

func (*Bytes) value() {}

// Seq is a shared, immutable ordered sequence handle.
type Seq struct {
	elems []Value
	hash  uint64
}

// NewSeq creates a sequence handle. When called with a slice
// (NewSeq(elems...)) the slice is owned by the handle afterwards.
func NewSeq(elems ...Value) *Seq {
	return &Seq{elems: elems, hash: hashSeq(elems)}
}

// Len returns the number of elements.
func (x *Seq) Len() int { return len(x.elems) }

// At returns the i-th element.
func (x *Seq) At(i int) Value { return x.elems[i] }

// All iterates over the elements in order.
func (x *Seq) All() iter.Seq2[int, Value] {
	return slices.All(x.elems)
}

// Slice returns a copy of the elements.
func (x *Seq) Slice() []Value { return slices.Clone(x.elems) }

// Kind returns KindSeq.
func (*Seq) Kind() Kind { return KindSeq }

func (*Seq) value() {}

// Map is a shared, immutable key/value collection handle.
//
// Keys are a shared *Seq, values are owned by the map. Position i of
// the keys corresponds to position i of the values. Equality is
// positional: the same pairs in a different order are a different map.
type Map struct {
	keys   *Seq
	values []Value
	hash   uint64
}

// NewMap creates a map from a key sequence and an equally long value
// slice. The values slice is owned by the map afterwards.
// Panics if the lengths differ.
func NewMap(keys *Seq, values []Value) *Map {
	if keys.Len() != len(values) {
		panic("value: NewMap: keys and values differ in length")
	}
	return &Map{keys: keys, values: values, hash: hashMap(keys, values)}
}

// Entry is a key/value pair used to build maps.
type Entry struct {
	Key   Value
	Value Value
}

// MapFromEntries builds a map the way an ordered mapping would: entries
// are sorted by key with Compare and a later entry replaces an earlier
// one with an equal key. The result therefore has a canonical key order.
func MapFromEntries(entries ...Entry) *Map {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return Compare(a.Key, b.Key)
	})

	keys := make([]Value, 0, len(sorted))
	values := make([]Value, 0, len(sorted))
	for _, e := range sorted {
		if n := len(keys); n > 0 && Equal(keys[n-1], e.Key) {
			values[n-1] = e.Value
			continue
		}
		keys = append(keys, e.Key)
		values = append(values, e.Value)
	}
	return NewMap(NewSeq(keys...), values)
}

// Len returns the number of entries.
func (x *Map) Len() int { return len(x.values) }

// Keys returns the shared key sequence.
func (x *Map) Keys() *Seq { return x.keys }

// Key returns the i-th key.
func (x *Map) Key(i int) Value { return x.keys.elems[i] }

// ValueAt returns the i-th value.
func (x *Map) ValueAt(i int) Value { return x.values[i] }

// Values returns a copy of the values.
func (x *Map) Values() []Value { return slices.Clone(x.values) }

// All iterates over the entries in positional order.
func (x *Map) All() iter.Seq2[Value, Value] {
	return func(yield func(Value, Value) bool) {
		for i, v := range x.values {
			if !yield(x.keys.elems[i], v) {
				return
			}
		}
	}
}

// Get returns the value of the first entry whose key equals k.
func (x *Map) Get(k Value) (Value, bool) {
	for i, key := range x.keys.elems {
		if Equal(key, k) {
			return x.values[i], true
		}
	}
	return nil, false
}

// Kind returns KindMap.
func (*Map) Kind() Kind { return KindMap }

func (*Map) value() {}

// Option is an optional value. The zero Option is None.
type Option struct {
	v Value
}

// Some wraps v in an Option.
func Some(v Value) Option { return Option{v: v} }

// None returns the empty Option.
func None() Option { return Option{} }

// Get returns the payload and whether it is present.
func (o Option) Get() (Value, bool) { return o.v, o.v != nil }

// IsNone reports whether the option is empty.
func (o Option) IsNone() bool { return o.v == nil }

// Kind returns KindOption.
func (Option) Kind() Kind { return KindOption }

func (Option) value() {}

// Newtype is a single-field wrapper around another value. The zero
// Newtype wraps Unit, the same as Wrap(nil).
type Newtype struct {
	v Value
}

// Wrap wraps v in a Newtype. A nil v is wrapped as Unit.
func Wrap(v Value) Newtype {
	if v == nil {
		v = Unit{}
	}
	return Newtype{v: v}
}

// Inner returns the wrapped value.
func (n Newtype) Inner() Value { return n.inner() }

func (n Newtype) inner() Value {
	if n.v == nil {
		return Unit{}
	}
	return n.v
}

// Kind returns KindNewtype.
func (Newtype) Kind() Kind { return KindNewtype }

func (Newtype) value() {}

// Same reports whether a and b are the same physical instance: the same
// handle for shared kinds, equal scalars otherwise. Option and Newtype
// are never shared, so they are Same only when their payloads are.
func Same(a, b Value) bool {
	switch x := a.(type) {
	case *Str:
		y, ok := b.(*Str)
		return ok && x == y
	case *Bytes:
		y, ok := b.(*Bytes)
		return ok && x == y
	case *Seq:
		y, ok := b.(*Seq)
		return ok && x == y
	case *Map:
		y, ok := b.(*Map)
		return ok && x == y
	case Option:
		y, ok := b.(Option)
		if !ok || x.IsNone() != y.IsNone() {
			return false
		}
		return x.IsNone() || Same(x.v, y.v)
	case Newtype:
		y, ok := b.(Newtype)
		return ok && Same(x.inner(), y.inner())
	default:
		return Equal(a, b)
	}
}
