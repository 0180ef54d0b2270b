package value

import (
	"encoding/binary"
	"hash/maphash"
	"math"
)

// seed is shared by every hash in the process so that independently
// built, content-identical values hash identically.
var seed = maphash.MakeSeed()

// canonical NaN bit patterns; every NaN hashes as one of these.
const (
	canonicalNaN32 = 0x7fc00000
	canonicalNaN64 = 0x7ff8000000000000
)

// Hash returns the content hash of v. It combines the kind with the
// dereferenced content, never the identity of a shared handle, so
// Equal(a, b) implies Hash(a) == Hash(b).
func Hash(v Value) uint64 {
	switch x := v.(type) {
	case *Str:
		return x.hash
	case *Bytes:
		return x.hash
	case *Seq:
		return x.hash
	case *Map:
		return x.hash
	}
	var h maphash.Hash
	h.SetSeed(seed)
	writeValue(&h, v)
	return h.Sum64()
}

// WriteHash writes a short representation of v to h. Shared handles
// contribute their cached content hash instead of being re-walked.
func WriteHash(h *maphash.Hash, v Value) {
	writeUint64(h, Hash(v))
}

func writeValue(h *maphash.Hash, v Value) {
	h.WriteByte(byte(v.Kind()))

	switch x := v.(type) {
	case Unit:
	case Bool:
		if x {
			h.WriteByte(1)
		} else {
			h.WriteByte(0)
		}
	case U8:
		writeUint64(h, uint64(x))
	case U16:
		writeUint64(h, uint64(x))
	case U32:
		writeUint64(h, uint64(x))
	case U64:
		writeUint64(h, uint64(x))
	case I8:
		writeUint64(h, uint64(x))
	case I16:
		writeUint64(h, uint64(x))
	case I32:
		writeUint64(h, uint64(x))
	case I64:
		writeUint64(h, uint64(x))
	case F32:
		writeUint64(h, uint64(float32Bits(float32(x))))
	case F64:
		writeUint64(h, float64Bits(float64(x)))
	case Char:
		writeUint64(h, uint64(x))
	case Option:
		if x.IsNone() {
			h.WriteByte(0)
			return
		}
		h.WriteByte(1)
		WriteHash(h, x.v)
	case Newtype:
		WriteHash(h, x.inner())
	default:
		panic("value: Hash: unknown value type")
	}
}

func hashString(s string) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	h.WriteByte(byte(KindString))
	h.WriteString(s)
	return h.Sum64()
}

func hashBytes(b []byte) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	h.WriteByte(byte(KindBytes))
	h.Write(b)
	return h.Sum64()
}

func hashSeq(elems []Value) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	h.WriteByte(byte(KindSeq))
	writeUint64(&h, uint64(len(elems)))
	for _, e := range elems {
		WriteHash(&h, e)
	}
	return h.Sum64()
}

func hashMap(keys *Seq, values []Value) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	h.WriteByte(byte(KindMap))
	writeUint64(&h, keys.hash)
	writeUint64(&h, uint64(len(values)))
	for _, v := range values {
		WriteHash(&h, v)
	}
	return h.Sum64()
}

func writeUint64(h *maphash.Hash, x uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	h.Write(buf[:])
}

// float32Bits returns the bits of f with NaN and signed zero
// canonicalized, matching compareFloat.
func float32Bits(f float32) uint32 {
	switch {
	case math.IsNaN(float64(f)):
		return canonicalNaN32
	case f == 0:
		return 0
	}
	return math.Float32bits(f)
}

func float64Bits(f float64) uint64 {
	switch {
	case math.IsNaN(f):
		return canonicalNaN64
	case f == 0:
		return 0
	}
	return math.Float64bits(f)
}
