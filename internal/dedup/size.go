package dedup

import (
	"unsafe"

	"github.com/roach88/arcvalue/internal/value"
)

var (
	// valueSize is the in-memory size of one element slot.
	valueSize = int(unsafe.Sizeof(value.Value(nil)))

	// mapHeaderSize is the size of a map handle without its elements.
	mapHeaderSize = int(unsafe.Sizeof(value.Map{}))
)

// EstimateSize approximates the bytes held by the session's canonical
// contents: raw length for blobs and strings, one element slot per
// sequence element, and a header plus one slot per value for maps. Key
// sequences are counted as sequences. Handle and set overhead is ignored.
func (s *Session) EstimateSize() int {
	total := 0
	for e := range s.blobs.all() {
		total += e.v.Len()
	}
	for e := range s.strings.all() {
		total += e.v.Len()
	}
	for e := range s.seqs.all() {
		total += e.v.Len() * valueSize
	}
	for e := range s.maps.all() {
		total += mapHeaderSize + e.v.Len()*valueSize
	}
	return total
}
