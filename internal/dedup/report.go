package dedup

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/roach88/arcvalue/internal/value"
)

// Entry is one registered canonical content and its reference count.
type Entry struct {
	Value value.Value
	Refs  int
}

// ShapeStats summarizes one content set.
type ShapeStats struct {
	Distinct int `json:"distinct"`
	Hits     int `json:"hits"`
}

// Stats summarizes a session.
type Stats struct {
	Documents int        `json:"documents"`
	Blobs     ShapeStats `json:"blobs"`
	Strings   ShapeStats `json:"strings"`
	Sequences ShapeStats `json:"sequences"`
	Maps      ShapeStats `json:"maps"`
}

// Shape returns the statistics of one shape.
func (st Stats) Shape(shape Shape) ShapeStats {
	switch shape {
	case ShapeBlob:
		return st.Blobs
	case ShapeString:
		return st.Strings
	case ShapeSeq:
		return st.Sequences
	default:
		return st.Maps
	}
}

// Distinct returns the number of distinct contents across all shapes.
func (st Stats) Distinct() int {
	return st.Blobs.Distinct + st.Strings.Distinct + st.Sequences.Distinct + st.Maps.Distinct
}

// Stats returns the current session statistics.
func (s *Session) Stats() Stats {
	return Stats{
		Documents: s.documents,
		Blobs:     ShapeStats{Distinct: s.blobs.size, Hits: s.blobs.hits},
		Strings:   ShapeStats{Distinct: s.strings.size, Hits: s.strings.hits},
		Sequences: ShapeStats{Distinct: s.seqs.size, Hits: s.seqs.hits},
		Maps:      ShapeStats{Distinct: s.maps.size, Hits: s.maps.hits},
	}
}

// Entries returns every canonical content of the given shape, most
// referenced first. Ties are broken by value.Compare so the order is
// deterministic.
func (s *Session) Entries(shape Shape) []Entry {
	var out []Entry
	switch shape {
	case ShapeBlob:
		out = collect(&s.blobs)
	case ShapeString:
		out = collect(&s.strings)
	case ShapeSeq:
		out = collect(&s.seqs)
	case ShapeMap:
		out = collect(&s.maps)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(b.Refs, a.Refs); c != 0 {
			return c
		}
		return value.Compare(a.Value, b.Value)
	})
	return out
}

func collect[T handle](set *contentSet[T]) []Entry {
	out := make([]Entry, 0, set.size)
	for e := range set.all() {
		out = append(out, Entry{Value: e.v, Refs: e.refs})
	}
	return out
}

// Report renders the session contents as text. See WriteReport.
func (s *Session) Report(threshold int) string {
	var sb strings.Builder
	_ = s.WriteReport(&sb, threshold)
	return sb.String()
}

// WriteReport writes, for each shape, the number of distinct contents
// followed by every entry referenced more than threshold times:
//
//	strings: 2 distinct
//	  4	x
//	  4	y
func (s *Session) WriteReport(w io.Writer, threshold int) error {
	for _, shape := range Shapes {
		entries := s.Entries(shape)
		if _, err := fmt.Fprintf(w, "%s: %d distinct\n", shape, len(entries)); err != nil {
			return err
		}
		for _, e := range entries {
			if e.Refs <= threshold {
				// Sorted by refs, nothing further qualifies.
				break
			}
			if _, err := fmt.Fprintf(w, "  %d\t%s\n", e.Refs, e.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
