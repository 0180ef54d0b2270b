package dedup

import (
	"iter"

	"github.com/roach88/arcvalue/internal/value"
)

// handle is a shared value kind that can be registered in a contentSet.
type handle interface {
	comparable
	value.Value
}

type entry[T handle] struct {
	v    T
	refs int
}

// contentSet is a set of canonical handles keyed by content. Entries are
// bucketed by content hash and compared with value.Equal on collision.
type contentSet[T handle] struct {
	buckets map[uint64][]*entry[T]
	size    int
	hits    int
}

// intern returns the canonical handle for v's content, registering v if
// the content is new. hit reports whether an existing handle was returned.
func (s *contentSet[T]) intern(v T) (T, bool) {
	if s.buckets == nil {
		s.buckets = make(map[uint64][]*entry[T])
	}

	h := value.Hash(v)
	bucket := s.buckets[h]
	for _, e := range bucket {
		if value.Equal(e.v, v) {
			e.refs++
			s.hits++
			return e.v, true
		}
	}

	s.buckets[h] = append(bucket, &entry[T]{v: v, refs: 1})
	s.size++
	return v, false
}

// adopt registers v's content with refs references taken over from
// another session. Every taken-over reference counts as a hit except the
// first one of content new to s. It reports whether the content was
// already registered.
func (s *contentSet[T]) adopt(v T, refs int) (T, bool) {
	if s.buckets == nil {
		s.buckets = make(map[uint64][]*entry[T])
	}

	h := value.Hash(v)
	bucket := s.buckets[h]
	for _, e := range bucket {
		if value.Equal(e.v, v) {
			e.refs += refs
			s.hits += refs
			return e.v, true
		}
	}

	s.buckets[h] = append(bucket, &entry[T]{v: v, refs: refs})
	s.size++
	s.hits += refs - 1
	return v, false
}

// lookup returns the entry for v's content, if registered.
func (s *contentSet[T]) lookup(v T) (*entry[T], bool) {
	for _, e := range s.buckets[value.Hash(v)] {
		if value.Equal(e.v, v) {
			return e, true
		}
	}
	return nil, false
}

// all iterates over the registered entries in no particular order.
func (s *contentSet[T]) all() iter.Seq[*entry[T]] {
	return func(yield func(*entry[T]) bool) {
		for _, bucket := range s.buckets {
			for _, e := range bucket {
				if !yield(e) {
					return
				}
			}
		}
	}
}
