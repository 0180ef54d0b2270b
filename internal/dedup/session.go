package dedup

import (
	"log/slog"

	"github.com/roach88/arcvalue/internal/value"
)

// Shape identifies one of the four shareable value shapes.
type Shape uint8

const (
	ShapeBlob Shape = iota
	ShapeString
	ShapeSeq
	ShapeMap
)

// Shapes lists every shape in report order.
var Shapes = [...]Shape{ShapeBlob, ShapeString, ShapeSeq, ShapeMap}

// String returns the plural name used in reports and metric labels.
func (s Shape) String() string {
	switch s {
	case ShapeBlob:
		return "blobs"
	case ShapeString:
		return "strings"
	case ShapeSeq:
		return "sequences"
	case ShapeMap:
		return "maps"
	default:
		return "unknown"
	}
}

// Option configures a Session.
type Option func(*options)

type options struct {
	observer Observer
	logger   *slog.Logger
}

// WithObserver registers an observer for content-set lookups.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{
		observer: NoopObserver{},
		logger:   slog.Default(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Session is one canonicalization context. It holds one content set per
// shape, each mapping content to the single canonical handle that every
// later equal value is replaced with, plus a reference count per handle.
//
// The zero value is not usable; create sessions with NewSession.
//
// A Session is not safe for concurrent use. Give each goroutine its own
// session and combine them with Merge, or use CanonicalizeShards. The
// values a session returns are immutable and may be shared freely.
//
// Sessions only grow. Content is never evicted, so a long-lived session
// retains every distinct string, blob, sequence and map it has seen.
type Session struct {
	blobs     contentSet[*value.Bytes]
	strings   contentSet[*value.Str]
	seqs      contentSet[*value.Seq]
	maps      contentSet[*value.Map]
	documents int

	observer Observer
	logger   *slog.Logger
}

// NewSession creates an empty session.
//
// Without options, lookups are not observed and diagnostics go to
// slog.Default():
//
//	s := dedup.NewSession(dedup.WithLogger(logger), dedup.WithObserver(obs))
func NewSession(opts ...Option) *Session {
	o := buildOptions(opts)
	return &Session{
		observer: o.observer,
		logger:   o.logger,
	}
}

// Canonicalize returns a value equal to v in which every string, blob,
// sequence and map has been replaced by the canonical handle for its
// content. Content seen for the first time becomes canonical. Sub-trees
// that are already canonical are returned without being rebuilt.
//
// Children are canonicalized before their parent, so two equal containers
// always end up as the same handle. Every occurrence of a content counts
// one reference, including occurrences inside containers that were
// already canonical.
//
// Canonicalize is idempotent: canonicalizing its result again returns the
// same handles. It cannot fail. Each call counts one document in Stats.
func (s *Session) Canonicalize(v value.Value) value.Value {
	s.documents++
	out := s.canon(v)
	s.logger.Debug("canonicalized document",
		"document", s.documents,
		"kind", v.Kind(),
		"strings", s.strings.size,
		"sequences", s.seqs.size,
		"maps", s.maps.size,
	)
	return out
}

func (s *Session) canon(v value.Value) value.Value {
	switch x := v.(type) {
	case *value.Bytes:
		c, hit := s.blobs.intern(x)
		s.notify(ShapeBlob, hit)
		return c
	case *value.Str:
		c, hit := s.strings.intern(x)
		s.notify(ShapeString, hit)
		return c
	case *value.Seq:
		return s.canonSeq(x)
	case *value.Map:
		return s.canonMap(x)
	case value.Option:
		inner, ok := x.Get()
		if !ok {
			return x
		}
		return value.Some(s.canon(inner))
	case value.Newtype:
		return value.Wrap(s.canon(x.Inner()))
	default:
		return v
	}
}

func (s *Session) canonSeq(x *value.Seq) *value.Seq {
	if elems := s.canonList(x.Len(), x.At); elems != nil {
		x = value.NewSeq(elems...)
	}
	c, hit := s.seqs.intern(x)
	s.notify(ShapeSeq, hit)
	return c
}

func (s *Session) canonMap(x *value.Map) *value.Map {
	keys := s.canonSeq(x.Keys())
	values := s.canonList(x.Len(), x.ValueAt)
	if keys != x.Keys() || values != nil {
		if values == nil {
			values = x.Values()
		}
		x = value.NewMap(keys, values)
	}
	c, hit := s.maps.intern(x)
	s.notify(ShapeMap, hit)
	return c
}

// canonList canonicalizes n elements read through at. It returns nil
// when every element was already canonical, otherwise a fresh slice.
func (s *Session) canonList(n int, at func(int) value.Value) []value.Value {
	var out []value.Value
	for i := range n {
		e := at(i)
		c := s.canon(e)
		if out == nil && !value.Same(c, e) {
			out = make([]value.Value, n)
			for j := range i {
				out[j] = at(j)
			}
		}
		if out != nil {
			out[i] = c
		}
	}
	return out
}

func (s *Session) notify(shape Shape, hit bool) {
	if hit {
		s.observer.Hit(shape)
		return
	}
	s.observer.Miss(shape)
}

// Refs returns the reference count of the canonical content equal to v
// and whether such content is registered. Scalars, options and newtypes
// are never registered.
func (s *Session) Refs(v value.Value) (int, bool) {
	switch x := v.(type) {
	case *value.Bytes:
		return refsOf(&s.blobs, x)
	case *value.Str:
		return refsOf(&s.strings, x)
	case *value.Seq:
		return refsOf(&s.seqs, x)
	case *value.Map:
		return refsOf(&s.maps, x)
	default:
		return 0, false
	}
}

func refsOf[T handle](set *contentSet[T], v T) (int, bool) {
	e, ok := set.lookup(v)
	if !ok {
		return 0, false
	}
	return e.refs, true
}
