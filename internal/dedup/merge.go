package dedup

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/arcvalue/internal/value"
)

// Merge feeds every canonical content of other through s, so that s
// afterwards holds a canonical handle for everything other has seen.
//
// Reference counts and hits are taken over from other rather than
// recounted: merging the sessions of disjoint parts of an input yields
// the same Stats, Entries and observer notifications as one session over
// the whole input. Content new to s keeps other's handle, so other's
// handles become canonical in s wherever s had no equal content yet.
//
// other is not modified but must not be mutated concurrently. Merge is
// not safe for concurrent use with any other method of s.
func (s *Session) Merge(other *Session) {
	s.merge(other)
}

func (s *Session) merge(other *Session) *merger {
	m := &merger{s: s, other: other, handles: make(map[value.Value]value.Value)}
	for e := range other.blobs.all() {
		m.adopt(e.v)
	}
	for e := range other.strings.all() {
		m.adopt(e.v)
	}
	for e := range other.seqs.all() {
		m.adopt(e.v)
	}
	for e := range other.maps.all() {
		m.adopt(e.v)
	}
	s.documents += other.documents
	s.logger.Debug("merged session",
		"documents", other.documents,
		"distinct", other.Stats().Distinct(),
		"adopted", len(m.handles),
	)
	return m
}

// merger maps the handles of one merged session to the handles of the
// receiving session.
type merger struct {
	s       *Session
	other   *Session
	handles map[value.Value]value.Value
}

// adopt returns the receiving session's handle for v, a value built from
// other's handles. Each handle of other is adopted once, children first,
// so a container is registered only after its children point into s.
func (m *merger) adopt(v value.Value) value.Value {
	switch x := v.(type) {
	case *value.Bytes, *value.Str, *value.Seq, *value.Map:
		if c, ok := m.handles[v]; ok {
			return c
		}
		c := m.register(x)
		m.handles[v] = c
		return c
	case value.Option:
		inner, ok := x.Get()
		if !ok {
			return x
		}
		return value.Some(m.adopt(inner))
	case value.Newtype:
		return value.Wrap(m.adopt(x.Inner()))
	default:
		return v
	}
}

func (m *merger) register(v value.Value) value.Value {
	refs, ok := m.other.Refs(v)
	if !ok {
		refs = 1
	}
	switch x := v.(type) {
	case *value.Bytes:
		return adoptInto(m.s, &m.s.blobs, ShapeBlob, x, refs)
	case *value.Str:
		return adoptInto(m.s, &m.s.strings, ShapeString, x, refs)
	case *value.Seq:
		if elems := m.adoptList(x.Len(), x.At); elems != nil {
			x = value.NewSeq(elems...)
		}
		return adoptInto(m.s, &m.s.seqs, ShapeSeq, x, refs)
	default:
		y := v.(*value.Map)
		keys := m.adopt(y.Keys()).(*value.Seq)
		values := m.adoptList(y.Len(), y.ValueAt)
		if keys != y.Keys() || values != nil {
			if values == nil {
				values = y.Values()
			}
			y = value.NewMap(keys, values)
		}
		return adoptInto(m.s, &m.s.maps, ShapeMap, y, refs)
	}
}

// adoptList is canonList for adoption: nil when no element changed.
func (m *merger) adoptList(n int, at func(int) value.Value) []value.Value {
	var out []value.Value
	for i := range n {
		e := at(i)
		c := m.adopt(e)
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

// adoptInto registers v in set and replays the notifications a single
// session would have sent for its refs references.
func adoptInto[T handle](s *Session, set *contentSet[T], shape Shape, v T, refs int) T {
	c, hit := set.adopt(v, refs)
	if !hit {
		s.observer.Miss(shape)
		refs--
	}
	for range refs {
		s.observer.Hit(shape)
	}
	return c
}

// CanonicalizeShards canonicalizes each shard in its own session,
// concurrently, then merges every shard session into one merging session
// so that sharing holds across shards. It returns the merging session and
// the canonical documents in input order.
//
// The result matches a single session that canonicalized the shards one
// after another: equal Stats and Entries, and the observer given in opts
// receives the same number of hits and misses. The observer is attached
// to the merging session only, so it need not be safe for concurrent use.
//
// Documents are remapped onto the merging session's handles by lookup,
// without being canonicalized a second time. The first shard to register
// some content supplies its canonical handle.
//
// Cancelling ctx stops the shard workers between documents and the merge
// between shards. The error is then ctx.Err().
func CanonicalizeShards(ctx context.Context, shards [][]value.Value, opts ...Option) (*Session, [][]value.Value, error) {
	o := buildOptions(opts)
	out := make([][]value.Value, len(shards))
	locals := make([]*Session, len(shards))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, shard := range shards {
		g.Go(func() error {
			local := NewSession(WithLogger(o.logger))
			docs := make([]value.Value, len(shard))
			for j, doc := range shard {
				if err := gctx.Err(); err != nil {
					return err
				}
				docs[j] = local.Canonicalize(doc)
			}
			out[i] = docs
			locals[i] = local
			o.logger.Debug("shard canonicalized", "shard", i, "documents", len(docs))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	merged := NewSession(opts...)
	for i, local := range locals {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		m := merged.merge(local)
		for j, doc := range out[i] {
			out[i][j] = m.adopt(doc)
		}
	}
	o.logger.Info("shards merged",
		"shards", len(shards),
		"documents", merged.documents,
		"distinct", merged.Stats().Distinct(),
	)
	return merged, out, nil
}
