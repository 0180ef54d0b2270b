// Package value provides the self-describing value model shared by every
// other arcvalue package.
//
// A Value is a closed tagged union of 19 kinds. value imports nothing
// internal; dedup, ingest and cli all build on it.
//
// Key design constraints:
//   - Kind order IS the discriminant rank used by Compare
//   - Scalars (Unit, Bool, integers, floats, Char) are plain values
//   - *Str, *Bytes, *Seq and *Map are shared, immutable handles; the same
//     handle may be reachable from many parents (a DAG, never a cycle)
//   - Option and Newtype own one boxed child and are never shared
//   - Compare, Equal, Hash and String must be updated together whenever a
//     kind is added
//   - Floats use a total order: NaN == NaN, NaN sorts last, -0 == +0
package value
