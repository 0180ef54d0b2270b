// Package dedup canonicalizes values so that structurally identical
// strings, blobs, sequences and maps are physically shared.
//
// A Session holds one content-addressed set per shareable shape. Each
// call to Canonicalize walks a document bottom-up: children are replaced
// by their canonical handles first, then the rebuilt parent is looked up
// and either replaced by the previously seen handle or registered as new
// canonical content.
//
// Scalars are never registered. Option and Newtype wrappers are rebuilt
// around their canonical payload but are not themselves shared.
//
// A Session only grows. Bound it to a batch of documents; using one
// session over an unbounded stream keeps every content ever seen alive.
//
// A Session is not safe for concurrent use. CanonicalizeShards runs one
// session per shard and merges the results through a single session.
package dedup
