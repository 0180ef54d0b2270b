// Package ingest reads documents from external formats into values.
//
// JSON, YAML, CBOR and CUE inputs are supported, optionally compressed
// with gzip, zstd or lz4. Objects become maps built with
// value.MapFromEntries, so their keys are in canonical order regardless
// of how the input spelled them.
package ingest
