package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned when a format cannot be parsed or detected.
var ErrUnknownFormat = errors.New("unknown input format")

// Format identifies a document encoding.
type Format string

const (
	// FormatJSON reads concatenated or line-delimited JSON documents.
	FormatJSON Format = "json"

	// FormatYAML reads a multi-document YAML stream.
	FormatYAML Format = "yaml"

	// FormatCBOR reads a CBOR sequence (RFC 8742).
	FormatCBOR Format = "cbor"

	// FormatCUE reads one CUE file as a single document.
	FormatCUE Format = "cue"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatYAML, FormatCBOR, FormatCUE}

// ParseFormat parses a format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json", "jsonl", "ndjson":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	case "cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Compression identifies the compression wrapping an input.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

var compressionSuffixes = map[string]Compression{
	".gz":  CompressionGzip,
	".zst": CompressionZstd,
	".lz4": CompressionLZ4,
}

// DetectFormat derives the format and compression of a file from its
// name, e.g. "events.jsonl.zst" is zstd-compressed JSON.
func DetectFormat(path string) (Format, Compression, error) {
	base := strings.ToLower(filepath.Base(path))

	comp := CompressionNone
	if c, ok := compressionSuffixes[filepath.Ext(base)]; ok {
		comp = c
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}

	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if ext == "" {
		return "", comp, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", comp, fmt.Errorf("%s: %w", path, err)
	}
	return f, comp, nil
}
