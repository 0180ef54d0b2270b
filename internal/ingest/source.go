package ingest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"

	"github.com/roach88/arcvalue/internal/value"
)

// Options configures a Source.
type Options struct {
	// Format overrides detection from the file name.
	Format Format

	// NormalizeNFC rewrites every string and map key to Unicode NFC, so
	// that canonically equivalent spellings deduplicate together.
	NormalizeNFC bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Error reports a document that could not be decoded.
type Error struct {
	Source   string
	Format   Format
	Document int // 1-based
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s document %d: %v", e.Source, e.Format, e.Document, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// decoder yields documents until io.EOF.
type decoder interface {
	next() (value.Value, error)
}

// Source reads a stream of documents from one input.
type Source struct {
	name        string
	format      Format
	compression Compression
	dec         decoder
	closers     []io.Closer
	hasher      *blake3.Hasher
	documents   int
	logger      *slog.Logger
}

// Open opens the file at path, detecting format and compression from its
// name unless opts.Format is set.
func Open(path string, opts Options) (*Source, error) {
	format, comp, err := DetectFormat(path)
	if opts.Format != "" {
		format = opts.Format
	} else if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	src, err := NewSource(f, path, format, comp, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closers = append(src.closers, f)
	return src, nil
}

// NewSource reads documents of the given format from r. name is used in
// errors and logs. The caller keeps ownership of r.
func NewSource(r io.Reader, name string, format Format, comp Compression, opts Options) (*Source, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Source{
		name:        name,
		format:      format,
		compression: comp,
		hasher:      blake3.New(),
		logger:      logger,
	}

	raw := io.TeeReader(r, s.hasher)
	plain, err := s.decompress(raw)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%s: %s: %w", name, comp, err)
	}

	b := builder{nfc: opts.NormalizeNFC}
	switch format {
	case FormatJSON:
		s.dec = newJSONDecoder(plain, b)
	case FormatYAML:
		s.dec = newYAMLDecoder(plain, b)
	case FormatCBOR:
		s.dec = newCBORDecoder(plain, b)
	case FormatCUE:
		s.dec = newCUEDecoder(plain, name, b)
	default:
		s.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	logger.Debug("source opened",
		"source", name,
		"format", format,
		"compression", comp,
		"nfc", opts.NormalizeNFC,
	)
	return s, nil
}

func (s *Source) decompress(r io.Reader) (io.Reader, error) {
	switch s.compression {
	case CompressionNone:
		return r, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, zr)
		return zr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, closerFunc(func() error {
			zr.Close()
			return nil
		}))
		return zr, nil
	case CompressionLZ4:
		return lz4.NewReader(r), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", s.compression)
	}
}

// Next returns the next document, or io.EOF when the input is exhausted.
func (s *Source) Next() (value.Value, error) {
	v, err := s.dec.next()
	if errors.Is(err, io.EOF) {
		s.logger.Debug("source drained", "source", s.name, "documents", s.documents)
		return nil, io.EOF
	}
	if err != nil {
		return nil, &Error{Source: s.name, Format: s.format, Document: s.documents + 1, Err: err}
	}
	s.documents++
	return v, nil
}

// Name returns the name the source was opened with.
func (s *Source) Name() string { return s.name }

// Format returns the document format.
func (s *Source) Format() Format { return s.format }

// Documents returns the number of documents read so far.
func (s *Source) Documents() int { return s.documents }

// Digest returns the hex BLAKE3 digest of the raw bytes consumed so far.
// Once Next has returned io.EOF it covers the whole input.
func (s *Source) Digest() string {
	return hex.EncodeToString(s.hasher.Sum(nil))
}

// Close releases decompressors and the underlying file, if Open created it.
func (s *Source) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// ReadAll drains src.
func ReadAll(src *Source) ([]value.Value, error) {
	var docs []value.Value
	for {
		v, err := src.Next()
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return docs, err
		}
		docs = append(docs, v)
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
