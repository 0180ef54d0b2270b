package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/arcvalue/internal/ingest"
	"github.com/roach88/arcvalue/internal/value"
)

// stdinName is the argument that selects standard input.
const stdinName = "-"

// InputOptions holds the flags shared by commands that read documents.
type InputOptions struct {
	InputFormat string
	NFC         bool
}

func (o *InputOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.InputFormat, "input-format", "",
		fmt.Sprintf("input format %v (default: detect from file name)", ingest.Formats))
	cmd.Flags().BoolVar(&o.NFC, "nfc", false, "normalize strings and map keys to Unicode NFC")
}

// sourceOptions validates the flags and converts them to ingest options.
func (o *InputOptions) sourceOptions() (ingest.Options, error) {
	opts := ingest.Options{NormalizeNFC: o.NFC, Logger: slog.Default()}
	if o.InputFormat != "" {
		f, err := ingest.ParseFormat(o.InputFormat)
		if err != nil {
			return opts, WrapExitError(ExitCommandError, "invalid --input-format", err)
		}
		opts.Format = f
	}
	return opts, nil
}

// openInput opens path, or stdin when path is "-". Stdin carries no file
// name to detect from, so it needs an explicit format.
func openInput(path string, stdin io.Reader, opts ingest.Options) (*ingest.Source, error) {
	if path == stdinName {
		if opts.Format == "" {
			return nil, NewExitError(ExitCommandError, "reading stdin requires --input-format")
		}
		src, err := ingest.NewSource(stdin, "<stdin>", opts.Format, ingest.CompressionNone, opts)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open stdin", err)
		}
		return src, nil
	}

	src, err := ingest.Open(path, opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open input", err)
	}
	return src, nil
}

// eachDocument calls fn with every document of src.
func eachDocument(src *ingest.Source, fn func(value.Value) error) error {
	for {
		v, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return WrapExitError(ExitFailure, "failed to read input", err)
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}
