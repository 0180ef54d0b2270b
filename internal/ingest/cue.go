package ingest

import (
	"fmt"
	"io"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/arcvalue/internal/value"
)

// cueDecoder evaluates the whole input as one CUE file and yields it as a
// single document. Definitions, hidden and optional fields are skipped.
type cueDecoder struct {
	r    io.Reader
	name string
	b    builder
	done bool
}

func newCUEDecoder(r io.Reader, name string, b builder) *cueDecoder {
	return &cueDecoder{r: r, name: name, b: b}
}

func (d *cueDecoder) next() (value.Value, error) {
	if d.done {
		return nil, io.EOF
	}
	d.done = true

	src, err := io.ReadAll(d.r)
	if err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(d.name))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}
	return d.convert(v)
}

func (d *cueDecoder) convert(v cue.Value) (value.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return value.Unit{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.Bool(b), nil
	case cue.IntKind:
		if i, err := v.Int64(); err == nil {
			return d.b.integer(i), nil
		}
		u, err := v.Uint64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.U64(u), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.F64(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return d.b.str(s), nil
	case cue.BytesKind:
		b, err := v.Bytes()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.NewBytes(b), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var elems []value.Value
		for iter.Next() {
			e, err := d.convert(iter.Value())
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return value.NewSeq(elems...), nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var entries []value.Entry
		for iter.Next() {
			e, err := d.convert(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", iter.Label(), err)
			}
			entries = append(entries, value.Entry{Key: value.NewStr(iter.Label()), Value: e})
		}
		return d.b.object(entries), nil
	default:
		return nil, fmt.Errorf("%s: non-concrete value of kind %v", v.Path(), v.IncompleteKind())
	}
}

// CUEError is a CUE evaluation error with its source position.
type CUEError struct {
	Message string
	Pos     token.Pos
}

func (e *CUEError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// formatCUEError keeps the first error of a CUE error list together with
// its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CUEError{Message: first.Error(), Pos: positions[0]}
	}
	return &CUEError{Message: first.Error()}
}
