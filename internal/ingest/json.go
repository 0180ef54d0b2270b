package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/arcvalue/internal/value"
)

type jsonDecoder struct {
	dec *json.Decoder
	b   builder
}

func newJSONDecoder(r io.Reader, b builder) *jsonDecoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonDecoder{dec: dec, b: b}
}

func (d *jsonDecoder) next() (value.Value, error) {
	var raw any
	if err := d.dec.Decode(&raw); err != nil {
		return nil, err
	}
	return d.convert(raw)
}

func (d *jsonDecoder) convert(raw any) (value.Value, error) {
	switch x := raw.(type) {
	case nil:
		return value.Unit{}, nil
	case bool:
		return value.Bool(x), nil
	case json.Number:
		return d.b.number(x.String())
	case string:
		return d.b.str(x), nil
	case []any:
		elems := make([]value.Value, len(x))
		for i, e := range x {
			v, err := d.convert(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return value.NewSeq(elems...), nil
	case map[string]any:
		entries := make([]value.Entry, 0, len(x))
		for k, e := range x {
			v, err := d.convert(e)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			entries = append(entries, value.Entry{Key: value.NewStr(k), Value: v})
		}
		return d.b.object(entries), nil
	default:
		return nil, fmt.Errorf("unexpected JSON value %T", raw)
	}
}
