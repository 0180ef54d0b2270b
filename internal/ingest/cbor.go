package ingest

import (
	"fmt"
	"io"
	"math/big"
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/roach88/arcvalue/internal/value"
)

// cborDecMode decodes into any with integers kept at their encoded sign
// and maps as map[any]any, so non-string keys survive. Floats of every
// width arrive as float64 and become F64.
var cborDecMode cbor.DecMode

func init() {
	var err error
	cborDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[any]any(nil)),
		IntDec:         cbor.IntDecConvertNone,
		DupMapKey:      cbor.DupMapKeyQuiet,
	}.DecMode()
	if err != nil {
		panic("ingest: CBOR decoder initialization failed: " + err.Error())
	}
}

type cborDecoder struct {
	dec *cbor.Decoder
	b   builder
}

// rawCBORKeys converts map keys without normalization; builder.object
// normalizes them once the entries are ordered.
var rawCBORKeys = &cborDecoder{}

func newCBORDecoder(r io.Reader, b builder) *cborDecoder {
	return &cborDecoder{dec: cborDecMode.NewDecoder(r), b: b}
}

func (d *cborDecoder) next() (value.Value, error) {
	var raw any
	if err := d.dec.Decode(&raw); err != nil {
		return nil, err
	}
	return d.convert(raw)
}

func (d *cborDecoder) convert(raw any) (value.Value, error) {
	switch x := raw.(type) {
	case nil:
		return value.Unit{}, nil
	case bool:
		return value.Bool(x), nil
	case uint64:
		return value.U64(x), nil
	case int64:
		return d.b.integer(x), nil
	case float64:
		return value.F64(x), nil
	case string:
		return d.b.str(x), nil
	case []byte:
		return value.NewBytes(x), nil
	case cbor.ByteString:
		return value.NewBytes([]byte(x)), nil
	case big.Int:
		return d.bigInt(&x), nil
	case *big.Int:
		return d.bigInt(x), nil
	case time.Time:
		return d.b.str(x.Format(time.RFC3339Nano)), nil
	case cbor.SimpleValue:
		return value.U8(x), nil
	case cbor.Tag:
		inner, err := d.convert(x.Content)
		if err != nil {
			return nil, fmt.Errorf("tag %d: %w", x.Number, err)
		}
		return value.Wrap(inner), nil
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
	case map[any]any:
		entries := make([]value.Entry, 0, len(x))
		for k, e := range x {
			kv, err := rawCBORKeys.convert(k)
			if err != nil {
				return nil, fmt.Errorf("map key: %w", err)
			}
			v, err := d.convert(e)
			if err != nil {
				return nil, fmt.Errorf("[%s]: %w", kv, err)
			}
			entries = append(entries, value.Entry{Key: kv, Value: v})
		}
		return d.b.object(entries), nil
	default:
		return nil, fmt.Errorf("unexpected CBOR value %T", raw)
	}
}

// bigInt narrows bignums that fit 64 bits and renders the rest as text.
func (d *cborDecoder) bigInt(x *big.Int) value.Value {
	switch {
	case x.IsUint64():
		return value.U64(x.Uint64())
	case x.IsInt64():
		return value.I64(x.Int64())
	default:
		return d.b.str(x.String())
	}
}
