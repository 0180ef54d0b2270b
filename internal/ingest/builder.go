package ingest

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/arcvalue/internal/value"
)

// builder turns decoded scalars into values, applying the options that
// every format shares.
type builder struct {
	nfc bool
}

func (b builder) str(s string) *value.Str {
	if b.nfc && !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return value.NewStr(s)
}

// integer maps non-negative integers to U64 and negative ones to I64.
func (b builder) integer(n int64) value.Value {
	if n >= 0 {
		return value.U64(uint64(n))
	}
	return value.I64(n)
}

// number converts the text of a JSON number. Integers that fit 64 bits
// keep integer kinds; everything else becomes F64.
func (b builder) number(text string) (value.Value, error) {
	if !strings.ContainsAny(text, ".eE") {
		if strings.HasPrefix(text, "-") {
			if n, err := strconv.ParseInt(text, 10, 64); err == nil {
				return value.I64(n), nil
			}
		} else if n, err := strconv.ParseUint(text, 10, 64); err == nil {
			return value.U64(n), nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !isRangeError(err) {
		return nil, err
	}
	return value.F64(f), nil
}

func isRangeError(err error) bool {
	return errors.Is(err, strconv.ErrRange)
}

// object builds a map from entries whose keys are still raw. When NFC
// makes two distinct raw keys equal, the value of the key that sorts first
// in raw order wins, whatever order the decoder produced them in. Exact
// duplicates keep the later entry.
func (b builder) object(entries []value.Entry) *value.Map {
	if b.nfc {
		slices.SortStableFunc(entries, func(x, y value.Entry) int {
			return value.Compare(y.Key, x.Key)
		})
		for i := range entries {
			entries[i].Key = b.normalize(entries[i].Key)
		}
	}
	return value.MapFromEntries(entries...)
}

// normalize applies NFC to every string reachable from a raw map key.
func (b builder) normalize(v value.Value) value.Value {
	switch x := v.(type) {
	case *value.Str:
		return b.str(x.Get())
	case *value.Seq:
		elems := make([]value.Value, x.Len())
		for i, e := range x.All() {
			elems[i] = b.normalize(e)
		}
		return value.NewSeq(elems...)
	case *value.Map:
		entries := make([]value.Entry, 0, x.Len())
		for k, e := range x.All() {
			entries = append(entries, value.Entry{Key: k, Value: b.normalize(e)})
		}
		return b.object(entries)
	case value.Option:
		if inner, ok := x.Get(); ok {
			return value.Some(b.normalize(inner))
		}
		return x
	case value.Newtype:
		return value.Wrap(b.normalize(x.Inner()))
	default:
		return v
	}
}
