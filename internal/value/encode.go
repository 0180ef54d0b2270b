package value

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Marshaler is implemented by types that produce their own Value.
type Marshaler interface {
	MarshalValue() (Value, error)
}

// Unmarshaler is implemented by types that populate themselves from a Value.
type Unmarshaler interface {
	UnmarshalValue(Value) error
}

var (
	valueType       = reflect.TypeFor[Value]()
	marshalerType   = reflect.TypeFor[Marshaler]()
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
)

// Encode converts a Go value into a Value, preserving exact scalar
// widths and sequence order.
//
// Mapping:
//   - bool, intN, uintN, floatN, string map to the matching kind
//     (int and uint are 64-bit)
//   - []byte and [N]byte become Bytes, other slices and arrays Seq
//   - Go maps and structs become maps built with MapFromEntries, so
//     their keys are in canonical order
//   - pointers become Option (nil is None)
//   - Values pass through unchanged and Marshalers encode themselves
func Encode(x any) (Value, error) {
	if x == nil {
		return None(), nil
	}
	return encode(reflect.ValueOf(x))
}

// MustEncode is like Encode but panics on error.
// Use only in tests or when the input type is known to be supported.
func MustEncode(x any) Value {
	v, err := Encode(x)
	if err != nil {
		panic(err)
	}
	return v
}

func encode(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return None(), nil
	}
	t := rv.Type()

	if t.Implements(valueType) {
		if isNilable(rv) && rv.IsNil() {
			return None(), nil
		}
		return rv.Interface().(Value), nil
	}
	if t.Implements(marshalerType) {
		if isNilable(rv) && rv.IsNil() {
			return None(), nil
		}
		return rv.Interface().(Marshaler).MarshalValue()
	}
	if rv.CanAddr() && reflect.PointerTo(t).Implements(marshalerType) {
		return rv.Addr().Interface().(Marshaler).MarshalValue()
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int64:
		return I64(rv.Int()), nil
	case reflect.Int8:
		return I8(rv.Int()), nil
	case reflect.Int16:
		return I16(rv.Int()), nil
	case reflect.Int32:
		return I32(rv.Int()), nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return U64(rv.Uint()), nil
	case reflect.Uint8:
		return U8(rv.Uint()), nil
	case reflect.Uint16:
		return U16(rv.Uint()), nil
	case reflect.Uint32:
		return U32(rv.Uint()), nil
	case reflect.Float32:
		return F32(rv.Float()), nil
	case reflect.Float64:
		return F64(rv.Float()), nil
	case reflect.String:
		return NewStr(rv.String()), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return NewBytes(copyBytes(rv)), nil
		}
		return encodeList(rv)
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return NewBytes(copyBytes(rv)), nil
		}
		return encodeList(rv)
	case reflect.Map:
		return encodeMap(rv)
	case reflect.Struct:
		return encodeStruct(rv)
	case reflect.Pointer:
		if rv.IsNil() {
			return None(), nil
		}
		inner, err := encode(rv.Elem())
		if err != nil {
			return nil, err
		}
		return Some(inner), nil
	case reflect.Interface:
		if rv.IsNil() {
			return None(), nil
		}
		return encode(rv.Elem())
	default:
		return nil, fmt.Errorf("value: cannot encode %s: %w", t, ErrUnsupportedType)
	}
}

func isNilable(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	default:
		return false
	}
}

func copyBytes(rv reflect.Value) []byte {
	b := make([]byte, rv.Len())
	for i := range b {
		b[i] = byte(rv.Index(i).Uint())
	}
	return b
}

func encodeList(rv reflect.Value) (Value, error) {
	elems := make([]Value, rv.Len())
	for i := range elems {
		e, err := encode(rv.Index(i))
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		elems[i] = e
	}
	return NewSeq(elems...), nil
}

func encodeMap(rv reflect.Value) (Value, error) {
	entries := make([]Entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := encode(iter.Key())
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		v, err := encode(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("[%v]: %w", iter.Key(), err)
		}
		entries = append(entries, Entry{Key: k, Value: v})
	}
	return MapFromEntries(entries...), nil
}

func encodeStruct(rv reflect.Value) (Value, error) {
	fields := structFields(rv.Type())
	entries := make([]Entry, 0, len(fields))
	for _, f := range fields {
		fv := rv.Field(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		v, err := encode(fv)
		if err != nil {
			return nil, fmt.Errorf(".%s: %w", f.name, err)
		}
		entries = append(entries, Entry{Key: NewStr(f.name), Value: v})
	}
	return MapFromEntries(entries...), nil
}

// field describes one encodable struct field.
type field struct {
	name      string
	index     int
	omitEmpty bool
	optional  bool // may be absent when decoding
}

var fieldCache sync.Map // reflect.Type -> []field

// structFields returns the exported fields of t honoring `value` tags:
// `value:"name"` renames, `value:"-"` skips, `value:",omitempty"` skips
// zero values when encoding and makes the field optional when decoding.
func structFields(t reflect.Type) []field {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]field)
	}

	fields := make([]field, 0, t.NumField())
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("value")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		omit := opts == "omitempty"
		fields = append(fields, field{
			name:      name,
			index:     i,
			omitEmpty: omit,
			optional:  omit || sf.Type.Kind() == reflect.Pointer,
		})
	}

	actual, _ := fieldCache.LoadOrStore(t, fields)
	return actual.([]field)
}
