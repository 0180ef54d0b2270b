package value

import (
	"fmt"
	"math"
	"reflect"
	"slices"
)

// Decode populates target, which must be a non-nil pointer, from v.
// It is the inverse of Encode. A value whose kind cannot populate the
// target yields a *DecodeError describing what was found.
//
// Integers decode into any Go integer type they fit without overflow,
// and every numeric kind decodes into float targets. Struct fields are
// matched by their `value:"name"` tag or their Go name. Unit and None set
// pointers to nil, and a Newtype decodes as its payload unless the target
// is itself a Newtype. A target of type any receives the native form
// (string, []any, map[string]any and so on).
//
// For example:
//
//	var p struct {
//		X int `value:"x"`
//	}
//	err := value.Decode(v, &p)
//
// Types implementing Unmarshaler take over their own decoding. Decode
// stops at the first mismatch and reports its path in the error.
func Decode(v Value, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return customError("", "decode target must be a non-nil pointer, got %T", target)
	}
	return decode(v, rv.Elem(), "")
}

// DecodeAs decodes v into a new T and returns it. On error the partially
// populated T is returned along with the error.
//
//	names, err := value.DecodeAs[[]string](v)
func DecodeAs[T any](v Value) (T, error) {
	var out T
	err := Decode(v, &out)
	return out, err
}

// DecodeVariant interprets v as an externally tagged enum: either a
// string naming a unit variant, or a single-entry map from the variant
// name to its payload. Unit variants return Unit as payload. When names
// is non-empty, any other name is an UNKNOWN_VARIANT error.
func DecodeVariant(v Value, names ...string) (string, Value, error) {
	var (
		name    string
		payload Value
	)
	switch x := v.(type) {
	case *Str:
		name, payload = x.s, Unit{}
	case *Map:
		if x.Len() != 1 {
			return "", nil, customError("", "invalid length %d, expected map with a single key", x.Len())
		}
		key, ok := x.Key(0).(*Str)
		if !ok {
			return "", nil, typeMismatch(x.Key(0), "variant identifier", "")
		}
		name, payload = key.s, x.ValueAt(0)
	case Newtype:
		return DecodeVariant(x.inner(), names...)
	default:
		return "", nil, typeMismatch(v, "enum", "")
	}

	if len(names) > 0 && !slices.Contains(names, name) {
		return "", nil, unknownVariant(name, names, "")
	}
	return name, payload, nil
}

func decode(v Value, rv reflect.Value, path string) error {
	t := rv.Type()

	if t == valueType {
		rv.Set(reflect.ValueOf(v))
		return nil
	}
	if t.Implements(valueType) {
		if reflect.TypeOf(v).AssignableTo(t) {
			rv.Set(reflect.ValueOf(v))
			return nil
		}
		return typeMismatch(v, t.String(), path)
	}
	if rv.CanAddr() && reflect.PointerTo(t).Implements(unmarshalerType) {
		return rv.Addr().Interface().(Unmarshaler).UnmarshalValue(v)
	}

	// Newtype wrappers are transparent to Go targets.
	if nt, ok := v.(Newtype); ok {
		return decode(nt.inner(), rv, path)
	}

	switch t.Kind() {
	case reflect.Pointer:
		return decodePointer(v, rv, path)
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return customError(path, "cannot decode into non-empty interface %s", t)
		}
		native, err := toNative(v, path)
		if err != nil {
			return err
		}
		if native == nil {
			rv.SetZero()
			return nil
		}
		rv.Set(reflect.ValueOf(native))
		return nil
	case reflect.Bool:
		b, ok := v.(Bool)
		if !ok {
			return typeMismatch(v, "a boolean", path)
		}
		rv.SetBool(bool(b))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decodeInt(v, rv, path)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return decodeUint(v, rv, path)
	case reflect.Float32, reflect.Float64:
		return decodeFloat(v, rv, path)
	case reflect.String:
		switch x := v.(type) {
		case *Str:
			rv.SetString(x.s)
		case Char:
			rv.SetString(string(rune(x)))
		default:
			return typeMismatch(v, "a string", path)
		}
		return nil
	case reflect.Slice:
		return decodeSlice(v, rv, path)
	case reflect.Array:
		return decodeArray(v, rv, path)
	case reflect.Map:
		return decodeMap(v, rv, path)
	case reflect.Struct:
		return decodeStruct(v, rv, path)
	default:
		return customError(path, "unsupported decode target %s", t)
	}
}

func decodePointer(v Value, rv reflect.Value, path string) error {
	switch x := v.(type) {
	case Option:
		if x.IsNone() {
			rv.SetZero()
			return nil
		}
		v = x.v
	case Unit:
		rv.SetZero()
		return nil
	}
	p := reflect.New(rv.Type().Elem())
	if err := decode(v, p.Elem(), path); err != nil {
		return err
	}
	rv.Set(p)
	return nil
}

func decodeInt(v Value, rv reflect.Value, path string) error {
	var n int64
	switch x := v.(type) {
	case I8:
		n = int64(x)
	case I16:
		n = int64(x)
	case I32:
		n = int64(x)
	case I64:
		n = int64(x)
	case U8:
		n = int64(x)
	case U16:
		n = int64(x)
	case U32:
		n = int64(x)
	case U64:
		if x > math.MaxInt64 {
			return customError(path, "invalid value: integer `%d`, expected %s", uint64(x), expectedName(rv.Type()))
		}
		n = int64(x)
	case Char:
		if rv.Kind() != reflect.Int32 {
			return typeMismatch(v, expectedName(rv.Type()), path)
		}
		n = int64(x)
	default:
		return typeMismatch(v, expectedName(rv.Type()), path)
	}
	if rv.OverflowInt(n) {
		return customError(path, "invalid value: integer `%d`, expected %s", n, expectedName(rv.Type()))
	}
	rv.SetInt(n)
	return nil
}

func decodeUint(v Value, rv reflect.Value, path string) error {
	var n uint64
	switch x := v.(type) {
	case U8:
		n = uint64(x)
	case U16:
		n = uint64(x)
	case U32:
		n = uint64(x)
	case U64:
		n = uint64(x)
	case I8, I16, I32, I64:
		s := Describe(v).Signed
		if s < 0 {
			return customError(path, "invalid value: integer `%d`, expected %s", s, expectedName(rv.Type()))
		}
		n = uint64(s)
	default:
		return typeMismatch(v, expectedName(rv.Type()), path)
	}
	if rv.OverflowUint(n) {
		return customError(path, "invalid value: integer `%d`, expected %s", n, expectedName(rv.Type()))
	}
	rv.SetUint(n)
	return nil
}

func decodeFloat(v Value, rv reflect.Value, path string) error {
	switch x := v.(type) {
	case F32:
		rv.SetFloat(float64(x))
	case F64:
		rv.SetFloat(float64(x))
	case U8, U16, U32, U64:
		rv.SetFloat(float64(Describe(v).Unsigned))
	case I8, I16, I32, I64:
		rv.SetFloat(float64(Describe(v).Signed))
	default:
		return typeMismatch(v, expectedName(rv.Type()), path)
	}
	return nil
}

func decodeSlice(v Value, rv reflect.Value, path string) error {
	t := rv.Type()
	if t.Elem().Kind() == reflect.Uint8 {
		switch x := v.(type) {
		case *Bytes:
			rv.SetBytes(slices.Clone(x.b))
			return nil
		case *Str:
			rv.SetBytes([]byte(x.s))
			return nil
		}
	}

	seq, ok := v.(*Seq)
	if !ok {
		return typeMismatch(v, "a sequence", path)
	}
	out := reflect.MakeSlice(t, seq.Len(), seq.Len())
	for i, e := range seq.elems {
		if err := decode(e, out.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func decodeArray(v Value, rv reflect.Value, path string) error {
	t := rv.Type()
	if b, ok := v.(*Bytes); ok && t.Elem().Kind() == reflect.Uint8 {
		if len(b.b) != t.Len() {
			return customError(path, "invalid length %d, expected an array of length %d", len(b.b), t.Len())
		}
		for i, c := range b.b {
			rv.Index(i).SetUint(uint64(c))
		}
		return nil
	}

	seq, ok := v.(*Seq)
	if !ok {
		return typeMismatch(v, fmt.Sprintf("an array of length %d", t.Len()), path)
	}
	if seq.Len() != t.Len() {
		return customError(path, "invalid length %d, expected an array of length %d", seq.Len(), t.Len())
	}
	for i, e := range seq.elems {
		if err := decode(e, rv.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func decodeMap(v Value, rv reflect.Value, path string) error {
	m, ok := v.(*Map)
	if !ok {
		return typeMismatch(v, "a map", path)
	}
	t := rv.Type()
	out := reflect.MakeMapWithSize(t, m.Len())
	for i, val := range m.values {
		key := m.keys.elems[i]
		kv := reflect.New(t.Key()).Elem()
		if err := decode(key, kv, path); err != nil {
			return err
		}
		vv := reflect.New(t.Elem()).Elem()
		if err := decode(val, vv, fmt.Sprintf("%s[%s]", path, key)); err != nil {
			return err
		}
		out.SetMapIndex(kv, vv)
	}
	rv.Set(out)
	return nil
}

func decodeStruct(v Value, rv reflect.Value, path string) error {
	t := rv.Type()
	fields := structFields(t)

	switch x := v.(type) {
	case *Map:
		seen := make([]bool, len(fields))
		for i, val := range x.values {
			name, ok := fieldName(x.keys.elems[i])
			if !ok {
				return typeMismatch(x.keys.elems[i], "a field identifier", path)
			}
			idx := slices.IndexFunc(fields, func(f field) bool { return f.name == name })
			if idx < 0 {
				continue
			}
			if seen[idx] {
				return customError(path, "duplicate field `%s`", name)
			}
			seen[idx] = true
			if err := decode(val, rv.Field(fields[idx].index), path+"."+name); err != nil {
				return err
			}
		}
		for i, f := range fields {
			if !seen[i] && !f.optional {
				return missingField(f.name, path)
			}
		}
		return nil
	case *Seq:
		if x.Len() != len(fields) {
			return customError(path, "invalid length %d, expected struct %s with %d elements", x.Len(), t.Name(), len(fields))
		}
		for i, f := range fields {
			if err := decode(x.elems[i], rv.Field(f.index), path+"."+f.name); err != nil {
				return err
			}
		}
		return nil
	default:
		return typeMismatch(v, "struct "+t.Name(), path)
	}
}

func fieldName(k Value) (string, bool) {
	switch x := k.(type) {
	case *Str:
		return x.s, true
	case Char:
		return string(rune(x)), true
	case Newtype:
		return fieldName(x.inner())
	default:
		return "", false
	}
}

// toNative converts v into plain Go values for `any` targets.
func toNative(v Value, path string) (any, error) {
	switch x := v.(type) {
	case Unit:
		return nil, nil
	case Bool:
		return bool(x), nil
	case U8:
		return uint8(x), nil
	case U16:
		return uint16(x), nil
	case U32:
		return uint32(x), nil
	case U64:
		return uint64(x), nil
	case I8:
		return int8(x), nil
	case I16:
		return int16(x), nil
	case I32:
		return int32(x), nil
	case I64:
		return int64(x), nil
	case F32:
		return float32(x), nil
	case F64:
		return float64(x), nil
	case Char:
		return string(rune(x)), nil
	case *Str:
		return x.s, nil
	case *Bytes:
		return slices.Clone(x.b), nil
	case Option:
		if x.IsNone() {
			return nil, nil
		}
		return toNative(x.v, path)
	case Newtype:
		return toNative(x.inner(), path)
	case *Seq:
		out := make([]any, x.Len())
		for i, e := range x.elems {
			n, err := toNative(e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case *Map:
		return mapToNative(x, path)
	default:
		return nil, customError(path, "unknown value type %T", v)
	}
}

func mapToNative(m *Map, path string) (any, error) {
	keys := make([]any, m.Len())
	allStrings := true
	for i, k := range m.keys.elems {
		n, err := toNative(k, path)
		if err != nil {
			return nil, err
		}
		if n != nil && !reflect.TypeOf(n).Comparable() {
			return nil, customError(path, "map key %s cannot be used as a Go map key", k)
		}
		if _, ok := n.(string); !ok {
			allStrings = false
		}
		keys[i] = n
	}

	if allStrings {
		out := make(map[string]any, m.Len())
		for i, val := range m.values {
			n, err := toNative(val, fmt.Sprintf("%s[%s]", path, m.keys.elems[i]))
			if err != nil {
				return nil, err
			}
			out[keys[i].(string)] = n
		}
		return out, nil
	}

	out := make(map[any]any, m.Len())
	for i, val := range m.values {
		n, err := toNative(val, fmt.Sprintf("%s[%s]", path, m.keys.elems[i]))
		if err != nil {
			return nil, err
		}
		out[keys[i]] = n
	}
	return out, nil
}

func expectedName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int64:
		return "i64"
	case reflect.Int8:
		return "i8"
	case reflect.Int16:
		return "i16"
	case reflect.Int32:
		return "i32"
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return "u64"
	case reflect.Uint8:
		return "u8"
	case reflect.Uint16:
		return "u16"
	case reflect.Uint32:
		return "u32"
	case reflect.Float32:
		return "f32"
	case reflect.Float64:
		return "f64"
	default:
		return t.String()
	}
}
