package value

import (
	"math"
	"strconv"
	"strings"
)

// Display renderings are for diagnostics only. They are not
// round-trip safe: the string "1" and the integer 1 render the same.

func (Unit) String() string   { return "()" }
func (x Bool) String() string { return strconv.FormatBool(bool(x)) }
func (x U8) String() string   { return strconv.FormatUint(uint64(x), 10) }
func (x U16) String() string  { return strconv.FormatUint(uint64(x), 10) }
func (x U32) String() string  { return strconv.FormatUint(uint64(x), 10) }
func (x U64) String() string  { return strconv.FormatUint(uint64(x), 10) }
func (x I8) String() string   { return strconv.FormatInt(int64(x), 10) }
func (x I16) String() string  { return strconv.FormatInt(int64(x), 10) }
func (x I32) String() string  { return strconv.FormatInt(int64(x), 10) }
func (x I64) String() string  { return strconv.FormatInt(int64(x), 10) }
func (x F32) String() string  { return formatFloat(float64(x), 32) }
func (x F64) String() string  { return formatFloat(float64(x), 64) }
func (x Char) String() string { return string(rune(x)) }
func (x *Str) String() string { return x.s }

func (x *Bytes) String() string {
	var sb strings.Builder
	writeBytes(&sb, x.b)
	return sb.String()
}

func (x *Seq) String() string {
	var sb strings.Builder
	writeDisplay(&sb, x)
	return sb.String()
}

func (x *Map) String() string {
	var sb strings.Builder
	writeDisplay(&sb, x)
	return sb.String()
}

func (o Option) String() string {
	var sb strings.Builder
	writeDisplay(&sb, o)
	return sb.String()
}

func (n Newtype) String() string { return n.inner().String() }

func writeDisplay(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case *Bytes:
		writeBytes(sb, x.b)
	case *Seq:
		sb.WriteByte('[')
		for i, e := range x.elems {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeDisplay(sb, e)
		}
		sb.WriteByte(']')
	case *Map:
		sb.WriteByte('{')
		for i, val := range x.values {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeDisplay(sb, x.keys.elems[i])
			sb.WriteByte(':')
			writeDisplay(sb, val)
		}
		sb.WriteByte('}')
	case Option:
		if x.IsNone() {
			sb.WriteString("None")
			return
		}
		sb.WriteString("Some(")
		writeDisplay(sb, x.v)
		sb.WriteByte(')')
	case Newtype:
		writeDisplay(sb, x.inner())
	default:
		sb.WriteString(v.String())
	}
}

// writeBytes renders a blob as a decimal byte list, e.g. [104, 105].
func writeBytes(sb *strings.Builder, b []byte) {
	sb.WriteByte('[')
	for i, c := range b {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(int(c)))
	}
	sb.WriteByte(']')
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
