package value

// Kind is the discriminant of a Value. The numeric order of the
// constants is the rank used when comparing values of different kinds.
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
	KindChar
	KindString
	KindUnit
	KindOption
	KindNewtype
	KindSeq
	KindMap
	KindBytes
)

var kindNames = [...]string{
	KindBool:    "bool",
	KindU8:      "u8",
	KindU16:     "u16",
	KindU32:     "u32",
	KindU64:     "u64",
	KindI8:      "i8",
	KindI16:     "i16",
	KindI32:     "i32",
	KindI64:     "i64",
	KindF32:     "f32",
	KindF64:     "f64",
	KindChar:    "char",
	KindString:  "string",
	KindUnit:    "unit",
	KindOption:  "option",
	KindNewtype: "newtype",
	KindSeq:     "seq",
	KindMap:     "map",
	KindBytes:   "bytes",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether values of this kind are carried by value.
func (k Kind) IsScalar() bool {
	switch k {
	case KindString, KindOption, KindNewtype, KindSeq, KindMap, KindBytes:
		return false
	default:
		return true
	}
}

// IsShared reports whether values of this kind are shared handles that
// take part in deduplication.
func (k Kind) IsShared() bool {
	switch k {
	case KindString, KindSeq, KindMap, KindBytes:
		return true
	default:
		return false
	}
}
