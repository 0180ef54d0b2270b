package value

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedType is returned by Encode for Go types that have no
// value representation (channels, functions, complex numbers).
var ErrUnsupportedType = errors.New("unsupported type")

// DecodeErrorCode categorizes decode failures.
type DecodeErrorCode string

const (
	// ErrCodeTypeMismatch indicates the value's kind cannot populate the target.
	ErrCodeTypeMismatch DecodeErrorCode = "TYPE_MISMATCH"

	// ErrCodeUnknownVariant indicates an enum-like variant name is not recognized.
	ErrCodeUnknownVariant DecodeErrorCode = "UNKNOWN_VARIANT"

	// ErrCodeMissingField indicates a required struct field is absent.
	ErrCodeMissingField DecodeErrorCode = "MISSING_FIELD"

	// ErrCodeCustom covers bridge-specific failures.
	ErrCodeCustom DecodeErrorCode = "CUSTOM"
)

// DecodeError is returned when a Value cannot be decoded into a Go target.
type DecodeError struct {
	// Code identifies the error category.
	Code DecodeErrorCode

	// Message is a human-readable description.
	Message string

	// Path locates the failing value inside the document, e.g. ".items[2]".
	Path string

	// Found describes the offending value (TYPE_MISMATCH only).
	Found *Unexpected

	// Expected names what the target wanted.
	Expected string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	var msg string
	switch e.Code {
	case ErrCodeTypeMismatch:
		msg = fmt.Sprintf("invalid type: %s, expected %s", e.Found, e.Expected)
	case ErrCodeUnknownVariant:
		msg = fmt.Sprintf("unknown variant `%s`, expected %s", e.Message, e.Expected)
	case ErrCodeMissingField:
		msg = fmt.Sprintf("missing field `%s`", e.Message)
	default:
		msg = e.Message
	}
	if e.Path != "" {
		return fmt.Sprintf("%s at %s", msg, e.Path)
	}
	return msg
}

// IsDecodeError reports whether err is a DecodeError with the given code.
func IsDecodeError(err error, code DecodeErrorCode) bool {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

func typeMismatch(v Value, expected, path string) *DecodeError {
	found := Describe(v)
	return &DecodeError{
		Code:     ErrCodeTypeMismatch,
		Path:     path,
		Found:    &found,
		Expected: expected,
	}
}

func unknownVariant(name string, expected []string, path string) *DecodeError {
	quoted := make([]string, len(expected))
	for i, n := range expected {
		quoted[i] = "`" + n + "`"
	}
	want := "no variants"
	if len(quoted) > 0 {
		want = "one of " + strings.Join(quoted, ", ")
	}
	return &DecodeError{
		Code:     ErrCodeUnknownVariant,
		Message:  name,
		Path:     path,
		Expected: want,
	}
}

func missingField(name, path string) *DecodeError {
	return &DecodeError{Code: ErrCodeMissingField, Message: name, Path: path}
}

func customError(path, format string, args ...any) *DecodeError {
	return &DecodeError{Code: ErrCodeCustom, Message: fmt.Sprintf(format, args...), Path: path}
}

// UnexpectedKind classifies an Unexpected.
type UnexpectedKind uint8

const (
	UnexpectedBool UnexpectedKind = iota
	UnexpectedUnsigned
	UnexpectedSigned
	UnexpectedFloat
	UnexpectedChar
	UnexpectedStr
	UnexpectedBytes
	UnexpectedUnit
	UnexpectedOption
	UnexpectedNewtype
	UnexpectedSeq
	UnexpectedMap
)

// Unexpected is a structured description of a value that did not fit
// a decode target. Only the field matching Kind is meaningful.
type Unexpected struct {
	Kind     UnexpectedKind
	Bool     bool
	Unsigned uint64
	Signed   int64
	Float    float64
	Char     rune
	Str      string
	Bytes    []byte
}

// Describe classifies v for error reporting. Integer widths collapse to
// their signed or unsigned magnitude.
func Describe(v Value) Unexpected {
	switch x := v.(type) {
	case Bool:
		return Unexpected{Kind: UnexpectedBool, Bool: bool(x)}
	case U8:
		return Unexpected{Kind: UnexpectedUnsigned, Unsigned: uint64(x)}
	case U16:
		return Unexpected{Kind: UnexpectedUnsigned, Unsigned: uint64(x)}
	case U32:
		return Unexpected{Kind: UnexpectedUnsigned, Unsigned: uint64(x)}
	case U64:
		return Unexpected{Kind: UnexpectedUnsigned, Unsigned: uint64(x)}
	case I8:
		return Unexpected{Kind: UnexpectedSigned, Signed: int64(x)}
	case I16:
		return Unexpected{Kind: UnexpectedSigned, Signed: int64(x)}
	case I32:
		return Unexpected{Kind: UnexpectedSigned, Signed: int64(x)}
	case I64:
		return Unexpected{Kind: UnexpectedSigned, Signed: int64(x)}
	case F32:
		return Unexpected{Kind: UnexpectedFloat, Float: float64(x)}
	case F64:
		return Unexpected{Kind: UnexpectedFloat, Float: float64(x)}
	case Char:
		return Unexpected{Kind: UnexpectedChar, Char: rune(x)}
	case *Str:
		return Unexpected{Kind: UnexpectedStr, Str: x.s}
	case *Bytes:
		return Unexpected{Kind: UnexpectedBytes, Bytes: x.b}
	case Unit:
		return Unexpected{Kind: UnexpectedUnit}
	case Option:
		return Unexpected{Kind: UnexpectedOption}
	case Newtype:
		return Unexpected{Kind: UnexpectedNewtype}
	case *Seq:
		return Unexpected{Kind: UnexpectedSeq}
	default:
		return Unexpected{Kind: UnexpectedMap}
	}
}

// String renders the description the way it appears in
// "invalid type: X, expected Y" messages.
func (u Unexpected) String() string {
	switch u.Kind {
	case UnexpectedBool:
		return "boolean `" + strconv.FormatBool(u.Bool) + "`"
	case UnexpectedUnsigned:
		return "integer `" + strconv.FormatUint(u.Unsigned, 10) + "`"
	case UnexpectedSigned:
		return "integer `" + strconv.FormatInt(u.Signed, 10) + "`"
	case UnexpectedFloat:
		return "floating point `" + formatFloat(u.Float, 64) + "`"
	case UnexpectedChar:
		return "character `" + string(u.Char) + "`"
	case UnexpectedStr:
		return "string " + strconv.Quote(u.Str)
	case UnexpectedBytes:
		return "byte array"
	case UnexpectedUnit:
		return "unit value"
	case UnexpectedOption:
		return "Option value"
	case UnexpectedNewtype:
		return "newtype struct"
	case UnexpectedSeq:
		return "sequence"
	default:
		return "map"
	}
}
