package vm

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unsafe"

	"ecmacore/pkg/magic"
)

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeEmpty // internal sentinel, never observable by script

	TypeBoolean
	TypeNumber

	TypeString
	TypeObject
)

// String returns a human-readable string representation of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeEmpty:
		return "empty"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// StringObject is a shared, refcounted string.
type StringObject struct {
	refs  int
	value string
}

// Value is a tagged union. Values holding strings or objects carry one
// reference: whoever receives a Value from a function owns that reference
// and must call Free exactly once.
type Value struct {
	typ     ValueType
	payload uint64
	obj     unsafe.Pointer
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	Empty     = Value{typ: TypeEmpty}
	True      = Value{typ: TypeBoolean, payload: 1}
	False     = Value{typ: TypeBoolean, payload: 0}
	NaN       = Value{typ: TypeNumber, payload: math.Float64bits(math.NaN())}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeNumber, payload: math.Float64bits(value)}
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

// NewString returns a string Value with a reference count of one.
func NewString(value string) Value {
	return Value{typ: TypeString, obj: unsafe.Pointer(&StringObject{refs: 1, value: value})}
}

// ObjectValue wraps o without taking a new reference: the caller's
// reference moves into the returned Value.
func ObjectValue(o *Object) Value {
	if o == nil {
		panic("ObjectValue called with nil object")
	}
	return Value{typ: TypeObject, obj: unsafe.Pointer(o)}
}

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsEmpty() bool     { return v.typ == TypeEmpty }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsObject() bool    { return v.typ == TypeObject }

// IsReference reports whether v points into the refcounted heap.
func (v Value) IsReference() bool {
	return v.typ == TypeString || v.typ == TypeObject
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.payload == 1
}

func (v Value) AsNumber() float64 {
	if v.typ != TypeNumber {
		panic("value is not a number")
	}
	return math.Float64frombits(v.payload)
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return (*StringObject)(v.obj).value
}

// AsObject returns the object without taking a reference.
func (v Value) AsObject() *Object {
	if v.typ != TypeObject {
		panic("value is not an object")
	}
	return (*Object)(v.obj)
}

// RefCount returns the reference count of a string or object value, and 0
// for everything else.
func (v Value) RefCount() int {
	switch v.typ {
	case TypeString:
		return (*StringObject)(v.obj).refs
	case TypeObject:
		return (*Object)(v.obj).refs
	}
	return 0
}

// Copy takes a new reference to v and returns it.
func (v Value) Copy() Value {
	switch v.typ {
	case TypeString:
		s := (*StringObject)(v.obj)
		if s.refs <= 0 {
			panic("copy of released string")
		}
		s.refs++
	case TypeObject:
		(*Object)(v.obj).Ref()
	}
	return v
}

// Free releases the reference held by v.
func (v Value) Free() {
	switch v.typ {
	case TypeString:
		s := (*StringObject)(v.obj)
		if s.refs <= 0 {
			panic("double free of string " + strconv.Quote(s.value))
		}
		s.refs--
	case TypeObject:
		(*Object)(v.obj).Deref()
	}
}

// SameValue implements the ECMA-262 SameValue algorithm.
func SameValue(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case TypeUndefined, TypeNull, TypeEmpty:
		return true
	case TypeBoolean:
		return a.payload == b.payload
	case TypeNumber:
		x, y := a.AsNumber(), b.AsNumber()
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		if x == 0 && y == 0 {
			return math.Signbit(x) == math.Signbit(y)
		}
		return x == y
	case TypeString:
		return a.AsString() == b.AsString()
	case TypeObject:
		return a.obj == b.obj
	}
	return false
}

func (v Value) ToBoolean() bool {
	switch v.typ {
	case TypeBoolean:
		return v.AsBoolean()
	case TypeNumber:
		f := v.AsNumber()
		return f != 0 && !math.IsNaN(f)
	case TypeString:
		return v.AsString() != ""
	case TypeObject:
		return true
	default:
		return false
	}
}

// ToNumber converts primitives per ECMA-262 9.3. Objects convert to NaN:
// ToPrimitive needs the interpreter and is not available at this layer.
func (v Value) ToNumber() float64 {
	switch v.typ {
	case TypeNumber:
		return v.AsNumber()
	case TypeBoolean:
		if v.AsBoolean() {
			return 1
		}
		return 0
	case TypeNull:
		return 0
	case TypeString:
		return stringToNumber(v.AsString())
	default:
		return math.NaN()
	}
}

func stringToNumber(s string) float64 {
	str := strings.TrimSpace(s)
	if str == "" {
		return 0
	}
	switch str {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(str) > 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X') {
		var f float64
		for i := 2; i < len(str); i++ {
			var d byte
			switch c := str[i]; {
			case c >= '0' && c <= '9':
				d = c - '0'
			case c >= 'a' && c <= 'f':
				d = c - 'a' + 10
			case c >= 'A' && c <= 'F':
				d = c - 'A' + 10
			default:
				return math.NaN()
			}
			f = f*16 + float64(d)
		}
		return f
	}
	// ParseFloat accepts spellings ("inf", "0x1p3", "1_0") that are not
	// StringNumericLiterals.
	for i := 0; i < len(str); i++ {
		c := str[i]
		if (c < '0' || c > '9') && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	// On overflow ParseFloat returns ±Inf along with ErrRange.
	return f
}

// ToString converts v to its ECMA-262 string form. Objects render as
// "[object Class]".
func (v Value) ToString() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case TypeNumber:
		return NumberToString(v.AsNumber())
	case TypeString:
		return v.AsString()
	case TypeObject:
		return "[object " + v.AsObject().Class().String() + "]"
	}
	return fmt.Sprintf("<unknown type %d>", v.typ)
}

// NumberToString implements Number::toString for radix 10.
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case f == 0:
		return "0"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f < 0:
		return "-" + NumberToString(-f)
	}

	// Shortest round-tripping digits and decimal exponent.
	mantissa, expPart, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	exp, _ := strconv.Atoi(expPart)
	digits := strings.Replace(mantissa, ".", "", 1)
	k := len(digits)
	n := exp + 1

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	sign := "+"
	e := n - 1
	if e < 0 {
		sign = "-"
		e = -e
	}
	if k == 1 {
		return digits + "e" + sign + strconv.Itoa(e)
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(e)
}

// Inspect returns a developer-friendly representation of Value, similar to a REPL.
func (v Value) Inspect() string {
	switch v.typ {
	case TypeString:
		return strconv.Quote(v.AsString())
	case TypeEmpty:
		return "<empty>"
	case TypeObject:
		o := v.AsObject()
		if o.IsCallable() {
			if id, ok := o.Internal(InternalRoutineID); ok {
				return "[Function: " + magic.ID(id).String() + "]"
			}
			return "[Function]"
		}
		return "[object " + o.Class().String() + "]"
	default:
		return v.ToString()
	}
}
