// Package magic holds the engine-wide table of well-known property names.
//
// Every name in the table has a stable ID. Built-in objects describe their
// own properties as ascending lists of IDs, so the numeric order of the
// constants below is load-bearing: do not reorder entries without checking
// the built-in tables (builtins.SelfCheck catches it at startup).
package magic

// ID identifies one well-known string.
type ID uint16

const (
	Undefined ID = iota
	Null
	Object
	Function
	Array
	Number
	Math
	Error
	TypeError
	RangeError
	Value
	Get
	Set
	Writable
	Enumerable
	Configurable
	Message
	Constructor
	Prototype

	Length
	Name

	// Object routines
	GetPrototypeOf
	GetOwnPropertyDescriptor
	GetOwnPropertyNames
	Create
	DefineProperty
	DefineProperties
	Seal
	Freeze
	PreventExtensions
	IsSealed
	IsFrozen
	IsExtensible
	Keys

	// Number constants and routines
	MaxValue
	MinValue
	NaN
	NegativeInfinity
	PositiveInfinity
	Epsilon
	MaxSafeInteger
	MinSafeInteger
	IsFinite
	IsNaN
	IsInteger
	IsSafeInteger

	// Math constants
	E
	LN10
	LN2
	LOG2E
	LOG10E
	PI
	SQRT1_2
	SQRT2

	// Math routines
	Abs
	Acos
	Asin
	Atan
	Atan2
	Ceil
	Cos
	Exp
	Floor
	Log
	Max
	Min
	Pow
	Random
	Round
	Sin
	Sqrt
	Tan
	Acosh
	Asinh
	Atanh
	Cbrt
	Clz32
	Cosh
	Expm1
	Fround
	Hypot
	Imul
	Log10
	Log1p
	Log2
	Sign
	Sinh
	Tanh
	Trunc

	count
)

// Count is the number of magic strings.
const Count = int(count)

var names = [Count]string{
	Undefined:    "undefined",
	Null:         "null",
	Object:       "Object",
	Function:     "Function",
	Array:        "Array",
	Number:       "Number",
	Math:         "Math",
	Error:        "Error",
	TypeError:    "TypeError",
	RangeError:   "RangeError",
	Value:        "value",
	Get:          "get",
	Set:          "set",
	Writable:     "writable",
	Enumerable:   "enumerable",
	Configurable: "configurable",
	Message:      "message",
	Constructor:  "constructor",
	Prototype:    "prototype",

	Length: "length",
	Name:   "name",

	GetPrototypeOf:           "getPrototypeOf",
	GetOwnPropertyDescriptor: "getOwnPropertyDescriptor",
	GetOwnPropertyNames:      "getOwnPropertyNames",
	Create:                   "create",
	DefineProperty:           "defineProperty",
	DefineProperties:         "defineProperties",
	Seal:                     "seal",
	Freeze:                   "freeze",
	PreventExtensions:        "preventExtensions",
	IsSealed:                 "isSealed",
	IsFrozen:                 "isFrozen",
	IsExtensible:             "isExtensible",
	Keys:                     "keys",

	MaxValue:         "MAX_VALUE",
	MinValue:         "MIN_VALUE",
	NaN:              "NaN",
	NegativeInfinity: "NEGATIVE_INFINITY",
	PositiveInfinity: "POSITIVE_INFINITY",
	Epsilon:          "EPSILON",
	MaxSafeInteger:   "MAX_SAFE_INTEGER",
	MinSafeInteger:   "MIN_SAFE_INTEGER",
	IsFinite:         "isFinite",
	IsNaN:            "isNaN",
	IsInteger:        "isInteger",
	IsSafeInteger:    "isSafeInteger",

	E:       "E",
	LN10:    "LN10",
	LN2:     "LN2",
	LOG2E:   "LOG2E",
	LOG10E:  "LOG10E",
	PI:      "PI",
	SQRT1_2: "SQRT1_2",
	SQRT2:   "SQRT2",

	Abs:    "abs",
	Acos:   "acos",
	Asin:   "asin",
	Atan:   "atan",
	Atan2:  "atan2",
	Ceil:   "ceil",
	Cos:    "cos",
	Exp:    "exp",
	Floor:  "floor",
	Log:    "log",
	Max:    "max",
	Min:    "min",
	Pow:    "pow",
	Random: "random",
	Round:  "round",
	Sin:    "sin",
	Sqrt:   "sqrt",
	Tan:    "tan",
	Acosh:  "acosh",
	Asinh:  "asinh",
	Atanh:  "atanh",
	Cbrt:   "cbrt",
	Clz32:  "clz32",
	Cosh:   "cosh",
	Expm1:  "expm1",
	Fround: "fround",
	Hypot:  "hypot",
	Imul:   "imul",
	Log10:  "log10",
	Log1p:  "log1p",
	Log2:   "log2",
	Sign:   "sign",
	Sinh:   "sinh",
	Tanh:   "tanh",
	Trunc:  "trunc",
}

// String returns the property name for id.
func (id ID) String() string {
	if int(id) < Count {
		return names[id]
	}
	return "<invalid magic>"
}

// Valid reports whether id names an entry of the table.
func (id ID) Valid() bool {
	return int(id) < Count
}

// All returns every ID in table order.
func All() []ID {
	ids := make([]ID, Count)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}
