package builtins

import (
	"math"
	"math/bits"

	"ecmacore/pkg/magic"
	"ecmacore/pkg/vm"
)

var mathDescriptor = register(&Descriptor{
	ID:        Math,
	Name:      "Math",
	Class:     vm.ClassMath,
	Priority:  PriorityMath,
	Singleton: true,
	Slots: []Slot{
		constant(magic.E, math.E),
		constant(magic.LN10, math.Ln10),
		constant(magic.LN2, math.Ln2),
		constant(magic.LOG2E, math.Log2E),
		constant(magic.LOG10E, math.Log10E),
		constant(magic.PI, math.Pi),
		constant(magic.SQRT1_2, math.Sqrt2/2),
		constant(magic.SQRT2, math.Sqrt2),

		routine(magic.Abs, 1, unary(math.Abs)),
		routine(magic.Acos, 1, unary(math.Acos)),
		routine(magic.Asin, 1, unary(math.Asin)),
		routine(magic.Atan, 1, unary(math.Atan)),
		routine(magic.Atan2, 2, binary(math.Atan2)),
		routine(magic.Ceil, 1, unary(math.Ceil)),
		routine(magic.Cos, 1, unary(math.Cos)),
		routine(magic.Exp, 1, unary(math.Exp)),
		routine(magic.Floor, 1, unary(math.Floor)),
		routine(magic.Log, 1, unary(math.Log)),
		variadic(magic.Max, 2, mathMax),
		variadic(magic.Min, 2, mathMin),
		routine(magic.Pow, 2, binary(pow)),
		routine(magic.Random, 0, mathRandom),
		routine(magic.Round, 1, unary(round)),
		routine(magic.Sin, 1, unary(math.Sin)),
		routine(magic.Sqrt, 1, unary(math.Sqrt)),
		routine(magic.Tan, 1, unary(math.Tan)),
		routine(magic.Acosh, 1, unary(math.Acosh)),
		routine(magic.Asinh, 1, unary(math.Asinh)),
		routine(magic.Atanh, 1, unary(math.Atanh)),
		routine(magic.Cbrt, 1, unary(math.Cbrt)),
		routine(magic.Clz32, 1, unary(clz32)),
		routine(magic.Cosh, 1, unary(math.Cosh)),
		routine(magic.Expm1, 1, unary(math.Expm1)),
		routine(magic.Fround, 1, unary(fround)),
		variadic(magic.Hypot, 2, mathHypot),
		routine(magic.Imul, 2, binary(imul)),
		routine(magic.Log10, 1, unary(math.Log10)),
		routine(magic.Log1p, 1, unary(math.Log1p)),
		routine(magic.Log2, 1, unary(math.Log2)),
		routine(magic.Sign, 1, unary(sign)),
		routine(magic.Sinh, 1, unary(math.Sinh)),
		routine(magic.Tanh, 1, unary(math.Tanh)),
		routine(magic.Trunc, 1, unary(math.Trunc)),
	},
})

func unary(f func(float64) float64) Handler {
	return func(r *Realm, args []vm.Value) vm.Completion {
		return vm.Normal(vm.NumberValue(f(args[0].ToNumber())))
	}
}

func binary(f func(float64, float64) float64) Handler {
	return func(r *Realm, args []vm.Value) vm.Completion {
		return vm.Normal(vm.NumberValue(f(args[0].ToNumber(), args[1].ToNumber())))
	}
}

func mathRandom(r *Realm, _ []vm.Value) vm.Completion {
	return vm.Normal(vm.NumberValue(r.random()))
}

func mathMax(r *Realm, args []vm.Value) vm.Completion {
	result := math.Inf(-1)
	for _, a := range args {
		n := a.ToNumber()
		switch {
		case math.IsNaN(n):
			result = n
		case math.IsNaN(result):
		case n > result || (n == 0 && result == 0 && !math.Signbit(n)):
			result = n
		}
	}
	return vm.Normal(vm.NumberValue(result))
}

func mathMin(r *Realm, args []vm.Value) vm.Completion {
	result := math.Inf(1)
	for _, a := range args {
		n := a.ToNumber()
		switch {
		case math.IsNaN(n):
			result = n
		case math.IsNaN(result):
		case n < result || (n == 0 && result == 0 && math.Signbit(n)):
			result = n
		}
	}
	return vm.Normal(vm.NumberValue(result))
}

func mathHypot(r *Realm, args []vm.Value) vm.Completion {
	result, sawNaN := 0.0, false
	for _, a := range args {
		n := a.ToNumber()
		switch {
		case math.IsInf(n, 0):
			// Infinity wins over NaN, but every argument is still converted.
			result = math.Inf(1)
		case math.IsNaN(n):
			sawNaN = true
		case !math.IsInf(result, 1):
			result = math.Hypot(result, n)
		}
	}
	if sawNaN && !math.IsInf(result, 1) {
		result = math.NaN()
	}
	return vm.Normal(vm.NumberValue(result))
}

// pow differs from math.Pow where ECMAScript keeps NaN: a NaN exponent, and
// a base of magnitude one raised to an infinity.
func pow(x, y float64) float64 {
	if math.IsNaN(y) {
		return math.NaN()
	}
	if math.Abs(x) == 1 && math.IsInf(y, 0) {
		return math.NaN()
	}
	return math.Pow(x, y)
}

func round(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x == 0 {
		return x
	}
	if x < 0 && x >= -0.5 {
		return math.Copysign(0, -1)
	}
	// Adding 0.5 first is inexact just below one half.
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	return r
}

func sign(x float64) float64 {
	switch {
	case math.IsNaN(x) || x == 0:
		return x
	case x > 0:
		return 1
	default:
		return -1
	}
}

func clz32(x float64) float64 {
	return float64(bits.LeadingZeros32(toUint32(x)))
}

func imul(a, b float64) float64 {
	return float64(toInt32(a) * toInt32(b))
}

func fround(x float64) float64 {
	return float64(float32(x))
}

// toUint32 implements ToUint32 (ECMA-262 5.1, 9.6).
func toUint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Mod(math.Trunc(f), 1<<32)
	if f < 0 {
		f += 1 << 32
	}
	return uint32(f)
}

// toInt32 implements ToInt32 (ECMA-262 5.1, 9.5).
func toInt32(f float64) int32 {
	return int32(toUint32(f))
}
