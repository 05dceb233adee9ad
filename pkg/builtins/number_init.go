package builtins

import (
	"math"

	"ecmacore/pkg/magic"
	"ecmacore/pkg/vm"
)

const maxSafeInteger = 1<<53 - 1

var numberDescriptor = register(&Descriptor{
	ID:        Number,
	Name:      "Number",
	Class:     vm.ClassFunction,
	Priority:  PriorityNumber,
	Singleton: true,
	Slots: []Slot{
		length(1),
		constant(magic.MaxValue, math.MaxFloat64),
		constant(magic.MinValue, math.SmallestNonzeroFloat64),
		constant(magic.NaN, math.NaN()),
		constant(magic.NegativeInfinity, math.Inf(-1)),
		constant(magic.PositiveInfinity, math.Inf(1)),
		constant(magic.Epsilon, math.Nextafter(1, 2)-1),
		constant(magic.MaxSafeInteger, maxSafeInteger),
		constant(magic.MinSafeInteger, -maxSafeInteger),
		routine(magic.IsFinite, 1, numberPredicate(func(n float64) bool {
			return !math.IsNaN(n) && !math.IsInf(n, 0)
		})),
		routine(magic.IsNaN, 1, numberPredicate(math.IsNaN)),
		routine(magic.IsInteger, 1, numberPredicate(isInteger)),
		routine(magic.IsSafeInteger, 1, numberPredicate(func(n float64) bool {
			return isInteger(n) && math.Abs(n) <= maxSafeInteger
		})),
	},
	// Variadic so that Number() can be told apart from Number(undefined).
	Call: &Routine{Arity: 1, Variadic: true, Handler: numberCall},
})

// numberCall implements Number(value) as a conversion.
func numberCall(r *Realm, args []vm.Value) vm.Completion {
	if len(args) == 0 {
		return vm.Normal(vm.NumberValue(0))
	}
	return vm.Normal(vm.NumberValue(args[0].ToNumber()))
}

// numberPredicate builds a Number.isXxx routine. Unlike the global
// functions of the same name they never convert their argument.
func numberPredicate(pred func(float64) bool) Handler {
	return func(r *Realm, args []vm.Value) vm.Completion {
		v := args[0]
		return vm.Normal(vm.BooleanValue(v.IsNumber() && pred(v.AsNumber())))
	}
}

func isInteger(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0) && math.Trunc(n) == n
}
