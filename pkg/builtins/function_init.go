package builtins

import (
	"ecmacore/pkg/magic"
	"ecmacore/pkg/vm"
)

// RoutineFunction describes the function objects created when a routine
// property is instantiated. Each one is its own built-in object whose
// "length" and "name" are instantiated lazily from the routine it wraps.
var routineFunctionDescriptor = register(&Descriptor{
	ID:    RoutineFunction,
	Name:  "Function",
	Class: vm.ClassFunction,
	Slots: []Slot{
		{ID: magic.Length, Kind: SlotLength},
		{ID: magic.Name, Kind: SlotName},
	},
})
