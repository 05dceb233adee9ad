package builtins

import (
	"fmt"
	"sort"

	"ecmacore/pkg/errors"
	"ecmacore/pkg/magic"
	"ecmacore/pkg/vm"
)

// ID identifies a built-in table. Singleton built-ins get one object per
// Realm; RoutineFunction describes the function objects created for routines.
type ID uint8

const (
	Object ID = iota
	Math
	Number
	RoutineFunction

	idCount
)

// SlotKind selects how a recognized property is synthesized on first access.
type SlotKind uint8

const (
	// SlotRoutine becomes a function object bound to Slot.Routine.
	SlotRoutine SlotKind = iota
	// SlotLength is the "length" of a constructor or routine function.
	SlotLength
	// SlotConstant is a number constant such as Math.PI.
	SlotConstant
	// SlotName is the "name" string of a routine function.
	SlotName
)

func (k SlotKind) String() string {
	switch k {
	case SlotRoutine:
		return "routine"
	case SlotLength:
		return "length"
	case SlotConstant:
		return "constant"
	case SlotName:
		return "name"
	default:
		return "unknown"
	}
}

// Slot is one recognized own property of a built-in.
type Slot struct {
	ID      magic.ID
	Kind    SlotKind
	Number  float64  // SlotLength, SlotConstant
	Routine *Routine // SlotRoutine
}

// Attributes returns the attributes the property is created with.
func (s *Slot) Attributes() vm.Attributes {
	switch s.Kind {
	case SlotRoutine, SlotName:
		return vm.AttrConfigurable
	default:
		return vm.AttrNone
	}
}

func routine(id magic.ID, arity int, h Handler) Slot {
	return Slot{ID: id, Kind: SlotRoutine, Routine: &Routine{Arity: arity, Handler: h}}
}

func variadic(id magic.ID, arity int, h Handler) Slot {
	return Slot{ID: id, Kind: SlotRoutine, Routine: &Routine{Arity: arity, Variadic: true, Handler: h}}
}

func constant(id magic.ID, n float64) Slot {
	return Slot{ID: id, Kind: SlotConstant, Number: n}
}

func length(n int) Slot {
	return Slot{ID: magic.Length, Kind: SlotLength, Number: float64(n)}
}

// Descriptor is the static identity table entry of a built-in: class tag,
// recognized properties sorted by magic ID, and its routines.
type Descriptor struct {
	ID        ID
	Name      string
	Class     vm.Class
	Priority  int
	Singleton bool
	// Slots must be strictly ascending by ID; the slot index is the bit in
	// the object's not-yet-instantiated mask.
	Slots []Slot
	// Call is invoked when the built-in object itself is called.
	Call *Routine
}

// Len returns the number of recognized own properties.
func (d *Descriptor) Len() int { return len(d.Slots) }

// IDs returns the sorted magic IDs the built-in recognizes.
func (d *Descriptor) IDs() []magic.ID {
	ids := make([]magic.ID, len(d.Slots))
	for i := range d.Slots {
		ids[i] = d.Slots[i].ID
	}
	return ids
}

// Routine returns the routine registered under id, or nil.
func (d *Descriptor) Routine(id magic.ID) *Routine {
	idx, ok := IndexOf(d, id)
	if !ok || d.Slots[idx].Kind != SlotRoutine {
		return nil
	}
	return d.Slots[idx].Routine
}

// Routines returns every routine of the built-in in slot order.
func (d *Descriptor) Routines() []*Routine {
	var out []*Routine
	for i := range d.Slots {
		if d.Slots[i].Kind == SlotRoutine {
			out = append(out, d.Slots[i].Routine)
		}
	}
	return out
}

func (d *Descriptor) String() string { return d.Name }

// registry holds every descriptor by ID. It is filled by the *_init.go files
// during package initialization and read-only afterwards.
var registry [idCount]*Descriptor

func register(d *Descriptor) *Descriptor {
	if registry[d.ID] != nil {
		panic(fmt.Sprintf("builtins: %s registered twice", d.Name))
	}
	for i := range d.Slots {
		if r := d.Slots[i].Routine; r != nil {
			r.Builtin = d.ID
			r.Name = d.Slots[i].ID
		}
	}
	if d.Call != nil {
		d.Call.Builtin = d.ID
		d.Call.Name, _ = magic.Recognize(d.Name)
	}
	registry[d.ID] = d
	return d
}

// Lookup returns the descriptor for id.
func Lookup(id ID) (*Descriptor, bool) {
	if id >= idCount || registry[id] == nil {
		return nil, false
	}
	return registry[id], true
}

// ByName finds a descriptor by its script-visible name.
func ByName(name string) (*Descriptor, bool) {
	for _, d := range registry {
		if d != nil && d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// StandardBuiltins returns the singleton descriptors sorted by priority.
func StandardBuiltins() []*Descriptor {
	var out []*Descriptor
	for _, d := range registry {
		if d != nil && d.Singleton {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// Priority constants for initialization order
const (
	PriorityObject = 0   // Object must be first
	PriorityNumber = 11  // Number constructor
	PriorityMath   = 100 // Math object
)

func mustDescriptor(id ID) *Descriptor {
	d, ok := Lookup(id)
	if !ok {
		panic(errors.Invariantf("corrupted built-in identity tag %d", id))
	}
	return d
}
