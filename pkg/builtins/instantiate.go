package builtins

import (
	"ecmacore/pkg/errors"
	"ecmacore/pkg/magic"
	"ecmacore/pkg/vm"
)

// TryInstantiate materializes the built-in property name of obj if it is
// recognized and has not been instantiated yet. It is called by the
// property lookup path after an ordinary store lookup missed. A nil property
// with a nil error means there is nothing to instantiate. The only error is
// a thrown out-of-memory exception (*ThrowError); in that case obj is left
// untouched.
func (r *Realm) TryInstantiate(obj *vm.Object, name string) (*vm.Property, error) {
	if !obj.IsBuiltin() {
		return nil, nil
	}
	id, ok := magic.Recognize(name)
	if !ok {
		return nil, nil
	}
	d := r.descriptorFor(obj)
	idx, ok := IndexOf(d, id)

	if existing := obj.Lookup(name); existing != nil {
		if ok && obj.NotInstantiated(idx) {
			r.violation("%s.%s exists while still marked as not instantiated", d.Name, name)
		}
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	if !obj.NotInstantiated(idx) {
		// Already instantiated and since deleted, or never eligible.
		if debugInstantiate {
			r.log.Debugf("%s.%s already instantiated", d.Name, name)
		}
		return nil, nil
	}

	slot := &d.Slots[idx]
	if slot.Kind == SlotRoutine {
		// Check for room before the transition so that a failed allocation
		// leaves the property instantiable.
		if err := r.heap.Reserve(1); err != nil {
			return nil, r.oomError()
		}
	}

	// Cleared before synthesis so that lookups made while synthesizing
	// cannot instantiate the same property twice.
	obj.ClearNotInstantiated(idx)

	value := r.synthesize(obj, d, slot)
	prop := obj.InsertData(name, value, slot.Attributes())
	value.Free()

	if debugInstantiate {
		r.log.Debugf("instantiated %s.%s (%s, %s)", d.Name, name, slot.Kind, prop.Attributes())
	}
	return prop, nil
}

// synthesize builds the initial value for slot. Allocation has been checked
// by the caller.
func (r *Realm) synthesize(obj *vm.Object, d *Descriptor, slot *Slot) vm.Value {
	switch slot.Kind {
	case SlotRoutine:
		fn, err := r.newRoutineFunction(slot.Routine)
		if err != nil {
			panic(errors.Invariantf("allocation failed after reservation: %v", err))
		}
		return vm.ObjectValue(fn)
	case SlotConstant:
		return vm.NumberValue(slot.Number)
	case SlotLength:
		if d.ID == RoutineFunction {
			return vm.NumberValue(float64(r.routineOf(obj).Arity))
		}
		return vm.NumberValue(slot.Number)
	case SlotName:
		return vm.NewString(r.routineOf(obj).Name.String())
	}
	panic(errors.Invariantf("%s slot %q has unknown kind %d", d.Name, slot.ID, slot.Kind))
}

// newRoutineFunction creates the function object for rt. Its own "length"
// and "name" are instantiated lazily like any other built-in property.
func (r *Realm) newRoutineFunction(rt *Routine) (*vm.Object, error) {
	fn, err := r.heap.Alloc(vm.ClassFunction, nil)
	if err != nil {
		return nil, err
	}
	fn.InsertInternal(vm.InternalBuiltinID, uint32(rt.Builtin))
	fn.InsertInternal(vm.InternalRoutineID, uint32(rt.Name))
	fn.InitLazyMask(mustDescriptor(RoutineFunction).Len())
	fn.MarkBuiltin()
	return fn, nil
}

// InstantiateAll materializes every pending recognized property of obj, in
// slot order. Enumeration and integrity operations call it first so the
// complete set of specified properties is observable.
func (r *Realm) InstantiateAll(obj *vm.Object) error {
	if !obj.IsBuiltin() || obj.NotInstantiatedCount() == 0 {
		return nil
	}
	d := r.descriptorFor(obj)
	for i := range d.Slots {
		if !obj.NotInstantiated(i) {
			continue
		}
		if _, err := r.TryInstantiate(obj, d.Slots[i].ID.String()); err != nil {
			return err
		}
	}
	return nil
}

// GetOwnProperty is the general own-property lookup: the property store
// first, then lazy instantiation.
func (r *Realm) GetOwnProperty(obj *vm.Object, name string) (*vm.Property, error) {
	if p := obj.Lookup(name); p != nil {
		return p, nil
	}
	return r.TryInstantiate(obj, name)
}

func (r *Realm) violation(format string, args ...any) {
	err := errors.Invariantf(format, args...)
	if r.strict {
		panic(err)
	}
	r.log.Warningf("%s", err.Message())
}
