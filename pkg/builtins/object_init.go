package builtins

import (
	"ecmacore/pkg/magic"
	"ecmacore/pkg/vm"
)

// The Object constructor and its ES5.1 static routines (15.2.3). Objects
// created here have a null prototype: Object.prototype lives outside this
// core, so "prototype" is not among the recognized properties.
var objectDescriptor = register(&Descriptor{
	ID:        Object,
	Name:      "Object",
	Class:     vm.ClassFunction,
	Priority:  PriorityObject,
	Singleton: true,
	Slots: []Slot{
		length(1),
		routine(magic.GetPrototypeOf, 1, objectGetPrototypeOf),
		routine(magic.GetOwnPropertyDescriptor, 2, objectGetOwnPropertyDescriptor),
		routine(magic.GetOwnPropertyNames, 1, objectGetOwnPropertyNames),
		routine(magic.Create, 2, objectCreate),
		routine(magic.DefineProperty, 3, objectDefineProperty),
		routine(magic.DefineProperties, 2, objectDefineProperties),
		routine(magic.Seal, 1, objectSeal),
		routine(magic.Freeze, 1, objectFreeze),
		routine(magic.PreventExtensions, 1, objectPreventExtensions),
		routine(magic.IsSealed, 1, objectIsSealed),
		routine(magic.IsFrozen, 1, objectIsFrozen),
		routine(magic.IsExtensible, 1, objectIsExtensible),
		routine(magic.Keys, 1, objectKeys),
	},
	Call: &Routine{Arity: 1, Handler: objectCall},
})

// objectCall implements Object(value) for the values this core can convert.
func objectCall(r *Realm, args []vm.Value) vm.Completion {
	v := args[0]
	switch {
	case v.IsUndefined() || v.IsNull():
		obj, err := r.heap.Alloc(vm.ClassObject, nil)
		if err != nil {
			return r.AsCompletion(err)
		}
		return vm.Normal(vm.ObjectValue(obj))
	case v.IsObject():
		return vm.Normal(v.Copy())
	}
	// Wrapper objects for primitives are not part of this core.
	return r.throwTypeError("Cannot convert %s to object", v.Type())
}

// objectArg checks the first argument of a routine that requires an object.
func (r *Realm) objectArg(name magic.ID, v vm.Value) (*vm.Object, vm.Completion, bool) {
	if !v.IsObject() {
		return nil, r.throwTypeError("Object.%s called on non-object", name), false
	}
	return v.AsObject(), vm.Completion{}, true
}

func objectGetPrototypeOf(r *Realm, args []vm.Value) vm.Completion {
	obj, c, ok := r.objectArg(magic.GetPrototypeOf, args[0])
	if !ok {
		return c
	}
	proto := obj.Prototype()
	if proto == nil {
		return vm.Normal(vm.Null)
	}
	proto.Ref()
	return vm.Normal(vm.ObjectValue(proto))
}

func objectGetOwnPropertyDescriptor(r *Realm, args []vm.Value) vm.Completion {
	obj, c, ok := r.objectArg(magic.GetOwnPropertyDescriptor, args[0])
	if !ok {
		return c
	}
	p, err := r.GetOwnProperty(obj, args[1].ToString())
	if err != nil {
		return r.AsCompletion(err)
	}
	if p == nil {
		return vm.Normal(vm.Undefined)
	}
	desc, err := r.fromDescriptor(p)
	if err != nil {
		return r.AsCompletion(err)
	}
	return vm.Normal(vm.ObjectValue(desc))
}

func objectGetOwnPropertyNames(r *Realm, args []vm.Value) vm.Completion {
	obj, c, ok := r.objectArg(magic.GetOwnPropertyNames, args[0])
	if !ok {
		return c
	}
	names, err := r.OwnPropertyNames(obj)
	if err != nil {
		return r.AsCompletion(err)
	}
	arr, err := r.newArray(names)
	if err != nil {
		return r.AsCompletion(err)
	}
	return vm.Normal(vm.ObjectValue(arr))
}

func objectCreate(r *Realm, args []vm.Value) vm.Completion {
	var proto *vm.Object
	switch p := args[0]; {
	case p.IsObject():
		proto = p.AsObject()
	case p.IsNull():
	default:
		return r.throwTypeError("Object prototype may only be an Object or null: %s", p.Inspect())
	}
	obj, err := r.heap.Alloc(vm.ClassObject, proto)
	if err != nil {
		return r.AsCompletion(err)
	}
	if !args[1].IsUndefined() {
		if c := r.defineProperties(obj, args[1]); c.IsThrow() {
			obj.Deref()
			return c
		}
	}
	return vm.Normal(vm.ObjectValue(obj))
}

func objectDefineProperty(r *Realm, args []vm.Value) vm.Completion {
	obj, c, ok := r.objectArg(magic.DefineProperty, args[0])
	if !ok {
		return c
	}
	name := args[1].ToString()
	desc, err := r.toPropertyDescriptor(args[2])
	if err != nil {
		return r.AsCompletion(err)
	}
	defer desc.release()
	ok, err = r.DefineOwnProperty(obj, name, desc.PropertyDescriptor)
	if err != nil {
		return r.AsCompletion(err)
	}
	if !ok {
		return r.throwTypeError("Cannot redefine property: %s", name)
	}
	return vm.Normal(args[0].Copy())
}

func objectDefineProperties(r *Realm, args []vm.Value) vm.Completion {
	obj, c, ok := r.objectArg(magic.DefineProperties, args[0])
	if !ok {
		return c
	}
	if c := r.defineProperties(obj, args[1]); c.IsThrow() {
		return c
	}
	return vm.Normal(args[0].Copy())
}

// defineProperties implements ObjectDefineProperties (15.2.3.7): every
// descriptor is read before any property is defined.
func (r *Realm) defineProperties(obj *vm.Object, props vm.Value) vm.Completion {
	if !props.IsObject() {
		return r.throwTypeError("Property description must be an object: %s", props.Inspect())
	}
	src := props.AsObject()
	names, err := r.OwnEnumerableNames(src)
	if err != nil {
		return r.AsCompletion(err)
	}

	descs := make([]*heldDescriptor, 0, len(names))
	defer func() {
		for _, d := range descs {
			d.release()
		}
	}()
	for _, name := range names {
		c := r.Get(src, name)
		if c.IsThrow() {
			return c
		}
		v := c.Take()
		d, err := r.toPropertyDescriptor(v)
		v.Free()
		if err != nil {
			return r.AsCompletion(err)
		}
		descs = append(descs, d)
	}

	for i, name := range names {
		ok, err := r.DefineOwnProperty(obj, name, descs[i].PropertyDescriptor)
		if err != nil {
			return r.AsCompletion(err)
		}
		if !ok {
			return r.throwTypeError("Cannot redefine property: %s", name)
		}
	}
	return vm.Normal(vm.Undefined)
}

// setIntegrity clears attrs from every own property and makes obj
// non-extensible.
func (r *Realm) setIntegrity(obj *vm.Object, clear vm.Attributes) error {
	if err := r.InstantiateAll(obj); err != nil {
		return err
	}
	for _, p := range obj.Properties() {
		p.SetAttributes(p.Attributes() &^ clear)
	}
	obj.PreventExtensions()
	return nil
}

// testIntegrity reports whether obj is non-extensible and no own property
// has any of attrs.
func (r *Realm) testIntegrity(obj *vm.Object, attrs vm.Attributes) (bool, error) {
	if err := r.InstantiateAll(obj); err != nil {
		return false, err
	}
	for _, p := range obj.Properties() {
		held := p.Attributes()
		if p.IsAccessor() {
			held &^= vm.AttrWritable
		}
		if held&attrs != 0 {
			return false, nil
		}
	}
	return !obj.Extensible(), nil
}

func objectSeal(r *Realm, args []vm.Value) vm.Completion {
	obj, c, ok := r.objectArg(magic.Seal, args[0])
	if !ok {
		return c
	}
	if err := r.setIntegrity(obj, vm.AttrConfigurable); err != nil {
		return r.AsCompletion(err)
	}
	return vm.Normal(args[0].Copy())
}

func objectFreeze(r *Realm, args []vm.Value) vm.Completion {
	obj, c, ok := r.objectArg(magic.Freeze, args[0])
	if !ok {
		return c
	}
	if err := r.setIntegrity(obj, vm.AttrConfigurable|vm.AttrWritable); err != nil {
		return r.AsCompletion(err)
	}
	return vm.Normal(args[0].Copy())
}

func objectPreventExtensions(r *Realm, args []vm.Value) vm.Completion {
	obj, c, ok := r.objectArg(magic.PreventExtensions, args[0])
	if !ok {
		return c
	}
	// A non-extensible built-in must not grow through later instantiation.
	if err := r.InstantiateAll(obj); err != nil {
		return r.AsCompletion(err)
	}
	obj.PreventExtensions()
	return vm.Normal(args[0].Copy())
}

func objectIsSealed(r *Realm, args []vm.Value) vm.Completion {
	obj, c, ok := r.objectArg(magic.IsSealed, args[0])
	if !ok {
		return c
	}
	sealed, err := r.testIntegrity(obj, vm.AttrConfigurable)
	if err != nil {
		return r.AsCompletion(err)
	}
	return vm.Normal(vm.BooleanValue(sealed))
}

func objectIsFrozen(r *Realm, args []vm.Value) vm.Completion {
	obj, c, ok := r.objectArg(magic.IsFrozen, args[0])
	if !ok {
		return c
	}
	frozen, err := r.testIntegrity(obj, vm.AttrConfigurable|vm.AttrWritable)
	if err != nil {
		return r.AsCompletion(err)
	}
	return vm.Normal(vm.BooleanValue(frozen))
}

func objectIsExtensible(r *Realm, args []vm.Value) vm.Completion {
	obj, c, ok := r.objectArg(magic.IsExtensible, args[0])
	if !ok {
		return c
	}
	return vm.Normal(vm.BooleanValue(obj.Extensible()))
}

func objectKeys(r *Realm, args []vm.Value) vm.Completion {
	obj, c, ok := r.objectArg(magic.Keys, args[0])
	if !ok {
		return c
	}
	names, err := r.OwnEnumerableNames(obj)
	if err != nil {
		return r.AsCompletion(err)
	}
	arr, err := r.newArray(names)
	if err != nil {
		return r.AsCompletion(err)
	}
	return vm.Normal(vm.ObjectValue(arr))
}
