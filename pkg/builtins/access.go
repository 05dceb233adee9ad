package builtins

import (
	"ecmacore/pkg/vm"
)

// maxProtoDepth bounds prototype chain walks.
const maxProtoDepth = 1 << 12

// Get implements [[Get]]: own property (instantiating built-in properties on
// demand), then the prototype chain. Accessors are invoked through Call.
func (r *Realm) Get(obj *vm.Object, name string) vm.Completion {
	for cur, depth := obj, 0; cur != nil; cur, depth = cur.Prototype(), depth+1 {
		if depth > maxProtoDepth {
			return r.throwRangeError("prototype chain too deep")
		}
		p, err := r.GetOwnProperty(cur, name)
		if err != nil {
			return r.AsCompletion(err)
		}
		if p == nil {
			continue
		}
		if p.IsData() {
			return vm.Normal(p.Value().Copy())
		}
		if p.Getter() == nil {
			return vm.Normal(vm.Undefined)
		}
		return r.Call(p.Getter(), nil)
	}
	return vm.Normal(vm.Undefined)
}

// Put implements [[Put]] with strict-mode failure reporting: every rejected
// assignment throws a TypeError.
func (r *Realm) Put(obj *vm.Object, name string, value vm.Value) vm.Completion {
	own, err := r.GetOwnProperty(obj, name)
	if err != nil {
		return r.AsCompletion(err)
	}
	if own != nil {
		if own.IsData() {
			if !own.Writable() {
				return r.throwTypeError("Cannot assign to read only property '%s'", name)
			}
			obj.SetValue(own, value)
			return vm.Normal(vm.Undefined)
		}
		return r.callSetter(own, name, value)
	}

	for cur := obj.Prototype(); cur != nil; cur = cur.Prototype() {
		p, err := r.GetOwnProperty(cur, name)
		if err != nil {
			return r.AsCompletion(err)
		}
		if p == nil {
			continue
		}
		if p.IsAccessor() {
			return r.callSetter(p, name, value)
		}
		if !p.Writable() {
			return r.throwTypeError("Cannot assign to read only property '%s'", name)
		}
		break
	}

	if !obj.Extensible() {
		return r.throwTypeError("Cannot add property %s, object is not extensible", name)
	}
	obj.InsertData(name, value, vm.AttrAll)
	return vm.Normal(vm.Undefined)
}

func (r *Realm) callSetter(p *vm.Property, name string, value vm.Value) vm.Completion {
	if p.Setter() == nil {
		return r.throwTypeError("Cannot set property %s which has only a getter", name)
	}
	c := r.Call(p.Setter(), []vm.Value{value})
	if c.IsThrow() {
		return c
	}
	c.Free()
	return vm.Normal(vm.Undefined)
}

// Delete implements [[Delete]] in strict mode. A recognized built-in
// property is instantiated before it is removed, so its mask bit is clear and
// it does not come back on the next lookup.
func (r *Realm) Delete(obj *vm.Object, name string) vm.Completion {
	p, err := r.GetOwnProperty(obj, name)
	if err != nil {
		return r.AsCompletion(err)
	}
	if p == nil {
		return vm.Normal(vm.True)
	}
	if !p.Configurable() {
		return r.throwTypeError("Cannot delete property '%s'", name)
	}
	obj.Remove(name)
	return vm.Normal(vm.True)
}

// HasProperty reports whether name is found on obj or its prototype chain.
func (r *Realm) HasProperty(obj *vm.Object, name string) (bool, error) {
	for cur := obj; cur != nil; cur = cur.Prototype() {
		p, err := r.GetOwnProperty(cur, name)
		if err != nil {
			return false, err
		}
		if p != nil {
			return true, nil
		}
	}
	return false, nil
}

// OwnPropertyNames returns every own property name of obj in insertion
// order. Pending built-in properties are instantiated first.
func (r *Realm) OwnPropertyNames(obj *vm.Object) ([]string, error) {
	if err := r.InstantiateAll(obj); err != nil {
		return nil, err
	}
	return obj.OwnNames(), nil
}

// OwnEnumerableNames returns the enumerable own property names of obj.
func (r *Realm) OwnEnumerableNames(obj *vm.Object) ([]string, error) {
	if err := r.InstantiateAll(obj); err != nil {
		return nil, err
	}
	var names []string
	for _, p := range obj.Properties() {
		if p.Enumerable() {
			names = append(names, p.Name())
		}
	}
	return names, nil
}

// DefineOwnProperty instantiates a pending built-in property of the same
// name before applying desc, keeping the instantiate-once invariant.
func (r *Realm) DefineOwnProperty(obj *vm.Object, name string, desc vm.PropertyDescriptor) (bool, error) {
	if _, err := r.GetOwnProperty(obj, name); err != nil {
		return false, err
	}
	return obj.DefineOwnProperty(name, desc), nil
}
