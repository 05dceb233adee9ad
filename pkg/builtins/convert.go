package builtins

import (
	"strconv"

	"ecmacore/pkg/vm"
)

// heldDescriptor is a property descriptor read from a script object. Unlike
// vm.PropertyDescriptor it owns the values it points at until release.
type heldDescriptor struct {
	vm.PropertyDescriptor
	held []vm.Value
}

func (d *heldDescriptor) release() {
	for _, v := range d.held {
		v.Free()
	}
	d.held = nil
}

// throwErr turns a throw completion into an error owning its exception.
func throwErr(c vm.Completion) error {
	return &ThrowError{Value: c.Take()}
}

// field reads an optional descriptor field. The returned value is owned.
func (r *Realm) field(obj *vm.Object, name string) (vm.Value, bool, error) {
	has, err := r.HasProperty(obj, name)
	if err != nil || !has {
		return vm.Undefined, false, err
	}
	c := r.Get(obj, name)
	if c.IsThrow() {
		return vm.Undefined, false, throwErr(c)
	}
	return c.Take(), true, nil
}

// toPropertyDescriptor implements ToPropertyDescriptor (ECMA-262 5.1, 8.10.5).
func (r *Realm) toPropertyDescriptor(v vm.Value) (*heldDescriptor, error) {
	if !v.IsObject() {
		return nil, throwErr(r.throwTypeError("Property description must be an object: %s", v.Inspect()))
	}
	obj := v.AsObject()
	d := &heldDescriptor{}
	fail := func(err error) (*heldDescriptor, error) {
		d.release()
		return nil, err
	}

	for _, f := range []struct {
		name string
		dst  *vm.Tri
	}{
		{"enumerable", &d.Enumerable},
		{"configurable", &d.Configurable},
		{"writable", &d.Writable},
	} {
		fv, ok, err := r.field(obj, f.name)
		if err != nil {
			return fail(err)
		}
		if ok {
			*f.dst = vm.TriOf(fv.ToBoolean())
			fv.Free()
		}
	}

	val, ok, err := r.field(obj, "value")
	if err != nil {
		return fail(err)
	}
	if ok {
		d.held = append(d.held, val)
		d.Value, d.HasValue = val, true
	}

	for _, f := range []struct {
		name string
		dst  **vm.Object
		has  *bool
	}{
		{"get", &d.Get, &d.HasGet},
		{"set", &d.Set, &d.HasSet},
	} {
		fv, ok, err := r.field(obj, f.name)
		if err != nil {
			return fail(err)
		}
		if !ok {
			continue
		}
		d.held = append(d.held, fv)
		switch {
		case fv.IsUndefined():
		case fv.IsObject() && fv.AsObject().IsCallable():
			*f.dst = fv.AsObject()
		default:
			return fail(throwErr(r.throwTypeError("%s must be a function: %s", f.name, fv.Inspect())))
		}
		*f.has = true
	}

	if d.IsAccessor() && d.IsData() {
		return fail(throwErr(r.throwTypeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")))
	}
	return d, nil
}

// fromDescriptor implements FromPropertyDescriptor (ECMA-262 5.1, 8.10.4).
func (r *Realm) fromDescriptor(p *vm.Property) (*vm.Object, error) {
	obj, err := r.heap.Alloc(vm.ClassObject, nil)
	if err != nil {
		return nil, err
	}
	d := vm.DescriptorOf(p)
	if p.IsData() {
		obj.InsertData("value", d.Value, vm.AttrAll)
		obj.InsertData("writable", vm.BooleanValue(d.Writable.True()), vm.AttrAll)
	} else {
		obj.InsertData("get", objectOrUndefined(d.Get), vm.AttrAll)
		obj.InsertData("set", objectOrUndefined(d.Set), vm.AttrAll)
	}
	obj.InsertData("enumerable", vm.BooleanValue(d.Enumerable.True()), vm.AttrAll)
	obj.InsertData("configurable", vm.BooleanValue(d.Configurable.True()), vm.AttrAll)
	return obj, nil
}

// objectOrUndefined returns a borrowed value for o.
func objectOrUndefined(o *vm.Object) vm.Value {
	if o == nil {
		return vm.Undefined
	}
	return vm.ObjectValue(o)
}

// newArray creates an array object holding names.
func (r *Realm) newArray(names []string) (*vm.Object, error) {
	arr, err := r.heap.Alloc(vm.ClassArray, nil)
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		s := vm.NewString(name)
		arr.InsertData(strconv.Itoa(i), s, vm.AttrAll)
		s.Free()
	}
	arr.InsertData("length", vm.NumberValue(float64(len(names))), vm.AttrWritable)
	return arr, nil
}
