package builtins

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ecmacore/pkg/magic"
	"ecmacore/pkg/vm"
)

func TestObjectDescriptor(t *testing.T) {
	d := mustDescriptor(Object)
	if d != objectDescriptor || d.Name != "Object" || d.Class != vm.ClassFunction {
		t.Fatalf("Unexpected Object descriptor %+v", d)
	}
	if d.Len() != 14 {
		t.Errorf("Expected 14 recognized properties, got %d", d.Len())
	}
	if len(d.Routines()) != 13 {
		t.Errorf("Expected 13 routines, got %d", len(d.Routines()))
	}
	if d.Priority != PriorityObject {
		t.Errorf("Expected priority %d, got %d", PriorityObject, d.Priority)
	}
}

// object calls an Object routine and returns its normal result.
func object(t *testing.T, r *Realm, id magic.ID, args ...vm.Value) vm.Value {
	t.Helper()
	return mustNormal(t, r.DispatchByID(Object, id, args))
}

func newPlain(t *testing.T, r *Realm) vm.Value {
	t.Helper()
	return mustNormal(t, r.Call(r.slots[Object], nil))
}

func put(t *testing.T, r *Realm, obj vm.Value, name string, v vm.Value) {
	t.Helper()
	mustNormal(t, r.Put(obj.AsObject(), name, v)).Free()
}

func arrayStrings(t *testing.T, r *Realm, arr vm.Value) []string {
	t.Helper()
	n := mustGet(t, r, arr.AsObject(), "length")
	out := []string{}
	for i := 0; i < int(n.AsNumber()); i++ {
		v := mustGet(t, r, arr.AsObject(), strconv.Itoa(i))
		out = append(out, v.AsString())
		v.Free()
	}
	return out
}

func TestObjectCall(t *testing.T) {
	r := newRealm(t)
	o := newPlain(t, r)
	defer o.Free()
	if o.AsObject().Prototype() != nil || !o.AsObject().Extensible() {
		t.Error("Expected an extensible object with a null prototype")
	}

	same := mustNormal(t, r.Call(r.slots[Object], []vm.Value{o}))
	if same.AsObject() != o.AsObject() {
		t.Error("Object(o) must return o")
	}
	same.Free()

	expectThrow(t, r.Call(r.slots[Object], []vm.Value{vm.NumberValue(1)}), "TypeError")
}

func TestObjectDefineProperty(t *testing.T) {
	r := newRealm(t)
	o := newPlain(t, r)
	defer o.Free()

	attrs := newPlain(t, r)
	put(t, r, attrs, "value", vm.NumberValue(5))
	put(t, r, attrs, "enumerable", vm.True)
	ret := object(t, r, magic.DefineProperty, o, vm.NewString("x"), attrs)
	attrs.Free()
	if ret.AsObject() != o.AsObject() {
		t.Error("defineProperty must return its first argument")
	}
	ret.Free()

	desc := object(t, r, magic.GetOwnPropertyDescriptor, o, vm.NewString("x"))
	defer desc.Free()
	got := map[string]string{}
	for _, name := range []string{"value", "writable", "enumerable", "configurable"} {
		v := mustGet(t, r, desc.AsObject(), name)
		got[name] = v.ToString()
		v.Free()
	}
	want := map[string]string{"value": "5", "writable": "false", "enumerable": "true", "configurable": "false"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}

	// Redefinition of a non-configurable, non-writable property.
	attrs = newPlain(t, r)
	put(t, r, attrs, "value", vm.NumberValue(6))
	expectThrow(t, r.DispatchByID(Object, magic.DefineProperty, []vm.Value{o, vm.NewString("x"), attrs}), "TypeError")
	attrs.Free()

	expectThrow(t, r.DispatchByID(Object, magic.DefineProperty, []vm.Value{o, vm.NewString("y"), vm.True}), "TypeError")
	expectThrow(t, r.DispatchByID(Object, magic.DefineProperty, []vm.Value{vm.Null, vm.NewString("y"), o}), "TypeError")
}

func TestObjectDefineProperty_Accessor(t *testing.T) {
	r := newRealm(t, WithRandom(func() float64 { return 0.25 }))
	o := newPlain(t, r)
	defer o.Free()
	random := mustGet(t, r, r.slots[Math], "random")
	defer random.Free()

	attrs := newPlain(t, r)
	put(t, r, attrs, "get", random)
	object(t, r, magic.DefineProperty, o, vm.NewString("r"), attrs).Free()

	v := mustGet(t, r, o.AsObject(), "r")
	if v.AsNumber() != 0.25 {
		t.Errorf("Expected the getter to run, got %s", v.Inspect())
	}
	expectThrow(t, r.Put(o.AsObject(), "r", vm.NumberValue(1)), "TypeError")

	// value together with get is rejected.
	put(t, r, attrs, "value", vm.NumberValue(1))
	expectThrow(t, r.DispatchByID(Object, magic.DefineProperty, []vm.Value{o, vm.NewString("q"), attrs}), "TypeError")
	attrs.Free()

	bad := newPlain(t, r)
	put(t, r, bad, "set", vm.NumberValue(1))
	expectThrow(t, r.DispatchByID(Object, magic.DefineProperty, []vm.Value{o, vm.NewString("q"), bad}), "TypeError")
	bad.Free()
}

func TestObjectCreateAndKeys(t *testing.T) {
	r := newRealm(t)
	proto := newPlain(t, r)
	defer proto.Free()

	props := newPlain(t, r)
	for _, name := range []string{"a", "b"} {
		d := newPlain(t, r)
		put(t, r, d, "value", vm.NewString(name))
		put(t, r, d, "enumerable", vm.BooleanValue(name == "a"))
		put(t, r, props, name, d)
		d.Free()
	}

	o := object(t, r, magic.Create, proto, props)
	defer o.Free()
	props.Free()

	p := object(t, r, magic.GetPrototypeOf, o)
	if p.AsObject() != proto.AsObject() {
		t.Error("Expected getPrototypeOf to return the prototype given to create")
	}
	p.Free()

	keys := object(t, r, magic.Keys, o)
	if diff := cmp.Diff([]string{"a"}, arrayStrings(t, r, keys)); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	keys.Free()
	names := object(t, r, magic.GetOwnPropertyNames, o)
	if diff := cmp.Diff([]string{"a", "b"}, arrayStrings(t, r, names)); diff != "" {
		t.Errorf("getOwnPropertyNames mismatch (-want +got):\n%s", diff)
	}
	names.Free()

	nullProto := object(t, r, magic.Create, vm.Null)
	if v := object(t, r, magic.GetPrototypeOf, nullProto); !v.IsNull() {
		t.Errorf("Expected null prototype, got %s", v.Inspect())
	}
	nullProto.Free()

	expectThrow(t, r.DispatchByID(Object, magic.Create, []vm.Value{vm.NumberValue(1)}), "TypeError")
}

func TestObjectIntegrity(t *testing.T) {
	r := newRealm(t)
	o := newPlain(t, r)
	defer o.Free()
	put(t, r, o, "x", vm.NumberValue(1))

	check := func(id magic.ID, want bool) {
		t.Helper()
		if v := object(t, r, id, o); v.AsBoolean() != want {
			t.Errorf("%s = %v, want %v", id, v.AsBoolean(), want)
		}
	}
	check(magic.IsExtensible, true)
	check(magic.IsSealed, false)

	object(t, r, magic.Seal, o).Free()
	check(magic.IsSealed, true)
	check(magic.IsFrozen, false)
	check(magic.IsExtensible, false)
	put(t, r, o, "x", vm.NumberValue(2))
	expectThrow(t, r.Delete(o.AsObject(), "x"), "TypeError")
	expectThrow(t, r.Put(o.AsObject(), "y", vm.True), "TypeError")

	object(t, r, magic.Freeze, o).Free()
	check(magic.IsFrozen, true)
	expectThrow(t, r.Put(o.AsObject(), "x", vm.NumberValue(3)), "TypeError")

	empty := newPlain(t, r)
	object(t, r, magic.PreventExtensions, empty).Free()
	if v := object(t, r, magic.IsFrozen, empty); !v.AsBoolean() {
		t.Error("A non-extensible object without properties is frozen")
	}
	empty.Free()

	expectThrow(t, r.DispatchByID(Object, magic.Freeze, []vm.Value{vm.NumberValue(1)}), "TypeError")
}

func TestObjectIntegrity_InstantiatesBuiltins(t *testing.T) {
	r := newRealm(t)
	math := r.slots[Math]
	mathVal := vm.ObjectValue(math)

	if v := object(t, r, magic.IsFrozen, mathVal); v.AsBoolean() {
		t.Fatal("Math starts extensible")
	}
	object(t, r, magic.Freeze, mathVal).Free()
	if math.NotInstantiatedCount() != 0 {
		t.Errorf("freeze must instantiate every property first, %d pending", math.NotInstantiatedCount())
	}
	if math.Len() != mustDescriptor(Math).Len() {
		t.Errorf("Expected %d properties, got %d", mustDescriptor(Math).Len(), math.Len())
	}
	if v := object(t, r, magic.IsFrozen, mathVal); !v.AsBoolean() {
		t.Error("Expected Math to be frozen")
	}
	expectThrow(t, r.Delete(math, "abs"), "TypeError")
}

func TestObjectPreventExtensions_InstantiatesBuiltins(t *testing.T) {
	r := newRealm(t)
	num := r.slots[Number]

	object(t, r, magic.PreventExtensions, vm.ObjectValue(num)).Free()
	if num.Extensible() {
		t.Fatal("Expected Number to be non-extensible")
	}
	if num.NotInstantiatedCount() != 0 {
		t.Errorf("preventExtensions must instantiate every property first, %d pending", num.NotInstantiatedCount())
	}
	want := num.Len()
	mustGet(t, r, num, "isNaN").Free()
	if num.Len() != want {
		t.Errorf("Expected %d properties after Get, got %d", want, num.Len())
	}
}

func TestObjectKeys_BuiltinsAreNotEnumerable(t *testing.T) {
	r := newRealm(t)
	keys := object(t, r, magic.Keys, vm.ObjectValue(r.slots[Number]))
	defer keys.Free()
	if got := arrayStrings(t, r, keys); len(got) != 0 {
		t.Errorf("Expected no enumerable Number properties, got %v", got)
	}
	names := object(t, r, magic.GetOwnPropertyNames, vm.ObjectValue(r.slots[Number]))
	defer names.Free()
	if got := arrayStrings(t, r, names); len(got) != mustDescriptor(Number).Len() {
		t.Errorf("Expected every Number property, got %v", got)
	}
}
