package builtins

import (
	"math"
	"testing"

	"ecmacore/pkg/magic"
	"ecmacore/pkg/vm"
)

func TestGet_PrototypeChain(t *testing.T) {
	r := newRealm(t)
	child := object(t, r, magic.Create, vm.ObjectValue(r.slots[Math]))
	defer child.Free()

	v := mustGet(t, r, child.AsObject(), "PI")
	if v.AsNumber() != math.Pi {
		t.Errorf("Expected PI through the prototype, got %s", v.Inspect())
	}
	if child.AsObject().Lookup("PI") != nil {
		t.Error("Inherited lookups must not copy the property")
	}
	if r.slots[Math].Lookup("PI") == nil {
		t.Error("Expected PI instantiated on Math itself")
	}

	if v := mustGet(t, r, child.AsObject(), "missing"); !v.IsUndefined() {
		t.Errorf("Expected undefined, got %s", v.Inspect())
	}

	has, err := r.HasProperty(child.AsObject(), "sqrt")
	if err != nil || !has {
		t.Errorf("Expected sqrt to be found on the chain, got %v, %v", has, err)
	}
}

func TestPut(t *testing.T) {
	r := newRealm(t)
	o := newPlain(t, r)
	defer o.Free()

	put(t, r, o, "a", vm.NumberValue(1))
	p := o.AsObject().Lookup("a")
	if p == nil || p.Attributes() != vm.AttrAll {
		t.Fatalf("Expected a new writable, enumerable, configurable property, got %v", p)
	}
	put(t, r, o, "a", vm.NumberValue(2))
	if p.Value().AsNumber() != 2 {
		t.Errorf("Expected the value replaced, got %s", p.Value().Inspect())
	}

	// A read-only inherited property blocks the assignment.
	child := object(t, r, magic.Create, vm.ObjectValue(r.slots[Math]))
	defer child.Free()
	expectThrow(t, r.Put(child.AsObject(), "E", vm.NumberValue(1)), "TypeError")

	// A writable inherited data property is shadowed.
	grandchild := object(t, r, magic.Create, o)
	defer grandchild.Free()
	put(t, r, grandchild, "a", vm.NumberValue(3))
	if p.Value().AsNumber() != 2 {
		t.Error("Assignment through the chain must not change the prototype")
	}
	if own := grandchild.AsObject().Lookup("a"); own == nil || own.Value().AsNumber() != 3 {
		t.Error("Expected an own property on the child")
	}
}

func TestPut_InheritedSetter(t *testing.T) {
	r := newRealm(t)
	proto := newPlain(t, r)
	defer proto.Free()
	abs := mustGet(t, r, r.slots[Math], "abs")
	defer abs.Free()

	attrs := newPlain(t, r)
	put(t, r, attrs, "set", abs)
	object(t, r, magic.DefineProperty, proto, vm.NewString("s"), attrs).Free()
	attrs.Free()

	child := object(t, r, magic.Create, proto)
	defer child.Free()
	put(t, r, child, "s", vm.NumberValue(-1))
	if child.AsObject().Lookup("s") != nil {
		t.Error("An inherited setter must handle the assignment")
	}
	if v := mustGet(t, r, child.AsObject(), "s"); !v.IsUndefined() {
		t.Errorf("Expected undefined from a setter-only accessor, got %s", v.Inspect())
	}
}

func TestDelete(t *testing.T) {
	r := newRealm(t)
	if v := mustNormal(t, r.Delete(r.slots[Object], "nothing")); !v.AsBoolean() {
		t.Error("Deleting a missing property succeeds")
	}
	if v := mustNormal(t, r.Delete(r.slots[Math], "random")); !v.AsBoolean() {
		t.Error("Routines are configurable")
	}
	if v := mustGet(t, r, r.slots[Math], "random"); !v.IsUndefined() {
		t.Errorf("Expected random gone, got %s", v.Inspect())
	}
	expectThrow(t, r.Delete(r.slots[Number], "length"), "TypeError")
}

func TestDefineOwnProperty_InstantiatesFirst(t *testing.T) {
	r := newRealm(t)
	obj := r.slots[Object]
	idx, _ := IndexOf(mustDescriptor(Object), magic.Create)

	ok, err := r.DefineOwnProperty(obj, "create", vm.PropertyDescriptor{Value: vm.Null, HasValue: true})
	if err != nil || !ok {
		t.Fatalf("Expected the configurable routine to be redefinable, got %v, %v", ok, err)
	}
	if obj.NotInstantiated(idx) {
		t.Error("Expected the bit cleared before the definition")
	}
	if v := mustGet(t, r, obj, "create"); !v.IsNull() {
		t.Errorf("Expected the redefined value, got %s", v.Inspect())
	}
}
