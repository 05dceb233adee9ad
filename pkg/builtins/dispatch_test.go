package builtins

import (
	"math"
	"testing"

	"ecmacore/pkg/errors"
	"ecmacore/pkg/magic"
	"ecmacore/pkg/vm"
)

func TestBuildFrame(t *testing.T) {
	one, two, three := vm.NumberValue(1), vm.NumberValue(2), vm.NumberValue(3)
	tests := []struct {
		name     string
		arity    int
		variadic bool
		args     []vm.Value
		want     []vm.Value
	}{
		{"exact", 2, false, []vm.Value{one, two}, []vm.Value{one, two}},
		{"padded", 3, false, []vm.Value{one}, []vm.Value{one, vm.Undefined, vm.Undefined}},
		{"extra dropped", 1, false, []vm.Value{one, two, three}, []vm.Value{one}},
		{"no args", 0, false, nil, []vm.Value{}},
		{"variadic keeps all", 2, true, []vm.Value{one, two, three}, []vm.Value{one, two, three}},
		{"variadic empty", 2, true, nil, []vm.Value{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf [maxFrame]vm.Value
			got := buildFrame(buf[:0], tt.arity, tt.variadic, tt.args)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected frame of %d, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if !vm.SameValue(got[i], tt.want[i]) {
					t.Errorf("frame[%d] = %s, want %s", i, got[i].Inspect(), tt.want[i].Inspect())
				}
			}
		})
	}
}

func TestDispatch_ArgumentsAreBorrowed(t *testing.T) {
	r := newRealm(t)
	var seen int
	rt := &Routine{Arity: 2, Handler: func(r *Realm, args []vm.Value) vm.Completion {
		seen = len(args)
		return vm.Normal(args[1].Copy())
	}}

	extra := vm.NewString("extra")
	arg := vm.NewString("kept")
	c := r.Dispatch(rt, []vm.Value{vm.Undefined, arg, extra})
	v := mustNormal(t, c)
	if seen != 2 {
		t.Errorf("Expected the handler to see 2 arguments, got %d", seen)
	}
	if arg.RefCount() != 2 {
		t.Errorf("Expected the returned copy to be the only new reference, refcount %d", arg.RefCount())
	}
	if extra.RefCount() != 1 {
		t.Errorf("Dropped arguments must not be retained or released, refcount %d", extra.RefCount())
	}
	v.Free()
	arg.Free()
	extra.Free()
}

func TestDispatchByID(t *testing.T) {
	r := newRealm(t)
	v := mustNormal(t, r.DispatchByID(Math, magic.Abs, []vm.Value{vm.NumberValue(-2)}))
	if v.AsNumber() != 2 {
		t.Errorf("Expected abs(-2) = 2, got %s", v.Inspect())
	}
	v = mustNormal(t, r.DispatchByID(Math, magic.Abs, nil))
	if !math.IsNaN(v.AsNumber()) {
		t.Errorf("Expected abs() = NaN, got %s", v.Inspect())
	}
}

func TestDispatchByID_UnknownPanics(t *testing.T) {
	r := newRealm(t)
	defer func() {
		if _, ok := recover().(*errors.InvariantError); !ok {
			t.Error("Expected an invariant panic for an unknown routine")
		}
	}()
	r.DispatchByID(Math, magic.Keys, nil)
}

func TestCall(t *testing.T) {
	r := newRealm(t)
	fn := mustGet(t, r, r.slots[Math], "max")
	defer fn.Free()

	v := mustNormal(t, r.Call(fn.AsObject(), []vm.Value{vm.NumberValue(3), vm.NumberValue(9), vm.NumberValue(4)}))
	if v.AsNumber() != 9 {
		t.Errorf("Expected max(3, 9, 4) = 9, got %s", v.Inspect())
	}

	// Math itself is not callable.
	expectThrow(t, r.Call(r.slots[Math], nil), "TypeError")

	plain, _ := r.heap.Alloc(vm.ClassObject, nil)
	defer plain.Deref()
	expectThrow(t, r.Call(plain, nil), "TypeError")
}

func TestRoutineString(t *testing.T) {
	rt := mustDescriptor(Object).Routine(magic.GetOwnPropertyNames)
	if rt.String() != "Object.getOwnPropertyNames" {
		t.Errorf("Unexpected routine name %s", rt)
	}
	if call := mustDescriptor(Number).Call; call.String() != "Number" {
		t.Errorf("Unexpected call routine name %s", call)
	}
}
