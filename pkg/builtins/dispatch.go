package builtins

import (
	"ecmacore/pkg/errors"
	"ecmacore/pkg/magic"
	"ecmacore/pkg/vm"
)

// maxFrame is the largest fixed arity a routine may declare.
const maxFrame = 8

// Handler implements one routine. args has exactly the routine's arity, or
// exactly the caller's arguments for variadic routines, and is borrowed: a
// handler copies whatever it keeps or returns.
type Handler func(r *Realm, args []vm.Value) vm.Completion

// Routine is the identity of a built-in routine plus its arity. Function
// objects created for a routine carry {Builtin, Name} in internal properties.
type Routine struct {
	Builtin  ID
	Name     magic.ID
	Arity    int
	Variadic bool // receives the arguments as passed; Arity is only its length
	Handler  Handler
}

func (rt *Routine) String() string {
	if d, ok := Lookup(rt.Builtin); ok {
		if d.Name == rt.Name.String() {
			return d.Name
		}
		return d.Name + "." + rt.Name.String()
	}
	return rt.Name.String()
}

// buildFrame lays out the call frame for rt in dst. Arguments are borrowed
// from args; missing positions hold the shared undefined value and extra
// arguments are dropped. Variadic routines get args unchanged.
func buildFrame(dst []vm.Value, arity int, variadic bool, args []vm.Value) []vm.Value {
	n := arity
	if variadic {
		n = len(args)
	}
	if cap(dst) < n {
		dst = make([]vm.Value, n)
	}
	frame := dst[:n]
	copied := copy(frame, args)
	for i := copied; i < n; i++ {
		frame[i] = vm.Undefined
	}
	return frame
}

// Dispatch calls rt with args normalized to its arity and forwards the
// handler's completion unchanged.
func (r *Realm) Dispatch(rt *Routine, args []vm.Value) vm.Completion {
	if rt == nil || rt.Handler == nil {
		panic(errors.Invariantf("dispatch of a routine without handler"))
	}
	var buf [maxFrame]vm.Value
	frame := buildFrame(buf[:0], rt.Arity, rt.Variadic, args)
	if debugDispatch {
		r.log.Debugf("dispatch %s with %d args (frame %d)", rt, len(args), len(frame))
	}
	return rt.Handler(r, frame)
}

// DispatchByID dispatches the routine named id of the given built-in. An
// unknown pair means a corrupted identity tag and panics.
func (r *Realm) DispatchByID(builtin ID, id magic.ID, args []vm.Value) vm.Completion {
	rt := mustDescriptor(builtin).Routine(id)
	if rt == nil {
		panic(errors.Invariantf("built-in %d has no routine %q", builtin, id))
	}
	return r.Dispatch(rt, args)
}

// Call invokes a callable object: a routine function, or a built-in that
// can be called directly.
func (r *Realm) Call(fn *vm.Object, args []vm.Value) vm.Completion {
	if rt := r.routineOf(fn); rt != nil {
		return r.Dispatch(rt, args)
	}
	if fn.IsBuiltin() {
		if id, ok := fn.Internal(vm.InternalBuiltinID); ok {
			if d := mustDescriptor(ID(id)); d.Call != nil {
				return r.Dispatch(d.Call, args)
			}
		}
	}
	return r.throwTypeError("%s is not a function", fn.Class())
}

// routineOf decodes the identity of a routine function object.
func (r *Realm) routineOf(fn *vm.Object) *Routine {
	name, ok := fn.Internal(vm.InternalRoutineID)
	if !ok {
		return nil
	}
	owner, ok := fn.Internal(vm.InternalBuiltinID)
	if !ok {
		panic(errors.Invariantf("routine function #%d has no owner tag", fn.ID()))
	}
	rt := mustDescriptor(ID(owner)).Routine(magic.ID(name))
	if rt == nil {
		panic(errors.Invariantf("routine function #%d carries unknown routine %q", fn.ID(), magic.ID(name)))
	}
	return rt
}
