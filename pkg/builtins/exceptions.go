package builtins

import (
	stderrors "errors"
	"fmt"

	"ecmacore/pkg/errors"
	"ecmacore/pkg/vm"
)

// ThrowError carries an exception value out of operations that return Go
// errors. It owns one reference to Value.
type ThrowError struct {
	Value vm.Value
}

func (e *ThrowError) Error() string {
	return "uncaught exception: " + describeException(e.Value)
}

// Completion converts the error into a throw completion, handing over the
// exception reference.
func (e *ThrowError) Completion() vm.Completion {
	return vm.Throw(e.Value)
}

// AsCompletion turns an error returned by this package into a throw
// completion.
func (r *Realm) AsCompletion(err error) vm.Completion {
	var te *ThrowError
	if stderrors.As(err, &te) {
		return te.Completion()
	}
	var re *errors.ResourceError
	if stderrors.As(err, &re) {
		return r.throwOOM()
	}
	panic(errors.Invariantf("unexpected error inside the engine: %v", err))
}

func exceptionParts(v vm.Value) (name, msg string) {
	if !v.IsObject() {
		return "Error", v.Inspect()
	}
	obj := v.AsObject()
	name = "Error"
	if p := obj.Lookup("name"); p != nil && p.Value().IsString() {
		name = p.Value().AsString()
	}
	if p := obj.Lookup("message"); p != nil && p.Value().IsString() {
		msg = p.Value().AsString()
	}
	return name, msg
}

func describeException(v vm.Value) string {
	if !v.IsObject() {
		return v.Inspect()
	}
	name, msg := exceptionParts(v)
	if msg == "" {
		return name
	}
	return name + ": " + msg
}

// UncaughtError converts a throw completion into a Go error and releases the
// exception value.
func UncaughtError(c vm.Completion) *errors.RuntimeError {
	name, msg := exceptionParts(c.Value())
	c.Free()
	return &errors.RuntimeError{Name: name, Msg: msg}
}

// DescribeException renders an exception value as "Name: message".
func DescribeException(v vm.Value) string { return describeException(v) }

func (r *Realm) newErrorObject(name, message string) (*vm.Object, error) {
	obj, err := r.heap.Alloc(vm.ClassError, nil)
	if err != nil {
		return nil, err
	}
	nameVal := vm.NewString(name)
	obj.InsertData("name", nameVal, vm.AttrWritable|vm.AttrConfigurable)
	nameVal.Free()
	msgVal := vm.NewString(message)
	obj.InsertData("message", msgVal, vm.AttrWritable|vm.AttrConfigurable)
	msgVal.Free()
	return obj, nil
}

func (r *Realm) throwError(name, format string, args ...any) vm.Completion {
	obj, err := r.newErrorObject(name, fmt.Sprintf(format, args...))
	if err != nil {
		return r.throwOOM()
	}
	return vm.Throw(vm.ObjectValue(obj))
}

func (r *Realm) throwTypeError(format string, args ...any) vm.Completion {
	return r.throwError("TypeError", format, args...)
}

func (r *Realm) throwRangeError(format string, args ...any) vm.Completion {
	return r.throwError("RangeError", format, args...)
}

// throwOOM throws the preallocated out-of-memory exception.
func (r *Realm) throwOOM() vm.Completion {
	r.log.Warningf("allocation failed: heap holds %d of %d objects", r.heap.Live(), r.heap.Limit())
	r.oom.Ref()
	return vm.Throw(vm.ObjectValue(r.oom))
}

func (r *Realm) oomError() error {
	c := r.throwOOM()
	return &ThrowError{Value: c.Take()}
}
