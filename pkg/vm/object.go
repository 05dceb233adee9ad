package vm

import (
	"fmt"

	"ecmacore/pkg/errors"
)

// Class is the [[Class]] tag stored in every object's internal properties.
type Class uint32

const (
	ClassObject Class = iota
	ClassFunction
	ClassArray
	ClassError
	ClassMath
)

func (c Class) String() string {
	switch c {
	case ClassObject:
		return "Object"
	case ClassFunction:
		return "Function"
	case ClassArray:
		return "Array"
	case ClassError:
		return "Error"
	case ClassMath:
		return "Math"
	default:
		return "Unknown"
	}
}

// Object is a refcounted heap entity with an ordered property store.
// Objects are created by Heap.Alloc and destroyed when their reference count
// drops to zero.
type Object struct {
	heap *Heap
	id   uint64
	refs int

	// Named properties in insertion order; names indexes them.
	props []*Property
	names map[string]*Property

	internal []internalProperty

	prototype  *Object // owned reference, nil means null
	extensible bool
	builtin    bool

	// mayRefYounger is the write-barrier flag consulted by the collector's
	// root scan.
	mayRefYounger bool
	freed         bool
}

// ID is the allocation serial number, unique per heap.
func (o *Object) ID() uint64 { return o.id }

// Ref takes a new reference to o.
func (o *Object) Ref() {
	if o.freed {
		panic(errors.Invariantf("ref of freed object #%d", o.id))
	}
	o.refs++
}

// Deref releases a reference; the object is deallocated when none remain.
func (o *Object) Deref() {
	if o.freed || o.refs <= 0 {
		panic(errors.Invariantf("deref of freed object #%d", o.id))
	}
	o.refs--
	if o.refs == 0 {
		o.release()
	}
}

// RefCount returns the current reference count.
func (o *Object) RefCount() int { return o.refs }

// Freed reports whether the object has been deallocated.
func (o *Object) Freed() bool { return o.freed }

func (o *Object) release() {
	o.freed = true
	// Detach before releasing children so cycles through o stop here.
	props := o.props
	o.props = nil
	o.names = nil
	for _, p := range props {
		p.release()
	}
	if o.prototype != nil {
		proto := o.prototype
		o.prototype = nil
		proto.Deref()
	}
	o.heap.untrack(o)
}

func (o *Object) Class() Class {
	c, _ := o.Internal(InternalClass)
	return Class(c)
}

// IsCallable reports whether o is a function object.
func (o *Object) IsCallable() bool { return o.Class() == ClassFunction }

// IsBuiltin reports whether o is a recognized built-in whose own properties
// may still be instantiated lazily.
func (o *Object) IsBuiltin() bool { return o.builtin }

// MarkBuiltin flags o as a recognized built-in.
func (o *Object) MarkBuiltin() { o.builtin = true }

// Prototype returns the prototype link without taking a reference.
func (o *Object) Prototype() *Object { return o.prototype }

// SetPrototype replaces the prototype link, taking a reference to proto.
func (o *Object) SetPrototype(proto *Object) {
	if proto != nil {
		proto.Ref()
		o.heap.barrierObject(o, proto)
	}
	if o.prototype != nil {
		o.prototype.Deref()
	}
	o.prototype = proto
}

func (o *Object) Extensible() bool { return o.extensible }

// PreventExtensions makes o non-extensible. There is no way back.
func (o *Object) PreventExtensions() { o.extensible = false }

// MayRefYounger returns the write-barrier flag.
func (o *Object) MayRefYounger() bool { return o.mayRefYounger }

// --- Property store ---

// Lookup returns the own named property, or nil. It has no side effects.
func (o *Object) Lookup(name string) *Property {
	if o.names == nil {
		return nil
	}
	return o.names[name]
}

// InsertData adds a data property holding a copy of value. The caller keeps
// its own reference. Inserting a name that already exists is a programming
// error; callers check with Lookup first.
func (o *Object) InsertData(name string, value Value, attrs Attributes) *Property {
	o.mustBeAbsent(name)
	p := &Property{kind: PropertyData, name: name, attrs: attrs, value: value.Copy()}
	o.append(p)
	o.heap.barrier(o, p.value)
	return p
}

// InsertAccessor adds an accessor property, taking references to getter and
// setter. Nil means undefined. The writable attribute is ignored.
func (o *Object) InsertAccessor(name string, getter, setter *Object, attrs Attributes) *Property {
	o.mustBeAbsent(name)
	p := &Property{kind: PropertyAccessor, name: name, attrs: attrs &^ AttrWritable}
	o.append(p)
	o.setAccessorPair(p, getter, setter)
	return p
}

// SetValue replaces the value of a data property with a copy of value. The
// writable attribute is the caller's business.
func (o *Object) SetValue(p *Property, value Value) {
	if p.kind != PropertyData {
		panic(errors.Invariantf("SetValue on %s property %q", p.kind, p.name))
	}
	old := p.value
	p.value = value.Copy()
	o.heap.barrier(o, p.value)
	old.Free()
}

// Remove deletes the named property and releases its values. It reports
// whether a property was removed.
func (o *Object) Remove(name string) bool {
	p := o.Lookup(name)
	if p == nil {
		return false
	}
	delete(o.names, name)
	for i, q := range o.props {
		if q == p {
			o.props = append(o.props[:i], o.props[i+1:]...)
			break
		}
	}
	p.release()
	return true
}

// Properties returns the named properties in insertion order.
func (o *Object) Properties() []*Property {
	out := make([]*Property, len(o.props))
	copy(out, o.props)
	return out
}

// OwnNames returns own property names in insertion order.
func (o *Object) OwnNames() []string {
	names := make([]string, len(o.props))
	for i, p := range o.props {
		names[i] = p.name
	}
	return names
}

// Len returns the number of named properties.
func (o *Object) Len() int { return len(o.props) }

// ClearProperties removes every named property, releasing what they own.
// Internal properties are kept.
func (o *Object) ClearProperties() {
	props := o.props
	o.props = nil
	o.names = nil
	for _, p := range props {
		p.release()
	}
}

func (o *Object) append(p *Property) {
	if o.names == nil {
		o.names = make(map[string]*Property)
	}
	o.names[p.name] = p
	o.props = append(o.props, p)
}

func (o *Object) mustBeAbsent(name string) {
	if o.freed {
		panic(errors.Invariantf("property %q inserted into freed object #%d", name, o.id))
	}
	if o.Lookup(name) != nil {
		panic(errors.Invariantf("property %q already exists on object #%d", name, o.id))
	}
}

func (o *Object) setAccessorPair(p *Property, getter, setter *Object) {
	if getter != nil {
		getter.Ref()
		o.heap.barrierObject(o, getter)
	}
	if setter != nil {
		setter.Ref()
		o.heap.barrierObject(o, setter)
	}
	oldGet, oldSet := p.getter, p.setter
	p.getter, p.setter = getter, setter
	if oldGet != nil {
		oldGet.Deref()
	}
	if oldSet != nil {
		oldSet.Deref()
	}
}

// --- Internal properties ---

// Internal returns the payload of an internal property.
func (o *Object) Internal(slot InternalSlot) (uint32, bool) {
	for _, ip := range o.internal {
		if ip.slot == slot {
			return ip.payload, true
		}
	}
	return 0, false
}

// InsertInternal adds an internal property. Each slot can be written once;
// only the instantiation mask changes afterwards, through its own API.
func (o *Object) InsertInternal(slot InternalSlot, payload uint32) {
	if _, exists := o.Internal(slot); exists {
		panic(errors.Invariantf("internal property %s already exists on object #%d", slot, o.id))
	}
	o.internal = append(o.internal, internalProperty{slot: slot, payload: payload})
}

func (o *Object) internalRef(slot InternalSlot) *uint32 {
	for i := range o.internal {
		if o.internal[i].slot == slot {
			return &o.internal[i].payload
		}
	}
	return nil
}

func (o *Object) String() string {
	return fmt.Sprintf("[object %s #%d]", o.Class(), o.id)
}
