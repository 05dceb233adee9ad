package vm

import (
	"fmt"
	"sort"

	"ecmacore/pkg/errors"
)

// Heap owns the objects of one engine instance. It counts live objects,
// enforces an optional object limit and keeps the remembered set: objects
// whose may-reference-younger flag was raised by a store since the last
// collector scan.
type Heap struct {
	objects    map[uint64]*Object
	nextID     uint64
	limit      int // 0 means unlimited
	peak       int
	remembered []*Object
}

// NewHeap creates a heap that refuses to hold more than limit live objects.
// A limit of zero disables the check.
func NewHeap(limit int) *Heap {
	return &Heap{
		objects: make(map[uint64]*Object),
		limit:   limit,
	}
}

// Alloc creates an extensible object of the given class with a reference
// count of one. A non-nil proto gains a reference. Allocation fails with a
// ResourceError once the limit is reached.
func (h *Heap) Alloc(class Class, proto *Object) (*Object, error) {
	if err := h.Reserve(1); err != nil {
		return nil, err
	}
	h.nextID++
	o := &Object{
		heap:       h,
		id:         h.nextID,
		refs:       1,
		extensible: true,
	}
	o.InsertInternal(InternalClass, uint32(class))
	h.objects[o.id] = o
	if len(h.objects) > h.peak {
		h.peak = len(h.objects)
	}
	if proto != nil {
		o.SetPrototype(proto)
	}
	return o, nil
}

// Reserve reports whether n more objects fit under the limit, without
// allocating anything.
func (h *Heap) Reserve(n int) error {
	if h.limit > 0 && len(h.objects)+n > h.limit {
		return &errors.ResourceError{Msg: fmt.Sprintf("object limit %d reached (%d live)", h.limit, len(h.objects))}
	}
	return nil
}

// Live returns the number of objects that have not been deallocated.
func (h *Heap) Live() int { return len(h.objects) }

// Peak returns the highest live object count seen.
func (h *Heap) Peak() int { return h.peak }

// Limit returns the live object limit (0 = unlimited).
func (h *Heap) Limit() int { return h.limit }

// SetLimit changes the live object limit.
func (h *Heap) SetLimit(limit int) { h.limit = limit }

// LiveObjects returns the live objects ordered by allocation.
func (h *Heap) LiveObjects() []*Object {
	out := make([]*Object, 0, len(h.objects))
	for _, o := range h.objects {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Remembered returns the objects whose may-reference-younger flag is set.
func (h *Heap) Remembered() []*Object {
	out := make([]*Object, len(h.remembered))
	copy(out, h.remembered)
	return out
}

// ResetRemembered clears every may-reference-younger flag. The collector
// calls it after it has rescanned the remembered set.
func (h *Heap) ResetRemembered() {
	for _, o := range h.remembered {
		o.mayRefYounger = false
	}
	h.remembered = h.remembered[:0]
}

// barrier records that owner now stores v. Only heap references matter;
// booleans, numbers and the sentinels never touch the flag.
func (h *Heap) barrier(owner *Object, v Value) {
	if !v.IsReference() {
		return
	}
	h.remember(owner)
}

func (h *Heap) barrierObject(owner *Object, _ *Object) {
	h.remember(owner)
}

func (h *Heap) remember(owner *Object) {
	if owner.mayRefYounger {
		return
	}
	owner.mayRefYounger = true
	h.remembered = append(h.remembered, owner)
}

func (h *Heap) untrack(o *Object) {
	delete(h.objects, o.id)
	if o.mayRefYounger {
		o.mayRefYounger = false
		for i, r := range h.remembered {
			if r == o {
				h.remembered = append(h.remembered[:i], h.remembered[i+1:]...)
				break
			}
		}
	}
}
