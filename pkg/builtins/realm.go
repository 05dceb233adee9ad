package builtins

import (
	stderrors "errors"
	"fmt"
	"math/rand"

	"github.com/tliron/commonlog"

	"ecmacore/pkg/errors"
	"ecmacore/pkg/vm"
)

const (
	debugDispatch    = false
	debugInstantiate = false
)

// Realm is the engine-instance context: it owns the heap and one slot per
// singleton built-in. Every operation of this package goes through a Realm,
// so two engine instances never share mutable state. A Realm is used from a
// single goroutine.
type Realm struct {
	heap   *vm.Heap
	slots  [idCount]*vm.Object
	strict bool
	random func() float64
	log    commonlog.Logger

	// oom is thrown when an allocation fails; it is created up front because
	// there may be no room left to build it later.
	oom     *vm.Object
	checked bool
	closed  bool
}

// Option configures a Realm.
type Option func(*Realm)

// WithStrict makes detected invariant violations panic instead of being
// logged.
func WithStrict(strict bool) Option {
	return func(r *Realm) { r.strict = strict }
}

// WithRandom replaces the source used by Math.random.
func WithRandom(random func() float64) Option {
	return func(r *Realm) { r.random = random }
}

// NewRealm creates a Realm over heap. No built-in exists until Init. The
// commonlog backend, if any, must be configured before this call.
func NewRealm(heap *vm.Heap, opts ...Option) (*Realm, error) {
	r := &Realm{heap: heap, random: rand.Float64, log: commonlog.GetLogger("ecmacore.builtins")}
	for _, opt := range opts {
		opt(r)
	}
	oom, err := r.newErrorObject("RangeError", "out of memory")
	if err != nil {
		return nil, fmt.Errorf("cannot preallocate out-of-memory exception: %w", err)
	}
	r.oom = oom
	return r, nil
}

// Heap returns the heap the Realm allocates from.
func (r *Realm) Heap() *vm.Heap { return r.heap }

// Strict reports whether invariant violations panic.
func (r *Realm) Strict() bool { return r.strict }

// --- Singleton lifecycle ---

// Init creates the singleton object of built-in id. It must be called once
// per Realm before any access to that built-in.
func (r *Realm) Init(id ID) error {
	d, ok := Lookup(id)
	if !ok || !d.Singleton {
		return &errors.LifecycleError{Builtin: fmt.Sprintf("#%d", id), Msg: "not a singleton built-in"}
	}
	if r.closed {
		return &errors.LifecycleError{Builtin: d.Name, Msg: "realm is closed"}
	}
	if r.slots[id] != nil {
		return &errors.LifecycleError{Builtin: d.Name, Msg: "already initialized"}
	}
	if !r.checked {
		if err := SelfCheck(); err != nil {
			return err
		}
		r.checked = true
	}

	obj, err := r.heap.Alloc(d.Class, nil)
	if err != nil {
		return (&errors.LifecycleError{Builtin: d.Name, Msg: "cannot allocate singleton"}).CausedBy(err)
	}
	obj.InsertInternal(vm.InternalBuiltinID, uint32(id))
	obj.InitLazyMask(d.Len())
	obj.MarkBuiltin()
	r.slots[id] = obj

	r.log.Debugf("initialized %s (object #%d, %d lazy properties)", d.Name, obj.ID(), d.Len())
	return nil
}

// Finalize destroys the singleton of built-in id. The Realm's reference must
// be the last one; otherwise the slot is still cleared and a LifecycleError
// reports the leak.
func (r *Realm) Finalize(id ID) error {
	d, ok := Lookup(id)
	if !ok || !d.Singleton {
		return &errors.LifecycleError{Builtin: fmt.Sprintf("#%d", id), Msg: "not a singleton built-in"}
	}
	obj := r.slots[id]
	if obj == nil {
		return &errors.LifecycleError{Builtin: d.Name, Msg: "not initialized"}
	}
	r.slots[id] = nil

	refs := obj.RefCount()
	obj.Deref()
	if refs != 1 {
		r.log.Errorf("%s finalized with %d outstanding references", d.Name, refs-1)
		return &errors.LifecycleError{
			Builtin: d.Name,
			Msg:     fmt.Sprintf("still referenced %d times at finalize", refs-1),
		}
	}
	r.log.Debugf("finalized %s", d.Name)
	return nil
}

// InitAll initializes every standard built-in in priority order.
func (r *Realm) InitAll() error {
	for _, d := range StandardBuiltins() {
		if err := r.Init(d.ID); err != nil {
			return err
		}
	}
	return nil
}

// FinalizeAll finalizes every initialized built-in. Properties of all
// singletons are cleared first so that references between built-ins (for
// example Math.o = Object) do not keep each other alive.
func (r *Realm) FinalizeAll() error {
	for _, obj := range r.slots {
		if obj != nil {
			obj.ClearProperties()
		}
	}
	var errs []error
	builtins := StandardBuiltins()
	for i := len(builtins) - 1; i >= 0; i-- {
		if r.slots[builtins[i].ID] == nil {
			continue
		}
		if err := r.Finalize(builtins[i].ID); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Close releases the Realm's own objects. Every built-in must already be
// finalized.
func (r *Realm) Close() error {
	if r.closed {
		return nil
	}
	for id, obj := range r.slots {
		if obj != nil {
			return &errors.LifecycleError{Builtin: mustDescriptor(ID(id)).Name, Msg: "still initialized at close"}
		}
	}
	r.closed = true
	r.oom.Deref()
	r.oom = nil
	return nil
}

// Initialized reports whether built-in id currently has a singleton.
func (r *Realm) Initialized(id ID) bool {
	return id < idCount && r.slots[id] != nil
}

// GetSingleton returns the singleton of built-in id with a new reference
// that the caller must release.
func (r *Realm) GetSingleton(id ID) *vm.Object {
	if id >= idCount || r.slots[id] == nil {
		panic(errors.Invariantf("built-in %d accessed before init or after finalize", id))
	}
	obj := r.slots[id]
	obj.Ref()
	return obj
}

// IsSingleton reports whether obj is the singleton of built-in id.
func (r *Realm) IsSingleton(obj *vm.Object, id ID) bool {
	return obj != nil && id < idCount && r.slots[id] == obj
}

// descriptorFor returns the table describing obj's lazy properties.
func (r *Realm) descriptorFor(obj *vm.Object) *Descriptor {
	if _, ok := obj.Internal(vm.InternalRoutineID); ok {
		return mustDescriptor(RoutineFunction)
	}
	id, ok := obj.Internal(vm.InternalBuiltinID)
	if !ok {
		panic(errors.Invariantf("built-in object #%d has no identity tag", obj.ID()))
	}
	return mustDescriptor(ID(id))
}
