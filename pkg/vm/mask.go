package vm

import (
	"math/bits"

	"ecmacore/pkg/errors"
)

// MaskBits is the number of lazily instantiable properties one object can
// track: two 32-bit internal properties.
const MaskBits = 64

// InitLazyMask marks the first n recognized properties of o as not yet
// instantiated. It may be called once per object. After that bits can only
// be cleared, which keeps the instantiate-once invariant by construction.
func (o *Object) InitLazyMask(n int) {
	if n < 0 || n > MaskBits {
		panic(errors.Invariantf("lazy mask of %d bits does not fit in %d", n, MaskBits))
	}
	if _, exists := o.Internal(InternalNonInstantiatedMask0_31); exists {
		panic(errors.Invariantf("lazy mask already initialized on object #%d", o.id))
	}
	full := uint64(1)<<uint(n) - 1
	if n == MaskBits {
		full = ^uint64(0)
	}
	o.InsertInternal(InternalNonInstantiatedMask0_31, uint32(full))
	o.InsertInternal(InternalNonInstantiatedMask32_63, uint32(full>>32))
}

// HasLazyMask reports whether InitLazyMask was called on o.
func (o *Object) HasLazyMask() bool {
	_, ok := o.Internal(InternalNonInstantiatedMask0_31)
	return ok
}

func (o *Object) maskWord(bit int) (*uint32, uint32) {
	if bit < 0 || bit >= MaskBits {
		panic(errors.Invariantf("lazy mask bit %d out of range", bit))
	}
	slot := InternalNonInstantiatedMask0_31
	if bit >= 32 {
		slot = InternalNonInstantiatedMask32_63
	}
	return o.internalRef(slot), uint32(1) << uint(bit%32)
}

// NotInstantiated reports whether the property at dense index bit is still
// waiting to be instantiated.
func (o *Object) NotInstantiated(bit int) bool {
	word, m := o.maskWord(bit)
	return word != nil && *word&m != 0
}

// ClearNotInstantiated moves the property at bit to the instantiated state.
// It returns false if the bit was already clear.
func (o *Object) ClearNotInstantiated(bit int) bool {
	word, m := o.maskWord(bit)
	if word == nil || *word&m == 0 {
		return false
	}
	*word &^= m
	return true
}

// NotInstantiatedCount returns how many properties are still pending.
func (o *Object) NotInstantiatedCount() int {
	lo, _ := o.Internal(InternalNonInstantiatedMask0_31)
	hi, _ := o.Internal(InternalNonInstantiatedMask32_63)
	return bits.OnesCount32(lo) + bits.OnesCount32(hi)
}
