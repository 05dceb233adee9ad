package builtins

import (
	"fmt"
	"sort"

	"ecmacore/pkg/errors"
	"ecmacore/pkg/magic"
	"ecmacore/pkg/vm"
)

// IndexOf binary-searches the built-in's ascending slot list for id and
// returns its dense index, which is also its bit in the instantiation mask.
// The search is only correct when the list is sorted; SelfCheck verifies
// that before any built-in is created.
func IndexOf(d *Descriptor, id magic.ID) (int, bool) {
	slots := d.Slots
	i := sort.Search(len(slots), func(i int) bool { return slots[i].ID >= id })
	if i < len(slots) && slots[i].ID == id {
		return i, true
	}
	return -1, false
}

// check verifies the static table of one built-in.
func (d *Descriptor) check() error {
	if len(d.Slots) > vm.MaskBits {
		return errors.Invariantf("%s recognizes %d properties, the mask holds %d", d.Name, len(d.Slots), vm.MaskBits)
	}
	for i := range d.Slots {
		s := &d.Slots[i]
		if !s.ID.Valid() {
			return errors.Invariantf("%s slot %d has invalid magic id %d", d.Name, i, s.ID)
		}
		if i > 0 && d.Slots[i-1].ID >= s.ID {
			return errors.Invariantf("%s property list is not strictly ascending at %q (after %q)",
				d.Name, s.ID, d.Slots[i-1].ID)
		}
		if s.Kind == SlotRoutine {
			if s.Routine == nil || s.Routine.Handler == nil {
				return errors.Invariantf("%s.%s has no handler", d.Name, s.ID)
			}
			if s.Routine.Arity < 0 || s.Routine.Arity > maxFrame {
				return errors.Invariantf("%s.%s arity %d exceeds frame size %d", d.Name, s.ID, s.Routine.Arity, maxFrame)
			}
		}
	}
	return nil
}

// SelfCheck verifies every registered built-in table. It runs once per
// Realm before the first built-in is created.
func SelfCheck() error {
	for _, d := range registry {
		if d == nil {
			continue
		}
		if err := d.check(); err != nil {
			return fmt.Errorf("built-in table self-check: %w", err)
		}
	}
	return nil
}
