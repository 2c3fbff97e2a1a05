// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package linklist

// Remove unlinks elem from the list, searching forward from pred.
// Removal is two-phase: elem's next pointer is marked first, then its
// predecessor is CAS'd past it — so a concurrent insert after elem,
// or a concurrent remove of elem started by another goroutine, always
// sees a consistent state.
func Remove[T any](pred, elem *Elem[T]) Status {
	for pred != nil {
		this := pred.next.LoadAcquire()
		if hasMark(this) {
			// pred is marked for removal; it must be removed first,
			// but that is its own predecessor's responsibility.
			return StatusPredMark
		}
		if this == uintptrOf(elem) {
			// Found elem: mark its next pointer, then unlink it.
			next := markForRemoval(elem)
			if pred.next.CompareAndSwapAcqRel(this, remMark(next)) {
				return StatusSuccess
			}
			// Either another goroutine helped remove elem, or pred
			// was itself marked for removal in the meantime, or some
			// other element was inserted between pred and elem.
			// Retry from the same pred with a fresh read.
			continue
		}
		if this == 0 {
			break
		}
		pred = elemFrom[T](this)
	}
	return StatusNotFound
}

// markForRemoval sets elem's remove mark if not already set and
// returns the (possibly already-marked) previous next pointer.
func markForRemoval[T any](elem *Elem[T]) uintptr {
	for {
		old := elem.next.LoadAcquire()
		if hasMark(old) {
			return old
		}
		if elem.next.CompareAndSwapAcqRel(old, addMark(old)) {
			return old
		}
	}
}
