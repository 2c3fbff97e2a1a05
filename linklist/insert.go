// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package linklist

import "code.hybscloud.com/spin"

// Insert links elem in immediately after pred. The caller is
// responsible for finding the correct pred for whatever ordering the
// list is meant to maintain — this package only guarantees the link
// operation itself is race-free.
func Insert[T any](pred, elem *Elem[T]) Status {
	if elem == nil {
		reportf("insert NULL element", 0)
		return StatusProgError
	}
	if hasMark(uintptrOf(elem)) {
		reportf("element has low bit set", uintptrOf(elem))
		return StatusProgError
	}

	sw := spin.Wait{}
	next := pred.next.LoadAcquire()
	for {
		if hasMark(next) {
			// pred is marked for removal; we don't know pred's own
			// predecessor, so try inserting after pred's successor
			// instead.
			n := remMark(next)
			if n == 0 {
				return StatusPredMark
			}
			pred = elemFrom[T](n)
			next = pred.next.LoadAcquire()
			continue
		}
		elem.next.StoreRelaxed(next)
		if pred.next.CompareAndSwapAcqRel(next, uintptrOf(elem)) {
			return StatusSuccess
		}
		next = pred.next.LoadAcquire()
		sw.Once()
	}
}
