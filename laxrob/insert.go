// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package laxrob

import "unsafe"

func elemToUintptr[T any](e *Elem[T]) uintptr {
	return uintptr(unsafe.Pointer(e))
}

func uintptrToElem[T any](p uintptr) *Elem[T] {
	return (*Elem[T])(unsafe.Pointer(p))
}

func before(sn, h uint32) bool { return int32(sn-h) < 0 }
func after(sn, t uint32) bool  { return int32(sn-t) >= 0 }

// Insert adds a single element to the reorder buffer, retiring any
// elements that become in-order as a result.
func (rob *ROB[T]) Insert(elem *Elem[T]) {
	elem.next = nil
	rob.InsertList(elem)
}

// InsertList adds list and every element reachable from it through
// the package-private next link, retiring any elements that become
// in-order as a result. [NewElem] leaves that link nil and nothing
// outside this package can set it, so from outside the package a list
// is a single element; [ROB.Insert] clears the link before calling
// InsertList.
func (rob *ROB[T]) InsertList(list *Elem[T]) {
	last := list
	for last.next != nil {
		last = last.next
	}

	list = rob.acquireOrEnqueue(list, last)
	for list != nil {
		rob.insertElems(list)
		list = rob.releaseOrDequeue()
	}
}

func (rob *ROB[T]) acquireOrEnqueue(list, last *Elem[T]) *Elem[T] {
	for {
		old := rob.pending.LoadAcquire()
		if isBusy(old) {
			last.next = uintptrToElem[T](old)
			if rob.pending.CompareAndSwapAcqRel(old, elemToUintptr(list)) {
				return nil // enqueued for the current robber to process
			}
		} else {
			last.next = nil // undo any spurious join attempt
			if rob.pending.CompareAndSwapAcqRel(old, 0) {
				return list // acquired the ROB, we are the robber
			}
		}
	}
}

func (rob *ROB[T]) releaseOrDequeue() *Elem[T] {
	for {
		old := rob.pending.LoadAcquire()
		if old == 0 {
			if rob.pending.CompareAndSwapAcqRel(old, pendingIdle) {
				return nil
			}
		} else {
			if rob.pending.CompareAndSwapAcqRel(old, 0) {
				return uintptrToElem[T](old)
			}
		}
	}
}

func (rob *ROB[T]) insertElems(list *Elem[T]) {
	for list != nil {
		elem := list
		next := list.next
		elem.next = nil

		switch {
		case before(elem.sn, rob.oldest):
			// Straggler: arrived after its slot was already retired.
			rob.retireList(elem)
		case after(elem.sn, rob.oldest+rob.size):
			delta := elem.sn - (rob.oldest + rob.size - 1)
			rob.retireSlots(delta)
			rob.ring[elem.sn&rob.mask] = elem
		default:
			elem.next = rob.ring[elem.sn&rob.mask]
			rob.ring[elem.sn&rob.mask] = elem
		}
		list = next
	}
	if len(rob.vec) != 0 {
		rob.flushVec()
	}
}

func (rob *ROB[T]) retireList(list *Elem[T]) {
	for list != nil {
		elem := list
		next := list.next
		elem.next = nil
		rob.vec = append(rob.vec, elem)
		if uint32(len(rob.vec)) == rob.vecsz {
			rob.flushVec()
		}
		list = next
	}
}

func (rob *ROB[T]) retireSlots(nslots uint32) {
	nretire := nslots
	if nretire > rob.size {
		nretire = rob.size
	}
	for i := uint32(0); i < nretire; i++ {
		slot := rob.oldest & rob.mask
		if list := rob.ring[slot]; list != nil {
			rob.ring[slot] = nil
			rob.retireList(list)
		}
		rob.oldest++
	}
	rob.oldest += nslots - nretire
}

func (rob *ROB[T]) flushVec() {
	rob.cb(rob.vec)
	rob.vec = rob.vec[:0]
}
