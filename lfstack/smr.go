// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfstack

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/concur/smr"
	"code.hybscloud.com/spin"
)

// SMRStack is the safe-memory-reclamation ABA-defense variant.
//
// Popped nodes are handed to an [smr.Domain] instead of being reused
// immediately, so a concurrent pusher cannot resurrect a node's
// identity while a stale reader might still dereference it. This
// trades away LIFO ordering: a node retired during one Dequeue may be
// reclaimed and become reachable again via a later Enqueue before an
// overlapping Dequeue on another goroutine completes, so pops are
// only guaranteed to return the same set of elements that were
// pushed, not necessarily in reverse-push order. Callers that need
// strict LIFO should use [TagStack] or [LockStack] instead.
type SMRStack[T any] struct {
	head   atomix.Uintptr
	domain *smr.Domain
}

// NewSMR creates a new SMR-based Treiber stack backed by domain.
func NewSMR[T any](domain *smr.Domain) *SMRStack[T] {
	return &SMRStack[T]{domain: domain}
}

func (s *SMRStack[T]) Enqueue(elem *Elem[T]) {
	if elem == nil {
		reportNil()
		return
	}
	sw := spin.Wait{}
	for {
		head := s.head.LoadAcquire()
		elem.next = (*Elem[T])(unsafe.Pointer(head))
		newHead := uintptr(unsafe.Pointer(elem))
		if s.head.CompareAndSwapAcqRel(head, newHead) {
			return
		}
		sw.Once()
	}
}

func (s *SMRStack[T]) Dequeue() (*Elem[T], bool) {
	sw := spin.Wait{}
	for {
		head := s.head.LoadAcquire()
		if head == 0 {
			return nil, false
		}
		e := (*Elem[T])(unsafe.Pointer(head))
		next := uintptr(unsafe.Pointer(e.next))
		if s.head.CompareAndSwapAcqRel(head, next) {
			popped := e
			s.domain.Retire(popped, func(v any) {
				v.(*Elem[T]).next = nil
			})
			return popped, true
		}
		sw.Once()
	}
}
