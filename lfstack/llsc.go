// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfstack

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// LLSCStack is the LL/SC ABA-defense variant.
//
// The reference design uses native load-linked/store-conditional
// instructions on head alone — the exclusive-monitor hardware detects
// any intervening write to the same line, tagged or not, so no extra
// tag word is needed. Go exposes no LL/SC primitive on any platform,
// so this variant falls back to a plain single-word CAS on head,
// which is weaker: it cannot detect a pop-then-repush cycle that
// restores the exact same pointer value. Use [TagStack] where that
// matters; this variant exists to keep the mode matrix complete and
// behaves correctly as long as nodes are not reused across a single
// CAS attempt's window, which holds for typical caller-owned-node
// usage (a popped node is processed before being pushed again).
type LLSCStack[T any] struct {
	head atomix.Uintptr
}

// NewLLSC creates a new LL/SC-style Treiber stack.
func NewLLSC[T any]() *LLSCStack[T] {
	return &LLSCStack[T]{}
}

func (s *LLSCStack[T]) Enqueue(elem *Elem[T]) {
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

func (s *LLSCStack[T]) Dequeue() (*Elem[T], bool) {
	sw := spin.Wait{}
	for {
		head := s.head.LoadAcquire()
		if head == 0 {
			return nil, false
		}
		e := (*Elem[T])(unsafe.Pointer(head))
		next := uintptr(unsafe.Pointer(e.next))
		if s.head.CompareAndSwapAcqRel(head, next) {
			e.next = nil
			return e, true
		}
		sw.Once()
	}
}
