// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfstack

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// TagStack is the tagged-pointer ABA-defense variant: head and a
// monotone tag are packed into one double-word and updated with a
// single CAS, the same technique lfring's 128-bit indirect ring
// variants use to pack cycle and value into one atomix.Uint128 entry.
// The tag increments on every successful push and pop, so a thread
// that observes the same head pointer twice cannot mistake it for the
// same logical state if a push/pop/push cycle occurred in between.
type TagStack[T any] struct {
	head atomix.Uint128 // lo = *Elem[T] as uintptr, hi = tag
}

// NewTag creates a new tagged-pointer Treiber stack.
func NewTag[T any]() *TagStack[T] {
	return &TagStack[T]{}
}

func (s *TagStack[T]) Enqueue(elem *Elem[T]) {
	if elem == nil {
		reportNil()
		return
	}
	sw := spin.Wait{}
	for {
		lo, tag := s.head.LoadAcquire()
		elem.next = (*Elem[T])(unsafe.Pointer(uintptr(lo)))
		newLo := uint64(uintptr(unsafe.Pointer(elem)))
		if s.head.CompareAndSwapAcqRel(lo, tag, newLo, tag+1) {
			return
		}
		sw.Once()
	}
}

func (s *TagStack[T]) Dequeue() (*Elem[T], bool) {
	sw := spin.Wait{}
	for {
		lo, tag := s.head.LoadAcquire()
		if lo == 0 {
			return nil, false
		}
		e := (*Elem[T])(unsafe.Pointer(uintptr(lo)))
		next := e.next
		newLo := uint64(uintptr(unsafe.Pointer(next)))
		if s.head.CompareAndSwapAcqRel(lo, tag, newLo, tag+1) {
			e.next = nil
			return e, true
		}
		sw.Once()
	}
}
