// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfstack

import "sync"

// LockStack is the lock-based ABA-defense variant: a single
// sync.Mutex (not a spin lock) serializes every push and pop, so no
// ABA protocol is needed.
type LockStack[T any] struct {
	mu   sync.Mutex
	head *Elem[T]
}

// NewLock creates a new lock-based Treiber stack.
func NewLock[T any]() *LockStack[T] {
	return &LockStack[T]{}
}

func (s *LockStack[T]) Enqueue(elem *Elem[T]) {
	if elem == nil {
		reportNil()
		return
	}
	s.mu.Lock()
	elem.next = s.head
	s.head = elem
	s.mu.Unlock()
}

func (s *LockStack[T]) Dequeue() (*Elem[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.head
	if e == nil {
		return nil, false
	}
	s.head = e.next
	e.next = nil
	return e, true
}
