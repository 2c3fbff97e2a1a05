// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfstack provides a Treiber stack with a choice of four
// ABA-defense strategies: a mutex, tagged-pointer double-word CAS,
// safe memory reclamation, and a best-effort LL/SC emulation.
//
// Elements are caller-owned: construct an *Elem[T], populate Value,
// and pass its address to Enqueue. The stack never allocates or frees
// elements itself — ownership passes to the stack on Enqueue and back
// to the caller on Dequeue, exactly as with [code.hybscloud.com/concur/lfring]'s
// pointer-passing queues. An element must remain live and must not be
// mutated by the caller while it may still be reachable from the
// stack (i.e. between Enqueue and the matching Dequeue).
package lfstack

import "code.hybscloud.com/concur/errhnd"

// Elem is the embeddable link node. Callers allocate it (typically as
// a field of their own struct) and pass its address to Enqueue.
type Elem[T any] struct {
	next  *Elem[T]
	Value T
}

// Stack is the common interface implemented by all four ABA-defense
// variants.
type Stack[T any] interface {
	// Enqueue pushes elem onto the top of the stack.
	// Reports a "enqueue NULL element" error via errhnd and does
	// nothing if elem is nil.
	Enqueue(elem *Elem[T])
	// Dequeue pops and returns the top element.
	// Returns (nil, false) if the stack is empty.
	Dequeue() (*Elem[T], bool)
}

const moduleName = "lfstack"

func reportNil() {
	errhnd.Report(moduleName, "enqueue NULL element", 0)
}
