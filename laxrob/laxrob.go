// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package laxrob implements a "lax" reorder buffer: elements tagged
// with a monotone sequence number are retired through a callback in
// sequence order, but retiring holes (empty slots) is allowed, so a
// straggler that never arrives does not stall the elements behind it
// forever — it is retired out of order once the window slides past
// it.
//
// Exclusive access to the buffer is arbitrated by a combining
// protocol rather than a lock: the first caller to find the buffer
// idle becomes the "robber" and processes every insert, including
// ones other goroutines attach to its pending list while it works, in
// one pass; every other caller just publishes its elements and
// returns immediately.
package laxrob

import "code.hybscloud.com/atomix"

// Elem is the caller-owned element inserted into a reorder buffer.
type Elem[T any] struct {
	next  *Elem[T]
	sn    uint32
	Value T
}

// NewElem creates an element carrying sequence number sn and value v.
func NewElem[T any](sn uint32, v T) *Elem[T] {
	return &Elem[T]{sn: sn, Value: v}
}

// SN returns the element's sequence number.
func (e *Elem[T]) SN() uint32 { return e.sn }

const pendingIdle uintptr = 1

func isIdle(p uintptr) bool { return p&pendingIdle != 0 }
func isBusy(p uintptr) bool { return p&pendingIdle == 0 }

// ROB is a lax reorder buffer for type T.
type ROB[T any] struct {
	pending atomix.Uintptr

	cb func(vec []*Elem[T])

	oldest uint32
	size   uint32
	mask   uint32

	vecsz uint32
	vec   []*Elem[T]

	ring []*Elem[T]
}

// New allocates a reorder buffer with room for at least nslots
// in-flight sequence numbers (rounded up to a power of two) and an
// output batch size of vecsz. cb is invoked with a slice of retired
// elements in sequence order whenever the batch fills or a flush
// forces a partial batch out.
func New[T any](nslots, vecsz uint32, cb func(vec []*Elem[T])) *ROB[T] {
	if nslots < 1 {
		panic("laxrob: invalid size")
	}
	if vecsz < 1 {
		panic("laxrob: invalid output vector size")
	}
	size := roundUpPow2(nslots)
	rob := &ROB[T]{
		cb:    cb,
		size:  size,
		mask:  size - 1,
		vecsz: vecsz,
		vec:   make([]*Elem[T], 0, vecsz),
		ring:  make([]*Elem[T], size),
	}
	rob.pending.StoreRelaxed(pendingIdle)
	return rob
}

func roundUpPow2(n uint32) uint32 {
	p := uint32(1)
	for p < n {
		p <<= 1
	}
	return p
}
