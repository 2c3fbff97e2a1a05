// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfring

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// SPMCSeq is a CAS-based single-producer multi-consumer bounded queue.
//
// The single producer writes sequentially. Consumers use CAS to claim slots.
//
// This is the Compact variant using n slots (vs 2n for FAA-based default).
// Use NewSPMC for the default FAA-based implementation with better scalability.
//
// Memory: n slots (64+ bytes per slot: sequence, value and cache-line padding)
type SPMCSeq[T any] struct {
	_        pad
	head     atomix.Uint64 // Consumers CAS here
	_        pad
	tail     atomix.Uint64 // Producer writes here
	_        pad
	buffer   []spmcSeqSlot[T]
	mask     uint64
	capacity uint64
}

type spmcSeqSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort // Pad to cache line
}

// NewSPMCSeq creates a new CAS-based SPMC queue.
// Capacity rounds up to the next power of 2.
// This is the Compact variant. Use NewSPMC for the default FAA-based implementation.
func NewSPMCSeq[T any](capacity int) *SPMCSeq[T] {
	if capacity < 1 {
		panic("lfring: capacity must be >= 1")
	}

	n := uint64(roundToPow2(capacity))
	q := &SPMCSeq[T]{
		buffer:   make([]spmcSeqSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}

	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}

	return q
}

// Enqueue adds an element to the queue (single producer only).
// Returns ErrWouldBlock if the queue is full.
func (q *SPMCSeq[T]) Enqueue(elem *T) error {
	tail := q.tail.LoadRelaxed()
	slot := &q.buffer[tail&q.mask]
	seq := slot.seq.LoadAcquire()

	if seq != tail {
		return ErrWouldBlock
	}

	slot.data = *elem
	slot.seq.StoreRelease(tail + 1)
	q.tail.StoreRelease(tail + 1)

	return nil
}

// Dequeue removes and returns an element (multiple consumers safe).
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *SPMCSeq[T]) Dequeue() (T, error) {
	elem, _, err := q.dequeue1()
	return elem, err
}

// dequeue1 is Dequeue but also returns the index of the slot the winning
// CAS claimed, for batch callers that need to report it.
func (q *SPMCSeq[T]) dequeue1() (T, uint64, error) {
	sw := spin.Wait{}
	for {
		head := q.head.LoadAcquire()
		tail := q.tail.LoadAcquire()

		if head >= tail {
			var zero T
			return zero, 0, ErrWouldBlock
		}

		slot := &q.buffer[head&q.mask]
		seq := slot.seq.LoadAcquire()

		if seq == head+1 {
			if q.head.CompareAndSwapAcqRel(head, head+1) {
				elem := slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(head + q.capacity)
				return elem, head, nil
			}
		} else if seq < head+1 {
			var zero T
			return zero, 0, ErrWouldBlock
		}
		sw.Once()
	}
}

// Cap returns the queue capacity.
func (q *SPMCSeq[T]) Cap() int {
	return int(q.capacity)
}

// EnqueueBatch enqueues as many of elems as fit, in order (single producer only).
func (q *SPMCSeq[T]) EnqueueBatch(elems []T) int {
	for i := range elems {
		if q.Enqueue(&elems[i]) != nil {
			return i
		}
	}
	return len(elems)
}

// DequeueBatch dequeues as many elements as fit in out, in FIFO order.
// Returns the number actually dequeued and the queue-relative index of
// the first dequeued element.
func (q *SPMCSeq[T]) DequeueBatch(out []T) (n int, index uint64) {
	for n = 0; n < len(out); n++ {
		v, idx, err := q.dequeue1()
		if err != nil {
			return n, index
		}
		if n == 0 {
			index = idx
		}
		out[n] = v
	}
	return n, index
}
