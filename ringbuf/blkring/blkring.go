// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package blkring is the exact-count specialization of
// [code.hybscloud.com/concur/ringbuf]: Enqueue and Dequeue block until
// exactly the requested number of elements have been placed or taken,
// rather than returning a partial count.
//
// DequeueNonBlocking is the one escape hatch: it truncates against
// whatever is available right now instead of waiting for the rest,
// matching the original's separate non-blocking dequeue entry point.
package blkring

import "code.hybscloud.com/concur/ringbuf"

// Ring is a bounded MPMC ring with exact-count blocking Enqueue and
// Dequeue, built over a [ringbuf.Ring].
type Ring[T any] struct {
	r *ringbuf.Ring[T]
}

// New creates a Ring of the given capacity. Panics if capacity < 1,
// matching [ringbuf.New].
func New[T any](capacity int) *Ring[T] {
	r, err := ringbuf.New[T](capacity)
	if err != nil {
		// New's only error is the LFDeq+NBEnq combination, never
		// requested here.
		panic(err)
	}
	return &Ring[T]{r: r}
}

// Cap returns the ring's physical capacity.
func (r *Ring[T]) Cap() int { return r.r.Cap() }

// Enqueue blocks until every element of vals has been placed.
func (r *Ring[T]) Enqueue(vals []T) error {
	r.r.EnqueueBatch(vals)
	return nil
}

// Dequeue blocks until exactly len(out) elements have been taken,
// filling out in FIFO order. index is the queue-relative position of
// the first element.
func (r *Ring[T]) Dequeue(out []T) (index uint64, err error) {
	_, index = r.r.DequeueBatch(out)
	return index, nil
}

// DequeueNonBlocking takes as many elements as are available right
// now, up to len(out), without waiting for the rest. n is the number
// actually taken; index is the queue-relative position of the first
// of those n elements.
func (r *Ring[T]) DequeueNonBlocking(out []T) (n int, index uint64) {
	return r.r.DequeueBatchNB(out)
}
