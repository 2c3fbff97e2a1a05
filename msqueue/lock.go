// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msqueue

import "sync"

// LockQueue is the lock-based ABA-defense variant: one sync.Mutex
// (not a spin lock) guards both head and tail, so no tagging or
// reclamation scheme is needed.
type LockQueue[T any] struct {
	mu   sync.Mutex
	head *Node[T]
	tail *Node[T]
}

// NewLock creates a lock-based M&S queue. dummy becomes the initial
// placeholder node; it carries no value and is returned, replaced by
// whichever node was head at the time, when the queue is closed.
func NewLock[T any](dummy *Node[T]) *LockQueue[T] {
	if dummy == nil {
		reportNil()
		return nil
	}
	dummy.next = nil
	return &LockQueue[T]{head: dummy, tail: dummy}
}

func (q *LockQueue[T]) Enqueue(n *Node[T]) {
	if n == nil {
		reportNil()
		return
	}
	n.next = nil
	q.mu.Lock()
	q.tail.next = n
	q.tail = n
	q.mu.Unlock()
}

func (q *LockQueue[T]) Dequeue() (*Node[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	first := q.head.next
	if first == nil {
		return nil, false
	}
	q.head = first
	return first, true
}

// Close returns the current dummy node, for symmetry with the
// caller-supplied one passed to NewLock. It panics if the queue is
// not empty, since the remaining nodes would otherwise be leaked from
// the caller's point of view.
func (q *LockQueue[T]) Close() *Node[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head.next != nil {
		panic("msqueue: Close called on non-empty queue")
	}
	return q.head
}
