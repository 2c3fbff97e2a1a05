// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msqueue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// TagQueue is the tagged-pointer ABA-defense variant of the M&S queue:
// head and tail are each packed with a monotone tag into one
// atomix.Uint128, updated with a single double-word CAS, the same
// technique lfstack.TagStack and lfring's 128-bit ring variants use.
type TagQueue[T any] struct {
	head atomix.Uint128 // lo = *Node[T] as uintptr, hi = tag
	tail atomix.Uint128
}

// NewTag creates a tagged-pointer M&S queue. dummy becomes the
// initial placeholder node.
func NewTag[T any](dummy *Node[T]) *TagQueue[T] {
	if dummy == nil {
		reportNil()
		return nil
	}
	dummy.next = nil
	q := &TagQueue[T]{}
	lo := ptrToLo(dummy)
	q.head.StoreRelaxed(lo, 0)
	q.tail.StoreRelaxed(lo, 0)
	return q
}

func (q *TagQueue[T]) Enqueue(n *Node[T]) {
	if n == nil {
		reportNil()
		return
	}
	n.next = nil
	sw := spin.Wait{}
	for {
		tailLo, tailTag := q.tail.LoadAcquire()
		tailNode := loToPtr[T](tailLo)
		next := loadNextAcquire(tailNode)
		tailLo2, tailTag2 := q.tail.LoadAcquire()
		if tailLo != tailLo2 || tailTag != tailTag2 {
			sw.Once()
			continue
		}
		if next == nil {
			if casNextAcqRel(tailNode, nil, n) {
				q.tail.CompareAndSwapAcqRel(tailLo, tailTag, ptrToLo(n), tailTag+1)
				return
			}
		} else {
			q.tail.CompareAndSwapAcqRel(tailLo, tailTag, ptrToLo(next), tailTag+1)
		}
		sw.Once()
	}
}

func (q *TagQueue[T]) Dequeue() (*Node[T], bool) {
	sw := spin.Wait{}
	for {
		headLo, headTag := q.head.LoadAcquire()
		tailLo, tailTag := q.tail.LoadAcquire()
		headNode := loToPtr[T](headLo)
		next := loadNextAcquire(headNode)
		if headLo == tailLo {
			if next == nil {
				return nil, false
			}
			q.tail.CompareAndSwapAcqRel(tailLo, tailTag, ptrToLo(next), tailTag+1)
		} else {
			if next == nil {
				sw.Once()
				continue
			}
			value := next.Value
			if q.head.CompareAndSwapAcqRel(headLo, headTag, ptrToLo(next), headTag+1) {
				headNode.Value = value
				headNode.next = nil
				return headNode, true
			}
		}
		sw.Once()
	}
}
