// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msqueue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/concur/smr"
	"code.hybscloud.com/spin"
)

// SMRQueue is the safe-memory-reclamation ABA-defense variant: head
// and tail carry no tag, since concurrent reclamation through an
// [smr.Domain] — rather than tagging — is what prevents a freed node
// from being mistaken for a live one at the same address. The node
// retired on a successful Dequeue is still handed back to the caller
// immediately, matching lfstack.SMRStack's relaxation: the domain
// only defers clearing its next pointer, not the caller's use of it.
type SMRQueue[T any] struct {
	head   atomix.Uintptr
	tail   atomix.Uintptr
	domain *smr.Domain
}

// NewSMR creates an SMR-based M&S queue backed by domain. dummy
// becomes the initial placeholder node.
func NewSMR[T any](domain *smr.Domain, dummy *Node[T]) *SMRQueue[T] {
	if dummy == nil {
		reportNil()
		return nil
	}
	dummy.next = nil
	q := &SMRQueue[T]{domain: domain}
	p := ptrToUintptr(dummy)
	q.head.StoreRelaxed(p)
	q.tail.StoreRelaxed(p)
	return q
}

func (q *SMRQueue[T]) Enqueue(n *Node[T]) {
	if n == nil {
		reportNil()
		return
	}
	n.next = nil
	sw := spin.Wait{}
	for {
		tailPtr := q.tail.LoadAcquire()
		tailNode := uintptrToPtr[T](tailPtr)
		next := loadNextAcquire(tailNode)
		if tailPtr != q.tail.LoadAcquire() {
			sw.Once()
			continue
		}
		if next == nil {
			if casNextAcqRel(tailNode, nil, n) {
				q.tail.CompareAndSwapAcqRel(tailPtr, ptrToUintptr(n))
				return
			}
		} else {
			q.tail.CompareAndSwapAcqRel(tailPtr, ptrToUintptr(next))
		}
		sw.Once()
	}
}

func (q *SMRQueue[T]) Dequeue() (*Node[T], bool) {
	sw := spin.Wait{}
	for {
		headPtr := q.head.LoadAcquire()
		tailPtr := q.tail.LoadAcquire()
		headNode := uintptrToPtr[T](headPtr)
		next := loadNextAcquire(headNode)
		if headPtr == tailPtr {
			if next == nil {
				return nil, false
			}
			q.tail.CompareAndSwapAcqRel(tailPtr, ptrToUintptr(next))
		} else {
			if next == nil {
				sw.Once()
				continue
			}
			value := next.Value
			if q.head.CompareAndSwapAcqRel(headPtr, ptrToUintptr(next)) {
				headNode.Value = value
				retired := headNode
				q.domain.Retire(retired, func(v any) {
					v.(*Node[T]).next = nil
				})
				return retired, true
			}
		}
		sw.Once()
	}
}
