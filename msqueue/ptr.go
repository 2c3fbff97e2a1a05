// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msqueue

import (
	"sync/atomic"
	"unsafe"
)

// loadNextAcquire and casNextAcqRel give the lock-free variants atomic
// access to a Node's next field. atomix has no generic atomic-pointer
// type, so this one spot uses sync/atomic's untyped pointer ops
// directly — the same justified exception as package errhnd's handler
// registry.
func loadNextAcquire[T any](n *Node[T]) *Node[T] {
	return (*Node[T])(atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(&n.next))))
}

func casNextAcqRel[T any](n *Node[T], old, new *Node[T]) bool {
	return atomic.CompareAndSwapPointer(
		(*unsafe.Pointer)(unsafe.Pointer(&n.next)),
		unsafe.Pointer(old),
		unsafe.Pointer(new),
	)
}

func ptrToLo[T any](n *Node[T]) uint64 {
	return uint64(uintptr(unsafe.Pointer(n)))
}

func loToPtr[T any](lo uint64) *Node[T] {
	return (*Node[T])(unsafe.Pointer(uintptr(lo)))
}

func ptrToUintptr[T any](n *Node[T]) uintptr {
	return uintptr(unsafe.Pointer(n))
}

func uintptrToPtr[T any](p uintptr) *Node[T] {
	return (*Node[T])(unsafe.Pointer(p))
}
