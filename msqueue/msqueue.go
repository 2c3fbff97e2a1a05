// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package msqueue implements the Michael & Scott lock-free FIFO queue:
// a singly-linked list with separate head and tail pointers, always
// carrying one extra dummy node so enqueue and dequeue never contend
// on the same pointer when the queue holds exactly one element.
//
// Three ABA-defense strategies are offered as separate concrete types,
// mirroring package lfstack: [NewLock] (mutual exclusion, no ABA
// protocol needed), [NewTag] (tagged double-word CAS on head and
// tail), and [NewSMR] (deferred reclamation via an [code.hybscloud.com/concur/smr.Domain]).
package msqueue

import "code.hybscloud.com/concur/errhnd"

// Node is the caller-owned link embedded in every element. Callers
// allocate, own, and recycle these; the queue never allocates or
// frees one on its own.
type Node[T any] struct {
	next  *Node[T]
	Value T
}

// Queue is implemented by every ABA-defense variant.
type Queue[T any] interface {
	Enqueue(n *Node[T])
	Dequeue() (*Node[T], bool)
}

const moduleName = "msqueue"

func reportNil() {
	errhnd.Report(moduleName, "enqueue NULL element", 0)
}
