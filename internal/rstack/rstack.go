// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rstack holds the per-goroutine bookkeeping shared by every
// recursive reader/writer lock variant ([code.hybscloud.com/concur/rwlock.Recursive],
// [code.hybscloud.com/concur/tfrwlock.Recursive], [code.hybscloud.com/concur/rwsync.Recursive]):
// a bounded stack of currently-held locks plus a bitmask recording
// which stack depths correspond to a first-time acquisition of their
// lock — only those must release the underlying lock when popped.
//
// Each lock family gets its own [Family], the same way the original
// keeps one file-static per-thread stack per recursive-lock flavor
// rather than one shared across all of them.
package rstack

import (
	"sync"

	"code.hybscloud.com/concur/internal/gid"
)

// StackSize bounds how many nested recursive locks one goroutine may
// hold at once within one [Family], matching the original
// implementation's fixed 32-entry per-thread stack.
const StackSize = 32

type frame struct {
	depth       uint32
	releaseMask uint32
	stack       [StackSize]any
	data        [StackSize]uint64
}

// Family is one lock flavor's per-goroutine stack bookkeeping. The
// frame map is keyed by goroutine id and never evicted: Go gives no
// hook for goroutine exit, so an id that's never reused leaves a
// small, bounded (one frame struct) entry behind. Acceptable here
// since recursive-lock usage is expected from long-lived worker
// goroutines, not one-off throwaway ones.
type Family struct {
	mu     sync.Mutex
	frames map[uint64]*frame
}

// NewFamily creates an empty per-goroutine stack family.
func NewFamily() *Family {
	return &Family{frames: map[uint64]*frame{}}
}

func (fam *Family) current() *frame {
	id := gid.Current()
	fam.mu.Lock()
	f, ok := fam.frames[id]
	if !ok {
		f = &frame{}
		fam.frames[id] = f
	}
	fam.mu.Unlock()
	return f
}

// Find reports whether lock already appears somewhere in the current
// goroutine's stack.
func (fam *Family) Find(lock any) bool {
	f := fam.current()
	for i := uint32(0); i < f.depth; i++ {
		if f.stack[i] == lock {
			return true
		}
	}
	return false
}

// Push records a new stack frame for lock. firstAcquire marks whether
// this push corresponds to a real underlying-lock acquisition (so the
// matching Pop call must release it). data is an opaque payload
// returned unchanged by the matching Pop — tfrwlock uses it to carry
// the write ticket a release must present back to the inner lock,
// mirroring the original's parallel pth.tkts[] stack entry. Callers
// that need nothing here pass 0. Push reports ok=false, with no state
// change, if the stack is already at [StackSize].
func (fam *Family) Push(lock any, firstAcquire bool, data uint64) (ok bool) {
	f := fam.current()
	if f.depth == StackSize {
		return false
	}
	if firstAcquire {
		f.releaseMask |= 1 << f.depth
	} else {
		f.releaseMask &^= 1 << f.depth
	}
	f.stack[f.depth] = lock
	f.data[f.depth] = data
	f.depth++
	return true
}

// Pop removes the top stack frame, which must match lock. It reports
// ok=false, with no state change, if the stack is empty or its top
// frame does not belong to lock. The returned firstAcquire mirrors the
// flag given to the matching Push call — the caller must release the
// underlying lock only when it is true — and data returns whatever
// payload that Push call recorded.
func (fam *Family) Pop(lock any) (data uint64, firstAcquire, ok bool) {
	f := fam.current()
	if f.depth == 0 {
		return 0, false, false
	}
	if f.stack[f.depth-1] != lock {
		return 0, false, false
	}
	f.depth--
	firstAcquire = f.releaseMask&(1<<f.depth) != 0
	f.releaseMask &^= 1 << f.depth
	data = f.data[f.depth]
	f.stack[f.depth] = nil
	f.data[f.depth] = 0
	return data, firstAcquire, true
}
