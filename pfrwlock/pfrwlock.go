// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pfrwlock implements a phase-fair reader/writer lock: a
// reader is never blocked by more than one writer phase and one
// reader phase, the fairness property described by Brandenburg and
// Anderson's "Reader-Writer Synchronization for Shared-Memory
// Multiprocessor Real-Time Systems". Unlike
// [code.hybscloud.com/concur/rwlock]'s writer-preference design, a
// burst of readers cannot starve a writer past the one reader phase
// already in progress when the writer arrives — and once that writer
// takes its turn, every reader waiting behind it (not just the ones
// present at the writer's arrival) is released together as the next
// reader phase.
//
// This lock has no recursive variant, matching the original
// implementation: phase fairness and recursive same-goroutine
// re-acquisition don't compose cleanly (a recursive reader is
// indistinguishable from a second, later reader as far as phase
// counters are concerned), so none was provided upstream either.
package pfrwlock

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Field layout packed into one 64-bit word, 16 bits each:
//
//	bits 0..15   enterRd
//	bits 16..31  pendRd
//	bits 32..47  leaveWr
//	bits 48..63  enterWr
//
// code.hybscloud.com/atomix has no 16-bit atomic, so all four
// counters are packed into a single atomix.Uint64 exactly as the
// original packs them into one uint64, just addressed through shifts
// and masks instead of a union of bitfields.
const (
	enterRdShift = 0
	pendRdShift  = 16
	leaveWrShift = 32
	enterWrShift = 48

	enterRdMask = uint64(0xFFFF) << enterRdShift
	pendRdMask  = uint64(0xFFFF) << pendRdShift

	enterRdOne = uint64(1) << enterRdShift
	pendRdOne  = uint64(1) << pendRdShift
	enterWrOne = uint64(1) << enterWrShift
)

func enterRd(w uint64) uint16 { return uint16(w >> enterRdShift) }
func pendRd(w uint64) uint16  { return uint16(w >> pendRdShift) }
func leaveWr(w uint64) uint16 { return uint16(w >> leaveWrShift) }
func enterWr(w uint64) uint16 { return uint16(w >> enterWrShift) }

func addWMask(x, y, mask uint64) uint64 {
	return ((x + y) & mask) | (x &^ mask)
}

// PFRWLock is a phase-fair reader/writer lock. The zero value is an
// unlocked lock, ready to use.
//
// leaveRd is kept as a separate counter from word, exactly as the
// original keeps lock->leave_rd outside the packed union: readers
// only ever increment it on release and writers only ever read it, so
// it has no reason to share a CAS loop with the enter/pend/leave-wr
// word.
type PFRWLock struct {
	word    atomix.Uint64
	leaveRd atomix.Uint64
}

// New creates an unlocked lock.
func New() *PFRWLock {
	return &PFRWLock{}
}

func incrEnterOrPend(loc *atomix.Uint64) uint64 {
	sw := spin.Wait{}
	for {
		old := loc.LoadAcquire()
		var neu uint64
		if enterWr(old) == leaveWr(old) {
			neu = addWMask(old, enterRdOne, enterRdMask)
		} else {
			neu = addWMask(old, pendRdOne, pendRdMask)
		}
		if loc.CompareAndSwapAcqRel(old, neu) {
			return old
		}
		sw.Once()
	}
}

// AcquireRead blocks until no writer phase is in progress, then takes
// a shared lock. A reader that arrives while a writer phase is
// already running joins the next reader phase rather than this one.
func (l *PFRWLock) AcquireRead() {
	old := incrEnterOrPend(&l.word)
	if enterWr(old) != leaveWr(old) {
		target := uint64(leaveWr(old) + 1)
		sw := spin.Wait{}
		for uint64(leaveWr(l.word.LoadAcquire())) != target {
			sw.Once()
		}
	}
}

// ReleaseRead releases a previously acquired shared lock.
func (l *PFRWLock) ReleaseRead() {
	l.leaveRd.AddAcqRel(1)
}

// AcquireWrite blocks until the previous writer phase has ended and
// every reader already admitted into the current reader phase has
// released, then takes an exclusive lock.
func (l *PFRWLock) AcquireWrite() {
	old := l.word.AddAcqRel(int64(enterWrOne)) - enterWrOne
	myTicket := uint64(enterWr(old))
	sw := spin.Wait{}
	for uint64(leaveWr(l.word.LoadAcquire())) != myTicket {
		sw.Once()
	}
	admittedRd := uint64(enterRd(l.word.LoadRelaxed()))
	for uint16(l.leaveRd.LoadAcquire()) != uint16(admittedRd) {
		sw.Once()
	}
}

// ReleaseWrite releases a previously acquired exclusive lock, folding
// every reader that queued behind this writer (pendRd) into the next
// reader phase (enterRd).
func (l *PFRWLock) ReleaseWrite() {
	sw := spin.Wait{}
	for {
		old := l.word.LoadAcquire()
		ew := enterWr(old)
		lw := leaveWr(old) + 1
		er := enterRd(old) + pendRd(old)
		neu := uint64(ew)<<enterWrShift | uint64(lw)<<leaveWrShift | uint64(er)<<enterRdShift
		if l.word.CompareAndSwapAcqRel(old, neu) {
			return
		}
		sw.Once()
	}
}
