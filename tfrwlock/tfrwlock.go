// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tfrwlock implements a task-fair reader/writer lock: readers
// and writers are served in strict arrival order (no reader can jump
// ahead of an earlier-arrived writer, and no writer starves behind an
// endless stream of readers), unlike [code.hybscloud.com/concur/rwlock]'s
// writer-preference design.
//
// Two ticket counters — one for readers, one for writers — are packed
// into the high and low halves of a single word so that one atomic
// fetch-add both assigns a caller's ticket and snapshots the other
// side's progress at the same instant. A reader snapshots the writer
// ticket current at its arrival and waits only for writers already
// ahead of it to finish; a writer snapshots the reader count current
// at its arrival and waits for both those readers and any writer
// ahead of it to finish.
package tfrwlock

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// TFRWLock is a task-fair reader/writer lock. The zero value is an
// unlocked lock, ready to use.
//
// enter packs a 32-bit reader-ticket counter in its low half and a
// 32-bit writer-ticket counter in its high half; leave packs the
// corresponding reader and writer completion counts the same way.
// Each counter is doubled in width from the original's 16-bit halves
// of a 32-bit word to 32-bit halves of a 64-bit word — the same
// packed-ticket technique at twice the width.
type TFRWLock struct {
	enter atomix.Uint64
	leave atomix.Uint64
}

const wrStep = uint64(1) << 32

// New creates an unlocked lock.
func New() *TFRWLock {
	return &TFRWLock{}
}

func splitLo(v uint64) uint32 { return uint32(v) }
func splitHi(v uint64) uint32 { return uint32(v >> 32) }

// AcquireRead blocks until every writer that arrived before it has
// released the lock, then takes a shared lock.
func (l *TFRWLock) AcquireRead() {
	myEnter := l.enter.AddAcqRel(1) - 1
	wantWr := splitHi(myEnter)
	sw := spin.Wait{}
	for splitHi(l.leave.LoadAcquire()) != wantWr {
		sw.Once()
	}
}

// ReleaseRead releases a previously acquired shared lock.
func (l *TFRWLock) ReleaseRead() {
	l.leave.AddAcqRel(1)
}

// AcquireWrite blocks until every reader and writer that arrived
// before it has released the lock, then takes an exclusive lock. The
// returned ticket must be passed back to [TFRWLock.ReleaseWrite].
func (l *TFRWLock) AcquireWrite() (ticket uint32) {
	myEnter := l.enter.AddAcqRel(int64(wrStep)) - wrStep
	wantRd := splitLo(myEnter)
	ticket = splitHi(myEnter)
	sw := spin.Wait{}
	for splitLo(l.leave.LoadAcquire()) != wantRd {
		sw.Once()
	}
	for splitHi(l.leave.LoadAcquire()) != ticket {
		sw.Once()
	}
	return ticket
}

// ReleaseWrite releases a previously acquired exclusive lock. ticket
// must be the value [TFRWLock.AcquireWrite] returned for this
// acquisition — kept as an explicit parameter, mirroring the
// original's tkt argument, even though only the current ticket holder
// can ever call this, since advancing leave's writer half is always
// correct for whoever that is.
func (l *TFRWLock) ReleaseWrite(ticket uint32) {
	l.leave.AddAcqRel(int64(wrStep))
}
