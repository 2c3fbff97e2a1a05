// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rwlock implements a writer-preference reader/writer lock:
// a single 64-bit word where bit 31 (0x80000000) means "a writer holds
// the lock" and the bits below it count concurrent readers. Acquiring
// a write lock is a single CAS from 0 (unlocked) straight to the
// writer-bit pattern, so there is no separate waiting-writers counter —
// a writer simply keeps retrying against new readers until it wins
// the empty state, so under contention a steady stream of readers can
// starve a writer indefinitely. Use
// [code.hybscloud.com/concur/pfrwlock] instead where writer starvation
// is unacceptable.
package rwlock

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

const writerBit uint64 = 0x80000000

// RWLock is a writer-preference reader/writer lock. The zero value is
// an unlocked lock, ready to use.
type RWLock struct {
	state atomix.Uint64
}

// New creates an unlocked lock.
func New() *RWLock {
	return &RWLock{}
}

// AcquireRead blocks until no writer holds the lock, then takes a
// shared lock.
func (l *RWLock) AcquireRead() {
	sw := spin.Wait{}
	for {
		s := l.state.LoadAcquire()
		if s&writerBit != 0 {
			sw.Once()
			continue
		}
		if l.state.CompareAndSwapAcqRel(s, s+1) {
			return
		}
		sw.Once()
	}
}

// TryAcquireRead takes a shared lock only if no writer currently
// holds it, without blocking.
func (l *RWLock) TryAcquireRead() bool {
	s := l.state.LoadAcquire()
	if s&writerBit != 0 {
		return false
	}
	return l.state.CompareAndSwapAcqRel(s, s+1)
}

// ReleaseRead releases a previously acquired shared lock.
func (l *RWLock) ReleaseRead() {
	sw := spin.Wait{}
	for {
		s := l.state.LoadAcquire()
		if l.state.CompareAndSwapAcqRel(s, s-1) {
			return
		}
		sw.Once()
	}
}

// AcquireWrite blocks until every earlier reader and writer has
// released the lock, then takes an exclusive lock.
func (l *RWLock) AcquireWrite() {
	sw := spin.Wait{}
	for {
		if l.state.CompareAndSwapAcqRel(0, writerBit) {
			return
		}
		sw.Once()
	}
}

// TryAcquireWrite takes an exclusive lock only if it is currently
// unlocked, without blocking.
func (l *RWLock) TryAcquireWrite() bool {
	return l.state.CompareAndSwapAcqRel(0, writerBit)
}

// ReleaseWrite releases a previously acquired exclusive lock.
func (l *RWLock) ReleaseWrite() {
	l.state.StoreRelease(0)
}
