// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rwsync implements a seqlock-style read/write synchroniser:
// a single monotone counter, even when unlocked and odd while a
// writer is in progress. A reader never blocks a writer and is never
// blocked by one except to wait out the odd phase; instead a reader
// detects after the fact whether a write raced its read and, if so,
// is expected to retry.
package rwsync

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// RWSync is a seqlock-style synchroniser. The zero value is an
// unlocked synchroniser, ready to use.
type RWSync struct {
	counter atomix.Uint64
}

// New creates an unlocked synchroniser.
func New() *RWSync {
	return &RWSync{}
}

// AcquireRead blocks until no write is in progress and returns a
// ticket identifying the synchroniser's state at that instant. Pass
// it to ReleaseRead to find out whether a write raced the read.
func (s *RWSync) AcquireRead() uint64 {
	sw := spin.Wait{}
	for {
		v := s.counter.LoadAcquire()
		if v&1 == 0 {
			return v
		}
		sw.Once()
	}
}

// ReleaseRead reports whether the synchroniser's state is unchanged
// since the matching AcquireRead — false means a write occurred or is
// in progress and anything read under this ticket must be discarded
// and the read retried.
func (s *RWSync) ReleaseRead(ticket uint64) bool {
	return s.counter.LoadAcquire() == ticket
}

// AcquireWrite blocks until any earlier write has completed, then
// takes the synchroniser for writing.
func (s *RWSync) AcquireWrite() {
	sw := spin.Wait{}
	for {
		v := s.counter.LoadAcquire()
		if v&1 == 0 && s.counter.CompareAndSwapAcqRel(v, v+1) {
			return
		}
		sw.Once()
	}
}

// ReleaseWrite releases a previously acquired write lock.
func (s *RWSync) ReleaseWrite() {
	s.counter.AddAcqRel(1)
}

// Read copies data into dst, retrying until no write raced the copy.
func (s *RWSync) Read(dst, data []byte) {
	for {
		ticket := s.AcquireRead()
		copy(dst, data)
		if s.ReleaseRead(ticket) {
			return
		}
	}
}

// Write copies src into data under the write lock.
func (s *RWSync) Write(src, data []byte) {
	s.AcquireWrite()
	copy(data, src)
	s.ReleaseWrite()
}
