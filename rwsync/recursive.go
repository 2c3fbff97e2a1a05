// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwsync

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/concur/errhnd"
	"code.hybscloud.com/concur/internal/gid"
)

const moduleName = "rwsync_r"

const invalidOwner = ^uint64(0)

// Recursive wraps [RWSync] to allow the same goroutine to acquire the
// write side more than once, stacked in a plain depth counter rather
// than [code.hybscloud.com/concur/internal/rstack.Family] — unlike the
// other recursive lock flavors, a seqlock reader never blocks, so
// there is nothing to stack on the read side: AcquireRead always
// delegates straight to the inner synchroniser.
//
// Unlike [code.hybscloud.com/concur/rwlock.Recursive], recursive
// read-after-write is NOT allowed here and is rejected via errhnd: a
// reader that observes its own goroutine's in-progress write would
// see a torn, inconsistent state, and there is no blocking to wait it
// out (the reader side of a seqlock never blocks on a writer).
type Recursive struct {
	inner RWSync
	owner atomix.Uint64
	count int32
}

// NewRecursive creates an unlocked recursive synchroniser.
func NewRecursive() *Recursive {
	r := &Recursive{}
	r.owner.StoreRelaxed(invalidOwner)
	return r
}

// AcquireRead blocks until no write by another goroutine is in
// progress, then returns a ticket for ReleaseRead. Calling this while
// the same goroutine already holds the write side is rejected via
// errhnd.Report and returns 0.
func (r *Recursive) AcquireRead() uint64 {
	id := gid.Current()
	if r.owner.LoadRelaxed() == id {
		errhnd.Report(moduleName, "acquire-read after acquire-write", 0)
		return 0
	}
	return r.inner.AcquireRead()
}

// ReleaseRead reports whether the synchroniser's state is unchanged
// since the matching AcquireRead.
func (r *Recursive) ReleaseRead(ticket uint64) bool {
	return r.inner.ReleaseRead(ticket)
}

// AcquireWrite blocks until earlier writes by other goroutines have
// completed, then takes the write side. Recursive acquisitions by the
// same goroutine nest without blocking.
func (r *Recursive) AcquireWrite() {
	id := gid.Current()
	if r.owner.LoadRelaxed() != id {
		r.inner.AcquireWrite()
		r.owner.StoreRelaxed(id)
	}
	r.count++
}

// ReleaseWrite releases one level of a previously acquired write
// lock; the underlying synchroniser is released only once count
// returns to zero.
func (r *Recursive) ReleaseWrite() {
	if r.count == 0 {
		errhnd.Report(moduleName, "excess release call", 0)
		return
	}
	r.count--
	if r.count == 0 {
		r.owner.StoreRelaxed(invalidOwner)
		r.inner.ReleaseWrite()
	}
}
