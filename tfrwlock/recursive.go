// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tfrwlock

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/concur/errhnd"
	"code.hybscloud.com/concur/internal/gid"
	"code.hybscloud.com/concur/internal/rstack"
)

const moduleName = "tfrwlock_r"

var fam = rstack.NewFamily()

const invalidOwner = ^uint64(0)

// Recursive wraps [TFRWLock] the same way
// [code.hybscloud.com/concur/rwlock.Recursive] wraps [code.hybscloud.com/concur/rwlock.RWLock]:
// nested same-goroutine acquisitions stack up and only the outermost
// one touches the underlying lock, a write holder may also acquire
// for reading, and acquiring for writing while already holding a read
// lock is rejected and reported to errhnd. The write ticket returned
// by the inner lock's AcquireWrite is stashed in the per-goroutine
// stack frame so the matching release can hand it back, mirroring the
// original's pth.tkts[] parallel array.
type Recursive struct {
	inner TFRWLock
	owner atomix.Uint64
}

// NewRecursive creates an unlocked recursive lock.
func NewRecursive() *Recursive {
	r := &Recursive{}
	r.owner.StoreRelaxed(invalidOwner)
	return r
}

func (r *Recursive) AcquireRead() {
	first := !fam.Find(r)
	if first {
		r.inner.AcquireRead()
	}
	if !fam.Push(r, first, 0) {
		errhnd.Report(moduleName, "lock stack full", 0)
	}
}

func (r *Recursive) ReleaseRead() {
	_, first, ok := fam.Pop(r)
	if !ok {
		errhnd.Report(moduleName, "releasing wrong lock", 0)
		return
	}
	if first {
		r.inner.ReleaseRead()
	}
}

func (r *Recursive) AcquireWrite() {
	id := gid.Current()
	if r.owner.LoadRelaxed() != id {
		if fam.Find(r) {
			errhnd.Report(moduleName, "acquire-write after acquire-read", 0)
			return
		}
		ticket := r.inner.AcquireWrite()
		r.owner.StoreRelaxed(id)
		if !fam.Push(r, true, uint64(ticket)) {
			errhnd.Report(moduleName, "lock stack full", 0)
		}
		return
	}
	if !fam.Push(r, false, 0) {
		errhnd.Report(moduleName, "lock stack full", 0)
	}
}

func (r *Recursive) ReleaseWrite() {
	ticket, first, ok := fam.Pop(r)
	if !ok {
		errhnd.Report(moduleName, "releasing wrong lock", 0)
		return
	}
	if first {
		r.owner.StoreRelaxed(invalidOwner)
		r.inner.ReleaseWrite(uint32(ticket))
	}
}
