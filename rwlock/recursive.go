// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwlock

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/concur/errhnd"
	"code.hybscloud.com/concur/internal/gid"
	"code.hybscloud.com/concur/internal/rstack"
)

const moduleName = "rwlock_r"

var fam = rstack.NewFamily()

// invalidOwner marks that no writer currently owns the lock.
const invalidOwner = ^uint64(0)

// Recursive wraps [RWLock] to allow the same goroutine to acquire it
// more than once: nested AcquireRead calls stack up and only the
// outermost pair actually touches the underlying lock, and a
// goroutine already holding the write lock may also acquire it for
// reading. Acquiring for writing while already holding it for reading
// is rejected and reported to errhnd, since that would require
// upgrading a shared lock to exclusive while other readers may still
// be active — the original does not support this either.
type Recursive struct {
	inner RWLock
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

func (r *Recursive) TryAcquireRead() bool {
	first := !fam.Find(r)
	if first && !r.inner.TryAcquireRead() {
		return false
	}
	if !fam.Push(r, first, 0) {
		errhnd.Report(moduleName, "lock stack full", 0)
		return false
	}
	return true
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
		r.inner.AcquireWrite()
		r.owner.StoreRelaxed(id)
		if !fam.Push(r, true, 0) {
			errhnd.Report(moduleName, "lock stack full", 0)
		}
		return
	}
	if !fam.Push(r, false, 0) {
		errhnd.Report(moduleName, "lock stack full", 0)
	}
}

func (r *Recursive) TryAcquireWrite() bool {
	id := gid.Current()
	if r.owner.LoadRelaxed() != id {
		if fam.Find(r) {
			return false
		}
		if !r.inner.TryAcquireWrite() {
			return false
		}
		r.owner.StoreRelaxed(id)
		return fam.Push(r, true, 0)
	}
	return fam.Push(r, false, 0)
}

func (r *Recursive) ReleaseWrite() {
	_, first, ok := fam.Pop(r)
	if !ok {
		errhnd.Report(moduleName, "releasing wrong lock", 0)
		return
	}
	if first {
		r.owner.StoreRelaxed(invalidOwner)
		r.inner.ReleaseWrite()
	}
}
