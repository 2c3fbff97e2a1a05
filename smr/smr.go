// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package smr provides a minimal safe-memory-reclamation service.
//
// The lfstack and msqueue SMR variants need a way to defer freeing a
// popped/dequeued node until no other goroutine can still be reading
// it, without tracking per-call hazard pointers themselves — that
// bookkeeping is treated as an opaque external collaborator, in the
// style of a QSBR (quiescent-state-based reclamation) domain rather
// than classic per-pointer hazard pointers: callers register once per
// goroutine, mark themselves quiescent between critical sections, and
// retired objects are reclaimed once every registrant has reported a
// quiescent state that postdates the retirement.
package smr

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// Domain is an SMR domain. One Domain can protect many containers.
type Domain struct {
	epoch atomix.Int64

	mu          sync.Mutex
	registrants map[*Registrant]struct{}
	pending     []retired
}

type retired struct {
	ptr     any
	reclaim func(any)
	epoch   int64
}

// Registrant is a per-goroutine handle into a Domain.
type Registrant struct {
	d     *Domain
	lastQ atomix.Int64
}

// NewDomain creates a new SMR domain.
func NewDomain() *Domain {
	return &Domain{registrants: make(map[*Registrant]struct{})}
}

// Register enrolls the calling goroutine in the domain. The returned
// Registrant must be used for Quiescent calls and passed to
// Unregister when the goroutine is done.
func (d *Domain) Register() *Registrant {
	r := &Registrant{d: d}
	r.lastQ.StoreRelaxed(-1)
	d.mu.Lock()
	d.registrants[r] = struct{}{}
	d.mu.Unlock()
	return r
}

// Unregister removes a goroutine from the domain. Any objects only
// waiting on this registrant become reclaimable on the next Reclaim.
func (d *Domain) Unregister(r *Registrant) {
	d.mu.Lock()
	delete(d.registrants, r)
	d.mu.Unlock()
}

// Quiescent reports that the calling goroutine currently holds no
// references obtained from this domain's containers. Call it between
// operations, never while a pointer obtained mid-operation is still
// in use.
func (r *Registrant) Quiescent() {
	next := r.d.epoch.AddAcqRel(1)
	r.lastQ.StoreRelease(next)
}

// Retire schedules ptr for reclamation via reclaim once every
// currently registered goroutine has passed a quiescent point. Retire
// never blocks; actual reclamation happens on a later Reclaim call.
func (d *Domain) Retire(ptr any, reclaim func(any)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, retired{ptr: ptr, reclaim: reclaim, epoch: d.epoch.LoadAcquire()})
	return true
}

// Reclaim invokes the reclaim callback for every retired object whose
// grace period has elapsed, and returns the count still pending.
func (d *Domain) Reclaim() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	minQ := int64(1<<63 - 1)
	for r := range d.registrants {
		q := r.lastQ.LoadAcquire()
		if q < minQ {
			minQ = q
		}
	}

	kept := d.pending[:0]
	for _, p := range d.pending {
		if minQ > p.epoch {
			p.reclaim(p.ptr)
			continue
		}
		kept = append(kept, p)
	}
	d.pending = kept
	return uint32(len(d.pending))
}
