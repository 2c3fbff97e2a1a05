// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package antireplay implements a wait-free sliding-window anti-replay
// check: given a stream of monotonically-intended 64-bit sequence
// numbers, detect duplicates ("replays") and numbers older than the
// current window ("stale") without any per-check locking.
//
// Each window slot holds the highest sequence number seen for that
// slot's residue class, so a check reduces to a single load (Test) or
// an atomic fetch-max (TestAndSet) against sn&winmask (or a swizzled
// variant of that index, spreading consecutive sequence numbers
// across cache lines to cut false sharing under concurrent senders).
package antireplay

import "code.hybscloud.com/atomix"

// Verdict is the outcome of a Test or TestAndSet call.
type Verdict int

const (
	Pass Verdict = iota
	Replay
	Stale
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case Replay:
		return "replay"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Window is a sliding anti-replay window. Create one with New.
type Window struct {
	winmask uint64
	swizzle bool
	slots   []atomix.Uint64
}

// New creates a window covering winsize distinct sequence-number
// slots. winsize must be a non-zero power of two, matching the
// original's own allocation-time check. swizzle, when true, spreads
// consecutive sequence numbers across different cache lines instead
// of packing them into the same one, trading index-computation cost
// for less false sharing under concurrent senders.
func New(winsize uint32, swizzle bool) *Window {
	if winsize == 0 || winsize&(winsize-1) != 0 {
		panic("antireplay: window size must be a non-zero power of two")
	}
	return &Window{
		winmask: uint64(winsize - 1),
		swizzle: swizzle,
		slots:   make([]atomix.Uint64, winsize),
	}
}

// snToIndex assumes a 64B cache line holding eight 8-byte slots, the
// same assumption the original makes for its default swizzle formula.
func (w *Window) snToIndex(sn uint64) uint64 {
	if w.swizzle {
		sn ^= (sn & 7) << 3
	}
	return sn & w.winmask
}

// Test reports the verdict for sn without updating the window.
func (w *Window) Test(sn uint64) Verdict {
	old := w.slots[w.snToIndex(sn)].LoadRelaxed()
	return verdict(sn, old)
}

// TestAndSet reports the verdict for sn and, if sn is not stale,
// atomically raises the slot to sn so a later replay of the same sn
// is detected.
func (w *Window) TestAndSet(sn uint64) Verdict {
	slot := &w.slots[w.snToIndex(sn)]
	for {
		old := slot.LoadRelaxed()
		if sn <= old {
			return verdict(sn, old)
		}
		if slot.CompareAndSwapAcqRel(old, sn) {
			return Pass
		}
	}
}

func verdict(sn, old uint64) Verdict {
	switch {
	case sn > old:
		return Pass
	case sn == old:
		return Replay
	default:
		return Stale
	}
}
