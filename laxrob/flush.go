// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package laxrob

import "code.hybscloud.com/spin"

// Flush retires up to nslots leading slots of the window (forcing out
// any stragglers and holes along the way) and flushes any partially
// filled output batch, even if it never reaches vecsz. Unlike Insert,
// Flush blocks until it can acquire exclusive access to the buffer.
func (rob *ROB[T]) Flush(nslots uint32) {
	rob.acquireRob()

	rob.retireSlots(nslots)
	if len(rob.vec) != 0 {
		rob.flushVec()
	}

	for {
		list := rob.releaseOrDequeue()
		if list == nil {
			return
		}
		rob.insertElems(list)
	}
}

func (rob *ROB[T]) acquireRob() {
	sw := spin.Wait{}
	for {
		old := rob.pending.LoadAcquire()
		for isBusy(old) {
			sw.Once()
			old = rob.pending.LoadAcquire()
		}
		if rob.pending.CompareAndSwapAcqRel(old, 0) {
			return
		}
	}
}
