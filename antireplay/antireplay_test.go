// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package antireplay_test

import (
	"sync/atomic"
	"testing"

	"code.hybscloud.com/concur/antireplay"
	"golang.org/x/sync/errgroup"
)

// TestWorkedExample reproduces the window=256, swizzle=off sequence
// worked through step by step: slot 100&255 and 356&255 alias to the
// same slot (256 apart, so the same residue), which is what lets 356
// overwrite and then stale-out the earlier sn=100.
func TestWorkedExample(t *testing.T) {
	w := antireplay.New(256, false)

	if v := w.TestAndSet(100); v != antireplay.Pass {
		t.Fatalf("TestAndSet(100) = %v, want Pass", v)
	}
	if v := w.TestAndSet(100); v != antireplay.Replay {
		t.Fatalf("TestAndSet(100) = %v, want Replay", v)
	}
	if v := w.Test(356); v != antireplay.Pass {
		t.Fatalf("Test(356) = %v, want Pass", v)
	}
	if v := w.TestAndSet(356); v != antireplay.Pass {
		t.Fatalf("TestAndSet(356) = %v, want Pass", v)
	}
	if v := w.Test(100); v != antireplay.Stale {
		t.Fatalf("Test(100) = %v, want Stale", v)
	}
	if v := w.TestAndSet(100); v != antireplay.Stale {
		t.Fatalf("TestAndSet(100) = %v, want Stale", v)
	}
	if v := w.TestAndSet(356); v != antireplay.Replay {
		t.Fatalf("TestAndSet(356) = %v, want Replay", v)
	}
}

// TestSwizzlePreservesVerdicts checks that enabling the swizzle
// remapping — purely an index-spreading transform for cache-line
// distribution, applied before the window mask — doesn't change the
// pass/replay/stale semantics. 10 and 266 (10 + one full window) fold
// to the same slot under the mask regardless of swizzling, the same
// way 100 and 356 do in the unswizzled worked example.
func TestSwizzlePreservesVerdicts(t *testing.T) {
	w := antireplay.New(256, true)
	if v := w.TestAndSet(10); v != antireplay.Pass {
		t.Fatalf("TestAndSet(10) = %v, want Pass", v)
	}
	if v := w.TestAndSet(10); v != antireplay.Replay {
		t.Fatalf("TestAndSet(10) = %v, want Replay", v)
	}
	if v := w.TestAndSet(266); v != antireplay.Pass {
		t.Fatalf("TestAndSet(266) = %v, want Pass", v)
	}
	if v := w.Test(10); v != antireplay.Stale {
		t.Fatalf("Test(10) = %v, want Stale", v)
	}
}

// TestConcurrentTestAndSetExactlyOneWinner fans out racer goroutines
// across an errgroup, all calling TestAndSet against the same sn at
// once, for many distinct sn in parallel. Exactly one racer per sn
// must observe Pass (the CAS loop's winner); every other racer on
// that sn must observe Replay, never a lost update.
func TestConcurrentTestAndSetExactlyOneWinner(t *testing.T) {
	const (
		snCount = 64
		racers  = 16
	)
	w := antireplay.New(1024, false)
	var passCount [snCount]int32

	var g errgroup.Group
	for i := 0; i < snCount; i++ {
		// sn starts at 1: every slot starts at 0, so TestAndSet(0)
		// raises nothing and reports Replay.
		idx := i
		sn := uint64(i) + 1
		g.Go(func() error {
			var ig errgroup.Group
			for r := 0; r < racers; r++ {
				ig.Go(func() error {
					if w.TestAndSet(sn) == antireplay.Pass {
						atomic.AddInt32(&passCount[idx], 1)
					}
					return nil
				})
			}
			return ig.Wait()
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}
	for i, count := range passCount {
		if count != 1 {
			t.Fatalf("sn %d: got %d Pass verdicts, want exactly 1", i+1, count)
		}
	}
}

func TestInvalidWindowSizePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("New(3, false): want panic for non-power-of-two size")
		}
	}()
	antireplay.New(3, false)
}
