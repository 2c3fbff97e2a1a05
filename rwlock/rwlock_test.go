// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwlock_test

import (
	"testing"

	"code.hybscloud.com/concur/rwlock"
	"golang.org/x/sync/errgroup"
)

// TestBasicSequence mirrors the original example's acquire/release
// trace: nested readers, a writer that must wait them out, and the
// try-acquire variants failing exactly when contended.
func TestBasicSequence(t *testing.T) {
	l := rwlock.New()

	l.AcquireRead()
	if !l.TryAcquireRead() {
		t.Fatalf("TryAcquireRead with only readers present: want success")
	}
	if l.TryAcquireWrite() {
		t.Fatalf("TryAcquireWrite with readers present: want failure")
	}
	l.AcquireRead()
	l.ReleaseRead()
	l.ReleaseRead()
	if l.TryAcquireWrite() {
		t.Fatalf("TryAcquireWrite with a reader present: want failure")
	}
	l.ReleaseRead()

	l.AcquireWrite()
	if l.TryAcquireWrite() {
		t.Fatalf("TryAcquireWrite with a writer present: want failure")
	}
	if l.TryAcquireRead() {
		t.Fatalf("TryAcquireRead with a writer present: want failure")
	}
	l.ReleaseWrite()

	if !l.TryAcquireWrite() {
		t.Fatalf("TryAcquireWrite on a free lock: want success")
	}
	l.ReleaseWrite()

	if !l.TryAcquireRead() {
		t.Fatalf("TryAcquireRead on a free lock: want success")
	}
	l.ReleaseRead()
}

// TestConcurrentReadersExcludeWriter fans out reader and writer
// goroutines across an errgroup against a pair of counters updated
// non-atomically under the write lock: a reader that ever observes
// the two counters out of step caught a writer mid-update, proving
// AcquireWrite excludes every concurrent AcquireRead.
func TestConcurrentReadersExcludeWriter(t *testing.T) {
	l := rwlock.New()
	var a, b int

	var g errgroup.Group
	for w := 0; w < 2; w++ {
		g.Go(func() error {
			for i := 0; i < 2000; i++ {
				l.AcquireWrite()
				a++
				b++
				l.ReleaseWrite()
			}
			return nil
		})
	}
	for r := 0; r < 8; r++ {
		g.Go(func() error {
			for i := 0; i < 2000; i++ {
				l.AcquireRead()
				if a != b {
					t.Errorf("torn write observed: a=%d b=%d", a, b)
				}
				l.ReleaseRead()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}
	if a != 4000 || b != 4000 {
		t.Fatalf("final counters = %d, %d, want 4000, 4000", a, b)
	}
}

func TestRecursiveReadThenRead(t *testing.T) {
	r := rwlock.NewRecursive()
	r.AcquireRead()
	r.AcquireRead()
	r.ReleaseRead()
	r.ReleaseRead()
}

func TestRecursiveWriteThenRead(t *testing.T) {
	r := rwlock.NewRecursive()
	r.AcquireWrite()
	r.AcquireRead()
	r.ReleaseRead()
	r.ReleaseWrite()
}

func TestRecursiveWriteThenWrite(t *testing.T) {
	r := rwlock.NewRecursive()
	r.AcquireWrite()
	r.AcquireWrite()
	r.ReleaseWrite()
	r.ReleaseWrite()
}
