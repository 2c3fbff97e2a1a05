// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msqueue_test

import (
	"sync/atomic"
	"testing"

	"code.hybscloud.com/concur/msqueue"
	"code.hybscloud.com/concur/smr"
	"golang.org/x/sync/errgroup"
)

func testFIFO(t *testing.T, q msqueue.Queue[uint32]) {
	t.Helper()

	if _, ok := q.Dequeue(); ok {
		t.Fatalf("Dequeue on empty: expected ok=false")
	}

	n1 := &msqueue.Node[uint32]{Value: 242}
	q.Enqueue(n1)
	got, ok := q.Dequeue()
	if !ok || got.Value != 242 {
		t.Fatalf("Dequeue: got (%v,%v), want (242,true)", got, ok)
	}

	if _, ok := q.Dequeue(); ok {
		t.Fatalf("Dequeue on empty: expected ok=false")
	}

	n2 := &msqueue.Node[uint32]{Value: 1}
	n3 := &msqueue.Node[uint32]{Value: 2}
	q.Enqueue(n2)
	q.Enqueue(n3)

	got, ok = q.Dequeue()
	if !ok || got.Value != 1 {
		t.Fatalf("Dequeue: got (%v,%v), want (1,true)", got, ok)
	}
	got, ok = q.Dequeue()
	if !ok || got.Value != 2 {
		t.Fatalf("Dequeue: got (%v,%v), want (2,true)", got, ok)
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatalf("Dequeue on empty: expected ok=false")
	}
}

func TestLockQueueFIFO(t *testing.T) {
	testFIFO(t, msqueue.NewLock[uint32](&msqueue.Node[uint32]{}))
}

func TestTagQueueFIFO(t *testing.T) {
	testFIFO(t, msqueue.NewTag[uint32](&msqueue.Node[uint32]{}))
}

func TestSMRQueueFIFO(t *testing.T) {
	testFIFO(t, msqueue.NewSMR[uint32](smr.NewDomain(), &msqueue.Node[uint32]{}))
}

// TestTwoThreadsEnqueueThenDequeue mirrors the two-thread scenario
// exercised against each ABA-defense variant: each side enqueues its
// own value and dequeues exactly one, and every value dequeued must
// be one of the two that were enqueued.
func TestTwoThreadsEnqueueThenDequeue(t *testing.T) {
	q := msqueue.NewTag[uint32](&msqueue.Node[uint32]{})
	values := []uint32{242, 243}
	done := make(chan uint32, 2)
	for _, v := range values {
		go func(v uint32) {
			q.Enqueue(&msqueue.Node[uint32]{Value: v})
			n, ok := q.Dequeue()
			if !ok {
				done <- 0
				return
			}
			done <- n.Value
		}(v)
	}
	seen := map[uint32]bool{}
	for range values {
		v := <-done
		if v != 242 && v != 243 {
			t.Fatalf("Dequeue: got %d, want 242 or 243", v)
		}
		seen[v] = true
	}
}

// TestTagQueueConcurrentStress fans out producers and consumers
// across an errgroup and checks every enqueued value is dequeued
// exactly once — the set-equality property spec.md requires of the
// ABA-defense variants under concurrency, independent of FIFO order.
func TestTagQueueConcurrentStress(t *testing.T) {
	const (
		producers   = 4
		perProducer = 1000
	)
	q := msqueue.NewTag[uint32](&msqueue.Node[uint32]{})

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		base := uint32(p * perProducer)
		g.Go(func() error {
			for i := uint32(0); i < perProducer; i++ {
				q.Enqueue(&msqueue.Node[uint32]{Value: base + i})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}

	var seen [producers * perProducer]int32
	var wg errgroup.Group
	total := producers * perProducer
	results := make(chan uint32, total)
	for c := 0; c < 4; c++ {
		wg.Go(func() error {
			for {
				n, ok := q.Dequeue()
				if !ok {
					return nil
				}
				results <- n.Value
			}
		})
	}
	if err := wg.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}
	close(results)
	for v := range results {
		if atomic.AddInt32(&seen[v], 1) != 1 {
			t.Fatalf("value %d dequeued more than once", v)
		}
	}
	for v, count := range seen {
		if count != 1 {
			t.Fatalf("value %d seen %d times, want 1", v, count)
		}
	}
}

func TestLockQueueCloseOnNonEmptyPanics(t *testing.T) {
	q := msqueue.NewLock[uint32](&msqueue.Node[uint32]{})
	q.Enqueue(&msqueue.Node[uint32]{Value: 1})
	defer func() {
		if recover() == nil {
			t.Fatalf("Close on non-empty queue: expected panic")
		}
	}()
	q.Close()
}

func TestNewLockNilDummyReportsError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewLock(nil): expected the default error handler to panic")
		}
	}()
	msqueue.NewLock[uint32](nil)
}
