// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfring_test

import (
	"sync/atomic"
	"testing"
	"unsafe"

	"code.hybscloud.com/concur/lfring"
	"code.hybscloud.com/spin"
	"golang.org/x/sync/errgroup"
)

func ptrTo(v *int) unsafe.Pointer { return unsafe.Pointer(v) }

// TestCapacityOneWorkedExample reproduces the step-by-step sequence:
// alloc capacity 1; dequeue returns 0; enqueue [1] returns 1; enqueue
// [2,3] returns 0; dequeue [_] returns 1 with value 1; enqueue
// [2,3,4] returns 1; dequeue [_,_] returns 1 with value 2.
func TestCapacityOneWorkedExample(t *testing.T) {
	q := lfring.NewMPMC[int](1)

	out := make([]int, 1)
	if n, _ := q.DequeueBatch(out); n != 0 {
		t.Fatalf("DequeueBatch on empty capacity-1 queue = %d, want 0", n)
	}

	if n := q.EnqueueBatch([]int{1}); n != 1 {
		t.Fatalf("EnqueueBatch([1]) = %d, want 1", n)
	}

	if n := q.EnqueueBatch([]int{2, 3}); n != 0 {
		t.Fatalf("EnqueueBatch([2,3]) on full capacity-1 queue = %d, want 0", n)
	}

	out = make([]int, 1)
	n, _ := q.DequeueBatch(out)
	if n != 1 || out[0] != 1 {
		t.Fatalf("DequeueBatch = %d, %v, want 1, [1]", n, out)
	}

	if n := q.EnqueueBatch([]int{2, 3, 4}); n != 1 {
		t.Fatalf("EnqueueBatch([2,3,4]) = %d, want 1", n)
	}

	out = make([]int, 2)
	n, _ = q.DequeueBatch(out)
	if n != 1 || out[0] != 2 {
		t.Fatalf("DequeueBatch = %d, %v, want 1, [2,_]", n, out)
	}
}

// testQueue is the subset of behavior shared by every non-blocking
// variant: FIFO single-element round trip, ErrWouldBlock on empty,
// and the batch API filling and draining in order. wantIndex is the
// producer position of the first batch element.
func testQueue(t *testing.T, q lfring.Queue[int], wantIndex uint64) {
	t.Helper()

	if _, err := q.Dequeue(); !lfring.IsWouldBlock(err) {
		t.Fatalf("Dequeue on empty: want ErrWouldBlock, got %v", err)
	}

	v := 7
	if err := q.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	got, err := q.Dequeue()
	if err != nil || got != 7 {
		t.Fatalf("Dequeue = %d, %v, want 7, nil", got, err)
	}

	bp, ok := q.(lfring.BatchProducer[int])
	if !ok {
		t.Fatalf("%T does not implement BatchProducer[int]", q)
	}
	bc, ok := q.(lfring.BatchConsumer[int])
	if !ok {
		t.Fatalf("%T does not implement BatchConsumer[int]", q)
	}

	in := make([]int, q.Cap())
	for i := range in {
		in[i] = i + 1
	}
	if n := bp.EnqueueBatch(in); n != len(in) {
		t.Fatalf("EnqueueBatch = %d, want %d", n, len(in))
	}
	if n := bp.EnqueueBatch([]int{999}); n != 0 {
		t.Fatalf("EnqueueBatch on full queue = %d, want 0", n)
	}

	out := make([]int, len(in))
	n, index := bc.DequeueBatch(out)
	if n != len(in) || index != wantIndex {
		t.Fatalf("DequeueBatch = %d, index=%d, want %d, index=%d", n, index, len(in), wantIndex)
	}
	for i, got := range out {
		if got != in[i] {
			t.Fatalf("out[%d] = %d, want %d", i, got, in[i])
		}
	}
	if n, _ := bc.DequeueBatch(out); n != 0 {
		t.Fatalf("DequeueBatch on empty queue = %d, want 0", n)
	}
}

// The FAA-based multi-consumer variants (MPMC, SPMC) claim a position
// even for a Dequeue that finds the queue empty, so after the opening
// empty Dequeue and the round trip of 7 the batch starts at position 2.
func TestMPMCQueue(t *testing.T)    { testQueue(t, lfring.NewMPMC[int](8), 2) }
func TestMPSCQueue(t *testing.T)    { testQueue(t, lfring.NewMPSC[int](8), 1) }
func TestSPMCQueue(t *testing.T)    { testQueue(t, lfring.NewSPMC[int](8), 2) }
func TestSPSCQueue(t *testing.T)    { testQueue(t, lfring.NewSPSC[int](8), 1) }
func TestMPMCSeqQueue(t *testing.T) { testQueue(t, lfring.NewMPMCSeq[int](8), 1) }
func TestMPSCSeqQueue(t *testing.T) { testQueue(t, lfring.NewMPSCSeq[int](8), 1) }
func TestSPMCSeqQueue(t *testing.T) { testQueue(t, lfring.NewSPMCSeq[int](8), 1) }

// testIndirect is the shared round trip for the uintptr-handle
// variants: enqueue a run of indices, dequeue them back in order.
func testIndirect(t *testing.T, q lfring.QueueIndirect) {
	t.Helper()

	if _, err := q.Dequeue(); !lfring.IsWouldBlock(err) {
		t.Fatalf("Dequeue on empty: want ErrWouldBlock, got %v", err)
	}
	for i := uintptr(0); i < uintptr(q.Cap()); i++ {
		if err := q.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	for i := uintptr(0); i < uintptr(q.Cap()); i++ {
		got, err := q.Dequeue()
		if err != nil || got != i {
			t.Fatalf("Dequeue = %d, %v, want %d, nil", got, err, i)
		}
	}
}

func TestMPMCIndirect(t *testing.T)        { testIndirect(t, lfring.NewMPMCIndirect(8)) }
func TestMPMCCompactIndirect(t *testing.T) { testIndirect(t, lfring.NewMPMCCompactIndirect(8)) }
func TestMPSCIndirect(t *testing.T)        { testIndirect(t, lfring.NewMPSCIndirect(8)) }
func TestSPMCIndirect(t *testing.T)        { testIndirect(t, lfring.NewSPMCIndirect(8)) }
func TestSPSCIndirect(t *testing.T)        { testIndirect(t, lfring.NewSPSCIndirect(8)) }

// testPtr is the shared round trip for the unsafe.Pointer variants.
func testPtr(t *testing.T, q lfring.QueuePtr) {
	t.Helper()

	vals := []int{1, 2, 3}
	for i := range vals {
		if err := q.Enqueue(ptrTo(&vals[i])); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	for i := range vals {
		got, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if *(*int)(got) != vals[i] {
			t.Fatalf("Dequeue = %d, want %d", *(*int)(got), vals[i])
		}
	}
}

func TestMPMCPtr(t *testing.T) { testPtr(t, lfring.NewMPMCPtr(8)) }
func TestMPSCPtr(t *testing.T) { testPtr(t, lfring.NewMPSCPtr(8)) }
func TestSPMCPtr(t *testing.T) { testPtr(t, lfring.NewSPMCPtr(8)) }
func TestSPSCPtr(t *testing.T) { testPtr(t, lfring.NewSPSCPtr(8)) }

func TestBuilderSelectsAlgorithm(t *testing.T) {
	if q := lfring.Build[int](lfring.New(8).SingleProducer().SingleConsumer()); q.Cap() != 8 {
		t.Fatalf("SPSC Cap() = %d, want 8", q.Cap())
	}
	if q := lfring.Build[int](lfring.New(8).SingleProducer()); q.Cap() != 8 {
		t.Fatalf("SPMC Cap() = %d, want 8", q.Cap())
	}
	if q := lfring.Build[int](lfring.New(8).SingleConsumer()); q.Cap() != 8 {
		t.Fatalf("MPSC Cap() = %d, want 8", q.Cap())
	}
	if q := lfring.Build[int](lfring.New(8)); q.Cap() != 8 {
		t.Fatalf("MPMC Cap() = %d, want 8", q.Cap())
	}
}

// TestMPMCConcurrentStress fans out producers and consumers across an
// errgroup and checks every produced value is dequeued exactly once.
func TestMPMCConcurrentStress(t *testing.T) {
	const (
		producers   = 4
		perProducer = 2000
		consumers   = 4
	)
	q := lfring.NewMPMC[int](256)

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		base := p * perProducer
		g.Go(func() error {
			sw := spin.Wait{}
			for i := 0; i < perProducer; i++ {
				v := base + i
				for q.Enqueue(&v) != nil {
					sw.Once()
				}
			}
			return nil
		})
	}

	var seen [producers * perProducer]int32
	var total atomic.Int64
	for c := 0; c < consumers; c++ {
		g.Go(func() error {
			sw := spin.Wait{}
			for {
				if total.Load() >= producers*perProducer {
					return nil
				}
				v, err := q.Dequeue()
				if err != nil {
					sw.Once()
					continue
				}
				if atomic.AddInt32(&seen[v], 1) != 1 {
					t.Errorf("value %d dequeued more than once", v)
				}
				total.Add(1)
			}
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}
	for v, count := range seen {
		if count != 1 {
			t.Fatalf("value %d seen %d times, want 1", v, count)
		}
	}
}

func TestNewCapacityFloor(t *testing.T) {
	q := lfring.NewMPMC[int](1)
	if q.Cap() != 1 {
		t.Fatalf("NewMPMC(1).Cap() = %d, want 1", q.Cap())
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("NewMPMC(0): want panic")
		}
	}()
	lfring.NewMPMC[int](0)
}
