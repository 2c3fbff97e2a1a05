// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringbuf_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"code.hybscloud.com/concur/lfring"
	"code.hybscloud.com/concur/ringbuf"
	"golang.org/x/sync/errgroup"
)

func TestBasicEnqueueDequeue(t *testing.T) {
	r, err := ringbuf.New[int](4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 4; i++ {
		v := i
		if err := r.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	for i := 0; i < 4; i++ {
		v, err := r.Dequeue()
		if err != nil || v != i {
			t.Fatalf("Dequeue() = %d, %v, want %d, nil", v, err, i)
		}
	}
}

func TestNBEnqTruncatesOnFull(t *testing.T) {
	r, err := ringbuf.New[int](4, ringbuf.NBEnq())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 4; i++ {
		v := i
		if err := r.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	v := 4
	if err := r.Enqueue(&v); !lfring.IsWouldBlock(err) {
		t.Fatalf("Enqueue on full non-blocking ring: want ErrWouldBlock, got %v", err)
	}
}

func TestNBDeqTruncatesOnEmpty(t *testing.T) {
	r, err := ringbuf.New[int](4, ringbuf.NBDeq())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Dequeue(); !lfring.IsWouldBlock(err) {
		t.Fatalf("Dequeue on empty non-blocking ring: want ErrWouldBlock, got %v", err)
	}
}

func TestIncompatibleModesRejected(t *testing.T) {
	if _, err := ringbuf.New[int](4, ringbuf.LFDeq(), ringbuf.NBEnq()); err != ringbuf.ErrIncompatibleModes {
		t.Fatalf("New with LFDeq+NBEnq: want ErrIncompatibleModes, got %v", err)
	}
}

// TestBlockingEnqueueWaitsForRoom exercises the spin-retry path: a
// full ring's Enqueue only returns once a concurrent Dequeue frees a
// slot.
func TestBlockingEnqueueWaitsForRoom(t *testing.T) {
	r, err := ringbuf.New[int](2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, b := 1, 2
	if err := r.Enqueue(&a); err != nil {
		t.Fatal(err)
	}
	if err := r.Enqueue(&b); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	done := make(chan struct{})
	go func() {
		defer wg.Done()
		c := 3
		if err := r.Enqueue(&c); err != nil {
			t.Errorf("blocked Enqueue: %v", err)
		}
		close(done)
	}()

	if _, err := r.Dequeue(); err != nil {
		t.Fatal(err)
	}
	wg.Wait()
	select {
	case <-done:
	default:
		t.Fatalf("blocked Enqueue never completed after room freed")
	}
}

// TestBlockingRingConcurrentStress fans out blocking producers and
// consumers across a small ring with an errgroup and checks every
// produced value is dequeued exactly once, with no deadlock.
func TestBlockingRingConcurrentStress(t *testing.T) {
	const (
		producers   = 4
		perProducer = 1000
	)
	r, err := ringbuf.New[int](16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		base := p * perProducer
		g.Go(func() error {
			for i := 0; i < perProducer; i++ {
				v := base + i
				if err := r.Enqueue(&v); err != nil {
					return err
				}
			}
			return nil
		})
	}

	var seen [producers * perProducer]int32
	for c := 0; c < 4; c++ {
		g.Go(func() error {
			for i := 0; i < producers*perProducer/4; i++ {
				v, err := r.Dequeue()
				if err != nil {
					return err
				}
				if atomic.AddInt32(&seen[v], 1) != 1 {
					t.Errorf("value %d dequeued more than once", v)
				}
			}
			return nil
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

func TestBatchRoundTrip(t *testing.T) {
	r, err := ringbuf.New[int](8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in := []int{1, 2, 3, 4, 5}
	if n := r.EnqueueBatch(in); n != len(in) {
		t.Fatalf("EnqueueBatch = %d, want %d", n, len(in))
	}
	out := make([]int, 5)
	n, index := r.DequeueBatch(out)
	if n != 5 || index != 0 {
		t.Fatalf("DequeueBatch = %d, %d, want 5, 0", n, index)
	}
	for i, v := range out {
		if v != in[i] {
			t.Fatalf("out[%d] = %d, want %d", i, v, in[i])
		}
	}
}
