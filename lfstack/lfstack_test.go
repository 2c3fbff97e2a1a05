// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfstack_test

import (
	"sync/atomic"
	"testing"

	"code.hybscloud.com/concur/lfstack"
	"code.hybscloud.com/concur/smr"
	"golang.org/x/sync/errgroup"
)

func testBasicLIFO(t *testing.T, stk lfstack.Stack[uint32]) {
	t.Helper()

	if _, ok := stk.Dequeue(); ok {
		t.Fatalf("Dequeue on empty: expected ok=false")
	}

	e10 := &lfstack.Elem[uint32]{Value: 10}
	stk.Enqueue(e10)
	got, ok := stk.Dequeue()
	if !ok || got.Value != 10 {
		t.Fatalf("Dequeue: got (%v,%v), want (10,true)", got, ok)
	}

	if _, ok := stk.Dequeue(); ok {
		t.Fatalf("Dequeue on empty: expected ok=false")
	}

	e20 := &lfstack.Elem[uint32]{Value: 20}
	e30 := &lfstack.Elem[uint32]{Value: 30}
	stk.Enqueue(e20)
	stk.Enqueue(e30)

	got, ok = stk.Dequeue()
	if !ok || got.Value != 30 {
		t.Fatalf("Dequeue: got (%v,%v), want (30,true)", got, ok)
	}
	got, ok = stk.Dequeue()
	if !ok || got.Value != 20 {
		t.Fatalf("Dequeue: got (%v,%v), want (20,true)", got, ok)
	}
	if _, ok := stk.Dequeue(); ok {
		t.Fatalf("Dequeue on empty: expected ok=false")
	}
}

func TestLockStackLIFO(t *testing.T) {
	testBasicLIFO(t, lfstack.NewLock[uint32]())
}

func TestTagStackLIFO(t *testing.T) {
	testBasicLIFO(t, lfstack.NewTag[uint32]())
}

func TestLLSCStackLIFO(t *testing.T) {
	testBasicLIFO(t, lfstack.NewLLSC[uint32]())
}

// TestSMRStackSetEquality checks the documented relaxation: the SMR
// variant is only required to preserve the set of pushed elements,
// not push order.
func TestSMRStackSetEquality(t *testing.T) {
	stk := lfstack.NewSMR[uint32](smr.NewDomain())

	want := map[uint32]bool{}
	for _, v := range []uint32{10, 20, 30} {
		stk.Enqueue(&lfstack.Elem[uint32]{Value: v})
		want[v] = true
	}

	got := map[uint32]bool{}
	for {
		e, ok := stk.Dequeue()
		if !ok {
			break
		}
		got[e.Value] = true
	}

	if len(got) != len(want) {
		t.Fatalf("Dequeue set: got %v, want %v", got, want)
	}
	for v := range want {
		if !got[v] {
			t.Fatalf("Dequeue set: missing %d", v)
		}
	}
}

// TestTagStackConcurrentStress fans out producers and consumers
// across an errgroup and checks every pushed value is popped exactly
// once — LIFO order is not required under concurrent access, only
// the set-equality property the SMR variant already documents.
func TestTagStackConcurrentStress(t *testing.T) {
	const (
		producers   = 4
		perProducer = 1000
	)
	stk := lfstack.NewTag[uint32]()

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		base := uint32(p * perProducer)
		g.Go(func() error {
			for i := uint32(0); i < perProducer; i++ {
				stk.Enqueue(&lfstack.Elem[uint32]{Value: base + i})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}

	var seen [producers * perProducer]int32
	var wg errgroup.Group
	results := make(chan uint32, producers*perProducer)
	for c := 0; c < 4; c++ {
		wg.Go(func() error {
			for {
				e, ok := stk.Dequeue()
				if !ok {
					return nil
				}
				results <- e.Value
			}
		})
	}
	if err := wg.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}
	close(results)
	for v := range results {
		if atomic.AddInt32(&seen[v], 1) != 1 {
			t.Fatalf("value %d popped more than once", v)
		}
	}
	for v, count := range seen {
		if count != 1 {
			t.Fatalf("value %d seen %d times, want 1", v, count)
		}
	}
}

func TestEnqueueNilReportsError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Enqueue(nil): expected the default error handler to panic")
		}
	}()
	lfstack.NewTag[uint32]().Enqueue(nil)
}
