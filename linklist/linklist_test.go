// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package linklist_test

import (
	"testing"

	"code.hybscloud.com/concur/errhnd"
	"code.hybscloud.com/concur/linklist"
	"golang.org/x/sync/errgroup"
)

type item struct {
	link linklist.Elem[uint32]
}

func lookup(list *linklist.Elem[uint32], key uint32) *linklist.Elem[uint32] {
	cur := linklist.NewCursor(list)
	for cur.Next() == linklist.StatusSuccess {
		e := cur.Elem()
		if e == nil {
			return nil
		}
		if e.Value == key {
			return e
		}
	}
	return nil
}

// TestWorkedExample mirrors the canonical insert/remove/lookup
// sequence: insert key 10, insert key 20 after it, remove key 10,
// confirm key 20 is still reachable, remove key 10 again (notfound),
// then remove key 20 and confirm it is gone.
func TestWorkedExample(t *testing.T) {
	list := linklist.New[uint32]()

	e1 := &item{}
	e1.link.Value = 10
	if st := linklist.Insert(list.Head(), &e1.link); st != linklist.StatusSuccess {
		t.Fatalf("Insert(10): got %v, want success", st)
	}

	e2 := &item{}
	e2.link.Value = 20
	if st := linklist.Insert(&e1.link, &e2.link); st != linklist.StatusSuccess {
		t.Fatalf("Insert(20): got %v, want success", st)
	}

	if st := linklist.Remove(list.Head(), &e1.link); st != linklist.StatusSuccess {
		t.Fatalf("Remove(10): got %v, want success", st)
	}

	if got := lookup(list.Head(), 20); got != &e2.link {
		t.Fatalf("lookup(20): got %v, want e2", got)
	}

	if st := linklist.Remove(list.Head(), &e1.link); st != linklist.StatusNotFound {
		t.Fatalf("Remove(10) again: got %v, want notfound", st)
	}

	if st := linklist.Remove(list.Head(), &e2.link); st != linklist.StatusSuccess {
		t.Fatalf("Remove(20): got %v, want success", st)
	}

	if got := lookup(list.Head(), 20); got != nil {
		t.Fatalf("lookup(20) after removal: got %v, want nil", got)
	}
}

// TestConcurrentInsertAfterHead fans out goroutines racing to insert
// distinct elements immediately after Head with an errgroup, checking
// Insert's CAS retry loop never drops or duplicates an element.
func TestConcurrentInsertAfterHead(t *testing.T) {
	const (
		goroutines = 8
		perG       = 200
	)
	list := linklist.New[uint32]()
	items := make([]item, goroutines*perG)

	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		base := i * perG
		g.Go(func() error {
			for j := 0; j < perG; j++ {
				e := &items[base+j]
				e.link.Value = uint32(base + j)
				if st := linklist.Insert(list.Head(), &e.link); st != linklist.StatusSuccess {
					t.Errorf("Insert(%d): got %v, want success", e.link.Value, st)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}

	seen := make(map[uint32]bool, len(items))
	cur := linklist.NewCursor(list.Head())
	for cur.Next() == linklist.StatusSuccess {
		e := cur.Elem()
		if e == nil {
			break
		}
		if seen[e.Value] {
			t.Fatalf("value %d reachable more than once", e.Value)
		}
		seen[e.Value] = true
	}
	if len(seen) != len(items) {
		t.Fatalf("reachable elements = %d, want %d", len(seen), len(items))
	}
}

func TestInsertNilReportsError(t *testing.T) {
	// The default handler panics; install one that returns so Insert
	// can hand back its status.
	prev := errhnd.Install(func(string, string, uintptr) int { return 0 })
	defer errhnd.Install(prev)

	list := linklist.New[uint32]()
	if st := linklist.Insert[uint32](list.Head(), nil); st != linklist.StatusProgError {
		t.Fatalf("Insert(nil): got %v, want progerror", st)
	}
}

func TestCursorEmptyList(t *testing.T) {
	list := linklist.New[uint32]()
	cur := linklist.NewCursor(list.Head())
	if st := cur.Next(); st != linklist.StatusSuccess {
		t.Fatalf("Next() on empty list: got %v, want success", st)
	}
	if cur.Elem() != nil {
		t.Fatalf("Elem() at end of empty list: got non-nil")
	}
}
