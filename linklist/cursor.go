// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package linklist

// Cursor walks a list from a starting element, helping remove any
// marked elements it passes over along the way.
type Cursor[T any] struct {
	curr *Elem[T]
}

// NewCursor creates a cursor positioned at start (typically a list's
// [List.Head]).
func NewCursor[T any](start *Elem[T]) *Cursor[T] {
	if start == nil {
		reportf("NULL list", 0)
		return nil
	}
	return &Cursor[T]{curr: start}
}

// Elem returns the element the cursor currently sits on, or nil once
// the end of the list has been reached.
func (c *Cursor[T]) Elem() *Elem[T] {
	return c.curr
}

// Next advances the cursor to the next live (unmarked) element,
// unlinking any marked elements it finds in between. It returns
// [StatusProgError] if the cursor has already reached the end of the
// list.
func (c *Cursor[T]) Next() Status {
	if c.curr == nil {
		reportf("cursor.curr == nil", 0)
		return StatusProgError
	}
	pred := c.curr
	curr := pred.next.LoadAcquire()
	for remMark(curr) != 0 {
		cur := elemFrom[T](curr)
		next := cur.next.LoadAcquire()
		if hasMark(next) {
			// cur is marked for removal; help remove it.
			n := remMark(next)
			if pred.next.CompareAndSwapAcqRel(curr, n) {
				curr = n
				continue
			}
			return StatusPredMark
		}
		c.curr = cur
		return StatusSuccess
	}
	c.curr = nil
	return StatusSuccess
}
