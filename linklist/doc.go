// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package linklist implements Harris's non-blocking linked list (see
// "A Pragmatic Implementation of Non-Blocking Linked-Lists", Harris
// 2001): every element's next pointer carries a one-bit remove mark,
// so a thread racing a concurrent removal either helps finish it or
// backs off and retries, and never observes a torn intermediate
// state.
//
// # Quick Start
//
//	type Item struct {
//	    link linklist.Elem[uint32]
//	}
//
//	list := linklist.New[uint32]()
//	a := &Item{}
//	linklist.Insert(list.Head(), &a.link)
//
//	cur := linklist.NewCursor(list.Head())
//	for cur.Next() == linklist.StatusSuccess && cur.Elem() != nil {
//	    // visit cur.Elem()
//	}
//
// # Ordering
//
// This package does not impose an ordering on its own — Insert links
// elem immediately after the pred the caller supplies, so callers
// that want a sorted list walk the list themselves (via [Cursor]) to
// find the correct pred before calling [Insert].
package linklist
