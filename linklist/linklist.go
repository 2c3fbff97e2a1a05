// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package linklist implements Harris's non-blocking linked list:
// removal is a two-step protocol — mark the victim's next
// pointer's low bit, then CAS it out of its predecessor — so a
// concurrent insert or removal anywhere else in the list never
// observes a half-removed element.
//
// Every [Elem] is caller-owned and carries a Value field; callers
// compose it into their own element type the way they do with
// [code.hybscloud.com/concur/lfstack.Elem]. A [List] holds only its
// dummy head element: operations take an explicit predecessor, mirroring a cursor-driven
// traversal where the caller always holds onto the last element it
// visited.
package linklist

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/concur/errhnd"
)

const moduleName = "linklist"

const markRemove uintptr = 1

func hasMark(p uintptr) bool   { return p&markRemove != 0 }
func remMark(p uintptr) uintptr { return p &^ markRemove }
func addMark(p uintptr) uintptr { return p | markRemove }

// Status reports the outcome of a cursor, insert, or remove
// operation.
type Status int

const (
	// StatusSuccess: the operation completed.
	StatusSuccess Status = iota
	// StatusNotFound: elem was not found in the list (already removed).
	StatusNotFound
	// StatusPredMark: the predecessor is marked for removal; the
	// caller must re-resolve pred before retrying.
	StatusPredMark
	// StatusProgError: a programming error such as a nil element
	// passed to Insert, or an element whose address has the low bit
	// set. It is reported to errhnd first; the call returns this
	// status only if the installed handler returns (the default
	// handler panics).
	StatusProgError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNotFound:
		return "notfound"
	case StatusPredMark:
		return "predmark"
	case StatusProgError:
		return "progerror"
	default:
		return "unknown"
	}
}

// Elem is the intrusive link embedded in every list element.
type Elem[T any] struct {
	next  atomix.Uintptr // low bit: marked for removal
	Value T
}

// List is an unordered list with a dummy head element: Head returns
// the dummy element that every traversal and insert starts from.
type List[T any] struct {
	head Elem[T]
}

// New creates an empty list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// Head returns the list's dummy head element, used as the initial
// predecessor for [Insert], [Remove], and [NewCursor].
func (l *List[T]) Head() *Elem[T] {
	return &l.head
}

func reportf(err string, val uintptr) {
	errhnd.Report(moduleName, err, val)
}
