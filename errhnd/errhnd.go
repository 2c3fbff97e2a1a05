// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package errhnd provides a process-wide named-error dispatch point.
//
// Several packages in this module (lfstack, linklist, rwlock, rwsync,
// tfrwlock) detect invariant violations that are programming errors,
// not run-time conditions: a nil element pushed onto a stack, an
// excess release of a recursive lock, a write acquire following a
// read acquire on the same recursive lock. These are reported through
// a single installable handler rather than returned as Go errors,
// since the violating call site usually has no sane fallback — the
// caller decides at startup whether violations should log, abort, or
// unwind.
package errhnd

import "sync/atomic"

// Handler receives a named error report.
//
// module identifies the reporting package ("lfstack", "linklist",
// "rwlock_r", "rwsync_r", "tfrwlock_r"). err names the specific
// violation. val carries an auxiliary value (e.g. the offending
// pointer, a lock depth). The return value is caller-defined; this
// package does not interpret it.
type Handler func(module, err string, val uintptr) int

// current holds the installed handler. code.hybscloud.com/atomix has
// no generic atomic-pointer type (it covers Bool/Int32/Int64/Uint64/
// Uintptr/Uint128), so a process-wide function value is published via
// the standard library's atomic.Pointer — the one spot in this module
// where stdlib atomics, not atomix, are the right tool.
var current atomic.Pointer[Handler]

func init() {
	var h Handler = defaultHandler
	current.Store(&h)
}

// Install replaces the process-wide handler and returns the previous one.
func Install(fn Handler) Handler {
	if fn == nil {
		fn = defaultHandler
	}
	prev := current.Swap(&fn)
	return *prev
}

// Report dispatches a named error to the installed handler.
func Report(module, err string, val uintptr) int {
	h := *current.Load()
	return h(module, err, val)
}

// defaultHandler panics — the Go analogue of the reference library's
// default abort-on-report behavior.
func defaultHandler(module, err string, val uintptr) int {
	panic("errhnd: " + module + ": " + err)
}
