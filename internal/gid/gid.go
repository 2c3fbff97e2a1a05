// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package gid stands in for the thread identifier the recursive
// rwlock family caches on first use. Go has no public goroutine-local
// storage and no public goroutine-id API, so the identity is instead
// read back out of the one place the runtime already prints it: the
// header line of runtime.Stack's output ("goroutine 123 [running]:").
// This is slower than a native thread-id register. The id is not
// cached: every rstack.Family Find, Push and Pop calls Current once,
// and some recursive-lock methods call it directly as well.
package gid

import (
	"runtime"
	"strconv"
)

// Current returns the calling goroutine's runtime id.
func Current() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	if len(b) < len(prefix) {
		return 0
	}
	b = b[len(prefix):]

	i := 0
	for i < len(b) && b[i] != ' ' {
		i++
	}
	id, err := strconv.ParseUint(string(b[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
