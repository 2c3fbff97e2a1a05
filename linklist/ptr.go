// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package linklist

import "unsafe"

func uintptrOf[T any](e *Elem[T]) uintptr {
	return uintptr(unsafe.Pointer(e))
}

func elemFrom[T any](p uintptr) *Elem[T] {
	return (*Elem[T])(unsafe.Pointer(remMark(p)))
}
