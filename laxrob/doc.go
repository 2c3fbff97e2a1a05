// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package laxrob's name comes from its tolerance for holes: a slot
// that never gets filled does not block the slots behind it from
// retiring forever, only until the window slides past it — at which
// point it retires out of order, as a no-op gap in the callback's
// view of the sequence.
package laxrob
