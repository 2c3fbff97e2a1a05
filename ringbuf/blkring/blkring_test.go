// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package blkring_test

import (
	"testing"

	"code.hybscloud.com/concur/ringbuf/blkring"
)

// TestWorkedExample reproduces the order laid out step by step:
// capacity 5; enqueue [1]; dequeue 1 -> index=0, v=[1]; enqueue
// [2,3,4,5,6]; dequeue 1 -> index=1, v=[2]; dequeue 2 -> index=2,
// v=[3,4]; non-blocking dequeue 3 -> returns 2, index=4, v=[5,6].
func TestWorkedExample(t *testing.T) {
	r := blkring.New[int](5)

	if err := r.Enqueue([]int{1}); err != nil {
		t.Fatalf("Enqueue([1]): %v", err)
	}

	out := make([]int, 1)
	index, err := r.Dequeue(out)
	if err != nil || index != 0 || out[0] != 1 {
		t.Fatalf("Dequeue(1) = index=%d, v=%v, err=%v; want index=0, v=[1], nil", index, out, err)
	}

	if err := r.Enqueue([]int{2, 3, 4, 5, 6}); err != nil {
		t.Fatalf("Enqueue([2..6]): %v", err)
	}

	out = make([]int, 1)
	index, err = r.Dequeue(out)
	if err != nil || index != 1 || out[0] != 2 {
		t.Fatalf("Dequeue(1) = index=%d, v=%v, err=%v; want index=1, v=[2], nil", index, out, err)
	}

	out = make([]int, 2)
	index, err = r.Dequeue(out)
	if err != nil || index != 2 || out[0] != 3 || out[1] != 4 {
		t.Fatalf("Dequeue(2) = index=%d, v=%v, err=%v; want index=2, v=[3,4], nil", index, out, err)
	}

	out = make([]int, 3)
	n, index := r.DequeueNonBlocking(out)
	if n != 2 || index != 4 || out[0] != 5 || out[1] != 6 {
		t.Fatalf("DequeueNonBlocking(3) = n=%d, index=%d, v=%v; want n=2, index=4, v=[5,6,_]", n, index, out)
	}
}
