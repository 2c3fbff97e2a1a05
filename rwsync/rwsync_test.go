// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwsync_test

import (
	"encoding/binary"
	"testing"

	"code.hybscloud.com/concur/errhnd"
	"code.hybscloud.com/concur/rwsync"
	"golang.org/x/sync/errgroup"
)

// TestBasicSequence mirrors the original example: an uncontended read
// releases cleanly, but a read spanning a concurrent write reports
// the race back through ReleaseRead's return value, and the data
// underneath has still been fully written.
func TestBasicSequence(t *testing.T) {
	s := rwsync.New()
	data := make([]byte, 24)
	data[23] = 0xFF

	ticket := s.AcquireRead()
	if !s.ReleaseRead(ticket) {
		t.Fatalf("ReleaseRead with no intervening write: want true")
	}

	ticket = s.AcquireRead()
	s.Write([]byte("Mary had a little lamb"), data[:23])
	if s.ReleaseRead(ticket) {
		t.Fatalf("ReleaseRead spanning a write: want false")
	}
	if string(data[:23]) != "Mary had a little lamb" {
		t.Fatalf("data = %q, want %q", data[:23], "Mary had a little lamb")
	}
	if data[23] != 0xFF {
		t.Fatalf("data[23] = %x, want unchanged 0xFF", data[23])
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	s := rwsync.New()
	data := make([]byte, 5)
	s.Write([]byte("hello"), data)

	dst := make([]byte, 5)
	s.Read(dst, data)
	if string(dst) != "hello" {
		t.Fatalf("Read = %q, want %q", dst, "hello")
	}
}

// TestConcurrentReadRetriesPastWrite fans out one writer and several
// readers across an errgroup against an 8-byte buffer holding the
// same counter value duplicated in both halves: Read's retry loop
// must never hand back a torn mix of old and new halves, no matter
// how many writes race a given read.
func TestConcurrentReadRetriesPastWrite(t *testing.T) {
	s := rwsync.New()
	data := make([]byte, 8)

	var g errgroup.Group
	g.Go(func() error {
		for v := uint32(1); v <= 5000; v++ {
			buf := make([]byte, 8)
			binary.LittleEndian.PutUint32(buf[:4], v)
			binary.LittleEndian.PutUint32(buf[4:], v)
			s.Write(buf, data)
		}
		return nil
	})
	for r := 0; r < 8; r++ {
		g.Go(func() error {
			dst := make([]byte, 8)
			for i := 0; i < 5000; i++ {
				s.Read(dst, data)
				lo := binary.LittleEndian.Uint32(dst[:4])
				hi := binary.LittleEndian.Uint32(dst[4:])
				if lo != hi {
					t.Errorf("torn read observed: lo=%d hi=%d", lo, hi)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}
}

func TestRecursiveWrite(t *testing.T) {
	r := rwsync.NewRecursive()
	r.AcquireWrite()
	r.AcquireWrite()
	r.ReleaseWrite()
	r.ReleaseWrite()
}

func TestRecursiveReadAfterWriteRejected(t *testing.T) {
	var reported string
	prev := errhnd.Install(func(module, err string, _ uintptr) int {
		reported = module + ": " + err
		return 0
	})
	defer errhnd.Install(prev)

	r := rwsync.NewRecursive()
	r.AcquireWrite()
	r.AcquireRead()
	if reported == "" {
		t.Fatalf("acquire-read after acquire-write: want errhnd report, got none")
	}
	r.ReleaseWrite()
}

func TestRecursiveExcessReleaseReported(t *testing.T) {
	var reported string
	prev := errhnd.Install(func(module, err string, _ uintptr) int {
		reported = module + ": " + err
		return 0
	})
	defer errhnd.Install(prev)

	r := rwsync.NewRecursive()
	r.ReleaseWrite()
	if reported == "" {
		t.Fatalf("excess release: want errhnd report, got none")
	}
}
