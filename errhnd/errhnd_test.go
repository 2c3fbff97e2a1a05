// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package errhnd_test

import (
	"testing"

	"code.hybscloud.com/concur/errhnd"
)

func TestDefaultHandlerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Report: expected panic from default handler")
		}
	}()
	errhnd.Report("lfstack", "null element", 0)
}

func TestInstallReplacesHandler(t *testing.T) {
	var got struct {
		module, err string
		val         uintptr
	}
	prev := errhnd.Install(func(module, err string, val uintptr) int {
		got.module, got.err, got.val = module, err, val
		return 7
	})
	defer errhnd.Install(prev)

	if rc := errhnd.Report("linklist", "null element", 42); rc != 7 {
		t.Fatalf("Report: got %d, want 7", rc)
	}
	if got.module != "linklist" || got.err != "null element" || got.val != 42 {
		t.Fatalf("Report: handler saw %+v", got)
	}
}

func TestInstallNilRestoresDefault(t *testing.T) {
	prev := errhnd.Install(func(string, string, uintptr) int { return 0 })
	errhnd.Install(nil)
	defer errhnd.Install(prev)

	defer func() {
		if recover() == nil {
			t.Fatalf("Report: expected panic after Install(nil) restored default")
		}
	}()
	errhnd.Report("rwlock_r", "excess release", 0)
}
