package handle_test

import (
	"bytes"
	"os"
	"testing"
	"unsafe"

	"github.com/momentics/poolkit/handle"
	"github.com/momentics/poolkit/pool"
)

// stubFreer records FreeRaw calls without owning real storage; the tests
// that use it allocate storage via Go's runtime instead of a real
// pool.PoolAllocator, since handle-level bookkeeping doesn't care what
// backs storage.
type stubFreer struct {
	freed  []unsafe.Pointer
	status pool.FreeStatus
}

func (f *stubFreer) FreeRaw(addr unsafe.Pointer, site pool.Callsite) pool.FreeStatus {
	f.freed = append(f.freed, addr)
	return f.status
}

// testLog is shared across every test in this file: handle.Pool() is a
// process-wide singleton, so handle.Configure only has an effect before the
// very first CreateHandle call in the whole test binary. TestMain performs
// that one configuration; individual tests reset testLog instead of
// reconfiguring.
var testLog bytes.Buffer

func TestMain(m *testing.M) {
	handle.Configure(pool.Settings{Debug: true, LogSink: &testLog})
	os.Exit(m.Run())
}

func TestAddRefRemoveRefBalanced(t *testing.T) {
	var payload int
	f := &stubFreer{}
	h := handle.CreateHandle(f, unsafe.Pointer(&payload), pool.Capture(0))
	h.AddRef()
	h.AddRef()
	if h.RefCount() != 2 {
		t.Fatalf("RefCount = %d, want 2", h.RefCount())
	}

	h.RemoveRef(pool.Capture(0))
	if h.RefCount() != 1 {
		t.Fatalf("RefCount after one RemoveRef = %d, want 1", h.RefCount())
	}
	h.RemoveRef(pool.Capture(0))
}

func TestRemoveRefToZeroWithEmptyStorageIsClean(t *testing.T) {
	testLog.Reset()
	f := &stubFreer{status: pool.StatusOK}
	var payload int
	h := handle.CreateHandle(f, unsafe.Pointer(&payload), pool.Capture(0))
	h.AddRef()
	h.FreeStorage(pool.Capture(0))
	if !h.IsNull() {
		t.Fatal("expected storage to be nil after FreeStorage")
	}

	h.RemoveRef(pool.Capture(0))
	if testLog.Len() != 0 {
		t.Fatalf("unexpected diagnostic on clean collection: %q", testLog.String())
	}
}

func TestRemoveRefToZeroWithLiveStorageIsDangling(t *testing.T) {
	testLog.Reset()
	f := &stubFreer{status: pool.StatusOK}
	var payload int
	h := handle.CreateHandle(f, unsafe.Pointer(&payload), pool.Capture(0))
	h.AddRef()

	h.RemoveRef(pool.Capture(0))
	if testLog.Len() == 0 {
		t.Fatal("expected a DanglingReference diagnostic")
	}
}

func TestDoubleFreeStorageDiagnosed(t *testing.T) {
	f := &stubFreer{status: pool.StatusOK}
	var payload int
	h := handle.CreateHandle(f, unsafe.Pointer(&payload), pool.Capture(0))
	h.AddRef()

	h.FreeStorage(pool.Capture(0))
	testLog.Reset()
	h.FreeStorage(pool.Capture(0))
	if testLog.Len() == 0 {
		t.Fatal("expected a double-free diagnostic on the second FreeStorage")
	}
	h.RemoveRef(pool.Capture(0))
}

func TestNullHandleNeverCollected(t *testing.T) {
	before := handle.Null.RefCount()
	handle.Null.AddRef()
	handle.Null.RemoveRef(pool.Capture(0))
	if handle.Null.RefCount() != before {
		t.Fatalf("Null.RefCount changed net: before=%d after=%d", before, handle.Null.RefCount())
	}
}
