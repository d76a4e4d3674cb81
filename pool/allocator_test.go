package pool_test

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/momentics/poolkit/pool"
)

type record struct {
	ID   int64
	Name [16]byte
}

func TestAllocateFreeRoundTrip(t *testing.T) {
	pa := pool.New[record](pool.DefaultSettings())

	ptr := pa.Allocate(pool.Capture(0))
	if ptr == nil {
		t.Fatal("Allocate returned nil")
	}
	if got := pa.Stats().BlocksInUse; got != 1 {
		t.Fatalf("BlocksInUse = %d, want 1", got)
	}

	status := pa.Free(ptr, pool.Capture(0))
	if status != pool.StatusOK {
		t.Fatalf("Free status = %v, want OK", status)
	}
	if got := pa.Stats().BlocksInUse; got != 0 {
		t.Fatalf("BlocksInUse after free = %d, want 0", got)
	}
}

func TestFreeDoubleFreeDetected(t *testing.T) {
	var log bytes.Buffer
	settings := pool.DefaultSettings()
	settings.LogSink = &log
	pa := pool.New[record](settings)

	ptr := pa.Allocate(pool.Capture(0))
	if status := pa.Free(ptr, pool.Capture(0)); status != pool.StatusOK {
		t.Fatalf("first free status = %v, want OK", status)
	}
	status := pa.Free(ptr, pool.Capture(0))
	if status != pool.StatusFreed {
		t.Fatalf("second free status = %v, want FREED", status)
	}
	if log.Len() == 0 {
		t.Fatal("expected a diagnostic line on double free")
	}
}

func TestFreeMisalignedAddressDetected(t *testing.T) {
	pa := pool.New[record](pool.DefaultSettings())
	ptr := pa.Allocate(pool.Capture(0))

	misaligned := unsafe.Pointer(uintptr(ptr) + 1)
	status := pa.Free(misaligned, pool.Capture(0))
	if status != pool.StatusAlign {
		t.Fatalf("status = %v, want ALIGN", status)
	}
}

func TestFreePadViolationDetected(t *testing.T) {
	settings := pool.DefaultSettings()
	settings.PadBytes = 2
	pa := pool.New[record](settings)

	ptr := pa.Allocate(pool.Capture(0))
	// Smash the pad byte immediately after the block.
	after := (*byte)(unsafe.Pointer(uintptr(ptr) + unsafe.Sizeof(record{})))
	*after = 0x00

	status := pa.Free(ptr, pool.Capture(0))
	if status != pool.StatusPad {
		t.Fatalf("status = %v, want PAD", status)
	}
}

func TestExceptionsPanicsWithOpError(t *testing.T) {
	settings := pool.DefaultSettings()
	settings.Exceptions = true
	pa := pool.New[record](settings)

	ptr := pa.Allocate(pool.Capture(0))
	pa.Free(ptr, pool.Capture(0))

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on double free with exceptions enabled")
		}
		if _, ok := r.(*pool.OpError); !ok {
			t.Fatalf("panic value = %T, want *pool.OpError", r)
		}
	}()
	pa.Free(ptr, pool.Capture(0))
}

func TestPagesGrowAsNeeded(t *testing.T) {
	settings := pool.DefaultSettings()
	settings.BlocksPerPage = 2
	pa := pool.New[record](settings)

	for i := 0; i < 5; i++ {
		pa.Allocate(pool.Capture(0))
	}
	if got := pa.Stats().PagesInUse; got != 3 {
		t.Fatalf("PagesInUse = %d, want 3", got)
	}
}

func TestDumpMemoryInUseReportsLeaks(t *testing.T) {
	var out bytes.Buffer
	settings := pool.DefaultSettings()
	pa := pool.New[record](settings)
	pa.Allocate(pool.Capture(0))

	pa.DumpMemoryInUse(&out)
	if out.Len() == 0 {
		t.Fatal("expected a leak line for the still-allocated block")
	}
}
