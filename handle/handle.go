// File: handle/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handle is a reference-counted indirection node with dangling-access
// detection. Handles are themselves allocated from a process-wide,
// self-hosted pool.PoolAllocator[Handle], constructed lazily behind a
// sync.Once the first time one is needed.

package handle

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/momentics/poolkit/pool"
)

// Freer is the small dispatch record a Handle uses to recover its owning
// pool's Free at call time, without Handle knowing the pool's concrete
// element type. Any *pool.PoolAllocator[T] satisfies this interface via its
// FreeRaw method.
type Freer interface {
	FreeRaw(addr unsafe.Pointer, site pool.Callsite) pool.FreeStatus
}

// Handle is a reference-counted indirection node naming one block owned by
// some pool.PoolAllocator[T].
type Handle struct {
	storage   unsafe.Pointer
	freer     Freer
	refCount  int
	allocSite pool.Callsite
}

// liveRefs mirrors every outstanding Handle's Freer and allocSite in
// ordinary, GC-scanned map storage. Handle values live inside Pool()'s
// noscan []byte page bytes (see pool.page), so the runtime never traces
// pointers stored there: a Freer interface value buried in that memory
// would leave its referenced *pool.PoolAllocator[T] with no GC root at all,
// making it collectible out from under a Handle that still intends to call
// FreeRaw on it. This map is that root, kept in step with CreateHandle and
// RemoveRef's collection of a Handle back to Pool().
var liveRefs = map[*Handle]handleRefs{}

type handleRefs struct {
	freer     Freer
	allocSite pool.Callsite
}

// Null is the shared null-handle sentinel: storage is always empty, and its
// reference count is initialized to 1 and never reaches zero through normal
// AddRef/RemoveRef traffic, so it is never returned to any pool.
var Null = &Handle{refCount: 1}

var (
	poolOnce     sync.Once
	handlePool   *pool.PoolAllocator[Handle]
	poolSettings = pool.DefaultSettings()
)

// Configure sets the settings used to construct the process-wide Handle
// pool. Must be called before the first CreateHandle/Pool access: Pool()
// builds the singleton at most once, so calling Configure afterward has no
// effect.
func Configure(settings pool.Settings) {
	poolSettings = settings
}

// Pool returns the process-wide, self-hosted PoolAllocator[Handle],
// constructing it on first use.
func Pool() *pool.PoolAllocator[Handle] {
	poolOnce.Do(func() {
		handlePool = pool.New[Handle](poolSettings)
	})
	return handlePool
}

// CreateHandle allocates a Handle from Pool(), constructs it with
// refCount = 0 and the given storage/freer, and returns it. The caller
// (smartptr.New/Wrap) is responsible for the first AddRef.
func CreateHandle(freer Freer, storage unsafe.Pointer, site pool.Callsite) *Handle {
	addr := Pool().Allocate(site)
	h := (*Handle)(addr)
	*h = Handle{storage: storage, freer: freer, refCount: 0, allocSite: site}
	liveRefs[h] = handleRefs{freer: freer, allocSite: site}
	return h
}

// AddRef increments the reference count.
func (h *Handle) AddRef() {
	h.refCount++
}

// RemoveRef decrements the reference count. A negative result is diagnosed
// as NegativeRefCount; reaching zero-or-below with non-empty storage is
// diagnosed as DanglingReference. Regardless of those diagnostics, once
// refCount <= 0 the Handle returns itself to Pool() — unless it is Null,
// which is never collected.
func (h *Handle) RemoveRef(site pool.Callsite) {
	h.refCount--
	if h == Null {
		return
	}

	if h.refCount < 0 {
		h.diagnose(&OpError{Kind: KindNegativeRefCount, Site: site, Origin: h.allocSite})
	}

	if h.refCount <= 0 {
		if h.storage != nil {
			h.diagnose(&OpError{Kind: KindDanglingReference, Site: site, Origin: h.allocSite})
		}
		delete(liveRefs, h)
		Pool().Free(unsafe.Pointer(h), site)
	}
}

// FreeStorage frees the payload storage via the owning pool. If storage is
// already empty this is a double free, diagnosed as such. On any non-OK
// status from the pool, diagnosed as InvalidFree. Either way, storage ends
// up nil once this call returns without panicking.
func (h *Handle) FreeStorage(site pool.Callsite) {
	if h.storage == nil {
		h.diagnose(&OpError{Kind: KindDoubleFree, Site: site, Origin: h.allocSite})
		return
	}
	status := h.freer.FreeRaw(h.storage, site)
	if status != pool.StatusOK {
		h.diagnose(&OpError{Kind: KindInvalidFree, Site: site, Origin: h.allocSite})
	}
	h.storage = nil
}

// Get returns the storage cast to *T. In debug mode, if storage is empty,
// diagnoses DanglingAccess (and panics when exceptions are enabled).
func Get[T any](h *Handle) *T {
	if h.storage == nil {
		h.diagnose(&OpError{Kind: KindDanglingAccess, Origin: h.allocSite})
		return nil
	}
	return (*T)(h.storage)
}

// Storage returns the raw pointer managed by the handle (nil if freed).
func (h *Handle) Storage() unsafe.Pointer { return h.storage }

// IsNull reports whether the handle's storage is empty.
func (h *Handle) IsNull() bool { return h.storage == nil }

// RefCount returns the current reference count.
func (h *Handle) RefCount() int { return h.refCount }

// AllocSite returns the callsite this Handle was created at.
func (h *Handle) AllocSite() pool.Callsite { return h.allocSite }

func (h *Handle) diagnose(e *OpError) {
	if !Pool().Settings().Debug {
		return
	}
	if sink := Pool().Settings().LogSink; sink != nil {
		fmt.Fprintln(sink, e.logLine())
	}
	if Pool().Settings().Exceptions {
		panic(e)
	}
}
