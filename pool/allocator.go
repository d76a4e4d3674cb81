// File: pool/allocator.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PoolAllocator[T] carves fixed-size blocks of T out of page-sized slabs,
// threading freed blocks onto a singly-linked free list through their own
// storage.

package pool

import (
	"fmt"
	"io"
	"os"
	"unsafe"
)

// destroyer is implemented by payload types that need explicit teardown
// before their storage is poisoned and returned to the free list. Go has no
// destructors; this is the idiomatic substitute (analogous to io.Closer).
type destroyer interface {
	Destroy()
}

// PoolAllocator carves fixed-size blocks of T from page-sized slabs. Not
// safe for concurrent use.
type PoolAllocator[T any] struct {
	settings Settings
	layout   layout

	pages    *page
	freeList uintptr // 0 means empty

	stats Stats

	// liveCallsites mirrors every allocated block's Callsite in ordinary,
	// GC-scanned map storage. Block headers live inside page.bytes, a
	// []byte slab the runtime allocates noscan (byte carries no pointers),
	// so a Callsite.File string written directly into a header is
	// otherwise invisible to the garbage collector: nothing roots the
	// string's backing array except this map. Keyed by block address, kept
	// in step with Allocate/Free.
	liveCallsites map[uintptr]Callsite
}

// New constructs a PoolAllocator using settings.LogSink as-is (caller keeps
// ownership; Teardown will not close it).
func New[T any](settings Settings) *PoolAllocator[T] {
	settings = settings.normalize()
	var zero T
	l := newLayout(unsafe.Sizeof(zero), settings)
	pa := &PoolAllocator[T]{settings: settings, layout: l}
	if settings.Debug {
		pa.liveCallsites = make(map[uintptr]Callsite)
	}
	return pa
}

// NewWithLogFile opens logFile and constructs a PoolAllocator that owns it:
// Teardown closes the file after emitting the leak dump. Debug is forced on
// since a log sink is meaningless outside debug mode.
func NewWithLogFile[T any](logFile string, settings Settings) (*PoolAllocator[T], error) {
	f, err := os.Create(logFile)
	if err != nil {
		return nil, err
	}
	settings.Debug = true
	settings.LogSink = f
	settings.OwnsSink = true
	return New[T](settings), nil
}

// Stats returns a snapshot of the allocator's statistics (zero value when
// Debug is false).
func (pa *PoolAllocator[T]) Stats() Stats { return pa.stats }

// Settings returns the (immutable) settings this allocator was built with.
func (pa *PoolAllocator[T]) Settings() Settings { return pa.settings }

// Allocate returns the address of a fresh block, poisoned to SigAllocated
// and headed with site in debug mode. Creates a new page first if the free
// list is empty.
func (pa *PoolAllocator[T]) Allocate(site Callsite) unsafe.Pointer {
	if pa.freeList == 0 {
		pa.createPage()
	}

	addr := pa.freeList
	pa.freeList = getLink(unsafe.Pointer(addr))

	if pa.settings.Debug {
		pg := pa.pageFor(addr)
		pg.memset(addr-pg.base, pa.layout.blockSize, SigAllocated)
		hdr := pa.headerAt(addr)
		hdr.Allocated = true
		hdr.Callsite = site
		pa.liveCallsites[addr] = site
		pa.stats.onAllocate()
	}

	return unsafe.Pointer(addr)
}

// Free validates and returns ptr to the free list. In release mode
// (Debug == false) it destructs and returns storage unconditionally
// whenever ptr is non-nil, performing no validation: there is no header to
// check against and no canaries to have been written in the first place.
func (pa *PoolAllocator[T]) Free(ptr unsafe.Pointer, site Callsite) FreeStatus {
	if ptr == nil {
		return StatusOK
	}
	addr := uintptr(ptr)

	if !pa.settings.Debug {
		pa.destructAndPush(addr)
		return StatusOK
	}

	pg := pa.pageFor(addr)
	if pg == nil {
		// addr wasn't carved from any page owned by this allocator. Treat
		// as a no-op rather than reading or writing arbitrary memory.
		return StatusOK
	}

	d := addr - pg.base
	if (d-pa.layout.leftOffset())%pa.layout.interChunkSize != 0 {
		return pa.fail(&OpError{Code: ErrCodeInvalidAlignment, Site: site})
	}

	hdr := pa.headerAt(addr)
	if !hdr.Allocated {
		return pa.fail(&OpError{Code: ErrCodeDoubleFree, Site: site})
	}

	if !pa.padsIntact(pg, addr) {
		return pa.fail(&OpError{Code: ErrCodePadViolation, Site: site, Origin: pa.liveCallsites[addr]})
	}

	pa.destructAndPush(addr)
	pg.memset(addr-pg.base+ptrSize, pa.layout.blockSize-ptrSize, SigFreed) // keep the free-list link word
	*hdr = DebugHeader{}
	delete(pa.liveCallsites, addr)
	pa.stats.onFree()
	return StatusOK
}

// FreeRaw adapts Free to a small dispatch-record shape: any interface
// declaring this one method is satisfied by *PoolAllocator[T] for every T,
// so a caller elsewhere can hold and call it without this package knowing
// or importing that caller's interface type.
func (pa *PoolAllocator[T]) FreeRaw(addr unsafe.Pointer, site Callsite) FreeStatus {
	return pa.Free(addr, site)
}

func (pa *PoolAllocator[T]) destructAndPush(addr uintptr) {
	obj := (*T)(unsafe.Pointer(addr))
	if d, ok := any(obj).(destroyer); ok {
		d.Destroy()
	}
	putLink(unsafe.Pointer(addr), pa.freeList)
	pa.freeList = addr
}

func (pa *PoolAllocator[T]) padsIntact(pg *page, addr uintptr) bool {
	off := addr - pg.base
	for i := uintptr(1); i <= pa.layout.padBytes; i++ {
		if pg.bytes[off-i] != SigPad || pg.bytes[off+pa.layout.blockSize+i-1] != SigPad {
			return false
		}
	}
	return true
}

func (pa *PoolAllocator[T]) fail(e *OpError) FreeStatus {
	pa.report(e.logLine())
	if pa.settings.Exceptions {
		panic(e)
	}
	return e.statusFor()
}

func (pa *PoolAllocator[T]) report(line string) {
	if pa.settings.LogSink != nil {
		fmt.Fprintln(pa.settings.LogSink, line)
	}
}

// pageFor walks the page list to find the page containing addr, or nil.
func (pa *PoolAllocator[T]) pageFor(addr uintptr) *page {
	for pg := pa.pages; pg != nil; pg = pg.next {
		if pg.contains(addr) {
			return pg
		}
	}
	return nil
}

// headerAt returns the DebugHeader immediately preceding the block at addr.
func (pa *PoolAllocator[T]) headerAt(addr uintptr) *DebugHeader {
	return (*DebugHeader)(unsafe.Pointer(addr - pa.layout.padBytes - pa.layout.headerSize))
}

// GetDebugHeader returns the header at ptr. ptr is assumed to be a valid
// block address.
func (pa *PoolAllocator[T]) GetDebugHeader(ptr unsafe.Pointer) *DebugHeader {
	return pa.headerAt(uintptr(ptr))
}

// DumpMemoryInUse writes one line per allocated block to w, in the fixed
// leak-dump wire format callers can grep or diff against.
func (pa *PoolAllocator[T]) DumpMemoryInUse(w io.Writer) {
	for pg := pa.pages; pg != nil; pg = pg.next {
		off := pa.layout.firstBlockOffset()
		for i := uintptr(0); i < pa.layout.blocksPerPage; i++ {
			addr := pg.base + off
			hdr := (*DebugHeader)(pg.at(off - pa.layout.padBytes - pa.layout.headerSize))
			if hdr.Allocated {
				site := pa.liveCallsites[addr]
				fmt.Fprintf(w, "%db allocated at line #%d in file %s\n", pa.layout.blockSize, site.Line, site.File)
			}
			off += pa.layout.interChunkSize
		}
	}
}

// Teardown emits the leak dump (if a sink is configured), closes an owned
// sink, and frees every page. Safe to call once; a PoolAllocator is not
// reusable afterward.
func (pa *PoolAllocator[T]) Teardown() {
	if pa.settings.Debug && pa.settings.LogSink != nil {
		pa.DumpMemoryInUse(pa.settings.LogSink)
	}
	if pa.settings.OwnsSink {
		if c, ok := pa.settings.LogSink.(io.Closer); ok {
			c.Close()
		}
	}
	pa.pages = nil
	pa.freeList = 0
}
