// File: smartptr/smartptr.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cross-type conversions: CastStatic takes a witness function that is never
// invoked, proving convertibility at compile time; DynamicCast takes a
// caller-supplied runtime check instead, since raw pool storage carries no
// type descriptor for Go to assert against on its own.

package smartptr

import (
	"github.com/momentics/poolkit/handle"
	"github.com/momentics/poolkit/pool"
)

// noCopy makes go vet's copylocks check flag any accidental copy of a type
// that embeds it — assignment, a by-value parameter, a by-value return of an
// existing variable, or a range over a slice of them. Borrowed from the
// standard library's own noCopy idiom (sync.WaitGroup, strings.Builder).
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// SmartPointer is a reference-counted, value-type owning pointer to a T
// allocated from some pool.PoolAllocator[T]. The zero value owns no
// reference; prefer Null[T]() when an explicit empty-but-owning value is
// needed (e.g. as a struct field default that still participates in
// RemoveRef bookkeeping).
//
// Exactly one AddRef backs every live SmartPointer value. Go has no copy
// constructor hook, so an ordinary `q := p` or passing p by value would
// silently produce a second SmartPointer sharing p's Handle without taking
// a second reference — the embedded noCopy field turns that mistake into a
// go vet error at build time. Call Clone to create a second, properly
// counted owner.
type SmartPointer[T any] struct {
	_ noCopy
	h *handle.Handle
}

// New allocates a fresh T from pa, wraps it in a new Handle, and returns a
// SmartPointer holding that Handle's first reference, taken here.
func New[T any](pa *pool.PoolAllocator[T], site pool.Callsite) SmartPointer[T] {
	storage := pa.Allocate(site)
	h := handle.CreateHandle(pa, storage, site)
	h.AddRef()
	return SmartPointer[T]{h: h}
}

// Null returns a SmartPointer wrapping the shared null Handle, holding one
// reference to it.
func Null[T any]() SmartPointer[T] {
	handle.Null.AddRef()
	return SmartPointer[T]{h: handle.Null}
}

// Wrap returns a SmartPointer over an already-existing Handle, taking a
// fresh reference to it. Used when a Handle was obtained some way other
// than New (e.g. recovered from storage elsewhere in the program).
func Wrap[T any](h *handle.Handle) SmartPointer[T] {
	if h != nil {
		h.AddRef()
	}
	return SmartPointer[T]{h: h}
}

// Clone returns a new SmartPointer sharing the same Handle, with its own
// AddRef. This is the only supported way to hand out a second owner — plain
// assignment does not call it.
func (p *SmartPointer[T]) Clone() SmartPointer[T] {
	if p.h != nil {
		p.h.AddRef()
	}
	return SmartPointer[T]{h: p.h}
}

// Assign reseats p to reference other's Handle: AddRef(other) happens
// before RemoveRef(p's previous handle), so self-assignment and aliasing
// are both safe.
func (p *SmartPointer[T]) Assign(other *SmartPointer[T], site pool.Callsite) {
	p.reseat(other.h, site)
}

// Free frees the underlying storage (diagnosing double-free/invalid-free as
// handle.Handle.FreeStorage does) and rebinds p to Null.
func (p *SmartPointer[T]) Free(site pool.Callsite) {
	if p.h != nil && p.h != handle.Null {
		p.h.FreeStorage(site)
	}
	p.reseat(handle.Null, site)
}

// Release drops p's reference without freeing storage, rebinding to Null.
// Reaching a zero refcount here with storage still live is diagnosed by
// Handle.RemoveRef as a dangling reference.
func (p *SmartPointer[T]) Release(site pool.Callsite) {
	p.reseat(handle.Null, site)
}

func (p *SmartPointer[T]) reseat(h *handle.Handle, site pool.Callsite) {
	h.AddRef()
	old := p.h
	p.h = h
	if old != nil {
		old.RemoveRef(site)
	}
}

// Get dereferences p, returning nil (and, in debug mode, diagnosing
// DanglingAccess) if storage has been freed.
func (p *SmartPointer[T]) Get() *T {
	if p.h == nil {
		return nil
	}
	return handle.Get[T](p.h)
}

// IsNull reports whether p currently references empty storage.
func (p *SmartPointer[T]) IsNull() bool {
	return p.h == nil || p.h.IsNull()
}

// Equal reports whether p and o share the same Handle.
func (p *SmartPointer[T]) Equal(o *SmartPointer[T]) bool {
	return p.h == o.h
}

// Handle exposes the underlying Handle, for code (tests, DynamicCast) that
// needs to inspect or re-wrap it directly.
func (p *SmartPointer[T]) Handle() *handle.Handle {
	return p.h
}

// CastStatic performs an unconditional, compile-time-checked conversion
// from SmartPointer[T] to SmartPointer[U], adding a reference to the same
// Handle. witness is never called — its only purpose is to force the
// compiler to prove *T converts to *U; pass a function literal like
// `func(t *Derived) *Base { return &t.Base }`.
func CastStatic[T, U any](p *SmartPointer[T], witness func(*T) *U) SmartPointer[U] {
	_ = witness
	if p.h != nil {
		p.h.AddRef()
	}
	return SmartPointer[U]{h: p.h}
}

// DynamicCast attempts a runtime-checked conversion from SmartPointer[T] to
// SmartPointer[U]. Raw pool storage carries no type descriptor of its own
// (unlike a boxed Go interface value), so — unlike CastStatic — there is
// nothing to assert against without help from the caller: witness receives
// the live *T and reports whether (and as what *U view) the conversion
// applies, e.g. a tag-field check followed by reinterpreting the same
// address as a larger embedding type. On failure, returns a Null-ish zero
// value without taking a reference.
func DynamicCast[T, U any](p *SmartPointer[T], witness func(*T) (*U, bool)) SmartPointer[U] {
	if p.h == nil || p.h.IsNull() {
		return SmartPointer[U]{}
	}
	if _, ok := witness(handle.Get[T](p.h)); !ok {
		return SmartPointer[U]{}
	}
	p.h.AddRef()
	return SmartPointer[U]{h: p.h}
}
