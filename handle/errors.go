// File: handle/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed wire-format diagnostic lines for the Handle log sink.

package handle

import (
	"errors"
	"fmt"

	"github.com/momentics/poolkit/pool"
)

// Sentinel errors for errors.Is-style matching against a recovered *OpError.
var (
	ErrNegativeRefCount  = errors.New("handle: negative refcount")
	ErrDanglingAccess    = errors.New("handle: dangling access")
	ErrDoubleFree        = errors.New("handle: double free")
	ErrInvalidFree       = errors.New("handle: invalid free")
	ErrDanglingReference = errors.New("handle: dangling reference")
)

// Kind classifies a Handle-level diagnostic.
type Kind int

const (
	// KindNegativeRefCount: RemoveRef drove refCount below zero.
	KindNegativeRefCount Kind = iota
	// KindDanglingAccess: dereference of a Handle whose storage is empty.
	KindDanglingAccess
	// KindDoubleFree: Free called on a Handle whose storage is already empty.
	KindDoubleFree
	// KindInvalidFree: the owning pool's Free returned a non-OK status.
	KindInvalidFree
	// KindDanglingReference: refCount reached zero while storage was still
	// non-empty.
	KindDanglingReference
)

// OpError is a structured Handle diagnostic, the same Kind/callsite shape
// pool.OpError uses for allocator errors.
type OpError struct {
	Kind Kind
	// Site is the callsite of the operation that triggered the diagnostic
	// (RemoveRef, Free, or dereference).
	Site pool.Callsite
	// Origin is the Handle's own allocation callsite.
	Origin pool.Callsite
}

func (e *OpError) Error() string {
	switch e.Kind {
	case KindNegativeRefCount:
		return fmt.Sprintf("handle: negative refcount detected from remove at %s, allocated at %s", e.Site, e.Origin)
	case KindDanglingAccess:
		return fmt.Sprintf("handle: attempt to access freed memory, allocated at %s", e.Origin)
	case KindDoubleFree:
		return fmt.Sprintf("handle: attempt to free freed memory at %s, allocated at %s", e.Site, e.Origin)
	case KindInvalidFree:
		return fmt.Sprintf("handle: invalid free attempt at %s, allocated at %s", e.Site, e.Origin)
	case KindDanglingReference:
		return fmt.Sprintf("handle: dangling reference, refcount reached zero with storage still live, allocated at %s", e.Origin)
	default:
		return "handle: unknown error"
	}
}

// Is implements errors.Is matching against the package sentinels.
func (e *OpError) Is(target error) bool {
	switch e.Kind {
	case KindNegativeRefCount:
		return target == ErrNegativeRefCount
	case KindDanglingAccess:
		return target == ErrDanglingAccess
	case KindDoubleFree:
		return target == ErrDoubleFree
	case KindInvalidFree:
		return target == ErrInvalidFree
	case KindDanglingReference:
		return target == ErrDanglingReference
	default:
		return false
	}
}

// logLine renders the exact wire-format line for the log sink.
func (e *OpError) logLine() string {
	switch e.Kind {
	case KindNegativeRefCount:
		return fmt.Sprintf("[Handle]: Negative RefCount detected from remove at: %s #%d"+
			"Memory allocated at: %s #%d", e.Site.File, e.Site.Line, e.Origin.File, e.Origin.Line)
	case KindDanglingAccess:
		return fmt.Sprintf("[Handle]: Attempt to access freed memory. Memory allocated at %s #%d", e.Origin.File, e.Origin.Line)
	case KindDoubleFree:
		return fmt.Sprintf("[Handle]: Attempt to free freed memory. Free attempt at: %s #%d"+
			"Memory allocated at: %s #%d", e.Site.File, e.Site.Line, e.Origin.File, e.Origin.Line)
	case KindInvalidFree:
		return fmt.Sprintf("[Handle]: Invalid free attempt failed at: %s #%d"+
			"Memory allocated at: %s #%d", e.Site.File, e.Site.Line, e.Origin.File, e.Origin.Line)
	case KindDanglingReference:
		return fmt.Sprintf("[Handle]: Handle collected with storage still attached. "+
			"Memory allocated at: %s #%d", e.Origin.File, e.Origin.Line)
	default:
		return "[Handle]: unknown error"
	}
}
