// File: pool/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Structured errors for PoolAllocator: an ErrorCode/OpError pair carrying
// enough context (code plus callsite) for callers to act on programmatically,
// alongside package-level sentinels for plain errors.Is checks.

package pool

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is-style matching against a recovered *OpError
// (when Settings.Exceptions is true).
var (
	ErrInvalidAlignment = errors.New("pool: invalid alignment")
	ErrDoubleFree       = errors.New("pool: double free")
	ErrPadViolation     = errors.New("pool: pad violation")
)

// ErrorCode classifies a PoolAllocator failure.
type ErrorCode int

const (
	// ErrCodeInvalidAlignment: Free called with an address not on a block
	// boundary.
	ErrCodeInvalidAlignment ErrorCode = iota
	// ErrCodeDoubleFree: Free called on a block already marked free.
	ErrCodeDoubleFree
	// ErrCodePadViolation: pad canaries around a block were overwritten.
	ErrCodePadViolation
)

// OpError is a structured PoolAllocator error carrying the callsite(s)
// involved, so callers can errors.As for diagnostics beyond the log line.
type OpError struct {
	Code ErrorCode
	// Site is the callsite of the failing operation (e.g. the Free call).
	Site Callsite
	// Origin is the callsite of the original allocation, when known
	// (populated for pad-violation errors only).
	Origin Callsite
}

func (e *OpError) Error() string {
	switch e.Code {
	case ErrCodeInvalidAlignment:
		return fmt.Sprintf("pool: invalid alignment on free from #%d in file %s", e.Site.Line, e.Site.File)
	case ErrCodeDoubleFree:
		return fmt.Sprintf("pool: attempt to free already freed memory from #%d in file %s", e.Site.Line, e.Site.File)
	case ErrCodePadViolation:
		return fmt.Sprintf("pool: pad bytes invalidated for object allocated at #%d in file %s", e.Origin.Line, e.Origin.File)
	default:
		return "pool: unknown error"
	}
}

// logLine renders the fixed wire-format line for the log sink.
func (e *OpError) logLine() string {
	switch e.Code {
	case ErrCodeInvalidAlignment:
		return fmt.Sprintf("Invalid alignment on free from #%d in file %s", e.Site.Line, e.Site.File)
	case ErrCodeDoubleFree:
		return fmt.Sprintf("Attempt to free already freed memory from #%d in file %s", e.Site.Line, e.Site.File)
	case ErrCodePadViolation:
		return fmt.Sprintf("Pad bytes invalidated for object allocated at #%d in file %s", e.Origin.Line, e.Origin.File)
	default:
		return "unknown pool error"
	}
}

// Is implements errors.Is matching against the package sentinels.
func (e *OpError) Is(target error) bool {
	switch e.Code {
	case ErrCodeInvalidAlignment:
		return target == ErrInvalidAlignment
	case ErrCodeDoubleFree:
		return target == ErrDoubleFree
	case ErrCodePadViolation:
		return target == ErrPadViolation
	default:
		return false
	}
}

// statusFor maps an OpError's code to the public FreeStatus it corresponds
// to, so Free can return both.
func (e *OpError) statusFor() FreeStatus {
	switch e.Code {
	case ErrCodeInvalidAlignment:
		return StatusAlign
	case ErrCodeDoubleFree:
		return StatusFreed
	case ErrCodePadViolation:
		return StatusPad
	default:
		return StatusOK
	}
}
