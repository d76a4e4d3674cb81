// File: pool/settings.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "io"

// Settings configures a PoolAllocator. Immutable once passed to New: a
// PoolAllocator never mutates its own Settings after construction.
type Settings struct {
	// BlocksPerPage is the number of blocks carved from each page.
	BlocksPerPage uint

	// PadBytes is the canary width on each side of a block. Forced to 0
	// when Debug is false, regardless of the value supplied here.
	PadBytes uint

	// Alignment is the required alignment, in bytes, of each block's first
	// byte. 0 or 1 disables alignment filler.
	Alignment uint

	// Debug enables per-block headers, pad canaries, poisoning,
	// validation, statistics, and logging. When false, Allocate/Free skip
	// all of the above.
	Debug bool

	// Exceptions converts debug-mode diagnostics into panics carrying the
	// corresponding *OpError, in addition to the log line. Only meaningful
	// when Debug is true.
	Exceptions bool

	// LogSink receives error reports and the leak dump at Teardown, when
	// non-nil. Ignored when Debug is false.
	LogSink io.Writer

	// OwnsSink marks LogSink as opened by this package (via
	// NewWithLogFile); Teardown closes it if it implements io.Closer.
	// Callers supplying their own io.Writer via New leave this false and
	// keep ownership of the sink's lifetime.
	OwnsSink bool
}

// DefaultSettings returns a reasonable default configuration: 1024 blocks
// per page, 2 pad bytes, 4-byte alignment, debug mode on, exceptions off.
func DefaultSettings() Settings {
	return Settings{
		BlocksPerPage: 1024,
		PadBytes:      2,
		Alignment:     4,
		Debug:         true,
		Exceptions:    false,
	}
}

// normalize applies the settings invariants that the constructor must
// enforce: no padding or headers in release mode.
func (s Settings) normalize() Settings {
	if !s.Debug {
		s.PadBytes = 0
		s.Exceptions = false
	}
	if s.BlocksPerPage == 0 {
		s.BlocksPerPage = 1
	}
	return s
}

// DebugHeader precedes every block's storage in debug mode.
type DebugHeader struct {
	Allocated bool
	Callsite  Callsite
}
