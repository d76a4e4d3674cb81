// File: smartptr/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package smartptr

import "github.com/momentics/poolkit/handle"

// ErrDoubleFree and ErrInvalidFree re-export the handle package's sentinels
// under the names SmartPointer.Free's failure modes are documented with —
// a SmartPointer.Free diagnostic is, underneath, always a Handle diagnostic.
var (
	ErrDoubleFree  = handle.ErrDoubleFree
	ErrInvalidFree = handle.ErrInvalidFree
)
