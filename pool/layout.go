// File: pool/layout.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Page/chunk size arithmetic. Every offset and size uses uintptr rather than
// a fixed-width integer so address subtraction can't wrap or truncate on
// hosts wider than 32 bits.

package pool

import "unsafe"

const ptrSize = unsafe.Sizeof(uintptr(0))

// layout holds every size derived once at construction time and never
// recomputed.
type layout struct {
	blockSize      uintptr
	headerSize     uintptr
	padBytes       uintptr
	alignment      uintptr
	leftAlign      uintptr
	interAlign     uintptr
	leftChunkSize  uintptr
	interChunkSize uintptr
	pageSize       uintptr
	blocksPerPage  uintptr
}

// newLayout computes the derived quantities for a given element size and
// normalized settings.
func newLayout(elemSize uintptr, s Settings) layout {
	var headerSize uintptr
	if s.Debug {
		headerSize = unsafe.Sizeof(DebugHeader{})
	}

	blockSize := elemSize
	if blockSize < ptrSize {
		// A freed block must fit a free-list link.
		blockSize = ptrSize
	}

	padBytes := uintptr(s.PadBytes)
	alignment := uintptr(s.Alignment)
	blocksPerPage := uintptr(s.BlocksPerPage)

	var leftAlign, interAlign uintptr
	if alignment > 1 {
		leftAlign = (alignment - (ptrSize + headerSize + padBytes)) % alignment
		interAlign = (alignment - (blockSize + headerSize + 2*padBytes)) % alignment
	}

	leftChunkSize := ptrSize + leftAlign + headerSize + 2*padBytes + blockSize
	interChunkSize := blockSize + 2*padBytes + interAlign + headerSize
	pageSize := ptrSize + leftAlign + blocksPerPage*(blockSize+2*padBytes+headerSize+interAlign) - interAlign

	return layout{
		blockSize:      blockSize,
		headerSize:     headerSize,
		padBytes:       padBytes,
		alignment:      alignment,
		leftAlign:      leftAlign,
		interAlign:     interAlign,
		leftChunkSize:  leftChunkSize,
		interChunkSize: interChunkSize,
		pageSize:       pageSize,
		blocksPerPage:  blocksPerPage,
	}
}

// leftOffset is the distance from the page base to the first block's first
// byte, used by Free's alignment check.
func (l layout) leftOffset() uintptr {
	return l.leftChunkSize - l.padBytes - l.blockSize
}

// firstBlockOffset is the distance from the page base to the first block's
// first byte — identical to leftOffset, named separately for readability at
// call sites that walk blocks rather than validate a free.
func (l layout) firstBlockOffset() uintptr {
	return ptrSize + l.leftAlign + l.headerSize + l.padBytes
}
