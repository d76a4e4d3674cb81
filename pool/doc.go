// Package pool implements a fixed-size object pool allocator.
//
// Pages are carved from raw byte slabs into blocksPerPage fixed blocks.
// Freed blocks are threaded onto a singly-linked free list through their own
// storage. In debug mode every block carries a header (callsite, allocation
// flag), pad canaries, and poison signatures so that double-frees,
// misaligned frees, and buffer overruns are caught instead of silently
// corrupting memory.
//
// See settings.go for configuration, layout.go for the page/chunk size
// arithmetic, page.go for page construction, and allocator.go for
// Allocate/Free/Teardown.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package pool
