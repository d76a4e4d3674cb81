// Package handle implements a reference-counted, dangling-detecting
// indirection node used by smartptr.SmartPointer.
//
// A Handle names one block owned by some pool.PoolAllocator[T] and is
// itself allocated from a process-wide, self-hosted
// pool.PoolAllocator[Handle] — see Pool(). Explicit payload free (via
// FreeStorage, invoked by smartptr.SmartPointer.Free) is decoupled from
// reference-count collection: a Handle is only returned to its own pool
// once its reference count reaches zero, and reaching zero while storage is
// still non-empty is itself a diagnosed error (DanglingReference).
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package handle
