// Package smartptr implements SmartPointer, a reference-counted owning
// pointer built on top of handle.Handle.
//
// A SmartPointer value owns exactly one Handle reference at all times: the
// zero value owns none (see Null), and every other value holds one AddRef
// taken either at construction or by an explicit Clone/Assign/cast call. Go
// has no copy constructors, so SmartPointer embeds a noCopy guard: go vet
// flags any accidental `=` struct copy or by-value parameter, since that
// would silently share a Handle reference without the matching AddRef.
// Callers that need an independently-owned copy must call Clone explicitly.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package smartptr
