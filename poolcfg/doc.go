// Package poolcfg loads pool.Settings from a YAML configuration file — the
// ambient configuration layer the distilled allocator spec leaves implicit.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package poolcfg
