// File: pool/stats.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

// Stats tracks allocator usage. Only populated in debug mode. FreeBlocks,
// BlocksInUse and PagesInUse are gauges (and their "most" peaks); the rest
// are monotone counters.
type Stats struct {
	FreeBlocks      uint
	BlocksInUse     uint
	PagesInUse      uint
	MostBlocksInUse uint
	MostPagesInUse  uint
	Allocations     uint64
	Deallocations   uint64
}

func (s *Stats) onPageCreated(blocksPerPage uint) {
	s.PagesInUse++
	s.FreeBlocks += blocksPerPage
	if s.PagesInUse > s.MostPagesInUse {
		s.MostPagesInUse = s.PagesInUse
	}
}

func (s *Stats) onAllocate() {
	s.Allocations++
	s.BlocksInUse++
	if s.BlocksInUse > s.MostBlocksInUse {
		s.MostBlocksInUse = s.BlocksInUse
	}
	s.FreeBlocks--
}

func (s *Stats) onFree() {
	s.Deallocations++
	s.BlocksInUse--
	s.FreeBlocks++
}
