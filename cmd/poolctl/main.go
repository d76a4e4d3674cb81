// File: cmd/poolctl/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// poolctl is a demo CLI over pool.PoolAllocator[Record], styled on the
// Cobra command trees in _examples/joshuapare-hivekit/cmd/hivectl and
// _examples/gittool-Mimir/nornicdb/cmd.

package main

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/spf13/cobra"

	"github.com/momentics/poolkit/pool"
	"github.com/momentics/poolkit/poolcfg"
)

// Record is the fixed-size payload type poolctl demonstrates the allocator
// against — deliberately larger than a pointer so UNALLOCATED poisoning
// remains visible past the free-list link word.
type Record struct {
	ID    int64
	Flags uint32
	Tag   [32]byte
}

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "poolctl",
		Short: "Inspect a pool.PoolAllocator[Record] from the command line",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a poolcfg YAML file")

	root.AddCommand(allocCmd(), freeCmd(), statsCmd(), leakDumpCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func settingsFromFlag() (pool.Settings, error) {
	if configPath == "" {
		return pool.DefaultSettings(), nil
	}
	cfg, err := poolcfg.Load(configPath)
	if err != nil {
		return pool.Settings{}, err
	}
	return cfg.Settings()
}

func allocCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "alloc",
		Short: "Allocate N blocks and print their addresses and resulting stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsFromFlag()
			if err != nil {
				return err
			}
			settings.LogSink = os.Stdout
			pa := pool.New[Record](settings)
			defer pa.Teardown()

			for i := 0; i < n; i++ {
				addr := pa.Allocate(pool.Capture(0))
				fmt.Printf("block %d: %p\n", i, addr)
			}
			printStats(pa.Stats())
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 1, "number of blocks to allocate")
	return cmd
}

func freeCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "free <index>",
		Short: "Allocate N blocks, then free the block at <index> and print the resulting status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var idx int
			if _, err := fmt.Sscanf(args[0], "%d", &idx); err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}

			settings, err := settingsFromFlag()
			if err != nil {
				return err
			}
			settings.LogSink = os.Stdout
			pa := pool.New[Record](settings)
			defer pa.Teardown()

			addrs := make([]unsafe.Pointer, n)
			for i := range addrs {
				addrs[i] = pa.Allocate(pool.Capture(0))
			}
			if idx < 0 || idx >= len(addrs) {
				return fmt.Errorf("index %d out of range [0,%d)", idx, len(addrs))
			}

			status := pa.Free(addrs[idx], pool.Capture(0))
			fmt.Printf("free block %d: %s\n", idx, status)
			printStats(pa.Stats())
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 4, "number of blocks to allocate before freeing")
	return cmd
}

func statsCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Allocate N blocks and print pool.Stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsFromFlag()
			if err != nil {
				return err
			}
			pa := pool.New[Record](settings)
			defer pa.Teardown()

			for i := 0; i < n; i++ {
				pa.Allocate(pool.Capture(0))
			}
			printStats(pa.Stats())
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 10, "number of blocks to allocate")
	return cmd
}

func leakDumpCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "leak-dump",
		Short: "Allocate N blocks, leave them allocated, and dump the leak report",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsFromFlag()
			if err != nil {
				return err
			}
			pa := pool.New[Record](settings)
			for i := 0; i < n; i++ {
				pa.Allocate(pool.Capture(0))
			}
			pa.DumpMemoryInUse(os.Stdout)
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 3, "number of blocks to leak")
	return cmd
}

func printStats(s pool.Stats) {
	fmt.Printf("free=%d inUse=%d pages=%d mostInUse=%d mostPages=%d allocs=%d frees=%d\n",
		s.FreeBlocks, s.BlocksInUse, s.PagesInUse, s.MostBlocksInUse, s.MostPagesInUse,
		s.Allocations, s.Deallocations)
}
