package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/chunkstream/internal/bytesize"
)

var planCmd = &cobra.Command{
	Use:   "plan <file>",
	Short: "Show the chunk layout of a file",
	Long: `Show the chunk layout of a file at the configured chunk size.

Examples:
  # Plan a file from the configured source
  chunkstream plan data/archive.bin

  # Plan with a custom config
  chunkstream plan archive.bin --config ./chunkstream.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, cleanup, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	file := args[0]
	specs, err := eng.Plan(ctx, file)
	if err != nil {
		return err
	}

	var total int64
	for _, spec := range specs {
		total += spec.Size()
	}

	fmt.Printf("File:       %s\n", file)
	fmt.Printf("Size:       %s (%d bytes)\n", bytesize.ByteSize(total), total)
	fmt.Printf("Chunk size: %s\n", cfg.Chunk.Size)
	fmt.Printf("Chunks:     %d\n\n", len(specs))

	if len(specs) == 0 {
		return nil
	}

	fmt.Printf("%-8s %-14s %-14s %s\n", "INDEX", "START", "END", "SIZE")
	for _, spec := range specs {
		fmt.Printf("%-8d %-14d %-14d %d\n", spec.Index, spec.Start, spec.End, spec.Size())
	}

	return nil
}
