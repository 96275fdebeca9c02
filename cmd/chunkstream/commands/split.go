package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marmos91/chunkstream/pkg/admission"
)

var (
	splitOutDir   string
	splitPriority string
)

var splitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Fetch every chunk of a file and write them to a directory",
	Long: `Fetch every chunk of a file through the admission controller and write
each chunk to its own file in the output directory, named <base>.00000,
<base>.00001, and so on.

Examples:
  # Split into the current directory
  chunkstream split archive.bin

  # Split into a specific directory with high priority
  chunkstream split archive.bin --out ./chunks --priority high`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().StringVarP(&splitOutDir, "out", "o", ".", "Output directory for chunk files")
	splitCmd.Flags().StringVar(&splitPriority, "priority", "normal", "Fetch priority (low, normal, high)")
}

func parsePriority(s string) (admission.Priority, error) {
	switch s {
	case "low":
		return admission.PriorityLow, nil
	case "normal":
		return admission.PriorityNormal, nil
	case "high":
		return admission.PriorityHigh, nil
	default:
		return 0, fmt.Errorf("unknown priority: %s (valid: low, normal, high)", s)
	}
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	priority, err := parsePriority(splitPriority)
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
	if len(specs) == 0 {
		fmt.Printf("%s is empty, nothing to split\n", file)
		return nil
	}

	if err := os.MkdirAll(splitOutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Base(file)
	for _, spec := range specs {
		fc, err := eng.FetchChunk(ctx, file, spec.Index, priority)
		if err != nil {
			return err
		}

		out := filepath.Join(splitOutDir, fmt.Sprintf("%s.%05d", base, spec.Index))
		if err := os.WriteFile(out, fc.Data, 0644); err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", spec.Index, err)
		}

		fmt.Printf("%s  %d bytes  xxh64=%016x\n", out, len(fc.Data), fc.Checksum)
	}

	fmt.Printf("\nWrote %d chunks to %s\n", len(specs), splitOutDir)

	return nil
}
