package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/marmos91/chunkstream/pkg/engine"
)

var (
	joinOutPath  string
	joinPriority string
	joinPreload  bool
)

var joinCmd = &cobra.Command{
	Use:   "join <file>",
	Short: "Fetch every chunk of a file and reassemble it locally",
	Long: `Fetch every chunk of a file through the admission controller, validate
the chunk set, and write the reassembled bytes to the output path.

With --preload, all chunk fetches are scheduled up front so the
admission controller can run them concurrently before reassembly.

Examples:
  # Reassemble into the working directory
  chunkstream join archive.bin

  # Reassemble to a specific path with concurrent prefetch
  chunkstream join archive.bin --out /tmp/archive.bin --preload`,
	Args: cobra.ExactArgs(1),
	RunE: runJoin,
}

func init() {
	joinCmd.Flags().StringVarP(&joinOutPath, "out", "o", "", "Output path (default: base name of the file)")
	joinCmd.Flags().StringVar(&joinPriority, "priority", "normal", "Fetch priority (low, normal, high)")
	joinCmd.Flags().BoolVar(&joinPreload, "preload", false, "Schedule all chunk fetches before reassembly")
}

func runJoin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	priority, err := parsePriority(joinPriority)
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

	outPath := joinOutPath
	if outPath == "" {
		outPath = filepath.Base(file)
	}

	if joinPreload && len(specs) > 0 {
		if _, err := eng.Preload(ctx, file, 0, uint32(len(specs)-1), priority); err != nil {
			return err
		}
	}

	chunks := make([]*engine.FileChunk, 0, len(specs))
	for _, spec := range specs {
		fc, err := eng.FetchChunk(ctx, file, spec.Index, priority)
		if err != nil {
			return err
		}
		chunks = append(chunks, fc)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := eng.Reassemble(chunks, out); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	fmt.Printf("Reassembled %d chunks into %s\n", len(chunks), outPath)

	return nil
}
