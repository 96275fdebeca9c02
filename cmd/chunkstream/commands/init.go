package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/chunkstream/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample chunkstream configuration file.

By default, the configuration file is created at
$XDG_CONFIG_HOME/chunkstream/config.yaml. Use --config to specify a
custom path.

Examples:
  # Initialize with default location
  chunkstream init

  # Initialize with custom path
  chunkstream init --config /etc/chunkstream/config.yaml

  # Force overwrite existing config
  chunkstream init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.SaveConfig(config.GetDefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to point at your source")
	fmt.Printf("  2. Inspect a file's chunk layout: chunkstream plan <file> --config %s\n", path)

	return nil
}
