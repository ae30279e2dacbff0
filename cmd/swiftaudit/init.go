package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/swiftaudit.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".swiftaudit"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new swiftaudit configuration file",
		Long: `Init creates a new .swiftaudit configuration file in the current directory.

The generated file includes:
- Commented examples for excluded directories and files
- Rule selection and protected file settings
- Layer root mapping for the dependency-graph checks

Examples:
  # Create .swiftaudit in current directory
  swiftaudit init

  # Create config file at a specific path
  swiftaudit init -o myconfig.yaml

  # Force overwrite existing file
  swiftaudit init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/swiftaudit.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created configuration file: %s\n", outputPath)
	fmt.Println("\nEdit this file to configure project-specific settings such as:")
	fmt.Println("  - Directories and files excluded from analysis")
	fmt.Println("  - Rule selection per project")
	fmt.Println("  - Layer roots for the dependency-graph checks")

	return nil
}
