// Package main provides the entry point for the swiftaudit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for swiftaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swiftaudit",
		Short: "Static analysis and code-fix tool for SwiftUI projects",
		Long: `swiftaudit audits SwiftUI codebases for crash-prone force unwraps,
retain-cycle-prone closures, hardcoded styling and strings, dependency
cycles, and layering violations.

Beyond reporting, the fix command rewrites raw colors, fonts, spacing,
and duplicated string literals into design-system tokens (AppTheme and
AppStrings), and the strings command produces the duplicate-literal
report the rewrite is driven by.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewFixCmd())
	cmd.AddCommand(NewStringsCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
