package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/swiftaudit/swiftaudit/internal/config"
	"github.com/swiftaudit/swiftaudit/internal/log"
	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/rewrite"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// NewFixCmd creates the fix command.
func NewFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [project-root...]",
		Short: "Rewrite hardcoded styling and strings into design-system tokens",
		Long: `Fix rewrites Swift source files in place:

- Built-in colors (.red, .blue, ...) become AppTheme.Colors tokens
- Raw fonts (.system(size:), .title2, ...) become AppTheme.Typography tokens
- Numeric padding, spacing, and corner radius values become AppTheme
  Spacing and CornerRadius tokens
- With --strings-report, duplicated string literals from a prior
  'swiftaudit strings --json' run become AppStrings constants

The AppTheme.swift and AppStrings.swift catalogs themselves are never
rewritten. Each modified file gets a .bak backup unless --no-backup is
set. Use --dry-run to preview the changes first.

Examples:
  # Preview theme fixes in the current directory
  swiftaudit fix --dry-run

  # Apply theme fixes without backups
  swiftaudit fix --no-backup ~/Projects/MyApp

  # Also consolidate duplicated strings
  swiftaudit strings --json -o strings.json
  swiftaudit fix --strings-report strings.json`,
		Args: cobra.ArbitraryArgs,
		RunE: runFixCmd,
	}

	cmd.Flags().BoolP("dry-run", "n", false,
		"Report what would change without writing any file")
	cmd.Flags().Bool("no-backup", false,
		"Do not create .bak backups of modified files")
	cmd.Flags().StringP("strings-report", "s", "",
		"Path to a strings report JSON; enables duplicate-string consolidation")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .swiftaudit in current or home directory)")

	return cmd
}

// runFixCmd executes the fix command.
func runFixCmd(cmd *cobra.Command, args []string) error {
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	noBackup, err := cmd.Flags().GetBool("no-backup")
	if err != nil {
		return err
	}
	stringsReportPath, err := cmd.Flags().GetString("strings-report")
	if err != nil {
		return err
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	targets, err := resolveTargets(args)
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	cfg.Targets = targets
	cfg.ConfigFilePath = configPath
	if err := loadProjectFile(cfg); err != nil {
		return err
	}

	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	var stringsPass *rewrite.StringsPass
	if stringsReportPath != "" {
		stringsReport, err := loadStringsReport(stringsReportPath)
		if err != nil {
			return err
		}
		stringsPass = rewrite.NewStringsPass(stringsReport)
	}

	for _, target := range targets {
		if err := fixRoot(ctx, cfg, target, stringsPass, dryRun, noBackup, logger); err != nil {
			return err
		}
	}

	// After string consolidation, report the constants AppStrings.swift
	// must gain for the rewritten code to compile.
	if stringsPass != nil {
		printAdditions(stringsPass.Additions())
	}

	return nil
}

// loadProjectFile resolves and loads the .swiftaudit configuration file
// into cfg.Project. Mirrors the scan command's behavior: an explicitly
// specified file must exist, a missing default file is ignored.
func loadProjectFile(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		project, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Project = project
	} else if explicit {
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}
	return nil
}

// loadStringsReport reads a strings report produced by 'swiftaudit strings --json'.
func loadStringsReport(path string) (*model.StringsReport, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read strings report: %w", err)
	}

	var sr model.StringsReport
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse strings report %s: %w", path, err)
	}
	return &sr, nil
}

// fixRoot discovers the Swift sources under one root and runs the
// rewrite passes over them. Theme passes are assembled per root because
// spacing tolerance is a per-project setting.
func fixRoot(ctx context.Context, cfg *config.Config, root string, stringsPass *rewrite.StringsPass, dryRun, noBackup bool, logger *slog.Logger) error {
	project := cfg.ProjectConfig(root)

	passes := rewrite.ThemePassesWithTolerance(project.SpacingTolerance)
	if stringsPass != nil {
		passes = append(passes, stringsPass)
	}

	excludedDirs := append([]string{}, config.DefaultExcludedDirs...)
	excludedDirs = append(excludedDirs, project.ExcludedDirs...)
	excludedFiles := append([]string{}, config.DefaultExcludedFiles...)
	excludedFiles = append(excludedFiles, project.ExcludedFiles...)

	w := walker.New(
		walker.WithExcludedDirs(excludedDirs),
		walker.WithExcludedFiles(excludedFiles),
		walker.WithMaxFileSize(cfg.MaxFileSize),
		walker.WithLogger(logger),
	)

	result, err := w.Walk(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to discover sources under %s: %w", root, err)
	}

	r := rewrite.New(passes,
		rewrite.WithDryRun(dryRun),
		rewrite.WithBackup(!noBackup),
		rewrite.WithProtectedFiles(project.ProtectedFiles),
		rewrite.WithLogger(logger),
	)

	fixResult, err := r.Rewrite(ctx, result.Sources)
	if err != nil {
		return fmt.Errorf("rewrite failed under %s: %w", root, err)
	}

	printFixResult(root, fixResult)
	return nil
}

// printFixResult summarizes one root's rewrite outcome on stdout.
func printFixResult(root string, result *rewrite.Result) {
	action := "Updated"
	if result.DryRun {
		action = "Would update"
	}

	fmt.Printf("%s\n", root)
	fmt.Printf("  Files processed: %d\n", result.FilesProcessed)
	fmt.Printf("  %s: %d files, %d changes\n", action, result.FilesUpdated, result.TotalChanges())
	if result.FilesSkipped > 0 {
		fmt.Printf("  Protected files skipped: %d\n", result.FilesSkipped)
	}
	if result.Backups > 0 {
		fmt.Printf("  Backups written: %d\n", result.Backups)
	}

	for _, change := range result.Changes {
		fmt.Printf("    %s (%d changes)\n", change.Path, change.Total)

		// Stable pass order for readable output
		passNames := make([]string, 0, len(change.Counts))
		for name := range change.Counts {
			passNames = append(passNames, name)
		}
		sort.Strings(passNames)
		for _, name := range passNames {
			fmt.Printf("      %s: %d\n", name, change.Counts[name])
		}
	}
	fmt.Println()
}

// printAdditions lists the AppStrings constants the catalog must define
// after string consolidation.
func printAdditions(additions []rewrite.StringAddition) {
	if len(additions) == 0 {
		return
	}

	fmt.Printf("Add these constants to AppStrings.swift (%d):\n", len(additions))
	for _, a := range additions {
		fmt.Printf("  %s = %q\n", a.Name, a.Literal)
	}
}
