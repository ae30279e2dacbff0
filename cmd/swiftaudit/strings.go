package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/swiftaudit/swiftaudit/internal/analyzer"
	"github.com/swiftaudit/swiftaudit/internal/config"
	"github.com/swiftaudit/swiftaudit/internal/log"
	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// NewStringsCmd creates the strings command.
func NewStringsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strings [project-root]",
		Short: "Analyze hardcoded string literals for consolidation",
		Long: `Strings collects every user-facing string literal in the project and
reports duplicates, interpolation candidates, and the files with the
most literals.

The JSON output feeds 'swiftaudit fix --strings-report', which rewrites
duplicated literals into AppStrings constants.

Examples:
  # Human-readable summary for the current directory
  swiftaudit strings

  # JSON report for the fix command
  swiftaudit strings --json -o strings.json ~/Projects/MyApp`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStringsCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output the full report as JSON")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to specified file path (creates directories if needed)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .swiftaudit in current or home directory)")

	return cmd
}

// runStringsCmd executes the strings command.
func runStringsCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
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
	root := targets[0]

	cfg := config.NewConfig()
	cfg.Targets = targets
	cfg.ConfigFilePath = configPath
	if err := loadProjectFile(cfg); err != nil {
		return err
	}

	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	ctx := context.Background()
	project := cfg.ProjectConfig(root)

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

	collector := analyzer.NewStringsCollector()
	stringsReport, err := collector.Collect(ctx, root, result.Sources)
	if err != nil {
		return fmt.Errorf("strings analysis failed: %w", err)
	}

	output := os.Stdout
	if outputPath != "" {
		dir := filepath.Dir(outputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	if jsonOutput {
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		return encoder.Encode(stringsReport)
	}

	printStringsReport(output, stringsReport)
	return nil
}

// maxDuplicatesShown limits the human-readable duplicate listing.
const maxDuplicatesShown = 20

// printStringsReport writes a human-readable strings summary.
func printStringsReport(output *os.File, sr *model.StringsReport) {
	fmt.Fprintf(output, "String analysis for %s\n\n", sr.Root)
	fmt.Fprintf(output, "  Total occurrences:  %d\n", sr.Summary.TotalOccurrences)
	fmt.Fprintf(output, "  Unique strings:     %d\n", sr.Summary.TotalUniqueStrings)
	fmt.Fprintf(output, "  Duplicated strings: %d\n", sr.Summary.DuplicateStrings)
	fmt.Fprintf(output, "  Single-use strings: %d\n", sr.Summary.SingleUseStrings)

	if len(sr.Duplicates) > 0 {
		// Sort duplicates by count descending, then alphabetically
		type dup struct {
			literal string
			count   int
		}
		dups := make([]dup, 0, len(sr.Duplicates))
		for literal, d := range sr.Duplicates {
			dups = append(dups, dup{literal, d.Count})
		}
		sort.Slice(dups, func(i, j int) bool {
			if dups[i].count != dups[j].count {
				return dups[i].count > dups[j].count
			}
			return dups[i].literal < dups[j].literal
		})

		shown := min(len(dups), maxDuplicatesShown)
		fmt.Fprintf(output, "\nTop duplicated strings (%d of %d):\n", shown, len(dups))
		for _, d := range dups[:shown] {
			fmt.Fprintf(output, "  %3dx %q\n", d.count, d.literal)
		}
	}

	if len(sr.InterpolationCandidates) > 0 {
		fmt.Fprintf(output, "\nInterpolation candidates:\n")
		for _, c := range sr.InterpolationCandidates {
			fmt.Fprintf(output, "  %q prefix shared by %d strings\n", c.Prefix, len(c.Strings))
		}
	}

	if len(sr.FilesWithMostStrings) > 0 {
		type fileCount struct {
			file  string
			count int
		}
		files := make([]fileCount, 0, len(sr.FilesWithMostStrings))
		for file, count := range sr.FilesWithMostStrings {
			files = append(files, fileCount{file, count})
		}
		sort.Slice(files, func(i, j int) bool {
			if files[i].count != files[j].count {
				return files[i].count > files[j].count
			}
			return files[i].file < files[j].file
		})

		fmt.Fprintf(output, "\nFiles with the most strings:\n")
		for _, fc := range files {
			fmt.Fprintf(output, "  %3d  %s\n", fc.count, fc.file)
		}
	}

	if len(sr.Suggestions) > 0 {
		categories := make([]string, 0, len(sr.Suggestions))
		for category := range sr.Suggestions {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		fmt.Fprintf(output, "\nConsolidation suggestions:\n")
		for _, category := range categories {
			fmt.Fprintf(output, "  %s: %d strings\n", category, len(sr.Suggestions[category]))
		}
	}

	fmt.Fprintln(output, "\nUse 'swiftaudit strings --json -o strings.json' and")
	fmt.Fprintln(output, "'swiftaudit fix --strings-report strings.json' to consolidate duplicates.")
}
