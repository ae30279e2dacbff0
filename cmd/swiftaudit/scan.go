package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/swiftaudit/swiftaudit/internal/analyzer"
	"github.com/swiftaudit/swiftaudit/internal/config"
	"github.com/swiftaudit/swiftaudit/internal/database"
	"github.com/swiftaudit/swiftaudit/internal/log"
	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/pipeline"
	"github.com/swiftaudit/swiftaudit/internal/report"
	"github.com/swiftaudit/swiftaudit/internal/watch"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [project-root...]",
		Short: "Audit SwiftUI projects for safety and consistency issues",
		Long: `Scan walks the given project roots, analyzes every Swift file, and
reports findings grouped by severity:

- Crash risks (force unwraps, force try, force casts)
- Memory and concurrency hazards (strong self captures, main-thread sync)
- Hardcoded styling and user-facing strings
- Dependency cycles and layering violations between Features and Core
- Naming, import hygiene, and deprecated API usage

When no root is given, the current directory is scanned.

Examples:
  # Scan the current directory
  swiftaudit scan

  # Scan a specific project
  swiftaudit scan ~/Projects/MyApp

  # Scan several projects concurrently
  swiftaudit scan AppA AppB AppC --batch 3

  # Only run selected rules
  swiftaudit scan --rules forceunwrap,retaincycle

  # JSON report to a file, fail CI on high findings
  swiftaudit scan --json -o report.json --fail-on high

  # Rescan automatically when files change
  swiftaudit scan --watch`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Scan behavior flags
	cmd.Flags().StringSliceP("rules", "r", nil,
		"Comma-separated rule identifiers to run (default: all rules)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent root scans")
	cmd.Flags().Int64("max-file-size", config.DefaultMaxFileSize,
		"Maximum file size in bytes to analyze")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .swiftaudit in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// CI and watch flags
	cmd.Flags().String("fail-on", "",
		"Exit non-zero when findings at or above this severity exist (info, low, medium, high, critical)")
	cmd.Flags().BoolP("watch", "w", false,
		"Watch the project roots and rescan when Swift files change")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Rules, err = cmd.Flags().GetStringSlice("rules")
	if err != nil {
		return nil, err
	}
	if err := analyzer.ValidateRules(cfg.Rules); err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.MaxFileSize, err = cmd.Flags().GetInt64("max-file-size")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load project configurations from the config file.
	// If the user explicitly specified a config file path, error if not found.
	// If no path was specified, silently use an empty config.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Project, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.FailOn, err = cmd.Flags().GetString("fail-on")
	if err != nil {
		return nil, err
	}

	cfg.Watch, err = cmd.Flags().GetBool("watch")
	if err != nil {
		return nil, err
	}

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Positional arguments are project roots; default to the current directory
	cfg.Targets, err = resolveTargets(args)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveTargets converts positional arguments into absolute project root
// paths, defaulting to the current directory. Every target must be an
// existing directory.
func resolveTargets(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	targets := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid target path %q: %w", arg, err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("target does not exist: %s", arg)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("target is not a directory: %s", arg)
		}

		targets = append(targets, abs)
	}

	return targets, nil
}

// runScan executes the scan across all configured targets.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	if cfg.Watch {
		return runWatchScan(ctx, cfg, db, logger)
	}

	return runScanOnce(ctx, cfg, db, logger)
}

// runScanOnce scans every target a single time and applies the fail-on
// severity gate to the combined results.
func runScanOnce(ctx context.Context, cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) error {
	var reports []*model.ScanReport
	var err error

	// Use the batch processor for parallel scans when there are
	// multiple targets, otherwise scan sequentially.
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		reports, err = runBatchScan(ctx, cfg, db, logger)
	} else {
		reports, err = runSequentialScan(ctx, cfg, db, logger)
	}
	if err != nil {
		return err
	}

	return checkFailOn(cfg, reports)
}

// runSequentialScan scans targets one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) ([]*model.ScanReport, error) {
	var reports []*model.ScanReport

	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return reports, ctx.Err()
		default:
		}

		p, _ := pipeline.DefaultPipeline(cfg, target, logger)
		scanReport := model.NewScanReport(target)

		fmt.Printf("Scanning %s...\n", target)
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, scanReport); err != nil {
			logger.Error("scan failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", target, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}

		// Save to database if enabled
		if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "target", target, "error", err)
		}

		reports = append(reports, scanReport)
	}

	return reports, nil
}

// runBatchScan scans multiple targets concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) ([]*model.ScanReport, error) {
	fmt.Printf("Starting batch scan of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	// Create batch processor with a per-root pipeline factory so every
	// root gets its own discovery state and project configuration.
	bp := pipeline.NewBatchProcessor(
		func(root string) *pipeline.Pipeline {
			p, _ := pipeline.DefaultPipeline(cfg, root, logger)
			return p
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	var reports []*model.ScanReport
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(scanReport *model.ScanReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Scan completed: %s\n", index+1, len(cfg.Targets), scanReport.Root)

		// Generate and output report
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", scanReport.Root, "error", err)
		}

		// Save to database if enabled
		if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "target", scanReport.Root, "error", err)
		}

		reports = append(reports, scanReport)
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scan completed in %s\n", elapsed.Round(time.Millisecond))

	return reports, err
}

// runWatchScan performs an initial scan, then rescans whenever Swift
// files under the targets change. The fail-on gate is not applied in
// watch mode since the command runs until interrupted.
func runWatchScan(ctx context.Context, cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) error {
	rescan := func(ctx context.Context) error {
		_, err := runSequentialScan(ctx, cfg, db, logger)
		return err
	}

	if err := rescan(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Println("Watching for changes... (Ctrl+C to stop)")

	// Watch-mode exclusions follow the first target's project config;
	// per-root overrides only matter for discovery, not for watching.
	project := cfg.ProjectConfig(cfg.Targets[0])
	excluded := append([]string{}, config.DefaultExcludedDirs...)
	excluded = append(excluded, project.ExcludedDirs...)

	w := watch.New(
		watch.WithDebounce(cfg.WatchDebounce),
		watch.WithExcludedDirs(excluded),
		watch.WithLogger(logger),
	)

	err := w.Watch(ctx, cfg.Targets, func(ctx context.Context) error {
		fmt.Println("\nChange detected, rescanning...")
		return rescan(ctx)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// checkFailOn returns an error when the combined reports contain findings
// at or above the configured fail-on severity. CI integrations rely on
// the resulting non-zero exit code.
func checkFailOn(cfg *config.Config, reports []*model.ScanReport) error {
	if cfg.FailOn == "" {
		return nil
	}

	threshold, ok := model.ParseSeverity(cfg.FailOn)
	if !ok {
		return config.ErrInvalidFailOn
	}

	total := 0
	for _, r := range reports {
		if r.SimpleReport == nil {
			continue
		}
		total += r.SimpleReport.CountAtOrAbove(threshold)
	}

	if total > 0 {
		return fmt.Errorf("%d findings at or above %s severity", total, threshold)
	}
	return nil
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	// Generate simple report if needed
	if scanReport.SimpleReport == nil {
		scanReport.SimpleReport = model.NewSimpleReport(scanReport)
	}

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions.
		// Reports contain source snippets from the audited codebase.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (detailed report with all data)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(scanReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(scanReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(scanReport)
	return err
}

// saveScanReport saves the scan report to the database if enabled.
// If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.HistoryDB, scanReport *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// Ensure SimpleReport is generated before saving
	if scanReport.SimpleReport == nil {
		scanReport.SimpleReport = model.NewSimpleReport(scanReport)
	}

	scanID, err := db.SaveScanReport(ctx, scanReport)
	if err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	logger.Info("scan report saved to database", "target", scanReport.Root, "scanID", scanID)
	return nil
}
