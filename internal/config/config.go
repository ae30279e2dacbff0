package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These match the behavior of the ad-hoc audit scripts this tool replaces
// where one existed, and otherwise pick conservative limits.
const (
	// DefaultBatchSize of 4 concurrent root scans balances throughput with
	// file descriptor usage. Scanning is I/O bound; higher values give
	// diminishing returns on laptop-class disks.
	DefaultBatchSize = 4

	// DefaultMaxFileSize limits the file size read into memory.
	// 2MB covers any hand-written Swift file; larger files are almost
	// always generated code that should not be audited anyway.
	DefaultMaxFileSize = 2 * 1024 * 1024 // 2MB

	// DefaultWatchDebounce is the quiet period before a watch-mode rescan.
	// Editors write files in bursts (temp file, rename, metadata), so we
	// wait for the burst to settle.
	DefaultWatchDebounce = 500 * time.Millisecond

	// AppName is the application name used for XDG directory paths.
	AppName = "swiftaudit"
)

// DefaultExcludedDirs are directory names skipped during discovery.
// These hold build products and vendored code in every Xcode project.
var DefaultExcludedDirs = []string{".git", ".build", "DerivedData", "Pods", "build"}

// DefaultExcludedFiles are file names excluded from analysis by default.
// The theme and strings catalogs legitimately contain the literals the
// analyzers flag everywhere else.
var DefaultExcludedFiles = []string{
	"AppStrings.swift",
	"AppTheme.swift",
	"AppIcons.swift",
}

// Config holds all configuration options for swiftaudit.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ScanConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without benefit.
type Config struct {
	// Targets is the list of project roots to scan.
	// Must contain at least one existing directory.
	Targets []string

	// Rules restricts the scan to the named rule identifiers.
	// Empty means all registered rules.
	Rules []string

	// BatchSize is the number of concurrent root scans when processing
	// multiple targets.
	BatchSize int

	// MaxFileSize is the maximum file size in bytes to read.
	// Files above the limit are counted as skipped.
	MaxFileSize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the project configuration file.
	// If empty, the tool searches for .swiftaudit in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// Project holds the project configuration loaded from the config file.
	Project *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// FailOn, when non-empty, names the severity level at or above which
	// findings cause a non-zero exit code. Used by CI integrations.
	FailOn string

	// Watch enables watch mode: rescan when source files change.
	Watch bool

	// WatchDebounce is the quiet period before a watch-mode rescan.
	WatchDebounce time.Duration

	// DBDir is the directory path for storing the SQLite history database.
	// When empty, scan results are not persisted.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to save scan results to the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BatchSize:     DefaultBatchSize,
		MaxFileSize:   DefaultMaxFileSize,
		WatchDebounce: DefaultWatchDebounce,
	}
}

// XDGDataDir returns the XDG data directory for swiftaudit.
// On Linux: ~/.local/share/swiftaudit
// On macOS: ~/Library/Application Support/swiftaudit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for swiftaudit.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast with clear messages. This is called once
// after CLI parsing, before any scanning begins. We return the first
// error found because fixing one often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxFileSize < 0 {
		return ErrInvalidMaxFileSize
	}

	if c.FailOn != "" && !validSeverityName(c.FailOn) {
		return ErrInvalidFailOn
	}

	return nil
}

// validSeverityName reports whether name is a recognized severity level.
// Kept here rather than importing model to avoid a config->model dependency;
// the names are part of the CLI contract.
func validSeverityName(name string) bool {
	switch name {
	case "info", "low", "medium", "high", "critical",
		"INFO", "LOW", "MEDIUM", "HIGH", "CRITICAL":
		return true
	default:
		return false
	}
}
