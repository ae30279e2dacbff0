package rewrite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// ErrNoPasses is returned when a rewriter is run without any passes.
var ErrNoPasses = errors.New("rewrite: no passes configured")

// defaultProtected are files the rewriter never touches. The theme and
// strings catalogs define the tokens the passes substitute in, so
// rewriting them would replace the definitions with self-references.
var defaultProtected = []string{"AppTheme.swift", "AppStrings.swift"}

// Pass transforms file content and reports how many substitutions it made.
type Pass interface {
	Name() string
	Apply(content string) (string, int)
}

// Rewriter applies a sequence of passes to Swift sources on disk.
type Rewriter struct {
	passes    []Pass
	dryRun    bool
	backup    bool
	protected map[string]bool
	logger    *slog.Logger
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithDryRun reports would-be changes without writing anything.
func WithDryRun(dryRun bool) Option {
	return func(r *Rewriter) { r.dryRun = dryRun }
}

// WithBackup controls whether a .bak copy is written before replacing
// a file. Enabled by default.
func WithBackup(backup bool) Option {
	return func(r *Rewriter) { r.backup = backup }
}

// WithProtectedFiles adds file names the rewriter must skip.
func WithProtectedFiles(names []string) Option {
	return func(r *Rewriter) {
		for _, n := range names {
			r.protected[n] = true
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rewriter) { r.logger = logger }
}

// New creates a Rewriter running the given passes in order.
func New(passes []Pass, opts ...Option) *Rewriter {
	r := &Rewriter{
		passes:    passes,
		backup:    true,
		protected: make(map[string]bool),
		logger:    slog.Default(),
	}
	for _, name := range defaultProtected {
		r.protected[name] = true
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FileChange records the substitutions made in one file, keyed by pass
// name.
type FileChange struct {
	Path   string
	Counts map[string]int
	Total  int
}

// Result aggregates a rewrite run.
type Result struct {
	FilesProcessed int
	FilesUpdated   int
	FilesSkipped   int
	Backups        int
	DryRun         bool
	Changes        []FileChange
}

// TotalChanges sums substitutions across all files.
func (r *Result) TotalChanges() int {
	n := 0
	for _, c := range r.Changes {
		n += c.Total
	}
	return n
}

// Rewrite runs every pass over every source. Per-file failures are
// logged and skipped; the run keeps going so one unwritable file does
// not abort a batch fix.
func (r *Rewriter) Rewrite(ctx context.Context, sources []*walker.Source) (*Result, error) {
	if len(r.passes) == 0 {
		return nil, ErrNoPasses
	}

	result := &Result{DryRun: r.dryRun}
	for _, src := range sources {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if r.protected[filepath.Base(src.Path)] {
			result.FilesSkipped++
			r.logger.Debug("skipping protected file", "file", src.Path)
			continue
		}
		result.FilesProcessed++

		change := FileChange{Path: src.Path, Counts: make(map[string]int)}
		content := src.Content
		for _, pass := range r.passes {
			var n int
			content, n = pass.Apply(content)
			if n > 0 {
				change.Counts[pass.Name()] = n
				change.Total += n
			}
		}
		if change.Total == 0 {
			continue
		}
		result.Changes = append(result.Changes, change)

		if r.dryRun {
			// FilesUpdated doubles as the would-update count so the
			// summary line stays truthful in both modes.
			result.FilesUpdated++
			r.logger.Info("would update file", "file", src.Path, "changes", change.Total)
			continue
		}
		if err := r.writeFile(src, content, result); err != nil {
			r.logger.Warn("failed to update file", "file", src.Path, "error", err)
			result.FilesSkipped++
			continue
		}
		result.FilesUpdated++
		r.logger.Info("updated file", "file", src.Path, "changes", change.Total)
	}

	sort.Slice(result.Changes, func(i, j int) bool {
		return result.Changes[i].Path < result.Changes[j].Path
	})
	return result, nil
}

// writeFile replaces the source atomically: the new content goes to a
// temp file in the same directory, then renames over the original.
func (r *Rewriter) writeFile(src *walker.Source, content string, result *Result) error {
	mode := fs.FileMode(0644)
	if info, err := os.Stat(src.AbsPath); err == nil {
		mode = info.Mode().Perm()
	}

	if r.backup {
		if err := os.WriteFile(src.AbsPath+".bak", []byte(src.Content), mode); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
		result.Backups++
	}

	dir := filepath.Dir(src.AbsPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(src.AbsPath)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, src.AbsPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

// ThemePasses returns the standard design-system passes in application
// order.
func ThemePasses() []Pass {
	return ThemePassesWithTolerance(0)
}

// ThemePassesWithTolerance returns the standard passes with off-scale
// spacing values snapped within the given distance.
func ThemePassesWithTolerance(tolerance int) []Pass {
	return []Pass{ColorPass{}, FontPass{}, SpacingPass{Tolerance: tolerance}}
}
