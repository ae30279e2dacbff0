package walker

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/swiftaudit/swiftaudit/internal/config"
)

// Walker discovers Swift source files under a project root.
//
// Design decision: Discovery and reading are one component because the
// exclusion rules (oversize, undecodable) can only be applied after
// opening the file, and every caller wants the content anyway.
type Walker struct {
	// excludedDirs are directory names skipped entirely.
	excludedDirs map[string]bool

	// excludedFiles are file names skipped after discovery.
	excludedFiles map[string]bool

	// maxFileSize is the largest file read into memory, in bytes.
	maxFileSize int64

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithExcludedDirs adds directory names to skip during discovery.
// The built-in defaults (.git, .build, DerivedData, Pods, build) always apply.
func WithExcludedDirs(dirs []string) Option {
	return func(w *Walker) {
		for _, d := range dirs {
			w.excludedDirs[d] = true
		}
	}
}

// WithExcludedFiles adds file names to exclude from analysis.
func WithExcludedFiles(files []string) Option {
	return func(w *Walker) {
		for _, f := range files {
			w.excludedFiles[f] = true
		}
	}
}

// WithMaxFileSize sets the maximum file size read into memory.
func WithMaxFileSize(size int64) Option {
	return func(w *Walker) {
		if size > 0 {
			w.maxFileSize = size
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// New creates a Walker with the built-in exclusion defaults.
func New(opts ...Option) *Walker {
	w := &Walker{
		excludedDirs:  make(map[string]bool),
		excludedFiles: make(map[string]bool),
		maxFileSize:   config.DefaultMaxFileSize,
		logger:        slog.Default(),
	}

	for _, d := range config.DefaultExcludedDirs {
		w.excludedDirs[d] = true
	}
	for _, f := range config.DefaultExcludedFiles {
		w.excludedFiles[f] = true
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Result holds the outcome of a walk.
type Result struct {
	// Sources are the readable Swift files, sorted by relative path.
	Sources []*Source

	// Skipped is the number of files excluded after discovery
	// (oversize, unreadable, undecodable).
	Skipped int
}

// Walk discovers and reads all Swift files under root.
// Per-file failures are logged and counted as skipped; the walk continues.
// The walk fails only when the root itself cannot be traversed.
func (w *Walker) Walk(ctx context.Context, root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	result := &Result{}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			w.logger.Warn("walk error, skipping entry", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && w.excludedDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}

		if filepath.Ext(d.Name()) != ".swift" {
			return nil
		}
		if w.excludedFiles[d.Name()] {
			return nil
		}

		src, ok := w.readSource(root, path, d)
		if !ok {
			result.Skipped++
			return nil
		}
		result.Sources = append(result.Sources, src)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result.Sources, func(i, j int) bool {
		return result.Sources[i].Path < result.Sources[j].Path
	})

	w.logger.Debug("walk complete",
		"root", root,
		"files", len(result.Sources),
		"skipped", result.Skipped,
	)

	return result, nil
}

// readSource reads one file and normalizes it to UTF-8 text.
// Returns false when the file should be counted as skipped.
func (w *Walker) readSource(root, path string, d fs.DirEntry) (*Source, bool) {
	fi, err := d.Info()
	if err != nil {
		w.logger.Warn("cannot stat file, skipping", "path", path, "error", err)
		return nil, false
	}
	if fi.Size() > w.maxFileSize {
		w.logger.Warn("file exceeds size limit, skipping",
			"path", path, "size", fi.Size(), "limit", w.maxFileSize)
		return nil, false
	}

	data, err := os.ReadFile(path) //nolint:gosec // Path comes from the walk itself
	if err != nil {
		w.logger.Warn("cannot read file, skipping", "path", path, "error", err)
		return nil, false
	}

	text, err := decodeText(data)
	if err != nil {
		w.logger.Warn("cannot decode file, skipping", "path", path, "error", err)
		return nil, false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	return NewSource(rel, path, text), true
}

// BOM prefixes for the encodings Xcode emits.
var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// decodeText converts raw file bytes to UTF-8 text.
// UTF-16 content (detected via BOM) is transcoded; UTF-8 BOMs are stripped;
// anything that still is not valid UTF-8 is rejected rather than analyzed
// as garbage.
func decodeText(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	case bytes.HasPrefix(data, bomUTF16BE), bytes.HasPrefix(data, bomUTF16LE):
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", fmt.Errorf("utf-16 decode failed: %w", err)
		}
		data = decoded
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("content is not valid UTF-8")
	}
	return string(data), nil
}
