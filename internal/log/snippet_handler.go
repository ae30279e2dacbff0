package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
)

// snippetKeys contains attribute keys holding source excerpts. Excerpts
// come straight from user codebases and can be arbitrarily long or carry
// control characters that corrupt terminal output.
var snippetKeys = map[string]bool{
	"snippet": true,
	"excerpt": true,
	"literal": true,
	"line":    true,
	"match":   true,
}

// maskedKeys contains the attribute keys whose quoted string literals are
// masked. Literal values are user-facing copy from the audited codebase and
// should not leak verbatim into shared log aggregation.
var maskedKeys = map[string]bool{
	"snippet": true,
	"literal": true,
}

// quotedLiteral matches a double-quoted Swift string literal.
var quotedLiteral = regexp.MustCompile(`"[^"]*"`)

// maxSnippetLen caps logged source excerpts. Longer excerpts add no
// diagnostic value and flood the log when a minified file gets flagged.
const maxSnippetLen = 120

// SnippetHandler wraps an slog.Handler to sanitize source-code excerpts.
// It truncates over-long excerpt attributes and strips control characters
// before passing records to the underlying handler.
//
// Design decision: We use a handler wrapper rather than sanitizing at
// every call site because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites can log raw source lines without thinking about it
type SnippetHandler struct {
	// handler is the underlying slog handler that receives sanitized records.
	handler slog.Handler
}

// NewSnippetHandler creates a new SnippetHandler wrapping the given handler.
// If handler is nil, the returned SnippetHandler uses slog.Default().Handler().
func NewSnippetHandler(handler slog.Handler) *SnippetHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SnippetHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *SnippetHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it on.
func (h *SnippetHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are sanitized before being added.
func (h *SnippetHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SnippetHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SnippetHandler) WithGroup(name string) slog.Handler {
	return &SnippetHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *SnippetHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	if !snippetKeys[strings.ToLower(a.Key)] {
		return a
	}
	if a.Value.Kind() != slog.KindString {
		return a
	}

	s := a.Value.String()
	if maskedKeys[strings.ToLower(a.Key)] {
		s = MaskLiterals(s)
	}
	return slog.String(a.Key, SanitizeSnippet(s))
}

// MaskLiterals replaces the contents of double-quoted string literals
// with an ellipsis.
func MaskLiterals(s string) string {
	return quotedLiteral.ReplaceAllString(s, `"..."`)
}

// SanitizeSnippet strips control characters and truncates a source
// excerpt for safe terminal display.
func SanitizeSnippet(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// Dropped entirely; escape sequences must not reach the terminal.
		default:
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if runes := []rune(cleaned); len(runes) > maxSnippetLen {
		cleaned = string(runes[:maxSnippetLen-3]) + "..."
	}
	return cleaned
}

// NewLogger creates a new slog.Logger with snippet sanitization.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or
// passed to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewSnippetHandler(textHandler))
}

// NewJSONLogger creates a new slog.Logger with snippet sanitization that
// outputs JSON format. Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	return slog.New(NewSnippetHandler(jsonHandler))
}
