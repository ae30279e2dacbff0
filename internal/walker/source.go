package walker

import "strings"

// Source is one discovered Swift file, read and split for analysis.
type Source struct {
	// Path is the file path relative to the scan root.
	Path string

	// AbsPath is the absolute file path, used by the rewrite engine.
	AbsPath string

	// Content is the full file content as UTF-8 text.
	Content string

	// Lines is Content split on newlines. Line N of the file is
	// Lines[N-1]; analyzers report 1-based line numbers.
	Lines []string
}

// NewSource builds a Source from raw content.
func NewSource(relPath, absPath, content string) *Source {
	return &Source{
		Path:    relPath,
		AbsPath: absPath,
		Content: content,
		Lines:   strings.Split(content, "\n"),
	}
}

// Stem returns the file name without directory or the .swift extension.
// The dependency graph keys nodes by stem.
func (s *Source) Stem() string {
	name := s.Path
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSuffix(name, ".swift")
}

// Layer returns the first path component of the relative path.
// For the audited codebases this is the architecture layer
// (App, Core, Features); files at the root return "".
func (s *Source) Layer() string {
	if idx := strings.IndexByte(s.Path, '/'); idx >= 0 {
		return s.Path[:idx]
	}
	return ""
}
