// Package walker discovers and reads Swift source files under a project
// root. It applies directory and file exclusions, enforces a size limit,
// and transcodes UTF-16 files (which Xcode occasionally produces) to UTF-8
// so the analyzers always see plain text.
package walker
