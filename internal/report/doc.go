// Package report provides output writers for audit results.
// It supports human-readable text, JSON, and Markdown formats through a
// common Writer interface.
package report
