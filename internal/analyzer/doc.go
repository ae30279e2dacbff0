// Package analyzer implements the regex-based rule analyzers and the
// coordinator that runs them over discovered sources.
//
// Every analyzer is a heuristic over plain text. Swift is never parsed;
// the rules approximate the language just closely enough to be useful,
// mirroring the audit scripts this tool replaces. False positives are
// expected and acceptable for advisory rules.
package analyzer
