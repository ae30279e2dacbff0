// Package config holds swiftaudit's runtime configuration: the flat Config
// struct populated from CLI flags, the YAML project-file format
// (.swiftaudit) with defaults/per-root merging, and the XDG directory
// helpers used for the history database.
package config
