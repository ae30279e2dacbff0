// Package model defines the core data structures for swiftaudit.
//
// The central types are Finding (a single rule violation located in a source
// file), ScanReport (everything collected during one audit run), and
// SimpleReport (the summarized, severity-counted view used by the report
// writers). Severity metadata for every rule lives in a single mapping so
// that risk assessment stays consistent across analyzers, reports, and the
// history database.
package model
