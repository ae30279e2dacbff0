// Package database provides SQLite-based persistence for scan reports.
// It stores each report as a JSON blob plus a findings table for
// SQL-level queries, enabling scan history and report comparison.
package database
