package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/swiftaudit/swiftaudit/internal/model"
)

// HistoryDB provides SQLite-based storage for scan reports.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all scanned roots
// rather than one file per project. This keeps scan history queries and
// backup/restore operations simple.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "swiftaudit.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single pooled connection avoids
	// SQLITE_BUSY without any retry logic.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Scan reports store complete scan results as JSON
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		risk_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_root ON scan_reports(root);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON scan_reports(timestamp);

	-- Findings are denormalized per scan for SQL-level queries
	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scan_reports(id) ON DELETE CASCADE,
		rule TEXT NOT NULL,
		severity TEXT NOT NULL,
		file TEXT NOT NULL,
		line INTEGER NOT NULL,
		value TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_findings_scan ON findings(scan_id);
	CREATE INDEX IF NOT EXISTS idx_findings_rule ON findings(rule);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveScanReport saves a complete scan report as JSON plus its findings
// rows. Returns the new scan's database ID.
func (hdb *HistoryDB) SaveScanReport(ctx context.Context, report *model.ScanReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	riskSummary := map[string]int{
		"critical": 0,
		"high":     0,
		"medium":   0,
		"low":      0,
		"info":     0,
	}
	if report.SimpleReport != nil {
		riskSummary["critical"] = report.SimpleReport.CriticalCount
		riskSummary["high"] = report.SimpleReport.HighCount
		riskSummary["medium"] = report.SimpleReport.MediumCount
		riskSummary["low"] = report.SimpleReport.LowCount
		riskSummary["info"] = report.SimpleReport.InfoCount
	}
	riskJSON, _ := json.Marshal(riskSummary) //nolint:errcheck,errchkjson // riskSummary is a simple map; Marshal won't fail

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO scan_reports (root, report_json, risk_summary) VALUES (?, ?, ?)`,
		report.Root,
		string(reportJSON),
		string(riskJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan report: %w", err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get scan id: %w", err)
	}

	if report.SimpleReport != nil {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO findings (scan_id, rule, severity, file, line, value) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("failed to prepare findings insert: %w", err)
		}
		defer stmt.Close()

		for _, f := range report.SimpleReport.Findings {
			if _, err := stmt.ExecContext(ctx, scanID, f.Rule, f.SeverityText, f.File, f.Line, f.Value); err != nil {
				return 0, fmt.Errorf("failed to save finding: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan report: %w", err)
	}
	return scanID, nil
}

// GetLatestScanReport retrieves the most recent scan report for a root.
// Returns nil without error when no scan exists.
func (hdb *HistoryDB) GetLatestScanReport(ctx context.Context, root string) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE root = ?
	ORDER BY timestamp DESC
	LIMIT 1
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, root).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetScanReportByID retrieves a scan report by its database ID.
// Returns nil without error when the ID is unknown.
func (hdb *HistoryDB) GetScanReportByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx,
		`SELECT report_json FROM scan_reports WHERE id = ?`, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetScanHistory retrieves all scan reports for a root, newest first.
// The compare command uses this to diff the latest two scans.
func (hdb *HistoryDB) GetScanHistory(ctx context.Context, root string) ([]*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE root = ?
	ORDER BY timestamp DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, root)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScanReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}

		var report model.ScanReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			return nil, fmt.Errorf("failed to parse report: %w", err)
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ListScannedRoots returns every project root with at least one stored scan.
func (hdb *HistoryDB) ListScannedRoots(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT DISTINCT root FROM scan_reports ORDER BY root`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roots: %w", err)
	}
	defer rows.Close()

	var roots []string
	for rows.Next() {
		var root string
		if err := rows.Scan(&root); err != nil {
			return nil, fmt.Errorf("failed to scan root: %w", err)
		}
		roots = append(roots, root)
	}

	return roots, rows.Err()
}

// ScanReportMetadata contains summary information about a scan report.
// This is used for displaying scan history without loading the full report.
type ScanReportMetadata struct {
	// ID is the unique identifier of the scan report in the database.
	ID int64

	// Root is the scanned project root.
	Root string

	// Timestamp is when the scan was performed.
	Timestamp time.Time

	// RiskSummary contains counts of findings by severity level.
	RiskSummary map[string]int
}

// GetScanHistoryWithMetadata retrieves scan report metadata for a root.
// This is more efficient than loading the full reports when only the
// history listing is needed.
func (hdb *HistoryDB) GetScanHistoryWithMetadata(ctx context.Context, root string) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, root, timestamp, risk_summary
	FROM scan_reports
	WHERE root = ?
	ORDER BY timestamp DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, root)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var results []ScanReportMetadata
	for rows.Next() {
		var meta ScanReportMetadata
		var timestamp string
		var riskJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Root, &timestamp, &riskJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)

		if riskJSON.Valid && riskJSON.String != "" {
			if err := json.Unmarshal([]byte(riskJSON.String), &meta.RiskSummary); err != nil {
				meta.RiskSummary = make(map[string]int)
			}
		} else {
			meta.RiskSummary = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// CountFindingsByRule returns per-rule finding counts for one scan.
func (hdb *HistoryDB) CountFindingsByRule(ctx context.Context, scanID int64) (map[string]int, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT rule, COUNT(*) FROM findings WHERE scan_id = ? GROUP BY rule`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to count findings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var rule string
		var n int
		if err := rows.Scan(&rule, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[rule] = n
	}

	return counts, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
