package database

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/swiftaudit/swiftaudit/internal/model"
)

// openTestDB opens a fresh database in a temporary directory.
func openTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := hdb.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return hdb
}

// sampleReport builds a finalized scan report with a few findings.
func sampleReport(root string, filesScanned int) *model.ScanReport {
	report := model.NewScanReport(root)
	report.FilesScanned = filesScanned
	report.AddFinding(model.NewFinding(
		"force_try", "Force try", "try! bypasses error handling",
		"App/Loader.swift", 10))
	report.AddFinding(model.NewFinding(
		"force_unwrap", "Force unwrap", "Crashes when nil",
		"Features/Home/HomeView.swift", 42))
	report.AddFinding(model.NewFinding(
		"force_unwrap", "Force unwrap", "Crashes when nil",
		"Features/Home/HomeView.swift", 57))
	report.Finalize()
	return report
}

// setScanTimestamp pins the stored timestamp so history ordering is
// deterministic within a test.
func setScanTimestamp(t *testing.T, hdb *HistoryDB, scanID int64, ts string) {
	t.Helper()

	if _, err := hdb.db.ExecContext(context.Background(),
		`UPDATE scan_reports SET timestamp = ? WHERE id = ?`, ts, scanID); err != nil {
		t.Fatalf("failed to set timestamp: %v", err)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database when missing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		hdb, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer hdb.Close() //nolint:errcheck

		if hdb.Path() == "" {
			t.Error("Path() is empty")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		hdb, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if err := hdb.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		opts := Options{CreateIfNotExists: false, EnableWAL: true}
		reopened, err := Open(dir, opts)
		if err != nil {
			t.Fatalf("Open() on existing database error = %v", err)
		}
		defer reopened.Close() //nolint:errcheck
	})

	t.Run("fails when database missing and creation disabled", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("Open() expected error for missing database")
		}
	})
}

func TestSaveAndGetScanReport(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	report := sampleReport("/projects/demo", 12)
	scanID, err := hdb.SaveScanReport(ctx, report)
	if err != nil {
		t.Fatalf("SaveScanReport() error = %v", err)
	}
	if scanID <= 0 {
		t.Fatalf("SaveScanReport() scanID = %d, want positive", scanID)
	}

	t.Run("latest by root", func(t *testing.T) {
		got, err := hdb.GetLatestScanReport(ctx, "/projects/demo")
		if err != nil {
			t.Fatalf("GetLatestScanReport() error = %v", err)
		}
		if got == nil {
			t.Fatal("GetLatestScanReport() = nil, want report")
		}
		if got.Root != "/projects/demo" {
			t.Errorf("Root = %q, want %q", got.Root, "/projects/demo")
		}
		if got.FilesScanned != 12 {
			t.Errorf("FilesScanned = %d, want 12", got.FilesScanned)
		}
		if got.SimpleReport == nil || len(got.SimpleReport.Findings) != 3 {
			t.Errorf("restored findings = %+v, want 3 findings", got.SimpleReport)
		}
	})

	t.Run("by id", func(t *testing.T) {
		got, err := hdb.GetScanReportByID(ctx, scanID)
		if err != nil {
			t.Fatalf("GetScanReportByID() error = %v", err)
		}
		if got == nil || got.Root != "/projects/demo" {
			t.Errorf("GetScanReportByID() = %+v, want demo report", got)
		}
	})

	t.Run("unknown id returns nil", func(t *testing.T) {
		got, err := hdb.GetScanReportByID(ctx, 9999)
		if err != nil {
			t.Fatalf("GetScanReportByID() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetScanReportByID() = %+v, want nil", got)
		}
	})

	t.Run("unknown root returns nil", func(t *testing.T) {
		got, err := hdb.GetLatestScanReport(ctx, "/projects/other")
		if err != nil {
			t.Fatalf("GetLatestScanReport() error = %v", err)
		}
		if got != nil {
			t.Errorf("GetLatestScanReport() = %+v, want nil", got)
		}
	})
}

func TestGetScanHistory(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	oldID, err := hdb.SaveScanReport(ctx, sampleReport("/projects/demo", 10))
	if err != nil {
		t.Fatalf("SaveScanReport() error = %v", err)
	}
	newID, err := hdb.SaveScanReport(ctx, sampleReport("/projects/demo", 11))
	if err != nil {
		t.Fatalf("SaveScanReport() error = %v", err)
	}
	setScanTimestamp(t, hdb, oldID, "2026-08-01 09:00:00")
	setScanTimestamp(t, hdb, newID, "2026-08-02 09:00:00")

	reports, err := hdb.GetScanHistory(ctx, "/projects/demo")
	if err != nil {
		t.Fatalf("GetScanHistory() error = %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("GetScanHistory() returned %d reports, want 2", len(reports))
	}
	if reports[0].FilesScanned != 11 {
		t.Errorf("newest FilesScanned = %d, want 11", reports[0].FilesScanned)
	}
	if reports[1].FilesScanned != 10 {
		t.Errorf("oldest FilesScanned = %d, want 10", reports[1].FilesScanned)
	}

	empty, err := hdb.GetScanHistory(ctx, "/projects/none")
	if err != nil {
		t.Fatalf("GetScanHistory() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("GetScanHistory() for unknown root returned %d reports", len(empty))
	}
}

func TestGetScanHistoryWithMetadata(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	scanID, err := hdb.SaveScanReport(ctx, sampleReport("/projects/demo", 12))
	if err != nil {
		t.Fatalf("SaveScanReport() error = %v", err)
	}
	setScanTimestamp(t, hdb, scanID, "2026-08-15 14:30:00")

	metas, err := hdb.GetScanHistoryWithMetadata(ctx, "/projects/demo")
	if err != nil {
		t.Fatalf("GetScanHistoryWithMetadata() error = %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("got %d metadata rows, want 1", len(metas))
	}

	meta := metas[0]
	if meta.ID != scanID {
		t.Errorf("ID = %d, want %d", meta.ID, scanID)
	}
	if meta.Root != "/projects/demo" {
		t.Errorf("Root = %q, want %q", meta.Root, "/projects/demo")
	}
	want := time.Date(2026, 8, 15, 14, 30, 0, 0, time.UTC)
	if !meta.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", meta.Timestamp, want)
	}
	if meta.RiskSummary["critical"] != 1 {
		t.Errorf("RiskSummary[critical] = %d, want 1", meta.RiskSummary["critical"])
	}
	if meta.RiskSummary["high"] != 2 {
		t.Errorf("RiskSummary[high] = %d, want 2", meta.RiskSummary["high"])
	}
}

func TestListScannedRoots(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	for _, root := range []string{"/projects/zebra", "/projects/alpha", "/projects/alpha"} {
		if _, err := hdb.SaveScanReport(ctx, sampleReport(root, 5)); err != nil {
			t.Fatalf("SaveScanReport(%q) error = %v", root, err)
		}
	}

	roots, err := hdb.ListScannedRoots(ctx)
	if err != nil {
		t.Fatalf("ListScannedRoots() error = %v", err)
	}
	want := []string{"/projects/alpha", "/projects/zebra"}
	if !reflect.DeepEqual(roots, want) {
		t.Errorf("ListScannedRoots() = %v, want %v", roots, want)
	}
}

func TestCountFindingsByRule(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	scanID, err := hdb.SaveScanReport(ctx, sampleReport("/projects/demo", 12))
	if err != nil {
		t.Fatalf("SaveScanReport() error = %v", err)
	}

	counts, err := hdb.CountFindingsByRule(ctx, scanID)
	if err != nil {
		t.Fatalf("CountFindingsByRule() error = %v", err)
	}
	want := map[string]int{
		"force_try":    1,
		"force_unwrap": 2,
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("CountFindingsByRule() = %v, want %v", counts, want)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "sqlite default",
			input: "2026-08-15 14:30:00",
			want:  time.Date(2026, 8, 15, 14, 30, 0, 0, time.UTC),
		},
		{
			name:  "iso 8601 with z",
			input: "2026-08-15T14:30:00Z",
			want:  time.Date(2026, 8, 15, 14, 30, 0, 0, time.UTC),
		},
		{
			name:  "unparseable",
			input: "not a timestamp",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
