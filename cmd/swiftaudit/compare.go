package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/swiftaudit/swiftaudit/internal/config"
	"github.com/swiftaudit/swiftaudit/internal/database"
	"github.com/swiftaudit/swiftaudit/internal/model"
)

// Constants for risk direction and summary messages.
const (
	riskDirectionWorsened  = "worsened"
	riskDirectionImproved  = "improved"
	riskDirectionUnchanged = "unchanged"
	noFindingsMessage      = "No findings"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [project-root]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the database and shows:
- New findings that appeared since the last scan
- Resolved findings that are no longer present
- Changes in severity level counts

The comparison requires at least two scans in the database for the
specified project root. Use 'swiftaudit scan' to perform scans and save
results.

Examples:
  # Compare latest two scans for the current directory
  swiftaudit compare

  # List all scan history for a project
  swiftaudit compare --list ~/Projects/MyApp

  # Compare with a specific historical scan by ID
  swiftaudit compare --with-scan-id 5 ~/Projects/MyApp

  # Compare two specific scans by ID
  swiftaudit compare --from 3 --to 7 ~/Projects/MyApp

  # Compare scans since a specific date
  swiftaudit compare --since "2026-01-01" ~/Projects/MyApp

  # Output comparison in JSON format
  swiftaudit compare --json ~/Projects/MyApp

  # List all scanned projects in the database
  swiftaudit compare --list-roots`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified project root")
	cmd.Flags().BoolP("list-roots", "L", false,
		"List all scanned project roots in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")
	cmd.Flags().Int64P("from", "f", 0,
		"Older scan ID for an explicit pair comparison")
	cmd.Flags().Int64P("to", "t", 0,
		"Newer scan ID for an explicit pair comparison (default: latest scan)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-roots flag first (requires database but no root)
	listRoots, err := cmd.Flags().GetBool("list-roots")
	if err != nil {
		return err
	}

	// Resolve the target root before opening the database (unless --list-roots).
	// This prevents database lock issues when validation fails.
	var root string
	if !listRoots {
		targets, err := resolveTargets(args)
		if err != nil {
			return err
		}
		root = targets[0]
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-roots flag
	if listRoots {
		return listScannedRoots(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, db, root)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}
	fromID, err := cmd.Flags().GetInt64("from")
	if err != nil {
		return err
	}
	toID, err := cmd.Flags().GetInt64("to")
	if err != nil {
		return err
	}
	if toID > 0 && fromID == 0 {
		return fmt.Errorf("--to requires --from")
	}

	// Perform comparison
	return runComparison(ctx, db, root, compareTargets{
		withScanID: withScanID,
		sinceDate:  sinceDate,
		fromID:     fromID,
		toID:       toID,
	}, jsonOutput, markdownOutput)
}

// listScannedRoots lists all project roots that have scan records in the database.
func listScannedRoots(ctx context.Context, db *database.HistoryDB) error {
	roots, err := db.ListScannedRoots(ctx)
	if err != nil {
		return fmt.Errorf("failed to list roots: %w", err)
	}

	if len(roots) == 0 {
		fmt.Println("No scanned projects found in the database.")
		fmt.Println("\nUse 'swiftaudit scan <root>' to scan a project.")
		return nil
	}

	fmt.Printf("Scanned projects (%d):\n\n", len(roots))
	for _, root := range roots {
		fmt.Printf("  • %s\n", root)
	}
	fmt.Println("\nUse 'swiftaudit compare --list <root>' to see scan history for a project.")

	return nil
}

// listScanHistory lists all scan records for a specific project root.
func listScanHistory(ctx context.Context, db *database.HistoryDB, root string) error {
	reports, err := db.GetScanHistoryWithMetadata(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		fmt.Printf("No scan history found for %s\n", root)
		fmt.Println("\nUse 'swiftaudit scan' to scan this project.")
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", root, len(reports))
	fmt.Printf("  %-6s  %-20s  %s\n", "ID", "Date", "Risk Summary")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range reports {
		riskSummary := formatRiskSummary(meta.RiskSummary)
		fmt.Printf("  %-6d  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			riskSummary,
		)
	}

	fmt.Println("\nUse 'swiftaudit compare <root>' to compare the latest two scans.")
	fmt.Println("Use 'swiftaudit compare --with-scan-id <id> <root>' to compare with a specific scan.")

	return nil
}

// formatRiskSummary formats the risk summary map into a human-readable string.
func formatRiskSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["critical"]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := summary["high"]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := summary["medium"]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := summary["low"]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}
	if v := summary["info"]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return noFindingsMessage
	}
	return strings.Join(parts, " ")
}

// compareTargets selects which two scans a comparison runs over.
type compareTargets struct {
	withScanID int64
	sinceDate  string
	fromID     int64
	toID       int64
}

// scanByID fetches one scan and verifies it belongs to the given root.
func scanByID(ctx context.Context, db *database.HistoryDB, root string, id int64) (*model.ScanReport, error) {
	report, err := db.GetScanReportByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan with ID %d: %w", id, err)
	}
	if report == nil {
		return nil, fmt.Errorf("scan with ID %d not found", id)
	}
	if report.Root != root {
		return nil, fmt.Errorf("scan ID %d belongs to %s, not %s", id, report.Root, root)
	}
	return report, nil
}

// runComparison performs the actual comparison between scan reports.
func runComparison(ctx context.Context, db *database.HistoryDB, root string, targets compareTargets, jsonOutput, markdownOutput bool) error {
	withScanID := targets.withScanID
	sinceDate := targets.sinceDate

	// Get the scan history
	reports, err := db.GetScanHistory(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no scan history found for %s", root)
	}

	if len(reports) < 2 && withScanID == 0 && sinceDate == "" && targets.fromID == 0 {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(reports))
	}

	// Determine which reports to compare
	var currentReport, previousReport *model.ScanReport

	// Latest report is always the current one
	currentReport = reports[0]

	if targets.fromID > 0 {
		if targets.toID > 0 && targets.fromID == targets.toID {
			return fmt.Errorf("cannot compare scan %d with itself", targets.fromID)
		}
		previousReport, err = scanByID(ctx, db, root, targets.fromID)
		if err != nil {
			return err
		}
		if targets.toID > 0 {
			currentReport, err = scanByID(ctx, db, root, targets.toID)
			if err != nil {
				return err
			}
		}
		// Without --to the latest scan is the comparison target, which
		// may be the --from scan itself when it is the newest one.
		if previousReport.DateScanned.Equal(currentReport.DateScanned) {
			return fmt.Errorf("cannot compare scan %d with itself", targets.fromID)
		}
	} else if withScanID > 0 {
		previousReport, err = scanByID(ctx, db, root, withScanID)
		if err != nil {
			return err
		}
	} else if sinceDate != "" {
		// Parse the date and find the first (oldest) report at or after the specified date
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Reports are sorted by timestamp DESC (newest first), so iterate in reverse
		// to find the first (oldest) report at or after the date
		for i := len(reports) - 1; i >= 0; i-- {
			r := reports[i]
			if r.DateScanned.After(parsedDate) || r.DateScanned.Equal(parsedDate) {
				previousReport = r
				break // Stop at the first (oldest) matching report
			}
		}
		if previousReport == nil {
			return fmt.Errorf("no scans found since %s", sinceDate)
		}
		// If only one scan matches and it's the current report, we can't compare
		if previousReport == currentReport {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
		}
	} else {
		// Default: compare with the previous scan
		previousReport = reports[1]
	}

	// Generate comparison result
	comparison := compareReports(previousReport, currentReport)

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two scan reports.
type ComparisonResult struct {
	// Root is the scanned project root path.
	Root string `json:"root"`

	// PreviousScan contains metadata about the previous scan.
	PreviousScan ScanMetadata `json:"previous_scan"`

	// CurrentScan contains metadata about the current scan.
	CurrentScan ScanMetadata `json:"current_scan"`

	// NewFindings contains findings that are new in the current scan.
	NewFindings []model.Finding `json:"new_findings,omitempty"`

	// ResolvedFindings contains findings that were in the previous scan but not in current.
	ResolvedFindings []model.Finding `json:"resolved_findings,omitempty"`

	// UnchangedCount is the number of findings that remain unchanged.
	UnchangedCount int `json:"unchanged_count"`

	// RiskChange describes the overall change in risk level.
	RiskChange RiskChange `json:"risk_change"`
}

// ScanMetadata contains metadata about a scan for comparison display.
type ScanMetadata struct {
	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// TotalFindings is the total number of findings in this scan.
	TotalFindings int `json:"total_findings"`

	// CriticalCount is the number of critical findings.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`
}

// RiskChange describes the change in risk level between scans.
type RiskChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// CriticalDelta is the change in critical findings count.
	CriticalDelta int `json:"critical_delta"`

	// HighDelta is the change in high severity findings count.
	HighDelta int `json:"high_delta"`

	// MediumDelta is the change in medium severity findings count.
	MediumDelta int `json:"medium_delta"`

	// LowDelta is the change in low severity findings count.
	LowDelta int `json:"low_delta"`

	// InfoDelta is the change in informational findings count.
	InfoDelta int `json:"info_delta"`
}

// compareReports compares two scan reports and generates a comparison result.
func compareReports(previous, current *model.ScanReport) *ComparisonResult {
	result := &ComparisonResult{
		Root: current.Root,
	}

	// Extract metadata
	if previous.SimpleReport != nil {
		result.PreviousScan = ScanMetadata{
			DateScanned:   previous.DateScanned,
			TotalFindings: len(previous.SimpleReport.Findings),
			CriticalCount: previous.SimpleReport.CriticalCount,
			HighCount:     previous.SimpleReport.HighCount,
			MediumCount:   previous.SimpleReport.MediumCount,
			LowCount:      previous.SimpleReport.LowCount,
			InfoCount:     previous.SimpleReport.InfoCount,
		}
	} else {
		result.PreviousScan = ScanMetadata{DateScanned: previous.DateScanned}
	}

	if current.SimpleReport != nil {
		result.CurrentScan = ScanMetadata{
			DateScanned:   current.DateScanned,
			TotalFindings: len(current.SimpleReport.Findings),
			CriticalCount: current.SimpleReport.CriticalCount,
			HighCount:     current.SimpleReport.HighCount,
			MediumCount:   current.SimpleReport.MediumCount,
			LowCount:      current.SimpleReport.LowCount,
			InfoCount:     current.SimpleReport.InfoCount,
		}
	} else {
		result.CurrentScan = ScanMetadata{DateScanned: current.DateScanned}
	}

	// Build finding maps for comparison
	previousFindings := make(map[string]model.Finding)
	currentFindings := make(map[string]model.Finding)

	if previous.SimpleReport != nil {
		for _, f := range previous.SimpleReport.Findings {
			previousFindings[findingKey(f)] = f
		}
	}

	if current.SimpleReport != nil {
		for _, f := range current.SimpleReport.Findings {
			currentFindings[findingKey(f)] = f
		}
	}

	// Find new findings (in current but not in previous)
	for key, finding := range currentFindings {
		if _, exists := previousFindings[key]; !exists {
			result.NewFindings = append(result.NewFindings, finding)
		}
	}

	// Find resolved findings (in previous but not in current)
	for key, finding := range previousFindings {
		if _, exists := currentFindings[key]; !exists {
			result.ResolvedFindings = append(result.ResolvedFindings, finding)
		} else {
			result.UnchangedCount++
		}
	}

	// Calculate risk change
	result.RiskChange = calculateRiskChange(result.PreviousScan, result.CurrentScan)

	return result
}

// findingKey generates a unique key for a finding for comparison purposes.
// Line numbers are excluded because edits shift them without changing
// whether the underlying issue still exists.
func findingKey(f model.Finding) string {
	return f.Rule + "|" + f.File + "|" + f.Value
}

// calculateRiskChange calculates the change in risk between two scans.
func calculateRiskChange(previous, current ScanMetadata) RiskChange {
	change := RiskChange{
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		HighDelta:     current.HighCount - previous.HighCount,
		MediumDelta:   current.MediumCount - previous.MediumCount,
		LowDelta:      current.LowCount - previous.LowCount,
		InfoDelta:     current.InfoCount - previous.InfoCount,
	}

	// Determine overall direction based on weighted score
	// Critical and High severity changes have more weight
	previousScore := previous.CriticalCount*100 + previous.HighCount*50 + previous.MediumCount*10 + previous.LowCount*5 + previous.InfoCount
	currentScore := current.CriticalCount*100 + current.HighCount*50 + current.MediumCount*10 + current.LowCount*5 + current.InfoCount

	if currentScore < previousScore {
		change.Direction = riskDirectionImproved
	} else if currentScore > previousScore {
		change.Direction = riskDirectionWorsened
	} else {
		change.Direction = riskDirectionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Scan Comparison: %s\n\n", result.Root)

	// Risk change summary
	fmt.Println("## Summary")
	fmt.Printf("\n**Risk Status:** %s\n\n", formatRiskDirection(result.RiskChange.Direction))

	// Scan metadata table
	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousScan.DateScanned.Format("2006-01-02 15:04"),
		result.CurrentScan.DateScanned.Format("2006-01-02 15:04"))
	fmt.Printf("| Critical | %d | %d | %s |\n",
		result.PreviousScan.CriticalCount,
		result.CurrentScan.CriticalCount,
		formatDelta(result.RiskChange.CriticalDelta))
	fmt.Printf("| High | %d | %d | %s |\n",
		result.PreviousScan.HighCount,
		result.CurrentScan.HighCount,
		formatDelta(result.RiskChange.HighDelta))
	fmt.Printf("| Medium | %d | %d | %s |\n",
		result.PreviousScan.MediumCount,
		result.CurrentScan.MediumCount,
		formatDelta(result.RiskChange.MediumDelta))
	fmt.Printf("| Low | %d | %d | %s |\n",
		result.PreviousScan.LowCount,
		result.CurrentScan.LowCount,
		formatDelta(result.RiskChange.LowDelta))
	fmt.Printf("| Info | %d | %d | %s |\n",
		result.PreviousScan.InfoCount,
		result.CurrentScan.InfoCount,
		formatDelta(result.RiskChange.InfoDelta))
	fmt.Printf("| **Total** | **%d** | **%d** | **%s** |\n",
		result.PreviousScan.TotalFindings,
		result.CurrentScan.TotalFindings,
		formatDelta(result.CurrentScan.TotalFindings-result.PreviousScan.TotalFindings))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\n## New Findings (%d)\n\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("- **[%s]** %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.File != "" {
				fmt.Printf("  - Location: `%s`\n", formatLocation(f))
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\n## Resolved Findings (%d)\n\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("- ~~**[%s]** %s: %s~~\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d findings unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Scan Comparison: %s\n", result.Root)
	fmt.Println(strings.Repeat("=", 60))

	// Risk change summary
	fmt.Printf("\nRisk Status: %s\n", formatRiskDirection(result.RiskChange.Direction))

	// Scan dates
	fmt.Printf("\nPrevious scan: %s\n", result.PreviousScan.DateScanned.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current scan:  %s\n", result.CurrentScan.DateScanned.Format("2006-01-02 15:04:05"))

	// Summary table
	fmt.Println("\nFindings Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousScan.CriticalCount, result.CurrentScan.CriticalCount,
		formatDelta(result.RiskChange.CriticalDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousScan.HighCount, result.CurrentScan.HighCount,
		formatDelta(result.RiskChange.HighDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousScan.MediumCount, result.CurrentScan.MediumCount,
		formatDelta(result.RiskChange.MediumDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousScan.LowCount, result.CurrentScan.LowCount,
		formatDelta(result.RiskChange.LowDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousScan.InfoCount, result.CurrentScan.InfoCount,
		formatDelta(result.RiskChange.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousScan.TotalFindings, result.CurrentScan.TotalFindings,
		formatDelta(result.CurrentScan.TotalFindings-result.PreviousScan.TotalFindings))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\nNew Findings (%d):\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("  [+] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.File != "" {
				fmt.Printf("      Location: %s\n", formatLocation(f))
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\nResolved Findings (%d):\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("  [-] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d findings\n", result.UnchangedCount)
	}

	return nil
}

// formatLocation renders a finding's file and line for display.
func formatLocation(f model.Finding) string {
	if f.Line > 0 {
		return f.File + ":" + strconv.Itoa(f.Line)
	}
	return f.File
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(direction string) string {
	switch direction {
	case riskDirectionImproved:
		return "IMPROVED (risk decreased)"
	case riskDirectionWorsened:
		return "WORSENED (risk increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
