package model

import "time"

// SimpleReport is a summarized, human-readable report.
// It holds the severity-counted findings view consumed by all report writers.
//
// Design decision: We keep a separate summarized struct rather than printing
// parts of ScanReport directly because:
// 1. It provides a consistent, curated view of the findings
// 2. It serializes to JSON for tools that want structured but simple output
// 3. It separates presentation concerns from data collection
type SimpleReport struct {
	// Root is the scanned project root path.
	Root string `json:"root"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// === Severity Summary ===

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

	// === Findings ===

	// Findings contains all categorized findings.
	Findings []Finding `json:"findings,omitempty"`

	// === File Statistics ===

	// FilesScanned is the number of files analyzed.
	FilesScanned int `json:"files_scanned"`

	// FilesSkipped is the number of files skipped due to read errors
	// or exclusions applied after discovery.
	FilesSkipped int `json:"files_skipped"`

	// Graph summarizes the dependency graph, if the graph step ran.
	Graph *GraphSummary `json:"graph,omitempty"`

	// Interrupted indicates the scan was cancelled before completion.
	Interrupted bool `json:"interrupted"`

	// Error contains any error message if the scan failed.
	Error string `json:"error,omitempty"`
}

// NewSimpleReport creates a SimpleReport from a ScanReport.
func NewSimpleReport(report *ScanReport) *SimpleReport {
	simple := &SimpleReport{
		Root:         report.Root,
		DateScanned:  report.DateScanned,
		FilesScanned: report.FilesScanned,
		FilesSkipped: report.FilesSkipped,
		Graph:        report.Graph,
		Interrupted:  report.Interrupted,
	}

	if report.Error != nil {
		simple.Error = report.Error.Error()
	}

	if report.SimpleReport != nil {
		simple.Findings = report.SimpleReport.Findings
	}

	simple.countBySeverity()
	return simple
}

// countBySeverity recomputes the severity counters from the findings list.
func (s *SimpleReport) countBySeverity() {
	s.CriticalCount, s.HighCount, s.MediumCount, s.LowCount, s.InfoCount = 0, 0, 0, 0, 0
	for _, f := range s.Findings {
		switch f.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}
}

// TotalFindings returns the total number of findings.
func (s *SimpleReport) TotalFindings() int {
	return len(s.Findings)
}

// HasFindings returns true if there are any findings.
func (s *SimpleReport) HasFindings() bool {
	return len(s.Findings) > 0
}

// GetFindingsBySeverity returns findings filtered by severity.
func (s *SimpleReport) GetFindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range s.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}

// CountAtOrAbove returns the number of findings at or above the given severity.
// Used by the --fail-on flag to decide the process exit code.
func (s *SimpleReport) CountAtOrAbove(severity Severity) int {
	count := 0
	for _, f := range s.Findings {
		if f.Severity >= severity {
			count++
		}
	}
	return count
}
