package model

import "time"

// ScanReport is the main audit result structure.
// It contains everything collected during one scan of a project root.
//
// Design decision: We use a single struct rather than many small ones
// to simplify serialization and database storage. The SimpleReport
// sub-struct carries the severity-counted view used by report writers.
type ScanReport struct {
	// Root is the scanned project root path.
	Root string `json:"root"`

	// DateScanned is the timestamp when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// FilesScanned is the number of Swift files that were analyzed.
	FilesScanned int `json:"files_scanned"`

	// FilesSkipped is the number of files that could not be read or
	// were excluded after discovery (oversize, undecodable).
	FilesSkipped int `json:"files_skipped"`

	// PerformedChecks lists the pipeline steps that actually ran.
	PerformedChecks []string `json:"performed_checks,omitempty"`

	// Graph summarizes the regex-extracted dependency graph.
	Graph *GraphSummary `json:"graph,omitempty"`

	// SimpleReport contains the summarized findings for output.
	SimpleReport *SimpleReport `json:"simple_report,omitempty"`

	// Interrupted is true if the scan was cancelled before completion.
	Interrupted bool `json:"interrupted"`

	// Error contains any error that occurred during scanning.
	// Only set if the scan failed or partially failed.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// GraphSummary describes the dependency graph built during the scan.
type GraphSummary struct {
	// Nodes is the number of files in the graph.
	Nodes int `json:"nodes"`

	// Edges is the number of extracted references.
	Edges int `json:"edges"`

	// Cycles contains each detected cycle as an ordered list of file stems.
	Cycles [][]string `json:"cycles,omitempty"`

	// LayerViolations counts Features-to-Core manager dependencies.
	LayerViolations int `json:"layer_violations"`
}

// NewScanReport creates a new report for the given project root.
func NewScanReport(root string) *ScanReport {
	return &ScanReport{
		Root:        root,
		DateScanned: time.Now(),
	}
}

// AddFinding adds a finding to the simple report, initializing it on first use.
// Duplicate findings (same rule, file, line, and value) are dropped.
//
// Design decision: We store findings in SimpleReport rather than a separate
// slice because SimpleReport already owns the aggregation logic, and the
// report writers only ever consume the simple view.
func (r *ScanReport) AddFinding(finding Finding) {
	if r.SimpleReport == nil {
		r.SimpleReport = &SimpleReport{
			Root:        r.Root,
			DateScanned: r.DateScanned,
		}
	}

	for _, f := range r.SimpleReport.Findings {
		if f.Rule == finding.Rule && f.File == finding.File &&
			f.Line == finding.Line && f.Value == finding.Value {
			return
		}
	}

	r.SimpleReport.Findings = append(r.SimpleReport.Findings, finding)

	switch finding.Severity {
	case SeverityCritical:
		r.SimpleReport.CriticalCount++
	case SeverityHigh:
		r.SimpleReport.HighCount++
	case SeverityMedium:
		r.SimpleReport.MediumCount++
	case SeverityLow:
		r.SimpleReport.LowCount++
	case SeverityInfo:
		r.SimpleReport.InfoCount++
	}
}

// Finalize syncs the simple report's file statistics with the scan totals.
// Call after all pipeline steps have completed.
func (r *ScanReport) Finalize() {
	if r.SimpleReport == nil {
		r.SimpleReport = NewSimpleReport(r)
		return
	}
	r.SimpleReport.FilesScanned = r.FilesScanned
	r.SimpleReport.FilesSkipped = r.FilesSkipped
	r.SimpleReport.Interrupted = r.Interrupted
	if r.Error != nil {
		r.SimpleReport.Error = r.Error.Error()
	}
	r.SimpleReport.Graph = r.Graph
}
