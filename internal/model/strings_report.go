package model

import "time"

// StringsReport is the output of the hardcoded-string frequency analysis.
// The fix command reads it back as plain input data when consolidating
// duplicate literals into AppStrings constants.
type StringsReport struct {
	// Root is the analyzed project root path.
	Root string `json:"root"`

	// DateScanned is when the analysis was performed.
	DateScanned time.Time `json:"date_scanned"`

	// Summary holds the aggregate counters.
	Summary StringsSummary `json:"summary"`

	// Duplicates maps each repeated literal to its occurrence details.
	Duplicates map[string]DuplicateString `json:"duplicates,omitempty"`

	// InterpolationCandidates groups literals sharing a leading word,
	// suggesting a single interpolated constant.
	InterpolationCandidates []InterpolationCandidate `json:"interpolation_candidates,omitempty"`

	// FilesWithMostStrings maps file paths to their literal counts,
	// limited to the top offenders.
	FilesWithMostStrings map[string]int `json:"files_with_most_strings,omitempty"`

	// Suggestions groups literals by consolidation category
	// (errors, buttons, status, empty states).
	Suggestions map[string][]string `json:"consolidation_suggestions,omitempty"`
}

// StringsSummary holds aggregate counters for the strings analysis.
type StringsSummary struct {
	// TotalUniqueStrings is the number of distinct literals found.
	TotalUniqueStrings int `json:"total_unique_strings"`

	// DuplicateStrings is the number of literals appearing more than once.
	DuplicateStrings int `json:"duplicate_strings"`

	// SingleUseStrings is the number of literals appearing exactly once.
	SingleUseStrings int `json:"single_use_strings"`

	// TotalOccurrences is the sum of all literal occurrences.
	TotalOccurrences int `json:"total_occurrences"`
}

// DuplicateString records where a repeated literal occurs.
type DuplicateString struct {
	// Count is the total number of occurrences.
	Count int `json:"count"`

	// SampleLocations lists up to the first few occurrences.
	SampleLocations []StringLocation `json:"sample_locations,omitempty"`
}

// StringLocation is one occurrence of a literal.
type StringLocation struct {
	// File is the path relative to the scan root.
	File string `json:"file"`

	// Line is the 1-based line number.
	Line int `json:"line"`
}

// InterpolationCandidate groups literals that share a leading word.
type InterpolationCandidate struct {
	// Prefix is the shared leading word.
	Prefix string `json:"prefix"`

	// Strings lists the literals sharing the prefix.
	Strings []string `json:"strings"`
}

// NewStringsReport creates an empty StringsReport for the given root.
func NewStringsReport(root string) *StringsReport {
	return &StringsReport{
		Root:        root,
		DateScanned: time.Now(),
		Duplicates:  make(map[string]DuplicateString),
	}
}
