package model

// Finding represents a single rule violation located in a source file.
type Finding struct {
	// Rule is the rule identifier.
	// This maps to the ruleInfoMapping in severity.go.
	Rule string `json:"rule"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Impact explains why this finding matters.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this finding.
	Recommendation string `json:"recommendation,omitempty"`

	// File is the path of the offending file, relative to the scan root.
	File string `json:"file"`

	// Line is the 1-based line number of the match.
	// Zero means the finding applies to the whole file.
	Line int `json:"line,omitempty"`

	// Value is the specific matched text (literal, identifier, pattern name).
	Value string `json:"value,omitempty"`

	// Snippet is the trimmed source line the match was found on.
	Snippet string `json:"snippet,omitempty"`
}

// NewFinding creates a Finding for the given rule, filling severity, impact,
// and recommendation from the central rule mapping.
func NewFinding(rule, title, description, file string, line int) Finding {
	info := GetRuleInfo(rule)
	return Finding{
		Rule:           rule,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Description:    description,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		File:           file,
		Line:           line,
	}
}

// WithValue returns a copy of the finding with the matched value set.
func (f Finding) WithValue(value string) Finding {
	f.Value = value
	return f
}

// WithSnippet returns a copy of the finding with the source snippet set.
func (f Finding) WithSnippet(snippet string) Finding {
	f.Snippet = snippet
	return f
}
