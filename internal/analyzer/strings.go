package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// HardcodedStringAnalyzer detects user-facing string literals embedded in
// code instead of referenced from the AppStrings catalog.
//
// Design decision: We filter aggressively rather than flag every literal
// because most quoted strings in a Swift file are identifiers, keys, or
// format specifiers. Only literals that plausibly reach the UI are worth
// reporting; everything else is noise that trains users to ignore the rule.
type HardcodedStringAnalyzer struct {
	stringPattern *regexp.Regexp
	numberPattern *regexp.Regexp
}

// skipLineMarkers are substrings that disqualify a whole line from
// string extraction: logging, key-value plumbing, and already-migrated code.
var skipLineMarkers = []string{
	"AppStrings.",
	"#if DEBUG",
	"print(",
	"Logger(",
	"category:",
	"subsystem:",
	"identifier:",
	"forKey:",
	"NSLocalizedString",
}

// NewHardcodedStringAnalyzer creates a HardcodedStringAnalyzer.
func NewHardcodedStringAnalyzer() *HardcodedStringAnalyzer {
	return &HardcodedStringAnalyzer{
		stringPattern: regexp.MustCompile(`"([^"]+)"`),
		numberPattern: regexp.MustCompile(`^[0-9]+$`),
	}
}

// Name returns the analyzer name.
func (a *HardcodedStringAnalyzer) Name() string {
	return "hardcodedstring"
}

// Category returns the analyzer category.
func (a *HardcodedStringAnalyzer) Category() string {
	return CategoryStyle
}

// Analyze extracts UI-plausible string literals from each line.
func (a *HardcodedStringAnalyzer) Analyze(ctx context.Context, src *walker.Source) ([]model.Finding, error) {
	var findings []model.Finding

	for i, line := range src.Lines {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		if SkipStringLine(line) {
			continue
		}

		for _, match := range a.stringPattern.FindAllStringSubmatch(line, -1) {
			literal := match[1]
			if !a.uiString(literal) {
				continue
			}
			findings = append(findings, model.NewFinding(
				"hardcoded_string",
				"Hardcoded String",
				"String literal should live in AppStrings.",
				src.Path, i+1,
			).WithValue(literal).WithSnippet(strings.TrimSpace(line)))
		}
	}

	return findings, nil
}

// uiString reports whether a literal plausibly reaches the UI.
func (a *HardcodedStringAnalyzer) uiString(s string) bool {
	if len(s) < 2 {
		return false
	}
	if strings.HasPrefix(s, "_") {
		return false
	}
	if s == strings.ToUpper(s) && strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		// All-caps literals are constants, not copy.
		return false
	}
	if strings.HasPrefix(s, "com.") || strings.HasPrefix(s, "http") {
		return false
	}
	if strings.HasSuffix(s, ".swift") || strings.HasSuffix(s, ".json") {
		return false
	}
	if strings.Count(s, ".") > 2 {
		// Key paths and bundle identifiers.
		return false
	}
	if a.numberPattern.MatchString(s) {
		return false
	}
	return true
}

// SkipStringLine reports whether a line is disqualified from string
// extraction entirely. Shared with the strings-frequency collector so
// both passes agree on what counts.
func SkipStringLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "//") {
		return true
	}
	for _, marker := range skipLineMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
