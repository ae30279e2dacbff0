package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// ForceUnwrapAnalyzer detects force unwrapping, force casts, force try,
// and implicitly unwrapped optional declarations.
//
// The heuristics are line-based: a "!" that is not part of != or !! and
// sits after an identifier, index, or call is treated as a force unwrap.
// Lines that legitimately contain "!" (comments, string literals,
// @IBOutlet declarations, assertion helpers) are excluded first.
type ForceUnwrapAnalyzer struct {
	unwrapPatterns []unwrapPattern
	iuoPattern     *regexp.Regexp
	excludes       []*regexp.Regexp
}

// unwrapPattern pairs a regex with the rule and label it produces.
type unwrapPattern struct {
	re    *regexp.Regexp
	rule  string
	label string
}

// NewForceUnwrapAnalyzer creates a ForceUnwrapAnalyzer.
func NewForceUnwrapAnalyzer() *ForceUnwrapAnalyzer {
	return &ForceUnwrapAnalyzer{
		unwrapPatterns: []unwrapPattern{
			{regexp.MustCompile(`[a-zA-Z_]\w*!(?:[.\[(]|$)`), "force_unwrap", "variable!"},
			{regexp.MustCompile(`\]!(?:[^=]|$)`), "force_unwrap", "]!"},
			{regexp.MustCompile(`\)!(?:[^=]|$)`), "force_unwrap", ")!"},
			{regexp.MustCompile(`\bas!\s+\w+`), "force_cast", "as! cast"},
			{regexp.MustCompile(`\btry!\s`), "force_try", "try!"},
		},
		iuoPattern: regexp.MustCompile(`:\s*\[?\w+\]?!(\s|$|=)`),
		excludes: []*regexp.Regexp{
			regexp.MustCompile(`^\s*//`),
			regexp.MustCompile(`@IBOutlet`),
			regexp.MustCompile(`XCTAssert`),
			regexp.MustCompile(`\bfatalError\b`),
			regexp.MustCompile(`\bprecondition\b`),
			regexp.MustCompile(`\bassert\b`),
			regexp.MustCompile(`"[^"]*![^"]*"`),
		},
	}
}

// Name returns the analyzer name.
func (a *ForceUnwrapAnalyzer) Name() string {
	return "forceunwrap"
}

// Category returns the analyzer category.
func (a *ForceUnwrapAnalyzer) Category() string {
	return CategorySafety
}

// Analyze scans each line for force-unwrap family patterns.
func (a *ForceUnwrapAnalyzer) Analyze(ctx context.Context, src *walker.Source) ([]model.Finding, error) {
	var findings []model.Finding

	for i, line := range src.Lines {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		if !strings.Contains(line, "!") {
			continue
		}
		if a.excluded(line) {
			continue
		}

		lineNum := i + 1
		snippet := strings.TrimSpace(line)

		// IUO declarations are reported once per line, not per pattern,
		// because the declaration itself is the finding.
		if a.iuoPattern.MatchString(line) {
			findings = append(findings, model.NewFinding(
				"implicitly_unwrapped_optional",
				"Implicitly Unwrapped Optional",
				"Property is declared as an implicitly unwrapped optional.",
				src.Path, lineNum,
			).WithSnippet(snippet))
			continue
		}

		for _, p := range a.unwrapPatterns {
			if !p.re.MatchString(line) {
				continue
			}
			title := "Force Unwrapping"
			switch p.rule {
			case "force_cast":
				title = "Force Cast"
			case "force_try":
				title = "Force Try"
			}
			findings = append(findings, model.NewFinding(
				p.rule, title,
				"Pattern "+p.label+" found.",
				src.Path, lineNum,
			).WithValue(p.label).WithSnippet(snippet))
		}
	}

	return findings, nil
}

// excluded reports whether the line matches any exclusion pattern.
func (a *ForceUnwrapAnalyzer) excluded(line string) bool {
	for _, re := range a.excludes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
