package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/swiftaudit/swiftaudit/internal/model"
	"github.com/swiftaudit/swiftaudit/internal/walker"
)

// OnChangeAnalyzer finds uses of the single-parameter onChange modifier
// that iOS 17 deprecated in favor of the zero- and two-parameter forms.
type OnChangeAnalyzer struct {
	onChange *regexp.Regexp
	oneParam *regexp.Regexp
	twoParam *regexp.Regexp
}

// NewOnChangeAnalyzer creates an OnChangeAnalyzer.
func NewOnChangeAnalyzer() *OnChangeAnalyzer {
	return &OnChangeAnalyzer{
		onChange: regexp.MustCompile(`\.onChange\(of:\s*[^)]+\)\s*\{?`),
		oneParam: regexp.MustCompile(`\{\s*(\w+)\s+in\b`),
		twoParam: regexp.MustCompile(`\{\s*\w+\s*,\s*\w+\s+in\b`),
	}
}

// Name returns the analyzer name.
func (a *OnChangeAnalyzer) Name() string {
	return "onchange"
}

// Category returns the analyzer category.
func (a *OnChangeAnalyzer) Category() string {
	return CategoryStyle
}

// Analyze classifies each onChange site by its closure signature. The
// closure header may land on the following line, so we look one line ahead
// before giving up.
func (a *OnChangeAnalyzer) Analyze(ctx context.Context, src *walker.Source) ([]model.Finding, error) {
	var findings []model.Finding

	for i, line := range src.Lines {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") {
			continue
		}

		loc := a.onChange.FindStringIndex(line)
		if loc == nil {
			continue
		}

		header := line[loc[0]:]
		if !strings.Contains(header, "{") && i+1 < len(src.Lines) {
			header += " " + strings.TrimSpace(src.Lines[i+1])
		}

		switch {
		case a.twoParam.MatchString(header):
			// Modern two-parameter form.
		case a.oneParam.MatchString(header):
			findings = append(findings, model.NewFinding(
				"deprecated_onchange",
				"Deprecated onChange Form",
				"Single-parameter onChange is deprecated since iOS 17.",
				src.Path, i+1,
			).WithSnippet(trimmed))
		case strings.Contains(header, "{"):
			// Zero-parameter form, already modern.
		default:
			findings = append(findings, model.NewFinding(
				"onchange_review",
				"onChange Needs Review",
				"Could not classify this onChange closure; check it manually.",
				src.Path, i+1,
			).WithSnippet(trimmed))
		}
	}

	return findings, nil
}
